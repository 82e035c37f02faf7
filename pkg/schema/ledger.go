package schema

// RPAction is a logged mission or incident. Loot is signed and counts toward
// the balance.
type RPAction struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Description  string `json:"description"`
	Participants string `json:"participants"`
	Success      bool   `json:"success"`
	Loot         int64  `json:"loot"`
	Date         string `json:"date"`
}

// TransactionType is the direction of a ledger entry.
type TransactionType string

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

// Transaction is a manual ledger entry. Amount is a magnitude; the sign comes
// from Type.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Amount      int64           `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

// Signed returns the amount with the sign implied by the type.
func (t Transaction) Signed() int64 {
	if t.Type == Expense {
		return -t.Amount
	}
	return t.Amount
}

// Severity grades a disciplinary warning.
type Severity string

const (
	SeverityMinor    Severity = "Leve"
	SeverityModerate Severity = "Média"
	SeveritySevere   Severity = "Grave"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityMinor, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

// Warning is a disciplinary record. MemberName is a snapshot taken when the
// warning was issued and is not updated on rename.
type Warning struct {
	ID         string   `json:"id"`
	MemberID   string   `json:"memberId"`
	MemberName string   `json:"memberName"`
	Reason     string   `json:"reason"`
	Severity   Severity `json:"severity"`
	Date       string   `json:"date"`
}

// InventoryCategory classifies arsenal items.
type InventoryCategory string

const (
	CategoryWeapons    InventoryCategory = "Armamento"
	CategoryAmmo       InventoryCategory = "Munição"
	CategoryVehicle    InventoryCategory = "Veículo"
	CategoryContraband InventoryCategory = "Ilegal"
)

// Valid reports whether c is a known category.
func (c InventoryCategory) Valid() bool {
	switch c {
	case CategoryWeapons, CategoryAmmo, CategoryVehicle, CategoryContraband:
		return true
	}
	return false
}

// InventoryItem is a stock entry. AssignedTo holds a member id but is not
// checked against the member list.
type InventoryItem struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Category   InventoryCategory `json:"category"`
	Quantity   int               `json:"quantity"`
	AssignedTo string            `json:"assignedTo,omitempty"`
}

// LogType tags a system log line.
type LogType string

const (
	LogInfo    LogType = "INFO"
	LogAlert   LogType = "ALERT"
	LogSuccess LogType = "SUCCESS"
	LogAI      LogType = "AI"
)

// SystemLog is one line of the dashboard activity feed.
type SystemLog struct {
	ID      string  `json:"id"`
	Message string  `json:"message"`
	Date    string  `json:"date"`
	Type    LogType `json:"type"`
}
