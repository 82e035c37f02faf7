package syndicate

import (
	"fmt"
	"slices"

	"github.com/celerix-dev/imperivm/pkg/schema"
)

// Kind names a collection for Delete.
type Kind string

const (
	KindMember    Kind = "member"
	KindCandidate Kind = "candidate"
	KindAction    Kind = "action"
	KindFinance   Kind = "finance"
	KindWarning   Kind = "warning"
	KindInventory Kind = "inventory"
)

// Delete removes the record of the given kind.
func (c *Controller) Delete(kind Kind, id string) error {
	switch kind {
	case KindMember:
		return c.DeleteMember(id)
	case KindCandidate:
		return c.DeleteCandidate(id)
	case KindAction:
		return c.DeleteAction(id)
	case KindFinance:
		return c.DeleteTransaction(id)
	case KindWarning:
		return c.DeleteWarning(id)
	case KindInventory:
		return c.DeleteInventoryItem(id)
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func prepend[T any](items []T, v T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, v)
	return append(out, items...)
}

func indexByID[T any](items []T, id string, idOf func(T) string) int {
	return slices.IndexFunc(items, func(v T) bool { return idOf(v) == id })
}

// --- Actions ---

func actionID(a schema.RPAction) string { return a.ID }

// Actions lists missions, newest first.
func (c *Controller) Actions() []schema.RPAction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.state.Actions)
}

// AddAction records a mission.
func (c *Controller) AddAction(a schema.RPAction) (schema.RPAction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if a.ID == "" {
		a.ID = c.NewID()
	}
	if a.Date == "" {
		a.Date = c.timestamp()
	}
	c.state.Actions = prepend(c.state.Actions, a)
	c.logLocked(schema.LogInfo, "Ação registrada: %s", a.Type)
	c.persistLocked()
	return a, nil
}

// UpdateAction replaces a mission, keeping its id.
func (c *Controller) UpdateAction(id string, a schema.RPAction) (schema.RPAction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := indexByID(c.state.Actions, id, actionID)
	if i < 0 {
		return schema.RPAction{}, ErrNotFound
	}
	a.ID = id
	if a.Date == "" {
		a.Date = c.state.Actions[i].Date
	}
	c.state.Actions[i] = a
	c.logLocked(schema.LogInfo, "Ação atualizada: %s", a.Type)
	c.persistLocked()
	return a, nil
}

// DeleteAction removes a mission.
func (c *Controller) DeleteAction(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := indexByID(c.state.Actions, id, actionID)
	if i < 0 {
		return ErrNotFound
	}
	c.state.Actions = slices.Delete(c.state.Actions, i, i+1)
	c.logLocked(schema.LogAlert, "Ação removida")
	c.persistLocked()
	return nil
}

// --- Finances ---

func transactionID(t schema.Transaction) string { return t.ID }

func validateTransaction(t schema.Transaction) error {
	if t.Type != schema.Income && t.Type != schema.Expense {
		return fmt.Errorf("%w: transaction type must be INCOME or EXPENSE", ErrInvalid)
	}
	if t.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalid)
	}
	return nil
}

// Transactions lists ledger entries, newest first.
func (c *Controller) Transactions() []schema.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.state.Finances)
}

// AddTransaction records a ledger entry.
func (c *Controller) AddTransaction(t schema.Transaction) (schema.Transaction, error) {
	if err := validateTransaction(t); err != nil {
		return schema.Transaction{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.ID == "" {
		t.ID = c.NewID()
	}
	if t.Date == "" {
		t.Date = c.timestamp()
	}
	c.state.Finances = prepend(c.state.Finances, t)
	c.logLocked(schema.LogInfo, "Transação registrada: %s %d", t.Type, t.Amount)
	c.persistLocked()
	return t, nil
}

// UpdateTransaction replaces a ledger entry, keeping its id.
func (c *Controller) UpdateTransaction(id string, t schema.Transaction) (schema.Transaction, error) {
	if err := validateTransaction(t); err != nil {
		return schema.Transaction{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := indexByID(c.state.Finances, id, transactionID)
	if i < 0 {
		return schema.Transaction{}, ErrNotFound
	}
	t.ID = id
	if t.Date == "" {
		t.Date = c.state.Finances[i].Date
	}
	c.state.Finances[i] = t
	c.logLocked(schema.LogInfo, "Transação atualizada: %s %d", t.Type, t.Amount)
	c.persistLocked()
	return t, nil
}

// DeleteTransaction removes a ledger entry.
func (c *Controller) DeleteTransaction(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := indexByID(c.state.Finances, id, transactionID)
	if i < 0 {
		return ErrNotFound
	}
	c.state.Finances = slices.Delete(c.state.Finances, i, i+1)
	c.logLocked(schema.LogAlert, "Transação removida")
	c.persistLocked()
	return nil
}

// --- Warnings ---

func warningID(w schema.Warning) string { return w.ID }

// Warnings lists disciplinary records, newest first.
func (c *Controller) Warnings() []schema.Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.state.Warnings)
}

// AddWarning records a warning. An empty MemberName is filled from the
// member list at this moment and never refreshed afterwards.
func (c *Controller) AddWarning(w schema.Warning) (schema.Warning, error) {
	if !w.Severity.Valid() {
		return schema.Warning{}, fmt.Errorf("%w: unknown severity %q", ErrInvalid, w.Severity)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if w.ID == "" {
		w.ID = c.NewID()
	}
	if w.Date == "" {
		w.Date = c.timestamp()
	}
	if w.MemberName == "" {
		if i := c.memberIndex(w.MemberID); i >= 0 {
			w.MemberName = c.state.Members[i].Name
		}
	}
	c.state.Warnings = prepend(c.state.Warnings, w)
	c.logLocked(schema.LogAlert, "Advertência %s aplicada a %s", w.Severity, w.MemberName)
	c.persistLocked()
	return w, nil
}

// UpdateWarning replaces a warning, keeping its id and name snapshot when
// none is given.
func (c *Controller) UpdateWarning(id string, w schema.Warning) (schema.Warning, error) {
	if !w.Severity.Valid() {
		return schema.Warning{}, fmt.Errorf("%w: unknown severity %q", ErrInvalid, w.Severity)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := indexByID(c.state.Warnings, id, warningID)
	if i < 0 {
		return schema.Warning{}, ErrNotFound
	}
	old := c.state.Warnings[i]
	w.ID = id
	if w.Date == "" {
		w.Date = old.Date
	}
	if w.MemberName == "" && w.MemberID == old.MemberID {
		w.MemberName = old.MemberName
	}
	c.state.Warnings[i] = w
	c.logLocked(schema.LogInfo, "Advertência atualizada: %s", w.MemberName)
	c.persistLocked()
	return w, nil
}

// DeleteWarning removes a warning.
func (c *Controller) DeleteWarning(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := indexByID(c.state.Warnings, id, warningID)
	if i < 0 {
		return ErrNotFound
	}
	c.state.Warnings = slices.Delete(c.state.Warnings, i, i+1)
	c.logLocked(schema.LogInfo, "Advertência removida")
	c.persistLocked()
	return nil
}

// --- Inventory ---

func itemID(it schema.InventoryItem) string { return it.ID }

func validateItem(it schema.InventoryItem) error {
	if !it.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalid, it.Category)
	}
	if it.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalid)
	}
	return nil
}

// Inventory lists arsenal items, newest first.
func (c *Controller) Inventory() []schema.InventoryItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.state.Inventory)
}

// AddInventoryItem records an item.
func (c *Controller) AddInventoryItem(it schema.InventoryItem) (schema.InventoryItem, error) {
	if err := validateItem(it); err != nil {
		return schema.InventoryItem{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if it.ID == "" {
		it.ID = c.NewID()
	}
	c.state.Inventory = prepend(c.state.Inventory, it)
	c.logLocked(schema.LogInfo, "Item adicionado ao arsenal: %s x%d", it.Name, it.Quantity)
	c.persistLocked()
	return it, nil
}

// UpdateInventoryItem replaces an item, keeping its id.
func (c *Controller) UpdateInventoryItem(id string, it schema.InventoryItem) (schema.InventoryItem, error) {
	if err := validateItem(it); err != nil {
		return schema.InventoryItem{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i := indexByID(c.state.Inventory, id, itemID)
	if i < 0 {
		return schema.InventoryItem{}, ErrNotFound
	}
	it.ID = id
	c.state.Inventory[i] = it
	c.logLocked(schema.LogInfo, "Item atualizado: %s x%d", it.Name, it.Quantity)
	c.persistLocked()
	return it, nil
}

// DeleteInventoryItem removes an item.
func (c *Controller) DeleteInventoryItem(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := indexByID(c.state.Inventory, id, itemID)
	if i < 0 {
		return ErrNotFound
	}
	name := c.state.Inventory[i].Name
	c.state.Inventory = slices.Delete(c.state.Inventory, i, i+1)
	c.logLocked(schema.LogAlert, "Item removido do arsenal: %s", name)
	c.persistLocked()
	return nil
}
