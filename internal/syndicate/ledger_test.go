package syndicate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/celerix-dev/imperivm/internal/engine"
	"github.com/celerix-dev/imperivm/pkg/schema"
)

func TestBalance_Scenario(t *testing.T) {
	c := newTestController(t, engine.NewMemStore(nil, nil))
	if _, err := c.AddTransaction(schema.Transaction{Type: schema.Expense, Amount: 500}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.AddTransaction(schema.Transaction{Type: schema.Income, Amount: 1200}); err != nil {
		t.Fatal(err)
	}
	if got := c.Balance(); got != 700 {
		t.Errorf("Balance() = %d, want 700", got)
	}
}

func TestBalance_OrderIndependent(t *testing.T) {
	txs := []schema.Transaction{
		{Type: schema.Income, Amount: 1000},
		{Type: schema.Expense, Amount: 250},
		{Type: schema.Income, Amount: 75},
	}
	acts := []schema.RPAction{{Loot: 400}, {Loot: -120}}

	forward := newTestController(t, engine.NewMemStore(nil, nil))
	for _, tx := range txs {
		_, _ = forward.AddTransaction(tx)
	}
	for _, a := range acts {
		_, _ = forward.AddAction(a)
	}

	reverse := newTestController(t, engine.NewMemStore(nil, nil))
	_, _ = reverse.AddAction(acts[1])
	for i := len(txs) - 1; i >= 0; i-- {
		_, _ = reverse.AddTransaction(txs[i])
	}
	_, _ = reverse.AddAction(acts[0])

	if forward.Balance() != reverse.Balance() || forward.Balance() != 1105 {
		t.Errorf("balances differ: %d vs %d", forward.Balance(), reverse.Balance())
	}
}

func TestTransactions_Validation(t *testing.T) {
	c := newTestController(t, engine.NewMemStore(nil, nil))
	if _, err := c.AddTransaction(schema.Transaction{Type: "GIFT", Amount: 1}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for type, got %v", err)
	}
	if _, err := c.AddTransaction(schema.Transaction{Type: schema.Income, Amount: -1}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for amount, got %v", err)
	}
	if len(c.Transactions()) != 0 {
		t.Error("invalid transactions must not be stored")
	}
}

func TestLedger_PrependUpdateDelete(t *testing.T) {
	c := newTestController(t, engine.NewMemStore(nil, nil))
	first, _ := c.AddTransaction(schema.Transaction{Type: schema.Income, Amount: 1, Category: "Venda"})
	second, _ := c.AddTransaction(schema.Transaction{Type: schema.Income, Amount: 2})

	list := c.Transactions()
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got %v", list)
	}

	updated, err := c.UpdateTransaction(first.ID, schema.Transaction{ID: "ignored", Type: schema.Expense, Amount: 9})
	if err != nil {
		t.Fatal(err)
	}
	if updated.ID != first.ID || updated.Date != first.Date || updated.Category != "" {
		t.Errorf("expected wholesale replacement keeping id and date, got %+v", updated)
	}
	if c.Balance() != 2-9 {
		t.Errorf("unexpected balance %d", c.Balance())
	}

	if _, err := c.UpdateTransaction("ghost", schema.Transaction{Type: schema.Income}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := c.Delete(KindFinance, first.ID); err != nil {
		t.Fatal(err)
	}
	if len(c.Transactions()) != 1 {
		t.Error("expected one transaction after delete")
	}
}

func TestActions_CRUD(t *testing.T) {
	c := newTestController(t, engine.NewMemStore(nil, nil))
	a, _ := c.AddAction(schema.RPAction{Type: "Assalto", Participants: "Dante, Vito", Loot: 3000, Success: true})
	if a.ID == "" || a.Date == "" {
		t.Errorf("expected id and date assigned, got %+v", a)
	}
	if _, err := c.UpdateAction(a.ID, schema.RPAction{Type: "Assalto", Loot: 1000}); err != nil {
		t.Fatal(err)
	}
	if c.Balance() != 1000 {
		t.Errorf("expected balance 1000, got %d", c.Balance())
	}
	if err := c.Delete(KindAction, a.ID); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteAction(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestWarnings_Snapshot(t *testing.T) {
	c := newTestController(t, engine.NewMemStore(nil, nil))
	w, err := c.AddWarning(schema.Warning{MemberID: schema.OwnerID, Reason: "Falta", Severity: schema.SeverityModerate})
	if err != nil {
		t.Fatal(err)
	}
	if w.MemberName != "Iago_SND" {
		t.Errorf("expected name snapshot, got %q", w.MemberName)
	}

	name := "Don Iago"
	if _, err := c.UpdateMember(schema.OwnerID, MemberPatch{Name: &name}); err != nil {
		t.Fatal(err)
	}
	if got := c.Warnings()[0].MemberName; got != "Iago_SND" {
		t.Errorf("snapshot must not follow rename, got %q", got)
	}

	if _, err := c.AddWarning(schema.Warning{MemberID: schema.OwnerID, Severity: "Fatal"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for severity, got %v", err)
	}

	u, err := c.UpdateWarning(w.ID, schema.Warning{MemberID: schema.OwnerID, Reason: "Falta grave", Severity: schema.SeveritySevere})
	if err != nil {
		t.Fatal(err)
	}
	if u.MemberName != "Iago_SND" || u.Date != w.Date {
		t.Errorf("update should keep snapshot and date, got %+v", u)
	}
	if err := c.Delete(KindWarning, w.ID); err != nil {
		t.Fatal(err)
	}
}

func TestInventory_Validation(t *testing.T) {
	c := newTestController(t, engine.NewMemStore(nil, nil))
	if _, err := c.AddInventoryItem(schema.InventoryItem{Name: "Faca", Category: "Cozinha"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for category, got %v", err)
	}
	if _, err := c.AddInventoryItem(schema.InventoryItem{Name: "Faca", Category: schema.CategoryWeapons, Quantity: -2}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for quantity, got %v", err)
	}

	it, err := c.AddInventoryItem(schema.InventoryItem{Name: "Fuzil", Category: schema.CategoryWeapons, Quantity: 2, AssignedTo: "nobody"})
	if err != nil {
		t.Fatalf("unchecked assignee should be accepted: %v", err)
	}
	if _, err := c.UpdateInventoryItem(it.ID, schema.InventoryItem{Name: "Fuzil", Category: schema.CategoryWeapons, Quantity: 0}); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(KindInventory, it.ID); err != nil {
		t.Fatal(err)
	}
	if len(c.Inventory()) != 0 {
		t.Error("expected empty inventory")
	}
}

func TestMembers_UpdateAndPoints(t *testing.T) {
	c := newTestController(t, engine.NewMemStore(nil, nil))
	cand, _ := c.SubmitCandidate(context.Background(), candidate("Vito", schema.ProfessionChemist))
	m, _ := c.ApproveCandidate(cand.ID)

	role := schema.RankCaptain
	status := schema.MemberReserve
	updated, err := c.UpdateMember(m.ID, MemberPatch{Role: &role, Status: &status})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Role != schema.RankCaptain || updated.Status != schema.MemberReserve || updated.Name != "Vito" {
		t.Errorf("unexpected patch result %+v", updated)
	}

	bad := schema.Rank("Imperador")
	if _, err := c.UpdateMember(m.ID, MemberPatch{Role: &bad}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
	if _, err := c.UpdateMember("ghost", MemberPatch{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	got, _ := c.UpdateMemberPoints(m.ID, 50)
	if got.Points != 300 {
		t.Errorf("expected 300 points, got %d", got.Points)
	}
	got, _ = c.UpdateMemberPoints(m.ID, -1000)
	if got.Points != 0 {
		t.Errorf("points must floor at 0, got %d", got.Points)
	}
	if !strings.Contains(c.Logs()[0].Message, "-1000") {
		t.Errorf("expected delta in log, got %q", c.Logs()[0].Message)
	}
}

func TestMembers_Search(t *testing.T) {
	c := newTestController(t, engine.NewMemStore(nil, nil))
	cand, _ := c.SubmitCandidate(context.Background(), candidate("Vito", schema.ProfessionChemist))
	_, _ = c.ApproveCandidate(cand.ID)

	if got := c.Members("químico"); len(got) != 1 || got[0].Name != "Vito" {
		t.Errorf("expected profession match, got %v", got)
	}
	if got := c.Members("DON"); len(got) != 1 || got[0].ID != schema.OwnerID {
		t.Errorf("expected role match, got %v", got)
	}
	if got := c.Members("zzz"); len(got) != 0 {
		t.Errorf("expected no match, got %v", got)
	}
}

func TestDeleteMember_NoCascade(t *testing.T) {
	c := newTestController(t, engine.NewMemStore(nil, nil))
	cand, _ := c.SubmitCandidate(context.Background(), candidate("Vito", schema.ProfessionChemist))
	m, _ := c.ApproveCandidate(cand.ID)
	w, _ := c.AddWarning(schema.Warning{MemberID: m.ID, Reason: "Traição", Severity: schema.SeveritySevere})
	it, _ := c.AddInventoryItem(schema.InventoryItem{Name: "Carro", Category: schema.CategoryVehicle, Quantity: 1, AssignedTo: m.ID})

	if err := c.Delete(KindMember, m.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Member(m.ID); !errors.Is(err, ErrNotFound) {
		t.Error("member should be gone")
	}
	ws := c.Warnings()
	if len(ws) != 1 || ws[0].ID != w.ID || ws[0].MemberID != m.ID || ws[0].MemberName != "Vito" {
		t.Errorf("warning should keep dangling reference, got %v", ws)
	}
	inv := c.Inventory()
	if len(inv) != 1 || inv[0].ID != it.ID || inv[0].AssignedTo != m.ID {
		t.Errorf("inventory should keep dangling assignee, got %v", inv)
	}
}

func TestDeleteMember_OwnerProtected(t *testing.T) {
	c := newTestController(t, engine.NewMemStore(nil, nil))
	if err := c.DeleteMember(schema.OwnerID); !errors.Is(err, ErrProtectedMember) {
		t.Errorf("expected ErrProtectedMember, got %v", err)
	}
	if len(c.Members("")) != 1 {
		t.Error("owner must remain")
	}
}

func TestDelete_UnknownKind(t *testing.T) {
	c := newTestController(t, engine.NewMemStore(nil, nil))
	if err := c.Delete("vehicle", "x"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if err := c.Delete(KindCandidate, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
