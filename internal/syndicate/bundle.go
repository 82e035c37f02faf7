package syndicate

import (
	"encoding/json"
	"fmt"

	"github.com/celerix-dev/imperivm/pkg/schema"
)

// Bundle is the portable snapshot used by export and import.
type Bundle struct {
	Candidates []schema.Candidate     `json:"candidates"`
	Members    []schema.Member        `json:"members"`
	Actions    []schema.RPAction      `json:"actions"`
	Finances   []schema.Transaction   `json:"finances"`
	Warnings   []schema.Warning       `json:"warnings"`
	Inventory  []schema.InventoryItem `json:"inventory"`
	Logs       []schema.SystemLog     `json:"logs"`
	Closed     bool                   `json:"closed"`
	ExportedAt string                 `json:"exportedAt"`
}

// Export snapshots every collection. Empty collections are exported as
// empty arrays so that importing the bundle clears them.
func (c *Controller) Export() Bundle {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state.clone()
	return Bundle{
		Candidates: orEmpty(s.Candidates),
		Members:    orEmpty(s.Members),
		Actions:    orEmpty(s.Actions),
		Finances:   orEmpty(s.Finances),
		Warnings:   orEmpty(s.Warnings),
		Inventory:  orEmpty(s.Inventory),
		Logs:       orEmpty(s.Logs),
		Closed:     s.Closed,
		ExportedAt: c.timestamp(),
	}
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// importDoc keeps each key raw so absent keys can be told apart from empty
// ones.
type importDoc struct {
	Candidates json.RawMessage `json:"candidates"`
	Members    json.RawMessage `json:"members"`
	Actions    json.RawMessage `json:"actions"`
	Finances   json.RawMessage `json:"finances"`
	Warnings   json.RawMessage `json:"warnings"`
	Inventory  json.RawMessage `json:"inventory"`
	Logs       json.RawMessage `json:"logs"`
	Closed     json.RawMessage `json:"closed"`
}

// Import replaces each collection present in raw. The whole document is
// decoded before anything changes, so a malformed document leaves the state
// untouched. It returns the keys that were replaced.
func (c *Controller) Import(raw []byte) ([]string, error) {
	var doc importDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse import: %w", err)
	}

	var (
		next     State
		replaced []string
	)
	fields := []struct {
		key string
		raw json.RawMessage
		dst any
	}{
		{KeyCandidates, doc.Candidates, &next.Candidates},
		{KeyMembers, doc.Members, &next.Members},
		{KeyActions, doc.Actions, &next.Actions},
		{KeyFinances, doc.Finances, &next.Finances},
		{KeyWarnings, doc.Warnings, &next.Warnings},
		{KeyInventory, doc.Inventory, &next.Inventory},
		{KeyLogs, doc.Logs, &next.Logs},
		{KeyClosed, doc.Closed, &next.Closed},
	}
	for _, f := range fields {
		if !present(f.raw) {
			continue
		}
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return nil, fmt.Errorf("parse import %s: %w", f.key, err)
		}
		replaced = append(replaced, f.key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range replaced {
		switch key {
		case KeyCandidates:
			c.state.Candidates = next.Candidates
		case KeyMembers:
			c.state.Members = next.Members
		case KeyActions:
			c.state.Actions = next.Actions
		case KeyFinances:
			c.state.Finances = next.Finances
		case KeyWarnings:
			c.state.Warnings = next.Warnings
		case KeyInventory:
			c.state.Inventory = next.Inventory
		case KeyLogs:
			c.state.Logs = next.Logs
		case KeyClosed:
			c.state.Closed = next.Closed
		}
	}
	if len(c.state.Logs) > MaxLogs {
		c.state.Logs = c.state.Logs[:MaxLogs]
	}
	if len(replaced) > 0 {
		c.persistLocked()
	}
	return replaced, nil
}

// present treats an absent key and an explicit null the same way.
func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
