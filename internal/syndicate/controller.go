// Package syndicate owns the Imperivm collections and every mutation the
// dashboard and the recruitment form can request.
//
// A Controller is one logical writer: operations take its mutex, mutate the
// in-memory State, append an activity log line and hand the whole state to
// the store. Network calls run outside the lock.
package syndicate

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/celerix-dev/imperivm/internal/notify"
	"github.com/celerix-dev/imperivm/internal/oracle"
	"github.com/celerix-dev/imperivm/pkg/schema"
	"github.com/celerix-dev/imperivm/pkg/sdk"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyDecided is returned when approving or rejecting a candidate that is no longer pending.
	ErrAlreadyDecided = errors.New("candidate already decided")
	// ErrRecruitmentClosed is returned for submissions while recruitment is closed.
	ErrRecruitmentClosed = errors.New("recruitment is closed")
	// ErrProtectedMember is returned when trying to delete the owner.
	ErrProtectedMember = errors.New("member cannot be removed")
	// ErrEmptyPrompt is returned when the oracle is asked nothing.
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrInvalid wraps every field validation failure.
	ErrInvalid = errors.New("invalid record")
	// ErrUnknownKind is returned by Delete for an unknown collection kind.
	ErrUnknownKind = errors.New("unknown record kind")
)

// MaxLogs is the number of activity log lines kept.
const MaxLogs = 50

// State is the full set of collections.
type State struct {
	Candidates []schema.Candidate     `json:"candidates"`
	Members    []schema.Member        `json:"members"`
	Actions    []schema.RPAction      `json:"actions"`
	Finances   []schema.Transaction   `json:"finances"`
	Warnings   []schema.Warning       `json:"warnings"`
	Inventory  []schema.InventoryItem `json:"inventory"`
	Logs       []schema.SystemLog     `json:"logs"`
	Closed     bool                   `json:"closed"`
}

func (s State) clone() State {
	return State{
		Candidates: slices.Clone(s.Candidates),
		Members:    slices.Clone(s.Members),
		Actions:    slices.Clone(s.Actions),
		Finances:   slices.Clone(s.Finances),
		Warnings:   slices.Clone(s.Warnings),
		Inventory:  slices.Clone(s.Inventory),
		Logs:       slices.Clone(s.Logs),
		Closed:     s.Closed,
	}
}

// Options wires a Controller. Only Store is required.
type Options struct {
	Store     sdk.BucketStore
	Namespace string
	Notifier  notify.Notifier
	Oracle    oracle.Oracle
	Logger    *slog.Logger
}

// Controller serialises all reads and writes of the syndicate state.
type Controller struct {
	mu        sync.Mutex
	state     State
	loaded    bool
	store     sdk.BucketStore
	namespace string
	notifier  notify.Notifier
	oracle    oracle.Oracle
	logger    *slog.Logger

	// NewID and Now are replaceable for tests.
	NewID func() string
	Now   func() time.Time
}

// New builds a Controller. Call Load before serving requests.
func New(opts Options) *Controller {
	c := &Controller{
		store:     opts.Store,
		namespace: opts.Namespace,
		notifier:  opts.Notifier,
		oracle:    opts.Oracle,
		logger:    opts.Logger,
		NewID:     uuid.NewString,
		Now:       time.Now,
	}
	if c.namespace == "" {
		c.namespace = DefaultNamespace
	}
	if c.notifier == nil {
		c.notifier = notify.Nop{}
	}
	if c.oracle == nil {
		c.oracle = oracle.Disabled{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Owner returns the seeded owner record.
func (c *Controller) Owner() schema.Member {
	return schema.Member{
		ID:         schema.OwnerID,
		Name:       "Iago_SND",
		Role:       schema.RankSupremo,
		Profession: schema.ProfessionExecutor,
		Points:     99999,
		Status:     schema.MemberActive,
		JoinedAt:   c.timestamp(),
	}
}

// Load reads every collection from the store. A missing or unreadable key
// yields an empty collection; members fall back to the seeded owner. Load
// never fails.
func (c *Controller) Load() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Values set in this process come back as the stored slices themselves,
	// so every collection is cloned before the controller edits it in place.
	var s State
	s.Candidates = slices.Clone(loadKey[[]schema.Candidate](c, KeyCandidates))
	s.Actions = slices.Clone(loadKey[[]schema.RPAction](c, KeyActions))
	s.Finances = slices.Clone(loadKey[[]schema.Transaction](c, KeyFinances))
	s.Warnings = slices.Clone(loadKey[[]schema.Warning](c, KeyWarnings))
	s.Inventory = slices.Clone(loadKey[[]schema.InventoryItem](c, KeyInventory))
	s.Logs = slices.Clone(loadKey[[]schema.SystemLog](c, KeyLogs))
	s.Closed = loadKey[bool](c, KeyClosed)
	s.Members = slices.Clone(loadKey[[]schema.Member](c, KeyMembers))
	if s.Members == nil {
		s.Members = []schema.Member{c.Owner()}
	}
	if len(s.Logs) > MaxLogs {
		s.Logs = s.Logs[:MaxLogs]
	}

	c.state = s
	c.loaded = true
}

func loadKey[T any](c *Controller, key string) T {
	v, err := sdk.Get[T](c.store, c.namespace, CurrentVersion, key)
	if err != nil && !isMissingKey(err) {
		c.logger.Warn("discarding unreadable collection", "key", key, "error", err)
	}
	if err != nil {
		var zero T
		return zero
	}
	return v
}

func isMissingKey(err error) bool {
	return errors.Is(err, sdk.ErrNamespaceNotFound) || errors.Is(err, sdk.ErrBucketNotFound) || errors.Is(err, sdk.ErrKeyNotFound)
}

// Loaded reports whether Load has completed.
func (c *Controller) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// persistLocked writes every collection in one batch. Failures are logged;
// the in-memory state stays authoritative.
func (c *Controller) persistLocked() {
	if !c.loaded {
		return
	}
	s := c.state.clone()
	err := c.store.SetMany(c.namespace, CurrentVersion, map[string]any{
		KeyCandidates: s.Candidates,
		KeyMembers:    s.Members,
		KeyActions:    s.Actions,
		KeyFinances:   s.Finances,
		KeyWarnings:   s.Warnings,
		KeyInventory:  s.Inventory,
		KeyLogs:       s.Logs,
		KeyClosed:     s.Closed,
	})
	if err != nil {
		c.logger.Warn("persist state failed", "error", err)
	}
}

// State returns a copy of every collection.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Logs returns the activity log, newest first.
func (c *Controller) Logs() []schema.SystemLog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.state.Logs)
}

// logLocked prepends an entry and drops the oldest past MaxLogs.
func (c *Controller) logLocked(t schema.LogType, format string, args ...any) {
	entry := schema.SystemLog{
		ID:      c.NewID(),
		Message: fmt.Sprintf(format, args...),
		Date:    c.timestamp(),
		Type:    t,
	}
	logs := make([]schema.SystemLog, 0, min(len(c.state.Logs)+1, MaxLogs))
	logs = append(logs, entry)
	for _, l := range c.state.Logs {
		if len(logs) == MaxLogs {
			break
		}
		logs = append(logs, l)
	}
	c.state.Logs = logs
}

func (c *Controller) timestamp() string {
	return c.Now().UTC().Format(time.RFC3339)
}

// Balance is the sum of signed transactions plus action loot.
func (c *Controller) Balance() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return balance(c.state)
}

func balance(s State) int64 {
	var total int64
	for _, t := range s.Finances {
		total += t.Signed()
	}
	for _, a := range s.Actions {
		total += a.Loot
	}
	return total
}

// Stats is the dashboard overview.
type Stats struct {
	Members           int   `json:"members"`
	PendingCandidates int   `json:"pendingCandidates"`
	Balance           int64 `json:"balance"`
	Warnings          int   `json:"warnings"`
	HonorPoints       int   `json:"honorPoints"`
	InventoryUnits    int   `json:"inventoryUnits"`
	RecruitmentClosed bool  `json:"recruitmentClosed"`
}

// Stats computes the overview from the current state.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return stats(c.state)
}

func stats(s State) Stats {
	st := Stats{
		Members:           len(s.Members),
		Balance:           balance(s),
		Warnings:          len(s.Warnings),
		RecruitmentClosed: s.Closed,
	}
	for _, cand := range s.Candidates {
		if cand.Status == schema.StatusPending {
			st.PendingCandidates++
		}
	}
	for _, m := range s.Members {
		st.HonorPoints += m.Points
	}
	for _, item := range s.Inventory {
		st.InventoryUnits += item.Quantity
	}
	return st
}

// SetRecruitmentClosed opens or closes public submissions.
func (c *Controller) SetRecruitmentClosed(closed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Closed == closed {
		return
	}
	c.state.Closed = closed
	if closed {
		c.logLocked(schema.LogAlert, "Recrutamento encerrado")
	} else {
		c.logLocked(schema.LogInfo, "Recrutamento reaberto")
	}
	c.persistLocked()
}

// RecruitmentClosed reports whether submissions are refused.
func (c *Controller) RecruitmentClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Closed
}

// Reset returns every collection to its defaults.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{Members: []schema.Member{c.Owner()}}
	c.logLocked(schema.LogAlert, "Sistema reiniciado")
	c.persistLocked()
}
