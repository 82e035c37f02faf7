package syndicate

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/celerix-dev/imperivm/pkg/schema"
)

// Points granted per proficiency level on approval.
const pointsPerLevel = 50

const defaultProficiency = 5

// SubmitCandidate stores a completed dossier. The notifier is called first,
// outside the lock, and its failure never blocks the submission.
func (c *Controller) SubmitCandidate(ctx context.Context, cand schema.Candidate) (schema.Candidate, error) {
	if c.RecruitmentClosed() {
		return schema.Candidate{}, ErrRecruitmentClosed
	}

	c.mu.Lock()
	if cand.ID == "" {
		cand.ID = c.NewID()
	}
	if cand.Date == "" {
		cand.Date = c.timestamp()
	}
	cand.Status = schema.StatusPending
	c.mu.Unlock()

	if err := c.notifier.NotifyNewCandidate(ctx, cand); err != nil {
		c.logger.Warn("candidate notification failed", "candidate", cand.ID, "error", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Closed {
		return schema.Candidate{}, ErrRecruitmentClosed
	}
	c.state.Candidates = append(c.state.Candidates, cand)
	c.logLocked(schema.LogInfo, "Novo dossiê recebido: %s", cand.Name)
	c.persistLocked()
	return cand, nil
}

// Candidates lists dossiers in submission order, optionally filtered by
// status.
func (c *Controller) Candidates(status schema.CandidateStatus) []schema.Candidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	if status == "" {
		return slices.Clone(c.state.Candidates)
	}
	var out []schema.Candidate
	for _, cand := range c.state.Candidates {
		if cand.Status == status {
			out = append(out, cand)
		}
	}
	return out
}

// Candidate returns one dossier.
func (c *Controller) Candidate(id string) (schema.Candidate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.candidateIndex(id)
	if i < 0 {
		return schema.Candidate{}, ErrNotFound
	}
	return c.state.Candidates[i], nil
}

func (c *Controller) candidateIndex(id string) int {
	return slices.IndexFunc(c.state.Candidates, func(cand schema.Candidate) bool { return cand.ID == id })
}

// ApproveCandidate marks a pending dossier APPROVED and enrolls a new
// Recruta built from it.
func (c *Controller) ApproveCandidate(id string) (schema.Member, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.candidateIndex(id)
	if i < 0 {
		return schema.Member{}, ErrNotFound
	}
	cand := &c.state.Candidates[i]
	if cand.Status != schema.StatusPending {
		return schema.Member{}, ErrAlreadyDecided
	}
	cand.Status = schema.StatusApproved

	m := schema.Member{
		ID:         c.NewID(),
		Name:       cand.Name,
		Role:       schema.RankRecruit,
		Profession: cand.Profession,
		Points:     ApprovalPoints(cand.ProficiencyLevel),
		Status:     schema.MemberActive,
		JoinedAt:   c.timestamp(),
	}
	c.state.Members = append(c.state.Members, m)
	c.logLocked(schema.LogSuccess, "Candidato aprovado: %s", cand.Name)
	c.persistLocked()
	return m, nil
}

// RejectCandidate marks a pending dossier REJECTED.
func (c *Controller) RejectCandidate(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.candidateIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	cand := &c.state.Candidates[i]
	if cand.Status != schema.StatusPending {
		return ErrAlreadyDecided
	}
	cand.Status = schema.StatusRejected
	c.logLocked(schema.LogAlert, "Candidato recusado: %s", cand.Name)
	c.persistLocked()
	return nil
}

// DeleteCandidate removes a dossier regardless of status.
func (c *Controller) DeleteCandidate(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.candidateIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	name := c.state.Candidates[i].Name
	c.state.Candidates = slices.Delete(c.state.Candidates, i, i+1)
	c.logLocked(schema.LogAlert, "Dossiê removido: %s", name)
	c.persistLocked()
	return nil
}

// ApprovalPoints converts a proficiency answer into starting honor points.
// Unparsable values count as 5 and the level is clamped to 1..10.
func ApprovalPoints(proficiency string) int {
	level, err := strconv.Atoi(strings.TrimSpace(proficiency))
	if err != nil {
		level = defaultProficiency
	}
	level = max(1, min(level, 10))
	return level * pointsPerLevel
}
