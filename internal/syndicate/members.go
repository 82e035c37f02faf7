package syndicate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/celerix-dev/imperivm/pkg/schema"
)

// MemberPatch is a partial member update. Nil fields are left unchanged.
type MemberPatch struct {
	Name       *string              `json:"name,omitempty"`
	Role       *schema.Rank         `json:"role,omitempty"`
	Profession *schema.Profession   `json:"profession,omitempty"`
	Status     *schema.MemberStatus `json:"status,omitempty"`
	Points     *int                 `json:"points,omitempty"`
}

// Members lists members in enrollment order. A non-empty query keeps those
// whose name, role or profession contains it, ignoring case.
func (c *Controller) Members(query string) []schema.Member {
	c.mu.Lock()
	defer c.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return slices.Clone(c.state.Members)
	}
	var out []schema.Member
	for _, m := range c.state.Members {
		if strings.Contains(strings.ToLower(m.Name), q) ||
			strings.Contains(strings.ToLower(string(m.Role)), q) ||
			strings.Contains(strings.ToLower(string(m.Profession)), q) {
			out = append(out, m)
		}
	}
	return out
}

// Member returns one member.
func (c *Controller) Member(id string) (schema.Member, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.memberIndex(id)
	if i < 0 {
		return schema.Member{}, ErrNotFound
	}
	return c.state.Members[i], nil
}

func (c *Controller) memberIndex(id string) int {
	return slices.IndexFunc(c.state.Members, func(m schema.Member) bool { return m.ID == id })
}

// UpdateMember applies patch to one member.
func (c *Controller) UpdateMember(id string, patch MemberPatch) (schema.Member, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return schema.Member{}, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return schema.Member{}, fmt.Errorf("%w: unknown role %q", ErrInvalid, *patch.Role)
	}
	if patch.Profession != nil && !patch.Profession.Valid() {
		return schema.Member{}, fmt.Errorf("%w: unknown profession %q", ErrInvalid, *patch.Profession)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return schema.Member{}, fmt.Errorf("%w: unknown status %q", ErrInvalid, *patch.Status)
	}
	if patch.Points != nil && *patch.Points < 0 {
		return schema.Member{}, fmt.Errorf("%w: points must not be negative", ErrInvalid)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.memberIndex(id)
	if i < 0 {
		return schema.Member{}, ErrNotFound
	}
	m := &c.state.Members[i]
	if patch.Name != nil {
		m.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Role != nil {
		m.Role = *patch.Role
	}
	if patch.Profession != nil {
		m.Profession = *patch.Profession
	}
	if patch.Status != nil {
		m.Status = *patch.Status
	}
	if patch.Points != nil {
		m.Points = *patch.Points
	}
	c.logLocked(schema.LogInfo, "Membro atualizado: %s", m.Name)
	c.persistLocked()
	return *m, nil
}

// UpdateMemberPoints adds delta to a member's honor points, never going
// below zero.
func (c *Controller) UpdateMemberPoints(id string, delta int) (schema.Member, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.memberIndex(id)
	if i < 0 {
		return schema.Member{}, ErrNotFound
	}
	m := &c.state.Members[i]
	m.Points = max(0, m.Points+delta)
	c.logLocked(schema.LogInfo, "Pontos de %s ajustados em %+d", m.Name, delta)
	c.persistLocked()
	return *m, nil
}

// DeleteMember removes a member. Warnings and inventory assignments that
// reference it are kept as they are. The owner cannot be removed.
func (c *Controller) DeleteMember(id string) error {
	if id == schema.OwnerID {
		return ErrProtectedMember
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.memberIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	name := c.state.Members[i].Name
	c.state.Members = slices.Delete(c.state.Members, i, i+1)
	c.logLocked(schema.LogAlert, "Membro expulso: %s", name)
	c.persistLocked()
	return nil
}
