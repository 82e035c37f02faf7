package schema

// Rank is a member's position in the hierarchy.
type Rank string

const (
	RankSupremo    Rank = "Don Supremo"
	RankSubDon     Rank = "Sub-Don"
	RankAdvisor    Rank = "Conselheiro"
	RankCaptain    Rank = "Capitão"
	RankLieutenant Rank = "Tenente"
	RankSoldier    Rank = "Soldado"
	RankRecruit    Rank = "Recruta"
	RankAssociate  Rank = "Associado"
	RankRetired    Rank = "Afastado"
)

// Ranks lists the hierarchy from top to bottom.
var Ranks = []Rank{
	RankSupremo, RankSubDon, RankAdvisor, RankCaptain, RankLieutenant,
	RankSoldier, RankRecruit, RankAssociate, RankRetired,
}

// Valid reports whether r is one of the fixed ranks.
func (r Rank) Valid() bool {
	for _, known := range Ranks {
		if r == known {
			return true
		}
	}
	return false
}

// MemberStatus is the duty state of a member.
type MemberStatus string

const (
	MemberActive   MemberStatus = "Ativo"
	MemberInactive MemberStatus = "Inativo"
	MemberReserve  MemberStatus = "Reserva"
)

// Valid reports whether s is a known member status.
func (s MemberStatus) Valid() bool {
	switch s {
	case MemberActive, MemberInactive, MemberReserve:
		return true
	}
	return false
}

// Member is an accepted participant.
type Member struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Role       Rank         `json:"role"`
	Profession Profession   `json:"profession"`
	Points     int          `json:"points"`
	Status     MemberStatus `json:"status"`
	JoinedAt   string       `json:"joinedAt"`
}

// OwnerID is the id of the seeded Don Supremo record.
const OwnerID = "owner-01"

// Identity is an authenticated admin session.
type Identity struct {
	Name string `json:"name"`
	Role Rank   `json:"role"`
}

// IsSupremo reports whether the identity holds the top rank.
func (i Identity) IsSupremo() bool {
	return i.Role == RankSupremo
}
