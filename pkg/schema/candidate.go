// Package schema defines the records shared by every part of Imperivm: the
// recruitment questionnaire, members and the dashboard ledgers.
package schema

// CandidateStatus is the review state of a recruitment dossier.
type CandidateStatus string

const (
	StatusPending  CandidateStatus = "PENDING"
	StatusApproved CandidateStatus = "APPROVED"
	StatusRejected CandidateStatus = "REJECTED"
)

// Profession is the operational specialty declared by a candidate.
type Profession string

const (
	ProfessionExecutor   Profession = "Executor (Combate)"
	ProfessionPilot      Profession = "Piloto (Fuga/Logística)"
	ProfessionHacker     Profession = "Hacker (Inteligência)"
	ProfessionNegotiator Profession = "Negociador (Diplomacia)"
	ProfessionChemist    Profession = "Químico (Produção)"
)

// Professions lists every accepted profession in display order.
var Professions = []Profession{
	ProfessionExecutor,
	ProfessionPilot,
	ProfessionHacker,
	ProfessionNegotiator,
	ProfessionChemist,
}

// Valid reports whether p is one of the fixed professions.
func (p Profession) Valid() bool {
	for _, known := range Professions {
		if p == known {
			return true
		}
	}
	return false
}

// Identification is step one of the questionnaire.
type Identification struct {
	Name        string `json:"name" validate:"required"`
	Age         string `json:"age" validate:"required,numeric"`
	Contact     string `json:"contact" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Nationality string `json:"nationality"`
	CivilStatus string `json:"civilStatus"`
	Children    string `json:"children"`
}

// Capabilities is step two of the questionnaire.
type Capabilities struct {
	Profession       Profession `json:"profession" validate:"required,profession"`
	SpecialSkills    string     `json:"specialSkills"`
	WorkHistory      string     `json:"workHistory"`
	AreasExperience  []string   `json:"areasExperience" validate:"omitempty,dive,oneof=Combate Armas Logística Hacking Diplomacia"`
	ProficiencyLevel string     `json:"proficiencyLevel" validate:"omitempty,oneof=1 2 3 4 5 6 7 8 9 10"`
	Certifications   string     `json:"certifications"`
}

// Ambition is step three of the questionnaire.
type Ambition struct {
	Motivation         string `json:"motivation" validate:"required"`
	OrgGoal            string `json:"orgGoal"`
	IllegalWillingness string `json:"illegalWillingness"`
	PersonalConflicts  string `json:"personalConflicts"`
	AmbitionLevel      string `json:"ambitionLevel" validate:"omitempty,oneof=Baixo Médio Alto Implacável"`
}

// Loyalty is step four of the questionnaire.
type Loyalty struct {
	LoyaltyLevel      string `json:"loyaltyLevel" validate:"omitempty,oneof=Parcial Total Absoluta"`
	RulesCommitment   string `json:"rulesCommitment"`
	SacrificeInterest string `json:"sacrificeInterest"`
	FamilyInOtherOrg  string `json:"familyInOtherOrg"`
	TestWillingness   string `json:"testWillingness"`
}

// Final is step five of the questionnaire.
type Final struct {
	HonorCode         string `json:"honorCode"`
	SecrecyCommitment string `json:"secrecyCommitment"`
	IrregularHours    string `json:"irregularHours"`
}

// Seal is the last step: the operational signature.
type Seal struct {
	Signature string `json:"signature" validate:"required"`
}

// Answers is the whole questionnaire. The embedded sections flatten into a
// single JSON object.
type Answers struct {
	Identification
	Capabilities
	Ambition
	Loyalty
	Final
	Seal
}

// Candidate is a submitted recruitment dossier. Only Status changes after
// submission.
type Candidate struct {
	ID string `json:"id"`
	Answers
	Date   string          `json:"date"`
	Status CandidateStatus `json:"status"`
}
