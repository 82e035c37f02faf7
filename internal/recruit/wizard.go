package recruit

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/celerix-dev/imperivm/pkg/schema"
)

// ErrNotFinalStep is returned by Submit before the last step is reached.
var ErrNotFinalStep = errors.New("questionnaire is not on its final step")

// Wizard walks a candidate through the steps in order. It keeps answers in
// memory only; abandoning a wizard discards them.
type Wizard struct {
	step    int
	answers schema.Answers

	NewID func() string
	Now   func() time.Time
}

// NewWizard starts a questionnaire at step one with default answers.
func NewWizard() *Wizard {
	return &Wizard{
		step:    1,
		answers: DefaultAnswers(),
		NewID:   uuid.NewString,
		Now:     time.Now,
	}
}

// Step returns the current 1-based step.
func (w *Wizard) Step() int { return w.step }

// Final reports whether the wizard is on the signature step.
func (w *Wizard) Final() bool { return w.step == len(Steps) }

// Answers exposes the answers for filling in.
func (w *Wizard) Answers() *schema.Answers { return &w.answers }

// Next validates the current step and advances. On failure the wizard stays
// where it is and the error names the first missing field.
func (w *Wizard) Next() error {
	if w.Final() {
		return ErrNotFinalStep
	}
	if err := ValidateStep(w.step, w.answers); err != nil {
		return err
	}
	w.step++
	return nil
}

// Back returns to the previous step, keeping the answers.
func (w *Wizard) Back() {
	if w.step > 1 {
		w.step--
	}
}

// Submit validates the whole questionnaire and assembles a pending Candidate.
func (w *Wizard) Submit() (schema.Candidate, error) {
	if !w.Final() {
		return schema.Candidate{}, ErrNotFinalStep
	}
	if err := ValidateAll(w.answers); err != nil {
		return schema.Candidate{}, err
	}
	return Assemble(w.answers, w.NewID(), w.Now()), nil
}

// Complete validates answers submitted in one piece and assembles the
// Candidate with a fresh id and the current time.
func Complete(answers schema.Answers) (schema.Candidate, error) {
	if err := ValidateAll(answers); err != nil {
		return schema.Candidate{}, err
	}
	return Assemble(answers, uuid.NewString(), time.Now()), nil
}

// Assemble builds a pending Candidate from validated answers.
func Assemble(answers schema.Answers, id string, at time.Time) schema.Candidate {
	if answers.AreasExperience == nil {
		answers.AreasExperience = []string{}
	}
	return schema.Candidate{
		ID:      id,
		Answers: answers,
		Date:    at.UTC().Format(time.RFC3339),
		Status:  schema.StatusPending,
	}
}
