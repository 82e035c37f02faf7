// Package recruit implements the recruitment questionnaire: six ordered
// steps, each validated against its own required-field schema before the
// wizard may advance.
package recruit

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/celerix-dev/imperivm/pkg/schema"
)

var (
	// ErrIncomplete is wrapped by FieldError when a required field is empty.
	ErrIncomplete = errors.New("required field missing")
	// ErrInvalid is wrapped by FieldError when a field holds a value outside its set.
	ErrInvalid = errors.New("invalid field value")
	// ErrUnknownStep is returned for step numbers outside 1..len(Steps).
	ErrUnknownStep = errors.New("unknown step")
)

// FieldError names the first field that blocked a step.
type FieldError struct {
	Step  int    `json:"step"`
	Field string `json:"field"`
	Rule  string `json:"rule"`
	err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("step %d: %s: %s (%s)", e.Step, e.Field, e.err, e.Rule)
}

func (e *FieldError) Unwrap() error { return e.err }

// Field describes one questionnaire field of a step.
type Field struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// Step is one page of the questionnaire.
type Step struct {
	Index   int     `json:"index"`
	Title   string  `json:"title"`
	Fields  []Field `json:"fields"`
	section func(*schema.Answers) any
}

// Steps is the fixed order of the questionnaire.
var Steps = []Step{
	newStep(1, "Identificação Civil", func(a *schema.Answers) any { return a.Identification }),
	newStep(2, "Capacidades Operacionais", func(a *schema.Answers) any { return a.Capabilities }),
	newStep(3, "Ambição e Foco", func(a *schema.Answers) any { return a.Ambition }),
	newStep(4, "Protocolo de Lealdade", func(a *schema.Answers) any { return a.Loyalty }),
	newStep(5, "Disposições Finais", func(a *schema.Answers) any { return a.Final }),
	newStep(6, "Selamento do Pacto", func(a *schema.Answers) any { return a.Seal }),
}

func newStep(index int, title string, section func(*schema.Answers) any) Step {
	var zero schema.Answers
	t := reflect.TypeOf(section(&zero))
	fields := make([]Field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fields = append(fields, Field{
			Name:     jsonName(f),
			Required: strings.Contains(f.Tag.Get("validate"), "required"),
		})
	}
	return Step{Index: index, Title: title, Fields: fields, section: section}
}

var validate = mustValidator()

func mustValidator() *validator.Validate {
	v, err := newValidator()
	if err != nil {
		panic("recruit: validator initialization failed: " + err.Error())
	}
	return v
}

func newValidator() (*validator.Validate, error) {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	err := v.RegisterValidation("profession", func(fl validator.FieldLevel) bool {
		return schema.Profession(fl.Field().String()).Valid()
	})
	if err != nil {
		return nil, fmt.Errorf("register profession rule: %w", err)
	}
	return v, nil
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// ValidateStep checks one step of answers. It returns a *FieldError for the
// first failing field in declaration order.
func ValidateStep(step int, answers schema.Answers) error {
	if step < 1 || step > len(Steps) {
		return fmt.Errorf("%w: %d", ErrUnknownStep, step)
	}
	err := validate.Struct(Steps[step-1].section(&answers))
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	first := verrs[0]
	cause := ErrInvalid
	if first.Tag() == "required" {
		cause = ErrIncomplete
	}
	return &FieldError{Step: step, Field: first.Field(), Rule: first.Tag(), err: cause}
}

// ValidateAll checks every step in order and stops at the first failure.
func ValidateAll(answers schema.Answers) error {
	for _, s := range Steps {
		if err := ValidateStep(s.Index, answers); err != nil {
			return err
		}
	}
	return nil
}

// DefaultAnswers returns the questionnaire with its preselected options.
func DefaultAnswers() schema.Answers {
	var a schema.Answers
	a.Profession = schema.ProfessionExecutor
	a.AreasExperience = []string{}
	a.ProficiencyLevel = "5"
	a.AmbitionLevel = "Baixo"
	a.LoyaltyLevel = "Parcial"
	return a
}
