package questiongen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks one candidate. Implementations are stateless and safe
// for concurrent use.
type Validator interface {
	Name() string
	Validate(c *Candidate) *ValidationError
}

// ValidationError describes why a candidate was rejected.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// StructuralValidator enforces the field rules declared on Candidate.
type StructuralValidator struct {
	v *validator.Validate
}

func NewStructuralValidator() *StructuralValidator {
	return &StructuralValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (s *StructuralValidator) Name() string { return "structural" }

func (s *StructuralValidator) Validate(c *Candidate) *ValidationError {
	err := s.v.Struct(c)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		f := fields[0]
		msg := fmt.Sprintf("%s failed %q", f.Field(), f.Tag())
		if f.Param() != "" {
			msg += " " + f.Param()
		}
		return &ValidationError{Validator: s.Name(), Message: msg}
	}
	return &ValidationError{Validator: s.Name(), Message: err.Error()}
}

// DistinctOptionsValidator rejects candidates whose options repeat after
// case and whitespace folding.
type DistinctOptionsValidator struct{}

func (DistinctOptionsValidator) Name() string { return "distinct-options" }

func (d DistinctOptionsValidator) Validate(c *Candidate) *ValidationError {
	seen := make(map[string]bool, 4)
	for i, opt := range c.Options() {
		key := normalizeText(opt)
		if seen[key] {
			return &ValidationError{
				Validator: d.Name(),
				Message:   fmt.Sprintf("option %c duplicates an earlier option", 'A'+i),
			}
		}
		seen[key] = true
	}
	return nil
}

func normalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
