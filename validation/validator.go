package validation

import (
	"fmt"
	"strings"

	"github.com/kbukum/recoverykit/errors"
)

// RuleRequired is the rule recorded for a missing field.
const RuleRequired = "required"

// Validator collects field errors and folds them into one TypedError.
type Validator struct {
	errors []FieldError
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

func (v *Validator) add(field, rule, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Rule:    rule,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Validate returns a TypedError if there are validation errors, nil otherwise.
// Missing required fields take precedence when choosing the kind.
func (v *Validator) Validate() *errors.TypedError {
	if !v.HasErrors() {
		return nil
	}

	kind := errors.KindInvalidData
	messages := make([]string, len(v.errors))
	missing := make([]string, 0)
	for i, e := range v.errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
		if e.Rule == RuleRequired {
			kind = errors.KindMissingRequiredFields
			missing = append(missing, e.Field)
		}
	}

	te := errors.New(kind, strings.Join(messages, "; ")).
		WithDetail("fields", v.errors)
	if len(missing) > 0 {
		te.WithDetail("field", missing[0])
	}
	return te
}
