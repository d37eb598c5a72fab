// Package validation checks loosely typed workout records before they are
// retried.
//
// It supports struct tag validation (using the validator library) and decoding
// of map[string]any payloads into typed records. Every failure is returned as
// an *errors.TypedError so the recovery engine can route it.
//
// # Struct Tag Validation
//
//	type Workout struct {
//	    ProgramID string `json:"programId" validate:"required"`
//	}
//	err := validation.Decode(payload, &w)
package validation
