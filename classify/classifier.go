package classify

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/kbukum/recoverykit/errors"
)

// DuplicateWorkoutConstraint is the unique constraint enforcing one workout
// log per (user, program, week, day).
const DuplicateWorkoutConstraint = "unique_user_program_week_day"

// ClassificationAuto marks details added by Classify.
const ClassificationAuto = "auto"

// Classify maps err and the caller details to a TypedError. A TypedError
// anywhere in err's chain is returned unchanged. Classify returns nil for a
// nil error and never panics on unknown shapes.
func Classify(err error, details map[string]any) *errors.TypedError {
	if err == nil {
		return nil
	}
	if te, ok := errors.AsTypedError(err); ok {
		return te
	}

	f := Normalize(err)
	if f.OperationHint == "" {
		if op, ok := details[errors.DetailOperation].(string); ok {
			f.OperationHint = op
		}
	}

	message := f.Message
	if message == "" {
		message = "Unknown error"
	}

	te := errors.New(Decide(f), message).WithCause(err)
	te.WithDetails(details)
	te.WithDetails(map[string]any{
		errors.DetailOriginalKindName: f.Name,
		errors.DetailOriginalCode:     f.Code,
		errors.DetailClassification:   ClassificationAuto,
	})
	return te
}

// Decide applies the decision table to a normalized failure. The checks run
// in priority order and the first match wins.
func Decide(f Failure) errors.Kind {
	msg := strings.ToLower(f.Message)
	name := strings.ToLower(f.Name)
	op := strings.ToLower(f.OperationHint)

	// 1. structured constraint codes
	switch f.Code {
	case CodeUniqueViolation:
		if strings.Contains(msg, DuplicateWorkoutConstraint) {
			return errors.KindDuplicateConstraint
		}
		return errors.KindCheckConstraint
	case CodeForeignKeyViolation:
		return errors.KindForeignKeyViolation
	case CodeCheckViolation:
		return errors.KindCheckConstraint
	}

	// 2. status and name signals
	if name == "tokenexpirederror" || strings.EqualFold(f.Code, string(errors.KindSessionExpired)) {
		return errors.KindSessionExpired
	}
	switch f.Status {
	case http.StatusUnauthorized:
		return errors.KindUnauthorized
	case http.StatusForbidden:
		return errors.KindForbidden
	case http.StatusTooManyRequests:
		return errors.KindRateLimitExceeded
	case http.StatusServiceUnavailable:
		return errors.KindServiceUnavailable
	}
	if strings.Contains(name, "timeout") || strings.Contains(msg, "timeout") {
		return errors.KindConnectionTimeout
	}
	if name == "networkerror" || containsAny(msg, "network", "fetch", "connection") {
		return errors.KindNetworkError
	}

	// 3. operation keywords
	if strings.Contains(op, "cache") {
		switch {
		case containsAny(msg, "validation", "invalid"):
			return errors.KindCacheValidationFailed
		case strings.Contains(msg, "timeout"):
			return errors.KindCacheTimeout
		default:
			return errors.KindCacheCorruption
		}
	}
	if containsAny(op, "exercise", "upsert") {
		switch {
		case containsAny(msg, "validation", "invalid"):
			return errors.KindExerciseValidationFailed
		case containsAny(msg, "order", "conflict"):
			return errors.KindExerciseOrderConflict
		default:
			return errors.KindExerciseUpsertFailed
		}
	}

	// 4. generic validation and database keywords
	if containsAny(msg, "invalid", "validation") {
		switch {
		case containsAny(msg, "required", "missing"):
			return errors.KindMissingRequiredFields
		case strings.Contains(msg, "type"):
			return errors.KindDataTypeMismatch
		default:
			return errors.KindInvalidData
		}
	}
	if isSQLCode(f.Code) || containsAny(msg, "database", "sql") {
		switch {
		case strings.Contains(msg, "timeout"):
			return errors.KindQueryTimeout
		case strings.Contains(msg, "transaction"):
			return errors.KindTransactionFailed
		default:
			return errors.KindDatabaseError
		}
	}

	// 5. resource exhaustion
	if containsAny(msg, "memory", "heap") {
		return errors.KindMemoryLimitExceeded
	}
	if containsAny(msg, "disk", "space") {
		return errors.KindDiskSpaceFull
	}

	return errors.KindUnknown
}

// isSQLCode reports whether code looks like a SQLSTATE or PostgREST code.
func isSQLCode(code string) bool {
	if strings.HasPrefix(code, "PGRST") {
		return true
	}
	if len(code) != 5 || !unicode.IsDigit(rune(code[0])) {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
