package database

import (
	stderrors "errors"
	"strings"

	"gorm.io/gorm"

	"github.com/kbukum/recoverykit/classify"
	"github.com/kbukum/recoverykit/errors"
)

// IsConnectionError checks if a database error is a connection error
// that might be resolved by retrying.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	patterns := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no route to host",
		"network is unreachable",
		"connection closed",
		"driver: bad connection",
		"database is closed",
	}
	for _, p := range patterns {
		if strings.Contains(errStr, p) {
			return true
		}
	}
	return false
}

// IsNotFoundError checks if the error is a GORM record-not-found error.
func IsNotFoundError(err error) bool {
	return stderrors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate matches translated and untranslated unique violations.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// translate rewrites driver errors into failures the classifier can place.
// A unique violation on workout_logs can only come from the natural key
// index, so it is reported against that constraint by name.
func translate(err error, operation string) error {
	switch {
	case err == nil:
		return nil
	case isDuplicate(err):
		return &classify.Failure{
			Code:          classify.CodeUniqueViolation,
			Name:          "UniqueViolation",
			Message:       `duplicate key value violates unique constraint "` + classify.DuplicateWorkoutConstraint + `"`,
			OperationHint: operation,
		}
	case IsConnectionError(err):
		return &classify.Failure{
			Name:          "NetworkError",
			Message:       "database connection lost: " + err.Error(),
			OperationHint: operation,
		}
	}
	if _, ok := errors.AsTypedError(err); ok {
		return err
	}
	return &classify.Failure{
		Name:          "DatabaseError",
		Message:       "database error: " + err.Error(),
		OperationHint: operation,
	}
}

// Classify turns a repository error into a TypedError tagged with operation.
func Classify(err error, operation string) *errors.TypedError {
	return classify.Classify(translate(err, operation), map[string]any{
		errors.DetailOperation: operation,
	})
}
