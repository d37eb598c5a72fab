package logger

import (
	"time"
)

// Standard field key constants for structured logging.
const (
	FieldComponent     = "component"
	FieldOperation     = "operation"
	FieldError         = "error"
	FieldDuration      = "duration_ms"
	FieldErrorID       = "error_id"
	FieldErrorKind     = "error_kind"
	FieldSeverity      = "severity"
	FieldStrategy      = "strategy"
	FieldRecoveryID    = "recovery_id"
	FieldAttempt       = "attempt"
	FieldBackoff       = "backoff_ms"
	FieldOutcome       = "outcome"
	FieldActive        = "active_recoveries"
	FieldMaxConcurrent = "max_concurrent"
)

// Fields builds a map from alternating key-value pairs.
//
//	logger.Info("done", logger.Fields("op", "save", "id", 42))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for an operation that failed.
func ErrorFields(op string, err error) map[string]any {
	return map[string]any{
		FieldOperation: op,
		FieldError:     err.Error(),
	}
}

// RecoveryFields creates the fields every recovery log line carries. kind and
// strategy are accepted as fmt.Stringer-free strings so this package stays
// independent of the error taxonomy.
func RecoveryFields(recoveryID, kind, strategy string) map[string]any {
	return map[string]any{
		FieldRecoveryID: recoveryID,
		FieldErrorKind:  kind,
		FieldStrategy:   strategy,
	}
}

// MergeWithDuration adds a duration field to an existing map.
func MergeWithDuration(fields map[string]any, d time.Duration) map[string]any {
	if fields == nil {
		fields = make(map[string]any)
	}
	fields[FieldDuration] = d.Milliseconds()
	return fields
}

// MergeWithError adds an error field to an existing map.
func MergeWithError(fields map[string]any, err error) map[string]any {
	if fields == nil {
		fields = make(map[string]any)
	}
	if err != nil {
		fields[FieldError] = err.Error()
	}
	return fields
}
