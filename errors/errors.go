package errors

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Detail keys written by the engine itself.
const (
	DetailOperation                = "operation"
	DetailOriginalKindName         = "originalKindName"
	DetailOriginalCode             = "originalCode"
	DetailClassification           = "classification"
	DetailRequiresUserIntervention = "requiresUserIntervention"
	DetailUserFacing               = "userFacing"
	DetailOriginalKind             = "originalKind"
	DetailOriginalErrorID          = "originalErrorId"
	DetailAttempts                 = "attempts"
	DetailLastError                = "lastError"
	DetailStrategy                 = "strategy"
	DetailRecoveryExhausted        = "recoveryExhausted"
	DetailTerminal                 = "terminal"
)

// TypedError is the enriched error value passed between the classifier and
// the recovery manager. Severity, Recoverable, Retryable, Strategy and
// UserFacing are derived from Kind at construction and never recomputed.
type TypedError struct {
	// ID identifies this instance for log correlation. It is not used for equality.
	ID string `json:"id"`
	// Kind is the taxonomy category.
	Kind Kind `json:"kind"`
	// Message is the human/debug message.
	Message string `json:"message"`
	// Details carries caller-supplied and engine-added metadata.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the triggering failure. It is kept for diagnostics only.
	Cause error `json:"-"`

	Severity    Severity   `json:"severity"`
	Recoverable bool       `json:"recoverable"`
	Retryable   bool       `json:"retryable"`
	Strategy    Strategy   `json:"recoveryStrategy"`
	UserFacing  UserFacing `json:"userFacing"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Error returns the string representation of the error.
func (e *TypedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *TypedError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *TypedError) WithCause(cause error) *TypedError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *TypedError) WithDetails(details map[string]any) *TypedError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *TypedError) WithDetail(key string, value any) *TypedError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Clone returns a copy of e with its own details map. The ID is kept: the
// clone is the same failure annotated further.
func (e *TypedError) Clone() *TypedError {
	c := *e
	c.Details = make(map[string]any, len(e.Details))
	for k, v := range e.Details {
		c.Details[k] = v
	}
	return &c
}

// Detail returns the detail stored under key.
func (e *TypedError) Detail(key string) (any, bool) {
	v, ok := e.Details[key]
	return v, ok
}

// New creates a TypedError of the given kind. Kinds outside the taxonomy are
// recorded as KindUnknown so every derived table stays total.
func New(kind Kind, message string) *TypedError {
	if !kind.Valid() {
		kind = KindUnknown
	}
	now := time.Now()
	return &TypedError{
		ID:          newID(now),
		Kind:        kind,
		Message:     message,
		Details:     make(map[string]any),
		Severity:    SeverityOf(kind),
		Recoverable: IsRecoverable(kind),
		Retryable:   IsRetryable(kind),
		Strategy:    StrategyOf(kind),
		UserFacing:  UserFacingFor(kind),
		CreatedAt:   now,
	}
}

// Newf creates a TypedError with a formatted message.
func Newf(kind Kind, format string, args ...any) *TypedError {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap creates a TypedError of the given kind around cause. The cause message
// is used when message is empty.
func Wrap(kind Kind, cause error, message string) *TypedError {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return New(kind, message).WithCause(cause)
}

// newID returns a ULID: a millisecond timestamp followed by a random suffix.
func newID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

// --- Common constructors ---

// ServiceUnavailable reports that the engine or a collaborator is saturated.
func ServiceUnavailable(message string, details map[string]any) *TypedError {
	return New(KindServiceUnavailable, message).WithDetails(details)
}

// InvalidData reports input that could not be repaired.
func InvalidData(message string) *TypedError {
	return New(KindInvalidData, message)
}

// MissingField reports a required field that cannot be defaulted.
func MissingField(field string) *TypedError {
	return New(KindMissingRequiredFields, fmt.Sprintf("Missing required field: %s", field)).
		WithDetail("field", field)
}

// Exhausted reports that recovery of original gave up after attempts
// invocations. The result is an UNKNOWN_ERROR whose cause is original; the
// original kind and id are kept in details for diagnosis.
func Exhausted(original *TypedError, attempts int, last error) *TypedError {
	lastMsg := ""
	if last != nil {
		lastMsg = last.Error()
	}
	te := Newf(KindUnknown, "recovery failed after %d attempt(s): %s", attempts, lastMsg).
		WithCause(original).
		WithDetails(map[string]any{
			DetailAttempts:          attempts,
			DetailLastError:         lastMsg,
			DetailRecoveryExhausted: true,
		})
	if original != nil {
		te.WithDetails(map[string]any{
			DetailOriginalKind:    original.Kind,
			DetailOriginalErrorID: original.ID,
			DetailStrategy:        original.Strategy,
		})
		if op, ok := original.Details[DetailOperation]; ok {
			te.WithDetail(DetailOperation, op)
		}
	}
	return te
}

// Unknown wraps an unclassified failure.
func Unknown(cause error) *TypedError {
	return Wrap(KindUnknown, cause, "")
}
