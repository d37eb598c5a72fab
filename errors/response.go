package errors

import (
	stderrors "errors"
	"net/http"
)

// UserFacing is the display text a presentation layer shows for a kind.
type UserFacing struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Action  string `json:"action"`
}

var genericUserFacing = UserFacing{
	Title:   "Something went wrong",
	Message: "An unexpected error occurred.",
	Action:  "Please try again. If the problem persists, contact support.",
}

var userFacingText = map[Kind]UserFacing{
	KindCacheValidationFailed:    {"Data refresh needed", "Some saved data was out of date and is being refreshed.", "Please wait a moment and try again."},
	KindCacheTimeout:             {"Slow response", "Loading saved data took longer than expected.", "Please try again."},
	KindCacheCorruption:          {"Data refresh needed", "Some locally saved data was damaged and has been cleared.", "Reload the page to continue."},
	KindDuplicateConstraint:      {"Workout already logged", "A workout for this day already exists.", "Your changes will be applied to the existing workout."},
	KindForeignKeyViolation:      {"Missing program", "This workout refers to a program that no longer exists.", "Select a different program and try again."},
	KindCheckConstraint:          {"Invalid values", "Some of the values you entered are out of range.", "Review your entries and try again."},
	KindExerciseValidationFailed: {"Exercise data issue", "Some exercise entries were incomplete.", "Review your sets and reps, then save again."},
	KindExerciseOrderConflict:    {"Exercise order updated", "The order of your exercises was adjusted.", "Check the order and save again if needed."},
	KindExerciseUpsertFailed:     {"Could not save exercises", "Your exercises could not be saved.", "Please try again in a moment."},
	KindNetworkError:             {"Connection problem", "We could not reach the server.", "Check your internet connection and try again."},
	KindConnectionTimeout:        {"Connection timed out", "The server took too long to respond.", "Please try again."},
	KindServiceUnavailable:       {"Service unavailable", "The service is temporarily unavailable.", "Please try again in a few minutes."},
	KindRateLimitExceeded:        {"Too many requests", "You are making requests too quickly.", "Please wait a moment and try again."},
	KindInvalidData:              {"Invalid data", "Some of the information provided is not valid.", "Review your entries and try again."},
	KindMissingRequiredFields:    {"Missing information", "Some required information is missing.", "Fill in all required fields and try again."},
	KindDataTypeMismatch:         {"Invalid format", "Some values have the wrong format.", "Check numbers and dates, then try again."},
	KindDatabaseError:            {"Save failed", "A database error occurred.", "Please try again."},
	KindQueryTimeout:             {"Request timed out", "Loading your data took too long.", "Please try again."},
	KindTransactionFailed:        {"Save failed", "Your changes could not be saved together.", "Please try again."},
	KindUnauthorized:             {"Sign in required", "You need to sign in to continue.", "Sign in and try again."},
	KindForbidden:                {"Access denied", "You don't have permission to perform this action.", "Contact the program owner if you need access."},
	KindSessionExpired:           {"Session expired", "Your session has expired.", "Please sign in again."},
	KindMemoryLimitExceeded:      {"Out of memory", "The app ran out of memory.", "Close other tabs or apps and reload."},
	KindDiskSpaceFull:            {"Storage full", "There is not enough storage space to save your data.", "Free up some space and try again."},
}

// UserFacingFor returns the display text for k, or the generic text when the
// kind has none.
func UserFacingFor(k Kind) UserFacing {
	if uf, ok := userFacingText[k]; ok {
		return uf
	}
	return genericUserFacing
}

var httpStatuses = map[Family]int{
	FamilyCache:         http.StatusServiceUnavailable,
	FamilyConstraint:    http.StatusConflict,
	FamilyExercise:      http.StatusUnprocessableEntity,
	FamilyNetwork:       http.StatusServiceUnavailable,
	FamilyValidation:    http.StatusBadRequest,
	FamilyDatabase:      http.StatusInternalServerError,
	FamilyAuthorization: http.StatusUnauthorized,
	FamilyResource:      http.StatusInsufficientStorage,
	FamilyUnknown:       http.StatusInternalServerError,
}

// HTTPStatus returns the recommended HTTP status for the error's kind.
func (e *TypedError) HTTPStatus() int {
	switch e.Kind {
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimitExceeded:
		return http.StatusTooManyRequests
	case KindConnectionTimeout, KindQueryTimeout:
		return http.StatusGatewayTimeout
	}
	return httpStatuses[e.Kind.Family()]
}

// ErrorResponse is the JSON structure returned to clients.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the error details sent to clients.
type ErrorBody struct {
	ID          string         `json:"id"`
	Kind        Kind           `json:"kind"`
	Severity    Severity       `json:"severity"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	Action      string         `json:"action"`
	Recoverable bool           `json:"recoverable"`
	Retryable   bool           `json:"retryable"`
	Details     map[string]any `json:"details,omitempty"`
}

// ToResponse converts a TypedError to an ErrorResponse for JSON serialization.
// The message is the user-facing text, never the debug message.
func (e *TypedError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			ID:          e.ID,
			Kind:        e.Kind,
			Severity:    e.Severity,
			Title:       e.UserFacing.Title,
			Message:     e.UserFacing.Message,
			Action:      e.UserFacing.Action,
			Recoverable: e.Recoverable,
			Retryable:   e.Retryable,
			Details:     publicDetails(e.Details),
		},
	}
}

// publicDetails drops values that cannot be serialized, such as the
// capabilities callers place in recovery input.
func publicDetails(details map[string]any) map[string]any {
	if len(details) == 0 {
		return nil
	}
	out := make(map[string]any, len(details))
	for k, v := range details {
		switch v.(type) {
		case nil, string, bool, int, int64, float64, Kind, Severity, Strategy, UserFacing:
			out[k] = v
		}
	}
	return out
}

// IsTypedError checks if an error is a TypedError.
func IsTypedError(err error) bool {
	var te *TypedError
	return stderrors.As(err, &te)
}

// AsTypedError converts an error to a TypedError if possible.
func AsTypedError(err error) (*TypedError, bool) {
	var te *TypedError
	if stderrors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// IsKind reports whether err is a TypedError of kind k.
func IsKind(err error, k Kind) bool {
	te, ok := AsTypedError(err)
	return ok && te.Kind == k
}
