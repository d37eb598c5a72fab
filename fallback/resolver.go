package fallback

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/recoverykit/errors"
	"github.com/kbukum/recoverykit/logger"
	"github.com/kbukum/recoverykit/observability"
	"github.com/kbukum/recoverykit/sanitize"
	"github.com/kbukum/recoverykit/validation"
)

// ErrStrategyNotImplemented is the cause of the error returned for kinds that
// are routed to fallback but have no resolver.
var ErrStrategyNotImplemented = stderrors.New("fallback strategy not implemented")

// Detail keys written by the resolver.
const (
	DetailStrategyNotImplemented = "strategyNotImplemented"
	DetailExistingRecordFound    = "existingRecordFound"
	DetailExistingRecordID       = "existingRecordId"
	DetailMissingCapability      = "missingCapability"
	DetailFallbackFailed         = "fallbackFailed"
	DetailFallbackApplied        = "fallbackApplied"
)

// Operation is the re-invocable write being recovered.
type Operation func(ctx context.Context, input map[string]any) (any, error)

// Resolver runs the fallback for a typed error.
type Resolver struct {
	log *logger.Logger
}

// NewResolver creates a Resolver. A nil logger discards output.
func NewResolver(log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{log: log.WithComponent("fallback")}
}

// Resolve runs the fallback registered for te.Kind. Every returned error is a
// *errors.TypedError: decisions made by the resolver keep te.Kind, while a
// failed re-invocation is reported as exhausted after one attempt.
func (r *Resolver) Resolve(ctx context.Context, te *errors.TypedError, op Operation, input map[string]any) (any, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanFallback)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrErrorKind, string(te.Kind))

	var (
		result any
		err    error
	)
	switch te.Kind {
	case errors.KindDuplicateConstraint:
		result, err = r.updateExisting(ctx, te, input)
	case errors.KindExerciseOrderConflict:
		result, err = r.renumberAndRetry(ctx, te, op, input)
	default:
		err = reject(te, "no fallback for "+string(te.Kind)).
			WithCause(ErrStrategyNotImplemented).
			WithDetail(DetailStrategyNotImplemented, true)
	}
	if err != nil {
		observability.SetSpanError(ctx, err)
	}
	return result, err
}

func (r *Resolver) updateExisting(ctx context.Context, te *errors.TypedError, input map[string]any) (any, error) {
	finder, updater := capabilities(input)
	if finder == nil {
		return nil, reject(te, "no existing-record lookup available").
			WithDetail(DetailMissingCapability, KeyFindExisting)
	}
	if updater == nil {
		return nil, reject(te, "no existing-record update available").
			WithDetail(DetailMissingCapability, KeyUpdateExisting)
	}

	key, err := naturalKey(input)
	if err != nil {
		return nil, reject(te, "natural key incomplete").WithCause(err)
	}

	id, found, err := finder.FindExisting(ctx, key)
	if err != nil {
		return nil, reject(te, "existing-record lookup failed").
			WithCause(err).
			WithDetail(DetailFallbackFailed, true)
	}
	if !found {
		// The unique violation was misclassified or the row was deleted
		// concurrently. Retrying the insert blindly is not safe.
		return nil, reject(te, "no existing record for natural key").
			WithDetails(key.Fields()).
			WithDetail(DetailExistingRecordFound, false)
	}

	r.log.Info("updating existing record instead of insert", logger.Fields(
		logger.FieldErrorID, te.ID,
		"existing_id", id,
	))

	result, err := updater.UpdateExisting(ctx, id, payload(input))
	if err != nil {
		return nil, errors.Exhausted(te, 1, err).
			WithDetail(DetailExistingRecordID, id)
	}
	return result, nil
}

func (r *Resolver) renumberAndRetry(ctx context.Context, te *errors.TypedError, op Operation, input map[string]any) (any, error) {
	renumbered, found := sanitize.RenumberExercises(input)
	if !found {
		return nil, reject(te, "no exercises to renumber")
	}

	r.log.Info("retrying with renumbered exercises", logger.Fields(logger.FieldErrorID, te.ID))

	result, err := op(ctx, renumbered)
	if err != nil {
		return nil, errors.Exhausted(te, 1, err)
	}
	return result, nil
}

// reject builds an error of te's kind carrying te's details and the
// fallback-specific message.
func reject(te *errors.TypedError, message string) *errors.TypedError {
	return errors.New(te.Kind, message).
		WithDetails(te.Details).
		WithDetail(errors.DetailOriginalErrorID, te.ID).
		WithDetail(DetailFallbackApplied, false)
}

// naturalKey reads the key from workoutData, letting top-level fields
// override it.
func naturalKey(input map[string]any) (NaturalKey, error) {
	fields := make(map[string]any, 4)
	if w, ok := input[sanitize.KeyWorkoutData].(map[string]any); ok {
		for _, k := range []string{"userId", "programId", "weekIndex", "dayIndex"} {
			if v, ok := w[k]; ok {
				fields[k] = v
			}
		}
	}
	for _, k := range []string{"userId", "programId", "weekIndex", "dayIndex"} {
		if v, ok := input[k]; ok {
			fields[k] = v
		}
	}

	var key NaturalKey
	if err := validation.Decode(fields, &key); err != nil {
		return NaturalKey{}, err
	}
	return key, nil
}

// payload is the record body handed to the updater: workoutData when present,
// otherwise the input without capabilities.
func payload(input map[string]any) map[string]any {
	if w, ok := input[sanitize.KeyWorkoutData].(map[string]any); ok {
		return w
	}
	out := make(map[string]any, len(input))
	for k, v := range input {
		if k == KeyFindExisting || k == KeyUpdateExisting {
			continue
		}
		out[k] = v
	}
	return out
}
