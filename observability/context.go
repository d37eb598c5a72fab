package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Recovery outcomes recorded on spans and metrics.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
)

// RecoveryScope tracks the span and metrics of one recover call.
type RecoveryScope struct {
	RecoveryID string
	Kind       string
	Strategy   string
	Operation  string
	StartTime  time.Time

	span    trace.Span
	metrics *RecoveryMetrics
}

// StartRecovery opens a recovery span on tracer and bumps the in-flight gauge.
// A nil tracer uses the global engine tracer; nil metrics skips recording.
func StartRecovery(ctx context.Context, tracer trace.Tracer, metrics *RecoveryMetrics, recoveryID, kind, strategy, operation string) (context.Context, *RecoveryScope) {
	if tracer == nil {
		tracer = Tracer(TracerName)
	}
	ctx, span := tracer.Start(ctx, SpanRecover, trace.WithAttributes(
		attribute.String(AttrRecoveryID, recoveryID),
		attribute.String(AttrErrorKind, kind),
		attribute.String(AttrStrategy, strategy),
	))
	if operation != "" {
		span.SetAttributes(attribute.String(AttrOperation, operation))
	}
	if metrics != nil {
		metrics.RecordStart(ctx)
	}
	return ctx, &RecoveryScope{
		RecoveryID: recoveryID,
		Kind:       kind,
		Strategy:   strategy,
		Operation:  operation,
		StartTime:  time.Now(),
		span:       span,
		metrics:    metrics,
	}
}

// End closes the span and records the outcome. attempts is the number of
// operation invocations made during the recovery.
func (s *RecoveryScope) End(ctx context.Context, attempts int, err error) {
	duration := time.Since(s.StartTime)
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
		s.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}

	s.span.SetAttributes(
		attribute.String(AttrOutcome, outcome),
		attribute.Int(AttrAttempts, attempts),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	s.span.End()

	if s.metrics != nil {
		s.metrics.RecordEnd(ctx, s.Kind, s.Strategy, outcome, duration)
	}
}

// Duration returns the elapsed time since the recovery started.
func (s *RecoveryScope) Duration() time.Duration {
	return time.Since(s.StartTime)
}
