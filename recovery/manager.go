package recovery

import (
	"context"
	"maps"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/recoverykit/classify"
	"github.com/kbukum/recoverykit/errors"
	"github.com/kbukum/recoverykit/fallback"
	"github.com/kbukum/recoverykit/logger"
	"github.com/kbukum/recoverykit/observability"
	"github.com/kbukum/recoverykit/resilience"
	"github.com/kbukum/recoverykit/sanitize"
)

// Input keys read by the manager.
const (
	KeyCacheManager = "cacheManager"
	KeyCacheKey     = "cacheKey"

	FlagCacheCleanupPerformed = "cacheCleanupPerformed"
)

// Detail keys written by the manager.
const (
	DetailActiveRecoveries   = "activeRecoveries"
	DetailMaxConcurrent      = "maxConcurrentRecoveries"
	DetailRejected           = "rejected"
	DetailCacheKey           = "cacheKey"
	DetailSanitizationFailed = "sanitizationFailed"
)

// Operation is a re-invocable unit of work. The manager may call it several
// times with different inputs; the caller owns its idempotence.
type Operation func(ctx context.Context, input map[string]any) (any, error)

// CacheInvalidator drops a cache entry.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, key string) error
}

// CacheInvalidatorFunc adapts a function to CacheInvalidator.
type CacheInvalidatorFunc func(ctx context.Context, key string) error

// Invalidate calls f.
func (f CacheInvalidatorFunc) Invalidate(ctx context.Context, key string) error {
	return f(ctx, key)
}

// Manager orchestrates recoveries. It is safe for concurrent use; its state
// belongs to the instance.
type Manager struct {
	profiles  Profiles
	bulkhead  *resilience.Bulkhead
	sanitizer *sanitize.Sanitizer
	resolver  *fallback.Resolver
	log       *logger.Logger
	metrics   *observability.RecoveryMetrics
	tracer    trace.Tracer
	sleep     func(ctx context.Context, d time.Duration) error
	rand      func() float64

	// mu guards active and stats. It is never held across an operation
	// call, a backoff sleep or a cache invalidation.
	mu     sync.Mutex
	active map[string]AttemptRecord
	stats  Statistics
}

// New creates a Manager.
func New(opts ...Option) *Manager {
	cfg := &managerConfig{
		maxConcurrent: DefaultMaxConcurrent,
		profiles:      DefaultProfiles(),
		sleep:         resilience.SleepContext,
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.log == nil {
		cfg.log = logger.GetGlobalLogger()
	}
	log := cfg.log.WithComponent("recovery")
	if cfg.sanitizer == nil {
		cfg.sanitizer = sanitize.New()
	}
	if cfg.resolver == nil {
		cfg.resolver = fallback.NewResolver(cfg.log)
	}

	return &Manager{
		profiles:  cfg.profiles,
		bulkhead:  resilience.NewBulkhead(resilience.BulkheadConfig{Name: "recovery", MaxConcurrent: cfg.maxConcurrent}),
		sanitizer: cfg.sanitizer,
		resolver:  cfg.resolver,
		log:       log,
		metrics:   cfg.metrics,
		tracer:    cfg.tracer,
		sleep:     cfg.sleep,
		rand:      cfg.rand,
		active:    make(map[string]AttemptRecord),
		stats:     newStatistics(),
	}
}

// Recover runs the strategy attached to te. It returns the operation's result
// on success. On failure the returned error is always an *errors.TypedError,
// and its kind may differ from te.Kind: an exhausted retry is reported as
// UNKNOWN_ERROR carrying the original kind in its details.
func (m *Manager) Recover(ctx context.Context, te *errors.TypedError, op Operation, input map[string]any) (any, error) {
	if te == nil {
		return nil, errors.New(errors.KindUnknown, "recover called without an error")
	}
	if op == nil {
		return nil, te.Clone().WithDetail("missingOperation", true)
	}

	release, ok := m.bulkhead.TryAcquire()
	if !ok {
		return nil, m.reject(ctx, te)
	}
	defer release()

	rec := m.track(te, input)
	defer m.untrack(rec.ID)

	ctx, scope := observability.StartRecovery(ctx, m.tracer, m.metrics,
		rec.ID, string(te.Kind), string(te.Strategy), rec.Operation)

	var calls int
	counted := func(ctx context.Context, in map[string]any) (any, error) {
		calls++
		return op(ctx, in)
	}

	result, err := m.execute(ctx, te, counted, input)

	scope.End(ctx, calls, err)
	m.record(te, err == nil, false)
	m.logOutcome(rec, te, calls, scope.Duration(), err)

	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecoverFailure classifies err and recovers from it. A nil err means there
// is nothing to recover and returns (nil, nil).
func (m *Manager) RecoverFailure(ctx context.Context, err error, op Operation, input map[string]any) (any, error) {
	if err == nil {
		return nil, nil
	}
	var details map[string]any
	if name, ok := input[errors.DetailOperation]; ok {
		details = map[string]any{errors.DetailOperation: name}
	}
	return m.Recover(ctx, classify.Classify(err, details), op, input)
}

// Job is one independent recovery for RecoverAll.
type Job struct {
	Err   *errors.TypedError
	Op    Operation
	Input map[string]any
}

// Outcome is the result of one Job.
type Outcome struct {
	Result any
	Err    error
}

// RecoverAll runs jobs concurrently, at most the manager's ceiling at a time,
// and returns their outcomes in job order. One job failing does not stop the
// others.
func (m *Manager) RecoverAll(ctx context.Context, jobs []Job) []Outcome {
	out := make([]Outcome, len(jobs))

	var g errgroup.Group
	g.SetLimit(m.bulkhead.MaxConcurrent())
	for i, job := range jobs {
		g.Go(func() error {
			result, err := m.Recover(ctx, job.Err, job.Op, job.Input)
			out[i] = Outcome{Result: result, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Statistics returns a snapshot of the recovery statistics.
func (m *Manager) Statistics() Statistics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats.clone()
}

// ResetStatistics clears the recovery statistics.
func (m *Manager) ResetStatistics() {
	m.mu.Lock()
	m.stats = newStatistics()
	m.mu.Unlock()
}

// Plan returns the plan this manager applies to kind.
func (m *Manager) Plan(kind errors.Kind) Plan {
	return m.profiles.PlanFor(kind)
}

// MaxConcurrent returns the concurrency ceiling.
func (m *Manager) MaxConcurrent() int {
	return m.bulkhead.MaxConcurrent()
}

func (m *Manager) execute(ctx context.Context, te *errors.TypedError, op Operation, input map[string]any) (any, error) {
	switch te.Strategy {
	case errors.StrategyRetry:
		return m.retry(ctx, te, op, input)
	case errors.StrategyCacheCleanup:
		return m.cacheCleanup(ctx, te, op, input)
	case errors.StrategyDataSanitization:
		return m.sanitizeAndRetry(ctx, te, op, input)
	case errors.StrategyFallback:
		return m.resolver.Resolve(ctx, te, fallback.Operation(op), input)
	case errors.StrategyNoRecovery:
		return nil, te.Clone().WithDetail(errors.DetailTerminal, true)
	default:
		return nil, te.Clone().WithDetails(map[string]any{
			errors.DetailRequiresUserIntervention: true,
			errors.DetailUserFacing:               te.UserFacing,
		})
	}
}

func (m *Manager) retry(ctx context.Context, te *errors.TypedError, op Operation, input map[string]any) (any, error) {
	plan := m.profiles.PlanFor(te.Kind)
	jitter := 0.0
	if plan.Jitter {
		jitter = JitterFraction
	}

	attempts := 0
	result, err := resilience.Retry(ctx, resilience.RetryConfig{
		MaxAttempts:    max(plan.MaxRetries, 1),
		InitialBackoff: plan.BaseDelay,
		MaxBackoff:     plan.MaxDelay,
		BackoffFactor:  plan.BackoffMultiplier,
		Jitter:         jitter,
		Sleep:          m.sleep,
		Rand:           m.rand,
		// An operation's own deadline is a failed attempt like any other.
		// Only ctx ends the loop early, through Sleep.
		RetryIf: func(error) bool { return true },
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			m.log.Debug("retrying operation", logger.Fields(
				logger.FieldErrorID, te.ID,
				logger.FieldAttempt, attempt,
				logger.FieldBackoff, backoff.Milliseconds(),
				logger.FieldError, err.Error(),
			))
		},
	}, func(attempt int) (any, error) {
		attempts = attempt
		return op(ctx, input)
	})
	if err != nil {
		return nil, errors.Exhausted(te, attempts, err)
	}
	return result, nil
}

func (m *Manager) cacheCleanup(ctx context.Context, te *errors.TypedError, op Operation, input map[string]any) (any, error) {
	next := maps.Clone(input)
	if next == nil {
		next = make(map[string]any)
	}

	cache, _ := input[KeyCacheManager].(CacheInvalidator)
	key, _ := input[KeyCacheKey].(string)
	performed := false
	if cache != nil && key != "" {
		cctx, span := observability.StartSpan(ctx, observability.SpanCacheClean)
		err := cache.Invalidate(cctx, key)
		if err != nil {
			observability.SetSpanError(cctx, err)
		}
		span.End()
		if err != nil {
			return nil, errors.Wrap(errors.KindCacheCorruption, err, "cache cleanup failed: "+err.Error()).
				WithDetails(map[string]any{
					DetailCacheKey:               key,
					errors.DetailOriginalKind:    te.Kind,
					errors.DetailOriginalErrorID: te.ID,
				})
		}
		performed = true
	}
	next[FlagCacheCleanupPerformed] = performed

	result, err := op(ctx, next)
	if err != nil {
		return nil, errors.Exhausted(te, 1, err)
	}
	return result, nil
}

func (m *Manager) sanitizeAndRetry(ctx context.Context, te *errors.TypedError, op Operation, input map[string]any) (any, error) {
	clean, err := m.sanitizer.Sanitize(te.Kind, input)
	if err != nil {
		out := errors.InvalidData("sanitization failed: " + err.Error()).
			WithCause(err).
			WithDetails(map[string]any{
				DetailSanitizationFailed:     true,
				errors.DetailOriginalKind:    te.Kind,
				errors.DetailOriginalErrorID: te.ID,
			})
		if cause, ok := errors.AsTypedError(err); ok {
			if field, ok := cause.Detail("field"); ok {
				out.WithDetail("field", field)
			}
		}
		return nil, out
	}

	result, err := op(ctx, clean)
	if err != nil {
		return nil, errors.Exhausted(te, 1, err)
	}
	return result, nil
}

// reject fails a call that arrived at the ceiling. The operation is not run.
func (m *Manager) reject(ctx context.Context, te *errors.TypedError) error {
	active := m.bulkhead.InUse()
	limit := m.bulkhead.MaxConcurrent()

	m.record(te, false, true)
	if m.metrics != nil {
		m.metrics.RecordRejected(ctx, string(te.Kind))
	}
	m.log.Warn("recovery rejected at concurrency ceiling", logger.Fields(
		logger.FieldErrorID, te.ID,
		logger.FieldErrorKind, string(te.Kind),
		logger.FieldActive, active,
		logger.FieldMaxConcurrent, limit,
	))

	return errors.ServiceUnavailable("too many concurrent recoveries", map[string]any{
		DetailActiveRecoveries:       active,
		DetailMaxConcurrent:          limit,
		DetailRejected:               true,
		errors.DetailOriginalKind:    te.Kind,
		errors.DetailOriginalErrorID: te.ID,
	}).WithCause(te)
}

func (m *Manager) record(te *errors.TypedError, success, rejected bool) {
	m.mu.Lock()
	m.stats.record(te.Kind, te.Strategy, success, rejected)
	m.mu.Unlock()
}

func (m *Manager) logOutcome(rec AttemptRecord, te *errors.TypedError, calls int, d time.Duration, err error) {
	fields := logger.MergeWithDuration(logger.RecoveryFields(rec.ID, string(te.Kind), string(te.Strategy)), d)
	fields[logger.FieldErrorID] = te.ID
	fields[logger.FieldAttempt] = calls
	if rec.Operation != "" {
		fields[logger.FieldOperation] = rec.Operation
	}

	if err != nil {
		fields[logger.FieldOutcome] = observability.OutcomeFailure
		m.log.Warn("recovery failed", logger.MergeWithError(fields, err))
		return
	}
	fields[logger.FieldOutcome] = observability.OutcomeSuccess
	m.log.Info("recovery succeeded", fields)
}
