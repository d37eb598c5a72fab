package recovery

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/recoverykit/fallback"
	"github.com/kbukum/recoverykit/logger"
	"github.com/kbukum/recoverykit/observability"
	"github.com/kbukum/recoverykit/sanitize"
)

// DefaultMaxConcurrent is the default ceiling on recoveries in flight.
const DefaultMaxConcurrent = 10

// Option configures a Manager.
type Option func(*managerConfig)

type managerConfig struct {
	maxConcurrent int
	profiles      Profiles
	log           *logger.Logger
	metrics       *observability.RecoveryMetrics
	tracer        trace.Tracer
	sleep         func(ctx context.Context, d time.Duration) error
	rand          func() float64
	sanitizer     *sanitize.Sanitizer
	resolver      *fallback.Resolver
}

// WithMaxConcurrent sets the ceiling on concurrent recoveries.
func WithMaxConcurrent(n int) Option {
	return func(c *managerConfig) {
		if n > 0 {
			c.maxConcurrent = n
		}
	}
}

// WithProfileOverrides adjusts the built-in retry profiles.
func WithProfileOverrides(overrides map[string]ProfileOverride) Option {
	return func(c *managerConfig) {
		c.profiles = c.profiles.Merge(overrides)
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *managerConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics records recovery instruments on m.
func WithMetrics(m *observability.RecoveryMetrics) Option {
	return func(c *managerConfig) {
		c.metrics = m
	}
}

// WithTracer sets the tracer used for recovery spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *managerConfig) {
		c.tracer = t
	}
}

// WithSleep replaces the backoff sleep. It must return early with ctx.Err()
// when ctx is done.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *managerConfig) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// WithRand replaces the jitter source. It must return values in [0, 1).
func WithRand(rand func() float64) Option {
	return func(c *managerConfig) {
		if rand != nil {
			c.rand = rand
		}
	}
}

// WithSanitizer sets the sanitizer used by DATA_SANITIZATION.
func WithSanitizer(s *sanitize.Sanitizer) Option {
	return func(c *managerConfig) {
		if s != nil {
			c.sanitizer = s
		}
	}
}

// WithResolver sets the resolver used by FALLBACK.
func WithResolver(r *fallback.Resolver) Option {
	return func(c *managerConfig) {
		if r != nil {
			c.resolver = r
		}
	}
}
