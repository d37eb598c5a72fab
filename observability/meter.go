package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/recoverykit/logger"
)

// Instrument names.
const (
	MetricAttempts = "recovery.attempts"
	MetricDuration = "recovery.duration"
	MetricActive   = "recovery.active"
	MetricRejected = "recovery.rejected"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider with an OTLP HTTP
// exporter and installs it globally. Shut the provider down on exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// RecoveryMetrics holds the instruments recorded by the recovery manager.
type RecoveryMetrics struct {
	attempts metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
	rejected metric.Int64Counter
}

// NewRecoveryMetrics creates the recovery instruments on meter.
func NewRecoveryMetrics(meter metric.Meter) (*RecoveryMetrics, error) {
	attempts, err := meter.Int64Counter(MetricAttempts,
		metric.WithDescription("Recover calls by kind, strategy and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricAttempts, err)
	}

	duration, err := meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Duration of recover calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricDuration, err)
	}

	active, err := meter.Int64UpDownCounter(MetricActive,
		metric.WithDescription("Number of recoveries in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s gauge: %w", MetricActive, err)
	}

	rejected, err := meter.Int64Counter(MetricRejected,
		metric.WithDescription("Recover calls rejected by the concurrency ceiling"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRejected, err)
	}

	return &RecoveryMetrics{
		attempts: attempts,
		duration: duration,
		active:   active,
		rejected: rejected,
	}, nil
}

// RecordStart increments the in-flight gauge.
func (m *RecoveryMetrics) RecordStart(ctx context.Context) {
	m.active.Add(ctx, 1)
}

// RecordEnd decrements the in-flight gauge and records the finished recovery.
func (m *RecoveryMetrics) RecordEnd(ctx context.Context, kind, strategy, outcome string, d time.Duration) {
	m.active.Add(ctx, -1)
	m.attempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrErrorKind, kind),
		attribute.String(AttrStrategy, strategy),
		attribute.String(AttrOutcome, outcome),
	))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String(AttrStrategy, strategy),
	))
}

// RecordRejected counts a call turned away by the concurrency ceiling.
func (m *RecoveryMetrics) RecordRejected(ctx context.Context, kind string) {
	m.rejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrErrorKind, kind),
	))
}
