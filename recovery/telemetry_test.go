package recovery

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/recoverykit/errors"
	"github.com/kbukum/recoverykit/observability"
)

func TestRecover_EmitsSpansAndMetrics(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())
	metrics, err := observability.NewRecoveryMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}

	m, _ := newTestManager(WithTracer(tp.Tracer("test")), WithMetrics(metrics), WithMaxConcurrent(1))
	ok := func(context.Context, map[string]any) (any, error) { return "ok", nil }

	if _, err := m.Recover(context.Background(), errors.New(errors.KindNetworkError, "x"), ok, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Name != observability.SpanRecover {
		t.Fatalf("expected one %s span, got %v", observability.SpanRecover, spans)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			if metric.Name != observability.MetricAttempts {
				continue
			}
			sum := metric.Data.(metricdata.Sum[int64])
			if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
				t.Errorf("unexpected attempts data %+v", sum.DataPoints)
			}
			found = true
		}
	}
	if !found {
		t.Errorf("expected %s to be recorded", observability.MetricAttempts)
	}
}
