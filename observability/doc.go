// Package observability provides OpenTelemetry tracing and metrics for the
// recovery engine.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("workouts"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &cfg)
//	defer mp.Shutdown(ctx)
//	metrics, err := observability.NewRecoveryMetrics(observability.Meter("workouts"))
//
// Each recover call is wrapped in a RecoveryScope which opens a
// "recovery.recover" span and records recovery.attempts, recovery.duration and
// recovery.active. Calls turned away by the concurrency ceiling are counted on
// recovery.rejected.
//
// Health checks:
//
//	health := observability.NewServiceHealth("workouts", "1.0.0")
//	health.AddComponent(cache.CheckHealth(ctx))
package observability
