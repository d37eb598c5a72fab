// Package recovery executes the recovery policy attached to a typed error.
//
// StrategyFor is a pure lookup from error kind to a Plan: one of the six
// strategies plus retry tuning taken from a named profile (default, network,
// cache, database). A Manager runs the plan against a re-invocable Operation:
//
//	m := recovery.New(recovery.WithMaxConcurrent(10))
//	result, err := m.Recover(ctx, te, saveWorkout, map[string]any{
//	    "operation":   "saveWorkout",
//	    "workoutData": payload,
//	})
//
// The manager caps concurrent recoveries. A call arriving at the ceiling
// fails at once with SERVICE_UNAVAILABLE; nothing is queued. Outcomes are
// counted once per Recover call in Statistics.
//
// The manager sets no timeout of its own. An operation that never returns
// holds its slot until the caller cancels ctx.
package recovery
