// Package fallback substitutes an alternative code path when a write cannot
// succeed as requested.
//
// Two fallbacks are implemented:
//
//   - DUPLICATE_CONSTRAINT_VIOLATION: the row that already owns the natural
//     key (user, program, week, day) is looked up and updated with the new
//     payload instead of inserting a second one.
//   - EXERCISE_ORDER_CONFLICT: exercises are renumbered by position and the
//     operation is re-invoked once.
//
// Every other kind fails with ErrStrategyNotImplemented.
//
// Lookup and update are capabilities supplied by the caller in the operation
// input under "findExisting" and "updateExisting", either as values
// implementing ExistingFinder and ExistingUpdater or as plain functions with
// the same signatures:
//
//	input := map[string]any{
//	    "workoutData":  payload,
//	    "findExisting": repo, // implements ExistingFinder (and ExistingUpdater)
//	}
package fallback
