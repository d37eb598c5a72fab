// Package classify turns arbitrary failures into *errors.TypedError values.
//
// Classification runs in two steps. Normalize adapts backend-specific error
// shapes (Postgres errors from pgx or lib/pq, gorm sentinels, JWT expiry,
// network timeouts) into a fixed Failure record. Decide then applies a
// priority-ordered decision table to that record and the operation name.
//
// Several branches of the table match substrings of human-readable messages
// ("timeout", "validation", "network"). This is brittle but intentional:
// tightening the matching would change which kind a failure lands in.
//
//	typed := classify.Classify(err, map[string]any{"operation": "upsert exercises"})
//	result, err := manager.Recover(ctx, typed, op, input)
package classify
