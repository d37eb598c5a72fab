// Package sanitize repairs malformed workout payloads so a failed write can be
// retried.
//
// Sanitize never mutates its input. It returns a deep copy in which
//
//   - every exercise has a positive set count, clamped to MaxSets, and reps,
//     weights and completed arrays of exactly that length,
//   - numeric fields are coerced (strings read in base 10), with empty
//     strings treated as null,
//   - missing order indexes and notes are defaulted, and
//   - workout-level fields (name, week/day index, flags, date, unit) are
//     defaulted.
//
// A workout without a programId is not repaired: Sanitize fails with a
// MISSING_REQUIRED_FIELDS error instead of inventing an owner.
package sanitize
