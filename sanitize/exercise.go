package sanitize

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// MaxSets bounds the set count of one exercise. Larger counts are clamped so
// a malformed value cannot size the per-set arrays.
const MaxSets = 100

// Exercise field names.
const (
	FieldSets       = "sets"
	FieldReps       = "reps"
	FieldWeights    = "weights"
	FieldCompleted  = "completed"
	FieldOrderIndex = "orderIndex"
	FieldNotes      = "notes"
)

// sanitizeExercises repairs each exercise. Entries that are not objects are
// rebuilt from defaults so positions stay stable.
func sanitizeExercises(items []any) []map[string]any {
	out := make([]map[string]any, len(items))
	for i, item := range items {
		ex, _ := item.(map[string]any)
		out[i] = sanitizeExercise(ex, i)
	}
	return out
}

func sanitizeExercise(in map[string]any, position int) map[string]any {
	ex := copyMap(in)
	if ex == nil {
		ex = make(map[string]any)
	}

	sets := 1
	if n, ok := toInt(ex[FieldSets]); ok && n > 0 {
		sets = min(n, MaxSets)
	}
	ex[FieldSets] = sets

	ex[FieldReps] = align(ex[FieldReps], sets, nil, func(v any) any {
		if n, ok := toInt(v); ok {
			return n
		}
		return nil
	})
	ex[FieldWeights] = align(ex[FieldWeights], sets, nil, func(v any) any {
		if f, ok := toFloat(v); ok {
			return f
		}
		return nil
	})
	ex[FieldCompleted] = align(ex[FieldCompleted], sets, false, func(v any) any {
		b, err := cast.ToBoolE(v)
		if v == nil || err != nil {
			return false
		}
		return b
	})

	if n, ok := toInt(ex[FieldOrderIndex]); ok {
		ex[FieldOrderIndex] = n
	} else {
		ex[FieldOrderIndex] = position
	}

	switch notes := ex[FieldNotes].(type) {
	case string:
	case nil:
		ex[FieldNotes] = ""
	default:
		ex[FieldNotes] = cast.ToString(notes)
	}

	return ex
}

// align coerces each element of raw and pads or truncates the result to
// exactly n entries.
func align(raw any, n int, pad any, coerce func(any) any) []any {
	items, _ := toSlice(raw)
	out := make([]any, n)
	for i := range out {
		if i < len(items) {
			out[i] = coerce(items[i])
		} else {
			out[i] = pad
		}
	}
	return out
}

// toInt coerces v to an int. nil, empty strings, unparseable values and
// floats outside the int range are reported as absent. Strings are read in
// base 10, so "010" is 10.
func toInt(v any) (int, bool) {
	if isBlank(v) {
		return 0, false
	}
	switch t := v.(type) {
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 0); err == nil {
			return int(n), true
		}
	case float32, float64:
	default:
		if n, err := cast.ToIntE(v); err == nil {
			return n, true
		}
	}
	f, ok := toFloat(v)
	if !ok || f >= math.MaxInt || f <= math.MinInt {
		return 0, false
	}
	return int(f), true
}

// toFloat coerces v to a finite float64.
func toFloat(v any) (float64, bool) {
	if isBlank(v) {
		return 0, false
	}
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
