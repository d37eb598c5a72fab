package sanitize

// FlagExerciseOrderNormalized marks a payload whose exercises were renumbered.
const FlagExerciseOrderNormalized = "exerciseOrderNormalized"

// RenumberExercises returns a copy of input in which every exercise's
// orderIndex equals its position, both for top-level exercises and for
// exercises nested in workoutData. Renumbering is idempotent. The second
// result reports whether any exercise list was found.
func RenumberExercises(input map[string]any) (map[string]any, bool) {
	out := copyMap(input)
	if out == nil {
		return map[string]any{}, false
	}

	found := false
	if exs, ok := renumber(out[KeyExercises]); ok {
		out[KeyExercises] = exs
		found = true
	}
	if w, ok := out[KeyWorkoutData].(map[string]any); ok {
		if exs, ok := renumber(w[KeyExercises]); ok {
			w[KeyExercises] = exs
			found = true
		}
	}
	if found {
		out[FlagExerciseOrderNormalized] = true
	}
	return out, found
}

func renumber(raw any) ([]map[string]any, bool) {
	items, ok := toSlice(raw)
	if !ok {
		return nil, false
	}
	out := make([]map[string]any, len(items))
	for i, item := range items {
		ex, _ := item.(map[string]any)
		ex = copyMap(ex)
		if ex == nil {
			ex = make(map[string]any)
		}
		ex[FieldOrderIndex] = i
		out[i] = ex
	}
	return out, true
}
