package sanitize

import (
	"github.com/kbukum/recoverykit/validation"
)

// Workout field names.
const (
	FieldProgramID  = "programId"
	FieldUserID     = "userId"
	FieldName       = "name"
	FieldWeekIndex  = "weekIndex"
	FieldDayIndex   = "dayIndex"
	FieldIsFinished = "isFinished"
	FieldIsDraft    = "isDraft"
	FieldDate       = "date"
	FieldWeightUnit = "weightUnit"
)

// Workout defaults.
const (
	DefaultWorkoutName = "Workout"
	DefaultWeightUnit  = "kg"
)

// ownerRef holds the cross-entity references a workout cannot be saved
// without.
type ownerRef struct {
	ProgramID string `json:"programId" validate:"required"`
	UserID    string `json:"userId"`
}

func (s *Sanitizer) sanitizeWorkout(in map[string]any) (map[string]any, error) {
	var ref ownerRef
	if err := validation.Decode(in, &ref); err != nil {
		return nil, err
	}

	w := copyMap(in)

	if name, ok := w[FieldName].(string); !ok || name == "" {
		w[FieldName] = DefaultWorkoutName
	}
	for _, key := range []string{FieldWeekIndex, FieldDayIndex} {
		if n, ok := toInt(w[key]); ok && n >= 0 {
			w[key] = n
		} else {
			w[key] = 0
		}
	}
	for _, key := range []string{FieldIsFinished, FieldIsDraft} {
		if _, ok := w[key].(bool); !ok {
			w[key] = false
		}
	}
	if date, ok := w[FieldDate].(string); !ok || date == "" {
		w[FieldDate] = s.now().Format(DateLayout)
	}
	if unit, ok := w[FieldWeightUnit].(string); !ok || unit == "" {
		w[FieldWeightUnit] = DefaultWeightUnit
	}

	if raw, ok := w[KeyExercises]; ok && raw != nil {
		if items, ok := toSlice(raw); ok {
			w[KeyExercises] = sanitizeExercises(items)
		}
	}

	return w, nil
}
