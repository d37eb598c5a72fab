package sanitize

import (
	"time"

	"github.com/kbukum/recoverykit/errors"
)

// Payload keys read and written by the sanitizer.
const (
	KeyExercises   = "exercises"
	KeyWorkoutData = "workoutData"

	FlagDataSanitized = "dataSanitized"
	FlagSanitizedFor  = "sanitizedFor"
)

// DateLayout is the calendar date format used for defaulted workout dates.
const DateLayout = "2006-01-02"

// Sanitizer repairs operation payloads.
type Sanitizer struct {
	now func() time.Time
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithClock sets the clock used to default workout dates.
func WithClock(now func() time.Time) Option {
	return func(s *Sanitizer) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Sanitizer.
func New(opts ...Option) *Sanitizer {
	s := &Sanitizer{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sanitize returns a repaired copy of input. The kind that triggered the
// repair is recorded under "sanitizedFor".
func (s *Sanitizer) Sanitize(kind errors.Kind, input map[string]any) (map[string]any, error) {
	out := copyMap(input)
	if out == nil {
		out = make(map[string]any)
	}

	if raw, ok := out[KeyWorkoutData]; ok && raw != nil {
		data, ok := raw.(map[string]any)
		if !ok {
			return nil, errors.New(errors.KindDataTypeMismatch, "workoutData must be an object").
				WithDetail("field", KeyWorkoutData)
		}
		workout, err := s.sanitizeWorkout(data)
		if err != nil {
			return nil, err
		}
		out[KeyWorkoutData] = workout
	}

	if raw, ok := out[KeyExercises]; ok && raw != nil {
		items, ok := toSlice(raw)
		if !ok {
			return nil, errors.New(errors.KindDataTypeMismatch, "exercises must be a list").
				WithDetail("field", KeyExercises)
		}
		out[KeyExercises] = sanitizeExercises(items)
	}

	out[FlagDataSanitized] = true
	out[FlagSanitizedFor] = string(kind)
	return out, nil
}

var defaultSanitizer = New()

// Sanitize repairs input with the default sanitizer.
func Sanitize(kind errors.Kind, input map[string]any) (map[string]any, error) {
	return defaultSanitizer.Sanitize(kind, input)
}
