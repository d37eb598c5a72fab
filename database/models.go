package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel contains common fields for all database models. IDs are
// generated in Go so the schema stays portable across drivers.
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// BeforeCreate generates a UUID if not already set.
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// WorkoutLog is one logged training day. At most one row may exist per
// (user, program, week, day).
type WorkoutLog struct {
	BaseModel
	UserID     string           `json:"userId" gorm:"size:64;not null;uniqueIndex:unique_user_program_week_day,priority:1"`
	ProgramID  string           `json:"programId" gorm:"size:64;not null;uniqueIndex:unique_user_program_week_day,priority:2"`
	WeekIndex  int              `json:"weekIndex" gorm:"not null;uniqueIndex:unique_user_program_week_day,priority:3"`
	DayIndex   int              `json:"dayIndex" gorm:"not null;uniqueIndex:unique_user_program_week_day,priority:4"`
	Name       string           `json:"name" gorm:"size:255"`
	Date       string           `json:"date" gorm:"size:10"`
	IsFinished bool             `json:"isFinished"`
	IsDraft    bool             `json:"isDraft"`
	WeightUnit string           `json:"weightUnit" gorm:"size:8"`
	Exercises  []map[string]any `json:"exercises" gorm:"serializer:json"`
}

// TableName pins the table name used in constraint messages.
func (WorkoutLog) TableName() string { return "workout_logs" }

// Owner returns the id of the user the workout belongs to.
func (w *WorkoutLog) Owner() string { return w.UserID }

// workoutInput is the loosely typed payload accepted by the repository.
type workoutInput struct {
	UserID     string           `json:"userId" validate:"required"`
	ProgramID  string           `json:"programId" validate:"required"`
	WeekIndex  int              `json:"weekIndex" validate:"gte=0"`
	DayIndex   int              `json:"dayIndex" validate:"gte=0"`
	Name       string           `json:"name"`
	Date       string           `json:"date"`
	IsFinished bool             `json:"isFinished"`
	IsDraft    bool             `json:"isDraft"`
	WeightUnit string           `json:"weightUnit"`
	Exercises  []map[string]any `json:"exercises"`
}

func (in workoutInput) apply(w *WorkoutLog) {
	w.UserID = in.UserID
	w.ProgramID = in.ProgramID
	w.WeekIndex = in.WeekIndex
	w.DayIndex = in.DayIndex
	w.Name = in.Name
	w.Date = in.Date
	w.IsFinished = in.IsFinished
	w.IsDraft = in.IsDraft
	w.WeightUnit = in.WeightUnit
	w.Exercises = in.Exercises
}
