package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/kbukum/recoverykit/errors"
	"github.com/kbukum/recoverykit/fallback"
	"github.com/kbukum/recoverykit/logger"
	"github.com/kbukum/recoverykit/sanitize"
	"github.com/kbukum/recoverykit/validation"
)

// Operation names reported with repository failures.
const (
	OpCreateWorkout = "create workout log"
	OpFindWorkout   = "find workout log"
	OpUpdateWorkout = "update workout log"
)

// WorkoutRepository stores workout logs. It satisfies
// fallback.ExistingFinder and fallback.ExistingUpdater.
type WorkoutRepository struct {
	db  *DB
	log *logger.Logger
}

var (
	_ fallback.ExistingFinder  = (*WorkoutRepository)(nil)
	_ fallback.ExistingUpdater = (*WorkoutRepository)(nil)
)

// NewWorkoutRepository creates a repository on db.
func NewWorkoutRepository(db *DB) *WorkoutRepository {
	return &WorkoutRepository{db: db, log: db.log.WithComponent("workout_repository")}
}

// Create inserts the workout described by input. The payload is read from
// input["workoutData"] when present, otherwise from input itself, so Create
// can be handed to the recovery manager as its operation.
func (r *WorkoutRepository) Create(ctx context.Context, input map[string]any) (any, error) {
	var in workoutInput
	if err := validation.Decode(payload(input), &in); err != nil {
		return nil, err
	}

	var row WorkoutLog
	in.apply(&row)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, translate(err, OpCreateWorkout)
	}

	r.log.Debug("Workout log created", logger.Fields("id", row.ID, "user_id", row.UserID))
	return &row, nil
}

// Get loads a workout log by id. A missing row is (nil, nil).
func (r *WorkoutRepository) Get(ctx context.Context, id string) (*WorkoutLog, error) {
	var row WorkoutLog
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	switch {
	case IsNotFoundError(err):
		return nil, nil
	case err != nil:
		return nil, translate(err, OpFindWorkout)
	}
	return &row, nil
}

// FindExisting returns the id of the row owning key.
func (r *WorkoutRepository) FindExisting(ctx context.Context, key fallback.NaturalKey) (string, bool, error) {
	var row WorkoutLog
	err := r.db.WithContext(ctx).
		Select("id").
		Where("user_id = ? AND program_id = ? AND week_index = ? AND day_index = ?",
			key.UserID, key.ProgramID, key.WeekIndex, key.DayIndex).
		Take(&row).Error
	switch {
	case IsNotFoundError(err):
		return "", false, nil
	case err != nil:
		return "", false, translate(err, OpFindWorkout)
	}
	return row.ID, true, nil
}

// UpdateExisting overwrites the mutable fields of row id with payload. The
// natural key columns are left untouched.
func (r *WorkoutRepository) UpdateExisting(ctx context.Context, id string, input map[string]any) (any, error) {
	var in workoutInput
	if err := validation.Decode(payload(input), &in); err != nil {
		return nil, err
	}

	var row WorkoutLog
	err := r.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&row, "id = ?", id).Error; err != nil {
			return err
		}
		in.UserID, in.ProgramID = row.UserID, row.ProgramID
		in.WeekIndex, in.DayIndex = row.WeekIndex, row.DayIndex
		in.apply(&row)
		return tx.Save(&row).Error
	})
	if err != nil {
		if IsNotFoundError(err) {
			return nil, errors.Newf(errors.KindDatabaseError, "workout log %s not found", id).
				WithCause(err).
				WithDetail(errors.DetailOperation, OpUpdateWorkout)
		}
		return nil, translate(err, OpUpdateWorkout)
	}

	r.log.Info("Workout log updated", logger.Fields("id", row.ID, logger.FieldOperation, OpUpdateWorkout))
	return &row, nil
}

func payload(input map[string]any) map[string]any {
	if wd, ok := input[sanitize.KeyWorkoutData].(map[string]any); ok {
		return wd
	}
	return input
}
