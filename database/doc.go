// Package database persists workout logs with GORM and exposes them as the
// duplicate-key fallback capabilities.
//
// A DB wraps a *gorm.DB opened with TranslateError enabled so driver
// constraint errors surface as gorm sentinels. WorkoutRepository turns those
// sentinels into structured failures that the classifier understands:
//
//	db, err := database.OpenSQLite(ctx, cfg, log)
//	repo := database.NewWorkoutRepository(db)
//
//	_, err = repo.Create(ctx, input)
//	if err != nil {
//	    result, rerr := manager.RecoverFailure(ctx, err, "create workout log", repo.Create,
//	        map[string]any{"workoutData": data, fallback.KeyFindExisting: repo})
//	}
//
// The repository implements fallback.ExistingFinder and
// fallback.ExistingUpdater, so a duplicate insert resolves into an update of
// the row that already owns the (user, program, week, day) key.
package database
