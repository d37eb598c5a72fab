package workout

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/recoverykit/database"
	"github.com/kbukum/recoverykit/errors"
	"github.com/kbukum/recoverykit/fallback"
	"github.com/kbukum/recoverykit/logger"
	"github.com/kbukum/recoverykit/recovery"
	"github.com/kbukum/recoverykit/redis"
)

type fixture struct {
	svc     *Service
	cache   *Cache
	mini    *miniredis.Miniredis
	manager *recovery.Manager
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), database.Config{
		Enabled:      true,
		DSN:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		AutoMigrate:  true,
		LogLevel:     "silent",
	}, logger.Nop())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mini := miniredis.RunT(t)
	client, err := redis.New(redis.Config{Enabled: true, Addr: mini.Addr()}, logger.Nop())
	if err != nil {
		t.Fatalf("redis.New: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	cache := redis.NewTypedStore[database.WorkoutLog](client, "workout")
	manager := recovery.New(recovery.WithLogger(logger.Nop()))
	svc := NewService(database.NewWorkoutRepository(db), manager, WithCache(cache, 0), WithLogger(logger.Nop()))
	return fixture{svc: svc, cache: cache, mini: mini, manager: manager}
}

func (f fixture) create(t *testing.T, name string) *database.WorkoutLog {
	t.Helper()
	res, err := f.svc.Create(context.Background(), map[string]any{
		"workoutData": map[string]any{"userId": "u1", "programId": "p1", "weekIndex": 0, "dayIndex": 1, "name": name},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return res.(*database.WorkoutLog)
}

func TestService_GetReadsThrough(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	row := f.create(t, "Push")

	if f.mini.Exists(f.cache.Key(row.ID)) {
		t.Fatal("create should not populate the cache")
	}
	res, err := f.svc.Get(ctx, row.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := res.(*database.WorkoutLog); got.Name != "Push" {
		t.Errorf("Get = %+v", got)
	}
	if !f.mini.Exists(f.cache.Key(row.ID)) {
		t.Error("Get should cache the row")
	}
	if ttl := f.mini.TTL(f.cache.Key(row.ID)); ttl != DefaultCacheTTL {
		t.Errorf("ttl = %v, want %v", ttl, DefaultCacheTTL)
	}

	cached, err := f.svc.Get(ctx, row.ID)
	if err != nil || cached.(*database.WorkoutLog).ID != row.ID {
		t.Errorf("cached Get = %v, %v", cached, err)
	}
}

func TestService_GetMissing(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Get(context.Background(), "nope")
	if err != nil || res != nil {
		t.Errorf("Get(missing) = %v, %v; want untyped nil", res, err)
	}
}

func TestService_CorruptCacheEntryIsCleaned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	row := f.create(t, "Pull")

	if err := f.mini.Set(f.cache.Key(row.ID), "{not json"); err != nil {
		t.Fatal(err)
	}

	res, err := f.svc.Get(ctx, row.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := res.(*database.WorkoutLog); got.Name != "Pull" {
		t.Errorf("Get = %+v", got)
	}

	stats := f.manager.Statistics()
	if stats.ByKind[errors.KindCacheCorruption].Successes != 1 {
		t.Errorf("expected one recovered CACHE_CORRUPTION, got %+v", stats.ByKind)
	}
	if stats.ByStrategy[errors.StrategyCacheCleanup].Attempts != 1 {
		t.Errorf("expected a CACHE_CLEANUP attempt, got %+v", stats.ByStrategy)
	}

	cached, err := f.cache.Load(ctx, row.ID)
	if err != nil || cached == nil || cached.Name != "Pull" {
		t.Errorf("cache after recovery = %+v, %v", cached, err)
	}
}

func TestService_UpdateEvictsCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	row := f.create(t, "Push")
	if _, err := f.svc.Get(ctx, row.ID); err != nil {
		t.Fatal(err)
	}

	key := fallback.NaturalKey{UserID: "u1", ProgramID: "p1", WeekIndex: 0, DayIndex: 1}
	id, found, err := f.svc.FindExisting(ctx, key)
	if err != nil || !found || id != row.ID {
		t.Fatalf("FindExisting = %q, %v, %v", id, found, err)
	}
	if _, err := f.svc.UpdateExisting(ctx, id, map[string]any{"userId": "u1", "programId": "p1", "name": "Push v2"}); err != nil {
		t.Fatalf("UpdateExisting: %v", err)
	}
	if f.mini.Exists(f.cache.Key(row.ID)) {
		t.Error("update should evict the cached row")
	}

	res, _ := f.svc.Get(ctx, row.ID)
	if got := res.(*database.WorkoutLog); got.Name != "Push v2" {
		t.Errorf("Get after update = %+v", got)
	}
}

func TestService_DuplicateCreateRecovers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.create(t, "Push")

	input := map[string]any{
		"workoutData":            map[string]any{"userId": "u1", "programId": "p1", "weekIndex": 0, "dayIndex": 1, "name": "Again"},
		fallback.KeyFindExisting: f.svc,
		errors.DetailOperation:   database.OpCreateWorkout,
	}
	_, err := f.svc.Create(ctx, input)
	if err == nil {
		t.Fatal("expected duplicate failure")
	}
	res, err := f.manager.RecoverFailure(ctx, err, f.svc.Create, input)
	if err != nil {
		t.Fatalf("RecoverFailure: %v", err)
	}
	if got := res.(*database.WorkoutLog); got.ID != first.ID || got.Name != "Again" {
		t.Errorf("recovered = %+v, want update of %s", got, first.ID)
	}
}

func TestService_WithoutCache(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.svc.repo, f.manager)
	row := f.create(t, "Push")

	res, err := svc.Get(context.Background(), row.ID)
	if err != nil || res.(*database.WorkoutLog).Name != "Push" {
		t.Errorf("Get = %v, %v", res, err)
	}
	if f.mini.Exists(f.cache.Key(row.ID)) {
		t.Error("service without cache should not write to redis")
	}
}
