// Package workout is the workout log service. It stores logs through the
// database repository and keeps a read-through Redis cache of single logs.
// Damaged or unreachable cache entries are handed to the recovery manager
// and the read falls back to the database.
package workout

import (
	"context"
	"time"

	"github.com/kbukum/recoverykit/database"
	"github.com/kbukum/recoverykit/errors"
	"github.com/kbukum/recoverykit/fallback"
	"github.com/kbukum/recoverykit/logger"
	"github.com/kbukum/recoverykit/recovery"
	"github.com/kbukum/recoverykit/redis"
)

// DefaultCacheTTL is how long a cached log lives.
const DefaultCacheTTL = 10 * time.Minute

// Cache is the typed Redis store used for single logs.
type Cache = redis.TypedStore[database.WorkoutLog]

// Service combines the repository, the cache and the recovery manager.
type Service struct {
	repo    *database.WorkoutRepository
	manager *recovery.Manager
	cache   *Cache
	ttl     time.Duration
	log     *logger.Logger
}

var (
	_ fallback.ExistingFinder  = (*Service)(nil)
	_ fallback.ExistingUpdater = (*Service)(nil)
)

// Option configures a Service.
type Option func(*Service)

// WithCache enables the read-through cache. A ttl of 0 keeps the default.
func WithCache(cache *Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService creates a Service. The manager is required.
func NewService(repo *database.WorkoutRepository, manager *recovery.Manager, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		manager: manager,
		ttl:     DefaultCacheTTL,
		log:     logger.GetGlobalLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("workout_service")
	return s
}

// Create stores a new log. See database.WorkoutRepository.Create for the
// accepted input shapes.
func (s *Service) Create(ctx context.Context, input map[string]any) (any, error) {
	return s.repo.Create(ctx, input)
}

// FindExisting returns the id of the log occupying key.
func (s *Service) FindExisting(ctx context.Context, key fallback.NaturalKey) (string, bool, error) {
	return s.repo.FindExisting(ctx, key)
}

// UpdateExisting overwrites log id and drops its cached copy.
func (s *Service) UpdateExisting(ctx context.Context, id string, input map[string]any) (any, error) {
	res, err := s.repo.UpdateExisting(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.evict(ctx, id)
	return res, nil
}

// Get returns log id, or a nil result when it does not exist. The result is
// untyped nil on a miss so callers can compare it against nil.
func (s *Service) Get(ctx context.Context, id string) (any, error) {
	if row := s.cached(ctx, id); row != nil {
		return row, nil
	}

	row, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	if s.cache != nil {
		if err := s.cache.Save(ctx, id, row, s.ttl); err != nil {
			s.log.Warn("Failed to cache workout log", logger.ErrorFields(redis.OpCacheSave, err))
		}
	}
	return row, nil
}

// cached reads id from the cache. A failed read is recovered by the manager
// (cache cleanup or retry, depending on its kind); when recovery fails too
// the caller goes to the database.
func (s *Service) cached(ctx context.Context, id string) *database.WorkoutLog {
	if s.cache == nil {
		return nil
	}
	row, err := s.cache.Load(ctx, id)
	if err == nil {
		return row
	}

	load := func(ctx context.Context, _ map[string]any) (any, error) {
		return s.cache.Load(ctx, id)
	}
	input := map[string]any{
		recovery.KeyCacheManager: s.cache,
		recovery.KeyCacheKey:     id,
		errors.DetailOperation:   redis.OpCacheLoad,
	}
	res, err := s.manager.RecoverFailure(ctx, err, load, input)
	if err != nil {
		s.log.Warn("Cache read not recovered, reading from database", logger.ErrorFields(redis.OpCacheLoad, err))
		return nil
	}
	row, _ = res.(*database.WorkoutLog)
	return row
}

func (s *Service) evict(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn("Failed to evict cached workout log", logger.Fields("id", id, logger.FieldError, err.Error()))
	}
}
