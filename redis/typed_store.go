package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/recoverykit/classify"
	"github.com/kbukum/recoverykit/errors"
)

// Operation names reported with cache failures.
const (
	OpCacheLoad = "cache load"
	OpCacheSave = "cache save"
)

// TypedStore stores JSON values of type C under a key prefix.
type TypedStore[C any] struct {
	client    *Client
	keyPrefix string
}

// NewTypedStore creates a TypedStore backed by client. An empty keyPrefix
// falls back to the client's configured prefix.
func NewTypedStore[C any](client *Client, keyPrefix string) *TypedStore[C] {
	if keyPrefix == "" {
		keyPrefix = client.cfg.KeyPrefix
	}
	return &TypedStore[C]{client: client, keyPrefix: keyPrefix}
}

// Key returns the full Redis key for key.
func (s *TypedStore[C]) Key(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

// Load returns the cached value, or (nil, nil) on a miss.
func (s *TypedStore[C]) Load(ctx context.Context, key string) (*C, error) {
	full := s.Key(key)
	raw, err := s.client.Get(ctx, full)
	if stderrors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, cacheError(err, OpCacheLoad, full)
	}

	var val C
	if err := json.Unmarshal([]byte(raw), &val); err != nil {
		return nil, errors.Wrap(errors.KindCacheCorruption, err, "cached entry is not valid JSON").
			WithDetails(map[string]any{errors.DetailOperation: OpCacheLoad, "cacheKey": full})
	}
	return &val, nil
}

// Save serializes val to JSON and stores it with ttl. A ttl of 0 means no
// expiration.
func (s *TypedStore[C]) Save(ctx context.Context, key string, val *C, ttl time.Duration) error {
	full := s.Key(key)
	data, err := json.Marshal(val)
	if err != nil {
		return errors.Wrap(errors.KindCacheValidationFailed, err, "value cannot be cached").
			WithDetails(map[string]any{errors.DetailOperation: OpCacheSave, "cacheKey": full})
	}
	if err := s.client.Set(ctx, full, string(data), ttl); err != nil {
		return cacheError(err, OpCacheSave, full)
	}
	return nil
}

// Invalidate drops key. Keys are given without the prefix.
func (s *TypedStore[C]) Invalidate(ctx context.Context, key string) error {
	return s.client.Invalidate(ctx, s.Key(key))
}

// cacheError classifies a Redis command failure. Deadlines are reported as
// CACHE_TIMEOUT directly because the generic classifier would place them
// under CONNECTION_TIMEOUT.
func cacheError(err error, op, key string) *errors.TypedError {
	details := map[string]any{errors.DetailOperation: op, "cacheKey": key}

	var netErr net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout()) {
		return errors.Wrap(errors.KindCacheTimeout, err, op+" timed out").WithDetails(details)
	}
	return classify.Classify(err, details)
}
