// Package redis wraps go-redis for the workout cache.
//
// Client adds service logging, pooled connections from Config and a health
// check. It implements recovery.CacheInvalidator, so it can be handed to
// the recovery manager as the cache capability of a CACHE_CLEANUP recovery:
//
//	input := map[string]any{
//	    recovery.KeyCacheManager: client,
//	    recovery.KeyCacheKey:     "workouts:user-1",
//	}
//
// TypedStore stores JSON values under a key prefix and reports failures as
// cache kinds: an undecodable entry is CACHE_CORRUPTION and a deadline is
// CACHE_TIMEOUT.
package redis
