package resilience

import (
	"sync"
	"time"
)

// RateLimiterConfig configures a token bucket.
type RateLimiterConfig struct {
	// Rate is the number of tokens added per second.
	Rate float64
	// Burst is the bucket capacity.
	Burst int
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// RateLimiter is a token bucket. It never blocks.
type RateLimiter struct {
	rate  float64
	burst float64
	now   func() time.Time

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a full bucket.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Rate <= 0 {
		cfg.Rate = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.Rate)
		if cfg.Burst < 1 {
			cfg.Burst = 1
		}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &RateLimiter{
		rate:       cfg.Rate,
		burst:      float64(cfg.Burst),
		now:        cfg.Now,
		tokens:     float64(cfg.Burst),
		lastRefill: cfg.Now(),
	}
}

// Allow takes one token if available. When the bucket is empty it returns
// false and the time until the next token.
func (rl *RateLimiter) Allow() (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	if rl.tokens >= 1 {
		rl.tokens--
		return true, 0
	}
	wait := (1 - rl.tokens) / rl.rate
	return false, time.Duration(wait * float64(time.Second))
}

// Tokens returns the current number of available tokens.
func (rl *RateLimiter) Tokens() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
	return rl.tokens
}

func (rl *RateLimiter) refill() {
	now := rl.now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.lastRefill = now
	if elapsed <= 0 {
		return
	}
	rl.tokens += elapsed * rl.rate
	if rl.tokens > rl.burst {
		rl.tokens = rl.burst
	}
}

// KeyedRateLimiter keeps one bucket per key, such as a client address or
// user id.
type KeyedRateLimiter struct {
	cfg RateLimiterConfig

	mu      sync.Mutex
	buckets map[string]*RateLimiter
}

// NewKeyedRateLimiter creates a limiter whose buckets all use cfg.
func NewKeyedRateLimiter(cfg RateLimiterConfig) *KeyedRateLimiter {
	return &KeyedRateLimiter{cfg: cfg, buckets: make(map[string]*RateLimiter)}
}

// Allow takes a token from key's bucket.
func (k *KeyedRateLimiter) Allow(key string) (bool, time.Duration) {
	k.mu.Lock()
	b, ok := k.buckets[key]
	if !ok {
		b = NewRateLimiter(k.cfg)
		k.buckets[key] = b
	}
	k.mu.Unlock()
	return b.Allow()
}

// Prune drops buckets that have refilled completely.
func (k *KeyedRateLimiter) Prune() {
	k.mu.Lock()
	defer k.mu.Unlock()
	for key, b := range k.buckets {
		if b.Tokens() >= b.burst {
			delete(k.buckets, key)
		}
	}
}

// Len returns the number of tracked keys.
func (k *KeyedRateLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}
