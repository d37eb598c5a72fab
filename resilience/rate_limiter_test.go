package resilience

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestRateLimiter_BurstThenReject(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	rl := NewRateLimiter(RateLimiterConfig{Rate: 2, Burst: 3, Now: clock.Now})

	for i := 0; i < 3; i++ {
		if ok, _ := rl.Allow(); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	ok, wait := rl.Allow()
	if ok {
		t.Fatal("fourth request should be rejected")
	}
	if wait != 500*time.Millisecond {
		t.Errorf("wait = %v, want 500ms", wait)
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	rl := NewRateLimiter(RateLimiterConfig{Rate: 10, Burst: 1, Now: clock.Now})

	if ok, _ := rl.Allow(); !ok {
		t.Fatal("first request should be allowed")
	}
	if ok, _ := rl.Allow(); ok {
		t.Fatal("second request should be rejected")
	}
	clock.Advance(100 * time.Millisecond)
	if ok, _ := rl.Allow(); !ok {
		t.Error("request after refill should be allowed")
	}
}

func TestRateLimiter_TokensCapAtBurst(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	rl := NewRateLimiter(RateLimiterConfig{Rate: 5, Burst: 4, Now: clock.Now})

	clock.Advance(time.Hour)
	if got := rl.Tokens(); got != 4 {
		t.Errorf("Tokens() = %v, want 4", got)
	}
}

func TestRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{})
	if rl.rate != 10 || rl.burst != 10 {
		t.Errorf("defaults = rate %v burst %v, want 10/10", rl.rate, rl.burst)
	}

	small := NewRateLimiter(RateLimiterConfig{Rate: 0.5})
	if small.burst != 1 {
		t.Errorf("burst for fractional rate = %v, want 1", small.burst)
	}
}

func TestKeyedRateLimiter_IndependentKeys(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	k := NewKeyedRateLimiter(RateLimiterConfig{Rate: 1, Burst: 1, Now: clock.Now})

	if ok, _ := k.Allow("a"); !ok {
		t.Fatal("a should be allowed")
	}
	if ok, _ := k.Allow("a"); ok {
		t.Fatal("a should be limited")
	}
	if ok, _ := k.Allow("b"); !ok {
		t.Error("b has its own bucket")
	}
	if k.Len() != 2 {
		t.Errorf("Len() = %d, want 2", k.Len())
	}

	clock.Advance(5 * time.Second)
	k.Prune()
	if k.Len() != 0 {
		t.Errorf("Len() after prune = %d, want 0", k.Len())
	}
}
