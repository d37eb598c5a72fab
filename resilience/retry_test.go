package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

// noSleep records requested delays without waiting.
func noSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	var delays []time.Duration
	cfg := DefaultRetryConfig()
	cfg.Sleep = noSleep(&delays)
	callCount := 0

	result, err := Retry(context.Background(), cfg, func(int) (string, error) {
		callCount++
		return "success", nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %s", result)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
	if len(delays) != 0 {
		t.Errorf("expected no delay before the first attempt, got %v", delays)
	}
}

func TestRetry_SucceedsAfterRetry(t *testing.T) {
	var delays []time.Duration
	cfg := RetryConfig{
		MaxAttempts:    5,
		InitialBackoff: time.Millisecond,
		BackoffFactor:  2.0,
		Sleep:          noSleep(&delays),
	}
	callCount := 0

	result, err := Retry(context.Background(), cfg, func(attempt int) (string, error) {
		callCount++
		if attempt != callCount {
			t.Errorf("expected attempt %d, got %d", callCount, attempt)
		}
		if callCount < 3 {
			return "", errors.New("temporary error")
		}
		return "success", nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %s", result)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
	if len(delays) != 2 {
		t.Errorf("expected 2 delays, got %d", len(delays))
	}
}

func TestRetry_ExceedsMaxAttempts(t *testing.T) {
	var delays []time.Duration
	cfg := RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		BackoffFactor:  2.0,
		Sleep:          noSleep(&delays),
	}
	callCount := 0
	testErr := errors.New("persistent error")

	_, err := Retry(context.Background(), cfg, func(int) (string, error) {
		callCount++
		return "", testErr
	})

	if !errors.Is(err, testErr) {
		t.Errorf("expected testErr, got %v", err)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
}

func TestRetry_RespectsContext(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:    10,
		InitialBackoff: 100 * time.Millisecond,
		BackoffFactor:  2.0,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	callCount := 0
	_, err := Retry(ctx, cfg, func(int) (string, error) {
		callCount++
		return "", errors.New("error")
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
	if callCount >= 10 {
		t.Errorf("expected fewer than 10 calls, got %d", callCount)
	}
}

func TestRetry_RetryIfFilter(t *testing.T) {
	nonRetryableErr := errors.New("non-retryable")
	var delays []time.Duration
	cfg := RetryConfig{
		MaxAttempts: 3,
		Sleep:       noSleep(&delays),
		RetryIf: func(err error) bool {
			return !errors.Is(err, nonRetryableErr)
		},
	}

	callCount := 0
	_, err := Retry(context.Background(), cfg, func(int) (string, error) {
		callCount++
		return "", nonRetryableErr
	})
	if !errors.Is(err, nonRetryableErr) {
		t.Errorf("expected nonRetryableErr, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call for non-retryable error, got %d", callCount)
	}
}

func TestRetry_OnRetryCallback(t *testing.T) {
	var delays []time.Duration
	var attempts []int
	cfg := RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 10 * time.Millisecond,
		BackoffFactor:  2.0,
		Sleep:          noSleep(&delays),
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			attempts = append(attempts, attempt)
		},
	}

	_, _ = Retry(context.Background(), cfg, func(int) (struct{}, error) {
		return struct{}{}, errors.New("fail")
	})

	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("expected OnRetry for attempts [1 2], got %v", attempts)
	}
}

func TestBackoff_Formula(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     5 * time.Second,
		BackoffFactor:  2.0,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 0},
		{2, time.Second},
		{3, 2 * time.Second},
		{4, 4 * time.Second},
		{5, 5 * time.Second},
		{9, 5 * time.Second},
	}
	for _, tc := range tests {
		if got := Backoff(tc.attempt, cfg); got != tc.want {
			t.Errorf("attempt %d: expected %v, got %v", tc.attempt, tc.want, got)
		}
	}
}

func TestBackoff_JitterBounds(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     10 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.25,
	}

	cfg.Rand = func() float64 { return 0 }
	if got := Backoff(3, cfg); got != 1500*time.Millisecond {
		t.Errorf("expected -25%% at rand=0, got %v", got)
	}

	cfg.Rand = func() float64 { return 0.5 }
	if got := Backoff(3, cfg); got != 2*time.Second {
		t.Errorf("expected no perturbation at rand=0.5, got %v", got)
	}

	cfg.Rand = func() float64 { return 0.999999 }
	if got := Backoff(3, cfg); got > 2500*time.Millisecond || got < 2499*time.Millisecond {
		t.Errorf("expected close to +25%% at rand≈1, got %v", got)
	}
}

func TestBackoff_JitterAppliedAfterCap(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: time.Second,
		MaxBackoff:     2 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.25,
		Rand:           func() float64 { return 0 },
	}
	if got := Backoff(6, cfg); got != 1500*time.Millisecond {
		t.Errorf("expected capped delay minus 25%%, got %v", got)
	}
}

func TestSleepContext_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := SleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
