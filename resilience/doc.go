// Package resilience provides the retry and admission primitives the recovery
// manager is built on.
//
//   - Retry: re-invokes an operation with exponential backoff and jitter. The
//     delay formula is fixed and its sleep and random sources are injectable,
//     so retry timing is reproducible in tests.
//   - Bulkhead: caps concurrent work and rejects excess calls immediately.
//   - RateLimiter: a non-blocking token bucket, with KeyedRateLimiter
//     keeping one bucket per client.
//
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{Name: "recovery", MaxConcurrent: 10})
//	release, ok := bh.TryAcquire()
//	if !ok {
//	    return errBusy
//	}
//	defer release()
//
//	result, err := resilience.Retry(ctx, cfg, func(attempt int) (string, error) {
//	    return fetch(ctx)
//	})
package resilience
