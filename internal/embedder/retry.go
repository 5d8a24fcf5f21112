package embedder

import (
	"context"
	"time"
)

// retryWithBackoff runs fn up to attempts times, sleeping between
// attempts with a delay that starts at base and doubles per
// BackoffMultiplier up to the MaxBackoffMs cap. Context cancellation
// aborts immediately, both during the sleep and after a failed call.
func retryWithBackoff[T any](ctx context.Context, attempts int, base time.Duration, fn func() (T, error)) (T, error) {
	var zero T

	delay := base
	maxDelay := time.Duration(MaxBackoffMs) * time.Millisecond

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
			if delay = time.Duration(float64(delay) * BackoffMultiplier); delay > maxDelay {
				delay = maxDelay
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		lastErr = err
	}
	return zero, lastErr
}
