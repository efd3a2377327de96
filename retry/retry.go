// Package retry provides the bounded-attempts combinator used by the
// award write path.
package retry

import (
	"context"
	"time"

	"github.com/cristianccgg/letranido-backend/logging"
)

// Linear returns a backoff of attempt*step after the attempt-th failure.
func Linear(step time.Duration) func(attempt int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}

// Do runs fn up to attempts times, sleeping backoff(n) after the n-th
// failure (n starts at 1). The last error is returned when every attempt
// fails. Context cancellation aborts the wait between attempts.
func Do(ctx context.Context, attempts int, backoff func(attempt int) time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		logging.Log.Warnf("retry: attempt %d/%d failed: %v", attempt, attempts, lastErr)
		if err := Sleep(ctx, backoff(attempt)); err != nil {
			return err
		}
	}
	return lastErr
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
