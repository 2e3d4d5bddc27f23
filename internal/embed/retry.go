package embed

import (
	"context"
	"time"
)

// retryBaseDelay is the first backoff interval; it doubles per attempt.
const retryBaseDelay = 500 * time.Millisecond

// withRetry runs fn up to maxAttempts times with exponential backoff.
// Context cancellation aborts immediately between attempts.
func withRetry(ctx context.Context, maxAttempts int, fn func() error) error {
	var err error
	delay := retryBaseDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
