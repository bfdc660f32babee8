package providers

import (
	"context"
	"time"
)

// RateLimitRetries bounds the backoff loop: waits of 1s, 2s, 4s.
const RateLimitRetries = 3

// WithBackoff runs fn, retrying rate-limited failures with bounded
// exponential backoff. Other error classes return immediately; the
// caller decides whether they are retryable at a higher level.
func WithBackoff(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if ClassifyError(err) != ErrorRate || attempt >= RateLimitRetries-1 {
			return err
		}
		wait := time.Duration(1<<attempt) * time.Second
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
