package ai

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy retries a call with exponential backoff
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultRetryPolicy makes three attempts, waiting 1s then 2s between them
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: time.Second}

// Delay returns the wait before the given retry (1-based)
func (p RetryPolicy) Delay(retry int) time.Duration {
	if retry < 1 {
		return 0
	}
	return p.BaseDelay << (retry - 1)
}

// sleepFunc waits for d or until ctx is done
type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// run calls fn until it succeeds, the attempts run out or ctx is done.
// Errors wrapping errPermanent are not retried.
func (p RetryPolicy) run(ctx context.Context, sleep sleepFunc, op string, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, p.Delay(attempt-1)); err != nil {
				return &Error{Op: op, Attempts: attempt - 1, Wrapped: lastErr}
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if errors.Is(err, errPermanent) || ctx.Err() != nil {
			return &Error{Op: op, Attempts: attempt, Wrapped: err}
		}
	}

	return &Error{Op: op, Attempts: attempts, Wrapped: lastErr}
}
