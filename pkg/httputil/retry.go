package httputil

import (
	"context"
	"errors"
	"time"
)

// MaxDelay caps the wait between two attempts, including waits requested by
// a server through Retry-After.
const MaxDelay = 30 * time.Second

// RetryableError marks a failure worth another attempt. A positive After
// replaces the backoff delay before the next attempt.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry calls fn until it succeeds, fails with an error that is not a
// [RetryableError], or has been called attempts times. The delay doubles
// after every failure up to [MaxDelay]. Cancelling ctx ends the wait with
// ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	for i := 1; ; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) || i == attempts {
			return err
		}

		wait := delay
		if re.After > 0 {
			wait = re.After
		}
		t := time.NewTimer(min(wait, MaxDelay))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay = min(delay*2, MaxDelay)
	}
}
