package cache

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared by the cache and the fetch client.
var (
	// ErrNotFound means the upstream repository does not know the key.
	// It is never retried and never cached.
	ErrNotFound = errors.New("not found")

	// ErrNetwork covers transport failures and unexpected upstream statuses.
	ErrNetwork = errors.New("network error")
)

// maxRetryDelay caps server-provided retry hints.
const maxRetryDelay = 30 * time.Second

// RetryableError marks a transient failure worth another attempt.
type RetryableError struct{ Err error }

// Retryable marks err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether any error in err's chain is a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// delayHinter is implemented by errors that carry the upstream's own retry
// hint, such as a rate-limit response with Retry-After.
type delayHinter interface {
	RetryDelay() time.Duration
}

// Retry calls fn up to attempts times while it fails with a [Retryable]
// error, doubling delay between attempts. A retry hint in the error chain
// stretches the wait, up to 30 seconds. It returns the last error, or
// ctx.Err() if ctx ends while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		wait := delay
		var h delayHinter
		if errors.As(err, &h) && h.RetryDelay() > wait {
			wait = min(h.RetryDelay(), maxRetryDelay)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}
	return err
}

// RetryWithBackoff is Retry with three attempts starting at one second.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}
