package retry

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Policy describes a bounded exponential backoff retry schedule.
type Policy struct {
	MaxAttempts  int           // Total number of attempts, including the first
	InitialDelay time.Duration // Delay before the second attempt
	MaxDelay     time.Duration // Backoff cap
	Multiplier   float64       // Backoff growth factor (typically 2.0)

	// Retryable decides whether an error is worth another attempt.
	// A nil predicate retries every error.
	Retryable func(error) bool

	// OnRetry is invoked before each backoff sleep, for logging/metrics.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// Default returns the policy used for upstream platform calls:
// three attempts with 1s, 2s backoff capped at 8s.
func Default() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     8 * time.Second,
		Multiplier:   2.0,
	}
}

// Do runs fn under the policy until it succeeds, a non-retryable error
// occurs, the context is cancelled, or attempts are exhausted.
func Do(ctx context.Context, p Policy, fn func() error) error {
	_, err := DoWithResult(ctx, p, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// DoWithResult is Do for operations that produce a value.
func DoWithResult[T any](ctx context.Context, p Policy, fn func() (T, error)) (T, error) {
	var zero T

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, fmt.Errorf("retry aborted: %w", err)
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if p.Retryable != nil && !p.Retryable(err) {
			return zero, err
		}
		if attempt == attempts-1 {
			break
		}

		delay := p.Delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, delay, err)
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("retry aborted: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return zero, fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}

// Delay returns the backoff slept after attempt failures, so Delay(0)
// precedes the second attempt.
func (p Policy) Delay(attempt int) time.Duration {
	d := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt))
	if max := float64(p.MaxDelay); p.MaxDelay > 0 && d > max {
		d = max
	}
	return time.Duration(d)
}
