package utils

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryPolicy bounds how often a retryable operation is attempted. The wait
// before attempt n+1 is BaseDelay*2^(n-1), capped at MaxDelay.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// BackOff returns the exponential schedule for the policy without jitter.
func (p RetryPolicy) BackOff() *backoff.ExponentialBackOff {
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = time.Duration(math.MaxInt64)
	}
	b := &backoff.ExponentialBackOff{
		InitialInterval:     p.BaseDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         maxDelay,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return b
}

// Retry runs fn until it succeeds, returns a non-retryable error, the context
// ends, or MaxAttempts is reached. A non-retryable error is returned as is;
// exhaustion wraps both ErrRetriesExhausted and the last error.
func Retry(ctx context.Context, policy RetryPolicy, retryable func(error) bool, fn func(attempt int) error) error {
	var (
		attempt   int
		lastErr   error
		permanent bool
	)
	op := func() error {
		attempt++
		err := fn(attempt)
		if err != nil && !retryable(err) {
			permanent = true
			return backoff.Permanent(err)
		}
		lastErr = err
		return err
	}

	schedule := backoff.WithContext(
		backoff.WithMaxRetries(policy.BackOff(), uint64(policy.attempts()-1)), ctx)

	err := backoff.Retry(op, schedule)
	switch {
	case err == nil, permanent:
		return err
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %w", ctx.Err(), lastErr)
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt, lastErr)
}
