// Package retry runs upstream calls with a bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy controls how many times an operation is attempted and how long each
// attempt may run.
type Policy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	Multiplier     float64
	MaxDelay       time.Duration
	Jitter         float64
	AttemptTimeout time.Duration
}

// DefaultPolicy is used for every third-party call made by the service.
var DefaultPolicy = Policy{
	MaxAttempts:    3,
	BaseDelay:      500 * time.Millisecond,
	Multiplier:     3,
	MaxDelay:       5 * time.Second,
	Jitter:         0.2,
	AttemptTimeout: 12 * time.Second,
}

// Notify is called before each backoff sleep.
type Notify func(attempt int, err error, wait time.Duration)

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op until it succeeds, returns a permanent error, the attempts are
// exhausted or ctx is done. Each attempt gets its own deadline when the
// policy sets AttemptTimeout.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error), notify ...Notify) (T, error) {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	attempt := 0
	operation := func() (T, error) {
		attempt++
		attemptCtx := ctx
		if p.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
			defer cancel()
		}
		return op(attemptCtx)
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(p.backOff()),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithMaxElapsedTime(0),
	}
	if len(notify) > 0 && notify[0] != nil {
		fn := notify[0]
		opts = append(opts, backoff.WithNotify(func(err error, wait time.Duration) {
			fn(attempt, err, wait)
		}))
	}

	res, err := backoff.Retry(ctx, operation, opts...)
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return res, permanent.Unwrap()
		}
	}
	return res, err
}

func (p Policy) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.BaseDelay > 0 {
		b.InitialInterval = p.BaseDelay
	}
	if p.Multiplier > 0 {
		b.Multiplier = p.Multiplier
	}
	if p.MaxDelay > 0 {
		b.MaxInterval = p.MaxDelay
	}
	b.RandomizationFactor = p.Jitter
	return b
}
