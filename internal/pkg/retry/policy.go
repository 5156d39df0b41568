// Package retry runs an operation again on transient failures with exponential backoff.
//
// A Policy is applied explicitly around one call site; nothing in the process retries
// implicitly. The delay schedule comes from github.com/cenkalti/backoff/v4.
//
//	policy := retry.Policy{
//	    MaxAttempts: 5,
//	    BaseDelay:   500 * time.Millisecond,
//	    MaxDelay:    8 * time.Second,
//	    Retryable:   isTransient,
//	}
//	err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
//	    return call(ctx)
//	})
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var ErrInvalidPolicy = errors.New("retry policy must allow at least one attempt")

// Policy describes how often and how fast an operation is retried.
type Policy struct {
	// MaxAttempts counts the first call, so 5 means one call plus four retries.
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// Retryable reports whether err is transient. Nil means every error is retried.
	Retryable func(err error) bool

	// OnRetry is called before sleeping ahead of the next attempt.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Do runs op until it succeeds, returns a non-retryable error, the attempts are
// exhausted or ctx ends. The last operation error is returned; when ctx ends
// between attempts its error is returned instead.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) error {
	if p.MaxAttempts < 1 {
		return ErrInvalidPolicy
	}

	attempt := 0
	operation := func() error {
		attempt++
		err := op(ctx, attempt)
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, delay time.Duration) {
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, delay)
		}
	}

	return backoff.RetryNotify(operation, p.backOff(ctx), notify)
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if p.BaseDelay > 0 {
		exp.InitialInterval = p.BaseDelay
	}
	if p.MaxDelay > 0 {
		exp.MaxInterval = p.MaxDelay
	}
	// The attempt budget bounds the loop, not wall time.
	exp.MaxElapsedTime = 0
	exp.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(p.MaxAttempts-1)), ctx)
}
