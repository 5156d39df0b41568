package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dispatch/internal/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func fastPolicy(maxAttempts int) retry.Policy {
	return retry.Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
		Retryable: func(err error) bool {
			return errors.Is(err, errTransient)
		},
	}
}

func TestPolicy_Do_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := fastPolicy(5).Do(t.Context(), func(_ context.Context, attempt int) error {
		calls++
		assert.Equal(t, calls, attempt)
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPolicy_Do_StopsAtMaxAttempts(t *testing.T) {
	calls := 0
	var retried []int
	policy := fastPolicy(5)
	policy.OnRetry = func(attempt int, _ error, _ time.Duration) {
		retried = append(retried, attempt)
	}

	err := policy.Do(t.Context(), func(context.Context, int) error {
		calls++
		return errTransient
	})

	require.ErrorIs(t, err, errTransient)
	assert.Equal(t, 5, calls)
	assert.Equal(t, []int{1, 2, 3, 4}, retried)
}

func TestPolicy_Do_DoesNotRetryPermanentErrors(t *testing.T) {
	permanent := errors.New("bad request")
	calls := 0

	err := fastPolicy(5).Do(t.Context(), func(context.Context, int) error {
		calls++
		return permanent
	})

	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestPolicy_Do_HonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	policy := retry.Policy{MaxAttempts: 10, BaseDelay: time.Hour, MaxDelay: time.Hour}
	calls := 0

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := policy.Do(ctx, func(context.Context, int) error {
		calls++
		return errTransient
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestPolicy_Do_RejectsZeroAttempts(t *testing.T) {
	err := retry.Policy{}.Do(t.Context(), func(context.Context, int) error { return nil })
	require.ErrorIs(t, err, retry.ErrInvalidPolicy)
}
