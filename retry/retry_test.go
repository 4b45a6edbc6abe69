package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return nil
	}, Backoff(NoBackoff()))

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, MaxAttempts(5), Backoff(NoBackoff()))

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return boom
	}, MaxAttempts(3), Backoff(NoBackoff()))

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, GetAttempts(err))
	assert.Len(t, GetAllErrors(err), 3)
	assert.ErrorIs(t, err, boom, "MultiError must unwrap to the last error")
}

func TestDo_ConditionStopsRetry(t *testing.T) {
	fatal := errors.New("fatal")
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return fatal
	}, MaxAttempts(5), Backoff(NoBackoff()), Condition(SkipErrors(fatal)))

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, func() error {
		return errors.New("never reached on second loop")
	}, Backoff(NoBackoff()))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithData_ReturnsValue(t *testing.T) {
	calls := 0
	got, err := DoWithData(context.Background(), func() (string, error) {
		calls++
		if calls < 2 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}, Backoff(NoBackoff()))

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestDo_OnRetryCallback(t *testing.T) {
	var attempts []int
	_ = Do(context.Background(), func() error {
		return errors.New("x")
	}, MaxAttempts(3), Backoff(NoBackoff()), OnRetry(func(attempt int, err error) {
		attempts = append(attempts, attempt)
	}))

	// Fired before every wait, never after the final attempt.
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestExponentialBackoff_Growth(t *testing.T) {
	b := ExponentialBackoff(100*time.Millisecond, WithJitter(0))

	assert.Equal(t, 100*time.Millisecond, b.Next(1))
	assert.Equal(t, 200*time.Millisecond, b.Next(2))
	assert.Equal(t, 400*time.Millisecond, b.Next(3))
}

func TestExponentialBackoff_MaxDelay(t *testing.T) {
	b := ExponentialBackoff(time.Second, WithJitter(0), WithMaxDelay(2*time.Second))
	assert.Equal(t, 2*time.Second, b.Next(10))
}

func TestConstantBackoff(t *testing.T) {
	b := ConstantBackoff(50*time.Millisecond, WithJitter(0))
	assert.Equal(t, 50*time.Millisecond, b.Next(1))
	assert.Equal(t, 50*time.Millisecond, b.Next(7))
}

func TestRetryOnErrors(t *testing.T) {
	transient := errors.New("transient")
	cond := RetryOnErrors(transient)

	assert.True(t, cond.ShouldRetry(transient, 1))
	assert.False(t, cond.ShouldRetry(errors.New("other"), 1))
}
