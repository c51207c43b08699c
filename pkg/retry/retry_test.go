package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fast() []Option {
	return []Option{
		WithInitialDelay(time.Millisecond),
		WithMaxDelay(2 * time.Millisecond),
		WithJitter(0),
	}
}

func TestDo_SucceedsAfterRetryableFailures(t *testing.T) {
	calls := 0
	var notified []int

	opts := append(fast(),
		WithMaxAttempts(5),
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			notified = append(notified, attempt)
		}),
	)

	err := New(opts...).Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return Retryable(errors.New("transient"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, notified)
}

func TestDo_StopsAtMaxAttempts(t *testing.T) {
	cause := errors.New("still down")
	calls := 0

	err := New(append(fast(), WithMaxAttempts(3))...).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Retryable(cause)
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, cause)
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	cause := errors.New("bad query")
	calls := 0

	err := New(append(fast(), WithMaxAttempts(5))...).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return cause
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, cause)
}

func TestDo_PermanentStopsImmediately(t *testing.T) {
	cause := errors.New("malformed")
	calls := 0

	err := New(append(fast(), WithMaxAttempts(5), WithRetryIf(func(error) bool { return true }))...).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Permanent(cause)
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, cause)
}

func TestDo_RetryIfOverridesDefault(t *testing.T) {
	calls := 0
	err := New(append(fast(), WithRetryIf(func(error) bool { return true }))...).Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("plain error")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoWithData(t *testing.T) {
	calls := 0
	got, err := DoWithData(context.Background(), New(fast()...), func(ctx context.Context) ([]string, error) {
		calls++
		if calls == 1 {
			return nil, Retryable(errors.New("transient"))
		}
		return []string{"a", "b"}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestErrorClassification(t *testing.T) {
	assert.Nil(t, Retryable(nil))
	assert.Nil(t, Permanent(nil))
	assert.True(t, IsRetryable(Retryable(errors.New("x"))))
	assert.False(t, IsRetryable(errors.New("x")))
	assert.True(t, IsPermanent(Permanent(errors.New("x"))))
}

func TestOptionsIgnoreInvalidValues(t *testing.T) {
	r := New(WithMaxAttempts(0), WithMultiplier(0.5), WithJitter(2), WithInitialDelay(-1))
	def := DefaultConfig()
	assert.Equal(t, def.MaxAttempts, r.config.MaxAttempts)
	assert.Equal(t, def.Multiplier, r.config.Multiplier)
	assert.Equal(t, def.JitterFactor, r.config.JitterFactor)
	assert.Equal(t, def.InitialDelay, r.config.InitialDelay)
}

func TestDatabaseRetrier(t *testing.T) {
	transient := errors.New("conn reset")
	r := DatabaseRetrier(WithRetryIf(func(err error) bool { return errors.Is(err, transient) }))

	assert.Equal(t, 3, r.config.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, r.config.InitialDelay)
	assert.Equal(t, time.Second, r.config.MaxDelay)
	require.NotNil(t, r.config.RetryIf)
	assert.True(t, r.config.RetryIf(transient))
	assert.False(t, r.config.RetryIf(errors.New("syntax error")))
}
