package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fast() Option { return WithInitialDelay(time.Millisecond) }

func TestWithExponentialBackoff_Success(t *testing.T) {
	t.Parallel()
	attempts := 0

	err := WithExponentialBackoff(context.Background(), func() error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithExponentialBackoff_SuccessAfterRetries(t *testing.T) {
	t.Parallel()
	attempts := 0

	err := WithExponentialBackoff(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("slow down")
		}
		return nil
	}, fast())
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithExponentialBackoff_GivesUp(t *testing.T) {
	t.Parallel()
	attempts := 0
	persistent := errors.New("persistent")

	err := WithExponentialBackoff(context.Background(), func() error {
		attempts++
		return persistent
	}, fast(), WithMaxRetries(2))
	require.Error(t, err)
	assert.ErrorIs(t, err, persistent)
	assert.Contains(t, err.Error(), "gave up after 3 attempts")
	assert.Equal(t, 3, attempts)
}

func TestWithExponentialBackoff_Fatal(t *testing.T) {
	t.Parallel()
	attempts := 0
	denied := errors.New("access denied")

	err := WithExponentialBackoff(context.Background(), func() error {
		attempts++
		return Fatal(denied)
	}, fast())
	assert.ErrorIs(t, err, denied)
	assert.True(t, IsFatal(err))
	assert.Equal(t, 1, attempts)
}

func TestWithExponentialBackoff_RetryIf(t *testing.T) {
	t.Parallel()
	attempts := 0
	permanent := errors.New("permanent")

	err := WithExponentialBackoff(context.Background(), func() error {
		attempts++
		return permanent
	}, fast(), WithRetryIf(func(err error) bool { return !errors.Is(err, permanent) }))
	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestWithExponentialBackoff_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithExponentialBackoff(ctx, func() error {
		return errors.New("transient")
	}, WithInitialDelay(time.Second))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptions(t *testing.T) {
	t.Parallel()
	cfg := &Config{}
	for _, opt := range []Option{
		WithMaxRetries(7),
		WithInitialDelay(time.Second),
		WithMaxDelay(time.Minute),
		WithMultiplier(3),
	} {
		opt(cfg)
	}
	assert.Equal(t, &Config{MaxRetries: 7, InitialDelay: time.Second, MaxDelay: time.Minute, Multiplier: 3}, cfg)
}

func TestFatal_Nil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Fatal(nil))
	assert.False(t, IsFatal(errors.New("plain")))
}
