package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:  4,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDo(t *testing.T) {
	retryAll := func(error) bool { return true }

	t.Run("succeeds first attempt", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), fastConfig(), retryAll, func(ctx context.Context, attempt int) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := Do(context.Background(), fastConfig(), retryAll, func(ctx context.Context, attempt int) error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops at max attempts", func(t *testing.T) {
		calls := 0
		wantErr := errors.New("always failing")
		err := Do(context.Background(), fastConfig(), retryAll, func(ctx context.Context, attempt int) error {
			calls++
			return wantErr
		})
		require.Error(t, err)
		assert.Equal(t, wantErr, err)
		assert.Equal(t, 4, calls)
	})

	t.Run("permanent error stops immediately", func(t *testing.T) {
		permanent := errors.New("bad request")
		calls := 0
		err := Do(context.Background(), fastConfig(), func(err error) bool { return false }, func(ctx context.Context, attempt int) error {
			calls++
			return permanent
		})
		require.Error(t, err)
		assert.Equal(t, permanent, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("attempt numbers start at one", func(t *testing.T) {
		var seen []int
		_ = Do(context.Background(), fastConfig(), retryAll, func(ctx context.Context, attempt int) error {
			seen = append(seen, attempt)
			return errors.New("transient")
		})
		assert.Equal(t, []int{1, 2, 3, 4}, seen)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := Do(ctx, fastConfig(), retryAll, func(ctx context.Context, attempt int) error {
			calls++
			cancel()
			return errors.New("transient")
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestBackoffDelay(t *testing.T) {
	cfg := Config{
		MaxAttempts:  10,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	assert.Equal(t, 1*time.Second, backoffDelay(cfg, 1))
	assert.Equal(t, 2*time.Second, backoffDelay(cfg, 2))
	assert.Equal(t, 4*time.Second, backoffDelay(cfg, 3))
	// Capped at MaxDelay from the sixth attempt onward.
	assert.Equal(t, 30*time.Second, backoffDelay(cfg, 6))
	assert.Equal(t, 30*time.Second, backoffDelay(cfg, 9))
}
