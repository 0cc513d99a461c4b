package retry

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petcare-labs/petcare/internal/errors"
)

func fastConfig() Config {
	return Config{MaxAttempts: 4, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, BackoffMultiplier: 2}
}

func TestDefaultConfigHasSensibleValues(t *testing.T) {
	c := DefaultConfig()
	assert.Positive(t, c.MaxAttempts)
	assert.Less(t, c.InitialDelay, c.MaxDelay)
	assert.Greater(t, c.BackoffMultiplier, 1.0)
}

func TestSuccessOnFirstAttempt(t *testing.T) {
	calls := 0
	result := ExecuteWithRetry(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return nil
	})

	assert.True(t, result.Success)
	assert.Equal(t, 1, calls)
	assert.Empty(t, result.Errors)
	assert.NoError(t, result.Err())
	assert.Equal(t, "succeeded on first attempt", result.String())
}

func TestRetriesTransientStorageErrors(t *testing.T) {
	var attempts []int
	var delays []time.Duration
	cfg := fastConfig()
	cfg.OnAttempt = func(attempt int, err error, next time.Duration) {
		attempts = append(attempts, attempt)
		delays = append(delays, next)
	}

	calls := 0
	result := ExecuteWithRetry(context.Background(), cfg, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.NewStorageUnavailable("connection refused")
		}
		return nil
	})

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Len(t, result.Errors, 2)
	assert.Equal(t, []int{1, 2}, attempts)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, delays)
	assert.Equal(t, "succeeded after 3 attempts", result.String())
}

func TestGivesUpAfterMaxAttempts(t *testing.T) {
	var last time.Duration = -1
	cfg := fastConfig()
	cfg.OnAttempt = func(_ int, _ error, next time.Duration) { last = next }

	result := ExecuteWithRetry(context.Background(), cfg, func(context.Context) error {
		return errors.NewStorageUnavailable("down")
	})

	assert.False(t, result.Success)
	assert.Equal(t, 4, result.Attempts)
	assert.Zero(t, last)

	err := result.Err()
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, errors.CodeStorage, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "after 4 attempts")
}

func TestNeverRetriesSemanticErrors(t *testing.T) {
	for _, err := range []error{
		errors.NewInvalidField("pet", "name", "required"),
		errors.NewAuthFailed("invalid token"),
		context.Canceled,
		stderrors.New("plain"),
	} {
		calls := 0
		result := ExecuteWithRetry(context.Background(), fastConfig(), func(context.Context) error {
			calls++
			return err
		})
		assert.Equal(t, 1, calls, "%v", err)
		assert.False(t, result.Success)
	}
}

func TestStopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig()
	cfg.InitialDelay = time.Hour
	cfg.MaxDelay = time.Hour
	cfg.OnAttempt = func(int, error, time.Duration) { cancel() }

	result := ExecuteWithRetry(ctx, cfg, func(context.Context) error {
		return errors.NewStorageUnavailable("down")
	})

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.ErrorIs(t, result.LastError, context.Canceled)
}

func TestCustomRetryable(t *testing.T) {
	cfg := fastConfig()
	cfg.Retryable = func(error) bool { return true }

	calls := 0
	ExecuteWithRetry(context.Background(), cfg, func(context.Context) error {
		calls++
		return stderrors.New("flaky")
	})
	assert.Equal(t, 4, calls)
}
