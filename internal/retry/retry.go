// Package retry runs an operation with explicit, bounded exponential backoff.
//
// Nothing is retried silently: ExecuteWithRetry returns a Result listing
// every attempt, and Config.OnAttempt sees each failure as it happens.
package retry

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"time"

	"github.com/petcare-labs/petcare/internal/errors"
)

// Config configures retry behavior.
type Config struct {
	// MaxAttempts is the maximum number of attempts (including first try).
	// Default: 3
	MaxAttempts int

	// InitialDelay is the delay before the second attempt.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the delay between attempts.
	// Default: 5s
	MaxDelay time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	// Default: 2.0
	BackoffMultiplier float64

	// OnAttempt, if set, is called after every failed attempt with the
	// delay before the next one (zero when giving up).
	OnAttempt func(attempt int, err error, next time.Duration)

	// Retryable overrides IsRetryable.
	Retryable func(error) bool
}

// DefaultConfig returns the default retry configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       3,
		InitialDelay:      100 * time.Millisecond,
		MaxDelay:          5 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// Result contains the outcome of a retried operation.
type Result struct {
	// Attempts is the number of attempts made.
	Attempts int

	// LastError is the last error encountered (nil if successful).
	LastError error

	// Errors contains the error from each failed attempt.
	Errors []error

	Success bool
}

// String provides a human-readable summary of the result.
func (r Result) String() string {
	if r.Success {
		if r.Attempts == 1 {
			return "succeeded on first attempt"
		}
		return fmt.Sprintf("succeeded after %d attempts", r.Attempts)
	}
	return fmt.Sprintf("failed after %d attempts: %v", r.Attempts, r.LastError)
}

// Err returns nil on success, otherwise a *Error wrapping the last failure.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return &Error{Result: r}
}

// Error wraps the last failure with the retry history.
type Error struct {
	Result Result
}

func (e *Error) Error() string {
	return fmt.Sprintf("operation failed after %d attempts: %v", e.Result.Attempts, e.Result.LastError)
}

func (e *Error) Unwrap() error {
	return e.Result.LastError
}

// IsRetryable reports whether err is likely transient: storage
// unavailability and network errors. Validation, auth and context errors
// are never retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pe, ok := errors.As(err); ok {
		return pe.Code == errors.CodeStorage
	}
	var netErr net.Error
	return stderrors.As(err, &netErr)
}

// ExecuteWithRetry calls fn until it succeeds, returns a non-retryable
// error, runs out of attempts or ctx is done.
//
//	result := retry.ExecuteWithRetry(ctx, retry.DefaultConfig(), func(ctx context.Context) error {
//	    return repo.CheckConnectivity(ctx)
//	})
//	if err := result.Err(); err != nil {
//	    return err
//	}
func ExecuteWithRetry(ctx context.Context, config Config, fn func(context.Context) error) Result {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 5 * time.Second
	}
	if config.BackoffMultiplier <= 0 {
		config.BackoffMultiplier = 2.0
	}
	retryable := config.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}

	result := Result{
		Errors: make([]error, 0, config.MaxAttempts),
	}
	delay := config.InitialDelay

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		result.Attempts = attempt

		if err := ctx.Err(); err != nil {
			result.LastError = err
			result.Errors = append(result.Errors, err)
			return result
		}

		err := fn(ctx)
		if err == nil {
			result.Success = true
			return result
		}
		result.LastError = err
		result.Errors = append(result.Errors, err)

		if !retryable(err) || attempt == config.MaxAttempts {
			if config.OnAttempt != nil {
				config.OnAttempt(attempt, err, 0)
			}
			return result
		}
		if config.OnAttempt != nil {
			config.OnAttempt(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			result.LastError = ctx.Err()
			result.Errors = append(result.Errors, ctx.Err())
			return result
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * config.BackoffMultiplier)
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}

	return result
}
