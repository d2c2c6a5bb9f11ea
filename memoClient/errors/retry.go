package errors

import (
	"context"
	"math"
	"time"
)

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	Multiplier      float64
	RetryableErrors []ErrorCode
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		RetryableErrors: []ErrorCode{
			ErrCodeRPC,
			ErrCodeTimeout,
		},
	}
}

// NewRetryConfig returns the default config with the attempt count and
// initial delay replaced.
func NewRetryConfig(maxAttempts int, initialDelay time.Duration) *RetryConfig {
	cfg := DefaultRetryConfig()
	if maxAttempts > 0 {
		cfg.MaxAttempts = maxAttempts
	}
	if initialDelay > 0 {
		cfg.InitialDelay = initialDelay
	}
	return cfg
}

// RetryFunc is a function that can be retried
type RetryFunc func() error

// RetryWithConfig retries a function with custom configuration
func RetryWithConfig(ctx context.Context, fn RetryFunc, config *RetryConfig) error {
	op := &RetryOperation{Fn: fn, Config: config}
	return op.Execute(ctx)
}

// Retry retries a function with default configuration
func Retry(ctx context.Context, fn RetryFunc) error {
	return RetryWithConfig(ctx, fn, DefaultRetryConfig())
}

func isRetryableError(err error, retryableCodes []ErrorCode) bool {
	var clientErr *ClientError
	if As(err, &clientErr) {
		for _, code := range retryableCodes {
			if clientErr.Code == code {
				return true
			}
		}
		return clientErr.IsRetryable()
	}

	return IsRetryable(err)
}

// ExponentialBackoff calculates exponential backoff delay
func ExponentialBackoff(attempt int, baseDelay time.Duration, maxDelay time.Duration) time.Duration {
	if attempt <= 0 {
		return baseDelay
	}

	delay := baseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

// RetryOperation represents an operation that can be retried
type RetryOperation struct {
	Name    string
	Fn      RetryFunc
	Config  *RetryConfig
	OnRetry func(attempt int, err error)
}

// Execute runs the retry operation. Non-retryable errors return
// immediately and unwrapped; exhausting the budget wraps the last error.
func (op *RetryOperation) Execute(ctx context.Context) error {
	if op.Config == nil {
		op.Config = DefaultRetryConfig()
	}

	var lastErr error
	delay := op.Config.InitialDelay

	for attempt := 1; attempt <= op.Config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := op.Fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryableError(err, op.Config.RetryableErrors) {
			return err
		}

		if attempt == op.Config.MaxAttempts {
			break
		}

		if op.OnRetry != nil {
			op.OnRetry(attempt, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * op.Config.Multiplier)
		if delay > op.Config.MaxDelay {
			delay = op.Config.MaxDelay
		}
	}

	message := "maximum retry attempts exceeded"
	if op.Name != "" {
		message = "operation '" + op.Name + "' failed after retries"
	}
	return WrapClientError(lastErr, ErrCodeInternal, "", message).
		WithContext("attempts", op.Config.MaxAttempts)
}
