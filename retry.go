package rtlify

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxAttempts int           // Total attempts, including the first one
	BaseDelay   time.Duration // Delay before the second attempt
	Step        time.Duration // Added to the delay for every further attempt
	Pacing      time.Duration // Pause after every successful call
}

// DefaultRetryConfig returns the retry policy used against the public
// translation endpoint: 3 attempts, 1s then 2s between them, 150ms pacing.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		Step:        1 * time.Second,
		Pacing:      150 * time.Millisecond,
	}
}

// Delay returns the wait after the given failed attempt (0-based).
func (c RetryConfig) Delay(attempt int) time.Duration {
	return c.BaseDelay + time.Duration(attempt)*c.Step
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry runs fn until it succeeds, returns a non-retryable error, or runs
// out of attempts. The delay between attempts grows linearly. It returns the
// number of attempts made alongside the last error.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, int, error) {
	var lastErr error
	var zero T

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, attempt, err
		}

		result, err := fn()
		if err == nil {
			return result, attempt + 1, nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return zero, attempt + 1, err
		}

		// Don't sleep after the last attempt
		if attempt < attempts-1 {
			if err := sleep(ctx, cfg.Delay(attempt)); err != nil {
				return zero, attempt + 1, err
			}
		}
	}

	return zero, attempts, lastErr
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context errors are not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	return false
}

// RetryableProvider wraps a Provider with retry and pacing.
type RetryableProvider struct {
	provider Provider
	config   RetryConfig
	logger   *slog.Logger
}

// NewRetryableProvider creates a new provider with retry logic.
func NewRetryableProvider(provider Provider, cfg RetryConfig) *RetryableProvider {
	return &RetryableProvider{
		provider: provider,
		config:   cfg,
		logger:   discardLogger(),
	}
}

// WithLogger sets the logger used to report failed attempts.
func (p *RetryableProvider) WithLogger(logger *slog.Logger) *RetryableProvider {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// Translate implements Provider. Failures are returned as *TranslationError
// carrying the last cause.
func (p *RetryableProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	failures := 0
	result, attempts, err := WithRetry(ctx, p.config, func() (string, error) {
		out, err := p.provider.Translate(ctx, req)
		if err != nil {
			failures++
			p.logger.WarnContext(ctx, "translation attempt failed",
				"attempt", failures,
				"max_attempts", p.config.MaxAttempts,
				"retryable", IsRetryable(err),
				"error", err)
		}
		return out, err
	})
	if err != nil {
		return "", &TranslationError{
			Message:  "translation failed",
			Text:     req.Text,
			Attempts: attempts,
			Cause:    err,
		}
	}

	// Pacing is outside the attempt budget
	if err := sleep(ctx, p.config.Pacing); err != nil {
		return "", err
	}

	return result, nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ Provider = (*RetryableProvider)(nil)
