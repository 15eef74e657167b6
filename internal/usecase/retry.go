package usecase

import (
	"context"
	"errors"
	"os_service_api/internal/usecase/interfaces"
	"time"
)

// RetryConfig configures the backoff used when a read-modify-write loses an
// optimistic concurrency race.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
}

func DefaultConflictRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    200 * time.Millisecond,
		Multiplier:  2,
	}
}

// retryOnConflict runs fn until it succeeds, fails with anything other than
// interfaces.ErrOrderVersionConflict, or runs out of attempts. fn must reload
// the aggregate on every call.
func retryOnConflict[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := cfg.BaseDelay

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, interfaces.ErrOrderVersionConflict) {
			return zero, err
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = time.Duration(float64(backoff) * cfg.Multiplier)
		if cfg.MaxDelay > 0 && backoff > cfg.MaxDelay {
			backoff = cfg.MaxDelay
		}
	}
	return zero, lastErr
}
