package sqlstore

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig bounds retries of writes that hit transient lock contention.
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig retries three times starting at 50ms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
	}
}

// withRetry runs fn until it succeeds, fails permanently or retries run out.
// Constraint violations are never retried.
func (s *Store) withRetry(ctx context.Context, fn func() error) error {
	delay := s.retry.InitialDelay
	var lastErr error
	for attempt := 0; attempt <= s.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * s.retry.BackoffFactor)
			if delay > s.retry.MaxDelay {
				delay = s.retry.MaxDelay
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !s.dialect.Retryable(err) {
			return err
		}
	}
	return fmt.Errorf("operation failed after %d retries: %w", s.retry.MaxRetries, lastErr)
}
