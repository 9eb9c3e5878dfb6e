// Package retry executes operations with exponential backoff.
package retry

import (
	"context"
	"math"
	"time"

	"github.com/TAKIS21345/techsteps-sub005/internal/recovery/metrics"
)

// Config defines retry behavior. Zero-valued delay fields are filled from
// defaults; a nil RetryIf retries every error.
type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	RetryIf    func(error) bool
}

// DefaultConfig provides sensible defaults: 3 retries, 1s base, 10s cap,
// doubling each attempt.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
	}
}

// Delay returns the backoff delay after the given attempt (0-indexed):
// min(BaseDelay * Multiplier^attempt, MaxDelay).
func (c Config) Delay(attempt int) time.Duration {
	delay := float64(c.BaseDelay) * math.Pow(c.Multiplier, float64(attempt))
	if delay > float64(c.MaxDelay) {
		return c.MaxDelay
	}
	return time.Duration(delay)
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.BaseDelay <= 0 {
		c.BaseDelay = def.BaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = def.MaxDelay
	}
	if c.Multiplier <= 1 {
		c.Multiplier = def.Multiplier
	}
	return c
}

// Do runs op until it succeeds, the error is not retryable, or all attempts
// are used. Attempt indices run 0..MaxRetries inclusive, so MaxRetries=3
// yields at most 4 total tries. The last error is the one returned.
func Do[T any](ctx context.Context, cfg Config, op func(context.Context) (T, error)) (T, error) {
	var zero T
	cfg = cfg.normalized()

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if cfg.RetryIf != nil && !cfg.RetryIf(err) {
			return zero, err
		}
		if attempt == cfg.MaxRetries {
			break
		}

		metrics.RetryAttempts.Inc()
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(cfg.Delay(attempt)):
		}
	}

	return zero, lastErr
}

// Run is Do for operations with no result.
func Run(ctx context.Context, cfg Config, op func(context.Context) error) error {
	_, err := Do(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
