// Package publish fans a post out to its target platforms and folds the
// per-platform results back into the pipeline.
package publish

import (
	"context"
	"errors"
	"time"

	"github.com/postline/postline/internal/platform"
	"github.com/sethvargo/go-retry"
)

// RetryConfig bounds the exponential backoff wrapped around one adapter
// call. The same policy applies to every platform.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt, so a
	// call runs at most MaxRetries+1 times.
	MaxRetries uint64
	BaseDelay  time.Duration
	Jitter     time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
		Jitter:     250 * time.Millisecond,
	}
}

// withRetry runs fn under exponential backoff with jitter. Only errors the
// adapter marked retryable are retried; a fatal error stops immediately. In
// both cases the adapter's error reaches the caller unchanged.
func withRetry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (*platform.Result, error)) (*platform.Result, error) {
	var result *platform.Result

	backoff := retry.NewExponential(cfg.BaseDelay)
	if cfg.Jitter > 0 {
		backoff = retry.WithJitter(cfg.Jitter, backoff)
	}
	backoff = retry.WithMaxRetries(cfg.MaxRetries, backoff)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		res, err := fn(ctx)
		if err != nil {
			if platform.IsRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		// Unwrap the retryable marker so the original adapter error
		// propagates on exhaustion.
		var perr *platform.Error
		if errors.As(err, &perr) {
			return nil, perr
		}
		return nil, err
	}
	return result, nil
}
