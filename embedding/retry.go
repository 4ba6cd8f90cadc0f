package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type retrier struct {
	maxRetries    int
	timeout       time.Duration
	initialDelay  time.Duration
	backoffFactor float64
	logger        zerolog.Logger
}

func newRetrier(cfg Config, o options) retrier {
	return retrier{
		maxRetries:    cfg.maxRetries(),
		timeout:       cfg.timeout(),
		initialDelay:  o.initialDelay,
		backoffFactor: 2.0,
		logger:        o.logger,
	}
}

// do runs fn with a per-attempt timeout and exponential backoff between
// retryable failures.
func (r retrier) do(ctx context.Context, provider string, fn func(ctx context.Context) error) error {
	delay := r.initialDelay
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		lastErr = fn(callCtx)
		cancel()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
		if attempt < r.maxRetries {
			r.logger.Debug().Err(lastErr).Str("provider", provider).Int("attempt", attempt+1).Msg("retrying embedding call")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * r.backoffFactor)
			}
		}
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
