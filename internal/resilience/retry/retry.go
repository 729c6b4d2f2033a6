// Package retry is the synchronous, in-request retry path: a bounded number
// of immediate attempts with no persistence. Anything that needs delays or
// durability goes through the deferred operation queue instead.
package retry

import (
	"context"

	"tourbook/pkg/logger"
)

// Do runs fn up to maxAttempts times, stopping at the first success. The
// error from the final attempt is returned as-is, unwrapped, so callers can
// still classify it. Attempts are immediate; pacing is the caller's problem.
func Do(ctx context.Context, log *logger.Logger, label string, maxAttempts int, fn func(context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			if attempt > 1 {
				log.Info("Operation succeeded after retry",
					"label", label,
					"attempt", attempt,
				)
			}
			return nil
		}

		log.Warn("Operation attempt failed",
			"label", label,
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", lastErr,
		)
	}

	return lastErr
}

// DoValue is Do for operations that produce a result.
func DoValue[T any](ctx context.Context, log *logger.Logger, label string, maxAttempts int, fn func(context.Context) (T, error)) (T, error) {
	var result T
	err := Do(ctx, log, label, maxAttempts, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = fn(ctx)
		return innerErr
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
