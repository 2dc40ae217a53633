package atomicsave

import (
	"context"
	"errors"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/soccer-coach/internal/platform/logging"
)

const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
)

// WithRetry calls fn up to maxRetries times with a fixed delay between
// attempts and returns the last error when every attempt fails.
// maxRetries <= 0 and delay < 0 select the defaults.
func WithRetry[T any](ctx context.Context, fn func(context.Context) (T, error), maxRetries int, delay time.Duration, logger *logging.Logger) (T, error) {
	var zero T
	if fn == nil {
		return zero, crerr.New("retry function is required")
	}
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if delay < 0 {
		delay = DefaultRetryDelay
	}
	if logger == nil {
		logger = logging.Default()
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		lastErr = err
		if attempt == maxRetries {
			break
		}

		logger.WarnContext(ctx, "attempt failed, retrying",
			"attempt", attempt,
			"max_attempts", maxRetries,
			"delay", delay.String(),
			"error", err,
		)
		if err := sleep(ctx, delay); err != nil {
			return zero, crerr.Wrapf(err, "retry aborted after attempt %d: %v", attempt, lastErr)
		}
	}

	return zero, lastErr
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. WithRetry returns the wrapped
// error immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
