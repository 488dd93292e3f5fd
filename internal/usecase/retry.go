package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"aomame/internal/domain"
)

// RetryPolicy bounds the retries of a single remote call.
type RetryPolicy struct {
	Attempts int           // total attempts, including the first
	Delay    time.Duration // fixed wait between attempts
}

// DefaultRetryPolicy matches the single-unit policy used against providers
// that fail intermittently.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 10, Delay: time.Second}
}

// Retry runs op until it succeeds, the attempt budget is spent, or the error
// is not retryable. After the last failed attempt it returns an
// *domain.ExhaustedError wrapping the final error.
func Retry[T any](ctx context.Context, p RetryPolicy, logger *zap.Logger, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if !domain.Retryable(err) {
			return zero, err
		}
		lastErr = err
		if attempt == attempts {
			break
		}

		logger.Warn("Retrying remote call",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("delay", p.Delay),
			zap.Error(err),
		)
		if err := sleep(ctx, p.Delay); err != nil {
			return zero, err
		}
	}
	return zero, &domain.ExhaustedError{Attempts: attempts, Last: lastErr}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
