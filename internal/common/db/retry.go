package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"

	"github.com/AlibekovAA/bloglist/backend/internal/common/logger"
	"github.com/AlibekovAA/bloglist/backend/internal/observability/metrics"
)

// RetryConfig shapes the exponential backoff used for read queries.
// Writes are never retried; they run inside WithTx instead.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

var DefaultRetryConfig = RetryConfig{
	MaxAttempts:  3,
	InitialDelay: 100 * time.Millisecond,
	MaxDelay:     2 * time.Second,
	Multiplier:   2.0,
}

var retryableSQLStates = map[string]struct{}{
	"08000": {}, "08001": {}, "08003": {}, "08004": {}, "08006": {}, "08007": {}, "08P01": {},
	"40001": {}, "40P01": {},
	"55P03": {},
	"57P03": {},
}

func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := retryableSQLStates[pgErr.Code]
		return ok
	}

	// Connection failures that happened before anything reached the server.
	return pgconn.SafeToRetry(err)
}

// Retry runs query until it succeeds, fails with a non-retryable error, the
// context ends, or MaxAttempts is used up.
func Retry[T any](ctx context.Context, log *logger.Logger, config RetryConfig, name string, query func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	delay := config.InitialDelay
	attempts := max(config.MaxAttempts, 1)

	for attempt := 1; ; attempt++ {
		result, err := query(ctx)
		if err == nil {
			if attempt > 1 {
				log.WithFields(ctx, logger.Fields{"action": "db_retry", "operation": name}).
					Infof("succeeded after %d attempts", attempt)
			}
			return result, nil
		}
		if !isRetryableError(err) {
			return zero, err
		}
		if attempt == attempts {
			return zero, fmt.Errorf("%s: gave up after %d attempts: %w", name, attempts, err)
		}

		metrics.DBRetriesTotal.WithLabelValues(name).Inc()
		log.WithFields(ctx, logger.Fields{"action": "db_retry", "operation": name}).
			Warnf("attempt %d/%d failed: %v, retrying in %v", attempt, attempts, err, delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("%s: retry interrupted: %w", name, ctx.Err())
		case <-timer.C:
		}

		delay = min(time.Duration(float64(delay)*config.Multiplier), config.MaxDelay)
	}
}
