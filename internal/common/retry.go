package common

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// RetryPolicy bounds how often and how slowly an operation is retried.
type RetryPolicy struct {
	MaxRetries int           // retries after the first attempt
	Backoff    time.Duration // first sleep; doubled after each retry
	MaxBackoff time.Duration // cap for a single sleep
}

// RetryDelay lets an error override the next sleep (e.g. from Retry-After).
type RetryDelay interface {
	RetryAfter() time.Duration
}

// Retry runs fn until it succeeds, returns a non-retryable error, the retry
// budget is spent, or ctx ends. The last error is returned.
func Retry(ctx context.Context, p RetryPolicy, op string, logger *slog.Logger, retryable func(error) bool, fn func(ctx context.Context) error) error {
	if logger == nil {
		logger = slog.Default()
	}
	backoff := p.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	maxBackoff := p.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = 10 * time.Second
	}

	var err error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			if err != nil {
				return err
			}
			return cerr
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return err
		}
		if attempt == p.MaxRetries {
			return err
		}

		sleepFor := backoff
		var rd RetryDelay
		if errors.As(err, &rd) && rd.RetryAfter() > 0 {
			sleepFor = rd.RetryAfter()
		}
		if sleepFor > maxBackoff {
			sleepFor = maxBackoff
		}

		logger.Warn("retry.scheduled",
			"op", op,
			"attempt", attempt+1,
			"max_retries", p.MaxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		t := time.NewTimer(sleepFor)
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}
		backoff *= 2
	}
	return err
}
