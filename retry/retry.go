// Package retry implements bounded retries with pluggable backoff and
// retry conditions. Used by the transport layer only; the cache layer
// deliberately surfaces failures without retrying.
package retry

import (
	"context"
	"errors"
	"time"
)

// Do runs operation, retrying on failure. Returns the aggregated error
// when all attempts fail.
func Do(ctx context.Context, operation func() error, opts ...Option) error {
	_, err := DoWithData(ctx, func() (struct{}, error) {
		return struct{}{}, operation()
	}, opts...)

	return err
}

// DoWithData runs operation and returns its data, retrying on failure.
func DoWithData[T any](ctx context.Context, operation func() (T, error), opts ...Option) (T, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var result T
	var errs []error

	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		var err error
		if cfg.timeout > 0 {
			opCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
			result, err = executeWithContext(opCtx, operation)
			cancel()
		} else {
			result, err = operation()
		}

		if err == nil {
			return result, nil
		}

		errs = append(errs, err)

		if !cfg.condition.ShouldRetry(err, attempt) {
			return result, &MultiError{Errors: errs, Attempts: attempt}
		}

		if attempt == cfg.maxAttempts {
			return result, &MultiError{Errors: errs, Attempts: attempt}
		}

		if cfg.onRetry != nil {
			cfg.onRetry(attempt, err)
		}

		backoff := cfg.backoff.Next(attempt)

		// Stop early when the context deadline cannot cover the backoff.
		if deadline, ok := ctx.Deadline(); ok {
			if time.Until(deadline) < backoff {
				return result, &MultiError{
					Errors:   append(errs, context.DeadlineExceeded),
					Attempts: attempt,
				}
			}
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return result, ctx.Err()
		}
	}

	return result, &MultiError{Errors: errs, Attempts: cfg.maxAttempts}
}

// executeWithContext runs operation under a timeout context.
func executeWithContext[T any](ctx context.Context, operation func() (T, error)) (T, error) {
	type result struct {
		data T
		err  error
	}

	ch := make(chan result, 1)

	go func() {
		data, err := operation()
		ch <- result{data: data, err: err}
	}()

	select {
	case res := <-ch:
		return res.data, res.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// GetAttempts extracts the attempt count from a retry error.
func GetAttempts(err error) int {
	var multiErr *MultiError
	if errors.As(err, &multiErr) {
		return multiErr.Attempts
	}
	return 0
}

// GetAllErrors extracts every per-attempt error from a retry error.
func GetAllErrors(err error) []error {
	var multiErr *MultiError
	if errors.As(err, &multiErr) {
		return multiErr.Errors
	}
	return nil
}
