package retry

import "errors"

// RetryCondition decides whether a failed attempt should be retried.
type RetryCondition interface {
	ShouldRetry(err error, attempt int) bool
}

// ConditionFunc adapts a function to RetryCondition.
type ConditionFunc func(err error, attempt int) bool

// ShouldRetry implements RetryCondition.
func (f ConditionFunc) ShouldRetry(err error, attempt int) bool {
	return f(err, attempt)
}

// AlwaysRetry retries on every error.
func AlwaysRetry() RetryCondition {
	return ConditionFunc(func(err error, attempt int) bool {
		return true
	})
}

// NeverRetry disables retrying.
func NeverRetry() RetryCondition {
	return ConditionFunc(func(err error, attempt int) bool {
		return false
	})
}

// RetryIf retries when the predicate matches the error.
func RetryIf(predicate func(error) bool) RetryCondition {
	return ConditionFunc(func(err error, attempt int) bool {
		return predicate(err)
	})
}

// RetryOnErrors retries only when the error matches one of targets (errors.Is).
func RetryOnErrors(targets ...error) RetryCondition {
	return ConditionFunc(func(err error, attempt int) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	})
}

// SkipErrors retries unless the error matches one of targets (errors.Is).
func SkipErrors(targets ...error) RetryCondition {
	return ConditionFunc(func(err error, attempt int) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return false
			}
		}
		return true
	})
}
