package retry

import (
	"time"
)

// Config is the per-call retry configuration.
type Config struct {
	maxAttempts int
	backoff     BackoffStrategy
	condition   RetryCondition
	onRetry     func(attempt int, err error)
	timeout     time.Duration
}

func defaultConfig() *Config {
	return &Config{
		maxAttempts: 3,
		backoff:     ExponentialBackoff(time.Second),
		condition:   AlwaysRetry(),
	}
}

// Option mutates the retry configuration.
type Option func(*Config)

// MaxAttempts sets the total attempt count (first try included).
func MaxAttempts(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// Backoff sets the backoff strategy.
func Backoff(b BackoffStrategy) Option {
	return func(c *Config) {
		if b != nil {
			c.backoff = b
		}
	}
}

// Condition sets the retry condition.
func Condition(cond RetryCondition) Option {
	return func(c *Config) {
		if cond != nil {
			c.condition = cond
		}
	}
}

// OnRetry sets a callback fired before each retry wait.
func OnRetry(f func(attempt int, err error)) Option {
	return func(c *Config) {
		c.onRetry = f
	}
}

// Timeout bounds each individual attempt.
func Timeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// HTTPDefaults is the retry policy the transport uses for idempotent calls:
// 3 attempts, short exponential backoff.
var HTTPDefaults = []Option{
	MaxAttempts(3),
	Backoff(ExponentialBackoff(200*time.Millisecond, WithMaxDelay(2*time.Second))),
}
