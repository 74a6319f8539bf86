package resilience

import (
	"time"

	"github.com/felixgeelhaar/pitchroom/domain/config"
)

// Option adjusts an ExecutorConfig.
type Option func(*ExecutorConfig)

// FromGeneration turns the generation settings into executor options.
// Settings left at zero produce no option, so the defaults stand.
func FromGeneration(g config.GenerationConfig) []Option {
	r := g.Resilience
	var opts []Option
	if r.Bulkhead.MaxConcurrent > 0 {
		opts = append(opts, WithMaxConcurrent(r.Bulkhead.MaxConcurrent))
	}
	if r.CircuitBreaker.Threshold > 0 {
		opts = append(opts, WithBreakerThreshold(r.CircuitBreaker.Threshold))
	}
	if r.CircuitBreaker.Timeout > 0 {
		opts = append(opts, WithBreakerTimeout(r.CircuitBreaker.Timeout.Duration()))
	}
	if r.Retry.MaxAttempts > 0 {
		opts = append(opts, WithRetryAttempts(r.Retry.MaxAttempts))
	}
	if r.Retry.InitialDelay > 0 {
		opts = append(opts, WithRetryDelay(r.Retry.InitialDelay.Duration()))
	}
	if r.Retry.Multiplier > 0 {
		opts = append(opts, WithBackoffMultiplier(r.Retry.Multiplier))
	}
	if g.Timeout > 0 {
		opts = append(opts, WithTimeout(g.Timeout.Duration()))
	}
	return opts
}

// ConfigFromGeneration is DefaultExecutorConfig with the generation
// settings applied.
func ConfigFromGeneration(g config.GenerationConfig) ExecutorConfig {
	return apply(DefaultExecutorConfig(), FromGeneration(g))
}

// WithMaxConcurrent caps generation calls in flight across all sessions.
func WithMaxConcurrent(n int) Option {
	return func(c *ExecutorConfig) { c.MaxConcurrent = n }
}

// WithBreakerThreshold sets how many consecutive provider failures open
// the breaker.
func WithBreakerThreshold(n int) Option {
	return func(c *ExecutorConfig) { c.CircuitBreakerThreshold = n }
}

// WithBreakerTimeout sets how long an open breaker rejects calls.
func WithBreakerTimeout(d time.Duration) Option {
	return func(c *ExecutorConfig) { c.CircuitBreakerTimeout = d }
}

// WithRetryAttempts sets the attempts per reply, the first included.
func WithRetryAttempts(n int) Option {
	return func(c *ExecutorConfig) { c.RetryMaxAttempts = n }
}

// WithRetryDelay sets the delay before the first retry.
func WithRetryDelay(d time.Duration) Option {
	return func(c *ExecutorConfig) { c.RetryInitialDelay = d }
}

func WithBackoffMultiplier(m float64) Option {
	return func(c *ExecutorConfig) { c.RetryBackoffMultiplier = m }
}

// WithTimeout bounds one reply, retries included.
func WithTimeout(d time.Duration) Option {
	return func(c *ExecutorConfig) { c.DefaultTimeout = d }
}

// NewExecutorWithOptions builds an executor from the defaults and opts.
func NewExecutorWithOptions(opts ...Option) *Executor {
	return NewExecutor(apply(DefaultExecutorConfig(), opts))
}

func apply(c ExecutorConfig, opts []Option) ExecutorConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
