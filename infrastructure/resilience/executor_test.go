package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/pitchroom/domain/config"
)

func fastExecutor(opts ...Option) *Executor {
	base := []Option{WithRetryDelay(time.Millisecond), WithTimeout(time.Second)}
	return NewExecutorWithOptions(append(base, opts...)...)
}

func TestDefaultExecutorConfig(t *testing.T) {
	t.Parallel()

	c := DefaultExecutorConfig()
	if c.MaxConcurrent != 8 {
		t.Errorf("MaxConcurrent = %d, want 8", c.MaxConcurrent)
	}
	if c.RetryMaxAttempts != 3 {
		t.Errorf("RetryMaxAttempts = %d, want 3", c.RetryMaxAttempts)
	}
	if c.DefaultTimeout != 60*time.Second {
		t.Errorf("DefaultTimeout = %v, want 60s", c.DefaultTimeout)
	}
}

func TestConfigFromGeneration(t *testing.T) {
	t.Parallel()

	g := config.GenerationConfig{
		Timeout: config.Duration(5 * time.Second),
		Resilience: config.ResilienceConfig{
			Retry:    config.RetryConfig{MaxAttempts: 7},
			Bulkhead: config.BulkheadConfig{MaxConcurrent: 2},
		},
	}
	c := ConfigFromGeneration(g)

	if c.RetryMaxAttempts != 7 || c.MaxConcurrent != 2 || c.DefaultTimeout != 5*time.Second {
		t.Errorf("ConfigFromGeneration() = %+v", c)
	}
	if c.CircuitBreakerThreshold != 5 {
		t.Errorf("unset threshold should keep default, got %d", c.CircuitBreakerThreshold)
	}
}

func TestFromGeneration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		gen      config.GenerationConfig
		wantOpts int
	}{
		{"unset", config.GenerationConfig{}, 0},
		{"timeout only", config.GenerationConfig{Timeout: config.Duration(time.Second)}, 1},
		{"defaults", config.Default().Generation, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := len(FromGeneration(tt.gen)); got != tt.wantOpts {
				t.Errorf("FromGeneration() gave %d options, want %d", got, tt.wantOpts)
			}
		})
	}

	exec := NewExecutorWithOptions(FromGeneration(config.GenerationConfig{
		Resilience: config.ResilienceConfig{Retry: config.RetryConfig{MaxAttempts: 1, InitialDelay: config.Duration(time.Millisecond)}},
	})...)
	var calls atomic.Int32
	_, err := exec.Execute(context.Background(), func(context.Context) (string, error) {
		calls.Add(1)
		return "", errors.New("boom")
	})
	if err == nil {
		t.Fatal("Execute() should fail")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want a single attempt", calls.Load())
	}
}

func TestExecutor_Execute_Success(t *testing.T) {
	t.Parallel()

	out, err := fastExecutor().Execute(context.Background(), func(context.Context) (string, error) {
		return "سلام", nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != "سلام" {
		t.Errorf("Execute() = %q", out)
	}
}

func TestExecutor_Execute_RetriesTransientFailure(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	out, err := fastExecutor().Execute(context.Background(), func(context.Context) (string, error) {
		if calls.Add(1) < 3 {
			return "", errors.New("503")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != "ok" || calls.Load() != 3 {
		t.Errorf("Execute() = %q after %d calls, want ok after 3", out, calls.Load())
	}
}

func TestExecutor_Execute_Failure(t *testing.T) {
	t.Parallel()

	_, err := fastExecutor(WithRetryAttempts(2)).Execute(context.Background(), func(context.Context) (string, error) {
		return "", errors.New("boom")
	})
	if err == nil {
		t.Error("Execute() should return error")
	}
}

func TestExecutor_Execute_NonRetryable(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	_, err := fastExecutor().Execute(context.Background(), func(context.Context) (string, error) {
		calls.Add(1)
		return "", fmt.Errorf("401 unauthorized: %w", ErrNonRetryable)
	})
	if !errors.Is(err, ErrNonRetryable) {
		t.Errorf("error = %v, want ErrNonRetryable", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestExecutor_Execute_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fastExecutor().Execute(ctx, func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	if err == nil {
		t.Error("Execute() should return error on context cancellation")
	}
}

func TestExecutor_ExecuteSimple(t *testing.T) {
	t.Parallel()

	var calls int
	_, err := fastExecutor().ExecuteSimple(context.Background(), func(context.Context) (string, error) {
		calls++
		return "", errors.New("once")
	})
	if err == nil || calls != 1 {
		t.Errorf("ExecuteSimple() err = %v, calls = %d", err, calls)
	}
}

func TestExecutor_NegativeConfig(t *testing.T) {
	t.Parallel()

	e := NewExecutor(ExecutorConfig{MaxConcurrent: -1, CircuitBreakerThreshold: -1, RetryMaxAttempts: -1})
	out, err := e.Execute(context.Background(), func(context.Context) (string, error) { return "x", nil })
	if err != nil || out != "x" {
		t.Errorf("Execute() = %q, %v", out, err)
	}
}
