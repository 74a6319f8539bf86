package application

import (
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
	"github.com/felixgeelhaar/pitchroom/domain/notification"
	"github.com/felixgeelhaar/pitchroom/domain/report"
	"github.com/felixgeelhaar/pitchroom/infrastructure/llm"
	"github.com/felixgeelhaar/pitchroom/infrastructure/telemetry"
)

// Config contains everything a session needs besides its ID.
type Config struct {
	Generator      *llm.Generator
	Durations      map[negotiation.Phase]time.Duration
	ClampScores    bool
	Clock          func() time.Time
	Metrics        telemetry.Metrics
	Tracer         trace.Tracer
	Store          report.Store
	StoreBackend   string
	SaveOnComplete bool
	Notifier       notification.Notifier
}

// Option configures a session.
type Option func(*Config)

// WithGenerator sets the reply generator.
func WithGenerator(g *llm.Generator) Option {
	return func(c *Config) {
		c.Generator = g
	}
}

// WithDurations overrides phase durations. Missing phases keep their defaults.
func WithDurations(d map[negotiation.Phase]time.Duration) Option {
	return func(c *Config) {
		c.Durations = d
	}
}

// WithClampScores caps percentages and success rates at 100.
func WithClampScores(clamp bool) Option {
	return func(c *Config) {
		c.ClampScores = clamp
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Clock = now
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m telemetry.Metrics) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}

// WithTracer sets the tracer used for turn spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Config) {
		c.Tracer = t
	}
}

// WithStore sets where finished reports are saved. backend names the
// store in logs and metrics.
func WithStore(s report.Store, backend string) Option {
	return func(c *Config) {
		c.Store = s
		c.StoreBackend = backend
	}
}

// WithSaveOnComplete saves the report once when the session finishes.
func WithSaveOnComplete(save bool) Option {
	return func(c *Config) {
		c.SaveOnComplete = save
	}
}

// WithNotifier sets where session lifecycle events are sent.
func WithNotifier(n notification.Notifier) Option {
	return func(c *Config) {
		c.Notifier = n
	}
}

func buildConfig(opts []Option) Config {
	var c Config
	for _, opt := range opts {
		opt(&c)
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.Metrics == nil {
		c.Metrics = &telemetry.NoopMetricsProvider{}
	}
	if c.Tracer == nil {
		c.Tracer = noop.NewTracerProvider().Tracer("pitchroom")
	}
	if c.Notifier == nil {
		c.Notifier = notification.NopNotifier{}
	}
	if c.StoreBackend == "" {
		c.StoreBackend = "custom"
	}
	return c
}
