// Package telemetry provides OpenTelemetry metrics for pitch sessions.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsProvider provides access to metrics instruments.
type MetricsProvider struct {
	meter metric.Meter

	// Counters
	turns            metric.Int64Counter
	phaseTransitions metric.Int64Counter
	generations      metric.Int64Counter
	dealsClosed      metric.Int64Counter
	reportsSaved     metric.Int64Counter
	errors           metric.Int64Counter

	// Histograms
	turnDuration       metric.Float64Histogram
	generationDuration metric.Float64Histogram

	// Gauges (using UpDownCounter for OpenTelemetry)
	activeSessions metric.Int64UpDownCounter

	initOnce sync.Once
	initErr  error
}

// MetricsConfig configures the metrics provider.
type MetricsConfig struct {
	// MeterName is the name of the meter (default: "github.com/felixgeelhaar/pitchroom").
	MeterName string
	// MeterVersion is the version of the meter.
	MeterVersion string
	// MeterProvider overrides the global provider.
	MeterProvider metric.MeterProvider
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MeterName:    "github.com/felixgeelhaar/pitchroom",
		MeterVersion: "1.0.0",
	}
}

// NewMetricsProvider creates a new metrics provider.
func NewMetricsProvider(config MetricsConfig) *MetricsProvider {
	if config.MeterName == "" {
		config.MeterName = DefaultMetricsConfig().MeterName
	}

	provider := config.MeterProvider
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(
		config.MeterName,
		metric.WithInstrumentationVersion(config.MeterVersion),
	)

	mp := &MetricsProvider{
		meter: meter,
	}

	mp.initOnce.Do(func() {
		mp.initErr = mp.initInstruments()
	})

	return mp
}

// initInstruments initializes all metric instruments.
func (mp *MetricsProvider) initInstruments() error {
	var err error

	counters := []struct {
		dst        *metric.Int64Counter
		name, desc string
		unit       string
	}{
		{&mp.turns, "pitchroom.turns", "Number of processed turns", "{turn}"},
		{&mp.phaseTransitions, "pitchroom.phase.transitions", "Number of phase transitions", "{transition}"},
		{&mp.generations, "pitchroom.generations", "Number of reply generations", "{generation}"},
		{&mp.dealsClosed, "pitchroom.deals.closed", "Number of closed deals", "{deal}"},
		{&mp.reportsSaved, "pitchroom.reports.saved", "Number of report save attempts", "{report}"},
		{&mp.errors, "pitchroom.errors", "Number of errors", "{error}"},
	}
	for _, c := range counters {
		*c.dst, err = mp.meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return err
		}
	}

	mp.turnDuration, err = mp.meter.Float64Histogram(
		"pitchroom.turn.duration",
		metric.WithDescription("Duration of a processed turn"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.generationDuration, err = mp.meter.Float64Histogram(
		"pitchroom.generation.duration",
		metric.WithDescription("Duration of a reply generation"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.activeSessions, err = mp.meter.Int64UpDownCounter(
		"pitchroom.sessions.active",
		metric.WithDescription("Number of active sessions"),
		metric.WithUnit("{session}"),
	)
	return err
}

// Error returns any initialization error.
func (mp *MetricsProvider) Error() error {
	return mp.initErr
}

// RecordTurn records a committed turn.
func (mp *MetricsProvider) RecordTurn(ctx context.Context, phase string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("session.phase", phase))
	mp.turns.Add(ctx, 1, attrs)
	mp.turnDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordPhaseTransition records a phase change.
func (mp *MetricsProvider) RecordPhaseTransition(ctx context.Context, from, to string, forced bool) {
	mp.phaseTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("phase.from", from),
		attribute.String("phase.to", to),
		attribute.Bool("forced", forced),
	))
}

// RecordGeneration records one reply generation.
func (mp *MetricsProvider) RecordGeneration(ctx context.Context, role string, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("counterpart.role", role),
		attribute.Bool("success", success),
	}
	mp.generations.Add(ctx, 1, metric.WithAttributes(attrs...))
	mp.generationDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if !success {
		mp.errors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("error.type", "generation"),
			attribute.String("counterpart.role", role),
		))
	}
}

// RecordDealClosed records a closed deal.
func (mp *MetricsProvider) RecordDealClosed(ctx context.Context, investment int64, equity int64) {
	mp.dealsClosed.Add(ctx, 1, metric.WithAttributes(
		attribute.Int64("deal.investment", investment),
		attribute.Int64("deal.equity", equity),
	))
}

// RecordReportSaved records a report persistence attempt.
func (mp *MetricsProvider) RecordReportSaved(ctx context.Context, backend string, success bool) {
	mp.reportsSaved.Add(ctx, 1, metric.WithAttributes(
		attribute.String("storage.backend", backend),
		attribute.Bool("success", success),
	))
	if !success {
		mp.errors.Add(ctx, 1, metric.WithAttributes(attribute.String("error.type", "report_save")))
	}
}

// RecordError records an error.
func (mp *MetricsProvider) RecordError(ctx context.Context, errorType string, details map[string]string) {
	attrs := []attribute.KeyValue{
		attribute.String("error.type", errorType),
	}
	for k, v := range details {
		attrs = append(attrs, attribute.String(k, v))
	}

	mp.errors.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// IncrementActiveSessions increments the active sessions counter.
func (mp *MetricsProvider) IncrementActiveSessions(ctx context.Context) {
	mp.activeSessions.Add(ctx, 1)
}

// DecrementActiveSessions decrements the active sessions counter.
func (mp *MetricsProvider) DecrementActiveSessions(ctx context.Context) {
	mp.activeSessions.Add(ctx, -1)
}

// NoopMetricsProvider is a no-op metrics provider for testing or when metrics are disabled.
type NoopMetricsProvider struct{}

// RecordTurn is a no-op.
func (n *NoopMetricsProvider) RecordTurn(context.Context, string, time.Duration) {}

// RecordPhaseTransition is a no-op.
func (n *NoopMetricsProvider) RecordPhaseTransition(context.Context, string, string, bool) {}

// RecordGeneration is a no-op.
func (n *NoopMetricsProvider) RecordGeneration(context.Context, string, bool, time.Duration) {}

// RecordDealClosed is a no-op.
func (n *NoopMetricsProvider) RecordDealClosed(context.Context, int64, int64) {}

// RecordReportSaved is a no-op.
func (n *NoopMetricsProvider) RecordReportSaved(context.Context, string, bool) {}

// RecordError is a no-op.
func (n *NoopMetricsProvider) RecordError(context.Context, string, map[string]string) {}

// IncrementActiveSessions is a no-op.
func (n *NoopMetricsProvider) IncrementActiveSessions(context.Context) {}

// DecrementActiveSessions is a no-op.
func (n *NoopMetricsProvider) DecrementActiveSessions(context.Context) {}

// Metrics defines the interface for metrics recording.
type Metrics interface {
	RecordTurn(ctx context.Context, phase string, duration time.Duration)
	RecordPhaseTransition(ctx context.Context, from, to string, forced bool)
	RecordGeneration(ctx context.Context, role string, success bool, duration time.Duration)
	RecordDealClosed(ctx context.Context, investment int64, equity int64)
	RecordReportSaved(ctx context.Context, backend string, success bool)
	RecordError(ctx context.Context, errorType string, details map[string]string)
	IncrementActiveSessions(ctx context.Context)
	DecrementActiveSessions(ctx context.Context)
}

// Ensure implementations satisfy the interface.
var (
	_ Metrics = (*MetricsProvider)(nil)
	_ Metrics = (*NoopMetricsProvider)(nil)
)
