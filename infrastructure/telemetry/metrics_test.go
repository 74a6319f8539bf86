package telemetry

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupTestMetrics creates a provider backed by its own manual reader.
func setupTestMetrics(t *testing.T) (*sdkmetric.ManualReader, *MetricsProvider) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	cfg := DefaultMetricsConfig()
	cfg.MeterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	mp := NewMetricsProvider(cfg)
	if mp.Error() != nil {
		t.Fatalf("failed to create metrics provider: %v", mp.Error())
	}
	t.Cleanup(func() { _ = reader.Shutdown(context.Background()) })

	return reader, mp
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", m.Name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewMetricsProvider(t *testing.T) {
	t.Parallel()

	_, mp := setupTestMetrics(t)
	if mp == nil {
		t.Fatal("NewMetricsProvider returned nil")
	}
}

func TestMetricsProvider_Record(t *testing.T) {
	t.Parallel()

	reader, mp := setupTestMetrics(t)
	ctx := context.Background()

	mp.RecordTurn(ctx, "introduction", 20*time.Millisecond)
	mp.RecordTurn(ctx, "introduction", 30*time.Millisecond)
	mp.RecordPhaseTransition(ctx, "introduction", "financial_questions", false)
	mp.RecordGeneration(ctx, "competitor", true, time.Millisecond)
	mp.RecordGeneration(ctx, "competitor", false, time.Millisecond)
	mp.RecordDealClosed(ctx, 5_000_000_000, 20)
	mp.RecordReportSaved(ctx, "sqlite", false)
	mp.IncrementActiveSessions(ctx)
	mp.IncrementActiveSessions(ctx)
	mp.DecrementActiveSessions(ctx)

	got := collect(t, reader)

	tests := []struct {
		name string
		want int64
	}{
		{"pitchroom.turns", 2},
		{"pitchroom.phase.transitions", 1},
		{"pitchroom.generations", 2},
		{"pitchroom.deals.closed", 1},
		{"pitchroom.reports.saved", 1},
		{"pitchroom.errors", 2},
		{"pitchroom.sessions.active", 1},
	}
	for _, tt := range tests {
		m, ok := got[tt.name]
		if !ok {
			t.Errorf("%s metric not found", tt.name)
			continue
		}
		if total := sumOf(t, m); total != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, total, tt.want)
		}
	}

	if _, ok := got["pitchroom.turn.duration"].Data.(metricdata.Histogram[float64]); !ok {
		t.Error("pitchroom.turn.duration should be a histogram")
	}
}

func TestNoopMetricsProvider(t *testing.T) {
	t.Parallel()

	var m Metrics = &NoopMetricsProvider{}
	ctx := context.Background()
	m.RecordTurn(ctx, "x", 0)
	m.RecordPhaseTransition(ctx, "a", "b", true)
	m.RecordGeneration(ctx, "r", false, 0)
	m.RecordDealClosed(ctx, 1, 1)
	m.RecordReportSaved(ctx, "memory", true)
	m.RecordError(ctx, "x", nil)
	m.IncrementActiveSessions(ctx)
	m.DecrementActiveSessions(ctx)
}
