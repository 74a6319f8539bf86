package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/pitchroom/domain/notification"
	"github.com/felixgeelhaar/pitchroom/infrastructure/llm"
)

var t0 = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: t0}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testGenerator(p llm.Provider) *llm.Generator {
	return llm.NewGenerator(p, nil, llm.GeneratorConfig{Model: "test"})
}

// startedSession returns a started session on a fake clock.
func startedSession(t *testing.T, p llm.Provider, opts ...Option) (*Session, *fakeClock) {
	t.Helper()

	clk := newFakeClock()
	opts = append([]Option{WithGenerator(testGenerator(p)), WithClock(clk.Now)}, opts...)

	s, err := NewSession("s-test", opts...)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	if _, err := s.StartSession(context.Background()); err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	return s, clk
}

func mustTurn(t *testing.T, s *Session, msg string) []Entry {
	t.Helper()

	entries, err := s.ProcessTurn(context.Background(), msg)
	if err != nil {
		t.Fatalf("ProcessTurn(%q) error = %v", msg, err)
	}
	return entries
}

// recordingMetrics counts calls to the metrics recorder.
type recordingMetrics struct {
	mu          sync.Mutex
	turns       int
	transitions []string
	generations map[string]int
	failures    int
	deals       int
	saved       int
	active      int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{generations: make(map[string]int)}
}

func (m *recordingMetrics) RecordTurn(context.Context, string, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns++
}

func (m *recordingMetrics) RecordPhaseTransition(_ context.Context, from, to string, _ bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, from+"->"+to)
}

func (m *recordingMetrics) RecordGeneration(_ context.Context, role string, success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations[role]++
	if !success {
		m.failures++
	}
}

func (m *recordingMetrics) RecordDealClosed(context.Context, int64, int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deals++
}

func (m *recordingMetrics) RecordReportSaved(_ context.Context, _ string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.saved++
	}
}

func (m *recordingMetrics) RecordError(context.Context, string, map[string]string) {}

func (m *recordingMetrics) IncrementActiveSessions(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active++
}

func (m *recordingMetrics) DecrementActiveSessions(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active--
}

// funcProvider adapts a function to llm.Provider.
type funcProvider func(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error)

func (f funcProvider) Name() string { return "func" }

func (f funcProvider) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	return f(ctx, req)
}

func reply(text string) llm.CompletionResponse {
	return llm.CompletionResponse{Message: llm.Message{Role: llm.RoleAssistant, Content: text}}
}

// recordingNotifier keeps every event it is handed.
type recordingNotifier struct {
	mu     sync.Mutex
	events []*notification.Event
}

func (n *recordingNotifier) Notify(_ context.Context, e *notification.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return nil
}

func (n *recordingNotifier) Close(context.Context) error { return nil }

func (n *recordingNotifier) types() []notification.EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification.EventType, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}

func (n *recordingNotifier) find(typ notification.EventType) *notification.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e.Type == typ {
			return e
		}
	}
	return nil
}
