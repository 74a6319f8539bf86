package notification

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
)

func TestNewEvent(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	e, err := NewEvent(EventPhaseChanged, "s-1", at, PhaseChangedPayload{
		From: negotiation.PhaseIntroduction,
		To:   negotiation.PhaseFinancialQuestions,
	})
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}
	if e.ID == "" || e.SessionID != "s-1" || !e.Timestamp.Equal(at) {
		t.Errorf("event = %+v", e)
	}

	var p PhaseChangedPayload
	if err := e.DecodePayload(&p); err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}
	if p.To != negotiation.PhaseFinancialQuestions || p.Forced {
		t.Errorf("payload = %+v", p)
	}

	if _, err := NewEvent(EventDealClosed, "s-1", at, func() {}); err == nil {
		t.Error("NewEvent() with unencodable payload should fail")
	}
}

func TestEndpoint_Select(t *testing.T) {
	t.Parallel()

	events := []*Event{
		{Type: EventSessionStarted},
		{Type: EventDealClosed},
		{Type: EventSessionCompleted},
	}

	tests := []struct {
		name   string
		filter []EventType
		want   int
	}{
		{"all", nil, 3},
		{"deals only", []EventType{EventDealClosed}, 1},
		{"two types", []EventType{EventSessionStarted, EventSessionCompleted}, 2},
		{"no match", []EventType{EventReportSaved}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ep := &Endpoint{URL: "http://example.test", Events: tt.filter}
			if got := len(ep.Select(events)); got != tt.want {
				t.Errorf("Select() = %d events, want %d", got, tt.want)
			}
		})
	}
}
