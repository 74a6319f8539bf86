// Package notification provides domain models for session webhooks.
package notification

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
)

// EventType represents the type of notification event.
type EventType string

// Event types for webhook notifications.
const (
	EventSessionStarted   EventType = "session.started"
	EventPhaseChanged     EventType = "phase.changed"
	EventDealClosed       EventType = "deal.closed"
	EventSessionCompleted EventType = "session.completed"
	EventReportSaved      EventType = "report.saved"
)

// EventTypes lists every event type.
func EventTypes() []EventType {
	return []EventType{
		EventSessionStarted,
		EventPhaseChanged,
		EventDealClosed,
		EventSessionCompleted,
		EventReportSaved,
	}
}

// Event represents a notification event to be sent to webhooks.
type Event struct {
	// ID is a unique identifier for this event.
	ID string `json:"id"`
	// Type is the event type.
	Type EventType `json:"type"`
	// Timestamp is the session clock time the event happened at.
	Timestamp time.Time `json:"timestamp"`
	// SessionID is the session the event belongs to.
	SessionID string `json:"session_id"`
	// Payload contains the event-specific data.
	Payload json.RawMessage `json:"payload"`
}

// SessionStartedPayload contains data for session.started events.
type SessionStartedPayload struct {
	Phase negotiation.Phase `json:"phase"`
}

// PhaseChangedPayload contains data for phase.changed events.
type PhaseChangedPayload struct {
	From negotiation.Phase `json:"from"`
	To   negotiation.Phase `json:"to"`
	// Forced is set when a closed deal ended the session early.
	Forced bool `json:"forced,omitempty"`
}

// DealClosedPayload contains data for deal.closed events.
type DealClosedPayload struct {
	Investment  int64   `json:"investment"`
	Equity      int64   `json:"equity"`
	SuccessRate float64 `json:"success_rate"`
}

// SessionCompletedPayload contains data for session.completed events.
type SessionCompletedPayload struct {
	Phase      negotiation.Phase `json:"phase"`
	DealClosed bool              `json:"deal_closed"`
	Turns      int               `json:"turns"`
	Duration   float64           `json:"duration"`
	Percentage float64           `json:"percentage"`
}

// ReportSavedPayload contains data for report.saved events.
type ReportSavedPayload struct {
	ReportID string `json:"report_id"`
	Backend  string `json:"backend"`
}

// NewEvent creates a new notification event.
func NewEvent(eventType EventType, sessionID string, at time.Time, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: at,
		SessionID: sessionID,
		Payload:   payloadBytes,
	}, nil
}

// DecodePayload unmarshals the event payload into the given struct.
func (e *Event) DecodePayload(v any) error {
	if e.Payload == nil {
		return nil
	}
	return json.Unmarshal(e.Payload, v)
}
