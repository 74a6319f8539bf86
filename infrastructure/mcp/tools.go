package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/pitchroom/application"
	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
)

// ErrInvalidInput is returned for malformed tool arguments.
var ErrInvalidInput = errors.New("invalid tool input")

// Handler runs one tool call.
type Handler func(ctx context.Context, input json.RawMessage) (string, error)

// Tool is a named session operation offered over MCP.
type Tool struct {
	Name        string
	Description string
	Handler     Handler
}

type sessionInput struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message,omitempty"`
	Format    string `json:"format,omitempty"`
}

type startOutput struct {
	SessionID string `json:"session_id"`
	Welcome   string `json:"welcome"`
}

type turnOutput struct {
	Entries []application.Entry `json:"entries"`
	Phase   negotiation.Phase   `json:"phase"`
	Active  bool                `json:"active"`
}

type closeOutput struct {
	SessionID string `json:"session_id"`
	Closed    bool   `json:"closed"`
	Warning   string `json:"warning,omitempty"`
}

// SessionTools returns the tools that drive sessions held by m.
func SessionTools(m *application.Manager) []Tool {
	return []Tool{
		{
			Name:        "start_session",
			Description: "Start a new pitch session and return its ID and welcome text.",
			Handler: func(ctx context.Context, _ json.RawMessage) (string, error) {
				s, welcome, err := m.Start(ctx)
				if err != nil {
					return "", err
				}
				return encode(startOutput{SessionID: s.ID(), Welcome: welcome})
			},
		},
		{
			Name:        "process_turn",
			Description: "Send the founder's message to a session and return the replies in order.",
			Handler: func(ctx context.Context, raw json.RawMessage) (string, error) {
				in, err := decodeInput(raw, true)
				if err != nil {
					return "", err
				}
				if strings.TrimSpace(in.Message) == "" {
					return "", fmt.Errorf("%w: message is required", ErrInvalidInput)
				}
				s, err := m.Get(in.SessionID)
				if err != nil {
					return "", err
				}
				entries, err := s.ProcessTurn(ctx, in.Message)
				if err != nil {
					return "", err
				}
				return encode(turnOutput{Entries: entries, Phase: s.Phase(), Active: s.IsActive()})
			},
		},
		{
			Name:        "session_status",
			Description: "Return the current phase, time left and summary of a session.",
			Handler: func(_ context.Context, raw json.RawMessage) (string, error) {
				s, err := lookup(m, raw)
				if err != nil {
					return "", err
				}
				return encode(s.Status())
			},
		},
		{
			Name:        "final_report",
			Description: "Return the full report of a session as JSON.",
			Handler: func(_ context.Context, raw json.RawMessage) (string, error) {
				s, err := lookup(m, raw)
				if err != nil {
					return "", err
				}
				return encode(s.FinalReport())
			},
		},
		{
			Name:        "export_report",
			Description: "Render a session report as json or text.",
			Handler: func(_ context.Context, raw json.RawMessage) (string, error) {
				in, err := decodeInput(raw, true)
				if err != nil {
					return "", err
				}
				s, err := m.Get(in.SessionID)
				if err != nil {
					return "", err
				}
				format := in.Format
				if format == "" {
					format = "json"
				}
				data, err := s.ExportReport(format)
				if err != nil {
					return "", err
				}
				return string(data), nil
			},
		},
		{
			Name:        "close_session",
			Description: "End a session if it is still running and release it.",
			Handler: func(ctx context.Context, raw json.RawMessage) (string, error) {
				in, err := decodeInput(raw, true)
				if err != nil {
					return "", err
				}
				if err := m.Remove(ctx, in.SessionID); errors.Is(err, application.ErrSessionNotFound) {
					return "", err
				} else if err != nil {
					return encode(closeOutput{SessionID: in.SessionID, Closed: true, Warning: err.Error()})
				}
				return encode(closeOutput{SessionID: in.SessionID, Closed: true})
			},
		},
	}
}

func lookup(m *application.Manager, raw json.RawMessage) (*application.Session, error) {
	in, err := decodeInput(raw, true)
	if err != nil {
		return nil, err
	}
	return m.Get(in.SessionID)
}

func decodeInput(raw json.RawMessage, needSession bool) (sessionInput, error) {
	var in sessionInput
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &in); err != nil {
			return in, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	if needSession && in.SessionID == "" {
		return in, fmt.Errorf("%w: session_id is required", ErrInvalidInput)
	}
	return in, nil
}

func encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(data), nil
}
