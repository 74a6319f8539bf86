package application

import (
	"time"

	"github.com/felixgeelhaar/pitchroom/domain/counterpart"
	"github.com/felixgeelhaar/pitchroom/domain/ledger"
	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
)

// Entry is one message emitted by a turn, in the shape shown to the user.
type Entry struct {
	Agent        string             `json:"agent"`
	Role         negotiation.Role   `json:"role,omitempty"`
	Kind         ledger.Kind        `json:"kind"`
	Message      string             `json:"message"`
	Affect       negotiation.Affect `json:"affect,omitempty"`
	Satisfaction int                `json:"satisfaction"`
	Timestamp    time.Time          `json:"timestamp"`

	// Failed marks a placeholder reply for a generation failure.
	Failed bool `json:"failed,omitempty"`
}

func systemEntry(msg string, at time.Time) Entry {
	return Entry{Agent: ledger.SenderSystem, Kind: ledger.KindSystem, Message: msg, Timestamp: at}
}

func roleEntry(kind ledger.Kind, st counterpart.State, msg string, at time.Time) Entry {
	return Entry{
		Agent:        st.Role.DisplayName(),
		Role:         st.Role,
		Kind:         kind,
		Message:      msg,
		Affect:       st.Affect,
		Satisfaction: st.Satisfaction,
		Timestamp:    at,
	}
}
