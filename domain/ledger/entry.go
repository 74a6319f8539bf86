// Package ledger provides the append-only conversation record of a session.
package ledger

import (
	"time"

	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
)

// Kind classifies who produced an entry.
type Kind string

const (
	KindUser       Kind = "user"
	KindSystem     Kind = "system"
	KindReply      Kind = "reply"
	KindEvaluation Kind = "evaluation"
)

// Sender names used for entries that do not come from a counterpart.
const (
	SenderUser   = "user"
	SenderSystem = "system"
)

// Entry is a single immutable record in the session log.
type Entry struct {
	Seq       int               `json:"seq"`
	Kind      Kind              `json:"kind"`
	Sender    string            `json:"sender"`
	Role      negotiation.Role  `json:"role,omitempty"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Phase     negotiation.Phase `json:"phase"`
}

// UserEntry creates an entry for a founder message.
func UserEntry(phase negotiation.Phase, msg string, at time.Time) Entry {
	return Entry{Kind: KindUser, Sender: SenderUser, Message: msg, Timestamp: at, Phase: phase}
}

// SystemEntry creates an entry for a moderator announcement.
func SystemEntry(phase negotiation.Phase, msg string, at time.Time) Entry {
	return Entry{Kind: KindSystem, Sender: SenderSystem, Message: msg, Timestamp: at, Phase: phase}
}

// ReplyEntry creates an entry for a counterpart reply.
func ReplyEntry(role negotiation.Role, phase negotiation.Phase, msg string, at time.Time) Entry {
	return Entry{Kind: KindReply, Sender: role.DisplayName(), Role: role, Message: msg, Timestamp: at, Phase: phase}
}

// EvaluationEntry creates an entry for evaluator feedback.
func EvaluationEntry(phase negotiation.Phase, msg string, at time.Time) Entry {
	role := negotiation.RoleEvaluator
	return Entry{Kind: KindEvaluation, Sender: role.DisplayName(), Role: role, Message: msg, Timestamp: at, Phase: phase}
}
