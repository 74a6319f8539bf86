package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// SessionID adds a session ID field.
func SessionID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("session_id", id)
	}
}

// Phase adds a phase field.
func Phase(p negotiation.Phase) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("phase", string(p))
	}
}

// FromPhase adds a from_phase field for transitions.
func FromPhase(p negotiation.Phase) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("from_phase", string(p))
	}
}

// ToPhase adds a to_phase field for transitions.
func ToPhase(p negotiation.Phase) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("to_phase", string(p))
	}
}

// Role adds a role field.
func Role(r negotiation.Role) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("role", string(r))
	}
}

// Affect adds an affect field.
func Affect(a negotiation.Affect) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("affect", string(a))
	}
}

// Satisfaction adds a satisfaction field.
func Satisfaction(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("satisfaction", n)
	}
}

// Turn adds a turn number field.
func Turn(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("turn", n)
	}
}

// Provider adds a generation provider field.
func Provider(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("provider", name)
	}
}

// Backend adds a storage backend field.
func Backend(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("backend", name)
	}
}

// Format adds an export format field.
func Format(f string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("format", f)
	}
}

// ReportID adds a report ID field.
func ReportID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("report_id", id)
	}
}

// Amount adds an investment amount field.
func Amount(n int64) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("amount", n)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}

// Count adds an item count field.
func Count(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("count", n)
	}
}
