package application

import "errors"

// Errors returned to callers of a session. Failures inside a turn never
// surface as errors; they become entries instead.
var (
	// ErrSessionInactive is returned when a turn is sent to a session that
	// was not started, was ended, or has completed.
	ErrSessionInactive = errors.New("session is not active")

	// ErrTurnAbandoned is returned when the context ends mid-turn. Nothing
	// from the turn was committed, so it is safe to resend.
	ErrTurnAbandoned = errors.New("turn abandoned")

	// ErrSessionNotFound is returned by the manager for unknown IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrGeneratorRequired is returned when a session is built without a generator.
	ErrGeneratorRequired = errors.New("generator is required")

	// ErrNoStore is returned by Save when no report store is configured.
	ErrNoStore = errors.New("no report store configured")
)
