// Package statemachine drives negotiation phases with a statekit chart.
package statemachine

import (
	"time"

	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
)

// Context carries phase timing through the state machine.
type Context struct {
	// Current mirrors the interpreter state so guards can read it.
	Current negotiation.Phase
	// PhaseStart is when Current was entered.
	PhaseStart time.Time
	// Now is the clock reading of the event being processed.
	Now time.Time
	// Durations is the time allotted to each timed phase.
	Durations map[negotiation.Phase]time.Duration
	// Forced is set once the session was completed out of band.
	Forced bool
}

func (c *Context) clone() *Context {
	cp := *c
	cp.Durations = make(map[negotiation.Phase]time.Duration, len(c.Durations))
	for p, d := range c.Durations {
		cp.Durations[p] = d
	}
	return &cp
}

// Events understood by the phase chart.
const (
	EventAdvance       statekit.EventType = "ADVANCE"
	EventForceComplete statekit.EventType = "FORCE_COMPLETE"
)

const machineID = "phase"

func stateID(p negotiation.Phase) statekit.StateID {
	return statekit.StateID(string(p))
}

// PhaseFromMachine converts the machine state ID to a domain Phase.
func PhaseFromMachine(id statekit.StateID) negotiation.Phase {
	return negotiation.Phase(id)
}

// NewPhaseMachine creates the negotiation phase statechart. Every timed
// phase advances to its successor once its duration has elapsed and can
// be forced straight to completed.
func NewPhaseMachine() (*statekit.MachineConfig[*Context], error) {
	b := statekit.NewMachine[*Context](machineID).
		WithInitial(stateID(negotiation.PhaseIntroduction)).
		WithContext(&Context{}).
		WithAction("resetClock", resetClock).
		WithAction("forceComplete", forceComplete).
		WithGuard("elapsed", guardElapsed)

	return b.
		State(stateID(negotiation.PhaseIntroduction)).
			On(EventAdvance).Target(stateID(negotiation.PhaseFinancialQuestions)).Guard("elapsed").Do("resetClock").
			On(EventForceComplete).Target(stateID(negotiation.PhaseCompleted)).Do("forceComplete").
			Done().
		State(stateID(negotiation.PhaseFinancialQuestions)).
			On(EventAdvance).Target(stateID(negotiation.PhaseCompetitiveChallenge)).Guard("elapsed").Do("resetClock").
			On(EventForceComplete).Target(stateID(negotiation.PhaseCompleted)).Do("forceComplete").
			Done().
		State(stateID(negotiation.PhaseCompetitiveChallenge)).
			On(EventAdvance).Target(stateID(negotiation.PhaseFinalNegotiation)).Guard("elapsed").Do("resetClock").
			On(EventForceComplete).Target(stateID(negotiation.PhaseCompleted)).Do("forceComplete").
			Done().
		State(stateID(negotiation.PhaseFinalNegotiation)).
			On(EventAdvance).Target(stateID(negotiation.PhaseCompleted)).Guard("elapsed").Do("resetClock").
			On(EventForceComplete).Target(stateID(negotiation.PhaseCompleted)).Do("forceComplete").
			Done().
		State(stateID(negotiation.PhaseCompleted)).
			Final().
			Done().
		Build()
}
