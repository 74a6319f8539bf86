package statemachine

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/statekit"

	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
)

// Controller owns the current phase of one session. Phases only move
// when Evaluate or ForceComplete is called; nothing runs in the background.
type Controller struct {
	interp *statekit.Interpreter[*Context]
	ctx    *Context
}

// New creates a controller in the introduction phase, started at now.
// Phases missing from durations use the defaults.
func New(durations map[negotiation.Phase]time.Duration, now time.Time) (*Controller, error) {
	merged := negotiation.DefaultDurations()
	for p, d := range durations {
		merged[p] = d
	}

	ctx := &Context{
		Current:    negotiation.PhaseIntroduction,
		PhaseStart: now,
		Now:        now,
		Durations:  merged,
	}
	return newController(ctx)
}

func newController(ctx *Context) (*Controller, error) {
	machine, err := NewPhaseMachine()
	if err != nil {
		return nil, fmt.Errorf("failed to build phase machine: %w", err)
	}

	interp := statekit.NewInterpreter(machine)
	interp.UpdateContext(func(c **Context) {
		*c = ctx
	})

	c := &Controller{interp: interp, ctx: ctx}
	if ctx.Current == negotiation.PhaseIntroduction {
		interp.Start()
		c.sync()
		return c, nil
	}
	if err := c.restore(ctx.Current); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Controller) restore(p negotiation.Phase) error {
	snapshot := statekit.Snapshot[*Context]{
		MachineID:    machineID,
		CurrentState: stateID(p),
		Context:      c.ctx,
		CreatedAt:    c.ctx.Now,
	}
	if err := c.interp.Restore(snapshot); err != nil {
		return fmt.Errorf("failed to restore phase %s: %w", p, err)
	}
	c.sync()
	return nil
}

func (c *Controller) sync() {
	c.ctx.Current = PhaseFromMachine(c.interp.State().Value)
}

// Phase returns the current phase.
func (c *Controller) Phase() negotiation.Phase {
	return c.ctx.Current
}

// PhaseStart returns when the current phase was entered.
func (c *Controller) PhaseStart() time.Time {
	return c.ctx.PhaseStart
}

// Duration returns the time allotted to p, zero for completed.
func (c *Controller) Duration(p negotiation.Phase) time.Duration {
	return c.ctx.Durations[p]
}

// Remaining returns how much of the current phase is left at now.
func (c *Controller) Remaining(now time.Time) time.Duration {
	if c.Done() {
		return 0
	}
	left := c.ctx.Durations[c.ctx.Current] - now.Sub(c.ctx.PhaseStart)
	if left < 0 {
		return 0
	}
	return left
}

// Done reports whether the session reached completed.
func (c *Controller) Done() bool {
	return c.ctx.Current.IsTerminal()
}

// Forced reports whether completion came from ForceComplete.
func (c *Controller) Forced() bool {
	return c.ctx.Forced
}

// Evaluate advances at most one phase when the current one has run out
// at now. It returns the message announcing the new phase.
func (c *Controller) Evaluate(now time.Time) (string, bool) {
	if c.Done() {
		return "", false
	}
	before := c.ctx.Current
	c.ctx.Now = now
	c.interp.Send(statekit.Event{Type: EventAdvance})
	c.sync()

	if c.ctx.Current == before {
		return "", false
	}
	return negotiation.TransitionMessage(c.ctx.Current), true
}

// ForceComplete jumps to completed regardless of elapsed time.
func (c *Controller) ForceComplete(now time.Time) bool {
	if c.Done() {
		return false
	}
	c.ctx.Now = now
	c.interp.Send(statekit.Event{Type: EventForceComplete})
	c.sync()
	return c.Done()
}

// Clone returns an independent controller in the same phase, used to
// stage a turn before committing it.
func (c *Controller) Clone() (*Controller, error) {
	return newController(c.ctx.clone())
}
