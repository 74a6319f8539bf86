package statemachine

import (
	"github.com/felixgeelhaar/statekit"
)

// guardElapsed holds once the current phase has used up its duration.
// In statekit, guards receive the context by value; ours is *Context.
func guardElapsed(ctx *Context, _ statekit.Event) bool {
	if ctx == nil || ctx.Current.IsTerminal() {
		return false
	}
	d, ok := ctx.Durations[ctx.Current]
	if !ok {
		return false
	}
	return ctx.Now.Sub(ctx.PhaseStart) >= d
}
