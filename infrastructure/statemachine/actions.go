package statemachine

import (
	"github.com/felixgeelhaar/statekit"
)

// resetClock starts the timer of the phase being entered.
// Actions receive a pointer to the context, so **Context here.
func resetClock(ctx **Context, _ statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	(*ctx).PhaseStart = (*ctx).Now
}

// forceComplete records an out-of-band completion.
func forceComplete(ctx **Context, e statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	resetClock(ctx, e)
	(*ctx).Forced = true
}
