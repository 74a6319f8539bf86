package counterpart

import "github.com/felixgeelhaar/pitchroom/domain/negotiation"

// Aggression bounds and starting point.
const (
	MinAggression     = 0
	MaxAggression     = 100
	InitialAggression = 50
)

// Competitor is the rival founder who presses on hesitation.
type Competitor struct {
	state State

	AggressionLevel int
}

// NewCompetitor creates a competitor in initial state.
func NewCompetitor() *Competitor {
	return &Competitor{
		state:           newState(negotiation.RoleCompetitor),
		AggressionLevel: InitialAggression,
	}
}

// Role implements Counterpart.
func (c *Competitor) Role() negotiation.Role { return negotiation.RoleCompetitor }

// Update escalates on hedging and backs off on assertive language.
// Hedging wins when both appear.
func (c *Competitor) Update(userMessage, _ string) {
	switch {
	case containsAny(userMessage, defensiveTerms):
		c.AggressionLevel = clamp(c.AggressionLevel+10, MinAggression, MaxAggression)
		c.state.Affect = negotiation.AffectAggressive
	case containsAny(userMessage, strongTerms):
		c.AggressionLevel = clamp(c.AggressionLevel-10, MinAggression, MaxAggression)
		if c.AggressionLevel < 30 {
			c.state.Affect = negotiation.AffectNeutral
		}
	}
}

// AddNote implements Counterpart.
func (c *Competitor) AddNote(note string) { c.state.Notes = append(c.state.Notes, note) }

// State implements Counterpart.
func (c *Competitor) State() State { return c.state.copy() }

// Counters implements Counterpart.
func (c *Competitor) Counters() map[string]int {
	return map[string]int{"aggression_level": c.AggressionLevel}
}

// Clone implements Counterpart.
func (c *Competitor) Clone() Counterpart {
	cp := *c
	cp.state = c.state.copy()
	return &cp
}
