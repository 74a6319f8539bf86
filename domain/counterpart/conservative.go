package counterpart

import "github.com/felixgeelhaar/pitchroom/domain/negotiation"

// Conservative is the cautious investor who wants concrete financials.
type Conservative struct {
	state State
}

// NewConservative creates a conservative investor in initial state.
func NewConservative() *Conservative {
	return &Conservative{state: newState(negotiation.RoleConservativeInvestor)}
}

// Role implements Counterpart.
func (c *Conservative) Role() negotiation.Role { return negotiation.RoleConservativeInvestor }

// Update rewards messages that pair a financial term with a figure.
func (c *Conservative) Update(userMessage, _ string) {
	if containsAny(userMessage, financialTerms) && hasDigit(userMessage) {
		c.state.raise(10)
		if c.state.Satisfaction > 70 {
			c.state.Affect = negotiation.AffectInterested
		}
		return
	}

	c.state.lower(5)
	if c.state.Satisfaction < 30 {
		c.state.Affect = negotiation.AffectSkeptical
	}
}

// AddNote implements Counterpart.
func (c *Conservative) AddNote(note string) { c.state.Notes = append(c.state.Notes, note) }

// State implements Counterpart.
func (c *Conservative) State() State { return c.state.copy() }

// Counters implements Counterpart. The conservative investor keeps none.
func (c *Conservative) Counters() map[string]int { return map[string]int{} }

// Clone implements Counterpart.
func (c *Conservative) Clone() Counterpart { return &Conservative{state: c.state.copy()} }
