package counterpart

import "github.com/felixgeelhaar/pitchroom/domain/negotiation"

// Risky is the investor drawn to novelty and scale.
type Risky struct {
	state State

	// InnovationScore and VisionClarity only grow.
	InnovationScore int
	VisionClarity   int
}

// NewRisky creates a risky investor in initial state.
func NewRisky() *Risky {
	return &Risky{state: newState(negotiation.RoleRiskyInvestor)}
}

// Role implements Counterpart.
func (r *Risky) Role() negotiation.Role { return negotiation.RoleRiskyInvestor }

// Update checks innovation and vision terms independently; both can fire.
func (r *Risky) Update(userMessage, _ string) {
	if containsAny(userMessage, innovationTerms) {
		r.InnovationScore++
		r.state.raise(15)
	}
	if containsAny(userMessage, visionTerms) {
		r.VisionClarity++
		r.state.raise(10)
	}

	switch {
	case r.state.Satisfaction > 75:
		r.state.Affect = negotiation.AffectInterested
	case r.state.Satisfaction < 40:
		r.state.Affect = negotiation.AffectSkeptical
	}
}

// AddNote implements Counterpart.
func (r *Risky) AddNote(note string) { r.state.Notes = append(r.state.Notes, note) }

// State implements Counterpart.
func (r *Risky) State() State { return r.state.copy() }

// Counters implements Counterpart.
func (r *Risky) Counters() map[string]int {
	return map[string]int{
		"innovation_score": r.InnovationScore,
		"vision_clarity":   r.VisionClarity,
	}
}

// Clone implements Counterpart.
func (r *Risky) Clone() Counterpart {
	cp := *r
	cp.state = r.state.copy()
	return &cp
}
