// Package counterpart models the parties across the table. Each role is a
// closed variant with its own update rule over a shared affect/satisfaction core.
package counterpart

import (
	"fmt"

	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
)

// Satisfaction bounds and starting point.
const (
	MinSatisfaction     = 0
	MaxSatisfaction     = 100
	InitialSatisfaction = 50
)

// Counterpart is the capability shared by every role at the table.
type Counterpart interface {
	// Role returns the role this counterpart plays.
	Role() negotiation.Role

	// Update adjusts affect and counters from one exchange. It never fails.
	Update(userMessage, reply string)

	// AddNote appends a free-form observation.
	AddNote(note string)

	// State returns a copy of the shared state.
	State() State

	// Counters returns the role-specific counters by name.
	Counters() map[string]int

	// Clone returns an independent copy.
	Clone() Counterpart
}

// State is the part of a counterpart common to every role.
type State struct {
	Role         negotiation.Role   `json:"role"`
	Affect       negotiation.Affect `json:"affect"`
	Satisfaction int                `json:"satisfaction"`
	Notes        []string           `json:"notes"`
}

func newState(role negotiation.Role) State {
	return State{
		Role:         role,
		Affect:       negotiation.AffectNeutral,
		Satisfaction: InitialSatisfaction,
		Notes:        []string{},
	}
}

func (s State) copy() State {
	notes := make([]string, len(s.Notes))
	copy(notes, s.Notes)
	s.Notes = notes
	return s
}

func (s *State) raise(n int) {
	s.Satisfaction = clamp(s.Satisfaction+n, MinSatisfaction, MaxSatisfaction)
}

func (s *State) lower(n int) {
	s.Satisfaction = clamp(s.Satisfaction-n, MinSatisfaction, MaxSatisfaction)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// New creates the counterpart for a role in its initial state.
func New(role negotiation.Role) (Counterpart, error) {
	switch role {
	case negotiation.RoleConservativeInvestor:
		return NewConservative(), nil
	case negotiation.RoleRiskyInvestor:
		return NewRisky(), nil
	case negotiation.RoleCompetitor:
		return NewCompetitor(), nil
	case negotiation.RoleEvaluator:
		return NewEvaluator(), nil
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

// Cast holds one counterpart per role.
type Cast map[negotiation.Role]Counterpart

// NewCast creates the full cast in initial state.
func NewCast() Cast {
	cast := make(Cast, len(negotiation.AllRoles()))
	for _, role := range negotiation.AllRoles() {
		c, _ := New(role)
		cast[role] = c
	}
	return cast
}

// Clone returns a deep copy of the cast.
func (c Cast) Clone() Cast {
	out := make(Cast, len(c))
	for role, cp := range c {
		out[role] = cp.Clone()
	}
	return out
}

// States returns the shared state of every member, in role order.
func (c Cast) States() []State {
	var out []State
	for _, role := range negotiation.AllRoles() {
		if cp, ok := c[role]; ok {
			out = append(out, cp.State())
		}
	}
	return out
}
