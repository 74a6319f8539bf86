package counterpart

import "github.com/felixgeelhaar/pitchroom/domain/negotiation"

// Evaluator sits at the table but does not negotiate. Its scoring lives in
// the scoring package; here it only carries the shared state.
type Evaluator struct {
	state State
}

// NewEvaluator creates an evaluator in initial state.
func NewEvaluator() *Evaluator {
	return &Evaluator{state: newState(negotiation.RoleEvaluator)}
}

// Role implements Counterpart.
func (e *Evaluator) Role() negotiation.Role { return negotiation.RoleEvaluator }

// Update is a no-op.
func (e *Evaluator) Update(string, string) {}

// AddNote implements Counterpart.
func (e *Evaluator) AddNote(note string) { e.state.Notes = append(e.state.Notes, note) }

// State implements Counterpart.
func (e *Evaluator) State() State { return e.state.copy() }

// Counters implements Counterpart.
func (e *Evaluator) Counters() map[string]int { return map[string]int{} }

// Clone implements Counterpart.
func (e *Evaluator) Clone() Counterpart { return &Evaluator{state: e.state.copy()} }
