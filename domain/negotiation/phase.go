// Package negotiation provides the closed vocabularies of a pitch session:
// phases, roles and affect labels.
package negotiation

import (
	"fmt"
	"time"
)

// Phase is one stage of the fixed negotiation timeline.
type Phase string

// Phases in their fixed forward order.
const (
	PhaseIntroduction         Phase = "introduction"
	PhaseFinancialQuestions   Phase = "financial_questions"
	PhaseCompetitiveChallenge Phase = "competitive_challenge"
	PhaseFinalNegotiation     Phase = "final_negotiation"
	PhaseCompleted            Phase = "completed"
)

var phaseOrder = []Phase{
	PhaseIntroduction,
	PhaseFinancialQuestions,
	PhaseCompetitiveChallenge,
	PhaseFinalNegotiation,
	PhaseCompleted,
}

// AllPhases returns every phase in timeline order.
func AllPhases() []Phase {
	out := make([]Phase, len(phaseOrder))
	copy(out, phaseOrder)
	return out
}

// IsValid returns true if the phase is a recognized phase.
func (p Phase) IsValid() bool {
	return p.Index() >= 0
}

// IsTerminal returns true for the completed phase.
func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted
}

// Index returns the position of the phase in the timeline, or -1.
func (p Phase) Index() int {
	switch p {
	case PhaseIntroduction:
		return 0
	case PhaseFinancialQuestions:
		return 1
	case PhaseCompetitiveChallenge:
		return 2
	case PhaseFinalNegotiation:
		return 3
	case PhaseCompleted:
		return 4
	default:
		return -1
	}
}

// Next returns the successor phase. Completed has no successor.
func (p Phase) Next() (Phase, bool) {
	switch p {
	case PhaseIntroduction:
		return PhaseFinancialQuestions, true
	case PhaseFinancialQuestions:
		return PhaseCompetitiveChallenge, true
	case PhaseCompetitiveChallenge:
		return PhaseFinalNegotiation, true
	case PhaseFinalNegotiation:
		return PhaseCompleted, true
	default:
		return "", false
	}
}

// Before reports whether p comes strictly before other in the timeline.
func (p Phase) Before(other Phase) bool {
	return p.Index() < other.Index()
}

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// ParsePhase converts a string to a Phase.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !p.IsValid() {
		return "", fmt.Errorf("unknown phase %q", s)
	}
	return p, nil
}

// DefaultDurations returns the stock time allotted to each timed phase.
func DefaultDurations() map[Phase]time.Duration {
	return map[Phase]time.Duration{
		PhaseIntroduction:         120 * time.Second,
		PhaseFinancialQuestions:   180 * time.Second,
		PhaseCompetitiveChallenge: 180 * time.Second,
		PhaseFinalNegotiation:     120 * time.Second,
	}
}

// TransitionMessage returns the announcement made when a session enters p.
// The introduction has none because sessions start there.
func TransitionMessage(p Phase) string {
	switch p {
	case PhaseFinancialQuestions:
		return "حالا به بخش سوالات مالی می‌رویم. آقای محمدی، لطفا سوالات خود را مطرح کنید."
	case PhaseCompetitiveChallenge:
		return "اکنون آقای رضایی از استارتاپ رقیب وارد بحث می‌شود."
	case PhaseFinalNegotiation:
		return "زمان مذاکره نهایی فرا رسیده است. هر دو سرمایه‌گذار آماده تصمیم‌گیری هستند."
	case PhaseCompleted:
		return "جلسه به پایان رسید. در حال آماده‌سازی گزارش نهایی..."
	default:
		return ""
	}
}
