package negotiation

import (
	"reflect"
	"testing"
)

func TestPhaseOrder(t *testing.T) {
	t.Parallel()

	phases := AllPhases()
	for i := 0; i < len(phases)-1; i++ {
		next, ok := phases[i].Next()
		if !ok {
			t.Fatalf("%s.Next() reported no successor", phases[i])
		}
		if next != phases[i+1] {
			t.Errorf("%s.Next() = %s, want %s", phases[i], next, phases[i+1])
		}
		if !phases[i].Before(next) {
			t.Errorf("%s should come before %s", phases[i], next)
		}
	}

	if _, ok := PhaseCompleted.Next(); ok {
		t.Error("completed must have no successor")
	}
	if !PhaseCompleted.IsTerminal() {
		t.Error("completed must be terminal")
	}
}

func TestParsePhase(t *testing.T) {
	t.Parallel()

	if p, err := ParsePhase("final_negotiation"); err != nil || p != PhaseFinalNegotiation {
		t.Errorf("ParsePhase(final_negotiation) = %v, %v", p, err)
	}
	if _, err := ParsePhase("lunch"); err == nil {
		t.Error("ParsePhase(lunch) should fail")
	}
}

func TestDefaultDurations(t *testing.T) {
	t.Parallel()

	d := DefaultDurations()
	if len(d) != 4 {
		t.Fatalf("len(DefaultDurations()) = %d, want 4", len(d))
	}
	if d[PhaseFinancialQuestions].Seconds() != 180 {
		t.Errorf("financial questions = %v, want 3m", d[PhaseFinancialQuestions])
	}
	if _, ok := d[PhaseCompleted]; ok {
		t.Error("completed must not have a duration")
	}
}

func TestTransitionMessage(t *testing.T) {
	t.Parallel()

	if TransitionMessage(PhaseIntroduction) != "" {
		t.Error("introduction has no transition message")
	}
	for _, p := range AllPhases()[1:] {
		if TransitionMessage(p) == "" {
			t.Errorf("TransitionMessage(%s) is empty", p)
		}
	}
}

func TestActiveRoles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		phase Phase
		want  []Role
	}{
		{PhaseIntroduction, []Role{RoleConservativeInvestor, RoleRiskyInvestor, RoleEvaluator}},
		{PhaseFinancialQuestions, []Role{RoleConservativeInvestor, RoleEvaluator}},
		{PhaseCompetitiveChallenge, []Role{RoleCompetitor, RoleEvaluator}},
		{PhaseFinalNegotiation, []Role{RoleConservativeInvestor, RoleRiskyInvestor, RoleEvaluator}},
		{PhaseCompleted, nil},
	}

	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			t.Parallel()

			if got := ActiveRoles(tt.phase); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ActiveRoles(%s) = %v, want %v", tt.phase, got, tt.want)
			}
		})
	}
}

func TestNegotiatingRoles(t *testing.T) {
	t.Parallel()

	got := NegotiatingRoles(PhaseCompetitiveChallenge)
	if !reflect.DeepEqual(got, []Role{RoleCompetitor}) {
		t.Errorf("NegotiatingRoles(competitive_challenge) = %v", got)
	}
	if got := NegotiatingRoles(PhaseCompleted); len(got) != 0 {
		t.Errorf("NegotiatingRoles(completed) = %v, want empty", got)
	}
}

func TestRole(t *testing.T) {
	t.Parallel()

	if RoleEvaluator.Negotiates() {
		t.Error("evaluator must not negotiate")
	}
	if !RoleCompetitor.Negotiates() {
		t.Error("competitor negotiates")
	}
	if _, err := ParseRole("judge"); err == nil {
		t.Error("ParseRole(judge) should fail")
	}
	if RoleRiskyInvestor.DisplayName() != "خانم اکبری" {
		t.Errorf("DisplayName() = %q", RoleRiskyInvestor.DisplayName())
	}
}
