package counterpart

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
)

func TestNew(t *testing.T) {
	t.Parallel()

	for _, role := range negotiation.AllRoles() {
		c, err := New(role)
		if err != nil {
			t.Fatalf("New(%s) error = %v", role, err)
		}
		if c.Role() != role {
			t.Errorf("New(%s).Role() = %s", role, c.Role())
		}
		st := c.State()
		if st.Affect != negotiation.AffectNeutral || st.Satisfaction != InitialSatisfaction {
			t.Errorf("New(%s) initial state = %+v", role, st)
		}
	}

	if _, err := New("moderator"); err == nil {
		t.Error("New(moderator) should fail")
	}
}

func TestConservative_Update(t *testing.T) {
	t.Parallel()

	t.Run("financial term with figure", func(t *testing.T) {
		t.Parallel()

		c := NewConservative()
		c.Update("هزینه ماهانه ما CAC=100 دلار است", "")

		st := c.State()
		if st.Satisfaction != 60 {
			t.Errorf("Satisfaction = %d, want 60", st.Satisfaction)
		}
		if st.Affect != negotiation.AffectNeutral {
			t.Errorf("Affect = %s, want neutral", st.Affect)
		}
	})

	t.Run("term without figure", func(t *testing.T) {
		t.Parallel()

		c := NewConservative()
		c.Update("درآمد ما خوب است", "")
		if got := c.State().Satisfaction; got != 45 {
			t.Errorf("Satisfaction = %d, want 45", got)
		}
	})

	t.Run("persian digits count", func(t *testing.T) {
		t.Parallel()

		c := NewConservative()
		c.Update("سود ما ۲۰ درصد است", "")
		if got := c.State().Satisfaction; got != 60 {
			t.Errorf("Satisfaction = %d, want 60", got)
		}
	})

	t.Run("becomes interested above 70", func(t *testing.T) {
		t.Parallel()

		c := NewConservative()
		for i := 0; i < 3; i++ {
			c.Update("ROI ما 3 برابر است", "")
		}
		st := c.State()
		if st.Satisfaction != 80 || st.Affect != negotiation.AffectInterested {
			t.Errorf("state = %+v, want 80/interested", st)
		}
	})

	t.Run("seven vague turns", func(t *testing.T) {
		t.Parallel()

		c := NewConservative()
		want := []int{45, 40, 35, 30, 25, 20, 15}
		for i, w := range want {
			c.Update("ما تیم خوبی داریم", "")
			st := c.State()
			if st.Satisfaction != w {
				t.Fatalf("turn %d: Satisfaction = %d, want %d", i+1, st.Satisfaction, w)
			}
			wantAffect := negotiation.AffectNeutral
			if w < 30 {
				wantAffect = negotiation.AffectSkeptical
			}
			if st.Affect != wantAffect {
				t.Errorf("turn %d: Affect = %s, want %s", i+1, st.Affect, wantAffect)
			}
		}
	})

	t.Run("floors at zero", func(t *testing.T) {
		t.Parallel()

		c := NewConservative()
		for i := 0; i < 15; i++ {
			c.Update("سلام", "")
		}
		if got := c.State().Satisfaction; got != 0 {
			t.Errorf("Satisfaction = %d, want 0", got)
		}
	})
}

func TestRisky_Update(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		msg            string
		wantSat        int
		wantInnovation int
		wantVision     int
		wantAffect     negotiation.Affect
	}{
		{"none", "سلام", 50, 0, 0, negotiation.AffectNeutral},
		{"innovation", "محصول ما کاملا جدید است", 65, 1, 0, negotiation.AffectNeutral},
		{"vision", "بازار ما بزرگ است", 60, 0, 1, negotiation.AffectNeutral},
		{"both", "هوش مصنوعی برای بازار جهانی", 75, 1, 1, negotiation.AffectNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := NewRisky()
			r.Update(tt.msg, "")

			st := r.State()
			if st.Satisfaction != tt.wantSat {
				t.Errorf("Satisfaction = %d, want %d", st.Satisfaction, tt.wantSat)
			}
			if r.InnovationScore != tt.wantInnovation || r.VisionClarity != tt.wantVision {
				t.Errorf("counters = %v", r.Counters())
			}
			if st.Affect != tt.wantAffect {
				t.Errorf("Affect = %s, want %s", st.Affect, tt.wantAffect)
			}
		})
	}

	t.Run("interested then capped", func(t *testing.T) {
		t.Parallel()

		r := NewRisky()
		r.Update("نوآوری در بازار", "")
		r.Update("نوآوری در بازار", "")
		st := r.State()
		if st.Satisfaction != 100 || st.Affect != negotiation.AffectInterested {
			t.Errorf("state = %+v, want 100/interested", st)
		}
		if r.InnovationScore != 2 {
			t.Errorf("InnovationScore = %d, want 2", r.InnovationScore)
		}
	})
}

func TestCompetitor_Update(t *testing.T) {
	t.Parallel()

	t.Run("hedging escalates", func(t *testing.T) {
		t.Parallel()

		c := NewCompetitor()
		c.Update("شاید بتوانیم", "")
		if c.AggressionLevel != 60 || c.State().Affect != negotiation.AffectAggressive {
			t.Errorf("aggression = %d affect = %s", c.AggressionLevel, c.State().Affect)
		}
	})

	t.Run("hedging wins over assertion", func(t *testing.T) {
		t.Parallel()

		c := NewCompetitor()
		c.Update("قطعا اما هنوز", "")
		if c.AggressionLevel != 60 {
			t.Errorf("aggression = %d, want 60", c.AggressionLevel)
		}
	})

	t.Run("assertion backs off to neutral", func(t *testing.T) {
		t.Parallel()

		c := NewCompetitor()
		c.Update("احتمالا", "")
		for i := 0; i < 4; i++ {
			c.Update("داده‌ها نشان می‌دهد", "")
		}
		if c.AggressionLevel != 20 {
			t.Errorf("aggression = %d, want 20", c.AggressionLevel)
		}
		if c.State().Affect != negotiation.AffectNeutral {
			t.Errorf("Affect = %s, want neutral", c.State().Affect)
		}
	})
}

func TestEvaluator_UpdateIsNoop(t *testing.T) {
	t.Parallel()

	e := NewEvaluator()
	e.Update("ROI 50 نوآوری شاید", "قبول")
	st := e.State()
	if st.Affect != negotiation.AffectNeutral || st.Satisfaction != InitialSatisfaction {
		t.Errorf("evaluator state changed: %+v", st)
	}
}

func TestBoundsHoldUnderRandomTraffic(t *testing.T) {
	t.Parallel()

	pool := append(append(append(append([]string{}, financialTerms...), innovationTerms...), defensiveTerms...), strongTerms...)
	pool = append(pool, "12", "۴۵", "سلام", "تیم", visionTerms[0])

	rng := rand.New(rand.NewPCG(7, 11))
	cast := NewCast()

	for turn := 0; turn < 500; turn++ {
		var words []string
		for i := rng.IntN(6); i >= 0; i-- {
			words = append(words, pool[rng.IntN(len(pool))])
		}
		msg := strings.Join(words, " ")

		for _, c := range cast {
			c.Update(msg, "")
			st := c.State()
			if st.Satisfaction < MinSatisfaction || st.Satisfaction > MaxSatisfaction {
				t.Fatalf("turn %d: %s satisfaction %d out of range", turn, c.Role(), st.Satisfaction)
			}
		}
		if lvl := cast[negotiation.RoleCompetitor].(*Competitor).AggressionLevel; lvl < MinAggression || lvl > MaxAggression {
			t.Fatalf("turn %d: aggression %d out of range", turn, lvl)
		}
	}
}

func TestCast_CloneIsIndependent(t *testing.T) {
	t.Parallel()

	cast := NewCast()
	clone := cast.Clone()

	clone[negotiation.RoleConservativeInvestor].Update("سلام", "")
	clone[negotiation.RoleRiskyInvestor].AddNote("copied")
	clone[negotiation.RoleCompetitor].Update("شاید", "")

	if got := cast[negotiation.RoleConservativeInvestor].State().Satisfaction; got != InitialSatisfaction {
		t.Errorf("original satisfaction changed to %d", got)
	}
	if notes := cast[negotiation.RoleRiskyInvestor].State().Notes; len(notes) != 0 {
		t.Errorf("original notes changed: %v", notes)
	}
	if lvl := cast[negotiation.RoleCompetitor].(*Competitor).AggressionLevel; lvl != InitialAggression {
		t.Errorf("original aggression changed to %d", lvl)
	}
}

func TestState_NotesAreCopied(t *testing.T) {
	t.Parallel()

	c := NewConservative()
	c.AddNote("first")
	st := c.State()
	st.Notes[0] = "mutated"

	if got := c.State().Notes[0]; got != "first" {
		t.Errorf("note = %q, want first", got)
	}
}

func TestCast_States(t *testing.T) {
	t.Parallel()

	states := NewCast().States()
	if len(states) != 4 {
		t.Fatalf("len(States()) = %d, want 4", len(states))
	}
	for i, role := range negotiation.AllRoles() {
		if states[i].Role != role {
			t.Errorf("States()[%d].Role = %s, want %s", i, states[i].Role, role)
		}
	}
}
