package application

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/pitchroom/domain/deal"
	"github.com/felixgeelhaar/pitchroom/domain/ledger"
	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
	"github.com/felixgeelhaar/pitchroom/domain/persona"
	"github.com/felixgeelhaar/pitchroom/infrastructure/llm"
	"github.com/felixgeelhaar/pitchroom/infrastructure/observability"
)

// turn is a staged, not yet committed turn.
type turn struct {
	state       *state
	pending     []ledger.Entry
	emitted     []Entry
	transitions []transition
	failures    []failure
	detection   deal.Detection
}

type transition struct {
	from, to negotiation.Phase
	forced   bool
}

type failure struct {
	role negotiation.Role
	err  error
}

type generation struct {
	text    string
	err     error
	history llm.History
}

// runTurn computes a turn against a clone of the session state.
func (s *Session) runTurn(ctx context.Context, msg string, now time.Time) (*turn, error) {
	next, err := s.st.clone()
	if err != nil {
		return nil, err
	}
	t := &turn{state: next}

	from := next.phase.Phase()
	t.pending = append(t.pending, ledger.UserEntry(from, msg, now))

	if text, ok := next.phase.Evaluate(now); ok {
		to := next.phase.Phase()
		t.transitions = append(t.transitions, transition{from: from, to: to})
		t.pending = append(t.pending, ledger.SystemEntry(to, text, now))
		t.emitted = append(t.emitted, systemEntry(text, now))
	}

	phase := next.phase.Phase()
	roles := negotiation.NegotiatingRoles(phase)

	results, err := s.generate(ctx, next, roles, msg)
	if err != nil {
		return nil, err
	}

	// Apply in schedule order regardless of which reply came back first.
	replies := make(map[negotiation.Role]string, len(roles))
	for i, role := range roles {
		res := results[i]
		cp := next.cast[role]

		reply := res.text
		if res.err != nil {
			reply = llm.FailureReply(res.err)
		}

		cp.Update(msg, reply)
		if res.err != nil {
			cp.AddNote("generation failed: " + res.err.Error())
			t.failures = append(t.failures, failure{role: role, err: res.err})
			next.histories[role] = res.history
		} else {
			next.histories[role] = res.history.With(llm.Message{Role: llm.RoleAssistant, Content: reply})
		}
		replies[role] = reply

		t.pending = append(t.pending, ledger.ReplyEntry(role, phase, reply, now))
		e := roleEntry(ledger.KindReply, cp.State(), reply, now)
		e.Failed = res.err != nil
		t.emitted = append(t.emitted, e)
	}

	if phase != negotiation.PhaseCompleted {
		fb := next.scoring.ScoreTurn(msg, replies, now)
		evaluator := next.cast[negotiation.RoleEvaluator].State()
		t.pending = append(t.pending, ledger.EvaluationEntry(phase, fb.Feedback, now))
		t.emitted = append(t.emitted, roleEntry(ledger.KindEvaluation, evaluator, fb.Feedback, now))
	}

	if phase == negotiation.PhaseFinalNegotiation {
		t.detection = deal.Detect(&next.outcome, msg, replies)
		if t.detection.Closed && next.phase.ForceComplete(now) {
			t.transitions = append(t.transitions, transition{from: phase, to: negotiation.PhaseCompleted, forced: true})
		}
	}

	return t, nil
}

// generate asks every role for a reply at once. Results are indexed by
// schedule position. A failed generation is a result, not an error; only
// cancellation of ctx aborts.
func (s *Session) generate(ctx context.Context, st *state, roles []negotiation.Role, msg string) ([]generation, error) {
	results := make([]generation, len(roles))
	g, gctx := errgroup.WithContext(ctx)

	for i, role := range roles {
		cur := st.cast[role].State()
		history := st.histories[role].With(llm.Message{Role: llm.RoleUser, Content: msg})
		results[i].history = history

		p, err := persona.For(role)
		if err != nil {
			results[i].err = err
			continue
		}
		annotation := persona.Annotation(cur.Affect, cur.Satisfaction)

		g.Go(func() error {
			spanCtx, span := observability.StartSpan(gctx, s.cfg.Tracer, "session.generate",
				observability.AttrSessionID.String(s.id),
				observability.AttrRole.String(string(role)),
			)
			started := time.Now()
			text, err := s.cfg.Generator.Generate(spanCtx, p, annotation, history)
			observability.EndSpan(span, err)
			s.cfg.Metrics.RecordGeneration(spanCtx, string(role), err == nil, time.Since(started))

			results[i].text = text
			results[i].err = err
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
