// Package application runs negotiation sessions: it owns each session's
// state, drives turns through the domain rules and assembles reports.
package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/pitchroom/domain/counterpart"
	"github.com/felixgeelhaar/pitchroom/domain/deal"
	"github.com/felixgeelhaar/pitchroom/domain/ledger"
	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
	"github.com/felixgeelhaar/pitchroom/domain/notification"
	"github.com/felixgeelhaar/pitchroom/domain/persona"
	"github.com/felixgeelhaar/pitchroom/domain/report"
	"github.com/felixgeelhaar/pitchroom/domain/scoring"
	"github.com/felixgeelhaar/pitchroom/infrastructure/llm"
	"github.com/felixgeelhaar/pitchroom/infrastructure/logging"
	"github.com/felixgeelhaar/pitchroom/infrastructure/observability"
	"github.com/felixgeelhaar/pitchroom/infrastructure/statemachine"
)

// state is everything a turn mutates. Turns work on a clone and swap it
// in only once every step has finished.
type state struct {
	phase     *statemachine.Controller
	cast      counterpart.Cast
	scoring   *scoring.Engine
	outcome   deal.Outcome
	histories map[negotiation.Role]llm.History
}

func newState(cfg Config, now time.Time) (*state, error) {
	phase, err := statemachine.New(cfg.Durations, now)
	if err != nil {
		return nil, err
	}
	return &state{
		phase:     phase,
		cast:      counterpart.NewCast(),
		scoring:   scoring.NewEngine(scoring.WithClamp(cfg.ClampScores)),
		outcome:   deal.NewOutcome(),
		histories: make(map[negotiation.Role]llm.History),
	}, nil
}

func (st *state) clone() (*state, error) {
	phase, err := st.phase.Clone()
	if err != nil {
		return nil, err
	}
	histories := make(map[negotiation.Role]llm.History, len(st.histories))
	for role, h := range st.histories {
		histories[role] = h.With()
	}
	return &state{
		phase:     phase,
		cast:      st.cast.Clone(),
		scoring:   st.scoring.Clone(),
		outcome:   st.outcome,
		histories: histories,
	}, nil
}

// Session is one founder's pitch. All methods are safe for concurrent use;
// turns are serialized.
type Session struct {
	mu sync.Mutex

	id       string
	reportID string
	cfg      Config

	st  *state
	log *ledger.Ledger

	started    bool
	active     bool
	startedAt  time.Time
	finishedAt time.Time
	turns      int
	saved      bool
}

// Status is a point-in-time view of a session.
type Status struct {
	ID               string            `json:"id"`
	Phase            negotiation.Phase `json:"phase"`
	Active           bool              `json:"active"`
	Turns            int               `json:"turns"`
	RemainingSeconds float64           `json:"remaining_seconds"`
	StartedAt        time.Time         `json:"started_at"`
	Summary          report.Summary    `json:"summary"`
}

// NewSession creates a session that has not started yet.
func NewSession(id string, opts ...Option) (*Session, error) {
	cfg := buildConfig(opts)
	if cfg.Generator == nil {
		return nil, ErrGeneratorRequired
	}
	if id == "" {
		id = uuid.NewString()
	}

	now := cfg.Clock()
	st, err := newState(cfg, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create session %s: %w", id, err)
	}

	return &Session{
		id:        id,
		reportID:  uuid.NewString(),
		cfg:       cfg,
		st:        st,
		log:       ledger.New(id),
		startedAt: now,
	}, nil
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// StartSession activates the session and returns the welcome text.
// The phase clock starts now. Calling it again only repeats the text.
func (s *Session) StartSession(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return persona.Welcome, nil
	}

	now := s.cfg.Clock()
	st, err := newState(s.cfg, now)
	if err != nil {
		return "", fmt.Errorf("failed to start session %s: %w", s.id, err)
	}
	s.st = st
	s.started = true
	s.active = true
	s.startedAt = now

	s.cfg.Metrics.IncrementActiveSessions(ctx)
	logging.Info().
		Add(logging.SessionID(s.id)).
		Add(logging.Provider(s.cfg.Generator.Provider().Name())).
		Msg("session started")
	s.notify(ctx, notification.EventSessionStarted, now, notification.SessionStartedPayload{
		Phase: s.st.phase.Phase(),
	})

	return persona.Welcome, nil
}

// IsActive reports whether the session accepts turns.
func (s *Session) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isActive()
}

func (s *Session) isActive() bool {
	return s.active && !s.st.phase.Done()
}

// Phase returns the current phase.
func (s *Session) Phase() negotiation.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.phase.Phase()
}

// Log returns the session log so far.
func (s *Session) Log() []ledger.Entry {
	return s.log.Entries()
}

// ProcessTurn runs one founder message through the table and returns
// what was said in response, in order.
//
// Generation failures become placeholder replies. The only errors are
// ErrSessionInactive and ErrTurnAbandoned; after the latter the session is
// exactly as it was before the call.
func (s *Session) ProcessTurn(ctx context.Context, userMessage string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isActive() {
		return nil, ErrSessionInactive
	}

	now := s.cfg.Clock()
	if persona.IsExitWord(userMessage) {
		s.finish(ctx, now)
		return []Entry{systemEntry(persona.Farewell, now)}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTurnAbandoned, err)
	}

	from := s.st.phase.Phase()
	ctx, span := observability.StartSpan(ctx, s.cfg.Tracer, "session.turn",
		observability.AttrSessionID.String(s.id),
		observability.AttrPhase.String(string(from)),
	)
	started := time.Now()

	t, err := s.runTurn(ctx, userMessage, now)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrTurnAbandoned, err)
		observability.EndSpan(span, err)
		logging.Warn().
			Add(logging.SessionID(s.id)).
			Add(logging.Phase(from)).
			Add(logging.ErrorField(err)).
			Msg("turn abandoned")
		return nil, err
	}

	s.commit(ctx, t, now)

	span.SetAttributes(observability.AttrEntries.Int(len(t.emitted)))
	observability.EndSpan(span, nil)
	s.cfg.Metrics.RecordTurn(ctx, string(from), time.Since(started))

	return t.emitted, nil
}

// commit swaps in the staged state and records the turn's side effects.
func (s *Session) commit(ctx context.Context, t *turn, now time.Time) {
	s.st = t.state
	s.log.Append(t.pending...)
	s.turns++

	for _, tr := range t.transitions {
		s.cfg.Metrics.RecordPhaseTransition(ctx, string(tr.from), string(tr.to), tr.forced)
		logging.Info().
			Add(logging.SessionID(s.id)).
			Add(logging.FromPhase(tr.from)).
			Add(logging.ToPhase(tr.to)).
			Add(logging.Turn(s.turns)).
			Msg("phase changed")
		s.notify(ctx, notification.EventPhaseChanged, now, notification.PhaseChangedPayload{
			From: tr.from, To: tr.to, Forced: tr.forced,
		})
	}

	for _, f := range t.failures {
		s.cfg.Metrics.RecordError(ctx, "generation", map[string]string{"role": string(f.role)})
		logging.Warn().
			Add(logging.SessionID(s.id)).
			Add(logging.Role(f.role)).
			Add(logging.ErrorField(f.err)).
			Msg("generation failed")
	}

	if t.detection.Closed {
		o := s.st.outcome
		s.cfg.Metrics.RecordDealClosed(ctx, o.FinalInvestment, o.FinalEquity)
		logging.Info().
			Add(logging.SessionID(s.id)).
			Add(logging.Amount(o.FinalInvestment)).
			Add(logging.Str("equity", fmt.Sprintf("%d%%", o.FinalEquity))).
			Msg("deal closed")
		s.notify(ctx, notification.EventDealClosed, now, notification.DealClosedPayload{
			Investment:  o.FinalInvestment,
			Equity:      o.FinalEquity,
			SuccessRate: report.BuildSummary(s.reportInput(now)).SuccessRate,
		})
	}

	if s.st.phase.Done() {
		s.finish(ctx, now)
		if s.autoSave() {
			if _, err := s.save(ctx); err != nil {
				logging.Error().
					Add(logging.SessionID(s.id)).
					Add(logging.ErrorField(err)).
					Msg("failed to save report")
			}
		}
	}
}

// finish deactivates the session once.
func (s *Session) finish(ctx context.Context, now time.Time) {
	s.active = false
	if !s.finishedAt.IsZero() {
		return
	}
	s.finishedAt = now
	if s.started {
		s.cfg.Metrics.DecrementActiveSessions(ctx)
	}
	logging.Info().
		Add(logging.SessionID(s.id)).
		Add(logging.Phase(s.st.phase.Phase())).
		Add(logging.Turn(s.turns)).
		Add(logging.Duration(now.Sub(s.startedAt))).
		Msg("session ended")

	if s.started {
		r := s.buildReport()
		s.notify(ctx, notification.EventSessionCompleted, now, notification.SessionCompletedPayload{
			Phase:      r.Summary.PhaseReached,
			DealClosed: r.NegotiationResult.DealClosed,
			Turns:      s.turns,
			Duration:   r.SessionInfo.Duration,
			Percentage: r.PerformanceEvaluation.Percentage,
		})
	}
}

// FinalReport assembles the report as of now. A finished session
// reports as of the moment it finished.
func (s *Session) FinalReport() *report.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildReport()
}

func (s *Session) buildReport() *report.Report {
	at := s.finishedAt
	if at.IsZero() {
		at = s.cfg.Clock()
	}
	r := report.Build(s.reportInput(at))
	r.ID = s.reportID
	return r
}

func (s *Session) reportInput(at time.Time) report.Input {
	return report.Input{
		SessionID:   s.id,
		StartedAt:   s.startedAt,
		Now:         at,
		Phase:       s.st.phase.Phase(),
		Outcome:     s.st.outcome,
		Evaluation:  s.st.scoring.Evaluate(),
		Cast:        s.st.cast.Clone(),
		Log:         s.log.Entries(),
		ClampScores: s.cfg.ClampScores,
	}
}

// ExportReport renders the final report as json or text.
func (s *Session) ExportReport(format string) ([]byte, error) {
	r := s.FinalReport()
	data, err := report.Export(r, format)
	if err != nil {
		return nil, err
	}
	logging.Debug().
		Add(logging.SessionID(s.id)).
		Add(logging.ReportID(r.ID)).
		Add(logging.Format(format)).
		Msg("report exported")
	return data, nil
}

// Status returns the session's current position.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.finishedAt
	if at.IsZero() {
		at = s.cfg.Clock()
	}
	return Status{
		ID:               s.id,
		Phase:            s.st.phase.Phase(),
		Active:           s.isActive(),
		Turns:            s.turns,
		RemainingSeconds: s.st.phase.Remaining(at).Seconds(),
		StartedAt:        s.startedAt,
		Summary:          report.BuildSummary(s.reportInput(at)),
	}
}

// End stops the session and returns its final report. With a store and
// save-on-complete configured the report is saved, once.
func (s *Session) End(ctx context.Context) (*report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.finish(ctx, s.cfg.Clock())
	if s.autoSave() {
		return s.save(ctx)
	}
	return s.buildReport(), nil
}

// Save writes the final report to the configured store. Saving a session
// twice is a no-op.
func (s *Session) Save(ctx context.Context) (*report.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx)
}

func (s *Session) autoSave() bool {
	return s.cfg.SaveOnComplete && s.cfg.Store != nil
}

func (s *Session) save(ctx context.Context) (*report.Report, error) {
	r := s.buildReport()
	if s.cfg.Store == nil {
		return r, ErrNoStore
	}
	if s.saved {
		return r, nil
	}

	ctx, span := observability.StartSpan(context.WithoutCancel(ctx), s.cfg.Tracer, "report.save",
		observability.AttrSessionID.String(s.id),
	)
	err := s.cfg.Store.Save(ctx, r)
	observability.EndSpan(span, err)
	s.cfg.Metrics.RecordReportSaved(ctx, s.cfg.StoreBackend, err == nil)
	if err != nil {
		return r, fmt.Errorf("failed to save report %s: %w", r.ID, err)
	}

	s.saved = true
	logging.Info().
		Add(logging.SessionID(s.id)).
		Add(logging.ReportID(r.ID)).
		Add(logging.Backend(s.cfg.StoreBackend)).
		Msg("report saved")
	s.notify(ctx, notification.EventReportSaved, s.cfg.Clock(), notification.ReportSavedPayload{
		ReportID: r.ID,
		Backend:  s.cfg.StoreBackend,
	})
	return r, nil
}
