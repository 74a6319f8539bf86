// Package report assembles the end-of-session report and renders it for export.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/pitchroom/domain/counterpart"
	"github.com/felixgeelhaar/pitchroom/domain/deal"
	"github.com/felixgeelhaar/pitchroom/domain/ledger"
	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
	"github.com/felixgeelhaar/pitchroom/domain/scoring"
)

// Report is the full record of a finished (or abandoned) session.
type Report struct {
	ID                    string                             `json:"id"`
	SessionID             string                             `json:"session_id"`
	SessionInfo           SessionInfo                        `json:"session_info"`
	NegotiationResult     NegotiationResult                  `json:"negotiation_result"`
	PerformanceEvaluation scoring.Evaluation                 `json:"performance_evaluation"`
	AgentsFeedback        map[negotiation.Role]AgentFeedback `json:"agents_feedback"`
	ConversationLog       []ledger.Entry                     `json:"conversation_log"`
	Summary               Summary                            `json:"summary"`
}

// SessionInfo describes when the session ran.
type SessionInfo struct {
	Date          time.Time `json:"date"`
	Duration      float64   `json:"duration"`
	TotalMessages int       `json:"total_messages"`
}

// NegotiationResult is the business side of the report.
type NegotiationResult struct {
	DealClosed          bool    `json:"deal_closed"`
	InvestmentRequested int64   `json:"investment_requested"`
	InvestmentSecured   int64   `json:"investment_secured"`
	EquityOffered       int64   `json:"equity_offered"`
	EquityGiven         int64   `json:"equity_given"`
	SuccessRate         float64 `json:"success_rate"`
}

// AgentFeedback is one counterpart's final position.
type AgentFeedback struct {
	FinalState   negotiation.Affect `json:"final_state"`
	Satisfaction int                `json:"satisfaction"`
	Notes        []string           `json:"notes"`
	Counters     map[string]int     `json:"counters,omitempty"`
}

// Summary is the short form of a session's result.
type Summary struct {
	Duration           float64                  `json:"duration"`
	PhaseReached       negotiation.Phase        `json:"phase_reached"`
	DealClosed         bool                     `json:"deal_closed"`
	FinalInvestment    int64                    `json:"final_investment"`
	FinalEquity        int64                    `json:"final_equity"`
	SuccessRate        float64                  `json:"success_rate"`
	AgentsSatisfaction map[negotiation.Role]int `json:"agents_satisfaction"`
	MessageCount       int                      `json:"message_count"`
}

// Input is everything the builder reads from a session.
type Input struct {
	SessionID  string
	StartedAt  time.Time
	Now        time.Time
	Phase      negotiation.Phase
	Outcome    deal.Outcome
	Evaluation scoring.Evaluation
	Cast       counterpart.Cast
	Log        []ledger.Entry

	// ClampScores caps the success rate at 100.
	ClampScores bool
}

// BuildSummary computes the session summary.
func BuildSummary(in Input) Summary {
	rate := in.Outcome.SuccessRate()
	if in.ClampScores && rate > 100 {
		rate = 100
	}

	satisfaction := make(map[negotiation.Role]int, len(in.Cast))
	for role, c := range in.Cast {
		satisfaction[role] = c.State().Satisfaction
	}

	return Summary{
		Duration:           in.Now.Sub(in.StartedAt).Seconds(),
		PhaseReached:       in.Phase,
		DealClosed:         in.Outcome.DealClosed,
		FinalInvestment:    in.Outcome.FinalInvestment,
		FinalEquity:        in.Outcome.FinalEquity,
		SuccessRate:        rate,
		AgentsSatisfaction: satisfaction,
		MessageCount:       len(in.Log),
	}
}

// Build assembles a report with a fresh ID.
func Build(in Input) *Report {
	summary := BuildSummary(in)

	feedback := make(map[negotiation.Role]AgentFeedback, len(in.Cast))
	for role, c := range in.Cast {
		st := c.State()
		feedback[role] = AgentFeedback{
			FinalState:   st.Affect,
			Satisfaction: st.Satisfaction,
			Notes:        st.Notes,
			Counters:     c.Counters(),
		}
	}

	log := make([]ledger.Entry, len(in.Log))
	copy(log, in.Log)

	return &Report{
		ID:        uuid.NewString(),
		SessionID: in.SessionID,
		SessionInfo: SessionInfo{
			Date:          in.Now,
			Duration:      summary.Duration,
			TotalMessages: len(in.Log),
		},
		NegotiationResult: NegotiationResult{
			DealClosed:          in.Outcome.DealClosed,
			InvestmentRequested: in.Outcome.InvestmentRequested,
			InvestmentSecured:   in.Outcome.FinalInvestment,
			EquityOffered:       in.Outcome.EquityOffered,
			EquityGiven:         in.Outcome.FinalEquity,
			SuccessRate:         summary.SuccessRate,
		},
		PerformanceEvaluation: in.Evaluation,
		AgentsFeedback:        feedback,
		ConversationLog:       log,
		Summary:               summary,
	}
}
