// Package deal tracks the business result of a pitch: what was asked,
// what was offered across the table, and whether the deal closed.
package deal

// Terms of the founder's ask.
const (
	InvestmentRequested int64 = 50_000_000_000
	EquityOffered       int64 = 30
)

// Outcome is the negotiated result of a session.
type Outcome struct {
	InvestmentRequested int64 `json:"investment_requested"`
	EquityOffered       int64 `json:"equity_offered"`

	// FinalInvestment and FinalEquity hold the last figures mentioned.
	FinalInvestment int64 `json:"final_investment"`
	FinalEquity     int64 `json:"final_equity"`

	// DealClosed only ever goes from false to true.
	DealClosed bool `json:"deal_closed"`
}

// NewOutcome returns the outcome of a session that has not negotiated yet.
func NewOutcome() Outcome {
	return Outcome{
		InvestmentRequested: InvestmentRequested,
		EquityOffered:       EquityOffered,
	}
}

// SuccessRate scores a closed deal as 60% investment secured and 40% equity
// kept. It is zero for an open deal and is not capped at 100.
func (o Outcome) SuccessRate() float64 {
	if !o.DealClosed {
		return 0
	}

	investmentRatio := float64(o.FinalInvestment) / float64(o.InvestmentRequested)
	equityRatio := 0.0
	if o.FinalEquity > 0 {
		equityRatio = float64(o.EquityOffered) / float64(o.FinalEquity)
	}
	return (investmentRatio*0.6 + equityRatio*0.4) * 100
}
