package deal

import (
	"strings"

	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
)

// Thresholds that sort a mentioned figure into investment or equity.
// Anything between them is ignored.
const (
	InvestmentFloor int64 = 1_000_000_000
	EquityCeiling   int64 = 100
)

var agreementTerms = []string{"موافقم", "قبول", "توافق", "می‌پذیرم", "باشه", "خوبه"}

// agreeingRoles are the only counterparts whose consent can close a deal.
var agreeingRoles = []negotiation.Role{
	negotiation.RoleConservativeInvestor,
	negotiation.RoleRiskyInvestor,
}

// Detection reports what one scan found.
type Detection struct {
	Investments []int64
	Equities    []int64
	AgreedBy    []negotiation.Role

	// Closed is true when this scan closed the deal.
	Closed bool
}

// Detect scans a final-negotiation turn. Figures in the user's message update
// the outcome; agreement is read only from the investors' replies. The caller
// is responsible for ending the session when Closed is set.
func Detect(o *Outcome, userMessage string, replies map[negotiation.Role]string) Detection {
	var d Detection

	for _, n := range Numbers(userMessage) {
		switch {
		case n > InvestmentFloor:
			o.FinalInvestment = n
			d.Investments = append(d.Investments, n)
		case n <= EquityCeiling:
			o.FinalEquity = n
			d.Equities = append(d.Equities, n)
		}
	}

	for _, role := range agreeingRoles {
		if reply, ok := replies[role]; ok && Agrees(reply) {
			d.AgreedBy = append(d.AgreedBy, role)
		}
	}

	if len(d.AgreedBy) > 0 && o.FinalInvestment > 0 && !o.DealClosed {
		o.DealClosed = true
		d.Closed = true
	}
	return d
}

// Agrees reports whether text contains an agreement term.
func Agrees(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range agreementTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
