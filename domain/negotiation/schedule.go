package negotiation

// ActiveRoles returns the roles that take part in a turn during phase p,
// in the order their replies are applied.
func ActiveRoles(p Phase) []Role {
	switch p {
	case PhaseIntroduction:
		return []Role{RoleConservativeInvestor, RoleRiskyInvestor, RoleEvaluator}
	case PhaseFinancialQuestions:
		return []Role{RoleConservativeInvestor, RoleEvaluator}
	case PhaseCompetitiveChallenge:
		return []Role{RoleCompetitor, RoleEvaluator}
	case PhaseFinalNegotiation:
		return []Role{RoleConservativeInvestor, RoleRiskyInvestor, RoleEvaluator}
	default:
		return nil
	}
}

// NegotiatingRoles returns ActiveRoles(p) without the evaluator.
func NegotiatingRoles(p Phase) []Role {
	var out []Role
	for _, r := range ActiveRoles(p) {
		if r.Negotiates() {
			out = append(out, r)
		}
	}
	return out
}
