package negotiation

import "fmt"

// Role identifies one counterpart at the table.
type Role string

// The fixed cast of a session.
const (
	RoleConservativeInvestor Role = "conservative_investor"
	RoleRiskyInvestor        Role = "risky_investor"
	RoleCompetitor           Role = "competitor"
	RoleEvaluator            Role = "evaluator"
)

// AllRoles returns every role in report order.
func AllRoles() []Role {
	return []Role{
		RoleConservativeInvestor,
		RoleRiskyInvestor,
		RoleCompetitor,
		RoleEvaluator,
	}
}

// IsValid returns true if the role is part of the cast.
func (r Role) IsValid() bool {
	switch r {
	case RoleConservativeInvestor, RoleRiskyInvestor, RoleCompetitor, RoleEvaluator:
		return true
	default:
		return false
	}
}

// Negotiates reports whether the role generates replies. The evaluator only scores.
func (r Role) Negotiates() bool {
	return r.IsValid() && r != RoleEvaluator
}

// DisplayName returns the persona name shown to the user.
func (r Role) DisplayName() string {
	switch r {
	case RoleConservativeInvestor:
		return "آقای محمدی"
	case RoleRiskyInvestor:
		return "خانم اکبری"
	case RoleCompetitor:
		return "آقای رضایی"
	case RoleEvaluator:
		return "دکتر کریمی"
	default:
		return string(r)
	}
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// ParseRole converts a string to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Affect is a counterpart's current stance toward the founder.
type Affect string

// Affect labels.
const (
	AffectNeutral    Affect = "neutral"
	AffectInterested Affect = "interested"
	AffectSkeptical  Affect = "skeptical"
	AffectAggressive Affect = "aggressive"
	AffectDefensive  Affect = "defensive"
)

// IsValid returns true if the affect is a recognized label.
func (a Affect) IsValid() bool {
	switch a {
	case AffectNeutral, AffectInterested, AffectSkeptical, AffectAggressive, AffectDefensive:
		return true
	default:
		return false
	}
}

// String returns the string representation of the affect.
func (a Affect) String() string {
	return string(a)
}
