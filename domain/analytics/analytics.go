// Package analytics provides types for cross-session analytics.
package analytics

import (
	"context"
	"time"

	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
)

// Analytics provides aggregate insights across saved sessions.
type Analytics interface {
	// Outcomes returns deal and score statistics.
	Outcomes(ctx context.Context, filter Filter) (OutcomeStat, error)

	// PhaseDistribution returns how far sessions got.
	PhaseDistribution(ctx context.Context, filter Filter) ([]PhaseStat, error)

	// RoleSatisfaction returns each counterpart's final disposition.
	RoleSatisfaction(ctx context.Context, filter Filter) ([]RoleStat, error)

	// Trend returns outcomes grouped by filter.GroupBy, oldest first.
	Trend(ctx context.Context, filter Filter) ([]OutcomeStat, error)
}

// Filter specifies criteria for analytics queries.
type Filter struct {
	// FromTime filters sessions dated at or after this time.
	FromTime time.Time

	// ToTime filters sessions dated before this time.
	ToTime time.Time

	// SessionIDs filters to specific sessions (empty means all).
	SessionIDs []string

	// GroupBy specifies how Trend buckets sessions.
	GroupBy GroupBy

	// Limit is the maximum number of Trend buckets, newest kept (0 = no limit).
	Limit int
}

// GroupBy specifies how to group analytics results.
type GroupBy string

const (
	// GroupByNone returns ungrouped results.
	GroupByNone GroupBy = ""

	// GroupByDay groups results by day.
	GroupByDay GroupBy = "day"

	// GroupByWeek groups results by ISO week, starting Monday.
	GroupByWeek GroupBy = "week"

	// GroupByMonth groups results by month.
	GroupByMonth GroupBy = "month"
)

// IsValid reports whether g is a known grouping.
func (g GroupBy) IsValid() bool {
	switch g {
	case GroupByNone, GroupByDay, GroupByWeek, GroupByMonth:
		return true
	default:
		return false
	}
}

// Period returns the start of the bucket t falls in, in UTC.
func (g GroupBy) Period(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch g {
	case GroupByDay:
		return day
	case GroupByWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case GroupByMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Time{}
	}
}

// OutcomeStat contains deal and score statistics.
type OutcomeStat struct {
	// TotalSessions is the number of sessions counted.
	TotalSessions int64 `json:"total_sessions"`

	// DealsClosed is the number of sessions that ended in a deal.
	DealsClosed int64 `json:"deals_closed"`

	// CloseRate is the percentage of sessions that closed.
	CloseRate float64 `json:"close_rate"`

	// AverageSuccessRate is the mean success rate of closed deals.
	AverageSuccessRate float64 `json:"average_success_rate"`

	// AveragePercentage is the mean evaluator score.
	AveragePercentage float64 `json:"average_percentage"`

	// AverageDuration is the mean session length in seconds.
	AverageDuration float64 `json:"average_duration"`

	// InvestmentSecured is the sum of closed investments.
	InvestmentSecured int64 `json:"investment_secured"`

	// Grades counts sessions per grade.
	Grades map[string]int64 `json:"grades"`

	// Period is the time period for this stat (when grouped by time).
	Period time.Time `json:"period,omitempty"`
}

// PhaseStat counts sessions by the phase they reached.
type PhaseStat struct {
	Phase      negotiation.Phase `json:"phase"`
	Sessions   int64             `json:"sessions"`
	Percentage float64           `json:"percentage"`
}

// RoleStat summarizes one counterpart across sessions.
type RoleStat struct {
	// Role is the counterpart.
	Role negotiation.Role `json:"role"`

	// AverageSatisfaction is the mean final satisfaction.
	AverageSatisfaction float64 `json:"average_satisfaction"`

	// FinalStates counts sessions per final affect.
	FinalStates map[negotiation.Affect]int64 `json:"final_states"`
}
