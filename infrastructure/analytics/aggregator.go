// Package analytics computes cross-session statistics from saved reports.
package analytics

import (
	"context"
	"slices"
	"time"

	"github.com/felixgeelhaar/pitchroom/domain/analytics"
	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
	"github.com/felixgeelhaar/pitchroom/domain/report"
)

// Aggregator computes analytics from a report store.
type Aggregator struct {
	store report.Store
}

// NewAggregator creates a new analytics aggregator.
func NewAggregator(store report.Store) *Aggregator {
	return &Aggregator{store: store}
}

// Outcomes returns deal and score statistics.
func (a *Aggregator) Outcomes(ctx context.Context, filter analytics.Filter) (analytics.OutcomeStat, error) {
	reports, err := a.getReports(ctx, filter)
	if err != nil {
		return analytics.OutcomeStat{}, err
	}
	return outcomes(reports), nil
}

// PhaseDistribution returns how many sessions reached each phase, in
// phase order. Phases nobody reached are included with zero sessions.
func (a *Aggregator) PhaseDistribution(ctx context.Context, filter analytics.Filter) ([]analytics.PhaseStat, error) {
	reports, err := a.getReports(ctx, filter)
	if err != nil {
		return nil, err
	}

	counts := make(map[negotiation.Phase]int64)
	for _, r := range reports {
		counts[r.Summary.PhaseReached]++
	}

	phases := negotiation.AllPhases()
	result := make([]analytics.PhaseStat, 0, len(phases))
	for _, p := range phases {
		stat := analytics.PhaseStat{Phase: p, Sessions: counts[p]}
		if len(reports) > 0 {
			stat.Percentage = float64(stat.Sessions) / float64(len(reports)) * 100
		}
		result = append(result, stat)
	}
	return result, nil
}

// RoleSatisfaction returns each counterpart's final disposition.
func (a *Aggregator) RoleSatisfaction(ctx context.Context, filter analytics.Filter) ([]analytics.RoleStat, error) {
	reports, err := a.getReports(ctx, filter)
	if err != nil {
		return nil, err
	}

	type acc struct {
		total  int64
		n      int64
		states map[negotiation.Affect]int64
	}
	byRole := make(map[negotiation.Role]*acc)
	for _, r := range reports {
		for role, fb := range r.AgentsFeedback {
			a, ok := byRole[role]
			if !ok {
				a = &acc{states: make(map[negotiation.Affect]int64)}
				byRole[role] = a
			}
			a.total += int64(fb.Satisfaction)
			a.n++
			a.states[fb.FinalState]++
		}
	}

	var result []analytics.RoleStat
	for _, role := range negotiation.AllRoles() {
		a, ok := byRole[role]
		if !ok {
			continue
		}
		result = append(result, analytics.RoleStat{
			Role:                role,
			AverageSatisfaction: float64(a.total) / float64(a.n),
			FinalStates:         a.states,
		})
	}
	return result, nil
}

// Trend returns outcomes bucketed by filter.GroupBy, oldest first. With
// GroupByNone it returns a single bucket.
func (a *Aggregator) Trend(ctx context.Context, filter analytics.Filter) ([]analytics.OutcomeStat, error) {
	reports, err := a.getReports(ctx, filter)
	if err != nil {
		return nil, err
	}
	if filter.GroupBy == analytics.GroupByNone {
		return []analytics.OutcomeStat{outcomes(reports)}, nil
	}

	buckets := make(map[time.Time][]*report.Report)
	for _, r := range reports {
		p := filter.GroupBy.Period(r.SessionInfo.Date)
		buckets[p] = append(buckets[p], r)
	}

	periods := make([]time.Time, 0, len(buckets))
	for p := range buckets {
		periods = append(periods, p)
	}
	slices.SortFunc(periods, func(x, y time.Time) int { return x.Compare(y) })

	if filter.Limit > 0 && len(periods) > filter.Limit {
		periods = periods[len(periods)-filter.Limit:]
	}

	result := make([]analytics.OutcomeStat, 0, len(periods))
	for _, p := range periods {
		stat := outcomes(buckets[p])
		stat.Period = p
		result = append(result, stat)
	}
	return result, nil
}

func outcomes(reports []*report.Report) analytics.OutcomeStat {
	stat := analytics.OutcomeStat{Grades: make(map[string]int64)}

	var successTotal, percentTotal, durationTotal float64
	for _, r := range reports {
		stat.TotalSessions++
		percentTotal += r.PerformanceEvaluation.Percentage
		durationTotal += r.SessionInfo.Duration
		if g := r.PerformanceEvaluation.Grade; g != "" {
			stat.Grades[g]++
		}
		if r.NegotiationResult.DealClosed {
			stat.DealsClosed++
			successTotal += r.NegotiationResult.SuccessRate
			stat.InvestmentSecured += r.NegotiationResult.InvestmentSecured
		}
	}

	if stat.TotalSessions > 0 {
		stat.CloseRate = float64(stat.DealsClosed) / float64(stat.TotalSessions) * 100
		stat.AveragePercentage = percentTotal / float64(stat.TotalSessions)
		stat.AverageDuration = durationTotal / float64(stat.TotalSessions)
	}
	if stat.DealsClosed > 0 {
		stat.AverageSuccessRate = successTotal / float64(stat.DealsClosed)
	}
	return stat
}

// getReports retrieves reports matching the filter.
func (a *Aggregator) getReports(ctx context.Context, filter analytics.Filter) ([]*report.Report, error) {
	reports, err := a.store.List(ctx, report.ListFilter{FromTime: filter.FromTime})
	if err != nil {
		return nil, err
	}

	filtered := reports[:0:0]
	for _, r := range reports {
		if !filter.ToTime.IsZero() && !r.SessionInfo.Date.Before(filter.ToTime) {
			continue
		}
		if len(filter.SessionIDs) > 0 && !slices.Contains(filter.SessionIDs, r.SessionID) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

// Ensure Aggregator implements analytics.Analytics
var _ analytics.Analytics = (*Aggregator)(nil)
