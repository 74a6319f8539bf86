package report

import (
	"context"
	"errors"
	"slices"
	"time"
)

// Domain errors for reports.
var (
	// ErrUnsupportedFormat is returned when an export format is not recognized.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrReportNotFound is returned when a report does not exist.
	ErrReportNotFound = errors.New("report not found")

	// ErrReportExists is returned when saving a report whose ID is taken.
	ErrReportExists = errors.New("report already exists")

	// ErrInvalidReportID is returned when a report ID is empty.
	ErrInvalidReportID = errors.New("invalid report ID")
)

// Store persists finished reports.
type Store interface {
	// Save persists a new report.
	Save(ctx context.Context, r *Report) error

	// Get retrieves a report by ID.
	Get(ctx context.Context, id string) (*Report, error)

	// Delete removes a report by ID.
	Delete(ctx context.Context, id string) error

	// List returns reports matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Report, error)
}

// ListFilter specifies criteria for listing reports.
type ListFilter struct {
	// SessionID restricts results to one session.
	SessionID string

	// DealClosed filters by outcome when non-nil.
	DealClosed *bool

	// FromTime filters reports dated at or after this time.
	FromTime time.Time

	// Limit is the maximum number of reports to return (0 = no limit).
	Limit int

	// Offset is the number of reports to skip.
	Offset int
}

// Matches reports whether r passes the filter's predicates.
// Limit and Offset are applied by Apply.
func (f ListFilter) Matches(r *Report) bool {
	if f.SessionID != "" && r.SessionID != f.SessionID {
		return false
	}
	if f.DealClosed != nil && r.NegotiationResult.DealClosed != *f.DealClosed {
		return false
	}
	if !f.FromTime.IsZero() && r.SessionInfo.Date.Before(f.FromTime) {
		return false
	}
	return true
}

// Apply filters, orders newest first and pages a set of reports.
// Stores without native querying use it after loading candidates.
func (f ListFilter) Apply(reports []*Report) []*Report {
	var out []*Report
	for _, r := range reports {
		if f.Matches(r) {
			out = append(out, r)
		}
	}

	sortNewestFirst(out)

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*Report{}
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	if out == nil {
		out = []*Report{}
	}
	return out
}

func sortNewestFirst(reports []*Report) {
	slices.SortStableFunc(reports, func(a, b *Report) int {
		return b.SessionInfo.Date.Compare(a.SessionInfo.Date)
	})
}

// FileStem returns the base name used for a report on disk or in a bucket,
// for example report_20250102_150405_<id>.
func FileStem(r *Report) string {
	return "report_" + r.SessionInfo.Date.Format("20060102_150405") + "_" + r.ID
}
