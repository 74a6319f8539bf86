// Package storetest holds the behavior every report.Store must share.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/felixgeelhaar/pitchroom/domain/ledger"
	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
	"github.com/felixgeelhaar/pitchroom/domain/report"
)

// Base is the date of the first fixture report.
var Base = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

// NewReport returns a small report fixture.
func NewReport(id, sessionID string, date time.Time, closed bool) *report.Report {
	var invested int64
	if closed {
		invested = 5_000_000_000
	}
	return &report.Report{
		ID:        id,
		SessionID: sessionID,
		SessionInfo: report.SessionInfo{
			Date:          date,
			Duration:      120,
			TotalMessages: 2,
		},
		NegotiationResult: report.NegotiationResult{
			DealClosed:          closed,
			InvestmentRequested: 10_000_000_000,
			InvestmentSecured:   invested,
			EquityOffered:       20,
			SuccessRate:         float64(invested) / 10_000_000_000 * 100,
		},
		ConversationLog: []ledger.Entry{
			ledger.UserEntry(negotiation.PhaseIntroduction, "سلام", date),
			ledger.SystemEntry(negotiation.PhaseIntroduction, "خوش آمدید", date),
		},
		Summary: report.Summary{
			PhaseReached: negotiation.PhaseIntroduction,
			DealClosed:   closed,
			MessageCount: 2,
		},
	}
}

// Run exercises store against the report.Store contract. newStore must
// return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) report.Store) {
	t.Helper()

	t.Run("save and get", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		r := NewReport("r-1", "s-1", Base, true)
		if err := s.Save(ctx, r); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := s.Get(ctx, "r-1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.SessionID != "s-1" {
			t.Errorf("SessionID = %s, want s-1", got.SessionID)
		}
		if !got.SessionInfo.Date.Equal(Base) {
			t.Errorf("Date = %v, want %v", got.SessionInfo.Date, Base)
		}
		if !got.NegotiationResult.DealClosed {
			t.Error("DealClosed = false, want true")
		}
		if len(got.ConversationLog) != 2 {
			t.Errorf("ConversationLog len = %d, want 2", len(got.ConversationLog))
		}
	})

	t.Run("duplicate save", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		r := NewReport("dup", "s-1", Base, false)
		if err := s.Save(ctx, r); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := s.Save(ctx, r); !errors.Is(err, report.ErrReportExists) {
			t.Errorf("second Save() error = %v, want ErrReportExists", err)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if err := s.Save(ctx, NewReport("", "s-1", Base, false)); !errors.Is(err, report.ErrInvalidReportID) {
			t.Errorf("Save() error = %v, want ErrInvalidReportID", err)
		}
		if _, err := s.Get(ctx, ""); !errors.Is(err, report.ErrInvalidReportID) {
			t.Errorf("Get() error = %v, want ErrInvalidReportID", err)
		}
		if err := s.Delete(ctx, ""); !errors.Is(err, report.ErrInvalidReportID) {
			t.Errorf("Delete() error = %v, want ErrInvalidReportID", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if _, err := s.Get(ctx, "missing"); !errors.Is(err, report.ErrReportNotFound) {
			t.Errorf("Get() error = %v, want ErrReportNotFound", err)
		}
		if err := s.Delete(ctx, "missing"); !errors.Is(err, report.ErrReportNotFound) {
			t.Errorf("Delete() error = %v, want ErrReportNotFound", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if err := s.Save(ctx, NewReport("gone", "s-1", Base, false)); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := s.Delete(ctx, "gone"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := s.Get(ctx, "gone"); !errors.Is(err, report.ErrReportNotFound) {
			t.Errorf("Get() after delete error = %v, want ErrReportNotFound", err)
		}
	})

	t.Run("list", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for i := range 5 {
			r := NewReport(fmt.Sprintf("r-%d", i), fmt.Sprintf("s-%d", i%2), Base.Add(time.Duration(i)*time.Hour), i%2 == 0)
			if err := s.Save(ctx, r); err != nil {
				t.Fatalf("Save(%d) error = %v", i, err)
			}
		}

		closed := true
		tests := []struct {
			name   string
			filter report.ListFilter
			want   []string
		}{
			{"all newest first", report.ListFilter{}, []string{"r-4", "r-3", "r-2", "r-1", "r-0"}},
			{"by session", report.ListFilter{SessionID: "s-1"}, []string{"r-3", "r-1"}},
			{"closed deals", report.ListFilter{DealClosed: &closed}, []string{"r-4", "r-2", "r-0"}},
			{"from time", report.ListFilter{FromTime: Base.Add(3 * time.Hour)}, []string{"r-4", "r-3"}},
			{"limit", report.ListFilter{Limit: 2}, []string{"r-4", "r-3"}},
			{"offset", report.ListFilter{Offset: 3}, []string{"r-1", "r-0"}},
			{"offset past end", report.ListFilter{Offset: 10}, []string{}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := s.List(ctx, tt.filter)
				if err != nil {
					t.Fatalf("List() error = %v", err)
				}
				ids := make([]string, len(got))
				for i, r := range got {
					ids[i] = r.ID
				}
				if fmt.Sprint(ids) != fmt.Sprint(tt.want) {
					t.Errorf("List() = %v, want %v", ids, tt.want)
				}
			})
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		s := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := s.Save(ctx, NewReport("c", "s-1", Base, false)); err == nil {
			t.Error("Save() with cancelled context should fail")
		}
	})
}
