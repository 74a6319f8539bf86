package sqlite

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/pitchroom/domain/report"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/storetest"
)

func newTestReportStore(t *testing.T) *ReportStore {
	t.Helper()

	cfg := DefaultConfig()
	cfg.DSN = "file:" + t.TempDir() + "/reports.db?mode=rwc"

	s, err := NewReportStore(cfg)
	if err != nil {
		t.Fatalf("NewReportStore() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestReportStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) report.Store {
		return newTestReportStore(t)
	})
}

func TestBuildReportQuery(t *testing.T) {
	t.Parallel()

	closed := false
	tests := []struct {
		name      string
		filter    report.ListFilter
		wantQuery string
		wantArgs  int
	}{
		{
			name:      "no filter",
			wantQuery: "SELECT data FROM reports ORDER BY report_date DESC",
		},
		{
			name:      "session and outcome",
			filter:    report.ListFilter{SessionID: "s", DealClosed: &closed},
			wantQuery: "SELECT data FROM reports WHERE session_id = ? AND deal_closed = ? ORDER BY report_date DESC",
			wantArgs:  2,
		},
		{
			name:      "offset without limit",
			filter:    report.ListFilter{Offset: 2},
			wantQuery: "SELECT data FROM reports ORDER BY report_date DESC LIMIT ? OFFSET ?",
			wantArgs:  2,
		},
		{
			name:      "from time and limit",
			filter:    report.ListFilter{FromTime: time.Unix(10, 0), Limit: 3},
			wantQuery: "SELECT data FROM reports WHERE report_date >= ? ORDER BY report_date DESC LIMIT ?",
			wantArgs:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			query, args := buildReportQuery(tt.filter)
			if query != tt.wantQuery {
				t.Errorf("query = %q, want %q", query, tt.wantQuery)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("args = %d, want %d", len(args), tt.wantArgs)
			}
		})
	}
}
