package postgres

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/pitchroom/domain/report"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/storetest"
)

func TestNewReportStore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		schema   string
		expected string
	}{
		{"default schema", "", "public.reports"},
		{"custom schema", "pitch", "pitch.reports"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NewReportStore(nil, tt.schema).tableName(); got != tt.expected {
				t.Errorf("tableName() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestReportStore_buildListQuery(t *testing.T) {
	t.Parallel()

	closed := true
	tests := []struct {
		name      string
		filter    report.ListFilter
		wantQuery string
		wantArgs  int
	}{
		{
			name:      "empty filter",
			wantQuery: "SELECT data FROM public.reports ORDER BY report_date DESC",
		},
		{
			name:      "all predicates",
			filter:    report.ListFilter{SessionID: "s", DealClosed: &closed, FromTime: time.Unix(1, 0), Limit: 5, Offset: 10},
			wantQuery: "SELECT data FROM public.reports WHERE session_id = $1 AND deal_closed = $2 AND report_date >= $3 ORDER BY report_date DESC LIMIT $4 OFFSET $5",
			wantArgs:  5,
		},
		{
			name:      "offset only",
			filter:    report.ListFilter{Offset: 2},
			wantQuery: "SELECT data FROM public.reports ORDER BY report_date DESC OFFSET $1",
			wantArgs:  1,
		},
	}

	s := NewReportStore(nil, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			query, args := s.buildListQuery(tt.filter)
			if query != tt.wantQuery {
				t.Errorf("query = %q\nwant %q", query, tt.wantQuery)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("args = %d, want %d", len(args), tt.wantArgs)
			}
		})
	}
}

func TestReportStore_wrapError(t *testing.T) {
	t.Parallel()

	s := NewReportStore(nil, "")
	if s.wrapError(nil) != nil {
		t.Error("wrapError(nil) should be nil")
	}
	if err := s.wrapError(context.DeadlineExceeded); !errors.Is(err, ErrOperationTimeout) {
		t.Errorf("wrapError(deadline) = %v, want ErrOperationTimeout", err)
	}
	if err := s.wrapError(errors.New("conn reset")); !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("wrapError(other) = %v, want ErrConnectionFailed", err)
	}
}

func TestPoolConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxConns = 4
	pc, err := poolConfig(cfg)
	if err != nil {
		t.Fatalf("poolConfig() error = %v", err)
	}
	if pc.MaxConns != 4 {
		t.Errorf("MaxConns = %d, want 4", pc.MaxConns)
	}
	if pc.ConnConfig.Database != "pitchroom" {
		t.Errorf("Database = %s, want pitchroom", pc.ConnConfig.Database)
	}

	if _, err := poolConfig(Config{DSN: "postgres://%zz"}); err == nil {
		t.Error("expected error for malformed dsn")
	}
}

// Runs against a live server when PITCHROOM_TEST_POSTGRES_DSN is set.
func TestReportStore_Contract(t *testing.T) {
	dsn := os.Getenv("PITCHROOM_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PITCHROOM_TEST_POSTGRES_DSN not set")
	}

	storetest.Run(t, func(t *testing.T) report.Store {
		ctx := context.Background()
		cfg := DefaultConfig()
		cfg.DSN = dsn

		pool, err := Open(ctx, cfg)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		t.Cleanup(pool.Close)

		schema := "pitchroom_test_" + strings.ToLower(strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()))
		if _, err := pool.Exec(ctx, "DROP SCHEMA IF EXISTS "+schema+" CASCADE; CREATE SCHEMA "+schema); err != nil {
			t.Fatalf("create schema: %v", err)
		}
		s := NewReportStore(pool, schema)
		if err := s.Migrate(ctx); err != nil {
			t.Fatalf("Migrate() error = %v", err)
		}
		return s
	})
}
