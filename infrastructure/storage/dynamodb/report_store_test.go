package dynamodb

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"github.com/felixgeelhaar/pitchroom/domain/report"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/storetest"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.ReportsTableName != "pitchroom_reports" {
		t.Errorf("ReportsTableName = %s, want pitchroom_reports", cfg.ReportsTableName)
	}
	if cfg.QueryTimeout != 30*time.Second {
		t.Errorf("QueryTimeout = %v, want 30s", cfg.QueryTimeout)
	}

	WithReportsTableName("t")(&cfg)
	WithEndpoint("http://localhost:8000")(&cfg)
	WithStaticCredentials("id", "secret")(&cfg)
	if cfg.ReportsTableName != "t" || cfg.Endpoint != "http://localhost:8000" || cfg.AccessKeyID != "id" {
		t.Errorf("options not applied: %+v", cfg)
	}
}

func TestToItem(t *testing.T) {
	t.Parallel()

	r := storetest.NewReport("r-1", "s-1", storetest.Base, true)
	item, err := toItem(r)
	if err != nil {
		t.Fatalf("toItem() error = %v", err)
	}
	if item.ReportTS != storetest.Base.UnixNano() {
		t.Errorf("ReportTS = %d", item.ReportTS)
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		t.Fatalf("MarshalMap() error = %v", err)
	}
	for _, key := range []string{"id", "session_id", "deal_closed", "report_ts", "data"} {
		if _, ok := av[key]; !ok {
			t.Errorf("attribute %q missing", key)
		}
	}

	var back reportItem
	if err := attributevalue.UnmarshalMap(av, &back); err != nil {
		t.Fatalf("UnmarshalMap() error = %v", err)
	}
	got, err := report.Decode([]byte(back.Data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.ID != "r-1" || !got.NegotiationResult.DealClosed {
		t.Errorf("decoded report = %+v", got)
	}
}

func TestBuildFilter(t *testing.T) {
	t.Parallel()

	closed := true
	tests := []struct {
		name      string
		filter    report.ListFilter
		wantOK    bool
		wantNames []string
	}{
		{"empty", report.ListFilter{Limit: 3}, false, nil},
		{"session", report.ListFilter{SessionID: "s"}, true, []string{"session_id"}},
		{"all", report.ListFilter{SessionID: "s", DealClosed: &closed, FromTime: storetest.Base}, true, []string{"session_id", "deal_closed", "report_ts"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			expr, ok, err := buildFilter(tt.filter)
			if err != nil {
				t.Fatalf("buildFilter() error = %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if expr.Filter() == nil {
				t.Fatal("Filter() is nil")
			}
			names := map[string]bool{}
			for _, v := range expr.Names() {
				names[v] = true
			}
			for _, n := range tt.wantNames {
				if !names[n] {
					t.Errorf("attribute name %q missing from %v", n, expr.Names())
				}
			}
			if len(expr.Values()) != len(tt.wantNames) {
				t.Errorf("values = %d, want %d", len(expr.Values()), len(tt.wantNames))
			}
		})
	}
}

func TestReportStore_wrapError(t *testing.T) {
	t.Parallel()

	s := &ReportStore{}
	if err := s.wrapError(context.DeadlineExceeded); !errors.Is(err, ErrOperationTimeout) {
		t.Errorf("wrapError(deadline) = %v", err)
	}
	if err := s.wrapError(errors.New("throttled")); !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("wrapError(other) = %v", err)
	}
}

// Runs against DynamoDB Local when PITCHROOM_TEST_DYNAMODB_ENDPOINT is set.
func TestReportStore_Contract(t *testing.T) {
	endpoint := os.Getenv("PITCHROOM_TEST_DYNAMODB_ENDPOINT")
	if endpoint == "" {
		t.Skip("PITCHROOM_TEST_DYNAMODB_ENDPOINT not set")
	}

	storetest.Run(t, func(t *testing.T) report.Store {
		ctx := context.Background()
		table := "reports_" + strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())

		client, err := NewClient(ctx,
			WithEndpoint(endpoint),
			WithStaticCredentials("local", "local"),
			WithReportsTableName(table),
		)
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		if err := client.CreateReportsTable(ctx); err != nil {
			t.Fatalf("CreateReportsTable() error = %v", err)
		}
		s := NewReportStore(client)
		existing, err := s.List(ctx, report.ListFilter{})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		for _, r := range existing {
			_ = s.Delete(ctx, r.ID)
		}
		return s
	})
}
