package mongodb

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/felixgeelhaar/pitchroom/domain/report"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/storetest"
)

func TestBuildFilter(t *testing.T) {
	t.Parallel()

	closed := false
	tests := []struct {
		name   string
		filter report.ListFilter
		keys   []string
	}{
		{"empty", report.ListFilter{}, nil},
		{"session", report.ListFilter{SessionID: "s"}, []string{"session_id"}},
		{"all", report.ListFilter{SessionID: "s", DealClosed: &closed, FromTime: storetest.Base}, []string{"session_id", "deal_closed", "report_date"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := buildFilter(tt.filter)
			if len(got) != len(tt.keys) {
				t.Fatalf("filter = %v, want keys %v", got, tt.keys)
			}
			for _, k := range tt.keys {
				if _, ok := got[k]; !ok {
					t.Errorf("key %q missing from %v", k, got)
				}
			}
		})
	}

	if got := buildFilter(report.ListFilter{FromTime: storetest.Base})["report_date"]; got.(bson.M)["$gte"] != storetest.Base {
		t.Errorf("report_date = %v", got)
	}
}

func TestBuildFindOptions(t *testing.T) {
	t.Parallel()

	opts := buildFindOptions(report.ListFilter{Limit: 5, Offset: 2})
	if opts.Limit == nil || *opts.Limit != 5 {
		t.Errorf("Limit = %v, want 5", opts.Limit)
	}
	if opts.Skip == nil || *opts.Skip != 2 {
		t.Errorf("Skip = %v, want 2", opts.Skip)
	}

	opts = buildFindOptions(report.ListFilter{})
	if opts.Limit != nil || opts.Skip != nil {
		t.Errorf("unexpected paging: limit=%v skip=%v", opts.Limit, opts.Skip)
	}
}

func TestToDocument(t *testing.T) {
	t.Parallel()

	doc, err := toDocument(storetest.NewReport("r-1", "s-1", storetest.Base, true))
	if err != nil {
		t.Fatalf("toDocument() error = %v", err)
	}
	if doc.ID != "r-1" || doc.SessionID != "s-1" || !doc.DealClosed || !doc.ReportDate.Equal(storetest.Base) {
		t.Errorf("document = %+v", doc)
	}
	if !strings.Contains(doc.Data, `"id": "r-1"`) {
		t.Errorf("data lacks report JSON: %s", doc.Data)
	}
}

func TestReportStore_wrapError(t *testing.T) {
	t.Parallel()

	s := &ReportStore{}
	if s.wrapError(nil) != nil {
		t.Error("wrapError(nil) should be nil")
	}
	if err := s.wrapError(context.DeadlineExceeded); !errors.Is(err, ErrOperationTimeout) {
		t.Errorf("wrapError(deadline) = %v", err)
	}
}

// Runs against a live server when PITCHROOM_TEST_MONGODB_URI is set.
func TestReportStore_Contract(t *testing.T) {
	uri := os.Getenv("PITCHROOM_TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("PITCHROOM_TEST_MONGODB_URI not set")
	}

	storetest.Run(t, func(t *testing.T) report.Store {
		ctx := context.Background()
		client, err := NewClient(ctx, WithURI(uri), WithDatabase("pitchroom_test"))
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		t.Cleanup(func() { _ = client.Close(context.Background()) })

		name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
		if err := client.Collection(name).Drop(ctx); err != nil {
			t.Fatalf("Drop() error = %v", err)
		}
		s := NewReportStore(client, name)
		if err := s.EnsureIndexes(ctx); err != nil {
			t.Fatalf("EnsureIndexes() error = %v", err)
		}
		return s
	})
}
