package objectstore

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/pitchroom/domain/report"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/storetest"
)

func TestReportStore_Contract(t *testing.T) {
	t.Parallel()

	storetest.Run(t, func(t *testing.T) report.Store {
		s, err := NewReportStore(NewMemoryClient(), "pitch")
		if err != nil {
			t.Fatalf("NewReportStore() error = %v", err)
		}
		return s
	})
}

func TestNewReportStore(t *testing.T) {
	t.Parallel()

	if _, err := NewReportStore(nil, ""); err == nil {
		t.Error("expected error for nil client")
	}

	tests := []struct {
		prefix string
		want   string
	}{
		{"", "reports/r.json"},
		{"a", "a/reports/r.json"},
		{"a/", "a/reports/r.json"},
	}
	for _, tt := range tests {
		s, err := NewReportStore(NewMemoryClient(), tt.prefix)
		if err != nil {
			t.Fatalf("NewReportStore() error = %v", err)
		}
		if got := s.jsonPath("r"); got != tt.want {
			t.Errorf("jsonPath(%q) = %s, want %s", tt.prefix, got, tt.want)
		}
	}
}

func TestReportStore_Layout(t *testing.T) {
	t.Parallel()

	client := NewMemoryClient()
	s, err := NewReportStore(client, "p")
	if err != nil {
		t.Fatalf("NewReportStore() error = %v", err)
	}
	ctx := context.Background()

	if err := s.Save(ctx, storetest.NewReport("r-1", "s-1", storetest.Base, true)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	names, _ := client.List(ctx, "p/")
	want := []string{"p/reports/r-1.json", "p/text/report_20250314_103000_r-1.txt"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("objects = %v, want %v", names, want)
	}

	if err := s.Delete(ctx, "r-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if client.ObjectCount() != 0 {
		t.Errorf("ObjectCount() = %d after delete, want 0", client.ObjectCount())
	}
}

type failingClient struct {
	*MemoryClient
}

func (failingClient) Put(context.Context, string, []byte, string) error {
	return errors.New("quota exceeded")
}

func TestReportStore_SaveRollsBackOnTextFailure(t *testing.T) {
	t.Parallel()

	client := failingClient{NewMemoryClient()}
	s, err := NewReportStore(client, "")
	if err != nil {
		t.Fatalf("NewReportStore() error = %v", err)
	}

	if err := s.Save(context.Background(), storetest.NewReport("r-1", "s-1", storetest.Base, false)); err == nil {
		t.Fatal("expected Save() error")
	}
	if client.ObjectCount() != 0 {
		t.Errorf("ObjectCount() = %d, want 0 after rollback", client.ObjectCount())
	}
}

func TestMemoryClient(t *testing.T) {
	t.Parallel()

	c := NewMemoryClient()
	ctx := context.Background()

	if err := c.Create(ctx, "a", []byte("1"), ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := c.Create(ctx, "a", []byte("2"), ""); !errors.Is(err, ErrObjectExists) {
		t.Errorf("Create() duplicate error = %v, want ErrObjectExists", err)
	}
	if err := c.Put(ctx, "a", []byte("3"), ""); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := c.Get(ctx, "a")
	if err != nil || string(got) != "3" {
		t.Errorf("Get() = %q, %v", got, err)
	}
	if _, err := c.Get(ctx, "b"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Get(missing) error = %v", err)
	}
	if err := c.Delete(ctx, "b"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Delete(missing) error = %v", err)
	}
}
