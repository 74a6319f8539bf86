package badger

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/pitchroom/domain/report"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/storetest"
)

func newTestReportStore(t *testing.T, opts ...Option) *ReportStore {
	t.Helper()

	s, err := NewReportStore(DefaultConfig(), append([]Option{WithInMemory()}, opts...)...)
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

func TestReportStore_KeyPrefixIsolation(t *testing.T) {
	s := newTestReportStore(t, WithKeyPrefix("a:"))
	other := NewReportStoreFromDB(s.db, "b:")
	ctx := context.Background()

	if err := s.Save(ctx, storetest.NewReport("r-1", "s-1", storetest.Base, false)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := other.List(ctx, report.ListFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("other prefix sees %d reports, want 0", len(got))
	}
}

func TestReportStore_PersistsOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewReportStore(DefaultConfig(), WithDir(dir), WithGCInterval(0))
	if err != nil {
		t.Fatalf("NewReportStore() error = %v", err)
	}
	if err := s.Save(ctx, storetest.NewReport("r-1", "s-1", storetest.Base, true)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewReportStore(DefaultConfig(), WithDir(dir), WithGCInterval(0))
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.Get(ctx, "r-1"); err != nil {
		t.Errorf("Get() after reopen error = %v", err)
	}
}
