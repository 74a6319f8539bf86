package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/felixgeelhaar/pitchroom/domain/report"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/objectstore"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/storetest"
)

func TestAPIStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"precondition", &googleapi.Error{Code: http.StatusPreconditionFailed}, http.StatusPreconditionFailed},
		{"wrapped", fmt.Errorf("write: %w", &googleapi.Error{Code: http.StatusForbidden}), http.StatusForbidden},
		{"plain", errors.New("boom"), 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := apiStatus(tt.err); got != tt.want {
				t.Errorf("apiStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNew_RequiresBucket(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), Config{}); err == nil {
		t.Error("expected error without bucket")
	}
}

// Runs against a GCS emulator when PITCHROOM_TEST_GCS_ENDPOINT and
// PITCHROOM_TEST_GCS_BUCKET are set.
func TestClient_Contract(t *testing.T) {
	endpoint := os.Getenv("PITCHROOM_TEST_GCS_ENDPOINT")
	bucket := os.Getenv("PITCHROOM_TEST_GCS_BUCKET")
	if endpoint == "" || bucket == "" {
		t.Skip("PITCHROOM_TEST_GCS_ENDPOINT or PITCHROOM_TEST_GCS_BUCKET not set")
	}

	stamp := time.Now().Format("20060102150405.000")
	storetest.Run(t, func(t *testing.T) report.Store {
		c, err := New(context.Background(), Config{Bucket: bucket, Endpoint: endpoint})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		t.Cleanup(func() { _ = c.Close() })

		s, err := objectstore.NewReportStore(c, "test/"+stamp+"/"+t.Name())
		if err != nil {
			t.Fatalf("NewReportStore() error = %v", err)
		}
		return s
	})
}
