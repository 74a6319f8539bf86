package azblob

import (
	"os"
	"testing"
	"time"

	"github.com/felixgeelhaar/pitchroom/domain/report"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/objectstore"
	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/storetest"
)

func TestConfig_ServiceURL(t *testing.T) {
	t.Parallel()

	cfg := Config{AccountName: "pitchroom"}
	if got, want := cfg.ServiceURL(), "https://pitchroom.blob.core.windows.net/"; got != want {
		t.Errorf("ServiceURL() = %s, want %s", got, want)
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"no container", Config{AccountName: "a", AccountKey: "a2V5"}, true},
		{"no account", Config{Container: "c"}, true},
		{"shared key", Config{AccountName: "a", AccountKey: "a2V5", Container: "c"}, false},
		{"bad connection string", Config{ConnectionString: "nonsense", Container: "c"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// Runs against Azurite when PITCHROOM_TEST_AZBLOB_CONNECTION_STRING and
// PITCHROOM_TEST_AZBLOB_CONTAINER are set.
func TestClient_Contract(t *testing.T) {
	conn := os.Getenv("PITCHROOM_TEST_AZBLOB_CONNECTION_STRING")
	container := os.Getenv("PITCHROOM_TEST_AZBLOB_CONTAINER")
	if conn == "" || container == "" {
		t.Skip("PITCHROOM_TEST_AZBLOB_CONNECTION_STRING or PITCHROOM_TEST_AZBLOB_CONTAINER not set")
	}

	stamp := time.Now().Format("20060102150405.000")
	storetest.Run(t, func(t *testing.T) report.Store {
		c, err := New(Config{ConnectionString: conn, Container: container})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		s, err := objectstore.NewReportStore(c, "test/"+stamp+"/"+t.Name())
		if err != nil {
			t.Fatalf("NewReportStore() error = %v", err)
		}
		return s
	})
}
