package speech

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/pitchroom/domain/config"
	"github.com/felixgeelhaar/pitchroom/domain/negotiation"
)

func newTestClient(srv *httptest.Server) *Client {
	return New(Config{
		STTEndpoint:  srv.URL + "/stt",
		TTSEndpoint:  srv.URL + "/tts",
		GatewayToken: "test-token",
		RetryDelay:   time.Millisecond,
	})
}

func TestSpeakerFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role negotiation.Role
		want int
	}{
		{negotiation.RoleConservativeInvestor, 2},
		{negotiation.RoleRiskyInvestor, 0},
		{negotiation.RoleCompetitor, 1},
		{negotiation.RoleEvaluator, 3},
		{negotiation.Role("moderator"), SpeakerSystem},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			t.Parallel()

			if got := SpeakerFor(tt.role); got != tt.want {
				t.Errorf("SpeakerFor(%s) = %d, want %d", tt.role, got, tt.want)
			}
		})
	}
}

func TestFromConfig(t *testing.T) {
	t.Parallel()

	cfg := FromConfig(config.Default().Speech)
	if cfg.STTEndpoint == "" || cfg.TTSEndpoint == "" {
		t.Errorf("endpoints not mapped: %+v", cfg)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
}

func TestTranscribe(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("gateway-token") != "test-token" {
			t.Errorf("gateway-token = %q", r.Header.Get("gateway-token"))
		}
		var req sttRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Language != "fa" {
			t.Errorf("language = %q, want fa", req.Language)
		}
		audio, _ := base64.StdEncoding.DecodeString(req.Data)
		if string(audio) != "pcm" {
			t.Errorf("audio = %q, want pcm", audio)
		}
		_, _ = w.Write([]byte(`{"data":{"status":"success","data":" سلام "}}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv).Transcribe(context.Background(), []byte("pcm"))
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if got != "سلام" {
		t.Errorf("Transcribe() = %q, want سلام", got)
	}
}

func TestTranscribe_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		body      string
		audio     []byte
		wantCalls int32
	}{
		{"empty audio", http.StatusOK, "", nil, 0},
		{"unsuccessful status", http.StatusOK, `{"data":{"status":"failed"}}`, []byte("a"), 1},
		{"malformed json", http.StatusOK, `not json`, []byte("a"), 1},
		{"client error not retried", http.StatusUnauthorized, `denied`, []byte("a"), 1},
		{"server error retried", http.StatusBadGateway, `down`, []byte("a"), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv).Transcribe(context.Background(), tt.audio)
			if !errors.Is(err, ErrTranscription) {
				t.Fatalf("error = %v, want ErrTranscription", err)
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls.Load(), tt.wantCalls)
			}
		})
	}
}

func TestSynthesize(t *testing.T) {
	t.Parallel()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tts":
			var req ttsRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if req.Speaker != "2" || req.Speed != "1" || req.FilePath != "true" {
				t.Errorf("request = %+v", req)
			}
			resp := map[string]any{"data": map[string]any{
				"status": "success",
				"data":   map[string]string{"filePath": srv.URL + "/files/out.mp3"},
			}}
			_ = json.NewEncoder(w).Encode(resp)
		case "/files/out.mp3":
			if r.Header.Get("gateway-token") != "test-token" {
				t.Errorf("download missing token")
			}
			_, _ = w.Write([]byte("mp3-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	audio, err := newTestClient(srv).Synthesize(context.Background(), "سلام", SpeakerFor(negotiation.RoleConservativeInvestor))
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Errorf("audio = %q", audio)
	}
}

func TestSynthesize_NoFilePath(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"status":"success","data":{}}}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv).Synthesize(context.Background(), "x", 3); !errors.Is(err, ErrSynthesis) {
		t.Errorf("error = %v, want ErrSynthesis", err)
	}
}

func TestTranscribe_Cancelled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestClient(srv).Transcribe(ctx, []byte("a")); err == nil {
		t.Error("expected error for cancelled context")
	}
}
