package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/pitchroom/domain/notification"
)

func fastSender(retries int) *Sender {
	return NewSender(SenderConfig{
		MaxRetries:              retries,
		RetryDelay:              time.Millisecond,
		CircuitBreakerThreshold: 3,
		CircuitBreakerTimeout:   time.Minute,
	})
}

func testEvent(t *testing.T, typ notification.EventType) *notification.Event {
	t.Helper()

	e, err := notification.NewEvent(typ, "s-1", time.Now(), map[string]string{"k": "v"})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestSender_Send(t *testing.T) {
	t.Parallel()

	var got []*notification.Event
	var header http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	s := fastSender(1)
	at := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return at }

	ep := &notification.Endpoint{URL: srv.URL, Secret: "secret", Headers: map[string]string{"X-Team": "growth"}}
	if err := s.Send(context.Background(), ep, []*notification.Event{testEvent(t, notification.EventDealClosed)}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(got) != 1 || got[0].Type != notification.EventDealClosed {
		t.Errorf("received = %+v", got)
	}
	if header.Get("X-Team") != "growth" {
		t.Errorf("custom header missing")
	}
	if header.Get(HeaderTimestamp) != strconv.FormatInt(at.Unix(), 10) || header.Get(HeaderSignature) == "" {
		t.Errorf("signature headers = %v", header)
	}
}

func TestSender_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		wantCalls int32
		wantErr   error
	}{
		{"rejected is final", http.StatusBadRequest, 1, notification.ErrEndpointRejected},
		{"server error retried", http.StatusBadGateway, 3, notification.ErrEndpointUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := fastSender(3).Send(context.Background(), &notification.Endpoint{URL: srv.URL},
				[]*notification.Event{testEvent(t, notification.EventSessionStarted)})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Send() error = %v, want %v", err, tt.wantErr)
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls.Load(), tt.wantCalls)
			}
		})
	}
}

func TestSender_InvalidEndpoint(t *testing.T) {
	t.Parallel()

	err := fastSender(1).Send(context.Background(), &notification.Endpoint{}, nil)
	if !errors.Is(err, notification.ErrInvalidEndpoint) {
		t.Errorf("Send() error = %v, want ErrInvalidEndpoint", err)
	}
}

func TestSender_CircuitBreaker(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := fastSender(1)
	ep := &notification.Endpoint{URL: srv.URL}
	events := []*notification.Event{testEvent(t, notification.EventSessionStarted)}

	if state := s.BreakerState(srv.URL); state != "unknown" {
		t.Errorf("BreakerState() before use = %q", state)
	}
	for range 3 {
		_ = s.Send(context.Background(), ep, events)
	}
	if err := s.Send(context.Background(), ep, events); err == nil {
		t.Fatal("Send() with open breaker should fail")
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}
