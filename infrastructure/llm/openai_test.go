package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/felixgeelhaar/pitchroom/infrastructure/resilience"
)

func TestNewOpenAIProvider(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		p := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini"})
		if p.baseURL != "https://api.openai.com/v1" {
			t.Errorf("baseURL = %s", p.baseURL)
		}
		if p.model != "gpt-4o-mini" {
			t.Errorf("model = %s", p.model)
		}
		if p.Name() != "openai" {
			t.Errorf("Name() = %s", p.Name())
		}
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		t.Parallel()

		p := NewOpenAIProvider(OpenAIConfig{BaseURL: "https://api.avalai.ir/v1/"})
		if p.baseURL != "https://api.avalai.ir/v1" {
			t.Errorf("baseURL = %s", p.baseURL)
		}
	})
}

func TestOpenAIProvider_Complete(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Path = %s, want /v1/chat/completions", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("Authorization header not set correctly")
		}

		var req openAIChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("Model = %s, want provider default", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != RoleSystem {
			t.Errorf("Messages = %+v", req.Messages)
		}
		if req.MaxTokens != 300 {
			t.Errorf("MaxTokens = %d, want 300", req.MaxTokens)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"سلام"}}],"usage":{"total_tokens":9}}`))
	}))
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", BaseURL: server.URL + "/v1", Model: "gpt-4o-mini"})
	resp, err := p.Complete(context.Background(), CompletionRequest{
		Messages:  []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "hi"}},
		MaxTokens: 300,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Message.Content != "سلام" || resp.Usage.TotalTokens != 9 {
		t.Errorf("Complete() = %+v", resp)
	}
}

func TestOpenAIProvider_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		status       int
		body         string
		nonRetryable bool
		empty        bool
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"type":"auth","message":"bad key"}}`, true, false},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"type":"rate","message":"slow down"}}`, false, false},
		{"server error", http.StatusBadGateway, `upstream`, false, false},
		{"no choices", http.StatusOK, `{"id":"x","choices":[]}`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: server.URL})
			_, err := p.Complete(context.Background(), CompletionRequest{Messages: []Message{{Role: RoleUser, Content: "x"}}})
			if err == nil {
				t.Fatal("Complete() should fail")
			}
			if got := errors.Is(err, resilience.ErrNonRetryable); got != tt.nonRetryable {
				t.Errorf("non-retryable = %v, want %v (%v)", got, tt.nonRetryable, err)
			}
			if got := errors.Is(err, ErrEmptyCompletion); got != tt.empty {
				t.Errorf("empty = %v, want %v (%v)", got, tt.empty, err)
			}
		})
	}
}

func TestOpenAIProvider_Unreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: url})
	_, err := p.Complete(context.Background(), CompletionRequest{})
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("error = %v, want ErrProviderUnavailable", err)
	}
}

func TestOllamaProvider_Complete(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("Path = %s, want /api/chat", r.URL.Path)
		}
		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Stream {
			t.Error("Stream should be false")
		}
		if req.Options == nil || req.Options.NumPredict != 50 {
			t.Errorf("Options = %+v", req.Options)
		}
		_, _ = w.Write([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":"ok"},"done":true}`))
	}))
	defer server.Close()

	p := NewOllamaProvider(OllamaConfig{BaseURL: server.URL, Model: "llama3.2"})
	resp, err := p.Complete(context.Background(), CompletionRequest{MaxTokens: 50})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Message.Content != "ok" {
		t.Errorf("Content = %q", resp.Message.Content)
	}
}
