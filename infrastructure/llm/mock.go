package llm

import (
	"context"
	"strings"
	"sync"
)

// ReplyFunc produces a scripted reply for a request.
type ReplyFunc func(req CompletionRequest) (string, error)

// MockProvider returns scripted replies. Replies are chosen by a key
// found in the first system message, so each persona can be scripted
// independently by its name.
type MockProvider struct {
	mu       sync.Mutex
	byPrompt map[string][]ReplyFunc
	fallback ReplyFunc
	requests []CompletionRequest
}

// NewMockProvider creates a mock provider that echoes a fixed
// acknowledgement unless scripted otherwise.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		byPrompt: make(map[string][]ReplyFunc),
		fallback: func(CompletionRequest) (string, error) {
			return "متوجه شدم. لطفاً بیشتر توضیح دهید.", nil
		},
	}
}

// Name returns the provider name.
func (p *MockProvider) Name() string {
	return "mock"
}

// Script queues replies for requests whose system prompt contains key.
// Queued replies are consumed in order; the last one repeats.
func (p *MockProvider) Script(key string, replies ...ReplyFunc) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byPrompt[key] = append(p.byPrompt[key], replies...)
	return p
}

// Fallback sets the reply used when no script matches.
func (p *MockProvider) Fallback(fn ReplyFunc) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fallback = fn
	return p
}

// Text returns a ReplyFunc that always answers text.
func Text(text string) ReplyFunc {
	return func(CompletionRequest) (string, error) { return text, nil }
}

// Fail returns a ReplyFunc that always fails with err.
func Fail(err error) ReplyFunc {
	return func(CompletionRequest) (string, error) { return "", err }
}

// Complete implements the Provider interface.
func (p *MockProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return CompletionResponse{}, err
	}

	p.mu.Lock()
	p.requests = append(p.requests, req)
	fn := p.next(req)
	p.mu.Unlock()

	text, err := fn(req)
	if err != nil {
		return CompletionResponse{}, err
	}
	return CompletionResponse{
		Model:   "mock",
		Message: Message{Role: RoleAssistant, Content: text},
	}, nil
}

func (p *MockProvider) next(req CompletionRequest) ReplyFunc {
	var system string
	if len(req.Messages) > 0 && req.Messages[0].Role == RoleSystem {
		system = req.Messages[0].Content
	}
	for key, queue := range p.byPrompt {
		if key == "" || !strings.Contains(system, key) || len(queue) == 0 {
			continue
		}
		fn := queue[0]
		if len(queue) > 1 {
			p.byPrompt[key] = queue[1:]
		}
		return fn
	}
	return p.fallback
}

// Requests returns every request received so far.
func (p *MockProvider) Requests() []CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]CompletionRequest, len(p.requests))
	copy(out, p.requests)
	return out
}
