package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/pitchroom/domain/persona"
	"github.com/felixgeelhaar/pitchroom/infrastructure/resilience"
)

// DefaultHistoryWindow is how many past messages a counterpart sees.
const DefaultHistoryWindow = 10

// History is one counterpart's conversation so far.
type History []Message

// With returns a copy of h with msgs appended.
func (h History) With(msgs ...Message) History {
	out := make(History, 0, len(h)+len(msgs))
	out = append(out, h...)
	return append(out, msgs...)
}

// Window returns the last n messages.
func (h History) Window(n int) []Message {
	if n <= 0 || len(h) <= n {
		return h
	}
	return h[len(h)-n:]
}

// GeneratorConfig configures reply generation.
type GeneratorConfig struct {
	Model         string
	Temperature   float64
	MaxTokens     int
	HistoryWindow int
}

// Generator turns a persona and its history into a reply.
type Generator struct {
	provider Provider
	executor *resilience.Executor
	config   GeneratorConfig
}

// NewGenerator creates a generator. A nil executor calls the provider directly.
func NewGenerator(provider Provider, executor *resilience.Executor, config GeneratorConfig) *Generator {
	if config.HistoryWindow <= 0 {
		config.HistoryWindow = DefaultHistoryWindow
	}
	return &Generator{provider: provider, executor: executor, config: config}
}

// Provider returns the underlying provider.
func (g *Generator) Provider() Provider {
	return g.provider
}

// Request assembles the chat request: the persona prompt, the state
// annotation, then the history window. history must already end with
// the new user message.
func (g *Generator) Request(p persona.Persona, annotation string, history History) CompletionRequest {
	msgs := make([]Message, 0, g.config.HistoryWindow+2)
	msgs = append(msgs,
		Message{Role: RoleSystem, Content: p.SystemPrompt},
		Message{Role: RoleSystem, Content: annotation},
	)
	msgs = append(msgs, history.Window(g.config.HistoryWindow)...)

	return CompletionRequest{
		Model:       g.config.Model,
		Messages:    msgs,
		Temperature: g.config.Temperature,
		MaxTokens:   g.config.MaxTokens,
	}
}

// Generate produces the persona's reply.
func (g *Generator) Generate(ctx context.Context, p persona.Persona, annotation string, history History) (string, error) {
	req := g.Request(p, annotation, history)

	call := func(ctx context.Context) (string, error) {
		resp, err := g.provider.Complete(ctx, req)
		if err != nil {
			return "", err
		}
		text := strings.TrimSpace(resp.Message.Content)
		if text == "" {
			return "", ErrEmptyCompletion
		}
		return text, nil
	}

	if g.executor == nil {
		return call(ctx)
	}
	return g.executor.Execute(ctx, call)
}

// FailureReply is the visible placeholder used in place of a reply that
// could not be generated.
func FailureReply(err error) string {
	return fmt.Sprintf("خطا در تولید پاسخ: %v", err)
}
