package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	copilot "github.com/github/copilot-sdk/go"
)

// CopilotProvider implements the Provider interface using the GitHub Copilot SDK.
type CopilotProvider struct {
	client  *copilot.Client
	config  CopilotConfig
	mu      sync.Mutex
	started bool
}

// CopilotConfig configures the Copilot provider.
type CopilotConfig struct {
	// Model specifies the Copilot model to use (e.g., "gpt-4.1").
	Model string

	// Timeout bounds one completion (default: 120s).
	Timeout time.Duration

	// CLIPath is the location of the CLI executable.
	CLIPath string

	// CLIUrl is the URL of an existing Copilot CLI server.
	CLIUrl string

	// LogLevel sets logging verbosity (default: "error").
	LogLevel string
}

// NewCopilotProvider creates a new Copilot provider. The CLI process is
// started lazily on the first completion.
func NewCopilotProvider(config CopilotConfig) *CopilotProvider {
	if config.Model == "" {
		config.Model = "gpt-4.1"
	}
	if config.Timeout == 0 {
		config.Timeout = 120 * time.Second
	}
	if config.LogLevel == "" {
		config.LogLevel = "error"
	}

	clientOpts := &copilot.ClientOptions{
		LogLevel: config.LogLevel,
	}
	if config.CLIPath != "" {
		clientOpts.CLIPath = config.CLIPath
	}
	if config.CLIUrl != "" {
		clientOpts.CLIUrl = config.CLIUrl
	}

	return &CopilotProvider{
		client: copilot.NewClient(clientOpts),
		config: config,
	}
}

// Name returns the provider name.
func (p *CopilotProvider) Name() string {
	return "copilot"
}

func (p *CopilotProvider) ensureStarted() error {
	if p.started {
		return nil
	}
	if err := p.client.Start(); err != nil {
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	p.started = true
	return nil
}

// Stop shuts down the Copilot client.
func (p *CopilotProvider) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return nil
	}
	p.started = false
	return errors.Join(p.client.Stop()...)
}

// Complete sends the conversation as a single prompt in a fresh Copilot
// session and waits for the session to go idle.
func (p *CopilotProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureStarted(); err != nil {
		return CompletionResponse{}, err
	}

	prompt, err := buildPrompt(req.Messages)
	if err != nil {
		return CompletionResponse{}, err
	}

	model := req.Model
	if model == "" {
		model = p.config.Model
	}

	session, err := p.client.CreateSession(&copilot.SessionConfig{Model: model})
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("failed to create session: %w", err)
	}
	defer func() { _ = session.Destroy() }()

	var (
		content     string
		responseErr error
		once        sync.Once
	)
	done := make(chan struct{})
	finish := func() { once.Do(func() { close(done) }) }

	unsubscribe := session.On(func(event copilot.SessionEvent) {
		switch event.Type {
		case copilot.AssistantMessage:
			if event.Data.Content != nil {
				content = *event.Data.Content
			}
		case copilot.SessionIdle:
			finish()
		case copilot.SessionError:
			if event.Data.Message != nil {
				responseErr = errors.New(*event.Data.Message)
			} else {
				responseErr = errors.New("unknown session error")
			}
			finish()
		}
	})
	defer unsubscribe()

	if _, err := session.Send(copilot.MessageOptions{Prompt: prompt}); err != nil {
		return CompletionResponse{}, fmt.Errorf("failed to send message: %w", err)
	}

	select {
	case <-done:
		if responseErr != nil {
			return CompletionResponse{}, responseErr
		}
	case <-time.After(p.config.Timeout):
		return CompletionResponse{}, errors.New("request timed out")
	case <-ctx.Done():
		_ = session.Abort()
		return CompletionResponse{}, ctx.Err()
	}

	if strings.TrimSpace(content) == "" {
		return CompletionResponse{}, ErrEmptyCompletion
	}
	return CompletionResponse{
		Model:   model,
		Message: Message{Role: RoleAssistant, Content: content},
	}, nil
}

// buildPrompt flattens chat messages into the SDK's single prompt string.
// System messages lead, in order.
func buildPrompt(messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("no messages provided")
	}

	var system, convo strings.Builder
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			system.WriteString("System: " + msg.Content + "\n\n")
		case RoleUser:
			convo.WriteString("User: " + msg.Content + "\n\n")
		case RoleAssistant:
			convo.WriteString("Assistant: " + msg.Content + "\n\n")
		}
	}
	return system.String() + convo.String(), nil
}
