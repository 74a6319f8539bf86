package llm

import (
	"fmt"

	"github.com/felixgeelhaar/pitchroom/domain/config"
)

// NewProvider builds the provider named in the generation config.
func NewProvider(cfg config.GenerationConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout.Duration(),
		}), nil
	case "ollama":
		return NewOllamaProvider(OllamaConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout.Duration(),
		}), nil
	case "copilot":
		return NewCopilotProvider(CopilotConfig{
			Model:   cfg.Model,
			Timeout: cfg.Timeout.Duration(),
			CLIPath: cfg.CLIPath,
			CLIUrl:  cfg.CLIURL,
		}), nil
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", config.ErrInvalidConfig, cfg.Provider)
	}
}
