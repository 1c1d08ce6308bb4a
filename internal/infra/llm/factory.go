package llm

import (
	"fmt"
	"log/slog"

	"github.com/matiasleandrokruk/llm-server/internal/infra/config"
)

// NewProvider builds the adapter selected by cfg.LLMProvider.
func NewProvider(cfg config.Config, logger *slog.Logger) (Provider, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI, "":
		return NewOpenAIProvider(cfg.OpenAI, logger), nil
	case config.ProviderOllama:
		return NewOllamaProvider(cfg.Ollama, logger), nil
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", cfg.LLMProvider)
	}
}
