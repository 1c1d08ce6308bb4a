package llm

import (
	"testing"
	"time"

	"github.com/matiasleandrokruk/llm-server/internal/infra/config"
	"github.com/matiasleandrokruk/llm-server/internal/infra/logging"
)

func TestNewProvider_SelectsAdapter(t *testing.T) {
	t.Parallel()

	base := config.Config{
		OpenAI: config.ProviderConfig{APIKey: "k", ProjectID: "p", Model: "gpt-3.5-turbo", BaseURL: "https://api.openai.com/v1", Timeout: time.Minute},
		Ollama: config.ProviderConfig{Model: "llama3.2:3b", BaseURL: "http://localhost:11434", Timeout: time.Minute},
	}

	cases := []struct {
		name     string
		provider string
		check    func(Provider) bool
	}{
		{"default is openai", "", func(p Provider) bool { _, ok := p.(*OpenAIProvider); return ok }},
		{"openai", config.ProviderOpenAI, func(p Provider) bool { _, ok := p.(*OpenAIProvider); return ok }},
		{"ollama", config.ProviderOllama, func(p Provider) bool { _, ok := p.(*OllamaProvider); return ok }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			cfg.LLMProvider = tc.provider
			p, err := NewProvider(cfg, logging.Discard())
			if err != nil {
				t.Fatalf("NewProvider failed: %v", err)
			}
			if !tc.check(p) {
				t.Errorf("unexpected adapter %T", p)
			}
			if !p.HealthCheck() {
				t.Error("expected HealthCheck() true right after construction")
			}
		})
	}
}

func TestNewProvider_Unknown_ReturnsError(t *testing.T) {
	t.Parallel()

	_, err := NewProvider(config.Config{LLMProvider: "anthropic"}, logging.Discard())
	if err == nil {
		t.Error("expected error for unsupported provider, got nil")
	}
}
