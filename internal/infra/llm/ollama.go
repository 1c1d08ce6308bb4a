// Package llm - Ollama HTTP adapter.
// OllamaProvider calls the Ollama REST API.
// Endpoints used:
//   - POST /api/chat  - non-streaming chat completion
//   - GET  /api/tags  - model catalog
package llm

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/matiasleandrokruk/llm-server/internal/infra/config"
	"github.com/matiasleandrokruk/llm-server/internal/infra/logging"
)

// OllamaProvider implements Provider against a running Ollama instance.
type OllamaProvider struct {
	cfg    config.ProviderConfig
	client *jsonTransport
	logger *slog.Logger
}

// NewOllamaProvider creates an OllamaProvider. Every call is bounded by cfg.Timeout.
func NewOllamaProvider(cfg config.ProviderConfig, logger *slog.Logger) *OllamaProvider {
	logger = logging.Component(logger, "llm.ollama")
	logger.Info("Ollama provider initialized", "model", cfg.Model, "base_url", cfg.BaseURL)
	return &OllamaProvider{
		cfg:    cfg,
		client: newJSONTransport("ollama", cfg.BaseURL, cfg.Timeout, nil),
		logger: logger,
	}
}

// ─── internal Ollama JSON types ──────────────────────────────────────────────

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message    Message `json:"message"`
	DoneReason string  `json:"done_reason"`
	Done       bool    `json:"done"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// ─── Provider implementation ────────────────────────────────────────────────

// Completion performs a non-streaming chat via POST /api/chat.
func (p *OllamaProvider) Completion(ctx context.Context, messages []Message, params *Params) (string, error) {
	p.logger.Info("Sending completion request", "messages", len(messages))

	req := ollamaChatRequest{
		Model:    p.cfg.Model,
		Messages: messages,
		Stream:   false,
		Options:  p.buildChatOptions(params),
	}

	guard := timeout.New[*ollamaChatResponse](timeout.Config{DefaultTimeout: p.cfg.Timeout})
	resp, err := guard.Execute(ctx, p.cfg.Timeout, func(ctx context.Context) (*ollamaChatResponse, error) {
		var out ollamaChatResponse
		if err := p.client.do(ctx, http.MethodPost, "/api/chat", req, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		p.logger.Error("Ollama completion failed", "error", err)
		return "", &CompletionError{Provider: "Ollama", Err: err}
	}
	if resp == nil || resp.Message.Content == "" {
		err := noCompletion("Ollama")
		p.logger.Error("Ollama completion failed", "error", err)
		return "", &CompletionError{Provider: "Ollama", Err: err}
	}

	p.logger.Info("Ollama completion received", "preview", preview(resp.Message.Content), "done_reason", resp.DoneReason)
	return resp.Message.Content, nil
}

// buildChatOptions converts Params into the Ollama options map.
// Ollama samples with top_k natively; reasoning_effort has no equivalent.
func (p *OllamaProvider) buildChatOptions(params *Params) map[string]any {
	opts := map[string]any{
		"temperature": params.temperature(),
		"num_predict": MaxOutputTokens,
	}
	if params == nil {
		return opts
	}
	if params.TopP != nil {
		opts["top_p"] = *params.TopP
	}
	if params.TopK != nil {
		opts["top_k"] = *params.TopK
	}
	if params.ReasoningEffort != nil {
		p.logger.Info("reasoning_effort parameter provided but not supported by Ollama", "reasoning_effort", *params.ReasoningEffort)
	}
	return opts
}

// HealthCheck reports whether the client handle exists. No request is sent.
func (p *OllamaProvider) HealthCheck() bool {
	return p != nil && p.client != nil
}

// ListModels calls GET /api/tags. Errors are logged and yield an empty slice.
func (p *OllamaProvider) ListModels(ctx context.Context) []string {
	var tags ollamaTagsResponse
	if err := p.client.do(ctx, http.MethodGet, "/api/tags", nil, &tags); err != nil {
		p.logger.Error("Error fetching models from Ollama", "error", err)
		return []string{}
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names
}
