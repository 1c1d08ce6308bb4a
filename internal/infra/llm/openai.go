// Package llm - OpenAI chat-completions adapter.
// Endpoints used (relative to the configured base URL, e.g. https://api.openai.com/v1):
//   - POST /chat/completions - non-streaming chat completion
//   - GET  /models           - model catalog
package llm

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/google/uuid"

	"github.com/matiasleandrokruk/llm-server/internal/infra/config"
	"github.com/matiasleandrokruk/llm-server/internal/infra/logging"
)

// OpenAIProvider implements Provider against the OpenAI REST API.
type OpenAIProvider struct {
	cfg    config.ProviderConfig
	client *jsonTransport
	logger *slog.Logger
}

// NewOpenAIProvider creates an OpenAIProvider. Every call is bounded by cfg.Timeout.
func NewOpenAIProvider(cfg config.ProviderConfig, logger *slog.Logger) *OpenAIProvider {
	logger = logging.Component(logger, "llm.openai")
	client := newJSONTransport("openai", cfg.BaseURL, cfg.Timeout, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+cfg.APIKey)
		if cfg.ProjectID != "" {
			r.Header.Set("OpenAI-Project", cfg.ProjectID)
		}
		r.Header.Set("X-Client-Request-Id", uuid.NewString())
	})
	logger.Info("OpenAI provider initialized", "model", cfg.Model)
	return &OpenAIProvider{cfg: cfg, client: client, logger: logger}
}

// ─── internal OpenAI JSON types ──────────────────────────────────────────────

type openAIChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature"`
	TopP        *float64  `json:"top_p,omitempty"`
	MaxTokens   int       `json:"max_tokens"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type openAIModelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ─── Provider implementation ────────────────────────────────────────────────

// Completion calls POST /chat/completions with stream disabled.
// top_k and reasoning_effort have no OpenAI equivalent and are dropped.
func (p *OpenAIProvider) Completion(ctx context.Context, messages []Message, params *Params) (string, error) {
	p.logger.Info("Sending completion request", "messages", len(messages))

	req := openAIChatRequest{
		Model:       p.cfg.Model,
		Messages:    messages,
		Stream:      false,
		Temperature: params.temperature(),
		MaxTokens:   MaxOutputTokens,
	}
	if params != nil {
		req.TopP = params.TopP
		if params.TopK != nil {
			p.logger.Info("top_k parameter provided but not supported by OpenAI", "top_k", *params.TopK)
		}
		if params.ReasoningEffort != nil {
			p.logger.Info("reasoning_effort parameter provided but not supported by OpenAI", "reasoning_effort", *params.ReasoningEffort)
		}
	}

	guard := timeout.New[*openAIChatResponse](timeout.Config{DefaultTimeout: p.cfg.Timeout})
	resp, err := guard.Execute(ctx, p.cfg.Timeout, func(ctx context.Context) (*openAIChatResponse, error) {
		var out openAIChatResponse
		if err := p.client.do(ctx, http.MethodPost, "/chat/completions", req, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
	if err != nil {
		p.logger.Error("OpenAI completion failed", "error", err)
		return "", &CompletionError{Provider: "OpenAI", Err: err}
	}

	text := firstChoiceContent(resp)
	if text == "" {
		err := noCompletion("OpenAI")
		p.logger.Error("OpenAI completion failed", "error", err)
		return "", &CompletionError{Provider: "OpenAI", Err: err}
	}

	p.logger.Info("OpenAI completion received", "preview", preview(text))
	return text, nil
}

// firstChoiceContent returns the first choice's text, or "" when absent.
func firstChoiceContent(resp *openAIChatResponse) string {
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil {
		return ""
	}
	return *resp.Choices[0].Message.Content
}

// HealthCheck reports whether the client handle exists. No request is sent.
func (p *OpenAIProvider) HealthCheck() bool {
	return p != nil && p.client != nil
}

// ListModels calls GET /models. Errors are logged and yield an empty slice.
func (p *OpenAIProvider) ListModels(ctx context.Context) []string {
	var list openAIModelList
	if err := p.client.do(ctx, http.MethodGet, "/models", nil, &list); err != nil {
		p.logger.Error("Error fetching models from OpenAI", "error", err)
		return []string{}
	}
	ids := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		ids = append(ids, m.ID)
	}
	return ids
}
