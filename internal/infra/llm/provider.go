// Package llm - Provider interface.
// Adapters (OpenAI, Ollama) implement this interface so the HTTP layer is
// never coupled to a specific LLM vendor. The adapter is chosen once at
// startup by NewProvider.
package llm

import "context"

// Provider is the model-agnostic interface for chat completions.
type Provider interface {
	// Completion performs a non-streaming chat completion and returns the
	// text of the first choice. Failures are *CompletionError.
	Completion(ctx context.Context, messages []Message, params *Params) (string, error)

	// HealthCheck reports whether the client handle was constructed.
	// It does not contact the provider.
	HealthCheck() bool

	// ListModels returns the provider's model identifiers, or an empty
	// slice when the catalog cannot be fetched.
	ListModels(ctx context.Context) []string
}
