// Package llm defines the provider-agnostic chat-completion abstraction.
// All types here are shared between the provider interface and adapters.
package llm

import (
	"errors"
	"fmt"
)

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	// DefaultTemperature applies when the caller does not set one.
	DefaultTemperature = 0.7
	// MaxOutputTokens caps every completion.
	MaxOutputTokens = 1000
)

// Message represents a single turn in a conversation (role + content).
type Message struct {
	Role    string `json:"role"` // "system" | "user" | "assistant"
	Content string `json:"content"`
}

// UserMessage wraps free text as a single user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Params are optional generation knobs. A nil field means "provider default".
// Providers forward the fields they support natively and drop the rest.
type Params struct {
	Temperature     *float64 `json:"temperature,omitempty"`      // [0, 2]
	TopP            *float64 `json:"top_p,omitempty"`            // [0, 1]
	TopK            *int     `json:"top_k,omitempty"`            // >= 1
	ReasoningEffort *int     `json:"reasoning_effort,omitempty"` // [1, 10]
}

// temperature resolves the effective sampling temperature.
func (p *Params) temperature() float64 {
	if p == nil || p.Temperature == nil {
		return DefaultTemperature
	}
	return *p.Temperature
}

// ErrNoCompletion is returned when the provider answered but produced no text.
var ErrNoCompletion = errors.New("no completion received")

// noCompletion tags ErrNoCompletion with the provider display name.
func noCompletion(provider string) error {
	return fmt.Errorf("%w from %s", ErrNoCompletion, provider)
}

// CompletionError is the single failure kind surfaced by Provider.Completion.
// It covers both transport failures and empty completions; use
// errors.Is(err, ErrNoCompletion) to tell them apart.
type CompletionError struct {
	Provider string // display name, e.g. "OpenAI"
	Err      error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("%s completion failed: %v", e.Provider, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }
