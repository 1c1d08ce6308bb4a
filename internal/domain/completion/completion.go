// Package completion defines the inbound completion contract and its validation.
package completion

import (
	"fmt"
	"strings"

	"github.com/matiasleandrokruk/llm-server/internal/infra/llm"
)

// Request is a validated completion request.
type Request struct {
	Input  string      `json:"input"`
	Params *llm.Params `json:"params,omitempty"`
}

// Messages wraps the input as a one-message chat exchange.
func (r Request) Messages() []llm.Message {
	return []llm.Message{llm.UserMessage(r.Input)}
}

// Response is the body returned on success.
type Response struct {
	Content string `json:"content"`
}

// FieldError describes one violated constraint.
type FieldError struct {
	Field   string `json:"field"`   // dotted path, e.g. "params.temperature"; "(root)" for the document
	Type    string `json:"type"`    // constraint kind, e.g. "required", "number_lte"
	Message string `json:"message"` // human-readable description
}

// ValidationError lists every field constraint a payload violates.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "invalid completion request: " + strings.Join(parts, "; ")
}
