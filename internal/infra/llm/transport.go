package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	mimeJSON          = "application/json"
	headerContentType = "Content-Type"
	maxErrorBodyBytes = 4 << 10
)

// jsonTransport sends JSON requests to one provider base URL.
type jsonTransport struct {
	name       string // used as error prefix, e.g. "openai"
	baseURL    string
	httpClient *http.Client
	decorate   func(*http.Request)
}

func newJSONTransport(name, baseURL string, timeout time.Duration, decorate func(*http.Request)) *jsonTransport {
	return &jsonTransport{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		decorate:   decorate,
	}
}

// do sends method+path with an optional JSON body and decodes a 2xx JSON reply into out.
func (t *jsonTransport) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: encode request: %w", t.name, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s %s: build request: %w", t.name, path, err)
	}
	if in != nil {
		req.Header.Set(headerContentType, mimeJSON)
	}
	if t.decorate != nil {
		t.decorate(req)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", t.name, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d%s", t.name, path, resp.StatusCode, errorDetail(resp.Body))
	}
	if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
		return fmt.Errorf("%s %s: decode response: %w", t.name, path, decodeErr)
	}
	return nil
}

// errorDetail extracts a provider error message from a failed response body.
// Both OpenAI ({"error":{"message":..}}) and Ollama ({"error":".."}) shapes are understood.
func errorDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) != nil || len(envelope.Error) == 0 {
		return ""
	}
	var nested struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(envelope.Error, &nested) == nil && nested.Message != "" {
		return ": " + nested.Message
	}
	var flat string
	if json.Unmarshal(envelope.Error, &flat) == nil && flat != "" {
		return ": " + flat
	}
	return ""
}

// preview shortens text for log records.
func preview(s string) string {
	const limit = 100
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
