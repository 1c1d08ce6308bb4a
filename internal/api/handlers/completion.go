package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matiasleandrokruk/llm-server/internal/domain/completion"
	"github.com/matiasleandrokruk/llm-server/internal/infra/llm"
	"github.com/matiasleandrokruk/llm-server/internal/infra/logging"
)

// CompletionProvider is the slice of llm.Provider the completion endpoint needs.
type CompletionProvider interface {
	Completion(ctx context.Context, messages []llm.Message, params *llm.Params) (string, error)
}

// CompletionHandler serves POST /api/completion.
type CompletionHandler struct {
	provider CompletionProvider
	logger   *slog.Logger
}

// NewCompletionHandler creates a new handler.
func NewCompletionHandler(provider CompletionProvider, logger *slog.Logger) *CompletionHandler {
	return &CompletionHandler{provider: provider, logger: logging.Component(logger, "api.completion")}
}

type invalidBodyResponse struct {
	Error   string                  `json:"error"`
	Details []completion.FieldError `json:"details"`
}

type failureResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Complete validates the body, sends the input as one user message and
// returns the provider's text.
func (h *CompletionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("request_id", middleware.GetReqID(r.Context()))
	logger.Info("Received completion request")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("Request body too large", "limit", tooLarge.Limit)
			writeError(w, http.StatusRequestEntityTooLarge, ErrLabelPayloadTooLarge)
			return
		}
		logger.Warn("Failed to read request body", "error", err)
		writeJSON(w, http.StatusBadRequest, invalidBodyResponse{
			Error:   ErrLabelInvalidBody,
			Details: []completion.FieldError{{Field: "(root)", Type: "read_error", Message: "Request body could not be read"}},
		})
		return
	}

	parse := completion.Parse
	if isFormBody(r) {
		parse = completion.ParseForm
	}
	req, verr := parse(body)
	if verr != nil {
		logger.Warn("Invalid request body", "details", verr.Fields)
		writeJSON(w, http.StatusBadRequest, invalidBodyResponse{Error: ErrLabelInvalidBody, Details: verr.Fields})
		return
	}

	text, err := h.provider.Completion(r.Context(), req.Messages(), req.Params)
	if err != nil {
		logger.Error("Error in completion endpoint", "error", err)
		writeJSON(w, http.StatusInternalServerError, failureResponse{Error: ErrLabelInternal, Message: err.Error()})
		return
	}

	logger.Info("Completion request processed successfully")
	writeJSON(w, http.StatusOK, completion.Response{Content: text})
}

// isFormBody reports whether the request declares a URL-encoded form body.
// Everything else is treated as JSON.
func isFormBody(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get(headerContentType))
	return err == nil && mediaType == mimeForm
}
