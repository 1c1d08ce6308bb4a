package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/matiasleandrokruk/llm-server/internal/infra/logging"
)

const maskedErrorMessage = "Something went wrong"

// Recoverer converts a panic anywhere below it into a 500 JSON response.
// The panic value is only exposed to the caller when exposeDetails is true
// (development); it is always logged with the stack.
func Recoverer(logger *slog.Logger, exposeDetails bool) func(http.Handler) http.Handler {
	logger = logging.Component(logger, "http.recover")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity, as net/http does
					panic(rec)
				}

				logger.Error("Unhandled error",
					"request_id", chimw.GetReqID(r.Context()),
					"panic", fmt.Sprint(rec),
					"stack", string(debug.Stack()),
				)

				message := maskedErrorMessage
				if exposeDetails {
					message = fmt.Sprint(rec)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":   "Internal server error",
					"message": message,
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
