package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/lanchanto/pkg/domain/model"
)

// LoggingMiddleware returns a middleware that logs HTTP requests and puts a
// request scoped logger into the request context
func LoggingMiddleware(ctx context.Context) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := middleware.GetReqID(r.Context())
			logger := ctxlog.From(ctx).With("request_id", reqID)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("HTTP request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}()

			next.ServeHTTP(ww, r.WithContext(ctxlog.With(r.Context(), logger)))
		})
	}
}

// writeResponse writes {"error": msg}. An empty msg is encoded as null.
func writeResponse(w http.ResponseWriter, r *http.Request, msg string, status int) {
	var resp model.WebhookResponse
	if msg != "" {
		resp.Error = &msg
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode response", "error", err)
	}
}
