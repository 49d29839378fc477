package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/lanchanto/pkg/domain/model"
	"github.com/m-mizutani/lanchanto/pkg/domain/types"
)

// newHealthHandler returns a health check handler reporting uptime since startedAt
func newHealthHandler(startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := &model.HealthStatus{
			Status:    "healthy",
			Service:   "lanchanto",
			Version:   types.Version,
			StartedAt: startedAt,
			Uptime:    time.Since(startedAt).Truncate(time.Second).String(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(status); err != nil {
			ctxlog.From(r.Context()).Error("Failed to encode health response", "error", err)
		}
	}
}

// handleHello answers GET /github so the endpoint can be checked from a browser
func handleHello(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("Hello, world!")); err != nil {
		ctxlog.From(r.Context()).Error("Failed to write hello response", "error", err)
	}
}
