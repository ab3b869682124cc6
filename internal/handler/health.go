package handler

import (
	"net/http"
	"time"

	"deepmirror/internal/httputil"
)

// HealthHandler reports liveness and the configured model
type HealthHandler struct {
	model   string
	started time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(model string) *HealthHandler {
	return &HealthHandler{model: model, started: time.Now()}
}

// HealthCheck is a simple health check endpoint
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"model":  h.model,
		"time":   time.Now(),
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}
