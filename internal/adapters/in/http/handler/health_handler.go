package handler

import (
	"net/http"
	"time"
)

// HealthHandler serves GET /health.
type HealthHandler struct {
	startedAt time.Time
}

func NewHealthHandler() http.Handler {
	return &HealthHandler{startedAt: time.Now()}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Seconds(),
	})
}
