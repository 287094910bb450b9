package api

import (
	"net/http"
	"time"

	"github.com/streakedin/streakedin/internal/api/respond"
)

// HealthHandler reports aggregated dependency health.
type HealthHandler struct {
	isHealthy  func() bool
	components func() map[string]bool
}

// NewHealthHandler binds the service health functions; nil means always healthy.
func NewHealthHandler(isHealthy func() bool, components func() map[string]bool) *HealthHandler {
	if isHealthy == nil {
		isHealthy = func() bool { return true }
	}
	if components == nil {
		components = func() map[string]bool { return nil }
	}
	return &HealthHandler{isHealthy: isHealthy, components: components}
}

// CheckHealth handles GET /api/health
// Always returns 200; body reports healthy/unhealthy. 500 indicates handler failure only.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "unhealthy"
	if h.isHealthy() {
		status = "healthy"
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{
		"status":     status,
		"components": h.components(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}
