package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"dandiya-ticketing-platform/internal/services"
)

// HealthHandler exposes the degraded-mode status probe
type HealthHandler struct {
	health *services.HealthService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(health *services.HealthService) *HealthHandler {
	return &HealthHandler{health: health}
}

// Health handles GET /api/health. Always 200: a server that can
// answer is up, even when the database behind it is not.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(h.health.Report()); err != nil {
		log.Printf("⚠️ Failed to encode health response: %v", err)
	}
}
