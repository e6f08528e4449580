package handlers

import (
	"net/http"

	"tipnplay/internal/database"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	db *database.DB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health handles GET /health. Readiness includes a database ping so load
// balancers stop routing payments at an instance that lost its store.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unhealthy",
			"database": "unreachable",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
