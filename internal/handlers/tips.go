package handlers

import (
	"net/http"

	"tipnplay/internal/models"
	"tipnplay/internal/services"
)

// TipHandler handles guest tip operations
type TipHandler struct {
	tipService *services.TipService
}

// NewTipHandler creates a new tip handler
func NewTipHandler(tipService *services.TipService) *TipHandler {
	return &TipHandler{tipService: tipService}
}

// CreateIntent handles POST /api/tips/intent. It validates the tip request,
// creates a payment intent with the processor and returns the client secret
// the guest's browser uses to confirm the charge.
func (h *TipHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req models.TipIntentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	resp, err := h.tipService.CreateTipIntent(r.Context(), &req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
