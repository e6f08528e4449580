package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"tipnplay/internal/models"
)

// errorResponse is the JSON error envelope for every API error
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// respondJSON writes a JSON response with the given status
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("Failed to encode response: %v", err)
		}
	}
}

// respondError maps a service error onto an HTTP status and JSON envelope.
// Upstream processor messages pass through so guests see actionable card
// errors; everything unrecognized collapses to a generic 500.
func respondError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Error: validationErr.Message,
			Field: validationErr.Field,
		})
		return
	}

	var sigErr *models.SignatureError
	if errors.As(err, &sigErr) {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid webhook signature"})
		return
	}

	var upstreamErr *models.UpstreamPaymentError
	if errors.As(err, &upstreamErr) {
		respondJSON(w, http.StatusBadGateway, errorResponse{Error: upstreamErr.Message})
		return
	}

	switch {
	case errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrTipNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrDuplicateEmail):
		respondJSON(w, http.StatusConflict, errorResponse{Error: "An account with this email already exists"})
	case errors.Is(err, models.ErrInvalidCredentials):
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid email or password"})
	case errors.Is(err, models.ErrUnauthorized):
		respondJSON(w, http.StatusForbidden, errorResponse{Error: "You do not have access to this resource"})
	case errors.Is(err, models.ErrInvalidInput):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		log.Printf("Internal error: %v", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}

// decodeJSON decodes a JSON request body
func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		return &models.ValidationError{Field: "body", Message: "Invalid JSON request body"}
	}
	return nil
}
