package handlers

import (
	"net/http"
	"strconv"

	"tipnplay/internal/middleware"
	"tipnplay/internal/models"
	"tipnplay/internal/services"

	"github.com/go-chi/chi/v5"
)

// EventHandler handles tipping page operations
type EventHandler struct {
	eventService *services.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// Create handles POST /api/events (host only)
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, models.ErrUnauthorized)
		return
	}

	var req models.EventCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	event, err := h.eventService.CreateEvent(userID, &req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, event)
}

// Get handles GET /api/events/{eventID}. The tipping page is public: any
// guest with the link can load it.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.eventService.GetEvent(chi.URLParam(r, "eventID"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, event)
}

// List handles GET /api/events (host only), returning the host's own pages
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, models.ErrUnauthorized)
		return
	}

	events, err := h.eventService.GetHostEvents(userID)
	if err != nil {
		respondError(w, err)
		return
	}
	if events == nil {
		events = []*models.Event{}
	}

	respondJSON(w, http.StatusOK, events)
}

// Tips handles GET /api/events/{eventID}/tips, the public feed of recent
// completed tips. This is the polling fallback for missed realtime messages.
func (h *EventHandler) Tips(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, &models.ValidationError{Field: "limit", Message: "limit must be an integer"})
			return
		}
		limit = parsed
	}

	tips, err := h.eventService.GetEventTips(chi.URLParam(r, "eventID"), limit)
	if err != nil {
		respondError(w, err)
		return
	}
	if tips == nil {
		tips = []*models.Tip{}
	}

	respondJSON(w, http.StatusOK, tips)
}

// Stats handles GET /api/events/{eventID}/stats (owning host only)
func (h *EventHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, models.ErrUnauthorized)
		return
	}

	stats, err := h.eventService.GetEventStats(chi.URLParam(r, "eventID"), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
