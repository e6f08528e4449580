package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"tipnplay/internal/realtime"
	"tipnplay/internal/services"

	"github.com/go-chi/chi/v5"
)

// heartbeatInterval keeps idle SSE connections alive through proxies
const heartbeatInterval = 25 * time.Second

// StreamHandler serves realtime tip notifications over server-sent events
type StreamHandler struct {
	broadcaster  *realtime.Broadcaster
	eventService *services.EventService
	heartbeat    time.Duration
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(broadcaster *realtime.Broadcaster, eventService *services.EventService) *StreamHandler {
	return &StreamHandler{
		broadcaster:  broadcaster,
		eventService: eventService,
		heartbeat:    heartbeatInterval,
	}
}

// Stream handles GET /api/events/{eventID}/stream. Each completed tip on
// the event is delivered as a "new_tip" SSE message. Delivery is best-effort;
// clients that miss messages reconcile via the tips feed.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	if _, err := h.eventService.GetEvent(eventID); err != nil {
		respondError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "Streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ch, cancel := h.broadcaster.Subscribe(eventID)
	defer cancel()

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case msg := <-ch:
			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Stream: failed to encode tip message: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: new_tip\ndata: %s\n\n", data)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
