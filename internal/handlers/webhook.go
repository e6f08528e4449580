package handlers

import (
	"io"
	"log"
	"net/http"

	"tipnplay/internal/services"
)

// maxWebhookBody bounds webhook payload reads
const maxWebhookBody = 1 << 20 // 1 MiB

// WebhookHandler handles payment processor webhook deliveries
type WebhookHandler struct {
	payments   services.PaymentService
	tipService *services.TipService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(payments services.PaymentService, tipService *services.TipService) *WebhookHandler {
	return &WebhookHandler{
		payments:   payments,
		tipService: tipService,
	}
}

// HandleStripe handles POST /api/webhooks/stripe. The raw body is verified
// against the signature header before any parsing. A 2xx acknowledges the
// delivery; any other status makes the processor redeliver, so storage
// failures return 500 while bad signatures return 400 and are never retried
// into success.
func (h *WebhookHandler) HandleStripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		log.Printf("Webhook: failed to read body: %v", err)
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Failed to read request body"})
		return
	}

	if err := h.payments.VerifyWebhookSignature(payload, r.Header.Get("Stripe-Signature")); err != nil {
		log.Printf("Webhook: signature verification failed: %v", err)
		respondError(w, err)
		return
	}

	event, err := h.payments.ParseWebhookEvent(payload)
	if err != nil {
		log.Printf("Webhook: failed to parse event: %v", err)
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Malformed webhook payload"})
		return
	}

	if err := h.tipService.HandleWebhookEvent(r.Context(), event); err != nil {
		log.Printf("Webhook: failed to handle %s event %s: %v", event.Type, event.ID, err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to process webhook event"})
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}
