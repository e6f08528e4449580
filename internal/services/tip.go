package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"tipnplay/internal/models"
	"tipnplay/internal/realtime"
	"tipnplay/internal/repositories"
)

// TipService orchestrates the tip payment flow: intent creation on the way
// in, webhook-driven settlement and realtime fan-out on the way back.
type TipService struct {
	tipRepo     TipRepositoryInterface
	eventRepo   EventRepositoryInterface
	userRepo    UserRepositoryInterface
	payments    PaymentService
	broadcaster TipBroadcaster
	feePercent  float64
}

// NewTipService creates a new tip service
func NewTipService(tipRepo TipRepositoryInterface, eventRepo EventRepositoryInterface, userRepo UserRepositoryInterface, payments PaymentService, broadcaster TipBroadcaster, feePercent float64) *TipService {
	return &TipService{
		tipRepo:     tipRepo,
		eventRepo:   eventRepo,
		userRepo:    userRepo,
		payments:    payments,
		broadcaster: broadcaster,
		feePercent:  feePercent,
	}
}

// CreateTipIntent validates a tip request, creates a payment intent with the
// processor and persists a pending tip row before returning the client
// confirmation secret. Exactly one tip row and one payment intent per call;
// retries are the caller's responsibility.
func (s *TipService) CreateTipIntent(ctx context.Context, req *models.TipIntentRequest) (*models.TipIntentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(req.EventID)
	if err != nil {
		return nil, err
	}

	host, err := s.userRepo.GetByID(event.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve event host: %w", err)
	}

	amountCents := models.AmountToCents(req.Amount)
	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = "usd"
	}

	tipperName := req.TipperName
	if tipperName == "" {
		tipperName = "Anonymous"
	}

	intentReq := &PaymentIntentRequest{
		AmountCents: amountCents,
		Currency:    currency,
		Metadata: map[string]string{
			"event_id":    event.ID,
			"tipper_name": tipperName,
			"message":     req.Message,
		},
	}

	// A host with a connected payout account gets funds routed directly,
	// net of the platform fee. Without one, the full amount lands in the
	// platform account and is settled to the host out-of-band.
	if host.HasConnectedAccount() {
		intentReq.DestinationAccount = *host.StripeAccountID
		intentReq.ApplicationFeeCents = s.platformFeeCents(amountCents)
	}

	intent, err := s.payments.CreatePaymentIntent(ctx, intentReq)
	if err != nil {
		return nil, err
	}

	params := repositories.TipCreateParams{
		EventID:         event.ID,
		AmountCents:     amountCents,
		PaymentIntentID: intent.ID,
	}
	if req.TipperName != "" {
		params.TipperName = &req.TipperName
	}
	if req.Message != "" {
		params.Message = &req.Message
	}

	if _, err := s.tipRepo.Create(params); err != nil {
		// The intent exists upstream but the pending record does not; the
		// guest must not be handed a secret for an unauditable payment.
		return nil, fmt.Errorf("failed to record pending tip: %w", err)
	}

	return &models.TipIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

// platformFeeCents computes the platform fee rounded to the minor unit
func (s *TipService) platformFeeCents(amountCents int) int {
	return int(math.Round(float64(amountCents) * s.feePercent / 100))
}

// HandleWebhookEvent applies a verified webhook event. Settlement is a
// pending-only status transition, so replays and out-of-order deliveries
// are safe. A returned error means the processor should redeliver.
func (s *TipService) HandleWebhookEvent(ctx context.Context, event *WebhookEvent) error {
	switch event.Type {
	case EventPaymentSucceeded:
		return s.settleSucceeded(event.Data.Object.ID)
	case EventPaymentFailed:
		return s.settleFailed(event.Data.Object.ID)
	default:
		// Unknown event types are accepted and ignored so the processor
		// does not retry them indefinitely.
		log.Printf("Webhook: unhandled event type %s", event.Type)
		return nil
	}
}

func (s *TipService) settleSucceeded(paymentIntentID string) error {
	rows, err := s.tipRepo.SettleStatus(paymentIntentID, models.TipCompleted)
	if err != nil {
		return fmt.Errorf("failed to complete tip for %s: %w", paymentIntentID, err)
	}
	if rows == 0 {
		// Already settled (webhook replay) or an intent this system never
		// created; either way there is nothing to do and no broadcast.
		log.Printf("Webhook: no pending tip for %s, skipping", paymentIntentID)
		return nil
	}

	tip, err := s.tipRepo.GetByPaymentIntentID(paymentIntentID)
	if err != nil {
		// The transition is durable; the broadcast is best-effort and
		// clients reconcile by reloading recent tips.
		log.Printf("Webhook: completed tip for %s but failed to load it for broadcast: %v", paymentIntentID, err)
		return nil
	}

	message := ""
	if tip.Message != nil {
		message = *tip.Message
	}
	s.broadcaster.Publish(tip.EventID, realtime.TipMessage{
		Amount:     tip.Amount(),
		TipperName: tip.DisplayName(),
		Message:    message,
	})

	log.Printf("Tip completed: %s amount=%.2f event=%s", paymentIntentID, tip.Amount(), tip.EventID)
	return nil
}

func (s *TipService) settleFailed(paymentIntentID string) error {
	rows, err := s.tipRepo.SettleStatus(paymentIntentID, models.TipFailed)
	if err != nil {
		return fmt.Errorf("failed to mark tip failed for %s: %w", paymentIntentID, err)
	}
	if rows == 0 {
		// Either already completed (a late failure must not win) or unknown
		log.Printf("Webhook: no pending tip for failed intent %s, skipping", paymentIntentID)
	}
	// Failures are not broadcast; they are not shown to other guests
	return nil
}
