package services

import (
	"context"

	"tipnplay/internal/models"
	"tipnplay/internal/realtime"
	"tipnplay/internal/repositories"
)

// PaymentService defines the interface for payment processor integrations
type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, req *PaymentIntentRequest) (*PaymentIntent, error)
	VerifyWebhookSignature(payload []byte, signatureHeader string) error
	ParseWebhookEvent(payload []byte) (*WebhookEvent, error)
}

// TipRepositoryInterface defines the tip storage operations services depend on
type TipRepositoryInterface interface {
	Create(params repositories.TipCreateParams) (*models.Tip, error)
	GetByPaymentIntentID(paymentIntentID string) (*models.Tip, error)
	SettleStatus(paymentIntentID string, status models.TipStatus) (int64, error)
	GetCompletedByEvent(eventID string, limit int) ([]*models.Tip, error)
	GetEventStats(eventID string) (*models.EventStats, error)
}

// EventRepositoryInterface defines the event storage operations services depend on
type EventRepositoryInterface interface {
	Create(userID string, req *models.EventCreateRequest) (*models.Event, error)
	GetByID(id string) (*models.Event, error)
	GetByUser(userID string) ([]*models.Event, error)
}

// UserRepositoryInterface defines the host storage operations services depend on
type UserRepositoryInterface interface {
	Create(email, passwordHash, displayName string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(id string, req *models.UserUpdateRequest) (*models.User, error)
}

// TipBroadcaster publishes realtime tip notifications on per-event topics
type TipBroadcaster interface {
	Publish(eventID string, msg realtime.TipMessage)
}
