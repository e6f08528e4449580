package handlers

import (
	"context"
	"time"

	"tipnplay/internal/models"
	"tipnplay/internal/repositories"
	"tipnplay/internal/services"

	"github.com/google/uuid"
)

// in-memory repositories and payment stub shared by the handler tests

type memoryTipRepo struct {
	tips map[string]*models.Tip // keyed by payment intent ID
}

func newMemoryTipRepo() *memoryTipRepo {
	return &memoryTipRepo{tips: make(map[string]*models.Tip)}
}

func (m *memoryTipRepo) Create(params repositories.TipCreateParams) (*models.Tip, error) {
	tip := &models.Tip{
		ID:              uuid.New().String(),
		EventID:         params.EventID,
		AmountCents:     params.AmountCents,
		TipperName:      params.TipperName,
		Message:         params.Message,
		PaymentIntentID: params.PaymentIntentID,
		Status:          models.TipPending,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	m.tips[params.PaymentIntentID] = tip
	return tip, nil
}

func (m *memoryTipRepo) GetByPaymentIntentID(paymentIntentID string) (*models.Tip, error) {
	if tip, exists := m.tips[paymentIntentID]; exists {
		return tip, nil
	}
	return nil, models.ErrTipNotFound
}

func (m *memoryTipRepo) SettleStatus(paymentIntentID string, status models.TipStatus) (int64, error) {
	tip, exists := m.tips[paymentIntentID]
	if !exists || !tip.Status.CanTransitionTo(status) {
		return 0, nil
	}
	tip.Status = status
	return 1, nil
}

func (m *memoryTipRepo) GetCompletedByEvent(eventID string, limit int) ([]*models.Tip, error) {
	var tips []*models.Tip
	for _, tip := range m.tips {
		if tip.EventID == eventID && tip.Status == models.TipCompleted {
			tips = append(tips, tip)
		}
	}
	return tips, nil
}

func (m *memoryTipRepo) GetEventStats(eventID string) (*models.EventStats, error) {
	stats := &models.EventStats{EventID: eventID}
	for _, tip := range m.tips {
		if tip.EventID == eventID && tip.Status == models.TipCompleted {
			stats.TipCount++
			stats.TotalAmount += tip.Amount()
		}
	}
	return stats, nil
}

type memoryEventRepo struct {
	events map[string]*models.Event
}

func newMemoryEventRepo() *memoryEventRepo {
	return &memoryEventRepo{events: make(map[string]*models.Event)}
}

func (m *memoryEventRepo) Create(userID string, req *models.EventCreateRequest) (*models.Event, error) {
	event := &models.Event{
		ID:               uuid.New().String(),
		UserID:           userID,
		Name:             req.Name,
		Description:      req.Description,
		ThemeColor:       req.ThemeColor,
		SuggestedAmounts: req.SuggestedAmounts,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	m.events[event.ID] = event
	return event, nil
}

func (m *memoryEventRepo) GetByID(id string) (*models.Event, error) {
	if event, exists := m.events[id]; exists {
		return event, nil
	}
	return nil, models.ErrEventNotFound
}

func (m *memoryEventRepo) GetByUser(userID string) ([]*models.Event, error) {
	var events []*models.Event
	for _, event := range m.events {
		if event.UserID == userID {
			events = append(events, event)
		}
	}
	return events, nil
}

type memoryUserRepo struct {
	users map[string]*models.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*models.User)}
}

func (m *memoryUserRepo) Create(email, passwordHash, displayName string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return nil, models.ErrDuplicateEmail
		}
	}
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		NotifyOnTip:  true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryUserRepo) GetByID(id string) (*models.User, error) {
	if user, exists := m.users[id]; exists {
		return user, nil
	}
	return nil, models.ErrUserNotFound
}

func (m *memoryUserRepo) GetByEmail(email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (m *memoryUserRepo) Update(id string, req *models.UserUpdateRequest) (*models.User, error) {
	user, err := m.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.StripeAccountID != nil {
		user.StripeAccountID = req.StripeAccountID
	}
	if req.NotifyOnTip != nil {
		user.NotifyOnTip = *req.NotifyOnTip
	}
	return user, nil
}

type stubPaymentService struct {
	intent    *services.PaymentIntent
	createErr error
}

func newStubPaymentService() *stubPaymentService {
	return &stubPaymentService{
		intent: &services.PaymentIntent{
			ID:           "pi_test_123",
			ClientSecret: "pi_test_123_secret_abc",
			Status:       "requires_payment_method",
		},
	}
}

func (s *stubPaymentService) CreatePaymentIntent(ctx context.Context, req *services.PaymentIntentRequest) (*services.PaymentIntent, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.intent, nil
}

func (s *stubPaymentService) VerifyWebhookSignature(payload []byte, signatureHeader string) error {
	return nil
}

func (s *stubPaymentService) ParseWebhookEvent(payload []byte) (*services.WebhookEvent, error) {
	var event services.WebhookEvent
	event.Type = "unknown"
	return &event, nil
}
