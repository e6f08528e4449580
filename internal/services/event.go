package services

import (
	"tipnplay/internal/models"
)

// EventService handles tipping page operations
type EventService struct {
	eventRepo EventRepositoryInterface
	tipRepo   TipRepositoryInterface
}

// NewEventService creates a new event service
func NewEventService(eventRepo EventRepositoryInterface, tipRepo TipRepositoryInterface) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		tipRepo:   tipRepo,
	}
}

// CreateEvent creates a tipping page owned by a host
func (s *EventService) CreateEvent(userID string, req *models.EventCreateRequest) (*models.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.eventRepo.Create(userID, req)
}

// GetEvent retrieves a public tipping page
func (s *EventService) GetEvent(id string) (*models.Event, error) {
	return s.eventRepo.GetByID(id)
}

// GetHostEvents retrieves the events owned by a host
func (s *EventService) GetHostEvents(userID string) ([]*models.Event, error) {
	return s.eventRepo.GetByUser(userID)
}

// GetEventTips retrieves recent completed tips for an event. This is the
// polling fallback for clients that missed realtime messages.
func (s *EventService) GetEventTips(eventID string, limit int) ([]*models.Tip, error) {
	if _, err := s.eventRepo.GetByID(eventID); err != nil {
		return nil, err
	}
	return s.tipRepo.GetCompletedByEvent(eventID, limit)
}

// GetEventStats aggregates completed tips for a host dashboard. Only the
// owning host may read stats; guests only ever see the public tips feed.
func (s *EventService) GetEventStats(eventID, requestingUserID string) (*models.EventStats, error) {
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return nil, err
	}
	if event.UserID != requestingUserID {
		return nil, models.ErrUnauthorized
	}
	return s.tipRepo.GetEventStats(eventID)
}
