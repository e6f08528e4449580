package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"tipnplay/internal/models"

	"github.com/google/uuid"
)

// EventRepository handles tipping page data operations
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new tipping page for a host
func (r *EventRepository) Create(userID string, req *models.EventCreateRequest) (*models.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	themeColor := req.ThemeColor
	if themeColor == "" {
		themeColor = "#8B5CF6"
	}
	suggested := req.SuggestedAmounts
	if len(suggested) == 0 {
		suggested = []int{5, 10, 20}
	}

	query := `
		INSERT INTO events (id, user_id, name, description, theme_color, suggested_amounts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, user_id, name, description, theme_color, created_at, updated_at`

	now := time.Now()
	event := &models.Event{}

	err := r.db.QueryRow(
		query,
		uuid.New().String(),
		userID,
		req.Name,
		req.Description,
		themeColor,
		models.EncodeSuggestedAmounts(suggested),
		now,
		now,
	).Scan(
		&event.ID,
		&event.UserID,
		&event.Name,
		&event.Description,
		&event.ThemeColor,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	event.SuggestedAmounts = suggested
	return event, nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(id string) (*models.Event, error) {
	query := `
		SELECT id, user_id, name, description, theme_color, suggested_amounts, created_at, updated_at
		FROM events
		WHERE id = $1`

	event := &models.Event{}
	var encodedAmounts string

	err := r.db.QueryRow(query, id).Scan(
		&event.ID,
		&event.UserID,
		&event.Name,
		&event.Description,
		&event.ThemeColor,
		&encodedAmounts,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	event.SuggestedAmounts = models.DecodeSuggestedAmounts(encodedAmounts)
	return event, nil
}

// GetByUser retrieves all events owned by a host, newest first
func (r *EventRepository) GetByUser(userID string) ([]*models.Event, error) {
	query := `
		SELECT id, user_id, name, description, theme_color, suggested_amounts, created_at, updated_at
		FROM events
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		var encodedAmounts string

		err := rows.Scan(
			&event.ID,
			&event.UserID,
			&event.Name,
			&event.Description,
			&event.ThemeColor,
			&encodedAmounts,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		event.SuggestedAmounts = models.DecodeSuggestedAmounts(encodedAmounts)
		events = append(events, event)
	}

	return events, rows.Err()
}
