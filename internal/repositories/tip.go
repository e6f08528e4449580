package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"tipnplay/internal/models"

	"github.com/google/uuid"
)

// TipRepository handles tip data operations
type TipRepository struct {
	db *sql.DB
}

// NewTipRepository creates a new tip repository
func NewTipRepository(db *sql.DB) *TipRepository {
	return &TipRepository{db: db}
}

// TipCreateParams holds the fields for a new pending tip
type TipCreateParams struct {
	EventID         string
	AmountCents     int
	TipperName      *string
	Message         *string
	PaymentIntentID string
}

// Create inserts a pending tip referencing a freshly created payment intent.
// The row exists before the guest ever confirms payment, so an auditable
// record survives abandoned checkouts.
func (r *TipRepository) Create(params TipCreateParams) (*models.Tip, error) {
	query := `
		INSERT INTO tips (id, event_id, amount_cents, tipper_name, message, payment_intent_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, event_id, amount_cents, tipper_name, message, payment_intent_id, status, created_at, updated_at`

	now := time.Now()
	tip := &models.Tip{}

	err := r.db.QueryRow(
		query,
		uuid.New().String(),
		params.EventID,
		params.AmountCents,
		params.TipperName,
		params.Message,
		params.PaymentIntentID,
		models.TipPending,
		now,
		now,
	).Scan(
		&tip.ID,
		&tip.EventID,
		&tip.AmountCents,
		&tip.TipperName,
		&tip.Message,
		&tip.PaymentIntentID,
		&tip.Status,
		&tip.CreatedAt,
		&tip.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create tip: %w", err)
	}

	return tip, nil
}

// GetByPaymentIntentID retrieves a tip by its payment intent reference
func (r *TipRepository) GetByPaymentIntentID(paymentIntentID string) (*models.Tip, error) {
	query := `
		SELECT id, event_id, amount_cents, tipper_name, message, payment_intent_id, status, created_at, updated_at
		FROM tips
		WHERE payment_intent_id = $1`

	tip := &models.Tip{}
	err := r.db.QueryRow(query, paymentIntentID).Scan(
		&tip.ID,
		&tip.EventID,
		&tip.AmountCents,
		&tip.TipperName,
		&tip.Message,
		&tip.PaymentIntentID,
		&tip.Status,
		&tip.CreatedAt,
		&tip.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrTipNotFound
		}
		return nil, fmt.Errorf("failed to get tip: %w", err)
	}

	return tip, nil
}

// SettleStatus transitions a tip to a terminal status. The update is
// conditioned on the current status being pending, which makes webhook
// replays no-ops and prevents a late failure event from overwriting an
// already-completed tip. Returns the number of rows transitioned (0 or 1).
func (r *TipRepository) SettleStatus(paymentIntentID string, status models.TipStatus) (int64, error) {
	if !models.TipPending.CanTransitionTo(status) {
		return 0, fmt.Errorf("invalid settlement status: %s", status)
	}

	query := `
		UPDATE tips
		SET status = $2, updated_at = $3
		WHERE payment_intent_id = $1 AND status = 'pending'`

	result, err := r.db.Exec(query, paymentIntentID, status, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to settle tip: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read settlement result: %w", err)
	}

	return rows, nil
}

// GetCompletedByEvent retrieves recent completed tips for an event, newest
// first. This is the reconcile path for clients that missed realtime
// messages.
func (r *TipRepository) GetCompletedByEvent(eventID string, limit int) ([]*models.Tip, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, event_id, amount_cents, tipper_name, message, payment_intent_id, status, created_at, updated_at
		FROM tips
		WHERE event_id = $1 AND status = 'completed'
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(query, eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tips: %w", err)
	}
	defer rows.Close()

	var tips []*models.Tip
	for rows.Next() {
		tip := &models.Tip{}
		err := rows.Scan(
			&tip.ID,
			&tip.EventID,
			&tip.AmountCents,
			&tip.TipperName,
			&tip.Message,
			&tip.PaymentIntentID,
			&tip.Status,
			&tip.CreatedAt,
			&tip.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tip: %w", err)
		}
		tips = append(tips, tip)
	}

	return tips, rows.Err()
}

// GetEventStats aggregates completed tips for an event. Pending and failed
// tips are excluded from host-facing totals.
func (r *TipRepository) GetEventStats(eventID string) (*models.EventStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(amount_cents), 0)
		FROM tips
		WHERE event_id = $1 AND status = 'completed'`

	var count int
	var totalCents int64
	if err := r.db.QueryRow(query, eventID).Scan(&count, &totalCents); err != nil {
		return nil, fmt.Errorf("failed to get event stats: %w", err)
	}

	return &models.EventStats{
		EventID:     eventID,
		TipCount:    count,
		TotalAmount: float64(totalCents) / 100,
	}, nil
}
