package models

import (
	"math"
	"time"
)

// TipStatus represents the status of a tip
type TipStatus string

const (
	TipPending   TipStatus = "pending"
	TipCompleted TipStatus = "completed"
	TipFailed    TipStatus = "failed"
)

// Tip amount limits in minor currency units (cents)
const (
	MinTipAmountCents = 1       // 0.01 currency units
	MaxTipAmountCents = 1000000 // 10,000 currency units
)

// IsTerminal reports whether the status is a terminal state. Terminal tips
// are never mutated again.
func (s TipStatus) IsTerminal() bool {
	return s == TipCompleted || s == TipFailed
}

// CanTransitionTo reports whether a transition to the target status is
// allowed. Transitions are monotonic and one-way: only pending tips move,
// and only to a terminal status.
func (s TipStatus) CanTransitionTo(target TipStatus) bool {
	return s == TipPending && target.IsTerminal()
}

// Tip represents a single monetary contribution from a guest to an Event
type Tip struct {
	ID              string    `json:"id" db:"id"`
	EventID         string    `json:"event_id" db:"event_id"`
	AmountCents     int       `json:"amount_cents" db:"amount_cents"`
	TipperName      *string   `json:"tipper_name,omitempty" db:"tipper_name"`
	Message         *string   `json:"message,omitempty" db:"message"`
	PaymentIntentID string    `json:"payment_intent_id" db:"payment_intent_id"`
	Status          TipStatus `json:"status" db:"status"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Amount returns the tip amount in decimal currency units
func (t *Tip) Amount() float64 {
	return float64(t.AmountCents) / 100
}

// DisplayName returns the tipper name shown to other guests
func (t *Tip) DisplayName() string {
	if t.TipperName != nil && *t.TipperName != "" {
		return *t.TipperName
	}
	return "Anonymous"
}

// AmountToCents converts a decimal currency amount to minor units
func AmountToCents(amount float64) int {
	return int(math.Round(amount * 100))
}

// TipIntentRequest represents a guest's request to tip an event
type TipIntentRequest struct {
	Amount     float64 `json:"amount"`
	EventID    string  `json:"eventId"`
	TipperName string  `json:"tipperName"`
	Message    string  `json:"message"`
	Currency   string  `json:"currency"`
}

// Validate validates the tip request. Amount bounds are inclusive: 0.01 is
// the floor and 10,000 the ceiling.
func (r *TipIntentRequest) Validate() error {
	cents := AmountToCents(r.Amount)
	if cents < MinTipAmountCents {
		return &ValidationError{Field: "amount", Message: "amount must be at least 0.01"}
	}
	if cents > MaxTipAmountCents {
		return &ValidationError{Field: "amount", Message: "amount must be at most 10000"}
	}
	if r.EventID == "" {
		return &ValidationError{Field: "eventId", Message: "event ID is required"}
	}
	if len(r.TipperName) > 100 {
		return &ValidationError{Field: "tipperName", Message: "tipper name must be at most 100 characters"}
	}
	if len(r.Message) > 500 {
		return &ValidationError{Field: "message", Message: "message must be at most 500 characters"}
	}
	return nil
}

// TipIntentResponse is returned to the tipping client. It carries the
// processor's client-side confirmation secret and nothing more sensitive.
type TipIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// EventStats aggregates completed tips for a host dashboard. Pending and
// failed tips are never counted.
type EventStats struct {
	EventID     string  `json:"event_id"`
	TipCount    int     `json:"tip_count"`
	TotalAmount float64 `json:"total_amount"`
}
