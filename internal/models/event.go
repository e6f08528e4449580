package models

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var themeColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Event represents a host-created tipping page guests can tip into
type Event struct {
	ID               string    `json:"id" db:"id"`
	UserID           string    `json:"user_id" db:"user_id"`
	Name             string    `json:"name" db:"name"`
	Description      string    `json:"description" db:"description"`
	ThemeColor       string    `json:"theme_color" db:"theme_color"`
	SuggestedAmounts []int     `json:"suggested_amounts" db:"-"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// EventCreateRequest represents the data needed to create a tipping page
type EventCreateRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	ThemeColor       string `json:"theme_color"`
	SuggestedAmounts []int  `json:"suggested_amounts"`
}

// Validate validates the event data
func (r *EventCreateRequest) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) > 100 {
		return &ValidationError{Field: "name", Message: "name must be at most 100 characters"}
	}
	if len(r.Description) > 2000 {
		return &ValidationError{Field: "description", Message: "description must be at most 2000 characters"}
	}
	if r.ThemeColor != "" && !themeColorRegex.MatchString(r.ThemeColor) {
		return &ValidationError{Field: "theme_color", Message: "theme color must be a hex color like #8B5CF6"}
	}
	if len(r.SuggestedAmounts) > 6 {
		return &ValidationError{Field: "suggested_amounts", Message: "at most 6 suggested amounts"}
	}
	for _, amount := range r.SuggestedAmounts {
		if amount <= 0 || amount > 10000 {
			return &ValidationError{Field: "suggested_amounts", Message: "suggested amounts must be between 1 and 10000"}
		}
	}
	return nil
}

// EncodeSuggestedAmounts serializes suggested amounts for storage
func EncodeSuggestedAmounts(amounts []int) string {
	if len(amounts) == 0 {
		return ""
	}
	parts := make([]string, len(amounts))
	for i, amount := range amounts {
		parts[i] = strconv.Itoa(amount)
	}
	return strings.Join(parts, ",")
}

// DecodeSuggestedAmounts parses the stored comma-separated amount list
func DecodeSuggestedAmounts(encoded string) []int {
	if encoded == "" {
		return nil
	}
	var amounts []int
	for _, part := range strings.Split(encoded, ",") {
		amount, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		amounts = append(amounts, amount)
	}
	return amounts
}
