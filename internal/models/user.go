package models

import (
	"regexp"
	"strings"
	"time"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User represents an event host (DJ) in the system
type User struct {
	ID              string    `json:"id" db:"id"`
	Email           string    `json:"email" db:"email"`
	PasswordHash    string    `json:"-" db:"password_hash"`
	DisplayName     string    `json:"display_name" db:"display_name"`
	StripeAccountID *string   `json:"stripe_account_id,omitempty" db:"stripe_account_id"`
	NotifyOnTip     bool      `json:"notify_on_tip" db:"notify_on_tip"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// HasConnectedAccount reports whether the host has a linked payout account.
// Without one, tip funds land in the platform account and are settled to the
// host out-of-band.
func (u *User) HasConnectedAccount() bool {
	return u.StripeAccountID != nil && *u.StripeAccountID != ""
}

// UserRegisterRequest represents the data needed to register a host
type UserRegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// Validate validates the registration data
func (r *UserRegisterRequest) Validate() error {
	email := strings.TrimSpace(strings.ToLower(r.Email))
	if email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return &ValidationError{Field: "email", Message: "email is not valid"}
	}
	if len(r.Password) < 8 {
		return &ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	if len(r.DisplayName) > 100 {
		return &ValidationError{Field: "display_name", Message: "display name must be at most 100 characters"}
	}
	return nil
}

// UserLoginRequest represents host login credentials
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdateRequest represents the profile fields a host may change
type UserUpdateRequest struct {
	DisplayName     *string `json:"display_name,omitempty"`
	StripeAccountID *string `json:"stripe_account_id,omitempty"`
	NotifyOnTip     *bool   `json:"notify_on_tip,omitempty"`
}

// Validate validates the profile update
func (r *UserUpdateRequest) Validate() error {
	if r.DisplayName != nil && len(*r.DisplayName) > 100 {
		return &ValidationError{Field: "display_name", Message: "display name must be at most 100 characters"}
	}
	if r.StripeAccountID != nil && len(*r.StripeAccountID) > 255 {
		return &ValidationError{Field: "stripe_account_id", Message: "account reference is too long"}
	}
	return nil
}
