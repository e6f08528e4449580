package models

import (
	"errors"
	"fmt"
)

// Common errors used throughout the application
var (
	ErrEventNotFound      = errors.New("event not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrTipNotFound        = errors.New("tip not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrInvalidInput       = errors.New("invalid input")
)

// ValidationError reports a rejected input field. Never retried by callers.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// UpstreamPaymentError wraps a rejection from the payment processor. The
// processor's human-readable reason is safe to surface to the end user;
// re-submitting automatically could double-charge, so callers must not retry.
type UpstreamPaymentError struct {
	Message    string
	StatusCode int
}

func (e *UpstreamPaymentError) Error() string {
	return fmt.Sprintf("payment processor error: %s", e.Message)
}

// SignatureError indicates a webhook payload whose signature failed
// verification. Handlers must fail closed without mutating state.
type SignatureError struct {
	Reason string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("invalid webhook signature: %s", e.Reason)
}
