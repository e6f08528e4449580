package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tipnplay/internal/models"
)

// Stripe webhook event types this system reacts to
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

const (
	stripeAPIVersion = "2023-10-16"

	// Webhook timestamps older than this are rejected to limit replay of
	// captured payloads.
	signatureTolerance = 5 * time.Minute
)

// StripeConfig represents Stripe payment service configuration
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	APIBaseURL    string
}

// StripeService handles payments via the Stripe API
type StripeService struct {
	config  StripeConfig
	client  *http.Client
	baseURL string
	now     func() time.Time
}

// NewStripeService creates a new Stripe payment service
func NewStripeService(config StripeConfig) *StripeService {
	baseURL := config.APIBaseURL
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}

	return &StripeService{
		config:  config,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		now:     time.Now,
	}
}

// PaymentIntentRequest represents a payment intent creation request
type PaymentIntentRequest struct {
	AmountCents         int
	Currency            string
	Metadata            map[string]string
	ApplicationFeeCents int    // platform fee in minor units, 0 for none
	DestinationAccount  string // connected account for direct routing, empty for platform
}

// PaymentIntent contains the created payment intent data
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	AmountCents  int    `json:"amount"`
	Currency     string `json:"currency"`
}

// stripeErrorResponse represents an error envelope from Stripe
type stripeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// WebhookEvent represents a parsed Stripe webhook event
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object PaymentIntentObject `json:"object"`
	} `json:"data"`
}

// PaymentIntentObject is the payment intent carried inside a webhook event
type PaymentIntentObject struct {
	ID               string            `json:"id"`
	AmountCents      int               `json:"amount"`
	Metadata         map[string]string `json:"metadata"`
	LastPaymentError *struct {
		Message string `json:"message"`
	} `json:"last_payment_error"`
}

// CreatePaymentIntent creates a payment intent with Stripe. When a
// destination account is set, funds are routed there net of the
// application fee; otherwise the full amount lands in the platform account.
func (s *StripeService) CreatePaymentIntent(ctx context.Context, req *PaymentIntentRequest) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.Itoa(req.AmountCents))
	form.Set("currency", strings.ToLower(req.Currency))
	for key, value := range req.Metadata {
		form.Set("metadata["+key+"]", value)
	}
	if req.DestinationAccount != "" {
		form.Set("application_fee_amount", strconv.Itoa(req.ApplicationFeeCents))
		form.Set("transfer_data[destination]", req.DestinationAccount)
		form.Set("on_behalf_of", req.DestinationAccount)
	}

	intentURL := s.baseURL + "/v1/payment_intents"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, intentURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+s.config.SecretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Stripe-Version", stripeAPIVersion)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send payment intent request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read payment intent response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, s.handleAPIError(resp.StatusCode, bodyBytes)
	}

	var intent PaymentIntent
	if err := json.Unmarshal(bodyBytes, &intent); err != nil {
		return nil, fmt.Errorf("failed to decode payment intent response: %w", err)
	}

	if intent.ID == "" || intent.ClientSecret == "" {
		return nil, fmt.Errorf("payment intent response missing id or client secret")
	}

	return &intent, nil
}

// handleAPIError maps a Stripe error envelope onto an UpstreamPaymentError
// carrying the processor's human-readable reason.
func (s *StripeService) handleAPIError(statusCode int, body []byte) error {
	var stripeErr stripeErrorResponse
	if err := json.Unmarshal(body, &stripeErr); err != nil || stripeErr.Error.Message == "" {
		return &models.UpstreamPaymentError{
			Message:    fmt.Sprintf("unexpected response (status %d)", statusCode),
			StatusCode: statusCode,
		}
	}

	return &models.UpstreamPaymentError{
		Message:    stripeErr.Error.Message,
		StatusCode: statusCode,
	}
}

// VerifyWebhookSignature verifies a Stripe-Signature header against the
// webhook signing secret. The header carries a timestamp and one or more
// v1 signatures: HMAC-SHA256 over "<timestamp>.<payload>". Verification
// fails closed on any malformed input.
func (s *StripeService) VerifyWebhookSignature(payload []byte, signatureHeader string) error {
	if signatureHeader == "" {
		return &models.SignatureError{Reason: "missing signature header"}
	}

	var timestamp string
	var signatures []string
	for _, pair := range strings.Split(signatureHeader, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		switch parts[0] {
		case "t":
			timestamp = parts[1]
		case "v1":
			signatures = append(signatures, parts[1])
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return &models.SignatureError{Reason: "malformed signature header"}
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return &models.SignatureError{Reason: "invalid timestamp"}
	}
	if math.Abs(s.now().Sub(time.Unix(ts, 0)).Seconds()) > signatureTolerance.Seconds() {
		return &models.SignatureError{Reason: "timestamp outside tolerance"}
	}

	mac := hmac.New(sha256.New, []byte(s.config.WebhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, signature := range signatures {
		provided, err := hex.DecodeString(signature)
		if err != nil {
			continue
		}
		if hmac.Equal(expected, provided) {
			return nil
		}
	}

	return &models.SignatureError{Reason: "no matching signature"}
}

// ParseWebhookEvent decodes a verified webhook payload
func (s *StripeService) ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to decode webhook event: %w", err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("webhook event missing type")
	}
	return &event, nil
}
