package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tipnplay/internal/models"
	"tipnplay/internal/realtime"
	"tipnplay/internal/repositories"
	"tipnplay/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

type webhookFixture struct {
	handler     *WebhookHandler
	tipRepo     *memoryTipRepo
	broadcaster *realtime.Broadcaster
	event       *models.Event
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()

	tipRepo := newMemoryTipRepo()
	eventRepo := newMemoryEventRepo()
	userRepo := newMemoryUserRepo()
	broadcaster := realtime.NewBroadcaster()

	host, err := userRepo.Create("dj@test.local", "hash", "DJ Test")
	require.NoError(t, err)
	event, err := eventRepo.Create(host.ID, &models.EventCreateRequest{Name: "Friday Set"})
	require.NoError(t, err)

	stripe := services.NewStripeService(services.StripeConfig{
		SecretKey:     "sk_test_abc",
		WebhookSecret: testWebhookSecret,
	})
	tipService := services.NewTipService(tipRepo, eventRepo, userRepo, stripe, broadcaster, 5.0)

	return &webhookFixture{
		handler:     NewWebhookHandler(stripe, tipService),
		tipRepo:     tipRepo,
		broadcaster: broadcaster,
		event:       event,
	}
}

func (f *webhookFixture) pendingTip(t *testing.T, paymentIntentID string) {
	t.Helper()
	_, err := f.tipRepo.Create(repositories.TipCreateParams{
		EventID:         f.event.ID,
		AmountCents:     1000,
		PaymentIntentID: paymentIntentID,
	})
	require.NoError(t, err)
}

func signPayload(secret string, payload string) string {
	timestamp := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", timestamp, payload)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func (f *webhookFixture) deliver(payload, signature string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(payload))
	if signature != "" {
		r.Header.Set("Stripe-Signature", signature)
	}
	w := httptest.NewRecorder()
	f.handler.HandleStripe(w, r)
	return w
}

func succeededPayload(paymentIntentID string) string {
	return fmt.Sprintf(`{"id":"evt_wh_1","type":"payment_intent.succeeded","data":{"object":{"id":"%s"}}}`, paymentIntentID)
}

func failedPayload(paymentIntentID string) string {
	return fmt.Sprintf(`{"id":"evt_wh_2","type":"payment_intent.payment_failed","data":{"object":{"id":"%s"}}}`, paymentIntentID)
}

func TestWebhookHandler_Succeeded(t *testing.T) {
	f := newWebhookFixture(t)
	f.pendingTip(t, "pi_1")

	ch, cancel := f.broadcaster.Subscribe(f.event.ID)
	defer cancel()

	payload := succeededPayload("pi_1")
	w := f.deliver(payload, signPayload(testWebhookSecret, payload))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received": true}`, w.Body.String())

	tip, err := f.tipRepo.GetByPaymentIntentID("pi_1")
	require.NoError(t, err)
	assert.Equal(t, models.TipCompleted, tip.Status)

	select {
	case msg := <-ch:
		assert.Equal(t, 10.00, msg.Amount)
		assert.Equal(t, "Anonymous", msg.TipperName)
	case <-time.After(time.Second):
		t.Fatal("expected a broadcast for the completed tip")
	}
}

func TestWebhookHandler_ReplayIsIdempotent(t *testing.T) {
	f := newWebhookFixture(t)
	f.pendingTip(t, "pi_1")

	ch, cancel := f.broadcaster.Subscribe(f.event.ID)
	defer cancel()

	payload := succeededPayload("pi_1")
	signature := signPayload(testWebhookSecret, payload)

	// Both deliveries are acknowledged, but only the first settles
	require.Equal(t, http.StatusOK, f.deliver(payload, signature).Code)
	require.Equal(t, http.StatusOK, f.deliver(payload, signature).Code)

	assert.Len(t, ch, 1, "a replay must not broadcast twice")
}

func TestWebhookHandler_LateFailureDoesNotOverrideCompleted(t *testing.T) {
	f := newWebhookFixture(t)
	f.pendingTip(t, "pi_1")

	succeeded := succeededPayload("pi_1")
	require.Equal(t, http.StatusOK, f.deliver(succeeded, signPayload(testWebhookSecret, succeeded)).Code)

	failed := failedPayload("pi_1")
	require.Equal(t, http.StatusOK, f.deliver(failed, signPayload(testWebhookSecret, failed)).Code)

	tip, err := f.tipRepo.GetByPaymentIntentID("pi_1")
	require.NoError(t, err)
	assert.Equal(t, models.TipCompleted, tip.Status)
}

func TestWebhookHandler_Failed(t *testing.T) {
	f := newWebhookFixture(t)
	f.pendingTip(t, "pi_1")

	payload := failedPayload("pi_1")
	w := f.deliver(payload, signPayload(testWebhookSecret, payload))

	require.Equal(t, http.StatusOK, w.Code)

	tip, err := f.tipRepo.GetByPaymentIntentID("pi_1")
	require.NoError(t, err)
	assert.Equal(t, models.TipFailed, tip.Status)
}

func TestWebhookHandler_BadSignature(t *testing.T) {
	f := newWebhookFixture(t)
	f.pendingTip(t, "pi_1")

	payload := succeededPayload("pi_1")

	// Wrong secret
	w := f.deliver(payload, signPayload("whsec_wrong", payload))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing header
	w = f.deliver(payload, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// No settlement happened
	tip, err := f.tipRepo.GetByPaymentIntentID("pi_1")
	require.NoError(t, err)
	assert.Equal(t, models.TipPending, tip.Status)
}

func TestWebhookHandler_TamperedPayload(t *testing.T) {
	f := newWebhookFixture(t)
	f.pendingTip(t, "pi_1")

	signature := signPayload(testWebhookSecret, succeededPayload("pi_other"))
	w := f.deliver(succeededPayload("pi_1"), signature)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookHandler_UnknownEventTypeAcknowledged(t *testing.T) {
	f := newWebhookFixture(t)

	payload := `{"id":"evt_wh_3","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`
	w := f.deliver(payload, signPayload(testWebhookSecret, payload))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookHandler_UnknownIntentAcknowledged(t *testing.T) {
	f := newWebhookFixture(t)

	// An intent this system never created is acknowledged so the
	// processor does not retry it forever
	payload := succeededPayload("pi_never_seen")
	w := f.deliver(payload, signPayload(testWebhookSecret, payload))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookHandler_MalformedPayload(t *testing.T) {
	f := newWebhookFixture(t)

	payload := `not json`
	w := f.deliver(payload, signPayload(testWebhookSecret, payload))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
