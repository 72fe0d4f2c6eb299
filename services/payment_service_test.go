package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/djsmacker01/flavour-api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func newStripeTestService(t *testing.T, handler http.HandlerFunc) *StripePaymentService {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(server.URL),
		HTTPClient:        server.Client(),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return NewStripePaymentService("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
}

func TestStripePaymentService_CreateIntent(t *testing.T) {
	var gotKey, gotAmount, gotOrder string
	svc := newStripeTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		gotKey = r.Header.Get("Idempotency-Key")
		gotAmount = r.PostForm.Get("amount")
		gotOrder = r.PostForm.Get("metadata[order_number]")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_123","object":"payment_intent","client_secret":"pi_123_secret_abc","status":"requires_payment_method","amount":2397,"currency":"gbp"}`))
	})

	intent, err := svc.CreateIntent(context.Background(), CreateIntentParams{
		Amount:         2397,
		Currency:       "gbp",
		Metadata:       map[string]string{"order_number": "ORD-1234ABCD"},
		IdempotencyKey: IdempotencyKey("ORD-1234ABCD", 2397, time.UnixMicro(1700000000000000)),
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	assert.Equal(t, IntentStatusRequiresPaymentMethod, intent.Status)
	assert.Equal(t, int64(2397), intent.Amount)
	assert.Equal(t, "order-ORD-1234ABCD-2397-1700000000000000", gotKey)
	assert.Equal(t, "2397", gotAmount)
	assert.Equal(t, "ORD-1234ABCD", gotOrder)
}

func TestStripePaymentService_GetIntent(t *testing.T) {
	svc := newStripeTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents/pi_123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_123","object":"payment_intent","status":"succeeded","amount":899,"currency":"gbp"}`))
	})

	intent, err := svc.GetIntent(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.Equal(t, IntentStatusSucceeded, intent.Status)
	assert.Equal(t, int64(899), intent.Amount)
}

func TestStripePaymentService_CancelIntent(t *testing.T) {
	svc := newStripeTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents/pi_123/cancel", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_123","object":"payment_intent","status":"canceled","amount":899,"currency":"gbp"}`))
	})

	assert.NoError(t, svc.CancelIntent(context.Background(), "pi_123"))
}

func TestStripePaymentService_CancelSucceededIntentFails(t *testing.T) {
	svc := newStripeTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"payment_intent_unexpected_state","message":"This PaymentIntent could not be canceled because it has a status of succeeded."}}`))
	})

	assert.ErrorIs(t, svc.CancelIntent(context.Background(), "pi_123"), ErrPaymentFailed)
}

func TestIdempotencyKey_ChangesWithCartVersion(t *testing.T) {
	version := time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)

	assert.Equal(t, IdempotencyKey("ORD-1", 899, version), IdempotencyKey("ORD-1", 899, version))
	assert.NotEqual(t, IdempotencyKey("ORD-1", 899, version), IdempotencyKey("ORD-1", 899, version.Add(time.Millisecond)))
	assert.NotEqual(t, IdempotencyKey("ORD-1", 899, version), IdempotencyKey("ORD-1", 1798, version))
}

func TestStripePaymentService_ErrorsAreWrapped(t *testing.T) {
	svc := newStripeTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Amount must be at least 30 pence"}}`))
	})

	_, err := svc.CreateIntent(context.Background(), CreateIntentParams{Amount: 10, Currency: "gbp"})
	assert.ErrorIs(t, err, ErrPaymentFailed)
}

func TestInitPaymentService_DisabledWithoutKey(t *testing.T) {
	original := GetPaymentService()
	defer SetPaymentService(original)

	assert.Nil(t, InitPaymentService(&config.Config{}))
	assert.Nil(t, GetPaymentService())

	assert.NotNil(t, InitPaymentService(&config.Config{StripeSecretKey: "sk_test_123"}))
}

func TestMockPaymentService_IdempotencyKey(t *testing.T) {
	mock := NewMockPaymentService()
	ctx := context.Background()
	params := CreateIntentParams{Amount: 899, Currency: "gbp", IdempotencyKey: "order-ORD-1-899"}

	first, err := mock.CreateIntent(ctx, params)
	require.NoError(t, err)
	second, err := mock.CreateIntent(ctx, params)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, mock.IntentCount())
	assert.Equal(t, 2, mock.CreateCalls())
}

func TestMockPaymentService_CancelIntent(t *testing.T) {
	mock := NewMockPaymentService()
	ctx := context.Background()

	open, err := mock.CreateIntent(ctx, CreateIntentParams{Amount: 899, Currency: "gbp"})
	require.NoError(t, err)
	require.NoError(t, mock.CancelIntent(ctx, open.ID))
	got, err := mock.GetIntent(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, IntentStatusCanceled, got.Status)

	paid, err := mock.CreateIntent(ctx, CreateIntentParams{Amount: 1798, Currency: "gbp"})
	require.NoError(t, err)
	mock.SetStatus(paid.ID, IntentStatusSucceeded)
	assert.ErrorIs(t, mock.CancelIntent(ctx, paid.ID), ErrPaymentFailed)
	assert.Equal(t, 1, mock.CancelCalls())
}
