package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/djsmacker01/flavour-api/config"
	"github.com/djsmacker01/flavour-api/logger"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Intent statuses the order flow acts on
const (
	IntentStatusSucceeded             = string(stripe.PaymentIntentStatusSucceeded)
	IntentStatusCanceled              = string(stripe.PaymentIntentStatusCanceled)
	IntentStatusProcessing            = string(stripe.PaymentIntentStatusProcessing)
	IntentStatusRequiresPaymentMethod = string(stripe.PaymentIntentStatusRequiresPaymentMethod)
)

const paymentTimeout = 30 * time.Second

// PaymentIntent is the processor's handle for an in-progress charge
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
}

// CreateIntentParams describes a charge in the currency's minor unit
type CreateIntentParams struct {
	Amount         int64
	Currency       string
	Metadata       map[string]string
	IdempotencyKey string
}

// PaymentProcessor defines the operations the checkout flow needs from a
// payment provider
type PaymentProcessor interface {
	CreateIntent(ctx context.Context, params CreateIntentParams) (*PaymentIntent, error)
	GetIntent(ctx context.Context, intentID string) (*PaymentIntent, error)
	CancelIntent(ctx context.Context, intentID string) error
}

// StripePaymentService implements PaymentProcessor with Stripe PaymentIntents
type StripePaymentService struct {
	client *client.API
}

var paymentServiceInstance PaymentProcessor

// InitPaymentService creates the Stripe client when a secret key is
// configured. Without one the service stays nil and checkout reports
// ErrPaymentNotConfigured.
func InitPaymentService(cfg *config.Config) PaymentProcessor {
	if !cfg.PaymentsEnabled() {
		logger.Default().Warn("payments_disabled", "STRIPE_SECRET_KEY not set, checkout is disabled")
		paymentServiceInstance = nil
		return nil
	}

	paymentServiceInstance = NewStripePaymentService(cfg.StripeSecretKey, stripe.NewBackends(&http.Client{Timeout: paymentTimeout}))
	return paymentServiceInstance
}

// NewStripePaymentService creates a Stripe-backed processor using the given backends
func NewStripePaymentService(secretKey string, backends *stripe.Backends) *StripePaymentService {
	return &StripePaymentService{client: client.New(secretKey, backends)}
}

// GetPaymentService returns the initialized payment service, or nil
func GetPaymentService() PaymentProcessor {
	return paymentServiceInstance
}

// SetPaymentService sets the payment service instance (primarily for testing)
func SetPaymentService(service PaymentProcessor) {
	paymentServiceInstance = service
}

// CreateIntent creates a PaymentIntent. Stripe replays the original
// response for a repeated idempotency key.
func (s *StripePaymentService) CreateIntent(ctx context.Context, params CreateIntentParams) (*PaymentIntent, error) {
	p := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(params.Amount),
		Currency: stripe.String(params.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	p.Context = ctx
	for key, value := range params.Metadata {
		p.AddMetadata(key, value)
	}
	if params.IdempotencyKey != "" {
		p.SetIdempotencyKey(params.IdempotencyKey)
	}

	pi, err := s.client.PaymentIntents.New(p)
	if err != nil {
		return nil, fmt.Errorf("%w: create intent: %v", ErrPaymentFailed, err)
	}
	return fromStripe(pi), nil
}

// GetIntent retrieves the current state of a PaymentIntent
func (s *StripePaymentService) GetIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	p := &stripe.PaymentIntentParams{}
	p.Context = ctx

	pi, err := s.client.PaymentIntents.Get(intentID, p)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieve intent %s: %v", ErrPaymentFailed, intentID, err)
	}
	return fromStripe(pi), nil
}

// CancelIntent cancels an intent the customer has not yet paid. Stripe
// refuses to cancel succeeded or processing intents.
func (s *StripePaymentService) CancelIntent(ctx context.Context, intentID string) error {
	p := &stripe.PaymentIntentCancelParams{}
	p.Context = ctx

	if _, err := s.client.PaymentIntents.Cancel(intentID, p); err != nil {
		return fmt.Errorf("%w: cancel intent %s: %v", ErrPaymentFailed, intentID, err)
	}
	return nil
}

func fromStripe(pi *stripe.PaymentIntent) *PaymentIntent {
	return &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}
}

// IdempotencyKey is stable for an unchanged cart, so concurrent checkouts
// share one intent. Every cart change bumps cartVersion, so a cart that
// returns to an earlier total never replays a cancelled intent.
func IdempotencyKey(orderNumber string, amountMinor int64, cartVersion time.Time) string {
	return fmt.Sprintf("order-%s-%d-%d", orderNumber, amountMinor, cartVersion.UnixMicro())
}
