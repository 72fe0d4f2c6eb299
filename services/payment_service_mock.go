package services

import (
	"context"
	"fmt"
	"sync"
)

// MockPaymentService is an in-memory PaymentProcessor for testing. Like
// Stripe, it returns the same intent for a repeated idempotency key.
type MockPaymentService struct {
	intents      map[string]*PaymentIntent
	byKey        map[string]string
	createCalls  int
	cancelCalls  int
	failNextWith error
	mu           sync.Mutex
}

// NewMockPaymentService creates a new mock payment service
func NewMockPaymentService() *MockPaymentService {
	return &MockPaymentService{
		intents: make(map[string]*PaymentIntent),
		byKey:   make(map[string]string),
	}
}

// SetAsMockForTesting sets this mock as the global payment service instance for testing
func (m *MockPaymentService) SetAsMockForTesting() {
	SetPaymentService(m)
}

// CreateIntent records a new intent in requires_payment_method state
func (m *MockPaymentService) CreateIntent(ctx context.Context, params CreateIntentParams) (*PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createCalls++
	if err := m.takeFailure(); err != nil {
		return nil, err
	}

	if id, ok := m.byKey[params.IdempotencyKey]; ok && params.IdempotencyKey != "" {
		intent := *m.intents[id]
		return &intent, nil
	}

	id := fmt.Sprintf("pi_mock_%d", len(m.intents)+1)
	intent := &PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret_mock",
		Status:       IntentStatusRequiresPaymentMethod,
		Amount:       params.Amount,
		Currency:     params.Currency,
	}
	m.intents[id] = intent
	if params.IdempotencyKey != "" {
		m.byKey[params.IdempotencyKey] = id
	}

	out := *intent
	return &out, nil
}

// GetIntent returns the recorded intent
func (m *MockPaymentService) GetIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(); err != nil {
		return nil, err
	}

	intent, ok := m.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("%w: no such payment intent: %s", ErrPaymentFailed, intentID)
	}
	out := *intent
	return &out, nil
}

// CancelIntent cancels an unpaid intent and, like Stripe, refuses once the
// payment has succeeded or is processing
func (m *MockPaymentService) CancelIntent(ctx context.Context, intentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(); err != nil {
		return err
	}

	intent, ok := m.intents[intentID]
	if !ok {
		return fmt.Errorf("%w: no such payment intent: %s", ErrPaymentFailed, intentID)
	}
	if intent.Status == IntentStatusSucceeded || intent.Status == IntentStatusProcessing {
		return fmt.Errorf("%w: cannot cancel intent %s in status %s", ErrPaymentFailed, intentID, intent.Status)
	}
	intent.Status = IntentStatusCanceled
	m.cancelCalls++
	return nil
}

// SetStatus simulates the customer completing (or abandoning) payment
func (m *MockPaymentService) SetStatus(intentID, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if intent, ok := m.intents[intentID]; ok {
		intent.Status = status
	}
}

// FailNext makes the next call return err, simulating an unreachable processor
func (m *MockPaymentService) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNextWith = err
}

// CreateCalls returns how many times CreateIntent was called
func (m *MockPaymentService) CreateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}

// CancelCalls returns how many intents were cancelled
func (m *MockPaymentService) CancelCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelCalls
}

// IntentCount returns the number of distinct intents created
func (m *MockPaymentService) IntentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.intents)
}

func (m *MockPaymentService) takeFailure() error {
	err := m.failNextWith
	m.failNextWith = nil
	return err
}
