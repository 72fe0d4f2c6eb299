package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/djsmacker01/flavour-api/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventOrderPaid                = "order.paid"
	EventOrderStatusChanged       = "order.status_changed"
	EventReservationStatusChanged = "reservation.status_changed"

	// EventsExchange is the topic exchange order and reservation events go to
	EventsExchange = "flavour.events"
)

// Event is the message published when an order or reservation changes state
type Event struct {
	Type          string    `json:"type"`
	OrderNumber   string    `json:"order_number,omitempty"`
	ReservationID uint      `json:"reservation_id,omitempty"`
	UserID        uint      `json:"user_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status,omitempty"`
	TotalAmount   string    `json:"total_amount,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventPublisher delivers domain events to interested consumers (kitchen
// display, notifications)
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

var eventPublisherInstance EventPublisher = NoopPublisher{}

// InitEventPublisher connects to RabbitMQ when url is set and falls back
// to a publisher that drops events otherwise
func InitEventPublisher(url string) (EventPublisher, error) {
	if url == "" {
		eventPublisherInstance = NoopPublisher{}
		return eventPublisherInstance, nil
	}

	publisher, err := NewRabbitMQPublisher(url)
	if err != nil {
		return nil, err
	}
	eventPublisherInstance = publisher
	return publisher, nil
}

// GetEventPublisher returns the initialized event publisher
func GetEventPublisher() EventPublisher {
	return eventPublisherInstance
}

// SetEventPublisher sets the event publisher instance (primarily for testing)
func SetEventPublisher(publisher EventPublisher) {
	eventPublisherInstance = publisher
}

// RabbitMQPublisher publishes events as persistent JSON messages, routed
// by event type
type RabbitMQPublisher struct {
	url     string
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
}

// NewRabbitMQPublisher dials the broker and declares the events exchange
func NewRabbitMQPublisher(url string) (*RabbitMQPublisher, error) {
	p := &RabbitMQPublisher{url: url}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *RabbitMQPublisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		EventsExchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange %s: %w", EventsExchange, err)
	}

	p.conn = conn
	p.channel = channel
	return nil
}

// Publish sends the event, reconnecting once if the connection has dropped
func (p *RabbitMQPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		if err := p.connect(); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		EventsExchange, // exchange
		event.Type,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	logger.Default().Info("event_published", "Published event", "type", event.Type, "size", len(body))
	return nil
}

// Close closes the channel and the connection
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn.Close()
	}
	return nil
}

// NoopPublisher drops every event
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event Event) error { return nil }
func (NoopPublisher) Close() error                                   { return nil }

// publishEvent never fails the caller: the state change has already been
// committed, so a broker outage is only logged
func publishEvent(ctx context.Context, publisher EventPublisher, event Event) {
	if publisher == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Default().Error("event_publish_failed", "Failed to publish event", err, "type", event.Type)
	}
}
