package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bookcatalogue/catalogue/internal/management/db"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	exchangeName = "catalogue.events"
	exchangeType = "topic"

	// Event types
	EventTypeBookCreated = "book.created"
	EventTypeBookUpdated = "book.updated"
	EventTypeBookDeleted = "book.deleted"
)

// Publisher emits catalogue change events. Publishing is best-effort: a
// failed publish is logged by callers but never fails the originating
// request.
type Publisher interface {
	PublishBookCreated(ctx context.Context, book *db.Book) error
	PublishBookUpdated(ctx context.Context, book *db.Book) error
	PublishBookDeleted(ctx context.Context, isbn string) error
	Close() error
}

// Event is the envelope for every published catalogue event.
type Event struct {
	EventID   string                 `json:"event_id"`
	EventType string                 `json:"event_type"`
	Timestamp string                 `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
}

// amqpPublisher publishes events to a RabbitMQ topic exchange.
type amqpPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *zap.Logger
}

// NewPublisher connects to RabbitMQ and declares the catalogue exchange.
func NewPublisher(url string, log *zap.Logger) (Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		exchangeName,
		exchangeType,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.Info("Connected to RabbitMQ", zap.String("exchange", exchangeName))

	return &amqpPublisher{
		conn:    conn,
		channel: channel,
		log:     log,
	}, nil
}

// PublishBookCreated publishes a book created event.
func (p *amqpPublisher) PublishBookCreated(ctx context.Context, book *db.Book) error {
	return p.publish(ctx, EventTypeBookCreated, bookPayload(book))
}

// PublishBookUpdated publishes a book updated event.
func (p *amqpPublisher) PublishBookUpdated(ctx context.Context, book *db.Book) error {
	return p.publish(ctx, EventTypeBookUpdated, bookPayload(book))
}

// PublishBookDeleted publishes a book deleted event.
func (p *amqpPublisher) PublishBookDeleted(ctx context.Context, isbn string) error {
	return p.publish(ctx, EventTypeBookDeleted, map[string]interface{}{"isbn": isbn})
}

func bookPayload(book *db.Book) map[string]interface{} {
	return map[string]interface{}{
		"isbn":         book.ISBN,
		"name":         book.Name,
		"author":       book.Author,
		"publish_date": book.PublishDate,
		"price_cents":  book.PriceCents,
		"book_type":    book.BookType,
	}
}

func (p *amqpPublisher) publish(ctx context.Context, eventType string, payload map[string]interface{}) error {
	event := Event{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		exchangeName,
		eventType, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			MessageId:    event.EventID,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}

	p.log.Info("Event published",
		zap.String("event_id", event.EventID),
		zap.String("event_type", eventType),
	)
	return nil
}

// Close closes the publisher connection.
func (p *amqpPublisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.log.Error("Failed to close channel", zap.Error(err))
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NoopPublisher discards all events. Used when no broker is configured and
// in tests.
type NoopPublisher struct{}

func (NoopPublisher) PublishBookCreated(ctx context.Context, book *db.Book) error { return nil }
func (NoopPublisher) PublishBookUpdated(ctx context.Context, book *db.Book) error { return nil }
func (NoopPublisher) PublishBookDeleted(ctx context.Context, isbn string) error   { return nil }
func (NoopPublisher) Close() error                                                { return nil }
