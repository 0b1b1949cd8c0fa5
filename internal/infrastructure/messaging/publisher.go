// Package messaging publishes committed ledger events to an AMQP exchange.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	appledger "github.com/farmledger/backend/internal/application/ledger"
	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/infrastructure/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	// DefaultExchange is the topic exchange ledger events are published to
	DefaultExchange       = "farmledger.ledger"
	defaultPublishTimeout = 5 * time.Second
)

// Channel is the part of an AMQP channel the publisher uses
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Connection is an open broker connection with a declared exchange
type Connection struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Dial connects to the broker and declares a durable topic exchange
func Dial(cfg config.MessagingConfig) (*Connection, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchangeName(cfg), amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Connection{conn: conn, channel: ch}, nil
}

// Channel returns the publishing channel
func (c *Connection) Channel() Channel {
	return c.channel
}

// Close closes the channel and the connection
func (c *Connection) Close() error {
	return errors.Join(c.channel.Close(), c.conn.Close())
}

func exchangeName(cfg config.MessagingConfig) string {
	if cfg.Exchange == "" {
		return DefaultExchange
	}
	return cfg.Exchange
}

// LedgerEventPublisher is a post-commit hook that publishes every event of
// a committed mutation, routed by its event type
type LedgerEventPublisher struct {
	channel    Channel
	exchange   string
	timeout    time.Duration
	serializer *EventSerializer
	logger     *zap.Logger
}

// NewLedgerEventPublisher creates a publisher on channel
func NewLedgerEventPublisher(channel Channel, cfg config.MessagingConfig, logger *zap.Logger) *LedgerEventPublisher {
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &LedgerEventPublisher{
		channel:    channel,
		exchange:   exchangeName(cfg),
		timeout:    timeout,
		serializer: NewLedgerEventSerializer(),
		logger:     logger,
	}
}

// Name implements appledger.PostCommitHook
func (p *LedgerEventPublisher) Name() string {
	return "ledger_event_publisher"
}

// AfterCommit publishes each event. A failed publish does not stop the rest.
func (p *LedgerEventPublisher) AfterCommit(ctx context.Context, events []shared.DomainEvent) error {
	var errs []error
	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *LedgerEventPublisher) publish(ctx context.Context, event shared.DomainEvent) error {
	body, err := p.serializer.Serialize(event)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", event.EventType(), err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	err = p.channel.PublishWithContext(ctx, p.exchange, event.EventType(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID().String(),
		Type:         event.EventType(),
		Timestamp:    event.OccurredAt(),
		Headers: amqp.Table{
			"aggregate_type": event.AggregateType(),
			"aggregate_id":   event.AggregateID().String(),
			"owner_id":       event.OwnerID().String(),
		},
		Body: body,
	})
	if err != nil {
		return fmt.Errorf("publish %s %s: %w", event.EventType(), event.EventID(), err)
	}

	p.logger.Debug("Published ledger event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("exchange", p.exchange),
	)
	return nil
}

var _ appledger.PostCommitHook = (*LedgerEventPublisher)(nil)
