package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"redpacket/contexts/finance-core/packet-service/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	ErrChannelRequired = errors.New("rabbitmq channel is required")
	ErrPublishNacked   = errors.New("message was nacked by broker")
	ErrConfirmTimeout  = errors.New("confirmation timed out")
	ErrConfirmsClosed  = errors.New("confirmation stream closed")
)

const (
	DefaultExchange       = "redpacket.events"
	DefaultConfirmTimeout = 5 * time.Second
)

// ConfirmChannel is the subset of *amqp.Channel the publisher drives.
type ConfirmChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Confirm(noWait bool) error
	NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQ publishes envelopes to a durable topic exchange with publisher
// confirms. The topic becomes the routing key. Publish returns only after the
// broker acked the message, so the outbox row is marked published only then.
type RabbitMQ struct {
	conn           *amqp.Connection
	ch             ConfirmChannel
	confirms       chan amqp.Confirmation
	exchange       string
	confirmTimeout time.Duration
	logger         *slog.Logger

	// Confirms arrive in publish order; one publish in flight keeps them paired.
	publishMu sync.Mutex
}

func DialRabbitMQ(url string, exchange string, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	publisher, err := NewRabbitMQFromChannel(ch, exchange, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	publisher.conn = conn
	return publisher, nil
}

func NewRabbitMQFromChannel(ch ConfirmChannel, exchange string, logger *slog.Logger) (*RabbitMQ, error) {
	if ch == nil {
		return nil, ErrChannelRequired
	}
	exchange = strings.TrimSpace(exchange)
	if exchange == "" {
		exchange = DefaultExchange
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}
	return &RabbitMQ{
		ch:             ch,
		confirms:       ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
		exchange:       exchange,
		confirmTimeout: DefaultConfirmTimeout,
		logger:         logger,
	}, nil
}

func (r *RabbitMQ) Exchange() string {
	return r.exchange
}

func (r *RabbitMQ) Publish(ctx context.Context, topic string, event ports.EventEnvelope) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Type:         event.EventType,
		Timestamp:    event.OccurredAt.UTC(),
		Headers: amqp.Table{
			"partition_key":  event.PartitionKey,
			"schema_version": int32(event.SchemaVersion),
		},
		Body: body,
	}

	r.publishMu.Lock()
	defer r.publishMu.Unlock()

	if err := r.ch.PublishWithContext(ctx, r.exchange, topic, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	if err := r.waitForConfirm(ctx); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	if r.logger != nil {
		r.logger.Info("event published",
			"event", "rabbitmq_publish",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"exchange", r.exchange,
			"topic", topic,
			"event_id", event.EventID,
			"event_type", event.EventType,
			"partition_key", event.PartitionKey,
		)
	}
	return nil
}

func (r *RabbitMQ) waitForConfirm(ctx context.Context) error {
	timer := time.NewTimer(r.confirmTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrConfirmTimeout
	case confirm, ok := <-r.confirms:
		if !ok {
			return ErrConfirmsClosed
		}
		if !confirm.Ack {
			return ErrPublishNacked
		}
		return nil
	}
}

func (r *RabbitMQ) Close() error {
	var errs []error
	if r.ch != nil {
		errs = append(errs, r.ch.Close())
	}
	if r.conn != nil {
		errs = append(errs, r.conn.Close())
	}
	return errors.Join(errs...)
}
