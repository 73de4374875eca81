// Package rabbit connects the service to its RabbitMQ event bus: publishing
// domain events to a topic exchange and consuming item.published events that
// trigger background match scans.
package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/campusfind/lostfound-backend/internal/config"
)

const publishTimeout = 5 * time.Second

// Bus publishes events to the topic exchange.
type Bus struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *slog.Logger
}

// NewBus dials the broker and declares the exchange. The exchange is a
// durable topic exchange shared with the other campus services.
func NewBus(cfg config.RabbitConfig, logger *slog.Logger) (*Bus, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbit: dial: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbit: open channel: %w", err)
	}

	err = channel.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbit: declare exchange %q: %w", cfg.Exchange, err)
	}

	return &Bus{
		conn:     conn,
		channel:  channel,
		exchange: cfg.Exchange,
		log:      logger.With("adapter", "rabbit"),
	}, nil
}

// Publish marshals body as JSON and sends it with the given routing key.
// Persistent delivery, bounded by publishTimeout.
func (b *Bus) Publish(ctx context.Context, routingKey string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("rabbit: marshal %s event: %w", routingKey, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = b.channel.PublishWithContext(ctx, b.exchange, routingKey, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         payload,
		})
	if err != nil {
		return fmt.Errorf("rabbit: publish %s: %w", routingKey, err)
	}

	b.log.DebugContext(ctx, "event published",
		slog.String("routing_key", routingKey),
		slog.Int("body_size", len(payload)),
	)

	return nil
}

// Ping reports whether the connection is still usable.
func (b *Bus) Ping() error {
	if b.conn == nil || b.conn.IsClosed() {
		return fmt.Errorf("rabbit: connection closed")
	}
	return nil
}

// Close shuts down the channel and connection.
func (b *Bus) Close() error {
	if b.channel != nil {
		if err := b.channel.Close(); err != nil {
			b.log.Warn("close channel failed", slog.String("error", err.Error()))
		}
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}

// NopBus is the publisher used when the bus is disabled by configuration.
// Events are logged and dropped.
type NopBus struct {
	log *slog.Logger
}

// NewNopBus creates a log-only publisher.
func NewNopBus(logger *slog.Logger) *NopBus {
	return &NopBus{log: logger.With("adapter", "rabbit_nop")}
}

// Publish logs the event instead of delivering it.
func (b *NopBus) Publish(ctx context.Context, routingKey string, _ any) error {
	b.log.DebugContext(ctx, "event bus disabled, event dropped",
		slog.String("routing_key", routingKey))
	return nil
}
