package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/campusfind/lostfound-backend/internal/config"
)

// routingItemPublished is emitted by the posting service when a new item
// goes live.
const routingItemPublished = "item.published"

type scanner interface {
	ScanForMatches(ctx context.Context, itemID uuid.UUID) error
}

type taskPool interface {
	Submit(name string, fn func(ctx context.Context)) bool
}

// itemPublishedEvent is the payload of an item.published message.
type itemPublishedEvent struct {
	ItemID uuid.UUID `json:"item_id"`
}

// Consumer binds a queue to item.published and schedules a match scan for
// every fresh posting.
type Consumer struct {
	channel *amqp.Channel
	queue   string
	matches scanner
	pool    taskPool
	log     *slog.Logger
}

// NewConsumer opens a channel on the bus connection, declares the scan
// queue, and binds it to the exchange. Call Start to begin consuming.
func NewConsumer(bus *Bus, cfg config.RabbitConfig, matches scanner, pool taskPool, logger *slog.Logger) (*Consumer, error) {
	channel, err := bus.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbit: open consumer channel: %w", err)
	}

	queue, err := channel.QueueDeclare(cfg.ItemQueue, true, false, false, false, nil)
	if err != nil {
		channel.Close()
		return nil, fmt.Errorf("rabbit: declare queue %q: %w", cfg.ItemQueue, err)
	}

	err = channel.QueueBind(queue.Name, routingItemPublished, cfg.Exchange, false, nil)
	if err != nil {
		channel.Close()
		return nil, fmt.Errorf("rabbit: bind queue %q: %w", cfg.ItemQueue, err)
	}

	return &Consumer{
		channel: channel,
		queue:   queue.Name,
		matches: matches,
		pool:    pool,
		log:     logger.With("adapter", "rabbit_consumer"),
	}, nil
}

// Start consumes the queue until ctx is cancelled or the channel dies.
// Each delivery is acknowledged once the scan is scheduled; malformed
// payloads are rejected without requeue.
func (c *Consumer) Start(ctx context.Context) error {
	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbit: consume %q: %w", c.queue, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-deliveries:
				if !ok {
					c.log.Info("delivery channel closed")
					return
				}
				c.handle(ctx, msg)
			}
		}
	}()

	c.log.Info("consuming item events", slog.String("queue", c.queue))

	return nil
}

func (c *Consumer) handle(ctx context.Context, msg amqp.Delivery) {
	var event itemPublishedEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil || event.ItemID == uuid.Nil {
		c.log.WarnContext(ctx, "malformed item.published event",
			slog.Int("body_size", len(msg.Body)))
		msg.Nack(false, false)
		return
	}

	submitted := c.pool.Submit("match.scan", func(taskCtx context.Context) {
		if err := c.matches.ScanForMatches(taskCtx, event.ItemID); err != nil {
			c.log.Error("match scan failed",
				slog.String("item_id", event.ItemID.String()),
				slog.String("error", err.Error()),
			)
		}
	})
	if !submitted {
		// Queue saturated; requeue so the scan is not lost.
		c.log.WarnContext(ctx, "scan pool saturated, requeueing",
			slog.String("item_id", event.ItemID.String()))
		msg.Nack(false, true)
		return
	}

	msg.Ack(false)
}

// Close shuts down the consumer channel.
func (c *Consumer) Close() error {
	return c.channel.Close()
}
