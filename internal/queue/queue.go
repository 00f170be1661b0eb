// Package queue publishes domain events to RabbitMQ. The client is optional:
// a nil *Client is a no-op publisher, so the service runs unchanged when
// RABBITMQ_URL is not configured.
package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Exchange is the topic exchange all order, stock and table events go
// through. Routing keys follow "order.created", "order.status.updated",
// "stock.adjusted", "table.released", "receipt.created".
const Exchange = "restopos.events"

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *zap.Logger
}

// New dials RabbitMQ and declares the events exchange.
func New(url string, log *zap.Logger) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Client{conn: conn, ch: ch, log: log}, nil
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Publish sends one event as JSON. Delivery is fire-and-forget: marshal and
// broker errors are logged, never returned, so event publishing can never
// fail a write that already committed.
func (c *Client) Publish(ctx context.Context, routingKey string, payload any) {
	if c == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		c.log.Error("event payload not serializable",
			zap.String("routingKey", routingKey), zap.Error(err))
		return
	}
	err = c.ch.PublishWithContext(ctx, Exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   time.Now(),
	})
	if err != nil {
		c.log.Error("event publish failed",
			zap.String("routingKey", routingKey), zap.Error(err))
	}
}

// EnsureQueue declares a durable queue bound to the events exchange, for
// consumers that want their own binding (kitchen displays, audit sinks).
// The '#' wildcard is needed for multi-segment keys like
// 'order.status.updated'.
func (c *Client) EnsureQueue(name, bindingKey string) error {
	if c == nil {
		return nil
	}
	if _, err := c.ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return err
	}
	return c.ch.QueueBind(name, bindingKey, Exchange, false, nil)
}
