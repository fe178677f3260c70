package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
)

// ErrPoison tells Consume to drop a delivery instead of requeueing it.
var ErrPoison = errors.New("unprocessable message")

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	mu       sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL      string
	Exchange string
}

// NewClient connects to RabbitMQ and declares the durable topic exchange.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // kind
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	slog.Info("rabbitmq connected", "exchange", cfg.Exchange)

	return &Client{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
	}, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Healthy reports whether the connection is still open.
func (c *Client) Healthy() bool {
	return c.conn != nil && !c.conn.IsClosed()
}

// Publish sends a persistent JSON message to the exchange.
func (c *Client) Publish(ctx context.Context, routingKey string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.Publish(
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}
	return nil
}

// Consume binds a durable queue to the exchange and feeds each delivery to
// handler until ctx is done. A nil result acks, ErrPoison drops and any
// other error requeues.
func (c *Client) Consume(ctx context.Context, queue, bindingKey string, handler func(amqp.Delivery) error) error {
	q, err := c.channel.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	if err := c.channel.QueueBind(q.Name, bindingKey, c.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queue, err)
	}
	if err := c.channel.Qos(10, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	msgs, err := c.channel.Consume(
		q.Name, // queue
		"",     // consumer tag
		false,  // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	slog.Info("waiting for messages", "queue", q.Name, "binding", bindingKey)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			settle(msg, handler(msg))
		}
	}
}

func settle(msg amqp.Delivery, err error) {
	switch {
	case err == nil:
		if ackErr := msg.Ack(false); ackErr != nil {
			slog.Error("failed to ack message", "tag", msg.DeliveryTag, "error", ackErr)
		}
	case errors.Is(err, ErrPoison):
		slog.Warn("dropping message", "routing_key", msg.RoutingKey, "error", err)
		if nackErr := msg.Nack(false, false); nackErr != nil {
			slog.Error("failed to nack message", "tag", msg.DeliveryTag, "error", nackErr)
		}
	default:
		slog.Error("failed to process message", "routing_key", msg.RoutingKey, "error", err)
		if nackErr := msg.Nack(false, true); nackErr != nil {
			slog.Error("failed to nack message", "tag", msg.DeliveryTag, "error", nackErr)
		}
	}
}
