// Package events publishes order lifecycle events and turns consumed events
// into the order activity feed.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"tokoshop/internal/models"
	"tokoshop/internal/repositories"
	"tokoshop/pkg/rabbitmq"

	amqp "github.com/streadway/amqp"
)

// Routing keys on the orders exchange.
const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	OrderCancelled     = "order.cancelled"

	// ActivityQueue receives every order event for the activity feed.
	ActivityQueue   = "order_activity"
	ActivityBinding = "order.#"
)

// OrderEvent is the JSON payload of every order event.
type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	Total      string    `json:"total"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewOrderEvent snapshots an order into an event of the given type.
func NewOrderEvent(eventType string, o *models.Order) OrderEvent {
	return OrderEvent{
		Type:       eventType,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     o.Status,
		Total:      o.Total.StringFixed(2),
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher sends order events.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

type amqpPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// RabbitPublisher publishes events as JSON using the event type as routing key.
type RabbitPublisher struct {
	client amqpPublisher
}

func NewRabbitPublisher(client *rabbitmq.Client) *RabbitPublisher {
	return &RabbitPublisher{client: client}
}

func (p *RabbitPublisher) Publish(ctx context.Context, event OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}
	return p.client.Publish(ctx, event.Type, body)
}

// NopPublisher drops events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }

// ActivityRecorder stores consumed order events in the activity feed.
type ActivityRecorder struct {
	repo repositories.ActivityRepository
}

func NewActivityRecorder(repo repositories.ActivityRepository) *ActivityRecorder {
	return &ActivityRecorder{repo: repo}
}

// Handle decodes one delivery; malformed payloads are reported as poison.
func (a *ActivityRecorder) Handle(ctx context.Context, msg amqp.Delivery) error {
	var event OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("decode %s: %v: %w", msg.RoutingKey, err, rabbitmq.ErrPoison)
	}
	if event.OrderID == "" {
		return fmt.Errorf("%s without order id: %w", msg.RoutingKey, rabbitmq.ErrPoison)
	}
	if event.Type == "" {
		event.Type = msg.RoutingKey
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = msg.Timestamp.UTC()
	}

	activity := &models.OrderActivity{
		OrderID:    event.OrderID,
		UserID:     event.UserID,
		Type:       event.Type,
		Status:     event.Status,
		Total:      event.Total,
		OccurredAt: event.OccurredAt,
	}
	if err := a.repo.Record(ctx, activity); err != nil {
		return err
	}
	slog.Debug("order activity recorded", "order_id", event.OrderID, "type", event.Type)
	return nil
}
