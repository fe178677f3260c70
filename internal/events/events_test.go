package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"tokoshop/internal/models"
	"tokoshop/internal/repositories"
	"tokoshop/pkg/rabbitmq"

	"github.com/shopspring/decimal"
	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	key  string
	body []byte
}

func (c *capturePublisher) Publish(_ context.Context, routingKey string, body []byte) error {
	c.key, c.body = routingKey, body
	return nil
}

func TestRabbitPublisher_UsesTypeAsRoutingKey(t *testing.T) {
	capture := &capturePublisher{}
	p := &RabbitPublisher{client: capture}
	order := &models.Order{ID: "o1", UserID: "u1", Status: models.OrderStatusPending, Total: decimal.RequireFromString("12.5")}

	require.NoError(t, p.Publish(context.Background(), NewOrderEvent(OrderCreated, order)))
	assert.Equal(t, OrderCreated, capture.key)

	var got OrderEvent
	require.NoError(t, json.Unmarshal(capture.body, &got))
	assert.Equal(t, "o1", got.OrderID)
	assert.Equal(t, "12.50", got.Total)
}

func TestActivityRecorder_Handle(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockActivityRepository()
	recorder := NewActivityRecorder(repo)

	body, err := json.Marshal(OrderEvent{OrderID: "o1", UserID: "u1", Status: models.OrderStatusCancelled, Total: "10.00"})
	require.NoError(t, err)
	require.NoError(t, recorder.Handle(ctx, amqp.Delivery{RoutingKey: OrderCancelled, Body: body}))

	feed, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, OrderCancelled, feed[0].Type)
	assert.Equal(t, "o1", feed[0].OrderID)

	err = recorder.Handle(ctx, amqp.Delivery{RoutingKey: OrderCreated, Body: []byte("{not json")})
	assert.True(t, errors.Is(err, rabbitmq.ErrPoison))
	err = recorder.Handle(ctx, amqp.Delivery{RoutingKey: OrderCreated, Body: []byte(`{"type":"order.created"}`)})
	assert.True(t, errors.Is(err, rabbitmq.ErrPoison))
}
