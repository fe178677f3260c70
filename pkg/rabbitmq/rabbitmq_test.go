package rabbitmq

import (
	"errors"
	"fmt"
	"testing"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
)

type recordingAcker struct {
	acked, requeued, dropped int
}

func (r *recordingAcker) Ack(uint64, bool) error { r.acked++; return nil }

func (r *recordingAcker) Nack(_ uint64, _ bool, requeue bool) error {
	if requeue {
		r.requeued++
	} else {
		r.dropped++
	}
	return nil
}

func (r *recordingAcker) Reject(uint64, bool) error { return nil }

func TestSettle(t *testing.T) {
	acker := &recordingAcker{}
	msg := amqp.Delivery{Acknowledger: acker, DeliveryTag: 1, RoutingKey: "order.created"}

	settle(msg, nil)
	settle(msg, fmt.Errorf("bad json: %w", ErrPoison))
	settle(msg, errors.New("mongo unavailable"))

	assert.Equal(t, 1, acker.acked)
	assert.Equal(t, 1, acker.dropped)
	assert.Equal(t, 1, acker.requeued)
}
