package kafka_test

import (
	"context"
	"testing"

	"hotel/config"
	"hotel/infras/kafka"
	"hotel/infras/otel/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingEvent struct {
	Type      string `json:"type"`
	BookingID string `json:"booking_id"`
}

func TestMessage_ToKafkaMessage(t *testing.T) {
	message := kafka.Message{
		Key:     "room-1",
		Value:   bookingEvent{Type: "booking.created", BookingID: "b-1"},
		Headers: map[string]string{"event_type": "booking.created"},
	}

	msg, err := message.ToKafkaMessage("hotel.booking")
	require.NoError(t, err)

	assert.Equal(t, "hotel.booking", msg.Topic)
	assert.Equal(t, []byte("room-1"), msg.Key)
	assert.JSONEq(t, `{"type":"booking.created","booking_id":"b-1"}`, string(msg.Value))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
}

func TestMessage_ToKafkaMessageUnsupportedValue(t *testing.T) {
	message := kafka.Message{Key: "k", Value: make(chan int)}

	_, err := message.ToKafkaMessage("hotel.booking")
	assert.Error(t, err)
}

func TestNew_DisabledClientDropsMessages(t *testing.T) {
	cfg := &config.Config{}

	client := kafka.New(cfg, mocks.NewOtel())

	assert.NoError(t, client.SendMessages(context.Background(), "hotel.booking", kafka.Message{Key: "k", Value: 1}))
	assert.NoError(t, client.Close())
}
