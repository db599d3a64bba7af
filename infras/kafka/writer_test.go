package kafka

import (
	"errors"
	"testing"
	"time"

	"hotel/config"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/stretchr/testify/assert"
)

func TestNewWriter(t *testing.T) {
	cfg := &config.Config{}
	cfg.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Kafka.BatchTimeoutMs = 10
	cfg.Kafka.SASL.Username = "hotel"
	cfg.Kafka.SASL.Password = "secret"

	writer := newWriter(cfg)

	assert.True(t, writer.Async, "writes must not wait for the broker")
	assert.Equal(t, 10*time.Millisecond, writer.BatchTimeout)
	assert.NotNil(t, writer.Completion)
	assert.IsType(t, &kafkaGo.Hash{}, writer.Balancer)

	transport, ok := writer.Transport.(*kafkaGo.Transport)
	if assert.True(t, ok) {
		assert.Equal(t, plain.Mechanism{Username: "hotel", Password: "secret"}, transport.SASL)
	}
}

func TestLogCompletion(t *testing.T) {
	assert.NotPanics(t, func() {
		logCompletion(nil, errors.New("broker down"))
		logCompletion([]kafkaGo.Message{{Topic: "hotel.booking"}}, errors.New("broker down"))
		logCompletion([]kafkaGo.Message{{Topic: "hotel.booking"}}, nil)
	})
}
