package event_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotel/config"
	"hotel/infras/kafka"
	kafkaMocks "hotel/infras/kafka/mocks"
	"hotel/infras/otel/mocks"
	"hotel/internal/domains/booking/event"
	"hotel/internal/domains/booking/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestPublisher_Publish(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Kafka.Topics.Booking = "hotel.booking"

	publisher := event.NewPublisher(mockClient, cfg, mocks.NewOtel())

	booking := model.Booking{
		ID:       "booking-id",
		RoomID:   "room-id",
		CheckIn:  time.Date(2024, 1, 10, 14, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2024, 1, 12, 11, 0, 0, 0, time.UTC),
		Status:   model.StatusPending,
	}

	mockClient.EXPECT().
		SendMessages(gomock.Any(), "hotel.booking", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
			require.Len(t, messages, 1)
			assert.Equal(t, "room-id", messages[0].Key)
			assert.Equal(t, event.TypeCreated, messages[0].Headers["event_type"])

			payload, ok := messages[0].Value.(event.Event)
			require.True(t, ok)
			assert.Equal(t, event.TypeCreated, payload.Type)
			assert.Equal(t, "booking-id", payload.Booking.ID)
			assert.False(t, payload.OccurredAt.IsZero())

			return nil
		})

	publisher.Publish(context.Background(), event.TypeCreated, booking)
}

func TestPublisher_Publish_ErrorIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := kafkaMocks.NewMockClient(ctrl)
	publisher := event.NewPublisher(mockClient, &config.Config{}, mocks.NewOtel())

	mockClient.EXPECT().
		SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("broker unreachable"))

	assert.NotPanics(t, func() {
		publisher.Publish(context.Background(), event.TypeCancelled, model.Booking{ID: "booking-id"})
	})
}
