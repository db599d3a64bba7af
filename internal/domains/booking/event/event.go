package event

//go:generate go run go.uber.org/mock/mockgen -source=./event.go -destination=../mocks/event_mock.go -package=mocks

import (
	"context"
	"time"

	"hotel/config"
	"hotel/infras/kafka"
	"hotel/infras/otel"
	"hotel/internal/domains/booking/model"
	"hotel/internal/domains/booking/model/dto"
	"hotel/shared/constant"
	"hotel/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	TypeCreated   = "booking.created"
	TypeUpdated   = "booking.updated"
	TypeConfirmed = "booking.confirmed"
	TypeCancelled = "booking.cancelled"
	TypeDeleted   = "booking.deleted"

	headerEventType = "event_type"
)

type Event struct {
	Type       string              `json:"type"`
	OccurredAt time.Time           `json:"occurred_at"`
	Booking    dto.BookingResponse `json:"booking"`
}

// Publisher announces committed booking changes. Publishing never fails the caller: the
// change is already durable when it is announced.
type Publisher interface {
	Publish(ctx context.Context, eventType string, booking model.Booking)
}

type publisherImpl struct {
	client kafka.Client
	topic  string
	otel   otel.Otel
}

func NewPublisher(client kafka.Client, cfg *config.Config, otel otel.Otel) Publisher {
	return &publisherImpl{
		client: client,
		topic:  cfg.Kafka.Topics.Booking,
		otel:   otel,
	}
}

func (p *publisherImpl) Publish(ctx context.Context, eventType string, booking model.Booking) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".Publish")
	defer scope.End()

	scope.SetAttribute(headerEventType, eventType)

	payload := Event{
		Type:       eventType,
		OccurredAt: timezone.Now(),
	}
	payload.Booking.FromModel(booking)

	// Keyed by room so that one room's events keep their order.
	message := kafka.Message{
		Key:     booking.RoomID,
		Value:   payload,
		Headers: map[string]string{headerEventType: eventType},
	}

	if err := p.client.SendMessages(ctx, p.topic, message); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("event", eventType).Str("booking_id", booking.ID).Msg("failed to publish booking event")
	}
}
