package service

import (
	"context"
	"fmt"
	"time"

	"hotel/infras/otel"
	"hotel/internal/domains/booking/model"
	"hotel/internal/domains/booking/repository"
	"hotel/shared/constant"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Availability decides whether a room's schedule can take the interval [checkIn, checkOut).
// Only pending and confirmed bookings hold the schedule. excludeID, when set, is left out
// so that a booking can be checked against the rest of its room's schedule.
type Availability interface {
	Available(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (bool, error)
	// AvailableTx runs the same scan inside sqltx, under whatever locks the caller holds.
	AvailableTx(ctx context.Context, sqltx *sqlx.Tx, roomID string, checkIn, checkOut time.Time, excludeID string) (bool, error)
}

type availabilityImpl struct {
	repo repository.Booking
	otel otel.Otel
}

func NewAvailability(repo repository.Booking, otel otel.Otel) Availability {
	return &availabilityImpl{
		repo: repo,
		otel: otel,
	}
}

func (a *availabilityImpl) Available(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeID string) (ok bool, err error) {
	ctx, scope := a.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Available")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return a.scan(ctx, nil, roomID, checkIn, checkOut, excludeID)
}

func (a *availabilityImpl) AvailableTx(ctx context.Context, sqltx *sqlx.Tx, roomID string, checkIn, checkOut time.Time, excludeID string) (ok bool, err error) {
	ctx, scope := a.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AvailableTx")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return a.scan(ctx, sqltx, roomID, checkIn, checkOut, excludeID)
}

func (a *availabilityImpl) scan(ctx context.Context, sqltx *sqlx.Tx, roomID string, checkIn, checkOut time.Time, excludeID string) (bool, error) {
	bookings, err := a.repo.FindByRoom(ctx, sqltx, roomID, model.ActiveStatuses)
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to list room bookings")

		return false, fmt.Errorf("failed to list room bookings: %w", err)
	}

	for _, booking := range bookings {
		if excludeID != constant.Empty && booking.ID == excludeID {
			continue
		}

		if !booking.IsActive() {
			continue
		}

		if model.Overlaps(checkIn, checkOut, booking.CheckIn, booking.CheckOut) {
			log.Debug().
				Str("room_id", roomID).
				Str("conflicting_booking_id", booking.ID).
				Msg("room schedule conflict")

			return false, nil
		}
	}

	return true, nil
}
