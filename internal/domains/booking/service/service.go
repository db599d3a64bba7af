package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotel/config"
	"hotel/infras/metrics"
	"hotel/infras/otel"
	"hotel/infras/postgres"
	"hotel/internal/domains/booking/event"
	"hotel/internal/domains/booking/model"
	"hotel/internal/domains/booking/model/dto"
	"hotel/internal/domains/booking/repository"
	roomModel "hotel/internal/domains/room/model"
	roomRepo "hotel/internal/domains/room/repository"
	"hotel/shared"
	"hotel/shared/cache"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	gRepo "hotel/shared/repository"
	"hotel/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	Update(ctx context.Context, req dto.UpdateBookingRequest, id string) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string) (dto.BookingResponse, error)
	Confirm(ctx context.Context, id string) (dto.BookingResponse, error)
	// Delete purges the booking and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)
}

type serviceImpl struct {
	repo         repository.Booking
	roomRepo     roomRepo.Room
	availability Availability
	transactor   postgres.Transactor
	publisher    event.Publisher
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
}

func New(
	repo repository.Booking,
	roomRepo roomRepo.Room,
	availability Availability,
	transactor postgres.Transactor,
	publisher event.Publisher,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:         repo,
		roomRepo:     roomRepo,
		availability: availability,
		transactor:   transactor,
		publisher:    publisher,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
	}
}

// Create validates and stores a new booking. Checks run in a fixed order and the first
// failure wins: interval, room existence, room availability, schedule conflict, capacity.
// The room row stays locked from the first room read until the insert commits.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller := principalFrom(ctx)
	booking := req.ToModel(caller.id)

	if err = caller.authorize(capCreate, booking); err != nil {
		return res, err
	}

	if !model.ValidInterval(booking.CheckIn, booking.CheckOut) {
		return res, s.reject(model.ErrInvalidInterval)
	}

	err = s.transactor.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		room, err := s.lockRoom(ctx, tx, booking.RoomID)
		if err != nil {
			return err
		}

		if !room.IsBookable() {
			return model.ErrRoomUnavailable
		}

		available, err := s.availability.AvailableTx(ctx, tx, room.ID, booking.CheckIn, booking.CheckOut, constant.Empty)
		if err != nil {
			return err
		}

		if !available {
			return model.ErrRoomConflict
		}

		if booking.Guests > room.Capacity {
			return model.ErrCapacityExceeded
		}

		if err := s.repo.InsertTx(ctx, tx, booking); err != nil {
			log.Error().Err(err).Msg("failed to create booking")

			return translate(err)
		}

		return nil
	})
	if err != nil {
		return res, fmt.Errorf("failed to create booking: %w", s.reject(err))
	}

	metrics.IncBookingCreated(booking.Status)
	s.afterWrite(ctx, event.TypeCreated, booking)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, model.ErrBookingNotFound
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

// Update applies a partial update. Only fields present in req are written, all in one UPDATE.
// A change of dates is re-validated against the rest of the room's schedule and a change of
// guests against the room's current capacity, both under the room lock. A notes-only update
// touches neither the room nor the schedule.
func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateBookingRequest, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	req.Normalize()

	caller := principalFrom(ctx)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	// Nothing to apply: the booking is returned as stored.
	if req.IsEmpty() {
		current, err := s.loadForUpdate(ctx, filter, caller)
		if err != nil {
			return res, fmt.Errorf("failed to update booking: %w", err)
		}

		res.FromModel(current)

		return res, nil
	}

	var updated model.Booking

	if !req.ChangesSchedule() && req.Guests == nil {
		updated, err = s.updateNotes(ctx, req, filter, caller)
	} else {
		updated, err = s.updateSchedule(ctx, req, filter, caller)
	}

	if err != nil {
		return res, fmt.Errorf("failed to update booking: %w", s.reject(err))
	}

	s.afterWrite(ctx, event.TypeUpdated, updated)

	res.FromModel(updated)

	return res, nil
}

func (s *serviceImpl) loadForUpdate(ctx context.Context, filter gDto.FilterGroup, caller principal) (model.Booking, error) {
	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return current, err
	}

	if current.ID == constant.Empty {
		return current, model.ErrBookingNotFound
	}

	if err := caller.authorize(capUpdate, current); err != nil {
		return current, err
	}

	return current, nil
}

func (s *serviceImpl) updateNotes(ctx context.Context, req dto.UpdateBookingRequest, filter gDto.FilterGroup, caller principal) (model.Booking, error) {
	current, err := s.loadForUpdate(ctx, filter, caller)
	if err != nil {
		return current, err
	}

	if err := s.repo.Update(ctx, req.ToFields(caller.id), filter); err != nil {
		log.Error().Err(err).Msg("failed to update booking")

		return current, err
	}

	return req.Apply(current, caller.id), nil
}

func (s *serviceImpl) updateSchedule(ctx context.Context, req dto.UpdateBookingRequest, filter gDto.FilterGroup, caller principal) (updated model.Booking, err error) {
	err = s.transactor.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		current, err := s.repo.LockTx(ctx, tx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to lock booking")

			return err
		}

		if current.ID == constant.Empty {
			return model.ErrBookingNotFound
		}

		if err := caller.authorize(capUpdate, current); err != nil {
			return err
		}

		room, err := s.lockRoom(ctx, tx, current.RoomID)
		if err != nil {
			return err
		}

		if req.ChangesSchedule() {
			checkIn, checkOut := req.Interval(current)

			if !model.ValidInterval(checkIn, checkOut) {
				return model.ErrInvalidInterval
			}

			available, err := s.availability.AvailableTx(ctx, tx, room.ID, checkIn, checkOut, current.ID)
			if err != nil {
				return err
			}

			if !available {
				return model.ErrRoomConflict
			}
		}

		if req.Guests != nil && *req.Guests > room.Capacity {
			return model.ErrCapacityExceeded
		}

		if err := s.repo.UpdateTx(ctx, tx, req.ToFields(caller.id), filter); err != nil {
			log.Error().Err(err).Msg("failed to update booking")

			return translate(err)
		}

		updated = req.Apply(current, caller.id)

		return nil
	})

	return updated, err //nolint:wrapcheck
}

// Cancel moves a pending or confirmed booking to the terminal cancelled status.
func (s *serviceImpl) Cancel(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.transition(ctx, id, capCancel, model.StatusCancelled, func(current model.Booking) error {
		if current.Status == model.StatusCancelled {
			return model.ErrAlreadyCancelled
		}

		return nil
	})
	if err != nil {
		return res, fmt.Errorf("failed to cancel booking: %w", s.reject(err))
	}

	s.afterWrite(ctx, event.TypeCancelled, booking)

	res.FromModel(booking)

	return res, nil
}

// Confirm moves a pending booking to confirmed. Any other status is rejected.
func (s *serviceImpl) Confirm(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Confirm")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.transition(ctx, id, capConfirm, model.StatusConfirmed, func(current model.Booking) error {
		if current.Status != model.StatusPending {
			return model.ErrInvalidTransition
		}

		return nil
	})
	if err != nil {
		return res, fmt.Errorf("failed to confirm booking: %w", s.reject(err))
	}

	s.afterWrite(ctx, event.TypeConfirmed, booking)

	res.FromModel(booking)

	return res, nil
}

// transition changes the status of a booking under its row lock once allowed accepts the
// current state.
func (s *serviceImpl) transition(ctx context.Context, id string, action capability, status string, allowed func(model.Booking) error) (booking model.Booking, err error) {
	caller := principalFrom(ctx)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	err = s.transactor.WithinTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		current, err := s.repo.LockTx(ctx, tx, filter)
		if err != nil {
			log.Error().Err(err).Msg("failed to lock booking")

			return err
		}

		if current.ID == constant.Empty {
			return model.ErrBookingNotFound
		}

		if err := caller.authorize(action, current); err != nil {
			return err
		}

		if err := allowed(current); err != nil {
			return err
		}

		now := timezone.Now()
		fields := map[string]any{
			model.FieldStatus:        status,
			constant.FieldModifiedAt: now,
			constant.FieldModifiedBy: caller.id,
		}

		if err := s.repo.UpdateTx(ctx, tx, fields, filter); err != nil {
			log.Error().Err(err).Str("status", status).Msg("failed to update booking status")

			return translate(err)
		}

		booking = current
		booking.Status = status
		booking.ModifiedAt = now
		booking.ModifiedBy = caller.id

		return nil
	})
	if err != nil {
		return booking, err //nolint:wrapcheck
	}

	metrics.IncBookingTransition(status)

	return booking, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (existed bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	current, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return false, fmt.Errorf("failed to get booking: %w", err)
	}

	if current.ID == constant.Empty {
		return false, nil
	}

	if err = principalFrom(ctx).authorize(capDelete, current); err != nil {
		return false, err
	}

	existed, err = s.repo.Remove(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to delete booking")

		return false, fmt.Errorf("failed to delete booking: %w", err)
	}

	if existed {
		s.afterWrite(ctx, event.TypeDeleted, current)
	}

	return existed, nil
}

// lockRoom reads the room with its row lock held for the rest of tx.
func (s *serviceImpl) lockRoom(ctx context.Context, tx *sqlx.Tx, roomID string) (roomModel.Room, error) {
	start := time.Now()

	room, err := s.roomRepo.LockTx(ctx, tx, shared.FilterByID(roomID, roomModel.FieldID, roomModel.TableName))

	metrics.ObserveLockWait(time.Since(start).Seconds())

	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to lock room")

		return room, fmt.Errorf("failed to lock room: %w", err)
	}

	if room.ID == constant.Empty {
		return room, model.ErrRoomNotFound
	}

	return room, nil
}

// afterWrite runs once a change is committed.
func (s *serviceImpl) afterWrite(ctx context.Context, eventType string, booking model.Booking) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetBooking, booking.ID)); err != nil {
		log.Error().Err(err).Msg("failed to delete booking from cache")
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllBooking)
	shared.InvalidateCaches(ctx, s.cache, cacheCountBooking)

	// The write is committed; a cancelled request must not drop its event.
	s.publisher.Publish(context.WithoutCancel(ctx), eventType, booking)
}

// reject counts business rejections and passes err through.
func (s *serviceImpl) reject(err error) error {
	if reason := rejectionReason(err); reason != constant.Empty {
		metrics.IncBookingRejected(reason)
	}

	return err
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidInterval):
		return "invalid_interval"
	case errors.Is(err, model.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, model.ErrRoomUnavailable):
		return "room_unavailable"
	case errors.Is(err, model.ErrRoomConflict):
		return "room_conflict"
	case errors.Is(err, model.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, model.ErrAlreadyCancelled):
		return "already_cancelled"
	case errors.Is(err, model.ErrInvalidTransition):
		return "invalid_transition"
	default:
		return constant.Empty
	}
}

// translate maps constraint violations reported by the database to booking errors. The
// exclusion constraint on room_bookings is the last line against overlapping schedules.
func translate(err error) error {
	switch {
	case errors.Is(err, gRepo.ErrExclusionViolation):
		return model.ErrRoomConflict
	case errors.Is(err, gRepo.ErrCheckViolation) && gRepo.Constraint(err) == model.ConstraintValidInterval:
		return model.ErrInvalidInterval
	case errors.Is(err, gRepo.ErrForeignKeyViolation):
		return model.ErrUnknownUser
	default:
		return err
	}
}
