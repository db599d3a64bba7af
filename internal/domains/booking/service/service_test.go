package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"hotel/config"
	otelMocks "hotel/infras/otel/mocks"
	"hotel/infras/postgres"
	txMocks "hotel/infras/postgres/mocks"
	bookingMocks "hotel/internal/domains/booking/mocks"
	"hotel/internal/domains/booking/model"
	"hotel/internal/domains/booking/model/dto"
	"hotel/internal/domains/booking/service"
	roomMocks "hotel/internal/domains/room/mocks"
	roomModel "hotel/internal/domains/room/model"
	cacheMocks "hotel/shared/cache/mocks"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	gRepo "hotel/shared/repository"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	roomID    = "8f14e45f-ceea-467f-a0e6-9b3c5b0a1c11"
	bookingID = "c9f0f895-fb98-4ab2-9f4f-1d2e3c4b5a60"
	otherID   = "45c48cce-2e2d-4fbd-aa1a-c56b3f7e9d22"
	guestID   = "d3d94468-02a4-4d1b-8c4b-6e1c2b7a9f33"
)

var errDatabase = errors.New("database error")

type fixture struct {
	svc       service.Booking
	repo      *bookingMocks.MockBooking
	roomRepo  *roomMocks.MockRoom
	tx        *txMocks.MockTransactor
	publisher *bookingMocks.MockPublisher
	cache     *cacheMocks.MockRedisCache
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		repo:      bookingMocks.NewMockBooking(ctrl),
		roomRepo:  roomMocks.NewMockRoom(ctrl),
		tx:        txMocks.NewMockTransactor(ctrl),
		publisher: bookingMocks.NewMockPublisher(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	otel := otelMocks.NewOtel()
	availability := service.NewAvailability(f.repo, otel)

	f.svc = service.New(f.repo, f.roomRepo, availability, f.tx, f.publisher, cfg, f.cache, otel)

	f.tx.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn postgres.TxFunc) error {
		return fn(ctx, nil)
	}).AnyTimes()

	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return f
}

func (f fixture) expectRoom(room roomModel.Room) {
	f.roomRepo.EXPECT().LockTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(room, nil)
}

func (f fixture) expectSchedule(bookings ...model.Booking) {
	f.repo.EXPECT().
		FindByRoom(gomock.Any(), gomock.Any(), roomID, model.ActiveStatuses).
		Return(bookings, nil)
}

func asAdmin() context.Context {
	return withPrincipal("admin-id", constant.RoleAdmin)
}

func withPrincipal(id, role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, id)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

func day(d int) time.Time {
	return time.Date(2030, time.March, d, 14, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

func bookableRoom() roomModel.Room {
	return roomModel.Room{ID: roomID, Capacity: 2, IsAvailable: true}
}

func booking(id, status string, checkIn, checkOut time.Time) model.Booking {
	return model.Booking{
		ID:         id,
		RoomID:     roomID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     1,
		TotalPrice: 200,
		Status:     status,
	}
}

func createRequest(checkIn, checkOut time.Time, guests int) dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		RoomID:     roomID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     guests,
		TotalPrice: 300,
	}
}

func TestBookingService_Create(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		req       dto.CreateBookingRequest
		setupMock func(f fixture)
		wantErr   error
		check     func(t *testing.T, res dto.BookingResponse)
	}{
		{
			name: "adjacent stays do not conflict",
			ctx:  asAdmin(),
			req:  createRequest(day(3), day(5), 2),
			setupMock: func(f fixture) {
				f.expectRoom(bookableRoom())
				f.expectSchedule(
					booking(otherID, model.StatusConfirmed, day(1), day(3)),
					booking(guestID, model.StatusPending, day(5), day(7)),
				)
				f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, b model.Booking) error {
						assert.Equal(t, model.StatusPending, b.Status)
						assert.Equal(t, 2, b.Guests)

						return nil
					})
				f.publisher.EXPECT().Publish(gomock.Any(), "booking.created", gomock.Any())
			},
			check: func(t *testing.T, res dto.BookingResponse) {
				t.Helper()
				assert.Equal(t, model.StatusPending, res.Status)
				assert.Equal(t, roomID, res.RoomID)
			},
		},
		{
			name: "explicit confirmed status is kept",
			ctx:  asAdmin(),
			req: func() dto.CreateBookingRequest {
				req := createRequest(day(3), day(5), 1)
				req.Status = model.StatusConfirmed

				return req
			}(),
			setupMock: func(f fixture) {
				f.expectRoom(bookableRoom())
				f.expectSchedule()
				f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				f.publisher.EXPECT().Publish(gomock.Any(), "booking.created", gomock.Any())
			},
			check: func(t *testing.T, res dto.BookingResponse) {
				t.Helper()
				assert.Equal(t, model.StatusConfirmed, res.Status)
			},
		},
		{
			name: "cancelled bookings do not hold the schedule",
			ctx:  asAdmin(),
			req:  createRequest(day(3), day(5), 1),
			setupMock: func(f fixture) {
				f.expectRoom(bookableRoom())
				f.expectSchedule(booking(otherID, model.StatusCancelled, day(3), day(5)))
				f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any())
			},
		},
		{
			name:      "check out before check in",
			ctx:       asAdmin(),
			req:       createRequest(day(5), day(3), 1),
			setupMock: func(fixture) {},
			wantErr:   model.ErrInvalidInterval,
		},
		{
			name:      "zero length stay",
			ctx:       asAdmin(),
			req:       createRequest(day(5), day(5), 1),
			setupMock: func(fixture) {},
			wantErr:   model.ErrInvalidInterval,
		},
		{
			name: "unknown room",
			ctx:  asAdmin(),
			req:  createRequest(day(3), day(5), 1),
			setupMock: func(f fixture) {
				f.expectRoom(roomModel.Room{})
			},
			wantErr: model.ErrRoomNotFound,
		},
		{
			name: "room under maintenance wins over conflict and capacity",
			ctx:  asAdmin(),
			req:  createRequest(day(3), day(5), 9),
			setupMock: func(f fixture) {
				room := bookableRoom()
				room.IsUnderMaintenance = true

				f.expectRoom(room)
			},
			wantErr: model.ErrRoomUnavailable,
		},
		{
			name: "room marked unavailable",
			ctx:  asAdmin(),
			req:  createRequest(day(3), day(5), 1),
			setupMock: func(f fixture) {
				room := bookableRoom()
				room.IsAvailable = false

				f.expectRoom(room)
			},
			wantErr: model.ErrRoomUnavailable,
		},
		{
			name: "overlapping stay conflicts before capacity is checked",
			ctx:  asAdmin(),
			req:  createRequest(day(3), day(5), 9),
			setupMock: func(f fixture) {
				f.expectRoom(bookableRoom())
				f.expectSchedule(booking(otherID, model.StatusPending, day(4), day(6)))
			},
			wantErr: model.ErrRoomConflict,
		},
		{
			name: "identical interval conflicts",
			ctx:  asAdmin(),
			req:  createRequest(day(3), day(5), 1),
			setupMock: func(f fixture) {
				f.expectRoom(bookableRoom())
				f.expectSchedule(booking(otherID, model.StatusConfirmed, day(3), day(5)))
			},
			wantErr: model.ErrRoomConflict,
		},
		{
			name: "too many guests",
			ctx:  asAdmin(),
			req:  createRequest(day(3), day(5), 3),
			setupMock: func(f fixture) {
				f.expectRoom(bookableRoom())
				f.expectSchedule()
			},
			wantErr: model.ErrCapacityExceeded,
		},
		{
			name: "exclusion constraint reports a conflict",
			ctx:  asAdmin(),
			req:  createRequest(day(3), day(5), 1),
			setupMock: func(f fixture) {
				f.expectRoom(bookableRoom())
				f.expectSchedule()
				f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(fmt.Errorf("failed to insert data (booking): %w", gRepo.ErrExclusionViolation))
			},
			wantErr: model.ErrRoomConflict,
		},
		{
			name: "unknown user reference",
			ctx:  asAdmin(),
			req:  createRequest(day(3), day(5), 1),
			setupMock: func(f fixture) {
				f.expectRoom(bookableRoom())
				f.expectSchedule()
				f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(fmt.Errorf("failed to insert data (booking): %w", gRepo.ErrForeignKeyViolation))
			},
			wantErr: model.ErrUnknownUser,
		},
		{
			name: "normal user cannot create a confirmed booking",
			ctx:  withPrincipal(guestID, constant.RoleNormal),
			req: func() dto.CreateBookingRequest {
				req := createRequest(day(3), day(5), 1)
				req.Status = model.StatusConfirmed

				return req
			}(),
			setupMock: func(fixture) {},
			wantErr:   failure.ResourceRestrictedError,
		},
		{
			name: "normal user cannot book for someone else",
			ctx:  withPrincipal(guestID, constant.RoleNormal),
			req: func() dto.CreateBookingRequest {
				req := createRequest(day(3), day(5), 1)
				req.UserID = ptr(otherID)

				return req
			}(),
			setupMock: func(fixture) {},
			wantErr:   failure.ResourceRestrictedError,
		},
		{
			name: "normal user books for themselves",
			ctx:  withPrincipal(guestID, constant.RoleNormal),
			req:  createRequest(day(3), day(5), 1),
			setupMock: func(f fixture) {
				f.expectRoom(bookableRoom())
				f.expectSchedule()
				f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any())
			},
			check: func(t *testing.T, res dto.BookingResponse) {
				t.Helper()
				require.NotNil(t, res.UserID)
				assert.Equal(t, guestID, *res.UserID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Create(tt.ctx, tt.req)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)

			if tt.check != nil {
				tt.check(t, res)
			}
		})
	}
}

func TestBookingService_Create_PublishesPastRequestCancellation(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(asAdmin())
	defer cancel()

	f.expectRoom(bookableRoom())
	f.expectSchedule()
	f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, *sqlx.Tx, model.Booking) error {
			cancel()

			return nil
		})
	f.publisher.EXPECT().Publish(gomock.Any(), "booking.created", gomock.Any()).Do(
		func(ctx context.Context, _ string, _ model.Booking) {
			assert.NoError(t, ctx.Err())
		})

	_, err := f.svc.Create(ctx, createRequest(day(3), day(5), 1))
	require.NoError(t, err)
}

func TestBookingService_Create_CheckViolation(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		wantErr    error
	}{
		{
			name:       "interval constraint",
			constraint: model.ConstraintValidInterval,
			wantErr:    model.ErrInvalidInterval,
		},
		{
			name:       "other check constraint",
			constraint: "room_bookings_guests_check",
			wantErr:    gRepo.ErrCheckViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.expectRoom(bookableRoom())
			f.expectSchedule()
			f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(fmt.Errorf("failed to insert data (booking): %w: %w", gRepo.ErrCheckViolation,
					&pq.Error{Code: constant.PqErrorCodeCheckViolation, Constraint: tt.constraint}))

			_, err := f.svc.Create(asAdmin(), createRequest(day(3), day(5), 1))

			require.ErrorIs(t, err, tt.wantErr)
			if tt.wantErr != model.ErrInvalidInterval {
				assert.NotErrorIs(t, err, model.ErrInvalidInterval)
			}
		})
	}
}

func TestBookingService_Create_StorageFailure(t *testing.T) {
	f := newFixture(t)

	f.roomRepo.EXPECT().LockTx(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(roomModel.Room{}, failure.StorageFailure(errors.New("canceling statement due to lock timeout")))

	_, err := f.svc.Create(asAdmin(), createRequest(day(3), day(5), 1))

	require.Error(t, err)
	assert.True(t, failure.IsStorage(err))
	assert.False(t, errors.Is(err, model.ErrRoomConflict))
}

func TestBookingService_Update(t *testing.T) {
	current := booking(bookingID, model.StatusPending, day(10), day(12))
	current.UserID = ptr(guestID)

	tests := []struct {
		name      string
		ctx       context.Context
		req       dto.UpdateBookingRequest
		setupMock func(f fixture)
		wantErr   error
		check     func(t *testing.T, res dto.BookingResponse)
	}{
		{
			name: "notes only skips the schedule",
			ctx:  withPrincipal(guestID, constant.RoleNormal),
			req:  dto.UpdateBookingRequest{Notes: ptr("late arrival")},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, "late arrival", fields[model.FieldNotes])
						assert.NotContains(t, fields, model.FieldCheckIn)

						return nil
					})
				f.publisher.EXPECT().Publish(gomock.Any(), "booking.updated", gomock.Any())
			},
			check: func(t *testing.T, res dto.BookingResponse) {
				t.Helper()
				require.NotNil(t, res.Notes)
				assert.Equal(t, "late arrival", *res.Notes)
			},
		},
		{
			name: "empty notes leave the booking as stored",
			ctx:  asAdmin(),
			req:  dto.UpdateBookingRequest{Notes: ptr("")},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
			},
			check: func(t *testing.T, res dto.BookingResponse) {
				t.Helper()

				var want dto.BookingResponse
				want.FromModel(current)

				assert.Equal(t, want, res)
			},
		},
		{
			name: "empty patch on an unknown booking",
			ctx:  asAdmin(),
			req:  dto.UpdateBookingRequest{},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)
			},
			wantErr: model.ErrBookingNotFound,
		},
		{
			name: "whitespace notes are stored as given",
			ctx:  asAdmin(),
			req:  dto.UpdateBookingRequest{Notes: ptr("   ")},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, "   ", fields[model.FieldNotes])

						return nil
					})
				f.publisher.EXPECT().Publish(gomock.Any(), "booking.updated", gomock.Any())
			},
			check: func(t *testing.T, res dto.BookingResponse) {
				t.Helper()
				require.NotNil(t, res.Notes)
				assert.Equal(t, "   ", *res.Notes)
			},
		},
		{
			name: "moving a booking is checked against the rest of the schedule",
			ctx:  asAdmin(),
			req:  dto.UpdateBookingRequest{CheckOut: ptr(day(13))},
			setupMock: func(f fixture) {
				f.repo.EXPECT().LockTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(current, nil)
				f.expectRoom(bookableRoom())
				f.expectSchedule(current, booking(otherID, model.StatusConfirmed, day(13), day(15)))
				f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, day(13), fields[model.FieldCheckOut])
						assert.NotContains(t, fields, model.FieldCheckIn)

						return nil
					})
				f.publisher.EXPECT().Publish(gomock.Any(), "booking.updated", gomock.Any())
			},
			check: func(t *testing.T, res dto.BookingResponse) {
				t.Helper()
				assert.Equal(t, bookingID, res.ID)
			},
		},
		{
			name: "moving onto another stay conflicts",
			ctx:  asAdmin(),
			req:  dto.UpdateBookingRequest{CheckOut: ptr(day(14))},
			setupMock: func(f fixture) {
				f.repo.EXPECT().LockTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(current, nil)
				f.expectRoom(bookableRoom())
				f.expectSchedule(current, booking(otherID, model.StatusConfirmed, day(13), day(15)))
			},
			wantErr: model.ErrRoomConflict,
		},
		{
			name: "new check in after the stored check out",
			ctx:  asAdmin(),
			req:  dto.UpdateBookingRequest{CheckIn: ptr(day(12))},
			setupMock: func(f fixture) {
				f.repo.EXPECT().LockTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(current, nil)
				f.expectRoom(bookableRoom())
			},
			wantErr: model.ErrInvalidInterval,
		},
		{
			name: "guests above the current capacity",
			ctx:  asAdmin(),
			req:  dto.UpdateBookingRequest{Guests: ptr(3)},
			setupMock: func(f fixture) {
				f.repo.EXPECT().LockTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(current, nil)
				f.expectRoom(bookableRoom())
			},
			wantErr: model.ErrCapacityExceeded,
		},
		{
			name: "unknown booking",
			ctx:  asAdmin(),
			req:  dto.UpdateBookingRequest{Guests: ptr(1)},
			setupMock: func(f fixture) {
				f.repo.EXPECT().LockTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)
			},
			wantErr: model.ErrBookingNotFound,
		},
		{
			name: "someone else's booking",
			ctx:  withPrincipal(otherID, constant.RoleNormal),
			req:  dto.UpdateBookingRequest{Notes: ptr("mine now")},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
			},
			wantErr: failure.ResourceRestrictedError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Update(tt.ctx, tt.req, bookingID)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)

			if tt.check != nil {
				tt.check(t, res)
			}
		})
	}
}

func TestBookingService_Cancel(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		current   model.Booking
		wantErr   error
		wantWrite bool
	}{
		{
			name:      "pending booking",
			ctx:       asAdmin(),
			current:   booking(bookingID, model.StatusPending, day(3), day(5)),
			wantWrite: true,
		},
		{
			name:      "confirmed booking",
			ctx:       asAdmin(),
			current:   booking(bookingID, model.StatusConfirmed, day(3), day(5)),
			wantWrite: true,
		},
		{
			name:    "already cancelled",
			ctx:     asAdmin(),
			current: booking(bookingID, model.StatusCancelled, day(3), day(5)),
			wantErr: model.ErrAlreadyCancelled,
		},
		{
			name:    "unknown booking",
			ctx:     asAdmin(),
			current: model.Booking{},
			wantErr: model.ErrBookingNotFound,
		},
		{
			name: "owner cancels",
			ctx:  withPrincipal(guestID, constant.RoleNormal),
			current: func() model.Booking {
				b := booking(bookingID, model.StatusPending, day(3), day(5))
				b.CreatedBy = guestID

				return b
			}(),
			wantWrite: true,
		},
		{
			name:    "stranger cannot cancel",
			ctx:     withPrincipal(guestID, constant.RoleNormal),
			current: booking(bookingID, model.StatusPending, day(3), day(5)),
			wantErr: failure.ResourceRestrictedError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.repo.EXPECT().LockTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(tt.current, nil)

			if tt.wantWrite {
				f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, model.StatusCancelled, fields[model.FieldStatus])

						return nil
					})
				f.publisher.EXPECT().Publish(gomock.Any(), "booking.cancelled", gomock.Any())
			}

			res, err := f.svc.Cancel(tt.ctx, bookingID)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, model.StatusCancelled, res.Status)
		})
	}
}

func TestBookingService_Confirm(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		current   model.Booking
		wantErr   error
		wantWrite bool
	}{
		{
			name:      "pending booking",
			ctx:       withPrincipal("manager-id", constant.RoleManager),
			current:   booking(bookingID, model.StatusPending, day(3), day(5)),
			wantWrite: true,
		},
		{
			name:    "already confirmed",
			ctx:     asAdmin(),
			current: booking(bookingID, model.StatusConfirmed, day(3), day(5)),
			wantErr: model.ErrInvalidTransition,
		},
		{
			name:    "cancelled is terminal",
			ctx:     asAdmin(),
			current: booking(bookingID, model.StatusCancelled, day(3), day(5)),
			wantErr: model.ErrInvalidTransition,
		},
		{
			name:    "unknown booking",
			ctx:     asAdmin(),
			current: model.Booking{},
			wantErr: model.ErrBookingNotFound,
		},
		{
			name: "owner cannot confirm",
			ctx:  withPrincipal(guestID, constant.RoleNormal),
			current: func() model.Booking {
				b := booking(bookingID, model.StatusPending, day(3), day(5))
				b.UserID = ptr(guestID)

				return b
			}(),
			wantErr: failure.ResourceRestrictedError,
		},
		{
			name:      "system caller",
			ctx:       withPrincipal(constant.ContextSystem, constant.ContextSystem),
			current:   booking(bookingID, model.StatusPending, day(3), day(5)),
			wantWrite: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.repo.EXPECT().LockTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(tt.current, nil)

			if tt.wantWrite {
				f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				f.publisher.EXPECT().Publish(gomock.Any(), "booking.confirmed", gomock.Any())
			}

			res, err := f.svc.Confirm(tt.ctx, bookingID)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, model.StatusConfirmed, res.Status)
		})
	}
}

func TestBookingService_Delete(t *testing.T) {
	stored := booking(bookingID, model.StatusConfirmed, day(3), day(5))

	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(f fixture)
		want      bool
		wantErr   error
	}{
		{
			name: "existing booking",
			ctx:  asAdmin(),
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
				f.repo.EXPECT().Remove(gomock.Any(), gomock.Any()).Return(true, nil)
				f.publisher.EXPECT().Publish(gomock.Any(), "booking.deleted", gomock.Any())
			},
			want: true,
		},
		{
			name: "missing booking",
			ctx:  asAdmin(),
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)
			},
			want: false,
		},
		{
			name: "manager cannot delete",
			ctx:  withPrincipal("manager-id", constant.RoleManager),
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
			},
			wantErr: failure.ResourceRestrictedError,
		},
		{
			name: "storage error",
			ctx:  asAdmin(),
			setupMock: func(f fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
				f.repo.EXPECT().Remove(gomock.Any(), gomock.Any()).Return(false, errDatabase)
			},
			wantErr: errDatabase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			existed, err := f.svc.Delete(tt.ctx, bookingID)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, existed)
		})
	}
}

func TestBookingService_Get(t *testing.T) {
	stored := booking(bookingID, model.StatusPending, day(3), day(5))

	tests := []struct {
		name      string
		setupMock func(f fixture)
		wantErr   error
	}{
		{
			name: "cache miss reads the repository",
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), "booking:get:"+bookingID, gomock.Any()).Return(errors.New("miss"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(stored, nil)
			},
		},
		{
			name: "unknown booking",
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, nil)
			},
			wantErr: model.ErrBookingNotFound,
		},
		{
			name: "repository error",
			setupMock: func(f fixture) {
				f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Booking{}, errDatabase)
			},
			wantErr: errDatabase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Get(context.Background(), bookingID)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, bookingID, res.ID)
		})
	}
}

func TestBookingService_GetAll(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss")).Times(2)
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Booking{
		booking(bookingID, model.StatusPending, day(3), day(5)),
	}, nil)

	res, err := f.svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 2}, gDto.FilterGroup{})

	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
	assert.Len(t, res.Bookings, 1)
}
