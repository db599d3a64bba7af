package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	otelMocks "hotel/infras/otel/mocks"
	bookingMocks "hotel/internal/domains/booking/mocks"
	"hotel/internal/domains/booking/model"
	"hotel/internal/domains/booking/service"
	"hotel/shared/constant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAvailability_Available(t *testing.T) {
	schedule := []model.Booking{
		booking(bookingID, model.StatusConfirmed, day(10), day(12)),
		booking(otherID, model.StatusCancelled, day(14), day(16)),
	}

	tests := []struct {
		name      string
		checkIn   time.Time
		checkOut  time.Time
		excludeID string
		want      bool
	}{
		{name: "ends when the stay begins", checkIn: day(8), checkOut: day(10), want: true},
		{name: "begins when the stay ends", checkIn: day(12), checkOut: day(14), want: true},
		{name: "same interval", checkIn: day(10), checkOut: day(12), want: false},
		{name: "inside the stay", checkIn: day(10).Add(time.Hour), checkOut: day(11), want: false},
		{name: "wraps the stay", checkIn: day(9), checkOut: day(13), want: false},
		{name: "overlaps the start", checkIn: day(9), checkOut: day(11), want: false},
		{name: "overlaps the end", checkIn: day(11), checkOut: day(13), want: false},
		{name: "excluding the stay itself", checkIn: day(9), checkOut: day(13), excludeID: bookingID, want: true},
		{name: "cancelled stays are free", checkIn: day(14), checkOut: day(16), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := bookingMocks.NewMockBooking(ctrl)

			repo.EXPECT().
				FindByRoom(gomock.Any(), gomock.Nil(), roomID, model.ActiveStatuses).
				Return(schedule, nil)

			availability := service.NewAvailability(repo, otelMocks.NewOtel())

			got, err := availability.Available(context.Background(), roomID, tt.checkIn, tt.checkOut, tt.excludeID)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAvailability_RepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := bookingMocks.NewMockBooking(ctrl)

	repo.EXPECT().
		FindByRoom(gomock.Any(), gomock.Any(), roomID, gomock.Any()).
		Return(nil, errDatabase)

	availability := service.NewAvailability(repo, otelMocks.NewOtel())

	got, err := availability.AvailableTx(context.Background(), nil, roomID, day(1), day(2), constant.Empty)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errDatabase))
	assert.False(t, got)
}
