package service_test

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"testing"

	"hotel/config"
	otelMocks "hotel/infras/otel/mocks"
	s3Mocks "hotel/infras/s3/mocks"
	roomMocks "hotel/internal/domains/room/mocks"
	"hotel/internal/domains/room/model"
	"hotel/internal/domains/room/model/dto"
	"hotel/internal/domains/room/service"
	cacheMocks "hotel/shared/cache/mocks"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	gRepo "hotel/shared/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const roomID = "8f14e45f-ceea-467f-a0e6-9b3c5b0a1c11"

type fixture struct {
	svc   service.Room
	repo  *roomMocks.MockRoom
	s3    *s3Mocks.MockS3
	cache *cacheMocks.MockRedisCache
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		repo:  roomMocks.NewMockRoom(ctrl),
		s3:    s3Mocks.NewMockS3(ctrl),
		cache: cacheMocks.NewMockRedisCache(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.External.S3.BucketName = "rooms"

	f.svc = service.New(f.repo, cfg, f.cache, otelMocks.NewOtel(), f.s3)

	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return f
}

func ctx() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-id")
}

func storedRoom() model.Room {
	return model.Room{
		ID:            roomID,
		RoomNumber:    "101",
		Type:          model.TypeDouble,
		PricePerNight: 120,
		Currency:      model.DefaultCurrency,
		Capacity:      2,
		IsAvailable:   true,
		Image:         "https://rooms.s3.amazonaws.com/room/old.png",
	}
}

func TestRoomService_Create(t *testing.T) {
	t.Run("stores a new room", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		res, err := f.svc.Create(ctx(), dto.CreateRoomRequest{RoomNumber: "101", Type: model.TypeSuite, PricePerNight: 300})

		require.NoError(t, err)
		assert.Equal(t, "101", res.RoomNumber)
		assert.Equal(t, model.DefaultCapacity, res.Capacity)
		assert.True(t, res.IsAvailable)
	})

	t.Run("room number already used", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		_, err := f.svc.Create(ctx(), dto.CreateRoomRequest{RoomNumber: "101", Type: model.TypeSuite, PricePerNight: 300})

		assert.ErrorIs(t, err, model.ErrRoomNumberTaken)
	})

	t.Run("unique violation from a concurrent insert", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
			Return(fmt.Errorf("failed to insert data (room): %w", gRepo.ErrUniqueViolation))

		_, err := f.svc.Create(ctx(), dto.CreateRoomRequest{RoomNumber: "101", Type: model.TypeSuite, PricePerNight: 300})

		assert.ErrorIs(t, err, model.ErrRoomNumberTaken)
	})

	t.Run("uploaded image is removed when the insert fails", func(t *testing.T) {
		f := newFixture(t)

		header := &multipart.FileHeader{Filename: "suite.png"}

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.s3.EXPECT().UploadFile(gomock.Any(), "rooms", model.EntityName, gomock.Any(), header, gomock.Any()).
			Return("https://rooms.s3.amazonaws.com/room/new.png", nil)
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))
		f.s3.EXPECT().DeleteFile(gomock.Any(), "rooms", model.EntityName, gomock.Any()).Return(nil)

		_, err := f.svc.Create(ctx(), dto.CreateRoomRequest{RoomNumber: "101", Type: model.TypeSuite, PricePerNight: 300, Image: header})

		assert.Error(t, err)
	})
}

func TestRoomService_Update(t *testing.T) {
	t.Run("entering maintenance clears availability", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storedRoom(), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, false, *(fields[model.FieldIsAvailable].(*bool)))
				assert.Equal(t, true, *(fields[model.FieldIsUnderMaintenance].(*bool)))

				return nil
			})

		maintenance := true
		res, err := f.svc.Update(ctx(), dto.UpdateRoomRequest{IsUnderMaintenance: &maintenance}, roomID)

		require.NoError(t, err)
		assert.False(t, res.IsAvailable)
		assert.True(t, res.IsUnderMaintenance)
	})

	t.Run("empty update", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Update(ctx(), dto.UpdateRoomRequest{}, roomID)

		assert.ErrorIs(t, err, model.ErrEmptyUpdateRequest)
	})

	t.Run("unknown room", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)

		capacity := 3
		_, err := f.svc.Update(ctx(), dto.UpdateRoomRequest{Capacity: &capacity}, roomID)

		assert.ErrorIs(t, err, model.ErrRoomNotFound)
	})

	t.Run("new image replaces the old one", func(t *testing.T) {
		f := newFixture(t)

		header := &multipart.FileHeader{Filename: "new.png"}

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storedRoom(), nil)
		f.s3.EXPECT().UploadFile(gomock.Any(), "rooms", model.EntityName, gomock.Any(), header, gomock.Any()).
			Return("https://rooms.s3.amazonaws.com/room/new.png", nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.s3.EXPECT().GetObjectNameFromURL("rooms", storedRoom().Image).Return("old.png")
		f.s3.EXPECT().DeleteFile(gomock.Any(), "rooms", model.EntityName, "old.png").Return(nil)

		res, err := f.svc.Update(ctx(), dto.UpdateRoomRequest{Image: header}, roomID)

		require.NoError(t, err)
		assert.Equal(t, "https://rooms.s3.amazonaws.com/room/new.png", res.Image)
	})
}

func TestRoomService_SetAvailability(t *testing.T) {
	t.Run("room under maintenance stays unavailable", func(t *testing.T) {
		f := newFixture(t)

		room := storedRoom()
		room.IsAvailable = false
		room.IsUnderMaintenance = true

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(room, nil)

		_, err := f.svc.SetAvailability(ctx(), roomID, true)

		assert.ErrorIs(t, err, model.ErrUnderMaintenance)
	})

	t.Run("marks a room unavailable", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storedRoom(), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		res, err := f.svc.SetAvailability(ctx(), roomID, false)

		require.NoError(t, err)
		assert.False(t, res.IsAvailable)
	})
}

func TestRoomService_SetMaintenance(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storedRoom(), nil)
	f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	res, err := f.svc.SetMaintenance(ctx(), roomID, true)

	require.NoError(t, err)
	assert.True(t, res.IsUnderMaintenance)
	assert.False(t, res.IsAvailable)
}

func TestRoomService_GetAvailable(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss")).Times(2)
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup, _ ...string) ([]model.Room, error) {
			where, args := filter.GetWhereClause()

			assert.Equal(t, "(rooms.is_available = :is_available AND rooms.is_under_maintenance = :is_under_maintenance)", where)
			assert.Equal(t, true, args[model.FieldIsAvailable])
			assert.Equal(t, false, args[model.FieldIsUnderMaintenance])

			return []model.Room{storedRoom()}, nil
		})

	res, err := f.svc.GetAvailable(ctx(), gDto.QueryParams{Page: 1, Limit: 10})

	require.NoError(t, err)
	assert.Len(t, res.Rooms, 1)
}

func TestRoomService_Delete(t *testing.T) {
	t.Run("removes the room and its image", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storedRoom(), nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
		f.s3.EXPECT().GetObjectNameFromURL("rooms", storedRoom().Image).Return("old.png")
		f.s3.EXPECT().DeleteFile(gomock.Any(), "rooms", model.EntityName, "old.png").Return(nil)

		assert.NoError(t, f.svc.Delete(ctx(), roomID))
	})

	t.Run("unknown room", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Room{}, nil)

		assert.ErrorIs(t, f.svc.Delete(ctx(), roomID), model.ErrRoomNotFound)
	})
}
