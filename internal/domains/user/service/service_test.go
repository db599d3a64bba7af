package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"hotel/config"
	"hotel/infras/otel/mocks"
	userMocks "hotel/internal/domains/user/mocks"
	"hotel/internal/domains/user/model"
	"hotel/internal/domains/user/model/dto"
	"hotel/internal/domains/user/service"
	cacheMocks "hotel/shared/cache/mocks"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	gRepo "hotel/shared/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newService(t *testing.T) (service.User, *userMocks.MockUser, *cacheMocks.MockRedisCache) {
	t.Helper()

	ctrl := gomock.NewController(t)

	mockRepo := userMocks.NewMockUser(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return service.New(mockRepo, cfg, mockCache, mocks.NewOtel()), mockRepo, mockCache
}

func adminContext() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-id")
}

func TestUserService_Create(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(repo *userMocks.MockUser)
		wantErr   error
	}{
		{
			name: "new user",
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, user model.User) error {
					assert.Equal(t, constant.RoleNormal, user.Level)
					assert.Equal(t, "admin-id", user.CreatedBy)
					assert.NotEqual(t, "password123", user.Password)

					return nil
				})
			},
		},
		{
			name: "email already registered",
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantErr: model.ErrEmailTaken,
		},
		{
			name: "email registered concurrently",
			setupMock: func(repo *userMocks.MockUser) {
				repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
					Return(fmt.Errorf("failed to insert data (user): %w", gRepo.ErrUniqueViolation))
			},
			wantErr: model.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newService(t)
			tt.setupMock(repo)

			err := svc.Create(adminContext(), dto.CreateUserRequest{Email: "guest@example.com", Password: "password123"})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestUserService_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc, repo, cache := newService(t)

		cache.EXPECT().Get(gomock.Any(), "user:get:user-1", gomock.Any()).Return(errors.New("miss"))
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{ID: "user-1", Email: "guest@example.com", Level: constant.RoleNormal}, nil)

		res, err := svc.Get(context.Background(), "user-1")

		require.NoError(t, err)
		assert.Equal(t, "guest@example.com", res.Email)
	})

	t.Run("not found", func(t *testing.T) {
		svc, repo, cache := newService(t)

		cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)

		_, err := svc.Get(context.Background(), "user-1")

		assert.ErrorIs(t, err, model.ErrUserNotFound)
	})
}

func TestUserService_Update(t *testing.T) {
	role := constant.RoleManager

	t.Run("writes present fields", func(t *testing.T) {
		svc, repo, _ := newService(t)

		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, &role, fields[model.FieldLevel])
				assert.NotContains(t, fields, model.FieldFullName)
				assert.Equal(t, "admin-id", fields[constant.FieldModifiedBy])

				return nil
			})

		assert.NoError(t, svc.Update(adminContext(), dto.UpdateUserRequest{Level: &role}, "user-1"))
	})

	t.Run("empty request", func(t *testing.T) {
		svc, _, _ := newService(t)

		assert.ErrorIs(t, svc.Update(adminContext(), dto.UpdateUserRequest{}, "user-1"), model.ErrEmptyUpdateRequest)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, repo, _ := newService(t)

		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		assert.ErrorIs(t, svc.Update(adminContext(), dto.UpdateUserRequest{Level: &role}, "user-1"), model.ErrUserNotFound)
	})
}

func TestUserService_Delete(t *testing.T) {
	svc, repo, _ := newService(t)

	repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

	assert.NoError(t, svc.Delete(adminContext(), "user-1"))
}
