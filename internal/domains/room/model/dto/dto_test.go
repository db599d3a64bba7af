package dto_test

import (
	"errors"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"hotel/internal/domains/room/model"
	"hotel/internal/domains/room/model/dto"
	"hotel/shared/constant"
	gModel "hotel/shared/model"
	"hotel/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool {
	return &v
}

func TestCreateRoomRequest_ToModel(t *testing.T) {
	req := dto.CreateRoomRequest{
		RoomNumber:    "101",
		Type:          model.TypeDouble,
		PricePerNight: 120,
	}

	room := req.ToModel("test-user", "https://cdn.example.com/room/a.png")

	assert.NotEmpty(t, room.ID)
	assert.Equal(t, "101", room.RoomNumber)
	assert.Equal(t, model.DefaultCapacity, room.Capacity)
	assert.Equal(t, model.DefaultCurrency, room.Currency)
	assert.True(t, room.IsAvailable)
	assert.False(t, room.IsUnderMaintenance)
	assert.True(t, room.IsBookable())
	assert.Equal(t, "https://cdn.example.com/room/a.png", room.Image)
	assert.Equal(t, "test-user", room.CreatedBy)
}

func TestCreateRoomRequest_ToModel_MaintenanceForcesUnavailable(t *testing.T) {
	req := dto.CreateRoomRequest{
		RoomNumber:         "102",
		Type:               model.TypeSuite,
		PricePerNight:      300,
		IsAvailable:        boolPtr(true),
		IsUnderMaintenance: boolPtr(true),
	}

	room := req.ToModel("test-user", constant.Empty)

	assert.False(t, room.IsAvailable)
	assert.True(t, room.IsUnderMaintenance)
	assert.False(t, room.IsBookable())
}

func TestCreateRoomRequest_FromForm(t *testing.T) {
	form := url.Values{}
	form.Set("room_number", "201")
	form.Set("type", "Twin")
	form.Set("price_per_night", "99.5")
	form.Set("capacity", "3")
	form.Set("floor", "2")
	form.Set("is_under_maintenance", "true")

	r := httptest.NewRequest("POST", "/v1/rooms", strings.NewReader(form.Encode()))
	r.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeFormURLEncoded)

	var req dto.CreateRoomRequest
	require.NoError(t, req.FromForm(r))

	assert.Equal(t, "201", req.RoomNumber)
	assert.Equal(t, "Twin", req.Type)
	assert.Equal(t, 99.5, req.PricePerNight)
	assert.Equal(t, 3, req.Capacity)
	assert.Equal(t, 2, *req.Floor)
	assert.True(t, *req.IsUnderMaintenance)
	assert.Nil(t, req.IsAvailable)
}

func TestCreateRoomRequest_FromForm_InvalidNumber(t *testing.T) {
	form := url.Values{}
	form.Set("capacity", "many")

	r := httptest.NewRequest("POST", "/v1/rooms", strings.NewReader(form.Encode()))
	r.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeFormURLEncoded)

	var req dto.CreateRoomRequest
	assert.Error(t, req.FromForm(r))
}

func TestUpdateRoomRequest_ResolveAvailability(t *testing.T) {
	available := model.Room{IsAvailable: true}
	underMaintenance := model.Room{IsUnderMaintenance: true}

	tests := []struct {
		name          string
		current       model.Room
		req           dto.UpdateRoomRequest
		wantErr       error
		wantAvailable *bool
	}{
		{
			name:          "maintenance on clears availability",
			current:       available,
			req:           dto.UpdateRoomRequest{IsUnderMaintenance: boolPtr(true)},
			wantAvailable: boolPtr(false),
		},
		{
			name:    "available while maintenance stays on",
			current: underMaintenance,
			req:     dto.UpdateRoomRequest{IsAvailable: boolPtr(true)},
			wantErr: model.ErrUnderMaintenance,
		},
		{
			name:          "available with maintenance turned off",
			current:       underMaintenance,
			req:           dto.UpdateRoomRequest{IsAvailable: boolPtr(true), IsUnderMaintenance: boolPtr(false)},
			wantAvailable: boolPtr(true),
		},
		{
			name:    "unrelated field",
			current: available,
			req:     dto.UpdateRoomRequest{Currency: "EUR"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.ResolveAvailability(tt.current)

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantAvailable, tt.req.IsAvailable)
		})
	}
}

func TestUpdateRoomRequest_IsEmpty(t *testing.T) {
	assert.True(t, (&dto.UpdateRoomRequest{}).IsEmpty())
	assert.False(t, (&dto.UpdateRoomRequest{HasOffer: boolPtr(false)}).IsEmpty())
}

func TestRoomResponse_FromModel(t *testing.T) {
	now := timezone.Now()
	room := model.Room{
		ID:            "room-id",
		RoomNumber:    "301",
		Type:          model.TypeFamily,
		PricePerNight: 180,
		Currency:      "USD",
		Capacity:      4,
		IsAvailable:   true,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  "test-user",
			ModifiedBy: "test-user",
		},
	}

	var response dto.RoomResponse
	response.FromModel(room)

	assert.Equal(t, room.ID, response.ID)
	assert.Equal(t, room.RoomNumber, response.RoomNumber)
	assert.Equal(t, room.Type, response.Type)
	assert.Equal(t, 4, response.Capacity)
	assert.True(t, response.IsAvailable)
	assert.Equal(t, "test-user", response.CreatedBy)

	var list dto.GetRoomsResponse
	list.FromModels([]model.Room{room}, 11, 10)

	assert.Len(t, list.Rooms, 1)
	assert.Equal(t, 2, list.TotalPage)
}

func TestUpdateRoomRequest_Apply(t *testing.T) {
	capacity := 4
	current := model.Room{ID: "room-1", RoomNumber: "101", Capacity: 2, IsAvailable: true, Currency: "USD"}

	req := dto.UpdateRoomRequest{Capacity: &capacity, IsUnderMaintenance: boolPtr(true), IsAvailable: boolPtr(false)}
	updated := req.Apply(current, "manager")

	assert.Equal(t, "101", updated.RoomNumber)
	assert.Equal(t, 4, updated.Capacity)
	assert.True(t, updated.IsUnderMaintenance)
	assert.False(t, updated.IsAvailable)
	assert.False(t, updated.IsBookable())
	assert.Equal(t, "manager", updated.ModifiedBy)
}
