package dto

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"hotel/internal/domains/room/model"
	"hotel/shared"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	gModel "hotel/shared/model"
	"hotel/shared/timezone"

	"github.com/google/uuid"
)

type CreateRoomRequest struct {
	RoomNumber         string                `json:"room_number"          validate:"required,max=10"`
	Floor              *int                  `json:"floor"                validate:"omitempty"`
	Type               string                `json:"type"                 validate:"required,oneof=Single Double Twin Suite Deluxe Family"`
	Description        *string               `json:"description"          validate:"omitempty,max=1000"`
	PricePerNight      float64               `json:"price_per_night"      validate:"required,gt=0"`
	Currency           string                `json:"currency"             validate:"omitempty,len=3"`
	Capacity           int                   `json:"capacity"             validate:"omitempty,min=1"`
	IsAvailable        *bool                 `json:"is_available"         validate:"omitempty"`
	IsUnderMaintenance *bool                 `json:"is_under_maintenance" validate:"omitempty"`
	HasOffer           *bool                 `json:"has_offer"            validate:"omitempty"`
	DiscountPercent    float64               `json:"discount_percent"     validate:"omitempty,min=0,max=100"`
	Image              *multipart.FileHeader `json:"image"                validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile          multipart.File        `json:"-"`
}

// FromForm reads the room fields from a parsed multipart form.
func (c *CreateRoomRequest) FromForm(r *http.Request) error {
	var err error

	c.RoomNumber = r.FormValue(model.FieldRoomNumber)
	c.Type = r.FormValue(model.FieldType)
	c.Currency = r.FormValue(model.FieldCurrency)
	c.Description = formString(r, model.FieldDescription)
	c.IsAvailable = shared.ConvertStringToBool(r.FormValue(model.FieldIsAvailable))
	c.IsUnderMaintenance = shared.ConvertStringToBool(r.FormValue(model.FieldIsUnderMaintenance))
	c.HasOffer = shared.ConvertStringToBool(r.FormValue(model.FieldHasOffer))

	if c.Floor, err = formInt(r, model.FieldFloor); err != nil {
		return err
	}

	if capacity, err := formInt(r, model.FieldCapacity); err != nil {
		return err
	} else if capacity != nil {
		c.Capacity = *capacity
	}

	if price, err := formFloat(r, model.FieldPricePerNight); err != nil {
		return err
	} else if price != nil {
		c.PricePerNight = *price
	}

	if discount, err := formFloat(r, model.FieldDiscountPercent); err != nil {
		return err
	} else if discount != nil {
		c.DiscountPercent = *discount
	}

	return nil
}

// ToModel builds a new room. A room created under maintenance is never available.
func (c *CreateRoomRequest) ToModel(user string, imageURL string) model.Room {
	capacity := c.Capacity
	if capacity == 0 {
		capacity = model.DefaultCapacity
	}

	currency := c.Currency
	if currency == constant.Empty {
		currency = model.DefaultCurrency
	}

	available := true
	if c.IsAvailable != nil {
		available = *c.IsAvailable
	}

	maintenance := c.IsUnderMaintenance != nil && *c.IsUnderMaintenance
	if maintenance {
		available = false
	}

	now := timezone.Now()

	return model.Room{
		ID:                 uuid.NewString(),
		RoomNumber:         c.RoomNumber,
		Floor:              c.Floor,
		Type:               c.Type,
		Description:        c.Description,
		PricePerNight:      c.PricePerNight,
		Currency:           currency,
		Capacity:           capacity,
		IsAvailable:        available,
		IsUnderMaintenance: maintenance,
		HasOffer:           c.HasOffer != nil && *c.HasOffer,
		DiscountPercent:    c.DiscountPercent,
		Image:              imageURL,
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateRoomRequest struct {
	RoomNumber         string                `db:"room_number"          json:"room_number"          validate:"omitempty,max=10"`
	Floor              *int                  `db:"floor"                json:"floor"                validate:"omitempty"`
	Type               string                `db:"type"                 json:"type"                 validate:"omitempty,oneof=Single Double Twin Suite Deluxe Family"`
	Description        *string               `db:"description"          json:"description"          validate:"omitempty,max=1000"`
	PricePerNight      *float64              `db:"price_per_night"      json:"price_per_night"      validate:"omitempty,gt=0"`
	Currency           string                `db:"currency"             json:"currency"             validate:"omitempty,len=3"`
	Capacity           *int                  `db:"capacity"             json:"capacity"             validate:"omitempty,min=1"`
	IsAvailable        *bool                 `db:"is_available"         json:"is_available"         validate:"omitempty"`
	IsUnderMaintenance *bool                 `db:"is_under_maintenance" json:"is_under_maintenance" validate:"omitempty"`
	HasOffer           *bool                 `db:"has_offer"            json:"has_offer"            validate:"omitempty"`
	DiscountPercent    *float64              `db:"discount_percent"     json:"discount_percent"     validate:"omitempty,min=0,max=100"`
	Image              *multipart.FileHeader `json:"image"              validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile          multipart.File        `json:"-"`
}

func (u *UpdateRoomRequest) FromForm(r *http.Request) error {
	var err error

	u.RoomNumber = r.FormValue(model.FieldRoomNumber)
	u.Type = r.FormValue(model.FieldType)
	u.Currency = r.FormValue(model.FieldCurrency)
	u.Description = formString(r, model.FieldDescription)
	u.IsAvailable = shared.ConvertStringToBool(r.FormValue(model.FieldIsAvailable))
	u.IsUnderMaintenance = shared.ConvertStringToBool(r.FormValue(model.FieldIsUnderMaintenance))
	u.HasOffer = shared.ConvertStringToBool(r.FormValue(model.FieldHasOffer))

	if u.Floor, err = formInt(r, model.FieldFloor); err != nil {
		return err
	}

	if u.Capacity, err = formInt(r, model.FieldCapacity); err != nil {
		return err
	}

	if u.PricePerNight, err = formFloat(r, model.FieldPricePerNight); err != nil {
		return err
	}

	if u.DiscountPercent, err = formFloat(r, model.FieldDiscountPercent); err != nil {
		return err
	}

	return nil
}

func (u *UpdateRoomRequest) IsEmpty() bool {
	return u.RoomNumber == constant.Empty && u.Floor == nil && u.Type == constant.Empty && u.Description == nil &&
		u.PricePerNight == nil && u.Currency == constant.Empty && u.Capacity == nil && u.IsAvailable == nil &&
		u.IsUnderMaintenance == nil && u.HasOffer == nil && u.DiscountPercent == nil && u.Image == nil
}

// ResolveAvailability enforces that a room under maintenance is never available. Turning
// maintenance on clears availability; asking for availability on a room that stays under
// maintenance is rejected.
func (u *UpdateRoomRequest) ResolveAvailability(current model.Room) error {
	maintenance := current.IsUnderMaintenance
	if u.IsUnderMaintenance != nil {
		maintenance = *u.IsUnderMaintenance
	}

	if !maintenance {
		return nil
	}

	if u.IsAvailable != nil && *u.IsAvailable {
		return model.ErrUnderMaintenance
	}

	if current.IsAvailable || u.IsAvailable != nil {
		unavailable := false
		u.IsAvailable = &unavailable
	}

	return nil
}

// Apply returns current with the present fields of the update written over it.
func (u *UpdateRoomRequest) Apply(current model.Room, user string) model.Room {
	if u.RoomNumber != constant.Empty {
		current.RoomNumber = u.RoomNumber
	}

	if u.Floor != nil {
		current.Floor = u.Floor
	}

	if u.Type != constant.Empty {
		current.Type = u.Type
	}

	if u.Description != nil {
		current.Description = u.Description
	}

	if u.PricePerNight != nil {
		current.PricePerNight = *u.PricePerNight
	}

	if u.Currency != constant.Empty {
		current.Currency = u.Currency
	}

	if u.Capacity != nil {
		current.Capacity = *u.Capacity
	}

	if u.IsAvailable != nil {
		current.IsAvailable = *u.IsAvailable
	}

	if u.IsUnderMaintenance != nil {
		current.IsUnderMaintenance = *u.IsUnderMaintenance
	}

	if u.HasOffer != nil {
		current.HasOffer = *u.HasOffer
	}

	if u.DiscountPercent != nil {
		current.DiscountPercent = *u.DiscountPercent
	}

	current.ModifiedAt = timezone.Now()
	current.ModifiedBy = user

	return current
}

type AvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" validate:"required"`
}

type MaintenanceRequest struct {
	IsUnderMaintenance *bool `json:"is_under_maintenance" validate:"required"`
}

type RoomResponse struct {
	ID                 string  `json:"id"`
	RoomNumber         string  `json:"room_number"`
	Floor              *int    `json:"floor"`
	Type               string  `json:"type"`
	Description        *string `json:"description"`
	PricePerNight      float64 `json:"price_per_night"`
	Currency           string  `json:"currency"`
	Capacity           int     `json:"capacity"`
	IsAvailable        bool    `json:"is_available"`
	IsUnderMaintenance bool    `json:"is_under_maintenance"`
	HasOffer           bool    `json:"has_offer"`
	DiscountPercent    float64 `json:"discount_percent"`
	Image              string  `json:"image"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.RoomNumber = model.RoomNumber
	r.Floor = model.Floor
	r.Type = model.Type
	r.Description = model.Description
	r.PricePerNight = model.PricePerNight
	r.Currency = model.Currency
	r.Capacity = model.Capacity
	r.IsAvailable = model.IsAvailable
	r.IsUnderMaintenance = model.IsUnderMaintenance
	r.HasOffer = model.HasOffer
	r.DiscountPercent = model.DiscountPercent
	r.Image = model.Image
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}

func formString(r *http.Request, key string) *string {
	value := r.FormValue(key)
	if value == constant.Empty {
		return nil
	}

	return &value
}

func formInt(r *http.Request, key string) (*int, error) {
	value := r.FormValue(key)
	if value == constant.Empty {
		return nil, nil
	}

	parsed, err := shared.ConvertStringToInt(value)
	if err != nil {
		return nil, failure.BadRequestFromString(fmt.Sprintf("invalid %s", key))
	}

	return &parsed, nil
}

func formFloat(r *http.Request, key string) (*float64, error) {
	value := r.FormValue(key)
	if value == constant.Empty {
		return nil, nil
	}

	parsed, err := shared.ConvertStringToFloat(value)
	if err != nil {
		return nil, failure.BadRequestFromString(fmt.Sprintf("invalid %s", key))
	}

	return &parsed, nil
}
