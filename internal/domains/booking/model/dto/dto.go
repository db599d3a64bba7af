package dto

import (
	"fmt"
	"net/http"
	"time"

	"hotel/internal/domains/booking/model"
	"hotel/shared"
	"hotel/shared/constant"
	gDto "hotel/shared/dto"
	"hotel/shared/failure"
	gModel "hotel/shared/model"
	"hotel/shared/timezone"

	"github.com/google/uuid"
)

const (
	defaultGuests = 1

	queryParamExcludeID = "exclude_id"
)

type CreateBookingRequest struct {
	RoomID     string    `json:"room_id"     validate:"required,uuid"`
	UserID     *string   `json:"user_id"     validate:"omitempty,uuid"`
	CheckIn    time.Time `json:"check_in"    validate:"required"`
	CheckOut   time.Time `json:"check_out"   validate:"required"`
	Guests     int       `json:"guests"      validate:"omitempty,min=1"`
	TotalPrice float64   `json:"total_price" validate:"required,gt=0"`
	Status     string    `json:"status"      validate:"omitempty,oneof=pending confirmed"`
	Notes      *string   `json:"notes"       validate:"omitempty,max=1000"`
}

// ToModel builds a new booking. The booking is attributed to user when no user_id is given,
// unless user is the internal system caller.
func (c *CreateBookingRequest) ToModel(user string) model.Booking {
	guests := c.Guests
	if guests == 0 {
		guests = defaultGuests
	}

	status := model.StatusPending
	if c.Status != "" {
		status = c.Status
	}

	userID := c.UserID
	if userID == nil && user != constant.Empty && user != constant.ContextSystem {
		userID = &user
	}

	now := timezone.Now()

	return model.Booking{
		ID:         uuid.NewString(),
		RoomID:     c.RoomID,
		UserID:     userID,
		CheckIn:    c.CheckIn,
		CheckOut:   c.CheckOut,
		Guests:     guests,
		TotalPrice: c.TotalPrice,
		Status:     status,
		Notes:      nonEmpty(c.Notes),
		Metadata: gModel.Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

// UpdateBookingRequest is a partial update. A nil field is left untouched, and so is an
// empty notes string.
type UpdateBookingRequest struct {
	CheckIn  *time.Time `json:"check_in"  validate:"omitempty"`
	CheckOut *time.Time `json:"check_out" validate:"omitempty"`
	Guests   *int       `json:"guests"    validate:"omitempty,min=1"`
	Notes    *string    `json:"notes"     validate:"omitempty,max=1000"`
}

// Normalize drops an empty notes value, which is treated the same as an absent one.
func (u *UpdateBookingRequest) Normalize() {
	u.Notes = nonEmpty(u.Notes)
}

func (u *UpdateBookingRequest) IsEmpty() bool {
	return u.CheckIn == nil && u.CheckOut == nil && u.Guests == nil && u.Notes == nil
}

func (u *UpdateBookingRequest) ChangesSchedule() bool {
	return u.CheckIn != nil || u.CheckOut != nil
}

// Interval substitutes the patched dates over the current ones.
func (u *UpdateBookingRequest) Interval(current model.Booking) (checkIn, checkOut time.Time) {
	checkIn, checkOut = current.CheckIn, current.CheckOut

	if u.CheckIn != nil {
		checkIn = *u.CheckIn
	}

	if u.CheckOut != nil {
		checkOut = *u.CheckOut
	}

	return checkIn, checkOut
}

// ToFields returns the columns to write in a single UPDATE.
func (u *UpdateBookingRequest) ToFields(user string) map[string]any {
	fields := map[string]any{
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: user,
	}

	if u.CheckIn != nil {
		fields[model.FieldCheckIn] = *u.CheckIn
	}

	if u.CheckOut != nil {
		fields[model.FieldCheckOut] = *u.CheckOut
	}

	if u.Guests != nil {
		fields[model.FieldGuests] = *u.Guests
	}

	if u.Notes != nil {
		fields[model.FieldNotes] = *u.Notes
	}

	return fields
}

// Apply returns current with the accepted patch applied.
func (u *UpdateBookingRequest) Apply(current model.Booking, user string) model.Booking {
	current.CheckIn, current.CheckOut = u.Interval(current)

	if u.Guests != nil {
		current.Guests = *u.Guests
	}

	if u.Notes != nil {
		notes := *u.Notes
		current.Notes = &notes
	}

	current.ModifiedAt = timezone.Now()
	current.ModifiedBy = user

	return current
}

type AvailabilityRequest struct {
	RoomID    string    `validate:"required,uuid"`
	CheckIn   time.Time `validate:"required"`
	CheckOut  time.Time `validate:"required"`
	ExcludeID string    `validate:"omitempty,uuid"`
}

// FromRequest reads room_id, check_in, check_out and exclude_id from the query string.
// Dates are RFC 3339.
func (a *AvailabilityRequest) FromRequest(r *http.Request) error {
	query := r.URL.Query()

	a.RoomID = query.Get(model.FieldRoomID)
	a.ExcludeID = query.Get(queryParamExcludeID)

	var err error

	if a.CheckIn, err = parseTime(query.Get(model.FieldCheckIn)); err != nil {
		return failure.BadRequestFromString(fmt.Sprintf("invalid %s: %v", model.FieldCheckIn, err))
	}

	if a.CheckOut, err = parseTime(query.Get(model.FieldCheckOut)); err != nil {
		return failure.BadRequestFromString(fmt.Sprintf("invalid %s: %v", model.FieldCheckOut, err))
	}

	return nil
}

type AvailabilityResponse struct {
	RoomID    string `json:"room_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Available bool   `json:"available"`
}

type BookingResponse struct {
	ID         string  `json:"id"`
	RoomID     string  `json:"room_id"`
	UserID     *string `json:"user_id"`
	CheckIn    string  `json:"check_in"`
	CheckOut   string  `json:"check_out"`
	Guests     int     `json:"guests"`
	TotalPrice float64 `json:"total_price"`
	Status     string  `json:"status"`
	Notes      *string `json:"notes"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.RoomID = model.RoomID
	r.UserID = model.UserID
	r.CheckIn = timezone.Format(model.CheckIn, constant.DateFormat)
	r.CheckOut = timezone.Format(model.CheckOut, constant.DateFormat)
	r.Guests = model.Guests
	r.TotalPrice = model.TotalPrice
	r.Status = model.Status
	r.Notes = model.Notes
	r.Metadata.FromModel(model.Metadata)
}

// OwnedBy reports whether the booking was made by or for userID.
func (r *BookingResponse) OwnedBy(userID string) bool {
	if userID == constant.Empty {
		return false
	}

	return (r.UserID != nil && *r.UserID == userID) || r.CreatedBy == userID
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

// ListBookingsResponse is returned by the unpaginated query endpoints.
type ListBookingsResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

func (r *ListBookingsResponse) FromModels(models []model.Booking) {
	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

func nonEmpty(value *string) *string {
	if value == nil || *value == constant.Empty {
		return nil
	}

	return value
}

func parseTime(value string) (time.Time, error) {
	if value == constant.Empty {
		return time.Time{}, fmt.Errorf("value is required")
	}

	parsed, err := time.Parse(constant.DateFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected %s: %w", constant.DateFormat, err)
	}

	return parsed, nil
}
