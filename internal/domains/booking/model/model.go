package model

import (
	"hotel/shared/model"
	"time"
)

const (
	TableName  = "room_bookings"
	EntityName = "booking"

	FieldID         = "id"
	FieldRoomID     = "room_id"
	FieldUserID     = "user_id"
	FieldCheckIn    = "check_in"
	FieldCheckOut   = "check_out"
	FieldGuests     = "guests"
	FieldTotalPrice = "total_price"
	FieldStatus     = "status"
	FieldNotes      = "notes"
	FieldCreatedBy  = "created_by"

	ConstraintValidInterval = "room_bookings_valid_interval"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// ActiveStatuses are the statuses that hold a room's schedule.
var ActiveStatuses = []string{StatusPending, StatusConfirmed}

type Booking struct {
	ID         string    `db:"id"`
	RoomID     string    `db:"room_id"`
	UserID     *string   `db:"user_id"`
	CheckIn    time.Time `db:"check_in"`
	CheckOut   time.Time `db:"check_out"`
	Guests     int       `db:"guests"`
	TotalPrice float64   `db:"total_price"`
	Status     string    `db:"status"`
	Notes      *string   `db:"notes"`
	model.Metadata
}

func (b Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// OwnedBy reports whether the booking was made by or for userID.
func (b Booking) OwnedBy(userID string) bool {
	if userID == "" {
		return false
	}

	if b.UserID != nil && *b.UserID == userID {
		return true
	}

	return b.CreatedBy == userID
}

// Overlaps reports whether the half-open intervals [aIn, aOut) and [bIn, bOut) intersect.
// Intervals that only share an endpoint do not overlap.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

// ValidInterval reports whether checkOut is strictly after checkIn.
func ValidInterval(checkIn, checkOut time.Time) bool {
	return checkOut.After(checkIn)
}
