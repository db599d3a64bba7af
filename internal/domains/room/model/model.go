package model

import "hotel/shared/model"

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID                 = "id"
	FieldRoomNumber         = "room_number"
	FieldFloor              = "floor"
	FieldType               = "type"
	FieldDescription        = "description"
	FieldPricePerNight      = "price_per_night"
	FieldCurrency           = "currency"
	FieldCapacity           = "capacity"
	FieldIsAvailable        = "is_available"
	FieldIsUnderMaintenance = "is_under_maintenance"
	FieldHasOffer           = "has_offer"
	FieldDiscountPercent    = "discount_percent"
	FieldImage              = "image"
)

const (
	TypeSingle = "Single"
	TypeDouble = "Double"
	TypeTwin   = "Twin"
	TypeSuite  = "Suite"
	TypeDeluxe = "Deluxe"
	TypeFamily = "Family"
)

const (
	DefaultCurrency = "USD"
	DefaultCapacity = 2
)

type Room struct {
	ID                 string  `db:"id"`
	RoomNumber         string  `db:"room_number"`
	Floor              *int    `db:"floor"`
	Type               string  `db:"type"`
	Description        *string `db:"description"`
	PricePerNight      float64 `db:"price_per_night"`
	Currency           string  `db:"currency"`
	Capacity           int     `db:"capacity"`
	IsAvailable        bool    `db:"is_available"`
	IsUnderMaintenance bool    `db:"is_under_maintenance"`
	HasOffer           bool    `db:"has_offer"`
	DiscountPercent    float64 `db:"discount_percent"`
	Image              string  `db:"image"`
	model.Metadata
}

// IsBookable reports whether the room accepts new bookings. A room under maintenance never does.
func (r Room) IsBookable() bool {
	return r.IsAvailable && !r.IsUnderMaintenance
}
