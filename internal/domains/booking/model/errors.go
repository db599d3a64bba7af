package model

import "hotel/shared/failure"

var (
	ErrInvalidInterval   = failure.BadRequestFromString("check_out must be after check_in")
	ErrRoomNotFound      = failure.NotFound("room not found")
	ErrRoomUnavailable   = failure.BadRequestFromString("room is not available for booking")
	ErrRoomConflict      = failure.Conflict("room is already booked for the selected dates")
	ErrCapacityExceeded  = failure.BadRequestFromString("number of guests exceeds room capacity")
	ErrBookingNotFound   = failure.NotFound("booking not found")
	ErrAlreadyCancelled  = failure.BadRequestFromString("booking is already cancelled")
	ErrInvalidTransition = failure.BadRequestFromString("only pending bookings can be confirmed")
	ErrUnknownUser       = failure.BadRequestFromString("user does not exist")
)
