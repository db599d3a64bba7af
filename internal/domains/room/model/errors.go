package model

import "hotel/shared/failure"

var (
	ErrRoomNotFound       = failure.NotFound("room not found")
	ErrRoomNumberTaken    = failure.Conflict("room number already exists")
	ErrUnderMaintenance   = failure.BadRequestFromString("room is under maintenance and cannot be made available")
	ErrEmptyUpdateRequest = failure.BadRequestFromString("update request cannot be empty")
)
