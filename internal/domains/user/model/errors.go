package model

import "hotel/shared/failure"

var (
	ErrUserNotFound       = failure.NotFound("user not found")
	ErrEmailTaken         = failure.Conflict("email already registered")
	ErrEmptyUpdateRequest = failure.BadRequestFromString("update request cannot be empty")
)
