package model

import (
	"net/http"

	"hotel/shared/failure"
)

var (
	ErrInvalidCredentials   = failure.Unauthorized("invalid email or password")
	ErrAccountDeactivated   = &failure.Failure{Code: http.StatusForbidden, Message: "user account is deactivated"}
	ErrWrongCurrentPassword = failure.BadRequestFromString("current password is incorrect")
	ErrInvalidRefreshToken  = failure.Unauthorized("invalid refresh token")
)
