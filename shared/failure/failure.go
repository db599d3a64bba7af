package failure

import (
	"errors"
	"net/http"
)

// Failure is an error the client caused or may see, carrying the HTTP status it maps to.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var (
	ForbiddenError          = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}
	ResourceRestrictedError = &Failure{Code: http.StatusForbidden, Message: "You don't have permission to access this resource"}
)

func (e *Failure) Error() string {
	return e.Message
}

func fromError(code int, err error) error {
	if err == nil {
		return nil
	}

	return &Failure{Code: code, Message: err.Error()}
}

// BadRequest turns err into a 400. A nil err stays nil.
func BadRequest(err error) error {
	return fromError(http.StatusBadRequest, err)
}

func BadRequestFromString(msg string) error {
	return &Failure{Code: http.StatusBadRequest, Message: msg}
}

func Unauthorized(msg string) error {
	return &Failure{Code: http.StatusUnauthorized, Message: msg}
}

// InternalError turns err into a 500. A nil err stays nil.
func InternalError(err error) error {
	return fromError(http.StatusInternalServerError, err)
}

func NotFound(msg string) error {
	return &Failure{Code: http.StatusNotFound, Message: msg}
}

func Conflict(msg string) error {
	return &Failure{Code: http.StatusConflict, Message: msg}
}

// Storage marks an error raised by the persistence layer itself (connectivity, timeouts, driver
// faults) so callers can tell it apart from a booking rule rejecting the request.
type Storage struct {
	Err error
}

func (s *Storage) Error() string {
	return "storage failure: " + s.Err.Error()
}

func (s *Storage) Unwrap() error {
	return s.Err
}

// StorageFailure wraps err once. A nil err stays nil.
func StorageFailure(err error) error {
	if err == nil || IsStorage(err) {
		return err
	}

	return &Storage{Err: err}
}

func IsStorage(err error) bool {
	var storage *Storage

	return errors.As(err, &storage)
}

// GetCode is the HTTP status for err: the Failure's own code, 503 for storage faults and 500
// for anything else.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	if IsStorage(err) {
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}
