package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// Common errors
var (
	// 400 Bad Request
	ErrBadRequest = New(http.StatusBadRequest, "invalid request")
	ErrValidation = New(http.StatusBadRequest, "validation failed")

	// 401 Unauthorized
	ErrUnauthorized    = New(http.StatusUnauthorized, "unauthorized")
	ErrInvalidToken    = New(http.StatusUnauthorized, "invalid token")
	ErrTokenExpired    = New(http.StatusUnauthorized, "token has expired")
	ErrInvalidPassword = New(http.StatusUnauthorized, "invalid credentials")

	// 403 Forbidden
	ErrForbidden        = New(http.StatusForbidden, "forbidden")
	ErrPermissionDenied = New(http.StatusForbidden, "permission denied")
	ErrNotRoomMember    = New(http.StatusForbidden, "not a member of this room")
	ErrSystemRoom       = New(http.StatusForbidden, "system rooms cannot be deleted")
	ErrSuspended        = New(http.StatusForbidden, "account is suspended")

	// 404 Not Found
	ErrNotFound       = New(http.StatusNotFound, "resource not found")
	ErrUserNotFound   = New(http.StatusNotFound, "user not found")
	ErrRoomNotFound   = New(http.StatusNotFound, "room not found")
	ErrInviteNotFound = New(http.StatusNotFound, "invite not found")

	// 409 Conflict
	ErrConflict          = New(http.StatusConflict, "resource conflict")
	ErrHandleExists      = New(http.StatusConflict, "handle already taken")
	ErrEmailExists       = New(http.StatusConflict, "email already registered")
	ErrSlugExists        = New(http.StatusConflict, "room slug already taken")
	ErrAlreadyRoomMember = New(http.StatusConflict, "already a member of this room")
	ErrLastOwner         = New(http.StatusConflict, "cannot remove the last owner of a room")

	// 422 Unprocessable Entity
	ErrInviteNotRedeemable = New(http.StatusUnprocessableEntity, "invite code is no longer valid")
	ErrRegistrationClosed  = New(http.StatusUnprocessableEntity, "registration is disabled")

	// 429 Too Many Requests
	ErrTooManyRequests = New(http.StatusTooManyRequests, "too many requests, try again later")

	// 500 / 502
	ErrInternal      = New(http.StatusInternalServerError, "internal server error")
	ErrAIUnavailable = New(http.StatusBadGateway, "no AI provider available")
)

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// GetHTTPStatus returns the HTTP status code for an error
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// GetMessage returns the error message
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
