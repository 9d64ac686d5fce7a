package apperrors

import (
	"errors"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates missing or invalid credentials or session.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the caller may not touch the resource.
var ErrForbidden = errors.New("forbidden")

// ErrConfig indicates a required configuration value is missing or invalid.
var ErrConfig = errors.New("configuration error")

// ErrConfirmationRequired indicates a destructive operation was requested without confirmation.
var ErrConfirmationRequired = errors.New("confirmation required")

// ErrUpstream indicates the remote store or auth provider failed.
var ErrUpstream = errors.New("upstream service error")

// AppError carries an HTTP status code and a user-facing message alongside the cause.
type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewBadRequestError creates a 400 error that unwraps to ErrValidation.
func NewBadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrValidation)
}

// NewUnauthorizedError creates a 401 error that unwraps to ErrUnauthorized.
func NewUnauthorizedError(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message, ErrUnauthorized)
}

// NewNotFoundError creates a 404 error that unwraps to ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

// NewConfirmationRequiredError creates a 428 error that unwraps to ErrConfirmationRequired.
func NewConfirmationRequiredError(message string) *AppError {
	return NewAppError(http.StatusPreconditionRequired, message, ErrConfirmationRequired)
}

// NewInternalServerError creates a 500 error.
func NewInternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, message, nil)
}

// NewBadGatewayError creates a 502 error that unwraps to ErrUpstream.
func NewBadGatewayError(message string) *AppError {
	return NewAppError(http.StatusBadGateway, message, ErrUpstream)
}

// NewGatewayTimeoutError creates a 504 error that unwraps to ErrUpstream.
func NewGatewayTimeoutError(message string) *AppError {
	return NewAppError(http.StatusGatewayTimeout, message, ErrUpstream)
}

// StatusFor maps an error chain onto the HTTP status the handlers respond with.
func StatusFor(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrConfirmationRequired):
		return http.StatusPreconditionRequired
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// MessageFor returns the user-facing message for err, falling back to fallback.
func MessageFor(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
