package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a class of application error.
type ErrorCode string

const (
	ErrCodeInvalidInput        ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidURL          ErrorCode = "INVALID_URL"
	ErrCodeQuotaExceeded       ErrorCode = "QUOTA_EXCEEDED"
	ErrCodeResourceUnavailable ErrorCode = "RESOURCE_UNAVAILABLE"
	ErrCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeConfiguration       ErrorCode = "CONFIGURATION_ERROR"
	ErrCodePersistence         ErrorCode = "PERSISTENCE_ERROR"
	ErrCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrCodeNotFound            ErrorCode = "NOT_FOUND"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// AppError carries an error class, a user-facing message and the HTTP
// status the handler boundary should answer with.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
	Context    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair used by the handler layer when
// shaping the response body.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCause records the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func NewInvalidInput(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

func NewInvalidURL(message string) *AppError {
	return New(ErrCodeInvalidURL, message, http.StatusBadRequest)
}

func NewQuotaExceeded(message string) *AppError {
	return New(ErrCodeQuotaExceeded, message, http.StatusUnprocessableEntity)
}

// NewResourceUnavailable reports an upstream "no such resource / not live"
// outcome. The status differs between live lookups (422) and VODs (404),
// so the caller supplies it.
func NewResourceUnavailable(message string, httpStatus int) *AppError {
	return New(ErrCodeResourceUnavailable, message, httpStatus)
}

func NewUpstreamUnavailable(message string) *AppError {
	return New(ErrCodeUpstreamUnavailable, message, http.StatusInternalServerError)
}

func NewConfiguration(message string) *AppError {
	return New(ErrCodeConfiguration, message, http.StatusInternalServerError)
}

func NewPersistence(message string) *AppError {
	return New(ErrCodePersistence, message, http.StatusInternalServerError)
}

func NewUnauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

func NewNotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NewInternal(message string) *AppError {
	return New(ErrCodeInternal, message, http.StatusInternalServerError)
}

// Get extracts an AppError from anywhere in the chain, or nil.
func Get(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr := Get(err)
	return appErr != nil && appErr.Code == code
}
