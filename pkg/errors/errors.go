package errors

import (
	"errors"
	"net/http"
)

// Standard error classes for the storefront.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("resource conflict")
	ErrInternal          = errors.New("internal error")
	ErrStorage           = errors.New("storage fault")
	ErrGateway           = errors.New("payment gateway error")
	ErrTemporaryFailure  = errors.New("temporary failure")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout           = errors.New("timeout")
)

// AppError is a structured application error with context.
type AppError struct {
	Err        error
	StatusCode int
	Message    string
	Retryable  bool
	Context    map[string]interface{}
}

// Error returns the error message.
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext adds additional context to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new AppError with the given parameters.
func NewAppError(err error, message string, statusCode int, retryable bool) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  retryable,
		Context:    make(map[string]interface{}),
	}
}

// AsAppError unwraps err to an *AppError when one is in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError

	if errors.As(err, &appErr) {
		return appErr, true
	}

	return nil, false
}

// IsRetryable reports whether an operation that failed with err is worth
// repeating.
func IsRetryable(err error) bool {
	var appErr *AppError

	if errors.As(err, &appErr) {
		return appErr.Retryable
	}

	return errors.Is(err, ErrTemporaryFailure) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(message string) *AppError {
	return NewAppError(ErrNotFound, message, http.StatusNotFound, false)
}

// NewInvalidInputError creates an invalid input error.
func NewInvalidInputError(message string) *AppError {
	return NewAppError(ErrInvalidInput, message, http.StatusBadRequest, false)
}

// NewConflictError creates a conflict error.
func NewConflictError(message string) *AppError {
	return NewAppError(ErrConflict, message, http.StatusConflict, false)
}

// NewInternalError creates an internal error.
func NewInternalError(message string) *AppError {
	return NewAppError(ErrInternal, message, http.StatusInternalServerError, true)
}

// NewStorageError creates a storage fault. Storage faults are never surfaced
// to the user; callers log them and degrade to an empty read or skipped write.
func NewStorageError(message string) *AppError {
	return NewAppError(ErrStorage, message, http.StatusInternalServerError, false)
}

// NewGatewayError creates a payment gateway error.
func NewGatewayError(message string, statusCode int, retryable bool) *AppError {
	return NewAppError(ErrGateway, message, statusCode, retryable)
}

// NewTemporaryError creates a temporary error.
func NewTemporaryError(message string) *AppError {
	return NewAppError(ErrTemporaryFailure, message, http.StatusServiceUnavailable, true)
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(message string) *AppError {
	return NewAppError(ErrTimeout, message, http.StatusGatewayTimeout, true)
}
