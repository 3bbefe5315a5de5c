package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an application error beyond its HTTP status code, so
// services and callers can branch without matching on messages.
type Kind string

const (
	KindValidation             Kind = "validation"
	KindAuth                   Kind = "auth"
	KindNotFound               Kind = "not_found"
	KindInvalidState           Kind = "invalid_state"
	KindRemote                 Kind = "remote"
	KindTransport              Kind = "transport"
	KindReconciliationConflict Kind = "reconciliation_conflict"
	KindConflict               Kind = "conflict"
	KindInternal               Kind = "internal"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"kind"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound       = &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: "Resource not found"}
	ErrUnauthorized   = &AppError{Code: http.StatusUnauthorized, Kind: KindAuth, Message: "Unauthorized"}
	ErrForbidden      = &AppError{Code: http.StatusForbidden, Kind: KindAuth, Message: "Forbidden"}
	ErrBadRequest     = &AppError{Code: http.StatusBadRequest, Kind: KindValidation, Message: "Bad request"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "Internal server error"}
	ErrConflict       = &AppError{Code: http.StatusConflict, Kind: KindConflict, Message: "Resource already exists"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    KindInternal,
		Message: message,
	}
}

// NewValidationError creates an error for caller input that violates a
// precondition. Always caller-recoverable by fixing the input.
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: message,
	}
}

// NewFieldValidationError creates a validation error carrying per-field detail
func NewFieldValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewAuthError creates an error for credentials or tokens rejected by a
// remote service
func NewAuthError(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnauthorized,
		Kind:    KindAuth,
		Message: message,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewInvalidStateError creates an error for an operation not permitted from
// the record's current state. The message should name the offending state.
func NewInvalidStateError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindInvalidState,
		Message: message,
	}
}

// NewRemoteError creates an error for a remote service that was reachable
// but reported a failure or rejection
func NewRemoteError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Kind:    KindRemote,
		Message: message,
	}
}

// NewTransportError creates an error for an unreachable or timed-out remote
// service. This is the only kind eligible for caller-directed retry.
func NewTransportError(message string) *AppError {
	return &AppError{
		Code:    http.StatusGatewayTimeout,
		Kind:    KindTransport,
		Message: message,
	}
}

// NewReconciliationConflict creates an error for callback or poll data that
// contradicts locally persisted state and needs operator review
func NewReconciliationConflict(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindReconciliationConflict,
		Message: message,
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindValidation,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsKind reports whether err is an AppError of the given kind
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: err.Error(),
	}
}
