package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeInternal    = "INTERNAL_ERROR"
	ErrCodeBadRequest  = "BAD_REQUEST"
	ErrCodeNetwork     = "NETWORK_ERROR"     // request never produced a response
	ErrCodeProtocol    = "PROTOCOL_ERROR"    // non-2xx or undecodable body
	ErrCodeApplication = "APPLICATION_ERROR" // body-level failure flag
	ErrCodeRateLimited = "RATE_LIMITED"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code           string   // Error code (e.g., "NOT_FOUND", "NETWORK_ERROR")
	Message        string   // Human-readable error message
	Status         int      // HTTP status code
	Err            error    // Wrapped underlying error (optional)
	UpstreamStatus int      // Status the challenge API answered with (0 if none)
	MissingFields  []string // Fields the upstream reported as missing (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// NewValidationError creates a new VALIDATION_ERROR. The message is shown to
// the participant verbatim.
func NewValidationError(field string, message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     fmt.Errorf("invalid %s", field),
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewNetworkError wraps a transport failure talking to the challenge API.
func NewNetworkError(op string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeNetwork,
		Message: fmt.Sprintf("%s: request failed", op),
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

// NewProtocolError reports an upstream non-2xx status or an unreadable body.
// status is the upstream status code; 0 means the status was fine but the body was not.
func NewProtocolError(status int, message string, missing []string) *AppError {
	if message == "" {
		message = fmt.Sprintf("unexpected upstream status %d", status)
	}
	return &AppError{
		Code:           ErrCodeProtocol,
		Message:        message,
		Status:         http.StatusBadGateway,
		Err:            fmt.Errorf("upstream status %d", status),
		UpstreamStatus: status,
		MissingFields:  missing,
	}
}

// NewApplicationError reports a response whose envelope signals failure.
func NewApplicationError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeApplication,
		Message: message,
		Status:  http.StatusBadGateway,
	}
}

// NewRateLimitedError is returned when a participant exceeds the request budget.
func NewRateLimitedError() *AppError {
	return &AppError{
		Code:    ErrCodeRateLimited,
		Message: "too many requests, slow down",
		Status:  http.StatusTooManyRequests,
	}
}
