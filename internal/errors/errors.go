package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode classifies failures so a caller can tell "your fault" from
// "system's fault" without string matching.
type ErrorCode int

const (
	// generic (1000-1999)
	ErrUnknown      ErrorCode = 1000
	ErrInvalidInput ErrorCode = 1001
	ErrNotFound     ErrorCode = 1002
	ErrConstraint   ErrorCode = 1003
	ErrTransientIO  ErrorCode = 1004

	// session lifecycle (2000-2999)
	ErrInvalidTransition ErrorCode = 2000
	ErrSessionEnded      ErrorCode = 2001
	ErrGamePaused        ErrorCode = 2002
	ErrGameNotStarted    ErrorCode = 2003
	ErrNotHost           ErrorCode = 2004
	ErrUnknownCode       ErrorCode = 2005

	// identity plumbing (3000-3999)
	ErrBadHostCode  ErrorCode = 3000
	ErrTokenInvalid ErrorCode = 3001
)

var errorMessages = map[ErrorCode]string{
	ErrUnknown:      "unknown error",
	ErrInvalidInput: "invalid input",
	ErrNotFound:     "not found",
	ErrConstraint:   "uniqueness constraint violated",
	ErrTransientIO:  "store operation failed",

	ErrInvalidTransition: "session status transition not allowed",
	ErrSessionEnded:      "session has ended",
	ErrGamePaused:        "round is paused",
	ErrGameNotStarted:    "round has not started",
	ErrNotHost:           "host action requires the host",
	ErrUnknownCode:       "no session with that code",

	ErrBadHostCode:  "host code rejected",
	ErrTokenInvalid: "invalid player token",
}

// AppError is the error type every core failure path produces.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails attaches detail text.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause attaches the originating error.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	if cause != nil && e.Details == "" {
		e.Details = cause.Error()
	}
	return e
}

// New creates an AppError for the given code.
func New(code ErrorCode, details ...string) *AppError {
	message, ok := errorMessages[code]
	if !ok {
		message = errorMessages[ErrUnknown]
	}

	err := &AppError{
		Code:    code,
		Message: message,
	}

	if len(details) > 0 {
		err.Details = strings.Join(details, "; ")
	}

	return err
}

// Newf creates an AppError with formatted details.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an arbitrary error under a code. An existing AppError keeps its
// original code so classification survives layering.
func Wrap(err error, code ErrorCode, details ...string) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := err.(*AppError); ok {
		if len(details) > 0 {
			appErr.Details = strings.Join(details, "; ") + "; " + appErr.Details
		}
		return appErr
	}

	appErr := New(code, details...)
	appErr.Cause = err
	if appErr.Details == "" {
		appErr.Details = err.Error()
	}

	return appErr
}

// Wrapf wraps with formatted details.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

// GetCode extracts the code, ErrUnknown for foreign errors.
func GetCode(err error) ErrorCode {
	if err == nil {
		return 0
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}

	return ErrUnknown
}

// IsRetryable reports whether the failure is worth retrying. Only transient
// store failures qualify; the core itself never retries.
func IsRetryable(err error) bool {
	return GetCode(err) == ErrTransientIO
}

// HTTPStatus maps the code to an HTTP status for the API layer.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrInvalidInput, ErrInvalidTransition, ErrGamePaused, ErrGameNotStarted, ErrSessionEnded:
		return 400
	case ErrNotFound, ErrUnknownCode:
		return 404
	case ErrNotHost, ErrBadHostCode:
		return 403
	case ErrTokenInvalid:
		return 401
	case ErrConstraint:
		return 409
	case ErrTransientIO:
		return 503
	default:
		return 500
	}
}

// ErrorResponse is the API error envelope.
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     *AppError `json:"error,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// NewErrorResponse builds the envelope for an AppError.
func NewErrorResponse(err *AppError) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     err,
		Timestamp: time.Now().Unix(),
	}
}
