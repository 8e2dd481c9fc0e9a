package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorClass classifies an API error for retry logic.
type ErrorClass string

const (
	// ClassTransient indicates a temporary failure that may succeed on
	// retry: network errors, 5xx responses.
	ClassTransient ErrorClass = "transient"

	// ClassThrottled indicates rate limiting (429). Retried with backoff.
	ClassThrottled ErrorClass = "throttled"

	// ClassNotFound indicates a 404. Not retried on the command path, but
	// the operation poller treats it as eventual-consistency lag.
	ClassNotFound ErrorClass = "not-found"

	// ClassPermanent indicates a non-recoverable error: bad request,
	// authentication or permission failure.
	ClassPermanent ErrorClass = "permanent"
)

// Error is a classified API error with the HTTP context that produced it.
type Error struct {
	// Class is the error classification for retry logic.
	Class ErrorClass `json:"class"`

	// StatusCode is the HTTP status code, or zero for network errors.
	StatusCode int `json:"status_code,omitempty"`

	// Message is the human-readable error message, extracted from the
	// response body when the backend provided one.
	Message string `json:"message"`

	// Err is the underlying error, if any.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("[%s] %s (HTTP %d)", e.Class, e.Message, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Class, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Class, e.Message)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Class == t.Class
}

// Transient reports whether the error is worth retrying. Throttling counts:
// it resolves by waiting, which is exactly what a retry does.
func (e *Error) Transient() bool {
	return e.Class == ClassTransient || e.Class == ClassThrottled
}

// NotFound reports whether the error is a 404.
func (e *Error) NotFound() bool {
	return e.Class == ClassNotFound
}

// NewTransientError creates a transient error without an HTTP status,
// typically for network failures.
func NewTransientError(message string, err error) *Error {
	return &Error{Class: ClassTransient, Message: message, Err: err}
}

// NewHTTPError classifies an HTTP error response.
func NewHTTPError(statusCode int, message string) *Error {
	return &Error{Class: classifyStatus(statusCode), StatusCode: statusCode, Message: message}
}

// classifyStatus maps an HTTP status code to an error class.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == http.StatusNotFound:
		return ClassNotFound
	case statusCode == http.StatusTooManyRequests:
		return ClassThrottled
	case statusCode >= 500:
		return ClassTransient
	default:
		return ClassPermanent
	}
}

// IsTransient returns true if the error is classified as transient or
// throttled.
func IsTransient(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Transient()
}

// IsNotFound returns true if the error is classified as not-found.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.NotFound()
}

// IsPermanent returns true if the error is classified as permanent.
func IsPermanent(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Class == ClassPermanent
}
