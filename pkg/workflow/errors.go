package workflow

import (
	"errors"
	"fmt"
)

// FailureKind classifies how a workflow run or an operation wait ended short
// of success. The kinds are deliberately distinct: a timeout means the true
// end state of the remote operation is unknown, while a terminal failure is
// authoritative, and a cancellation is neither.
type FailureKind string

const (
	// FailureTerminal indicates the backend reported the operation itself
	// failed. Never retried; the backend's verdict is authoritative.
	FailureTerminal FailureKind = "terminal"

	// FailureTimeout indicates the deadline elapsed before a terminal status
	// was observed. The remote operation may still complete later.
	FailureTimeout FailureKind = "timeout"

	// FailureTransport indicates a non-retryable client-side error while
	// talking to the status endpoint (auth rejection, malformed request).
	FailureTransport FailureKind = "transport"

	// FailureCancelled indicates the caller interrupted the run. Remote side
	// effects already committed are left as they are.
	FailureCancelled FailureKind = "cancelled"

	// FailureNotFound indicates the operation record stayed unqueryable past
	// the configured consecutive-miss budget.
	FailureNotFound FailureKind = "not-found"

	// FailureUsage indicates a local input problem (unknown workflow name,
	// missing required argument) detected before any step executed.
	FailureUsage FailureKind = "usage"
)

// Error is a classified workflow engine error. Step is set when the error
// surfaced while executing a named workflow step.
type Error struct {
	// Kind is the failure classification.
	Kind FailureKind

	// Step is the workflow step that was executing, if any.
	Step string

	// Message is the human-readable error message.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Step != "" {
		return fmt.Sprintf("[%s] step %q: %s", e.Kind, e.Step, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, msg)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error equality for errors.Is: two workflow errors match when
// their kinds match.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithStep attaches the step name the error surfaced in.
func (e *Error) WithStep(step string) *Error {
	e.Step = step
	return e
}

// NewTerminalError reports an authoritative backend failure.
func NewTerminalError(message string, err error) *Error {
	return &Error{Kind: FailureTerminal, Message: message, Err: err}
}

// NewTimeoutError reports a deadline expiry with the end state unknown.
func NewTimeoutError(message string, err error) *Error {
	return &Error{Kind: FailureTimeout, Message: message, Err: err}
}

// NewTransportError reports a non-retryable status fetch failure.
func NewTransportError(message string, err error) *Error {
	return &Error{Kind: FailureTransport, Message: message, Err: err}
}

// NewCancelledError reports a caller-initiated interruption.
func NewCancelledError(message string, err error) *Error {
	return &Error{Kind: FailureCancelled, Message: message, Err: err}
}

// NewNotFoundError reports an operation record that never became queryable.
func NewNotFoundError(message string, err error) *Error {
	return &Error{Kind: FailureNotFound, Message: message, Err: err}
}

// NewUsageError reports a local input problem caught before execution.
func NewUsageError(message string) *Error {
	return &Error{Kind: FailureUsage, Message: message}
}

// KindOf returns the failure kind of err, or an empty kind if err is not a
// workflow error.
func KindOf(err error) FailureKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsTimeout returns true if the error is classified as a deadline expiry.
func IsTimeout(err error) bool { return KindOf(err) == FailureTimeout }

// IsCancelled returns true if the error is classified as a cancellation.
func IsCancelled(err error) bool { return KindOf(err) == FailureCancelled }

// IsTerminal returns true if the error carries an authoritative backend failure.
func IsTerminal(err error) bool { return KindOf(err) == FailureTerminal }

// IsUsage returns true if the error is a local input problem.
func IsUsage(err error) bool { return KindOf(err) == FailureUsage }
