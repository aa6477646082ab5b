// Package failure defines the assertion error kind shared by every
// check in the module. A check that is not met always reports an
// *AssertionError; anything else that reaches a test case is an
// unexpected error and is propagated verbatim.
package failure

import (
	"errors"
	"fmt"
)

// AssertionError signals that an expectation was not met. The
// message names the observed entity and the expected condition.
type AssertionError struct {
	// Message is the human-readable failure description.
	Message string

	// Cause is the underlying error, if the assertion was
	// derived from one.
	Cause error
}

// Error returns the failure message, followed by the cause when
// one is attached.
func (e *AssertionError) Error() string {
	if e.Cause != nil && e.Message == "" {
		return e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the cause of the assertion failure.
func (e *AssertionError) Unwrap() error {
	return e.Cause
}

// Fail returns an AssertionError with the given message.
func Fail(msg string) error {
	return &AssertionError{Message: msg}
}

// Failf returns an AssertionError with a formatted message.
func Failf(format string, args ...any) error {
	return &AssertionError{Message: fmt.Sprintf(format, args...)}
}

// Wrap converts cause into an AssertionError. If msg is empty the
// cause's message is used.
func Wrap(cause error, msg string) error {
	return &AssertionError{Message: msg, Cause: cause}
}

// IsAssertion reports whether err is, or wraps, an AssertionError.
func IsAssertion(err error) bool {
	var ae *AssertionError
	return errors.As(err, &ae)
}
