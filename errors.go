// Package async provides the error hierarchy for Operation completion
// failures, producer misuse, and timeouts, with full errors.Is/errors.As
// cause-chain support, grounded on github.com/joeycumines/go-eventloop's
// ES2022-flavored error types (errors.go).
package async

import (
	"errors"
	"fmt"
)

// AggregateError carries one or more errors captured at a Faulted terminal
// transition, preserved in first-seen order.
type AggregateError struct {
	Errors []error
}

// Error implements the error interface.
func (e *AggregateError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "async: aggregate error (empty)"
	case 1:
		return e.Errors[0].Error()
	default:
		return fmt.Sprintf("async: %d errors occurred, first: %v", len(e.Errors), e.Errors[0])
	}
}

// AggregateErrorCause returns the first error in Errors, if any. Provided
// for ES2022 `.cause`-style access to a primary underlying error.
func (e *AggregateError) AggregateErrorCause() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// Unwrap returns the errors slice for multi-error unwrapping, so
// errors.Is/errors.As can match against any contained error.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// Is reports whether target is an *AggregateError (contents are not
// compared; use Unwrap() []error via errors.Is/errors.As for that).
func (e *AggregateError) Is(target error) bool {
	var aggTarget *AggregateError
	return errors.As(target, &aggTarget)
}

// PanicError wraps a value recovered from a panic inside a callback,
// combinator body, or producer-supplied factory function.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e PanicError) Error() string {
	return fmt.Sprintf("async: panic recovered: %v", e.Value)
}

// Unwrap returns the underlying error if the panic value is itself an
// error, enabling errors.Is/errors.As to see through the panic wrapper.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// InvalidStateError is returned by the non-try producer methods when the
// requested transition is disallowed by the current Status.
type InvalidStateError struct {
	Operation string
	Current   Status
}

// Error implements the error interface.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("async: invalid state: cannot %s from %s", e.Operation, e.Current)
}

// DisposedError reports that a call required a live Operation but the
// Operation had already been disposed. No function in this package
// currently returns it.
type DisposedError struct{}

// Error implements the error interface.
func (e *DisposedError) Error() string {
	return "async: operation has been disposed"
}

// ArgumentOutOfRangeError is returned for progress values outside [0,1] and
// invalid timeouts/durations.
type ArgumentOutOfRangeError struct {
	Argument string
	Value    any
}

// Error implements the error interface.
func (e *ArgumentOutOfRangeError) Error() string {
	return fmt.Sprintf("async: argument %q out of range: %v", e.Argument, e.Value)
}

// TimeoutErrorKind distinguishes the Operation-library TimeoutError (raised
// only by JoinWithTimeout) from unrelated timeout errors in Go code that
// also embeds a Message/Cause, matching go-eventloop's style of narrow,
// purpose-specific error types.
type TimeoutErrorKind struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *TimeoutErrorKind) Error() string {
	if e.Message == "" {
		return "async: operation timed out"
	}
	return e.Message
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *TimeoutErrorKind) Unwrap() error {
	return e.Cause
}

// OperationCanceledError is the exception carried by a Canceled terminal
// transition when the cancellation is reported as a failure: Exception() is
// non-nil iff Status is Faulted or Canceled-with-exception.
type OperationCanceledError struct {
	Cause error
}

// Error implements the error interface.
func (e *OperationCanceledError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("async: operation canceled: %v", e.Cause)
	}
	return "async: operation canceled"
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *OperationCanceledError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *OperationCanceledError (contents not
// compared).
func (e *OperationCanceledError) Is(target error) bool {
	_, ok := target.(*OperationCanceledError)
	return ok
}

// WrapError wraps an error with a message, preserving the cause chain so
// that errors.Is(result, cause) is true.
func WrapError(message string, cause error) error {
	return fmt.Errorf("%s: %w", message, cause)
}
