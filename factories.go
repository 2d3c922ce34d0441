package async

import (
	"sync"
	"time"
)

// completedSingleton is the cached, already-RanToCompletion Operation
// returned by Completed(), shared across every caller. It is marked
// flagDoNotDispose so a caller that disposes its own reference can never
// poison the shared instance for everyone else.
var completedSingleton = sync.OnceValue(func() *Operation {
	op := NewOperation(nil)
	op.TrySetCompleted()
	op.markDoNotDispose()
	return op
})

// Completed returns a shared Operation that has already run to completion.
// Safe to use as a no-op placeholder wherever an Operation is expected.
func Completed() *Operation { return completedSingleton() }

// FromResult returns a TypedOperation[T] that has already run to
// completion carrying value, for producers that already have the answer in
// hand.
func FromResult[T any](value T) *TypedOperation[T] {
	op := NewTypedOperation[T](nil)
	op.TrySetResult(value)
	return op
}

// FromException returns an Operation that has already completed Faulted
// with err.
func FromException(err error) *Operation {
	op := NewOperation(nil)
	op.TrySetException(err)
	return op
}

// FromExceptionTyped returns a TypedOperation[T] that has already completed
// Faulted with err; Result() returns T's zero value.
func FromExceptionTyped[T any](err error) *TypedOperation[T] {
	op := NewTypedOperation[T](nil)
	op.Operation.TrySetException(err)
	return op
}

// FromCanceled returns an Operation that has already completed Canceled,
// optionally carrying cause as its Exception.
func FromCanceled(cause error) *Operation {
	op := NewOperation(nil)
	op.TrySetCanceled(cause)
	return op
}

// FromCanceledTyped returns a TypedOperation[T] that has already completed
// Canceled, optionally carrying cause as its Exception.
func FromCanceledTyped[T any](cause error) *TypedOperation[T] {
	op := NewTypedOperation[T](nil)
	op.Operation.TrySetCanceled(cause)
	return op
}

// Delay returns an Operation that runs to completion after d elapses,
// honoring cooperative cancellation: if Cancel is called before d elapses,
// the operation completes Canceled immediately instead of waiting out the
// full duration. Grounded on go-eventloop's loop.go timer scheduling
// (ScheduleTimer), rendered here via time.AfterFunc rather than an
// event-loop tick, since Delay has no frame/tick source of its own — see
// DelayByUpdate (update.go) for the tick-driven counterpart.
func Delay(d time.Duration) *Operation {
	op := NewOperation(nil)
	timer := time.AfterFunc(d, func() { op.TrySetCompleted() })
	op.onCancellationRequested(func() {
		timer.Stop()
		op.TrySetCanceled(nil)
	})
	return op
}

// Run starts fn on a new goroutine and returns an Operation that completes
// when fn returns: RanToCompletion if fn returns nil, Faulted if fn returns
// a non-nil error, and Faulted with a PanicError if fn panics. Grounded on
// go-eventloop's Promisify (promisify.go), generalized from promise
// construction onto the Operation state machine.
func Run(fn func() error) *Operation {
	op := NewOperation(nil)
	op.TrySetScheduled()
	go func() {
		op.TrySetRunning()
		defer func() {
			if r := recover(); r != nil {
				logPanic("Run", r)
				op.TrySetException(PanicError{Value: r})
			}
		}()
		if err := fn(); err != nil {
			op.TrySetException(err)
			return
		}
		op.TrySetCompleted()
	}()
	return op
}

// RunTyped starts fn on a new goroutine and returns a TypedOperation[T]
// that completes with fn's result, the typed analogue of Run.
func RunTyped[T any](fn func() (T, error)) *TypedOperation[T] {
	op := NewTypedOperation[T](nil)
	op.Operation.TrySetScheduled()
	go func() {
		op.Operation.TrySetRunning()
		defer func() {
			if r := recover(); r != nil {
				logPanic("RunTyped", r)
				op.Operation.TrySetException(PanicError{Value: r})
			}
		}()
		v, err := fn()
		if err != nil {
			op.Operation.TrySetException(err)
			return
		}
		op.TrySetResult(v)
	}()
	return op
}
