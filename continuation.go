package async

import "errors"

// ContinuationOptions selects which of op's terminal states trigger a
// ContinueWith continuation, and how it is dispatched.
type ContinuationOptions uint8

const (
	// NotOnRanToCompletion disqualifies the continuation when op ran to
	// completion.
	NotOnRanToCompletion ContinuationOptions = 1 << iota
	// NotOnFaulted disqualifies the continuation when op Faulted.
	NotOnFaulted
	// NotOnCanceled disqualifies the continuation when op was Canceled.
	NotOnCanceled
	// ExecuteSynchronously forces the continuation to run on Inline,
	// regardless of whatever Context was passed to ContinueWith.
	ExecuteSynchronously
	// ExecuteOnCapturedContext documents intent at call sites; passing
	// Captured(ctx) as ContinueWith's ctx parameter already achieves the
	// same effect, so this flag carries no additional behavior of its own.
	ExecuteOnCapturedContext
)

func (o ContinuationOptions) disqualifies(status Status) bool {
	switch status {
	case RanToCompletion:
		return o&NotOnRanToCompletion != 0
	case Faulted:
		return o&NotOnFaulted != 0
	case Canceled:
		return o&NotOnCanceled != 0
	default:
		return false
	}
}

// runContinuation invokes fn on ctx, recovering a panic into out as a
// Faulted PanicError, the same way go-eventloop's ChainedPromise wraps
// handler invocation to keep one bad continuation from taking down the
// dispatching goroutine.
func runContinuation(out *Operation, ctx Context, fn func()) {
	ctx.Post(func() {
		defer func() {
			if r := recover(); r != nil {
				logPanic("continuation", r)
				out.TrySetException(PanicError{Value: r})
			}
		}()
		fn()
	})
}

// ContinueWith schedules fn to run, through ctx, after op completes,
// provided op's terminal status isn't disqualified by opts. If every
// terminal status is disqualified by opts, the returned Operation
// transitions to Canceled without invoking fn. If fn panics, the returned
// Operation transitions to Faulted. This is the most general continuation
// primitive; Then/Catch/Finally below build on it with fixed triggering
// conditions, generalizing go-eventloop's
// ChainedPromise.Then/Catch/Finally.
func ContinueWith(op *Operation, ctx Context, fn func(*Operation), opts ...ContinuationOptions) *Operation {
	var merged ContinuationOptions
	for _, o := range opts {
		merged |= o
	}
	out := NewOperation(nil)
	op.AddCompletionCallback(Inline, func(completed *Operation) {
		if merged.disqualifies(completed.Status()) {
			out.TrySetCanceled(nil)
			return
		}
		dispatch := Inline
		if merged&ExecuteSynchronously == 0 {
			dispatch = ctx
		}
		runContinuation(out, dispatch, func() {
			fn(completed)
			out.TrySetCompleted()
		})
	})
	return out
}

// Then runs fn with op's result only if op ran to completion, producing a
// TypedOperation[U] of fn's result. If op Faulted or was Canceled, the
// returned operation completes the same way, without invoking fn.
func Then[T, U any](op *TypedOperation[T], ctx Context, fn func(T) U) *TypedOperation[U] {
	out := NewTypedOperation[U](nil)
	op.Operation.AddCompletionCallback(ctx, func(*Operation) {
		switch op.Status() {
		case RanToCompletion:
			runThen(out, func() U { return fn(op.Result()) })
		case Faulted:
			out.Operation.TrySetException(op.Exception())
		case Canceled:
			out.Operation.TrySetCanceled(op.Exception())
		}
	})
	return out
}

func runThen[U any](out *TypedOperation[U], fn func() U) {
	defer func() {
		if r := recover(); r != nil {
			logPanic("Then", r)
			out.Operation.TrySetException(PanicError{Value: r})
		}
	}()
	out.TrySetResult(fn())
}

// ThenOperation is Then's unwrap-as-you-go counterpart: fn itself returns a
// TypedOperation[U], and the result follows that inner operation to its own
// terminal status instead of wrapping it, generalizing go-eventloop's
// ChainedPromise Promise-returning-handler support for a then-handler that
// itself returns an asynchronous operation.
func ThenOperation[T, U any](op *TypedOperation[T], ctx Context, fn func(T) *TypedOperation[U]) *TypedOperation[U] {
	out := NewTypedOperation[U](nil)
	op.Operation.AddCompletionCallback(ctx, func(*Operation) {
		switch op.Status() {
		case Faulted:
			out.Operation.TrySetException(op.Exception())
			return
		case Canceled:
			out.Operation.TrySetCanceled(op.Exception())
			return
		}
		var inner *TypedOperation[U]
		func() {
			defer func() {
				if r := recover(); r != nil {
					logPanic("ThenOperation", r)
					out.Operation.TrySetException(PanicError{Value: r})
				}
			}()
			inner = fn(op.Result())
		}()
		if inner == nil {
			return
		}
		inner.Operation.AddCompletionCallback(Inline, func(*Operation) {
			switch inner.Status() {
			case RanToCompletion:
				out.TrySetResult(inner.Result())
			case Faulted:
				out.Operation.TrySetException(inner.Exception())
			case Canceled:
				out.Operation.TrySetCanceled(inner.Exception())
			}
		})
	})
	return out
}

// Catch runs fn only if op Faulted with an error matching target type E
// (via errors.As), producing an Operation that completes however fn's
// returned Operation completes. If op did not fault, or faulted with an
// error that does not match E, the fault/success/cancellation propagates
// unchanged.
func Catch[E error](op *Operation, ctx Context, fn func(E) *Operation) *Operation {
	out := NewOperation(nil)
	op.AddCompletionCallback(ctx, func(*Operation) {
		if op.Status() != Faulted {
			passThrough(out, op)
			return
		}
		var target E
		if !errors.As(op.Exception(), &target) {
			passThrough(out, op)
			return
		}
		runContinuation(out, Inline, func() {
			inner := fn(target)
			if inner == nil {
				out.TrySetCompleted()
				return
			}
			inner.AddCompletionCallback(Inline, func(*Operation) { passThrough(out, inner) })
		})
	})
	return out
}

// Finally schedules fn to run, through ctx, after op completes, then
// propagates op's own terminal status/exception unchanged — the
// side-effect-only continuation. If fn panics, out Faults with the panic
// instead of propagating op's outcome; if op had already Faulted, the two
// errors are combined into an *AggregateError{op.Exception(), panic} rather
// than discarding op's original error.
func Finally(op *Operation, ctx Context, fn func()) *Operation {
	out := NewOperation(nil)
	op.AddCompletionCallback(ctx, func(*Operation) {
		Inline.Post(func() {
			defer func() {
				if r := recover(); r != nil {
					logPanic("Finally", r)
					panicErr := PanicError{Value: r}
					if op.Status() == Faulted {
						out.TrySetExceptions(op.Exception(), panicErr)
					} else {
						out.TrySetException(panicErr)
					}
				}
			}()
			fn()
			passThrough(out, op)
		})
	})
	return out
}

// passThrough completes out with in's own terminal status and exception.
// in must already be completed.
func passThrough(out *Operation, in *Operation) {
	switch in.Status() {
	case RanToCompletion:
		out.TrySetCompleted()
	case Faulted:
		out.TrySetException(in.Exception())
	case Canceled:
		out.TrySetCanceled(in.Exception())
	}
}

// Rebind maps a successful result from T to U via fn, propagating
// fault/cancellation unchanged. It is Then dispatched Inline: fn cannot
// return an error, and a panic in fn faults the result with a PanicError.
func Rebind[T, U any](op *TypedOperation[T], fn func(T) U) *TypedOperation[U] {
	return Then(op, Inline, fn)
}

// Unwrap flattens a TypedOperation whose result is itself a
// TypedOperation[U], following the inner operation to its own terminal
// status. Progress is reported as outer*0.5 + inner*0.5: 0.5 once the outer
// operation has produced inner, plus half of inner's own progress from then
// on.
func Unwrap[U any](op *TypedOperation[*TypedOperation[U]]) *TypedOperation[U] {
	out := NewTypedOperation[U](nil)

	op.Operation.AddProgressCallback(Inline, func(p float64) {
		out.Operation.TryReportProgress(p * 0.5)
	})

	op.Operation.AddCompletionCallback(Inline, func(*Operation) {
		switch op.Status() {
		case Faulted:
			out.Operation.TrySetException(op.Exception())
			return
		case Canceled:
			out.Operation.TrySetCanceled(op.Exception())
			return
		}
		inner := op.Result()
		if inner == nil {
			out.Operation.TrySetException(&ArgumentOutOfRangeError{Argument: "inner", Value: nil})
			return
		}
		inner.Operation.AddProgressCallback(Inline, func(p float64) {
			out.Operation.TryReportProgress(0.5 + p*0.5)
		})
		out.Operation.TryReportProgress(0.5)
		inner.Operation.AddCompletionCallback(Inline, func(*Operation) {
			switch inner.Status() {
			case RanToCompletion:
				out.TrySetResult(inner.Result())
			case Faulted:
				out.Operation.TrySetException(inner.Exception())
			case Canceled:
				out.Operation.TrySetCanceled(inner.Exception())
			}
		})
	})

	return out
}
