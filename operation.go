package async

import (
	"sync"
	"time"
)

// CompletionCallback is notified once when an Operation reaches a terminal
// status.
type CompletionCallback func(op *Operation)

// ProgressCallback is notified zero or more times with a value in [0,1]
// while an Operation is in-flight.
type ProgressCallback func(progress float64)

// Operation is a single, cooperatively cancellable unit of asynchronous
// work: the untyped half of this package's data model, generalized from
// github.com/joeycumines/go-eventloop's Promise (promise.go) onto an
// explicit, lock-free state machine (state.go) instead of a channel-based
// resolve/reject pair.
//
// An Operation is created Created, transitions forward through Scheduled and
// Running, and completes exactly once into RanToCompletion, Faulted, or
// Canceled. Every producer method below is safe to call concurrently with
// every consumer method; completion fires registered callbacks at most once
// each, in registration order, per callbackRegistry's sentinel protocol.
type Operation struct {
	st *state

	exception error // set iff status is Faulted, or Canceled-with-exception
	asyncState any  // opaque producer-supplied tag

	progress     float64
	progressMu   sync.Mutex
	cancel       *cancelSignal

	completion *callbackRegistry[CompletionCallback]
	progressCB *callbackRegistry[ProgressCallback]

	waitCh chan struct{} // closed exactly once, at terminal transition
}

// NewOperation constructs a fresh Operation in the Created status, carrying
// asyncState as its opaque producer tag.
func NewOperation(asyncState any) *Operation {
	op := &Operation{
		st:         newState(Created),
		asyncState: asyncState,
		cancel:     newCancelSignal(),
		waitCh:     make(chan struct{}),
	}
	op.completion = newCallbackRegistry(func(ctx Context, fn CompletionCallback) {
		ctx.Post(func() { fn(op) })
	})
	op.progressCB = newCallbackRegistry(func(ctx Context, fn ProgressCallback) {
		ctx.Post(func() {
			op.progressMu.Lock()
			p := op.progress
			op.progressMu.Unlock()
			fn(p)
		})
	})
	return op
}

// --- consumer surface -------------------------------------------------

// Status returns the operation's current lifecycle status.
func (op *Operation) Status() Status { return op.st.status() }

// IsCompleted reports whether Status is one of the three terminal values.
func (op *Operation) IsCompleted() bool { return op.st.hasFlag(flagCompleted) }

// IsCompletedSuccessfully reports whether the operation ran to completion.
func (op *Operation) IsCompletedSuccessfully() bool { return op.Status() == RanToCompletion }

// IsFaulted reports whether the operation completed with an error.
func (op *Operation) IsFaulted() bool { return op.Status() == Faulted }

// IsCanceled reports whether the operation completed via cancellation.
func (op *Operation) IsCanceled() bool { return op.Status() == Canceled }

// CompletedSynchronously reports whether the terminal transition happened
// on the same call stack that created the operation, letting callers
// short-circuit pointless scheduling overhead.
func (op *Operation) CompletedSynchronously() bool { return op.st.hasFlag(flagSynchronous) }

// Exception returns the terminal error, or nil if the operation has not
// completed or ran to completion. A Canceled operation may carry a non-nil
// Exception when cancellation was reported as a failure rather than a
// plain cancellation.
func (op *Operation) Exception() error { return op.exception }

// AsyncState returns the opaque producer-supplied tag passed to the
// constructing factory.
func (op *Operation) AsyncState() any { return op.asyncState }

// Progress returns the most recently reported progress value, in [0,1].
func (op *Operation) Progress() float64 {
	op.progressMu.Lock()
	defer op.progressMu.Unlock()
	return op.progress
}

// IsCancellationRequested reports whether Cancel has been called, without
// implying the operation has actually stopped: cancellation is cooperative
// and observed, never forced.
func (op *Operation) IsCancellationRequested() bool { return op.cancel.requestedFlag() }

// Cancel requests cooperative cancellation. Idempotent; does not by itself
// transition the operation. Producers observe IsCancellationRequested (or
// register via onCancellationRequested, internal to this package) and
// voluntarily call TrySetCanceled.
func (op *Operation) Cancel() { op.cancel.request() }

// AddCompletionCallback registers fn to run once this operation completes,
// dispatched through ctx. If the operation has already completed, fn runs
// immediately (through ctx). Returns a handle usable with
// RemoveCompletionCallback.
func (op *Operation) AddCompletionCallback(ctx Context, fn CompletionCallback) CallbackHandle {
	if ctx == nil {
		ctx = Inline
	}
	return op.completion.add(ctx, fn)
}

// RemoveCompletionCallback unregisters a callback added via
// AddCompletionCallback. Returns false if the handle is unknown, was
// already removed, or the registry has already fired.
func (op *Operation) RemoveCompletionCallback(h CallbackHandle) bool {
	return op.completion.remove(h)
}

// AddProgressCallback registers fn to run on every subsequent progress
// report, dispatched through ctx. A callback added after the operation has
// already reached a terminal status fires once immediately with the final
// progress value, rather than being silently dropped.
func (op *Operation) AddProgressCallback(ctx Context, fn ProgressCallback) CallbackHandle {
	if ctx == nil {
		ctx = Inline
	}
	if op.IsCompleted() {
		h := CallbackHandle{}
		p := op.Progress()
		ctx.Post(func() { fn(p) })
		return h
	}
	return op.progressCB.add(ctx, fn)
}

// RemoveProgressCallback unregisters a callback added via
// AddProgressCallback.
func (op *Operation) RemoveProgressCallback(h CallbackHandle) bool {
	return op.progressCB.remove(h)
}

// Wait blocks the calling goroutine until the operation completes.
func (op *Operation) Wait() {
	<-op.waitCh
}

// WaitTimeout blocks until the operation completes or timeout elapses,
// reporting which happened.
func (op *Operation) WaitTimeout(timeout time.Duration) (completed bool) {
	select {
	case <-op.waitCh:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Join blocks until completion and returns the terminal error (nil on
// RanToCompletion), the synchronous analogue of awaiting the operation.
func (op *Operation) Join() error {
	op.Wait()
	return op.exception
}

// JoinWithTimeout blocks until completion or timeout, returning a
// *TimeoutErrorKind if timeout elapses first.
func (op *Operation) JoinWithTimeout(timeout time.Duration) error {
	if !op.WaitTimeout(timeout) {
		return &TimeoutErrorKind{Message: "async: Join timed out before operation completed"}
	}
	return op.exception
}

// --- producer surface ---------------------------------------------------

// TrySetScheduled advances Created -> Scheduled. Returns false if the
// operation is not in Created, or has already completed.
func (op *Operation) TrySetScheduled() bool { return op.st.tryAdvance(Scheduled) }

// TrySetRunning advances {Created, Scheduled} -> Running. Returns false if
// the operation is already Running or has completed.
func (op *Operation) TrySetRunning() bool { return op.st.tryAdvance(Running) }

// TrySetCompleted performs the terminal RanToCompletion transition and
// fires completion callbacks. Returns false if the operation already
// completed.
func (op *Operation) TrySetCompleted() bool {
	return op.completeTo(RanToCompletion, nil)
}

// TrySetException performs the terminal Faulted transition carrying err
// (wrapped in *AggregateError if multiple errors are ever attached by a
// caller via TrySetExceptions). Returns false if already completed.
func (op *Operation) TrySetException(err error) bool {
	if err == nil {
		panic("async: TrySetException requires a non-nil error")
	}
	return op.completeTo(Faulted, err)
}

// TrySetExceptions performs the terminal Faulted transition carrying all of
// errs, wrapped in an *AggregateError when there is more than one. Returns
// false if already completed.
func (op *Operation) TrySetExceptions(errs ...error) bool {
	if len(errs) == 0 {
		panic("async: TrySetExceptions requires at least one error")
	}
	if len(errs) == 1 {
		return op.completeTo(Faulted, errs[0])
	}
	return op.completeTo(Faulted, &AggregateError{Errors: errs})
}

// SetCompleted is TrySetCompleted's non-try counterpart: it returns an
// *InvalidStateError instead of a bool when the operation has already
// completed, for callers that treat a redundant completion as a bug rather
// than a race to tolerate.
func (op *Operation) SetCompleted() error {
	if !op.TrySetCompleted() {
		return &InvalidStateError{Operation: "SetCompleted", Current: op.Status()}
	}
	return nil
}

// SetException is TrySetException's non-try counterpart.
func (op *Operation) SetException(err error) error {
	if !op.TrySetException(err) {
		return &InvalidStateError{Operation: "SetException", Current: op.Status()}
	}
	return nil
}

// TrySetCanceled performs the terminal Canceled transition, optionally
// carrying cause as the Exception: cause may be nil for a plain
// cancellation, or non-nil when cancellation is reported as a failure.
// Returns false if already completed.
func (op *Operation) TrySetCanceled(cause error) bool {
	var exc error
	if cause != nil {
		exc = &OperationCanceledError{Cause: cause}
	}
	return op.completeTo(Canceled, exc)
}

// SetCanceled is TrySetCanceled's non-try counterpart.
func (op *Operation) SetCanceled(cause error) error {
	if !op.TrySetCanceled(cause) {
		return &InvalidStateError{Operation: "SetCanceled", Current: op.Status()}
	}
	return nil
}

// completeTo performs the single terminal CAS, records synchronicity,
// stores the exception, closes waitCh, and fires completion callbacks. It
// is the single path every TrySet* producer method funnels through, so
// "only the first terminal transition wins" holds regardless of which
// terminal status is requested concurrently.
func (op *Operation) completeTo(to Status, exc error) bool {
	return op.completeToWithHook(to, exc, nil)
}

// completeToWithHook is completeTo with an extra hook run after the
// terminal CAS has been won (so op.progress/op.exception are already
// settled) but before waitCh closes and completion callbacks fire. It lets
// TypedOperation[T].TrySetResult commit its result exactly once, only on
// the call that actually wins the transition, and have that result visible
// to any completion callback the fire triggers.
func (op *Operation) completeToWithHook(to Status, exc error, hook func()) bool {
	synchronous := op.st.status() == Created
	if !op.st.tryComplete(to, synchronous) {
		return false
	}
	op.exception = exc
	op.progressMu.Lock()
	op.progress = 1
	op.progressMu.Unlock()
	if hook != nil {
		hook()
	}
	close(op.waitCh)
	op.completion.fireAll()
	return true
}

// TryReportProgress reports progress, a value expected in [0,1]. Returns
// false (and reports nothing) once the operation has completed: progress
// reporting stops once terminal.
func (op *Operation) TryReportProgress(progress float64) bool {
	if progress < 0 || progress > 1 {
		panic(&ArgumentOutOfRangeError{Argument: "progress", Value: progress})
	}
	if op.IsCompleted() {
		return false
	}
	op.progressMu.Lock()
	op.progress = progress
	op.progressMu.Unlock()
	op.progressCB.dispatchSnapshot()
	return true
}

// Dispose releases the operation's resources. Legal only once the
// operation has reached a terminal status; calling it earlier is a no-op
// that leaves IsDisposed false. Safe to call more than once once terminal;
// a no-op on an operation carrying flagDoNotDispose (the cached singleton
// returned by Completed()).
func (op *Operation) Dispose() {
	if op.st.hasFlag(flagDoNotDispose) {
		return
	}
	if !op.Status().IsTerminal() {
		return
	}
	op.st.setFlag(flagDisposed)
}

// IsDisposed reports whether Dispose has taken effect.
func (op *Operation) IsDisposed() bool { return op.st.hasFlag(flagDisposed) }

// markDoNotDispose flags op so Dispose becomes a permanent no-op; used by
// the cached Completed() singleton in factories.go.
func (op *Operation) markDoNotDispose() { op.st.setFlag(flagDoNotDispose) }

// onCancellationRequested registers fn to run as soon as Cancel is called
// (immediately, if it already has been). It is the producer-facing half of
// cooperative cancellation; consumers only ever see IsCancellationRequested
// and Cancel.
func (op *Operation) onCancellationRequested(fn func()) { op.cancel.onRequest(fn) }
