package async

import "sync"

// TypedCompletionCallback is notified once when a TypedOperation[T] reaches
// a terminal status, with access to its typed Result.
type TypedCompletionCallback[T any] func(op *TypedOperation[T])

// TypedOperation is the typed half of this package's data model: an
// Operation that also carries a strongly-typed Result, the Go rendering of
// a generic Operation<T>. Go has no method overloading, so it cannot share
// the name Operation with its untyped counterpart; it embeds *Operation
// instead, so every untyped consumer method (Status, Wait, Cancel,
// AddCompletionCallback, ...) is promoted unchanged, and only the
// result-bearing surface is added here.
type TypedOperation[T any] struct {
	*Operation

	resultMu sync.Mutex
	result   T

	typed *callbackRegistry[TypedCompletionCallback[T]]
}

// NewTypedOperation constructs a fresh TypedOperation[T] in the Created
// status, carrying asyncState as its opaque producer tag.
func NewTypedOperation[T any](asyncState any) *TypedOperation[T] {
	base := NewOperation(asyncState)
	top := &TypedOperation[T]{Operation: base}
	top.typed = newCallbackRegistry(func(ctx Context, fn TypedCompletionCallback[T]) {
		ctx.Post(func() { fn(top) })
	})
	// Bridge: every completion of the untyped base also fires the typed
	// completion registry, inline. Being registered here, first, it runs
	// before any callback later added to the base — the base's callback
	// list is the source of truth for "has this fired".
	base.AddCompletionCallback(Inline, func(*Operation) { top.typed.fireAll() })
	return top
}

// Result returns the operation's result value. Before completion, or on a
// Faulted/Canceled operation, this is T's zero value.
func (op *TypedOperation[T]) Result() T {
	op.resultMu.Lock()
	defer op.resultMu.Unlock()
	return op.result
}

// TrySetResult performs the terminal RanToCompletion transition and, only
// if this call is the one that wins it, stores value. Returns false if the
// operation already completed, in which case value is discarded and
// op.result is left exactly as the winning call set it — a concurrent
// loser can never clobber the winner's result.
func (op *TypedOperation[T]) TrySetResult(value T) bool {
	return op.Operation.completeToWithHook(RanToCompletion, nil, func() {
		op.resultMu.Lock()
		op.result = value
		op.resultMu.Unlock()
	})
}

// SetResult is TrySetResult's non-try counterpart.
func (op *TypedOperation[T]) SetResult(value T) error {
	if !op.TrySetResult(value) {
		return &InvalidStateError{Operation: "SetResult", Current: op.Status()}
	}
	return nil
}

// AddTypedCompletionCallback registers fn to run once this operation
// completes, with direct access to the typed Result, dispatched through
// ctx. If the operation has already completed, fn runs immediately.
func (op *TypedOperation[T]) AddTypedCompletionCallback(ctx Context, fn TypedCompletionCallback[T]) CallbackHandle {
	if ctx == nil {
		ctx = Inline
	}
	return op.typed.add(ctx, fn)
}

// RemoveTypedCompletionCallback unregisters a callback added via
// AddTypedCompletionCallback.
func (op *TypedOperation[T]) RemoveTypedCompletionCallback(h CallbackHandle) bool {
	return op.typed.remove(h)
}

// Join blocks until completion and returns the result together with the
// terminal error (nil on RanToCompletion), the typed analogue of
// Operation.Join.
func (op *TypedOperation[T]) Join() (T, error) {
	op.Operation.Wait()
	return op.Result(), op.Exception()
}
