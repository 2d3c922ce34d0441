package async

// Awaiter is the minimal "is it done yet, tell me when it is" protocol a
// host coroutine/generator driver can build a language-level await on top
// of, generalized from .NET's INotifyCompletion. It carries no GetResult of
// its own: VoidAwaiter adds GetResult() error for an untyped Operation and
// TypedAwaiter adds GetResult() (T, error) for a TypedOperation[T],
// mirroring the split between Operation and TypedOperation[T].
type Awaiter interface {
	// IsCompleted reports whether the operation has already reached a
	// terminal status; a driver may skip scheduling a continuation when
	// this is true and call GetResult immediately instead.
	IsCompleted() bool
	// OnCompleted registers resume to run once the operation completes.
	// If the operation is already complete, resume runs immediately.
	OnCompleted(resume func())
}

// VoidAwaiter is the Awaiter of an untyped Operation, additionally exposing
// the operation's terminal error via GetResult.
type VoidAwaiter interface {
	Awaiter
	// GetResult returns the terminal error of the wrapped Operation (nil on
	// RanToCompletion). It panics if the operation has not completed.
	GetResult() error
}

// operationAwaiter adapts an *Operation to the Awaiter protocol.
type operationAwaiter struct {
	op *Operation
}

// GetAwaiter returns a VoidAwaiter over op, suitable for a coroutine host.
func (op *Operation) GetAwaiter() VoidAwaiter {
	return operationAwaiter{op: op}
}

func (a operationAwaiter) IsCompleted() bool {
	return a.op.IsCompleted()
}

func (a operationAwaiter) OnCompleted(resume func()) {
	a.op.AddCompletionCallback(Inline, func(*Operation) { resume() })
}

// GetResult returns the terminal error of the wrapped Operation (nil on
// RanToCompletion), panicking if the operation has not yet completed —
// matching the awaiter contract that GetResult is only ever called after
// IsCompleted reports true or OnCompleted has fired.
func (a operationAwaiter) GetResult() error {
	if !a.op.IsCompleted() {
		panic("async: GetResult called before operation completed")
	}
	return a.op.Exception()
}

// typedAwaiter adapts an *Operation[T] to the Awaiter protocol, additionally
// exposing the typed result via GetResult.
type typedAwaiter[T any] struct {
	op *TypedOperation[T]
}

// GetAwaiter returns an Awaiter over op that also exposes its typed result.
func (op *TypedOperation[T]) GetAwaiter() TypedAwaiter[T] {
	return typedAwaiter[T]{op: op}
}

// TypedAwaiter is the generic counterpart of Awaiter, additionally exposing
// the operation's result value.
type TypedAwaiter[T any] interface {
	Awaiter
	// GetResult returns the result and terminal error of the wrapped
	// Operation[T]. err is nil iff the operation ran to completion.
	GetResult() (T, error)
}

func (a typedAwaiter[T]) IsCompleted() bool {
	return a.op.IsCompleted()
}

func (a typedAwaiter[T]) OnCompleted(resume func()) {
	a.op.Operation.AddCompletionCallback(Inline, func(*Operation) { resume() })
}

func (a typedAwaiter[T]) GetResult() (T, error) {
	if !a.op.IsCompleted() {
		panic("async: GetResult called before operation completed")
	}
	return a.op.Result(), a.op.Exception()
}

// ConfiguredAwaitable wraps an Operation with a fixed dispatch Context,
// analogous to .NET's ConfigureAwait(continueOnCapturedContext). Its
// Awaiter dispatches OnCompleted's resume through ctx instead of Inline.
type ConfiguredAwaitable struct {
	op  *Operation
	ctx Context
}

// ConfigureAwait returns a ConfiguredAwaitable that dispatches its
// continuation through ctx instead of running it inline on whatever
// goroutine completes op.
func (op *Operation) ConfigureAwait(ctx Context) ConfiguredAwaitable {
	return ConfiguredAwaitable{op: op, ctx: ctx}
}

// GetAwaiter returns the configured VoidAwaiter.
func (c ConfiguredAwaitable) GetAwaiter() VoidAwaiter {
	return configuredAwaiter(c)
}

type configuredAwaiter ConfiguredAwaitable

func (a configuredAwaiter) IsCompleted() bool {
	return a.op.IsCompleted()
}

func (a configuredAwaiter) OnCompleted(resume func()) {
	a.op.AddCompletionCallback(a.ctx, func(*Operation) { resume() })
}

func (a configuredAwaiter) GetResult() error {
	if !a.op.IsCompleted() {
		panic("async: GetResult called before operation completed")
	}
	return a.op.Exception()
}
