// Package async provides Operation, a cooperative asynchronous-operation
// primitive in the spirit of a Promise/A+ or .NET Task: a lock-free state
// machine (state.go) carrying a result or error, zero-or-more progress
// reports, and a registry of completion/progress callbacks (registry.go)
// that fire exactly once (or repeatedly, for progress) with no loss or
// duplication under concurrent registration and completion.
//
// # Architecture
//
// An [Operation] is untyped: Created, Scheduled, Running, then exactly one
// of RanToCompletion, Faulted, or Canceled (state.go). [TypedOperation] adds
// a strongly-typed Result on top (operation_typed.go). Factories
// (factories.go) construct operations already complete ([Completed],
// [FromResult], [FromException], [FromCanceled]), time-delayed ([Delay]),
// tick-delayed ([DelayByUpdate], update.go), or backed by a goroutine
// ([Run], [RunTyped]).
//
// Combinators (combinators.go, continuation.go, retry.go) build new
// operations out of existing ones: [WhenAll], [WhenAny], [ContinueWith],
// [Then], [ThenOperation], [Catch], [Finally], [Rebind], [Unwrap], [Retry],
// and [Sequence]. [SerialQueue] (queue.go) sequences externally owned
// operations added via TryAdd, starting each one only once the one before
// it has gone terminal, without ever invoking producer code itself.
//
// Callbacks are dispatched through a [Context] (context.go): [Inline] runs
// them synchronously, [Default] posts to a bounded worker pool, [Specific]
// wraps an arbitrary posting function (a [SerialQueue], a UI event loop
// adapter), and [Captured] resolves to whatever Context was attached to a
// context.Context via [WithCapturedContext]. [Awaiter] and [TypedAwaiter]
// (awaiter.go) expose the is-it-done/tell-me-when protocol a coroutine host
// can build a language-level await on top of.
//
// # Cancellation
//
// Cancellation (cancellation.go) is purely cooperative: [Operation.Cancel]
// sets a flag and fans out to registered handlers, but never forces an
// operation to stop. Producers observe [Operation.IsCancellationRequested]
// and voluntarily call [Operation.TrySetCanceled]. Combinators forward
// Cancel to their inputs (Retry: to its current attempt).
//
// # Thread Safety
//
// Every Operation method is safe to call concurrently from any goroutine.
// Completion is a single compare-and-swap: only the first TrySet* call to
// reach a terminal status succeeds, and every later one is a no-op
// returning false.
//
// # Error Types
//
// The package provides a small error hierarchy (errors.go):
//   - [AggregateError]: multiple errors collected at a Faulted transition
//   - [OperationCanceledError]: a Canceled operation's optional cause
//   - [InvalidStateError]: a disallowed transition attempt
//   - [DisposedError]: an operation used after [Operation.Dispose]
//   - [ArgumentOutOfRangeError]: an out-of-range progress value or duration
//   - [TimeoutErrorKind]: [Operation.JoinWithTimeout] timing out
//   - [PanicError]: a panic recovered from a callback, combinator body, or
//     producer-supplied function
//
// All error types implement the standard [error] interface, [errors.Unwrap]
// (including multi-error unwrapping for AggregateError), and Is()-based
// matching where it is useful (AggregateError, OperationCanceledError).
package async
