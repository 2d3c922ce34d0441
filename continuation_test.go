package async

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContinueWithRunsAfterCompletion(t *testing.T) {
	op := NewOperation(nil)
	var seen *Operation
	out := ContinueWith(op, Inline, func(completed *Operation) { seen = completed })
	op.TrySetCompleted()
	require.True(t, out.IsCompletedSuccessfully())
	assert.Same(t, op, seen)
}

func TestContinueWithAllDisqualifiedBecomesCanceled(t *testing.T) {
	op := NewOperation(nil)
	out := ContinueWith(op, Inline, func(*Operation) { t.Fatal("fn must not run") },
		NotOnRanToCompletion, NotOnFaulted, NotOnCanceled)
	op.TrySetCompleted()
	assert.True(t, out.IsCanceled())
}

func TestContinueWithNotOnFaultedSkipsOnFault(t *testing.T) {
	op := NewOperation(nil)
	out := ContinueWith(op, Inline, func(*Operation) { t.Fatal("fn must not run") }, NotOnFaulted)
	op.TrySetException(errors.New("boom"))
	assert.True(t, out.IsCanceled())
}

func TestContinueWithPanicBecomesFaulted(t *testing.T) {
	op := NewOperation(nil)
	out := ContinueWith(op, Inline, func(*Operation) { panic("kaboom") })
	op.TrySetCompleted()
	require.True(t, out.IsFaulted())
	var pe PanicError
	require.True(t, errors.As(out.Exception(), &pe))
}

func TestThenRunsOnSuccess(t *testing.T) {
	in := FromResult(3)
	out := Then(in, Inline, func(v int) int { return v * 2 })
	assert.Equal(t, 6, out.Result())
}

func TestThenPropagatesFault(t *testing.T) {
	cause := errors.New("bad")
	in := FromExceptionTyped[int](cause)
	out := Then(in, Inline, func(v int) int { t.Fatal("fn must not run"); return 0 })
	assert.True(t, out.IsFaulted())
	assert.Equal(t, cause, out.Exception())
}

func TestThenOperationUnwrapsInner(t *testing.T) {
	in := FromResult(2)
	out := ThenOperation(in, Inline, func(v int) *TypedOperation[int] {
		return FromResult(v + 1)
	})
	assert.Equal(t, 3, out.Result())
}

func TestCatchMatchesTypedError(t *testing.T) {
	type myErr struct{ error }
	cause := myErr{errors.New("specific")}
	in := FromException(cause)
	out := Catch(in, Inline, func(e myErr) *Operation {
		return Completed()
	})
	assert.True(t, out.IsCompletedSuccessfully())
}

func TestCatchPassesThroughOnMismatch(t *testing.T) {
	type otherErr struct{ error }
	cause := errors.New("plain")
	in := FromException(cause)
	out := Catch(in, Inline, func(e otherErr) *Operation {
		t.Fatal("fn must not run")
		return nil
	})
	assert.True(t, out.IsFaulted())
	assert.Equal(t, cause, out.Exception())
}

func TestFinallyRunsAndPropagates(t *testing.T) {
	in := FromResult(1)
	ran := false
	out := Finally(in.Operation, Inline, func() { ran = true })
	assert.True(t, ran)
	assert.True(t, out.IsCompletedSuccessfully())
}

func TestFinallyPanicOnAlreadyFaultedAggregates(t *testing.T) {
	cause := errors.New("already bad")
	in := FromException(cause)
	out := Finally(in, Inline, func() { panic("finally also blew up") })

	require.True(t, out.IsFaulted())
	var agg *AggregateError
	require.ErrorAs(t, out.Exception(), &agg)
	require.Len(t, agg.Errors, 2)
	assert.Equal(t, cause, agg.Errors[0])
	var panicErr PanicError
	require.ErrorAs(t, agg.Errors[1], &panicErr)
	assert.Equal(t, "finally also blew up", panicErr.Value)
}

func TestFinallyPanicOnSuccessReplacesResult(t *testing.T) {
	in := FromResult(1)
	out := Finally(in.Operation, Inline, func() { panic("boom") })

	require.True(t, out.IsFaulted())
	var panicErr PanicError
	require.ErrorAs(t, out.Exception(), &panicErr)
	assert.Equal(t, "boom", panicErr.Value)
}

func TestRebindMapsResult(t *testing.T) {
	in := FromResult("hi")
	out := Rebind(in, func(s string) int { return len(s) })
	assert.Equal(t, 2, out.Result())
}

func TestUnwrapProgressFormula(t *testing.T) {
	inner := NewTypedOperation[int](nil)
	outer := NewTypedOperation[*TypedOperation[int]](nil)
	result := Unwrap[int](outer)

	outer.TryReportProgress(0.4)
	assert.InDelta(t, 0.2, result.Progress(), 1e-9)

	outer.TrySetResult(inner)
	assert.InDelta(t, 0.5, result.Progress(), 1e-9)

	inner.TryReportProgress(0.6)
	assert.InDelta(t, 0.8, result.Progress(), 1e-9)

	inner.TrySetResult(9)
	assert.Equal(t, 9, result.Result())
}

func TestUnwrapPropagatesOuterFault(t *testing.T) {
	cause := errors.New("outer bad")
	outer := FromExceptionTyped[*TypedOperation[int]](cause)
	result := Unwrap[int](outer)
	assert.True(t, result.IsFaulted())
	assert.Equal(t, cause, result.Exception())
}
