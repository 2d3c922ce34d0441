package async

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhenAllEmptyCompletesImmediately(t *testing.T) {
	out := WhenAll()
	assert.True(t, out.IsCompletedSuccessfully())
}

func TestWhenAllAllSucceed(t *testing.T) {
	a, b := NewOperation(nil), NewOperation(nil)
	out := WhenAll(a, b)
	a.TrySetCompleted()
	assert.False(t, out.IsCompleted())
	b.TrySetCompleted()
	assert.True(t, out.IsCompletedSuccessfully())
}

func TestWhenAllFaultedTakesPrecedenceOverCanceled(t *testing.T) {
	a, b, c := NewOperation(nil), NewOperation(nil), NewOperation(nil)
	out := WhenAll(a, b, c)
	e1 := errors.New("e1")
	a.TrySetCanceled(nil)
	b.TrySetException(e1)
	c.TrySetCompleted()

	require.True(t, out.IsFaulted())
	var agg *AggregateError
	require.True(t, errors.As(out.Exception(), &agg))
	assert.Equal(t, []error{e1}, agg.Errors)
}

func TestWhenAllCanceledWhenNoFault(t *testing.T) {
	a, b := NewOperation(nil), NewOperation(nil)
	out := WhenAll(a, b)
	a.TrySetCanceled(nil)
	b.TrySetCompleted()
	assert.True(t, out.IsCanceled())
}

func TestWhenAllAverageProgress(t *testing.T) {
	a, b := NewOperation(nil), NewOperation(nil)
	out := WhenAll(a, b)
	a.TryReportProgress(0.4)
	b.TryReportProgress(0.6)
	assert.InDelta(t, 0.5, out.Progress(), 1e-9)
}

func TestWhenAllCancelForwards(t *testing.T) {
	a, b := NewOperation(nil), NewOperation(nil)
	out := WhenAll(a, b)
	out.Cancel()
	assert.True(t, a.IsCancellationRequested())
	assert.True(t, b.IsCancellationRequested())
}

func TestWhenAllResultsOrdering(t *testing.T) {
	a := FromResult(1)
	b := NewTypedOperation[int](nil)
	out := WhenAllResults(a, b)
	assert.False(t, out.IsCompleted())
	b.TrySetResult(2)
	require.True(t, out.IsCompletedSuccessfully())
	assert.Equal(t, []int{1, 2}, out.Result())
}

func TestWhenAllResultsEmpty(t *testing.T) {
	out := WhenAllResults[int]()
	require.True(t, out.IsCompletedSuccessfully())
	assert.Nil(t, out.Result())
}

func TestWhenAnyFirstWins(t *testing.T) {
	a, b := NewOperation(nil), NewOperation(nil)
	out := WhenAny(a, b)
	b.TrySetCompleted()
	require.True(t, out.IsCompletedSuccessfully())
	assert.Same(t, b, out.Result())

	a.TrySetCompleted()
	assert.Same(t, b, out.Result(), "the first winner must stick")
}

func TestWhenAnyEmptyNeverCompletes(t *testing.T) {
	out := WhenAny()
	assert.False(t, out.IsCompleted())
}

func TestWhenAnyHighestProgressMirrored(t *testing.T) {
	a, b := NewOperation(nil), NewOperation(nil)
	out := WhenAny(a, b)
	a.TryReportProgress(0.3)
	assert.Equal(t, 0.3, out.Progress())
	b.TryReportProgress(0.7)
	assert.Equal(t, 0.7, out.Progress())
	a.TryReportProgress(0.5)
	assert.Equal(t, 0.7, out.Progress(), "lower progress must not override the highest seen")
}

func TestWhenAnyCancelForwards(t *testing.T) {
	a, b := NewOperation(nil), NewOperation(nil)
	out := WhenAny(a, b)
	out.Cancel()
	assert.True(t, a.IsCancellationRequested())
	assert.True(t, b.IsCancellationRequested())
}
