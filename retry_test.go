package async

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrySucceedsFirstTry(t *testing.T) {
	var calls int32
	out := Retry(func() *Operation {
		atomic.AddInt32(&calls, 1)
		return Completed()
	}, 0, 3)
	require.True(t, out.IsCompletedSuccessfully())
	assert.EqualValues(t, 1, calls)
}

func TestRetryExhaustsMaxAndAggregates(t *testing.T) {
	var calls int32
	cause := errors.New("always fails")
	out := Retry(func() *Operation {
		atomic.AddInt32(&calls, 1)
		return FromException(cause)
	}, 0, 3)
	require.True(t, out.IsFaulted())
	assert.EqualValues(t, 3, calls)

	var agg *AggregateError
	require.True(t, errors.As(out.Exception(), &agg))
	assert.Len(t, agg.Errors, 3)
}

func TestRetryMaxZeroRetriesIndefinitelyUntilSuccess(t *testing.T) {
	var calls int32
	out := Retry(func() *Operation {
		n := atomic.AddInt32(&calls, 1)
		if n < 5 {
			return FromException(errors.New("not yet"))
		}
		return Completed()
	}, 0, 0)
	require.True(t, out.IsCompletedSuccessfully())
	assert.EqualValues(t, 5, calls)
}

func TestRetryMaxNegativePanics(t *testing.T) {
	assert.Panics(t, func() {
		Retry(func() *Operation { return Completed() }, 0, -1)
	})
}

func TestRetryStopsOnCancellation(t *testing.T) {
	var calls int32
	produce := func() *Operation {
		atomic.AddInt32(&calls, 1)
		op := NewOperation(nil)
		op.onCancellationRequested(func() { op.TrySetCanceled(nil) })
		return op
	}
	out := Retry(produce, time.Hour, 0)
	out.Cancel()
	require.NoError(t, out.JoinWithTimeout(time.Second))
	assert.True(t, out.IsCanceled())
}

func TestSequenceEmptyCompletesImmediately(t *testing.T) {
	out := Sequence()
	assert.True(t, out.IsCompletedSuccessfully())
}

func TestSequenceRunsStepsInOrder(t *testing.T) {
	var order []int
	step := func(i int) func() *Operation {
		return func() *Operation {
			order = append(order, i)
			return Completed()
		}
	}
	out := Sequence(step(1), step(2), step(3))
	require.True(t, out.IsCompletedSuccessfully())
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestSequenceStopsOnFault(t *testing.T) {
	var ranThird bool
	cause := errors.New("step2 fails")
	out := Sequence(
		func() *Operation { return Completed() },
		func() *Operation { return FromException(cause) },
		func() *Operation { ranThird = true; return Completed() },
	)
	require.True(t, out.IsFaulted())
	assert.Equal(t, cause, out.Exception())
	assert.False(t, ranThird)
}

func TestSequenceProgress(t *testing.T) {
	second := NewOperation(nil)
	out := Sequence(
		func() *Operation { return Completed() },
		func() *Operation { return second },
	)
	second.TryReportProgress(0.5)
	assert.InDelta(t, 0.75, out.Progress(), 1e-9)
}
