package async

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeOnCompleted(t *testing.T) {
	op := NewTypedOperation[int](nil)
	var result int
	var completed bool
	Subscribe[int](op, ObserverFunc[int]{
		Next:      func(v int) { result = v },
		Completed: func() { completed = true },
		Error:     func(error) { t.Fatal("OnError must not fire") },
	})
	op.TrySetResult(5)
	require.True(t, completed)
	assert.Equal(t, 5, result)
}

func TestSubscribeOnError(t *testing.T) {
	op := NewTypedOperation[int](nil)
	cause := errors.New("bad")
	var gotErr error
	Subscribe[int](op, ObserverFunc[int]{
		Completed: func() { t.Fatal("OnCompleted must not fire") },
		Error:     func(err error) { gotErr = err },
	})
	op.Operation.TrySetException(cause)
	assert.Equal(t, cause, gotErr)
}

func TestSubscribeOnCanceledCallsOnCompletedNotOnError(t *testing.T) {
	op := NewTypedOperation[int](nil)
	var completed bool
	Subscribe[int](op, ObserverFunc[int]{
		Next:      func(int) { t.Fatal("OnNext must not fire without a result") },
		Completed: func() { completed = true },
		Error:     func(error) { t.Fatal("OnError must not fire on cancellation") },
	})
	op.Operation.TrySetCanceled(nil)
	assert.True(t, completed)
}

func TestSubscribeDisposeUnsubscribes(t *testing.T) {
	op := NewTypedOperation[int](nil)
	called := false
	sub := Subscribe[int](op, ObserverFunc[int]{
		Completed: func() { called = true },
	})
	sub.Dispose()
	op.TrySetResult(1)
	assert.False(t, called)
}

func TestObserverFuncNilFieldsAreNoOps(t *testing.T) {
	o := ObserverFunc[int]{}
	assert.NotPanics(t, func() {
		o.OnNext(1)
		o.OnCompleted()
		o.OnError(errors.New("x"))
	})
}
