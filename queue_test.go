package async

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialQueueHeadStartOrdering(t *testing.T) {
	q := NewSerialQueue(WithQueueContext(Inline))

	a := NewOperation(nil)
	b := NewOperation(nil)
	c := NewOperation(nil)

	require.True(t, q.TryAdd(a))
	require.True(t, q.TryAdd(b))
	require.True(t, q.TryAdd(c))

	assert.Equal(t, Running, a.Status(), "only the head starts immediately")
	assert.Equal(t, Scheduled, b.Status())
	assert.Equal(t, Scheduled, c.Status())
	assert.Same(t, a, q.Current())

	a.TrySetCompleted()
	assert.Equal(t, Running, b.Status(), "b starts only once a is terminal")
	assert.Equal(t, Scheduled, c.Status())
	assert.Same(t, b, q.Current())

	b.TrySetCompleted()
	assert.Equal(t, Running, c.Status())
	assert.Same(t, c, q.Current())

	c.TrySetCompleted()
	assert.Nil(t, q.Current())
	assert.Equal(t, 0, q.Len())
}

func TestSerialQueueTryAddRejectsWhenFull(t *testing.T) {
	q := NewSerialQueue(WithQueueContext(Inline), WithQueueCapacity(1))
	a := NewOperation(nil)
	b := NewOperation(nil)

	require.True(t, q.TryAdd(a))
	assert.False(t, q.TryAdd(b), "bounded queue must refuse once full")
	assert.Equal(t, Created, b.Status())
}

func TestSerialQueueRemoveHeadStartsNext(t *testing.T) {
	q := NewSerialQueue(WithQueueContext(Inline))
	a := NewOperation(nil)
	b := NewOperation(nil)
	require.True(t, q.TryAdd(a))
	require.True(t, q.TryAdd(b))

	require.True(t, q.Remove(a))
	assert.Equal(t, Running, b.Status())
	assert.False(t, q.Remove(a), "already removed")
}

func TestSerialQueueReleaseAndClear(t *testing.T) {
	q := NewSerialQueue(WithQueueContext(Inline))
	a := NewOperation(nil)
	b := NewOperation(nil)
	require.True(t, q.TryAdd(a))
	require.True(t, q.TryAdd(b))

	snapshot := q.Release()
	assert.Equal(t, []*Operation{a, b}, snapshot)
	assert.Equal(t, 0, q.Len())
	assert.Nil(t, q.Current())

	c := NewOperation(nil)
	require.True(t, q.TryAdd(c))
	q.Clear()
	assert.Equal(t, 0, q.Len())
}

func TestSerialQueueToArray(t *testing.T) {
	q := NewSerialQueue(WithQueueContext(Inline))
	a := NewOperation(nil)
	b := NewOperation(nil)
	require.True(t, q.TryAdd(a))
	require.True(t, q.TryAdd(b))

	assert.Equal(t, []*Operation{a, b}, q.ToArray())
}

func TestSerialQueueSuspendedBlocksHeadStart(t *testing.T) {
	q := NewSerialQueue(WithQueueContext(Inline))
	q.SetSuspended(true)
	assert.True(t, q.Suspended())

	a := NewOperation(nil)
	require.True(t, q.TryAdd(a))
	assert.Equal(t, Scheduled, a.Status(), "suspended queue starts nothing")

	q.SetSuspended(false)
	assert.Equal(t, Running, a.Status(), "un-suspending re-kicks the head")
}

func TestSerialQueueAsyncDispatchStillOrdersCorrectly(t *testing.T) {
	q := NewSerialQueue(WithQueueContext(Default))
	a := NewOperation(nil)
	b := NewOperation(nil)

	require.True(t, q.TryAdd(a))
	require.True(t, q.TryAdd(b))

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, Scheduled, b.Status(), "b must not start before a is terminal")

	a.TrySetCompleted()
	require.Eventually(t, func() bool { return b.Status() == Running }, time.Second, time.Millisecond)
}
