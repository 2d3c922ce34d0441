package async

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpdateSource struct {
	listeners []Updatable
}

func (s *fakeUpdateSource) AddListener(u Updatable) {
	s.listeners = append(s.listeners, u)
}

func (s *fakeUpdateSource) RemoveListener(u Updatable) {
	for i, l := range s.listeners {
		if l == u {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

func (s *fakeUpdateSource) tick(d time.Duration) {
	for _, l := range append([]Updatable(nil), s.listeners...) {
		l.Update(d)
	}
}

func TestDelayByUpdateCompletesAfterTarget(t *testing.T) {
	src := &fakeUpdateSource{}
	op := DelayByUpdate(src, 100*time.Millisecond)
	assert.False(t, op.IsCompleted())

	src.tick(60 * time.Millisecond)
	assert.False(t, op.IsCompleted())

	src.tick(60 * time.Millisecond)
	require.True(t, op.IsCompletedSuccessfully())
	assert.Empty(t, src.listeners, "listener must detach once finished")
}

func TestDelayByUpdateNonPositiveTargetCompletesImmediately(t *testing.T) {
	src := &fakeUpdateSource{}
	op := DelayByUpdate(src, 0)
	assert.True(t, op.IsCompletedSuccessfully())
}

func TestDelayByUpdateCancellation(t *testing.T) {
	src := &fakeUpdateSource{}
	op := DelayByUpdate(src, time.Hour)
	op.Cancel()
	src.tick(time.Millisecond)
	require.True(t, op.IsCanceled())
	assert.Empty(t, src.listeners)
}
