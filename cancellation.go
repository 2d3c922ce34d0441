package async

import "sync"

// cancelSignal is the cooperative cancellation primitive backing
// Operation.Cancel()/IsCancellationRequested(), generalized from
// github.com/joeycumines/go-eventloop's AbortController/AbortSignal. Unlike
// the DOM AbortSignal it mimics, it never forces termination: cancellation
// stays purely cooperative, observed (or not) by the producer.
type cancelSignal struct {
	mu        sync.Mutex
	requested bool
	handlers  []func()
}

func newCancelSignal() *cancelSignal {
	return &cancelSignal{}
}

// requestedFlag reports whether Request has been called.
func (s *cancelSignal) requestedFlag() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requested
}

// onRequest registers fn to run when cancellation is requested. If already
// requested, fn runs immediately (synchronously, on the calling goroutine),
// matching AbortSignal.OnAbort's "already aborted" fast path.
func (s *cancelSignal) onRequest(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	if s.requested {
		s.mu.Unlock()
		fn()
		return
	}
	s.handlers = append(s.handlers, fn)
	s.mu.Unlock()
}

// request marks the signal as requested and invokes every registered
// handler exactly once. Idempotent: a second call is a no-op.
func (s *cancelSignal) request() {
	s.mu.Lock()
	if s.requested {
		s.mu.Unlock()
		return
	}
	s.requested = true
	handlers := s.handlers
	s.handlers = nil
	s.mu.Unlock()

	for _, h := range handlers {
		h()
	}
}

// cancelAny forwards Request to every signal in signals whenever any one of
// them is requested, generalizing go-eventloop's AbortAny composite-signal
// helper for combinators that forward cancellation to their active input(s).
func cancelAny(signals ...*cancelSignal) *cancelSignal {
	composite := newCancelSignal()
	for _, s := range signals {
		if s == nil {
			continue
		}
		s.onRequest(composite.request)
	}
	return composite
}
