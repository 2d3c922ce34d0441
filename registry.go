package async

import (
	"sync"

	"github.com/google/uuid"
)

// CallbackHandle identifies a registered completion or progress callback for
// later removal. It is a UUID rather than a raw pointer/index so that a
// handle from a removed entry can never alias a later entry that happens to
// reuse the same slot — the same ABA concern go-eventloop's raw-pointer
// identity in eventtarget.go's ListenerID sidesteps with a narrower uint64
// counter; a UUID is used here because handles can flow across Operation
// boundaries, e.g. combinators re-registering on their inputs.
type CallbackHandle = uuid.UUID

// callbackEntry pairs a registered callback with the handle used to remove
// it and the Context it should be dispatched through.
type callbackEntry[T any] struct {
	handle CallbackHandle
	ctx    Context
	fn     T
}

// callbackRegistry is the thread-safe continuation list backing completion
// and progress notification. Representation evolves from an embedded
// single slot (h0) to an overflow slice once a second entry arrives,
// mirroring go-eventloop's ChainedPromise.addHandler optimization
// (promise.go, h0/h0Used) for the common single-continuation case. Once
// fired is set (the completion sentinel), every entry already stored has
// been dispatched exactly once, and any further add invokes its callback
// immediately through the requested Context instead of being queued —
// giving "no loss, no duplication" under concurrent add/fire.
type callbackRegistry[T any] struct {
	mu     sync.Mutex
	fired  bool
	h0     callbackEntry[T]
	h0Used bool
	rest   []callbackEntry[T]

	dispatch func(ctx Context, fn T)
}

func newCallbackRegistry[T any](dispatch func(ctx Context, fn T)) *callbackRegistry[T] {
	return &callbackRegistry[T]{dispatch: dispatch}
}

// add registers fn under ctx. If the registry has already fired, fn is
// dispatched immediately (through ctx) and a fresh handle is still returned
// for API symmetry, though remove on it will simply report false.
func (r *callbackRegistry[T]) add(ctx Context, fn T) CallbackHandle {
	h := uuid.New()

	r.mu.Lock()
	if r.fired {
		r.mu.Unlock()
		r.dispatch(ctx, fn)
		return h
	}

	if !r.h0Used {
		r.h0 = callbackEntry[T]{handle: h, ctx: ctx, fn: fn}
		r.h0Used = true
	} else {
		r.rest = append(r.rest, callbackEntry[T]{handle: h, ctx: ctx, fn: fn})
	}
	r.mu.Unlock()

	return h
}

// remove removes a previously registered callback by handle. Returns false
// if the handle was never registered, already removed, or already fired.
func (r *callbackRegistry[T]) remove(h CallbackHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.h0Used && r.h0.handle == h {
		r.h0 = callbackEntry[T]{}
		r.h0Used = false
		return true
	}
	for i, e := range r.rest {
		if e.handle == h {
			r.rest = append(r.rest[:i], r.rest[i+1:]...)
			return true
		}
	}
	return false
}

// fireAll installs the completion sentinel (fired=true) and dispatches
// every currently-registered callback, in FIFO registration order. The
// owning Operation guarantees this is called at most once, via
// state.tryComplete's single-CAS-wins contract.
func (r *callbackRegistry[T]) fireAll() {
	r.mu.Lock()
	if r.fired {
		r.mu.Unlock()
		return
	}
	r.fired = true

	var entries []callbackEntry[T]
	if r.h0Used {
		entries = append(entries, r.h0)
	}
	entries = append(entries, r.rest...)
	r.h0 = callbackEntry[T]{}
	r.h0Used = false
	r.rest = nil
	r.mu.Unlock()

	for _, e := range entries {
		r.dispatch(e.ctx, e.fn)
	}
}

// snapshot returns the callbacks currently registered, without firing or
// removing them. Used by progress notification, which must NOT install the
// completion sentinel — progress can legitimately fire many times before
// completion.
func (r *callbackRegistry[T]) snapshot() []callbackEntry[T] {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []callbackEntry[T]
	if r.h0Used {
		entries = append(entries, r.h0)
	}
	entries = append(entries, r.rest...)
	return entries
}

// dispatchSnapshot dispatches every currently-registered callback once,
// without installing the completion sentinel, for repeatable-fire notices
// like progress reports.
func (r *callbackRegistry[T]) dispatchSnapshot() {
	for _, e := range r.snapshot() {
		r.dispatch(e.ctx, e.fn)
	}
}
