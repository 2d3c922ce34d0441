package async

import (
	"context"
	"runtime"
)

// Context is a dispatcher onto which a callback is posted: a pool, an event
// loop, a frame loop, or the inline/calling goroutine.
type Context interface {
	// Post schedules fn for execution on this Context. Post never blocks
	// the caller waiting for fn to run (it may run fn synchronously, as
	// Inline does, but it never queues behind unrelated blocking work).
	Post(fn func())
}

// inlineContext runs fn synchronously on the posting goroutine.
type inlineContext struct{}

func (inlineContext) Post(fn func()) { fn() }

// Inline is the Context that invokes callbacks synchronously, on whichever
// goroutine triggers the notification.
var Inline Context = inlineContext{}

// specificContext wraps an arbitrary posting function, e.g. a SerialQueue,
// a UI event loop adapter, or any func(func()) the host provides.
type specificContext struct {
	post func(func())
}

func (c specificContext) Post(fn func()) { c.post(fn) }

// Specific wraps post as a Context.
func Specific(post func(func())) Context {
	if post == nil {
		panic("async: Specific requires a non-nil post function")
	}
	return specificContext{post: post}
}

// defaultContext posts work to a small, bounded goroutine pool, grounded in
// go-eventloop's Promisify "one goroutine per unit of work" style, but
// capped so unbounded fan-out (e.g. a WhenAll over thousands of operations)
// runs at most len(sem) posted functions at once. Post starts a goroutine
// that waits for a free slot, so the caller never blocks.
type defaultContext struct {
	sem chan struct{}
}

func newDefaultContext() *defaultContext {
	n := runtime.GOMAXPROCS(0) * 4
	if n < 4 {
		n = 4
	}
	return &defaultContext{sem: make(chan struct{}, n)}
}

func (c *defaultContext) Post(fn func()) {
	go func() {
		c.sem <- struct{}{}
		defer func() { <-c.sem }()
		fn()
	}()
}

// Default is the generic worker-pool Context.
var Default Context = newDefaultContext()

// capturedContextKey is the context.Context value key under which a
// captured Context is stored by WithCapturedContext. Go has no ambient
// per-goroutine "current context" slot the way some coroutine runtimes do,
// so that notion is rendered idiomatically as explicit context.Context
// propagation instead: a host adapter calls WithCapturedContext once, on
// whatever context.Context it already threads through its call chain, and
// callers that want Captured dispatch pass Captured(thatContext) as the
// Context argument of AddCompletionCallback/AddProgressCallback.
type capturedContextKey struct{}

// WithCapturedContext returns a copy of parent carrying c as the captured
// Context for any Operation registration performed using the returned
// context.Context.
func WithCapturedContext(parent context.Context, c Context) context.Context {
	return context.WithValue(parent, capturedContextKey{}, c)
}

// capturedContext resolves to whatever Context was attached to ctx via
// WithCapturedContext, or degrades to Inline if none was attached.
type capturedContext struct {
	ctx context.Context
}

func (c capturedContext) Post(fn func()) {
	if v, ok := c.ctx.Value(capturedContextKey{}).(Context); ok && v != nil {
		v.Post(fn)
		return
	}
	fn()
}

// Captured returns the Context that dispatches via whatever Context was
// captured on ctx, degrading to Inline if ctx carries none. A nil ctx
// always degrades to Inline.
func Captured(ctx context.Context) Context {
	if ctx == nil {
		return Inline
	}
	return capturedContext{ctx: ctx}
}
