package async

import "sync"

// queueOptions holds configuration for a SerialQueue, following
// go-eventloop's functional-options pattern (options.go's
// loopOptions/LoopOption).
type queueOptions struct {
	ctx      Context
	maxCount int
}

// QueueOption configures a SerialQueue.
type QueueOption interface {
	applyQueue(*queueOptions)
}

type queueOptionFunc func(*queueOptions)

func (f queueOptionFunc) applyQueue(o *queueOptions) { f(o) }

// WithQueueContext sets the Context under which each queued operation's
// completion callback is registered. Defaults to Default (the bounded
// worker pool).
func WithQueueContext(ctx Context) QueueOption {
	return queueOptionFunc(func(o *queueOptions) { o.ctx = ctx })
}

// WithQueueCapacity bounds the number of operations TryAdd will accept
// before refusing further additions. Zero (the default) means unbounded.
func WithQueueCapacity(maxCount int) QueueOption {
	return queueOptionFunc(func(o *queueOptions) { o.maxCount = maxCount })
}

func resolveQueueOptions(opts []QueueOption) *queueOptions {
	cfg := &queueOptions{ctx: Default}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyQueue(cfg)
	}
	return cfg
}

// SerialQueue sequences the start and completion of externally owned
// Operations: for any two operations A added before B, A reaches Running
// before B, and B does not reach Running until A is terminal. SerialQueue
// never invokes producer code itself — it only flips an already-supplied
// Operation's Scheduled->Running transition when it becomes the head and
// the queue isn't suspended, the Go rendering of go-eventloop's Loop
// ingress-and-drain discipline (loop.go's external/internal ChunkedIngress
// feeding a single-threaded tick loop) applied to a queue of externally
// driven Operations instead of internally produced tasks.
type SerialQueue struct {
	opts *queueOptions

	mu        sync.Mutex
	pending   []*Operation
	suspended bool
}

// NewSerialQueue constructs a SerialQueue applying opts.
func NewSerialQueue(opts ...QueueOption) *SerialQueue {
	return &SerialQueue{opts: resolveQueueOptions(opts)}
}

// TryAdd registers a completion callback on op (dispatched through the
// queue's context), enqueues op, and starts it immediately if it lands at
// the head and the queue isn't suspended. Returns false without enqueuing
// op if the queue is bounded and already full.
func (q *SerialQueue) TryAdd(op *Operation) bool {
	q.mu.Lock()
	if q.opts.maxCount > 0 && len(q.pending) >= q.opts.maxCount {
		q.mu.Unlock()
		return false
	}
	q.pending = append(q.pending, op)
	op.TrySetScheduled()
	q.startHeadLocked()
	q.mu.Unlock()

	op.AddCompletionCallback(q.opts.ctx, q.onOpCompleted)
	return true
}

// onOpCompleted runs whenever a queued operation completes: it unlinks
// that operation from the queue, wherever it sits, and starts the new head
// if the completed operation had been sitting at the front.
func (q *SerialQueue) onOpCompleted(op *Operation) {
	q.mu.Lock()
	defer q.mu.Unlock()
	idx := q.indexOfLocked(op)
	if idx < 0 {
		return
	}
	q.pending = append(q.pending[:idx], q.pending[idx+1:]...)
	if idx == 0 {
		q.startHeadLocked()
	}
}

func (q *SerialQueue) indexOfLocked(op *Operation) int {
	for i, p := range q.pending {
		if p == op {
			return i
		}
	}
	return -1
}

// startHeadLocked transitions the current head Scheduled->Running if the
// queue isn't suspended. Called only while holding mu, matching
// go-eventloop's isLoopThread-style discipline that only the goroutine
// owning the lock ever drives a transition.
func (q *SerialQueue) startHeadLocked() {
	if q.suspended || len(q.pending) == 0 {
		return
	}
	q.pending[0].TrySetRunning()
}

// Remove unlinks op from the queue without altering op's own state. If op
// was the head, the next entry (if any) is started. Returns false if op
// was not queued.
func (q *SerialQueue) Remove(op *Operation) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	idx := q.indexOfLocked(op)
	if idx < 0 {
		return false
	}
	q.pending = append(q.pending[:idx], q.pending[idx+1:]...)
	if idx == 0 {
		q.startHeadLocked()
	}
	return true
}

// Clear empties the queue's bookkeeping without reporting what was
// removed; queued operations are left exactly as they were otherwise.
func (q *SerialQueue) Clear() {
	q.Release()
}

// Release empties the queue and returns a snapshot of everything that was
// still queued, in FIFO order, head first.
func (q *SerialQueue) Release() []*Operation {
	q.mu.Lock()
	defer q.mu.Unlock()
	released := q.pending
	q.pending = nil
	return released
}

// ToArray returns a snapshot of the queue's current contents, in FIFO
// order, head first.
func (q *SerialQueue) ToArray() []*Operation {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Operation, len(q.pending))
	copy(out, q.pending)
	return out
}

// Current returns the head of the queue, or nil if the queue is empty.
func (q *SerialQueue) Current() *Operation {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	return q.pending[0]
}

// Suspended reports whether the queue is currently refusing to start new
// heads.
func (q *SerialQueue) Suspended() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.suspended
}

// SetSuspended toggles whether the queue starts new heads. Setting it back
// to false re-kicks the current head if one is waiting.
func (q *SerialQueue) SetSuspended(suspended bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.suspended = suspended
	if !suspended {
		q.startHeadLocked()
	}
}

// Len reports how many operations are currently queued, including the
// running head, if any.
func (q *SerialQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
