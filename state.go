package async

import "sync/atomic"

// Status represents the lifecycle state of an Operation.
//
// State Machine:
//
//	Created (0) → Scheduled (1) → Running (2) → {RanToCompletion (3) | Faulted (4) | Canceled (5)}
//
// Any non-terminal status may also jump directly to a terminal status, for
// operations that complete synchronously with the call that created them.
//
// Transition Rules:
//   - Every status change goes through tryAdvance/tryComplete (CAS); nothing
//     ever stores the word directly once an operation is live.
//   - Only the first CAS into a terminal status succeeds; every later
//     try_set_* call observes Completed already set and returns false.
type Status uint32

const (
	// Created indicates the operation has been constructed but not scheduled.
	Created Status = iota
	// Scheduled indicates the operation has been handed to a scheduler but
	// has not started running.
	Scheduled
	// Running indicates the operation is actively executing.
	Running
	// RanToCompletion indicates the operation finished successfully.
	RanToCompletion
	// Faulted indicates the operation finished with one or more errors.
	Faulted
	// Canceled indicates the operation finished due to cancellation.
	Canceled
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case Created:
		return "Created"
	case Scheduled:
		return "Scheduled"
	case Running:
		return "Running"
	case RanToCompletion:
		return "RanToCompletion"
	case Faulted:
		return "Faulted"
	case Canceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether s is one of RanToCompletion, Faulted, or Canceled.
func (s Status) IsTerminal() bool {
	return s == RanToCompletion || s == Faulted || s == Canceled
}

// flag is a bit packed above the status bits of a state word.
type flag uint32

const (
	statusBits = 3
	statusMask = uint64(1)<<statusBits - 1

	// flagCompleted is set atomically with the terminal status, in the same
	// CAS, so a reader observing Completed can always trust status.
	flagCompleted flag = 1 << iota
	// flagSynchronous is set when the terminal transition happened on the
	// same call stack that created the operation.
	flagSynchronous
	// flagDisposed marks a terminal operation that has released its
	// resources.
	flagDisposed
	// flagDoNotDispose marks shared singletons (e.g. the cached Completed()
	// operation) for which Dispose is always a silent no-op.
	flagDoNotDispose
	// flagCancellationRequested is not set anywhere in this package:
	// Cancel() records requests in the Operation's cancelSignal
	// (cancellation.go) instead of in the state word.
	flagCancellationRequested
)

// state is a single packed atomic word encoding Status (low bits) and flag
// bits (high bits), mutated exclusively via compare-and-swap. This is a
// lock-free transition protocol generalized from
// github.com/joeycumines/go-eventloop's FastState (state.go), including its
// cache-line padding to avoid false sharing across Operations packed into
// slices (e.g. WhenAll/WhenAny input arrays).
type state struct { //nolint:govet
	_ [64]byte
	v atomic.Uint64
	_ [56]byte
}

func newState(initial Status) *state {
	s := &state{}
	s.v.Store(uint64(initial))
	return s
}

func pack(status Status, f flag) uint64 {
	return uint64(status) | uint64(f)<<statusBits
}

func unpack(word uint64) (Status, flag) {
	return Status(word & statusMask), flag(word >> statusBits)
}

// load returns the current status and flag bits.
func (s *state) load() (Status, flag) {
	return unpack(s.v.Load())
}

func (s *state) status() Status {
	st, _ := s.load()
	return st
}

func (s *state) hasFlag(f flag) bool {
	_, cur := s.load()
	return cur&f != 0
}

// tryAdvance performs a monotonic, non-terminal upgrade (e.g.
// Created->Scheduled, Scheduled/Created->Running). It fails once Completed
// is set, or once status is already >= to.
func (s *state) tryAdvance(to Status) bool {
	for {
		old := s.v.Load()
		st, f := unpack(old)
		if f&flagCompleted != 0 || st >= to {
			return false
		}
		if s.v.CompareAndSwap(old, pack(to, f)) {
			return true
		}
	}
}

// tryComplete performs the single allowed terminal transition. synchronous
// marks whether the call happened on the creating call stack. Returns
// false if the operation was already completed.
func (s *state) tryComplete(to Status, synchronous bool) bool {
	if !to.IsTerminal() {
		panic("async: tryComplete requires a terminal status")
	}
	for {
		old := s.v.Load()
		_, f := unpack(old)
		if f&flagCompleted != 0 {
			return false
		}
		nf := f | flagCompleted
		if synchronous {
			nf |= flagSynchronous
		}
		if s.v.CompareAndSwap(old, pack(to, nf)) {
			return true
		}
	}
}

// setFlag atomically ORs f into the flag bits without touching status.
// Returns true the first time it actually flips the bit (idempotent calls
// after that return false), used for Dispose() idempotence and
// markDoNotDispose.
func (s *state) setFlag(f flag) (changed bool) {
	for {
		old := s.v.Load()
		st, cur := unpack(old)
		if cur&f != 0 {
			return false
		}
		if s.v.CompareAndSwap(old, pack(st, cur|f)) {
			return true
		}
	}
}
