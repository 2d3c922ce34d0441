package async

import (
	"math"
	"sync"
	"sync/atomic"
)

// WhenAll returns an Operation that completes once every operation in ops
// has completed. Precedence on completion, worst first: any Faulted input
// makes the result Faulted, carrying an *AggregateError of every faulted
// input's error in input order; otherwise any Canceled input makes the
// result Canceled; otherwise the result runs to completion. An empty ops
// list completes immediately. While in-flight, progress is reported as the
// average of every input's current progress. Cancel on the result forwards
// to every input, including any that have already completed.
func WhenAll(ops ...*Operation) *Operation {
	out := NewOperation(nil)
	if len(ops) == 0 {
		out.TrySetCompleted()
		return out
	}

	out.onCancellationRequested(func() {
		for _, op := range ops {
			op.Cancel()
		}
	})

	wireAverageProgress(out, ops)

	var remaining atomic.Int64
	remaining.Store(int64(len(ops)))

	for _, op := range ops {
		op.AddCompletionCallback(Inline, func(*Operation) {
			if remaining.Add(-1) != 0 {
				return
			}
			var errs []error
			anyCanceled := false
			for _, in := range ops {
				switch in.Status() {
				case Faulted:
					errs = append(errs, in.Exception())
				case Canceled:
					anyCanceled = true
				}
			}
			switch {
			case len(errs) > 0:
				out.TrySetException(&AggregateError{Errors: errs})
			case anyCanceled:
				out.TrySetCanceled(nil)
			default:
				out.TrySetCompleted()
			}
		})
	}
	return out
}

// WhenAllResults is the typed variant of WhenAll: it waits for every
// operation in ops to run to completion and reports their results as a
// slice ordered exactly as ops was given. Failure/cancellation precedence
// and progress averaging match WhenAll exactly.
func WhenAllResults[T any](ops ...*TypedOperation[T]) *TypedOperation[[]T] {
	out := NewTypedOperation[[]T](nil)
	if len(ops) == 0 {
		out.TrySetResult(nil)
		return out
	}

	untyped := make([]*Operation, len(ops))
	for i, op := range ops {
		untyped[i] = op.Operation
	}

	out.onCancellationRequested(func() {
		for _, op := range ops {
			op.Cancel()
		}
	})

	wireAverageProgress(out.Operation, untyped)

	var remaining atomic.Int64
	remaining.Store(int64(len(ops)))

	for _, op := range ops {
		op.Operation.AddCompletionCallback(Inline, func(*Operation) {
			if remaining.Add(-1) != 0 {
				return
			}
			var errs []error
			anyCanceled := false
			for _, in := range ops {
				switch in.Status() {
				case Faulted:
					errs = append(errs, in.Exception())
				case Canceled:
					anyCanceled = true
				}
			}
			switch {
			case len(errs) > 0:
				out.Operation.TrySetException(&AggregateError{Errors: errs})
			case anyCanceled:
				out.Operation.TrySetCanceled(nil)
			default:
				results := make([]T, len(ops))
				for i, in := range ops {
					results[i] = in.Result()
				}
				out.TrySetResult(results)
			}
		})
	}
	return out
}

// wireAverageProgress registers a progress callback on every op in ops
// that recomputes and reports the mean of all inputs' current progress on
// out, until out completes.
func wireAverageProgress(out *Operation, ops []*Operation) {
	var mu sync.Mutex
	values := make([]float64, len(ops))
	report := func() {
		mu.Lock()
		var sum float64
		for _, v := range values {
			sum += v
		}
		avg := sum / float64(len(values))
		mu.Unlock()
		out.TryReportProgress(avg)
	}
	for i, op := range ops {
		i := i
		op.AddProgressCallback(Inline, func(p float64) {
			mu.Lock()
			values[i] = p
			mu.Unlock()
			report()
		})
	}
}

// WhenAny returns a TypedOperation whose Result is whichever input in ops
// completes first, regardless of that input's own terminal status. While
// in-flight, progress mirrors whichever input currently reports the highest
// progress. Cancel on the result forwards to every input. WhenAny of an
// empty list never completes — there is no "first" to report, and no
// Created list of results to wait on.
func WhenAny(ops ...*Operation) *TypedOperation[*Operation] {
	out := NewTypedOperation[*Operation](nil)
	if len(ops) == 0 {
		return out
	}

	out.onCancellationRequested(func() {
		for _, op := range ops {
			op.Cancel()
		}
	})

	var highest atomic.Uint64 // bits of the highest progress value seen
	for _, op := range ops {
		op.AddProgressCallback(Inline, func(p float64) {
			bits := math.Float64bits(p)
			for {
				cur := highest.Load()
				if math.Float64frombits(cur) >= p {
					return
				}
				if highest.CompareAndSwap(cur, bits) {
					out.Operation.TryReportProgress(p)
					return
				}
			}
		})
	}

	var won atomic.Bool
	for _, op := range ops {
		op := op
		op.AddCompletionCallback(Inline, func(*Operation) {
			if !won.CompareAndSwap(false, true) {
				return
			}
			out.TrySetResult(op)
		})
	}
	return out
}
