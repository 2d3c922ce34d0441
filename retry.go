package async

import "time"

// Retry invokes produce to obtain a fresh Operation, waiting delay between
// attempts, until one runs to completion. max bounds the number of
// attempts; max == 0 means retry indefinitely, max == 1 means try exactly
// once with no retries. It
// completes Faulted, with an *AggregateError of every attempt's error,
// once max is exhausted; it completes Canceled as soon as any attempt is
// Canceled, without retrying further — cancellation of an attempt is
// treated as cancellation of the whole sequence, not a failure to retry
// past. Cancel on the returned Operation stops scheduling further attempts
// and forwards to the in-flight one.
func Retry(produce func() *Operation, delay time.Duration, max int) *Operation {
	if max < 0 {
		panic(&ArgumentOutOfRangeError{Argument: "max", Value: max})
	}
	out := NewOperation(nil)

	var errs []error
	var attempt func(n int)
	var current *Operation

	out.onCancellationRequested(func() {
		if current != nil {
			current.Cancel()
		}
	})

	attempt = func(n int) {
		if out.IsCancellationRequested() {
			out.TrySetCanceled(nil)
			return
		}
		current = produce()
		current.AddCompletionCallback(Inline, func(*Operation) {
			switch current.Status() {
			case RanToCompletion:
				out.TrySetCompleted()
			case Canceled:
				out.TrySetCanceled(current.Exception())
			case Faulted:
				errs = append(errs, current.Exception())
				if max != 0 && n >= max {
					out.TrySetException(&AggregateError{Errors: errs})
					return
				}
				if delay <= 0 {
					attempt(n + 1)
					return
				}
				wait := Delay(delay)
				wait.AddCompletionCallback(Inline, func(*Operation) { attempt(n + 1) })
			}
		})
	}
	attempt(1)
	return out
}

// Sequence runs each producer in steps in order, never starting step i+1
// until step i has run to completion, and returns an Operation that
// completes once every step has. It completes Faulted or Canceled as soon
// as any step does, without starting the remaining steps. While in-flight,
// progress is reported as (completed_count + current_step.progress) /
// total — the serial-queue discipline applied to a fixed list instead of
// an open-ended SerialQueue (queue.go).
func Sequence(steps ...func() *Operation) *Operation {
	out := NewOperation(nil)
	total := len(steps)
	if total == 0 {
		out.TrySetCompleted()
		return out
	}

	var run func(i int)
	run = func(i int) {
		if out.IsCancellationRequested() {
			out.TrySetCanceled(nil)
			return
		}
		step := steps[i]()
		step.AddProgressCallback(Inline, func(p float64) {
			out.TryReportProgress((float64(i) + p) / float64(total))
		})
		step.AddCompletionCallback(Inline, func(*Operation) {
			switch step.Status() {
			case RanToCompletion:
				if i+1 == total {
					out.TrySetCompleted()
					return
				}
				out.TryReportProgress(float64(i+1) / float64(total))
				run(i + 1)
			case Faulted:
				out.TrySetException(step.Exception())
			case Canceled:
				out.TrySetCanceled(step.Exception())
			}
		})
	}
	run(0)
	return out
}
