package async

import (
	"time"

	"github.com/joeycumines/go-catrate"
)

// Updatable is driven once per frame/tick by an UpdateSource, modeling a
// game engine's per-frame update loop. deltaTime is the elapsed time since
// the previous tick.
type Updatable interface {
	Update(deltaTime time.Duration)
}

// UpdateSource is any per-frame tick dispatcher a host can drive
// DelayByUpdate from: a game engine's frame loop, a test harness, a
// fixed-step simulation clock.
type UpdateSource interface {
	AddListener(u Updatable)
	RemoveListener(u Updatable)
}

// progressLimiter throttles progress-callback dispatch to roughly 10
// notifications per second per operation, grounded on catrate's
// category-keyed sliding-window limiter (go-catrate, limiter.go) — a
// surprising but apt reuse of an HTTP-style rate limiter for UI-facing
// progress-event throttling, since both are "don't fire more often than N
// per window" problems.
var progressLimiter = catrate.NewLimiter(map[time.Duration]int{
	time.Second: 10,
})

// updateDelay implements Updatable for DelayByUpdate, counting elapsed
// ticks/time until it reaches its target, then completing the Operation it
// owns.
type updateDelay struct {
	op       *Operation
	source   UpdateSource
	target   time.Duration
	elapsed  time.Duration
	finished bool
}

func (d *updateDelay) Update(deltaTime time.Duration) {
	if d.finished {
		return
	}
	if d.op.IsCancellationRequested() {
		d.finished = true
		d.source.RemoveListener(d)
		d.op.TrySetCanceled(nil)
		return
	}

	d.elapsed += deltaTime
	if d.elapsed >= d.target {
		d.finished = true
		d.source.RemoveListener(d)
		d.op.TrySetCompleted()
		return
	}

	progress := float64(d.elapsed) / float64(d.target)
	if _, ok := progressLimiter.Allow(d.op); ok {
		d.op.TryReportProgress(progress)
	}
}

// DelayByUpdate returns an Operation that completes once source has
// delivered at least target worth of cumulative Update ticks — the
// tick-driven counterpart of Delay's time.AfterFunc-driven wait in
// factories.go. Progress is reported at most ~10 times per second, per
// operation, via progressLimiter.
func DelayByUpdate(source UpdateSource, target time.Duration) *Operation {
	op := NewOperation(nil)
	if target <= 0 {
		op.TrySetCompleted()
		return op
	}
	d := &updateDelay{op: op, source: source, target: target}
	source.AddListener(d)
	op.onCancellationRequested(func() {
		// Update will observe IsCancellationRequested on its next tick;
		// if the source never ticks again, the operation simply never
		// completes — cooperative cancellation is observed, not forced.
	})
	return op
}
