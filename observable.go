package async

// Observer receives a single terminal notification from an Operation it
// has Subscribed to, modeled on the DOM/Rx Observer pattern: exactly one
// of OnNext+OnCompleted, OnCompleted alone (on cancellation), or OnError
// fires, once.
type Observer[T any] interface {
	// OnNext reports the typed result of a successful completion, called
	// immediately before OnCompleted. Never called on failure/cancellation.
	OnNext(result T)
	// OnCompleted reports that the operation reached a terminal status
	// without faulting: RanToCompletion (after OnNext) or Canceled.
	OnCompleted()
	// OnError reports that the operation Faulted, with its terminal error.
	OnError(err error)
}

// Disposable releases a subscription or other held resource.
type Disposable interface {
	Dispose()
}

// disposableFunc adapts a plain func() to Disposable.
type disposableFunc func()

func (f disposableFunc) Dispose() { f() }

// Subscribe bridges op to observer, registering a single completion
// callback: on RanToCompletion it calls observer.OnNext(result) then
// observer.OnCompleted(); on Faulted it calls observer.OnError(err); on
// Canceled it calls observer.OnCompleted() with no preceding OnNext, since
// there is no result to report. The returned Disposable removes the
// registration; disposing after op has already completed is a harmless
// no-op.
func Subscribe[T any](op *TypedOperation[T], observer Observer[T]) Disposable {
	handle := op.Operation.AddCompletionCallback(Inline, func(*Operation) {
		switch op.Status() {
		case RanToCompletion:
			observer.OnNext(op.Result())
			observer.OnCompleted()
		case Faulted:
			observer.OnError(op.Exception())
		case Canceled:
			observer.OnCompleted()
		}
	})
	return disposableFunc(func() {
		op.Operation.RemoveCompletionCallback(handle)
	})
}

// ObserverFunc builds an Observer[T] from three plain functions, any of
// which may be nil to ignore that notification — a lightweight alternative
// to implementing the Observer[T] interface directly.
type ObserverFunc[T any] struct {
	Next      func(result T)
	Completed func()
	Error     func(err error)
}

func (f ObserverFunc[T]) OnNext(result T) {
	if f.Next != nil {
		f.Next(result)
	}
}

func (f ObserverFunc[T]) OnCompleted() {
	if f.Completed != nil {
		f.Completed()
	}
}

func (f ObserverFunc[T]) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}
