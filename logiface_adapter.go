package async

import (
	"fmt"
	"sync"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// logEvent is the concrete event type this package logs through, matching
// go-eventloop's single-global-logger design (logging.go's globalLogger),
// generalized from a hand-rolled Logger interface onto logiface.Logger,
// backed by stumpy's JSON event implementation — the package-level logger
// this module and its consumers actually use.
type logEvent = stumpy.Event

// defaultLogger is the logger used when SetLogger has never been called: a
// real stumpy-backed logiface.Logger with its level forced to
// logiface.LevelDisabled, so every call short-circuits to a no-op instead
// of writing recovered-panic diagnostics to stderr by default — matching
// go-eventloop's NewNoOpLogger default (logging.go) without hand-rolling a
// second, parallel no-op Logger implementation.
var defaultLogger = sync.OnceValue(func() *logiface.Logger[*logEvent] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(),
		stumpy.L.WithLevel(logiface.LevelDisabled),
	)
})

var (
	globalLoggerMu sync.RWMutex
	globalLogger   *logiface.Logger[*logEvent]
)

// SetLogger installs logger as the package-level logger used by Operation
// and SerialQueue internals for lifecycle diagnostics (panics recovered
// from callbacks, continuations, and producer functions). Passing nil
// reverts to the lazily-constructed, disabled-by-default stumpy logger,
// matching go-eventloop's SetStructuredLogger/getGlobalLogger pair
// (logging.go).
func SetLogger(logger *logiface.Logger[*logEvent]) {
	globalLoggerMu.Lock()
	defer globalLoggerMu.Unlock()
	globalLogger = logger
}

// logger returns the active package-level logger.
func logger() *logiface.Logger[*logEvent] {
	globalLoggerMu.RLock()
	l := globalLogger
	globalLoggerMu.RUnlock()
	if l != nil {
		return l
	}
	return defaultLogger()
}

// logPanic records a panic recovered from user-supplied callback/producer
// code, tagged with the site it happened in, without re-panicking: a
// callback panic is isolated and reported, never propagated to the
// dispatching goroutine.
func logPanic(site string, value any) {
	logger().Err().
		Str(`site`, site).
		Str(`panic`, panicString(value)).
		Log(`async: recovered panic in callback`)
}

func panicString(value any) string {
	if err, ok := value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(value)
}
