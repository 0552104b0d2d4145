// Package logifaceadapter bridges github.com/joeycumines/logiface's generic
// Logger[Event] into evloop.Logger, so callers already standardised on
// logiface elsewhere in their process can point the loop and pool at the
// same sinks instead of configuring a second logging stack.
//
// Grounded on the teacher's own test harness (eventloop/coverage_extra_test.go),
// which builds a typed logiface.Logger[*testEvent] and generifies it via
// Logger.Logger() before handing it to the event loop.
package logifaceadapter

import (
	"github.com/joeycumines/logiface"
)

// Adapter implements evloop.Logger by forwarding calls to a generic logiface
// logger. It does not import evloop, so it has no opinion on that package's
// Logger interface beyond structurally satisfying it (Debug/Info/Warn/Error
// each taking a message and an alternating key/value slice).
type Adapter struct {
	logger *logiface.Logger[logiface.Event]
}

// New wraps logger. A nil logger is valid and produces an Adapter whose
// methods are no-ops (logiface.Logger's zero-value behaviour: Level()
// returns LevelDisabled on anything uninitialised, so this is mostly
// documentation, but the Adapter's methods check for a literal nil *Logger
// argument, which would otherwise panic on first use).
func New(logger *logiface.Logger[logiface.Event]) *Adapter {
	return &Adapter{logger: logger}
}

func (a *Adapter) Debug(msg string, kv ...any) { a.log(logiface.LevelDebug, msg, kv) }
func (a *Adapter) Info(msg string, kv ...any)  { a.log(logiface.LevelInformational, msg, kv) }
func (a *Adapter) Warn(msg string, kv ...any)  { a.log(logiface.LevelWarning, msg, kv) }
func (a *Adapter) Error(msg string, kv ...any) { a.log(logiface.LevelError, msg, kv) }

func (a *Adapter) log(level logiface.Level, msg string, kv []any) {
	if a.logger == nil {
		return
	}
	b := a.logger.Build(level)
	if b == nil {
		return
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok || key == "" {
			continue
		}
		b = b.Any(key, kv[i+1])
	}
	b.Log(msg)
}
