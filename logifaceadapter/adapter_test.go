package logifaceadapter

import (
	"sync"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEvent is a minimal Event implementation, grounded on the teacher's
// own eventloop/coverage_extra_test.go testEvent harness.
type testEvent struct {
	logiface.UnimplementedEvent
	level  logiface.Level
	msg    string
	fields map[string]any
}

func (e *testEvent) Level() logiface.Level { return e.level }
func (e *testEvent) AddField(key string, val any) {
	if e.fields == nil {
		e.fields = make(map[string]any)
	}
	e.fields[key] = val
}
func (e *testEvent) AddMessage(msg string) bool { e.msg = msg; return true }

type testEventFactory struct{}

func (testEventFactory) NewEvent(level logiface.Level) *testEvent {
	return &testEvent{level: level}
}

type testEventWriter struct {
	mu     sync.Mutex
	events []*testEvent
}

func (w *testEventWriter) Write(e *testEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, e)
	return nil
}

func (w *testEventWriter) snapshot() []*testEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*testEvent, len(w.events))
	copy(out, w.events)
	return out
}

func newTestLogger() (*Adapter, *testEventWriter) {
	writer := &testEventWriter{}
	typed := logiface.New[*testEvent](
		logiface.WithLevel[*testEvent](logiface.LevelDebug),
		logiface.WithEventFactory[*testEvent](testEventFactory{}),
		logiface.WithWriter[*testEvent](writer),
	)
	return New(typed.Logger()), writer
}

func TestAdapter_ForwardsMessageAndFields(t *testing.T) {
	a, writer := newTestLogger()
	a.Info("hello", "k1", "v1", "k2", 2)

	events := writer.snapshot()
	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, "hello", e.msg)
	assert.Equal(t, "v1", e.fields["k1"])
	assert.Equal(t, 2, e.fields["k2"])
}

func TestAdapter_LevelsRouteCorrectly(t *testing.T) {
	a, writer := newTestLogger()
	a.Debug("d")
	a.Info("i")
	a.Warn("w")
	a.Error("e")

	events := writer.snapshot()
	require.Len(t, events, 4)
	want := []logiface.Level{
		logiface.LevelDebug,
		logiface.LevelInformational,
		logiface.LevelWarning,
		logiface.LevelError,
	}
	for i, lvl := range want {
		assert.Equalf(t, lvl, events[i].level, "event %d level", i)
	}
}

func TestAdapter_OddKVIgnoresTrailingKey(t *testing.T) {
	a, writer := newTestLogger()
	a.Info("msg", "onlykey")

	events := writer.snapshot()
	require.Len(t, events, 1)
	assert.Empty(t, events[0].fields)
}

func TestAdapter_NilLoggerIsSafe(t *testing.T) {
	a := New(nil)
	a.Info("should not panic", "k", "v")
}
