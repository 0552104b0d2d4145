package evloop

import (
	"sync"
	"sync/atomic"
	"time"
)

// Loop owns one timer heap, one completion queue (LWQ), and the cross-
// thread wake handle that lets pool completions interrupt its I/O wait
// (spec §3, Loop state; §4.D). A Loop is not safe for concurrent calls to
// its own methods from multiple goroutines other than Submit/Cancel/Wake,
// which are explicitly cross-thread entry points (spec §5).
type Loop struct {
	id uint64

	state *loopState

	logger Logger

	// timers is single-threaded: only the owner goroutine (the one
	// calling Run/Tick) touches it (spec §5).
	timers *timerState

	// lm guards only lwq (spec §3, §5: "LM protects only LWQ. It is held
	// for O(1) work.").
	lm  sync.Mutex
	lwq *queue

	// activeRequests backs Close's assertion that nothing is outstanding,
	// and S1's "active_reqs returned to zero" expectation. There is no
	// active-handle counter; the wake handle is not counted anywhere
	// (spec §4.D).
	activeRequests atomic.Int64

	// wake is the coalescing cross-thread signal (spec §9, "async wake as
	// coalescing signal"): wake may be called from any thread; it wakes
	// whatever is blocked in the loop's I/O wait. woken deduplicates
	// concurrent signals into at most one pending wake per poll, matching
	// "multiple signals may coalesce" (spec §6).
	wakeCh chan struct{}
	woken  atomic.Bool

	loopTime atomic.Uint64 // monotonic milliseconds, refreshed once per tick
}

var loopIDCounter atomic.Uint64

// New constructs a Loop in StateAwake. Options mirror the teacher's
// functional-options convention (eventloop/options.go); see options.go.
func New(opts ...LoopOption) (*Loop, error) {
	cfg := resolveLoopOptions(opts)
	if cfg.err != nil {
		return nil, cfg.err
	}

	l := &Loop{
		id:     loopIDCounter.Add(1),
		state:  newLoopState(),
		timers: newTimerState(),
		lwq:    newQueue(),
		wakeCh: make(chan struct{}, 1),
		logger: cfg.logger,
	}
	if l.logger == nil {
		l.logger = getDefaultLogger()
	}
	return l, nil
}

// ID returns the loop's process-local identifier, useful for log
// correlation across multiple concurrent loops.
func (l *Loop) ID() uint64 { return l.id }

// State returns the loop's current lifecycle state.
func (l *Loop) State() LoopState { return l.state.Load() }

// SetLoopTime installs the monotonic clock reading (milliseconds) used by
// timer arithmetic and next_timeout/run_timers (spec §6: "A monotonic
// clock returning a 64-bit millisecond count, refreshed once per loop
// iteration"). Callers that drive the loop manually (as the test suite
// does, per spec §8's scenarios which talk about an explicit loop_time)
// call this once per tick before RunTimers/NextTimeout.
func (l *Loop) SetLoopTime(ms uint64) { l.loopTime.Store(ms) }

// LoopTime returns the most recently set loop time.
func (l *Loop) LoopTime() uint64 { return l.loopTime.Load() }

// wake signals the loop's wake handle. Safe to call from any goroutine
// (spec §5: "The wake handle is safe to signal from any thread; it
// coalesces multiple signals into at most one pending wake.").
func (l *Loop) wake() {
	if l.woken.CompareAndSwap(false, true) {
		select {
		case l.wakeCh <- struct{}{}:
		default:
		}
	}
}

// Wake is the public form of wake, for collaborators outside this package
// that need to interrupt the loop's I/O wait without submitting work
// (spec §6, "Interfaces exposed to collaborators").
func (l *Loop) Wake() { l.wake() }

// WaitForWake blocks until the loop has been woken, or ctx-equivalent
// cancellation is not modelled here — run loops own their own poll step
// and call this from within it. It clears the coalesced-pending flag
// before returning so a subsequent Wake is not lost.
func (l *Loop) WaitForWake() {
	<-l.wakeCh
	l.woken.Store(false)
}

// Submit implements spec §4.C.2's submit, scoped to this loop: it lazily
// obtains the process-wide pool (spec §4.C.1) and hands the item to it.
// kind selects the fairness treatment (spec §3, Work kind); work must be
// non-nil or an *Error with Kind == InvalidArgument is returned.
func (l *Loop) Submit(kind Kind, work WorkFunc, done DoneFunc) (*Handle, error) {
	if !l.state.CanAcceptWork() {
		return nil, newError(InvalidArgument, "loop is not accepting work", nil)
	}
	item, err := getPool().submit(l, kind, work, done)
	if err != nil {
		return nil, err
	}
	l.activeRequests.Add(1)
	return &Handle{item: item}, nil
}

// Cancel implements spec §4.C.4 for a Handle returned by Submit.
func (l *Loop) Cancel(h *Handle) error {
	return getPool().cancel(h.item)
}

// ScheduleTimer implements spec §4.B's start: inserts a new timer due
// timeoutMs from the loop's current LoopTime, repeating every repeatMs
// thereafter (0 means one-shot). fn runs on the loop thread when the timer
// fires, via RunTimers.
func (l *Loop) ScheduleTimer(timeoutMs, repeatMs uint64, fn TimerFunc) TimerID {
	return l.timers.start(l.LoopTime(), timeoutMs, repeatMs, fn)
}

// StopTimer implements spec §4.B's remove, by ID. Idempotent (spec §8's
// round-trip property: start then stop leaves the heap as it was).
func (l *Loop) StopTimer(id TimerID) { l.timers.stop(id) }

// RestartTimer implements spec §4.B's "re-starting an active timer removes
// then re-inserts it" (spec §3, Timer invariant) by stopping then
// starting fresh — exactly the idempotence property spec §8 asks for.
func (l *Loop) RestartTimer(id TimerID, timeoutMs, repeatMs uint64, fn TimerFunc) TimerID {
	l.timers.stop(id)
	return l.timers.start(l.LoopTime(), timeoutMs, repeatMs, fn)
}

// NextTimeout implements spec §4.B's next_timeout.
func (l *Loop) NextTimeout() int64 { return l.timers.nextTimeout(l.LoopTime()) }

// RunTimers implements spec §4.B's run_timers.
func (l *Loop) RunTimers() { l.timers.runTimers(l.LoopTime()) }

// DrainCompletions implements spec §4.D's completion drain: splice LWQ
// into a local queue under LM, release LM, then invoke each item's Done
// outside the lock. Returns the number of items drained.
func (l *Loop) DrainCompletions() int {
	local := newQueue()
	l.lm.Lock()
	local.move(l.lwq)
	l.lm.Unlock()

	n := 0
	for w := local.removeHead(); w != nil; w = local.removeHead() {
		n++
		status := OK
		if w.cancelled {
			status = CANCELLED
		}
		if w.done != nil {
			w.done(&Handle{item: w}, status)
		}
		l.activeRequests.Add(-1)
	}
	return n
}

// ActiveRequests returns the number of submitted work items that have not
// yet had Done invoked.
func (l *Loop) ActiveRequests() int64 { return l.activeRequests.Load() }

// Run transitions the loop to StateRunning and executes ticks until no
// timer is pending and no submitted item is outstanding, or until the loop
// leaves StateRunning (e.g. Close). Outer I/O-wait iteration
// (prepare/check/idle phases, FD readiness) is explicitly out of scope
// (spec §1, Non-goals); Run here only drives what this core owns: timers
// and the completion queue. Collaborators that also own an I/O poller call
// Tick themselves from their own outer loop instead of calling Run.
func (l *Loop) Run() error {
	if !l.state.TryTransition(StateAwake, StateRunning) {
		return newError(InvalidArgument, "loop already running or terminated", nil)
	}
	for l.state.Load() == StateRunning {
		l.Tick()
		if l.timers.min() == nil && l.ActiveRequests() == 0 {
			break
		}
	}
	l.state.TryTransition(StateRunning, StateAwake)
	return nil
}

// Tick runs one iteration: fire due timers, then drain whatever pool
// completions have accumulated. If nothing was drained, it then blocks
// (bounded by NextTimeout) for a wake signal the way the spec's "loop
// consults the min-heap to compute how long it may block... and, after
// returning from that wait, fires all expired timers" describes (§2),
// minus the actual I/O wait itself, which belongs to the poller
// collaborator.
func (l *Loop) Tick() {
	l.RunTimers()
	if l.DrainCompletions() > 0 {
		return
	}
	timeout := l.NextTimeout()
	if timeout < 0 {
		l.WaitForWake()
		return
	}
	select {
	case <-l.wakeCh:
		l.woken.Store(false)
	case <-time.After(time.Duration(timeout) * time.Millisecond):
	}
}

// Close implements spec §4.D's Close: asserts LWQ is empty and no active
// requests remain, then marks the loop terminated. It is the caller's
// responsibility to have stopped submitting work and drained all
// completions (normally via Run) before calling Close.
func (l *Loop) Close() error {
	l.lm.Lock()
	lwqEmpty := l.lwq.empty()
	l.lm.Unlock()
	if !lwqEmpty {
		fatalf("evloop: Close called with a non-empty completion queue")
	}
	if n := l.ActiveRequests(); n != 0 {
		fatalf("evloop: Close called with %d active request(s) outstanding", n)
	}
	for {
		cur := l.state.Load()
		if cur == StateTerminated {
			return nil
		}
		if l.state.TryTransition(cur, StateTerminating) {
			break
		}
	}
	l.state.Store(StateTerminated)
	return nil
}
