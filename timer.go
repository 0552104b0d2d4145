package evloop

import (
	"container/heap"
	"math"
)

// TimerID identifies a scheduled timer for Loop.StopTimer and
// Loop.RestartTimer calls.
type TimerID uint64

// TimerFunc is invoked on the loop thread when a timer fires. It may
// start/stop timers, including re-arming itself (spec §4.B).
type TimerFunc func()

// timer is one entry in a Loop's timer heap (spec §3, Timer). It is keyed
// by the pair (deadline, startID) with lexicographic order — smaller
// deadline first, ties broken by smaller startID so equal deadlines fire
// in start order. This tie-break is not present in a plain container/heap
// example; it is grounded directly on original_source/libuv's
// timer_less_than, which compares start_id when deadlines are equal (see
// SPEC_FULL.md §12).
type timer struct {
	id       TimerID
	deadline uint64 // absolute loop-time milliseconds
	repeat   uint64 // 0 means one-shot
	startID  uint64
	fn       TimerFunc
	index    int // position in the heap slice, maintained by heap.Interface
	active   bool
}

// timerHeap implements container/heap.Interface, ordered by
// (deadline, startID).
type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].startID < h[j].startID
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// addDeadline computes loopTime + timeout with the spec's unsigned
// wraparound clamp (§4.B): on overflow, clamp to the maximum representable
// value rather than wrapping.
func addDeadline(loopTime, timeout uint64) uint64 {
	deadline := loopTime + timeout
	if deadline < timeout {
		return math.MaxUint64
	}
	return deadline
}

// timerState owns the timer heap for one Loop. The heap itself is
// single-threaded: only the loop's owner goroutine touches it (spec §5).
type timerState struct {
	heap     timerHeap
	byID     map[TimerID]*timer
	nextID   uint64
	startSeq uint64
}

func newTimerState() *timerState {
	return &timerState{byID: make(map[TimerID]*timer)}
}

// start inserts a new active timer with the given timeout/repeat relative
// to loopTime, returning its ID. Restarting an existing timer should go
// through stop then start (see Loop.ScheduleTimer / Loop.StopTimer), which
// this type does not itself enforce — that policy lives in loop.go.
func (ts *timerState) start(loopTime, timeoutMs, repeatMs uint64, fn TimerFunc) TimerID {
	ts.nextID++
	ts.startSeq++
	t := &timer{
		id:       TimerID(ts.nextID),
		deadline: addDeadline(loopTime, timeoutMs),
		repeat:   repeatMs,
		startID:  ts.startSeq,
		fn:       fn,
		active:   true,
	}
	heap.Push(&ts.heap, t)
	ts.byID[t.id] = t
	return t.id
}

// stop removes an active timer from the heap. Stopping an unknown or
// already-inactive timer is a no-op, mirroring the idempotence property in
// spec §8 ("start then stop... leaves the heap identical to its state
// before start").
func (ts *timerState) stop(id TimerID) {
	t, ok := ts.byID[id]
	if !ok || !t.active {
		return
	}
	heap.Remove(&ts.heap, t.index)
	t.active = false
	delete(ts.byID, id)
}

// min peeks the timer with the smallest (deadline, startID), or nil if the
// heap is empty.
func (ts *timerState) min() *timer {
	if len(ts.heap) == 0 {
		return nil
	}
	return ts.heap[0]
}

// nextTimeout implements spec §4.B's next_timeout: -1 if the heap is
// empty, 0 if the minimum is already due, else the millisecond distance to
// it (capped to math.MaxInt32, the Go stand-in for the C INT_MAX cap).
func (ts *timerState) nextTimeout(loopTime uint64) int64 {
	m := ts.min()
	if m == nil {
		return -1
	}
	if m.deadline <= loopTime {
		return 0
	}
	remaining := m.deadline - loopTime
	if remaining > math.MaxInt32 {
		return math.MaxInt32
	}
	return int64(remaining)
}

// runTimers implements spec §4.B's run_timers: repeatedly pop and fire any
// timer whose deadline has passed, re-arming repeating timers before
// invoking the callback (so a callback that stops "itself" sees the
// repeat already scheduled and can cancel it). The min is re-read after
// every firing, so a timer inserted mid-pass with an already-past deadline
// fires in the same pass — there is no per-iteration cap (spec §4.B).
func (ts *timerState) runTimers(loopTime uint64) {
	for {
		t := ts.min()
		if t == nil || t.deadline > loopTime {
			return
		}
		heap.Remove(&ts.heap, t.index)
		t.active = false
		delete(ts.byID, t.id)

		if t.repeat != 0 {
			ts.startSeq++
			t.deadline = addDeadline(loopTime, t.repeat)
			t.startID = ts.startSeq
			t.active = true
			heap.Push(&ts.heap, t)
			ts.byID[t.id] = t
		}

		t.fn()
	}
}
