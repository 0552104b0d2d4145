package evloop

import "sync/atomic"

// LoopState represents the current state of a Loop.
//
//	StateAwake (0) → StateRunning (3)       [Run]
//	StateRunning (3) → StateAwake (0)       [Run returns]
//	any non-terminated → StateTerminating (4) [Close]
//	StateTerminating (4) → StateTerminated (1) [Close completes]
//	StateTerminated (1) → (terminal)
//
// Loop itself never enters StateSleeping; Tick's wait for a wake signal
// happens while the state stays StateRunning.
type LoopState uint64

const (
	// StateAwake means the loop has been constructed but Run has not been
	// called yet.
	StateAwake LoopState = 0
	// StateTerminated means Close has completed; the loop is inert.
	StateTerminated LoopState = 1
	// StateSleeping means the loop is blocked in its I/O wait.
	StateSleeping LoopState = 2
	// StateRunning means the loop is actively processing a tick.
	StateRunning LoopState = 3
	// StateTerminating means shutdown has been requested but has not
	// completed draining.
	StateTerminating LoopState = 4
)

func (s LoopState) String() string {
	switch s {
	case StateAwake:
		return "awake"
	case StateRunning:
		return "running"
	case StateSleeping:
		return "sleeping"
	case StateTerminating:
		return "terminating"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// loopState is a CAS-based state machine for a Loop. Unlike the pool
// (§4.C, a process-wide singleton with no state machine of its own beyond
// idle/slow-io counters), the loop has an explicit lifecycle that a single
// owner thread drives and other goroutines only observe.
type loopState struct {
	v atomic.Uint64
}

func newLoopState() *loopState {
	s := &loopState{}
	s.v.Store(uint64(StateAwake))
	return s
}

func (s *loopState) Load() LoopState { return LoopState(s.v.Load()) }

func (s *loopState) Store(state LoopState) { s.v.Store(uint64(state)) }

func (s *loopState) TryTransition(from, to LoopState) bool {
	return s.v.CompareAndSwap(uint64(from), uint64(to))
}

func (s *loopState) IsTerminal() bool { return s.Load() == StateTerminated }

func (s *loopState) CanAcceptWork() bool {
	switch s.Load() {
	case StateAwake, StateRunning, StateSleeping:
		return true
	default:
		return false
	}
}
