package evloop

import "github.com/google/uuid"

// Kind tags a submission with the fairness treatment it receives from the
// pool (spec §3, Work kind). Only SlowIO participates in the slow-I/O
// fairness policy (§4.C.6).
type Kind int

const (
	// CPU is a compute-bound item with no special fairness treatment.
	CPU Kind = iota
	// FastIO is an I/O-bound item expected to return quickly; treated the
	// same as CPU for scheduling purposes.
	FastIO
	// SlowIO is an I/O-bound item expected to block for a while (name
	// resolution, large synchronous reads); subject to the slow-I/O
	// concurrency cap (§4.C.6).
	SlowIO
)

func (k Kind) String() string {
	switch k {
	case CPU:
		return "cpu"
	case FastIO:
		return "fast_io"
	case SlowIO:
		return "slow_io"
	default:
		return "unknown"
	}
}

// Status is the completion status delivered to a Done callback.
type Status int

const (
	// OK means work ran to completion (regardless of what it returned to
	// the caller through its own side channel; the core does not inspect
	// work's outcome, only whether it ran).
	OK Status = iota
	// CANCELLED means the item was unlinked before a worker ever picked it
	// up; work was never invoked.
	CANCELLED
)

func (s Status) String() string {
	if s == CANCELLED {
		return "cancelled"
	}
	return "ok"
}

// WorkFunc runs on a pool worker goroutine. It receives the Handle
// identifying this submission — the Go analogue of the req self-pointer a
// C callback receives, useful for log correlation via Handle.ID — though
// most callers will simply close over whatever state they need instead of
// consulting it.
type WorkFunc func(h *Handle)

// DoneFunc runs on the owning loop's thread once work has returned (or was
// never invoked because the item was cancelled first).
type DoneFunc func(h *Handle, status Status)

// sentinelKind distinguishes the two in-band markers (spec §9: "a
// re-implementation may... replace sentinels with a tagged variant") from
// real work items, while keeping every entry in WQ the same concrete type
// so the queue itself stays homogeneous and pointer-recovery (§9) is
// trivial: every link in WQ/SLOW_WQ/LWQ is a *workItem, full stop.
type sentinelKind int

const (
	sentinelNone sentinelKind = iota
	sentinelExit
	sentinelRunSlow
)

// workItem is one unit of off-thread work (spec §3, Work item). Callers own
// the memory backing a work item (via Handle, see requests.go); the core
// only ever holds a pointer to it while it is linked into a queue.
type workItem struct {
	// prev/next form the intrusive link (see queue.go). nil means
	// "unlinked"; the sentinel-less representation means no wrapper
	// allocation is needed to put a workItem into WQ, SLOW_WQ, or LWQ.
	prev, next *workItem

	// ID correlates this item across logs/metrics; assigned at submission.
	// Zero for the process-wide EXIT/RUN_SLOW sentinels.
	ID uuid.UUID

	loop *Loop
	kind Kind
	work WorkFunc
	done DoneFunc

	sentinel sentinelKind

	// cancelled records whether cancel() unlinked this item before a
	// worker could start it. Go func values are not comparable (except to
	// nil), so this is the signal the completion drain (spec §4.D) uses
	// instead of comparing work against a sentinel function value; work
	// itself is still overwritten with cancelledSentinel so that a worker
	// which somehow still invokes it hits the fatal path (spec §4.C.4).
	cancelled bool
}
