package evloop

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// timeNow is indirected for testability, mirroring go-catrate's own
// timeNow/timeNewTicker test seams.
var timeNow = time.Now

// pool is the process-wide worker thread pool (spec §3, §4.C). There is
// exactly one live instance per process at a time, lazily constructed on
// first submission and torn down/rebuilt by ResetPool (SPEC_FULL.md §12, the
// Go stand-in for original_source/libuv's pthread_atfork + reset_once).
type pool struct {
	mu   sync.Mutex
	cond *sync.Cond

	nthreads      int
	threshold     int // ceil(nthreads/2): slowThreadThreshold
	idleThreads   int
	slowIORunning int

	wq     *queue // WQ
	slowWQ *queue // SLOW_WQ

	exitSentinel    *workItem
	runSlowSentinel *workItem
	runSlowLinked   bool

	workers sync.WaitGroup

	runLatency *latencyStats
}

var (
	poolMu       sync.Mutex
	poolInstance *pool
)

// getPool returns the process-wide pool, constructing and starting it on
// first use (spec §4.C.1). Concurrent callers all block on the same
// construction via poolMu; only one goroutine actually builds it.
func getPool() *pool {
	poolMu.Lock()
	defer poolMu.Unlock()
	if poolInstance == nil {
		poolInstance = newPool(poolSizeFromEnv())
	}
	return poolInstance
}

// ResetPool discards the current process-wide pool without joining its
// workers or draining its queues, modelling what happens to inherited
// thread-pool state across a fork (SPEC_FULL.md §12): the child's next
// submission lazily reconstructs a fresh pool, and anything in flight in
// the parent at fork time is simply lost in the child. Call this only from
// the child side of a fork-like operation (e.g. after syscall.ForkExec),
// never from a process that still shares the old pool's goroutines — Go
// does not duplicate goroutines across fork, so in practice this exists
// for parity with the spec's Fork design note rather than for routine use.
func ResetPool() {
	poolMu.Lock()
	poolInstance = nil
	poolMu.Unlock()
}

func newPool(nthreads int) *pool {
	nthreads = clampThreadCount(nthreads)
	p := &pool{
		nthreads:        nthreads,
		threshold:       slowThreadThreshold(nthreads),
		wq:              newQueue(),
		slowWQ:          newQueue(),
		exitSentinel:    &workItem{sentinel: sentinelExit},
		runSlowSentinel: &workItem{sentinel: sentinelRunSlow},
		runLatency:      newLatencyStats(),
	}
	p.cond = sync.NewCond(&p.mu)

	// Handshake: the constructor does not return until every worker has
	// signalled it is past its entry barrier (spec §4.C.1's counting
	// semaphore). A WaitGroup gives the same "don't return until everyone
	// has signalled" contract without a counting-semaphore primitive.
	var started sync.WaitGroup
	started.Add(nthreads)
	p.workers.Add(nthreads)
	for i := 0; i < nthreads; i++ {
		go func() {
			defer p.workers.Done()
			started.Done()
			p.runWorker()
		}()
	}
	started.Wait()
	return p
}

// enqueue implements the append-and-wake logic of submit (spec §4.C.2).
// shutdown does not go through it; it appends EXIT to WQ itself.
func (p *pool) enqueue(w *workItem) {
	p.mu.Lock()
	switch w.kind {
	case SlowIO:
		p.slowWQ.insertTail(w)
		if !p.runSlowLinked {
			p.wq.insertTail(p.runSlowSentinel)
			p.runSlowLinked = true
		}
	default:
		p.wq.insertTail(w)
	}
	if p.idleThreads > 0 {
		p.cond.Signal()
	}
	p.mu.Unlock()
}

// submit implements spec §4.C.2. work must be non-nil.
func (p *pool) submit(loop *Loop, kind Kind, work WorkFunc, done DoneFunc) (*workItem, error) {
	if work == nil {
		return nil, newError(InvalidArgument, "work function is nil", nil)
	}
	w := &workItem{
		ID:   uuid.New(),
		loop: loop,
		kind: kind,
		work: work,
		done: done,
	}
	p.enqueue(w)
	return w, nil
}

// cancel implements spec §4.C.4: lock order M then LM, combined critical
// section covering both the cancellability check and the unlink, so the
// two loops (worker vs. canceller) can never observe a half-cancelled
// item.
func (p *pool) cancel(w *workItem) error {
	loop := w.loop
	p.mu.Lock()
	loop.lm.Lock()
	cancellable := w.linked() && w.work != nil
	if cancellable {
		w.remove()
		w.work = cancelledSentinel
		w.cancelled = true
		loop.lwq.insertTail(w)
	}
	loop.lm.Unlock()
	p.mu.Unlock()

	if !cancellable {
		return newError(Busy, "work item already running or completed", nil)
	}
	loop.wake()
	return nil
}

// shutdown implements spec §4.C.5: submit EXIT as a CPU-kind item, then
// wait for every worker to drain and exit.
func (p *pool) shutdown() {
	p.mu.Lock()
	p.wq.insertTail(p.exitSentinel)
	if p.idleThreads > 0 {
		p.cond.Signal()
	}
	p.mu.Unlock()
	p.workers.Wait()
}

// blocked implements the compound wait predicate of spec §4.C.3 step 1:
// the worker should keep waiting while WQ is empty, or while WQ's head is
// RUN_SLOW, RUN_SLOW is the only element, and the slow-I/O cap is holding.
func (p *pool) blocked() bool {
	head := p.wq.head()
	if head == nil {
		return true
	}
	if head == p.runSlowSentinel && head.next == &p.wq.sentinel && p.slowIORunning >= p.threshold {
		return true
	}
	return false
}

// runWorker is the worker loop body (spec §4.C.3).
func (p *pool) runWorker() {
	p.mu.Lock()
	for {
		for p.blocked() {
			p.idleThreads++
			p.cond.Wait()
			p.idleThreads--
		}

		// EXIT is peeked, never unlinked (original_source/libuv/src/threadpool.c's
		// worker() leaves exit_message in WQ so every worker that wakes
		// finds it again, re-signals, and terminates in turn).
		if p.wq.head() == p.exitSentinel {
			p.cond.Signal()
			p.mu.Unlock()
			return
		}

		q := p.wq.removeHead()

		isSlow := false
		if q == p.runSlowSentinel {
			if p.slowIORunning >= p.threshold {
				p.wq.insertTail(p.runSlowSentinel)
				p.logSlowIOBackpressure()
				continue
			}
			if p.slowWQ.empty() {
				p.runSlowLinked = false
				continue
			}
			isSlow = true
			p.slowIORunning++
			q = p.slowWQ.removeHead()
			if !p.slowWQ.empty() {
				p.wq.insertTail(p.runSlowSentinel)
				if p.idleThreads > 0 {
					p.cond.Signal()
				}
			} else {
				p.runSlowLinked = false
			}
		}

		fn := q.work
		p.mu.Unlock()

		start := timeNow()
		fn(&Handle{item: q})
		p.runLatency.record(float64(timeNow().Sub(start).Microseconds()) / 1000)

		loop := q.loop
		loop.lm.Lock()
		q.work = nil
		loop.lwq.insertTail(q)
		loop.lm.Unlock()
		loop.wake()

		p.mu.Lock()
		if isSlow {
			p.slowIORunning--
		}
	}
}
