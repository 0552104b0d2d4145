package evloop

import (
	"math"
	"sync"
)

// quantileEstimator implements the P² (P-Square) algorithm for streaming
// quantile estimation in O(1) time and space per observation (Jain &
// Chlamtac, 1985), adapted from the teacher's eventloop/psquare.go single-
// quantile estimator. Not safe for concurrent use; callers serialize
// access (here, via latencyStats.mu).
type quantileEstimator struct {
	p           float64
	q           [5]float64
	n           [5]int
	np          [5]float64
	dn          [5]float64
	count       int
	initBuffer  [5]float64
	initialized bool
}

func newQuantileEstimator(p float64) *quantileEstimator {
	return &quantileEstimator{
		p:  p,
		dn: [5]float64{0, p / 2, p, (1 + p) / 2, 1},
	}
}

func (e *quantileEstimator) initialize() {
	buf := e.initBuffer
	for i := 0; i < 5; i++ {
		for j := i + 1; j < 5; j++ {
			if buf[j] < buf[i] {
				buf[i], buf[j] = buf[j], buf[i]
			}
		}
	}
	e.q = buf
	for i := 0; i < 5; i++ {
		e.n[i] = i
		e.np[i] = float64(i)
	}
	e.np = [5]float64{0, 2 * e.p, 4 * e.p, 2 + 2*e.p, 4}
	e.initialized = true
}

// Update adds one observation.
func (e *quantileEstimator) Update(x float64) {
	e.count++
	if e.count <= 5 {
		e.initBuffer[e.count-1] = x
		if e.count == 5 {
			e.initialize()
		}
		return
	}

	var k int
	switch {
	case x < e.q[0]:
		e.q[0] = x
		k = 0
	case x >= e.q[4]:
		e.q[4] = x
		k = 3
	default:
		for k = 0; k < 4; k++ {
			if e.q[k] <= x && x < e.q[k+1] {
				break
			}
		}
	}

	for i := k + 1; i < 5; i++ {
		e.n[i]++
	}
	for i := 0; i < 5; i++ {
		e.np[i] += e.dn[i]
	}

	for i := 1; i < 4; i++ {
		d := e.np[i] - float64(e.n[i])
		if (d >= 1 && e.n[i+1]-e.n[i] > 1) || (d <= -1 && e.n[i-1]-e.n[i] < -1) {
			sign := 1
			if d < 0 {
				sign = -1
			}
			qn := e.parabolic(i, sign)
			if e.q[i-1] < qn && qn < e.q[i+1] {
				e.q[i] = qn
			} else {
				e.q[i] = e.linear(i, sign)
			}
			e.n[i] += sign
		}
	}
}

func (e *quantileEstimator) parabolic(i, d int) float64 {
	fd := float64(d)
	return e.q[i] + fd/float64(e.n[i+1]-e.n[i-1])*
		((float64(e.n[i]-e.n[i-1])+fd)*(e.q[i+1]-e.q[i])/float64(e.n[i+1]-e.n[i])+
			(float64(e.n[i+1]-e.n[i])-fd)*(e.q[i]-e.q[i-1])/float64(e.n[i]-e.n[i-1]))
}

func (e *quantileEstimator) linear(i, d int) float64 {
	fd := float64(d)
	return e.q[i] + fd*(e.q[i+d]-e.q[i])/float64(e.n[i+d]-e.n[i])
}

// Value returns the current quantile estimate.
func (e *quantileEstimator) Value() float64 {
	if !e.initialized {
		if e.count == 0 {
			return 0
		}
		sum := 0.0
		for i := 0; i < e.count; i++ {
			sum += e.initBuffer[i]
		}
		return sum / float64(e.count)
	}
	return e.q[2]
}

// welford accumulates mean/variance online (Welford's algorithm), grounded
// on Guti2010-Proyecto-SO/internal/sched/sched.go's stat type.
type welford struct {
	n    int64
	mean float64
	m2   float64
}

func (s *welford) add(x float64) {
	s.n++
	delta := x - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (x - s.mean)
}

func (s *welford) stddev() float64 {
	if s.n < 2 {
		return 0
	}
	v := s.m2 / float64(s.n-1)
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}

// latencyStats tracks a latency distribution for pool work items (the pool
// records run time, running→completed, into it), combining a P² quantile
// estimate (for P50/P99 without storing samples) with Welford mean/stddev.
type latencyStats struct {
	mu       sync.Mutex
	p50, p99 *quantileEstimator
	welford  welford
}

func newLatencyStats() *latencyStats {
	return &latencyStats{
		p50: newQuantileEstimator(0.50),
		p99: newQuantileEstimator(0.99),
	}
}

func (s *latencyStats) record(ms float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p50.Update(ms)
	s.p99.Update(ms)
	s.welford.add(ms)
}

// Snapshot is a point-in-time view of accumulated latency statistics, in
// milliseconds.
type Snapshot struct {
	Count  int64
	Mean   float64
	StdDev float64
	P50    float64
	P99    float64
}

func (s *latencyStats) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Count:  s.welford.n,
		Mean:   s.welford.mean,
		StdDev: s.welford.stddev(),
		P50:    s.p50.Value(),
		P99:    s.p99.Value(),
	}
}

// PoolMetrics is a point-in-time snapshot of process-wide pool state,
// useful for dashboards and tests alike.
type PoolMetrics struct {
	Threads       int
	IdleThreads   int
	SlowIORunning int
	Threshold     int
	RunLatencyMs  Snapshot
}

// Metrics returns a snapshot of the process-wide pool's current state. It
// constructs the pool (spec §4.C.1) if it has not been constructed yet.
func Metrics() PoolMetrics {
	p := getPool()
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolMetrics{
		Threads:       p.nthreads,
		IdleThreads:   p.idleThreads,
		SlowIORunning: p.slowIORunning,
		Threshold:     p.threshold,
		RunLatencyMs:  p.runLatency.snapshot(),
	}
}
