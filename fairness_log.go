package evloop

import (
	"time"

	"github.com/joeycumines/go-catrate"
)

// fairnessLogLimiter rate-limits the pool's "slow-I/O starving fast work"
// diagnostic so a pathological all-slow workload cannot turn a warning
// into a logging storm. This is the same "category rate limiting" role
// github.com/joeycumines/go-catrate plays inside logiface's Limit
// (logiface/limit.go), applied here directly to the pool's own logging
// rather than through logiface (SPEC_FULL.md §11).
var fairnessLogLimiter = catrate.NewLimiter(map[time.Duration]int{
	time.Second:      1,
	10 * time.Second: 3,
})

// logSlowIOBackpressure warns at most a few times per window when a worker
// pulls RUN_SLOW from WQ while the slow-I/O cap is reached and re-appends
// it behind the other queued work (spec §4.C.3 step 4). This is purely
// diagnostic; it never affects scheduling decisions.
func (p *pool) logSlowIOBackpressure() {
	if _, ok := fairnessLogLimiter.Allow("slow_io_backpressure"); !ok {
		return
	}
	p.logger().Warn("slow-io fairness cap deferring RUN_SLOW",
		"slow_io_running", p.slowIORunning,
		"threshold", p.threshold,
		"nthreads", p.nthreads,
	)
}
