package evloop

// Handle is the caller-facing reference to a submitted work item, returned
// by Loop.Submit and consumed by Loop.Cancel.
//
// The teacher's equivalent (eventloop/registry.go) is a weak-pointer
// promise registry with ring-buffer scavenging, built for a JS-style
// Promise/A+ implementation tracking thousands of live promises and
// needing GC-driven cleanup. This core has a much smaller requirement
// (spec §3: "counters of active handles and active requests used by
// lifecycle logic") — a live count plus a way to address one outstanding
// item for cancellation — so Handle is a plain owned reference instead of
// a weak-pointer registry. See DESIGN.md for the adaptation rationale.
type Handle struct {
	item *workItem
}

// ID returns the correlation ID assigned to this submission.
func (h *Handle) ID() string { return h.item.ID.String() }

// Kind returns the submission's work kind.
func (h *Handle) Kind() Kind { return h.item.kind }

// ShutdownPool implements spec §4.C.5: submits EXIT to the process-wide
// pool (if one has been constructed) and joins every worker. It is a
// package-level operation, not a Loop method, because the pool is a
// process singleton independent of any one loop (spec §3).
func ShutdownPool() {
	poolMu.Lock()
	p := poolInstance
	poolInstance = nil
	poolMu.Unlock()
	if p != nil {
		p.shutdown()
	}
}
