// Package evloop implements the core of an event-loop runtime: a
// process-wide worker thread pool with slow-I/O fairness, a deadline-
// ordered timer heap, and the per-loop wiring (completion queue, cross-
// thread wake handle, active-request bookkeeping) that lets pool
// completions interrupt a blocked I/O wait.
//
// The OS polling backend, signal handling, and DNS/filesystem/child-
// process request marshaling are intentionally out of scope; this package
// only specifies the interfaces those collaborators consume from and
// expose to the core. See SPEC_FULL.md for the full requirements this
// package implements.
package evloop
