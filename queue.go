package evloop

// queue is the intrusive doubly linked queue primitive (spec §4.A): a
// circular list identified by a head sentinel, giving O(1) allocation-free
// init/empty/head/insertTail/remove/move. The link lives inside workItem
// itself (prev/next below) rather than in a wrapper node, so a workItem's
// queue membership is always recoverable from the workItem pointer itself
// — the Go rendition of "pointer-recovery from embedded links" (§9): there
// is no offset arithmetic to do because the link was never detached from
// its owner in the first place.
//
// WQ, SLOW_WQ and LWQ (spec §3) are all queues of *workItem.
type queue struct {
	sentinel workItem
}

func newQueue() *queue {
	q := &queue{}
	q.sentinel.prev = &q.sentinel
	q.sentinel.next = &q.sentinel
	return q
}

func (q *queue) empty() bool {
	return q.sentinel.next == &q.sentinel
}

// head returns the first element, or nil if empty.
func (q *queue) head() *workItem {
	if q.empty() {
		return nil
	}
	return q.sentinel.next
}

// insertTail appends w to the end of the queue. w must not already be
// linked into any queue.
func (q *queue) insertTail(w *workItem) {
	w.prev = q.sentinel.prev
	w.next = &q.sentinel
	q.sentinel.prev.next = w
	q.sentinel.prev = w
}

// linked reports whether w is currently a member of some queue.
func (w *workItem) linked() bool {
	return w.next != nil
}

// remove unlinks w from whatever queue it is currently a member of. It is a
// no-op if w is not linked.
func (w *workItem) remove() {
	if !w.linked() {
		return
	}
	w.prev.next = w.next
	w.next.prev = w.prev
	w.prev = nil
	w.next = nil
}

// removeHead pops and returns the first element, or nil if empty.
func (q *queue) removeHead() *workItem {
	h := q.head()
	if h == nil {
		return nil
	}
	h.remove()
	return h
}

// move splices src's entire contents onto the tail of q in O(1), leaving
// src empty. Used by the completion drain (spec §4.D) to hand LWQ off to a
// local queue while holding LM only for the splice.
func (q *queue) move(src *queue) {
	if src.empty() {
		return
	}
	first := src.sentinel.next
	last := src.sentinel.prev

	first.prev = q.sentinel.prev
	q.sentinel.prev.next = first

	last.next = &q.sentinel
	q.sentinel.prev = last

	src.sentinel.prev = &src.sentinel
	src.sentinel.next = &src.sentinel
}
