package evloop

import "testing"

func TestQueue_EmptyOnInit(t *testing.T) {
	q := newQueue()
	if !q.empty() {
		t.Fatal("new queue should be empty")
	}
	if q.head() != nil {
		t.Fatal("empty queue head should be nil")
	}
	if q.removeHead() != nil {
		t.Fatal("empty queue removeHead should be nil")
	}
}

func TestQueue_InsertTailAndRemoveHead_FIFO(t *testing.T) {
	q := newQueue()
	a := &workItem{}
	b := &workItem{}
	c := &workItem{}

	q.insertTail(a)
	q.insertTail(b)
	q.insertTail(c)

	if q.head() != a {
		t.Fatal("head should be the first inserted item")
	}

	got := []*workItem{q.removeHead(), q.removeHead(), q.removeHead()}
	want := []*workItem{a, b, c}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("removeHead order mismatch at %d: got %p want %p", i, got[i], want[i])
		}
	}
	if !q.empty() {
		t.Fatal("queue should be empty after draining all items")
	}
}

func TestQueue_RemoveFromMiddle(t *testing.T) {
	q := newQueue()
	a := &workItem{}
	b := &workItem{}
	c := &workItem{}
	q.insertTail(a)
	q.insertTail(b)
	q.insertTail(c)

	b.remove()
	if b.linked() {
		t.Fatal("b should no longer be linked after remove")
	}

	got := []*workItem{q.removeHead(), q.removeHead()}
	if got[0] != a || got[1] != c {
		t.Fatal("removing from the middle should leave the remaining order intact")
	}
}

func TestQueue_RemoveIsIdempotent(t *testing.T) {
	q := newQueue()
	a := &workItem{}
	q.insertTail(a)
	a.remove()
	a.remove() // must not panic or corrupt state
	if q.head() != nil {
		t.Fatal("queue should be empty after removing its only item")
	}
}

func TestQueue_Move_SplicesInOrderAndEmptiesSource(t *testing.T) {
	src := newQueue()
	dst := newQueue()

	a := &workItem{}
	b := &workItem{}
	src.insertTail(a)
	src.insertTail(b)

	existing := &workItem{}
	dst.insertTail(existing)

	dst.move(src)

	if !src.empty() {
		t.Fatal("source queue should be empty after move")
	}

	got := []*workItem{dst.removeHead(), dst.removeHead(), dst.removeHead()}
	want := []*workItem{existing, a, b}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("post-move order mismatch at %d", i)
		}
	}
}

func TestQueue_Move_EmptySourceIsNoop(t *testing.T) {
	src := newQueue()
	dst := newQueue()
	a := &workItem{}
	dst.insertTail(a)

	dst.move(src)

	if dst.head() != a {
		t.Fatal("moving an empty source should not disturb the destination")
	}
}
