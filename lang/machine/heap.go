package machine

// Header is the bookkeeping block attached to every heap-allocated value
// (tuples, arrays, maps and closures). It is intrusively linked into the
// owning Heap's allocation list, mirroring a mark-sweep collector's object
// table rather than relying on a separate side-table keyed by pointer.
//
// Grounded on hammer::vm::Header / ObjectList: a flags word plus an
// intrusive "next" pointer, with no separate bookkeeping allocation per
// object.
type Header struct {
	marked bool
	next   *Header
}

// heapObject is implemented by every Value that is tracked by a Heap.
type heapObject interface {
	Value
	header() *Header
}

// Traceable is implemented by heap objects that hold references to other
// values. Trace must call visit once for every Value directly reachable
// from the receiver.
type Traceable interface {
	Trace(visit func(Value))
}

// Heap owns the allocation list of every tracked object and can reclaim the
// ones that are no longer reachable from a set of roots. It corresponds to
// hammer::vm::Heap, minus the paged allocator: objects are plain Go
// allocations, and the heap only adds the mark-sweep bookkeeping on top.
//
// The interpreter's objects are still ordinary Go values subject to the Go
// garbage collector; this Heap does not reclaim memory itself, it tracks
// liveness the way the original VM does so that Collect has real mark/sweep
// semantics, whose result is reported by HeapStats.
type Heap struct {
	head  *Header
	count int
	freed int
}

// track registers obj on the heap's allocation list. It must be called
// exactly once per object, right after allocation.
func (h *Heap) track(obj heapObject) {
	hdr := obj.header()
	hdr.next = h.head
	h.head = hdr
	h.count++
}

// HeapStats summarizes the result of the most recent Collect (or the
// allocation count if Collect was never called).
type HeapStats struct {
	Live  int
	Freed int
}

// Stats reports the number of objects currently tracked and the number
// freed by the last Collect.
func (h *Heap) Stats() HeapStats {
	return HeapStats{Live: h.count, Freed: h.freed}
}

// Collect runs a tracing mark-sweep pass: every value reachable from roots
// (transitively, via Traceable.Trace) is kept, everything else is unlinked
// from the allocation list. It does not free Go memory -- that is the Go
// runtime's job -- it only updates the liveness bookkeeping, which is what
// the spec's GC-stress scenarios observe via HeapStats.
func (h *Heap) Collect(roots []Value) {
	// mark
	for _, r := range roots {
		h.mark(r)
	}

	// sweep: walk the intrusive list, drop anything left unmarked, clear
	// the mark bit on everything that survives for the next cycle.
	var (
		newHead *Header
		live    int
		freed   int
	)
	for hdr := h.head; hdr != nil; {
		next := hdr.next
		if hdr.marked {
			hdr.marked = false
			hdr.next = newHead
			newHead = hdr
			live++
		} else {
			freed++
		}
		hdr = next
	}
	h.head = newHead
	h.count = live
	h.freed = freed
}

func (h *Heap) mark(v Value) {
	obj, ok := v.(heapObject)
	if !ok || v == nil {
		return
	}
	hdr := obj.header()
	if hdr.marked {
		return
	}
	hdr.marked = true
	if t, ok := obj.(Traceable); ok {
		t.Trace(h.mark)
	}
}
