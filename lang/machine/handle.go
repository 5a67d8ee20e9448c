package machine

// A Handle pins a Value as a GC root for as long as it is open, so that
// native Go code holding a reference across an operation that might collect
// (such as a builtin that allocates before using an earlier result) does not
// have its value swept out from under it.
//
// Grounded on hammer::vm::Handle<T> (referenced from objects/value.hpp's
// WriteBarrier/ArrayVisitor helpers): a Handle is registered with the
// owning context for the duration of its use and unregistered when no
// longer needed.
type Handle struct {
	th *Thread
	v  Value
}

// NewHandle registers v as a root on th and returns a Handle that must be
// closed once the caller no longer needs to protect v from collection.
func (th *Thread) NewHandle(v Value) *Handle {
	h := &Handle{th: th, v: v}
	th.handles = append(th.handles, h)
	return h
}

// Get returns the value pinned by the handle.
func (h *Handle) Get() Value { return h.v }

// Close unregisters the handle. It is a no-op if already closed.
func (h *Handle) Close() {
	if h.th == nil {
		return
	}
	handles := h.th.handles
	for i, o := range handles {
		if o == h {
			h.th.handles = append(handles[:i], handles[i+1:]...)
			break
		}
	}
	h.th = nil
}
