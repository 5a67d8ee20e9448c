package machine

import "fmt"

// Array represents a fixed-size list of values created by an array literal
// (MAKEARRAY). Unlike Starlark's mutable list, element assignment is the only
// supported mutation; there is no append/resize operation at this layer.
type Array struct {
	hdr   Header
	elems []Value
}

var (
	_ Value       = (*Array)(nil)
	_ Indexable   = (*Array)(nil)
	_ HasSetIndex = (*Array)(nil)
	_ Sequence    = (*Array)(nil)
	_ heapObject  = (*Array)(nil)
	_ Traceable   = (*Array)(nil)
)

func (a *Array) header() *Header { return &a.hdr }

// Trace visits every element, since an array keeps its elements reachable.
func (a *Array) Trace(visit func(Value)) {
	for _, v := range a.elems {
		visit(v)
	}
}

// NewArray returns an array containing the given elements. The caller must
// not modify elems afterwards.
func NewArray(elems []Value) *Array { return &Array{elems: elems} }

func (a *Array) String() string    { return fmt.Sprintf("array(%p, len=%d)", a, len(a.elems)) }
func (a *Array) Type() string      { return "array" }
func (a *Array) Len() int          { return len(a.elems) }
func (a *Array) Index(i int) Value { return a.elems[i] }

func (a *Array) SetIndex(i int, v Value) error {
	a.elems[i] = v
	return nil
}

func (a *Array) Iterate() Iterator { return &arrayIterator{a: a} }

type arrayIterator struct {
	a *Array
	i int
}

func (it *arrayIterator) Next(p *Value) bool {
	if it.i >= len(it.a.elems) {
		return false
	}
	*p = it.a.elems[it.i]
	it.i++
	return true
}

func (it *arrayIterator) Done() {}
