package machine

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// A Map represents a map or dictionary. If you know the exact final number of
// entries, it is more efficient to call NewMap.
type Map struct {
	hdr Header
	m   *swiss.Map[Value, Value]
}

var (
	_ Value      = (*Map)(nil)
	_ Mapping    = (*Map)(nil)
	_ HasSetKey  = (*Map)(nil)
	_ Iterable   = (*Map)(nil)
	_ Sequence   = (*Map)(nil)
	_ heapObject = (*Map)(nil)
	_ Traceable  = (*Map)(nil)
)

func (m *Map) header() *Header { return &m.hdr }

// Trace visits every key and value currently stored in the map.
func (m *Map) Trace(visit func(Value)) {
	m.m.Iter(func(k, v Value) bool {
		visit(k)
		visit(v)
		return false
	})
}

// NewMap returns a map with initial capacity for at least size items.
func NewMap(size int) *Map {
	m := swiss.NewMap[Value, Value](uint32(size))
	return &Map{m: m}
}

func (m *Map) String() string { return fmt.Sprintf("map(%p)", m) }
func (m *Map) Type() string   { return "map" }
func (m *Map) Get(k Value) (Value, bool, error) {
	v, ok := m.m.Get(k)
	return v, ok, nil
}
func (m *Map) SetKey(k, v Value) error {
	m.m.Put(k, v)
	return nil
}

func (m *Map) Len() int { return m.m.Count() }

// Iterate returns an iterator over this map's (key, value) pairs, each
// wrapped as a 2-tuple. swiss.Map only exposes callback-style iteration, so
// the pairs are snapshotted up front rather than streamed lazily; mutating
// the map during iteration is unsupported either way.
func (m *Map) Iterate() Iterator {
	pairs := make([]Value, 0, m.m.Count())
	m.m.Iter(func(k, v Value) bool {
		pairs = append(pairs, NewTuple([]Value{k, v}))
		return false
	})
	return &mapIterator{pairs: pairs}
}

type mapIterator struct {
	pairs []Value
	i     int
}

func (it *mapIterator) Next(p *Value) bool {
	if it.i >= len(it.pairs) {
		return false
	}
	*p = it.pairs[it.i]
	it.i++
	return true
}

func (it *mapIterator) Done() {}
