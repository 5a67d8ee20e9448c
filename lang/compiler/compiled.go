package compiler

import (
	"sort"
	"sync"

	"github.com/mbeckem/tiro-sub007/lang/source"
)

// Position is a resolved source position, valid for the lifetime of the
// FileSet that produced it.
type Position = source.Position

// A Funcode is the code of a compiled function.
type Funcode struct {
	Prog      *Program
	Pos       source.Pos // position of the def or lambda token
	Name      string     // name of this function
	Code      []byte     // the byte code
	pclinetab []uint32   // mapping from pc to source.Pos, see setPos
	Locals    []Binding  // locals, parameters first
	Cells     []int      // indices of Locals that require cells
	Freevars  []Binding  // for tracing
	Defers    []Defer    // defer blocks, nested ones must come after the more general ones
	Catches   []Defer    // catch blocks, nested ones must come after the more general ones
	MaxStack  int
	NumParams int
	HasVarArg bool

	// -- transient state --

	lntOnce sync.Once
	lnt     []pclinecol // decoded line number table, sorted by pc
}

type pclinecol struct {
	pc  uint32
	pos source.Pos
}

// setPos records that pc begins code generated from pos. The compiler
// calls this in increasing pc order as it emits each instruction.
func (fn *Funcode) setPos(pc uint32, pos source.Pos) {
	fn.pclinetab = append(fn.pclinetab, pc, uint32(pos))
}

// Position returns the source position of the instruction at pc, resolved
// against the given file set.
func (fn *Funcode) Position(fset *source.FileSet, pc uint32) source.Position {
	fn.lntOnce.Do(func() {
		n := len(fn.pclinetab) / 2
		fn.lnt = make([]pclinecol, n)
		for i := 0; i < n; i++ {
			fn.lnt[i] = pclinecol{fn.pclinetab[2*i], source.Pos(fn.pclinetab[2*i+1])}
		}
		sort.Slice(fn.lnt, func(i, j int) bool { return fn.lnt[i].pc < fn.lnt[j].pc })
	})
	lnt := fn.lnt
	i := sort.Search(len(lnt), func(i int) bool { return lnt[i].pc > pc }) - 1
	if i < 0 {
		return source.Position{Filename: fn.Prog.Filename}
	}
	pos := lnt[i].pos
	if f := fset.File(pos); f != nil {
		return f.Position(pos)
	}
	return source.Position{Filename: fn.Prog.Filename}
}
