package machine

import (
	"fmt"

	"github.com/mbeckem/tiro-sub007/lang/compiler"
)

// A Function is a function defined by a function statement or expression. The
// initialization behavior of a module is also represented by a (top-level)
// Function.
type Function struct {
	hdr     Header
	Funcode *compiler.Funcode
	Module  *Module

	// Freevars holds the cells captured from an enclosing function at
	// MAKEFUNC time, one element per entry in Funcode.Freevars. It is an
	// Array rather than a Tuple because lang/irgen builds a closure's
	// captured environment as an array literal (see ir.Container with
	// ContainerArray in lang/irgen's lowerFuncExpr).
	Freevars *Array
}

var (
	_ Value      = (*Function)(nil)
	_ Callable   = (*Function)(nil)
	_ heapObject = (*Function)(nil)
	_ Traceable  = (*Function)(nil)
)

func (fn *Function) header() *Header { return &fn.hdr }

// Trace visits the function's captured free variables, keeping its closure
// environment reachable for as long as the function itself is.
func (fn *Function) Trace(visit func(Value)) {
	if fn.Freevars != nil {
		visit(fn.Freevars)
	}
}

// A Module is the dynamic counterpart to a compiler.Program, which is the unit
// of compilation. All functions in the same program share a module.
type Module struct {
	Program   *compiler.Program
	Constants []Value
}

func (fn *Function) String() string { return fmt.Sprintf("function(%p %s)", fn, fn.Name()) }
func (fn *Function) Type() string   { return "function" }
func (fn *Function) CallInternal(th *Thread, args *Tuple) (Value, error) {
	return run(th, fn, args)
}
func (fn *Function) Name() string {
	nm := fn.Funcode.Name
	if nm == "" {
		nm = "unknown"
	}
	return nm
}
