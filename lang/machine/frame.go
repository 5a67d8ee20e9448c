package machine

import "github.com/mbeckem/tiro-sub007/lang/source"

// Frame records a call to a Callable value (including a module's toplevel
// function) while it is on a Thread's call stack.
type Frame struct {
	callable Value  // current function (or toplevel) or built-in callable
	pc       uint32 // program counter (built-ins leave this at zero)
	space    []Value // locals followed by operand stack, scanned as GC roots
}

// Position returns the source position of the current point of execution in
// this frame, resolved against fset.
func (fr *Frame) Position(fset *source.FileSet) source.Position {
	switch c := fr.callable.(type) {
	case *Function:
		return c.Funcode.Position(fset, fr.pc)
	case callableWithPosition:
		return c.Position()
	}
	return source.Position{}
}

type callableWithPosition interface {
	Callable
	Position() source.Position
}
