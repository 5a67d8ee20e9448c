package compiler

// A Program is a compiled module: every function nested within it, plus the
// pooled names and constants its bytecode indexes by small integer operand.
//
// Program, Binding and Defer are not adapted from any single upstream
// source file - asm.go and the machine package were already written
// against this shape (Toplevel/Functions/Loads/Names/Constants,
// Binding.Name, Defer.PC0/PC1/StartPC) before these declarations existed,
// so they are authored here to satisfy that existing contract rather than
// grounded on a teacher file that declares them.
type Program struct {
	Filename  string
	Toplevel  *Funcode   // module's initialization function
	Functions []*Funcode // all functions, including Toplevel at [0]
	Loads     []Binding  // modules loaded by this one, in source order
	Names     []string   // pooled names (attributes, predeclared/universal identifiers)
	Constants []interface{}
}

// A Binding is the name of a load, local, or freevar slot.
type Binding struct {
	Name string
	Pos  Position
}

// A Defer describes a deferred or catch block attached to a function.
// PC0 and PC1 delimit the half-open range [PC0, PC1) of code the block
// guards; StartPC is where the block's own code begins. Nested blocks
// must come after the more general (enclosing) ones in a Funcode's
// Defers/Catches slice, since hasDeferredExecution scans front-to-back
// and runs the first (outermost) match.
type Defer struct {
	PC0, PC1, StartPC uint32
}

// Covers reports whether pc falls within the half-open range this block
// guards.
func (d Defer) Covers(pc int64) bool {
	return pc >= int64(d.PC0) && pc < int64(d.PC1)
}
