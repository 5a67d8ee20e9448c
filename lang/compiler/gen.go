package compiler

import (
	"fmt"
	"sort"

	"github.com/mbeckem/tiro-sub007/lang/ir"
	"github.com/mbeckem/tiro-sub007/lang/irgen"
	"github.com/mbeckem/tiro-sub007/lang/token"
)

// CompileProgram lowers the IR produced by lang/irgen into a bytecode
// Program. toplevelName must name the function in prog.Functions that
// represents the module's own initialization code (normally the chunk
// name passed to irgen.GenerateFiles); it is placed at Functions[0], as
// Program's doc comment requires, and everything else follows in
// irgen's own order.
//
// lang/ir carries no source positions (see ir.Inst), so the Funcode
// produced here has an empty line table: Funcode.Position degrades to
// reporting just the filename.
func CompileProgram(prog *irgen.Program, filename, toplevelName string) (*Program, error) {
	top := prog.ByName(toplevelName)
	if top == nil {
		return nil, fmt.Errorf("compiler: no toplevel function named %q", toplevelName)
	}

	ordered := make([]*ir.Function, 0, len(prog.Functions))
	ordered = append(ordered, top)
	for _, fn := range prog.Functions {
		if fn != top {
			ordered = append(ordered, fn)
		}
	}

	p := &Program{Filename: filename}
	cg := &progGen{
		prog:  p,
		names: make(map[string]uint32),
		consts: make(map[interface{}]uint32),
		fnIdx: make(map[string]int),
	}
	for i, fn := range ordered {
		cg.fnIdx[fn.Name] = i
	}

	for _, fn := range ordered {
		fcode, err := cg.compileFunction(fn)
		if err != nil {
			return nil, err
		}
		p.Functions = append(p.Functions, fcode)
	}
	p.Toplevel = p.Functions[0]
	return p, nil
}

// progGen holds the state shared by every function compiled into the
// same Program: the deduplicated name and constant pools.
type progGen struct {
	prog   *Program
	names  map[string]uint32
	consts map[interface{}]uint32
	fnIdx  map[string]int
}

func (cg *progGen) nameIndex(s string) uint32 {
	if idx, ok := cg.names[s]; ok {
		return idx
	}
	idx := uint32(len(cg.prog.Names))
	cg.prog.Names = append(cg.prog.Names, s)
	cg.names[s] = idx
	return idx
}

// constIndex pools an int64/string/float64 literal. Nil and bool literals
// never go through the pool: machine.makeToplevelFunction's constant-type
// switch only understands those three Go types, so ConstNull/ConstBool
// are lowered directly to NIL/TRUE/FALSE opcodes instead (see
// fnGen.emitConst).
func (cg *progGen) constIndex(v interface{}) uint32 {
	if idx, ok := cg.consts[v]; ok {
		return idx
	}
	idx := uint32(len(cg.prog.Constants))
	cg.prog.Constants = append(cg.prog.Constants, v)
	cg.consts[v] = idx
	return idx
}

// pendingTrampoline is a queued critical-edge block: CJMP can only
// target one address, so the "then" edge of a BranchTerm is routed
// through a small synthetic block (rendered after every real block)
// that carries that edge's phi-copies before jumping on to Then.
type pendingTrampoline struct {
	from, to ir.BlockId
}

type jumpPatch struct {
	pos   int
	label int
}

// fnGen compiles a single ir.Function to a Funcode.
type fnGen struct {
	cg   *progGen
	fn   *ir.Function
	code []byte

	instSlot map[ir.InstId]int
	cellSlot map[int]int // ir.ClosureLValue.Index -> local slot
	nextSlot int
	curStack int
	maxstack int
	nFreevar int // highest ClosureLValue{Levels:1}.Index seen, +1

	labelAddr   map[int]int
	patches     []jumpPatch
	trampolines []pendingTrampoline
}

// blockLabel and trampolineLabel map the two kinds of jump target into
// a single label namespace: real blocks use their (always positive)
// BlockId verbatim, synthetic trampolines use the negative range so the
// two can never collide.
func blockLabel(id ir.BlockId) int    { return int(id) }
func trampolineLabel(i int) int       { return -(i + 1) }

func (cg *progGen) compileFunction(fn *ir.Function) (*Funcode, error) {
	fg := &fnGen{
		cg:        cg,
		fn:        fn,
		instSlot:  make(map[ir.InstId]int),
		cellSlot:  make(map[int]int),
		labelAddr: make(map[int]int),
	}
	fg.nextSlot = fn.Params
	fg.assignCellSlots()
	fg.assignInstSlots()

	for _, id := range fn.BlockIds() {
		fg.labelAddr[blockLabel(id)] = len(fg.code)
		if err := fg.compileBlock(fn.Block(id)); err != nil {
			return nil, err
		}
	}
	for i := 0; i < len(fg.trampolines); i++ {
		tr := fg.trampolines[i]
		fg.labelAddr[trampolineLabel(i)] = len(fg.code)
		fg.emitPhiCopies(tr.from, tr.to)
		fg.emitJump(JMP, blockLabel(tr.to))
	}

	for _, p := range fg.patches {
		target, ok := fg.labelAddr[p.label]
		if !ok {
			return nil, fmt.Errorf("compiler: unresolved jump label %d in %s", p.label, fn.Name)
		}
		patched := addUint32(nil, uint32(target), 4)
		copy(fg.code[p.pos:p.pos+4], patched)
	}

	locals := make([]Binding, fg.nextSlot)
	for i := range locals {
		if i < fn.Params {
			locals[i] = Binding{Name: fmt.Sprintf("param%d", i)}
		} else {
			locals[i] = Binding{Name: fmt.Sprintf("t%d", i)}
		}
	}
	cells := make([]int, 0, len(fg.cellSlot))
	for _, slot := range fg.cellSlot {
		cells = append(cells, slot)
	}
	sort.Ints(cells)

	freevars := make([]Binding, fg.nFreevar)
	for i := range freevars {
		freevars[i] = Binding{Name: fmt.Sprintf("fv%d", i)}
	}

	return &Funcode{
		Prog:      cg.prog,
		Name:      fn.Name,
		Code:      fg.code,
		Locals:    locals,
		Cells:     cells,
		Freevars:  freevars,
		MaxStack:  fg.maxstack + 1,
		NumParams: fn.Params,
	}, nil
}

// assignCellSlots gives every distinct closure-cell index referenced by
// this function its own dedicated local slot, allocated before the
// generic per-instruction slots so the Cells list can be computed
// without renumbering anything else.
func (fg *fnGen) assignCellSlots() {
	for _, id := range fg.fn.BlockIds() {
		b := fg.fn.Block(id)
		for _, instID := range b.Insts {
			fg.noteCells(fg.fn.Inst(instID).Value)
		}
	}
}

func (fg *fnGen) noteCells(v ir.RValue) {
	switch v := v.(type) {
	case ir.ReadLValue:
		fg.noteCellLValue(v.Target)
	case ir.WriteLValue:
		fg.noteCellLValue(v.Target)
	}
}

func (fg *fnGen) noteCellLValue(l ir.LValue) {
	if cl, ok := l.(ir.ClosureLValue); ok && cl.Levels == 0 {
		if _, ok := fg.cellSlot[cl.Index]; !ok {
			fg.cellSlot[cl.Index] = fg.nextSlot
			fg.nextSlot++
		}
	}
}

// assignInstSlots gives every instruction in the function (including
// phis) its own local slot. This is deliberately not a register
// allocator: with no way to run the toolchain and verify a liveness-based
// scheme, one slot per value is the simplest correct encoding.
func (fg *fnGen) assignInstSlots() {
	for _, id := range fg.fn.BlockIds() {
		b := fg.fn.Block(id)
		for _, instID := range b.Insts {
			fg.instSlot[instID] = fg.nextSlot
			fg.nextSlot++
		}
	}
}

func (fg *fnGen) slot(id ir.InstId) int {
	s, ok := fg.instSlot[id]
	if !ok {
		panic(fmt.Sprintf("compiler: instruction %%%d has no assigned slot", id))
	}
	return s
}

func (fg *fnGen) emit(op Opcode, arg uint32) {
	fg.code = encodeInsn(fg.code, op, arg)
	fg.curStack += opStackEffect(op, arg)
	if fg.curStack > fg.maxstack {
		fg.maxstack = fg.curStack
	}
}

// opStackEffect resolves an opcode's effect on the operand stack,
// including the handful of variable-effect opcodes the generator
// actually emits (stackEffect carries a sentinel, variableStackEffect,
// for those instead of a real value).
func opStackEffect(op Opcode, arg uint32) int {
	switch op {
	case CALL:
		return -int(arg >> 8)
	case MAKETUPLE, MAKEARRAY:
		return 1 - int(arg)
	case LOAD:
		// The static table lists LOAD as -1 (one name popped, nothing
		// pushed), but machine.go's actual handler also pushes the
		// loaded value before falling through, netting 0; the
		// generator only ever emits the single-value form.
		return 0
	}
	se := int(stackEffect[op])
	if se == variableStackEffect {
		panic(fmt.Sprintf("compiler: opcode %s has no static stack effect and is not special-cased", op))
	}
	return se
}

func (fg *fnGen) loadLocal(id ir.InstId) { fg.emit(LOCAL, uint32(fg.slot(id))) }
func (fg *fnGen) storeLocal(id ir.InstId) { fg.emit(SETLOCAL, uint32(fg.slot(id))) }

func (fg *fnGen) emitJump(op Opcode, label int) {
	pos := len(fg.code) + 1 // argument starts right after the opcode byte
	fg.emit(op, 0)
	fg.patches = append(fg.patches, jumpPatch{pos: pos, label: label})
}

func (fg *fnGen) compileBlock(b *ir.Block) error {
	phiCount := b.PhiCount(fg.fn)
	for i, instID := range b.Insts {
		if i < phiCount {
			continue // phi values are materialized by predecessors' phi-copies
		}
		inst := fg.fn.Inst(instID)
		if err := fg.compileInst(instID, inst.Value); err != nil {
			return err
		}
	}
	return fg.compileTerm(b.ID, b.Term)
}

// emitPhiCopies materializes the values a branch from `from` to `to`
// must leave behind for to's phis, by copying each phi's operand for
// the from->to edge into the phi instruction's own slot.
func (fg *fnGen) emitPhiCopies(from, to ir.BlockId) {
	succ := fg.fn.Block(to)
	predIdx := -1
	for i, p := range succ.Preds {
		if p == from {
			predIdx = i
			break
		}
	}
	if predIdx == -1 {
		panic(fmt.Sprintf("compiler: block %%b%d is not a predecessor of %%b%d", from, to))
	}
	n := succ.PhiCount(fg.fn)
	for i := 0; i < n; i++ {
		phiID := succ.Insts[i]
		phi, ok := fg.fn.Inst(phiID).Value.(ir.Phi)
		if !ok {
			panic(fmt.Sprintf("compiler: unresolved phi0 in finished function %s", fg.fn.Name))
		}
		src := phi.Args[predIdx]
		fg.loadLocal(src)
		fg.storeLocal(phiID)
	}
}

func (fg *fnGen) compileTerm(bid ir.BlockId, term ir.Terminator) error {
	switch t := term.(type) {
	case ir.JumpTerm:
		fg.emitPhiCopies(bid, t.Target)
		fg.emitJump(JMP, blockLabel(t.Target))
		return nil

	case ir.BranchTerm:
		fg.loadLocal(t.Cond)
		trIdx := len(fg.trampolines)
		fg.trampolines = append(fg.trampolines, pendingTrampoline{from: bid, to: t.Then})
		fg.emitJump(CJMP, trampolineLabel(trIdx))
		fg.emitPhiCopies(bid, t.Else)
		fg.emitJump(JMP, blockLabel(t.Else))
		return nil

	case ir.ReturnTerm:
		fg.loadLocal(t.Value)
		fg.emit(RETURN, 0)
		return nil

	case ir.ExitTerm, ir.NeverTerm, ir.NoneTerm:
		// None of these are reachable via the front end's actual
		// lowering (every block irgen finishes ends in Jump/Branch/
		// Return), but a defensive trap keeps a malformed function
		// from falling off the end of its bytecode into whatever
		// follows it in the buffer.
		fg.emit(NIL, 0)
		fg.emit(RETURN, 0)
		return nil

	case ir.AssertFailTerm:
		return fmt.Errorf("compiler: AssertFailTerm not supported by bytecode generator (function %s)", fg.fn.Name)

	default:
		return fmt.Errorf("compiler: unhandled terminator %T in %s", term, fg.fn.Name)
	}
}

func (fg *fnGen) compileInst(id ir.InstId, v ir.RValue) error {
	switch v := v.(type) {
	case ir.ReadLValue:
		if err := fg.compileReadLValue(v.Target); err != nil {
			return err
		}
		fg.storeLocal(id)

	case ir.WriteLValue:
		return fg.compileWriteLValue(v.Target, v.Value)

	case ir.Copy:
		fg.loadLocal(v.Src)
		fg.storeLocal(id)

	case ir.Phi, ir.Phi0:
		// materialized by predecessors' phi-copies; nothing to emit
		// for the definition itself.

	case ir.ConstValue:
		fg.emitConst(v.Val)
		fg.storeLocal(id)

	case ir.UnaryOp:
		fg.loadLocal(v.X)
		fg.emit(unaryOpcode(token.Token(v.Op)), 0)
		fg.storeLocal(id)

	case ir.BinaryOp:
		fg.loadLocal(v.X)
		fg.loadLocal(v.Y)
		op := binOpcode(token.Token(v.Op))
		fg.emit(op, 0)
		fg.storeLocal(id)

	case ir.Call:
		fg.loadLocal(v.Fn)
		for _, a := range v.Args {
			fg.loadLocal(a)
		}
		fg.emit(CALL, uint32(len(v.Args))<<8)
		fg.storeLocal(id)

	case ir.MakeClosure:
		fnIdx, ok := fg.cg.fnIdx[v.Template]
		if !ok {
			return fmt.Errorf("compiler: unknown function template %q", v.Template)
		}
		fg.loadLocal(v.Env)
		fg.emit(MAKEFUNC, uint32(fnIdx))
		fg.storeLocal(id)

	case ir.Container:
		for _, e := range v.Elems {
			fg.loadLocal(e)
		}
		switch v.Kind {
		case ir.ContainerTuple:
			fg.emit(MAKETUPLE, uint32(len(v.Elems)))
		case ir.ContainerArray, ir.ContainerSet:
			// ContainerSet has no dedicated runtime representation
			// (lang/machine has no Set type): it is lowered to an
			// array, so set literals compile but do not deduplicate.
			fg.emit(MAKEARRAY, uint32(len(v.Elems)))
		default:
			return fmt.Errorf("compiler: unhandled container kind %s", v.Kind)
		}
		fg.storeLocal(id)

	case ir.MapContainer:
		fg.emit(MAKEMAP, 0)
		for i := range v.Keys {
			fg.emit(DUP, 0)
			fg.loadLocal(v.Keys[i])
			fg.loadLocal(v.Vals[i])
			fg.emit(SETMAP, 0)
		}
		fg.storeLocal(id)

	case ir.RecordContainer:
		// No dedicated record/struct runtime type exists either, so a
		// `{name: v, ...}` literal is lowered via the same map
		// machinery, keyed by its (statically known) field names.
		fg.emit(MAKEMAP, 0)
		for i, name := range v.Keys {
			fg.emit(DUP, 0)
			fg.emitConst(ir.Const{Kind: ir.ConstString, Str: name})
			fg.loadLocal(v.Vals[i])
			fg.emit(SETMAP, 0)
		}
		fg.storeLocal(id)

	case ir.Format:
		fg.emit(UNIVERSAL, fg.cg.nameIndex("format"))
		for _, p := range v.Parts {
			fg.loadLocal(p)
		}
		fg.emit(CALL, uint32(len(v.Parts))<<8)
		fg.storeLocal(id)

	case ir.LoadValue:
		fg.emitConst(ir.Const{Kind: ir.ConstString, Str: v.Name})
		fg.emit(LOAD, 0)
		fg.storeLocal(id)

	case ir.ErrorValue:
		// Substituted by earlier phases for an expression whose
		// construction failed; there is nothing meaningful left to
		// generate code for, so it compiles to nil rather than
		// aborting the whole function.
		fg.emit(NIL, 0)
		fg.storeLocal(id)

	case ir.OuterEnvironment, ir.MakeEnvironment, ir.MethodHandle, ir.MethodCall:
		// None of these are ever emitted by lang/irgen's current
		// lowering (it only ever builds closures via
		// Container{ContainerArray}+MakeClosure, see lowerFuncExpr):
		// reserved IR shapes with no front-end producer yet.
		return fmt.Errorf("compiler: %T not emitted by irgen, no codegen implemented (function %s)", v, fg.fn.Name)

	default:
		return fmt.Errorf("compiler: unhandled rvalue %T in %s", v, fg.fn.Name)
	}
	return nil
}

func (fg *fnGen) emitConst(c ir.Const) {
	switch c.Kind {
	case ir.ConstNull:
		fg.emit(NIL, 0)
	case ir.ConstBool:
		if c.Bool {
			fg.emit(TRUE, 0)
		} else {
			fg.emit(FALSE, 0)
		}
	case ir.ConstInt:
		fg.emit(CONSTANT, fg.cg.constIndex(c.Int))
	case ir.ConstFloat:
		fg.emit(CONSTANT, fg.cg.constIndex(c.Flt))
	case ir.ConstString, ir.ConstSymbol:
		fg.emit(CONSTANT, fg.cg.constIndex(c.Str))
	default:
		panic(fmt.Sprintf("compiler: unhandled const kind %v", c.Kind))
	}
}

func (fg *fnGen) compileReadLValue(l ir.LValue) error {
	switch l := l.(type) {
	case ir.ParamLValue:
		fg.emit(LOCAL, uint32(l.Index))
	case ir.ClosureLValue:
		if l.Levels == 0 {
			fg.emit(LOCALCELL, uint32(fg.cellSlot[l.Index]))
		} else if l.Levels == 1 {
			fg.emit(FREECELL, uint32(l.Index))
			if l.Index+1 > fg.nFreevar {
				fg.nFreevar = l.Index + 1
			}
		} else {
			return fmt.Errorf("compiler: closure capture with Levels=%d not supported (forwarding chains deeper than one level are not produced by irgen)", l.Levels)
		}
	case ir.ModuleLValue:
		idx := fg.cg.nameIndex(l.Name)
		if l.Universal {
			fg.emit(UNIVERSAL, idx)
		} else {
			fg.emit(PREDECLARED, idx)
		}
	case ir.FieldLValue:
		fg.loadLocal(l.Obj)
		fg.emit(ATTR, fg.cg.nameIndex(l.Name))
	case ir.TupleFieldLValue:
		fg.loadLocal(l.Obj)
		fg.emit(CONSTANT, fg.cg.constIndex(int64(l.Index)))
		fg.emit(INDEX, 0)
	case ir.IndexLValue:
		fg.loadLocal(l.Obj)
		fg.loadLocal(l.Index)
		fg.emit(INDEX, 0)
	default:
		return fmt.Errorf("compiler: unhandled lvalue %T", l)
	}
	return nil
}

func (fg *fnGen) compileWriteLValue(l ir.LValue, val ir.InstId) error {
	switch l := l.(type) {
	case ir.ClosureLValue:
		if l.Levels != 0 {
			return fmt.Errorf("compiler: write to a captured variable from an outer scope (Levels=%d) has no SETFREECELL opcode and is not required by any scenario irgen produces", l.Levels)
		}
		fg.loadLocal(val)
		fg.emit(SETLOCALCELL, uint32(fg.cellSlot[l.Index]))
	case ir.FieldLValue:
		fg.loadLocal(l.Obj)
		fg.loadLocal(val)
		fg.emit(SETFIELD, fg.cg.nameIndex(l.Name))
	case ir.IndexLValue:
		fg.loadLocal(l.Obj)
		fg.loadLocal(l.Index)
		fg.loadLocal(val)
		fg.emit(SETINDEX, 0)
	case ir.ParamLValue, ir.ModuleLValue, ir.TupleFieldLValue:
		return fmt.Errorf("compiler: %T is not a writable lvalue", l)
	default:
		return fmt.Errorf("compiler: unhandled lvalue %T", l)
	}
	return nil
}
