// Package ir implements the SSA-form intermediate representation that
// sits between symbol resolution and bytecode generation: basic blocks
// of instructions (including phi functions), typed rvalues and lvalues,
// and block terminators.
//
// The data model is an arena-of-ids design
// (AstId-style stable ids instead of a pointer graph): a Function owns
// a Block arena and an Inst arena, and every cross-reference (operand,
// predecessor, successor) is an id into one of those arenas rather than
// a pointer, so the graph can contain cycles (blocks <-> predecessors,
// phis <-> operands) without any unsafe aliasing.
//
// Grounded on original_source/src/tiro/ir_gen/gen_func.hpp (construction
// shape: BlockId/LocalId-indexed Function, CurrentBlock) and
// original_source/src/compiler/ir_passes/liveness.cpp (phi-as-inst,
// terminator shape).
package ir

import "fmt"

// BlockId identifies a basic block within a Function. The zero value,
// NoBlock, never names a real block.
type BlockId int32

// NoBlock is the zero value of BlockId.
const NoBlock BlockId = 0

// InstId identifies an instruction (including phi nodes, which are
// ordinary instructions with a Phi/Phi0 value) within a Function. The
// zero value, NoInst, never names a real instruction.
type InstId int32

// NoInst is the zero value of InstId.
const NoInst InstId = 0

// ContainerKind distinguishes the aggregate literal kinds that share the
// Container rvalue shape (a flat element list).
type ContainerKind uint8

const (
	ContainerArray ContainerKind = iota
	ContainerTuple
	ContainerSet
)

func (k ContainerKind) String() string {
	switch k {
	case ContainerArray:
		return "array"
	case ContainerTuple:
		return "tuple"
	case ContainerSet:
		return "set"
	default:
		return "container?"
	}
}

// ConstKind closes the set of literal constant kinds an IR Const rvalue
// may carry.
type ConstKind uint8

const (
	ConstNull ConstKind = iota
	ConstBool
	ConstInt
	ConstFloat
	ConstString
	ConstSymbol
)

// Const is an immediate literal value embedded directly in an
// instruction, before module-level constant deduplication (which is a
// bytecode-generation concern, see lang/compiler).
type Const struct {
	Kind ConstKind
	Bool bool
	Int  int64
	Flt  float64
	Str  string
}

func (c Const) String() string {
	switch c.Kind {
	case ConstNull:
		return "null"
	case ConstBool:
		return fmt.Sprintf("%t", c.Bool)
	case ConstInt:
		return fmt.Sprintf("%d", c.Int)
	case ConstFloat:
		return fmt.Sprintf("%g", c.Flt)
	case ConstString:
		return fmt.Sprintf("%q", c.Str)
	case ConstSymbol:
		return "#" + c.Str
	default:
		return "const?"
	}
}

// LValue is the closed set of addressable memory locations that reads
// and writes of non-SSA storage go through: function parameters that
// were never promoted to an SSA variable, closure-captured slots,
// module-level globals, and the three kinds of "may fail" compound
// access (field, tuple field, index).
type LValue interface {
	isLValue()
	String() string
}

// ParamLValue addresses the function's own parameter slot directly
// (used only for the initial read that seeds the SSA variable; once
// read, a parameter behaves like any other local in the construction
// algorithm).
type ParamLValue struct{ Index int }

func (ParamLValue) isLValue()        {}
func (p ParamLValue) String() string { return fmt.Sprintf("param[%d]", p.Index) }

// ClosureLValue addresses a slot in an ancestor closure environment,
// Levels parent links up from the current one.
type ClosureLValue struct {
	Levels int
	Index  int
}

func (ClosureLValue) isLValue() {}
func (c ClosureLValue) String() string {
	return fmt.Sprintf("closure[%d,%d]", c.Levels, c.Index)
}

// ModuleLValue addresses a name resolved outside any user scope: a
// predeclared binding supplied by the embedding environment, or a
// universal (language built-in) name. Top-level var/const/func
// declarations are not module members in this language - the chunk
// itself compiles to an implicit top-level function, so they are
// ordinary ParamLValue/ClosureLValue locals of that function instead.
// Universal distinguishes the UNIVERSAL opcode from PREDECLARED; only
// reads are valid (both binding classes are immutable).
type ModuleLValue struct {
	Name      string
	Universal bool
}

func (ModuleLValue) isLValue() {}
func (m ModuleLValue) String() string {
	if m.Universal {
		return "universal[" + m.Name + "]"
	}
	return "predeclared[" + m.Name + "]"
}

// FieldLValue addresses a named attribute of an object value. Reading
// or writing it may fail at runtime (missing field), so it is never
// eliminated as dead code purely on liveness grounds.
type FieldLValue struct {
	Obj  InstId
	Name string
}

func (FieldLValue) isLValue() {}
func (f FieldLValue) String() string {
	return fmt.Sprintf("%%%d.%s", f.Obj, f.Name)
}

// TupleFieldLValue addresses `x.N` on a tuple value.
type TupleFieldLValue struct {
	Obj   InstId
	Index uint32
}

func (TupleFieldLValue) isLValue() {}
func (t TupleFieldLValue) String() string {
	return fmt.Sprintf("%%%d.%d", t.Obj, t.Index)
}

// IndexLValue addresses `x[i]`.
type IndexLValue struct{ Obj, Index InstId }

func (IndexLValue) isLValue() {}
func (i IndexLValue) String() string {
	return fmt.Sprintf("%%%d[%%%d]", i.Obj, i.Index)
}

// RValue is the closed set of instruction value kinds. Exactly one
// concrete type implements it per kind; Inst.Value holds one.
type RValue interface {
	isRValue()
	// operands returns the InstIds this value reads, in evaluation
	// order, excluding phi operands (which liveness and DCE read from
	// Phi.Args directly).
	operands() []InstId
	String() string
}

// ReadLValue reads a non-SSA location.
type ReadLValue struct{ Target LValue }

func (ReadLValue) isRValue()          {}
func (r ReadLValue) operands() []InstId { return lvalueOperands(r.Target) }
func (r ReadLValue) String() string   { return "read " + r.Target.String() }

// WriteLValue writes value Value through a non-SSA location. It is a
// statement, not a value-producing rvalue (DCE never removes it: every
// non-SSA write may observably fail).
type WriteLValue struct {
	Target LValue
	Value  InstId
}

func (WriteLValue) isRValue() {}
func (w WriteLValue) operands() []InstId {
	return append(lvalueOperands(w.Target), w.Value)
}
func (w WriteLValue) String() string {
	return fmt.Sprintf("write %s = %%%d", w.Target.String(), w.Value)
}

// Copy aliases another local without re-evaluating it (the canonical
// replacement value kind used when a trivial phi is removed).
type Copy struct{ Src InstId }

func (Copy) isRValue()          {}
func (c Copy) operands() []InstId { return []InstId{c.Src} }
func (c Copy) String() string   { return fmt.Sprintf("copy %%%d", c.Src) }

// Phi merges values from each of the block's predecessors, one operand
// per predecessor in predecessor order.
type Phi struct{ Args []InstId }

func (Phi) isRValue()          {}
func (p Phi) operands() []InstId { return nil } // phi operands are handled specially, see Phi.Args
func (p Phi) String() string   { return fmt.Sprintf("phi%v", p.Args) }

// Phi0 is a placeholder inserted by read_variable_recursive into an
// unsealed block; it is always resolved into a real Phi (or a Copy of
// a trivial phi's unique operand) by the time the block is sealed. A
// Phi0 surviving to the end of construction is an IR-construction
// invariant violation).
type Phi0 struct{}

func (Phi0) isRValue()          {}
func (Phi0) operands() []InstId { return nil }
func (Phi0) String() string   { return "phi0" }

// ConstValue is a literal.
type ConstValue struct{ Val Const }

func (ConstValue) isRValue()          {}
func (ConstValue) operands() []InstId { return nil }
func (c ConstValue) String() string   { return c.Val.String() }

// OuterEnvironment reads the closure environment captured at function
// entry (i.e. the function's own free-variable environment, as opposed
// to one allocated by MakeEnvironment for a nested scope).
type OuterEnvironment struct{}

func (OuterEnvironment) isRValue()          {}
func (OuterEnvironment) operands() []InstId { return nil }
func (OuterEnvironment) String() string   { return "outer_env" }

// UnaryOp applies a prefix unary operator. Op is a token.Token value
// from lang/token, stored here as an int to avoid an import cycle with
// the token package's own dependants; lang/irgen casts to/from
// token.Token at the boundary.
type UnaryOp struct {
	Op int
	X  InstId
}

func (UnaryOp) isRValue()          {}
func (u UnaryOp) operands() []InstId { return []InstId{u.X} }
func (u UnaryOp) String() string   { return fmt.Sprintf("unary(%d, %%%d)", u.Op, u.X) }

// BinaryOp applies a binary operator. Short-circuiting operators
// (&&, ||, ??) are never represented as BinaryOp: the IR builder lowers
// them to explicit branches (see lang/irgen), since their right operand
// must not always be evaluated.
type BinaryOp struct {
	Op   int
	X, Y InstId
}

func (BinaryOp) isRValue()          {}
func (b BinaryOp) operands() []InstId { return []InstId{b.X, b.Y} }
func (b BinaryOp) String() string   { return fmt.Sprintf("binary(%d, %%%d, %%%d)", b.Op, b.X, b.Y) }

// Call invokes a function value with positional arguments.
type Call struct {
	Fn   InstId
	Args []InstId
}

func (Call) isRValue() {}
func (c Call) operands() []InstId {
	return append([]InstId{c.Fn}, c.Args...)
}
func (c Call) String() string { return fmt.Sprintf("call %%%d%v", c.Fn, c.Args) }

// MethodHandle looks up a named method on Instance, producing a bound
// callable. Split from MethodCall so that liveness can express the
// "method bundle" (instance, to support the no-copy fast dispatch path)
// as a single value with its own lifetime.
type MethodHandle struct {
	Instance InstId
	Name     string
}

func (MethodHandle) isRValue()          {}
func (m MethodHandle) operands() []InstId { return []InstId{m.Instance} }
func (m MethodHandle) String() string   { return fmt.Sprintf("method_handle(%%%d, %s)", m.Instance, m.Name) }

// MethodCall invokes a MethodHandle value with positional arguments.
type MethodCall struct {
	Handle InstId
	Args   []InstId
}

func (MethodCall) isRValue() {}
func (m MethodCall) operands() []InstId {
	return append([]InstId{m.Handle}, m.Args...)
}
func (m MethodCall) String() string { return fmt.Sprintf("method_call %%%d%v", m.Handle, m.Args) }

// MakeEnvironment allocates a new closure environment of Size slots,
// parented to Parent (NoInst if this is a top-level environment).
type MakeEnvironment struct {
	Parent InstId
	Size   int
}

func (MakeEnvironment) isRValue() {}
func (m MakeEnvironment) operands() []InstId {
	if m.Parent == NoInst {
		return nil
	}
	return []InstId{m.Parent}
}
func (m MakeEnvironment) String() string {
	return fmt.Sprintf("make_env(%%%d, %d)", m.Parent, m.Size)
}

// MakeClosure pairs a function template (identified by name, resolved
// to a module member by BytecodeGen) with a captured closure
// environment.
type MakeClosure struct {
	Template string
	Env      InstId
}

func (MakeClosure) isRValue()          {}
func (m MakeClosure) operands() []InstId { return []InstId{m.Env} }
func (m MakeClosure) String() string   { return fmt.Sprintf("make_closure(%s, %%%d)", m.Template, m.Env) }

// Container builds an array, tuple or set literal from a flat element
// list.
type Container struct {
	Kind  ContainerKind
	Elems []InstId
}

func (Container) isRValue()          {}
func (c Container) operands() []InstId { return c.Elems }
func (c Container) String() string   { return fmt.Sprintf("%s%v", c.Kind, c.Elems) }

// MapContainer builds a map literal from parallel key/value lists,
// preserving the insertion order of the source entries.
type MapContainer struct{ Keys, Vals []InstId }

func (MapContainer) isRValue() {}
func (m MapContainer) operands() []InstId {
	out := make([]InstId, 0, len(m.Keys)+len(m.Vals))
	for i := range m.Keys {
		out = append(out, m.Keys[i], m.Vals[i])
	}
	return out
}
func (m MapContainer) String() string { return fmt.Sprintf("map(%v, %v)", m.Keys, m.Vals) }

// RecordContainer builds a `{name: v, ...}` literal with statically
// known symbol keys; BytecodeGen lowers it like a MapContainer, with
// each key emitted as a string constant.
type RecordContainer struct {
	Keys []string
	Vals []InstId
}

func (RecordContainer) isRValue()          {}
func (r RecordContainer) operands() []InstId { return r.Vals }
func (r RecordContainer) String() string   { return fmt.Sprintf("record(%v, %v)", r.Keys, r.Vals) }

// Format builds a string from a flat list of parts (string chunks and
// interpolated expressions, passed unconverted by irgen; BytecodeGen
// calls the format builtin, which converts each part to text), and is
// also used for adjacent string-literal groups.
type Format struct{ Parts []InstId }

func (Format) isRValue()          {}
func (f Format) operands() []InstId { return f.Parts }
func (f Format) String() string   { return fmt.Sprintf("format%v", f.Parts) }

// ErrorValue is the sentinel rvalue substituted for an expression whose
// construction failed (e.g. referencing an error-flagged AST subtree);
// it lets IR construction continue for the rest of the function instead
// of aborting.
type ErrorValue struct{}

func (ErrorValue) isRValue()          {}
func (ErrorValue) operands() []InstId { return nil }
func (ErrorValue) String() string   { return "error" }

// LoadValue requests the named module, resolved and initialized by the
// host's loader, as this program's LOAD opcode does at the bytecode
// level; it is the IR form of an import statement.
type LoadValue struct{ Name string }

func (LoadValue) isRValue()          {}
func (LoadValue) operands() []InstId { return nil }
func (l LoadValue) String() string { return "load[" + l.Name + "]" }

// lvalueOperands returns the InstId operands embedded in an LValue
// (e.g. the object of a field/index access); ReadLValue/WriteLValue use
// this to report their true operand list.
func lvalueOperands(l LValue) []InstId {
	switch l := l.(type) {
	case FieldLValue:
		return []InstId{l.Obj}
	case TupleFieldLValue:
		return []InstId{l.Obj}
	case IndexLValue:
		return []InstId{l.Obj, l.Index}
	default:
		return nil
	}
}

// Inst is a single SSA instruction: an id, an optional debug name, and
// its value. Phi/Phi0 values are instructions like any other; a block's
// "phi count" is the number of leading instructions whose Value is a
// Phi or Phi0 (see Block.PhiCount).
type Inst struct {
	ID    InstId
	Name  string
	Value RValue
}

// Terminator is the closed set of ways a block may end.
type Terminator interface {
	isTerminator()
	Successors() []BlockId
	String() string
}

type NoneTerm struct{}

func (NoneTerm) isTerminator()        {}
func (NoneTerm) Successors() []BlockId { return nil }
func (NoneTerm) String() string       { return "<none>" }

type JumpTerm struct{ Target BlockId }

func (JumpTerm) isTerminator()          {}
func (j JumpTerm) Successors() []BlockId { return []BlockId{j.Target} }
func (j JumpTerm) String() string       { return fmt.Sprintf("jump %%b%d", j.Target) }

type BranchTerm struct {
	Cond       InstId
	Then, Else BlockId
}

func (BranchTerm) isTerminator() {}
func (b BranchTerm) Successors() []BlockId {
	return []BlockId{b.Then, b.Else}
}
func (b BranchTerm) String() string {
	return fmt.Sprintf("branch %%%d ? %%b%d : %%b%d", b.Cond, b.Then, b.Else)
}

type ReturnTerm struct{ Value InstId }

func (ReturnTerm) isTerminator()        {}
func (ReturnTerm) Successors() []BlockId { return nil }
func (r ReturnTerm) String() string     { return fmt.Sprintf("return %%%d", r.Value) }

type ExitTerm struct{}

func (ExitTerm) isTerminator()        {}
func (ExitTerm) Successors() []BlockId { return nil }
func (ExitTerm) String() string       { return "exit" }

// AssertFailTerm unconditionally raises a runtime assertion failure
// carrying the rendered expression and message operands.
type AssertFailTerm struct{ Expr, Message InstId }

func (AssertFailTerm) isTerminator()        {}
func (AssertFailTerm) Successors() []BlockId { return nil }
func (a AssertFailTerm) String() string {
	return fmt.Sprintf("assert_fail %%%d, %%%d", a.Expr, a.Message)
}

// NeverTerm marks a block statically known to be unreachable (e.g. the
// fallthrough of a block ending in an unconditional return within every
// arm).
type NeverTerm struct{}

func (NeverTerm) isTerminator()        {}
func (NeverTerm) Successors() []BlockId { return nil }
func (NeverTerm) String() string       { return "never" }

// blockState tracks the lifecycle of a block during construction. Sealed
// and filled are independent flags: a loop header is filled before its
// back edge is added, and sealed only after that.
type blockState uint8

const (
	stateOpen   blockState = 0
	stateSealed blockState = 1 << 0
	stateFilled blockState = 1 << 1
)

// Block is a maximal straight-line sequence of instructions with one
// terminator and a final predecessor set (once sealed).
type Block struct {
	ID    BlockId
	Label string
	Insts []InstId
	Term  Terminator
	Preds []BlockId

	state blockState
}

// Sealed reports whether the block's predecessor set is final.
func (b *Block) Sealed() bool { return b.state&stateSealed != 0 }

// Filled reports whether the block's terminator has been set.
func (b *Block) Filled() bool { return b.state&stateFilled != 0 }

// PhiCount returns the number of leading instructions in the block that
// are phi (or phi0) values; these are always emitted
// first in a block.
func (b *Block) PhiCount(fn *Function) int {
	n := 0
	for _, id := range b.Insts {
		switch fn.Inst(id).Value.(type) {
		case Phi, Phi0:
			n++
		default:
			return n
		}
	}
	return n
}

// Function is an arena of blocks and instructions plus the entry point
// and parameter count; it is the unit IR construction, liveness and DCE
// all operate on.
type Function struct {
	Name   string
	Params int
	Entry  BlockId
	Exit   BlockId

	blocks []*Block // index 0 unused (NoBlock)
	insts  []*Inst  // index 0 unused (NoInst)
}

// NewFunction creates an empty function arena. The caller must still
// create and seal an entry block via a Builder.
func NewFunction(name string, params int) *Function {
	return &Function{
		Name:   name,
		Params: params,
		blocks: make([]*Block, 1),
		insts:  make([]*Inst, 1),
	}
}

// Block returns the block identified by id.
func (f *Function) Block(id BlockId) *Block { return f.blocks[id] }

// Inst returns the instruction identified by id.
func (f *Function) Inst(id InstId) *Inst { return f.insts[id] }

// NumBlocks returns how many blocks have been allocated (including
// unreachable ones: construction never removes a block from the
// arena).
func (f *Function) NumBlocks() int { return len(f.blocks) - 1 }

// BlockIds returns every allocated block id in creation order.
func (f *Function) BlockIds() []BlockId {
	ids := make([]BlockId, 0, len(f.blocks)-1)
	for i := 1; i < len(f.blocks); i++ {
		ids = append(ids, BlockId(i))
	}
	return ids
}

// Operands returns the InstIds read by inst, excluding phi operands
// (which liveness and DCE traverse specially, see Phi.Args) and
// including any embedded in an lvalue target (e.g. the object of a
// field/index access).
func Operands(v RValue) []InstId { return v.operands() }
