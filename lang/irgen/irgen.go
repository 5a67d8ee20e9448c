// Package irgen lowers a resolved AST (lang/ast plus a lang/resolver.Table)
// into lang/ir form: one ir.Function per chunk (its implicit top-level
// function) plus one per nested function literal, with closures resolved
// to an explicit freevar-forwarding chain instead of a runtime
// environment-parent walk.
//
// Grounded on the two-pass shape of lang/resolver itself (declare, then
// use) and on original_source/src/tiro/ir_gen/gen_func.hpp for the
// control-flow lowering of if/while/for and short-circuit operators,
// adapted to emit lang/ir.Builder calls instead of the original's own
// IR types.
package irgen

import (
	"fmt"

	"github.com/mbeckem/tiro-sub007/lang/ast"
	"github.com/mbeckem/tiro-sub007/lang/ir"
	"github.com/mbeckem/tiro-sub007/lang/resolver"
	"github.com/mbeckem/tiro-sub007/lang/token"
)

// Program is the output of lowering a set of resolved chunks: every
// function that appears anywhere in the program, flattened into one
// slice. MakeClosure.Template names index into this slice by Name.
type Program struct {
	Functions []*ir.Function
}

// ByName returns the function with the given name, or nil.
func (p *Program) ByName(name string) *ir.Function {
	for _, fn := range p.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// GenerateFiles lowers every chunk in a resolved Table to IR. isPredeclared
// and isUniversal must be the same predicates passed to
// resolver.ResolveFiles, since SymGlobal symbols do not themselves record
// which predicate accepted them.
func GenerateFiles(chunks []*ast.Chunk, table *resolver.Table, isPredeclared, isUniversal resolver.IsPredeclaredFunc) *Program {
	g := &generator{table: table, isPredeclared: isPredeclared, isUniversal: isUniversal}
	for i, ch := range chunks {
		name := ch.Name
		if name == "" {
			name = fmt.Sprintf("chunk%d", i)
		}
		g.lowerToplevel(name, ch)
	}
	return &g.prog
}

type generator struct {
	prog          Program
	table         *resolver.Table
	isPredeclared resolver.IsPredeclaredFunc
	isUniversal   resolver.IsPredeclaredFunc
	anon          int
}

// funcCtx holds the lowering state for a single ir.Function: its builder,
// the owning Scope (used to decide whether a Symbol is local to this
// function or must be forwarded from an ancestor), and the bookkeeping
// for cell slots (captured symbols this function itself declares) and
// freevar slots (captured symbols forwarded from an ancestor).
type funcCtx struct {
	g         *generator
	parent    *funcCtx
	b         *ir.Builder
	fn        *ir.Function
	funcScope resolver.ScopeId

	cells     map[resolver.SymbolId]int // owned-and-captured symbol -> Locals cell index
	cellOrder []resolver.SymbolId

	freevars    map[resolver.SymbolId]int // forwarded symbol -> freevar index
	freevarSyms []resolver.SymbolId       // parallel to indices, in forwarding order

	loops []loopCtx

	// deferred holds, in source order, the expressions registered by a
	// defer statement seen so far in this function. irgen desugars defer
	// statically: every return (explicit or the implicit fallthrough at
	// the end of the function) replays this list in reverse immediately
	// before the function actually exits. This sidesteps the VM's
	// dynamic RUNDEFER/DEFEREXIT machinery entirely, since the deferred
	// calls end up emitted as ordinary straight-line code at each exit
	// point - adequate for defer without panics/non-local exits, which
	// this language does not model at the IR level (see DESIGN.md).
	deferred []ast.Expr

	synthNext int32
}

type loopCtx struct {
	continueTo ir.BlockId
	breakTo    ir.BlockId
}

func (fc *funcCtx) synthVar() ir.Variable {
	fc.synthNext--
	return fc.synthNext
}

// ownerFuncScope returns the ScopeFunction (or ScopeFile) that owns sym.
func (fc *funcCtx) ownerFuncScope(sym resolver.SymbolId) resolver.ScopeId {
	return fc.g.table.Scopes[fc.g.table.Symbols[sym].Scope].Func
}

func (fc *funcCtx) symbol(sym resolver.SymbolId) *resolver.Symbol {
	return &fc.g.table.Symbols[sym]
}

// newCell allocates a cell slot for a symbol this function owns and has
// determined needs boxing (Captured). Must be called once, at the
// symbol's declaration site, before any use.
func (fc *funcCtx) newCell(sym resolver.SymbolId) int {
	idx := len(fc.cellOrder)
	fc.cells[sym] = idx
	fc.cellOrder = append(fc.cellOrder, sym)
	return idx
}

// ensureAccess returns the ClosureLValue that reaches a symbol owned by
// some ancestor function, recursively forwarding it through every
// intermediate function (the Starlark-resolver capture-forwarding
// algorithm). Must only be called for symbols not owned by fc itself.
func (fc *funcCtx) ensureAccess(sym resolver.SymbolId) ir.ClosureLValue {
	if idx, ok := fc.freevars[sym]; ok {
		return ir.ClosureLValue{Levels: 1, Index: idx}
	}
	if fc.parent == nil {
		panic(fmt.Sprintf("irgen: symbol %d unreachable from any enclosing function", sym))
	}
	if fc.parent.ownerFuncScope(sym) == fc.parent.funcScope {
		// Parent owns it directly: make sure it has a cell (it must,
		// since Captured was set the moment a nested function used it).
		if _, ok := fc.parent.cells[sym]; !ok {
			panic(fmt.Sprintf("irgen: symbol %d captured but never given a cell by its owner", sym))
		}
	} else {
		fc.parent.ensureAccess(sym)
	}
	idx := len(fc.freevarSyms)
	fc.freevars[sym] = idx
	fc.freevarSyms = append(fc.freevarSyms, sym)
	return ir.ClosureLValue{Levels: 1, Index: idx}
}

// access returns the LValue used to read or write sym from inside fc.
func (fc *funcCtx) access(sym resolver.SymbolId) ir.LValue {
	sy := fc.symbol(sym)
	if sy.Kind == resolver.SymGlobal {
		return ir.ModuleLValue{Name: sy.Name, Universal: fc.g.isGlobalUniversal(sy.Name)}
	}
	if fc.ownerFuncScope(sym) == fc.funcScope {
		if sy.Captured {
			idx, ok := fc.cells[sym]
			if !ok {
				idx = fc.newCell(sym)
			}
			return ir.ClosureLValue{Levels: 0, Index: idx}
		}
		return nil // plain SSA variable; caller uses read/writeVar instead
	}
	return fc.ensureAccess(sym)
}

// isGlobalUniversal re-derives which predicate accepted a SymGlobal name,
// preferring isPredeclared as resolver.useName itself does.
func (g *generator) isGlobalUniversal(name string) bool {
	if g.isPredeclared != nil && g.isPredeclared(name) {
		return false
	}
	return g.isUniversal != nil && g.isUniversal(name)
}

func (fc *funcCtx) readVar(sym resolver.SymbolId) ir.InstId {
	if lv := fc.access(sym); lv != nil {
		return fc.b.Emit("", ir.ReadLValue{Target: lv})
	}
	return fc.b.ReadVariable(ir.Variable(sym), fc.b.CurrentBlock())
}

func (fc *funcCtx) writeVar(sym resolver.SymbolId, val ir.InstId) {
	if lv := fc.access(sym); lv != nil {
		fc.b.Emit("", ir.WriteLValue{Target: lv, Value: val})
		return
	}
	fc.b.WriteVariable(ir.Variable(sym), fc.b.CurrentBlock(), val)
}

// declareVar establishes storage for sym the moment its declaration is
// lowered (var/const names, parameters, nested func-decl names), and
// stores its initial value.
func (fc *funcCtx) declareVar(sym resolver.SymbolId, val ir.InstId) {
	sy := fc.symbol(sym)
	if sy.Captured {
		idx := fc.newCell(sym)
		fc.b.Emit("", ir.WriteLValue{Target: ir.ClosureLValue{Levels: 0, Index: idx}, Value: val})
		return
	}
	fc.b.WriteVariable(ir.Variable(sym), fc.b.CurrentBlock(), val)
}

func (g *generator) newFunction(name string, params int, parent *funcCtx, funcScope resolver.ScopeId) *funcCtx {
	b, fn := ir.NewBuilder(name, params)
	fc := &funcCtx{
		g:         g,
		parent:    parent,
		b:         b,
		fn:        fn,
		funcScope: funcScope,
		cells:     make(map[resolver.SymbolId]int),
		freevars:  make(map[resolver.SymbolId]int),
	}
	b.SealBlock(fn.Entry)
	g.prog.Functions = append(g.prog.Functions, fn)
	return fc
}

func (g *generator) lowerToplevel(name string, ch *ast.Chunk) {
	scope := g.table.ScopeOf[ch.AstId()]
	fc := g.newFunction(name, 0, nil, scope)
	fc.lowerBlock(ch.Block)
	fc.finish()
}

// finish emits the implicit fallthrough return (running any outstanding
// defers) if the current block has not already been terminated by an
// explicit return/break/continue.
func (fc *funcCtx) finish() {
	if fc.b.CurrentBlock() != ir.NoBlock && !fc.currentFilled() {
		fc.runDefers()
		nilv := fc.b.Emit("", ir.ConstValue{Val: ir.Const{Kind: ir.ConstNull}})
		fc.b.SetTerminator(ir.ReturnTerm{Value: nilv})
	}
}

func (fc *funcCtx) currentFilled() bool {
	return fc.b.Function().Block(fc.b.CurrentBlock()).Filled()
}

func (fc *funcCtx) runDefers() {
	for i := len(fc.deferred) - 1; i >= 0; i-- {
		fc.lowerCallLikeExpr(fc.deferred[i])
	}
}

// lowerCallLikeExpr lowers an expression purely for its side effect
// (used for deferred calls and expression statements).
func (fc *funcCtx) lowerCallLikeExpr(e ast.Expr) ir.InstId {
	return fc.lowerExpr(e)
}

// lowerFuncExpr builds a fresh function for a func literal and returns
// the MakeClosure instruction that instantiates it in the current
// (parent) function.
func (fc *funcCtx) lowerFuncExpr(fe *ast.FuncExpr) ir.InstId {
	scope := fc.g.table.ScopeOf[fe.AstId()]
	fc.g.anon++
	name := fmt.Sprintf("%s$f%d", fc.fn.Name, fc.g.anon)
	child := fc.g.newFunction(name, len(fe.Params), fc, scope)

	paramSyms := fc.g.table.DeclSymbols[fe.AstId()]
	for i, sym := range paramSyms {
		v := child.b.Emit("", ir.ReadLValue{Target: ir.ParamLValue{Index: i}})
		child.declareVar(sym, v)
	}

	child.lowerBlock(fe.Body)
	child.finish()

	// Build the captured-values container now that the child's freevar
	// list (and everything it forwards from fc) is final: child.freevarSyms[i]
	// names the symbol fc must supply as captured slot i.
	elems := make([]ir.InstId, len(child.freevarSyms))
	for i, sym := range child.freevarSyms {
		elems[i] = fc.readVar(sym)
	}
	env := fc.b.Emit("", ir.Container{Kind: ir.ContainerArray, Elems: elems})
	return fc.b.Emit("", ir.MakeClosure{Template: name, Env: env})
}

// lowerBlock lowers the statements of b in order, stopping early if a
// statement fills the current block (return/break/continue).
func (fc *funcCtx) lowerBlock(b *ast.Block) {
	for _, s := range b.Stmts {
		if fc.currentFilled() {
			return
		}
		fc.lowerStmt(s)
	}
}

func (fc *funcCtx) lowerStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.VarDecl:
		fc.lowerDecl(s.AstId(), s.Names, s.Init)
	case *ast.ConstDecl:
		fc.lowerDecl(s.AstId(), s.Names, s.Init)
	case *ast.AssignStmt:
		fc.lowerAssign(s)
	case *ast.ExprStmt:
		fc.lowerExpr(s.X)
	case *ast.IfStmt:
		fc.lowerIf(s)
	case *ast.WhileStmt:
		fc.lowerWhile(s)
	case *ast.ForStmt:
		fc.lowerFor(s)
	case *ast.BreakStmt:
		l := fc.loops[len(fc.loops)-1]
		fc.b.AddPred(l.breakTo, fc.b.CurrentBlock())
		fc.b.SetTerminator(ir.JumpTerm{Target: l.breakTo})
	case *ast.ContinueStmt:
		l := fc.loops[len(fc.loops)-1]
		fc.b.AddPred(l.continueTo, fc.b.CurrentBlock())
		fc.b.SetTerminator(ir.JumpTerm{Target: l.continueTo})
	case *ast.ReturnStmt:
		var v ir.InstId
		if s.X != nil {
			v = fc.lowerExpr(s.X)
		} else {
			v = fc.b.Emit("", ir.ConstValue{Val: ir.Const{Kind: ir.ConstNull}})
		}
		fc.runDefers()
		fc.b.SetTerminator(ir.ReturnTerm{Value: v})
	case *ast.DeferStmt:
		fc.deferred = append(fc.deferred, s.X)
	case *ast.FuncDecl:
		v := fc.lowerFuncExpr(s.Fn)
		sym := fc.g.table.DeclSymbols[s.AstId()][0]
		fc.declareVar(sym, v)
	case *ast.ImportStmt:
		v := fc.b.Emit("", ir.LoadValue{Name: s.Name})
		sym := fc.g.table.DeclSymbols[s.AstId()][0]
		fc.declareVar(sym, v)
	case *ast.ExportStmt:
		// Exporting a top-level name has no separate IR effect here:
		// this language has no module-member opcode distinct from the
		// toplevel function's own locals (see ModuleLValue's doc
		// comment), so every top-level binding is already visible to
		// whatever loads this chunk as a module.
	case *ast.BadStmt:
		// parser already reported an error for this subtree.
	default:
		panic(fmt.Sprintf("irgen: unexpected statement %T", s))
	}
}

func (fc *funcCtx) lowerDecl(declId ast.AstId, names []ast.Binding, init ast.Expr) {
	syms := fc.g.table.DeclSymbols[declId]
	if init == nil {
		nilv := fc.b.Emit("", ir.ConstValue{Val: ir.Const{Kind: ir.ConstNull}})
		for _, sym := range syms {
			fc.declareVar(sym, nilv)
		}
		return
	}
	v := fc.lowerExpr(init)
	if len(syms) == 1 {
		fc.declareVar(syms[0], v)
		return
	}
	// Tuple binding: `var (a, b) = expr`. There is no dedicated unpack
	// rvalue in the IR; reading successive tuple fields off the
	// initializer is sufficient since the only producers of a
	// multi-name binding are tuple-shaped (tuple literal, multi-value
	// call result) and TupleFieldLValue already models "index i of a
	// tuple-like value" for the `.0`/`.1` syntax.
	for i, sym := range syms {
		elem := fc.b.Emit("", ir.ReadLValue{Target: ir.TupleFieldLValue{Obj: v, Index: uint32(i)}})
		fc.declareVar(sym, elem)
	}
}

func (fc *funcCtx) lowerAssign(s *ast.AssignStmt) {
	if s.Op == ast.AssignPlain {
		v := fc.lowerExpr(s.Right)
		fc.store(s.Left, v)
		return
	}
	op := compoundOp(s.Op)
	old, store := fc.loadForUpdate(s.Left)
	rhs := fc.lowerExpr(s.Right)
	v := fc.b.Emit("", ir.BinaryOp{Op: int(op), X: old, Y: rhs})
	store(v)
}

func compoundOp(op ast.AssignOp) token.Token {
	switch op {
	case ast.AssignAdd:
		return token.PLUS
	case ast.AssignSub:
		return token.MINUS
	case ast.AssignMul:
		return token.STAR
	case ast.AssignDiv:
		return token.SLASH
	case ast.AssignMod:
		return token.PERCENT
	case ast.AssignAnd:
		return token.AMP
	case ast.AssignOr:
		return token.PIPE
	case ast.AssignXor:
		return token.CIRCUMFLEX
	case ast.AssignShl:
		return token.LTLT
	case ast.AssignShr:
		return token.GTGT
	default:
		panic(fmt.Sprintf("irgen: unexpected compound assign op %v", op))
	}
}

// store writes v to the lvalue expression lhs (an IdentExpr, IndexExpr
// or SelectorExpr, per AssignStmt.Left's contract).
func (fc *funcCtx) store(lhs ast.Expr, v ir.InstId) {
	switch lhs := lhs.(type) {
	case *ast.IdentExpr:
		sym := fc.g.table.SymbolOf[lhs.AstId()]
		fc.writeVar(sym, v)
	case *ast.IndexExpr:
		obj := fc.lowerExpr(lhs.X)
		idx := fc.lowerExpr(lhs.Index)
		fc.b.Emit("", ir.WriteLValue{Target: ir.IndexLValue{Obj: obj, Index: idx}, Value: v})
	case *ast.SelectorExpr:
		obj := fc.lowerExpr(lhs.X)
		fc.b.Emit("", ir.WriteLValue{Target: ir.FieldLValue{Obj: obj, Name: lhs.Name}, Value: v})
	default:
		panic(fmt.Sprintf("irgen: unsupported assignment target %T", lhs))
	}
}

// loadForUpdate evaluates lhs's base/index/field operands exactly once
// and returns its current value plus a closure that stores a new value
// back to the same location, for compound assignment (`x[i] += y`).
func (fc *funcCtx) loadForUpdate(lhs ast.Expr) (ir.InstId, func(ir.InstId)) {
	switch lhs := lhs.(type) {
	case *ast.IdentExpr:
		sym := fc.g.table.SymbolOf[lhs.AstId()]
		return fc.readVar(sym), func(v ir.InstId) { fc.writeVar(sym, v) }
	case *ast.IndexExpr:
		obj := fc.lowerExpr(lhs.X)
		idx := fc.lowerExpr(lhs.Index)
		old := fc.b.Emit("", ir.ReadLValue{Target: ir.IndexLValue{Obj: obj, Index: idx}})
		return old, func(v ir.InstId) {
			fc.b.Emit("", ir.WriteLValue{Target: ir.IndexLValue{Obj: obj, Index: idx}, Value: v})
		}
	case *ast.SelectorExpr:
		obj := fc.lowerExpr(lhs.X)
		old := fc.b.Emit("", ir.ReadLValue{Target: ir.FieldLValue{Obj: obj, Name: lhs.Name}})
		return old, func(v ir.InstId) {
			fc.b.Emit("", ir.WriteLValue{Target: ir.FieldLValue{Obj: obj, Name: lhs.Name}, Value: v})
		}
	default:
		panic(fmt.Sprintf("irgen: unsupported assignment target %T", lhs))
	}
}

func (fc *funcCtx) lowerIf(s *ast.IfStmt) {
	cond := fc.lowerExpr(s.Cond)
	cur := fc.b.CurrentBlock()
	thenBlk := fc.b.CreateBlock("if.then")
	var elseBlk, mergeBlk ir.BlockId
	hasElse := s.Else != nil
	if hasElse {
		elseBlk = fc.b.CreateBlock("if.else")
	}
	mergeBlk = fc.b.CreateBlock("if.merge")

	fc.b.AddPred(thenBlk, cur)
	fc.b.SealBlock(thenBlk)
	if hasElse {
		fc.b.AddPred(elseBlk, cur)
		fc.b.SealBlock(elseBlk)
		fc.b.SetTerminator(ir.BranchTerm{Cond: cond, Then: thenBlk, Else: elseBlk})
	} else {
		fc.b.SetTerminator(ir.BranchTerm{Cond: cond, Then: thenBlk, Else: mergeBlk})
	}

	fc.b.SetCurrentBlock(thenBlk)
	fc.lowerBlock(s.Then)
	if !fc.currentFilled() {
		fc.b.AddPred(mergeBlk, fc.b.CurrentBlock())
		fc.b.SetTerminator(ir.JumpTerm{Target: mergeBlk})
	}

	if hasElse {
		fc.b.SetCurrentBlock(elseBlk)
		fc.lowerBlock(s.Else)
		if !fc.currentFilled() {
			fc.b.AddPred(mergeBlk, fc.b.CurrentBlock())
			fc.b.SetTerminator(ir.JumpTerm{Target: mergeBlk})
		}
	} else {
		fc.b.AddPred(mergeBlk, cur)
	}

	fc.b.SealBlock(mergeBlk)
	fc.b.SetCurrentBlock(mergeBlk)
}

func (fc *funcCtx) lowerWhile(s *ast.WhileStmt) {
	cur := fc.b.CurrentBlock()
	headerBlk := fc.b.CreateBlock("while.cond")
	bodyBlk := fc.b.CreateBlock("while.body")
	exitBlk := fc.b.CreateBlock("while.exit")

	fc.b.AddPred(headerBlk, cur)
	fc.b.SetTerminator(ir.JumpTerm{Target: headerBlk})

	fc.b.SetCurrentBlock(headerBlk)
	cond := fc.lowerExpr(s.Cond)
	fc.b.AddPred(bodyBlk, headerBlk)
	fc.b.AddPred(exitBlk, headerBlk)
	fc.b.SealBlock(bodyBlk)
	fc.b.SetTerminator(ir.BranchTerm{Cond: cond, Then: bodyBlk, Else: exitBlk})

	fc.loops = append(fc.loops, loopCtx{continueTo: headerBlk, breakTo: exitBlk})
	fc.b.SetCurrentBlock(bodyBlk)
	fc.lowerBlock(s.Body)
	if !fc.currentFilled() {
		fc.b.AddPred(headerBlk, fc.b.CurrentBlock())
		fc.b.SetTerminator(ir.JumpTerm{Target: headerBlk})
	}
	fc.loops = fc.loops[:len(fc.loops)-1]

	fc.b.SealBlock(headerBlk)
	fc.b.SealBlock(exitBlk)
	fc.b.SetCurrentBlock(exitBlk)
}

func (fc *funcCtx) lowerFor(s *ast.ForStmt) {
	if s.Init != nil {
		fc.lowerStmt(s.Init)
	}
	cur := fc.b.CurrentBlock()
	headerBlk := fc.b.CreateBlock("for.cond")
	bodyBlk := fc.b.CreateBlock("for.body")
	stepBlk := fc.b.CreateBlock("for.step")
	exitBlk := fc.b.CreateBlock("for.exit")

	fc.b.AddPred(headerBlk, cur)
	fc.b.SetTerminator(ir.JumpTerm{Target: headerBlk})

	fc.b.SetCurrentBlock(headerBlk)
	if s.Cond != nil {
		cond := fc.lowerExpr(s.Cond)
		fc.b.AddPred(bodyBlk, headerBlk)
		fc.b.AddPred(exitBlk, headerBlk)
		fc.b.SealBlock(bodyBlk)
		fc.b.SetTerminator(ir.BranchTerm{Cond: cond, Then: bodyBlk, Else: exitBlk})
	} else {
		fc.b.AddPred(bodyBlk, headerBlk)
		fc.b.SealBlock(bodyBlk)
		fc.b.SetTerminator(ir.JumpTerm{Target: bodyBlk})
	}

	fc.loops = append(fc.loops, loopCtx{continueTo: stepBlk, breakTo: exitBlk})
	fc.b.SetCurrentBlock(bodyBlk)
	fc.lowerBlock(s.Body)
	if !fc.currentFilled() {
		fc.b.AddPred(stepBlk, fc.b.CurrentBlock())
		fc.b.SetTerminator(ir.JumpTerm{Target: stepBlk})
	}
	fc.loops = fc.loops[:len(fc.loops)-1]

	fc.b.SealBlock(stepBlk)
	fc.b.SetCurrentBlock(stepBlk)
	if s.Step != nil {
		fc.lowerStmt(s.Step)
	}
	if !fc.currentFilled() {
		fc.b.AddPred(headerBlk, fc.b.CurrentBlock())
		fc.b.SetTerminator(ir.JumpTerm{Target: headerBlk})
	}

	fc.b.SealBlock(headerBlk)
	fc.b.SealBlock(exitBlk)
	fc.b.SetCurrentBlock(exitBlk)
}

func (fc *funcCtx) lowerExpr(e ast.Expr) ir.InstId {
	switch e := e.(type) {
	case *ast.IdentExpr:
		sym := fc.g.table.SymbolOf[e.AstId()]
		if sym == resolver.NoSymbol {
			return fc.b.Emit("", ir.ErrorValue{})
		}
		return fc.readVar(sym)
	case *ast.IntLit:
		return fc.b.Emit("", ir.ConstValue{Val: ir.Const{Kind: ir.ConstInt, Int: e.Value}})
	case *ast.FloatLit:
		return fc.b.Emit("", ir.ConstValue{Val: ir.Const{Kind: ir.ConstFloat, Flt: e.Value}})
	case *ast.StringLit:
		return fc.b.Emit("", ir.ConstValue{Val: ir.Const{Kind: ir.ConstString, Str: e.Value}})
	case *ast.BoolLit:
		return fc.b.Emit("", ir.ConstValue{Val: ir.Const{Kind: ir.ConstBool, Bool: e.Value}})
	case *ast.NullLit:
		return fc.b.Emit("", ir.ConstValue{Val: ir.Const{Kind: ir.ConstNull}})
	case *ast.SymbolLit:
		return fc.b.Emit("", ir.ConstValue{Val: ir.Const{Kind: ir.ConstSymbol, Str: e.Name}})
	case *ast.StringGroupExpr:
		return fc.lowerFormat(e.Parts)
	case *ast.StringInterpExpr:
		return fc.lowerFormat(e.Parts)
	case *ast.TupleExpr:
		return fc.b.Emit("", ir.Container{Kind: ir.ContainerTuple, Elems: fc.lowerExprList(e.Elems)})
	case *ast.ArrayExpr:
		return fc.b.Emit("", ir.Container{Kind: ir.ContainerArray, Elems: fc.lowerExprList(e.Elems)})
	case *ast.SetExpr:
		return fc.b.Emit("", ir.Container{Kind: ir.ContainerSet, Elems: fc.lowerExprList(e.Elems)})
	case *ast.MapExpr:
		keys := make([]ir.InstId, len(e.Entries))
		vals := make([]ir.InstId, len(e.Entries))
		for i, ent := range e.Entries {
			keys[i] = fc.lowerExpr(ent.Key)
			vals[i] = fc.lowerExpr(ent.Value)
		}
		return fc.b.Emit("", ir.MapContainer{Keys: keys, Vals: vals})
	case *ast.RecordExpr:
		return fc.b.Emit("", ir.RecordContainer{Keys: e.Names, Vals: fc.lowerExprList(e.Values)})
	case *ast.FuncExpr:
		return fc.lowerFuncExpr(e)
	case *ast.UnaryExpr:
		return fc.lowerUnary(e)
	case *ast.BinaryExpr:
		return fc.lowerBinary(e)
	case *ast.CallExpr:
		fn := fc.lowerExpr(e.Callee)
		return fc.b.Emit("", ir.Call{Fn: fn, Args: fc.lowerExprList(e.Args)})
	case *ast.IndexExpr:
		obj := fc.lowerExpr(e.X)
		idx := fc.lowerExpr(e.Index)
		return fc.b.Emit("", ir.ReadLValue{Target: ir.IndexLValue{Obj: obj, Index: idx}})
	case *ast.SelectorExpr:
		obj := fc.lowerExpr(e.X)
		return fc.b.Emit("", ir.ReadLValue{Target: ir.FieldLValue{Obj: obj, Name: e.Name}})
	case *ast.TupleFieldExpr:
		obj := fc.lowerExpr(e.X)
		return fc.b.Emit("", ir.ReadLValue{Target: ir.TupleFieldLValue{Obj: obj, Index: e.Index}})
	case *ast.ParenExpr:
		return fc.lowerExpr(e.X)
	case *ast.BadExpr:
		return fc.b.Emit("", ir.ErrorValue{})
	default:
		panic(fmt.Sprintf("irgen: unexpected expression %T", e))
	}
}

func (fc *funcCtx) lowerExprList(es []ast.Expr) []ir.InstId {
	ids := make([]ir.InstId, len(es))
	for i, e := range es {
		ids[i] = fc.lowerExpr(e)
	}
	return ids
}

// lowerFormat reduces a StringGroupExpr/StringInterpExpr's Parts to a
// flat list of InstIds: literal chunks become ConstValue strings
// directly, other expressions are lowered as-is (ToString conversion of
// non-string parts is the VM's job at FORMAT execution time, matching
// how the bytecode opcode table has no separate to-string opcode).
func (fc *funcCtx) lowerFormat(parts []ast.Expr) ir.InstId {
	ids := make([]ir.InstId, len(parts))
	for i, p := range parts {
		ids[i] = fc.lowerExpr(p)
	}
	return fc.b.Emit("", ir.Format{Parts: ids})
}

func (fc *funcCtx) lowerUnary(e *ast.UnaryExpr) ir.InstId {
	x := fc.lowerExpr(e.X)
	return fc.b.Emit("", ir.UnaryOp{Op: int(e.Op), X: x})
}

func (fc *funcCtx) lowerBinary(e *ast.BinaryExpr) ir.InstId {
	switch e.Op {
	case token.ANDAND, token.AND:
		return fc.shortCircuit(e.X, e.Y, false)
	case token.OROR, token.OR:
		return fc.shortCircuit(e.X, e.Y, true)
	case token.QUESTQUEST:
		return fc.nullCoalesce(e.X, e.Y)
	default:
		x := fc.lowerExpr(e.X)
		y := fc.lowerExpr(e.Y)
		return fc.b.Emit("", ir.BinaryOp{Op: int(e.Op), X: x, Y: y})
	}
}

// shortCircuit lowers `x && y` (orElse=false) or `x || y` (orElse=true):
// y is only evaluated when x's truth value doesn't already decide the
// result.
func (fc *funcCtx) shortCircuit(xExpr, yExpr ast.Expr, orElse bool) ir.InstId {
	x := fc.lowerExpr(xExpr)
	cur := fc.b.CurrentBlock()
	evalY := fc.b.CreateBlock("sc.rhs")
	merge := fc.b.CreateBlock("sc.merge")

	fc.b.AddPred(evalY, cur)
	fc.b.SealBlock(evalY)
	if orElse {
		fc.b.AddPred(merge, cur) // x is truthy: short-circuit to x
		fc.b.SetTerminator(ir.BranchTerm{Cond: x, Then: merge, Else: evalY})
	} else {
		fc.b.AddPred(merge, cur) // x is falsy: short-circuit to x
		fc.b.SetTerminator(ir.BranchTerm{Cond: x, Then: evalY, Else: merge})
	}

	sv := fc.synthVar()
	fc.b.WriteVariable(sv, cur, x)

	fc.b.SetCurrentBlock(evalY)
	y := fc.lowerExpr(yExpr)
	fc.b.AddPred(merge, fc.b.CurrentBlock())
	fc.b.WriteVariable(sv, fc.b.CurrentBlock(), y)
	fc.b.SetTerminator(ir.JumpTerm{Target: merge})

	fc.b.SealBlock(merge)
	fc.b.SetCurrentBlock(merge)
	return fc.b.ReadVariable(sv, merge)
}

// nullCoalesce lowers `x ?? y`: y is only evaluated when x is null.
func (fc *funcCtx) nullCoalesce(xExpr, yExpr ast.Expr) ir.InstId {
	x := fc.lowerExpr(xExpr)
	nullv := fc.b.Emit("", ir.ConstValue{Val: ir.Const{Kind: ir.ConstNull}})
	isNull := fc.b.Emit("", ir.BinaryOp{Op: int(token.EQ), X: x, Y: nullv})

	cur := fc.b.CurrentBlock()
	evalY := fc.b.CreateBlock("qq.rhs")
	merge := fc.b.CreateBlock("qq.merge")

	fc.b.AddPred(evalY, cur)
	fc.b.AddPred(merge, cur)
	fc.b.SealBlock(evalY)
	fc.b.SetTerminator(ir.BranchTerm{Cond: isNull, Then: evalY, Else: merge})

	sv := fc.synthVar()
	fc.b.WriteVariable(sv, cur, x)

	fc.b.SetCurrentBlock(evalY)
	y := fc.lowerExpr(yExpr)
	fc.b.AddPred(merge, fc.b.CurrentBlock())
	fc.b.WriteVariable(sv, fc.b.CurrentBlock(), y)
	fc.b.SetTerminator(ir.JumpTerm{Target: merge})

	fc.b.SealBlock(merge)
	fc.b.SetCurrentBlock(merge)
	return fc.b.ReadVariable(sv, merge)
}
