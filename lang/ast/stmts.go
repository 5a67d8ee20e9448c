package ast

import "github.com/mbeckem/tiro-sub007/lang/source"

// Binding is a single name in a var/const declaration or a for-loop
// induction variable list. It is not a Node itself (it has no useful
// independent span/kind beyond its Name's identifier token) but is
// referenced by the resolver via its owning statement's AstId plus index.
type Binding struct {
	Name string
	Pos  source.Pos
}

// VarDecl represents `var x = expr` or `var (a, b) = expr` (tuple binding).
// Names has length 1 for a simple binding, >1 for a tuple binding. Init may
// be nil (var permits omitting the initializer; const never does).
type VarDecl struct {
	stmtBase
	Names []Binding
	Init  Expr
}

func NewVarDecl(a *Arena, span source.Range, names []Binding, init Expr) *VarDecl {
	return &VarDecl{stmtBase: stmtBase{newBase(a, KindVarDecl, span)}, Names: names, Init: init}
}

func (n *VarDecl) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	if n.Init != nil {
		n.Init.Walk(v)
	}
}

// ConstDecl is identical in shape to VarDecl except Init is mandatory
// (enforced by the parser, not the AST).
type ConstDecl struct {
	stmtBase
	Names []Binding
	Init  Expr
}

func NewConstDecl(a *Arena, span source.Range, names []Binding, init Expr) *ConstDecl {
	return &ConstDecl{stmtBase: stmtBase{newBase(a, KindConstDecl, span)}, Names: names, Init: init}
}

func (n *ConstDecl) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	if n.Init != nil {
		n.Init.Walk(v)
	}
}

// AssignStmt represents `lhs = rhs` (and compound forms `lhs += rhs`, etc,
// carried via Op). Left must be an IdentExpr, IndexExpr or SelectorExpr.
type AssignStmt struct {
	stmtBase
	Left  Expr
	Op    AssignOp
	Right Expr
}

type AssignOp uint8

const (
	AssignPlain AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
	AssignAnd
	AssignOr
	AssignXor
	AssignShl
	AssignShr
)

func NewAssignStmt(a *Arena, span source.Range, left Expr, op AssignOp, right Expr) *AssignStmt {
	return &AssignStmt{stmtBase: stmtBase{newBase(a, KindAssignStmt, span)}, Left: left, Op: op, Right: right}
}

func (n *AssignStmt) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.Left.Walk(v)
	n.Right.Walk(v)
}

// ExprStmt is an expression used as a statement (only meaningful for calls
// and assert-like side-effecting expressions).
type ExprStmt struct {
	stmtBase
	X Expr
}

func NewExprStmt(a *Arena, span source.Range, x Expr) *ExprStmt {
	return &ExprStmt{stmtBase: stmtBase{newBase(a, KindExprStmt, span)}, X: x}
}

func (n *ExprStmt) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.X.Walk(v)
}

// IfStmt represents `if cond { then } else { else }`; Else may be nil, or
// itself an *IfStmt wrapped in a single-statement Block for `elif`-style
// chains.
type IfStmt struct {
	stmtBase
	Cond Expr
	Then *Block
	Else *Block
}

func NewIfStmt(a *Arena, span source.Range, cond Expr, then, els *Block) *IfStmt {
	return &IfStmt{stmtBase: stmtBase{newBase(a, KindIfStmt, span)}, Cond: cond, Then: then, Else: els}
}

func (n *IfStmt) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.Cond.Walk(v)
	n.Then.Walk(v)
	if n.Else != nil {
		n.Else.Walk(v)
	}
}

// WhileStmt represents `while cond { body }`.
type WhileStmt struct {
	stmtBase
	Cond Expr
	Body *Block
}

func NewWhileStmt(a *Arena, span source.Range, cond Expr, body *Block) *WhileStmt {
	return &WhileStmt{stmtBase: stmtBase{newBase(a, KindWhileStmt, span)}, Cond: cond, Body: body}
}

func (n *WhileStmt) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.Cond.Walk(v)
	n.Body.Walk(v)
}

// ForStmt represents the three-part `for init; cond; step { body }` loop.
// Init, Cond and Step may each be nil.
type ForStmt struct {
	stmtBase
	Init Stmt
	Cond Expr
	Step Stmt
	Body *Block
}

func NewForStmt(a *Arena, span source.Range, init Stmt, cond Expr, step Stmt, body *Block) *ForStmt {
	return &ForStmt{stmtBase: stmtBase{newBase(a, KindForStmt, span)}, Init: init, Cond: cond, Step: step, Body: body}
}

func (n *ForStmt) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	if n.Init != nil {
		n.Init.Walk(v)
	}
	if n.Cond != nil {
		n.Cond.Walk(v)
	}
	if n.Step != nil {
		n.Step.Walk(v)
	}
	n.Body.Walk(v)
}

// BreakStmt represents `break`.
type BreakStmt struct{ stmtBase }

func NewBreakStmt(a *Arena, span source.Range) *BreakStmt {
	return &BreakStmt{stmtBase{newBase(a, KindBreakStmt, span)}}
}
func (n *BreakStmt) BlockEnding() bool { return true }
func (n *BreakStmt) Walk(v Visitor)    { v.Visit(n) }

// ContinueStmt represents `continue`.
type ContinueStmt struct{ stmtBase }

func NewContinueStmt(a *Arena, span source.Range) *ContinueStmt {
	return &ContinueStmt{stmtBase{newBase(a, KindContinueStmt, span)}}
}
func (n *ContinueStmt) BlockEnding() bool { return true }
func (n *ContinueStmt) Walk(v Visitor)    { v.Visit(n) }

// ReturnStmt represents `return expr` (X may be nil for a bare return).
type ReturnStmt struct {
	stmtBase
	X Expr
}

func NewReturnStmt(a *Arena, span source.Range, x Expr) *ReturnStmt {
	return &ReturnStmt{stmtBase: stmtBase{newBase(a, KindReturnStmt, span)}, X: x}
}
func (n *ReturnStmt) BlockEnding() bool { return true }
func (n *ReturnStmt) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	if n.X != nil {
		n.X.Walk(v)
	}
}

// DeferStmt represents `defer expr`, attaching expr to run on any exit
// from the enclosing block.
type DeferStmt struct {
	stmtBase
	X Expr
}

func NewDeferStmt(a *Arena, span source.Range, x Expr) *DeferStmt {
	return &DeferStmt{stmtBase: stmtBase{newBase(a, KindDeferStmt, span)}, X: x}
}

func (n *DeferStmt) BlockEnding() bool { return true }

func (n *DeferStmt) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.X.Walk(v)
}

// FuncDecl represents a named top-level or nested function declaration,
// `func name(params) { body }`. Anonymous function literals are FuncExpr.
type FuncDecl struct {
	stmtBase
	Name     string
	NamePos  source.Pos
	Exported bool
	Fn       *FuncExpr
}

func NewFuncDecl(a *Arena, span source.Range, name string, namePos source.Pos, exported bool, fn *FuncExpr) *FuncDecl {
	return &FuncDecl{stmtBase: stmtBase{newBase(a, KindFuncDecl, span)}, Name: name, NamePos: namePos, Exported: exported, Fn: fn}
}

func (n *FuncDecl) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.Fn.Walk(v)
}

// ImportStmt represents `import name`.
type ImportStmt struct {
	stmtBase
	Name string
}

func NewImportStmt(a *Arena, span source.Range, name string) *ImportStmt {
	return &ImportStmt{stmtBase: stmtBase{newBase(a, KindImportStmt, span)}, Name: name}
}
func (n *ImportStmt) Walk(v Visitor) { v.Visit(n) }

// ExportStmt re-exports an already-declared top-level binding, `export name`.
type ExportStmt struct {
	stmtBase
	Name string
}

func NewExportStmt(a *Arena, span source.Range, name string) *ExportStmt {
	return &ExportStmt{stmtBase: stmtBase{newBase(a, KindExportStmt, span)}, Name: name}
}
func (n *ExportStmt) Walk(v Visitor) { v.Visit(n) }
