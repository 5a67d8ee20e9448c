package ast

import (
	"github.com/mbeckem/tiro-sub007/lang/source"
	"github.com/mbeckem/tiro-sub007/lang/token"
)

// IdentExpr is a reference to a name, resolved later by the resolver.
type IdentExpr struct {
	exprBase
	Name string
}

func NewIdentExpr(a *Arena, span source.Range, name string) *IdentExpr {
	return &IdentExpr{exprBase: exprBase{newBase(a, KindIdentExpr, span)}, Name: name}
}
func (n *IdentExpr) Walk(v Visitor) { v.Visit(n) }

// IntLit is an integer literal.
type IntLit struct {
	exprBase
	Value int64
}

func NewIntLit(a *Arena, span source.Range, value int64) *IntLit {
	return &IntLit{exprBase: exprBase{newBase(a, KindIntLit, span)}, Value: value}
}
func (n *IntLit) Walk(v Visitor) { v.Visit(n) }

// FloatLit is a floating-point literal.
type FloatLit struct {
	exprBase
	Value float64
}

func NewFloatLit(a *Arena, span source.Range, value float64) *FloatLit {
	return &FloatLit{exprBase: exprBase{newBase(a, KindFloatLit, span)}, Value: value}
}
func (n *FloatLit) Walk(v Visitor) { v.Visit(n) }

// StringLit is a single, non-interpolated string literal chunk (also used
// as the literal-chunk children of StringInterpExpr).
type StringLit struct {
	exprBase
	Value string
}

func NewStringLit(a *Arena, span source.Range, value string) *StringLit {
	return &StringLit{exprBase: exprBase{newBase(a, KindStringLit, span)}, Value: value}
}
func (n *StringLit) Walk(v Visitor) { v.Visit(n) }

// BoolLit is `true` or `false`.
type BoolLit struct {
	exprBase
	Value bool
}

func NewBoolLit(a *Arena, span source.Range, value bool) *BoolLit {
	return &BoolLit{exprBase: exprBase{newBase(a, KindBoolLit, span)}, Value: value}
}
func (n *BoolLit) Walk(v Visitor) { v.Visit(n) }

// NullLit is the `null` literal.
type NullLit struct{ exprBase }

func NewNullLit(a *Arena, span source.Range) *NullLit {
	return &NullLit{exprBase{newBase(a, KindNullLit, span)}}
}
func (n *NullLit) Walk(v Visitor) { v.Visit(n) }

// SymbolLit is a `#ident` or `#123` symbol literal.
type SymbolLit struct {
	exprBase
	Name string
}

func NewSymbolLit(a *Arena, span source.Range, name string) *SymbolLit {
	return &SymbolLit{exprBase: exprBase{newBase(a, KindSymbolLit, span)}, Name: name}
}
func (n *SymbolLit) Walk(v Visitor) { v.Visit(n) }

// StringGroupExpr groups two or more adjacent string literals (with no
// intervening tokens) into a single expression.
type StringGroupExpr struct {
	exprBase
	Parts []Expr // each is *StringLit or *StringInterpExpr
}

func NewStringGroupExpr(a *Arena, span source.Range, parts []Expr) *StringGroupExpr {
	return &StringGroupExpr{exprBase: exprBase{newBase(a, KindStringGroupExpr, span)}, Parts: parts}
}

func (n *StringGroupExpr) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	for _, p := range n.Parts {
		p.Walk(v)
	}
}

// StringInterpExpr is a single string literal containing interpolations;
// Parts alternates literal chunks (*StringLit) and expression children.
type StringInterpExpr struct {
	exprBase
	Parts []Expr
}

func NewStringInterpExpr(a *Arena, span source.Range, parts []Expr) *StringInterpExpr {
	return &StringInterpExpr{exprBase: exprBase{newBase(a, KindStringInterpExpr, span)}, Parts: parts}
}

func (n *StringInterpExpr) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	for _, p := range n.Parts {
		p.Walk(v)
	}
}

// TupleExpr is a tuple literal `(a, b, c)`.
type TupleExpr struct {
	exprBase
	Elems []Expr
}

func NewTupleExpr(a *Arena, span source.Range, elems []Expr) *TupleExpr {
	return &TupleExpr{exprBase: exprBase{newBase(a, KindTupleExpr, span)}, Elems: elems}
}

func (n *TupleExpr) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	for _, e := range n.Elems {
		e.Walk(v)
	}
}

// ArrayExpr is an array literal `[a, b, c]`.
type ArrayExpr struct {
	exprBase
	Elems []Expr
}

func NewArrayExpr(a *Arena, span source.Range, elems []Expr) *ArrayExpr {
	return &ArrayExpr{exprBase: exprBase{newBase(a, KindArrayExpr, span)}, Elems: elems}
}

func (n *ArrayExpr) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	for _, e := range n.Elems {
		e.Walk(v)
	}
}

// MapEntry is a single key/value pair inside a MapExpr/RecordExpr.
type MapEntry struct {
	Key   Expr
	Value Expr
}

// MapExpr is a `map{k: v, ...}` literal with arbitrary (runtime-evaluated)
// keys.
type MapExpr struct {
	exprBase
	Entries []MapEntry
}

func NewMapExpr(a *Arena, span source.Range, entries []MapEntry) *MapExpr {
	return &MapExpr{exprBase: exprBase{newBase(a, KindMapExpr, span)}, Entries: entries}
}

func (n *MapExpr) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	for _, e := range n.Entries {
		e.Key.Walk(v)
		e.Value.Walk(v)
	}
}

// SetExpr is a `set{a, b, c}` literal.
type SetExpr struct {
	exprBase
	Elems []Expr
}

func NewSetExpr(a *Arena, span source.Range, elems []Expr) *SetExpr {
	return &SetExpr{exprBase: exprBase{newBase(a, KindSetExpr, span)}, Elems: elems}
}

func (n *SetExpr) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	for _, e := range n.Elems {
		e.Walk(v)
	}
}

// RecordExpr is a `{name: v, ...}` record literal with statically known
// symbol keys, lowered by lang/irgen to an ir.RecordContainer.
type RecordExpr struct {
	exprBase
	Names  []string
	Values []Expr
}

func NewRecordExpr(a *Arena, span source.Range, names []string, values []Expr) *RecordExpr {
	return &RecordExpr{exprBase: exprBase{newBase(a, KindRecordExpr, span)}, Names: names, Values: values}
}

func (n *RecordExpr) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	for _, e := range n.Values {
		e.Walk(v)
	}
}

// FuncExpr is a function literal (closure), used both for anonymous
// expressions and as the body of a FuncDecl.
type FuncExpr struct {
	exprBase
	Params []Binding
	Body   *Block
}

func NewFuncExpr(a *Arena, span source.Range, params []Binding, body *Block) *FuncExpr {
	return &FuncExpr{exprBase: exprBase{newBase(a, KindFuncExpr, span)}, Params: params, Body: body}
}

func (n *FuncExpr) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.Body.Walk(v)
}

// UnaryExpr is a prefix unary operator application.
type UnaryExpr struct {
	exprBase
	Op token.Token
	X  Expr
}

func NewUnaryExpr(a *Arena, span source.Range, op token.Token, x Expr) *UnaryExpr {
	return &UnaryExpr{exprBase: exprBase{newBase(a, KindUnaryExpr, span)}, Op: op, X: x}
}

func (n *UnaryExpr) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.X.Walk(v)
}

// BinaryExpr is a binary operator application, including `&&`, `||` and
// `??` (which the IR builder must lower with short-circuit semantics).
type BinaryExpr struct {
	exprBase
	Op   token.Token
	X, Y Expr
}

func NewBinaryExpr(a *Arena, span source.Range, op token.Token, x, y Expr) *BinaryExpr {
	return &BinaryExpr{exprBase: exprBase{newBase(a, KindBinaryExpr, span)}, Op: op, X: x, Y: y}
}

func (n *BinaryExpr) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.X.Walk(v)
	n.Y.Walk(v)
}

// CallExpr is a function (or method, when Callee is a *SelectorExpr) call.
type CallExpr struct {
	exprBase
	Callee Expr
	Args   []Expr
	Access AccessKind
}

func NewCallExpr(a *Arena, span source.Range, callee Expr, args []Expr, access AccessKind) *CallExpr {
	return &CallExpr{exprBase: exprBase{newBase(a, KindCallExpr, span)}, Callee: callee, Args: args, Access: access}
}

func (n *CallExpr) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.Callee.Walk(v)
	for _, arg := range n.Args {
		arg.Walk(v)
	}
}

// IndexExpr is `x[i]` or, with Access == AccessOptional, `x?[i]`.
type IndexExpr struct {
	exprBase
	X, Index Expr
	Access   AccessKind
}

func NewIndexExpr(a *Arena, span source.Range, x, index Expr, access AccessKind) *IndexExpr {
	return &IndexExpr{exprBase: exprBase{newBase(a, KindIndexExpr, span)}, X: x, Index: index, Access: access}
}

func (n *IndexExpr) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.X.Walk(v)
	n.Index.Walk(v)
}

// SelectorExpr is `x.name` or, with Access == AccessOptional, `x?.name`.
type SelectorExpr struct {
	exprBase
	X      Expr
	Name   string
	Access AccessKind
}

func NewSelectorExpr(a *Arena, span source.Range, x Expr, name string, access AccessKind) *SelectorExpr {
	return &SelectorExpr{exprBase: exprBase{newBase(a, KindSelectorExpr, span)}, X: x, Name: name, Access: access}
}

func (n *SelectorExpr) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.X.Walk(v)
}

// TupleFieldExpr is `x.0`, `x.1`, ... (lexed as TUPLE_FIELD so the digits
// are never mistaken for a float).
type TupleFieldExpr struct {
	exprBase
	X     Expr
	Index uint32
}

func NewTupleFieldExpr(a *Arena, span source.Range, x Expr, index uint32) *TupleFieldExpr {
	return &TupleFieldExpr{exprBase: exprBase{newBase(a, KindTupleFieldExpr, span)}, X: x, Index: index}
}

func (n *TupleFieldExpr) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.X.Walk(v)
}

// ParenExpr preserves an explicitly parenthesized expression so that
// diagnostics referencing its span point at the parens, not just the
// wrapped expression.
type ParenExpr struct {
	exprBase
	X Expr
}

func NewParenExpr(a *Arena, span source.Range, x Expr) *ParenExpr {
	return &ParenExpr{exprBase: exprBase{newBase(a, KindParenExpr, span)}, X: x}
}

func (n *ParenExpr) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	n.X.Walk(v)
}
