// Package ast defines the abstract syntax tree produced by the parser.
//
// Every node carries a stable AstId, unique within the Chunk that owns it,
// handed out by an Arena at construction time. The tree itself is built
// with ordinary Go pointers (a parent exclusively owns its children, lists
// preserve insertion order, as in any hand-written recursive-descent
// front end) — the AstId exists purely so that later passes (symbol
// resolution, structure checking) can attach side-tables keyed by node
// identity (AstId -> SymbolId, AstId -> ScopeId) without threading back
// pointers through the tree itself.
package ast

import "github.com/mbeckem/tiro-sub007/lang/source"

// AstId uniquely identifies a node within the Chunk that owns it.
type AstId int32

// Arena hands out AstIds for a single source file's AST and lets later
// passes allocate parallel AstId-indexed storage.
type Arena struct {
	next AstId
}

// NewArena returns an empty arena. Ids start at 1; 0 (NoAstId) is never
// issued so that zero-valued fields are recognizable as "no node".
func NewArena() *Arena { return &Arena{next: 1} }

// NoAstId is the zero value of AstId, meaning "no node".
const NoAstId AstId = 0

func (a *Arena) next_() AstId {
	id := a.next
	a.next++
	return id
}

// Len reports how many ids have been issued by this arena.
func (a *Arena) Len() int { return int(a.next - 1) }

// Kind is a closed tag identifying the concrete shape of a Node.
type Kind uint8

const (
	KindInvalid Kind = iota

	KindChunk
	KindBlock

	// statements
	KindVarDecl
	KindConstDecl
	KindAssignStmt
	KindExprStmt
	KindIfStmt
	KindWhileStmt
	KindForStmt
	KindBreakStmt
	KindContinueStmt
	KindReturnStmt
	KindDeferStmt
	KindFuncDecl
	KindImportStmt
	KindExportStmt

	// expressions
	KindIdentExpr
	KindIntLit
	KindFloatLit
	KindStringLit
	KindBoolLit
	KindNullLit
	KindSymbolLit
	KindStringGroupExpr
	KindStringInterpExpr
	KindTupleExpr
	KindArrayExpr
	KindMapExpr
	KindSetExpr
	KindRecordExpr
	KindFuncExpr
	KindUnaryExpr
	KindBinaryExpr
	KindCallExpr
	KindIndexExpr
	KindSelectorExpr
	KindTupleFieldExpr
	KindParenExpr

	KindBadExpr
	KindBadStmt

	maxKind
)

var kindNames = [...]string{
	KindInvalid:          "invalid",
	KindChunk:            "chunk",
	KindBlock:            "block",
	KindVarDecl:          "var_decl",
	KindConstDecl:        "const_decl",
	KindAssignStmt:       "assign_stmt",
	KindExprStmt:         "expr_stmt",
	KindIfStmt:           "if_stmt",
	KindWhileStmt:        "while_stmt",
	KindForStmt:          "for_stmt",
	KindBreakStmt:        "break_stmt",
	KindContinueStmt:     "continue_stmt",
	KindReturnStmt:       "return_stmt",
	KindDeferStmt:        "defer_stmt",
	KindFuncDecl:         "func_decl",
	KindImportStmt:       "import_stmt",
	KindExportStmt:       "export_stmt",
	KindIdentExpr:        "ident_expr",
	KindIntLit:           "int_lit",
	KindFloatLit:         "float_lit",
	KindStringLit:        "string_lit",
	KindBoolLit:          "bool_lit",
	KindNullLit:          "null_lit",
	KindSymbolLit:        "symbol_lit",
	KindStringGroupExpr:  "string_group_expr",
	KindStringInterpExpr: "string_interp_expr",
	KindTupleExpr:        "tuple_expr",
	KindArrayExpr:        "array_expr",
	KindMapExpr:          "map_expr",
	KindSetExpr:          "set_expr",
	KindRecordExpr:       "record_expr",
	KindFuncExpr:         "func_expr",
	KindUnaryExpr:        "unary_expr",
	KindBinaryExpr:       "binary_expr",
	KindCallExpr:         "call_expr",
	KindIndexExpr:        "index_expr",
	KindSelectorExpr:     "selector_expr",
	KindTupleFieldExpr:   "tuple_field_expr",
	KindParenExpr:        "paren_expr",
	KindBadExpr:          "bad_expr",
	KindBadStmt:          "bad_stmt",
}

func (k Kind) String() string {
	if k < maxKind {
		return kindNames[k]
	}
	return "unknown_kind"
}

// AccessKind distinguishes a normal postfix access from an optional
// (null-safe) one, e.g. `.` vs `?.`, `[` vs `?[`, `(` vs `?(`.
type AccessKind uint8

const (
	AccessNormal AccessKind = iota
	AccessOptional
)

// Node is implemented by every AST node.
type Node interface {
	AstId() AstId
	Span() source.Range
	Kind() Kind
	HasError() bool
	SetError()
	Walk(v Visitor)
}

// base is embedded by every concrete node type.
type base struct {
	id       AstId
	span     source.Range
	kind     Kind
	hasError bool
}

func (b *base) AstId() AstId        { return b.id }
func (b *base) Span() source.Range  { return b.span }
func (b *base) Kind() Kind          { return b.kind }
func (b *base) HasError() bool      { return b.hasError }
func (b *base) SetError()           { b.hasError = true }

func newBase(a *Arena, k Kind, span source.Range) base {
	return base{id: a.next_(), span: span, kind: k}
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	// BlockEnding reports whether this statement may only appear last in a
	// block: return, break, continue and defer (defer "ends" the block it
	// textually appears in because everything after it still runs, but a
	// defer may not be followed by more statements after a terminal one).
	BlockEnding() bool
}

type stmtBase struct{ base }

func (stmtBase) BlockEnding() bool { return false }

type exprBase struct{ base }

func (exprBase) exprNode() {}
