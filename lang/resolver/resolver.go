// Package resolver performs the two-pass symbol resolution stage between
// parsing and IR construction: it assigns every declaration a Symbol,
// every identifier use the Symbol it refers to, and every scoping
// construct (function, for-loop, block) a Scope, recording both as
// AstId-indexed side tables rather than back-pointers from the AST.
//
// Grounded on the block/stmt/expr dispatch shape of a two-pass
// Starlark-style resolver (push a scope, walk declarations, walk uses,
// pop), generalized from a linked list of name->Binding blocks to an
// explicit, arena-indexed Scope/Symbol table keyed by SymbolId/ScopeId so
// that later stages (IR construction, slot assignment) can hold a
// SymbolId in a register-sized field instead of a pointer.
package resolver

import (
	"fmt"

	"github.com/mbeckem/tiro-sub007/lang/ast"
	"github.com/mbeckem/tiro-sub007/lang/source"
)

// SymbolId identifies a declared binding (variable, constant, parameter,
// function or import) within a Table.
type SymbolId int32

// NoSymbol (-1) is the SymbolId recorded for an identifier use that could
// not be resolved.
const NoSymbol SymbolId = -1

// ScopeId identifies a lexical scope within a Table.
type ScopeId int32

// NoScope (-1) is the Parent of the global scope, which has no parent.
const NoScope ScopeId = -1

// ScopeKind classifies what introduced a Scope.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	// ScopeGlobal is the single implicit root scope holding predeclared and
	// universal (language built-in) names; no source declaration lands in
	// it, and the SymGlobal symbols created on first use of such a name
	// record it as their Scope.
	ScopeGlobal
	// ScopeFile holds a chunk's top-level var/const/func/import declarations.
	ScopeFile
	// ScopeFunction holds a function's parameters and is the capture
	// boundary: a use resolved in a parent ScopeFunction marks the Symbol
	// Captured.
	ScopeFunction
	// ScopeForStatement holds a three-part for loop's init-clause bindings,
	// visible to the condition, step and body.
	ScopeForStatement
	// ScopeBlock is an ordinary nested block (if/while bodies, bare blocks).
	ScopeBlock
)

var scopeKindNames = [...]string{
	ScopeInvalid:      "invalid",
	ScopeGlobal:       "global",
	ScopeFile:         "file",
	ScopeFunction:     "function",
	ScopeForStatement: "for_statement",
	ScopeBlock:        "block",
}

func (k ScopeKind) String() string {
	if int(k) < len(scopeKindNames) {
		return scopeKindNames[k]
	}
	return "unknown_scope_kind"
}

// SymbolKind classifies what kind of declaration a Symbol came from.
type SymbolKind uint8

const (
	SymInvalid SymbolKind = iota
	SymVar
	SymConst
	SymParam
	SymFunc
	SymImport
	// SymGlobal marks a predeclared or universal name resolved against the
	// embedding environment rather than declared in source.
	SymGlobal
)

// Symbol is a single declared (or predeclared) binding.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Scope ScopeId // owning scope
	Decl  ast.AstId

	// Captured is set once a use of this symbol is found in a nested
	// ScopeFunction. IR construction uses this to decide whether the
	// symbol needs a heap-allocated closure cell instead of a plain SSA
	// local.
	Captured bool
}

// Scope is a single lexical scope.
type Scope struct {
	Kind ScopeKind
	// Parent is the lexically enclosing scope, or NoScope for ScopeGlobal.
	Parent ScopeId
	// Func is the nearest enclosing ScopeFunction (or ScopeFile for
	// top-level code), including itself if Kind == ScopeFunction. Used to
	// detect captures: a use crosses a function boundary when the using
	// scope's Func differs from the declaring scope's Func.
	Func ScopeId

	names map[string]SymbolId
}

// Table is the result of resolving a set of chunks: the symbol and scope
// arenas plus the AstId-keyed side tables linking the AST back to them.
type Table struct {
	Symbols []Symbol
	Scopes  []Scope

	// SymbolOf maps a declaring statement's AstId to the last Symbol it
	// declared (see DeclSymbols for all of them, in order), and every using
	// IdentExpr or ExportStmt to the Symbol it denotes.
	SymbolOf map[ast.AstId]SymbolId
	// ScopeOf maps a scope-introducing node (Chunk, FuncExpr, ForStmt,
	// Block) to the Scope it introduced.
	ScopeOf map[ast.AstId]ScopeId
	// DeclSymbols maps a VarDecl/ConstDecl/FuncDecl's AstId to the
	// Symbols it declares, in Binding order (length 1 except for tuple
	// bindings).
	DeclSymbols map[ast.AstId][]SymbolId
}

func newTable() *Table {
	return &Table{
		SymbolOf:    make(map[ast.AstId]SymbolId),
		ScopeOf:     make(map[ast.AstId]ScopeId),
		DeclSymbols: make(map[ast.AstId][]SymbolId),
	}
}

func (t *Table) newScope(kind ScopeKind, parent ScopeId) ScopeId {
	id := ScopeId(len(t.Scopes))
	sc := Scope{Kind: kind, Parent: parent, names: make(map[string]SymbolId)}
	if kind == ScopeFunction || kind == ScopeFile || kind == ScopeGlobal {
		sc.Func = id
	} else if parent != NoScope {
		sc.Func = t.Scopes[parent].Func
	}
	t.Scopes = append(t.Scopes, sc)
	return id
}

func (t *Table) newSymbol(name string, kind SymbolKind, scope ScopeId, decl ast.AstId) SymbolId {
	id := SymbolId(len(t.Symbols))
	t.Symbols = append(t.Symbols, Symbol{Name: name, Kind: kind, Scope: scope, Decl: decl})
	return id
}

// IsPredeclaredFunc reports whether name is provided by the embedding
// environment (e.g. native functions registered on the VM).
type IsPredeclaredFunc func(name string) bool

// ResolveFiles resolves every chunk in its own file scope under a shared
// global scope and returns the resulting Table, plus any diagnostics
// accumulated along the way as a *source.ErrorList-wrapped error. Only
// predeclared and universal names are shared between chunks: a chunk's
// top-level names are not visible from another chunk.
func ResolveFiles(fset *source.FileSet, chunks []*ast.Chunk, isPredeclared, isUniversal IsPredeclaredFunc) (*Table, error) {
	if isPredeclared == nil {
		isPredeclared = func(string) bool { return false }
	}
	if isUniversal == nil {
		isUniversal = func(string) bool { return false }
	}

	t := newTable()
	r := &resolveCtx{
		table:         t,
		fset:          fset,
		isPredeclared: isPredeclared,
		isUniversal:   isUniversal,
		globals:       make(map[string]SymbolId),
	}
	r.globalScope = t.newScope(ScopeGlobal, NoScope)

	// Pass 1: hoist every chunk's top-level var/const/func/import names
	// into the file scope before resolving any body, so a use may refer to
	// a top-level declaration that appears later in the same file.
	fileScopes := make([]ScopeId, len(chunks))
	for i, ch := range chunks {
		r.pos = r.fset.File(ch.Span().Begin)
		fileScopes[i] = t.newScope(ScopeFile, r.globalScope)
		t.ScopeOf[ch.AstId()] = fileScopes[i]
		r.hoistBlock(fileScopes[i], ch.Block)
	}

	// Pass 2: resolve every use against the now-complete symbol tables.
	for i, ch := range chunks {
		r.pos = r.fset.File(ch.Span().Begin)
		r.resolveBlock(fileScopes[i], ch.Block, true)
	}

	r.errors.Sort()
	return t, r.errors.Err()
}

type resolveCtx struct {
	table   *Table
	fset    *source.FileSet
	pos     *source.File
	errors  source.ErrorList
	loopDep int

	globalScope ScopeId
	globals     map[string]SymbolId

	isPredeclared, isUniversal IsPredeclaredFunc
}

func (r *resolveCtx) errorf(p source.Pos, format string, args ...any) {
	r.errors.Add(r.pos.Position(p), fmt.Sprintf(format, args...))
}

// hoistBlock declares every var/const/func/import at the top level of a
// block without descending into nested blocks or resolving expressions;
// it is only ever called for the outermost statement list of a chunk.
func (r *resolveCtx) hoistBlock(scope ScopeId, b *ast.Block) {
	for _, s := range b.Stmts {
		switch s := s.(type) {
		case *ast.VarDecl:
			r.declare(scope, s.AstId(), s.Names, SymVar)
		case *ast.ConstDecl:
			r.declare(scope, s.AstId(), s.Names, SymConst)
		case *ast.FuncDecl:
			r.declareOne(scope, s.AstId(), s.Name, s.NamePos, SymFunc)
		case *ast.ImportStmt:
			r.declareOne(scope, s.AstId(), s.Name, s.Span().Begin, SymImport)
		}
	}
}

func (r *resolveCtx) declare(scope ScopeId, declId ast.AstId, names []ast.Binding, kind SymbolKind) {
	syms := make([]SymbolId, len(names))
	for i, n := range names {
		syms[i] = r.declareName(scope, declId, n.Name, n.Pos, kind)
	}
	r.table.DeclSymbols[declId] = syms
}

func (r *resolveCtx) declareOne(scope ScopeId, declId ast.AstId, name string, pos source.Pos, kind SymbolKind) SymbolId {
	id := r.declareName(scope, declId, name, pos, kind)
	r.table.DeclSymbols[declId] = []SymbolId{id}
	return id
}

func (r *resolveCtx) declareName(scope ScopeId, declId ast.AstId, name string, pos source.Pos, kind SymbolKind) SymbolId {
	sc := &r.table.Scopes[scope]
	if _, dup := sc.names[name]; dup {
		r.errorf(pos, "%q already declared in this scope", name)
	}
	id := r.table.newSymbol(name, kind, scope, declId)
	sc.names[name] = id
	r.table.SymbolOf[declId] = id // last-declared wins if declId covers >1 name; DeclSymbols is authoritative
	return id
}

// resolveBlock resolves every statement of b, which already has scope as
// its home scope (the caller is responsible for pushing a new Scope when
// the block introduces one, e.g. if/while bodies).
func (r *resolveCtx) resolveBlock(scope ScopeId, b *ast.Block, topLevelHoisted bool) {
	for _, s := range b.Stmts {
		r.resolveStmt(scope, s, topLevelHoisted)
	}
}

func (r *resolveCtx) resolveStmt(scope ScopeId, s ast.Stmt, topLevelHoisted bool) {
	switch s := s.(type) {
	case *ast.VarDecl:
		if s.Init != nil {
			r.resolveExpr(scope, s.Init)
		}
		if !topLevelHoisted {
			r.declare(scope, s.AstId(), s.Names, SymVar)
		}

	case *ast.ConstDecl:
		if s.Init != nil {
			r.resolveExpr(scope, s.Init)
		}
		if !topLevelHoisted {
			r.declare(scope, s.AstId(), s.Names, SymConst)
		}

	case *ast.AssignStmt:
		r.resolveExpr(scope, s.Right)
		r.resolveExpr(scope, s.Left)

	case *ast.ExprStmt:
		r.resolveExpr(scope, s.X)

	case *ast.IfStmt:
		r.resolveExpr(scope, s.Cond)
		r.resolveNestedBlock(scope, ScopeBlock, s.Then)
		if s.Else != nil {
			r.resolveNestedBlock(scope, ScopeBlock, s.Else)
		}

	case *ast.WhileStmt:
		r.resolveExpr(scope, s.Cond)
		r.loopDep++
		r.resolveNestedBlock(scope, ScopeBlock, s.Body)
		r.loopDep--

	case *ast.ForStmt:
		forScope := r.table.newScope(ScopeForStatement, scope)
		r.table.ScopeOf[s.AstId()] = forScope
		if s.Init != nil {
			r.resolveStmt(forScope, s.Init, false)
		}
		if s.Cond != nil {
			r.resolveExpr(forScope, s.Cond)
		}
		if s.Step != nil {
			r.resolveStmt(forScope, s.Step, false)
		}
		r.loopDep++
		r.resolveNestedBlock(forScope, ScopeBlock, s.Body)
		r.loopDep--

	case *ast.BreakStmt:
		if r.loopDep == 0 {
			r.errorf(s.Span().Begin, "break outside of loop")
		}

	case *ast.ContinueStmt:
		if r.loopDep == 0 {
			r.errorf(s.Span().Begin, "continue outside of loop")
		}

	case *ast.ReturnStmt:
		if s.X != nil {
			r.resolveExpr(scope, s.X)
		}

	case *ast.DeferStmt:
		r.resolveExpr(scope, s.X)

	case *ast.FuncDecl:
		if !topLevelHoisted {
			r.declareOne(scope, s.AstId(), s.Name, s.NamePos, SymFunc)
		}
		r.resolveFunc(scope, s.Fn)

	case *ast.ImportStmt:
		if !topLevelHoisted {
			r.declareOne(scope, s.AstId(), s.Name, s.Span().Begin, SymImport)
		}

	case *ast.ExportStmt:
		r.useName(scope, s.Name, s.Span().Begin, s.AstId())

	case *ast.BadStmt:
		// already diagnosed by the parser; nothing further to resolve.

	default:
		panic(fmt.Sprintf("resolver: unexpected statement %T", s))
	}
}

// resolveNestedBlock resolves a nested block that introduces its own
// ScopeBlock, e.g. the Then/Else arm of an if or a while/for body.
func (r *resolveCtx) resolveNestedBlock(parent ScopeId, kind ScopeKind, b *ast.Block) {
	scope := r.table.newScope(kind, parent)
	r.table.ScopeOf[b.AstId()] = scope
	r.resolveBlock(scope, b, false)
}

func (r *resolveCtx) resolveFunc(parent ScopeId, fn *ast.FuncExpr) {
	scope := r.table.newScope(ScopeFunction, parent)
	r.table.ScopeOf[fn.AstId()] = scope
	params := make([]SymbolId, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = r.declareName(scope, fn.AstId(), p.Name, p.Pos, SymParam)
	}
	// Recorded in parameter order (distinct from the DeclSymbols use for
	// var/const/func declarations) so IR construction can map each
	// ast.Binding to its Symbol without reaching into the unexported
	// Scope.names map.
	r.table.DeclSymbols[fn.AstId()] = params
	savedLoopDep := r.loopDep
	r.loopDep = 0
	r.resolveBlock(scope, fn.Body, false)
	r.loopDep = savedLoopDep
}

func (r *resolveCtx) resolveExpr(scope ScopeId, e ast.Expr) {
	switch e := e.(type) {
	case *ast.IdentExpr:
		r.useName(scope, e.Name, e.Span().Begin, e.AstId())

	case *ast.IntLit, *ast.FloatLit, *ast.StringLit, *ast.BoolLit, *ast.NullLit, *ast.SymbolLit, *ast.BadExpr:
		// leaves, nothing to resolve

	case *ast.StringGroupExpr:
		for _, p := range e.Parts {
			r.resolveExpr(scope, p)
		}
	case *ast.StringInterpExpr:
		for _, p := range e.Parts {
			r.resolveExpr(scope, p)
		}
	case *ast.TupleExpr:
		for _, x := range e.Elems {
			r.resolveExpr(scope, x)
		}
	case *ast.ArrayExpr:
		for _, x := range e.Elems {
			r.resolveExpr(scope, x)
		}
	case *ast.MapExpr:
		for _, ent := range e.Entries {
			r.resolveExpr(scope, ent.Key)
			r.resolveExpr(scope, ent.Value)
		}
	case *ast.SetExpr:
		for _, x := range e.Elems {
			r.resolveExpr(scope, x)
		}
	case *ast.RecordExpr:
		for _, v := range e.Values {
			r.resolveExpr(scope, v)
		}
	case *ast.FuncExpr:
		r.resolveFunc(scope, e)
	case *ast.UnaryExpr:
		r.resolveExpr(scope, e.X)
	case *ast.BinaryExpr:
		r.resolveExpr(scope, e.X)
		r.resolveExpr(scope, e.Y)
	case *ast.CallExpr:
		r.resolveExpr(scope, e.Callee)
		for _, a := range e.Args {
			r.resolveExpr(scope, a)
		}
	case *ast.IndexExpr:
		r.resolveExpr(scope, e.X)
		r.resolveExpr(scope, e.Index)
	case *ast.SelectorExpr:
		r.resolveExpr(scope, e.X) // Name is a runtime attribute lookup, not a binding use
	case *ast.TupleFieldExpr:
		r.resolveExpr(scope, e.X)
	case *ast.ParenExpr:
		r.resolveExpr(scope, e.X)

	default:
		panic(fmt.Sprintf("resolver: unexpected expression %T", e))
	}
}

// useName resolves an identifier use starting at scope, walking up through
// enclosing scopes, then falling back to the predeclared/universal
// predicates, and finally reporting an "undefined" error. On a successful
// lookup crossing a ScopeFunction boundary it marks the found Symbol
// Captured.
func (r *resolveCtx) useName(scope ScopeId, name string, pos source.Pos, useId ast.AstId) {
	startFunc := r.table.Scopes[scope].Func
	for s := scope; s != NoScope; s = r.table.Scopes[s].Parent {
		sc := &r.table.Scopes[s]
		if id, ok := sc.names[name]; ok {
			if sc.Func != startFunc {
				r.table.Symbols[id].Captured = true
			}
			r.table.SymbolOf[useId] = id
			return
		}
		if sc.Kind == ScopeGlobal {
			break
		}
	}

	if id, ok := r.globals[name]; ok {
		r.table.SymbolOf[useId] = id
		return
	}
	if r.isPredeclared(name) || r.isUniversal(name) {
		id := r.table.newSymbol(name, SymGlobal, r.globalScope, ast.NoAstId)
		r.globals[name] = id
		r.table.SymbolOf[useId] = id
		return
	}

	r.errorf(pos, "undefined: %s", name)
	r.table.SymbolOf[useId] = NoSymbol
}
