package resolver_test

import (
	"testing"

	"github.com/mbeckem/tiro-sub007/lang/ast"
	"github.com/mbeckem/tiro-sub007/lang/parser"
	"github.com/mbeckem/tiro-sub007/lang/resolver"
	"github.com/mbeckem/tiro-sub007/lang/source"
)

func parseChunk(t *testing.T, src string) (*source.FileSet, *ast.Chunk) {
	t.Helper()
	fset := source.NewFileSet()
	ch, err := parser.ParseChunk(fset, "test.tiro", []byte(src))
	if err != nil {
		t.Fatalf("unexpected parse errors: %v", err)
	}
	return fset, ch
}

func findIdent(ch *ast.Chunk, name string) *ast.IdentExpr {
	var found *ast.IdentExpr
	ast.Inspect(ch, func(n ast.Node) bool {
		if id, ok := n.(*ast.IdentExpr); ok && id.Name == name {
			found = id
		}
		return true
	})
	return found
}

func TestResolveFileScopeUseInFunctionIsCaptured(t *testing.T) {
	fset, ch := parseChunk(t, `
var x = 1
func f() {
    return x
}
`)
	table, err := resolver.ResolveFiles(fset, []*ast.Chunk{ch}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}

	ident := findIdent(ch, "x")
	if ident == nil {
		t.Fatalf("did not find use of x")
	}
	sym, ok := table.SymbolOf[ident.AstId()]
	if !ok || sym == resolver.NoSymbol {
		t.Fatalf("expected x to resolve to a symbol")
	}
	if !table.Symbols[sym].Captured {
		t.Fatalf("expected x to be marked captured: it's read from inside f, declared at file scope")
	}
}

func TestResolveUndefinedNameIsAnError(t *testing.T) {
	fset, ch := parseChunk(t, `
func f() {
    return y
}
`)
	_, err := resolver.ResolveFiles(fset, []*ast.Chunk{ch}, nil, nil)
	if err == nil {
		t.Fatalf("expected an undefined-name error")
	}
}

func TestResolveDuplicateDeclarationIsAnError(t *testing.T) {
	fset, ch := parseChunk(t, `
var x = 1
var x = 2
`)
	_, err := resolver.ResolveFiles(fset, []*ast.Chunk{ch}, nil, nil)
	if err == nil {
		t.Fatalf("expected a duplicate-declaration error")
	}
}

func TestResolveBreakOutsideLoopIsAnError(t *testing.T) {
	fset, ch := parseChunk(t, `
func f() {
    break
}
`)
	_, err := resolver.ResolveFiles(fset, []*ast.Chunk{ch}, nil, nil)
	if err == nil {
		t.Fatalf("expected a break-outside-of-loop error")
	}
}

func TestResolveBreakInsideLoopIsFine(t *testing.T) {
	fset, ch := parseChunk(t, `
func f() {
    while true {
        break
    }
}
`)
	_, err := resolver.ResolveFiles(fset, []*ast.Chunk{ch}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResolvePredeclaredFallback(t *testing.T) {
	fset, ch := parseChunk(t, `
func f() {
    return native_thing
}
`)
	isPredeclared := func(name string) bool { return name == "native_thing" }
	table, err := resolver.ResolveFiles(fset, []*ast.Chunk{ch}, isPredeclared, nil)
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}

	ident := findIdent(ch, "native_thing")
	if ident == nil {
		t.Fatalf("did not find use of native_thing")
	}
	sym := table.SymbolOf[ident.AstId()]
	if table.Symbols[sym].Kind != resolver.SymGlobal {
		t.Fatalf("expected native_thing to resolve as a global symbol")
	}
}

func TestResolveForStatementScope(t *testing.T) {
	fset, ch := parseChunk(t, `
func f() {
    for var i = 0; i < 10; i = i + 1 {
        var y = i
    }
}
`)
	_, err := resolver.ResolveFiles(fset, []*ast.Chunk{ch}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
