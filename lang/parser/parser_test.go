package parser_test

import (
	"testing"

	"github.com/mbeckem/tiro-sub007/lang/ast"
	"github.com/mbeckem/tiro-sub007/lang/parser"
	"github.com/mbeckem/tiro-sub007/lang/source"
	"github.com/mbeckem/tiro-sub007/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOK(t *testing.T, src string) *ast.Chunk {
	t.Helper()
	fset := source.NewFileSet()
	chunk, err := parser.ParseChunk(fset, "test.tiro", []byte(src))
	require.NoError(t, err)
	require.NotNil(t, chunk)
	return chunk
}

func stmts(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	return parseOK(t, src).Block.Stmts
}

func TestParseVarDeclSimple(t *testing.T) {
	s := stmts(t, "var x = 1;")
	require.Len(t, s, 1)
	v, ok := s[0].(*ast.VarDecl)
	require.True(t, ok)
	require.Len(t, v.Names, 1)
	assert.Equal(t, "x", v.Names[0].Name)
	lit, ok := v.Init.(*ast.IntLit)
	require.True(t, ok)
	assert.EqualValues(t, 1, lit.Value)
}

func TestParseVarDeclTupleBinding(t *testing.T) {
	s := stmts(t, "var (a, b) = f();")
	require.Len(t, s, 1)
	v := s[0].(*ast.VarDecl)
	require.Len(t, v.Names, 2)
	assert.Equal(t, "a", v.Names[0].Name)
	assert.Equal(t, "b", v.Names[1].Name)
	_, ok := v.Init.(*ast.CallExpr)
	assert.True(t, ok)
}

func TestParseConstDeclFloatInit(t *testing.T) {
	s := stmts(t, "const pi = 3.25;")
	c := s[0].(*ast.ConstDecl)
	f, ok := c.Init.(*ast.FloatLit)
	require.True(t, ok)
	assert.Equal(t, 3.25, f.Value)
}

func TestParseIfElseIfElseChain(t *testing.T) {
	s := stmts(t, `
		if a {
			return 1;
		} else if b {
			return 2;
		} else {
			return 3;
		}
	`)
	top := s[0].(*ast.IfStmt)
	require.NotNil(t, top.Else)
	require.Len(t, top.Else.Stmts, 1)
	elif, ok := top.Else.Stmts[0].(*ast.IfStmt)
	require.True(t, ok)
	require.NotNil(t, elif.Else)
	assert.Len(t, elif.Else.Stmts, 1)
}

func TestParseWhileStmt(t *testing.T) {
	s := stmts(t, "while x < 10 { x += 1; }")
	w := s[0].(*ast.WhileStmt)
	assert.IsType(t, &ast.BinaryExpr{}, w.Cond)
	require.Len(t, w.Body.Stmts, 1)
	assign := w.Body.Stmts[0].(*ast.AssignStmt)
	assert.Equal(t, ast.AssignAdd, assign.Op)
}

func TestParseForStmtAllParts(t *testing.T) {
	s := stmts(t, "for var i = 0; i < 10; i += 1 { }")
	f := s[0].(*ast.ForStmt)
	require.NotNil(t, f.Init)
	require.NotNil(t, f.Cond)
	require.NotNil(t, f.Step)
}

func TestParseForStmtAllPartsOmitted(t *testing.T) {
	s := stmts(t, "for ;; { break; }")
	f := s[0].(*ast.ForStmt)
	assert.Nil(t, f.Init)
	assert.Nil(t, f.Cond)
	assert.Nil(t, f.Step)
	require.Len(t, f.Body.Stmts, 1)
	assert.True(t, f.Body.Stmts[0].BlockEnding())
}

func TestParseBreakContinueReturn(t *testing.T) {
	s := stmts(t, "func f() { if x { break; } if y { continue; } return; }")
	fn := s[0].(*ast.FuncDecl)
	require.Len(t, fn.Fn.Body.Stmts, 3)
	assert.IsType(t, &ast.IfStmt{}, fn.Fn.Body.Stmts[0])
	assert.IsType(t, &ast.IfStmt{}, fn.Fn.Body.Stmts[1])
	assert.IsType(t, &ast.ReturnStmt{}, fn.Fn.Body.Stmts[2])
}

// defer is block-ending: a deferred call only ever makes sense as the last
// statement to run before the block's other exits, so the parser forbids
// anything after it in the same block.
func TestParseDeferIsBlockEnding(t *testing.T) {
	s := stmts(t, "func f() { if x { break; } defer g(); }")
	fn := s[0].(*ast.FuncDecl)
	require.Len(t, fn.Fn.Body.Stmts, 2)
	assert.IsType(t, &ast.DeferStmt{}, fn.Fn.Body.Stmts[1])
	assert.True(t, fn.Fn.Body.Stmts[1].BlockEnding())
}

func TestParseFuncDeclPlainAndExported(t *testing.T) {
	s := stmts(t, "func f(a, b) { return a; } export func g() { }")
	f1 := s[0].(*ast.FuncDecl)
	assert.Equal(t, "f", f1.Name)
	assert.False(t, f1.Exported)
	require.Len(t, f1.Fn.Params, 2)

	f2 := s[1].(*ast.FuncDecl)
	assert.Equal(t, "g", f2.Name)
	assert.True(t, f2.Exported)
}

func TestParseImportAndExportStmt(t *testing.T) {
	s := stmts(t, "import math; export pi;")
	imp := s[0].(*ast.ImportStmt)
	assert.Equal(t, "math", imp.Name)
	exp := s[1].(*ast.ExportStmt)
	assert.Equal(t, "pi", exp.Name)
}

func TestParsePrecedenceLadder(t *testing.T) {
	s := stmts(t, "var x = 1 + 2 * 3 ** 2;")
	v := s[0].(*ast.VarDecl)
	add := v.Init.(*ast.BinaryExpr)
	assert.Equal(t, token.PLUS, add.Op)
	mul := add.Y.(*ast.BinaryExpr)
	assert.Equal(t, token.STAR, mul.Op)
	pow := mul.Y.(*ast.BinaryExpr)
	assert.Equal(t, token.STARSTAR, pow.Op)
}

func TestParsePowerIsRightAssociative(t *testing.T) {
	s := stmts(t, "var x = 2 ** 3 ** 2;")
	v := s[0].(*ast.VarDecl)
	top := v.Init.(*ast.BinaryExpr)
	assert.Equal(t, token.STARSTAR, top.Op)
	_, leftIsBin := top.X.(*ast.BinaryExpr)
	assert.False(t, leftIsBin, "power must group to the right: 2 ** (3 ** 2)")
	_, rightIsBin := top.Y.(*ast.BinaryExpr)
	assert.True(t, rightIsBin)
}

func TestParseNullCoalescingAndLogical(t *testing.T) {
	s := stmts(t, "var x = a ?? b || c && d;")
	v := s[0].(*ast.VarDecl)
	top := v.Init.(*ast.BinaryExpr) // ??
	_, ok := top.Y.(*ast.BinaryExpr)
	assert.True(t, ok)
}

func TestParseOptionalPostfixChain(t *testing.T) {
	s := stmts(t, "var x = a?.b?[0]?(1);")
	v := s[0].(*ast.VarDecl)
	call := v.Init.(*ast.CallExpr)
	assert.Equal(t, ast.AccessOptional, call.Access)
	idx := call.Callee.(*ast.IndexExpr)
	assert.Equal(t, ast.AccessOptional, idx.Access)
	sel := idx.X.(*ast.SelectorExpr)
	assert.Equal(t, ast.AccessOptional, sel.Access)
	assert.Equal(t, "b", sel.Name)
}

func TestParseStringGroupAndInterpolation(t *testing.T) {
	s := stmts(t, `var x = "hi $name!" "more${ 1 + 1 }";`)
	v := s[0].(*ast.VarDecl)
	group := v.Init.(*ast.StringGroupExpr)
	require.Len(t, group.Parts, 2)
	interp1 := group.Parts[0].(*ast.StringInterpExpr)
	assert.Len(t, interp1.Parts, 3) // "hi ", $name, "!"
	interp2 := group.Parts[1].(*ast.StringInterpExpr)
	assert.Len(t, interp2.Parts, 2) // "more", block
}

func TestParseTupleArrayMapSetRecordLiterals(t *testing.T) {
	s := stmts(t, `
		var a = (1, 2, 3);
		var b = [1, 2];
		var c = map{ "k": 1 };
		var d = set{1, 2};
		var e = { name: 1 };
	`)
	require.Len(t, s, 5)
	assert.IsType(t, &ast.TupleExpr{}, s[0].(*ast.VarDecl).Init)
	assert.IsType(t, &ast.ArrayExpr{}, s[1].(*ast.VarDecl).Init)
	assert.IsType(t, &ast.MapExpr{}, s[2].(*ast.VarDecl).Init)
	assert.IsType(t, &ast.SetExpr{}, s[3].(*ast.VarDecl).Init)
	assert.IsType(t, &ast.RecordExpr{}, s[4].(*ast.VarDecl).Init)
}

func TestParseTupleFieldAccess(t *testing.T) {
	s := stmts(t, "var x = t.0.1;")
	v := s[0].(*ast.VarDecl)
	outer := v.Init.(*ast.TupleFieldExpr)
	assert.EqualValues(t, 1, outer.Index)
	inner := outer.X.(*ast.TupleFieldExpr)
	assert.EqualValues(t, 0, inner.Index)
}

func TestParseRecoversFromErrorAndSyncsToNextStatement(t *testing.T) {
	fset := source.NewFileSet()
	chunk, err := parser.ParseChunk(fset, "bad.tiro", []byte("var = ; var y = 2;"))
	require.Error(t, err)
	require.NotNil(t, chunk)
	// despite the malformed first declaration, the parser should recover
	// and still produce a statement for the well-formed second one.
	var sawY bool
	for _, s := range chunk.Block.Stmts {
		if v, ok := s.(*ast.VarDecl); ok && len(v.Names) == 1 && v.Names[0].Name == "y" {
			sawY = true
		}
	}
	assert.True(t, sawY)
}
