package ast

import (
	"bytes"
	"testing"

	"github.com/mbeckem/tiro-sub007/lang/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaAssignsDistinctIds(t *testing.T) {
	a := NewArena()
	n1 := NewIntLit(a, source.Range{}, 1)
	n2 := NewIntLit(a, source.Range{}, 2)
	require.NotEqual(t, n1.AstId(), n2.AstId())
	assert.Equal(t, AstId(1), n1.AstId())
	assert.Equal(t, AstId(2), n2.AstId())
	assert.Equal(t, 2, a.Len())
}

func TestWalkVisitsChildren(t *testing.T) {
	a := NewArena()
	x := NewIntLit(a, source.Range{}, 1)
	y := NewIntLit(a, source.Range{}, 2)
	bin := NewBinaryExpr(a, source.Range{}, 0, x, y)

	var visited []AstId
	Inspect(bin, func(n Node) bool {
		visited = append(visited, n.AstId())
		return true
	})
	assert.Equal(t, []AstId{bin.AstId(), x.AstId(), y.AstId()}, visited)
}

func TestHasErrorPropagatesFromSetError(t *testing.T) {
	a := NewArena()
	n := NewIdentExpr(a, source.Range{}, "x")
	assert.False(t, n.HasError())
	n.SetError()
	assert.True(t, n.HasError())
}

func TestPrintDumpsChunk(t *testing.T) {
	a := NewArena()
	x := NewIdentExpr(a, source.Range{}, "x")
	ret := NewReturnStmt(a, source.Range{}, x)
	block := NewBlock(a, source.Range{}, []Stmt{ret})
	chunk := NewChunk(a, "test.tiro", block, 0)

	var buf bytes.Buffer
	Print(&buf, chunk)
	out := buf.String()
	assert.Contains(t, out, "chunk \"test.tiro\"")
	assert.Contains(t, out, "return_stmt")
	assert.Contains(t, out, "ident_expr x")
}
