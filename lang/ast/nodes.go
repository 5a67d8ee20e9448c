package ast

import "github.com/mbeckem/tiro-sub007/lang/source"

// Chunk is the root node of a parsed file.
type Chunk struct {
	base
	Name  string
	Block *Block
	EOF   source.Pos
}

func NewChunk(a *Arena, name string, block *Block, eof source.Pos) *Chunk {
	span := source.Range{Begin: eof, End: eof}
	if block != nil {
		span = block.Span()
	}
	return &Chunk{base: newBase(a, KindChunk, span), Name: name, Block: block, EOF: eof}
}

func (n *Chunk) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	if n.Block != nil {
		n.Block.Walk(v)
	}
}

// Block is an ordered list of statements delimited by a span (which may
// extend beyond the statements themselves to cover braces/comments).
type Block struct {
	base
	Stmts []Stmt
}

func NewBlock(a *Arena, span source.Range, stmts []Stmt) *Block {
	return &Block{base: newBase(a, KindBlock, span), Stmts: stmts}
}

func (n *Block) Walk(v Visitor) {
	if v.Visit(n) == nil {
		return
	}
	for _, s := range n.Stmts {
		s.Walk(v)
	}
}
