package parser

import (
	"github.com/mbeckem/tiro-sub007/lang/ast"
	"github.com/mbeckem/tiro-sub007/lang/token"
)

func (p *Parser) parseChunk() *ast.Chunk {
	start := p.pos
	var stmts []ast.Stmt
	for p.tok != token.EOF {
		s := p.parseStmt()
		if s == nil {
			continue
		}
		if s.HasError() {
			p.sync(stmtStartSet)
		}
		stmts = append(stmts, s)
	}
	eofPos, _ := p.expect(token.EOF)
	block := ast.NewBlock(p.arena, p.span(start), stmts)
	return ast.NewChunk(p.arena, p.name, block, eofPos)
}

// parseBraceBlock parses `{ stmt* }`, recording at most one block-ending
// statement; the first statement parsed after it is reported as
// unreachable (once per block).
// A statement that failed to parse cleanly triggers a resync to the next
// recognizable statement boundary before the loop continues.
func (p *Parser) parseBraceBlock() *ast.Block {
	start := p.pos
	_, _ = p.expect(token.LBRACE)

	var stmts []ast.Stmt
	var ending ast.Stmt
	endingReported := false
	for !p.at(token.RBRACE, token.EOF) {
		s := p.parseStmt()
		if s == nil {
			continue
		}
		if s.HasError() {
			p.sync(stmtStartSet)
		}
		if ending != nil {
			if !endingReported {
				p.error(s.Span().Begin, "unreachable statement")
				endingReported = true
			}
		} else if s.BlockEnding() {
			ending = s
		}
		stmts = append(stmts, s)
	}
	_, _ = p.expect(token.RBRACE)
	return ast.NewBlock(p.arena, p.span(start), stmts)
}
