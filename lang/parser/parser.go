// Package parser implements a recursive-descent, operator-precedence
// parser that transforms a token stream into an AST.
//
// Grounded on the teacher's lang/parser package (parser.go/expr.go/
// stmt.go split, expect/error idiom, chunk.go top-level driver),
// with the teacher's panic-based recovery replaced by a resync to
// stmtStartSet after any statement that reported an error, and its
// "node or panic" expect() replaced by one returning (pos, ok) so callers
// can keep a partial, has_error node instead of aborting the whole chunk.
package parser

import (
	"github.com/mbeckem/tiro-sub007/lang/ast"
	"github.com/mbeckem/tiro-sub007/lang/scanner"
	"github.com/mbeckem/tiro-sub007/lang/source"
	"github.com/mbeckem/tiro-sub007/lang/token"
)

// tokenSet is a synchronization set: on failure, a parsing function
// advances past tokens until it reaches one in the set (or EOF).
type tokenSet map[token.Token]bool

func newSet(toks ...token.Token) tokenSet {
	s := make(tokenSet, len(toks))
	for _, t := range toks {
		s[t] = true
	}
	return s
}

func (s tokenSet) with(extra tokenSet) tokenSet {
	out := make(tokenSet, len(s)+len(extra))
	for t := range s {
		out[t] = true
	}
	for t := range extra {
		out[t] = true
	}
	return out
}

var (
	declStartSet = newSet(token.VAR, token.CONST, token.FUNC, token.IMPORT, token.EXPORT)
	exitSet      = newSet(token.EOF)
	stmtStartSet = declStartSet.with(newSet(
		token.IF, token.WHILE, token.FOR, token.BREAK, token.CONTINUE,
		token.RETURN, token.DEFER, token.LBRACE, token.RBRACE, token.SEMI,
	)).with(exitSet)
)

// Parser turns a single source file into an *ast.Chunk.
type Parser struct {
	arena   *ast.Arena
	scanner scanner.Scanner
	errors  source.ErrorList
	file    *source.File
	name    string

	tok token.Token
	val token.Value
	pos source.Pos // start of p.tok
	end source.Pos // end of p.tok

	prevEnd source.Pos // end of the token preceding p.tok (i.e. last consumed)

	loopDepth int
	funcDepth int
}

// New creates a parser reading name/src, recording positions in fset and
// stamping AST node ids from arena. If arena is nil, a fresh one is used.
func New(fset *source.FileSet, arena *ast.Arena, name string, src []byte) *Parser {
	if arena == nil {
		arena = ast.NewArena()
	}
	p := &Parser{arena: arena, name: name}
	p.file = fset.AddFile(name, len(src))
	p.scanner.Init(p.file, src, p.errors.Add)
	p.scanner.IgnoreComments = true
	p.advance()
	return p
}

// Errors returns the accumulated parse errors, sorted by position.
func (p *Parser) Errors() source.ErrorList {
	p.errors.Sort()
	return p.errors
}

// ParseChunk parses an entire source file as a top-level chunk.
func ParseChunk(fset *source.FileSet, name string, src []byte) (*ast.Chunk, error) {
	return ParseChunkIn(fset, nil, name, src)
}

// ParseChunkIn is ParseChunk but stamps AstIds from arena instead of a
// fresh, per-call one. Callers parsing several files into one program
// (so that, say, a resolver.Table's AstId-keyed maps don't collide
// between files) share a single arena across calls and pass it here.
func ParseChunkIn(fset *source.FileSet, arena *ast.Arena, name string, src []byte) (*ast.Chunk, error) {
	p := New(fset, arena, name, src)
	chunk := p.parseChunk()
	return chunk, p.Errors().Err()
}

func (p *Parser) advance() {
	p.prevEnd = p.end
	p.tok = p.scanner.Scan(&p.val)
	p.pos = p.scanner.Pos()
	p.end = p.scanner.EndPos()
}

func (p *Parser) at(toks ...token.Token) bool {
	for _, t := range toks {
		if p.tok == t {
			return true
		}
	}
	return false
}

func (p *Parser) error(pos source.Pos, msg string) {
	p.errors.Add(p.file.Position(pos), msg)
}

func (p *Parser) errorExpected(msg string) {
	found := p.tok.String()
	if p.val.Raw != "" {
		found = p.val.Raw
	}
	p.error(p.pos, "expected "+msg+", found "+found)
}

// expect consumes the current token and returns its position if it
// matches any of toks; otherwise it records an error and returns
// (currentPos, false) without advancing, leaving recovery to the caller.
func (p *Parser) expect(toks ...token.Token) (source.Pos, bool) {
	if p.at(toks...) {
		pos := p.pos
		p.advance()
		return pos, true
	}
	p.errorExpected(oneOf(toks))
	return p.pos, false
}

func oneOf(toks []token.Token) string {
	if len(toks) == 1 {
		return toks[0].String()
	}
	s := "one of "
	for i, t := range toks {
		if i > 0 {
			s += ", "
		}
		s += t.String()
	}
	return s
}

// sync advances until the current token is in set or EOF, used to
// recover from a parse failure at statement granularity instead of
// aborting the whole chunk.
func (p *Parser) sync(set tokenSet) {
	for p.tok != token.EOF && !set[p.tok] {
		p.advance()
	}
}

// span returns the range from start to the end of the token most
// recently consumed by the caller (i.e. called right after the last
// expect()/advance() belonging to the construct being closed).
func (p *Parser) span(start source.Pos) source.Range {
	return source.Range{Begin: start, End: p.prevEnd}
}
