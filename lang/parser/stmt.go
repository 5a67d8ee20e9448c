package parser

import (
	"github.com/mbeckem/tiro-sub007/lang/ast"
	"github.com/mbeckem/tiro-sub007/lang/token"
)

// parseStmt parses a single statement, returning nil for a ";" that
// should simply be skipped.
func (p *Parser) parseStmt() ast.Stmt {
	switch p.tok {
	case token.SEMI:
		p.advance()
		return nil

	case token.VAR:
		return p.parseVarDecl()
	case token.CONST:
		return p.parseConstDecl()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.BREAK:
		start := p.pos
		p.advance()
		p.consumeSemi()
		return ast.NewBreakStmt(p.arena, p.span(start))
	case token.CONTINUE:
		start := p.pos
		p.advance()
		p.consumeSemi()
		return ast.NewContinueStmt(p.arena, p.span(start))
	case token.RETURN:
		return p.parseReturnStmt()
	case token.DEFER:
		return p.parseDeferStmt()
	case token.FUNC:
		return p.parseFuncDecl(false)
	case token.EXPORT:
		return p.parseExportOrExportedFunc()
	case token.IMPORT:
		return p.parseImportStmt()

	default:
		return p.parseSimpleStmt()
	}
}

func (p *Parser) consumeSemi() {
	if p.tok == token.SEMI {
		p.advance()
	}
}

func (p *Parser) parseBindingList() []ast.Binding {
	var names []ast.Binding
	if p.tok == token.LPAREN {
		p.advance()
		for {
			names = append(names, p.parseBinding())
			if p.tok == token.COMMA {
				p.advance()
				continue
			}
			break
		}
		p.expect(token.RPAREN)
		return names
	}
	names = append(names, p.parseBinding())
	return names
}

func (p *Parser) parseBinding() ast.Binding {
	pos := p.pos
	name := p.val.Raw
	if _, ok := p.expect(token.IDENT); !ok {
		return ast.Binding{Name: "", Pos: pos}
	}
	return ast.Binding{Name: name, Pos: pos}
}

func (p *Parser) parseVarDecl() ast.Stmt {
	start := p.pos
	p.advance() // 'var'
	names := p.parseBindingList()

	var init ast.Expr
	if p.tok == token.ASSIGN {
		p.advance()
		init = p.parseExpr()
	}
	p.consumeSemi()
	return ast.NewVarDecl(p.arena, p.span(start), names, init)
}

func (p *Parser) parseConstDecl() ast.Stmt {
	start := p.pos
	p.advance() // 'const'
	names := p.parseBindingList()

	var init ast.Expr
	if _, ok := p.expect(token.ASSIGN); ok {
		init = p.parseExpr()
	} else {
		init = ast.NewBadExpr(p.arena, p.span(p.pos))
	}
	p.consumeSemi()
	return ast.NewConstDecl(p.arena, p.span(start), names, init)
}

func (p *Parser) parseIfStmt() ast.Stmt {
	start := p.pos
	p.advance() // 'if'
	cond := p.parseExpr()
	then := p.parseBraceBlock()

	var els *ast.Block
	if p.tok == token.ELSE {
		p.advance()
		if p.tok == token.IF {
			elseStart := p.pos
			inner := p.parseIfStmt()
			els = ast.NewBlock(p.arena, p.span(elseStart), []ast.Stmt{inner})
		} else {
			els = p.parseBraceBlock()
		}
	}
	return ast.NewIfStmt(p.arena, p.span(start), cond, then, els)
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	start := p.pos
	p.loopDepth++
	defer func() { p.loopDepth-- }()

	p.advance() // 'while'
	cond := p.parseExpr()
	body := p.parseBraceBlock()
	return ast.NewWhileStmt(p.arena, p.span(start), cond, body)
}

func (p *Parser) parseForStmt() ast.Stmt {
	start := p.pos
	p.loopDepth++
	defer func() { p.loopDepth-- }()

	p.advance() // 'for'

	var init ast.Stmt
	if p.tok != token.SEMI {
		init = p.parseForClauseNoSemi()
	}
	p.expect(token.SEMI)

	var cond ast.Expr
	if p.tok != token.SEMI {
		cond = p.parseExpr()
	}
	p.expect(token.SEMI)

	var step ast.Stmt
	if p.tok != token.LBRACE {
		step = p.parseForClauseNoSemi()
	}

	body := p.parseBraceBlock()
	return ast.NewForStmt(p.arena, p.span(start), init, cond, step, body)
}

// parseForClauseNoSemi parses one of the three semicolon-separated clauses
// of a three-part for loop: either a var declaration (without consuming a
// trailing ';', unlike a standalone var statement) or a plain simple
// statement (expression or assignment).
func (p *Parser) parseForClauseNoSemi() ast.Stmt {
	if p.tok == token.VAR {
		start := p.pos
		p.advance() // 'var'
		names := p.parseBindingList()
		var init ast.Expr
		if p.tok == token.ASSIGN {
			p.advance()
			init = p.parseExpr()
		}
		return ast.NewVarDecl(p.arena, p.span(start), names, init)
	}
	return p.parseSimpleStmtNoSemi()
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	start := p.pos
	p.advance() // 'return'
	var x ast.Expr
	if !p.at(token.SEMI, token.RBRACE, token.EOF) {
		x = p.parseExpr()
	}
	p.consumeSemi()
	return ast.NewReturnStmt(p.arena, p.span(start), x)
}

func (p *Parser) parseDeferStmt() ast.Stmt {
	start := p.pos
	p.advance() // 'defer'
	x := p.parseExpr()
	p.consumeSemi()
	return ast.NewDeferStmt(p.arena, p.span(start), x)
}

func (p *Parser) parseFuncDecl(exported bool) ast.Stmt {
	start := p.pos
	p.advance() // 'func'
	namePos := p.pos
	name := p.val.Raw
	p.expect(token.IDENT)
	fn := p.parseFuncExprAfterName(start)
	return ast.NewFuncDecl(p.arena, p.span(start), name, namePos, exported, fn)
}

func (p *Parser) parseExportOrExportedFunc() ast.Stmt {
	start := p.pos
	p.advance() // 'export'
	if p.tok == token.FUNC {
		return p.parseFuncDecl(true)
	}
	name := p.val.Raw
	p.expect(token.IDENT)
	p.consumeSemi()
	return ast.NewExportStmt(p.arena, p.span(start), name)
}

func (p *Parser) parseImportStmt() ast.Stmt {
	start := p.pos
	p.advance() // 'import'
	name := p.val.Raw
	p.expect(token.IDENT)
	p.consumeSemi()
	return ast.NewImportStmt(p.arena, p.span(start), name)
}

// parseSimpleStmt parses an expression statement or an assignment and
// consumes a trailing ';'.
func (p *Parser) parseSimpleStmt() ast.Stmt {
	s := p.parseSimpleStmtNoSemi()
	p.consumeSemi()
	return s
}

func (p *Parser) parseSimpleStmtNoSemi() ast.Stmt {
	start := p.pos
	x := p.parseExpr()

	if op, isAssign := assignOpFor(p.tok); isAssign {
		p.advance()
		rhs := p.parseExpr()
		return ast.NewAssignStmt(p.arena, p.span(start), x, op, rhs)
	}
	return ast.NewExprStmt(p.arena, p.span(start), x)
}

func assignOpFor(tok token.Token) (ast.AssignOp, bool) {
	switch tok {
	case token.ASSIGN:
		return ast.AssignPlain, true
	case token.PLUS_EQ:
		return ast.AssignAdd, true
	case token.MINUS_EQ:
		return ast.AssignSub, true
	case token.STAR_EQ:
		return ast.AssignMul, true
	case token.SLASH_EQ:
		return ast.AssignDiv, true
	case token.PERCENT_EQ:
		return ast.AssignMod, true
	case token.AMP_EQ:
		return ast.AssignAnd, true
	case token.PIPE_EQ:
		return ast.AssignOr, true
	case token.CIRC_EQ:
		return ast.AssignXor, true
	case token.LTLT_EQ:
		return ast.AssignShl, true
	case token.GTGT_EQ:
		return ast.AssignShr, true
	}
	return 0, false
}
