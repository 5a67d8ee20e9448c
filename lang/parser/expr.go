package parser

import (
	"github.com/mbeckem/tiro-sub007/lang/ast"
	"github.com/mbeckem/tiro-sub007/lang/source"
	"github.com/mbeckem/tiro-sub007/lang/token"
)

// binPrec gives each binary operator's left-binding precedence; higher
// binds tighter. Ladder (low to high, per the assignment level handled
// by the caller): ?? , || , && , equality, relational, bit-or, bit-xor,
// bit-and, shift, additive, multiplicative, power (right-assoc).
// `and`/`or` are accepted as keyword spellings of `&&`/`||` at the same
// precedence; `not` is a keyword spelling of unary `!`.
var binPrec = map[token.Token]int{
	token.QUESTQUEST: 1,
	token.OROR:        2,
	token.OR:          2,
	token.ANDAND:      3,
	token.AND:         3,
	token.EQ:          4, token.NE: 4,
	token.LT: 5, token.LE: 5, token.GT: 5, token.GE: 5,
	token.PIPE:       6,
	token.CIRCUMFLEX:  7,
	token.AMP:         8,
	token.LTLT:        9, token.GTGT: 9,
	token.PLUS: 10, token.MINUS: 10,
	token.STAR: 11, token.SLASH: 11, token.PERCENT: 11,
	token.STARSTAR: 12,
}

var rightAssoc = map[token.Token]bool{token.STARSTAR: true}

func isUnaryOp(tok token.Token) bool {
	switch tok {
	case token.PLUS, token.MINUS, token.TILDE, token.BANG, token.NOT:
		return true
	}
	return false
}

func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinExpr(1)
}

func (p *Parser) parseBinExpr(minPrec int) ast.Expr {
	start := p.pos
	left := p.parseUnary()

	for {
		prec, isBin := binPrec[p.tok]
		if !isBin || prec < minPrec {
			break
		}
		op := p.tok
		p.advance()
		nextMin := prec + 1
		if rightAssoc[op] {
			nextMin = prec
		}
		right := p.parseBinExpr(nextMin)
		left = ast.NewBinaryExpr(p.arena, p.span(start), op, left, right)
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if isUnaryOp(p.tok) {
		start := p.pos
		op := p.tok
		p.advance()
		x := p.parseUnary()
		return ast.NewUnaryExpr(p.arena, p.span(start), op, x)
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	start := p.pos
	x := p.parsePrimary()

	for {
		switch p.tok {
		case token.DOT:
			p.advance()
			if p.tok == token.TUPLE_FIELD {
				idx := uint32(p.val.Int)
				p.advance()
				x = ast.NewTupleFieldExpr(p.arena, p.span(start), x, idx)
			} else {
				name := p.val.Raw
				p.expect(token.IDENT)
				x = ast.NewSelectorExpr(p.arena, p.span(start), x, name, ast.AccessNormal)
			}
		case token.QUESTDOT:
			p.advance()
			name := p.val.Raw
			p.expect(token.IDENT)
			x = ast.NewSelectorExpr(p.arena, p.span(start), x, name, ast.AccessOptional)
		case token.LBRACK:
			p.advance()
			idx := p.parseExpr()
			p.expect(token.RBRACK)
			x = ast.NewIndexExpr(p.arena, p.span(start), x, idx, ast.AccessNormal)
		case token.QUESTLBRACK:
			p.advance()
			idx := p.parseExpr()
			p.expect(token.RBRACK)
			x = ast.NewIndexExpr(p.arena, p.span(start), x, idx, ast.AccessOptional)
		case token.LPAREN:
			x = p.parseCallArgs(x, start, ast.AccessNormal)
		case token.QUESTLPAREN:
			x = p.parseCallArgs(x, start, ast.AccessOptional)
		default:
			return x
		}
	}
}

func (p *Parser) parseCallArgs(callee ast.Expr, start source.Pos, access ast.AccessKind) ast.Expr {
	p.advance() // '(' or '?('
	var args []ast.Expr
	for !p.at(token.RPAREN, token.EOF) {
		args = append(args, p.parseExpr())
		if p.tok == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	return ast.NewCallExpr(p.arena, p.span(start), callee, args, access)
}

func (p *Parser) parsePrimary() ast.Expr {
	start := p.pos
	switch p.tok {
	case token.INT:
		v := p.val.Int
		p.advance()
		return ast.NewIntLit(p.arena, p.span(start), v)
	case token.FLOAT:
		v := p.val.Float
		p.advance()
		return ast.NewFloatLit(p.arena, p.span(start), v)
	case token.TRUE:
		p.advance()
		return ast.NewBoolLit(p.arena, p.span(start), true)
	case token.FALSE:
		p.advance()
		return ast.NewBoolLit(p.arena, p.span(start), false)
	case token.NULL:
		p.advance()
		return ast.NewNullLit(p.arena, p.span(start))
	case token.SYMBOL:
		name := p.val.String
		p.advance()
		return ast.NewSymbolLit(p.arena, p.span(start), name)
	case token.IDENT:
		name := p.val.Raw
		p.advance()
		return ast.NewIdentExpr(p.arena, p.span(start), name)
	case token.STRING_START:
		return p.parseStringExprOrGroup()
	case token.LBRACK:
		return p.parseArrayExpr()
	case token.MAP_LBRACE:
		return p.parseMapExpr()
	case token.SET_LBRACE:
		return p.parseSetExpr()
	case token.LBRACE:
		return p.parseRecordExpr()
	case token.FUNC:
		return p.parseFuncExpr()
	case token.LPAREN:
		return p.parseParenOrTupleExpr()
	default:
		p.errorExpected("expression")
		bad := ast.NewBadExpr(p.arena, p.span(start))
		if p.tok != token.EOF {
			p.advance()
		}
		return bad
	}
}

// parseStringExprOrGroup parses one interpolated string literal and, if
// immediately followed by another string literal with no intervening
// tokens, groups them into a StringGroupExpr per the "adjacent string
// literals" rule.
func (p *Parser) parseStringExprOrGroup() ast.Expr {
	start := p.pos
	first := p.parseStringExpr()
	if p.tok != token.STRING_START {
		return first
	}
	parts := []ast.Expr{first}
	for p.tok == token.STRING_START {
		parts = append(parts, p.parseStringExpr())
	}
	return ast.NewStringGroupExpr(p.arena, p.span(start), parts)
}

func (p *Parser) parseStringExpr() ast.Expr {
	start := p.pos
	p.expect(token.STRING_START)

	var parts []ast.Expr
	for !p.at(token.STRING_END, token.EOF) {
		switch p.tok {
		case token.STRING_LIT:
			litStart := p.pos
			val := p.val.String
			p.advance()
			parts = append(parts, ast.NewStringLit(p.arena, p.span(litStart), val))
		case token.STRING_VAR:
			varStart := p.pos
			name := p.val.String
			p.advance()
			parts = append(parts, ast.NewIdentExpr(p.arena, p.span(varStart), name))
		case token.STRING_BLOCK_START:
			p.advance()
			parts = append(parts, p.parseExpr())
			p.expect(token.STRING_BLOCK_END)
		default:
			p.errorExpected("string content")
			p.advance()
		}
	}
	p.expect(token.STRING_END)

	if len(parts) == 1 {
		if lit, isLit := parts[0].(*ast.StringLit); isLit {
			return lit
		}
	}
	if len(parts) == 0 {
		return ast.NewStringLit(p.arena, p.span(start), "")
	}
	return ast.NewStringInterpExpr(p.arena, p.span(start), parts)
}

func (p *Parser) parseArrayExpr() ast.Expr {
	start := p.pos
	p.advance() // '['
	var elems []ast.Expr
	for !p.at(token.RBRACK, token.EOF) {
		elems = append(elems, p.parseExpr())
		if p.tok == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBRACK)
	return ast.NewArrayExpr(p.arena, p.span(start), elems)
}

func (p *Parser) parseMapExpr() ast.Expr {
	start := p.pos
	p.advance() // 'map{'
	var entries []ast.MapEntry
	for !p.at(token.RBRACE, token.EOF) {
		key := p.parseExpr()
		p.expect(token.COLON)
		val := p.parseExpr()
		entries = append(entries, ast.MapEntry{Key: key, Value: val})
		if p.tok == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBRACE)
	return ast.NewMapExpr(p.arena, p.span(start), entries)
}

func (p *Parser) parseSetExpr() ast.Expr {
	start := p.pos
	p.advance() // 'set{'
	var elems []ast.Expr
	for !p.at(token.RBRACE, token.EOF) {
		elems = append(elems, p.parseExpr())
		if p.tok == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBRACE)
	return ast.NewSetExpr(p.arena, p.span(start), elems)
}

func (p *Parser) parseRecordExpr() ast.Expr {
	start := p.pos
	p.advance() // '{'
	var names []string
	var values []ast.Expr
	for !p.at(token.RBRACE, token.EOF) {
		name := p.val.Raw
		p.expect(token.IDENT)
		p.expect(token.COLON)
		values = append(values, p.parseExpr())
		names = append(names, name)
		if p.tok == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RBRACE)
	return ast.NewRecordExpr(p.arena, p.span(start), names, values)
}

func (p *Parser) parseFuncExpr() ast.Expr {
	start := p.pos
	p.advance() // 'func'
	return p.parseFuncExprAfterName(start)
}

// parseFuncExprAfterName parses the `(params) { body }` tail of a
// function, shared by anonymous func expressions and named func decls
// (whose 'func' and name tokens the caller has already consumed).
func (p *Parser) parseFuncExprAfterName(start source.Pos) *ast.FuncExpr {
	p.expect(token.LPAREN)
	var params []ast.Binding
	for !p.at(token.RPAREN, token.EOF) {
		params = append(params, p.parseBinding())
		if p.tok == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	body := p.parseBraceBlock()
	return ast.NewFuncExpr(p.arena, p.span(start), params, body)
}

func (p *Parser) parseParenOrTupleExpr() ast.Expr {
	start := p.pos
	p.advance() // '('
	if p.tok == token.RPAREN {
		p.advance()
		return ast.NewTupleExpr(p.arena, p.span(start), nil)
	}

	first := p.parseExpr()
	if p.tok == token.RPAREN {
		p.advance()
		return ast.NewParenExpr(p.arena, p.span(start), first)
	}

	elems := []ast.Expr{first}
	for p.tok == token.COMMA {
		p.advance()
		if p.tok == token.RPAREN {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	p.expect(token.RPAREN)
	return ast.NewTupleExpr(p.arena, p.span(start), elems)
}
