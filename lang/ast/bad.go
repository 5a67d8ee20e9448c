package ast

import "github.com/mbeckem/tiro-sub007/lang/source"

// BadExpr stands in for an expression the parser could not make sense
// of, covering the span it skipped while recovering. Always HasError.
type BadExpr struct{ exprBase }

func NewBadExpr(a *Arena, span source.Range) *BadExpr {
	n := &BadExpr{exprBase: exprBase{newBase(a, KindBadExpr, span)}}
	n.SetError()
	return n
}
func (n *BadExpr) Walk(v Visitor) { v.Visit(n) }

// BadStmt stands in for a statement the parser could not make sense of.
type BadStmt struct{ stmtBase }

func NewBadStmt(a *Arena, span source.Range) *BadStmt {
	n := &BadStmt{stmtBase: stmtBase{newBase(a, KindBadStmt, span)}}
	n.SetError()
	return n
}
func (n *BadStmt) Walk(v Visitor) { v.Visit(n) }
