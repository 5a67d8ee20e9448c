package ast

import (
	"fmt"
	"io"
	"strings"
)

// Print writes an indented dump of n to w, one node per line, each
// prefixed with its AstId so diagnostics and golden-file tests can
// reference a stable identity. Grounded on the kind of tree dump
// original_source's ast/dump.cpp produces for its own --dump-ast support.
func Print(w io.Writer, n Node) {
	p := &printer{w: w}
	p.node(n, 0)
}

type printer struct {
	w io.Writer
}

func (p *printer) line(depth int, format string, args ...any) {
	fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (p *printer) node(n Node, depth int) {
	if n == nil {
		return
	}
	errMark := ""
	if n.HasError() {
		errMark = " !error"
	}
	switch n := n.(type) {
	case *Chunk:
		p.line(depth, "#%d chunk %q%s", n.AstId(), n.Name, errMark)
		p.node(n.Block, depth+1)
	case *Block:
		p.line(depth, "#%d block {stmts=%d}%s", n.AstId(), len(n.Stmts), errMark)
		for _, s := range n.Stmts {
			p.node(s, depth+1)
		}
	case *VarDecl:
		p.line(depth, "#%d var_decl %s%s", n.AstId(), names(n.Names), errMark)
		p.node(n.Init, depth+1)
	case *ConstDecl:
		p.line(depth, "#%d const_decl %s%s", n.AstId(), names(n.Names), errMark)
		p.node(n.Init, depth+1)
	case *AssignStmt:
		p.line(depth, "#%d assign_stmt op=%d%s", n.AstId(), n.Op, errMark)
		p.node(n.Left, depth+1)
		p.node(n.Right, depth+1)
	case *ExprStmt:
		p.line(depth, "#%d expr_stmt%s", n.AstId(), errMark)
		p.node(n.X, depth+1)
	case *IfStmt:
		p.line(depth, "#%d if_stmt%s", n.AstId(), errMark)
		p.node(n.Cond, depth+1)
		p.node(n.Then, depth+1)
		if n.Else != nil {
			p.node(n.Else, depth+1)
		}
	case *WhileStmt:
		p.line(depth, "#%d while_stmt%s", n.AstId(), errMark)
		p.node(n.Cond, depth+1)
		p.node(n.Body, depth+1)
	case *ForStmt:
		p.line(depth, "#%d for_stmt%s", n.AstId(), errMark)
		p.node(n.Init, depth+1)
		p.node(n.Cond, depth+1)
		p.node(n.Step, depth+1)
		p.node(n.Body, depth+1)
	case *BreakStmt:
		p.line(depth, "#%d break_stmt%s", n.AstId(), errMark)
	case *ContinueStmt:
		p.line(depth, "#%d continue_stmt%s", n.AstId(), errMark)
	case *ReturnStmt:
		p.line(depth, "#%d return_stmt%s", n.AstId(), errMark)
		p.node(n.X, depth+1)
	case *DeferStmt:
		p.line(depth, "#%d defer_stmt%s", n.AstId(), errMark)
		p.node(n.X, depth+1)
	case *FuncDecl:
		p.line(depth, "#%d func_decl %s exported=%v%s", n.AstId(), n.Name, n.Exported, errMark)
		p.node(n.Fn, depth+1)
	case *ImportStmt:
		p.line(depth, "#%d import_stmt %s%s", n.AstId(), n.Name, errMark)
	case *ExportStmt:
		p.line(depth, "#%d export_stmt %s%s", n.AstId(), n.Name, errMark)
	case *IdentExpr:
		p.line(depth, "#%d ident_expr %s%s", n.AstId(), n.Name, errMark)
	case *IntLit:
		p.line(depth, "#%d int_lit %d%s", n.AstId(), n.Value, errMark)
	case *FloatLit:
		p.line(depth, "#%d float_lit %g%s", n.AstId(), n.Value, errMark)
	case *StringLit:
		p.line(depth, "#%d string_lit %q%s", n.AstId(), n.Value, errMark)
	case *BoolLit:
		p.line(depth, "#%d bool_lit %v%s", n.AstId(), n.Value, errMark)
	case *NullLit:
		p.line(depth, "#%d null_lit%s", n.AstId(), errMark)
	case *SymbolLit:
		p.line(depth, "#%d symbol_lit #%s%s", n.AstId(), n.Name, errMark)
	case *StringGroupExpr:
		p.line(depth, "#%d string_group_expr {parts=%d}%s", n.AstId(), len(n.Parts), errMark)
		for _, c := range n.Parts {
			p.node(c, depth+1)
		}
	case *StringInterpExpr:
		p.line(depth, "#%d string_interp_expr {parts=%d}%s", n.AstId(), len(n.Parts), errMark)
		for _, c := range n.Parts {
			p.node(c, depth+1)
		}
	case *TupleExpr:
		p.line(depth, "#%d tuple_expr {elems=%d}%s", n.AstId(), len(n.Elems), errMark)
		for _, e := range n.Elems {
			p.node(e, depth+1)
		}
	case *ArrayExpr:
		p.line(depth, "#%d array_expr {elems=%d}%s", n.AstId(), len(n.Elems), errMark)
		for _, e := range n.Elems {
			p.node(e, depth+1)
		}
	case *MapExpr:
		p.line(depth, "#%d map_expr {entries=%d}%s", n.AstId(), len(n.Entries), errMark)
		for _, e := range n.Entries {
			p.node(e.Key, depth+1)
			p.node(e.Value, depth+1)
		}
	case *SetExpr:
		p.line(depth, "#%d set_expr {elems=%d}%s", n.AstId(), len(n.Elems), errMark)
		for _, e := range n.Elems {
			p.node(e, depth+1)
		}
	case *RecordExpr:
		p.line(depth, "#%d record_expr %s%s", n.AstId(), strings.Join(n.Names, ","), errMark)
		for _, v := range n.Values {
			p.node(v, depth+1)
		}
	case *FuncExpr:
		p.line(depth, "#%d func_expr %s%s", n.AstId(), names(n.Params), errMark)
		p.node(n.Body, depth+1)
	case *UnaryExpr:
		p.line(depth, "#%d unary_expr %s%s", n.AstId(), n.Op, errMark)
		p.node(n.X, depth+1)
	case *BinaryExpr:
		p.line(depth, "#%d binary_expr %s%s", n.AstId(), n.Op, errMark)
		p.node(n.X, depth+1)
		p.node(n.Y, depth+1)
	case *CallExpr:
		p.line(depth, "#%d call_expr access=%d {args=%d}%s", n.AstId(), n.Access, len(n.Args), errMark)
		p.node(n.Callee, depth+1)
		for _, arg := range n.Args {
			p.node(arg, depth+1)
		}
	case *IndexExpr:
		p.line(depth, "#%d index_expr access=%d%s", n.AstId(), n.Access, errMark)
		p.node(n.X, depth+1)
		p.node(n.Index, depth+1)
	case *SelectorExpr:
		p.line(depth, "#%d selector_expr .%s access=%d%s", n.AstId(), n.Name, n.Access, errMark)
		p.node(n.X, depth+1)
	case *TupleFieldExpr:
		p.line(depth, "#%d tuple_field_expr .%d%s", n.AstId(), n.Index, errMark)
		p.node(n.X, depth+1)
	case *ParenExpr:
		p.line(depth, "#%d paren_expr%s", n.AstId(), errMark)
		p.node(n.X, depth+1)
	default:
		p.line(depth, "#%d %s%s", n.AstId(), n.Kind(), errMark)
	}
}

func names(bs []Binding) string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = b.Name
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
