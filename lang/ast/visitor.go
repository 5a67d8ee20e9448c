package ast

// Visitor is implemented by callers of Walk. Visit is called for n before
// its children are visited; if it returns nil, the children of n are not
// visited (mirroring go/ast.Visitor).
type Visitor interface {
	Visit(n Node) Visitor
}

// VisitorFunc adapts a plain function to the Visitor interface.
type VisitorFunc func(n Node) bool

func (f VisitorFunc) Visit(n Node) Visitor {
	if f(n) {
		return f
	}
	return nil
}

// Walk traverses the AST rooted at n in depth-first order.
func Walk(v Visitor, n Node) {
	if n == nil {
		return
	}
	n.Walk(v)
}

// Inspect traverses the AST rooted at n, calling f for each node; f
// returns false to skip the node's children.
func Inspect(n Node, f func(Node) bool) {
	Walk(VisitorFunc(f), n)
}
