package machine

import (
	"fmt"

	"github.com/mbeckem/tiro-sub007/lang/compiler"
	"github.com/mbeckem/tiro-sub007/lang/token"
)

// Compare, Binary and Unary are the operator-dispatch entry points called by
// the interpreter loop in machine.go. They never call a HasBinary/HasUnary/
// Ordered/HasEqual method directly on client code's behalf; all such calls
// are centralized here, adapted from the dispatch shape of Starlark's
// eval.go (see the package doc comment in machine.go).

// Truth reports the truth value of x: every value is truthy except Nil,
// the boolean false, and a Sequence or Indexable value of length 0 (such
// as an empty string, tuple, array or map).
func Truth(x Value) Bool {
	switch x := x.(type) {
	case NilType:
		return False
	case Bool:
		return x
	case Sequence:
		return Bool(x.Len() != 0)
	case Indexable:
		return Bool(x.Len() != 0)
	}
	return True
}

// Iterate returns an Iterator over x, or nil if x is not iterable.
func Iterate(x Value) Iterator {
	if it, ok := x.(Iterable); ok {
		return it.Iterate()
	}
	return nil
}

// Compare implements comparison of two operands for the six comparison
// opcodes (==, !=, <, <=, >, >=). Equality first tries a HasEqual
// implementation, then falls back to Ordered.Cmp == 0, then to Go identity
// for everything else (so two Nil values are equal, two distinct *Array
// values are not unless HasEqual says otherwise).
func Compare(op token.Token, x, y Value) (bool, error) {
	if op == token.EQ || op == token.NE {
		eq, err := equal(x, y)
		if err != nil {
			return false, err
		}
		if op == token.NE {
			return !eq, nil
		}
		return eq, nil
	}

	xo, ok := x.(Ordered)
	if !ok {
		return false, fmt.Errorf("%s %s %s not implemented", x.Type(), op, y.Type())
	}
	c, err := xo.Cmp(y)
	if err != nil {
		return false, err
	}
	switch op {
	case token.LT:
		return c < 0, nil
	case token.LE:
		return c <= 0, nil
	case token.GT:
		return c > 0, nil
	case token.GE:
		return c >= 0, nil
	}
	return false, fmt.Errorf("unknown comparison operator %s", op)
}

func equal(x, y Value) (bool, error) {
	if xe, ok := x.(HasEqual); ok {
		return xe.Equals(y)
	}
	if ye, ok := y.(HasEqual); ok {
		return ye.Equals(x)
	}
	if xo, ok := x.(Ordered); ok {
		if _, ok := y.(Ordered); !ok || fmt.Sprintf("%T", x) != fmt.Sprintf("%T", y) {
			return false, nil
		}
		c, err := xo.Cmp(y)
		if err != nil {
			return false, err
		}
		return c == 0, nil
	}
	return x == y, nil
}

// Binary implements the binary arithmetic, bitwise and shift operators. It
// tries x.Binary(op, y, Left) first, then y.Binary(op, x, Right); either side
// may decline by returning (nil, nil).
func Binary(op token.Token, x, y Value) (Value, error) {
	if xb, ok := x.(HasBinary); ok {
		z, err := xb.Binary(op, y, Left)
		if z != nil || err != nil {
			return z, err
		}
	}
	if yb, ok := y.(HasBinary); ok {
		z, err := yb.Binary(op, x, Right)
		if z != nil || err != nil {
			return z, err
		}
	}
	return nil, fmt.Errorf("unsupported binary operation: %s %s %s", x.Type(), op, y.Type())
}

// Unary implements the unary operators (+, -, ~, #).
func Unary(op token.Token, x Value) (Value, error) {
	if op == token.POUND {
		switch x := x.(type) {
		case Sequence:
			return Int(x.Len()), nil
		case Indexable:
			return Int(x.Len()), nil
		}
		return nil, fmt.Errorf("value of type %s has no length", x.Type())
	}

	if xu, ok := x.(HasUnary); ok {
		y, err := xu.Unary(op)
		if y != nil || err != nil {
			return y, err
		}
	}
	return nil, fmt.Errorf("unsupported unary operation: %s%s", op, x.Type())
}

// getIndex implements the INDEX opcode (x[y]): indexing into an Indexable
// normalizes negative indices relative to Len, indexing into a Mapping is a
// key lookup.
func getIndex(x, y Value) (Value, error) {
	switch x := x.(type) {
	case Mapping:
		v, found, err := x.Get(y)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("key not found: %s", y)
		}
		return v, nil
	case Indexable:
		i, ok := y.(Int)
		if !ok {
			return nil, fmt.Errorf("%s index: got %s, want int", x.Type(), y.Type())
		}
		n := x.Len()
		idx := int(i)
		if idx < 0 {
			idx += n
		}
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("%s index %d out of range (len %d)", x.Type(), i, n)
		}
		return x.Index(idx), nil
	}
	return nil, fmt.Errorf("unhandled index operation: %s[%s]", x.Type(), y.Type())
}

// setIndex implements the SETINDEX opcode (x[y] = z).
func setIndex(x, y, z Value) error {
	switch x := x.(type) {
	case HasSetKey:
		return x.SetKey(y, z)
	case HasSetIndex:
		i, ok := y.(Int)
		if !ok {
			return fmt.Errorf("%s index: got %s, want int", x.Type(), y.Type())
		}
		n := x.Len()
		idx := int(i)
		if idx < 0 {
			idx += n
		}
		if idx < 0 || idx >= n {
			return fmt.Errorf("%s index %d out of range (len %d)", x.Type(), i, n)
		}
		return x.SetIndex(idx, z)
	}
	return fmt.Errorf("%s value does not support index assignment", x.Type())
}

// getAttr implements the ATTR opcode (y = x.name).
func getAttr(x Value, name string) (Value, error) {
	xa, ok := x.(HasAttrs)
	if !ok {
		return nil, fmt.Errorf("%s value has no field or method %q", x.Type(), name)
	}
	v, err := xa.Attr(name)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, NoSuchAttrError(fmt.Sprintf("%s value has no field or method %q", x.Type(), name))
	}
	return v, nil
}

// setField implements the SETFIELD opcode (x.name = y).
func setField(x Value, name string, y Value) error {
	xf, ok := x.(HasSetField)
	if !ok {
		return fmt.Errorf("cannot assign to field %q of %s value", name, x.Type())
	}
	return xf.SetField(name, y)
}

// cmpToken, binToken and unaryToken translate a compiler.Opcode into the
// token.Token the dispatch functions above expect. They are written as
// explicit switches rather than index arithmetic: compiler.Opcode and
// token.Token are declared in a similar relative order for readability, but
// nothing enforces they stay in lockstep, so relying on that order broke
// comparison dispatch (LE and GT are transposed between the two enums).
func cmpToken(op compiler.Opcode) token.Token {
	switch op {
	case compiler.LT:
		return token.LT
	case compiler.LE:
		return token.LE
	case compiler.GT:
		return token.GT
	case compiler.GE:
		return token.GE
	case compiler.EQL:
		return token.EQ
	case compiler.NEQ:
		return token.NE
	}
	panic(fmt.Sprintf("not a comparison opcode: %s", op))
}

func binToken(op compiler.Opcode) token.Token {
	switch op {
	case compiler.PLUS:
		return token.PLUS
	case compiler.MINUS:
		return token.MINUS
	case compiler.STAR:
		return token.STAR
	case compiler.SLASH:
		return token.SLASH
	case compiler.SLASHSLASH:
		return token.SLASHSLASH
	case compiler.PERCENT:
		return token.PERCENT
	case compiler.CIRCUMFLEX:
		return token.CIRCUMFLEX
	case compiler.AMPERSAND:
		return token.AMP
	case compiler.PIPE:
		return token.PIPE
	case compiler.TILDE:
		return token.TILDE
	case compiler.LTLT:
		return token.LTLT
	case compiler.GTGT:
		return token.GTGT
	}
	panic(fmt.Sprintf("not a binary opcode: %s", op))
}

func unaryToken(op compiler.Opcode) token.Token {
	switch op {
	case compiler.UPLUS:
		return token.PLUS
	case compiler.UMINUS:
		return token.MINUS
	case compiler.UTILDE:
		return token.TILDE
	case compiler.LEN:
		return token.POUND
	}
	panic(fmt.Sprintf("not a unary opcode: %s", op))
}
