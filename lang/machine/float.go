package machine

import (
	"fmt"
	"math"

	"github.com/mbeckem/tiro-sub007/lang/token"
)

// Float is the type of a floating point number.
type Float float64

var (
	_ Value     = Float(0)
	_ Ordered   = Float(0)
	_ HasBinary = Float(0)
	_ HasUnary  = Float(0)
)

func (f Float) String() string {
	return fmt.Sprintf("%g", f)
}

func (f Float) Type() string { return "float" }

// Cmp implements comparison of two Float values.
func (f Float) Cmp(v Value) (int, error) {
	g := v.(Float)
	return floatCmp(f, g), nil
}

// floatCmp performs a three-valued comparison on floats, which are totally
// ordered with NaN > +Inf.
func floatCmp(x, y Float) int {
	if x > y {
		return +1
	} else if x < y {
		return -1
	} else if x == y {
		return 0
	}

	// At least one operand is NaN.
	if x == x {
		return -1 // y is NaN
	} else if y == y {
		return +1 // x is NaN
	}
	return 0 // both NaN
}

func (f Float) Unary(op token.Token) (Value, error) {
	switch op {
	case token.MINUS:
		return -f, nil
	case token.PLUS:
		return f, nil
	}
	return nil, nil
}

// Binary implements the arithmetic operators for Float operands, promoting
// an Int on the other side to Float. Bitwise and shift operators are not
// defined on floats and are left to the declining (nil, nil) case.
func (f Float) Binary(op token.Token, y Value, side Side) (Value, error) {
	var g Float
	switch y := y.(type) {
	case Float:
		g = y
	case Int:
		g = Float(y)
	default:
		return nil, nil
	}

	x, z := f, g
	if side == Right {
		x, z = g, f
	}

	switch op {
	case token.PLUS:
		return x + z, nil
	case token.MINUS:
		return x - z, nil
	case token.STAR:
		return x * z, nil
	case token.SLASH:
		if z == 0 {
			return nil, fmt.Errorf("floating-point division by zero")
		}
		return x / z, nil
	case token.SLASHSLASH:
		if z == 0 {
			return nil, fmt.Errorf("floating-point division by zero")
		}
		return Float(math.Floor(float64(x / z))), nil
	case token.PERCENT:
		if z == 0 {
			return nil, fmt.Errorf("floating-point modulo by zero")
		}
		m := Float(math.Mod(float64(x), float64(z)))
		if m != 0 && (m < 0) != (z < 0) {
			m += z
		}
		return m, nil
	}
	return nil, nil
}
