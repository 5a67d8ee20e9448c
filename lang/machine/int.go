package machine

import (
	"fmt"
	"strconv"

	"github.com/mbeckem/tiro-sub007/lang/token"
)

// Int is the type of an integer value.
type Int int64

var (
	_ Value     = Int(0)
	_ Ordered   = Int(0)
	_ HasBinary = Int(0)
	_ HasUnary  = Int(0)
)

func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }
func (i Int) Type() string   { return "int" }

// Cmp implements comparison of two Int values.
func (i Int) Cmp(v Value) (int, error) {
	j, ok := v.(Int)
	if !ok {
		return 0, fmt.Errorf("cannot compare int and %s", v.Type())
	}
	switch {
	case i > j:
		return +1, nil
	case i < j:
		return -1, nil
	default:
		return 0, nil
	}
}

func (i Int) Unary(op token.Token) (Value, error) {
	switch op {
	case token.MINUS:
		return -i, nil
	case token.PLUS:
		return i, nil
	case token.TILDE:
		return ^i, nil
	}
	return nil, nil
}

// Binary implements the arithmetic, bitwise and shift operators for Int
// operands. Mixed int/float operations promote to Float; the caller is
// responsible for retrying with y.Binary(op, i, !side) when this method
// declines (returns nil, nil), which happens whenever y is not an Int or
// Float.
func (i Int) Binary(op token.Token, y Value, side Side) (Value, error) {
	if yf, ok := y.(Float); ok {
		if side == Left {
			return Float(i).Binary(op, yf, Left)
		}
		return yf.Binary(op, Float(i), Right)
	}

	j, ok := y.(Int)
	if !ok {
		return nil, nil
	}
	x, z := i, j
	if side == Right {
		x, z = j, i
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
		return Float(x) / Float(z), nil
	case token.SLASHSLASH:
		if z == 0 {
			return nil, fmt.Errorf("integer division by zero")
		}
		return floorDiv(x, z), nil
	case token.PERCENT:
		if z == 0 {
			return nil, fmt.Errorf("integer modulo by zero")
		}
		return floorMod(x, z), nil
	case token.AMP:
		return x & z, nil
	case token.PIPE:
		return x | z, nil
	case token.CIRCUMFLEX:
		return x ^ z, nil
	case token.LTLT:
		if z < 0 {
			return nil, fmt.Errorf("negative shift count: %d", z)
		}
		return x << uint(z), nil
	case token.GTGT:
		if z < 0 {
			return nil, fmt.Errorf("negative shift count: %d", z)
		}
		return x >> uint(z), nil
	}
	return nil, nil
}

// floorDiv and floorMod implement Euclidean-style floor division and
// modulo, matching Python/Starlark semantics (result has the sign of the
// divisor) rather than Go's truncating division.
func floorDiv(x, y Int) Int {
	q := x / y
	if (x%y != 0) && ((x < 0) != (y < 0)) {
		q--
	}
	return q
}

func floorMod(x, y Int) Int {
	m := x % y
	if m != 0 && ((m < 0) != (y < 0)) {
		m += y
	}
	return m
}
