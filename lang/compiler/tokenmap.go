package compiler

import (
	"fmt"

	"github.com/mbeckem/tiro-sub007/lang/token"
)

// cmpOpcode, arithOpcode and unaryOpcode are the inverse of the
// cmpToken/binToken/unaryToken functions in lang/machine/ops.go: they
// translate the token.Token carried by an ir.BinaryOp/ir.UnaryOp into the
// compiler.Opcode the bytecode generator must emit. Written as explicit
// switches, mirroring the opcode side, rather than index arithmetic for the
// same reason: nothing enforces the two enums stay in lockstep.
func cmpOpcode(t token.Token) Opcode {
	switch t {
	case token.LT:
		return LT
	case token.LE:
		return LE
	case token.GT:
		return GT
	case token.GE:
		return GE
	case token.EQ:
		return EQL
	case token.NE:
		return NEQ
	}
	panic(fmt.Sprintf("not a comparison token: %s", t))
}

func arithOpcode(t token.Token) Opcode {
	switch t {
	case token.PLUS:
		return PLUS
	case token.MINUS:
		return MINUS
	case token.STAR:
		return STAR
	case token.SLASH:
		return SLASH
	case token.SLASHSLASH:
		return SLASHSLASH
	case token.PERCENT:
		return PERCENT
	case token.CIRCUMFLEX:
		return CIRCUMFLEX
	case token.AMP:
		return AMPERSAND
	case token.PIPE:
		return PIPE
	case token.TILDE:
		return TILDE
	case token.LTLT:
		return LTLT
	case token.GTGT:
		return GTGT
	}
	panic(fmt.Sprintf("not a binary token: %s", t))
}

// binOpcode dispatches a token.Token carried by an ir.BinaryOp to the
// right opcode family: comparisons (cmpOpcode) or arithmetic/bitwise
// (arithOpcode). ir.BinaryOp does not distinguish the two kinds of
// token at the type level, so the generator always goes through this
// rather than calling either half directly.
func binOpcode(t token.Token) Opcode {
	switch t {
	case token.LT, token.LE, token.GT, token.GE, token.EQ, token.NE:
		return cmpOpcode(t)
	default:
		return arithOpcode(t)
	}
}

func unaryOpcode(t token.Token) Opcode {
	switch t {
	case token.PLUS:
		return UPLUS
	case token.MINUS:
		return UMINUS
	case token.TILDE:
		return UTILDE
	case token.POUND:
		return LEN
	}
	panic(fmt.Sprintf("not a unary token: %s", t))
}
