package scanner

import (
	"strings"

	"github.com/mbeckem/tiro-sub007/lang/source"
	"github.com/mbeckem/tiro-sub007/lang/token"
)

func isDecimal(r rune) bool     { return '0' <= r && r <= '9' }
func isHexadecimal(r rune) bool { return isDecimal(r) || 'a' <= r && r <= 'f' || 'A' <= r && r <= 'F' }
func isOctal(r rune) bool       { return '0' <= r && r <= '7' }
func isBinary(r rune) bool      { return r == '0' || r == '1' }

func digitVal(r rune) int {
	switch {
	case '0' <= r && r <= '9':
		return int(r - '0')
	case 'a' <= r && r <= 'z':
		return int(r-'a') + 10
	case 'A' <= r && r <= 'Z':
		return int(r-'A') + 10
	}
	return 36
}

// scanNumber consumes an integer or floating-point literal. An optional
// base prefix (0b, 0o, 0x) is consumed; underscores anywhere within the
// digits are ignored; a '.' introduces a fractional part using the same
// base, accumulated via Horner's method with base_inv = 1/base. Integer
// accumulation overflow is a lexical error that still yields a token (with
// value 0). An alphabetic character immediately following the numeric
// body is a lexical error but the token is still emitted.
func (s *Scanner) scanNumber(tv *token.Value, pos source.Pos, start int) token.Token {
	base := 10
	isFloat := false

	if s.cur == '0' {
		switch s.peek() {
		case 'b', 'B':
			base = 2
			s.advance()
			s.advance()
		case 'o', 'O':
			base = 8
			s.advance()
			s.advance()
		case 'x', 'X':
			base = 16
			s.advance()
			s.advance()
		}
	}

	digitOK := func(r rune) bool {
		switch base {
		case 2:
			return isBinary(r)
		case 8:
			return isOctal(r)
		case 16:
			return isHexadecimal(r)
		default:
			return isDecimal(r)
		}
	}

	var (
		intVal      int64
		overflowed  bool
		fracVal     float64
		fracScale   = 1.0 / float64(base)
		fracWeight  = fracScale
		sawDigit    bool
	)

	for digitOK(s.cur) || s.cur == '_' {
		if s.cur == '_' {
			s.advance()
			continue
		}
		d := digitVal(s.cur)
		nv := intVal*int64(base) + int64(d)
		if nv < intVal {
			overflowed = true
		}
		intVal = nv
		fracVal = fracVal // unchanged while in integer part
		sawDigit = true
		s.advance()
	}

	if s.cur == '.' && digitOK(rune(s.peek())) {
		isFloat = true
		s.advance() // consume '.'
		floatBase := float64(intVal)
		for digitOK(s.cur) || s.cur == '_' {
			if s.cur == '_' {
				s.advance()
				continue
			}
			d := digitVal(s.cur)
			floatBase += float64(d) * fracWeight
			fracWeight *= fracScale
			s.advance()
			sawDigit = true
		}
		fracVal = floatBase
	}

	illegalSuffix := false
	if isLetter(s.cur) {
		illegalSuffix = true
		for isLetter(s.cur) || isDigit(s.cur) {
			s.advance()
		}
	}

	lit := string(s.src[start:s.off])
	*tv = token.Value{Raw: lit}

	if illegalSuffix {
		s.error(start, "invalid character following numeric literal")
		tv.Error = true
	}
	if !sawDigit {
		s.error(start, "malformed number literal")
		tv.Error = true
	}

	if isFloat {
		tv.Float = fracVal
		return token.FLOAT
	}
	if overflowed {
		s.error(start, "integer literal value out of range")
		tv.Int = 0
		tv.Error = true
	} else {
		tv.Int = intVal
	}
	return token.INT
}

// stripUnderscores returns s with every '_' removed. scanNumber does not
// use it: it skips underscores while accumulating the value.
func stripUnderscores(s string) string {
	if !strings.ContainsRune(s, '_') {
		return s
	}
	return strings.ReplaceAll(s, "_", "")
}
