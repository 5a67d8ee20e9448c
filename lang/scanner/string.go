package scanner

import (
	"strings"

	"github.com/mbeckem/tiro-sub007/lang/token"
)

// scanStringBody is called instead of scanCode whenever the top mode is
// ModeSingleString or ModeDoubleString. It recognizes, in priority order,
// the closing quote (pops the mode, emits STRING_END), a `$ident` inline
// interpolation (emits STRING_VAR without changing mode), a `${` block
// interpolation (pushes ModeInterpBlock, emits STRING_BLOCK_START), and
// otherwise accumulates a run of literal text (honoring the escape set
// \n \r \t \\ \" \' \$) into a single STRING_LIT token.
func (s *Scanner) scanStringBody(tv *token.Value) token.Token {
	f := s.top()
	start := s.off
	s.tokStart = start

	switch {
	case s.cur == f.quote:
		s.advance()
		s.pop()
		*tv = token.Value{Raw: string(s.src[start:s.off])}
		return token.STRING_END

	case s.cur == -1 || s.cur == '\n':
		s.error(start, "unterminated string literal")
		s.pop()
		*tv = token.Value{Raw: "", Error: true}
		return token.STRING_END

	case s.cur == '$':
		s.advance()
		switch {
		case isLetter(s.cur):
			name := s.ident()
			*tv = token.Value{Raw: "$" + name, String: name}
			return token.STRING_VAR
		case s.cur == '{':
			s.advance()
			s.push(frame{mode: ModeInterpBlock})
			*tv = token.Value{Raw: "${"}
			return token.STRING_BLOCK_START
		default:
			s.error(start, "invalid '$' in string literal, expected identifier or '{'")
			*tv = token.Value{Raw: "$", Error: true}
			return token.ILLEGAL
		}

	default:
		return s.scanStringLiteralChunk(tv, f.quote)
	}
}

// scanStringLiteralChunk accumulates a run of literal text up to (not
// including) the next quote/'$'/newline/EOF, decoding backslash escapes
// along the way.
func (s *Scanner) scanStringLiteralChunk(tv *token.Value, quote rune) token.Token {
	rawStart := s.off
	var b strings.Builder
	hadError := false

	for {
		switch {
		case s.cur == quote || s.cur == '$' || s.cur == -1 || s.cur == '\n':
			*tv = token.Value{Raw: string(s.src[rawStart:s.off]), String: b.String(), Error: hadError}
			return token.STRING_LIT

		case s.cur == '\\':
			escStart := s.off
			s.advance()
			switch s.cur {
			case 'n':
				b.WriteByte('\n')
				s.advance()
			case 'r':
				b.WriteByte('\r')
				s.advance()
			case 't':
				b.WriteByte('\t')
				s.advance()
			case '\\':
				b.WriteByte('\\')
				s.advance()
			case '"':
				b.WriteByte('"')
				s.advance()
			case '\'':
				b.WriteByte('\'')
				s.advance()
			case '$':
				b.WriteByte('$')
				s.advance()
			default:
				s.error(escStart, "invalid escape sequence in string literal")
				hadError = true
				if s.cur != -1 {
					b.WriteRune(s.cur)
					s.advance()
				}
			}

		default:
			b.WriteRune(s.cur)
			s.advance()
		}
	}
}
