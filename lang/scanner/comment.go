package scanner

import "github.com/mbeckem/tiro-sub007/lang/token"

// scanLineComment consumes a `//` comment through (but not including) the
// terminating newline or EOF.
func (s *Scanner) scanLineComment(tv *token.Value) {
	start := s.off
	s.advance() // '/'
	s.advance() // '/'
	for s.cur != '\n' && s.cur != -1 {
		s.advance()
	}
	*tv = token.Value{Raw: string(s.src[start:s.off])}
}

// scanBlockComment consumes a `/* ... */` comment, tracking nesting depth
// so `/* /* */ */` closes only at the outer `*/`. An unterminated comment
// at EOF is a lexical error.
func (s *Scanner) scanBlockComment(tv *token.Value) {
	start := s.off
	s.advance() // '/'
	s.advance() // '*'
	depth := 1
	for depth > 0 {
		switch {
		case s.cur == -1:
			s.error(start, "unterminated block comment")
			*tv = token.Value{Raw: string(s.src[start:s.off]), Error: true}
			return
		case s.cur == '/' && s.peek() == '*':
			s.advance()
			s.advance()
			depth++
		case s.cur == '*' && s.peek() == '/':
			s.advance()
			s.advance()
			depth--
		default:
			s.advance()
		}
	}
	*tv = token.Value{Raw: string(s.src[start:s.off])}
}
