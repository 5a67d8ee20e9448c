package scanner

import (
	"testing"

	"github.com/mbeckem/tiro-sub007/lang/source"
	"github.com/mbeckem/tiro-sub007/lang/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scanResult struct {
	tok token.Token
	val token.Value
}

func scanAll(t *testing.T, src string) ([]scanResult, []string) {
	t.Helper()
	fset := source.NewFileSet()
	file := fset.AddFile("test.tiro", len(src))

	var errs []string
	var s Scanner
	s.Init(file, []byte(src), func(pos source.Position, msg string) {
		errs = append(errs, msg)
	})

	var out []scanResult
	for {
		var v token.Value
		tok := s.Scan(&v)
		out = append(out, scanResult{tok, v})
		if tok == token.EOF {
			break
		}
	}
	return out, errs
}

func toks(results []scanResult) []token.Token {
	out := make([]token.Token, len(results))
	for i, r := range results {
		out[i] = r.tok
	}
	return out
}

func TestScanIdentAndKeyword(t *testing.T) {
	results, errs := scanAll(t, "foo while")
	require.Empty(t, errs)
	assert.Equal(t, []token.Token{token.IDENT, token.WHILE, token.EOF}, toks(results))
	assert.Equal(t, "foo", results[0].val.Raw)
}

func TestScanIntLiteral(t *testing.T) {
	results, errs := scanAll(t, "123 0x1F 0b101 0o17 1_000")
	require.Empty(t, errs)
	require.Len(t, results, 6)
	assert.Equal(t, int64(123), results[0].val.Int)
	assert.Equal(t, int64(31), results[1].val.Int)
	assert.Equal(t, int64(5), results[2].val.Int)
	assert.Equal(t, int64(15), results[3].val.Int)
	assert.Equal(t, int64(1000), results[4].val.Int)
}

func TestScanIntLiteralIllegalSuffixStillEmitsToken(t *testing.T) {
	results, errs := scanAll(t, "123abc")
	require.NotEmpty(t, errs)
	require.GreaterOrEqual(t, len(results), 1)
	assert.Equal(t, token.INT, results[0].tok)
	assert.True(t, results[0].val.Error)
}

func TestScanFloatLiteral(t *testing.T) {
	results, errs := scanAll(t, "3.25")
	require.Empty(t, errs)
	assert.Equal(t, token.FLOAT, results[0].tok)
	assert.InDelta(t, 3.25, results[0].val.Float, 1e-9)
}

func TestScanPunctuation(t *testing.T) {
	results, errs := scanAll(t, "+= ?? ?. -> <<=")
	require.Empty(t, errs)
	assert.Equal(t, []token.Token{
		token.PLUS_EQ, token.QUESTQUEST, token.QUESTDOT, token.ARROW, token.LTLT_EQ, token.EOF,
	}, toks(results))
}

func TestScanMapSetBrace(t *testing.T) {
	results, errs := scanAll(t, "map{ set{")
	require.Empty(t, errs)
	assert.Equal(t, []token.Token{token.MAP_LBRACE, token.SET_LBRACE, token.EOF}, toks(results))
}

func TestScanTupleField(t *testing.T) {
	results, errs := scanAll(t, "x.0.1")
	require.Empty(t, errs)
	// IDENT DOT TUPLE_FIELD DOT TUPLE_FIELD EOF
	require.Len(t, results, 6)
	assert.Equal(t, token.TUPLE_FIELD, results[2].tok)
	assert.Equal(t, int64(0), results[2].val.Int)
	assert.Equal(t, token.TUPLE_FIELD, results[4].tok)
	assert.Equal(t, int64(1), results[4].val.Int)
}

func TestScanSymbolLiteral(t *testing.T) {
	results, errs := scanAll(t, "#foo #42")
	require.Empty(t, errs)
	assert.Equal(t, token.SYMBOL, results[0].tok)
	assert.Equal(t, "foo", results[0].val.String)
	assert.Equal(t, token.SYMBOL, results[1].tok)
	assert.Equal(t, "42", results[1].val.String)
}

func TestScanLineComment(t *testing.T) {
	results, errs := scanAll(t, "1 // a comment\n2")
	require.Empty(t, errs)
	assert.Equal(t, []token.Token{token.INT, token.COMMENT, token.INT, token.EOF}, toks(results))
}

func TestScanNestedBlockComment(t *testing.T) {
	results, errs := scanAll(t, "1 /* a /* b /* c */ d */ e */ 2")
	require.Empty(t, errs)
	assert.Equal(t, []token.Token{token.INT, token.COMMENT, token.INT, token.EOF}, toks(results))
}

func TestScanUnterminatedBlockCommentIsError(t *testing.T) {
	_, errs := scanAll(t, "1 /* never closes")
	assert.NotEmpty(t, errs)
}

func TestScanSimpleString(t *testing.T) {
	results, errs := scanAll(t, `"hello\nworld"`)
	require.Empty(t, errs)
	assert.Equal(t, []token.Token{
		token.STRING_START, token.STRING_LIT, token.STRING_END, token.EOF,
	}, toks(results))
	assert.Equal(t, "hello\nworld", results[1].val.String)
}

func TestScanStringVarInterpolation(t *testing.T) {
	results, errs := scanAll(t, `"hi $name!"`)
	require.Empty(t, errs)
	assert.Equal(t, []token.Token{
		token.STRING_START, token.STRING_LIT, token.STRING_VAR, token.STRING_LIT, token.STRING_END, token.EOF,
	}, toks(results))
	assert.Equal(t, "name", results[2].val.String)
}

func TestScanStringBlockInterpolationWithNestedBraces(t *testing.T) {
	results, errs := scanAll(t, `"val=${ {a: 1}.a }"`)
	require.Empty(t, errs)
	toksOnly := toks(results)
	assert.Contains(t, toksOnly, token.STRING_BLOCK_START)
	assert.Contains(t, toksOnly, token.STRING_BLOCK_END)
	assert.Contains(t, toksOnly, token.LBRACE)
	assert.Contains(t, toksOnly, token.RBRACE)
	assert.Equal(t, token.STRING_END, toksOnly[len(toksOnly)-2])
}

func TestScanStringContainingOtherQuoteChar(t *testing.T) {
	results, errs := scanAll(t, `"it's here"`)
	require.Empty(t, errs)
	assert.Equal(t, "it's here", results[1].val.String)
}

func TestScanUnterminatedStringIsError(t *testing.T) {
	_, errs := scanAll(t, `"never closes`)
	assert.NotEmpty(t, errs)
}
