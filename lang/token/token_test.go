package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	cases := []struct {
		lit  string
		want Token
	}{
		{"func", FUNC},
		{"while", WHILE},
		{"export", EXPORT},
		{"not_a_keyword", IDENT},
		{"", IDENT},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Lookup(c.lit), "lookup(%q)", c.lit)
	}
}

func TestEveryTokenHasName(t *testing.T) {
	for tok := ILLEGAL; tok < maxToken; tok++ {
		assert.NotEmpty(t, tokenNames[tok], "token %d has no name", tok)
	}
}

func TestIsKeyword(t *testing.T) {
	assert.True(t, FUNC.IsKeyword())
	assert.False(t, IDENT.IsKeyword())
	assert.False(t, PLUS.IsKeyword())
}
