package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	for k := ILLEGAL; k < maxKind; k++ {
		require.NotEmptyf(t, k.String(), "kind %d missing a string form", k)
		require.NotEqual(t, "UNKNOWN", k.String())
	}
	require.Equal(t, "UNKNOWN", Kind(-1).String())
	require.Equal(t, "UNKNOWN", maxKind.String())
}

func TestKeywordsRoundTrip(t *testing.T) {
	for lexeme, kind := range Keywords {
		require.Equal(t, strings.ToUpper(lexeme), kind.String(), "%s", lexeme)
	}
}

func TestTokenString(t *testing.T) {
	require.Equal(t, "END_OF_FILE", Token{Kind: EOF}.String())
	require.Equal(t, "NEWLINE", Token{Kind: NEWLINE}.String())
	require.Equal(t, "VARIABLE 'x'", Token{Kind: VARIABLE, Lexeme: "x"}.String())
	require.Equal(t, "INTVAL '42'", Token{Kind: INTVAL, Lexeme: "42"}.String())
}
