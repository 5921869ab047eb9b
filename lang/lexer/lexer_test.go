package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jplc/jplc/lang/lexer"
	"github.com/jplc/jplc/lang/token"
)

func lexAll(t *testing.T, src string) []token.Token {
	t.Helper()
	l := lexer.New([]byte(src))
	var toks []token.Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestLexBasicProgram(t *testing.T) {
	toks := lexAll(t, "let x = 1 + 2\n")
	want := []token.Kind{
		token.LET, token.VARIABLE, token.EQUALS, token.INTVAL, token.OP, token.INTVAL,
		token.NEWLINE, token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, k := range want {
		require.Equalf(t, k, toks[i].Kind, "token %d", i)
	}
	require.Equal(t, "x", toks[1].Lexeme)
	require.Equal(t, "1", toks[3].Lexeme)
	require.Equal(t, "+", toks[4].Lexeme)
	require.Equal(t, "2", toks[5].Lexeme)
}

func TestLexTwoCharOperators(t *testing.T) {
	toks := lexAll(t, "a == b && c != d")
	var ops []string
	for _, tok := range toks {
		if tok.Kind == token.OP {
			ops = append(ops, tok.Lexeme)
		}
	}
	require.Equal(t, []string{"==", "&&", "!="}, ops)
}

func TestLexStringLiteral(t *testing.T) {
	toks := lexAll(t, `print "hello world"`)
	require.Equal(t, token.PRINT, toks[0].Kind)
	require.Equal(t, token.STRING, toks[1].Kind)
	require.Equal(t, "hello world", toks[1].Lexeme)
}

func TestLexFloatAndIntLiterals(t *testing.T) {
	toks := lexAll(t, "3.14 42 0.5")
	require.Equal(t, token.FLOATVAL, toks[0].Kind)
	require.Equal(t, "3.14", toks[0].Lexeme)
	require.Equal(t, token.INTVAL, toks[1].Kind)
	require.Equal(t, "42", toks[1].Lexeme)
	require.Equal(t, token.FLOATVAL, toks[2].Kind)
	require.Equal(t, "0.5", toks[2].Lexeme)
}

func TestLexKeywordsVsIdentifiers(t *testing.T) {
	toks := lexAll(t, "array foo struct")
	require.Equal(t, token.ARRAY, toks[0].Kind)
	require.Equal(t, token.VARIABLE, toks[1].Kind)
	require.Equal(t, token.STRUCT, toks[2].Kind)
}

func TestLexCommentsAreSkipped(t *testing.T) {
	toks := lexAll(t, "let x = 1 // comment\n/* block\ncomment */let y = 2\n")
	var kinds []token.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	require.Contains(t, kinds, token.LET)
	require.NotContains(t, kinds, token.ILLEGAL)
}

func TestLexOverlongNumberStillLexes(t *testing.T) {
	// Range-checking is a parse-stage concern (spec.md §7); the lexer just
	// hands back the raw lexeme regardless of magnitude.
	toks := lexAll(t, "99999999999999999999\n")
	require.Equal(t, token.INTVAL, toks[0].Kind)
	require.Equal(t, "99999999999999999999", toks[0].Lexeme)
}

func TestLexUnterminatedStringIsError(t *testing.T) {
	l := lexer.New([]byte(`"unterminated`))
	_, err := l.Next()
	require.Error(t, err)
}

func TestLexUnknownCharacterIsError(t *testing.T) {
	l := lexer.New([]byte("@"))
	_, err := l.Next()
	require.Error(t, err)
}

func TestLexPeekDoesNotConsume(t *testing.T) {
	l := lexer.New([]byte("let x"))
	first, err := l.Peek()
	require.NoError(t, err)
	second, err := l.Peek()
	require.NoError(t, err)
	require.Equal(t, first, second)

	consumed, err := l.Next()
	require.NoError(t, err)
	require.Equal(t, first, consumed)
}
