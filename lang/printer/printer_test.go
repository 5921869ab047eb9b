package printer_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jplc/jplc/internal/difftest"
	"github.com/jplc/jplc/lang/lexer"
	"github.com/jplc/jplc/lang/parser"
	"github.com/jplc/jplc/lang/printer"
	"github.com/jplc/jplc/lang/token"
)

func TestTokensPrint(t *testing.T) {
	var buf bytes.Buffer
	toks := []token.Token{
		{Kind: token.LET, Lexeme: "let"},
		{Kind: token.VARIABLE, Lexeme: "x"},
		{Kind: token.EQUALS, Lexeme: "="},
		{Kind: token.INTVAL, Lexeme: "1"},
		{Kind: token.NEWLINE},
		{Kind: token.EOF},
	}
	require.NoError(t, printer.Tokens(&buf, toks))
	require.Equal(t, "LET 'let'\nVARIABLE 'x'\nEQUALS '='\nINTVAL '1'\nNEWLINE\nEND_OF_FILE\n", buf.String())
}

func TestTokensPrintFromLexer(t *testing.T) {
	l := lexer.New([]byte("let x = 1\n"))
	var toks []token.Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	var buf bytes.Buffer
	require.NoError(t, printer.Tokens(&buf, toks))
	require.Equal(t, "LET 'let'\nVARIABLE 'x'\nEQUALS '='\nINTVAL '1'\nNEWLINE\nEND_OF_FILE\n", buf.String())
}

func TestPrinterSExprUntypedLetCmd(t *testing.T) {
	prog, err := parser.Parse([]byte("let x = 1 + 2\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	p := printer.Printer{Output: &buf}
	require.NoError(t, p.Print(prog))

	want := "(LetCmd (VarLValue x) (BinopExpr (UnresolvedType) " +
		"(IntExpr (UnresolvedType) 1) + (IntExpr (UnresolvedType) 2)))\n"
	difftest.Equal(t, "sexpr", want, buf.String())
}

func TestPrinterSExprStructCmd(t *testing.T) {
	src := "struct Point {\n  x: int\n  y: int\n}\n"
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)

	var buf bytes.Buffer
	p := printer.Printer{Output: &buf}
	require.NoError(t, p.Print(prog))
	difftest.Equal(t, "sexpr", "(StructCmd Point (Field x (IntType)) (Field y (IntType)))\n", buf.String())
}

func TestPrinterSExprPrintCmd(t *testing.T) {
	prog, err := parser.Parse([]byte(`print "hello"` + "\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	p := printer.Printer{Output: &buf}
	require.NoError(t, p.Print(prog))
	require.Equal(t, `(PrintCmd "hello")`+"\n", buf.String())
}
