package maincmd

import (
	"github.com/mna/mainer"

	"github.com/jplc/jplc/lang/lexer"
	"github.com/jplc/jplc/lang/printer"
	"github.com/jplc/jplc/lang/srcfile"
	"github.com/jplc/jplc/lang/token"
)

// RunLex implements the -l stop point: scan the whole file and print one
// token per line, stopping at the first lex error.
func RunLex(stdio mainer.Stdio, file *srcfile.File) error {
	toks, err := lexAll(file)
	if perr := printer.Tokens(stdio.Stdout, toks); perr != nil {
		return perr
	}
	return err
}

// lexAll drains the lexer into a slice, returning whatever tokens were
// produced before a lex error (including the error, if any), so -l can
// still print a partial token stream before reporting failure.
func lexAll(file *srcfile.File) ([]token.Token, error) {
	l := lexer.New(file.Src)
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks, nil
		}
	}
}
