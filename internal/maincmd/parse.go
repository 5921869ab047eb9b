package maincmd

import (
	"github.com/mna/mainer"

	"github.com/jplc/jplc/lang/parser"
	"github.com/jplc/jplc/lang/printer"
	"github.com/jplc/jplc/lang/srcfile"
)

// RunParse implements the -p stop point: parse the file and print the AST
// as S-expressions.
func RunParse(stdio mainer.Stdio, file *srcfile.File) error {
	prog, err := parser.Parse(file.Src)
	if err != nil {
		return err
	}
	p := printer.Printer{Output: stdio.Stdout}
	return p.Print(prog)
}
