package maincmd

import (
	"github.com/mna/mainer"

	"github.com/jplc/jplc/lang/parser"
	"github.com/jplc/jplc/lang/srcfile"
	"github.com/jplc/jplc/lang/typecheck"
)

// RunTypeCheck implements the -t stop point: parse and type check the
// file, producing no output beyond the final success/failure line.
func RunTypeCheck(stdio mainer.Stdio, file *srcfile.File) error {
	prog, err := parser.Parse(file.Src)
	if err != nil {
		return err
	}
	_, err = typecheck.Check(prog)
	return err
}
