package maincmd

import (
	"fmt"

	"github.com/mna/mainer"

	"github.com/jplc/jplc/lang/asmgen"
	"github.com/jplc/jplc/lang/ast"
	"github.com/jplc/jplc/lang/cgen"
	"github.com/jplc/jplc/lang/parser"
	"github.com/jplc/jplc/lang/srcfile"
	"github.com/jplc/jplc/lang/symtab"
	"github.com/jplc/jplc/lang/typecheck"
)

// RunEmitC implements the -i stop point: type check and lower to C,
// writing the translation unit to stdout.
func RunEmitC(stdio mainer.Stdio, file *srcfile.File, runtimeHeader string) error {
	prog, root, err := checkFile(file)
	if err != nil {
		return err
	}
	out, err := cgen.Generate(prog, root, runtimeHeader)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(stdio.Stdout, out)
	return err
}

// RunEmitAsm implements the -s stop point (the CLI default): type check
// and lower straight to NASM assembly, writing it to stdout.
func RunEmitAsm(stdio mainer.Stdio, file *srcfile.File, optimize bool) error {
	prog, root, err := checkFile(file)
	if err != nil {
		return err
	}
	out, err := asmgen.Generate(prog, root, optimize)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(stdio.Stdout, out)
	return err
}

func checkFile(file *srcfile.File) (prog *ast.Program, root *symtab.Context, err error) {
	prog, err = parser.Parse(file.Src)
	if err != nil {
		return nil, nil, err
	}
	root, err = typecheck.Check(prog)
	if err != nil {
		return nil, nil, err
	}
	return prog, root, nil
}
