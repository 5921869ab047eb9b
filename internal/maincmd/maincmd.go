// Package maincmd implements the jplc command line: argument parsing,
// stop-point dispatch, and the "Compilation succeeded" / "Compilation
// failed: ..." reporting contract, driven by github.com/mna/mainer the
// same way the teacher's internal/maincmd dispatches to its scanner,
// parser and resolver stages.
package maincmd

import (
	"fmt"

	"github.com/mna/mainer"

	"github.com/jplc/jplc/lang/srcfile"
)

const binName = "jplc"

var shortUsage = fmt.Sprintf(`
usage: %s <file> [-l | -p | -t | -i | -s] [-O1]
Run '%[1]s --help' for details.
`, binName)

var longUsage = fmt.Sprintf(`usage: %s <file> [-l | -p | -t | -i | -s] [-O1]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler for the JPL array-programming language. Reads <file>, runs the
pipeline through the requested stop-point, and prints its output to
stdout.

At most one of -l -p -t may be given; -i and -s are likewise mutually
exclusive with -l/-p/-t and with each other. With none given, the
default is -s (emit assembly).

       -l              Stop after lexing, print one token per line.
       -p              Stop after parsing, print the AST as S-expressions.
       -t              Stop after type checking.
       -i              Emit C to stdout.
       -s              Emit x86-64 assembly to stdout (default).
       -O1             Enable peephole optimizations.
       -h --help       Show this help and exit.
       -v --version    Print version and exit.
`, binName)

// Cmd is the top-level jplc command, populated by mainer.Parser from
// os.Args and (for a couple of settings) environment variables.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Lex       bool `flag:"l"`
	ParseOnly bool `flag:"p"`
	TypeCheck bool `flag:"t"`
	EmitC     bool `flag:"i"`
	EmitAsm   bool `flag:"s"`
	Optimize  bool `flag:"O1"`

	args []string
}

func (c *Cmd) SetArgs(args []string)          { c.args = args }
func (c *Cmd) SetFlags(flags map[string]bool) {}

// Validate enforces the single-stop-point rule and the one-source-file
// requirement.
func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) != 1 {
		return fmt.Errorf("expected exactly one source file, got %d", len(c.args))
	}
	n := 0
	for _, b := range []bool{c.Lex, c.ParseOnly, c.TypeCheck, c.EmitC, c.EmitAsm} {
		if b {
			n++
		}
	}
	if n > 1 {
		return fmt.Errorf("at most one of -l -p -t -i -s may be given")
	}
	return nil
}

// Main is the CLI entry point: parse flags, dispatch to the requested
// stage, and report success or failure in the §6 wire format.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid environment configuration: %s\n", err)
		return mainer.InvalidArgs
	}
	c.Optimize = cfg.Optimize

	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	path := c.args[0]
	src, err := readFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "Compilation failed: %s: %s\n", path, err)
		return mainer.Failure
	}
	file := srcfile.New(path, src)

	if err := c.run(file, stdio, cfg.RuntimeHeader); err != nil {
		c.reportFailure(stdio, file, err)
		return mainer.Failure
	}
	fmt.Fprintln(stdio.Stdout, "Compilation succeeded")
	return mainer.Success
}

func (c *Cmd) run(file *srcfile.File, stdio mainer.Stdio, runtimeHeader string) error {
	switch {
	case c.Lex:
		return RunLex(stdio, file)
	case c.ParseOnly:
		return RunParse(stdio, file)
	case c.TypeCheck:
		return RunTypeCheck(stdio, file)
	case c.EmitC:
		return RunEmitC(stdio, file, runtimeHeader)
	default:
		return RunEmitAsm(stdio, file, c.Optimize)
	}
}

// reportFailure prints the §6/§7 failure line: "Compilation failed:
// <file>[<line>:<col>]: <message>".
func (c *Cmd) reportFailure(stdio mainer.Stdio, file *srcfile.File, err error) {
	if se, ok := err.(*srcfile.Error); ok {
		fmt.Fprintf(stdio.Stderr, "Compilation failed: %s\n", se.Format(file))
		return
	}
	fmt.Fprintf(stdio.Stderr, "Compilation failed: %s: %s\n", file.Path, err)
}
