package maincmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"
)

func TestValidateRequiresExactlyOneFile(t *testing.T) {
	c := &Cmd{}
	c.SetArgs(nil)
	require.Error(t, c.Validate())

	c.SetArgs([]string{"a.jpl", "b.jpl"})
	require.Error(t, c.Validate())

	c.SetArgs([]string{"a.jpl"})
	require.NoError(t, c.Validate())
}

func TestValidateRejectsMultipleStopPoints(t *testing.T) {
	c := &Cmd{Lex: true, ParseOnly: true}
	c.SetArgs([]string{"a.jpl"})
	require.Error(t, c.Validate())
}

func TestValidateAllowsSingleStopPoint(t *testing.T) {
	c := &Cmd{EmitAsm: true}
	c.SetArgs([]string{"a.jpl"})
	require.NoError(t, c.Validate())
}

func TestValidateSkipsFileCheckForHelpAndVersion(t *testing.T) {
	c := &Cmd{Help: true}
	c.SetArgs(nil)
	require.NoError(t, c.Validate())

	c = &Cmd{Version: true}
	c.SetArgs(nil)
	require.NoError(t, c.Validate())
}

func TestMainCompilesSimpleProgramToAssembly(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/ok.jpl"
	require.NoError(t, os.WriteFile(path, []byte("let x = 1 + 2\n"), 0o600))

	var out, errOut bytes.Buffer
	c := &Cmd{}
	code := c.Main([]string{"jplc", path}, mainer.Stdio{Stdout: &out, Stderr: &errOut})
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out.String(), "global jpl_main")
}

func TestMainReportsFailureForTypeError(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/bad.jpl"
	require.NoError(t, os.WriteFile(path, []byte("let x = 1 + 2.0\n"), 0o600))

	var out, errOut bytes.Buffer
	c := &Cmd{}
	code := c.Main([]string{"jplc", path}, mainer.Stdio{Stdout: &out, Stderr: &errOut})
	require.Equal(t, mainer.Failure, code)
	require.Contains(t, errOut.String(), "Compilation failed:")
	require.Contains(t, errOut.String(), path)
}

func TestMainHelp(t *testing.T) {
	var out, errOut bytes.Buffer
	c := &Cmd{}
	code := c.Main([]string{"jplc", "-h"}, mainer.Stdio{Stdout: &out, Stderr: &errOut})
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out.String(), "usage:")
}

func TestMainLexStopPoint(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/ok.jpl"
	require.NoError(t, os.WriteFile(path, []byte("let x = 1\n"), 0o600))

	var out, errOut bytes.Buffer
	c := &Cmd{}
	code := c.Main([]string{"jplc", "-l", path}, mainer.Stdio{Stdout: &out, Stderr: &errOut})
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out.String(), "LET")
	require.Contains(t, out.String(), "NEWLINE")
	require.NotContains(t, out.String(), "global jpl_main")
}

func TestMainLexStopPointReportsLexError(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/bad.jpl"
	require.NoError(t, os.WriteFile(path, []byte("let x = 1\n~\n"), 0o600))

	var out, errOut bytes.Buffer
	c := &Cmd{}
	code := c.Main([]string{"jplc", "-l", path}, mainer.Stdio{Stdout: &out, Stderr: &errOut})
	require.Equal(t, mainer.Failure, code)
	require.Contains(t, errOut.String(), "Compilation failed:")
}

func TestMainParseStopPoint(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/ok.jpl"
	require.NoError(t, os.WriteFile(path, []byte("let x = 1 + 2\n"), 0o600))

	var out, errOut bytes.Buffer
	c := &Cmd{}
	code := c.Main([]string{"jplc", "-p", path}, mainer.Stdio{Stdout: &out, Stderr: &errOut})
	require.Equal(t, mainer.Success, code)
	require.Contains(t, out.String(), "LetCmd")
	require.Contains(t, out.String(), "BinopExpr")
}

func TestMainParseStopPointReportsSyntaxError(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/bad.jpl"
	require.NoError(t, os.WriteFile(path, []byte("let = 1\n"), 0o600))

	var out, errOut bytes.Buffer
	c := &Cmd{}
	code := c.Main([]string{"jplc", "-p", path}, mainer.Stdio{Stdout: &out, Stderr: &errOut})
	require.Equal(t, mainer.Failure, code)
	require.Contains(t, errOut.String(), "Compilation failed:")
}

func TestMainTypeCheckStopPoint(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/ok.jpl"
	require.NoError(t, os.WriteFile(path, []byte("let x = 1 + 2\n"), 0o600))

	var out, errOut bytes.Buffer
	c := &Cmd{}
	code := c.Main([]string{"jplc", "-t", path}, mainer.Stdio{Stdout: &out, Stderr: &errOut})
	require.Equal(t, mainer.Success, code)
	require.Empty(t, errOut.String())
}

func TestMainTypeCheckStopPointReportsTypeError(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/bad.jpl"
	require.NoError(t, os.WriteFile(path, []byte("let x = 1 + 2.0\n"), 0o600))

	var out, errOut bytes.Buffer
	c := &Cmd{}
	code := c.Main([]string{"jplc", "-t", path}, mainer.Stdio{Stdout: &out, Stderr: &errOut})
	require.Equal(t, mainer.Failure, code)
	require.Contains(t, errOut.String(), "Compilation failed:")
}

