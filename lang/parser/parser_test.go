package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jplc/jplc/lang/ast"
	"github.com/jplc/jplc/lang/parser"
)

func TestParseLetCmd(t *testing.T) {
	prog, err := parser.Parse([]byte("let x = 1 + 2\n"))
	require.NoError(t, err)
	require.Len(t, prog.Cmds, 1)

	let, ok := prog.Cmds[0].(*ast.LetCmd)
	require.True(t, ok)
	vlv, ok := let.LV.(*ast.VarLValue)
	require.True(t, ok)
	require.Equal(t, "x", vlv.Ident)

	binop, ok := let.Value.(*ast.BinopExpr)
	require.True(t, ok)
	require.Equal(t, "+", binop.Op)

	left, ok := binop.Left.(*ast.IntExpr)
	require.True(t, ok)
	require.EqualValues(t, 1, left.Value)
	right, ok := binop.Right.(*ast.IntExpr)
	require.True(t, ok)
	require.EqualValues(t, 2, right.Value)
}

func TestParseOperatorPrecedence(t *testing.T) {
	// Multiplication binds tighter than addition: 1 + 2 * 3 parses as
	// 1 + (2 * 3), not (1 + 2) * 3.
	prog, err := parser.Parse([]byte("let x = 1 + 2 * 3\n"))
	require.NoError(t, err)
	let := prog.Cmds[0].(*ast.LetCmd)

	top, ok := let.Value.(*ast.BinopExpr)
	require.True(t, ok)
	require.Equal(t, "+", top.Op)
	_, ok = top.Left.(*ast.IntExpr)
	require.True(t, ok)
	mul, ok := top.Right.(*ast.BinopExpr)
	require.True(t, ok)
	require.Equal(t, "*", mul.Op)
}

func TestParseFnCmd(t *testing.T) {
	src := "fn add(x: int, y: int): int {\n  return x + y\n}\n"
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Cmds, 1)

	fn, ok := prog.Cmds[0].(*ast.FnCmd)
	require.True(t, ok)
	require.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	require.Len(t, fn.Body, 1)

	ret, ok := fn.Body[0].(*ast.ReturnStmt)
	require.True(t, ok)
	_, ok = ret.Value.(*ast.BinopExpr)
	require.True(t, ok)
}

func TestParseStructCmd(t *testing.T) {
	src := "struct Point {\n  x: int\n  y: int\n}\n"
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	sc, ok := prog.Cmds[0].(*ast.StructCmd)
	require.True(t, ok)
	require.Equal(t, "Point", sc.Name)
	require.Len(t, sc.Fields, 2)
	require.Equal(t, "x", sc.Fields[0].Name)
	require.Equal(t, "y", sc.Fields[1].Name)
}

func TestParseArrayLoopAndIndex(t *testing.T) {
	src := "let a = array[i: 10] i * 2\nlet b = a[3]\n"
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Cmds, 2)

	let := prog.Cmds[0].(*ast.LetCmd)
	loop, ok := let.Value.(*ast.ArrayLoopExpr)
	require.True(t, ok)
	require.Len(t, loop.Axes, 1)
	require.Equal(t, "i", loop.Axes[0].Var)

	let2 := prog.Cmds[1].(*ast.LetCmd)
	idx, ok := let2.Value.(*ast.ArrayIndexExpr)
	require.True(t, ok)
	require.Len(t, idx.Indices, 1)
}

func TestParseReadWriteShowTimeAssertPrint(t *testing.T) {
	src := "read image \"in.png\" to im\n" +
		"write image im to \"out.png\"\n" +
		"show im\n" +
		"time show im\n" +
		"assert true, \"never fails\"\n" +
		"print \"hello\"\n"
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Cmds, 6)

	read := prog.Cmds[0].(*ast.ReadCmd)
	require.Equal(t, "in.png", read.Path)
	require.Equal(t, "im", read.LV.Ident)

	write := prog.Cmds[1].(*ast.WriteCmd)
	require.Equal(t, "out.png", write.Path)

	_, ok := prog.Cmds[2].(*ast.ShowCmd)
	require.True(t, ok)

	tc, ok := prog.Cmds[3].(*ast.TimeCmd)
	require.True(t, ok)
	_, ok = tc.Cmd.(*ast.ShowCmd)
	require.True(t, ok)

	assertCmd := prog.Cmds[4].(*ast.AssertCmd)
	require.Equal(t, "never fails", assertCmd.Message)

	printCmd := prog.Cmds[5].(*ast.PrintCmd)
	require.Equal(t, "hello", printCmd.Message)
}

func TestParseErrorOnUnexpectedToken(t *testing.T) {
	_, err := parser.Parse([]byte("let = 1\n"))
	require.Error(t, err)
}

func TestParseErrorUnterminatedStruct(t *testing.T) {
	_, err := parser.Parse([]byte("struct Point { x: int\n"))
	require.Error(t, err)
}

func TestParseErrorIntLiteralOutOfRange(t *testing.T) {
	_, err := parser.Parse([]byte("let x = 99999999999999999999\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "out of range")
}
