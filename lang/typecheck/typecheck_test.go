package typecheck_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jplc/jplc/lang/ast"
	"github.com/jplc/jplc/lang/parser"
	"github.com/jplc/jplc/lang/typecheck"
	"github.com/jplc/jplc/lang/types"
)

func check(t *testing.T, src string) (*ast.Program, error) {
	t.Helper()
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	_, err = typecheck.Check(prog)
	return prog, err
}

func TestCheckLetBindingResolvesType(t *testing.T) {
	prog, err := check(t, "let x = 1 + 2\n")
	require.NoError(t, err)
	let := prog.Cmds[0].(*ast.LetCmd)
	require.True(t, let.Value.Type().Equal(types.Int{}))
}

func TestCheckFloatArithmeticResolvesFloat(t *testing.T) {
	prog, err := check(t, "let x = 1.5 + 2.5\n")
	require.NoError(t, err)
	let := prog.Cmds[0].(*ast.LetCmd)
	require.True(t, let.Value.Type().Equal(types.Float{}))
}

func TestCheckMixedArithmeticIsError(t *testing.T) {
	_, err := check(t, "let x = 1 + 2.5\n")
	require.Error(t, err)
}

func TestCheckUndeclaredNameIsError(t *testing.T) {
	_, err := check(t, "let x = y\n")
	require.Error(t, err)
}

func TestCheckRedeclarationIsError(t *testing.T) {
	_, err := check(t, "fn f(): int {\n  return 1\n}\nfn f(): int {\n  return 2\n}\n")
	require.Error(t, err)
}

func TestCheckFnMustReturnOnAllPaths(t *testing.T) {
	_, err := check(t, "fn f(): int {\n  let x = 1\n}\n")
	require.Error(t, err)
}

func TestCheckFnReturnTypeMismatch(t *testing.T) {
	_, err := check(t, "fn f(): int {\n  return 1.0\n}\n")
	require.Error(t, err)
}

func TestCheckFnCallResolvesReturnType(t *testing.T) {
	prog, err := check(t, "fn sq(x: int): int {\n  return x * x\n}\nlet y = sq(3)\n")
	require.NoError(t, err)
	let := prog.Cmds[1].(*ast.LetCmd)
	require.True(t, let.Value.Type().Equal(types.Int{}))
}

func TestCheckStructLiteralAndDotExpr(t *testing.T) {
	src := "struct Point {\n  x: int\n  y: int\n}\n" +
		"let p = Point{1, 2}\n" +
		"let x = p.x\n"
	prog, err := check(t, src)
	require.NoError(t, err)
	let := prog.Cmds[2].(*ast.LetCmd)
	require.True(t, let.Value.Type().Equal(types.Int{}))
}

func TestCheckStructFieldCountMismatch(t *testing.T) {
	src := "struct Point {\n  x: int\n  y: int\n}\n" +
		"let p = Point{1}\n"
	_, err := check(t, src)
	require.Error(t, err)
}

func TestCheckStructDuplicateFieldIsError(t *testing.T) {
	_, err := check(t, "struct Point {\n  x: int\n  x: int\n}\n")
	require.Error(t, err)
}

func TestCheckArrayLoopResolvesArrayType(t *testing.T) {
	prog, err := check(t, "let a = array[i: 10] i * 2\n")
	require.NoError(t, err)
	let := prog.Cmds[0].(*ast.LetCmd)
	want := types.Array{Elem: types.Int{}, Rank: 1}
	require.True(t, let.Value.Type().Equal(want))
}

func TestCheckArrayIndexResolvesElementType(t *testing.T) {
	prog, err := check(t, "let a = array[i: 10] i * 2\nlet b = a[3]\n")
	require.NoError(t, err)
	let := prog.Cmds[1].(*ast.LetCmd)
	require.True(t, let.Value.Type().Equal(types.Int{}))
}

func TestCheckAssertConditionMustBeBool(t *testing.T) {
	_, err := check(t, "assert 1, \"nope\"\n")
	require.Error(t, err)
}

func TestCheckIfBranchesMustMatch(t *testing.T) {
	_, err := check(t, "let x = if true then 1 else 2.0\n")
	require.Error(t, err)
}

func TestCheckMathBuiltinCall(t *testing.T) {
	prog, err := check(t, "let x = sqrt(4.0)\n")
	require.NoError(t, err)
	let := prog.Cmds[0].(*ast.LetCmd)
	require.True(t, let.Value.Type().Equal(types.Float{}))
}
