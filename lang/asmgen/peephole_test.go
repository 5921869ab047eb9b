package asmgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jplc/jplc/lang/ast"
)

func TestIntLog2(t *testing.T) {
	require.Equal(t, 0, intLog2(1))
	require.Equal(t, 3, intLog2(8))
	require.Equal(t, -1, intLog2(0))
	require.Equal(t, -1, intLog2(-4))
	require.Equal(t, -1, intLog2(6))
}

func TestMulByConstUsesShlAtO1ForPowerOfTwo(t *testing.T) {
	g := &Generator{o1: true}
	g.mulByConst("rax", 8)
	require.Equal(t, "shl rax, 3\n", g.text.String())
}

func TestMulByConstFallsBackToImulForNonPowerOfTwo(t *testing.T) {
	g := &Generator{o1: true}
	g.mulByConst("rax", 24)
	require.Equal(t, "imul rax, 24\n", g.text.String())
}

func TestMulByConstUsesImulWithoutO1(t *testing.T) {
	g := &Generator{o1: false}
	g.mulByConst("rax", 8)
	require.Equal(t, "imul rax, 8\n", g.text.String())
}

func TestIsIntLiteral(t *testing.T) {
	require.True(t, isIntLiteral(&ast.IntExpr{Value: 1}, 1))
	require.False(t, isIntLiteral(&ast.IntExpr{Value: 0}, 1))
	require.False(t, isIntLiteral(&ast.TrueExpr{}, 1))
}

func TestGenIfExprElidesOneZeroAtO1(t *testing.T) {
	g := &Generator{o1: true, data: newDataPool(), stack: NewStack(), vars: map[string]string{}}
	err := g.genIfExpr(&ast.IfExpr{
		Cond: &ast.TrueExpr{},
		Then: &ast.IntExpr{Value: 1},
		Else: &ast.IntExpr{Value: 0},
	})
	require.NoError(t, err)
	out := g.text.String()
	require.NotContains(t, out, "je ")
	require.NotContains(t, out, "jmp ")
	require.True(t, strings.Contains(out, "mov rax, 1"))
}

func TestGenIfExprDoesNotElideWithoutO1(t *testing.T) {
	g := &Generator{o1: false, data: newDataPool(), stack: NewStack(), vars: map[string]string{}}
	err := g.genIfExpr(&ast.IfExpr{
		Cond: &ast.TrueExpr{},
		Then: &ast.IntExpr{Value: 1},
		Else: &ast.IntExpr{Value: 0},
	})
	require.NoError(t, err)
	require.Contains(t, g.text.String(), "je ")
}
