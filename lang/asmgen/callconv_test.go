package asmgen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jplc/jplc/lang/types"
)

func TestClassifyParamsScalarsFillRegisters(t *testing.T) {
	classes, ok := ClassifyParams([]types.Type{types.Int{}, types.Float{}, types.Bool{}})
	require.True(t, ok)
	require.Len(t, classes, 3)
	require.Equal(t, "rdi", classes[0].reg)
	require.False(t, classes[0].onStack)
	require.Equal(t, "xmm0", classes[1].reg)
	require.Equal(t, "rsi", classes[2].reg)
}

func TestClassifyParamsArraysAlwaysOnStack(t *testing.T) {
	classes, ok := ClassifyParams([]types.Type{types.Array{Elem: types.Int{}, Rank: 1}, types.Int{}})
	require.True(t, ok)
	require.True(t, classes[0].onStack)
	require.Empty(t, classes[0].reg)
	// The array consumed no int register, so the scalar still gets rdi.
	require.Equal(t, "rdi", classes[1].reg)
}

func TestClassifyParamsIntAndFloatRegistersAreIndependent(t *testing.T) {
	classes, ok := ClassifyParams([]types.Type{types.Float{}, types.Int{}, types.Float{}})
	require.True(t, ok)
	require.Equal(t, "xmm0", classes[0].reg)
	require.Equal(t, "rdi", classes[1].reg)
	require.Equal(t, "xmm1", classes[2].reg)
}

func TestClassifyParamsAfterHiddenReturnStartsAtRsi(t *testing.T) {
	classes, ok := ClassifyParamsAfterHiddenReturn([]types.Type{types.Int{}, types.Int{}})
	require.True(t, ok)
	require.Equal(t, "rsi", classes[0].reg)
	require.Equal(t, "rdx", classes[1].reg)
}

func TestClassifyReturn(t *testing.T) {
	require.Equal(t, ReturnInt, ClassifyReturn(types.Int{}))
	require.Equal(t, ReturnInt, ClassifyReturn(types.Bool{}))
	require.Equal(t, ReturnFloat, ClassifyReturn(types.Float{}))
	require.Equal(t, ReturnAggregate, ClassifyReturn(types.Struct{Name: "Point"}))
	require.Equal(t, ReturnAggregate, ClassifyReturn(types.Array{Elem: types.Int{}, Rank: 1}))
	require.Equal(t, ReturnAggregate, ClassifyReturn(types.Void{}))
}
