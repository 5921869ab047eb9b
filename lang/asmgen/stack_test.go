package asmgen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jplc/jplc/lang/types"
)

func TestStackPushOffsetAndPop(t *testing.T) {
	s := NewStack()
	s.Push("a", types.Int{})
	s.Push("b", types.Float{})

	// "a" was pushed first, so it sits closest to rbp; "b" was pushed
	// after it and lands at the larger offset.
	off, ok := s.Offset("a", savedRBP)
	require.True(t, ok)
	require.Equal(t, savedRBP, off)

	off, ok = s.Offset("b", savedRBP)
	require.True(t, ok)
	require.Equal(t, savedRBP+8, off)

	require.Equal(t, 16, s.Size())

	name, typ := s.Pop()
	require.Equal(t, "b", name)
	require.True(t, typ.Equal(types.Float{}))
	require.Equal(t, 8, s.Size())
}

func TestStackOffsetMissingName(t *testing.T) {
	s := NewStack()
	s.Push("a", types.Int{})
	_, ok := s.Offset("nope", savedRBP)
	require.False(t, ok)
}

func TestStackAlignPadsTo16Bytes(t *testing.T) {
	s := NewStack()
	s.Push("a", types.Int{}) // 8 bytes pushed, size == 8

	pad := s.Align(0)
	require.Equal(t, 8, pad)
	require.Equal(t, 16, s.Size())

	unpad := s.Unalign()
	require.Equal(t, 8, unpad)
	require.Equal(t, 8, s.Size())
}

func TestStackAlignNoOpWhenAlreadyAligned(t *testing.T) {
	s := NewStack()
	s.Push("a", types.Int{})
	s.Push("b", types.Int{}) // size == 16, already aligned

	pad := s.Align(0)
	require.Equal(t, 0, pad)
	require.Equal(t, 16, s.Size())

	unpad := s.Unalign()
	require.Equal(t, 0, unpad)
}

func TestStackPopPanicsOnPadding(t *testing.T) {
	s := NewStack()
	s.Push("a", types.Int{})
	s.Align(0)
	require.Panics(t, func() { s.Pop() })
}
