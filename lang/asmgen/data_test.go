package asmgen

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataPoolDedupesByValue(t *testing.T) {
	p := newDataPool()
	l1 := p.Int(42)
	l2 := p.Int(42)
	require.Equal(t, l1, l2)

	l3 := p.Int(7)
	require.NotEqual(t, l1, l3)
}

func TestDataPoolEmitOrderIsFirstSeen(t *testing.T) {
	p := newDataPool()
	iLabel := p.Int(1)
	fLabel := p.Float(2.5)
	sLabel := p.String("hi")

	var buf strings.Builder
	p.Emit(func(format string, args ...any) { fmt.Fprintf(&buf, format, args...) })

	out := buf.String()
	iIdx := strings.Index(out, iLabel+":")
	fIdx := strings.Index(out, fLabel+":")
	sIdx := strings.Index(out, sLabel+":")
	require.True(t, iIdx >= 0 && fIdx > iIdx && sIdx > fIdx)
	require.Contains(t, out, "section .data")
	require.Contains(t, out, fmt.Sprintf("%s: dq 1\n", iLabel))
}

func TestDataPoolStringEscaping(t *testing.T) {
	p := newDataPool()
	label := p.String("back`tick\\slash")

	var buf strings.Builder
	p.Emit(func(format string, args ...any) { fmt.Fprintf(&buf, format, args...) })
	require.Contains(t, buf.String(), label+": db `back\\`tick\\\\slash`, 0")
}
