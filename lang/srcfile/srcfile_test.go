package srcfile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineCol(t *testing.T) {
	src := "let x = 1\nlet y = 2\n\nassert true, \"ok\"\n"
	f := New("test.jpl", []byte(src))

	cases := []struct {
		offset   int
		line, col int
	}{
		{0, 1, 1},
		{4, 1, 5},
		{10, 2, 1},
		{20, 3, 1},
		{21, 4, 1},
	}
	for _, c := range cases {
		line, col := f.LineCol(c.offset)
		require.Equalf(t, c.line, line, "offset %d line", c.offset)
		require.Equalf(t, c.col, col, "offset %d col", c.offset)
	}
}

func TestErrorFormat(t *testing.T) {
	src := "let x = 1\nlet y = bogus\n"
	f := New("test.jpl", []byte(src))

	err := NewError(14, "undeclared name: %s", "bogus")
	require.Equal(t, "undeclared name: bogus", err.Error())
	require.Equal(t, "test.jpl[2:5]: undeclared name: bogus", err.Format(f))
}

func TestNewEmptySource(t *testing.T) {
	f := New("empty.jpl", nil)
	line, col := f.LineCol(0)
	require.Equal(t, 1, line)
	require.Equal(t, 1, col)
}
