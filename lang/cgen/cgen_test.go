package cgen_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jplc/jplc/lang/cgen"
	"github.com/jplc/jplc/lang/parser"
	"github.com/jplc/jplc/lang/typecheck"
)

func generate(t *testing.T, src, runtimeHeader string) string {
	t.Helper()
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	root, err := typecheck.Check(prog)
	require.NoError(t, err)
	out, err := cgen.Generate(prog, root, runtimeHeader)
	require.NoError(t, err)
	return out
}

func TestGenerateIncludesDefaultRuntimeHeader(t *testing.T) {
	out := generate(t, "let x = 1\n", "")
	require.Contains(t, out, `#include "rt/runtime.h"`)
	require.Contains(t, out, "typedef struct { } void_t;")
}

func TestGenerateHonorsCustomRuntimeHeader(t *testing.T) {
	out := generate(t, "let x = 1\n", "custom/header.h")
	require.Contains(t, out, `#include "custom/header.h"`)
	require.NotContains(t, out, `"rt/runtime.h"`)
}

func TestGenerateEmitsFnAsCFunction(t *testing.T) {
	out := generate(t, "fn add(x: int, y: int): int {\n  return x + y\n}\n", "")
	require.Contains(t, out, "int64_t jpl_add(int64_t p_x, int64_t p_y) {")
	require.Contains(t, out, "(p_x) + (p_y);")
	require.Contains(t, out, "return _t")
}

func TestGenerateEmitsStructTypedef(t *testing.T) {
	src := "struct Point {\n  x: int\n  y: int\n}\nlet p = Point{1, 2}\n"
	out := generate(t, src, "")
	require.Contains(t, out, "typedef struct { int64_t x; int64_t y; } struct_Point;")
}

func TestGenerateEmitsArrayShapeTypedef(t *testing.T) {
	out := generate(t, "let a = array[i: 10] i\n", "")
	require.Contains(t, out, "int64_t *data;")
	require.Contains(t, out, "int64_t d0;")
}

func TestGenerateAssertLowersToFailAssertion(t *testing.T) {
	out := generate(t, `assert true, "always holds"`+"\n", "")
	require.Contains(t, out, "_fail_assertion(")
	require.Contains(t, out, `"always holds"`)
}

func TestGenerateMainEntryPoint(t *testing.T) {
	out := generate(t, "let x = 1\n", "")
	require.Contains(t, out, "jpl_main(struct args args)")
}
