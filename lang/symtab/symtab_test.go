package symtab_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jplc/jplc/lang/symtab"
	"github.com/jplc/jplc/lang/types"
)

func TestContextDeclareAndLookup(t *testing.T) {
	root := symtab.New()
	root.Declare("x", symtab.ValueInfo{Type: types.Int{}})

	v, ok := root.LookupValue("x")
	require.True(t, ok)
	require.True(t, v.Type.Equal(types.Int{}))

	_, ok = root.LookupValue("y")
	require.False(t, ok)
}

func TestContextChildShadowsParent(t *testing.T) {
	root := symtab.New()
	root.Declare("x", symtab.ValueInfo{Type: types.Int{}})

	child := root.NewChild()
	require.False(t, child.DeclaredLocally("x"))
	v, ok := child.LookupValue("x")
	require.True(t, ok)
	require.True(t, v.Type.Equal(types.Int{}))

	child.Declare("x", symtab.ValueInfo{Type: types.Float{}})
	require.True(t, child.DeclaredLocally("x"))
	v, ok = child.LookupValue("x")
	require.True(t, ok)
	require.True(t, v.Type.Equal(types.Float{}))

	// The parent's binding is untouched by the child's shadowing declare.
	v, ok = root.LookupValue("x")
	require.True(t, ok)
	require.True(t, v.Type.Equal(types.Int{}))
}

func TestContextLookupFnAndStruct(t *testing.T) {
	root := symtab.New()
	root.Declare("add", symtab.FnInfo{
		ParamTypes: []types.Type{types.Int{}, types.Int{}},
		ReturnType: types.Int{},
	})
	root.Declare("Point", symtab.StructInfo{Fields: []symtab.StructField{
		{Name: "x", Type: types.Int{}},
		{Name: "y", Type: types.Int{}},
	}})

	fn, ok := root.LookupFn("add")
	require.True(t, ok)
	require.Len(t, fn.ParamTypes, 2)

	st, ok := root.LookupStruct("Point")
	require.True(t, ok)
	require.Equal(t, 0, st.FieldIndex("x"))
	require.Equal(t, 1, st.FieldIndex("y"))
	require.Equal(t, -1, st.FieldIndex("z"))

	// A name bound as one kind does not resolve through the wrong
	// typed accessor.
	_, ok = root.LookupValue("add")
	require.False(t, ok)
}

func TestStructInfoSizeAndOffset(t *testing.T) {
	resolve := func(s types.Struct) symtab.StructInfo {
		if s.Name == "Inner" {
			return symtab.StructInfo{Fields: []symtab.StructField{
				{Name: "a", Type: types.Int{}},
				{Name: "b", Type: types.Float{}},
			}}
		}
		t.Fatalf("unexpected struct lookup %s", s.Name)
		return symtab.StructInfo{}
	}

	outer := symtab.StructInfo{Fields: []symtab.StructField{
		{Name: "x", Type: types.Int{}},
		{Name: "inner", Type: types.Struct{Name: "Inner"}},
		{Name: "y", Type: types.Bool{}},
	}}

	require.Equal(t, 8+16+8, outer.Size(resolve))
	require.Equal(t, 0, outer.FieldOffset("x", resolve))
	require.Equal(t, 8, outer.FieldOffset("inner", resolve))
	require.Equal(t, 24, outer.FieldOffset("y", resolve))
}
