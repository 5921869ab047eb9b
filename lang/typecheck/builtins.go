package typecheck

import (
	"github.com/jplc/jplc/lang/symtab"
	"github.com/jplc/jplc/lang/types"
)

// rootContext builds the pre-bound root scope: the `rgba` struct, the
// `args`/`argnum` command-line bindings, and the math built-in functions.
func rootContext() *symtab.Context {
	root := symtab.New()

	root.Declare("rgba", symtab.StructInfo{Fields: []symtab.StructField{
		{Name: "r", Type: types.Float{}},
		{Name: "g", Type: types.Float{}},
		{Name: "b", Type: types.Float{}},
		{Name: "a", Type: types.Float{}},
	}})

	root.Declare("args", symtab.ValueInfo{Type: types.Array{Elem: types.Int{}, Rank: 1}})
	root.Declare("argnum", symtab.ValueInfo{Type: types.Int{}})

	unaryFloat := []string{"sin", "cos", "tan", "asin", "acos", "atan", "log", "exp", "sqrt"}
	for _, name := range unaryFloat {
		root.Declare(name, symtab.FnInfo{
			ParamTypes: []types.Type{types.Float{}},
			ReturnType: types.Float{},
		})
	}

	root.Declare("pow", symtab.FnInfo{
		ParamTypes: []types.Type{types.Float{}, types.Float{}},
		ReturnType: types.Float{},
	})
	root.Declare("atan2", symtab.FnInfo{
		ParamTypes: []types.Type{types.Float{}, types.Float{}},
		ReturnType: types.Float{},
	})
	root.Declare("to_int", symtab.FnInfo{
		ParamTypes: []types.Type{types.Float{}},
		ReturnType: types.Int{},
	})
	root.Declare("to_float", symtab.FnInfo{
		ParamTypes: []types.Type{types.Int{}},
		ReturnType: types.Float{},
	})

	return root
}
