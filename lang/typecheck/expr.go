package typecheck

import (
	"github.com/jplc/jplc/lang/ast"
	"github.com/jplc/jplc/lang/srcfile"
	"github.com/jplc/jplc/lang/symtab"
	"github.com/jplc/jplc/lang/types"
)

// checkExpr resolves e's type in ctx, storing the result on e, and
// recursively type-checks every subexpression first.
func (c *Checker) checkExpr(ctx *symtab.Context, e ast.Expr) error {
	switch n := e.(type) {
	case *ast.IntExpr:
		n.SetType(types.Int{})
		return nil
	case *ast.FloatExpr:
		n.SetType(types.Float{})
		return nil
	case *ast.TrueExpr:
		n.SetType(types.Bool{})
		return nil
	case *ast.FalseExpr:
		n.SetType(types.Bool{})
		return nil
	case *ast.VoidExpr:
		n.SetType(types.Void{})
		return nil
	case *ast.VarExpr:
		return c.checkVarExpr(ctx, n)
	case *ast.ArrayLiteralExpr:
		return c.checkArrayLiteral(ctx, n)
	case *ast.StructLiteralExpr:
		return c.checkStructLiteral(ctx, n)
	case *ast.DotExpr:
		return c.checkDotExpr(ctx, n)
	case *ast.ArrayIndexExpr:
		return c.checkArrayIndex(ctx, n)
	case *ast.CallExpr:
		return c.checkCallExpr(ctx, n)
	case *ast.UnopExpr:
		return c.checkUnopExpr(ctx, n)
	case *ast.BinopExpr:
		return c.checkBinopExpr(ctx, n)
	case *ast.IfExpr:
		return c.checkIfExpr(ctx, n)
	case *ast.ArrayLoopExpr:
		return c.checkArrayLoop(ctx, n)
	case *ast.SumLoopExpr:
		return c.checkSumLoop(ctx, n)
	default:
		return srcfile.NewError(e.Offset(), "unknown expression node")
	}
}

func (c *Checker) checkVarExpr(ctx *symtab.Context, n *ast.VarExpr) error {
	v, ok := ctx.LookupValue(n.Name)
	if !ok {
		return srcfile.NewError(n.Offset(), "undeclared variable %s", n.Name)
	}
	n.SetType(v.Type)
	return nil
}

func (c *Checker) checkArrayLiteral(ctx *symtab.Context, n *ast.ArrayLiteralExpr) error {
	var elemType types.Type = types.Void{}
	for i, el := range n.Elements {
		if err := c.checkExpr(ctx, el); err != nil {
			return err
		}
		if i == 0 {
			elemType = el.Type()
			continue
		}
		if !el.Type().Equal(elemType) {
			return srcfile.NewError(el.Offset(), "array literal elements must share a type: expected %s, got %s", elemType.String(), el.Type().String())
		}
	}
	n.SetType(types.Array{Elem: elemType, Rank: 1})
	return nil
}

func (c *Checker) checkStructLiteral(ctx *symtab.Context, n *ast.StructLiteralExpr) error {
	info, ok := ctx.LookupStruct(n.StructName)
	if !ok {
		return srcfile.NewError(n.Offset(), "undeclared struct %s", n.StructName)
	}
	if len(n.Fields) != len(info.Fields) {
		return srcfile.NewError(n.Offset(), "struct %s expects %d fields, got %d", n.StructName, len(info.Fields), len(n.Fields))
	}
	for i, f := range n.Fields {
		if err := c.checkExpr(ctx, f); err != nil {
			return err
		}
		want := info.Fields[i].Type
		if !f.Type().Equal(want) {
			return srcfile.NewError(f.Offset(), "struct %s field %s expects %s, got %s", n.StructName, info.Fields[i].Name, want.String(), f.Type().String())
		}
	}
	n.SetType(types.Struct{Name: n.StructName})
	return nil
}

func (c *Checker) checkDotExpr(ctx *symtab.Context, n *ast.DotExpr) error {
	if err := c.checkExpr(ctx, n.Target); err != nil {
		return err
	}
	st, ok := n.Target.Type().(types.Struct)
	if !ok {
		return srcfile.NewError(n.Target.Offset(), "field access on non-struct type %s", n.Target.Type().String())
	}
	info, ok := ctx.LookupStruct(st.Name)
	if !ok {
		return srcfile.NewError(n.Offset(), "undeclared struct %s", st.Name)
	}
	idx := info.FieldIndex(n.Field)
	if idx < 0 {
		return srcfile.NewError(n.Offset(), "struct %s has no field %s", st.Name, n.Field)
	}
	n.SetType(info.Fields[idx].Type)
	return nil
}

func (c *Checker) checkArrayIndex(ctx *symtab.Context, n *ast.ArrayIndexExpr) error {
	if err := c.checkExpr(ctx, n.Target); err != nil {
		return err
	}
	arr, ok := n.Target.Type().(types.Array)
	if !ok {
		return srcfile.NewError(n.Target.Offset(), "indexing a non-array type %s", n.Target.Type().String())
	}
	if len(n.Indices) != arr.Rank {
		return srcfile.NewError(n.Offset(), "array of rank %d indexed with %d indices", arr.Rank, len(n.Indices))
	}
	for _, idx := range n.Indices {
		if err := c.checkExpr(ctx, idx); err != nil {
			return err
		}
		if !idx.Type().Equal(types.Int{}) {
			return srcfile.NewError(idx.Offset(), "array index must be int, got %s", idx.Type().String())
		}
	}
	n.SetType(arr.Elem)
	return nil
}

func (c *Checker) checkCallExpr(ctx *symtab.Context, n *ast.CallExpr) error {
	fn, ok := ctx.LookupFn(n.Name)
	if !ok {
		return srcfile.NewError(n.Offset(), "undeclared function %s", n.Name)
	}
	if len(n.Args) != len(fn.ParamTypes) {
		return srcfile.NewError(n.Offset(), "function %s expects %d arguments, got %d", n.Name, len(fn.ParamTypes), len(n.Args))
	}
	for i, a := range n.Args {
		if err := c.checkExpr(ctx, a); err != nil {
			return err
		}
		if !a.Type().Equal(fn.ParamTypes[i]) {
			return srcfile.NewError(a.Offset(), "function %s argument %d expects %s, got %s", n.Name, i+1, fn.ParamTypes[i].String(), a.Type().String())
		}
	}
	n.SetType(fn.ReturnType)
	return nil
}

func (c *Checker) checkUnopExpr(ctx *symtab.Context, n *ast.UnopExpr) error {
	if err := c.checkExpr(ctx, n.Operand); err != nil {
		return err
	}
	switch n.Op {
	case "-":
		if !types.IsNumeric(n.Operand.Type()) {
			return srcfile.NewError(n.Offset(), "unary - requires int or float, got %s", n.Operand.Type().String())
		}
		n.SetType(n.Operand.Type())
	case "!":
		if !n.Operand.Type().Equal(types.Bool{}) {
			return srcfile.NewError(n.Offset(), "unary ! requires bool, got %s", n.Operand.Type().String())
		}
		n.SetType(types.Bool{})
	default:
		return srcfile.NewError(n.Offset(), "unknown unary operator %s", n.Op)
	}
	return nil
}

func (c *Checker) checkBinopExpr(ctx *symtab.Context, n *ast.BinopExpr) error {
	if err := c.checkExpr(ctx, n.Left); err != nil {
		return err
	}
	if err := c.checkExpr(ctx, n.Right); err != nil {
		return err
	}
	lt, rt := n.Left.Type(), n.Right.Type()
	switch n.Op {
	case "==", "!=":
		if !lt.Equal(rt) {
			return srcfile.NewError(n.Offset(), "%s requires matching types, got %s and %s", n.Op, lt.String(), rt.String())
		}
		n.SetType(types.Bool{})
	case "&&", "||":
		if !lt.Equal(types.Bool{}) || !rt.Equal(types.Bool{}) {
			return srcfile.NewError(n.Offset(), "%s requires bool operands, got %s and %s", n.Op, lt.String(), rt.String())
		}
		n.SetType(types.Bool{})
	case "<", ">", "<=", ">=":
		if !lt.Equal(rt) || !types.IsNumeric(lt) {
			return srcfile.NewError(n.Offset(), "%s requires matching int or float operands, got %s and %s", n.Op, lt.String(), rt.String())
		}
		n.SetType(types.Bool{})
	case "+", "-", "*", "/", "%":
		if !lt.Equal(rt) || !types.IsNumeric(lt) {
			return srcfile.NewError(n.Offset(), "%s requires matching int or float operands, got %s and %s", n.Op, lt.String(), rt.String())
		}
		n.SetType(lt)
	default:
		return srcfile.NewError(n.Offset(), "unknown binary operator %s", n.Op)
	}
	return nil
}

func (c *Checker) checkIfExpr(ctx *symtab.Context, n *ast.IfExpr) error {
	if err := c.checkExpr(ctx, n.Cond); err != nil {
		return err
	}
	if !n.Cond.Type().Equal(types.Bool{}) {
		return srcfile.NewError(n.Cond.Offset(), "if condition must be bool, got %s", n.Cond.Type().String())
	}
	if err := c.checkExpr(ctx, n.Then); err != nil {
		return err
	}
	if err := c.checkExpr(ctx, n.Else); err != nil {
		return err
	}
	if !n.Then.Type().Equal(n.Else.Type()) {
		return srcfile.NewError(n.Offset(), "if branches must have matching types, got %s and %s", n.Then.Type().String(), n.Else.Type().String())
	}
	n.SetType(n.Then.Type())
	return nil
}

// checkAxes type-checks each axis bound in the enclosing scope outer and
// binds the axis variable to Int in the child scope ctx. Shared by
// ArrayLoop and SumLoop.
func (c *Checker) checkAxes(outer *symtab.Context, ctx *symtab.Context, axes []ast.Axis) error {
	for _, ax := range axes {
		if err := c.checkExpr(outer, ax.Bound); err != nil {
			return err
		}
		if !ax.Bound.Type().Equal(types.Int{}) {
			return srcfile.NewError(ax.Bound.Offset(), "loop bound must be int, got %s", ax.Bound.Type().String())
		}
		if ctx.DeclaredLocally(ax.Var) {
			return srcfile.NewError(ax.VarOffset, "Redeclaration of %s", ax.Var)
		}
		ctx.Declare(ax.Var, symtab.ValueInfo{Type: types.Int{}})
	}
	return nil
}

func (c *Checker) checkArrayLoop(ctx *symtab.Context, n *ast.ArrayLoopExpr) error {
	if len(n.Axes) == 0 {
		return srcfile.NewError(n.Offset(), "array loop requires at least one axis")
	}
	child := ctx.NewChild()
	if err := c.checkAxes(ctx, child, n.Axes); err != nil {
		return err
	}
	if err := c.checkExpr(child, n.Body); err != nil {
		return err
	}
	n.SetType(types.Array{Elem: n.Body.Type(), Rank: len(n.Axes)})
	return nil
}

func (c *Checker) checkSumLoop(ctx *symtab.Context, n *ast.SumLoopExpr) error {
	if len(n.Axes) == 0 {
		return srcfile.NewError(n.Offset(), "sum loop requires at least one axis")
	}
	child := ctx.NewChild()
	if err := c.checkAxes(ctx, child, n.Axes); err != nil {
		return err
	}
	if err := c.checkExpr(child, n.Body); err != nil {
		return err
	}
	if !types.IsNumeric(n.Body.Type()) {
		return srcfile.NewError(n.Body.Offset(), "sum loop body must be int or float, got %s", n.Body.Type().String())
	}
	n.SetType(n.Body.Type())
	return nil
}
