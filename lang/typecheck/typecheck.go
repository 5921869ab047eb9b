// Package typecheck resolves every expression in a JPL program to a
// concrete runtime type, validates the language's static rules, and builds
// the scoped symbol context that the code generators read field layouts
// and function signatures from.
package typecheck

import (
	"golang.org/x/exp/slices"

	"github.com/jplc/jplc/lang/ast"
	"github.com/jplc/jplc/lang/srcfile"
	"github.com/jplc/jplc/lang/symtab"
	"github.com/jplc/jplc/lang/types"
)

// Checker threads a single root symbol context through one left-to-right
// traversal of the program. Names must be declared before use; there is no
// forward-reference pass.
type Checker struct {
	root *symtab.Context

	// retType and sawReturn track the function currently being checked, nil
	// outside of a Fn body.
	retType  types.Type
	sawReturn bool
}

// Check type-checks an entire program, returning the first fatal error
// encountered, or nil on success. It is safe to call on an already-checked
// program: resolving the same node twice yields the same resolved type.
func Check(prog *ast.Program) (*symtab.Context, error) {
	c := &Checker{root: rootContext()}
	for _, cmd := range prog.Cmds {
		if err := c.checkCmd(c.root, cmd); err != nil {
			return nil, err
		}
	}
	return c.root, nil
}

func (c *Checker) checkCmd(ctx *symtab.Context, cmd ast.Cmd) error {
	switch n := cmd.(type) {
	case *ast.ReadCmd:
		return c.checkReadCmd(ctx, n)
	case *ast.WriteCmd:
		return c.checkWriteCmd(ctx, n)
	case *ast.LetCmd:
		return c.checkLetBinding(ctx, n.LV, n.Value)
	case *ast.AssertCmd:
		return c.checkAssert(ctx, n.Cond)
	case *ast.PrintCmd:
		return nil
	case *ast.ShowCmd:
		return c.checkExpr(ctx, n.Value)
	case *ast.TimeCmd:
		return c.checkCmd(ctx, n.Cmd)
	case *ast.FnCmd:
		return c.checkFnCmd(ctx, n)
	case *ast.StructCmd:
		return c.checkStructCmd(ctx, n)
	default:
		return srcfile.NewError(cmd.Offset(), "unknown command node")
	}
}

func (c *Checker) checkReadCmd(ctx *symtab.Context, n *ast.ReadCmd) error {
	lv := n.LV
	if ctx.DeclaredLocally(lv.Ident) {
		return srcfile.NewError(n.Offset(), "Redeclaration of %s", lv.Ident)
	}
	ctx.Declare(lv.Ident, symtab.ValueInfo{Type: types.Array{Elem: types.Struct{Name: "rgba"}, Rank: 2}})
	return nil
}

func (c *Checker) checkWriteCmd(ctx *symtab.Context, n *ast.WriteCmd) error {
	if err := c.checkExpr(ctx, n.Value); err != nil {
		return err
	}
	want := types.Array{Elem: types.Struct{Name: "rgba"}, Rank: 2}
	if !n.Value.Type().Equal(want) {
		return srcfile.NewError(n.Value.Offset(), "write image expects %s, got %s", want.String(), n.Value.Type().String())
	}
	return nil
}

func (c *Checker) checkAssert(ctx *symtab.Context, cond ast.Expr) error {
	if err := c.checkExpr(ctx, cond); err != nil {
		return err
	}
	if !cond.Type().Equal(types.Bool{}) {
		return srcfile.NewError(cond.Offset(), "assert condition must be bool, got %s", cond.Type().String())
	}
	return nil
}

// checkLetBinding type-checks the bound expression and declares the
// lvalue (and, for array lvalues, its index binders) in ctx. Shared by
// top-level Let commands and in-function Let statements.
func (c *Checker) checkLetBinding(ctx *symtab.Context, lv ast.LValue, value ast.Expr) error {
	if err := c.checkExpr(ctx, value); err != nil {
		return err
	}
	if ctx.DeclaredLocally(lv.Name()) {
		return srcfile.NewError(lv.Offset(), "Redeclaration of %s", lv.Name())
	}
	switch l := lv.(type) {
	case *ast.VarLValue:
		ctx.Declare(l.Ident, symtab.ValueInfo{Type: value.Type()})
	case *ast.ArrayLValue:
		arr, ok := value.Type().(types.Array)
		if !ok || arr.Rank != len(l.Indices) {
			return srcfile.NewError(lv.Offset(), "array lvalue of rank %d requires an array of matching rank, got %s", len(l.Indices), value.Type().String())
		}
		ctx.Declare(l.Ident, symtab.ValueInfo{Type: arr})
		for _, idx := range l.Indices {
			if ctx.DeclaredLocally(idx) {
				return srcfile.NewError(lv.Offset(), "Redeclaration of %s", idx)
			}
			ctx.Declare(idx, symtab.ValueInfo{Type: types.Int{}})
		}
	default:
		return srcfile.NewError(lv.Offset(), "unknown lvalue node")
	}
	return nil
}

func (c *Checker) checkFnCmd(ctx *symtab.Context, n *ast.FnCmd) error {
	if ctx.DeclaredLocally(n.Name) {
		return srcfile.NewError(n.Offset(), "Redeclaration of %s", n.Name)
	}
	fnCtx := ctx.NewChild()
	var paramTypes []types.Type
	for _, p := range n.Params {
		pt, err := c.resolveTypeNode(p.Ty)
		if err != nil {
			return err
		}
		varLV, ok := p.LV.(*ast.VarLValue)
		if !ok {
			return srcfile.NewError(p.Offset(), "function parameters must be plain variables")
		}
		if fnCtx.DeclaredLocally(varLV.Ident) {
			return srcfile.NewError(p.Offset(), "Redeclaration of %s", varLV.Ident)
		}
		fnCtx.Declare(varLV.Ident, symtab.ValueInfo{Type: pt})
		paramTypes = append(paramTypes, pt)
	}
	retType, err := c.resolveTypeNode(n.Ret)
	if err != nil {
		return err
	}

	// The function's own name is declared in the *enclosing* scope before
	// its body is checked, so recursive calls resolve.
	ctx.Declare(n.Name, symtab.FnInfo{ParamTypes: paramTypes, ReturnType: retType})

	savedRet, savedSaw := c.retType, c.sawReturn
	c.retType, c.sawReturn = retType, false
	for _, stmt := range n.Body {
		if err := c.checkStmt(fnCtx, stmt); err != nil {
			c.retType, c.sawReturn = savedRet, savedSaw
			return err
		}
	}
	sawReturn := c.sawReturn
	c.retType, c.sawReturn = savedRet, savedSaw

	if !types.IsVoid(retType) && !sawReturn {
		return srcfile.NewError(n.Offset(), "function %s must return on some path", n.Name)
	}
	return nil
}

func (c *Checker) checkStructCmd(ctx *symtab.Context, n *ast.StructCmd) error {
	if ctx.DeclaredLocally(n.Name) {
		return srcfile.NewError(n.Offset(), "Redeclaration of %s", n.Name)
	}
	fields := make([]symtab.StructField, 0, len(n.Fields))
	for _, f := range n.Fields {
		if slices.ContainsFunc(fields, func(sf symtab.StructField) bool { return sf.Name == f.Name }) {
			return srcfile.NewError(n.Offset(), "Redeclaration of struct field %s", f.Name)
		}
		ft, err := c.resolveTypeNode(f.Ty)
		if err != nil {
			return err
		}
		fields = append(fields, symtab.StructField{Name: f.Name, Type: ft})
	}
	ctx.Declare(n.Name, symtab.StructInfo{Fields: fields})
	return nil
}

func (c *Checker) checkStmt(ctx *symtab.Context, stmt ast.Stmt) error {
	switch n := stmt.(type) {
	case *ast.LetStmt:
		return c.checkLetBinding(ctx, n.LV, n.Value)
	case *ast.AssertStmt:
		return c.checkAssert(ctx, n.Cond)
	case *ast.ReturnStmt:
		if err := c.checkExpr(ctx, n.Value); err != nil {
			return err
		}
		if !n.Value.Type().Equal(c.retType) {
			return srcfile.NewError(n.Offset(), "return type mismatch: expected %s, got %s", c.retType.String(), n.Value.Type().String())
		}
		c.sawReturn = true
		return nil
	default:
		return srcfile.NewError(stmt.Offset(), "unknown statement node")
	}
}

// resolveTypeNode resolves a syntactic type node to its runtime Type,
// storing the result on the node itself.
func (c *Checker) resolveTypeNode(t ast.TypeNode) (types.Type, error) {
	switch n := t.(type) {
	case *ast.IntType:
		n.SetResolved(types.Int{})
		return types.Int{}, nil
	case *ast.BoolType:
		n.SetResolved(types.Bool{})
		return types.Bool{}, nil
	case *ast.FloatType:
		n.SetResolved(types.Float{})
		return types.Float{}, nil
	case *ast.VoidTypeNode:
		n.SetResolved(types.Void{})
		return types.Void{}, nil
	case *ast.StructTypeNode:
		if _, ok := c.root.LookupStruct(n.Name); !ok {
			return nil, srcfile.NewError(n.Offset(), "undeclared struct %s", n.Name)
		}
		rt := types.Struct{Name: n.Name}
		n.SetResolved(rt)
		return rt, nil
	case *ast.ArrayTypeNode:
		elem, err := c.resolveTypeNode(n.Elem)
		if err != nil {
			return nil, err
		}
		rt := types.Array{Elem: elem, Rank: n.Rank}
		n.SetResolved(rt)
		return rt, nil
	default:
		return nil, srcfile.NewError(t.Offset(), "unknown type node")
	}
}

// ResolveStruct looks up a struct's field layout in ctx by name, e.g. in
// the root context returned from Check. The code generators do not call
// it; they look the layout up in the root context themselves.
func ResolveStruct(ctx *symtab.Context, s types.Struct) symtab.StructInfo {
	info, _ := ctx.LookupStruct(s.Name)
	return info
}
