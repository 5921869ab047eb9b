package cgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jplc/jplc/lang/ast"
	"github.com/jplc/jplc/lang/types"
)

func (g *Generator) genFnCmd(n *ast.FnCmd) error {
	sc := newScope(nil)
	params := make([]string, len(n.Params))
	for i, p := range n.Params {
		varLV := p.LV.(*ast.VarLValue)
		cn := "p_" + cName(varLV.Ident)
		sc.bind(varLV.Ident, cn)
		params[i] = fmt.Sprintf("%s %s", g.cType(p.Ty.Resolved()), cn)
	}
	g.writef("%s jpl_%s(%s) {\n", g.cType(n.Ret.Resolved()), n.Name, strings.Join(params, ", "))
	for _, stmt := range n.Body {
		if err := g.genStmt(sc, stmt); err != nil {
			return err
		}
	}
	g.writeln("}")
	return nil
}

func (g *Generator) genStmt(sc *scope, stmt ast.Stmt) error {
	switch n := stmt.(type) {
	case *ast.LetStmt:
		return g.genLetBinding(sc, n.LV, n.Value)
	case *ast.AssertStmt:
		return g.genAssert(sc, n.Cond, n.Message)
	case *ast.ReturnStmt:
		v, err := g.genExpr(sc, n.Value)
		if err != nil {
			return err
		}
		g.writef("return %s;\n", v)
		return nil
	default:
		return fmt.Errorf("cgen: unknown statement node")
	}
}

func (g *Generator) genAssert(sc *scope, cond ast.Expr, message string) error {
	v, err := g.genExpr(sc, cond)
	if err != nil {
		return err
	}
	g.writef("if (!(%s)) _fail_assertion(%s);\n", v, strconv.Quote(message))
	return nil
}

// genLetBinding lowers a Let binding (shared by top-level Let commands and
// in-Fn Let statements): evaluate the expression, bind the lvalue's C
// name, and for an array lvalue also bind each index name to the
// corresponding dimension length of the bound array.
func (g *Generator) genLetBinding(sc *scope, lv ast.LValue, value ast.Expr) error {
	v, err := g.genExpr(sc, value)
	if err != nil {
		return err
	}
	switch l := lv.(type) {
	case *ast.VarLValue:
		cn := "v_" + cName(l.Ident) + fmt.Sprintf("_%d", g.freshTempN())
		g.writef("%s %s = %s;\n", g.cType(value.Type()), cn, v)
		sc.bind(l.Ident, cn)
	case *ast.ArrayLValue:
		cn := "v_" + cName(l.Ident) + fmt.Sprintf("_%d", g.freshTempN())
		g.writef("%s %s = %s;\n", g.cType(value.Type()), cn, v)
		sc.bind(l.Ident, cn)
		for i, idx := range l.Indices {
			icn := "v_" + cName(idx) + fmt.Sprintf("_%d", g.freshTempN())
			g.writef("int64_t %s = %s.d%d;\n", icn, cn, i)
			sc.bind(idx, icn)
		}
	default:
		return fmt.Errorf("cgen: unknown lvalue node")
	}
	return nil
}

// genMain lowers every top-level command (everything in prog.Cmds except
// Fn and Struct declarations, which were already emitted) into the body
// of jpl_main.
func (g *Generator) genMain(prog *ast.Program) error {
	g.writeln("void jpl_main(struct args args) {")
	sc := newScope(nil)
	for _, cmd := range prog.Cmds {
		switch cmd.(type) {
		case *ast.FnCmd, *ast.StructCmd:
			continue
		}
		if err := g.genTopCmd(sc, cmd); err != nil {
			return err
		}
	}
	g.writeln("}")
	return nil
}

func (g *Generator) genTopCmd(sc *scope, cmd ast.Cmd) error {
	switch n := cmd.(type) {
	case *ast.ReadCmd:
		shape := g.cType(types.Array{Elem: types.Struct{Name: "rgba"}, Rank: 2})
		cn := "v_" + cName(n.LV.Name()) + fmt.Sprintf("_%d", g.freshTempN())
		g.writef("%s %s;\n", shape, cn)
		g.writef("_read_image(&%s, %s);\n", cn, strconv.Quote(n.Path))
		sc.bind(n.LV.Name(), cn)
		return nil
	case *ast.WriteCmd:
		v, err := g.genExpr(sc, n.Value)
		if err != nil {
			return err
		}
		g.writef("_write_image(%s, %s);\n", v, strconv.Quote(n.Path))
		return nil
	case *ast.LetCmd:
		return g.genLetBinding(sc, n.LV, n.Value)
	case *ast.AssertCmd:
		return g.genAssert(sc, n.Cond, n.Message)
	case *ast.PrintCmd:
		g.writef("_print(%s);\n", strconv.Quote(n.Message))
		return nil
	case *ast.ShowCmd:
		v, err := g.genExpr(sc, n.Value)
		if err != nil {
			return err
		}
		tmp := g.freshTemp()
		g.writef("%s %s = %s;\n", g.cType(n.Value.Type()), tmp, v)
		g.writef("_show(%s, &%s);\n", strconv.Quote(n.Value.Type().String()), tmp)
		return nil
	case *ast.TimeCmd:
		startTmp := g.freshTemp()
		g.writef("double %s = _get_time();\n", startTmp)
		if err := g.genTopCmd(sc, n.Cmd); err != nil {
			return err
		}
		endTmp := g.freshTemp()
		g.writef("double %s = _get_time();\n", endTmp)
		g.writef("_print_time(%s, %s);\n", startTmp, endTmp)
		return nil
	default:
		return fmt.Errorf("cgen: unknown top-level command node")
	}
}
