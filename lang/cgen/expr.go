package cgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jplc/jplc/lang/ast"
	"github.com/jplc/jplc/lang/types"
)

// genExpr lowers e to a C expression string, emitting whatever helper
// statements it needs (temporaries, allocation calls, bound-check gotos)
// directly into the generator's buffer first. Literals and bare variable
// references are returned as plain C expressions; anything that needs
// intermediate state materializes into a fresh temporary.
func (g *Generator) genExpr(sc *scope, e ast.Expr) (string, error) {
	switch n := e.(type) {
	case *ast.IntExpr:
		return strconv.FormatInt(n.Value, 10), nil
	case *ast.FloatExpr:
		return floatLiteral(n.Value), nil
	case *ast.TrueExpr:
		return "true", nil
	case *ast.FalseExpr:
		return "false", nil
	case *ast.VoidExpr:
		return "((void_t){})", nil
	case *ast.VarExpr:
		c, ok := sc.lookup(n.Name)
		if !ok {
			return "", fmt.Errorf("cgen: undeclared variable %s reached codegen", n.Name)
		}
		return c, nil
	case *ast.ArrayLiteralExpr:
		return g.genArrayLiteral(sc, n)
	case *ast.StructLiteralExpr:
		return g.genStructLiteral(sc, n)
	case *ast.DotExpr:
		return g.genDotExpr(sc, n)
	case *ast.ArrayIndexExpr:
		return g.genArrayIndex(sc, n)
	case *ast.CallExpr:
		return g.genCallExpr(sc, n)
	case *ast.UnopExpr:
		return g.genUnopExpr(sc, n)
	case *ast.BinopExpr:
		return g.genBinopExpr(sc, n)
	case *ast.IfExpr:
		return g.genIfExpr(sc, n)
	case *ast.ArrayLoopExpr:
		return g.genArrayLoop(sc, n)
	case *ast.SumLoopExpr:
		return g.genSumLoop(sc, n)
	default:
		return "", fmt.Errorf("cgen: unknown expression node")
	}
}

func floatLiteral(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func (g *Generator) genArrayLiteral(sc *scope, n *ast.ArrayLiteralExpr) (string, error) {
	arr := n.Type().(types.Array)
	shape := g.cType(arr)
	elemC := g.cType(arr.Elem)
	elems := make([]string, len(n.Elements))
	for i, el := range n.Elements {
		v, err := g.genExpr(sc, el)
		if err != nil {
			return "", err
		}
		elems[i] = v
	}
	tmp := g.freshTemp()
	g.writef("%s %s;\n", shape, tmp)
	g.writef("%s.data = (%s *)_jpl_alloc(sizeof(%s) * %d);\n", tmp, elemC, elemC, len(elems))
	g.writef("%s.d0 = %d;\n", tmp, len(elems))
	for i, v := range elems {
		g.writef("%s.data[%d] = %s;\n", tmp, i, v)
	}
	return tmp, nil
}

func (g *Generator) genStructLiteral(sc *scope, n *ast.StructLiteralExpr) (string, error) {
	info, _ := g.root.LookupStruct(n.StructName)
	tmp := g.freshTemp()
	g.writef("struct_%s %s;\n", n.StructName, tmp)
	for i, f := range n.Fields {
		v, err := g.genExpr(sc, f)
		if err != nil {
			return "", err
		}
		g.writef("%s.%s = %s;\n", tmp, cName(info.Fields[i].Name), v)
	}
	return tmp, nil
}

func (g *Generator) genDotExpr(sc *scope, n *ast.DotExpr) (string, error) {
	target, err := g.genExpr(sc, n.Target)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s).%s", target, cName(n.Field)), nil
}

func (g *Generator) genArrayIndex(sc *scope, n *ast.ArrayIndexExpr) (string, error) {
	target, err := g.genExpr(sc, n.Target)
	if err != nil {
		return "", err
	}
	idxVars := make([]string, len(n.Indices))
	for i, idx := range n.Indices {
		v, err := g.genExpr(sc, idx)
		if err != nil {
			return "", err
		}
		idxTmp := g.freshTemp()
		g.writef("int64_t %s = %s;\n", idxTmp, v)
		idxVars[i] = idxTmp
	}

	arrTmp := g.freshTemp()
	elemC := g.cType(n.Type())
	g.writef("%s %s;\n", elemC, arrTmp)
	g.writeln("{")
	okLabel := g.freshLabel("idx_ok")
	for i, idxVar := range idxVars {
		g.writef("if (%s < 0 || %s >= (%s).d%d) goto %s_fail;\n", idxVar, idxVar, target, i, okLabel)
	}
	g.writef("goto %s;\n", okLabel)
	g.writef("%s_fail:\n", okLabel)
	g.writeln(`_fail_assertion("index out of bounds");`)
	g.writef("%s:;\n", okLabel)
	g.writef("int64_t %s_lin = %s;\n", okLabel, idxVars[0])
	for i := 1; i < len(idxVars); i++ {
		g.writef("%s_lin = %s_lin * (%s).d%d + %s;\n", okLabel, okLabel, target, i, idxVars[i])
	}
	g.writef("%s = (%s).data[%s_lin];\n", arrTmp, target, okLabel)
	g.writeln("}")
	return arrTmp, nil
}

func (g *Generator) genCallExpr(sc *scope, n *ast.CallExpr) (string, error) {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		v, err := g.genExpr(sc, a)
		if err != nil {
			return "", err
		}
		args[i] = v
	}
	call := fmt.Sprintf("%s(%s)", builtinOrUserName(n.Name), strings.Join(args, ", "))
	if types.IsVoid(n.Type()) {
		g.writef("%s;\n", call)
		return "((void_t){})", nil
	}
	tmp := g.freshTemp()
	g.writef("%s %s = %s;\n", g.cType(n.Type()), tmp, call)
	return tmp, nil
}

// builtinOrUserName maps JPL built-in math function names to the runtime's
// extern symbols (`_sin`, `_sqrt`, ...); user functions keep their name.
func builtinOrUserName(name string) string {
	switch name {
	case "sin", "cos", "tan", "asin", "acos", "atan", "log", "exp", "sqrt",
		"pow", "atan2", "to_int", "to_float":
		return "_" + name
	default:
		return "jpl_" + name
	}
}

func (g *Generator) genUnopExpr(sc *scope, n *ast.UnopExpr) (string, error) {
	v, err := g.genExpr(sc, n.Operand)
	if err != nil {
		return "", err
	}
	tmp := g.freshTemp()
	g.writef("%s %s = %s(%s);\n", g.cType(n.Type()), tmp, n.Op, v)
	return tmp, nil
}

func (g *Generator) genBinopExpr(sc *scope, n *ast.BinopExpr) (string, error) {
	if n.Op == "&&" || n.Op == "||" {
		return g.genShortCircuit(sc, n)
	}

	l, err := g.genExpr(sc, n.Left)
	if err != nil {
		return "", err
	}
	r, err := g.genExpr(sc, n.Right)
	if err != nil {
		return "", err
	}

	isInt := n.Left.Type().Equal(types.Int{})
	tmp := g.freshTemp()
	switch n.Op {
	case "/":
		if isInt {
			g.writef("if (%s == 0) _fail_assertion(\"divide by zero\");\n", r)
		}
	case "%":
		if isInt {
			g.writef("if (%s == 0) _fail_assertion(\"mod by zero\");\n", r)
			g.writef("%s %s = %s %% %s;\n", g.cType(n.Type()), tmp, l, r)
			return tmp, nil
		}
		g.writef("%s %s = _fmod(%s, %s);\n", g.cType(n.Type()), tmp, l, r)
		return tmp, nil
	}
	g.writef("%s %s = (%s) %s (%s);\n", g.cType(n.Type()), tmp, l, n.Op, r)
	return tmp, nil
}

// genShortCircuit lowers && and || with an explicit branch around the
// right operand, matching the assembly backend's short-circuit discipline
// instead of relying on C's own (also short-circuiting) && / ||, so that
// intermediate temporaries for the right side are only ever emitted when
// actually evaluated.
func (g *Generator) genShortCircuit(sc *scope, n *ast.BinopExpr) (string, error) {
	l, err := g.genExpr(sc, n.Left)
	if err != nil {
		return "", err
	}
	tmp := g.freshTemp()
	g.writef("bool %s;\n", tmp)
	skip := g.freshLabel("sc")
	if n.Op == "&&" {
		g.writef("if (!(%s)) { %s = false; goto %s; }\n", l, tmp, skip)
	} else {
		g.writef("if (%s) { %s = true; goto %s; }\n", l, tmp, skip)
	}
	r, err := g.genExpr(sc, n.Right)
	if err != nil {
		return "", err
	}
	g.writef("%s = (%s);\n", tmp, r)
	g.writef("%s:;\n", skip)
	return tmp, nil
}

func (g *Generator) genIfExpr(sc *scope, n *ast.IfExpr) (string, error) {
	cond, err := g.genExpr(sc, n.Cond)
	if err != nil {
		return "", err
	}
	tmp := g.freshTemp()
	g.writef("%s %s;\n", g.cType(n.Type()), tmp)
	elseLabel := g.freshLabel("else")
	endLabel := g.freshLabel("endif")
	g.writef("if (!(%s)) goto %s;\n", cond, elseLabel)
	thenV, err := g.genExpr(sc, n.Then)
	if err != nil {
		return "", err
	}
	g.writef("%s = %s;\n", tmp, thenV)
	g.writef("goto %s;\n", endLabel)
	g.writef("%s:;\n", elseLabel)
	elseV, err := g.genExpr(sc, n.Else)
	if err != nil {
		return "", err
	}
	g.writef("%s = %s;\n", tmp, elseV)
	g.writef("%s:;\n", endLabel)
	return tmp, nil
}

// genAxes evaluates and positivity-checks every axis bound, binding each
// axis variable to a fresh C loop counter in a child scope. Returns the
// child scope, the counter names (one per axis) and the bound names.
func (g *Generator) genAxes(sc *scope, axes []ast.Axis) (*scope, []string, []string, error) {
	child := newScope(sc)
	counters := make([]string, len(axes))
	bounds := make([]string, len(axes))
	for i, ax := range axes {
		b, err := g.genExpr(sc, ax.Bound)
		if err != nil {
			return nil, nil, nil, err
		}
		boundTmp := g.freshTemp()
		g.writef("int64_t %s = %s;\n", boundTmp, b)
		g.writef("if (%s <= 0) _fail_assertion(\"non-positive loop bound\");\n", boundTmp)
		bounds[i] = boundTmp

		counter := "v_" + cName(ax.Var) + fmt.Sprintf("_%d", g.freshTempN())
		child.bind(ax.Var, counter)
		counters[i] = counter
	}
	return child, counters, bounds, nil
}

func (g *Generator) freshTempN() int {
	g.tmp++
	return g.tmp
}

func (g *Generator) genArrayLoop(sc *scope, n *ast.ArrayLoopExpr) (string, error) {
	arr := n.Type().(types.Array)
	shape := g.cType(arr)
	elemC := g.cType(arr.Elem)

	child, counters, bounds, err := g.genAxes(sc, n.Axes)
	if err != nil {
		return "", err
	}

	sizeTmp := g.freshTemp()
	g.writef("int64_t %s = 1;\n", sizeTmp)
	for _, b := range bounds {
		g.writef("%s *= %s;\n", sizeTmp, b)
	}

	resTmp := g.freshTemp()
	g.writef("%s %s;\n", shape, resTmp)
	g.writef("%s.data = (%s *)_jpl_alloc(sizeof(%s) * %s);\n", resTmp, elemC, elemC, sizeTmp)
	for i, b := range bounds {
		g.writef("%s.d%d = %s;\n", resTmp, i, b)
	}

	for i, counter := range counters {
		g.writef("for (int64_t %s = 0; %s < %s; %s++) {\n", counter, counter, bounds[i], counter)
		_ = i
	}

	bodyV, err := g.genExpr(child, n.Body)
	if err != nil {
		return "", err
	}
	linTmp := g.freshTemp()
	g.writef("int64_t %s = %s;\n", linTmp, counters[0])
	for i := 1; i < len(counters); i++ {
		g.writef("%s = %s * %s + %s;\n", linTmp, linTmp, bounds[i], counters[i])
	}
	g.writef("%s.data[%s] = %s;\n", resTmp, linTmp, bodyV)

	for range counters {
		g.writeln("}")
	}

	return resTmp, nil
}

func (g *Generator) genSumLoop(sc *scope, n *ast.SumLoopExpr) (string, error) {
	child, counters, bounds, err := g.genAxes(sc, n.Axes)
	if err != nil {
		return "", err
	}

	accTmp := g.freshTemp()
	elemC := g.cType(n.Type())
	zero := "0"
	if n.Type().Equal(types.Float{}) {
		zero = "0.0"
	}
	g.writef("%s %s = %s;\n", elemC, accTmp, zero)

	for i, counter := range counters {
		g.writef("for (int64_t %s = 0; %s < %s; %s++) {\n", counter, counter, bounds[i], counter)
		_ = i
	}
	bodyV, err := g.genExpr(child, n.Body)
	if err != nil {
		return "", err
	}
	g.writef("%s += %s;\n", accTmp, bodyV)
	for range counters {
		g.writeln("}")
	}
	return accTmp, nil
}
