// Package cgen lowers a type-checked JPL program to a portable C
// translation unit: struct and array-shape typedefs, one C function per
// fn, and a void jpl_main(struct args args) entry point running the
// top-level commands.
package cgen

import (
	"bytes"
	"fmt"

	"github.com/jplc/jplc/lang/ast"
	"github.com/jplc/jplc/lang/symtab"
	"github.com/jplc/jplc/lang/types"
)

// Generator holds the state threaded through one full program lowering:
// the output buffer, the finished symbol context from type-checking, and
// the bookkeeping for fresh temporaries, labels and array-shape typedefs.
type Generator struct {
	buf  bytes.Buffer
	root *symtab.Context

	tmp   int
	label int

	shapeNames map[string]string // Array.String() -> C typedef name
	shapeOrder []string          // typedef bodies, in first-seen order
}

// Generate lowers prog (whose nodes must already carry resolved types
// from typecheck.Check, using root as the resulting symbol context) to a
// complete C translation unit. runtimeHeader is the #include path for the
// runtime support header (overridable via JPLC_RUNTIME_HEADER; defaults
// to "rt/runtime.h" if empty).
func Generate(prog *ast.Program, root *symtab.Context, runtimeHeader string) (string, error) {
	if runtimeHeader == "" {
		runtimeHeader = "rt/runtime.h"
	}
	g := &Generator{root: root, shapeNames: make(map[string]string)}

	g.collectShapes(prog)

	g.writef("#include %q\n", runtimeHeader)
	g.writeln(`typedef struct { } void_t;`)
	g.writeln("")
	for _, body := range g.shapeOrder {
		g.writeln(body)
	}
	g.writeln("")

	for _, cmd := range prog.Cmds {
		if fn, ok := cmd.(*ast.FnCmd); ok {
			if err := g.genFnCmd(fn); err != nil {
				return "", err
			}
			g.writeln("")
		}
		if sc, ok := cmd.(*ast.StructCmd); ok {
			g.writeln(g.structTypedef(sc))
			g.writeln("")
		}
	}

	if err := g.genMain(prog); err != nil {
		return "", err
	}

	return g.buf.String(), nil
}

func (g *Generator) writeln(s string) {
	g.buf.WriteString(s)
	g.buf.WriteByte('\n')
}

func (g *Generator) writef(format string, args ...any) {
	fmt.Fprintf(&g.buf, format, args...)
}

func (g *Generator) freshTemp() string {
	g.tmp++
	return fmt.Sprintf("_t%d", g.tmp)
}

func (g *Generator) freshLabel(prefix string) string {
	g.label++
	return fmt.Sprintf("_%s%d", prefix, g.label)
}

// cType renders the C type corresponding to a resolved JPL type, first
// registering any array-shape typedef it needs.
func (g *Generator) cType(t types.Type) string {
	switch v := t.(type) {
	case types.Int:
		return "int64_t"
	case types.Float:
		return "double"
	case types.Bool:
		return "bool"
	case types.Void:
		return "void_t"
	case types.Struct:
		return "struct_" + v.Name
	case types.Array:
		return g.registerShape(v)
	default:
		return "void_t"
	}
}

func cName(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			out = append(out, r)
		} else {
			out = append(out, '_')
		}
	}
	return string(out)
}

// registerShape returns the typedef name for an array shape, emitting its
// typedef body the first time that shape is seen.
func (g *Generator) registerShape(a types.Array) string {
	key := a.String()
	if name, ok := g.shapeNames[key]; ok {
		return name
	}
	elemC := g.cType(a.Elem)
	name := fmt.Sprintf("_a%d_%s", a.Rank, cName(elemC))
	g.shapeNames[key] = name

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "typedef struct { %s *data;", elemC)
	for i := 0; i < a.Rank; i++ {
		fmt.Fprintf(&buf, " int64_t d%d;", i)
	}
	fmt.Fprintf(&buf, " } %s;", name)
	g.shapeOrder = append(g.shapeOrder, buf.String())
	return name
}

func (g *Generator) structTypedef(sc *ast.StructCmd) string {
	info, _ := g.root.LookupStruct(sc.Name)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "typedef struct {")
	for _, f := range info.Fields {
		fmt.Fprintf(&buf, " %s %s;", g.cType(f.Type), cName(f.Name))
	}
	fmt.Fprintf(&buf, " } struct_%s;", sc.Name)
	return buf.String()
}

// collectShapes walks the whole program once, pre-registering every
// distinct array shape in first-appearance order, so shape typedefs are
// emitted before anything references them.
func (g *Generator) collectShapes(prog *ast.Program) {
	for _, cmd := range prog.Cmds {
		g.collectShapesCmd(cmd)
	}
}

func (g *Generator) collectShapesCmd(cmd ast.Cmd) {
	switch n := cmd.(type) {
	case *ast.ReadCmd:
		g.cType(types.Array{Elem: types.Struct{Name: "rgba"}, Rank: 2})
	case *ast.WriteCmd:
		g.collectShapesExpr(n.Value)
	case *ast.LetCmd:
		g.collectShapesExpr(n.Value)
	case *ast.AssertCmd:
		g.collectShapesExpr(n.Cond)
	case *ast.ShowCmd:
		g.collectShapesExpr(n.Value)
	case *ast.TimeCmd:
		g.collectShapesCmd(n.Cmd)
	case *ast.FnCmd:
		for _, p := range n.Params {
			g.cType(p.Ty.Resolved())
		}
		g.cType(n.Ret.Resolved())
		for _, s := range n.Body {
			g.collectShapesStmt(s)
		}
	}
}

func (g *Generator) collectShapesStmt(stmt ast.Stmt) {
	switch n := stmt.(type) {
	case *ast.LetStmt:
		g.collectShapesExpr(n.Value)
	case *ast.AssertStmt:
		g.collectShapesExpr(n.Cond)
	case *ast.ReturnStmt:
		g.collectShapesExpr(n.Value)
	}
}

func (g *Generator) collectShapesExpr(e ast.Expr) {
	if e == nil || e.Type() != nil {
		g.cType(e.Type())
	}
	switch n := e.(type) {
	case *ast.ArrayLiteralExpr:
		for _, el := range n.Elements {
			g.collectShapesExpr(el)
		}
	case *ast.StructLiteralExpr:
		for _, f := range n.Fields {
			g.collectShapesExpr(f)
		}
	case *ast.DotExpr:
		g.collectShapesExpr(n.Target)
	case *ast.ArrayIndexExpr:
		g.collectShapesExpr(n.Target)
		for _, idx := range n.Indices {
			g.collectShapesExpr(idx)
		}
	case *ast.CallExpr:
		for _, a := range n.Args {
			g.collectShapesExpr(a)
		}
	case *ast.UnopExpr:
		g.collectShapesExpr(n.Operand)
	case *ast.BinopExpr:
		g.collectShapesExpr(n.Left)
		g.collectShapesExpr(n.Right)
	case *ast.IfExpr:
		g.collectShapesExpr(n.Cond)
		g.collectShapesExpr(n.Then)
		g.collectShapesExpr(n.Else)
	case *ast.ArrayLoopExpr:
		for _, ax := range n.Axes {
			g.collectShapesExpr(ax.Bound)
		}
		g.collectShapesExpr(n.Body)
	case *ast.SumLoopExpr:
		for _, ax := range n.Axes {
			g.collectShapesExpr(ax.Bound)
		}
		g.collectShapesExpr(n.Body)
	}
}
