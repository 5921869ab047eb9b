// Package printer renders a JPL token stream or abstract syntax tree as
// the flat text forms the CLI's -l and -p stop-points print: one token
// per line, or an S-expression dump of the form
// "(NodeKind [resolved-type] children...)".
package printer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jplc/jplc/lang/ast"
	"github.com/jplc/jplc/lang/token"
)

// Tokens writes one line per token to w, in the §6 print form: "KIND
// '<lexeme>'" for tokens with a lexeme, or just "KIND" for NEWLINE and EOF.
func Tokens(w io.Writer, toks []token.Token) error {
	for _, t := range toks {
		if _, err := fmt.Fprintln(w, t.String()); err != nil {
			return err
		}
	}
	return nil
}

// Printer dumps an AST as S-expressions.
type Printer struct {
	Output io.Writer
}

// Print renders the whole program.
func (p *Printer) Print(prog *ast.Program) error {
	for _, cmd := range prog.Cmds {
		if _, err := fmt.Fprintln(p.Output, sexprCmd(cmd)); err != nil {
			return err
		}
	}
	return nil
}

func paren(kind string, parts ...string) string {
	if len(parts) == 0 {
		return "(" + kind + ")"
	}
	return "(" + kind + " " + strings.Join(parts, " ") + ")"
}

func sexprCmd(c ast.Cmd) string {
	switch n := c.(type) {
	case *ast.ReadCmd:
		return paren("ReadCmd", strconv.Quote(n.Path), sexprLValue(n.LV))
	case *ast.WriteCmd:
		return paren("WriteCmd", sexprExpr(n.Value), strconv.Quote(n.Path))
	case *ast.LetCmd:
		return paren("LetCmd", sexprLValue(n.LV), sexprExpr(n.Value))
	case *ast.AssertCmd:
		return paren("AssertCmd", sexprExpr(n.Cond), strconv.Quote(n.Message))
	case *ast.PrintCmd:
		return paren("PrintCmd", strconv.Quote(n.Message))
	case *ast.ShowCmd:
		return paren("ShowCmd", sexprExpr(n.Value))
	case *ast.TimeCmd:
		return paren("TimeCmd", sexprCmd(n.Cmd))
	case *ast.FnCmd:
		parts := []string{n.Name}
		for _, b := range n.Params {
			parts = append(parts, sexprBinding(b))
		}
		parts = append(parts, sexprTypeNode(n.Ret))
		for _, s := range n.Body {
			parts = append(parts, sexprStmt(s))
		}
		return paren("FnCmd", parts...)
	case *ast.StructCmd:
		parts := []string{n.Name}
		for _, f := range n.Fields {
			parts = append(parts, paren("Field", f.Name, sexprTypeNode(f.Ty)))
		}
		return paren("StructCmd", parts...)
	default:
		return "(UnknownCmd)"
	}
}

func sexprStmt(s ast.Stmt) string {
	switch n := s.(type) {
	case *ast.LetStmt:
		return paren("LetStmt", sexprLValue(n.LV), sexprExpr(n.Value))
	case *ast.AssertStmt:
		return paren("AssertStmt", sexprExpr(n.Cond), strconv.Quote(n.Message))
	case *ast.ReturnStmt:
		return paren("ReturnStmt", sexprExpr(n.Value))
	default:
		return "(UnknownStmt)"
	}
}

func sexprLValue(lv ast.LValue) string {
	switch n := lv.(type) {
	case *ast.VarLValue:
		return paren("VarLValue", n.Ident)
	case *ast.ArrayLValue:
		parts := []string{n.Ident}
		parts = append(parts, n.Indices...)
		return paren("ArrayLValue", parts...)
	default:
		return "(UnknownLValue)"
	}
}

func sexprBinding(b *ast.Binding) string {
	return paren("Binding", sexprLValue(b.LV), sexprTypeNode(b.Ty))
}

func sexprTypeNode(t ast.TypeNode) string {
	switch n := t.(type) {
	case *ast.IntType:
		return "(IntType)"
	case *ast.BoolType:
		return "(BoolType)"
	case *ast.FloatType:
		return "(FloatType)"
	case *ast.VoidTypeNode:
		return "(VoidType)"
	case *ast.StructTypeNode:
		return paren("StructType", n.Name)
	case *ast.ArrayTypeNode:
		return paren("ArrayType", sexprTypeNode(n.Elem), strconv.Itoa(n.Rank))
	default:
		return "(UnknownType)"
	}
}

func typeDesc(e ast.Expr) string {
	if e.Type() == nil {
		return "(UnresolvedType)"
	}
	return e.Type().String()
}

func sexprExpr(e ast.Expr) string {
	td := typeDesc(e)
	switch n := e.(type) {
	case *ast.IntExpr:
		return paren("IntExpr", td, strconv.FormatInt(n.Value, 10))
	case *ast.FloatExpr:
		return paren("FloatExpr", td, strconv.FormatFloat(n.Value, 'g', -1, 64))
	case *ast.TrueExpr:
		return paren("TrueExpr", td)
	case *ast.FalseExpr:
		return paren("FalseExpr", td)
	case *ast.VoidExpr:
		return paren("VoidExpr", td)
	case *ast.VarExpr:
		return paren("VarExpr", td, n.Name)
	case *ast.ArrayLiteralExpr:
		parts := []string{td}
		for _, el := range n.Elements {
			parts = append(parts, sexprExpr(el))
		}
		return paren("ArrayLiteralExpr", parts...)
	case *ast.StructLiteralExpr:
		parts := []string{td, n.StructName}
		for _, f := range n.Fields {
			parts = append(parts, sexprExpr(f))
		}
		return paren("StructLiteralExpr", parts...)
	case *ast.DotExpr:
		return paren("DotExpr", td, sexprExpr(n.Target), n.Field)
	case *ast.ArrayIndexExpr:
		parts := []string{td, sexprExpr(n.Target)}
		for _, idx := range n.Indices {
			parts = append(parts, sexprExpr(idx))
		}
		return paren("ArrayIndexExpr", parts...)
	case *ast.CallExpr:
		parts := []string{td, n.Name}
		for _, a := range n.Args {
			parts = append(parts, sexprExpr(a))
		}
		return paren("CallExpr", parts...)
	case *ast.UnopExpr:
		return paren("UnopExpr", td, n.Op, sexprExpr(n.Operand))
	case *ast.BinopExpr:
		return paren("BinopExpr", td, sexprExpr(n.Left), n.Op, sexprExpr(n.Right))
	case *ast.IfExpr:
		return paren("IfExpr", td, sexprExpr(n.Cond), sexprExpr(n.Then), sexprExpr(n.Else))
	case *ast.ArrayLoopExpr:
		parts := []string{td}
		for _, ax := range n.Axes {
			parts = append(parts, paren("Axis", ax.Var, sexprExpr(ax.Bound)))
		}
		parts = append(parts, sexprExpr(n.Body))
		return paren("ArrayLoopExpr", parts...)
	case *ast.SumLoopExpr:
		parts := []string{td}
		for _, ax := range n.Axes {
			parts = append(parts, paren("Axis", ax.Var, sexprExpr(ax.Bound)))
		}
		parts = append(parts, sexprExpr(n.Body))
		return paren("SumLoopExpr", parts...)
	default:
		return "(UnknownExpr)"
	}
}
