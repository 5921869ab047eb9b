// Package ast defines the JPL abstract syntax tree: a sum-of-products tree
// rooted at Program, built once by the parser and thereafter mutated only
// in its resolved-type slots, by the type checker.
package ast

import "github.com/jplc/jplc/lang/types"

// Node is implemented by every AST node and exposes the byte offset of
// its first token, used for error reporting. The S-expression printer
// does not print positions.
type Node interface {
	Offset() int
}

// Program is the root of the tree: a sequence of top-level commands.
type Program struct {
	Cmds []Cmd
}

func (p *Program) Offset() int {
	if len(p.Cmds) == 0 {
		return 0
	}
	return p.Cmds[0].Offset()
}

// Cmd is implemented by every top-level command node: Read, Write, Let,
// Assert, Print, Show, Time, Fn, Struct.
type Cmd interface {
	Node
	cmdNode()
}

// Stmt is implemented by every statement node that can appear inside a Fn
// body: Let, Assert, Return.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression node. Every Expr carries a
// mutable resolved-type slot, populated by the type checker and left zero
// (nil) until then.
type Expr interface {
	Node
	exprNode()
	Type() types.Type
	SetType(types.Type)
}

// ExprBase factors out the offset and resolved-type slot shared by every
// expression node. It is exported so that constructors outside this
// package can populate it in a keyed composite literal.
type ExprBase struct {
	Off int
	Typ types.Type
}

func (e *ExprBase) Offset() int          { return e.Off }
func (e *ExprBase) Type() types.Type     { return e.Typ }
func (e *ExprBase) SetType(t types.Type) { e.Typ = t }
func (*ExprBase) exprNode()              {}

// TypeNode is implemented by every syntactic type node: Int, Bool, Float,
// Array, Struct, Void. Like Expr, it carries a mutable resolved-type slot
// populated by the type checker (trivial for most cases, but Struct and
// Array type nodes need the checker to validate the referenced names).
type TypeNode interface {
	Node
	typeNode()
	Resolved() types.Type
	SetResolved(types.Type)
}

type typeBase struct {
	Off        int
	ResolvedTy types.Type
}

func (t *typeBase) Offset() int              { return t.Off }
func (t *typeBase) Resolved() types.Type     { return t.ResolvedTy }
func (t *typeBase) SetResolved(ty types.Type) { t.ResolvedTy = ty }
func (*typeBase) typeNode()                  {}

// LValue is a binding target: either a bare variable, or `name[i1,...,ik]`
// introducing dimension-length binders (only array-typed lvalues carry
// index binders).
type LValue interface {
	Node
	lvalueNode()
	Name() string
}

// Binding is a function parameter: an lvalue paired with its declared
// type.
type Binding struct {
	Off int
	LV  LValue
	Ty  TypeNode
}

func (b *Binding) Offset() int { return b.Off }
