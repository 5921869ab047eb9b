package ast

// IntExpr is an integer literal.
type IntExpr struct {
	ExprBase
	Value int64
}

// FloatExpr is a floating point literal.
type FloatExpr struct {
	ExprBase
	Value float64
}

// TrueExpr is the literal `true`.
type TrueExpr struct{ ExprBase }

// FalseExpr is the literal `false`.
type FalseExpr struct{ ExprBase }

// VoidExpr is the literal `()`.
type VoidExpr struct{ ExprBase }

// VarExpr is a bare variable reference.
type VarExpr struct {
	ExprBase
	Name string
}

// ArrayLiteralExpr is `[e1, e2, ...]`. Its declared rank is always 1
// regardless of element count.
type ArrayLiteralExpr struct {
	ExprBase
	Elements []Expr
}

// StructLiteralExpr is `name{e1, e2, ...}`.
type StructLiteralExpr struct {
	ExprBase
	StructName string
	Fields     []Expr
}

// DotExpr is `e.field`.
type DotExpr struct {
	ExprBase
	Target Expr
	Field  string
}

// ArrayIndexExpr is `e[i1, i2, ...]`.
type ArrayIndexExpr struct {
	ExprBase
	Target  Expr
	Indices []Expr
}

// CallExpr is `name(a1, a2, ...)`.
type CallExpr struct {
	ExprBase
	Name string
	Args []Expr
}

// UnopExpr is a prefix unary operator: `-e` or `!e`.
type UnopExpr struct {
	ExprBase
	Op      string
	Operand Expr
}

// BinopExpr is an infix binary operator.
type BinopExpr struct {
	ExprBase
	Op    string
	Left  Expr
	Right Expr
}

// IfExpr is `if cond then e1 else e2`.
type IfExpr struct {
	ExprBase
	Cond Expr
	Then Expr
	Else Expr
}

// Axis is a `(variable, bound)` pair in an `array[...]` or `sum[...]`
// loop. VarOffset is the byte offset of the axis variable's own token,
// used for error reporting distinct from the bound expression's offset.
type Axis struct {
	Var       string
	VarOffset int
	Bound     Expr
}

// ArrayLoopExpr is `array[v1:n1, v2:n2, ...] body`.
type ArrayLoopExpr struct {
	ExprBase
	Axes []Axis
	Body Expr
}

// SumLoopExpr is `sum[v1:n1, v2:n2, ...] body`.
type SumLoopExpr struct {
	ExprBase
	Axes []Axis
	Body Expr
}
