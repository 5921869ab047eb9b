package ast

// ReadCmd is `read image "<path>" to <lvalue>`.
type ReadCmd struct {
	Off  int
	Path string
	LV   *VarLValue
}

func (c *ReadCmd) Offset() int { return c.Off }
func (*ReadCmd) cmdNode()      {}

// WriteCmd is `write image <expr> to "<path>"`.
type WriteCmd struct {
	Off   int
	Value Expr
	Path  string
}

func (c *WriteCmd) Offset() int { return c.Off }
func (*WriteCmd) cmdNode()      {}

// LetCmd is a top-level `let <lvalue> = <expr>`.
type LetCmd struct {
	Off   int
	LV    LValue
	Value Expr
}

func (c *LetCmd) Offset() int { return c.Off }
func (*LetCmd) cmdNode()      {}

// AssertCmd is `assert <expr>, "<message>"`.
type AssertCmd struct {
	Off     int
	Cond    Expr
	Message string
}

func (c *AssertCmd) Offset() int { return c.Off }
func (*AssertCmd) cmdNode()      {}

// PrintCmd is `print "<message>"`.
type PrintCmd struct {
	Off     int
	Message string
}

func (c *PrintCmd) Offset() int { return c.Off }
func (*PrintCmd) cmdNode()      {}

// ShowCmd is `show <expr>`.
type ShowCmd struct {
	Off   int
	Value Expr
}

func (c *ShowCmd) Offset() int { return c.Off }
func (*ShowCmd) cmdNode()      {}

// TimeCmd is `time <cmd>`, wrapping another command with timing.
type TimeCmd struct {
	Off int
	Cmd Cmd
}

func (c *TimeCmd) Offset() int { return c.Off }
func (*TimeCmd) cmdNode()      {}

// FnCmd is a top-level function definition:
// `fn <name>(<params>): <ret> { <stmts> }`.
type FnCmd struct {
	Off    int
	Name   string
	Params []*Binding
	Ret    TypeNode
	Body   []Stmt
}

func (c *FnCmd) Offset() int { return c.Off }
func (*FnCmd) cmdNode()      {}

// StructField is one field of a struct declaration, as written in source.
type StructField struct {
	Name string
	Ty   TypeNode
}

// StructCmd is a top-level struct definition:
// `struct <name> { <field>: <type> ... }`.
type StructCmd struct {
	Off    int
	Name   string
	Fields []StructField
}

func (c *StructCmd) Offset() int { return c.Off }
func (*StructCmd) cmdNode()      {}
