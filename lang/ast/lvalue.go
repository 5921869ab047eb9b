package ast

// VarLValue is a plain `name` binding target.
type VarLValue struct {
	Off   int
	Ident string
}

func (v *VarLValue) Offset() int  { return v.Off }
func (v *VarLValue) Name() string { return v.Ident }
func (*VarLValue) lvalueNode()    {}

// ArrayLValue is `name[i1,...,ik]`, introducing one Int-typed binder per
// index name, in addition to binding Ident to the whole array.
type ArrayLValue struct {
	Off     int
	Ident   string
	Indices []string
}

func (v *ArrayLValue) Offset() int  { return v.Off }
func (v *ArrayLValue) Name() string { return v.Ident }
func (*ArrayLValue) lvalueNode()    {}
