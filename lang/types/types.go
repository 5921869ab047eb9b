// Package types defines the resolved, structural types that the type
// checker assigns to every expression: Int, Float, Bool, Void, Struct and
// Array. Equality is structural (variant tag plus structural parameters),
// matching the language's value semantics rather than any notion of
// identity.
package types

import "fmt"

// Type is a resolved runtime type. Every concrete implementation below
// satisfies it; type-switch on the concrete type to discriminate, or use
// Equal for structural comparison.
type Type interface {
	// String renders the type the way the printer's type descriptor does,
	// e.g. "(IntType)", "(ArrayType (IntType) 2)".
	String() string

	// Size is the number of bytes the type occupies on the runtime stack.
	Size() int

	// Equal reports whether two types are structurally identical.
	Equal(other Type) bool
}

// Int is the 64-bit integer type.
type Int struct{}

func (Int) String() string        { return "(IntType)" }
func (Int) Size() int              { return 8 }
func (Int) Equal(other Type) bool { _, ok := other.(Int); return ok }

// Float is the 64-bit floating point type.
type Float struct{}

func (Float) String() string        { return "(FloatType)" }
func (Float) Size() int              { return 8 }
func (Float) Equal(other Type) bool { _, ok := other.(Float); return ok }

// Bool is the boolean type.
type Bool struct{}

func (Bool) String() string        { return "(BoolType)" }
func (Bool) Size() int              { return 8 }
func (Bool) Equal(other Type) bool { _, ok := other.(Bool); return ok }

// Void is the unit type, the type of `()`.
type Void struct{}

func (Void) String() string        { return "(VoidType)" }
func (Void) Size() int              { return 0 }
func (Void) Equal(other Type) bool { _, ok := other.(Void); return ok }

// Struct refers to a user-defined struct type by name. Field layout lives
// in the symbol context's StructInfo, not here — Struct is just a name
// reference so that two Struct values compare equal iff they name the
// same declaration.
type Struct struct {
	Name string
}

func (s Struct) String() string { return fmt.Sprintf("(StructType %s)", s.Name) }

// TupleString renders the struct the way `show`'s type descriptor does,
// as a tuple of its field types in declaration order.
func TupleString(fieldTypes []Type) string {
	s := "(TupleType"
	for _, ft := range fieldTypes {
		s += " " + ft.String()
	}
	return s + ")"
}

// Size cannot be computed from the name alone: a struct's size is the sum
// of its field sizes, which requires the declaration looked up from the
// symbol context (symtab.StructInfo.Size). Call sites that need a
// struct's byte size always have that StructInfo in hand and should use
// it directly instead of this method.
func (s Struct) Size() int { return 0 }

func (s Struct) Equal(other Type) bool {
	o, ok := other.(Struct)
	return ok && o.Name == s.Name
}

// Array is a fixed-rank array of some element type. Its runtime
// representation is a data pointer plus one length per dimension, so its
// stack size is 8 + 8*rank regardless of element type.
type Array struct {
	Elem Type
	Rank int
}

func (a Array) String() string { return fmt.Sprintf("(ArrayType %s %d)", a.Elem.String(), a.Rank) }
func (a Array) Size() int       { return 8 + 8*a.Rank }
func (a Array) Equal(other Type) bool {
	o, ok := other.(Array)
	return ok && o.Rank == a.Rank && o.Elem.Equal(a.Elem)
}

// IsVoid reports whether t is the Void type.
func IsVoid(t Type) bool { _, ok := t.(Void); return ok }

// IsNumeric reports whether t is Int or Float.
func IsNumeric(t Type) bool {
	switch t.(type) {
	case Int, Float:
		return true
	default:
		return false
	}
}
