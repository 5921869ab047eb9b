// Package symtab implements the scoped symbol context used by the type
// checker: a chain of lexical scopes, each mapping an identifier to a
// ValueInfo, FnInfo or StructInfo, with lookups walking outward through
// parent scopes.
package symtab

import (
	"github.com/dolthub/swiss"

	"github.com/jplc/jplc/lang/types"
)

// NameInfo is the sum type of everything a name can be bound to.
type NameInfo interface {
	isNameInfo()
}

// ValueInfo binds a name to a value of a resolved type (a let-binding, a
// function parameter, a loop index).
type ValueInfo struct {
	Type types.Type
}

func (ValueInfo) isNameInfo() {}

// FnInfo binds a name to a function signature.
type FnInfo struct {
	ParamTypes []types.Type
	ReturnType types.Type
}

func (FnInfo) isNameInfo() {}

// StructField is one field of a struct declaration, in declaration order.
type StructField struct {
	Name string
	Type types.Type
}

// StructInfo binds a name to an ordered list of fields.
type StructInfo struct {
	Fields []StructField
}

func (StructInfo) isNameInfo() {}

// FieldIndex returns the index of the named field, or -1 if absent.
func (s StructInfo) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Size is the total runtime byte size of the struct: the sum of its
// fields' sizes. A non-struct field contributes its type's Size() (8 for
// a scalar, 8 + 8*rank for an array header); a nested struct field's size
// recurses through resolve.
func (s StructInfo) Size(resolve func(types.Struct) StructInfo) int {
	total := 0
	for _, f := range s.Fields {
		if st, ok := f.Type.(types.Struct); ok {
			total += resolve(st).Size(resolve)
		} else {
			total += f.Type.Size()
		}
	}
	return total
}

// FieldOffset is the byte offset of the named field: the sum of the sizes
// of the fields preceding it in declaration order.
func (s StructInfo) FieldOffset(name string, resolve func(types.Struct) StructInfo) int {
	offset := 0
	for _, f := range s.Fields {
		if f.Name == name {
			return offset
		}
		if st, ok := f.Type.(types.Struct); ok {
			offset += resolve(st).Size(resolve)
		} else {
			offset += f.Type.Size()
		}
	}
	return offset
}

// Context is a single lexical scope. The root context is created once by
// the type checker and pre-populated with built-ins; child contexts are
// created on function entry and on loop-variable introduction, and
// discarded when the corresponding AST subtree has been fully checked.
type Context struct {
	parent *Context
	table  *swiss.Map[string, NameInfo]
}

// New creates a root context with no parent.
func New() *Context {
	return &Context{table: swiss.NewMap[string, NameInfo](uint32(8))}
}

// NewChild creates a context nested inside the receiver.
func (c *Context) NewChild() *Context {
	return &Context{parent: c, table: swiss.NewMap[string, NameInfo](uint32(8))}
}

// Declare binds identifier to info in this scope. It does not check for
// redeclaration; callers (the type checker) are responsible for calling
// DeclaredLocally first and reporting a redeclaration error.
func (c *Context) Declare(identifier string, info NameInfo) {
	c.table.Put(identifier, info)
}

// DeclaredLocally reports whether identifier is already bound in this
// exact scope (not walking to parents). JPL requires names to be unique
// within a single scope, but shadowing an outer scope's name is allowed.
func (c *Context) DeclaredLocally(identifier string) bool {
	_, ok := c.table.Get(identifier)
	return ok
}

// Lookup walks outward from this scope to find identifier, returning the
// NameInfo it is bound to and true, or nil and false if unbound anywhere
// in the chain.
func (c *Context) Lookup(identifier string) (NameInfo, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if info, ok := ctx.table.Get(identifier); ok {
			return info, true
		}
	}
	return nil, false
}

// LookupValue is a typed convenience wrapper over Lookup for ValueInfo.
func (c *Context) LookupValue(identifier string) (ValueInfo, bool) {
	info, ok := c.Lookup(identifier)
	if !ok {
		return ValueInfo{}, false
	}
	v, ok := info.(ValueInfo)
	return v, ok
}

// LookupFn is a typed convenience wrapper over Lookup for FnInfo.
func (c *Context) LookupFn(identifier string) (FnInfo, bool) {
	info, ok := c.Lookup(identifier)
	if !ok {
		return FnInfo{}, false
	}
	v, ok := info.(FnInfo)
	return v, ok
}

// LookupStruct is a typed convenience wrapper over Lookup for StructInfo.
func (c *Context) LookupStruct(identifier string) (StructInfo, bool) {
	info, ok := c.Lookup(identifier)
	if !ok {
		return StructInfo{}, false
	}
	v, ok := info.(StructInfo)
	return v, ok
}
