// Package asmgen lowers a type-checked JPL program straight to x86-64
// NASM assembly (System V AMD64 ABI), tracking frame layout at compile
// time with Stack so that every reference to a local is computed as a
// static rbp-relative offset rather than threaded through a runtime
// symbol table.
package asmgen

import (
	"bytes"
	"fmt"

	"github.com/jplc/jplc/lang/ast"
	"github.com/jplc/jplc/lang/symtab"
	"github.com/jplc/jplc/lang/types"
)

// savedRBP is the byte size of the saved rbp every prologue pushes; it is
// the frameExtra of a user function, whose first pushed local sits at
// [rbp - 8]. A hidden return-buffer pointer is pushed as an ordinary
// shadow-stack slot and is not part of it.
const savedRBP = 8

// Generator holds everything threaded through one program lowering: the
// finished .text body (locals addressed as it is written), the constant
// pool collected lazily as literals are encountered, the symbol context
// from type-checking, and the current function's frame model.
type Generator struct {
	text bytes.Buffer
	data *dataPool
	root *symtab.Context

	o1 bool

	labelCounter int

	fnSigs map[string]symtab.FnInfo

	stack      *Stack
	vars       map[string]string // JPL name -> stack slot name
	frameExtra int               // distance from rbp to the first pushed local
	retClass   ReturnClass
	retType    types.Type

	paramStackOffset map[string]int       // JPL name -> positive rbp offset, for stack-passed params
	varTypes         map[string]types.Type // JPL name -> resolved type, for every bound name
	arrayDimSource   []arrayDim           // pending index-name -> array-dimension bindings
	slotCounter      int
}

// Generate lowers prog to a complete NASM translation unit. o1 enables
// the peephole optimizations described for jplc's -O1 flag.
func Generate(prog *ast.Program, root *symtab.Context, o1 bool) (string, error) {
	g := &Generator{
		data:   newDataPool(),
		root:   root,
		o1:     o1,
		fnSigs: make(map[string]symtab.FnInfo),
	}

	for _, cmd := range prog.Cmds {
		if fn, ok := cmd.(*ast.FnCmd); ok {
			info, _ := root.LookupFn(fn.Name)
			g.fnSigs[fn.Name] = info
		}
	}

	for _, cmd := range prog.Cmds {
		if fn, ok := cmd.(*ast.FnCmd); ok {
			if err := g.genFn(fn); err != nil {
				return "", err
			}
		}
	}

	if err := g.genProgramEntry(prog); err != nil {
		return "", err
	}

	var out bytes.Buffer
	out.WriteString("global jpl_main, _jpl_main\n")
	out.WriteString("extern _fail_assertion, _read_image, _write_image, _print, _print_time, _show, _get_time\n")
	out.WriteString("extern _jpl_alloc, _fmod, _sin, _cos, _tan, _asin, _acos, _atan, _log, _exp, _sqrt, _pow, _atan2\n")
	out.WriteString("\n")
	g.data.Emit(func(format string, args ...any) { fmt.Fprintf(&out, format, args...) })
	out.WriteString("\nsection .text\n")
	out.Write(g.text.Bytes())
	return out.String(), nil
}

func (g *Generator) writeln(s string) {
	g.text.WriteString(s)
	g.text.WriteByte('\n')
}

func (g *Generator) writef(format string, args ...any) {
	fmt.Fprintf(&g.text, format, args...)
}

func (g *Generator) freshLabel(prefix string) string {
	g.labelCounter++
	return fmt.Sprintf(".%s_%d", prefix, g.labelCounter)
}

// resolveStruct looks up a struct declaration's field layout, panicking if
// it is missing — a type-checked program can never reference an undeclared
// struct, so a lookup failure here means typecheck.Check was skipped or a
// prior bug let an invalid name through.
func (g *Generator) resolveStruct(s types.Struct) symtab.StructInfo {
	info, ok := g.root.LookupStruct(s.Name)
	if !ok {
		panic("asmgen: unresolved struct " + s.Name)
	}
	return info
}

func (g *Generator) sizeOf(t types.Type) int {
	if st, ok := t.(types.Struct); ok {
		return g.resolveStruct(st).Size(g.resolveStruct)
	}
	return t.Size()
}

// bind records that jplName now lives at the top of the shadow stack, and
// emits nothing — the caller has already emitted the push/sub that put it
// there.
func (g *Generator) bind(jplName, slotName string, t types.Type) {
	g.stack.Push(slotName, t)
	g.vars[jplName] = slotName
}

// slotOffset returns the rbp-relative byte offset of a bound local.
func (g *Generator) slotOffset(jplName string) (int, bool) {
	slotName, ok := g.vars[jplName]
	if !ok {
		return 0, false
	}
	return g.stack.Offset(slotName, g.frameExtra)
}
