package asmgen

import (
	"fmt"

	"github.com/jplc/jplc/lang/ast"
	"github.com/jplc/jplc/lang/types"
)

// genFn emits one user function: prologue, register-parameter spill,
// stack-parameter binding, body, and epilogue.
func (g *Generator) genFn(fn *ast.FnCmd) error {
	g.stack = NewStack()
	g.vars = make(map[string]string)
	g.paramStackOffset = make(map[string]int)
	g.varTypes = make(map[string]types.Type)

	sig := g.fnSigs[fn.Name]
	g.retType = sig.ReturnType
	g.retClass = ClassifyReturn(sig.ReturnType)
	g.frameExtra = savedRBP

	g.writef("jpl_%s:\n", fn.Name)
	g.writeln("push rbp")
	g.writeln("mov rbp, rsp")

	if g.retClass == ReturnAggregate {
		g.pushReg("rdi", "$retbuf", types.Int{})
	}

	var classes []argClass
	if g.retClass == ReturnAggregate {
		classes, _ = ClassifyParamsAfterHiddenReturn(sig.ParamTypes)
	} else {
		classes, _ = ClassifyParams(sig.ParamTypes)
	}
	stackOffset := 16 // skip saved rbp + return address
	for i, p := range fn.Params {
		name := p.LV.Name()
		cl := classes[i]
		g.varTypes[name] = cl.typ
		if cl.onStack {
			g.paramStackOffset[name] = stackOffset
			stackOffset += g.sizeOf(cl.typ)
			if arr, ok := p.LV.(*ast.ArrayLValue); ok {
				for d, idx := range arr.Indices {
					g.bindArrayDim(idx, name, d)
				}
			}
			continue
		}
		slot := fmt.Sprintf("p_%s", cName(name))
		g.pushReg(cl.reg, slot, cl.typ)
		g.vars[name] = slot
		if arr, ok := p.LV.(*ast.ArrayLValue); ok {
			for d, idx := range arr.Indices {
				g.bindArrayDim(idx, name, d)
			}
		}
	}

	for _, stmt := range fn.Body {
		if err := g.genStmt(stmt); err != nil {
			return err
		}
	}

	g.writeln("leave")
	g.writeln("ret")
	g.writeln("")
	return nil
}

// pushReg spills a register argument onto the shadow stack so the rest of
// codegen can treat every local uniformly as an rbp-relative slot.
func (g *Generator) pushReg(reg, slotName string, t types.Type) {
	if _, isFloat := t.(types.Float); isFloat {
		g.writeln("sub rsp, 8")
		g.writef("movsd [rsp], %s\n", reg)
	} else {
		g.writef("push %s\n", reg)
	}
	g.stack.Push(slotName, t)
	g.vars[slotName] = slotName
}

// bindArrayDim binds an ArrayLValue's index name to the dimension length
// read directly from the array's home (stack slot or incoming stack
// argument), without a separate local.
func (g *Generator) bindArrayDim(idxName, arrName string, dim int) {
	g.arrayDimSource = append(g.arrayDimSource, arrayDim{idx: idxName, arr: arrName, dim: dim})
}

type arrayDim struct {
	idx string
	arr string
	dim int
}

func (g *Generator) genStmt(stmt ast.Stmt) error {
	switch n := stmt.(type) {
	case *ast.LetStmt:
		return g.genLetBinding(n.LV, n.Value)
	case *ast.AssertStmt:
		return g.genAssert(n.Cond, n.Message)
	case *ast.ReturnStmt:
		return g.genReturn(n.Value)
	default:
		return fmt.Errorf("asmgen: unknown statement node")
	}
}

func (g *Generator) genReturn(value ast.Expr) error {
	if err := g.genExpr(value); err != nil {
		return err
	}
	switch g.retClass {
	case ReturnInt:
		g.popInt("rax")
	case ReturnFloat:
		g.popFloat("xmm0")
	case ReturnAggregate:
		off, _ := g.slotOffset("$retbuf")
		g.writef("mov rax, [rbp - %d]\n", off)
		g.popAggregateInto("rax", value.Type())
	}
	g.writeln("leave")
	g.writeln("ret")
	return nil
}

func (g *Generator) genAssert(cond ast.Expr, message string) error {
	if err := g.genExpr(cond); err != nil {
		return err
	}
	g.popInt("rax")
	ok := g.freshLabel("assert_ok")
	g.writeln("cmp rax, 0")
	g.writef("jne %s\n", ok)
	g.writef("lea rdi, [rel %s]\n", g.data.String(message))
	g.writeln("call _fail_assertion")
	g.writef("%s:\n", ok)
	return nil
}

// genLetBinding lowers a Let binding shared by top-level and in-Fn Lets:
// evaluate the expression, push it as a new named stack slot, and for an
// array lvalue bind each index name to the matching dimension length.
func (g *Generator) genLetBinding(lv ast.LValue, value ast.Expr) error {
	if err := g.genExpr(value); err != nil {
		return err
	}
	name := lv.Name()
	slot := fmt.Sprintf("v_%s_%d", cName(name), g.freshSlotID())
	g.popInto(slot, value.Type())
	g.vars[name] = slot
	g.varTypes[name] = value.Type()
	if arr, ok := lv.(*ast.ArrayLValue); ok {
		for d, idx := range arr.Indices {
			g.bindArrayDim(idx, name, d)
		}
	}
	return nil
}

func (g *Generator) freshSlotID() int {
	g.slotCounter++
	return g.slotCounter
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

// genProgramEntry lowers every top-level command into jpl_main, the single
// exported entry point called by the C runtime's main().
func (g *Generator) genProgramEntry(prog *ast.Program) error {
	g.stack = NewStack()
	g.vars = make(map[string]string)
	g.paramStackOffset = make(map[string]int)
	g.varTypes = make(map[string]types.Type)
	g.frameExtra = savedRBP // rbp points at the saved r12; locals start below it

	g.writeln("jpl_main:")
	g.writeln("_jpl_main:")
	g.writeln("push rbp")
	g.writeln("push r12")
	g.writeln("mov rbp, rsp")
	g.writeln("mov r12, rbp")

	for _, cmd := range prog.Cmds {
		switch cmd.(type) {
		case *ast.FnCmd, *ast.StructCmd:
			continue
		}
		if err := g.genTopCmd(cmd); err != nil {
			return err
		}
	}

	g.writeln("mov rsp, rbp")
	g.writeln("pop r12")
	g.writeln("pop rbp")
	g.writeln("ret")
	return nil
}

func (g *Generator) genTopCmd(cmd ast.Cmd) error {
	switch n := cmd.(type) {
	case *ast.ReadCmd:
		shape := types.Array{Elem: types.Struct{Name: "rgba"}, Rank: 2}
		slot := fmt.Sprintf("v_%s_%d", cName(n.LV.Name()), g.freshSlotID())
		g.writef("sub rsp, %d\n", g.sizeOf(shape))
		g.writeln("mov rdi, rsp")
		g.writef("lea rsi, [rel %s]\n", g.data.String(n.Path))
		g.writeln("call _read_image")
		g.stack.Push(slot, shape)
		g.vars[n.LV.Name()] = slot
		g.varTypes[n.LV.Name()] = shape
		return nil
	case *ast.WriteCmd:
		if err := g.genExpr(n.Value); err != nil {
			return err
		}
		g.popAggregateArgTo("rdi", n.Value.Type())
		g.writef("lea rsi, [rel %s]\n", g.data.String(n.Path))
		g.writeln("call _write_image")
		return nil
	case *ast.LetCmd:
		return g.genLetBinding(n.LV, n.Value)
	case *ast.AssertCmd:
		return g.genAssert(n.Cond, n.Message)
	case *ast.PrintCmd:
		g.writef("lea rdi, [rel %s]\n", g.data.String(n.Message))
		g.writeln("call _print")
		return nil
	case *ast.ShowCmd:
		if err := g.genExpr(n.Value); err != nil {
			return err
		}
		g.popAggregateArgTo("rsi", n.Value.Type())
		g.writef("lea rdi, [rel %s]\n", g.data.String(n.Value.Type().String()))
		g.writeln("call _show")
		return nil
	case *ast.TimeCmd:
		g.writeln("call _get_time")
		g.writeln("sub rsp, 8")
		g.writeln("movsd [rsp], xmm0")
		g.stack.Push("$time_start", types.Float{})
		if err := g.genTopCmd(n.Cmd); err != nil {
			return err
		}
		g.writeln("call _get_time")
		g.writeln("movsd xmm1, xmm0")
		g.popFloat("xmm0")
		g.writeln("call _print_time")
		return nil
	default:
		return fmt.Errorf("asmgen: unknown top-level command node")
	}
}
