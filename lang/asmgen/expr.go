package asmgen

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/jplc/jplc/lang/ast"
	"github.com/jplc/jplc/lang/types"
)

func fitsInt32(v int64) bool { return v >= -2147483648 && v <= 2147483647 }

// genExpr lowers e, leaving its result on top of the runtime stack (and
// recorded as an anonymous slot on the compile-time model) by the time it
// returns.
func (g *Generator) genExpr(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.IntExpr:
		if g.o1 && fitsInt32(n.Value) {
			g.writef("mov rax, %d\n", n.Value)
		} else {
			g.writef("mov rax, [rel %s]\n", g.data.Int(n.Value))
		}
		g.pushIntReg("rax")
		return nil

	case *ast.FloatExpr:
		g.writef("movsd xmm0, [rel %s]\n", g.data.Float(n.Value))
		g.pushFloatReg("xmm0")
		return nil

	case *ast.TrueExpr:
		g.writeln("mov rax, 1")
		g.pushIntReg("rax")
		return nil

	case *ast.FalseExpr:
		g.writeln("mov rax, 0")
		g.pushIntReg("rax")
		return nil

	case *ast.VoidExpr:
		g.stack.Push("", types.Void{})
		return nil

	case *ast.VarExpr:
		return g.genVarExpr(n.Name)

	case *ast.ArrayLiteralExpr:
		return g.genArrayLiteral(n)

	case *ast.StructLiteralExpr:
		return g.genStructLiteral(n)

	case *ast.DotExpr:
		return g.genDotExpr(n)

	case *ast.ArrayIndexExpr:
		return g.genArrayIndex(n)

	case *ast.CallExpr:
		return g.genCallExpr(n)

	case *ast.UnopExpr:
		return g.genUnopExpr(n)

	case *ast.BinopExpr:
		return g.genBinopExpr(n)

	case *ast.IfExpr:
		return g.genIfExpr(n)

	case *ast.ArrayLoopExpr:
		return g.genArrayLoop(n)

	case *ast.SumLoopExpr:
		return g.genSumLoop(n)

	default:
		return fmt.Errorf("asmgen: unknown expression node")
	}
}

// --- low-level stack push/pop ---------------------------------------

func (g *Generator) pushIntReg(reg string) {
	g.writef("push %s\n", reg)
	g.stack.Push("", types.Int{})
}

func (g *Generator) pushFloatReg(reg string) {
	g.writeln("sub rsp, 8")
	g.writef("movsd [rsp], %s\n", reg)
	g.stack.Push("", types.Float{})
}

func (g *Generator) popInt(reg string) {
	g.stack.Pop()
	g.writef("pop %s\n", reg)
}

func (g *Generator) popFloat(reg string) {
	g.stack.Pop()
	g.writef("movsd %s, [rsp]\n", reg)
	g.writeln("add rsp, 8")
}

// popInto renames the anonymous top-of-stack slot just pushed by genExpr
// into a named local. The bytes are already at the right place; nothing
// is emitted.
func (g *Generator) popInto(slot string, t types.Type) {
	g.stack.Pop()
	g.stack.Push(slot, t)
}

// popAggregateArgTo drops the top-of-stack aggregate (or any value) as a
// bare call argument: reg is pointed at its home, then the bytes are
// reclaimed from the runtime stack.
func (g *Generator) popAggregateArgTo(reg string, t types.Type) {
	size := g.sizeOf(t)
	g.stack.Pop()
	g.writef("mov %s, rsp\n", reg)
	g.writef("add rsp, %d\n", size)
}

// popAggregateInto copies the top-of-stack aggregate into the buffer
// addressed by dstReg, then reclaims the source bytes.
func (g *Generator) popAggregateInto(dstReg string, t types.Type) {
	size := g.sizeOf(t)
	g.stack.Pop()
	g.writeln("mov rsi, rsp")
	g.writef("mov rdi, %s\n", dstReg)
	g.writef("mov rcx, %d\n", size)
	g.writeln("rep movsb")
	g.writef("add rsp, %d\n", size)
}

// pushCopyFromEA pushes a size-byte copy of the value living at effective
// address ea.
func (g *Generator) pushCopyFromEA(ea string, t types.Type) {
	size := g.sizeOf(t)
	g.writef("sub rsp, %d\n", size)
	g.writef("lea rsi, %s\n", ea)
	g.writeln("mov rdi, rsp")
	g.writef("mov rcx, %d\n", size)
	g.writeln("rep movsb")
	g.stack.Push("", t)
}

// --- variable and dimension lookups ----------------------------------

// varEA returns the effective-address operand text for a bound name,
// whether it lives in the local frame or was passed on the caller's
// stack.
func (g *Generator) varEA(name string) (string, bool) {
	if off, ok := g.slotOffset(name); ok {
		return fmt.Sprintf("[rbp - %d]", off), true
	}
	if off, ok := g.paramStackOffset[name]; ok {
		return fmt.Sprintf("[rbp + %d]", off), true
	}
	return "", false
}

func (g *Generator) genVarExpr(name string) error {
	for _, ad := range g.arrayDimSource {
		if ad.idx == name {
			return g.loadArrayDim(ad.arr, ad.dim)
		}
	}
	ea, ok := g.varEA(name)
	if !ok {
		return fmt.Errorf("asmgen: unbound variable %s", name)
	}
	t := g.varTypes[name]
	g.pushCopyFromEA(ea, t)
	return nil
}

// loadArrayDim pushes the dim'th dimension length of a bound array,
// stored inline in the array's own home immediately after its data
// pointer.
func (g *Generator) loadArrayDim(arrName string, dim int) error {
	ea, ok := g.varEA(arrName)
	if !ok {
		return fmt.Errorf("asmgen: unbound array %s", arrName)
	}
	g.writef("mov rax, %s\n", offsetEA(ea, 8+8*dim))
	g.pushIntReg("rax")
	return nil
}

// offsetEA rewrites an effective address like "[rbp - 16]" to one offset
// further into the same object, e.g. "[rbp - 16 + 8]".
func offsetEA(ea string, delta int) string {
	inner := ea[1 : len(ea)-1]
	return fmt.Sprintf("[%s + %d]", inner, delta)
}

// --- composite literals and access -----------------------------------

func (g *Generator) genArrayLiteral(n *ast.ArrayLiteralExpr) error {
	arrType := n.Type().(types.Array)
	elemSize := g.sizeOf(arrType.Elem)
	_, elemIsFloat := arrType.Elem.(types.Float)
	count := len(n.Elements)

	g.writef("mov rdi, %d\n", count*elemSize)
	g.writeln("call _jpl_alloc")
	dataSlot := fmt.Sprintf("$arrlit_data_%d", g.freshSlotID())
	g.writeln("push rax") // keep the data pointer safe across element evaluation
	g.stack.Push(dataSlot, types.Int{})

	for i, el := range n.Elements {
		if err := g.genExpr(el); err != nil {
			return err
		}
		g.stack.Pop() // the element value just evaluated
		dataOff, _ := g.stack.Offset(dataSlot, g.frameExtra)
		if elemIsFloat {
			g.writeln("movsd xmm0, [rsp]")
			g.writef("mov rsi, [rbp - %d]\n", dataOff)
			g.writef("movsd [rsi + %d], xmm0\n", i*elemSize)
		} else {
			g.writeln("mov rax, [rsp]")
			g.writef("mov rsi, [rbp - %d]\n", dataOff)
			g.writef("mov [rsi + %d], rax\n", i*elemSize)
		}
		g.writef("add rsp, %d\n", elemSize)
	}

	dataOff, _ := g.stack.Offset(dataSlot, g.frameExtra)
	g.writef("mov rax, [rbp - %d]\n", dataOff)
	g.writeln("add rsp, 8") // drop dataSlot
	g.stack.Pop()

	g.writeln("push rax")
	g.writef("push %d\n", count)
	g.stack.Push("", arrType)
	return nil
}

func (g *Generator) genStructLiteral(n *ast.StructLiteralExpr) error {
	info := g.resolveStruct(types.Struct{Name: n.StructName})
	size := info.Size(g.resolveStruct)
	g.writef("sub rsp, %d\n", size)
	g.stack.Push("", types.Struct{Name: n.StructName})
	for i, f := range n.Fields {
		if err := g.genExpr(f); err != nil {
			return err
		}
		off := info.FieldOffset(info.Fields[i].Name, g.resolveStruct)
		fieldSize := g.sizeOf(info.Fields[i].Type)
		g.stack.Pop() // the field value, just evaluated
		if _, isFloat := info.Fields[i].Type.(types.Float); isFloat {
			g.writeln("movsd xmm0, [rsp]")
			g.writef("movsd [rsp + %d + %d], xmm0\n", fieldSize, off)
			g.writef("add rsp, %d\n", fieldSize)
		} else {
			g.writeln("mov rax, [rsp]")
			g.writef("mov [rsp + %d + %d], rax\n", fieldSize, off)
			g.writef("add rsp, %d\n", fieldSize)
		}
	}
	return nil
}

func (g *Generator) genDotExpr(n *ast.DotExpr) error {
	if err := g.genExpr(n.Target); err != nil {
		return err
	}
	st := n.Target.Type().(types.Struct)
	info := g.resolveStruct(st)
	off := info.FieldOffset(n.Field, g.resolveStruct)
	fieldType := n.Type()
	structSize := info.Size(g.resolveStruct)
	g.stack.Pop()
	if _, isFloat := fieldType.(types.Float); isFloat {
		g.writef("movsd xmm0, [rsp + %d]\n", off)
	} else {
		g.writef("mov rax, [rsp + %d]\n", off)
	}
	g.writef("add rsp, %d\n", structSize)
	if _, isFloat := fieldType.(types.Float); isFloat {
		g.pushFloatReg("xmm0")
	} else {
		g.pushIntReg("rax")
	}
	return nil
}

func (g *Generator) genArrayIndex(n *ast.ArrayIndexExpr) error {
	arrType := n.Target.Type().(types.Array)
	if err := g.genExpr(n.Target); err != nil {
		return err
	}
	g.writeln("mov rax, [rsp + 8]") // data pointer (dims sit below it on the stack push order)

	// compute the linear row-major offset into r10
	g.writeln("xor r10, r10")
	for i, idxExpr := range n.Indices {
		if err := g.genExpr(idxExpr); err != nil {
			return err
		}
		g.popInt("r11")
		dimOff := 8 * i
		g.writef("mov r9, [rsp + %d]\n", dimOff)
		g.writeln("cmp r11, 0")
		fail := g.freshLabel("bounds_fail")
		ok := g.freshLabel("bounds_ok")
		g.writef("jl %s\n", fail)
		g.writeln("cmp r11, r9")
		g.writef("jl %s\n", ok)
		g.writef("%s:\n", fail)
		g.writef("lea rdi, [rel %s]\n", g.data.String("index out of bounds"))
		g.writeln("call _fail_assertion")
		g.writef("%s:\n", ok)
		if i == 0 {
			g.writeln("mov r10, r11")
		} else {
			// row-major: fold in this axis's own length before adding its index
			g.writef("imul r10, r9\n")
			g.writeln("add r10, r11")
		}
	}
	elemSize := g.sizeOf(arrType.Elem)
	g.mulByConst("r10", elemSize)
	g.writef("mov rax, [rsp + %d]\n", 8*arrType.Rank) // data pointer
	g.writeln("add rax, r10")

	arrSize := g.sizeOf(arrType)
	g.writef("add rsp, %d\n", arrSize)
	g.stack.Pop()

	g.pushCopyFromEA("[rax]", n.Type())
	return nil
}

// --- calls -------------------------------------------------------------

var mathBuiltins = map[string]string{
	"sin": "_sin", "cos": "_cos", "tan": "_tan",
	"asin": "_asin", "acos": "_acos", "atan": "_atan",
	"log": "_log", "exp": "_exp", "sqrt": "_sqrt",
	"pow": "_pow", "atan2": "_atan2",
}

func (g *Generator) genCallExpr(n *ast.CallExpr) error {
	symbol := fmt.Sprintf("jpl_%s", n.Name)
	sig, userFn := g.fnSigs[n.Name]
	if b, ok := mathBuiltins[n.Name]; ok {
		symbol = b
	} else if n.Name == "to_int" || n.Name == "to_float" {
		symbol = "" // handled inline below
	}

	if n.Name == "to_int" {
		if err := g.genExpr(n.Args[0]); err != nil {
			return err
		}
		g.popFloat("xmm0")
		g.writeln("cvttsd2si rax, xmm0")
		g.pushIntReg("rax")
		return nil
	}
	if n.Name == "to_float" {
		if err := g.genExpr(n.Args[0]); err != nil {
			return err
		}
		g.popInt("rax")
		g.writeln("cvtsi2sd xmm0, rax")
		g.pushFloatReg("xmm0")
		return nil
	}

	var paramTypes []types.Type
	if userFn {
		paramTypes = sig.ParamTypes
	} else {
		for _, a := range n.Args {
			paramTypes = append(paramTypes, a.Type())
		}
	}
	retClass := ClassifyReturn(n.Type())
	var classes []argClass
	if retClass == ReturnAggregate {
		classes, _ = ClassifyParamsAfterHiddenReturn(paramTypes)
	} else {
		classes, _ = ClassifyParams(paramTypes)
	}

	var retBuf string
	if retClass == ReturnAggregate {
		size := g.sizeOf(n.Type())
		retBuf = g.freshLabel("callret")
		g.writef("sub rsp, %d\n", size)
		g.stack.Push(retBuf, n.Type())
	}

	// Evaluate and push stack arguments right to left, then register
	// arguments right to left, matching the order operands are torn down
	// after the call.
	order := make([]int, len(n.Args))
	for i := range order {
		order[i] = i
	}
	order = slices.Clone(order)
	slices.Reverse(order)

	for _, i := range order {
		if !classes[i].onStack {
			continue
		}
		if err := g.genExpr(n.Args[i]); err != nil {
			return err
		}
	}
	for _, i := range order {
		if classes[i].onStack {
			continue
		}
		if err := g.genExpr(n.Args[i]); err != nil {
			return err
		}
		if classes[i].reg[0] == 'x' {
			g.popFloat(classes[i].reg)
		} else {
			g.popInt(classes[i].reg)
		}
	}
	if retClass == ReturnAggregate {
		off, _ := g.stack.Offset(retBuf, g.frameExtra)
		g.writef("lea rdi, [rbp - %d]\n", off)
	}

	stackArgBytes := 0
	for _, c := range classes {
		if c.onStack {
			stackArgBytes += g.sizeOf(c.typ)
		}
	}
	pad := g.stack.Align(0)
	if pad > 0 {
		g.writef("sub rsp, %d\n", pad)
	}
	g.writef("call %s\n", symbol)
	if pad > 0 {
		g.writef("add rsp, %d\n", pad)
	}
	g.stack.Unalign()
	if stackArgBytes > 0 {
		g.writef("add rsp, %d\n", stackArgBytes)
		for i := range classes {
			if classes[i].onStack {
				g.stack.Pop()
			}
		}
	}

	switch retClass {
	case ReturnInt:
		g.pushIntReg("rax")
	case ReturnFloat:
		g.pushFloatReg("xmm0")
	case ReturnAggregate:
		// already sitting at retBuf, still on the model stack; nothing to
		// pop off the rax/xmm0 path.
	}
	return nil
}

// --- unary / binary operators ------------------------------------------

func (g *Generator) genUnopExpr(n *ast.UnopExpr) error {
	if err := g.genExpr(n.Operand); err != nil {
		return err
	}
	switch n.Op {
	case "-":
		if _, isFloat := n.Operand.Type().(types.Float); isFloat {
			g.popFloat("xmm0")
			g.writeln("xorpd xmm1, xmm1")
			g.writeln("subsd xmm1, xmm0")
			g.pushFloatReg("xmm1")
		} else {
			g.popInt("rax")
			g.writeln("neg rax")
			g.pushIntReg("rax")
		}
	case "!":
		g.popInt("rax")
		g.writeln("xor rax, 1")
		g.pushIntReg("rax")
	default:
		return fmt.Errorf("asmgen: unknown unary operator %q", n.Op)
	}
	return nil
}

func (g *Generator) genBinopExpr(n *ast.BinopExpr) error {
	switch n.Op {
	case "&&", "||":
		return g.genShortCircuit(n)
	}

	if err := g.genExpr(n.Left); err != nil {
		return err
	}
	if err := g.genExpr(n.Right); err != nil {
		return err
	}

	_, isFloat := n.Left.Type().(types.Float)

	switch n.Op {
	case "==", "!=":
		return g.genEquality(n)
	}

	if isFloat {
		g.popFloat("xmm1")
		g.popFloat("xmm0")
		switch n.Op {
		case "+":
			g.writeln("addsd xmm0, xmm1")
			g.pushFloatReg("xmm0")
		case "-":
			g.writeln("subsd xmm0, xmm1")
			g.pushFloatReg("xmm0")
		case "*":
			g.writeln("mulsd xmm0, xmm1")
			g.pushFloatReg("xmm0")
		case "/":
			g.writeln("divsd xmm0, xmm1")
			g.pushFloatReg("xmm0")
		case "%":
			g.writeln("movsd xmm2, xmm1")
			g.writeln("call _fmod")
			g.pushFloatReg("xmm0")
		case "<", ">", "<=", ">=":
			g.writeln("comisd xmm0, xmm1")
			g.pushCompareResult(n.Op, false)
		default:
			return fmt.Errorf("asmgen: unknown float operator %q", n.Op)
		}
		return nil
	}

	g.popInt("r11")
	g.popInt("rax")
	switch n.Op {
	case "+":
		g.writeln("add rax, r11")
		g.pushIntReg("rax")
	case "-":
		g.writeln("sub rax, r11")
		g.pushIntReg("rax")
	case "*":
		if g.o1 {
			if isPowerOfTwo(n.Right) {
				g.writef("shl rax, %d\n", log2(n.Right))
				g.pushIntReg("rax")
				return nil
			}
		}
		g.writeln("imul rax, r11")
		g.pushIntReg("rax")
	case "/":
		g.zeroCheck("r11", "divide by zero")
		g.writeln("cqo")
		g.writeln("idiv r11")
		g.pushIntReg("rax")
	case "%":
		g.zeroCheck("r11", "mod by zero")
		g.writeln("cqo")
		g.writeln("idiv r11")
		g.pushIntReg("rdx")
	case "<", ">", "<=", ">=":
		g.writeln("cmp rax, r11")
		g.pushCompareResult(n.Op, true)
	default:
		return fmt.Errorf("asmgen: unknown integer operator %q", n.Op)
	}
	return nil
}

// isPowerOfTwo and log2 support the -O1 `x * 2^k -> shl x, k` peephole;
// only literal, non-negative powers of two on the right operand qualify.
func isPowerOfTwo(e ast.Expr) bool {
	lit, ok := e.(*ast.IntExpr)
	if !ok || lit.Value <= 0 {
		return false
	}
	return lit.Value&(lit.Value-1) == 0
}

func log2(e ast.Expr) int {
	v := e.(*ast.IntExpr).Value
	n := 0
	for v > 1 {
		v >>= 1
		n++
	}
	return n
}

// intLog2 returns k such that 1<<k == n, or -1 if n is not a power of two.
func intLog2(n int) int {
	if n <= 0 || n&(n-1) != 0 {
		return -1
	}
	k := 0
	for n > 1 {
		n >>= 1
		k++
	}
	return k
}

// mulByConst multiplies reg by the constant n in place. At -O1, a
// power-of-two n becomes `shl reg, k`; otherwise it falls back to `imul`.
// Supports the element-size multiplications in array-loop allocation and
// array indexing (§4.5(b)).
func (g *Generator) mulByConst(reg string, n int) {
	if g.o1 {
		if k := intLog2(n); k >= 0 {
			g.writef("shl %s, %d\n", reg, k)
			return
		}
	}
	g.writef("imul %s, %d\n", reg, n)
}

func (g *Generator) zeroCheck(reg, message string) {
	g.writef("cmp %s, 0\n", reg)
	ok := g.freshLabel("nonzero")
	g.writef("jne %s\n", ok)
	g.writef("lea rdi, [rel %s]\n", g.data.String(message))
	g.writeln("call _fail_assertion")
	g.writef("%s:\n", ok)
}

func (g *Generator) pushCompareResult(op string, signed bool) {
	setcc := map[string]string{"<": "setl", ">": "setg", "<=": "setle", ">=": "setge"}[op]
	if !signed {
		setcc = map[string]string{"<": "setb", ">": "seta", "<=": "setbe", ">=": "setae"}[op]
	}
	g.writeln("xor rax, rax")
	g.writef("%s al\n", setcc)
	g.pushIntReg("rax")
}

func (g *Generator) genEquality(n *ast.BinopExpr) error {
	t := n.Left.Type()
	if _, isFloat := t.(types.Float); isFloat {
		g.popFloat("xmm1")
		g.popFloat("xmm0")
		g.writeln("comisd xmm0, xmm1")
	} else {
		g.popInt("r11")
		g.popInt("rax")
		g.writeln("cmp rax, r11")
	}
	g.writeln("xor rax, rax")
	if n.Op == "==" {
		g.writeln("sete al")
	} else {
		g.writeln("setne al")
	}
	g.pushIntReg("rax")
	return nil
}

// genShortCircuit lowers && and || with explicit branches rather than
// relying on eager evaluation of both operands.
func (g *Generator) genShortCircuit(n *ast.BinopExpr) error {
	if err := g.genExpr(n.Left); err != nil {
		return err
	}
	g.popInt("rax")
	skip := g.freshLabel("shortcircuit")
	g.writeln("cmp rax, 0")
	if n.Op == "&&" {
		g.writef("je %s\n", skip)
	} else {
		g.writef("jne %s\n", skip)
	}
	if err := g.genExpr(n.Right); err != nil {
		return err
	}
	g.popInt("rax")
	done := g.freshLabel("shortcircuit_done")
	g.writef("jmp %s\n", done)
	g.writef("%s:\n", skip)
	g.writef("%s:\n", done)
	g.pushIntReg("rax")
	return nil
}

// isIntLiteral reports whether e is the literal integer v.
func isIntLiteral(e ast.Expr, v int64) bool {
	lit, ok := e.(*ast.IntExpr)
	return ok && lit.Value == v
}

func (g *Generator) genIfExpr(n *ast.IfExpr) error {
	if g.o1 && isIntLiteral(n.Then, 1) && isIntLiteral(n.Else, 0) {
		// `if c then 1 else 0` is already the Bool's own 0/1 representation.
		return g.genExpr(n.Cond)
	}

	if err := g.genExpr(n.Cond); err != nil {
		return err
	}
	g.popInt("rax")
	elseLabel := g.freshLabel("if_else")
	endLabel := g.freshLabel("if_end")
	g.writeln("cmp rax, 0")
	g.writef("je %s\n", elseLabel)
	if err := g.genExpr(n.Then); err != nil {
		return err
	}
	g.writef("jmp %s\n", endLabel)
	g.writef("%s:\n", elseLabel)
	g.stack.Pop() // discard the Then branch's model slot before the Else pushes its own
	if err := g.genExpr(n.Else); err != nil {
		return err
	}
	g.writef("%s:\n", endLabel)
	return nil
}

// --- array/sum loops -----------------------------------------------------

// genAxes evaluates and bounds-checks every axis bound, pushing each one
// as a named slot, and returns those slot names in axis order. The
// callers push the loop counters and bind the axis variables to them.
func (g *Generator) genAxes(axes []ast.Axis) ([]string, error) {
	counters := make([]string, len(axes))
	for i, ax := range axes {
		if err := g.genExpr(ax.Bound); err != nil {
			return nil, err
		}
		g.popInt("rax")
		g.zeroOrNegativeCheck("rax", "non-positive loop bound")
		boundSlot := fmt.Sprintf("$bound_%d_%d", g.freshSlotID(), i)
		g.writeln("push rax")
		g.stack.Push(boundSlot, types.Int{})
		counters[i] = boundSlot
		g.vars[ax.Var] = ""
	}
	return counters, nil
}

func (g *Generator) zeroOrNegativeCheck(reg, message string) {
	g.writef("cmp %s, 0\n", reg)
	ok := g.freshLabel("bound_ok")
	g.writef("jg %s\n", ok)
	g.writef("lea rdi, [rel %s]\n", g.data.String(message))
	g.writeln("call _fail_assertion")
	g.writef("%s:\n", ok)
}

func (g *Generator) genArrayLoop(n *ast.ArrayLoopExpr) error {
	bounds, err := g.genAxes(n.Axes)
	if err != nil {
		return err
	}

	g.writeln("mov rax, 1")
	for _, b := range bounds {
		off, _ := g.stack.Offset(b, g.frameExtra)
		g.writef("imul rax, [rbp - %d]\n", off)
	}
	elemSize := g.sizeOf(n.Type().(types.Array).Elem)
	g.mulByConst("rax", elemSize)
	g.writeln("mov rdi, rax")
	g.writeln("call _jpl_alloc")
	dataSlot := fmt.Sprintf("$arrloop_data_%d", g.freshSlotID())
	g.writeln("push rax")
	g.stack.Push(dataSlot, types.Int{})

	idxSlot := fmt.Sprintf("$arrloop_idx_%d", g.freshSlotID())
	g.writeln("xor rax, rax")
	g.writeln("push rax")
	g.stack.Push(idxSlot, types.Int{})

	counterSlots := make([]string, len(n.Axes))
	loopStarts := make([]string, len(n.Axes))
	loopEnds := make([]string, len(n.Axes))
	for i, ax := range n.Axes {
		counterSlots[i] = fmt.Sprintf("$arrloop_ctr_%d", g.freshSlotID())
		g.writeln("xor rax, rax")
		g.writeln("push rax")
		g.stack.Push(counterSlots[i], types.Int{})
		g.vars[ax.Var] = counterSlots[i]
		g.varTypes[ax.Var] = types.Int{}

		start := g.freshLabel("arrloop_start")
		end := g.freshLabel("arrloop_end")
		loopStarts[i] = start
		loopEnds[i] = end
		g.writef("%s:\n", start)
		ctrOff, _ := g.stack.Offset(counterSlots[i], g.frameExtra)
		boundOff, _ := g.stack.Offset(bounds[i], g.frameExtra)
		g.writef("mov rax, [rbp - %d]\n", ctrOff)
		g.writef("cmp rax, [rbp - %d]\n", boundOff)
		g.writef("jge %s\n", end)
	}

	if err := g.genExpr(n.Body); err != nil {
		return err
	}
	bodyIsFloat := false
	if _, ok := n.Body.Type().(types.Float); ok {
		bodyIsFloat = true
	}
	idxOff, _ := g.stack.Offset(idxSlot, g.frameExtra)
	dataOff, _ := g.stack.Offset(dataSlot, g.frameExtra)
	if bodyIsFloat {
		g.popFloat("xmm0")
	} else {
		g.popInt("rax")
	}
	g.writef("mov r10, [rbp - %d]\n", idxOff)
	g.writef("mov r9, [rbp - %d]\n", dataOff)
	if bodyIsFloat {
		g.writef("movsd [r9 + r10*%d], xmm0\n", elemSize)
	} else {
		g.writef("mov [r9 + r10*%d], rax\n", elemSize)
	}
	g.writef("inc qword [rbp - %d]\n", idxOff)

	for i := len(n.Axes) - 1; i >= 0; i-- {
		ctrOff, _ := g.stack.Offset(counterSlots[i], g.frameExtra)
		g.writef("inc qword [rbp - %d]\n", ctrOff)
		g.writef("jmp %s\n", loopStarts[i])
		g.writef("%s:\n", loopEnds[i])
	}

	for range n.Axes {
		g.writeln("add rsp, 8")
		g.stack.Pop()
	}
	g.writeln("add rsp, 8") // idxSlot
	g.stack.Pop()

	dataOff, _ = g.stack.Offset(dataSlot, g.frameExtra)
	g.writef("mov rax, [rbp - %d]\n", dataOff)
	g.writeln("add rsp, 8")
	g.stack.Pop()

	g.writeln("push rax")
	for i := len(bounds) - 1; i >= 0; i-- {
		off, _ := g.stack.Offset(bounds[i], g.frameExtra)
		g.writef("mov rax, [rbp - %d]\n", off)
		g.writeln("push rax")
	}
	for range bounds {
		g.stack.Pop()
	}
	g.stack.Push("", n.Type())
	return nil
}

func (g *Generator) genSumLoop(n *ast.SumLoopExpr) error {
	bounds, err := g.genAxes(n.Axes)
	if err != nil {
		return err
	}

	isFloat := false
	if _, ok := n.Body.Type().(types.Float); ok {
		isFloat = true
	}
	accSlot := fmt.Sprintf("$sum_acc_%d", g.freshSlotID())
	if isFloat {
		g.writeln("xorpd xmm0, xmm0")
		g.pushFloatReg("xmm0")
	} else {
		g.writeln("xor rax, rax")
		g.pushIntReg("rax")
	}
	g.stack.Pop()
	g.stack.Push(accSlot, n.Body.Type())

	counterSlots := make([]string, len(n.Axes))
	loopStarts := make([]string, len(n.Axes))
	loopEnds := make([]string, len(n.Axes))
	for i, ax := range n.Axes {
		counterSlots[i] = fmt.Sprintf("$sum_ctr_%d", g.freshSlotID())
		g.writeln("xor rax, rax")
		g.writeln("push rax")
		g.stack.Push(counterSlots[i], types.Int{})
		g.vars[ax.Var] = counterSlots[i]
		g.varTypes[ax.Var] = types.Int{}

		start := g.freshLabel("sumloop_start")
		end := g.freshLabel("sumloop_end")
		loopStarts[i] = start
		loopEnds[i] = end
		g.writef("%s:\n", start)
		ctrOff, _ := g.stack.Offset(counterSlots[i], g.frameExtra)
		boundOff, _ := g.stack.Offset(bounds[i], g.frameExtra)
		g.writef("mov rax, [rbp - %d]\n", ctrOff)
		g.writef("cmp rax, [rbp - %d]\n", boundOff)
		g.writef("jge %s\n", end)
	}

	if err := g.genExpr(n.Body); err != nil {
		return err
	}
	accOff, _ := g.stack.Offset(accSlot, g.frameExtra)
	if isFloat {
		g.popFloat("xmm0")
		g.writef("movsd xmm1, [rbp - %d]\n", accOff)
		g.writeln("addsd xmm1, xmm0")
		g.writef("movsd [rbp - %d], xmm1\n", accOff)
	} else {
		g.popInt("rax")
		g.writef("add [rbp - %d], rax\n", accOff)
	}

	for i := len(n.Axes) - 1; i >= 0; i-- {
		ctrOff, _ := g.stack.Offset(counterSlots[i], g.frameExtra)
		g.writef("inc qword [rbp - %d]\n", ctrOff)
		g.writef("jmp %s\n", loopStarts[i])
		g.writef("%s:\n", loopEnds[i])
	}
	for range n.Axes {
		g.writeln("add rsp, 8")
		g.stack.Pop()
	}

	if isFloat {
		g.writef("movsd xmm0, [rbp - %d]\n", accOff)
	} else {
		g.writef("mov rax, [rbp - %d]\n", accOff)
	}
	g.writeln("add rsp, 8")
	g.stack.Pop()
	for range bounds {
		g.writeln("add rsp, 8")
		g.stack.Pop()
	}
	if isFloat {
		g.pushFloatReg("xmm0")
	} else {
		g.pushIntReg("rax")
	}
	return nil
}
