package asmgen

import "github.com/jplc/jplc/lang/types"

var intRegs = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}
var floatRegs = []string{"xmm0", "xmm1", "xmm2", "xmm3", "xmm4", "xmm5", "xmm6", "xmm7", "xmm8"}

// argClass is where one argument ends up: an integer/bool register, a
// float register, or the stack (arrays and other aggregates always go on
// the stack, regardless of how many registers remain free).
type argClass struct {
	reg   string // empty if onStack
	onStack bool
	typ   types.Type
}

// ClassifyParams applies the restricted System V classification used by
// JPLC: int/bool params consume the int register file in order, float
// params consume the float register file in order, and arrays/structs
// always go on the stack. A scalar parameter that finds its register file
// exhausted is classified onStack as well. ok is always true.
func ClassifyParams(paramTypes []types.Type) ([]argClass, bool) {
	return classifyParams(paramTypes, intRegs)
}

// ClassifyParamsAfterHiddenReturn is ClassifyParams for a function whose
// aggregate return buffer pointer already occupies rdi, so the first
// ordinary int/bool parameter is classified starting at rsi instead.
func ClassifyParamsAfterHiddenReturn(paramTypes []types.Type) ([]argClass, bool) {
	return classifyParams(paramTypes, intRegs[1:])
}

func classifyParams(paramTypes []types.Type, availIntRegs []string) ([]argClass, bool) {
	classes := make([]argClass, len(paramTypes))
	nextInt, nextFloat := 0, 0
	for i, t := range paramTypes {
		switch t.(type) {
		case types.Int, types.Bool:
			if nextInt >= len(availIntRegs) {
				classes[i] = argClass{onStack: true, typ: t}
				continue
			}
			classes[i] = argClass{reg: availIntRegs[nextInt], typ: t}
			nextInt++
		case types.Float:
			if nextFloat >= len(floatRegs) {
				classes[i] = argClass{onStack: true, typ: t}
				continue
			}
			classes[i] = argClass{reg: floatRegs[nextFloat], typ: t}
			nextFloat++
		default:
			classes[i] = argClass{onStack: true, typ: t}
		}
	}
	return classes, true
}

// ReturnClass describes how a function's return value is communicated.
type ReturnClass int

const (
	ReturnInt ReturnClass = iota
	ReturnFloat
	ReturnAggregate
)

// ClassifyReturn reports how ret is returned: Int/Bool in rax, Float in
// xmm0, anything else (Struct, Array, Void) through a caller-allocated
// buffer addressed by a hidden pointer argument.
func ClassifyReturn(ret types.Type) ReturnClass {
	switch ret.(type) {
	case types.Int, types.Bool:
		return ReturnInt
	case types.Float:
		return ReturnFloat
	default:
		return ReturnAggregate
	}
}
