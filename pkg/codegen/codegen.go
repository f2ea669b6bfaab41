package codegen

import (
	"fmt"

	"github.com/home-lang/home/pkg/ast"
	"github.com/home-lang/home/pkg/codegen/x64"
	"github.com/home-lang/home/pkg/types"
)

// Relocation records a call site that must be patched (or recorded for
// the linker) once the target symbol's address is known.
type Relocation struct {
	Offset int
	Symbol string
}

// Function is the compiled output of one Home function: its machine code
// and the relocations within it.
type Function struct {
	Name         string
	Code         []byte
	Relocations  []Relocation
	FrameSize    int32
}

// Generator lowers type-checked function bodies to machine code.
type Generator struct {
	reg       *types.Registry
	exprTypes map[ast.NodeID]types.Type
	labelSeq  int
}

// NewGenerator constructs a code generator over a fully-resolved registry
// and the checker's per-expression type table.
func NewGenerator(reg *types.Registry, exprTypes map[ast.NodeID]types.Type) *Generator {
	return &Generator{reg: reg, exprTypes: exprTypes}
}

func (g *Generator) newLabel(prefix string) string {
	g.labelSeq++
	return fmt.Sprintf("%s_%d", prefix, g.labelSeq)
}

// lowerCtx is the per-function lowering state. Every local lives in a
// stack slot of frame: a simple one-pass codegen that spills every local
// to its frame slot immediately after assignment and reloads it on use,
// trading register-allocator complexity for a direct, easily verified
// lowering.
type lowerCtx struct {
	asm       *x64.Asm
	frame     *Frame
	reg       *types.Registry
	exprTypes map[ast.NodeID]types.Type
	gen       *Generator
	relocs    []Relocation
	// retType is the enclosing function's resolved return type, consulted
	// by lowerReturnValue to decide whether a result needs RDX alongside
	// RAX.
	retType types.Type
	// argScratch holds the frame slots a lowerCall spilled its evaluated
	// arguments to, consumed (and popped) by that same call before it
	// reloads them into the ABI argument registers.
	argScratch []int32
}

// CompileFunc lowers a single function declaration to a Function, per
// the System V AMD64 calling convention: integer/pointer arguments enter
// in RDI, RSI, RDX, RCX, R8, R9 and the result is returned in RAX.
func (g *Generator) CompileFunc(fn *ast.FuncDecl) (*Function, error) {
	if fn.Body == nil {
		return nil, fmt.Errorf("function %q has no body to compile", fn.Name)
	}

	asm := x64.NewAsm()
	frame := NewFrame(g.reg)

	ctx := &lowerCtx{asm: asm, frame: frame, reg: g.reg, exprTypes: g.exprTypes, gen: g, retType: resolveDeclaredType(fn.ReturnType)}

	// Pre-allocate every parameter's frame slot and spill it from its
	// incoming argument register, so the rest of the body can address
	// every local uniformly via the frame.
	params := fn.Params
	if fn.Receiver != nil {
		params = append([]ast.Param{*fn.Receiver}, params...)
	}

	for i, p := range params {
		if i >= len(x64.ArgRegs) {
			break
		}

		disp := frame.Alloc(p.Name, resolveParamType(p))
		asm.MovToStack(disp, x64.ArgRegs[i])
	}

	if err := ctx.lowerFuncBody(fn.Body); err != nil {
		return nil, err
	}

	asm.Ret()
	asm.Finalize()

	prologue, epilogueLen := framePrologue(frame.Size())
	code := append(prologue, asm.Code...)
	_ = epilogueLen

	relocs := make([]Relocation, len(ctx.relocs))
	copy(relocs, ctx.relocs)

	return &Function{Name: fn.Name, Code: code, Relocations: offsetRelocs(relocs, len(prologue)), FrameSize: frame.Size()}, nil
}

func resolveParamType(p ast.Param) types.Type {
	return resolveDeclaredType(p.Type)
}

// resolveDeclaredType performs the same minimal ad hoc resolution
// resolveParamType always did, generalised to any declared type slot (a
// parameter or a return type): a nil type is the unit return, a bare
// named type resolves to its interned primitive when one exists or else to
// a types.Named of that name, and anything else defaults to i64, the
// pass's universal scalar register width.
func resolveDeclaredType(t ast.Type) types.Type {
	if t == nil {
		return types.Unit
	}

	if nt, ok := t.(*ast.NamedType); ok {
		if prim, ok := types.LookupPrimitive(nt.Name); ok {
			return prim
		}

		return &types.Named{Name: nt.Name}
	}

	return types.I64
}

// framePrologue emits the standard `push rbp; mov rbp, rsp; sub rsp,
// size` entry sequence.
func framePrologue(size int32) ([]byte, int) {
	asm := x64.NewAsm()
	asm.Push(x64.RBP)
	asm.MovRegReg(x64.RBP, x64.RSP)

	if size > 0 {
		// sub rsp, imm32 — encoded directly since x64.Asm has no
		// dedicated helper for an immediate-operand subtract.
		asm.Code = append(asm.Code, 0x48, 0x81, 0xEC)
		asm.Code = append(asm.Code,
			byte(size), byte(size>>8), byte(size>>16), byte(size>>24))
	}

	return asm.Code, len(asm.Code)
}

func offsetRelocs(relocs []Relocation, base int) []Relocation {
	out := make([]Relocation, len(relocs))

	for i, r := range relocs {
		out[i] = Relocation{Offset: r.Offset + base, Symbol: r.Symbol}
	}

	return out
}
