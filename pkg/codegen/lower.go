package codegen

import (
	"fmt"
	"math"

	"github.com/home-lang/home/pkg/ast"
	"github.com/home-lang/home/pkg/codegen/x64"
	"github.com/home-lang/home/pkg/types"
)

func (c *lowerCtx) lowerBlock(b *ast.Block) error {
	for _, s := range b.Stmts {
		if err := c.lowerStmt(s); err != nil {
			return err
		}
	}

	if b.Tail != nil {
		// The tail expression's value ends up in RAX, which is exactly
		// where an enclosing expression's consumer expects it. A true
		// function return additionally needs RDX for an aggregate wider
		// than one word; lowerFuncBody handles that case instead of
		// calling lowerBlock directly.
		return c.lowerExpr(b.Tail)
	}

	return nil
}

// lowerFuncBody is CompileFunc's entry point into a function's statements:
// identical to lowerBlock except that the tail (or a `return`, via
// lowerStmt) is lowered through lowerReturnValue, which knows how to split
// a wider-than-one-word result across RAX and RDX.
func (c *lowerCtx) lowerFuncBody(b *ast.Block) error {
	for _, s := range b.Stmts {
		if err := c.lowerStmt(s); err != nil {
			return err
		}
	}

	if b.Tail != nil {
		return c.lowerReturnValue(b.Tail)
	}

	return nil
}

// lowerReturnValue lowers e as the function's result: scalar and <=8-byte
// values go entirely in RAX, while a 9-16 byte aggregate (e.g. a tagged
// enum) is split across RAX (low 8 bytes) and RDX (next 8 bytes), the same
// register-pair convention the System V AMD64 ABI uses for small struct
// returns.
func (c *lowerCtx) lowerReturnValue(e ast.Expr) error {
	size := SizeOf(c.reg, c.retType).Size

	if size <= 8 {
		return c.lowerExpr(e)
	}

	if size > 16 {
		return fmt.Errorf("codegen: return value larger than 16 bytes not yet supported by native lowering")
	}

	tmp := c.frame.Alloc(c.gen.newLabel("ret"), c.retType)

	if err := c.lowerExprInto(e, tmp, c.retType); err != nil {
		return err
	}

	c.asm.MovFromStack(x64.RAX, tmp)
	c.asm.MovFromStack(x64.RDX, tmp+8)

	return nil
}

func (c *lowerCtx) lowerStmt(s ast.Stmt) error {
	switch st := s.(type) {
	case *ast.LetStmt:
		name, ok := simpleBindName(st.Pattern)
		if !ok {
			if st.Value != nil {
				return c.lowerExpr(st.Value)
			}

			return nil
		}

		t := c.typeOfOrDefault(st.Value)
		disp := c.frame.Alloc(name, t)

		if st.Value == nil {
			return nil
		}

		// The slot is allocated before the value is lowered (rather than
		// after, as a purely scalar binding could get away with) so that a
		// struct/array/enum literal can be written field-by-field directly
		// into its final home instead of needing a second copy.
		return c.lowerExprInto(st.Value, disp, t)
	case *ast.ExprStmt:
		return c.lowerExpr(st.Expr)
	case *ast.ReturnStmt:
		if st.Value != nil {
			if err := c.lowerReturnValue(st.Value); err != nil {
				return err
			}
		}

		c.asm.Ret()

		return nil
	case *ast.DeferStmt:
		// The deferred expression is emitted inline, where the defer
		// statement stands; it is not moved to the function's exit, so
		// several defers run in declaration order, not reverse order.
		return c.lowerExpr(st.Expr)
	default:
		return nil
	}
}

func simpleBindName(p ast.Pattern) (string, bool) {
	bp, ok := p.(*ast.BindPattern)
	if !ok {
		return "", false
	}

	return bp.Name, true
}

func (c *lowerCtx) typeOfOrDefault(e ast.Expr) types.Type {
	if e == nil {
		return types.I64
	}

	if id, ok := nodeID(e); ok {
		if t, ok := c.exprTypes[id]; ok && t != nil {
			return t
		}
	}

	return types.I64
}

func nodeID(e ast.Expr) (ast.NodeID, bool) {
	switch v := e.(type) {
	case *ast.Literal:
		return v.ID, true
	case *ast.Ident:
		return v.ID, true
	case *ast.BinaryExpr:
		return v.ID, true
	case *ast.UnaryExpr:
		return v.ID, true
	case *ast.CallExpr:
		return v.ID, true
	case *ast.MethodCallExpr:
		return v.ID, true
	case *ast.FieldExpr:
		return v.ID, true
	case *ast.IndexExpr:
		return v.ID, true
	case *ast.StructLiteralExpr:
		return v.ID, true
	case *ast.ArrayLiteralExpr:
		return v.ID, true
	case *ast.TupleLiteralExpr:
		return v.ID, true
	case *ast.IfExpr:
		return v.ID, true
	case *ast.MatchExpr:
		return v.ID, true
	case *ast.TryExpr:
		return v.ID, true
	case *ast.CastExpr:
		return v.ID, true
	default:
		return 0, false
	}
}

// lowerExpr emits code that leaves the expression's value in RAX. For an
// aggregate type wider than one word, RAX only ever holds its first 8
// bytes (the struct's first field, or an enum's discriminant); a consumer
// that needs the rest must go through lowerExprInto with a destination of
// its own, which is what every caller that actually needs the full value
// (LetStmt, lowerReturnValue, lowerTryInto) does instead of this path.
func (c *lowerCtx) lowerExpr(e ast.Expr) error {
	switch ex := e.(type) {
	case *ast.Literal:
		return c.lowerLiteral(ex)
	case *ast.Ident:
		disp, ok := c.frame.Offset(ex.Name)
		if !ok {
			return fmt.Errorf("codegen: unbound local %q", ex.Name)
		}

		c.asm.MovFromStack(x64.RAX, disp)

		return nil
	case *ast.BinaryExpr:
		return c.lowerBinary(ex)
	case *ast.UnaryExpr:
		return c.lowerUnary(ex)
	case *ast.AssignExpr:
		return c.lowerAssign(ex)
	case *ast.CallExpr:
		return c.lowerCall(ex)
	case *ast.IfExpr:
		return c.lowerIf(ex)
	case *ast.WhileExpr:
		return c.lowerWhile(ex)
	case *ast.BlockExpr:
		return c.lowerBlock(ex.Block)
	case *ast.FieldExpr:
		return c.lowerField(ex)
	case *ast.MethodCallExpr:
		return c.lowerMethodCall(ex)
	case *ast.IndexExpr:
		return c.lowerIndex(ex)
	case *ast.MatchExpr:
		return c.lowerMatch(ex)
	case *ast.TryExpr:
		return c.lowerTry(ex)
	case *ast.StructLiteralExpr, *ast.ArrayLiteralExpr:
		return c.lowerAggregateScalar(e)
	default:
		return fmt.Errorf("codegen: expression kind not yet supported by native lowering")
	}
}

// lowerAggregateScalar constructs a struct or array literal into an
// anonymous temporary slot and leaves its first word in RAX, the
// representative value this pass uses when an aggregate is consumed
// directly rather than through a named binding (e.g. nested inline as a
// call argument).
func (c *lowerCtx) lowerAggregateScalar(e ast.Expr) error {
	t := c.typeOfOrDefault(e)
	tmp := c.frame.Alloc(c.gen.newLabel("tmp"), t)

	if err := c.lowerExprInto(e, tmp, t); err != nil {
		return err
	}

	c.asm.MovFromStack(x64.RAX, tmp)

	return nil
}

func (c *lowerCtx) lowerLiteral(lit *ast.Literal) error {
	switch lit.Kind {
	case ast.LitInt:
		c.asm.MovImm64(x64.RAX, lit.Raw.(int64))
	case ast.LitBool:
		v := int64(0)
		if lit.Raw.(bool) {
			v = 1
		}

		c.asm.MovImm64(x64.RAX, v)
	case ast.LitFloat:
		// No SSE lowering yet: the float's raw bit pattern is moved into
		// RAX like any other 64-bit value, matching this pass's
		// everything-is-a-general-register strategy.
		c.asm.MovImm64(x64.RAX, int64(math.Float64bits(lit.Raw.(float64))))
	default:
		return fmt.Errorf("codegen: literal kind not supported by native lowering")
	}

	return nil
}

// lowerBinary evaluates LHS into RAX, spills it to a scratch stack slot,
// evaluates RHS into RAX, reloads LHS into RCX, and combines the two —
// the same spill-everything strategy CompileFunc uses for locals, applied
// to intermediate values so the encoder never needs a register allocator.
func (c *lowerCtx) lowerBinary(ex *ast.BinaryExpr) error {
	if err := c.lowerExpr(ex.LHS); err != nil {
		return err
	}

	scratch := c.frame.Alloc(c.gen.newLabel("t"), types.I64)
	c.asm.MovToStack(scratch, x64.RAX)

	if err := c.lowerExpr(ex.RHS); err != nil {
		return err
	}

	c.asm.MovRegReg(x64.RCX, x64.RAX)
	c.asm.MovFromStack(x64.RAX, scratch)

	switch ex.Op {
	case ast.OpAdd:
		c.asm.Add(x64.RAX, x64.RCX)
	case ast.OpSub:
		c.asm.Sub(x64.RAX, x64.RCX)
	case ast.OpMul:
		c.asm.IMul(x64.RAX, x64.RCX)
	case ast.OpDiv:
		c.asm.Cqo()
		c.asm.IDiv(x64.RCX)
	case ast.OpRem:
		c.asm.Cqo()
		c.asm.IDiv(x64.RCX)
		c.asm.MovRegReg(x64.RAX, x64.RDX)
	case ast.OpBitAnd:
		c.asm.And(x64.RAX, x64.RCX)
	case ast.OpBitOr:
		c.asm.Or(x64.RAX, x64.RCX)
	case ast.OpBitXor:
		c.asm.Xor(x64.RAX, x64.RCX)
	case ast.OpEq:
		c.asm.Cmp(x64.RAX, x64.RCX)
		c.asm.SetccAL(x64.CondEq)
	case ast.OpNe:
		c.asm.Cmp(x64.RAX, x64.RCX)
		c.asm.SetccAL(x64.CondNe)
	case ast.OpLt:
		c.asm.Cmp(x64.RAX, x64.RCX)
		c.asm.SetccAL(x64.CondLt)
	case ast.OpLe:
		c.asm.Cmp(x64.RAX, x64.RCX)
		c.asm.SetccAL(x64.CondLe)
	case ast.OpGt:
		c.asm.Cmp(x64.RAX, x64.RCX)
		c.asm.SetccAL(x64.CondGt)
	case ast.OpGe:
		c.asm.Cmp(x64.RAX, x64.RCX)
		c.asm.SetccAL(x64.CondGe)
	default:
		return fmt.Errorf("codegen: binary operator not yet supported by native lowering")
	}

	return nil
}

func (c *lowerCtx) lowerUnary(ex *ast.UnaryExpr) error {
	if err := c.lowerExpr(ex.Operand); err != nil {
		return err
	}

	switch ex.Op {
	case ast.OpNeg:
		c.asm.Neg(x64.RAX)
	case ast.OpNot, ast.OpBitNot:
		c.asm.Not(x64.RAX)
	case ast.OpRef, ast.OpRefMut, ast.OpDeref:
		// Addresses are not modelled by this direct stack-value lowering;
		// reference operators pass the underlying value through.
	default:
		return fmt.Errorf("codegen: unary operator not yet supported by native lowering")
	}

	return nil
}

func (c *lowerCtx) lowerAssign(ex *ast.AssignExpr) error {
	ident, ok := ex.Target.(*ast.Ident)
	if !ok {
		return fmt.Errorf("codegen: only identifier assignment targets are supported")
	}

	if err := c.lowerExpr(ex.Value); err != nil {
		return err
	}

	disp, ok := c.frame.Offset(ident.Name)
	if !ok {
		return fmt.Errorf("codegen: unbound assignment target %q", ident.Name)
	}

	if ex.CompoundOp != nil {
		c.asm.MovRegReg(x64.RCX, x64.RAX)
		c.asm.MovFromStack(x64.RAX, disp)

		switch *ex.CompoundOp {
		case ast.OpAdd:
			c.asm.Add(x64.RAX, x64.RCX)
		case ast.OpSub:
			c.asm.Sub(x64.RAX, x64.RCX)
		case ast.OpMul:
			c.asm.IMul(x64.RAX, x64.RCX)
		}
	}

	c.asm.MovToStack(disp, x64.RAX)

	return nil
}

func (c *lowerCtx) lowerCall(ex *ast.CallExpr) error {
	id, ok := ex.Callee.(*ast.Ident)
	if !ok {
		return fmt.Errorf("codegen: indirect calls are not yet supported by native lowering")
	}

	for i, a := range ex.Args {
		if i >= len(x64.ArgRegs) {
			return fmt.Errorf("codegen: more than %d arguments not yet supported", len(x64.ArgRegs))
		}

		if err := c.lowerExpr(a); err != nil {
			return err
		}

		scratch := c.frame.Alloc(c.gen.newLabel("arg"), types.I64)
		c.asm.MovToStack(scratch, x64.RAX)
		c.argScratch = append(c.argScratch, scratch)
	}
	// Arguments were each spilled in evaluation order; reload them into
	// their ABI registers right before the call, back-to-front so that
	// earlier reloads are not clobbered by a later one's own spill slot.
	for i := len(ex.Args) - 1; i >= 0; i-- {
		c.asm.MovFromStack(x64.ArgRegs[i], c.argScratch[len(c.argScratch)-len(ex.Args)+i])
	}

	c.argScratch = c.argScratch[:len(c.argScratch)-len(ex.Args)]

	pos := c.asm.CallRel32()
	c.relocs = append(c.relocs, Relocation{Offset: pos, Symbol: id.Name})

	return nil
}

// lowerCallInto emits ex as a call and captures its result at dst, sized
// for t: a scalar or <=8 byte result only occupies RAX, while a 9-16 byte
// aggregate result (e.g. a callee returning a tagged enum by value) also
// captures RDX, mirroring lowerReturnValue's register-pair convention on
// the producing side.
func (c *lowerCtx) lowerCallInto(ex *ast.CallExpr, dst int32, t types.Type) error {
	if err := c.lowerCall(ex); err != nil {
		return err
	}

	c.asm.MovToStack(dst, x64.RAX)

	if SizeOf(c.reg, t).Size > 8 {
		c.asm.MovToStack(dst+8, x64.RDX)
	}

	return nil
}

func (c *lowerCtx) lowerIf(ex *ast.IfExpr) error {
	if err := c.lowerExpr(ex.Cond); err != nil {
		return err
	}

	c.asm.MovImm64(x64.RCX, 0)
	c.asm.Cmp(x64.RAX, x64.RCX)

	elseLabel := c.gen.newLabel("else")
	endLabel := c.gen.newLabel("endif")

	c.asm.JccLabel(x64.CondEq, elseLabel)

	if err := c.lowerBlock(ex.Then); err != nil {
		return err
	}

	c.asm.JmpLabel(endLabel)
	c.asm.Label(elseLabel)

	if ex.Else != nil {
		if err := c.lowerExpr(ex.Else); err != nil {
			return err
		}
	}

	c.asm.Label(endLabel)

	return nil
}

func (c *lowerCtx) lowerWhile(ex *ast.WhileExpr) error {
	top := c.gen.newLabel("while")
	end := c.gen.newLabel("endwhile")

	c.asm.Label(top)

	if err := c.lowerExpr(ex.Cond); err != nil {
		return err
	}

	c.asm.MovImm64(x64.RCX, 0)
	c.asm.Cmp(x64.RAX, x64.RCX)
	c.asm.JccLabel(x64.CondEq, end)

	if err := c.lowerBlock(ex.Body); err != nil {
		return err
	}

	c.asm.JmpLabel(top)
	c.asm.Label(end)

	return nil
}

// variantConstruct recognises the dotted enum-construction syntax used to
// build an enum value — `Name.Variant` (a FieldExpr) or
// `Name.Variant(args...)` (a MethodCallExpr) where Name is a registered
// enum — and, when e is one, returns the enum name, variant name and
// constructor arguments.
func (c *lowerCtx) variantConstruct(e ast.Expr) (enumName, variant string, args []ast.Expr, ok bool) {
	switch ex := e.(type) {
	case *ast.FieldExpr:
		if id, idOk := ex.Base.(*ast.Ident); idOk {
			if _, enumOk := c.reg.Enums[id.Name]; enumOk {
				return id.Name, ex.Field, nil, true
			}
		}
	case *ast.MethodCallExpr:
		if id, idOk := ex.Receiver.(*ast.Ident); idOk {
			if _, enumOk := c.reg.Enums[id.Name]; enumOk {
				return id.Name, ex.Method, ex.Args, true
			}
		}
	}

	return "", "", nil, false
}

func (c *lowerCtx) lowerField(ex *ast.FieldExpr) error {
	if enumName, variant, args, ok := c.variantConstruct(ex); ok {
		return c.lowerVariantScalar(enumName, variant, args, c.typeOfOrDefault(ex))
	}

	ident, ok := ex.Base.(*ast.Ident)
	if !ok {
		return fmt.Errorf("codegen: field access on non-identifier base not yet supported")
	}

	t := c.typeOfOrDefault(ex.Base)

	named, ok := t.(*types.Named)
	if !ok {
		return fmt.Errorf("codegen: field access requires a named struct type")
	}

	info, ok := c.reg.Structs[named.Name]
	if !ok {
		return fmt.Errorf("codegen: unknown struct %q", named.Name)
	}

	fieldTypes := make([]types.Type, len(info.Fields))

	fieldIdx := -1

	for i, f := range info.Fields {
		fieldTypes[i] = f.Type
		if f.Name == ex.Field {
			fieldIdx = i
		}
	}

	if fieldIdx < 0 {
		return fmt.Errorf("codegen: struct %q has no field %q", named.Name, ex.Field)
	}

	offsets := FieldOffsets(c.reg, fieldTypes)

	baseDisp, ok := c.frame.Offset(ident.Name)
	if !ok {
		return fmt.Errorf("codegen: unbound local %q", ident.Name)
	}

	// The struct occupies a contiguous region ending at baseDisp+size;
	// its first byte is therefore at baseDisp, and each field is at
	// baseDisp + its intra-struct offset.
	c.asm.MovFromStack(x64.RAX, baseDisp+int32(offsets[fieldIdx]))

	return nil
}

func (c *lowerCtx) lowerMethodCall(ex *ast.MethodCallExpr) error {
	if enumName, variant, args, ok := c.variantConstruct(ex); ok {
		return c.lowerVariantScalar(enumName, variant, args, c.typeOfOrDefault(ex))
	}

	return fmt.Errorf("codegen: method calls are not yet supported by native lowering")
}

// lowerVariantScalar constructs an enum variant value into an anonymous
// temporary slot and leaves its first word (the discriminant, for any
// multi-field variant) in RAX, mirroring lowerAggregateScalar.
func (c *lowerCtx) lowerVariantScalar(enumName, variant string, args []ast.Expr, t types.Type) error {
	tmp := c.frame.Alloc(c.gen.newLabel("variant"), t)

	if err := c.lowerVariantConstructInto(enumName, variant, args, tmp); err != nil {
		return err
	}

	c.asm.MovFromStack(x64.RAX, tmp)

	return nil
}

// lowerIndex projects a[i]. The base must be an identifier, the same
// restriction lowerField applies to a struct base. A constant index is
// addressed directly at baseDisp+i*elemSize; a dynamically-computed index
// goes through SIB-indexed addressing, falling back to an explicit
// multiply first when the element size isn't a SIB-encodable scale.
func (c *lowerCtx) lowerIndex(ex *ast.IndexExpr) error {
	ident, ok := ex.Base.(*ast.Ident)
	if !ok {
		return fmt.Errorf("codegen: indexing a non-identifier base is not yet supported")
	}

	baseDisp, ok := c.frame.Offset(ident.Name)
	if !ok {
		return fmt.Errorf("codegen: unbound local %q", ident.Name)
	}

	arr, ok := c.typeOfOrDefault(ex.Base).(*types.Array)
	if !ok {
		return fmt.Errorf("codegen: indexing requires an array type")
	}

	elemSize := SizeOf(c.reg, arr.Elem).Size

	if n, ok := constIntValue(ex.Index); ok {
		c.asm.MovFromStack(x64.RAX, baseDisp+int32(n)*int32(elemSize))
		return nil
	}

	if err := c.lowerExpr(ex.Index); err != nil {
		return err
	}

	c.asm.MovRegReg(x64.RCX, x64.RAX)

	switch elemSize {
	case 1, 2, 4, 8:
		c.asm.MovFromStackIndexed(x64.RAX, baseDisp, x64.RCX, elemSize)
	default:
		c.asm.MovImm64(x64.RAX, int64(elemSize))
		c.asm.IMul(x64.RCX, x64.RAX)
		c.asm.MovFromStackIndexed(x64.RAX, baseDisp, x64.RCX, 1)
	}

	return nil
}

func constIntValue(e ast.Expr) (int64, bool) {
	lit, ok := e.(*ast.Literal)
	if !ok || lit.Kind != ast.LitInt {
		return 0, false
	}

	n, ok := lit.Raw.(int64)

	return n, ok
}

// lowerMatch dispatches on an enum scrutinee's discriminant, binding each
// matched arm's payload fields into fresh frame slots before lowering its
// body, and leaves the taken arm's value in RAX. The scrutinee must be an
// identifier, the same restriction lowerField and lowerIndex apply to
// their base operand.
func (c *lowerCtx) lowerMatch(ex *ast.MatchExpr) error {
	ident, ok := ex.Scrutinee.(*ast.Ident)
	if !ok {
		return fmt.Errorf("codegen: match on a non-identifier scrutinee is not yet supported")
	}

	baseDisp, ok := c.frame.Offset(ident.Name)
	if !ok {
		return fmt.Errorf("codegen: unbound local %q", ident.Name)
	}

	named, ok := c.typeOfOrDefault(ex.Scrutinee).(*types.Named)
	if !ok {
		return fmt.Errorf("codegen: match requires an enum-typed scrutinee")
	}

	info, ok := c.reg.Enums[named.Name]
	if !ok {
		return fmt.Errorf("codegen: unknown enum %q", named.Name)
	}

	endLabel := c.gen.newLabel("endmatch")

	for i, arm := range ex.Arms {
		nextLabel := c.gen.newLabel("arm")
		last := i == len(ex.Arms)-1

		if vp, ok := arm.Pattern.(*ast.VariantPattern); ok {
			variantInfo, ok := findVariant(info, vp.Variant)
			if !ok {
				return fmt.Errorf("codegen: enum %q has no variant %q", named.Name, vp.Variant)
			}

			c.asm.MovFromStack(x64.RAX, baseDisp)
			c.asm.MovImm64(x64.RCX, int64(variantInfo.Index))
			c.asm.Cmp(x64.RAX, x64.RCX)
			c.asm.JccLabel(x64.CondNe, nextLabel)

			offsets := FieldOffsets(c.reg, variantInfo.Fields)

			for j, sub := range vp.Elements {
				name, ok := simpleBindName(sub)
				if !ok || j >= len(variantInfo.Fields) {
					continue
				}

				slot := c.frame.Alloc(name, variantInfo.Fields[j])
				c.asm.MovFromStack(x64.RAX, baseDisp+enumTagSize+int32(offsets[j]))
				c.asm.MovToStack(slot, x64.RAX)
			}
		}
		// A non-variant pattern (a wildcard or a plain binding) matches
		// unconditionally; exhaustiveness (it only being legal as the
		// final arm) is the checker's responsibility, not this pass's.

		if arm.Guard != nil {
			if err := c.lowerExpr(arm.Guard); err != nil {
				return err
			}

			c.asm.MovImm64(x64.RCX, 0)
			c.asm.Cmp(x64.RAX, x64.RCX)
			c.asm.JccLabel(x64.CondEq, nextLabel)
		}

		if err := c.lowerExpr(arm.Body); err != nil {
			return err
		}

		if !last {
			c.asm.JmpLabel(endLabel)
		}

		c.asm.Label(nextLabel)
	}

	c.asm.Label(endLabel)

	return nil
}

func findVariant(info *types.EnumInfo, name string) (*types.VariantInfo, bool) {
	for i := range info.Variants {
		if info.Variants[i].Name == name {
			return &info.Variants[i], true
		}
	}

	return nil, false
}

// lowerTry implements the `?` postfix operator as a scalar-producing
// expression (e.g. `step()?` consumed directly rather than through a
// named binding): the unwrapped payload ends up in RAX.
func (c *lowerCtx) lowerTry(ex *ast.TryExpr) error {
	t := c.typeOfOrDefault(ex)
	tmp := c.frame.Alloc(c.gen.newLabel("try"), t)

	if err := c.lowerTryInto(ex, tmp, t); err != nil {
		return err
	}

	c.asm.MovFromStack(x64.RAX, tmp)

	return nil
}

// lowerTryInto evaluates ex.Value (an enum value), tests its discriminant
// against the conventionally-named Ok/Some success variant, and either
// projects the payload into dst (success) or returns the whole value
// immediately exactly as produced, propagating it to the caller (failure)
// — the same register-pair convention lowerReturnValue uses for any other
// wider-than-one-word result.
func (c *lowerCtx) lowerTryInto(ex *ast.TryExpr, dst int32, _ types.Type) error {
	innerType := c.typeOfOrDefault(ex.Value)

	named, ok := innerType.(*types.Named)
	if !ok {
		return fmt.Errorf("codegen: `?` requires an enum-typed operand")
	}

	info, ok := c.reg.Enums[named.Name]
	if !ok {
		return fmt.Errorf("codegen: unknown enum %q", named.Name)
	}

	successIdx, _, ok := info.TrySuccessVariant()
	if !ok {
		return fmt.Errorf("codegen: enum %q has no Ok/Some success variant for `?`", named.Name)
	}

	innerSize := int32(SizeOf(c.reg, innerType).Size)
	tmp := c.frame.Alloc(c.gen.newLabel("tryval"), innerType)

	if err := c.lowerExprInto(ex.Value, tmp, innerType); err != nil {
		return err
	}

	okLabel := c.gen.newLabel("tryok")

	c.asm.MovFromStack(x64.RAX, tmp)
	c.asm.MovImm64(x64.RCX, int64(successIdx))
	c.asm.Cmp(x64.RAX, x64.RCX)
	c.asm.JccLabel(x64.CondEq, okLabel)

	// Propagate: reload the whole value into the return-value registers
	// and return immediately.
	c.asm.MovFromStack(x64.RAX, tmp)

	if innerSize > 8 {
		c.asm.MovFromStack(x64.RDX, tmp+8)
	}

	c.asm.Ret()

	c.asm.Label(okLabel)
	// The success variant's single payload field sits right after the tag,
	// at offset 0 within its own payload region.
	c.asm.MovFromStack(x64.RAX, tmp+enumTagSize)
	c.asm.MovToStack(dst, x64.RAX)

	return nil
}

// lowerExprInto lowers e directly into the stack region at dst, sized for
// t: a struct literal writes each field at dst+its field offset, an array
// literal writes each element at dst+i*elemSize, an enum-variant
// construction writes its discriminant at dst followed by its payload at
// dst+enumTagSize, a call or `?` captures up to two result words, a local
// wider than one word is copied word by word from its own slot, and any
// other (scalar-valued) expression falls back to evaluating through RAX
// and storing the single resulting word at dst.
func (c *lowerCtx) lowerExprInto(e ast.Expr, dst int32, t types.Type) error {
	switch ex := e.(type) {
	case *ast.Ident:
		if size := int32(SizeOf(c.reg, t).Size); size > 8 {
			src, ok := c.frame.Offset(ex.Name)
			if !ok {
				return fmt.Errorf("codegen: unbound local %q", ex.Name)
			}

			for off := int32(0); off < size; off += 8 {
				c.asm.MovFromStack(x64.RAX, src+off)
				c.asm.MovToStack(dst+off, x64.RAX)
			}

			return nil
		}
	case *ast.StructLiteralExpr:
		return c.lowerStructLiteralInto(ex, dst)
	case *ast.ArrayLiteralExpr:
		return c.lowerArrayLiteralInto(ex, dst, t)
	case *ast.CallExpr:
		return c.lowerCallInto(ex, dst, t)
	case *ast.TryExpr:
		return c.lowerTryInto(ex, dst, t)
	}

	if enumName, variant, args, ok := c.variantConstruct(e); ok {
		return c.lowerVariantConstructInto(enumName, variant, args, dst)
	}

	if err := c.lowerExpr(e); err != nil {
		return err
	}

	c.asm.MovToStack(dst, x64.RAX)

	return nil
}

// lowerStructLiteralInto writes a struct value at dst, one field at a
// time. The `..base` spread form is only supported when base is a plain
// identifier, consistent with this pass's other identifier-only
// restrictions (lowerField, lowerAssign, lowerCall, lowerIndex).
func (c *lowerCtx) lowerStructLiteralInto(ex *ast.StructLiteralExpr, dst int32) error {
	info, ok := c.reg.Structs[ex.Name]
	if !ok {
		return fmt.Errorf("codegen: unknown struct %q", ex.Name)
	}

	fieldTypes := make([]types.Type, len(info.Fields))
	for i, f := range info.Fields {
		fieldTypes[i] = f.Type
	}

	offsets := FieldOffsets(c.reg, fieldTypes)

	if ex.Spread != nil {
		ident, ok := ex.Spread.(*ast.Ident)
		if !ok {
			return fmt.Errorf("codegen: struct spread base must be an identifier")
		}

		baseDisp, ok := c.frame.Offset(ident.Name)
		if !ok {
			return fmt.Errorf("codegen: unbound local %q", ident.Name)
		}

		size := int32(SizeOf(c.reg, &types.Named{Name: ex.Name}).Size)

		for off := int32(0); off < size; off += 8 {
			c.asm.MovFromStack(x64.RAX, baseDisp+off)
			c.asm.MovToStack(dst+off, x64.RAX)
		}
	}

	for _, fi := range ex.Fields {
		idx := -1

		for i, f := range info.Fields {
			if f.Name == fi.Name {
				idx = i
				break
			}
		}

		if idx < 0 {
			return fmt.Errorf("codegen: struct %q has no field %q", ex.Name, fi.Name)
		}

		if err := c.lowerExprInto(fi.Value, dst+int32(offsets[idx]), fieldTypes[idx]); err != nil {
			return err
		}
	}

	return nil
}

// lowerArrayLiteralInto writes an array value at dst: element i at
// dst+i*elemSize for the `[e1, e2, ...]` form, or the same value repeated
// Count times for the `[value; count]` form. Count must be a compile-time
// integer literal, consistent with array lengths being resolved ahead of
// codegen elsewhere in the pipeline.
func (c *lowerCtx) lowerArrayLiteralInto(ex *ast.ArrayLiteralExpr, dst int32, t types.Type) error {
	arr, ok := t.(*types.Array)
	if !ok {
		return fmt.Errorf("codegen: array literal requires an array type")
	}

	elemSize := int32(SizeOf(c.reg, arr.Elem).Size)

	if ex.Repeat != nil {
		count, ok := constIntValue(ex.Count)
		if !ok {
			return fmt.Errorf("codegen: array repeat count must be a constant integer")
		}

		for i := int64(0); i < count; i++ {
			if err := c.lowerExprInto(ex.Repeat, dst+int32(i)*elemSize, arr.Elem); err != nil {
				return err
			}
		}

		return nil
	}

	for i, el := range ex.Elements {
		if err := c.lowerExprInto(el, dst+int32(i)*elemSize, arr.Elem); err != nil {
			return err
		}
	}

	return nil
}

// lowerVariantConstructInto writes an enum variant value at dst: the
// variant's index as an 8-byte discriminant at dst, followed by its
// payload fields (if any) at dst+enumTagSize, laid out the same way
// FieldOffsets places a struct's fields.
func (c *lowerCtx) lowerVariantConstructInto(enumName, variant string, args []ast.Expr, dst int32) error {
	info, ok := c.reg.Enums[enumName]
	if !ok {
		return fmt.Errorf("codegen: unknown enum %q", enumName)
	}

	variantInfo, ok := findVariant(info, variant)
	if !ok {
		return fmt.Errorf("codegen: enum %q has no variant %q", enumName, variant)
	}

	c.asm.MovImm64(x64.RAX, int64(variantInfo.Index))
	c.asm.MovToStack(dst, x64.RAX)

	offsets := FieldOffsets(c.reg, variantInfo.Fields)

	for i, a := range args {
		if i >= len(variantInfo.Fields) {
			break
		}

		if err := c.lowerExprInto(a, dst+enumTagSize+int32(offsets[i]), variantInfo.Fields[i]); err != nil {
			return err
		}
	}

	return nil
}
