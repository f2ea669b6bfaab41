package check

import (
	"github.com/home-lang/home/pkg/ast"
	"github.com/home-lang/home/pkg/types"
)

// checkExpr infers the type of e, optionally checking it against an
// expected type (bidirectional inference: expected may be nil when no
// context is available, e.g. a statement-position expression).
func (c *Checker) checkExpr(e ast.Expr, expected types.Type) types.Type {
	t := c.inferExpr(e, expected)

	c.recordType(e, t)

	return t
}

// recordType stashes the resolved type for an expression node, keyed by
// its NodeID when the concrete node exposes one.
func (c *Checker) recordType(e ast.Expr, t types.Type) {
	if id, ok := nodeID(e); ok {
		c.exprTypes[id] = t
	}
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

func (c *Checker) inferExpr(e ast.Expr, expected types.Type) types.Type {
	switch ex := e.(type) {
	case *ast.Literal:
		return c.inferLiteral(ex, expected)
	case *ast.Ident:
		if b, ok := c.lookup(ex.Name); ok {
			return b.typ
		}

		c.errorf(ex.ID, "H0210", "undefined identifier %q", ex.Name)

		return nil
	case *ast.PathExpr:
		return c.inferPath(ex)
	case *ast.BinaryExpr:
		return c.inferBinary(ex)
	case *ast.UnaryExpr:
		return c.inferUnary(ex)
	case *ast.AssignExpr:
		target := c.checkExpr(ex.Target, nil)
		c.checkExpr(ex.Value, target)

		return types.Unit
	case *ast.CallExpr:
		return c.inferCall(ex)
	case *ast.MethodCallExpr:
		return c.inferMethodCall(ex)
	case *ast.FieldExpr:
		return c.inferField(ex)
	case *ast.TupleIndexExpr:
		base := c.checkExpr(ex.Base, nil)
		if tup, ok := base.(*types.Tuple); ok && ex.Index < len(tup.Elements) {
			return tup.Elements[ex.Index]
		}

		return nil
	case *ast.IndexExpr:
		base := c.checkExpr(ex.Base, nil)
		c.checkExpr(ex.Index, types.USize)

		switch b := base.(type) {
		case *types.Array:
			return b.Elem
		case *types.Slice:
			return b.Elem
		default:
			return nil
		}
	case *ast.StructLiteralExpr:
		return c.inferStructLiteral(ex)
	case *ast.ArrayLiteralExpr:
		return c.inferArrayLiteral(ex)
	case *ast.TupleLiteralExpr:
		elems := make([]types.Type, len(ex.Elements))
		for i, el := range ex.Elements {
			elems[i] = c.checkExpr(el, nil)
		}

		return &types.Tuple{Elements: elems}
	case *ast.IfExpr:
		return c.inferIf(ex, expected)
	case *ast.MatchExpr:
		return c.inferMatch(ex, expected)
	case *ast.WhileExpr:
		c.checkExpr(ex.Cond, types.Bool)
		c.checkBlock(ex.Body, types.Unit)

		return types.Unit
	case *ast.ForExpr:
		iterTy := c.checkExpr(ex.Iterable, nil)
		c.pushScope()
		c.bindPattern(ex.Pattern, elementType(iterTy), false)
		c.checkBlockNoScope(ex.Body)
		c.popScope()

		return types.Unit
	case *ast.LoopExpr:
		return c.checkBlock(ex.Body, expected)
	case *ast.BlockExpr:
		return c.checkBlock(ex.Block, expected)
	case *ast.CastExpr:
		c.checkExpr(ex.Value, nil)
		return c.resolveType(ex.Target)
	case *ast.TryExpr:
		return c.inferTry(ex)
	case *ast.ClosureExpr:
		return c.inferClosure(ex)
	case *ast.AwaitExpr:
		return c.checkExpr(ex.Value, nil)
	case *ast.InterpStringExpr:
		for _, sub := range ex.Exprs {
			c.checkExpr(sub, nil)
		}

		return types.Str
	default:
		return nil
	}
}

// checkBlockNoScope checks a block's statements and tail without pushing a
// new scope, used where the caller has already pushed one (e.g. to bind a
// for-loop pattern that should be visible inside the loop body).
func (c *Checker) checkBlockNoScope(b *ast.Block) {
	for _, s := range b.Stmts {
		c.checkStmt(s)
	}

	if b.Tail != nil {
		c.checkExpr(b.Tail, nil)
	}
}

func elementType(t types.Type) types.Type {
	switch v := t.(type) {
	case *types.Array:
		return v.Elem
	case *types.Slice:
		return v.Elem
	default:
		return nil
	}
}

func (c *Checker) inferLiteral(lit *ast.Literal, expected types.Type) types.Type {
	switch lit.Kind {
	case ast.LitInt:
		if lit.Suffix != "" {
			if p, ok := types.LookupPrimitive(lit.Suffix); ok {
				return p
			}
		}

		if p, ok := expected.(*types.Primitive); ok && p.IsInteger() {
			return p
		}

		return types.I32
	case ast.LitFloat:
		if lit.Suffix != "" {
			if p, ok := types.LookupPrimitive(lit.Suffix); ok {
				return p
			}
		}

		if p, ok := expected.(*types.Primitive); ok && p.IsFloat() {
			return p
		}

		return types.F64
	case ast.LitString:
		return types.Str
	case ast.LitBool:
		return types.Bool
	default:
		return nil
	}
}

func (c *Checker) inferPath(ex *ast.PathExpr) types.Type {
	if len(ex.Segments) == 2 {
		if enum, ok := c.reg.Enums[ex.Segments[0]]; ok {
			for range enum.Variants {
				return &types.Named{Name: ex.Segments[0]}
			}
		}
	}

	return nil
}

func (c *Checker) inferBinary(ex *ast.BinaryExpr) types.Type {
	lhs := c.checkExpr(ex.LHS, nil)
	rhs := c.checkExpr(ex.RHS, lhs)

	switch ex.Op {
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpAnd, ast.OpOr:
		return types.Bool
	case ast.OpRange, ast.OpRangeEq:
		return &types.Named{Name: "Range", Args: []types.Type{lhs}}
	default:
		if lhs != nil {
			return lhs
		}

		return rhs
	}
}

func (c *Checker) inferUnary(ex *ast.UnaryExpr) types.Type {
	operand := c.checkExpr(ex.Operand, nil)

	switch ex.Op {
	case ast.OpNot:
		return types.Bool
	case ast.OpRef:
		return &types.Ref{Target: operand}
	case ast.OpRefMut:
		return &types.Ref{Mut: true, Target: operand}
	case ast.OpDeref:
		if r, ok := operand.(*types.Ref); ok {
			return r.Target
		}

		return operand
	default:
		return operand
	}
}

func (c *Checker) inferCall(ex *ast.CallExpr) types.Type {
	for _, a := range ex.Args {
		c.checkExpr(a, nil)
	}

	if id, ok := ex.Callee.(*ast.Ident); ok {
		if b, ok := c.lookup(id.Name); ok {
			if fn, ok := b.typ.(*types.Func); ok {
				return fn.Return
			}
		}
	}

	c.checkExpr(ex.Callee, nil)

	return nil
}

func (c *Checker) inferMethodCall(ex *ast.MethodCallExpr) types.Type {
	if id, ok := ex.Receiver.(*ast.Ident); ok {
		if enum, ok := c.reg.Enums[id.Name]; ok {
			return c.inferVariantConstruct(ex.ID, enum, id.Name, ex.Method, ex.Args)
		}
	}

	recv := c.checkExpr(ex.Receiver, nil)

	for _, a := range ex.Args {
		c.checkExpr(a, nil)
	}

	typeName := concreteName(recv)
	if typeName == "" {
		return nil
	}

	fn, err := c.reg.ResolveMethod(typeName, ex.Method)
	if err != nil {
		c.errorf(ex.ID, "H0211", "%s", err.Error())
		return nil
	}

	return c.resolveType(fn.ReturnType)
}

func concreteName(t types.Type) string {
	switch v := t.(type) {
	case *types.Named:
		return v.Name
	case *types.Ref:
		return concreteName(v.Target)
	case *types.Primitive:
		return v.Name
	default:
		return ""
	}
}

// inferVariantConstruct checks `EnumName.Variant(args...)` (or, via
// inferField below, the zero-arg `EnumName.Variant` form), the dotted
// syntax used to build an enum value.
func (c *Checker) inferVariantConstruct(id ast.NodeID, enum *types.EnumInfo, enumName, variant string, args []ast.Expr) types.Type {
	for _, v := range enum.Variants {
		if v.Name != variant {
			continue
		}

		for i, a := range args {
			var want types.Type
			if i < len(v.Fields) {
				want = v.Fields[i]
			}

			c.checkExpr(a, want)
		}

		return &types.Named{Name: enumName}
	}

	c.errorf(id, "H0214", "enum %q has no variant %q", enumName, variant)

	return nil
}

func (c *Checker) inferField(ex *ast.FieldExpr) types.Type {
	if id, ok := ex.Base.(*ast.Ident); ok {
		if enum, ok := c.reg.Enums[id.Name]; ok {
			return c.inferVariantConstruct(ex.ID, enum, id.Name, ex.Field, nil)
		}
	}

	base := c.checkExpr(ex.Base, nil)

	name := concreteName(base)
	if info, ok := c.reg.Structs[name]; ok {
		for _, f := range info.Fields {
			if f.Name == ex.Field {
				return f.Type
			}
		}

		c.errorf(ex.ID, "H0212", "struct %q has no field %q", name, ex.Field)
	}

	return nil
}

func (c *Checker) inferStructLiteral(ex *ast.StructLiteralExpr) types.Type {
	info, ok := c.reg.Structs[ex.Name]
	if !ok {
		c.errorf(ex.ID, "H0213", "undefined struct %q", ex.Name)
		return nil
	}

	for _, fi := range ex.Fields {
		var want types.Type

		for _, f := range info.Fields {
			if f.Name == fi.Name {
				want = f.Type
			}
		}

		c.checkExpr(fi.Value, want)
	}

	if ex.Spread != nil {
		c.checkExpr(ex.Spread, &types.Named{Name: ex.Name})
	}

	return &types.Named{Name: ex.Name}
}

func (c *Checker) inferArrayLiteral(ex *ast.ArrayLiteralExpr) types.Type {
	if ex.Repeat != nil {
		elem := c.checkExpr(ex.Repeat, nil)
		return &types.Array{Elem: elem, Length: 0}
	}

	var elem types.Type

	for _, e := range ex.Elements {
		elem = c.checkExpr(e, elem)
	}

	return &types.Array{Elem: elem, Length: len(ex.Elements)}
}

func (c *Checker) inferIf(ex *ast.IfExpr, expected types.Type) types.Type {
	c.checkExpr(ex.Cond, types.Bool)

	thenTy := c.checkBlock(ex.Then, expected)

	if ex.Else == nil {
		return types.Unit
	}

	elseTy := c.checkExpr(ex.Else, expected)

	if !assignable(thenTy, elseTy) && !assignable(elseTy, thenTy) {
		return nil
	}

	return thenTy
}

func (c *Checker) inferMatch(ex *ast.MatchExpr, expected types.Type) types.Type {
	scrutTy := c.checkExpr(ex.Scrutinee, nil)

	var result types.Type

	for _, arm := range ex.Arms {
		c.pushScope()
		c.bindPatternMatch(arm.Pattern, scrutTy)

		if arm.Guard != nil {
			c.checkExpr(arm.Guard, types.Bool)
		}

		bodyTy := c.checkExpr(arm.Body, expected)
		c.popScope()

		if result == nil {
			result = bodyTy
		}
	}

	return result
}

func (c *Checker) bindPatternMatch(p ast.Pattern, t types.Type) {
	c.bindPattern(p, t, false)
}

func (c *Checker) inferTry(ex *ast.TryExpr) types.Type {
	inner := c.checkExpr(ex.Value, nil)

	named, ok := inner.(*types.Named)
	if !ok {
		return inner
	}

	if len(named.Args) > 0 {
		switch named.Name {
		case "Result", "Option":
			return named.Args[0]
		}
	}

	if enum, ok := c.reg.Enums[named.Name]; ok {
		if _, payload, ok := enum.TrySuccessVariant(); ok {
			return payload
		}
	}

	return inner
}

func (c *Checker) inferClosure(ex *ast.ClosureExpr) types.Type {
	c.pushScope()
	defer c.popScope()

	params := make([]types.Type, len(ex.Params))

	for i, p := range ex.Params {
		pt := c.resolveType(p.Type)
		params[i] = pt
		c.declare(p.Name, pt, false)
	}

	ret := c.checkExpr(ex.Body, nil)

	return &types.Func{Params: params, Return: ret}
}
