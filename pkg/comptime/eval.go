package comptime

import (
	"github.com/home-lang/home/pkg/ast"
)

func (e *Evaluator) eval(expr ast.Expr) (Value, error) {
	if err := e.step(); err != nil {
		return nil, err
	}

	switch ex := expr.(type) {
	case *ast.Literal:
		return e.evalLiteral(ex)
	case *ast.Ident:
		if v, ok := e.lookup(ex.Name); ok {
			return v, nil
		}

		if c, ok := e.prog.Consts[ex.Name]; ok {
			return e.eval(c)
		}

		return nil, &Error{"undefined identifier in comptime context: " + ex.Name}
	case *ast.BinaryExpr:
		return e.evalBinary(ex)
	case *ast.UnaryExpr:
		return e.evalUnary(ex)
	case *ast.CallExpr:
		return e.evalCall(ex)
	case *ast.IfExpr:
		return e.evalIf(ex)
	case *ast.BlockExpr:
		return e.evalBlock(ex.Block)
	case *ast.TupleLiteralExpr:
		vals := make([]Value, len(ex.Elements))

		for i, el := range ex.Elements {
			v, err := e.eval(el)
			if err != nil {
				return nil, err
			}

			vals[i] = v
		}

		return &Tuple{vals}, nil
	case *ast.ArrayLiteralExpr:
		return e.evalArrayLiteral(ex)
	case *ast.StructLiteralExpr:
		return e.evalStructLiteral(ex)
	case *ast.FieldExpr:
		if id, ok := ex.Base.(*ast.Ident); ok {
			if enum, ok := e.prog.Enums[id.Name]; ok {
				return e.evalVariantConstruct(enum, id.Name, ex.Field, nil)
			}
		}

		base, err := e.eval(ex.Base)
		if err != nil {
			return nil, err
		}

		if s, ok := base.(*Struct); ok {
			if v, ok := s.Fields[ex.Field]; ok {
				return v, nil
			}
		}

		return nil, &Error{"no such field in comptime struct: " + ex.Field}
	case *ast.MethodCallExpr:
		if id, ok := ex.Receiver.(*ast.Ident); ok {
			if enum, ok := e.prog.Enums[id.Name]; ok {
				return e.evalVariantConstruct(enum, id.Name, ex.Method, ex.Args)
			}
		}

		return nil, &Error{"method calls are not supported in comptime context"}
	case *ast.TryExpr:
		return e.evalTry(ex)
	case *ast.IndexExpr:
		base, err := e.eval(ex.Base)
		if err != nil {
			return nil, err
		}

		idx, err := e.eval(ex.Index)
		if err != nil {
			return nil, err
		}

		arr, ok := base.(*Array)
		n, ok2 := idx.(Int)

		if !ok || !ok2 || int(n) < 0 || int(n) >= len(arr.Elements) {
			return nil, &Error{"array index out of bounds in comptime context"}
		}

		return arr.Elements[n], nil
	case *ast.LoopExpr:
		return e.evalLoop(ex)
	case *ast.WhileExpr:
		return e.evalWhile(ex)
	case *ast.MatchExpr:
		return e.evalMatch(ex)
	default:
		return nil, &Error{"expression not supported in comptime context"}
	}
}

func (e *Evaluator) evalLiteral(lit *ast.Literal) (Value, error) {
	switch lit.Kind {
	case ast.LitInt:
		return Int(lit.Raw.(int64)), nil
	case ast.LitFloat:
		return Float(lit.Raw.(float64)), nil
	case ast.LitBool:
		return Bool(lit.Raw.(bool)), nil
	case ast.LitString:
		return Str(lit.Raw.(string)), nil
	default:
		return nil, &Error{"unsupported literal kind in comptime context"}
	}
}

func (e *Evaluator) evalBinary(ex *ast.BinaryExpr) (Value, error) {
	lhs, err := e.eval(ex.LHS)
	if err != nil {
		return nil, err
	}
	// Short-circuit boolean operators must not evaluate rhs eagerly.
	if ex.Op == ast.OpAnd {
		if b, ok := lhs.(Bool); ok && !bool(b) {
			return Bool(false), nil
		}
	}

	if ex.Op == ast.OpOr {
		if b, ok := lhs.(Bool); ok && bool(b) {
			return Bool(true), nil
		}
	}

	rhs, err := e.eval(ex.RHS)
	if err != nil {
		return nil, err
	}

	li, lok := lhs.(Int)
	ri, rok := rhs.(Int)

	if lok && rok {
		return evalIntBinary(ex.Op, li, ri)
	}

	lf, lfok := asFloat(lhs)
	rf, rfok := asFloat(rhs)

	if lfok && rfok {
		return evalFloatBinary(ex.Op, lf, rf)
	}

	lb, lbok := lhs.(Bool)
	rb, rbok := rhs.(Bool)

	if lbok && rbok {
		switch ex.Op {
		case ast.OpAnd:
			return Bool(lb && rb), nil
		case ast.OpOr:
			return Bool(lb || rb), nil
		case ast.OpEq:
			return Bool(lb == rb), nil
		case ast.OpNe:
			return Bool(lb != rb), nil
		}
	}

	return nil, &Error{"type mismatch in comptime binary operation"}
}

func asFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case Float:
		return float64(n), true
	case Int:
		return float64(n), true
	default:
		return 0, false
	}
}

func evalIntBinary(op ast.BinOp, l, r Int) (Value, error) {
	switch op {
	case ast.OpAdd:
		return l + r, nil
	case ast.OpSub:
		return l - r, nil
	case ast.OpMul:
		return l * r, nil
	case ast.OpDiv:
		if r == 0 {
			return nil, &Error{"division by zero in comptime context"}
		}

		return l / r, nil
	case ast.OpRem:
		if r == 0 {
			return nil, &Error{"modulo by zero in comptime context"}
		}

		return l % r, nil
	case ast.OpBitAnd:
		return l & r, nil
	case ast.OpBitOr:
		return l | r, nil
	case ast.OpBitXor:
		return l ^ r, nil
	case ast.OpShl:
		return l << uint(r), nil
	case ast.OpShr:
		return l >> uint(r), nil
	case ast.OpEq:
		return Bool(l == r), nil
	case ast.OpNe:
		return Bool(l != r), nil
	case ast.OpLt:
		return Bool(l < r), nil
	case ast.OpLe:
		return Bool(l <= r), nil
	case ast.OpGt:
		return Bool(l > r), nil
	case ast.OpGe:
		return Bool(l >= r), nil
	default:
		return nil, &Error{"unsupported integer operator in comptime context"}
	}
}

func evalFloatBinary(op ast.BinOp, l, r float64) (Value, error) {
	switch op {
	case ast.OpAdd:
		return Float(l + r), nil
	case ast.OpSub:
		return Float(l - r), nil
	case ast.OpMul:
		return Float(l * r), nil
	case ast.OpDiv:
		return Float(l / r), nil
	case ast.OpEq:
		return Bool(l == r), nil
	case ast.OpNe:
		return Bool(l != r), nil
	case ast.OpLt:
		return Bool(l < r), nil
	case ast.OpLe:
		return Bool(l <= r), nil
	case ast.OpGt:
		return Bool(l > r), nil
	case ast.OpGe:
		return Bool(l >= r), nil
	default:
		return nil, &Error{"unsupported float operator in comptime context"}
	}
}

func (e *Evaluator) evalUnary(ex *ast.UnaryExpr) (Value, error) {
	v, err := e.eval(ex.Operand)
	if err != nil {
		return nil, err
	}

	switch ex.Op {
	case ast.OpNeg:
		switch n := v.(type) {
		case Int:
			return -n, nil
		case Float:
			return -n, nil
		}
	case ast.OpNot:
		if b, ok := v.(Bool); ok {
			return !b, nil
		}
	case ast.OpBitNot:
		if n, ok := v.(Int); ok {
			return ^n, nil
		}
	case ast.OpRef, ast.OpRefMut, ast.OpDeref:
		// References are transparent in the comptime evaluator: it
		// operates on values directly rather than simulating memory.
		return v, nil
	}

	return nil, &Error{"unsupported unary operator in comptime context"}
}

func (e *Evaluator) evalCall(ex *ast.CallExpr) (Value, error) {
	id, ok := ex.Callee.(*ast.Ident)
	if !ok {
		return nil, &Error{"unsupported call target in comptime context"}
	}

	fn, ok := e.prog.Funcs[id.Name]
	if !ok {
		return nil, &Error{"call to unknown function in comptime context: " + id.Name}
	}

	args := make([]Value, len(ex.Args))

	for i, a := range ex.Args {
		v, err := e.eval(a)
		if err != nil {
			return nil, err
		}

		args[i] = v
	}

	return e.EvalFunc(fn, args)
}

func (e *Evaluator) evalIf(ex *ast.IfExpr) (Value, error) {
	cond, err := e.eval(ex.Cond)
	if err != nil {
		return nil, err
	}

	b, ok := cond.(Bool)
	if !ok {
		return nil, &Error{"if condition did not evaluate to bool in comptime context"}
	}

	if b {
		return e.evalBlock(ex.Then)
	}

	if ex.Else != nil {
		return e.eval(ex.Else)
	}

	return Unit{}, nil
}

func (e *Evaluator) evalArrayLiteral(ex *ast.ArrayLiteralExpr) (Value, error) {
	if ex.Repeat != nil {
		val, err := e.eval(ex.Repeat)
		if err != nil {
			return nil, err
		}

		count, err := e.eval(ex.Count)
		if err != nil {
			return nil, err
		}

		n, ok := count.(Int)
		if !ok {
			return nil, &Error{"array repeat count did not evaluate to int"}
		}

		elems := make([]Value, n)
		for i := range elems {
			elems[i] = val
		}

		return &Array{elems}, nil
	}

	elems := make([]Value, len(ex.Elements))

	for i, el := range ex.Elements {
		v, err := e.eval(el)
		if err != nil {
			return nil, err
		}

		elems[i] = v
	}

	return &Array{elems}, nil
}

// evalVariantConstruct evaluates `enumName.variant` or
// `enumName.variant(args...)`, the dotted syntax that builds an enum value.
func (e *Evaluator) evalVariantConstruct(enum *ast.EnumDecl, enumName, variant string, argExprs []ast.Expr) (Value, error) {
	found := false

	for _, v := range enum.Variants {
		if v.Name == variant {
			found = true
			break
		}
	}

	if !found {
		return nil, &Error{"enum " + enumName + " has no variant " + variant}
	}

	args := make([]Value, len(argExprs))

	for i, a := range argExprs {
		v, err := e.eval(a)
		if err != nil {
			return nil, err
		}

		args[i] = v
	}

	return &Variant{Enum: enumName, Variant: variant, Fields: args}, nil
}

// evalTry implements the `?` postfix operator: a two-armed result/option
// enum whose variant is named by convention (`Err`/`None`) propagates as an
// early return of the whole value; otherwise the single payload field (if
// any) is unwrapped.
func (e *Evaluator) evalTry(ex *ast.TryExpr) (Value, error) {
	v, err := e.eval(ex.Value)
	if err != nil {
		return nil, err
	}

	variant, ok := v.(*Variant)
	if !ok {
		return v, nil
	}

	switch variant.Variant {
	case "Err", "None":
		return nil, returnSignal{variant}
	}

	if len(variant.Fields) > 0 {
		return variant.Fields[0], nil
	}

	return Unit{}, nil
}

func (e *Evaluator) evalStructLiteral(ex *ast.StructLiteralExpr) (Value, error) {
	fields := make(map[string]Value, len(ex.Fields))

	for _, f := range ex.Fields {
		v, err := e.eval(f.Value)
		if err != nil {
			return nil, err
		}

		fields[f.Name] = v
	}

	return &Struct{Name: ex.Name, Fields: fields}, nil
}

func (e *Evaluator) evalLoop(ex *ast.LoopExpr) (Value, error) {
	for {
		if err := e.step(); err != nil {
			return nil, err
		}

		_, err := e.evalBlock(ex.Body)
		if err == nil {
			continue
		}

		if brk, ok := err.(breakSignal); ok {
			return brk.value, nil
		}

		if _, ok := err.(continueSignal); ok {
			continue
		}

		return nil, err
	}
}

func (e *Evaluator) evalWhile(ex *ast.WhileExpr) (Value, error) {
	for {
		if err := e.step(); err != nil {
			return nil, err
		}

		cond, err := e.eval(ex.Cond)
		if err != nil {
			return nil, err
		}

		b, ok := cond.(Bool)
		if !ok || !bool(b) {
			return Unit{}, nil
		}

		_, err = e.evalBlock(ex.Body)
		if err == nil {
			continue
		}

		if _, ok := err.(breakSignal); ok {
			return Unit{}, nil
		}

		if _, ok := err.(continueSignal); ok {
			continue
		}

		return nil, err
	}
}

func (e *Evaluator) evalMatch(ex *ast.MatchExpr) (Value, error) {
	scrutinee, err := e.eval(ex.Scrutinee)
	if err != nil {
		return nil, err
	}

	for _, arm := range ex.Arms {
		if bindings, ok := matchPattern(arm.Pattern, scrutinee); ok {
			e.pushScope()

			for k, v := range bindings {
				e.declare(k, v)
			}

			if arm.Guard != nil {
				g, err := e.eval(arm.Guard)
				if err != nil {
					e.popScope()
					return nil, err
				}

				if b, ok := g.(Bool); !ok || !bool(b) {
					e.popScope()
					continue
				}
			}

			v, err := e.eval(arm.Body)
			e.popScope()

			return v, err
		}
	}

	return nil, &Error{"no match arm matched in comptime context"}
}

// matchPattern attempts to match a pattern against a value, returning the
// bindings it introduces on success.
func matchPattern(p ast.Pattern, v Value) (map[string]Value, bool) {
	switch pat := p.(type) {
	case *ast.WildcardPattern:
		return map[string]Value{}, true
	case *ast.BindPattern:
		return map[string]Value{pat.Name: v}, true
	case *ast.LiteralPattern:
		return map[string]Value{}, literalEquals(pat.Lit, v)
	case *ast.TuplePattern:
		tup, ok := v.(*Tuple)
		if !ok || len(tup.Elements) != len(pat.Elements) {
			return nil, false
		}

		bindings := map[string]Value{}

		for i, sp := range pat.Elements {
			sub, ok := matchPattern(sp, tup.Elements[i])
			if !ok {
				return nil, false
			}

			for k, val := range sub {
				bindings[k] = val
			}
		}

		return bindings, true
	case *ast.VariantPattern:
		variant, ok := v.(*Variant)
		if !ok || variant.Variant != pat.Variant {
			return nil, false
		}

		bindings := map[string]Value{}

		for i, sp := range pat.Elements {
			if i >= len(variant.Fields) {
				break
			}

			sub, ok := matchPattern(sp, variant.Fields[i])
			if !ok {
				return nil, false
			}

			for k, val := range sub {
				bindings[k] = val
			}
		}

		return bindings, true
	case *ast.OrPattern:
		for _, alt := range pat.Alternatives {
			if bindings, ok := matchPattern(alt, v); ok {
				return bindings, true
			}
		}

		return nil, false
	default:
		return nil, false
	}
}

func literalEquals(lit ast.Literal, v Value) bool {
	switch lit.Kind {
	case ast.LitInt:
		n, ok := v.(Int)
		return ok && int64(n) == lit.Raw.(int64)
	case ast.LitBool:
		b, ok := v.(Bool)
		return ok && bool(b) == lit.Raw.(bool)
	case ast.LitString:
		s, ok := v.(Str)
		return ok && string(s) == lit.Raw.(string)
	case ast.LitFloat:
		f, ok := v.(Float)
		return ok && float64(f) == lit.Raw.(float64)
	default:
		return false
	}
}
