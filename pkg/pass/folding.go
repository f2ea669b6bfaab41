package pass

import "github.com/home-lang/home/pkg/ast"

// constantFoldPass replaces binary expressions over two integer literals
// with their folded result, recursively over every statement and the
// block's tail expression.
func constantFoldPass() Pass {
	return Pass{Name: "constant-fold", Run: func(b *ast.Block) (*ast.Block, int) {
		count := 0

		for i, s := range b.Stmts {
			b.Stmts[i] = foldStmt(s, &count)
		}

		if b.Tail != nil {
			b.Tail = foldExpr(b.Tail, &count)
		}

		return b, count
	}}
}

func foldStmt(s ast.Stmt, count *int) ast.Stmt {
	switch st := s.(type) {
	case *ast.LetStmt:
		if st.Value != nil {
			st.Value = foldExpr(st.Value, count)
		}
	case *ast.ExprStmt:
		st.Expr = foldExpr(st.Expr, count)
	case *ast.ReturnStmt:
		if st.Value != nil {
			st.Value = foldExpr(st.Value, count)
		}
	}

	return s
}

func foldExpr(e ast.Expr, count *int) ast.Expr {
	switch ex := e.(type) {
	case *ast.BinaryExpr:
		ex.LHS = foldExpr(ex.LHS, count)
		ex.RHS = foldExpr(ex.RHS, count)

		if folded, ok := tryFoldBinary(ex); ok {
			*count++
			return folded
		}

		return ex
	case *ast.UnaryExpr:
		ex.Operand = foldExpr(ex.Operand, count)

		if folded, ok := tryFoldUnary(ex); ok {
			*count++
			return folded
		}

		return ex
	case *ast.BlockExpr:
		for i, s := range ex.Block.Stmts {
			ex.Block.Stmts[i] = foldStmt(s, count)
		}

		if ex.Block.Tail != nil {
			ex.Block.Tail = foldExpr(ex.Block.Tail, count)
		}

		return ex
	default:
		return e
	}
}

func tryFoldBinary(ex *ast.BinaryExpr) (ast.Expr, bool) {
	l, lok := ex.LHS.(*ast.Literal)
	r, rok := ex.RHS.(*ast.Literal)

	if !lok || !rok || l.Kind != ast.LitInt || r.Kind != ast.LitInt {
		return nil, false
	}

	a, b := l.Raw.(int64), r.Raw.(int64)

	var result int64

	switch ex.Op {
	case ast.OpAdd:
		result = a + b
	case ast.OpSub:
		result = a - b
	case ast.OpMul:
		result = a * b
	case ast.OpDiv:
		if b == 0 {
			return nil, false
		}

		result = a / b
	case ast.OpRem:
		if b == 0 {
			return nil, false
		}

		result = a % b
	case ast.OpBitAnd:
		result = a & b
	case ast.OpBitOr:
		result = a | b
	case ast.OpBitXor:
		result = a ^ b
	default:
		return nil, false
	}

	return &ast.Literal{Kind: ast.LitInt, Raw: result, Suffix: l.Suffix}, true
}

func tryFoldUnary(ex *ast.UnaryExpr) (ast.Expr, bool) {
	if ex.Op != ast.OpNeg {
		return nil, false
	}

	lit, ok := ex.Operand.(*ast.Literal)
	if !ok || lit.Kind != ast.LitInt {
		return nil, false
	}

	return &ast.Literal{Kind: ast.LitInt, Raw: -lit.Raw.(int64), Suffix: lit.Suffix}, true
}
