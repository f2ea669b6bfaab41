package pass

import "github.com/home-lang/home/pkg/ast"

// deadStoreEliminationPass drops `let` bindings whose name is never
// referenced again in the same block and whose initialiser is free of
// side effects (literals, references to locals, and unary or binary
// operators over them, dereference excluded), and drops expression
// statements made only of such side-effect-free expressions.
func deadStoreEliminationPass() Pass {
	return Pass{Name: "dead-store-elimination", Run: func(b *ast.Block) (*ast.Block, int) {
		count := 0
		used := collectUses(b)

		var kept []ast.Stmt

		for _, s := range b.Stmts {
			if let, ok := s.(*ast.LetStmt); ok {
				if name, ok := simpleBindName(let.Pattern); ok && !used[name] && isPure(let.Value) {
					count++
					continue
				}
			}

			if es, ok := s.(*ast.ExprStmt); ok && isPure(es.Expr) {
				count++
				continue
			}

			kept = append(kept, s)
		}

		b.Stmts = kept

		return b, count
	}}
}

func simpleBindName(p ast.Pattern) (string, bool) {
	bp, ok := p.(*ast.BindPattern)
	if !ok || bp.SubPattern != nil {
		return "", false
	}

	return bp.Name, true
}

func isPure(e ast.Expr) bool {
	switch ex := e.(type) {
	case nil:
		return true
	case *ast.Literal, *ast.Ident:
		return true
	case *ast.BinaryExpr:
		return isPure(ex.LHS) && isPure(ex.RHS)
	case *ast.UnaryExpr:
		return ex.Op != ast.OpDeref && isPure(ex.Operand)
	default:
		return false
	}
}

// collectUses walks every statement and the tail expression, recording
// every identifier name referenced anywhere in the block.
func collectUses(b *ast.Block) map[string]bool {
	used := make(map[string]bool)

	var walkStmt func(ast.Stmt)

	var walkExpr func(ast.Expr)

	walkExpr = func(e ast.Expr) {
		switch ex := e.(type) {
		case nil:
			return
		case *ast.Ident:
			used[ex.Name] = true
		case *ast.BinaryExpr:
			walkExpr(ex.LHS)
			walkExpr(ex.RHS)
		case *ast.UnaryExpr:
			walkExpr(ex.Operand)
		case *ast.AssignExpr:
			walkExpr(ex.Target)
			walkExpr(ex.Value)
		case *ast.CallExpr:
			walkExpr(ex.Callee)

			for _, a := range ex.Args {
				walkExpr(a)
			}
		case *ast.MethodCallExpr:
			walkExpr(ex.Receiver)

			for _, a := range ex.Args {
				walkExpr(a)
			}
		case *ast.FieldExpr:
			walkExpr(ex.Base)
		case *ast.IndexExpr:
			walkExpr(ex.Base)
			walkExpr(ex.Index)
		case *ast.StructLiteralExpr:
			for _, f := range ex.Fields {
				walkExpr(f.Value)
			}
		case *ast.ArrayLiteralExpr:
			for _, el := range ex.Elements {
				walkExpr(el)
			}
		case *ast.BlockExpr:
			for _, s := range ex.Block.Stmts {
				walkStmt(s)
			}

			walkExpr(ex.Block.Tail)
		case *ast.IfExpr:
			walkExpr(ex.Cond)

			for _, s := range ex.Then.Stmts {
				walkStmt(s)
			}

			walkExpr(ex.Then.Tail)
			walkExpr(ex.Else)
		}
	}

	walkStmt = func(s ast.Stmt) {
		switch st := s.(type) {
		case *ast.LetStmt:
			walkExpr(st.Value)
		case *ast.ExprStmt:
			walkExpr(st.Expr)
		case *ast.ReturnStmt:
			walkExpr(st.Value)
		case *ast.DeferStmt:
			walkExpr(st.Expr)
		}
	}

	for _, s := range b.Stmts {
		walkStmt(s)
	}

	walkExpr(b.Tail)

	return used
}
