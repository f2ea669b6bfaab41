package pass

import (
	"fmt"

	"github.com/home-lang/home/pkg/ast"
)

// commonSubexpressionPass replaces a repeated syntactically-identical
// pure binary expression within the same block with a reference to the
// first `let` binding that computed it, avoiding recomputation. This is a
// deliberately conservative, block-local form of CSE: it never reorders
// evaluation and only fires on `let` initialisers, not arbitrary
// expression positions, to keep its semantics easy to reason about at O2+.
func commonSubexpressionPass() Pass {
	return Pass{Name: "common-subexpression-elimination", Run: func(b *ast.Block) (*ast.Block, int) {
		count := 0
		seen := make(map[string]string) // canonical expr text -> binding name

		for _, s := range b.Stmts {
			let, ok := s.(*ast.LetStmt)
			if !ok || let.Value == nil || !isPure(let.Value) {
				continue
			}

			bin, ok := let.Value.(*ast.BinaryExpr)
			if !ok {
				continue
			}

			key := canonicalBinary(bin)

			if existing, ok := seen[key]; ok {
				name, ok := simpleBindName(let.Pattern)
				if ok {
					let.Value = &ast.Ident{Name: existing}
					count++

					_ = name
				}

				continue
			}

			if name, ok := simpleBindName(let.Pattern); ok {
				seen[key] = name
			}
		}

		return b, count
	}}
}

func canonicalBinary(e *ast.BinaryExpr) string {
	return exprText(e.LHS) + opText(e.Op) + exprText(e.RHS)
}

func exprText(e ast.Expr) string {
	switch ex := e.(type) {
	case *ast.Ident:
		return "id:" + ex.Name
	case *ast.Literal:
		return fmt.Sprintf("lit%d:%v%s", ex.Kind, ex.Raw, ex.Suffix)
	case *ast.UnaryExpr:
		return fmt.Sprintf("u%d(%s)", ex.Op, exprText(ex.Operand))
	case *ast.BinaryExpr:
		return "(" + canonicalBinary(ex) + ")"
	default:
		return "?"
	}
}

func opText(op ast.BinOp) string {
	names := map[ast.BinOp]string{
		ast.OpAdd: "+", ast.OpSub: "-", ast.OpMul: "*", ast.OpDiv: "/", ast.OpRem: "%",
		ast.OpBitAnd: "&", ast.OpBitOr: "|", ast.OpBitXor: "^",
	}

	if s, ok := names[op]; ok {
		return s
	}

	return fmt.Sprintf("op%d", op)
}
