package borrow

import (
	"testing"

	"github.com/home-lang/home/pkg/ast"
	"github.com/home-lang/home/pkg/diag"
	"github.com/home-lang/home/pkg/types"
	"github.com/home-lang/home/pkg/util/source"
)

func newTestChecker(exprTypes map[ast.NodeID]types.Type) (*Checker, *diag.Collector) {
	diags := diag.NewCollector()
	file := source.NewSourceFile("test.home", nil)

	if exprTypes == nil {
		exprTypes = map[ast.NodeID]types.Type{}
	}

	return NewChecker(file, map[ast.NodeID]source.Span{}, diags, exprTypes), diags
}

func identPat(name string) *ast.BindPattern { return &ast.BindPattern{Name: name} }

func Test_Checker_MoveThenUse_IsRejected(t *testing.T) {
	xUse1 := &ast.Ident{ID: 1, Name: "x"}
	xUse2 := &ast.Ident{ID: 2, Name: "x"}

	fn := &ast.FuncDecl{
		Name: "f",
		Params: []ast.Param{
			{Name: "x", Type: &ast.NamedType{Name: "Point"}},
		},
		Body: &ast.Block{
			Stmts: []ast.Stmt{
				&ast.LetStmt{Pattern: identPat("y"), Value: xUse1},
				&ast.ExprStmt{Expr: xUse2},
			},
		},
	}

	exprTypes := map[ast.NodeID]types.Type{
		xUse1.ID: &types.Named{Name: "Point"},
		xUse2.ID: &types.Named{Name: "Point"},
	}

	c, diags := newTestChecker(exprTypes)
	c.CheckFunc(fn)

	if !diags.HasErrors() {
		t.Fatal("expected an error for use of a moved binding")
	}
}

func Test_Checker_CopyType_NotMoved(t *testing.T) {
	xUse1 := &ast.Ident{ID: 1, Name: "x"}
	xUse2 := &ast.Ident{ID: 2, Name: "x"}

	fn := &ast.FuncDecl{
		Name: "f",
		Params: []ast.Param{
			{Name: "x", Type: &ast.NamedType{Name: "i64"}},
		},
		Body: &ast.Block{
			Stmts: []ast.Stmt{
				&ast.LetStmt{Pattern: identPat("y"), Value: xUse1},
				&ast.ExprStmt{Expr: xUse2},
			},
		},
	}

	exprTypes := map[ast.NodeID]types.Type{
		xUse1.ID: types.I64,
		xUse2.ID: types.I64,
	}

	c, diags := newTestChecker(exprTypes)
	c.CheckFunc(fn)

	if diags.HasErrors() {
		t.Fatalf("did not expect an error for a Copy-typed binding, got %v", diags.Items())
	}
}

func Test_Checker_AssignWhileBorrowed_IsRejected(t *testing.T) {
	borrowExpr := &ast.UnaryExpr{ID: 1, Op: ast.OpRef, Operand: &ast.Ident{ID: 2, Name: "x"}}

	fn := &ast.FuncDecl{
		Name: "f",
		Body: &ast.Block{
			Stmts: []ast.Stmt{
				&ast.LetStmt{Pattern: identPat("x"), Value: &ast.Literal{ID: 3, Kind: ast.LitInt, Raw: int64(1)}},
				&ast.LetStmt{Pattern: identPat("r"), Value: borrowExpr},
				&ast.ExprStmt{Expr: &ast.AssignExpr{
					ID:     4,
					Target: &ast.Ident{ID: 5, Name: "x"},
					Value:  &ast.Literal{ID: 6, Kind: ast.LitInt, Raw: int64(2)},
				}},
			},
		},
	}

	c, diags := newTestChecker(nil)
	c.CheckFunc(fn)

	if !diags.HasErrors() {
		t.Fatal("expected an error assigning to a borrowed binding")
	}
}

func Test_Checker_BorrowReleasedAtBlockExit(t *testing.T) {
	innerBorrow := &ast.UnaryExpr{ID: 1, Op: ast.OpRef, Operand: &ast.Ident{ID: 2, Name: "x"}}
	outerBorrow := &ast.UnaryExpr{ID: 3, Op: ast.OpRefMut, Operand: &ast.Ident{ID: 4, Name: "x"}}

	fn := &ast.FuncDecl{
		Name: "f",
		Body: &ast.Block{
			Stmts: []ast.Stmt{
				&ast.LetStmt{Pattern: identPat("x"), Value: &ast.Literal{ID: 5, Kind: ast.LitInt, Raw: int64(1)}},
				&ast.ExprStmt{Expr: &ast.BlockExpr{Block: &ast.Block{
					Stmts: []ast.Stmt{&ast.LetStmt{Pattern: identPat("r"), Value: innerBorrow}},
				}}},
				// x's shared borrow above died with its block, so a mutable
				// borrow here must be accepted, not rejected as conflicting.
				&ast.LetStmt{Pattern: identPat("m"), Value: outerBorrow},
			},
		},
	}

	c, diags := newTestChecker(nil)
	c.CheckFunc(fn)

	if diags.HasErrors() {
		t.Fatalf("did not expect a borrow conflict once the inner borrow's block exited, got %v", diags.Items())
	}
}

func Test_Checker_EscapingLocalReference_IsRejected(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: "f",
		Body: &ast.Block{
			Stmts: []ast.Stmt{
				&ast.LetStmt{Pattern: identPat("x"), Value: &ast.Literal{ID: 1, Kind: ast.LitInt, Raw: int64(1)}},
			},
			Tail: &ast.UnaryExpr{ID: 2, Op: ast.OpRef, Operand: &ast.Ident{ID: 3, Name: "x"}},
		},
	}

	c, diags := newTestChecker(nil)
	c.CheckFunc(fn)

	if !diags.HasErrors() {
		t.Fatal("expected an error returning a reference to a local")
	}
}

func Test_Checker_ReturningReferenceToParam_IsAccepted(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: "f",
		Params: []ast.Param{
			{Name: "x", Type: &ast.NamedType{Name: "i64"}},
		},
		Body: &ast.Block{
			Tail: &ast.UnaryExpr{ID: 1, Op: ast.OpRef, Operand: &ast.Ident{ID: 2, Name: "x"}},
		},
	}

	c, diags := newTestChecker(nil)
	c.CheckFunc(fn)

	if diags.HasErrors() {
		t.Fatalf("did not expect an error returning a reference to a parameter, got %v", diags.Items())
	}
}
