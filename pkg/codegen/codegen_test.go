package codegen

import (
	"testing"

	"github.com/home-lang/home/pkg/ast"
	"github.com/home-lang/home/pkg/types"
)

func intLit(id ast.NodeID, v int64) *ast.Literal {
	return &ast.Literal{ID: id, Kind: ast.LitInt, Raw: v}
}

func Test_CompileFunc_ConstantReturn(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: "answer",
		Body: &ast.Block{Tail: intLit(1, 42)},
	}

	gen := NewGenerator(types.NewRegistry(), map[ast.NodeID]types.Type{})

	out, err := gen.CompileFunc(fn)
	if err != nil {
		t.Fatalf("CompileFunc: %v", err)
	}

	if len(out.Code) == 0 {
		t.Fatal("expected non-empty machine code")
	}

	// The function must end in a ret (0xC3) byte.
	if out.Code[len(out.Code)-1] != 0xC3 {
		t.Fatalf("expected trailing ret opcode, got %#x", out.Code[len(out.Code)-1])
	}
}

func Test_CompileFunc_AddParams(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: "add",
		Params: []ast.Param{
			{Name: "a", Type: &ast.NamedType{Name: "i64"}},
			{Name: "b", Type: &ast.NamedType{Name: "i64"}},
		},
		Body: &ast.Block{
			Tail: &ast.BinaryExpr{
				ID:  10,
				Op:  ast.OpAdd,
				LHS: &ast.Ident{ID: 11, Name: "a"},
				RHS: &ast.Ident{ID: 12, Name: "b"},
			},
		},
	}

	gen := NewGenerator(types.NewRegistry(), map[ast.NodeID]types.Type{})

	out, err := gen.CompileFunc(fn)
	if err != nil {
		t.Fatalf("CompileFunc: %v", err)
	}

	if out.FrameSize%16 != 0 {
		t.Fatalf("frame size %d not 16-byte aligned", out.FrameSize)
	}
}

func Test_CompileFunc_NoBody(t *testing.T) {
	fn := &ast.FuncDecl{Name: "decl_only"}

	gen := NewGenerator(types.NewRegistry(), map[ast.NodeID]types.Type{})

	if _, err := gen.CompileFunc(fn); err == nil {
		t.Fatal("expected error compiling a body-less function")
	}
}

func Test_CompileFunc_Call_RecordsRelocation(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: "caller",
		Body: &ast.Block{
			Tail: &ast.CallExpr{
				ID:     20,
				Callee: &ast.Ident{ID: 21, Name: "helper"},
				Args:   []ast.Expr{intLit(22, 7)},
			},
		},
	}

	gen := NewGenerator(types.NewRegistry(), map[ast.NodeID]types.Type{})

	out, err := gen.CompileFunc(fn)
	if err != nil {
		t.Fatalf("CompileFunc: %v", err)
	}

	if len(out.Relocations) != 1 {
		t.Fatalf("expected 1 relocation, got %d", len(out.Relocations))
	}

	if out.Relocations[0].Symbol != "helper" {
		t.Fatalf("expected relocation against %q, got %q", "helper", out.Relocations[0].Symbol)
	}
}

func Test_CompileFunc_StructLiteralAndField(t *testing.T) {
	reg := types.NewRegistry()
	reg.Structs["Point"] = &types.StructInfo{
		Fields: []types.FieldInfo{
			{Name: "x", Type: types.I64},
			{Name: "y", Type: types.I64},
		},
	}

	pointType := &types.Named{Name: "Point"}

	structLit := &ast.StructLiteralExpr{
		ID:   40,
		Name: "Point",
		Fields: []ast.FieldInit{
			{Name: "x", Value: intLit(41, 10)},
			{Name: "y", Value: intLit(42, 20)},
		},
	}

	pIdentInLet := &ast.Ident{ID: 43, Name: "p"}
	pIdentInField := &ast.Ident{ID: 44, Name: "p"}

	fn := &ast.FuncDecl{
		Name: "make_point",
		Body: &ast.Block{
			Stmts: []ast.Stmt{
				&ast.LetStmt{Pattern: &ast.BindPattern{Name: "p"}, Value: structLit},
			},
			Tail: &ast.BinaryExpr{
				ID: 45,
				Op: ast.OpAdd,
				LHS: &ast.FieldExpr{ID: 46, Base: pIdentInField, Field: "x"},
				RHS: &ast.FieldExpr{ID: 47, Base: pIdentInLet, Field: "y"},
			},
		},
	}

	exprTypes := map[ast.NodeID]types.Type{
		structLit.ID:      pointType,
		pIdentInLet.ID:    pointType,
		pIdentInField.ID:  pointType,
	}

	gen := NewGenerator(reg, exprTypes)

	out, err := gen.CompileFunc(fn)
	if err != nil {
		t.Fatalf("CompileFunc: %v", err)
	}

	if len(out.Code) == 0 {
		t.Fatal("expected non-empty machine code")
	}
}

func Test_CompileFunc_EnumConstructAndMatch(t *testing.T) {
	reg := types.NewRegistry()
	reg.Enums["Opt"] = &types.EnumInfo{
		Variants: []types.VariantInfo{
			{Name: "None", Index: 0},
			{Name: "Some", Index: 1, Fields: []types.Type{types.I64}},
		},
	}

	optType := &types.Named{Name: "Opt"}

	construct := &ast.MethodCallExpr{
		ID:       50,
		Receiver: &ast.Ident{ID: 51, Name: "Opt"},
		Method:   "Some",
		Args:     []ast.Expr{intLit(52, 42)},
	}

	scrutinee := &ast.Ident{ID: 53, Name: "o"}

	match := &ast.MatchExpr{
		ID:        54,
		Scrutinee: scrutinee,
		Arms: []ast.MatchArm{
			{
				Pattern: &ast.VariantPattern{Enum: "Opt", Variant: "Some", Elements: []ast.Pattern{&ast.BindPattern{Name: "v"}}},
				Body:    &ast.Ident{ID: 55, Name: "v"},
			},
			{
				Pattern: &ast.VariantPattern{Enum: "Opt", Variant: "None"},
				Body:    intLit(56, 0),
			},
		},
	}

	fn := &ast.FuncDecl{
		Name: "unwrap_or_zero",
		Body: &ast.Block{
			Stmts: []ast.Stmt{
				&ast.LetStmt{Pattern: &ast.BindPattern{Name: "o"}, Value: construct},
			},
			Tail: match,
		},
	}

	exprTypes := map[ast.NodeID]types.Type{
		construct.ID: optType,
		scrutinee.ID: optType,
	}

	gen := NewGenerator(reg, exprTypes)

	out, err := gen.CompileFunc(fn)
	if err != nil {
		t.Fatalf("CompileFunc: %v", err)
	}

	if len(out.Code) == 0 {
		t.Fatal("expected non-empty machine code")
	}
}

func Test_CompileFunc_ArrayIndex(t *testing.T) {
	reg := types.NewRegistry()

	arrType := &types.Array{Elem: types.I64, Length: 3}

	lit := &ast.ArrayLiteralExpr{
		ID:       60,
		Elements: []ast.Expr{intLit(61, 1), intLit(62, 2), intLit(63, 3)},
	}

	aIdent := &ast.Ident{ID: 64, Name: "a"}

	fn := &ast.FuncDecl{
		Name: "second",
		Body: &ast.Block{
			Stmts: []ast.Stmt{
				&ast.LetStmt{Pattern: &ast.BindPattern{Name: "a"}, Value: lit},
			},
			Tail: &ast.IndexExpr{ID: 65, Base: aIdent, Index: intLit(66, 1)},
		},
	}

	exprTypes := map[ast.NodeID]types.Type{
		lit.ID:    arrType,
		aIdent.ID: arrType,
	}

	gen := NewGenerator(reg, exprTypes)

	out, err := gen.CompileFunc(fn)
	if err != nil {
		t.Fatalf("CompileFunc: %v", err)
	}

	if len(out.Code) == 0 {
		t.Fatal("expected non-empty machine code")
	}
}

func Test_CompileFunc_TrySuccess(t *testing.T) {
	reg := types.NewRegistry()
	reg.Enums["Res"] = &types.EnumInfo{
		Variants: []types.VariantInfo{
			{Name: "Ok", Index: 0, Fields: []types.Type{types.I64}},
			{Name: "Err", Index: 1, Fields: []types.Type{types.I64}},
		},
	}

	resType := &types.Named{Name: "Res"}

	construct := &ast.MethodCallExpr{
		ID:       70,
		Receiver: &ast.Ident{ID: 71, Name: "Res"},
		Method:   "Ok",
		Args:     []ast.Expr{intLit(72, 7)},
	}

	rIdent := &ast.Ident{ID: 73, Name: "r"}

	tryExpr := &ast.TryExpr{ID: 74, Value: rIdent}

	fn := &ast.FuncDecl{
		Name: "unwrap_ok",
		Body: &ast.Block{
			Stmts: []ast.Stmt{
				&ast.LetStmt{Pattern: &ast.BindPattern{Name: "r"}, Value: construct},
			},
			Tail: tryExpr,
		},
	}

	exprTypes := map[ast.NodeID]types.Type{
		construct.ID: resType,
		rIdent.ID:    resType,
		tryExpr.ID:   types.I64,
	}

	gen := NewGenerator(reg, exprTypes)

	out, err := gen.CompileFunc(fn)
	if err != nil {
		t.Fatalf("CompileFunc: %v", err)
	}

	if len(out.Code) == 0 {
		t.Fatal("expected non-empty machine code")
	}
}

func Test_CompileFunc_IfElse(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: "choose",
		Params: []ast.Param{
			{Name: "cond", Type: &ast.NamedType{Name: "bool"}},
		},
		Body: &ast.Block{
			Tail: &ast.IfExpr{
				ID:   30,
				Cond: &ast.Ident{ID: 31, Name: "cond"},
				Then: &ast.Block{Tail: intLit(32, 1)},
				Else: intLit(33, 0),
			},
		},
	}

	gen := NewGenerator(types.NewRegistry(), map[ast.NodeID]types.Type{})

	if _, err := gen.CompileFunc(fn); err != nil {
		t.Fatalf("CompileFunc: %v", err)
	}
}
