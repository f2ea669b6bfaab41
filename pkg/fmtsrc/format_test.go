package fmtsrc

import (
	"strings"
	"testing"

	"github.com/home-lang/home/pkg/parser"
	"github.com/home-lang/home/pkg/util/source"
)

func testSourceFile(t *testing.T, src string) *source.File {
	t.Helper()

	file := source.NewSourceFile("test.home", []byte(src))

	return file
}

func Test_File_ArithmeticRoundTrips(t *testing.T) {
	src := "fn main() -> i32 { let x: i32 = 10; let y: i32 = 32; return x + y; }"
	file := testSourceFile(t, src)

	astFile, _, diags := parser.Parse(file)
	if diags.HasErrors() {
		t.Fatalf("unexpected parse errors: %+v", diags.Items())
	}

	out := File(astFile)

	if !strings.Contains(out, "fn main() -> i32 {") {
		t.Fatalf("expected formatted function signature, got:\n%s", out)
	}

	if !strings.Contains(out, "return x + y;") {
		t.Fatalf("expected formatted return statement, got:\n%s", out)
	}

	// Formatting must be idempotent: re-parsing and re-printing the
	// output produces the same text.
	reparsed, _, diags2 := parser.Parse(source.NewSourceFile("test.home", []byte(out)))
	if diags2.HasErrors() {
		t.Fatalf("unexpected re-parse errors: %+v", diags2.Items())
	}

	if second := File(reparsed); second != out {
		t.Fatalf("formatting not idempotent:\nfirst:\n%s\nsecond:\n%s", out, second)
	}
}

func Test_File_StructDecl(t *testing.T) {
	src := "struct Point { x: i32, y: i32 }"
	file := testSourceFile(t, src)

	astFile, _, diags := parser.Parse(file)
	if diags.HasErrors() {
		t.Fatalf("unexpected parse errors: %+v", diags.Items())
	}

	out := File(astFile)

	if !strings.Contains(out, "struct Point {") {
		t.Fatalf("expected formatted struct decl, got:\n%s", out)
	}

	if !strings.Contains(out, "x: i32,") {
		t.Fatalf("expected formatted field, got:\n%s", out)
	}
}
