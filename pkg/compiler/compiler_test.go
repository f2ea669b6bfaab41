package compiler

import (
	"testing"

	"github.com/home-lang/home/pkg/cache"
	"github.com/home-lang/home/pkg/pass"
	"github.com/home-lang/home/pkg/util/source"
)

func Test_CompileFile_ArithmeticNative(t *testing.T) {
	file := source.NewSourceFile("main.home", []byte(
		`fn main() -> i32 { let x: i32 = 10; let y: i32 = 32; return x + y; }`))

	c := NewCompiler(CompilationConfig{OptLevel: pass.O0, Native: true, CompilerVersion: "test"})

	result, err := c.CompileFile(file)
	if err != nil {
		t.Fatalf("CompileFile: %v", err)
	}

	if result.Diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", result.Diags.Items())
	}

	if len(result.Object) == 0 {
		t.Fatal("expected non-empty object code")
	}
}

func Test_CompileFile_NonNative_SkipsCodegen(t *testing.T) {
	file := source.NewSourceFile("main.home", []byte(
		`fn main() -> i32 { return 1; }`))

	c := NewCompiler(CompilationConfig{OptLevel: pass.O0})

	result, err := c.CompileFile(file)
	if err != nil {
		t.Fatalf("CompileFile: %v", err)
	}

	if result.Diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", result.Diags.Items())
	}

	if len(result.Object) != 0 {
		t.Fatal("expected no object code when Native is disabled")
	}
}

func Test_CompileFile_BorrowViolationReported(t *testing.T) {
	file := source.NewSourceFile("main.home", []byte(
		`fn main() { let mut x = 1; let r = &mut x; let s = &mut x; }`))

	c := NewCompiler(CompilationConfig{OptLevel: pass.O0})

	result, err := c.CompileFile(file)
	if err != nil {
		t.Fatalf("CompileFile: %v", err)
	}

	if !result.Diags.HasErrors() {
		t.Fatal("expected a conflicting-borrow diagnostic")
	}
}

func Test_CompileFile_CacheHitSkipsRecompilation(t *testing.T) {
	dir := t.TempDir()

	store, err := cache.NewStore(dir, 1<<20)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	file := source.NewSourceFile("main.home", []byte(
		`fn main() -> i32 { return 7; }`))

	c := NewCompilerWithCache(CompilationConfig{OptLevel: pass.O0, Native: true, CompilerVersion: "v1"}, store)

	first, err := c.CompileFile(file)
	if err != nil {
		t.Fatalf("first CompileFile: %v", err)
	}

	if len(first.Object) == 0 {
		t.Fatal("expected object code on first compile")
	}

	second, err := c.CompileFile(file)
	if err != nil {
		t.Fatalf("second CompileFile: %v", err)
	}

	if string(second.Object) != string(first.Object) {
		t.Fatal("expected cache hit to return identical object bytes")
	}
}

func Test_CompileFile_SyntaxErrorStopsPipeline(t *testing.T) {
	file := source.NewSourceFile("main.home", []byte(`fn main( -> i32 {`))

	c := NewCompiler(CompilationConfig{OptLevel: pass.O0})

	result, err := c.CompileFile(file)
	if err != nil {
		t.Fatalf("CompileFile: %v", err)
	}

	if !result.Diags.HasErrors() {
		t.Fatal("expected a parse-error diagnostic for malformed input")
	}

	if len(result.Object) != 0 {
		t.Fatal("expected no object code when parsing fails")
	}
}
