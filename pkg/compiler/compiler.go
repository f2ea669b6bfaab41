// Package compiler wires the pipeline together for one source file at a
// time: lexing, parsing, type checking, borrow checking, optimization
// passes, native code generation, and object-file emission. Compile-time
// evaluation is not a stage of that pipeline; RunConst hands a program to
// pkg/comptime directly.
package compiler

import (
	"fmt"

	"github.com/home-lang/home/pkg/ast"
	"github.com/home-lang/home/pkg/borrow"
	"github.com/home-lang/home/pkg/cache"
	"github.com/home-lang/home/pkg/check"
	"github.com/home-lang/home/pkg/codegen"
	"github.com/home-lang/home/pkg/comptime"
	"github.com/home-lang/home/pkg/diag"
	"github.com/home-lang/home/pkg/objfile"
	"github.com/home-lang/home/pkg/parser"
	"github.com/home-lang/home/pkg/pass"
	"github.com/home-lang/home/pkg/types"
	"github.com/home-lang/home/pkg/util/source"
)

// CompilationConfig encapsulates the options that affect compilation: a
// small, flat struct of user-facing toggles.
type CompilationConfig struct {
	// OptLevel selects the optimisation pipeline pkg/pass runs.
	OptLevel pass.Level
	// Debug is carried in the configuration; no stage of CompileFile
	// reads it.
	Debug bool
	// Native enables x86-64 code generation; when false, only
	// compile-time-evaluable programs can be run (via pkg/comptime).
	Native bool
	// CacheDir names an artifact cache directory. The Compiler does not
	// read it; the cache is enabled only through NewCompilerWithCache.
	CacheDir string
	// CompilerVersion is stamped into cache keys.
	CompilerVersion string
}

// Result is the output of compiling one module: the merged diagnostics
// plus, on success, the compiled object code.
type Result struct {
	Diags  *diag.Collector
	Object []byte
}

// Compiler packages the resolved registry and cache that persist across
// compiling multiple files of the same program, rather than being
// single-shot.
type Compiler struct {
	cfg CompilationConfig
	reg *types.Registry
	store *cache.Store
}

// NewCompiler constructs a Compiler for the given configuration.
func NewCompiler(cfg CompilationConfig) *Compiler {
	return &Compiler{cfg: cfg, reg: types.NewRegistry()}
}

// NewCompilerWithCache constructs a Compiler whose artifact lookups are
// backed by store.
func NewCompilerWithCache(cfg CompilationConfig, store *cache.Store) *Compiler {
	c := NewCompiler(cfg)
	c.store = store

	return c
}

// CompileFile runs the full pipeline over a single source file: lex,
// parse, resolve declarations, type-check, borrow-check, run optimization
// passes, and (if cfg.Native) emit native object code for every function.
// A cache hit, when a Store is configured, short-circuits straight to the
// cached object bytes.
func (c *Compiler) CompileFile(file *source.File) (*Result, error) {
	src := []byte(string(file.Contents()))

	if c.store != nil {
		key := cache.Key{Source: src, Version: c.cfg.CompilerVersion, Level: c.cfg.OptLevel}
		if entry, ok := c.store.Get(key.Hash()); ok {
			return &Result{Diags: diag.NewCollector(), Object: entry.Data}, nil
		}
	}

	astFile, spans, diags := parser.Parse(file)
	if diags.HasErrors() {
		return &Result{Diags: diags}, nil
	}

	resolver := func(t ast.Type) types.Type { return resolveTypeStub(t) }
	check.CollectDecls(c.reg, astFile, resolver)

	checker := check.NewChecker(c.reg, file, spans, diags)
	checker.CheckFile(astFile)

	if diags.HasErrors() {
		return &Result{Diags: diags}, nil
	}

	exprTypes := checker.ExprTypes()

	borrowChecker := borrow.NewChecker(file, spans, diags, exprTypes)

	for _, item := range astFile.Items {
		if fn, ok := item.(*ast.FuncDecl); ok && fn.Body != nil {
			borrowChecker.CheckFunc(fn)
		}
	}

	if diags.HasErrors() {
		return &Result{Diags: diags}, nil
	}

	mgr := pass.NewManager(c.cfg.OptLevel)

	for _, item := range astFile.Items {
		if fn, ok := item.(*ast.FuncDecl); ok && fn.Body != nil {
			fn.Body = mgr.RunFunc(fn.Body)
		}
	}

	if !c.cfg.Native {
		return &Result{Diags: diags}, nil
	}

	gen := codegen.NewGenerator(c.reg, exprTypes)

	mod := &objfile.Module{}

	for _, item := range astFile.Items {
		fn, ok := item.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			continue
		}

		compiled, err := gen.CompileFunc(fn)
		if err != nil {
			return nil, fmt.Errorf("compiler: compiling %q: %w", fn.Name, err)
		}

		mod.Functions = append(mod.Functions, compiled)
	}

	object, err := objfile.WriteELF64(mod)
	if err != nil {
		return nil, fmt.Errorf("compiler: writing object file: %w", err)
	}

	if c.store != nil {
		key := cache.Key{Source: src, Version: c.cfg.CompilerVersion, Level: c.cfg.OptLevel}
		_ = c.store.Put(key.Hash(), object)
	}

	return &Result{Diags: diags, Object: object}, nil
}

// RunConst evaluates a module's compile-time-evaluable entry point
// directly via pkg/comptime, bypassing native codegen entirely: the fast
// path for trivial programs, reusing the tree-walking evaluator rather
// than always lowering to machine code.
func (c *Compiler) RunConst(prog *comptime.Program, fnName string, args []comptime.Value) (comptime.Value, error) {
	fn, ok := prog.Funcs[fnName]
	if !ok {
		return nil, fmt.Errorf("compiler: no function %q in program", fnName)
	}

	ev := comptime.NewEvaluator(prog)

	return ev.EvalFunc(fn, args)
}

func resolveTypeStub(t ast.Type) types.Type {
	switch v := t.(type) {
	case *ast.NamedType:
		if prim, ok := types.LookupPrimitive(v.Name); ok {
			return prim
		}

		return &types.Named{Name: v.Name}
	default:
		return types.I64
	}
}
