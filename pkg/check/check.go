// Package check implements bidirectional type checking: inference of
// expression types bottom-up, checking against an expected type
// top-down, trait resolution, and coercion insertion.
package check

import (
	"fmt"

	"github.com/home-lang/home/pkg/ast"
	"github.com/home-lang/home/pkg/diag"
	"github.com/home-lang/home/pkg/types"
	"github.com/home-lang/home/pkg/util/source"
)

// Checker holds the mutable state of a single module's type-checking pass.
type Checker struct {
	reg   *types.Registry
	diags *diag.Collector
	file  *source.File
	spans map[ast.NodeID]source.Span
	// exprTypes records the resolved type of every expression node,
	// consumed by pkg/codegen during lowering.
	exprTypes map[ast.NodeID]types.Type
	scopes    []map[string]binding
}

type binding struct {
	typ types.Type
	mut bool
}

// NewChecker constructs a checker over a registry populated by a prior
// declaration-collection pass (see CollectDecls).
func NewChecker(reg *types.Registry, file *source.File, spans map[ast.NodeID]source.Span, diags *diag.Collector) *Checker {
	return &Checker{reg: reg, diags: diags, file: file, spans: spans, exprTypes: make(map[ast.NodeID]types.Type)}
}

// ExprTypes returns the per-node resolved type table built during Check.
func (c *Checker) ExprTypes() map[ast.NodeID]types.Type { return c.exprTypes }

func (c *Checker) pushScope() { c.scopes = append(c.scopes, make(map[string]binding)) }
func (c *Checker) popScope()  { c.scopes = c.scopes[:len(c.scopes)-1] }

func (c *Checker) declare(name string, t types.Type, mut bool) {
	c.scopes[len(c.scopes)-1][name] = binding{t, mut}
}

func (c *Checker) lookup(name string) (binding, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if b, ok := c.scopes[i][name]; ok {
			return b, true
		}
	}

	return binding{}, false
}

func (c *Checker) errorf(id ast.NodeID, code diag.Code, format string, args ...any) {
	span := c.spans[id]
	c.diags.Report(diag.Diagnostic{Severity: diag.SeverityError, Code: code, Message: fmt.Sprintf(format, args...), File: c.file, Span: span})
}

// CheckFile type-checks every item in a parsed file against the
// already-populated registry. Every top-level function is first declared
// in a file-wide scope, so calls resolve regardless of declaration order.
func (c *Checker) CheckFile(f *ast.File) {
	c.pushScope()
	defer c.popScope()

	for _, item := range f.Items {
		if fn, ok := item.(*ast.FuncDecl); ok {
			params := make([]types.Type, len(fn.Params))
			for i, p := range fn.Params {
				params[i] = c.resolveType(p.Type)
			}

			ret := c.resolveType(fn.ReturnType)
			if ret == nil {
				ret = types.Unit
			}

			c.declare(fn.Name, &types.Func{Params: params, Return: ret}, false)
		}
	}

	for _, item := range f.Items {
		c.checkItem(item)
	}
}

func (c *Checker) checkItem(item ast.Item) {
	switch it := item.(type) {
	case *ast.FuncDecl:
		c.checkFunc(it, nil)
	case *ast.ImplDecl:
		selfType := c.resolveType(it.Type)

		for i := range it.Methods {
			c.checkFunc(&it.Methods[i], selfType)
		}
	case *ast.ConstDecl:
		want := c.resolveType(it.Type)
		got := c.checkExpr(it.Value, want)

		if want != nil && !assignable(want, got) {
			c.errorf(it.ID, "H0201", "const %q: expected type %s, found %s", it.Name, want, got)
		}
	case *ast.TraitDecl:
		for i := range it.Methods {
			if it.Methods[i].Body != nil {
				c.checkFunc(&it.Methods[i], &types.Named{Name: "Self"})
			}
		}
	}
}

func (c *Checker) checkFunc(fn *ast.FuncDecl, selfType types.Type) {
	if fn.Body == nil {
		return
	}

	c.pushScope()
	defer c.popScope()

	if fn.Receiver != nil && selfType != nil {
		c.declare("self", selfType, false)
	}

	for _, p := range fn.Params {
		c.declare(p.Name, c.resolveType(p.Type), p.Mut)
	}

	ret := c.resolveType(fn.ReturnType)
	if ret == nil {
		ret = types.Unit
	}

	got := c.checkBlock(fn.Body, ret)

	// A body whose last statement is `return` never falls through to an
	// implicit tail value.
	if n := len(fn.Body.Stmts); fn.Body.Tail == nil && n > 0 {
		if _, ok := fn.Body.Stmts[n-1].(*ast.ReturnStmt); ok {
			got = ret
		}
	}

	if !assignable(ret, got) {
		c.errorf(fn.ID, "H0202", "function %q: expected return type %s, found %s", fn.Name, ret, got)
	}
}

// checkBlock checks every statement in a block and returns the type of its
// tail expression (Unit if there is none).
func (c *Checker) checkBlock(b *ast.Block, expected types.Type) types.Type {
	c.pushScope()
	defer c.popScope()

	for _, s := range b.Stmts {
		c.checkStmt(s)
	}

	if b.Tail != nil {
		return c.checkExpr(b.Tail, expected)
	}

	return types.Unit
}

func (c *Checker) checkStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.LetStmt:
		var want types.Type
		if st.Type != nil {
			want = c.resolveType(st.Type)
		}

		var got types.Type
		if st.Value != nil {
			got = c.checkExpr(st.Value, want)
		}

		declType := want
		if declType == nil {
			declType = got
		}

		if declType == nil {
			declType = types.Unit
		}

		c.bindPattern(st.Pattern, declType, st.Mut)
	case *ast.ExprStmt:
		c.checkExpr(st.Expr, nil)
	case *ast.ReturnStmt:
		if st.Value != nil {
			c.checkExpr(st.Value, nil)
		}
	case *ast.BreakStmt:
		if st.Value != nil {
			c.checkExpr(st.Value, nil)
		}
	case *ast.DeferStmt:
		c.checkExpr(st.Expr, nil)
	case *ast.ItemStmt:
		c.checkItem(st.Item)
	}
}

// bindPattern introduces every name bound by a pattern into the current
// scope at the given type.
func (c *Checker) bindPattern(p ast.Pattern, t types.Type, mut bool) {
	switch pat := p.(type) {
	case *ast.BindPattern:
		c.declare(pat.Name, t, mut || pat.Mut)

		if pat.SubPattern != nil {
			c.bindPattern(pat.SubPattern, t, mut)
		}
	case *ast.TuplePattern:
		tup, ok := t.(*types.Tuple)

		for i, e := range pat.Elements {
			var et types.Type
			if ok && i < len(tup.Elements) {
				et = tup.Elements[i]
			}

			c.bindPattern(e, et, mut)
		}
	case *ast.StructPattern:
		info := c.reg.Structs[pat.Name]

		for _, f := range pat.Fields {
			var ft types.Type

			if info != nil {
				for _, sf := range info.Fields {
					if sf.Name == f.Name {
						ft = sf.Type
					}
				}
			}

			c.bindPattern(f.Pattern, ft, mut)
		}
	case *ast.VariantPattern:
		enum := c.reg.Enums[pat.Enum]

		for i, e := range pat.Elements {
			var et types.Type

			if enum != nil {
				for _, v := range enum.Variants {
					if v.Name == pat.Variant && i < len(v.Fields) {
						et = v.Fields[i]
					}
				}
			}

			c.bindPattern(e, et, mut)
		}
	case *ast.RefPattern:
		target := t
		if r, ok := t.(*types.Ref); ok {
			target = r.Target
		}

		c.bindPattern(pat.Pattern, target, mut)
	case *ast.OrPattern:
		for _, alt := range pat.Alternatives {
			c.bindPattern(alt, t, mut)
		}
	}
}

// assignable reports whether a value of type got can be used where want is
// expected, allowing a small set of implicit coercions (integer widening,
// array-to-slice decay).
func assignable(want, got types.Type) bool {
	if want == nil || got == nil {
		return true
	}

	if types.Equal(want, got) {
		return true
	}

	wp, wok := want.(*types.Primitive)
	gp, gok := got.(*types.Primitive)

	if wok && gok && wp.IsInteger() && gp.IsInteger() && wp.IsSigned() == gp.IsSigned() {
		return wp.Size() >= gp.Size()
	}

	if ws, ok := want.(*types.Slice); ok {
		if ga, ok := got.(*types.Array); ok {
			return types.Equal(ws.Elem, ga.Elem)
		}
	}

	return false
}
