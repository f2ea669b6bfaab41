package check

import (
	"github.com/home-lang/home/pkg/ast"
	"github.com/home-lang/home/pkg/types"
)

// resolveType converts a syntactic ast.Type into a resolved types.Type,
// consulting the registry for user-defined names.
func (c *Checker) resolveType(t ast.Type) types.Type {
	if t == nil {
		return nil
	}

	switch ty := t.(type) {
	case *ast.NamedType:
		if p, ok := types.LookupPrimitive(ty.Name); ok {
			return p
		}

		if len(ty.Args) == 0 {
			return &types.Named{Name: ty.Name}
		}

		args := make([]types.Type, len(ty.Args))
		for i, a := range ty.Args {
			args[i] = c.resolveType(a)
		}

		return &types.Named{Name: ty.Name, Args: args}
	case *ast.RefType:
		return &types.Ref{Mut: ty.Mut, Target: c.resolveType(ty.Target)}
	case *ast.ArrayType:
		length := evalConstLength(ty.Length)
		return &types.Array{Elem: c.resolveType(ty.Elem), Length: length}
	case *ast.SliceType:
		return &types.Slice{Elem: c.resolveType(ty.Elem)}
	case *ast.TupleType:
		elems := make([]types.Type, len(ty.Elements))
		for i, e := range ty.Elements {
			elems[i] = c.resolveType(e)
		}

		return &types.Tuple{Elements: elems}
	case *ast.FuncType:
		params := make([]types.Type, len(ty.Params))
		for i, p := range ty.Params {
			params[i] = c.resolveType(p)
		}

		ret := c.resolveType(ty.Return)
		if ret == nil {
			ret = types.Unit
		}

		return &types.Func{Params: params, Return: ret}
	case *ast.DynTraitType:
		return &types.DynTrait{Trait: ty.Trait}
	case *ast.UnitType:
		return types.Unit
	default:
		return nil
	}
}

// evalConstLength evaluates the simplest class of compile-time array
// length expressions (integer literals and +/-/* of literals) directly,
// without invoking the full comptime evaluator, since array lengths are
// needed during declaration collection before comptime context exists.
// Any other length expression evaluates to 0; no later pass revisits it.
func evalConstLength(e ast.Expr) int {
	switch v := e.(type) {
	case *ast.Literal:
		if v.Kind == ast.LitInt {
			if n, ok := v.Raw.(int64); ok {
				return int(n)
			}
		}
	case *ast.BinaryExpr:
		l, r := evalConstLength(v.LHS), evalConstLength(v.RHS)

		switch v.Op {
		case ast.OpAdd:
			return l + r
		case ast.OpSub:
			return l - r
		case ast.OpMul:
			return l * r
		}
	}

	return 0
}

// CollectDecls performs a first pass over a file's items, populating the
// registry with every struct, enum, trait and impl so that forward
// references to types resolve correctly during the main checking pass.
// Functions are not registered here; Checker.CheckFile declares them, so
// a function may call another declared later in the file.
func CollectDecls(reg *types.Registry, f *ast.File, resolver func(ast.Type) types.Type) {
	for _, item := range f.Items {
		switch it := item.(type) {
		case *ast.StructDecl:
			fields := make([]types.FieldInfo, len(it.Fields))
			for i, fd := range it.Fields {
				fields[i] = types.FieldInfo{Name: fd.Name, Type: resolver(fd.Type)}
			}

			reg.Structs[it.Name] = &types.StructInfo{Decl: it, Fields: fields}
		case *ast.EnumDecl:
			variants := make([]types.VariantInfo, len(it.Variants))
			for i, vd := range it.Variants {
				fieldTypes := make([]types.Type, len(vd.Fields))
				for j, ft := range vd.Fields {
					fieldTypes[j] = resolver(ft)
				}

				variants[i] = types.VariantInfo{Name: vd.Name, Index: i, Fields: fieldTypes}
			}

			reg.Enums[it.Name] = &types.EnumInfo{Decl: it, Variants: variants}
		case *ast.TraitDecl:
			methods := make(map[string]*ast.FuncDecl, len(it.Methods))

			for i := range it.Methods {
				methods[it.Methods[i].Name] = &it.Methods[i]
			}

			reg.Traits[it.Name] = &types.TraitInfo{Decl: it, Methods: methods}
		case *ast.ImplDecl:
			named, ok := it.Type.(*ast.NamedType)
			typeName := ""

			if ok {
				typeName = named.Name
			}

			methods := make(map[string]*ast.FuncDecl, len(it.Methods))

			for i := range it.Methods {
				methods[it.Methods[i].Name] = &it.Methods[i]
			}

			blanket := len(it.Generics) > 0 && sameTypeParam(it.Type, it.Generics)

			reg.Impls[typeName] = append(reg.Impls[typeName], &types.ImplInfo{
				Decl: it, Methods: methods, Blanket: blanket,
			})
		}
	}
}

// sameTypeParam reports whether the impl's Self type is itself one of the
// impl's own generic parameters, i.e. a blanket impl (`impl<T: Trait> X
// for T`) rather than a concrete impl for a specific named type.
func sameTypeParam(t ast.Type, generics []ast.GenericParam) bool {
	named, ok := t.(*ast.NamedType)
	if !ok {
		return false
	}

	for _, g := range generics {
		if g.Name == named.Name {
			return true
		}
	}

	return false
}
