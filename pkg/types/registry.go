package types

import (
	"fmt"
	"strings"

	"github.com/home-lang/home/pkg/ast"
)

// StructInfo records a resolved struct declaration's shape.
type StructInfo struct {
	Decl   *ast.StructDecl
	Fields []FieldInfo
}

// FieldInfo is one resolved struct field.
type FieldInfo struct {
	Name   string
	Type   Type
	Offset int // byte offset within the struct, computed by pkg/codegen layout
}

// EnumInfo records a resolved enum declaration's shape.
type EnumInfo struct {
	Decl     *ast.EnumDecl
	Variants []VariantInfo
}

// VariantInfo is one resolved enum variant.
type VariantInfo struct {
	Name   string
	Index  int
	Fields []Type
}

// TrySuccessVariant identifies the success-carrying arm of a two-variant
// result/option-shaped enum, by the conventional `Ok`/`Some` naming the `?`
// operator recognises, returning its variant index and payload type.
func (e *EnumInfo) TrySuccessVariant() (idx int, payload Type, ok bool) {
	for _, v := range e.Variants {
		if (v.Name == "Ok" || v.Name == "Some") && len(v.Fields) == 1 {
			return v.Index, v.Fields[0], true
		}
	}

	return 0, nil, false
}

// TraitInfo records a trait's method signatures, keyed for resolution.
type TraitInfo struct {
	Decl    *ast.TraitDecl
	Methods map[string]*ast.FuncDecl
}

// ImplKey identifies a specific impl block: which trait (empty for
// inherent impls) is implemented for which concrete type name.
type ImplKey struct {
	Trait string
	Type  string
}

// ImplInfo records a single resolved impl block.
type ImplInfo struct {
	Decl    *ast.ImplDecl
	Methods map[string]*ast.FuncDecl
	// Blanket is true for a generic impl that applies to any type
	// satisfying its bounds (`impl<T: Trait> Foo for T`), as opposed to a
	// concrete impl for one named type.
	Blanket bool
}

// Registry is the resolved-program-wide symbol table: every struct, enum,
// trait and impl, plus the monomorphization cache.
type Registry struct {
	Structs map[string]*StructInfo
	Enums   map[string]*EnumInfo
	Traits  map[string]*TraitInfo
	// Impls is keyed by concrete type name; each list holds that type's
	// inherent and trait impls, supporting multiple impls per type.
	Impls map[string][]*ImplInfo
	mono  *MonoTable
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		Structs: make(map[string]*StructInfo),
		Enums:   make(map[string]*EnumInfo),
		Traits:  make(map[string]*TraitInfo),
		Impls:   make(map[string][]*ImplInfo),
		mono:    NewMonoTable(),
	}
}

// Mono returns the registry's monomorphization table.
func (r *Registry) Mono() *MonoTable { return r.mono }

// ResolveMethod performs trait resolution: a concrete (non-blanket) impl
// wins over a blanket impl, which in turn wins over a trait's own default
// method body. typeName is the receiver's concrete type name (e.g.
// "Point"); method is the method being called.
func (r *Registry) ResolveMethod(typeName, method string) (*ast.FuncDecl, error) {
	var blanket *ast.FuncDecl

	for _, impl := range r.Impls[typeName] {
		if fn, ok := impl.Methods[method]; ok {
			if !impl.Blanket {
				return fn, nil
			}

			if blanket == nil {
				blanket = fn
			}
		}
	}

	if blanket != nil {
		return blanket, nil
	}

	// Fall back to a default method defined directly on a trait that some
	// impl for this type names (even without overriding the method).
	for _, impl := range r.Impls[typeName] {
		if impl.Decl.Trait == "" {
			continue
		}

		trait, ok := r.Traits[impl.Decl.Trait]
		if !ok {
			continue
		}

		if fn, ok := trait.Methods[method]; ok && fn.Body != nil {
			return fn, nil
		}
	}

	return nil, fmt.Errorf("no method %q found for type %q", method, typeName)
}

// MonoKey identifies a single monomorphized instantiation of a generic
// function or impl: the generic definition plus an ordered list of
// concrete type arguments.
type MonoKey struct {
	DefID string
	Args  string // canonical joined String() of the ordered type args
}

// NewMonoKey builds a MonoKey from a definition id and ordered type args.
func NewMonoKey(defID string, args []Type) MonoKey {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}

	return MonoKey{defID, strings.Join(parts, ",")}
}

// MonoTable caches monomorphized instantiations by key, and detects
// runaway recursive instantiation via a depth limit (e.g. generic types
// that recurse into themselves with ever-larger arguments).
type MonoTable struct {
	entries map[MonoKey]string // mangled symbol name
	depth   map[string]int     // DefID -> current instantiation depth
}

// MaxMonoDepth bounds the instantiation recursion depth before the
// compiler reports a "generic recursion too deep" diagnostic, rather than
// looping forever on a pathological generic definition.
const MaxMonoDepth = 64

// NewMonoTable constructs an empty monomorphization table.
func NewMonoTable() *MonoTable {
	return &MonoTable{entries: make(map[MonoKey]string), depth: make(map[string]int)}
}

// Resolve looks up (or assigns) the mangled symbol name for an
// instantiation, returning an error if the recursion depth limit for its
// definition has been exceeded.
func (m *MonoTable) Resolve(key MonoKey, mangle func() string) (string, error) {
	if name, ok := m.entries[key]; ok {
		return name, nil
	}

	m.depth[key.DefID]++
	if m.depth[key.DefID] > MaxMonoDepth {
		return "", fmt.Errorf("generic instantiation of %q exceeded depth limit %d", key.DefID, MaxMonoDepth)
	}

	name := mangle()
	m.entries[key] = name

	return name, nil
}

// Instantiations returns every mangled symbol currently recorded, for the
// codegen pass to emit one specialisation per entry.
func (m *MonoTable) Instantiations() map[MonoKey]string {
	return m.entries
}
