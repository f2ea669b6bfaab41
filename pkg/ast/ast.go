// Package ast defines the abstract syntax tree produced by pkg/parser and
// consumed by pkg/check, pkg/borrow, pkg/comptime and pkg/codegen.
package ast

// NodeID uniquely identifies an AST node within a module, used as the key
// into source.Map[NodeID] for span lookups and into the type-checker's
// per-node type table.
type NodeID uint64

// File is the root of a single parsed source file: a sequence of top-level
// items plus the module's import list.
type File struct {
	ID      NodeID
	Imports []Import
	Items   []Item
}

// Import is a single `import` declaration.
type Import struct {
	ID    NodeID
	Path  []string
	Alias string
}

// Item is any top-level declaration: function, struct, enum, trait, impl,
// const or type alias.
type Item interface{ itemNode() }

// Visibility records whether a declaration is `pub`, crate-visible, or
// private.
type Visibility int

// Visibility levels, narrowest first.
const (
	VisPrivate Visibility = iota
	VisCrate
	VisPublic
)

// FuncDecl declares a function or method.
type FuncDecl struct {
	ID         NodeID
	Name       string
	Vis        Visibility
	Generics   []GenericParam
	Params     []Param
	Receiver   *Param // non-nil for trait/impl methods taking self
	ReturnType Type   // nil means unit
	IsAsync    bool
	Body       *Block // nil for trait method signatures without a default
	Doc        string
}

func (*FuncDecl) itemNode() {}

// Param is a single function parameter.
type Param struct {
	ID       NodeID
	Name     string
	Type     Type
	Mut      bool
}

// GenericParam is a single generic type parameter with its trait bounds
//.
type GenericParam struct {
	Name   string
	Bounds []string
}

// StructDecl declares a struct type and its fields.
type StructDecl struct {
	ID       NodeID
	Name     string
	Vis      Visibility
	Generics []GenericParam
	Fields   []FieldDecl
	Doc      string
}

func (*StructDecl) itemNode() {}

// FieldDecl is a single struct field.
type FieldDecl struct {
	ID   NodeID
	Name string
	Type Type
	Vis  Visibility
}

// EnumDecl declares a tagged-union enum type.
type EnumDecl struct {
	ID       NodeID
	Name     string
	Vis      Visibility
	Generics []GenericParam
	Variants []VariantDecl
	Doc      string
}

func (*EnumDecl) itemNode() {}

// VariantDecl is a single enum variant, which may carry positional
// (tuple-like) payload fields.
type VariantDecl struct {
	ID     NodeID
	Name   string
	Fields []Type
}

// TraitDecl declares a trait: a set of method signatures, some of which may
// carry default implementations.
type TraitDecl struct {
	ID       NodeID
	Name     string
	Vis      Visibility
	Generics []GenericParam
	Methods  []FuncDecl
	Doc      string
}

func (*TraitDecl) itemNode() {}

// ImplDecl implements a trait (or an inherent impl, when Trait == "") for a
// concrete or generic type.
type ImplDecl struct {
	ID       NodeID
	Generics []GenericParam
	Trait    string // empty for inherent impls
	Type     Type
	Methods  []FuncDecl
}

func (*ImplDecl) itemNode() {}

// ConstDecl declares a module-level constant, whose initialiser must be
// evaluable at compile time.
type ConstDecl struct {
	ID    NodeID
	Name  string
	Vis   Visibility
	Type  Type
	Value Expr
}

func (*ConstDecl) itemNode() {}

// TypeAliasDecl declares `type Name = Type`.
type TypeAliasDecl struct {
	ID       NodeID
	Name     string
	Vis      Visibility
	Generics []GenericParam
	Target   Type
}

func (*TypeAliasDecl) itemNode() {}
