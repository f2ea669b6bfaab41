package ast

// Type is a syntactic type reference as written by the programmer, before
// resolution by pkg/types.
type Type interface{ typeNode() }

// NamedType refers to a type by name, with optional generic arguments
// (e.g. `Vec<i32>`, `Option<T>`).
type NamedType struct {
	ID   NodeID
	Name string
	Args []Type
}

func (*NamedType) typeNode() {}

// RefType is `&T` or `&mut T`.
type RefType struct {
	ID     NodeID
	Mut    bool
	Target Type
}

func (*RefType) typeNode() {}

// ArrayType is `[T; N]`, a fixed-size array.
type ArrayType struct {
	ID     NodeID
	Elem   Type
	Length Expr // must be comptime-evaluable to a usize
}

func (*ArrayType) typeNode() {}

// SliceType is `[T]`, an unsized view over contiguous elements.
type SliceType struct {
	ID   NodeID
	Elem Type
}

func (*SliceType) typeNode() {}

// TupleType is `(T1, T2, ...)`.
type TupleType struct {
	ID       NodeID
	Elements []Type
}

func (*TupleType) typeNode() {}

// FuncType is `fn(T1, T2) -> R`, used for function-pointer/closure types.
type FuncType struct {
	ID      NodeID
	Params  []Type
	Return  Type
}

func (*FuncType) typeNode() {}

// DynTraitType is `dyn Trait`, a trait-object type.
type DynTraitType struct {
	ID    NodeID
	Trait string
}

func (*DynTraitType) typeNode() {}

// UnitType is the zero-sized `()` type.
type UnitType struct{ ID NodeID }

func (*UnitType) typeNode() {}
