// Package types implements the Home type system: interned types, trait
// and impl tables, generic environments, and monomorphization records.
package types

import "fmt"

// Type is an interned, resolved type, as opposed to ast.Type which is the
// syntactic form before resolution.
type Type interface {
	fmt.Stringer
	typeKind()
}

// Primitive identifies one of the built-in scalar types.
type Primitive struct{ Name string }

func (*Primitive) typeKind()      {}
func (p *Primitive) String() string { return p.Name }

// Built-in primitive types, interned once and reused.
var (
	I8    = &Primitive{"i8"}
	I16   = &Primitive{"i16"}
	I32   = &Primitive{"i32"}
	I64   = &Primitive{"i64"}
	U8    = &Primitive{"u8"}
	U16   = &Primitive{"u16"}
	U32   = &Primitive{"u32"}
	U64   = &Primitive{"u64"}
	USize = &Primitive{"usize"}
	ISize = &Primitive{"isize"}
	F32   = &Primitive{"f32"}
	F64   = &Primitive{"f64"}
	Bool  = &Primitive{"bool"}
	Char  = &Primitive{"char"}
	Str   = &Primitive{"str"}
	Unit  = &Primitive{"()"}
)

var primitivesByName = map[string]*Primitive{
	"i8": I8, "i16": I16, "i32": I32, "i64": I64,
	"u8": U8, "u16": U16, "u32": U32, "u64": U64,
	"usize": USize, "isize": ISize, "f32": F32, "f64": F64,
	"bool": Bool, "char": Char, "str": Str,
}

// LookupPrimitive returns the interned Primitive for a built-in type name,
// if one exists.
func LookupPrimitive(name string) (*Primitive, bool) {
	t, ok := primitivesByName[name]
	return t, ok
}

// IsInteger reports whether a primitive is one of the integer types.
func (p *Primitive) IsInteger() bool {
	switch p {
	case I8, I16, I32, I64, U8, U16, U32, U64, USize, ISize:
		return true
	default:
		return false
	}
}

// IsSigned reports whether an integer primitive is signed.
func (p *Primitive) IsSigned() bool {
	switch p {
	case I8, I16, I32, I64, ISize:
		return true
	default:
		return false
	}
}

// IsFloat reports whether a primitive is a floating-point type.
func (p *Primitive) IsFloat() bool { return p == F32 || p == F64 }

// Size returns the in-memory size, in bytes, of a primitive type.
func (p *Primitive) Size() int {
	switch p {
	case I8, U8, Bool:
		return 1
	case I16, U16:
		return 2
	case I32, U32, F32, Char:
		return 4
	case I64, U64, USize, ISize, F64:
		return 8
	default:
		return 0
	}
}

// Ref is a `&T` or `&mut T` reference type.
type Ref struct {
	Mut    bool
	Target Type
}

func (*Ref) typeKind() {}
func (r *Ref) String() string {
	if r.Mut {
		return "&mut " + r.Target.String()
	}

	return "&" + r.Target.String()
}

// Array is a fixed-size `[T; N]` array type.
type Array struct {
	Elem   Type
	Length int
}

func (*Array) typeKind() {}
func (a *Array) String() string { return fmt.Sprintf("[%s; %d]", a.Elem, a.Length) }

// Slice is an unsized `[T]` view type.
type Slice struct{ Elem Type }

func (*Slice) typeKind()      {}
func (s *Slice) String() string { return "[" + s.Elem.String() + "]" }

// Tuple is a fixed heterogeneous tuple type.
type Tuple struct{ Elements []Type }

func (*Tuple) typeKind() {}
func (t *Tuple) String() string {
	s := "("

	for i, e := range t.Elements {
		if i > 0 {
			s += ", "
		}

		s += e.String()
	}

	return s + ")"
}

// Func is a function-pointer/closure type.
type Func struct {
	Params []Type
	Return Type
}

func (*Func) typeKind() {}
func (f *Func) String() string {
	s := "fn("

	for i, p := range f.Params {
		if i > 0 {
			s += ", "
		}

		s += p.String()
	}

	s += ")"

	if f.Return != nil && f.Return != Type(Unit) {
		s += " -> " + f.Return.String()
	}

	return s
}

// Named references a user-defined struct, enum or generic instantiation by
// name, with resolved type arguments. Args is empty for non-generic types.
type Named struct {
	Name string
	Args []Type
}

func (*Named) typeKind() {}
func (n *Named) String() string {
	if len(n.Args) == 0 {
		return n.Name
	}

	s := n.Name + "<"

	for i, a := range n.Args {
		if i > 0 {
			s += ", "
		}

		s += a.String()
	}

	return s + ">"
}

// DynTrait is a `dyn Trait` trait-object type.
type DynTrait struct{ Trait string }

func (*DynTrait) typeKind()      {}
func (d *DynTrait) String() string { return "dyn " + d.Trait }

// TypeParam is an unresolved generic type parameter occurring within a
// generic function or impl body, prior to monomorphization.
type TypeParam struct{ Name string }

func (*TypeParam) typeKind()      {}
func (t *TypeParam) String() string { return t.Name }

// Equal reports structural equality between two resolved types.
func Equal(a, b Type) bool {
	if a == b {
		return true
	}

	switch x := a.(type) {
	case *Ref:
		y, ok := b.(*Ref)
		return ok && x.Mut == y.Mut && Equal(x.Target, y.Target)
	case *Array:
		y, ok := b.(*Array)
		return ok && x.Length == y.Length && Equal(x.Elem, y.Elem)
	case *Slice:
		y, ok := b.(*Slice)
		return ok && Equal(x.Elem, y.Elem)
	case *Tuple:
		y, ok := b.(*Tuple)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}

		for i := range x.Elements {
			if !Equal(x.Elements[i], y.Elements[i]) {
				return false
			}
		}

		return true
	case *Func:
		y, ok := b.(*Func)
		if !ok || len(x.Params) != len(y.Params) {
			return false
		}

		for i := range x.Params {
			if !Equal(x.Params[i], y.Params[i]) {
				return false
			}
		}

		return Equal(x.Return, y.Return)
	case *Named:
		y, ok := b.(*Named)
		if !ok || x.Name != y.Name || len(x.Args) != len(y.Args) {
			return false
		}

		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}

		return true
	case *DynTrait:
		y, ok := b.(*DynTrait)
		return ok && x.Trait == y.Trait
	case *TypeParam:
		y, ok := b.(*TypeParam)
		return ok && x.Name == y.Name
	default:
		return false
	}
}
