// Package codegen lowers a type-checked AST to native x86-64 machine
// code under the System V AMD64 calling convention, producing relocatable
// object sections consumed by pkg/objfile.
package codegen

import "github.com/home-lang/home/pkg/types"

// Layout describes a type's in-memory size and alignment.
type Layout struct {
	Size  int
	Align int
}

// SizeOf computes the in-memory layout of a resolved type: a struct's
// fields are laid out in declaration order with natural alignment
// padding; an enum is laid out as an 8-byte tag followed by the largest
// variant's payload, with the whole union padded to the tag's alignment.
func SizeOf(reg *types.Registry, t types.Type) Layout {
	switch v := t.(type) {
	case *types.Primitive:
		// Every primitive occupies a full 8-byte slot regardless of its
		// declared width, matching this pass's everything-is-a-general-
		// register strategy: a narrower load/store would let adjacent
		// sub-8-byte struct/array/enum-payload elements overlap.
		_ = v
		return Layout{Size: 8, Align: 8}
	case *types.Ref:
		return Layout{Size: 8, Align: 8}
	case *types.Array:
		elem := SizeOf(reg, v.Elem)
		return Layout{Size: elem.Size * v.Length, Align: elem.Align}
	case *types.Slice:
		// Fat pointer: data pointer + length, both 8 bytes.
		return Layout{Size: 16, Align: 8}
	case *types.Tuple:
		return layoutSequential(structElems(reg, v.Elements))
	case *types.Func:
		return Layout{Size: 8, Align: 8} // function pointer
	case *types.DynTrait:
		return Layout{Size: 16, Align: 8} // data pointer + vtable pointer
	case *types.Named:
		if info, ok := reg.Structs[v.Name]; ok {
			fieldTypes := make([]types.Type, len(info.Fields))
			for i, f := range info.Fields {
				fieldTypes[i] = f.Type
			}

			return layoutSequential(structElems(reg, fieldTypes))
		}

		if info, ok := reg.Enums[v.Name]; ok {
			return layoutEnum(reg, info)
		}

		return Layout{Size: 8, Align: 8}
	default:
		return Layout{Size: 8, Align: 8}
	}
}

func structElems(reg *types.Registry, elems []types.Type) []Layout {
	out := make([]Layout, len(elems))
	for i, e := range elems {
		out[i] = SizeOf(reg, e)
	}

	return out
}

func layoutSequential(elems []Layout) Layout {
	offset := 0
	align := 1

	for _, l := range elems {
		if l.Align > align {
			align = l.Align
		}

		offset = alignUp(offset, l.Align) + l.Size
	}

	return Layout{Size: alignUp(offset, align), Align: align}
}

// enumTagSize is the fixed 8-byte discriminant every enum carries ahead
// of its payload.
const enumTagSize = 8

func layoutEnum(reg *types.Registry, info *types.EnumInfo) Layout {
	maxPayload := 0
	align := 8

	for _, v := range info.Variants {
		l := layoutSequential(structElems(reg, v.Fields))
		if l.Size > maxPayload {
			maxPayload = l.Size
		}

		if l.Align > align {
			align = l.Align
		}
	}

	total := alignUp(enumTagSize+maxPayload, align)

	return Layout{Size: total, Align: align}
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}

	return (n + align - 1) &^ (align - 1)
}

// FieldOffsets computes the byte offset of each field of a struct (or
// each field of one enum variant's payload, after the tag), applying the
// same sequential-with-padding rule as layoutSequential.
func FieldOffsets(reg *types.Registry, elems []types.Type) []int {
	offsets := make([]int, len(elems))
	offset := 0

	for i, e := range elems {
		l := SizeOf(reg, e)
		offset = alignUp(offset, l.Align)
		offsets[i] = offset
		offset += l.Size
	}

	return offsets
}
