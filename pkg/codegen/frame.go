package codegen

import "github.com/home-lang/home/pkg/types"

// Frame tracks the stack-slot assignment for one function's locals,
// laid out as negative offsets from RBP (`[rbp-k]`).
type Frame struct {
	reg     *types.Registry
	offsets map[string]int32
	size    int32
}

// NewFrame constructs an empty frame.
func NewFrame(reg *types.Registry) *Frame {
	return &Frame{reg: reg, offsets: make(map[string]int32)}
}

// Alloc reserves a stack slot for a named local of the given type,
// returning its `[rbp-k]` displacement. Slots are aligned to the value's
// natural alignment and packed downward from RBP.
func (f *Frame) Alloc(name string, t types.Type) int32 {
	l := SizeOf(f.reg, t)
	size := int32(l.Size)

	if size == 0 {
		size = 8
	}

	align := int32(l.Align)
	if align == 0 {
		align = 8
	}

	f.size = (f.size + align - 1) &^ (align - 1)
	f.size += size
	disp := -f.size
	f.offsets[name] = disp

	return disp
}

// Offset returns the `[rbp-k]` displacement for a previously allocated
// local, or (0, false) if it has no stack slot (e.g. it still lives only
// in a register).
func (f *Frame) Offset(name string) (int32, bool) {
	d, ok := f.offsets[name]
	return d, ok
}

// Size returns the total frame size in bytes, rounded up to a 16-byte
// boundary as the System V AMD64 ABI requires at call sites.
func (f *Frame) Size() int32 {
	return (f.size + 15) &^ 15
}
