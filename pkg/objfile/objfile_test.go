package objfile

import (
	"bytes"
	"testing"

	"github.com/home-lang/home/pkg/codegen"
)

func sampleModule() *Module {
	return &Module{
		Functions: []*codegen.Function{
			{Name: "add", Code: []byte{0x55, 0x48, 0x89, 0xE5, 0x5D, 0xC3}},
			{
				Name: "caller",
				Code: []byte{0x55, 0x48, 0x89, 0xE5, 0xE8, 0x00, 0x00, 0x00, 0x00, 0x5D, 0xC3},
				Relocations: []codegen.Relocation{
					{Offset: 5, Symbol: "add"},
				},
			},
		},
	}
}

func Test_WriteELF64_Magic(t *testing.T) {
	out, err := WriteELF64(sampleModule())
	if err != nil {
		t.Fatalf("WriteELF64: %v", err)
	}

	want := []byte{0x7F, 'E', 'L', 'F'}
	if !bytes.Equal(out[:4], want) {
		t.Fatalf("bad ELF magic: %x", out[:4])
	}

	if out[4] != elfClass64 {
		t.Fatalf("expected ELFCLASS64, got %d", out[4])
	}
}

func Test_WriteELF64_EmptyModule(t *testing.T) {
	if _, err := WriteELF64(&Module{}); err == nil {
		t.Fatal("expected error writing an empty module")
	}
}

func Test_WriteMachO64_Magic(t *testing.T) {
	out, err := WriteMachO64(sampleModule())
	if err != nil {
		t.Fatalf("WriteMachO64: %v", err)
	}

	if len(out) < 4 {
		t.Fatal("output too short")
	}

	magic := uint32(out[0]) | uint32(out[1])<<8 | uint32(out[2])<<16 | uint32(out[3])<<24
	if magic != machoMagic64 {
		t.Fatalf("expected Mach-O64 magic %#x, got %#x", machoMagic64, magic)
	}
}

func Test_WriteMachO64_EmptyModule(t *testing.T) {
	if _, err := WriteMachO64(&Module{}); err == nil {
		t.Fatal("expected error writing an empty module")
	}
}
