// Package objfile writes relocatable object files from compiled
// pkg/codegen.Function values: ELF64 on Linux targets, Mach-O64 on Darwin
// targets. Both writers use the same hand-rolled, version-stamped binary
// layout style: fixed-size header structs encoded field-by-field rather
// than through a generic serialization library.
package objfile

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/home-lang/home/pkg/codegen"
)

// ELF64 constants needed for a minimal relocatable object file: one
// .text section holding every compiled function, one .symtab, one
// .strtab, and one .rela.text carrying call-site relocations.
const (
	elfClass64  = 2
	elfDataLSB  = 1
	elfVersion  = 1
	elfOSABISys = 0

	etREL     = 1
	emX86_64  = 62
	shtNull   = 0
	shtProgBits = 1
	shtSymTab = 2
	shtStrTab = 3
	shtRela   = 4

	shfAlloc   = 0x2
	shfExecInstr = 0x4

	stbGlobal = 1
	sttFunc   = 2

	rX86_64PC32 = 2
)

// Module is the set of compiled functions and symbols destined for a
// single object file.
type Module struct {
	Functions []*codegen.Function
}

// ELFHeader mirrors the fixed 64-byte ELF64 file header, encoded directly
// field-by-field rather than through reflection.
type elfHeader struct {
	ident     [16]byte
	fileType  uint16
	machine   uint16
	version   uint32
	entry     uint64
	phOff     uint64
	shOff     uint64
	flags     uint32
	ehSize    uint16
	phEntSize uint16
	phNum     uint16
	shEntSize uint16
	shNum     uint16
	shStrNdx  uint16
}

func (h *elfHeader) marshal() []byte {
	var buf bytes.Buffer

	buf.Write(h.ident[:])
	binary.Write(&buf, binary.LittleEndian, h.fileType)
	binary.Write(&buf, binary.LittleEndian, h.machine)
	binary.Write(&buf, binary.LittleEndian, h.version)
	binary.Write(&buf, binary.LittleEndian, h.entry)
	binary.Write(&buf, binary.LittleEndian, h.phOff)
	binary.Write(&buf, binary.LittleEndian, h.shOff)
	binary.Write(&buf, binary.LittleEndian, h.flags)
	binary.Write(&buf, binary.LittleEndian, h.ehSize)
	binary.Write(&buf, binary.LittleEndian, h.phEntSize)
	binary.Write(&buf, binary.LittleEndian, h.phNum)
	binary.Write(&buf, binary.LittleEndian, h.shEntSize)
	binary.Write(&buf, binary.LittleEndian, h.shNum)
	binary.Write(&buf, binary.LittleEndian, h.shStrNdx)

	return buf.Bytes()
}

type elfSection struct {
	nameOff   uint32
	shType    uint32
	flags     uint64
	addr      uint64
	offset    uint64
	size      uint64
	link      uint32
	info      uint32
	addrAlign uint64
	entSize   uint64
}

func (s *elfSection) marshal() []byte {
	var buf bytes.Buffer

	binary.Write(&buf, binary.LittleEndian, s.nameOff)
	binary.Write(&buf, binary.LittleEndian, s.shType)
	binary.Write(&buf, binary.LittleEndian, s.flags)
	binary.Write(&buf, binary.LittleEndian, s.addr)
	binary.Write(&buf, binary.LittleEndian, s.offset)
	binary.Write(&buf, binary.LittleEndian, s.size)
	binary.Write(&buf, binary.LittleEndian, s.link)
	binary.Write(&buf, binary.LittleEndian, s.info)
	binary.Write(&buf, binary.LittleEndian, s.addrAlign)
	binary.Write(&buf, binary.LittleEndian, s.entSize)

	return buf.Bytes()
}

type elfSym struct {
	nameOff uint32
	info    byte
	other   byte
	shNdx   uint16
	value   uint64
	size    uint64
}

func (s *elfSym) marshal() []byte {
	var buf bytes.Buffer

	binary.Write(&buf, binary.LittleEndian, s.nameOff)
	buf.WriteByte(s.info)
	buf.WriteByte(s.other)
	binary.Write(&buf, binary.LittleEndian, s.shNdx)
	binary.Write(&buf, binary.LittleEndian, s.value)
	binary.Write(&buf, binary.LittleEndian, s.size)

	return buf.Bytes()
}

type elfRela struct {
	offset uint64
	info   uint64
	addend int64
}

func (r *elfRela) marshal() []byte {
	var buf bytes.Buffer

	binary.Write(&buf, binary.LittleEndian, r.offset)
	binary.Write(&buf, binary.LittleEndian, r.info)
	binary.Write(&buf, binary.LittleEndian, r.addend)

	return buf.Bytes()
}

// strTable accumulates a null-terminated string table, returning each
// string's byte offset the first time it is interned.
type strTable struct {
	buf     []byte
	offsets map[string]uint32
}

func newStrTable() *strTable {
	return &strTable{buf: []byte{0}, offsets: map[string]uint32{"": 0}}
}

func (t *strTable) intern(s string) uint32 {
	if off, ok := t.offsets[s]; ok {
		return off
	}

	off := uint32(len(t.buf))
	t.buf = append(t.buf, []byte(s)...)
	t.buf = append(t.buf, 0)
	t.offsets[s] = off

	return off
}

// WriteELF64 lays out the module as a minimal ET_REL x86-64 object: a
// null section, .text, .symtab, .strtab, .shstrtab, and .rela.text if any
// function recorded a call-site relocation. Function code is concatenated
// in order; each function's symbol value is its byte offset into .text.
func WriteELF64(m *Module) ([]byte, error) {
	if len(m.Functions) == 0 {
		return nil, errors.New("objfile: module has no functions to write")
	}

	var text bytes.Buffer

	strtab := newStrTable()
	shstrtab := newStrTable()

	symbols := []elfSym{{}} // index 0 is the mandatory null symbol
	symIndex := make(map[string]int)
	var relas []elfRela

	funcOffsets := make(map[string]uint64, len(m.Functions))

	for _, fn := range m.Functions {
		funcOffsets[fn.Name] = uint64(text.Len())
		text.Write(fn.Code)
	}

	for _, fn := range m.Functions {
		base := funcOffsets[fn.Name]

		symbols = append(symbols, elfSym{
			nameOff: strtab.intern(fn.Name),
			info:    (stbGlobal << 4) | sttFunc,
			shNdx:   1, // .text is section index 1
			value:   base,
			size:    uint64(len(fn.Code)),
		})
		symIndex[fn.Name] = len(symbols) - 1
	}

	for _, fn := range m.Functions {
		base := funcOffsets[fn.Name]

		for _, r := range fn.Relocations {
			symIdx, ok := symIndex[r.Symbol]
			if !ok {
				// External reference: reserve a symbol entry for it now,
				// undefined (shNdx 0), to be resolved by the linker.
				symbols = append(symbols, elfSym{nameOff: strtab.intern(r.Symbol), info: stbGlobal << 4})
				symIdx = len(symbols) - 1
				symIndex[r.Symbol] = symIdx
			}

			relas = append(relas, elfRela{
				offset: base + uint64(r.Offset),
				info:   (uint64(symIdx) << 32) | rX86_64PC32,
				addend: -4,
			})
		}
	}

	return assembleELF(text.Bytes(), symbols, relas, strtab, shstrtab)
}

func assembleELF(text []byte, symbols []elfSym, relas []elfRela, strtab, shstrtab *strTable) ([]byte, error) {
	const ehSize = 64
	const shEntSize = 64
	const symEntSize = 24
	const relaEntSize = 24

	names := []string{"", ".text", ".symtab", ".strtab", ".shstrtab"}
	haveRela := len(relas) > 0

	if haveRela {
		names = append(names, ".rela.text")
	}

	for _, n := range names {
		shstrtab.intern(n)
	}

	var symtabBuf bytes.Buffer
	for _, s := range symbols {
		symtabBuf.Write(s.marshal())
	}

	var relaBuf bytes.Buffer
	for _, r := range relas {
		relaBuf.Write(r.marshal())
	}

	// Section layout: header, then section payloads back-to-back, then
	// the section header table.
	offset := uint64(ehSize)

	textOff := offset
	offset += uint64(len(text))

	symtabOff := offset
	offset += uint64(symtabBuf.Len())

	strtabOff := offset
	offset += uint64(len(strtab.buf))

	shstrtabOff := offset
	offset += uint64(len(shstrtab.buf))

	var relaOff uint64
	if haveRela {
		relaOff = offset
		offset += uint64(relaBuf.Len())
	}

	shOff := offset

	sections := []elfSection{
		{}, // SHN_UNDEF
		{
			nameOff: shstrtab.intern(".text"), shType: shtProgBits,
			flags: shfAlloc | shfExecInstr, offset: textOff, size: uint64(len(text)), addrAlign: 16,
		},
		{
			nameOff: shstrtab.intern(".symtab"), shType: shtSymTab,
			offset: symtabOff, size: uint64(symtabBuf.Len()), link: 3, info: 1, addrAlign: 8, entSize: symEntSize,
		},
		{
			nameOff: shstrtab.intern(".strtab"), shType: shtStrTab,
			offset: strtabOff, size: uint64(len(strtab.buf)), addrAlign: 1,
		},
		{
			nameOff: shstrtab.intern(".shstrtab"), shType: shtStrTab,
			offset: shstrtabOff, size: uint64(len(shstrtab.buf)), addrAlign: 1,
		},
	}

	shStrNdx := uint16(4)

	if haveRela {
		sections = append(sections, elfSection{
			nameOff: shstrtab.intern(".rela.text"), shType: shtRela,
			offset: relaOff, size: uint64(relaBuf.Len()), link: 2, info: 1, addrAlign: 8, entSize: relaEntSize,
		})
	}

	h := &elfHeader{
		fileType: etREL, machine: emX86_64, version: elfVersion,
		shOff: shOff, ehSize: ehSize, shEntSize: shEntSize, shNum: uint16(len(sections)), shStrNdx: shStrNdx,
	}
	h.ident[0], h.ident[1], h.ident[2], h.ident[3] = 0x7F, 'E', 'L', 'F'
	h.ident[4] = elfClass64
	h.ident[5] = elfDataLSB
	h.ident[6] = elfVersion
	h.ident[7] = elfOSABISys

	var out bytes.Buffer

	out.Write(h.marshal())
	out.Write(text)
	out.Write(symtabBuf.Bytes())
	out.Write(strtab.buf)
	out.Write(shstrtab.buf)

	if haveRela {
		out.Write(relaBuf.Bytes())
	}

	for _, s := range sections {
		out.Write(s.marshal())
	}

	return out.Bytes(), nil
}
