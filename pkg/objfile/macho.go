package objfile

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// Mach-O64 constants for a minimal MH_OBJECT x86-64 file: one __TEXT
// segment with a __text section, and a symbol table.
const (
	machoMagic64  = 0xfeedfacf
	cpuTypeX86_64 = 0x01000007
	cpuSubtypeAll = 0x00000003
	mhObject      = 0x1

	lcSegment64  = 0x19
	lcSymtab     = 0x2

	nListTypeSect = 0xe
	nListExtern   = 0x1
)

type machoHeader struct {
	magic      uint32
	cpuType    uint32
	cpuSubtype uint32
	fileType   uint32
	nCmds      uint32
	sizeOfCmds uint32
	flags      uint32
	reserved   uint32
}

func (h *machoHeader) marshal() []byte {
	var buf bytes.Buffer
	for _, v := range []uint32{h.magic, h.cpuType, h.cpuSubtype, h.fileType, h.nCmds, h.sizeOfCmds, h.flags, h.reserved} {
		binary.Write(&buf, binary.LittleEndian, v)
	}

	return buf.Bytes()
}

type segmentCommand64 struct {
	cmd       uint32
	cmdSize   uint32
	segName   [16]byte
	vmAddr    uint64
	vmSize    uint64
	fileOff   uint64
	fileSize  uint64
	maxProt   uint32
	initProt  uint32
	nSects    uint32
	flags     uint32
}

func (s *segmentCommand64) marshal() []byte {
	var buf bytes.Buffer

	binary.Write(&buf, binary.LittleEndian, s.cmd)
	binary.Write(&buf, binary.LittleEndian, s.cmdSize)
	buf.Write(s.segName[:])
	binary.Write(&buf, binary.LittleEndian, s.vmAddr)
	binary.Write(&buf, binary.LittleEndian, s.vmSize)
	binary.Write(&buf, binary.LittleEndian, s.fileOff)
	binary.Write(&buf, binary.LittleEndian, s.fileSize)
	binary.Write(&buf, binary.LittleEndian, s.maxProt)
	binary.Write(&buf, binary.LittleEndian, s.initProt)
	binary.Write(&buf, binary.LittleEndian, s.nSects)
	binary.Write(&buf, binary.LittleEndian, s.flags)

	return buf.Bytes()
}

type section64 struct {
	sectName  [16]byte
	segName   [16]byte
	addr      uint64
	size      uint64
	offset    uint32
	align     uint32
	relOff    uint32
	nReloc    uint32
	flags     uint32
	reserved1 uint32
	reserved2 uint32
	reserved3 uint32
}

func (s *section64) marshal() []byte {
	var buf bytes.Buffer

	buf.Write(s.sectName[:])
	buf.Write(s.segName[:])
	binary.Write(&buf, binary.LittleEndian, s.addr)
	binary.Write(&buf, binary.LittleEndian, s.size)
	binary.Write(&buf, binary.LittleEndian, s.offset)
	binary.Write(&buf, binary.LittleEndian, s.align)
	binary.Write(&buf, binary.LittleEndian, s.relOff)
	binary.Write(&buf, binary.LittleEndian, s.nReloc)
	binary.Write(&buf, binary.LittleEndian, s.flags)
	binary.Write(&buf, binary.LittleEndian, s.reserved1)
	binary.Write(&buf, binary.LittleEndian, s.reserved2)
	binary.Write(&buf, binary.LittleEndian, s.reserved3)

	return buf.Bytes()
}

type symtabCommand struct {
	cmd     uint32
	cmdSize uint32
	symOff  uint32
	nSyms   uint32
	strOff  uint32
	strSize uint32
}

func (s *symtabCommand) marshal() []byte {
	var buf bytes.Buffer
	for _, v := range []uint32{s.cmd, s.cmdSize, s.symOff, s.nSyms, s.strOff, s.strSize} {
		binary.Write(&buf, binary.LittleEndian, v)
	}

	return buf.Bytes()
}

type nlist64 struct {
	strOff uint32
	typ    byte
	sect   byte
	desc   uint16
	value  uint64
}

func (n *nlist64) marshal() []byte {
	var buf bytes.Buffer

	binary.Write(&buf, binary.LittleEndian, n.strOff)
	buf.WriteByte(n.typ)
	buf.WriteByte(n.sect)
	binary.Write(&buf, binary.LittleEndian, n.desc)
	binary.Write(&buf, binary.LittleEndian, n.value)

	return buf.Bytes()
}

func fixedName16(name string) [16]byte {
	var out [16]byte
	copy(out[:], name)

	return out
}

// WriteMachO64 lays out the module as a minimal MH_OBJECT x86-64 Mach-O
// file: one __TEXT,__text section holding every function's code
// concatenated in order, and a symbol table with one exported symbol per
// function.
func WriteMachO64(m *Module) ([]byte, error) {
	if len(m.Functions) == 0 {
		return nil, errors.New("objfile: module has no functions to write")
	}

	var text bytes.Buffer

	funcOffsets := make(map[string]uint64, len(m.Functions))

	for _, fn := range m.Functions {
		funcOffsets[fn.Name] = uint64(text.Len())
		text.Write(fn.Code)
	}

	strtab := newStrTable()

	var nlistBuf bytes.Buffer

	for _, fn := range m.Functions {
		n := &nlist64{
			strOff: strtab.intern(fn.Name),
			typ:    nListTypeSect | nListExtern,
			sect:   1,
			value:  funcOffsets[fn.Name],
		}
		nlistBuf.Write(n.marshal())
	}

	const headerSize = 32
	const segCmdSize = 72
	const sectSize = 80
	const symtabCmdSize = 24

	cmdsSize := uint32(segCmdSize + sectSize + symtabCmdSize)

	textOff := uint64(headerSize) + uint64(cmdsSize)
	symOff := uint32(textOff) + uint32(text.Len())
	strOff := symOff + uint32(nlistBuf.Len())

	seg := &segmentCommand64{
		cmd: lcSegment64, cmdSize: segCmdSize + sectSize,
		segName: fixedName16("__TEXT"),
		vmSize:  uint64(text.Len()), fileOff: textOff, fileSize: uint64(text.Len()),
		maxProt: 7, initProt: 5, nSects: 1,
	}

	sect := &section64{
		sectName: fixedName16("__text"), segName: fixedName16("__TEXT"),
		size: uint64(text.Len()), offset: uint32(textOff), align: 4,
		flags: 0x80000400, // S_ATTR_PURE_INSTRUCTIONS | S_ATTR_SOME_INSTRUCTIONS
	}

	symtab := &symtabCommand{
		cmd: lcSymtab, cmdSize: symtabCmdSize,
		symOff: symOff, nSyms: uint32(len(m.Functions)),
		strOff: strOff, strSize: uint32(len(strtab.buf)),
	}

	h := &machoHeader{
		magic: machoMagic64, cpuType: cpuTypeX86_64, cpuSubtype: cpuSubtypeAll,
		fileType: mhObject, nCmds: 2, sizeOfCmds: cmdsSize,
	}

	var out bytes.Buffer

	out.Write(h.marshal())
	out.Write(seg.marshal())
	out.Write(sect.marshal())
	out.Write(symtab.marshal())
	out.Write(text.Bytes())
	out.Write(nlistBuf.Bytes())
	out.Write(strtab.buf)

	return out.Bytes(), nil
}
