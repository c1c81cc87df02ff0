package cpu

import (
	"encoding/binary"
	"iter"
)

// Opcode represents a line of assembled code with its source location and
// generated bytes.
type Opcode struct {
	LineNo      int      // Source line number.
	Addr        int      // Address of the first byte.
	Words       []string // Source words.
	Data        []byte   // Assembled bytes.
	Instruction bool     // Data holds a single instruction word.
	LinkLabel   string   // Label linked into the address field.
}

// Program is an assembled program.
type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug returns the opcode holding an address, and the offset of the
// address within it.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Addr && int(addr) < op.Addr+len(op.Data) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - op.Addr,
			}
			break
		}
	}

	return
}

// Binary returns the program image, to be loaded at PROGRAM_START.
func (prog *Program) Binary() (image []byte) {
	for _, op := range prog.Opcodes {
		offset := op.Addr - PROGRAM_START
		for len(image) < offset {
			image = append(image, 0)
		}
		image = append(image[:offset], op.Data...)
	}

	return
}

// Codes iterates over the instructions of the program, by address.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(addr uint16, code Code) bool) {
		for _, op := range prog.Opcodes {
			if !op.Instruction {
				continue
			}
			code := Code(binary.BigEndian.Uint16(op.Data))
			if !yield(uint16(op.Addr), code) {
				return
			}
		}
	}
}
