package cpu

import (
	"fmt"
)

// Op is a decoded instruction family.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_UNKNOWN  = Op(0)  // UNKNOWN
	OP_CLS      = Op(1)  // CLS
	OP_RET      = Op(2)  // RET
	OP_JP       = Op(3)  // JP
	OP_CALL     = Op(4)  // CALL
	OP_SE_BYTE  = Op(5)  // SE
	OP_SNE_BYTE = Op(6)  // SNE
	OP_SE_REG   = Op(7)  // SE
	OP_LD_BYTE  = Op(8)  // LD
	OP_ADD_BYTE = Op(9)  // ADD
	OP_LD_REG   = Op(10) // LD
	OP_OR       = Op(11) // OR
	OP_AND      = Op(12) // AND
	OP_XOR      = Op(13) // XOR
	OP_ADD_REG  = Op(14) // ADD
	OP_SUB      = Op(15) // SUB
	OP_SHR      = Op(16) // SHR
	OP_SUBN     = Op(17) // SUBN
	OP_SHL      = Op(18) // SHL
	OP_SNE_REG  = Op(19) // SNE
	OP_LD_I     = Op(20) // LD
	OP_JP_V0    = Op(21) // JP
	OP_RND      = Op(22) // RND
	OP_DRW      = Op(23) // DRW
	OP_SKP      = Op(24) // SKP
	OP_SKNP     = Op(25) // SKNP
	OP_LD_DT    = Op(26) // LD
	OP_LD_KEY   = Op(27) // LD
	OP_SET_DT   = Op(28) // LD
	OP_SET_ST   = Op(29) // LD
	OP_ADD_I    = Op(30) // ADD
	OP_LD_FONT  = Op(31) // LD
	OP_BCD      = Op(32) // LD
	OP_STORE    = Op(33) // LD
	OP_LOAD     = Op(34) // LD
)

// opBase is the fixed bit pattern of each instruction family.
var opBase = [...]uint16{
	OP_UNKNOWN:  0x0000,
	OP_CLS:      0x00E0,
	OP_RET:      0x00EE,
	OP_JP:       0x1000,
	OP_CALL:     0x2000,
	OP_SE_BYTE:  0x3000,
	OP_SNE_BYTE: 0x4000,
	OP_SE_REG:   0x5000,
	OP_LD_BYTE:  0x6000,
	OP_ADD_BYTE: 0x7000,
	OP_LD_REG:   0x8000,
	OP_OR:       0x8001,
	OP_AND:      0x8002,
	OP_XOR:      0x8003,
	OP_ADD_REG:  0x8004,
	OP_SUB:      0x8005,
	OP_SHR:      0x8006,
	OP_SUBN:     0x8007,
	OP_SHL:      0x800E,
	OP_SNE_REG:  0x9000,
	OP_LD_I:     0xA000,
	OP_JP_V0:    0xB000,
	OP_RND:      0xC000,
	OP_DRW:      0xD000,
	OP_SKP:      0xE09E,
	OP_SKNP:     0xE0A1,
	OP_LD_DT:    0xF007,
	OP_LD_KEY:   0xF00A,
	OP_SET_DT:   0xF015,
	OP_SET_ST:   0xF018,
	OP_ADD_I:    0xF01E,
	OP_LD_FONT:  0xF029,
	OP_BCD:      0xF033,
	OP_STORE:    0xF055,
	OP_LOAD:     0xF065,
}

// Code is a single big-endian instruction word.
type Code uint16

// MakeCode creates an instruction with no operands.
func MakeCode(op Op) Code {
	return Code(opBase[op])
}

// MakeCodeAddr creates an instruction with a 12-bit address operand.
func MakeCodeAddr(op Op, addr uint16) Code {
	return Code(opBase[op] | (addr & 0xfff))
}

// MakeCodeByte creates an instruction with a register and an 8-bit immediate.
func MakeCodeByte(op Op, x uint8, kk uint8) Code {
	return Code(opBase[op] | (uint16(x&0xf) << 8) | uint16(kk))
}

// MakeCodeReg creates an instruction with up to two register operands.
func MakeCodeReg(op Op, x, y uint8) Code {
	return Code(opBase[op] | (uint16(x&0xf) << 8) | (uint16(y&0xf) << 4))
}

// MakeCodeDraw creates a sprite draw instruction.
func MakeCodeDraw(x, y, n uint8) Code {
	return Code(opBase[OP_DRW] | (uint16(x&0xf) << 8) | (uint16(y&0xf) << 4) | uint16(n&0xf))
}

// Nibble returns the 4-bit field at position n, 0 being the most significant.
func (code Code) Nibble(n int) uint8 {
	return uint8((code >> (12 - 4*n)) & 0xf)
}

// X returns the first register operand.
func (code Code) X() uint8 {
	return code.Nibble(1)
}

// Y returns the second register operand.
func (code Code) Y() uint8 {
	return code.Nibble(2)
}

// N returns the 4-bit immediate.
func (code Code) N() uint8 {
	return code.Nibble(3)
}

// Byte returns the 8-bit immediate.
func (code Code) Byte() uint8 {
	return uint8(code & 0xff)
}

// Addr returns the 12-bit address.
func (code Code) Addr() uint16 {
	return uint16(code & 0xfff)
}

// Op decodes the instruction family.
func (code Code) Op() Op {
	switch code.Nibble(0) {
	case 0x0:
		switch code {
		case 0x00E0:
			return OP_CLS
		case 0x00EE:
			return OP_RET
		}
	case 0x1:
		return OP_JP
	case 0x2:
		return OP_CALL
	case 0x3:
		return OP_SE_BYTE
	case 0x4:
		return OP_SNE_BYTE
	case 0x5:
		if code.N() == 0 {
			return OP_SE_REG
		}
	case 0x6:
		return OP_LD_BYTE
	case 0x7:
		return OP_ADD_BYTE
	case 0x8:
		switch code.N() {
		case 0x0:
			return OP_LD_REG
		case 0x1:
			return OP_OR
		case 0x2:
			return OP_AND
		case 0x3:
			return OP_XOR
		case 0x4:
			return OP_ADD_REG
		case 0x5:
			return OP_SUB
		case 0x6:
			return OP_SHR
		case 0x7:
			return OP_SUBN
		case 0xE:
			return OP_SHL
		}
	case 0x9:
		if code.N() == 0 {
			return OP_SNE_REG
		}
	case 0xA:
		return OP_LD_I
	case 0xB:
		return OP_JP_V0
	case 0xC:
		return OP_RND
	case 0xD:
		return OP_DRW
	case 0xE:
		switch code.Byte() {
		case 0x9E:
			return OP_SKP
		case 0xA1:
			return OP_SKNP
		}
	case 0xF:
		switch code.Byte() {
		case 0x07:
			return OP_LD_DT
		case 0x0A:
			return OP_LD_KEY
		case 0x15:
			return OP_SET_DT
		case 0x18:
			return OP_SET_ST
		case 0x1E:
			return OP_ADD_I
		case 0x29:
			return OP_LD_FONT
		case 0x33:
			return OP_BCD
		case 0x55:
			return OP_STORE
		case 0x65:
			return OP_LOAD
		}
	}

	return OP_UNKNOWN
}

// String returns the assembly language representation of this instruction.
func (code Code) String() (out string) {
	op := code.Op()
	x := code.X()
	y := code.Y()

	switch op {
	case OP_CLS, OP_RET:
		out = op.String()
	case OP_JP, OP_CALL, OP_LD_I, OP_JP_V0:
		var prefix string
		switch op {
		case OP_LD_I:
			prefix = "I, "
		case OP_JP_V0:
			prefix = "V0, "
		}
		out = fmt.Sprintf("%v %v0x%03x", op, prefix, code.Addr())
	case OP_SE_BYTE, OP_SNE_BYTE, OP_LD_BYTE, OP_ADD_BYTE, OP_RND:
		out = fmt.Sprintf("%v V%X, 0x%02x", op, x, code.Byte())
	case OP_SE_REG, OP_SNE_REG, OP_LD_REG, OP_OR, OP_AND, OP_XOR, OP_ADD_REG, OP_SUB, OP_SUBN:
		out = fmt.Sprintf("%v V%X, V%X", op, x, y)
	case OP_SHR, OP_SHL:
		if y == 0 {
			out = fmt.Sprintf("%v V%X", op, x)
		} else {
			out = fmt.Sprintf("%v V%X, V%X", op, x, y)
		}
	case OP_DRW:
		out = fmt.Sprintf("%v V%X, V%X, %d", op, x, y, code.N())
	case OP_SKP, OP_SKNP:
		out = fmt.Sprintf("%v V%X", op, x)
	case OP_LD_DT:
		out = fmt.Sprintf("%v V%X, DT", op, x)
	case OP_LD_KEY:
		out = fmt.Sprintf("%v V%X, K", op, x)
	case OP_SET_DT:
		out = fmt.Sprintf("%v DT, V%X", op, x)
	case OP_SET_ST:
		out = fmt.Sprintf("%v ST, V%X", op, x)
	case OP_ADD_I:
		out = fmt.Sprintf("%v I, V%X", op, x)
	case OP_LD_FONT:
		out = fmt.Sprintf("%v F, V%X", op, x)
	case OP_BCD:
		out = fmt.Sprintf("%v B, V%X", op, x)
	case OP_STORE:
		out = fmt.Sprintf("%v [I], V%X", op, x)
	case OP_LOAD:
		out = fmt.Sprintf("%v V%X, [I]", op, x)
	default:
		out = fmt.Sprintf(".word 0x%04x", uint16(code))
	}

	return
}
