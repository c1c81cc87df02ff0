package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeFields(t *testing.T) {
	assert := assert.New(t)

	code := Code(0xD12F)
	assert.Equal(uint8(0xD), code.Nibble(0))
	assert.Equal(uint8(0x1), code.X())
	assert.Equal(uint8(0x2), code.Y())
	assert.Equal(uint8(0xF), code.N())
	assert.Equal(uint8(0x2F), code.Byte())
	assert.Equal(uint16(0x12F), code.Addr())
}

func TestCodeOp(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code Code
		op   Op
		text string
	}){
		{0x00E0, OP_CLS, "CLS"},
		{0x00EE, OP_RET, "RET"},
		{0x1234, OP_JP, "JP 0x234"},
		{0x2345, OP_CALL, "CALL 0x345"},
		{0x3105, OP_SE_BYTE, "SE V1, 0x05"},
		{0x41FF, OP_SNE_BYTE, "SNE V1, 0xff"},
		{0x5120, OP_SE_REG, "SE V1, V2"},
		{0x6A05, OP_LD_BYTE, "LD VA, 0x05"},
		{0x7A03, OP_ADD_BYTE, "ADD VA, 0x03"},
		{0x8120, OP_LD_REG, "LD V1, V2"},
		{0x8121, OP_OR, "OR V1, V2"},
		{0x8122, OP_AND, "AND V1, V2"},
		{0x8123, OP_XOR, "XOR V1, V2"},
		{0x8124, OP_ADD_REG, "ADD V1, V2"},
		{0x8125, OP_SUB, "SUB V1, V2"},
		{0x8106, OP_SHR, "SHR V1"},
		{0x8126, OP_SHR, "SHR V1, V2"},
		{0x8127, OP_SUBN, "SUBN V1, V2"},
		{0x810E, OP_SHL, "SHL V1"},
		{0x9120, OP_SNE_REG, "SNE V1, V2"},
		{0xA234, OP_LD_I, "LD I, 0x234"},
		{0xB234, OP_JP_V0, "JP V0, 0x234"},
		{0xC10F, OP_RND, "RND V1, 0x0f"},
		{0xD125, OP_DRW, "DRW V1, V2, 5"},
		{0xE19E, OP_SKP, "SKP V1"},
		{0xE1A1, OP_SKNP, "SKNP V1"},
		{0xF107, OP_LD_DT, "LD V1, DT"},
		{0xF10A, OP_LD_KEY, "LD V1, K"},
		{0xF115, OP_SET_DT, "LD DT, V1"},
		{0xF118, OP_SET_ST, "LD ST, V1"},
		{0xF11E, OP_ADD_I, "ADD I, V1"},
		{0xF129, OP_LD_FONT, "LD F, V1"},
		{0xF133, OP_BCD, "LD B, V1"},
		{0xF155, OP_STORE, "LD [I], V1"},
		{0xF165, OP_LOAD, "LD V1, [I]"},
		{0x0000, OP_UNKNOWN, ".word 0x0000"},
		{0x0123, OP_UNKNOWN, ".word 0x0123"},
		{0x5121, OP_UNKNOWN, ".word 0x5121"},
		{0x8128, OP_UNKNOWN, ".word 0x8128"},
		{0x912F, OP_UNKNOWN, ".word 0x912f"},
		{0xE100, OP_UNKNOWN, ".word 0xe100"},
		{0xF1FF, OP_UNKNOWN, ".word 0xf1ff"},
	}

	for _, entry := range table {
		assert.Equal(entry.op, entry.code.Op(), "%04x", uint16(entry.code))
		assert.Equal(entry.text, entry.code.String(), "%04x", uint16(entry.code))
	}
}

func TestCodeMake(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(Code(0x00E0), MakeCode(OP_CLS))
	assert.Equal(Code(0x1FFF), MakeCodeAddr(OP_JP, 0xFFFF))
	assert.Equal(Code(0x6AFF), MakeCodeByte(OP_LD_BYTE, 0xA, 0xFF))
	assert.Equal(Code(0x8AB4), MakeCodeReg(OP_ADD_REG, 0xA, 0xB))
	assert.Equal(Code(0xF355), MakeCodeReg(OP_STORE, 3, 0))
	assert.Equal(Code(0xD12F), MakeCodeDraw(1, 2, 0xF))

	// Every family decodes back to itself.
	for op := OP_CLS; op <= OP_LOAD; op++ {
		assert.Equal(op, MakeCodeReg(op, 0, 0).Op(), op.String())
	}
}

func TestStateString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("running", STATE_RUNNING.String())
	assert.Equal("awaiting-key", STATE_AWAITING_KEY.String())
}
