package m6809

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name   string
		class  Class
		prefix byte
		opcode byte
	}{
		{"rts", Inherent, 0, 0x39},
		{"DECA", Inherent, 0, 0x4A},
		{"CLRB", Inherent, 0, 0x5F},
		{"SWI2", Inherent, 0x10, 0x3F},
		{"BNE", Relative, 0, 0x26},
		{"BSR", Relative, 0, 0x8D},
		{"LBRA", LongRelative, 0, 0x16},
		{"LBSR", LongRelative, 0, 0x17},
		{"LBEQ", LongRelative, 0x10, 0x27},
		{"TFR", RegisterPair, 0, 0x1F},
		{"PSHU", Stack, 0, 0x36},
		{"LEAS", LoadEffective, 0, 0x32},
		{"ORCC", ImmediateCC, 0, 0x1A},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, ok := Lookup(tt.name)
			assert.True(t, ok)
			assert.Equal(t, tt.class, ins.Class)
			assert.Equal(t, tt.prefix, ins.Prefix)
			assert.Equal(t, tt.opcode, ins.Opcode)
		})
	}

	_, ok := Lookup("MOVE")
	assert.False(t, ok)
}

func TestModeOpcode(t *testing.T) {
	tests := []struct {
		name   string
		mode   Mode
		opcode byte
		ok     bool
	}{
		{"LDA", Immediate, 0x86, true},
		{"LDA", Direct, 0x96, true},
		{"LDA", Indexed, 0xA6, true},
		{"LDA", Extended, 0xB6, true},
		{"STA", Immediate, 0, false},
		{"JSR", Extended, 0xBD, true},
		{"JSR", Direct, 0x9D, true},
		{"JMP", Extended, 0x7E, true},
		{"CLR", Direct, 0x0F, true},
		{"INC", Indexed, 0x6C, true},
		{"LDD", Immediate, 0xCC, true},
		{"STU", Extended, 0xFF, true},
		{"LDY", Immediate, 0x8E, true},
		{"STS", Direct, 0xDF, true},
		{"CMPU", Extended, 0xB3, true},
	}

	for _, tt := range tests {
		ins, ok := Lookup(tt.name)
		assert.True(t, ok)
		opcode, ok := ins.ModeOpcode(tt.mode)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.opcode, opcode, tt.name)
	}

	ldy, _ := Lookup("LDY")
	assert.Equal(t, []byte{0x10, 0x8E}, ldy.Encode(0x8E))
	assert.True(t, ldy.Wide)
}

func TestLongBranch(t *testing.T) {
	long, ok := LongBranch("bne")
	assert.True(t, ok)
	assert.Equal(t, "LBNE", long)

	long, ok = LongBranch("BSR")
	assert.True(t, ok)
	assert.Equal(t, "LBSR", long)

	_, ok = LongBranch("LBRA")
	assert.False(t, ok)
}

func TestTransferPostbyte(t *testing.T) {
	b, err := TransferPostbyte("A,B")
	assert.NoError(t, err)
	assert.Equal(t, byte(0x89), b)

	b, err = TransferPostbyte("x, y")
	assert.NoError(t, err)
	assert.Equal(t, byte(0x12), b)

	_, err = TransferPostbyte("A,X")
	assert.ErrorContains(t, err, "size mismatch")

	_, err = TransferPostbyte("A")
	assert.Error(t, err)
}

func TestStackMask(t *testing.T) {
	mask, err := StackMask("D,X,PC", false)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x96), mask)

	mask, err = StackMask("U", false)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x40), mask)

	mask, err = StackMask("S,CC", true)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x41), mask)

	_, err = StackMask("S", false)
	assert.Error(t, err)
}

func TestIndexed(t *testing.T) {
	tests := []struct {
		operand  string
		offset   int
		resolved bool
		expected []byte
	}{
		{",X", 0, true, []byte{0x84}},
		{"0,Y", 0, true, []byte{0xA4}},
		{"5,U", 5, true, []byte{0x45}},
		{"-1,S", -1, true, []byte{0x7F}},
		{"100,X", 100, true, []byte{0x88, 0x64}},
		{"$1234,X", 0x1234, true, []byte{0x89, 0x12, 0x34}},
		{"TABLE,X", 0, false, []byte{0x89, 0, 0}},
		{"A,X", 0, true, []byte{0x86}},
		{"B,Y", 0, true, []byte{0xA5}},
		{"D,U", 0, true, []byte{0xCB}},
		{",X+", 0, true, []byte{0x80}},
		{",X++", 0, true, []byte{0x81}},
		{",-U", 0, true, []byte{0xC2}},
		{",--S", 0, true, []byte{0xE3}},
		{"[,X++]", 0, true, []byte{0x91}},
		{"[5,X]", 5, true, []byte{0x98, 0x05}},
		{"[$C880]", 0xC880, true, []byte{0x9F, 0xC8, 0x80}},
		{"MSG,PCR", -3, true, []byte{0x8D, 0xFF, 0xFD}},
		{"4,PC", 4, true, []byte{0x8C, 0x04}},
	}

	for _, tt := range tests {
		t.Run(tt.operand, func(t *testing.T) {
			ix, ok, err := ParseIndexed(tt.operand)
			assert.NoError(t, err)
			assert.True(t, ok)

			b, err := ix.Encode(tt.offset, tt.resolved)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, b)
		})
	}
}

func TestParseIndexed_Errors(t *testing.T) {
	_, ok, err := ParseIndexed("$C880")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = ParseIndexed("1,Z")
	assert.True(t, ok)
	assert.ErrorContains(t, err, "invalid index register")

	_, _, err = ParseIndexed("[,X+]")
	assert.Error(t, err)

	_, _, err = ParseIndexed("[,X")
	assert.ErrorContains(t, err, "missing ']'")
}
