package m6809

import (
	"fmt"
	"strings"
)

// transfer register codes of TFR and EXG.
var transferCodes = map[string]byte{
	"D": 0x0, "X": 0x1, "Y": 0x2, "U": 0x3, "S": 0x4, "PC": 0x5,
	"A": 0x8, "B": 0x9, "CC": 0xA, "DP": 0xB,
}

// index register codes used in the indexed postbyte.
var indexCodes = map[string]byte{
	"X": 0, "Y": 1, "U": 2, "S": 3,
}

// stack mask bits of PSH and PUL.
var stackBits = map[string]byte{
	"CC": 0x01, "A": 0x02, "B": 0x04, "D": 0x06, "DP": 0x08,
	"X": 0x10, "Y": 0x20, "PC": 0x80,
}

// TransferPostbyte encodes the postbyte of TFR and EXG, for example "A,B".
// Registers of different sizes can not be combined.
func TransferPostbyte(operand string) (byte, error) {
	parts := strings.Split(operand, ",")
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected two registers in '%s'", operand)
	}

	src, ok := transferCodes[strings.ToUpper(strings.TrimSpace(parts[0]))]
	if !ok {
		return 0, fmt.Errorf("invalid source register '%s'", strings.TrimSpace(parts[0]))
	}
	dst, ok := transferCodes[strings.ToUpper(strings.TrimSpace(parts[1]))]
	if !ok {
		return 0, fmt.Errorf("invalid destination register '%s'", strings.TrimSpace(parts[1]))
	}
	if src&0x8 != dst&0x8 {
		return 0, fmt.Errorf("register size mismatch in '%s'", operand)
	}
	return src<<4 | dst, nil
}

// StackMask encodes the register list of a push or pull instruction. The
// other stack pointer is U for the system stack and S for the user stack.
func StackMask(operand string, userStack bool) (byte, error) {
	other := "U"
	if userStack {
		other = "S"
	}

	var mask byte
	for _, part := range strings.Split(operand, ",") {
		name := strings.ToUpper(strings.TrimSpace(part))
		if name == "" {
			return 0, fmt.Errorf("empty register in list '%s'", operand)
		}
		if name == other {
			mask |= 0x40
			continue
		}
		bit, ok := stackBits[name]
		if !ok {
			return 0, fmt.Errorf("invalid stack register '%s'", name)
		}
		mask |= bit
	}
	return mask, nil
}

// IndexRegister returns the postbyte code of an index register.
func IndexRegister(name string) (byte, bool) {
	code, ok := indexCodes[strings.ToUpper(name)]
	return code, ok
}
