// Package m6809 provides the Motorola 6809 instruction set used by the
// assembler: opcodes per addressing mode, register codes and the indexed
// addressing postbyte encoding.
package m6809

import "strings"

// Class is the closed set of instruction classes. The class defines which
// operand syntax an instruction accepts and how it is encoded.
type Class uint8

// instruction classes.
const (
	Inherent     Class = iota + 1 // no operand
	Relative                      // 8 bit branch displacement
	LongRelative                  // 16 bit branch displacement
	Memory                        // immediate, direct, indexed or extended operand
	ImmediateCC                   // 8 bit immediate operand only, ANDCC/ORCC/CWAI
	RegisterPair                  // TFR and EXG
	Stack                         // push and pull register lists
	LoadEffective                 // LEA, indexed operand only
)

func (c Class) String() string {
	switch c {
	case Inherent:
		return "inherent"
	case Relative:
		return "relative"
	case LongRelative:
		return "long relative"
	case Memory:
		return "memory"
	case ImmediateCC:
		return "immediate"
	case RegisterPair:
		return "register pair"
	case Stack:
		return "stack"
	case LoadEffective:
		return "load effective address"
	default:
		return "unknown"
	}
}

// Mode is the addressing mode of a memory instruction.
type Mode uint8

// addressing modes of memory instructions.
const (
	Immediate Mode = iota + 1
	Direct
	Indexed
	Extended
)

func (m Mode) String() string {
	switch m {
	case Immediate:
		return "immediate"
	case Direct:
		return "direct"
	case Indexed:
		return "indexed"
	case Extended:
		return "extended"
	default:
		return "unknown"
	}
}

// Instruction describes a 6809 mnemonic.
type Instruction struct {
	Name   string
	Class  Class
	Prefix byte // page prefix $10 or $11, 0 for page 1
	Opcode byte // opcode of all classes except Memory

	opcodes map[Mode]byte

	Wide      bool // immediate operand is 16 bit
	UserStack bool // PSHU/PULU, the register list may name S instead of U
}

// ModeOpcode returns the opcode of a memory instruction for an addressing mode.
func (ins *Instruction) ModeOpcode(mode Mode) (byte, bool) {
	op, ok := ins.opcodes[mode]
	return op, ok
}

// HasMode returns whether the instruction supports the addressing mode.
func (ins *Instruction) HasMode(mode Mode) bool {
	_, ok := ins.opcodes[mode]
	return ok
}

// Encode returns the prefix and opcode bytes.
func (ins *Instruction) Encode(opcode byte) []byte {
	if ins.Prefix != 0 {
		return []byte{ins.Prefix, opcode}
	}
	return []byte{opcode}
}

// Lookup returns the instruction for a mnemonic, case-insensitive.
func Lookup(name string) (*Instruction, bool) {
	ins, ok := instructions[strings.ToUpper(name)]
	return ins, ok
}

// LongBranch returns the long form of a short branch mnemonic.
func LongBranch(name string) (string, bool) {
	long, ok := longBranches[strings.ToUpper(name)]
	return long, ok
}

// IsCall returns whether the mnemonic transfers control to a subroutine.
func IsCall(name string) bool {
	switch strings.ToUpper(name) {
	case "JSR", "BSR", "LBSR":
		return true
	default:
		return false
	}
}
