package assembler

import (
	"strings"

	"github.com/retroenv/vecasm/internal/arch/m6809"
	"github.com/retroenv/vecasm/internal/parser"
)

// instruction encodes a CPU instruction.
func (r *run) instruction(line parser.Line) error {
	name := line.Op
	if r.opts.UseLongBranches {
		if long, ok := m6809.LongBranch(name); ok {
			name = long
		}
	}

	ins, ok := m6809.Lookup(name)
	if !ok {
		return r.errorf("unknown mnemonic '%s'", line.Op)
	}

	pc := r.address
	operand := line.Operand

	switch ins.Class {
	case m6809.Inherent:
		if operand != "" {
			return r.errorf("%s takes no operand", ins.Name)
		}
		return r.emit(ins.Encode(ins.Opcode)...)

	case m6809.Relative:
		return r.branch(ins, operand, fixRel8, pc)

	case m6809.LongRelative:
		return r.branch(ins, operand, fixRel16, pc)

	case m6809.Memory:
		return r.memory(ins, operand, pc)

	case m6809.ImmediateCC:
		if err := r.emit(ins.Encode(ins.Opcode)...); err != nil {
			return err
		}
		return r.value(fixByte, strings.TrimPrefix(operand, "#"), pc)

	case m6809.RegisterPair:
		postbyte, err := m6809.TransferPostbyte(operand)
		if err != nil {
			return r.wrap(err)
		}
		return r.emit(append(ins.Encode(ins.Opcode), postbyte)...)

	case m6809.Stack:
		mask, err := m6809.StackMask(operand, ins.UserStack)
		if err != nil {
			return r.wrap(err)
		}
		return r.emit(append(ins.Encode(ins.Opcode), mask)...)

	case m6809.LoadEffective:
		ix, ok, err := m6809.ParseIndexed(operand)
		if err != nil {
			return r.wrap(err)
		}
		if !ok {
			return r.errorf("%s requires an indexed operand", ins.Name)
		}
		return r.indexed(ins.Encode(ins.Opcode), ix, pc)

	default:
		return r.errorf("unsupported instruction class %s", ins.Class)
	}
}

// branch encodes a short or long branch.
func (r *run) branch(ins *m6809.Instruction, operand string, kind fixupKind, pc uint16) error {
	if operand == "" {
		return r.errorf("%s requires a target", ins.Name)
	}
	if err := r.emit(ins.Encode(ins.Opcode)...); err != nil {
		return err
	}
	return r.value(kind, operand, pc)
}

// memory encodes an instruction that supports immediate, direct, indexed or
// extended addressing.
func (r *run) memory(ins *m6809.Instruction, operand string, pc uint16) error {
	if operand == "" {
		return r.errorf("%s requires an operand", ins.Name)
	}

	if strings.HasPrefix(operand, "#") {
		opcode, ok := ins.ModeOpcode(m6809.Immediate)
		if !ok {
			return r.errorf("%s does not support immediate addressing", ins.Name)
		}
		if err := r.emit(ins.Encode(opcode)...); err != nil {
			return err
		}
		kind := fixByte
		if ins.Wide {
			kind = fixWord
		}
		return r.value(kind, operand[1:], pc)
	}

	ix, ok, err := m6809.ParseIndexed(operand)
	if err != nil {
		return r.wrap(err)
	}
	if ok {
		opcode, _ := ins.ModeOpcode(m6809.Indexed)
		return r.indexed(ins.Encode(opcode), ix, pc)
	}

	mode, operand := r.addressMode(ins, operand, pc)
	opcode, ok := ins.ModeOpcode(mode)
	if !ok {
		return r.errorf("%s does not support %s addressing", ins.Name, mode)
	}
	if err := r.emit(ins.Encode(opcode)...); err != nil {
		return err
	}
	if mode == m6809.Direct {
		return r.value(fixDirect, operand, pc)
	}
	return r.value(fixWord, operand, pc)
}

// addressMode selects direct or extended addressing. A leading < forces
// direct and a leading > forces extended addressing, otherwise direct is
// only used for known addresses inside the direct page set by SETDP.
func (r *run) addressMode(ins *m6809.Instruction, operand string, pc uint16) (m6809.Mode, string) {
	switch {
	case strings.HasPrefix(operand, "<"):
		return m6809.Direct, operand[1:]
	case strings.HasPrefix(operand, ">"):
		return m6809.Extended, operand[1:]
	}

	if r.dp < 0 || !ins.HasMode(m6809.Direct) {
		return m6809.Extended, operand
	}
	value, ok, err := r.eval(operand, pc)
	if err != nil || !ok {
		return m6809.Extended, operand
	}
	if value >= 0 && value <= 0xffff && value>>8 == r.dp {
		return m6809.Direct, operand
	}
	return m6809.Extended, operand
}

// indexed encodes the postbyte and offset of an indexed operand after the
// given opcode bytes.
func (r *run) indexed(opcode []byte, ix m6809.IndexedOperand, pc uint16) error {
	if ix.Offset == "" {
		data, err := ix.Encode(0, true)
		if err != nil {
			return r.wrap(err)
		}
		return r.emit(append(opcode, data...)...)
	}

	value, resolved, err := r.eval(ix.Offset, pc)
	if err != nil {
		return err
	}

	if ix.Relative && resolved {
		// displacement to the end of the instruction, the 16 bit form is always used
		end := int(pc) + len(opcode) + 3
		value -= end
	}

	data, err := ix.Encode(value, resolved)
	if err != nil {
		return r.wrap(err)
	}
	if err := r.emit(append(opcode, data[0])...); err != nil {
		return err
	}
	if resolved {
		return r.emit(data[1:]...)
	}

	kind := fixWord
	if ix.Relative {
		kind = fixRel16
	}
	return r.value(kind, ix.Offset, pc)
}
