package m6809

import (
	"errors"
	"fmt"
	"strings"
)

// IndexKind is the form of an indexed operand.
type IndexKind uint8

// indexed operand forms.
const (
	IndexOffset           IndexKind = iota + 1 // n,R and ,R
	IndexAccumulatorA                          // A,R
	IndexAccumulatorB                          // B,R
	IndexAccumulatorD                          // D,R
	IndexPostIncrement                         // ,R+
	IndexPostIncrement2                        // ,R++
	IndexPreDecrement                          // ,-R
	IndexPreDecrement2                         // ,--R
	IndexProgramCounter                        // label,PCR or n,PC
	IndexExtendedIndirect                      // [address]
)

// IndexedOperand is a parsed indexed addressing operand.
type IndexedOperand struct {
	Kind     IndexKind
	Register byte   // index register code
	Offset   string // offset expression, empty for none
	Indirect bool
	Relative bool // PCR, the offset expression is a target address
}

// ParseIndexed parses an indexed operand. It returns false if the operand is
// not written in indexed syntax.
func ParseIndexed(operand string) (IndexedOperand, bool, error) {
	s := strings.TrimSpace(operand)
	var ix IndexedOperand

	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return ix, true, fmt.Errorf("missing ']' in indirect operand '%s'", operand)
		}
		ix.Indirect = true
		s = strings.TrimSpace(s[1 : len(s)-1])
		if s == "" {
			return ix, true, errors.New("empty indirect operand")
		}
	}

	comma := lastTopLevelComma(s)
	if comma < 0 {
		if !ix.Indirect {
			return ix, false, nil
		}
		ix.Kind = IndexExtendedIndirect
		ix.Offset = s
		return ix, true, nil
	}

	offset := strings.TrimSpace(s[:comma])
	reg := strings.ToUpper(strings.TrimSpace(s[comma+1:]))

	if reg == "PCR" || reg == "PC" {
		ix.Kind = IndexProgramCounter
		ix.Offset = offset
		ix.Relative = reg == "PCR"
		if offset == "" {
			ix.Offset = "0"
			ix.Relative = false
		}
		return ix, true, nil
	}

	if err := ix.parseRegister(reg, offset); err != nil {
		return ix, true, fmt.Errorf("%w in operand '%s'", err, operand)
	}
	return ix, true, nil
}

func (ix *IndexedOperand) parseRegister(reg, offset string) error {
	switch {
	case strings.HasPrefix(reg, "--"):
		ix.Kind = IndexPreDecrement2
		reg = reg[2:]
	case strings.HasPrefix(reg, "-"):
		ix.Kind = IndexPreDecrement
		reg = reg[1:]
	case strings.HasSuffix(reg, "++"):
		ix.Kind = IndexPostIncrement2
		reg = reg[:len(reg)-2]
	case strings.HasSuffix(reg, "+"):
		ix.Kind = IndexPostIncrement
		reg = reg[:len(reg)-1]
	default:
		ix.Kind = IndexOffset
	}

	code, ok := IndexRegister(reg)
	if !ok {
		return fmt.Errorf("invalid index register '%s'", reg)
	}
	ix.Register = code

	if ix.Kind != IndexOffset {
		if offset != "" {
			return errors.New("auto increment and decrement take no offset")
		}
		if ix.Indirect && (ix.Kind == IndexPostIncrement || ix.Kind == IndexPreDecrement) {
			return errors.New("single step auto increment and decrement can not be indirect")
		}
		return nil
	}

	switch strings.ToUpper(offset) {
	case "A":
		ix.Kind = IndexAccumulatorA
	case "B":
		ix.Kind = IndexAccumulatorB
	case "D":
		ix.Kind = IndexAccumulatorD
	default:
		ix.Offset = offset
	}
	return nil
}

// Encode returns the postbyte and the offset bytes of the operand. The offset
// is the evaluated offset expression; for program counter relative operands
// it is the displacement to the end of the instruction. If resolved is false,
// the offset is not known yet and the 16 bit form is chosen with a zero
// placeholder.
func (ix IndexedOperand) Encode(offset int, resolved bool) ([]byte, error) {
	var indirect byte
	if ix.Indirect {
		indirect = 0x10
	}
	rr := ix.Register << 5

	switch ix.Kind {
	case IndexAccumulatorA:
		return []byte{0x86 | rr | indirect}, nil
	case IndexAccumulatorB:
		return []byte{0x85 | rr | indirect}, nil
	case IndexAccumulatorD:
		return []byte{0x8B | rr | indirect}, nil
	case IndexPostIncrement:
		return []byte{0x80 | rr}, nil
	case IndexPostIncrement2:
		return []byte{0x81 | rr | indirect}, nil
	case IndexPreDecrement:
		return []byte{0x82 | rr}, nil
	case IndexPreDecrement2:
		return []byte{0x83 | rr | indirect}, nil

	case IndexExtendedIndirect:
		if resolved && (offset < -0x8000 || offset > 0xffff) {
			return nil, fmt.Errorf("address %d does not fit into 16 bits", offset)
		}
		return []byte{0x9F, byte(offset >> 8), byte(offset)}, nil

	case IndexProgramCounter:
		if ix.Relative || !resolved || offset < -128 || offset > 127 {
			if resolved && (offset < -0x8000 || offset > 0x7fff) {
				return nil, fmt.Errorf("program counter offset %d out of range", offset)
			}
			return []byte{0x8D | indirect, byte(offset >> 8), byte(offset)}, nil
		}
		return []byte{0x8C | indirect, byte(offset)}, nil

	case IndexOffset:
		return ix.encodeOffset(offset, resolved, rr, indirect)

	default:
		return nil, fmt.Errorf("unsupported indexed operand kind %d", ix.Kind)
	}
}

func (ix IndexedOperand) encodeOffset(offset int, resolved bool, rr, indirect byte) ([]byte, error) {
	switch {
	case !resolved:
		return []byte{0x89 | rr | indirect, 0, 0}, nil
	case ix.Offset == "" || offset == 0:
		return []byte{0x84 | rr | indirect}, nil
	case offset >= -16 && offset <= 15 && !ix.Indirect:
		return []byte{rr | byte(offset)&0x1f}, nil
	case offset >= -128 && offset <= 127:
		return []byte{0x88 | rr | indirect, byte(offset)}, nil
	case offset >= -0x8000 && offset <= 0xffff:
		return []byte{0x89 | rr | indirect, byte(offset >> 8), byte(offset)}, nil
	default:
		return nil, fmt.Errorf("index offset %d does not fit into 16 bits", offset)
	}
}

// lastTopLevelComma returns the index of the last comma that is not inside
// parentheses or quotes.
func lastTopLevelComma(s string) int {
	depth := 0
	var quote byte
	last := -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ',' && depth == 0:
			last = i
		}
	}
	return last
}
