package program

import "fmt"

// RefKind defines how an unresolved reference has to be patched by the linker.
type RefKind uint8

// reference kinds.
const (
	Absolute16 RefKind = iota + 1 // full 16 bit address, big endian
	Relative8                     // signed 8 bit displacement of a short branch
	Relative16                    // signed 16 bit displacement of a long branch or PC relative operand
)

var refKindNames = map[RefKind]string{
	Absolute16: "Absolute16",
	Relative8:  "Relative8",
	Relative16: "Relative16",
}

// String returns the name of the kind.
func (k RefKind) String() string {
	if s, ok := refKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("RefKind(%d)", uint8(k))
}

// Width returns the number of placeholder bytes reserved for the kind.
func (k RefKind) Width() int {
	switch k {
	case Relative8:
		return 1
	case Absolute16, Relative16:
		return 2
	default:
		return 0
	}
}

// IsRelative returns whether the patched value is a displacement from the
// address following the placeholder bytes.
func (k RefKind) IsRelative() bool {
	return k == Relative8 || k == Relative16
}

// Range returns the inclusive range of values that the kind can encode.
func (k RefKind) Range() (int, int) {
	switch k {
	case Relative8:
		return -128, 127
	case Relative16:
		return -32768, 32767
	default:
		return 0, 0xffff
	}
}

// Encode computes the bytes to write for a resolved target value. The address
// is the logical address of the first placeholder byte.
func (k RefKind) Encode(target int, address uint16) ([]byte, error) {
	value := target
	if k.IsRelative() {
		value = target - (int(address) + k.Width())
	}

	lo, hi := k.Range()
	if k == Absolute16 {
		// addresses wrap around the 64k window, negative constants are allowed
		lo = -32768
	}
	if value < lo || value > hi {
		return nil, &RangeError{Kind: k, Value: value}
	}

	switch k.Width() {
	case 1:
		return []byte{byte(int8(value))}, nil
	case 2:
		v := uint16(int16(value))
		if k == Absolute16 {
			v = uint16(value)
		}
		return []byte{byte(v >> 8), byte(v)}, nil
	default:
		return nil, fmt.Errorf("unsupported reference kind %s", k)
	}
}

// RangeError is returned when a value does not fit into the reserved bytes.
type RangeError struct {
	Kind  RefKind
	Value int
}

func (e *RangeError) Error() string {
	lo, hi := e.Kind.Range()
	return fmt.Sprintf("%s value %d out of range %d..%d", e.Kind, e.Value, lo, hi)
}

// UnresolvedRef is a symbol reference that could not be resolved while
// emitting code and has to be patched later.
type UnresolvedRef struct {
	Symbol  string
	Offset  int     // position of the placeholder bytes in the bank output
	Kind    RefKind
	Address uint16  // logical address of the placeholder bytes
	Addend  int     // constant added to the symbol value
	Line    int     // source line number that created the reference
}

// Target returns the patch target for the given symbol value.
func (r UnresolvedRef) Target(value uint16) int {
	return int(value) + r.Addend
}
