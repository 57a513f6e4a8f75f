package assembler

import (
	"fmt"

	"github.com/retroenv/vecasm/internal/expr"
	"github.com/retroenv/vecasm/internal/parser"
	"github.com/retroenv/vecasm/internal/program"
)

// fixupKind defines how a deferred operand is written once it is known.
type fixupKind uint8

const (
	fixByte   fixupKind = iota + 1 // 8 bit value
	fixDirect                      // low byte of a direct page address
	fixWord                        // 16 bit value
	fixRel8                        // 8 bit branch displacement
	fixRel16                       // 16 bit displacement
)

// refKind returns the linker reference kind, false if the value can not be
// relocated by the linker.
func (k fixupKind) refKind() (program.RefKind, bool) {
	switch k {
	case fixWord:
		return program.Absolute16, true
	case fixRel8:
		return program.Relative8, true
	case fixRel16:
		return program.Relative16, true
	default:
		return 0, false
	}
}

func (k fixupKind) width() int {
	switch k {
	case fixWord, fixRel16:
		return 2
	default:
		return 1
	}
}

// fixup is an operand that referenced a symbol that was not defined yet.
type fixup struct {
	kind    fixupKind
	expr    string
	offset  int    // position of the placeholder bytes
	address uint16 // logical address of the placeholder bytes
	pc      uint16 // address of the instruction, value of *
	global  string // label scope of the line
	dp      int    // direct page at the line
	line    parser.Line
}

// evalScope resolves symbols for expressions of the current bank. Labels take
// precedence over constants and platform symbols.
type evalScope struct {
	r     *run
	scope *parser.Scope
	pc    uint16
}

func (s evalScope) Qualify(name string) string {
	return s.scope.Qualify(name)
}

func (s evalScope) Lookup(name string) (uint16, bool) {
	if name == "*" {
		return s.pc, true
	}
	if value, ok := s.r.labels.Value(name); ok {
		return value, true
	}
	if value, ok := s.r.consts.Constants.Value(name); ok {
		return value, true
	}
	return s.r.platform.Value(name)
}

func (r *run) currentScope(pc uint16) evalScope {
	return evalScope{r: r, scope: r.scope, pc: pc}
}

// eval evaluates an expression at the current line. It returns false if the
// expression references a symbol that is not defined yet.
func (r *run) eval(operand string, pc uint16) (int, bool, error) {
	value, err := expr.Eval(operand, r.currentScope(pc))
	if err != nil {
		if expr.IsUndefined(err) {
			return 0, false, nil
		}
		return 0, false, r.wrap(err)
	}
	return value, true, nil
}

// evalKnown evaluates an expression that has to be resolvable immediately,
// for example the operand of ORG.
func (r *run) evalKnown(operand string) (int, error) {
	value, err := expr.Eval(operand, r.currentScope(r.address))
	if err != nil {
		return 0, r.wrap(err)
	}
	return value, nil
}

// value emits an operand value or defers it. The pc is the address of the
// instruction start that * refers to.
func (r *run) value(kind fixupKind, operand string, pc uint16) error {
	value, ok, err := r.eval(operand, pc)
	if err != nil {
		return err
	}
	if !ok {
		r.fixups = append(r.fixups, fixup{
			kind:    kind,
			expr:    operand,
			offset:  len(r.output),
			address: r.address,
			pc:      pc,
			global:  r.scope.Global(),
			dp:      r.dp,
			line:    r.line,
		})
		return r.emit(make([]byte, kind.width())...)
	}

	data, err := encodeValue(kind, value, r.address, r.dp)
	if err != nil {
		return r.wrap(err)
	}
	return r.emit(data...)
}

// encodeValue encodes a resolved value. The address is the logical address
// of the first byte that is written.
func encodeValue(kind fixupKind, value int, address uint16, dp int) ([]byte, error) {
	switch kind {
	case fixByte:
		if value < -128 || value > 0xff {
			return nil, fmt.Errorf("value %d does not fit into 8 bits", value)
		}
		return []byte{byte(value)}, nil

	case fixDirect:
		if value < 0 || value > 0xffff {
			return nil, fmt.Errorf("direct address %d out of range", value)
		}
		if value > 0xff && dp >= 0 && value>>8 != dp {
			return nil, fmt.Errorf("address $%04X is outside of the direct page $%02X", value, dp)
		}
		return []byte{byte(value)}, nil

	default:
		refKind, _ := kind.refKind()
		return refKind.Encode(value, address)
	}
}
