// Package expr evaluates assembler operand expressions.
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUndefined is matched by all errors that are caused by a symbol that is
// not known in the scope of the evaluation.
var ErrUndefined = errors.New("undefined symbol")

// UndefinedError is returned when an expression references an unknown symbol.
type UndefinedError struct {
	Name string
}

func (e *UndefinedError) Error() string {
	return fmt.Sprintf("undefined symbol '%s'", e.Name)
}

// Is allows matching against ErrUndefined.
func (e *UndefinedError) Is(target error) bool {
	return target == ErrUndefined
}

// Scope resolves symbol names used in expressions.
type Scope interface {
	// Qualify returns the full name of a symbol, local labels get expanded.
	Qualify(name string) string
	// Lookup returns the value of a qualified symbol name.
	Lookup(name string) (uint16, bool)
}

// Symbols is a Scope backed by a plain map without local label support.
type Symbols map[string]uint16

// Qualify returns the name unchanged.
func (s Symbols) Qualify(name string) string { return name }

// Lookup returns the value of the symbol.
func (s Symbols) Lookup(name string) (uint16, bool) {
	v, ok := s[name]
	return v, ok
}

type parser struct {
	input string
	pos   int
	scope Scope
}

// Eval evaluates the expression using the given scope.
func Eval(s string, scope Scope) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty expression")
	}

	p := &parser{input: s, scope: scope}
	val, err := p.parseOr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("unexpected character '%c' at position %d in expression '%s'", p.input[p.pos], p.pos, s)
	}
	return val, nil
}

// SplitSymbol splits an expression of the form "name", "name+expr" or
// "name-expr" into the qualified symbol name and the evaluated constant addend.
// It returns false if the expression has a different form or the addend can
// not be evaluated.
func SplitSymbol(s string, scope Scope) (string, int, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !isIdentStart(s[0]) {
		return "", 0, false
	}

	end := 1
	for end < len(s) && isIdentChar(s[end]) {
		end++
	}
	name := scope.Qualify(s[:end])
	rest := strings.TrimSpace(s[end:])
	if rest == "" {
		return name, 0, true
	}

	if rest[0] != '+' && rest[0] != '-' {
		return "", 0, false
	}
	addend, err := Eval("0"+rest, scope)
	if err != nil {
		return "", 0, false
	}
	return name, addend, true
}

// IsUndefined returns whether the error was caused by an unknown symbol.
func IsUndefined(err error) bool {
	return errors.Is(err, ErrUndefined)
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpaces()
	if p.pos < len(p.input) {
		return p.input[p.pos]
	}
	return 0
}

func (p *parser) peekTwo() string {
	p.skipSpaces()
	if p.pos+1 < len(p.input) {
		return p.input[p.pos : p.pos+2]
	}
	return ""
}

// parseOr handles | and ^.
func (p *parser) parseOr() (int, error) {
	left, err := p.parseAnd()
	if err != nil {
		return 0, err
	}
	for {
		ch := p.peek()
		if ch != '|' && ch != '^' {
			return left, nil
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return 0, err
		}
		if ch == '|' {
			left |= right
		} else {
			left ^= right
		}
	}
}

// parseAnd handles &.
func (p *parser) parseAnd() (int, error) {
	left, err := p.parseShift()
	if err != nil {
		return 0, err
	}
	for p.peek() == '&' {
		p.pos++
		right, err := p.parseShift()
		if err != nil {
			return 0, err
		}
		left &= right
	}
	return left, nil
}

// parseShift handles << and >>.
func (p *parser) parseShift() (int, error) {
	left, err := p.parseAdd()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peekTwo()
		if op != "<<" && op != ">>" {
			return left, nil
		}
		p.pos += 2
		right, err := p.parseAdd()
		if err != nil {
			return 0, err
		}
		if right < 0 {
			return 0, fmt.Errorf("negative shift count %d", right)
		}
		if op == "<<" {
			left <<= uint(right)
		} else {
			left >>= uint(right)
		}
	}
}

// parseAdd handles + and -.
func (p *parser) parseAdd() (int, error) {
	left, err := p.parseMul()
	if err != nil {
		return 0, err
	}
	for {
		ch := p.peek()
		if ch != '+' && ch != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseMul()
		if err != nil {
			return 0, err
		}
		if ch == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

// parseMul handles *, / and %. After an operand % is the modulo operator,
// in front of an operand it starts a binary number.
func (p *parser) parseMul() (int, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		ch := p.peek()
		if ch != '*' && ch != '/' && ch != '%' {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		switch {
		case ch == '*':
			left *= right
		case right == 0:
			return 0, errors.New("division by zero in expression")
		case ch == '/':
			left /= right
		default:
			left %= right
		}
	}
}

// parseUnary handles unary -, +, ~ and the byte selectors < (low byte) and
// > (high byte).
func (p *parser) parseUnary() (int, error) {
	switch p.peek() {
	case '<':
		p.pos++
		val, err := p.parseUnary()
		return val & 0xff, err
	case '>':
		p.pos++
		val, err := p.parseUnary()
		return (val >> 8) & 0xff, err
	case '-':
		p.pos++
		val, err := p.parseUnary()
		return -val, err
	case '+':
		p.pos++
		return p.parseUnary()
	case '~':
		p.pos++
		val, err := p.parseUnary()
		return ^val, err
	}
	return p.parseAtom()
}

// parseAtom handles numbers, symbols, the location counter and parenthesized expressions.
func (p *parser) parseAtom() (int, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, errors.New("unexpected end of expression")
	}

	ch := p.input[p.pos]
	switch {
	case ch == '(':
		p.pos++
		val, err := p.parseOr()
		if err != nil {
			return 0, err
		}
		if p.peek() != ')' {
			return 0, errors.New("missing closing parenthesis")
		}
		p.pos++
		return val, nil

	case ch == '$':
		p.pos++
		return p.parseNumber(16, isHexDigit, "$")

	case ch == '%':
		p.pos++
		return p.parseNumber(2, isBinaryDigit, "%")

	case ch == '0' && p.pos+1 < len(p.input) && (p.input[p.pos+1] == 'x' || p.input[p.pos+1] == 'X'):
		p.pos += 2
		return p.parseNumber(16, isHexDigit, "0x")

	case isDecimalDigit(ch):
		return p.parseNumber(10, isDecimalDigit, "")

	case ch == '\'':
		return p.parseChar()

	case ch == '*':
		p.pos++
		return p.lookup("*")

	case isIdentStart(ch):
		start := p.pos
		for p.pos < len(p.input) && isIdentChar(p.input[p.pos]) {
			p.pos++
		}
		return p.lookup(p.input[start:p.pos])
	}

	return 0, fmt.Errorf("unexpected character '%c' in expression", ch)
}

func (p *parser) lookup(name string) (int, error) {
	qualified := p.scope.Qualify(name)
	val, ok := p.scope.Lookup(qualified)
	if !ok {
		return 0, &UndefinedError{Name: qualified}
	}
	return int(val), nil
}

func (p *parser) parseNumber(base int, valid func(byte) bool, prefix string) (int, error) {
	start := p.pos
	for p.pos < len(p.input) && (valid(p.input[p.pos]) || p.input[p.pos] == '_') {
		p.pos++
	}
	if p.pos == start {
		return 0, fmt.Errorf("expected digits after '%s'", prefix)
	}

	digits := strings.ReplaceAll(p.input[start:p.pos], "_", "")
	val, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number '%s%s'", prefix, p.input[start:p.pos])
	}
	return int(val), nil
}

func (p *parser) parseChar() (int, error) {
	p.pos++
	if p.pos >= len(p.input) {
		return 0, errors.New("unterminated character literal")
	}
	c := p.input[p.pos]
	p.pos++
	// the closing quote is optional as in most 6809 assemblers
	if p.pos < len(p.input) && p.input[p.pos] == '\'' {
		p.pos++
	}
	return int(c), nil
}

func isHexDigit(c byte) bool {
	return isDecimalDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isDecimalDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isBinaryDigit(c byte) bool {
	return c == '0' || c == '1'
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '.'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDecimalDigit(c)
}

// IsIdentifier returns whether the string is a valid symbol name.
func IsIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}
