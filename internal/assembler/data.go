package assembler

import (
	"strings"
)

type dataHandler func(r *run, operand string) error

// dataDirectives maps the data directive names to their handlers.
var dataDirectives = map[string]dataHandler{
	"FCB": (*run).fcb,
	"FCC": (*run).fcc,
	"FDB": (*run).fdb,
	"RMB": (*run).rmb,
	"ZMB": (*run).rmb,
}

// fcb emits bytes. Items can be expressions or quoted strings.
func (r *run) fcb(operand string) error {
	items, err := splitOperands(operand)
	if err != nil {
		return r.wrap(err)
	}
	if len(items) == 0 {
		return r.errorf("FCB requires at least one value")
	}

	pc := r.address
	for _, item := range items {
		if s, ok := unquote(item); ok {
			if err := r.emit([]byte(s)...); err != nil {
				return err
			}
			continue
		}
		if err := r.value(fixByte, item, pc); err != nil {
			return err
		}
	}
	return nil
}

// fcc emits a string enclosed by an arbitrary delimiter character, further
// comma separated items are handled like FCB values.
func (r *run) fcc(operand string) error {
	if len(operand) < 2 {
		return r.errorf("FCC requires a delimited string")
	}
	delim := operand[0]
	end := strings.IndexByte(operand[1:], delim)
	if end < 0 {
		return r.errorf("unterminated FCC string")
	}
	if err := r.emit([]byte(operand[1 : end+1])...); err != nil {
		return err
	}

	rest := strings.TrimSpace(operand[end+2:])
	if rest == "" {
		return nil
	}
	if rest[0] != ',' {
		return r.errorf("unexpected text after FCC string")
	}
	return r.fcb(strings.TrimSpace(rest[1:]))
}

// fdb emits 16 bit words, symbols are deferred like instruction operands.
func (r *run) fdb(operand string) error {
	items, err := splitOperands(operand)
	if err != nil {
		return r.wrap(err)
	}
	if len(items) == 0 {
		return r.errorf("FDB requires at least one value")
	}

	pc := r.address
	for _, item := range items {
		if err := r.value(fixWord, item, pc); err != nil {
			return err
		}
	}
	return nil
}

// rmb reserves zero filled bytes.
func (r *run) rmb(operand string) error {
	count, err := r.evalKnown(operand)
	if err != nil {
		return err
	}
	if count < 0 || count > 0xffff {
		return r.errorf("invalid byte count %d", count)
	}
	return r.emit(make([]byte, count)...)
}

// splitOperands splits a comma separated operand list, commas inside quotes
// and parentheses are kept.
func splitOperands(operand string) ([]string, error) {
	var items []string
	var quote byte
	depth := 0
	start := 0

	for i := 0; i < len(operand); i++ {
		c := operand[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"':
			quote = c
		case c == '\'' && i+2 < len(operand) && operand[i+2] == '\'':
			i += 2 // character literal
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ',' && depth == 0:
			items = append(items, strings.TrimSpace(operand[start:i]))
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, errUnterminatedString
	}

	last := strings.TrimSpace(operand[start:])
	if last != "" || len(items) > 0 {
		items = append(items, last)
	}
	for _, item := range items {
		if item == "" {
			return nil, errEmptyItem
		}
	}
	return items, nil
}

// unquote returns the content of a double quoted string.
func unquote(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1], true
	}
	return "", false
}
