// Package parser splits assembly source lines into labels, directives,
// mnemonics and operands.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/vecasm/internal/expr"
)

// directive names.
const (
	DirectiveEnd     = "END"
	DirectiveEqu     = "EQU"
	DirectiveInclude = "INCLUDE"
	DirectiveOrg     = "ORG"
	DirectiveSetDP   = "SETDP"
)

var directives = set.New[string]()

func init() {
	for _, name := range []string{DirectiveEnd, DirectiveEqu, DirectiveInclude, DirectiveOrg, DirectiveSetDP} {
		directives.Add(name)
	}
}

// markerPattern matches the comment that the code generator emits before the
// code of a high level source line, for example "; VPY line 12".
var markerPattern = regexp.MustCompile(`^\s*;\s*[A-Za-z][A-Za-z0-9_]*\s+line\s+(\d+)\s*$`)

// Line is a parsed source line.
type Line struct {
	Number int    // 1 based line number in the source
	Text   string // original line text

	Label   string // qualified label defined on this line
	Op      string // upper-cased mnemonic or directive
	Operand string // operand text, trimmed

	SourceLine int // high level source line of a line map marker, 0 if none
}

// IsDirective returns whether the line contains an assembler directive.
func (l Line) IsDirective() bool {
	return directives.Contains(l.Op)
}

// IsEmpty returns whether the line neither defines a label nor contains an operation.
func (l Line) IsEmpty() bool {
	return l.Label == "" && l.Op == "" && l.SourceLine == 0
}

// Error is a fatal parse error of a source line.
type Error struct {
	Line int
	Text string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s: '%s'", e.Line, e.Err, strings.TrimSpace(e.Text))
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StripComment removes a ; comment from a line, respecting quoted strings
// and character literals. A character literal is a quote followed by one
// character and an optional closing quote. Lines starting with * are full
// line comments.
func StripComment(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "*") {
		return ""
	}

	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"':
			quote = c
		case c == '\'':
			i++
			if i+1 < len(line) && line[i+1] == '\'' {
				i++
			}
		case c == ';':
			return line[:i]
		}
	}
	return line
}

// Marker returns the high level source line number if the line is a line map marker.
func Marker(line string) (int, bool) {
	match := markerPattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Parse parses a single source line. The scope is updated when a global label
// is defined, it can be nil for a scan that does not track label scopes.
func Parse(number int, text string, scope *Scope) (Line, error) {
	line := Line{
		Number: number,
		Text:   text,
	}

	if sourceLine, ok := Marker(text); ok {
		line.SourceLine = sourceLine
		return line, nil
	}

	code := strings.TrimSpace(StripComment(text))
	if code == "" {
		return line, nil
	}

	if name, rest, ok := splitEqu(code); ok {
		if !expr.IsIdentifier(name) {
			return line, &Error{Line: number, Text: text, Err: fmt.Errorf("invalid constant name '%s'", name)}
		}
		line.Label = scope.Qualify(name)
		line.Op = DirectiveEqu
		line.Operand = rest
		return line, nil
	}

	label, rest, ok := splitLabel(code)
	if ok {
		if !expr.IsIdentifier(label) || label == "." {
			return line, &Error{Line: number, Text: text, Err: fmt.Errorf("invalid label '%s'", label)}
		}
		line.Label = scope.Define(label)
		code = rest
	}

	if code == "" {
		return line, nil
	}

	op, operand := splitOperation(code)
	line.Op = strings.ToUpper(op)
	line.Operand = operand
	return line, nil
}

// splitEqu detects constant definitions of the forms "NAME EQU expr",
// "NAME: EQU expr" and "NAME = expr".
func splitEqu(code string) (string, string, bool) {
	fields := strings.Fields(code)
	if len(fields) == 0 {
		return "", "", false
	}

	// "NAME=expr" without spaces
	if idx := strings.IndexByte(fields[0], '='); idx > 0 && expr.IsIdentifier(fields[0][:idx]) {
		return fields[0][:idx], strings.TrimSpace(code[idx+1:]), true
	}
	if len(fields) < 2 {
		return "", "", false
	}

	name := strings.TrimSuffix(fields[0], ":")
	keyword := fields[1]
	if !strings.EqualFold(keyword, DirectiveEqu) && keyword != "=" {
		return "", "", false
	}

	start := len(fields[0])
	idx := start + strings.Index(code[start:], keyword) + len(keyword)
	return name, strings.TrimSpace(code[idx:]), true
}

// splitLabel detects a "name:" prefix.
func splitLabel(code string) (string, string, bool) {
	idx := strings.IndexByte(code, ':')
	if idx <= 0 {
		return "", "", false
	}
	label := strings.TrimSpace(code[:idx])
	if strings.ContainsAny(label, " \t\"'") {
		return "", "", false
	}
	return label, strings.TrimSpace(code[idx+1:]), true
}

func splitOperation(code string) (string, string) {
	idx := strings.IndexAny(code, " \t")
	if idx < 0 {
		return code, ""
	}
	return code[:idx], strings.TrimSpace(code[idx+1:])
}

// IncludePath extracts the file name of an INCLUDE operand.
func IncludePath(operand string) (string, error) {
	path := strings.TrimSpace(operand)
	if len(path) >= 2 && (path[0] == '"' || path[0] == '\'') && path[len(path)-1] == path[0] {
		path = path[1 : len(path)-1]
	}
	if path == "" {
		return "", fmt.Errorf("missing file name for %s", DirectiveInclude)
	}
	return path, nil
}
