// Package trampoline generates the bank switching wrappers that are used to
// call routines in another bank.
package trampoline

import (
	"fmt"
	"strings"

	"github.com/retroenv/vecasm/internal/callgraph"
	"github.com/retroenv/vecasm/internal/options"
	"github.com/retroenv/vecasm/internal/parser"
	"github.com/retroenv/vecasm/internal/program"
)

// symbol names of the bank switching addresses used by the generated code.
const (
	BankVariableName = "XBANK_CURRENT"
	BankRegisterName = "XBANK_REGISTER"
)

// Size is the number of code bytes of a single trampoline.
const Size = 31

// Trampoline is a wrapper routine for calls from a bank to a routine in
// another bank.
type Trampoline struct {
	Label      string
	CallerBank int
	Callee     string
	CalleeBank int
}

type key struct {
	callerBank int
	callee     string
}

// Set contains the trampolines of a build.
type Set struct {
	helperBank   int
	bankRegister uint16
	bankVariable uint16

	items  []Trampoline
	labels map[key]string
}

// Label returns the trampoline label for calls from a bank to a routine.
func Label(callerBank int, callee string) string {
	return fmt.Sprintf("%s_B%d_XBANK", callee, callerBank)
}

// Generate creates one trampoline per distinct pair.
func Generate(pairs []callgraph.Pair, build options.Build) *Set {
	s := &Set{
		helperBank:   build.Helper(),
		bankRegister: build.BankRegister,
		bankVariable: build.BankVariable,
		labels:       make(map[key]string, len(pairs)),
	}

	for _, pair := range pairs {
		k := key{callerBank: pair.CallerBank, callee: pair.Callee}
		if _, ok := s.labels[k]; ok {
			continue
		}
		label := Label(pair.CallerBank, pair.Callee)
		s.labels[k] = label
		s.items = append(s.items, Trampoline{
			Label:      label,
			CallerBank: pair.CallerBank,
			Callee:     pair.Callee,
			CalleeBank: pair.CalleeBank,
		})
	}
	return s
}

// Len returns the number of trampolines.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// HelperBank returns the bank that the trampolines have to be placed in.
func (s *Set) HelperBank() int {
	return s.helperBank
}

// Trampolines returns all trampolines in generation order.
func (s *Set) Trampolines() []Trampoline {
	return s.items
}

// Lookup returns the trampoline label for calls from a bank to a routine.
func (s *Set) Lookup(callerBank int, callee string) (string, bool) {
	label, ok := s.labels[key{callerBank: callerBank, callee: callee}]
	return label, ok
}

// Rewrite returns a copy of the section where all calls and jumps to routines
// in other banks target their trampoline instead. Branch to subroutine
// instructions are replaced by JSR as the trampoline is out of branch range.
// The number of rewritten lines is returned.
func (s *Set) Rewrite(section program.BankSection) (program.BankSection, int) {
	rewritten := section
	rewritten.Lines = make([]string, len(section.Lines))
	copy(rewritten.Lines, section.Lines)

	scope := &parser.Scope{}
	count := 0
	for i, text := range section.Lines {
		line, err := parser.Parse(i+1, text, scope)
		if err != nil {
			continue
		}
		callee, ok := callgraph.CallTarget(line, scope)
		if !ok {
			continue
		}
		label, ok := s.Lookup(section.ID, callee)
		if !ok {
			continue
		}

		rewritten.Lines[i] = rewriteLine(text, line, label)
		count++
	}
	return rewritten, count
}

// rewriteLine replaces the operation of a call line, a label prefix is kept.
func rewriteLine(text string, line parser.Line, target string) string {
	code := parser.StripComment(text)
	start := 0
	if line.Label != "" {
		start = strings.IndexByte(code, ':') + 1
	}
	idx := start + strings.Index(strings.ToUpper(code[start:]), line.Op)

	op := "JSR"
	if line.Op == "JMP" {
		op = "JMP"
	}
	return code[:idx] + op + " " + target
}

// Source returns the assembly source of all trampolines including the
// constants they use. The caller bank number is saved on the stack, the
// callee bank is selected and restored after the callee returned. The D
// register is preserved to pass return values.
func (s *Set) Source() []string {
	if len(s.items) == 0 {
		return nil
	}

	lines := []string{
		"; cross bank call trampolines",
		fmt.Sprintf("%s EQU $%04X", BankVariableName, s.bankVariable),
		fmt.Sprintf("%s EQU $%04X", BankRegisterName, s.bankRegister),
	}
	for _, t := range s.items {
		lines = append(lines,
			t.Label+":",
			"    LDA "+BankVariableName,
			"    PSHS A",
			fmt.Sprintf("    LDA #%d", t.CalleeBank),
			"    STA "+BankVariableName,
			"    STA "+BankRegisterName,
			"    JSR "+t.Callee,
			"    PSHS D",
			"    LDA 2,S",
			"    STA "+BankVariableName,
			"    STA "+BankRegisterName,
			"    PULS D",
			"    LEAS 1,S",
			"    RTS",
		)
	}
	return lines
}
