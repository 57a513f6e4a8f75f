package callgraph

import (
	"fmt"
	"strings"

	"github.com/retroenv/vecasm/internal/arch/m6809"
	"github.com/retroenv/vecasm/internal/expr"
	"github.com/retroenv/vecasm/internal/parser"
	"github.com/retroenv/vecasm/internal/program"
)

// FromAssembly derives the call graph and the bank assignment from the
// assembly sources of all banks. Every global label starts a routine and
// every subroutine call or jump to a symbol is a call of that routine. Code
// before the first label of a bank belongs to a routine named after the bank.
func FromAssembly(sections []program.BankSection) (*Program, Assignment) {
	prog := &Program{}
	assignment := Assignment{}

	for _, section := range sections {
		current := Function{Name: EntryRoutine(section.ID)}
		assignment[current.Name] = section.ID
		scope := &parser.Scope{}

		for i, text := range section.Lines {
			line, err := parser.Parse(i+1, text, scope)
			if err != nil {
				continue
			}

			if line.Label != "" && line.Op != parser.DirectiveEqu && !strings.Contains(line.Label, ".") {
				prog.Functions = append(prog.Functions, current)
				current = Function{Name: line.Label}
				if _, ok := assignment[line.Label]; !ok {
					assignment[line.Label] = section.ID
				}
			}

			if callee, ok := CallTarget(line, scope); ok {
				current.Body = append(current.Body, ExprStmt{Expr: Call{Callee: callee}})
			}
		}
		prog.Functions = append(prog.Functions, current)
	}
	return prog, assignment
}

// EntryRoutine returns the name of the pseudo routine that contains the code
// before the first label of a bank.
func EntryRoutine(bank int) string {
	return fmt.Sprintf(".bank%d", bank)
}

// CallTarget returns the called symbol of a JSR, BSR, LBSR or JMP line.
// Indexed and indirect operands are ignored.
func CallTarget(line parser.Line, scope *parser.Scope) (string, bool) {
	if !m6809.IsCall(line.Op) && line.Op != "JMP" {
		return "", false
	}
	operand := strings.TrimLeft(line.Operand, "<>")
	if !expr.IsIdentifier(operand) {
		return "", false
	}
	return scope.Qualify(operand), true
}
