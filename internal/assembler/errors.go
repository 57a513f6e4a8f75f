package assembler

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errUnterminatedString = errors.New("unterminated string")
	errEmptyItem          = errors.New("empty item in operand list")
)

// UndefinedSymbolError is returned in non object mode for a symbol that is
// not defined in the bank, its constants or the platform table.
type UndefinedSymbolError struct {
	Symbol string
	Line   int
	Text   string
}

func (e *UndefinedSymbolError) Error() string {
	return fmt.Sprintf("line %d: undefined symbol '%s': '%s'", e.Line, e.Symbol, strings.TrimSpace(e.Text))
}
