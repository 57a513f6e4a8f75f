// Package program contains the data model shared by the assembler and the linker.
package program

import (
	"github.com/retroenv/vecasm/internal/symbols"
)

// BankSection describes the assembly source of one ROM bank.
type BankSection struct {
	ID    int      // bank number
	Org   uint16   // address the bank code starts at
	Name  string   // name of the source the lines were read from, used for diagnostics
	Lines []string // raw source lines
}

// LineMapping maps an emitted address to the high level source line that produced it.
type LineMapping struct {
	Address    uint16
	Offset     int
	SourceLine int
}

// AssembledBank is the output of one assembler run for a single bank.
type AssembledBank struct {
	ID    int
	Org   uint16
	Bytes []byte

	Symbols    *symbols.Table
	Unresolved []UnresolvedRef
	LineMap    []LineMapping
	Warnings   []string
}

// SymbolLocation defines where a label of the final ROM is located.
type SymbolLocation struct {
	Bank    int
	Offset  int    // byte offset inside the bank
	Address uint16 // logical CPU address
}

// LinkedROM is the final artifact of a build.
type LinkedROM struct {
	Data    []byte
	Symbols map[string]SymbolLocation
}
