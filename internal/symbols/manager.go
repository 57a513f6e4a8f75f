// Package symbols provides symbol tables for single banks and the aggregated
// global table used at link time.
package symbols

import (
	"errors"
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/set"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ErrDuplicate is returned when a symbol is defined twice in the same table.
var ErrDuplicate = errors.New("duplicate symbol")

// Kind defines the origin of a symbol.
type Kind uint8

// symbol kinds.
const (
	Label    Kind = iota + 1 // address of code or data in a bank
	Constant                 // EQU constant
	Platform                 // system routine, RAM variable or hardware register
)

func (k Kind) String() string {
	switch k {
	case Label:
		return "label"
	case Constant:
		return "constant"
	case Platform:
		return "platform"
	default:
		return "unknown"
	}
}

// Symbol is a named 16 bit value.
type Symbol struct {
	Name   string
	Value  uint16
	Kind   Kind
	Offset int // offset in the bank output, only set for labels
}

// Table maps symbol names to values. Names are case-sensitive.
type Table struct {
	items map[string]Symbol
}

// NewTable creates a new empty symbol table.
func NewTable() *Table {
	return &Table{
		items: make(map[string]Symbol),
	}
}

// Get returns the symbol with the given name.
func (t *Table) Get(name string) (Symbol, bool) {
	sym, ok := t.items[name]
	return sym, ok
}

// Value returns the value of the symbol with the given name.
func (t *Table) Value(name string) (uint16, bool) {
	sym, ok := t.items[name]
	return sym.Value, ok
}

// Has returns whether a symbol with the given name exists.
func (t *Table) Has(name string) bool {
	_, ok := t.items[name]
	return ok
}

// Set sets a symbol, replacing any existing definition.
func (t *Table) Set(sym Symbol) {
	t.items[sym.Name] = sym
}

// Define adds a new symbol and returns ErrDuplicate if the name is already taken.
func (t *Table) Define(sym Symbol) error {
	if existing, ok := t.items[sym.Name]; ok {
		return fmt.Errorf("%w '%s' already defined as $%04X", ErrDuplicate, sym.Name, existing.Value)
	}
	t.items[sym.Name] = sym
	return nil
}

// SetPlatform registers a platform symbol under its original and its
// upper-cased spelling. Existing entries are not replaced.
func (t *Table) SetPlatform(name string, value uint16) {
	names := set.New[string]()
	names.Add(name)
	names.Add(strings.ToUpper(name))

	for alias := range names {
		if t.Has(alias) {
			continue
		}
		t.items[alias] = Symbol{Name: alias, Value: value, Kind: Platform}
	}
}

// Len returns the number of symbols in the table.
func (t *Table) Len() int {
	return len(t.items)
}

// Names returns all symbol names sorted alphabetically.
func (t *Table) Names() []string {
	names := maps.Keys(t.items)
	slices.Sort(names)
	return names
}

// Sorted returns all symbols sorted by value and name.
func (t *Table) Sorted() []Symbol {
	items := maps.Values(t.items)
	slices.SortFunc(items, func(a, b Symbol) bool {
		if a.Value != b.Value {
			return a.Value < b.Value
		}
		return a.Name < b.Name
	})
	return items
}
