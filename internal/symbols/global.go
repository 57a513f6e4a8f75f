package symbols

import (
	"github.com/retroenv/retrogolib/set"
	"golang.org/x/exp/slices"
)

// Entry is a symbol of the global table with the bank it was defined in.
type Entry struct {
	Symbol
	Bank int
}

// Global aggregates the symbol tables of all banks.
type Global struct {
	banks map[int]*Table

	items     map[string]Entry
	conflicts set.Set[string]
}

// NewGlobal creates a new global symbol table.
func NewGlobal() *Global {
	return &Global{
		banks:     make(map[int]*Table),
		items:     make(map[string]Entry),
		conflicts: set.New[string](),
	}
}

// AddBank adds the symbols of a bank. Banks must be added in ascending bank
// order, the first definition of a name wins. A later definition with a
// different value is recorded as conflict.
func (g *Global) AddBank(bankID int, table *Table) {
	if table == nil {
		table = NewTable()
	}
	g.banks[bankID] = table

	for _, name := range table.Names() {
		sym, _ := table.Get(name)
		if sym.Kind == Platform {
			continue
		}

		existing, ok := g.items[name]
		if !ok {
			g.items[name] = Entry{Symbol: sym, Bank: bankID}
			continue
		}
		if existing.Value != sym.Value {
			g.conflicts.Add(name)
		}
	}
}

// Bank returns the table of the given bank.
func (g *Global) Bank(bankID int) (*Table, bool) {
	table, ok := g.banks[bankID]
	return table, ok
}

// Get returns the global entry for the given name.
func (g *Global) Get(name string) (Entry, bool) {
	entry, ok := g.items[name]
	return entry, ok
}

// Len returns the number of global symbols.
func (g *Global) Len() int {
	return len(g.items)
}

// Conflicts returns the sorted names that were defined with different values
// in multiple banks.
func (g *Global) Conflicts() []string {
	names := make([]string, 0, len(g.conflicts))
	for name := range g.conflicts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Labels returns all label entries sorted by name.
func (g *Global) Labels() []Entry {
	entries := make([]Entry, 0, len(g.items))
	for _, entry := range g.items {
		if entry.Kind == Label {
			entries = append(entries, entry)
		}
	}
	slices.SortFunc(entries, func(a, b Entry) bool {
		return a.Name < b.Name
	})
	return entries
}
