// Package linker combines the assembled banks into the final ROM image and
// patches all references between banks.
package linker

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vecasm/internal/mapper"
	"github.com/retroenv/vecasm/internal/program"
	"github.com/retroenv/vecasm/internal/symbols"
	"golang.org/x/exp/slices"
)

// LinkError is returned for a reference that can not be patched.
type LinkError struct {
	Symbol string
	Bank   int
	Offset int
	Err    error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("bank %d offset $%04X: symbol '%s': %s", e.Bank, e.Offset, e.Symbol, e.Err)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

// ErrUnresolved is wrapped by link errors of symbols that are not defined in
// any bank or the platform table.
var ErrUnresolved = errors.New("unresolved symbol")

// Linker links assembled banks.
type Linker struct {
	logger   *log.Logger
	mapper   *mapper.Mapper
	platform *symbols.Table
}

// New returns a new linker for the bank layout of the mapper.
func New(logger *log.Logger, m *mapper.Mapper, platform *symbols.Table) *Linker {
	if platform == nil {
		platform = symbols.NewTable()
	}
	return &Linker{
		logger:   logger,
		mapper:   m,
		platform: platform,
	}
}

// Link validates the banks, resolves all unresolved references and returns
// the ROM image. The bank outputs are not modified. Nothing is returned if
// any reference can not be resolved.
func (l *Linker) Link(banks []*program.AssembledBank) (*program.LinkedROM, error) {
	sorted, err := l.validate(banks)
	if err != nil {
		return nil, err
	}

	global := symbols.NewGlobal()
	for _, bank := range sorted {
		global.AddBank(bank.ID, bank.Symbols)
	}
	for _, name := range global.Conflicts() {
		entry, _ := global.Get(name)
		l.logger.Warn("Symbol defined in multiple banks with different values",
			log.String("symbol", name),
			log.Int("bank", entry.Bank))
	}

	rom := make([]byte, l.mapper.ROMSize())
	patched := 0
	for _, bank := range sorted {
		base := bank.ID * l.mapper.BankSize()
		copy(rom[base:], bank.Bytes)

		for _, ref := range bank.Unresolved {
			if err := l.patch(rom[base:base+l.mapper.BankSize()], bank, ref, global); err != nil {
				return nil, err
			}
			patched++
		}
	}

	res := &program.LinkedROM{
		Data:    rom,
		Symbols: make(map[string]program.SymbolLocation),
	}
	for _, entry := range global.Labels() {
		res.Symbols[entry.Name] = program.SymbolLocation{
			Bank:    entry.Bank,
			Offset:  entry.Offset,
			Address: entry.Value,
		}
	}

	l.logger.Debug("Linked ROM",
		log.Int("banks", len(sorted)),
		log.Int("size", len(rom)),
		log.Int("patched", patched),
		log.Int("global_symbols", global.Len()),
		log.Int("symbols", len(res.Symbols)))
	return res, nil
}

// validate checks bank ids and sizes and returns the banks sorted by id.
func (l *Linker) validate(banks []*program.AssembledBank) ([]*program.AssembledBank, error) {
	if len(banks) > l.mapper.BankCount() {
		return nil, fmt.Errorf("%d banks exceed the bank count of %d", len(banks), l.mapper.BankCount())
	}

	seen := make(map[int]struct{}, len(banks))
	for _, bank := range banks {
		if _, ok := seen[bank.ID]; ok {
			return nil, fmt.Errorf("duplicate bank id %d", bank.ID)
		}
		seen[bank.ID] = struct{}{}

		if err := l.mapper.ValidateBank(bank); err != nil {
			return nil, fmt.Errorf("validating bank: %w", err)
		}
	}

	sorted := slices.Clone(banks)
	slices.SortFunc(sorted, func(a, b *program.AssembledBank) bool {
		return a.ID < b.ID
	})
	return sorted, nil
}

// resolve probes the bank table, the global table and the platform table.
func (l *Linker) resolve(bank *program.AssembledBank, name string, global *symbols.Global) (uint16, bool) {
	if table, ok := global.Bank(bank.ID); ok && table != nil {
		if value, ok := table.Value(name); ok {
			return value, true
		}
	}
	if entry, ok := global.Get(name); ok {
		return entry.Value, true
	}
	return l.platform.Value(name)
}

// patch writes the resolved value of a reference into the bank image.
func (l *Linker) patch(image []byte, bank *program.AssembledBank, ref program.UnresolvedRef,
	global *symbols.Global) error {

	value, ok := l.resolve(bank, ref.Symbol, global)
	if !ok {
		return &LinkError{Symbol: ref.Symbol, Bank: bank.ID, Offset: ref.Offset, Err: ErrUnresolved}
	}

	data, err := ref.Kind.Encode(ref.Target(value), ref.Address)
	if err != nil {
		return &LinkError{Symbol: ref.Symbol, Bank: bank.ID, Offset: ref.Offset, Err: err}
	}
	if ref.Offset < 0 || ref.Offset+len(data) > len(bank.Bytes) {
		return &LinkError{
			Symbol: ref.Symbol,
			Bank:   bank.ID,
			Offset: ref.Offset,
			Err:    errors.New("reference outside of the bank output"),
		}
	}

	for _, b := range bank.Bytes[ref.Offset : ref.Offset+len(data)] {
		if b != 0 {
			return &LinkError{
				Symbol: ref.Symbol,
				Bank:   bank.ID,
				Offset: ref.Offset,
				Err:    errors.New("reference placeholder is not zero filled"),
			}
		}
	}

	copy(image[ref.Offset:], data)
	return nil
}
