// Package writer implements the symbol listing output of a build.
package writer

import (
	"fmt"
	"hash/crc32"
	"io"
	"strings"

	"github.com/retroenv/vecasm/internal/mapper"
	"github.com/retroenv/vecasm/internal/program"
	"github.com/retroenv/vecasm/internal/symbols"
	"github.com/retroenv/vecasm/internal/trampoline"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const dataBytesPerLine = 16

type lineWriterFunc func(line string, byteCount int) error

// Listing contains everything that is written to a symbol listing.
type Listing struct {
	ROM         *program.LinkedROM
	Banks       []*program.AssembledBank
	Mapper      *mapper.Mapper
	Trampolines *trampoline.Set
}

// Writer writes a symbol listing.
type Writer struct {
	listing Listing
	writer  io.Writer
}

// New creates a new listing writer.
func New(listing Listing, writer io.Writer) *Writer {
	return &Writer{
		listing: listing,
		writer:  writer,
	}
}

// Write outputs the complete listing.
func (w Writer) Write() error {
	if err := w.WriteCommentHeader(); err != nil {
		return err
	}
	if err := w.WriteLabels(); err != nil {
		return err
	}
	for _, bank := range w.listing.Banks {
		if err := w.OutputAliasMap(bank.ID, constants(bank.Symbols)); err != nil {
			return err
		}
	}
	return w.WriteTrampolines()
}

// WriteCommentHeader writes the CRC32 checksum and the bank layout as comments to the output.
func (w Writer) WriteCommentHeader() error {
	m := w.listing.Mapper
	if _, err := fmt.Fprintf(w.writer, "; ROM CRC32 checksum: %08x\n", crc32.ChecksumIEEE(w.listing.ROM.Data)); err != nil {
		return fmt.Errorf("writing rom checksum: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; Banks: %d x $%04x bytes\n", m.BankCount(), m.BankSize()); err != nil {
		return fmt.Errorf("writing bank layout: %w", err)
	}
	if m.BankCount() > 1 {
		if _, err := fmt.Fprintf(w.writer, "; Helper bank: %s\n", m.BankName(m.HelperBank())); err != nil {
			return fmt.Errorf("writing helper bank: %w", err)
		}
	}
	return nil
}

// WriteLabels writes all labels of the linked ROM grouped by bank and sorted
// by address.
func (w Writer) WriteLabels() error {
	byBank := make(map[int][]string)
	for name, loc := range w.listing.ROM.Symbols {
		byBank[loc.Bank] = append(byBank[loc.Bank], name)
	}

	banks := maps.Keys(byBank)
	slices.Sort(banks)

	for _, bank := range banks {
		names := byBank[bank]
		slices.SortFunc(names, func(a, b string) bool {
			la, lb := w.listing.ROM.Symbols[a], w.listing.ROM.Symbols[b]
			if la.Address != lb.Address {
				return la.Address < lb.Address
			}
			return a < b
		})

		if _, err := fmt.Fprintf(w.writer, "\n; %s\n", w.listing.Mapper.BankName(bank)); err != nil {
			return fmt.Errorf("writing bank header: %w", err)
		}
		for _, name := range names {
			loc := w.listing.ROM.Symbols[name]
			line := fmt.Sprintf("%s = $%04X", name, loc.Address)
			if _, err := fmt.Fprintf(w.writer, "%-32s ; rom offset $%05X\n", line,
				w.listing.Mapper.ROMOffset(loc.Bank, loc.Address)); err != nil {
				return fmt.Errorf("writing label: %w", err)
			}
		}
	}
	return nil
}

// OutputAliasMap outputs the constants of a bank.
func (w Writer) OutputAliasMap(bank int, aliases map[string]uint16) error {
	if len(aliases) == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(w.writer, "\n; %s constants\n", w.listing.Mapper.BankName(bank)); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}

	// sort the aliases by name before outputting to avoid random map order
	names := maps.Keys(aliases)
	slices.Sort(names)

	for _, constant := range names {
		if _, err := fmt.Fprintf(w.writer, "%s = $%04X\n", constant, aliases[constant]); err != nil {
			return fmt.Errorf("writing alias: %w", err)
		}
	}
	return nil
}

// WriteTrampolines writes the code bytes of all cross bank trampolines.
func (w Writer) WriteTrampolines() error {
	if w.listing.Trampolines.Len() == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(w.writer, "\n; cross bank trampolines"); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}

	for _, t := range w.listing.Trampolines.Trampolines() {
		loc, ok := w.listing.ROM.Symbols[t.Label]
		if !ok {
			return fmt.Errorf("trampoline '%s' missing in linked symbols", t.Label)
		}
		code, err := w.readCode(loc, trampoline.Size)
		if err != nil {
			return fmt.Errorf("reading trampoline '%s': %w", t.Label, err)
		}

		if _, err := fmt.Fprintf(w.writer, "%-32s ; bank %d -> %s in bank %d\n",
			t.Label+":", t.CallerBank, t.Callee, t.CalleeBank); err != nil {
			return fmt.Errorf("writing trampoline label: %w", err)
		}
		address := loc.Address
		lineWriter := func(line string, byteCount int) error {
			if _, err := fmt.Fprintf(w.writer, "%-54s ; $%04X\n", line, address); err != nil {
				return fmt.Errorf("writing trampoline line: %w", err)
			}
			address += uint16(byteCount)
			return nil
		}
		if err := w.BundleDataWrites(code, lineWriter); err != nil {
			return fmt.Errorf("writing trampoline data: %w", err)
		}
	}
	return nil
}

// BundleDataWrites bundles writes of data bytes to print dataBytesPerLine bytes per line.
func (w Writer) BundleDataWrites(data []byte, lineWriter lineWriterFunc) error {
	remaining := len(data)
	for i := 0; remaining > 0; {
		toWrite := min(remaining, dataBytesPerLine)

		buf := &strings.Builder{}
		buf.WriteString("  FCB ")
		for j := range toWrite {
			if _, err := fmt.Fprintf(buf, "$%02X,", data[i+j]); err != nil {
				return fmt.Errorf("writing data byte: %w", err)
			}
		}

		line := strings.TrimRight(buf.String(), ",")

		if lineWriter != nil {
			if err := lineWriter(line, toWrite); err != nil {
				return fmt.Errorf("writing data line using custom writer: %w", err)
			}
		} else {
			if _, err := fmt.Fprintf(w.writer, "%s\n", line); err != nil {
				return fmt.Errorf("writing data line: %w", err)
			}
		}

		i += toWrite
		remaining -= toWrite
	}

	return nil
}

// readCode reads the bytes at a symbol location as seen by the CPU with the
// bank of the symbol selected.
func (w Writer) readCode(loc program.SymbolLocation, size int) ([]byte, error) {
	code := make([]byte, 0, size)
	for i := range size {
		b, err := w.listing.Mapper.ReadMemory(w.listing.ROM.Data, loc.Bank, loc.Address+uint16(i))
		if err != nil {
			return nil, err
		}
		code = append(code, b)
	}
	return code, nil
}

func constants(table *symbols.Table) map[string]uint16 {
	aliases := make(map[string]uint16)
	if table == nil {
		return aliases
	}
	for _, sym := range table.Sorted() {
		if sym.Kind == symbols.Constant {
			aliases[sym.Name] = sym.Value
		}
	}
	return aliases
}
