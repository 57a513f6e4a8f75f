// Package mapper maps the ROM banks of a cartridge into the CPU address space.
package mapper

import (
	"errors"
	"fmt"

	"github.com/retroenv/vecasm/internal/options"
	"github.com/retroenv/vecasm/internal/program"
)

const (
	singleBankName        = "CODE"
	multiBankNameTemplate = "BANK_%d"

	// cartridgeSize is the size of the cartridge address space starting at $0000.
	cartridgeSize = 0x8000
)

// Mapper describes the bank layout of a cartridge. Switchable banks share the
// first bank window, the helper bank is mapped permanently into the last
// window so that it is reachable from every bank.
type Mapper struct {
	bankSize   int
	bankCount  int
	helperBank int

	addressShifts int
	windows       int
}

// New creates a mapper for the build bank configuration.
func New(build options.Build) (*Mapper, error) {
	if build.BankCount < 1 {
		return nil, fmt.Errorf("invalid bank count %d", build.BankCount)
	}
	if build.BankSize <= 0 || build.BankSize > cartridgeSize || build.BankSize&(build.BankSize-1) != 0 {
		return nil, fmt.Errorf("invalid bank size %d, must be a power of two up to %d", build.BankSize, cartridgeSize)
	}

	windows := cartridgeSize / build.BankSize
	if build.BankCount == 1 {
		windows = 1
	}

	return &Mapper{
		bankSize:      build.BankSize,
		bankCount:     build.BankCount,
		helperBank:    build.Helper(),
		addressShifts: 16 - log2(0x10000/build.BankSize),
		windows:       windows,
	}, nil
}

// BankSize returns the size of a bank in bytes.
func (m *Mapper) BankSize() int {
	return m.bankSize
}

// BankCount returns the number of banks.
func (m *Mapper) BankCount() int {
	return m.bankCount
}

// HelperBank returns the bank that is always mapped.
func (m *Mapper) HelperBank() int {
	return m.helperBank
}

// ROMSize returns the size of the linked ROM image.
func (m *Mapper) ROMSize() int {
	return m.bankSize * m.bankCount
}

// BankOrg returns the address that a bank is mapped to.
func (m *Mapper) BankOrg(bank int) uint16 {
	if m.bankCount == 1 || m.windows == 1 || bank != m.helperBank {
		return 0
	}
	return uint16((m.windows - 1) * m.bankSize)
}

// Window returns the bank window index of an address.
func (m *Mapper) Window(address uint16) int {
	return int(address >> m.addressShifts)
}

// BankName returns the name of a bank used in listings.
func (m *Mapper) BankName(bank int) string {
	if bank == 0 && m.bankCount == 1 {
		return singleBankName
	}
	return fmt.Sprintf(multiBankNameTemplate, bank)
}

// ROMOffset returns the offset in the ROM image of a bank address.
func (m *Mapper) ROMOffset(bank int, address uint16) int {
	return bank*m.bankSize + int(address)%m.bankSize
}

// ValidateBank checks that the output of an assembled bank fits into its bank
// and starts at the beginning of the bank window it is mapped to.
func (m *Mapper) ValidateBank(bank *program.AssembledBank) error {
	if bank.ID < 0 || bank.ID >= m.bankCount {
		return fmt.Errorf("bank id %d out of range 0..%d", bank.ID, m.bankCount-1)
	}
	if len(bank.Bytes) > m.bankSize {
		return fmt.Errorf("bank %d output of %d bytes exceeds the bank size of %d bytes",
			bank.ID, len(bank.Bytes), m.bankSize)
	}
	if m.bankCount == 1 {
		return nil
	}

	if int(bank.Org)%m.bankSize != 0 {
		return fmt.Errorf("bank %d origin $%04X is not aligned to the bank window", bank.ID, bank.Org)
	}
	return nil
}

// ReadMemory reads a byte of the ROM image as seen by the CPU when the
// given bank is selected.
func (m *Mapper) ReadMemory(rom []byte, selected int, address uint16) (byte, error) {
	if int(address) >= cartridgeSize {
		return 0, errors.New("address outside of the cartridge space")
	}

	bank := selected
	if m.windows > 1 && m.Window(address) == m.windows-1 {
		bank = m.helperBank
	}
	offset := m.ROMOffset(bank, address)
	if offset >= len(rom) {
		return 0, fmt.Errorf("address $%04X of bank %d outside of the ROM image", address, bank)
	}
	return rom[offset], nil
}

// log2 computes the binary logarithm of x, rounded up to the next integer.
func log2(i int) int {
	var n, p int
	for p = 1; p < i; p += p {
		n++
	}
	return n
}
