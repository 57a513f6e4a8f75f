package linker

import (
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vecasm/internal/assembler"
	"github.com/retroenv/vecasm/internal/mapper"
	"github.com/retroenv/vecasm/internal/options"
	"github.com/retroenv/vecasm/internal/program"
	"github.com/retroenv/vecasm/internal/symbols"
)

func newLinker(t *testing.T, bankCount int, platform *symbols.Table) *Linker {
	t.Helper()
	m, err := mapper.New(options.NewBuild(bankCount))
	assert.NoError(t, err)
	return New(log.NewTestLogger(t), m, platform)
}

func labelTable(syms ...symbols.Symbol) *symbols.Table {
	table := symbols.NewTable()
	for _, sym := range syms {
		sym.Kind = symbols.Label
		table.Set(sym)
	}
	return table
}

func TestLink(t *testing.T) {
	opts := options.NewAssembler()
	opts.ObjectMode = true
	opts.IncludeDir = t.TempDir()

	platform := symbols.NewTable()
	platform.SetPlatform("Wait_Recal", 0xF192)
	asm := assembler.New(log.NewTestLogger(t), opts, platform)

	bank0, err := asm.Assemble(program.BankSection{ID: 0, Org: 0, Lines: strings.Split(`MAIN: JSR DRAW
    JSR Wait_Recal
    LDX #TABLE+1
    BRA MAIN`, "\n")})
	assert.NoError(t, err)
	bank1, err := asm.Assemble(program.BankSection{ID: 1, Org: 0x4000, Lines: strings.Split(`DRAW: RTS
TABLE: FCB 1,2`, "\n")})
	assert.NoError(t, err)
	assert.Len(t, bank0.Unresolved, 2)

	l := newLinker(t, 2, platform)
	rom, err := l.Link([]*program.AssembledBank{bank1, bank0})
	assert.NoError(t, err)
	assert.Len(t, rom.Data, 0x8000)

	assert.Equal(t, []byte{0xBD, 0x40, 0x00, 0xBD, 0xF1, 0x92, 0x8E, 0x40, 0x02, 0x20, 0xF5}, rom.Data[:11])
	assert.Equal(t, []byte{0x39, 0x01, 0x02}, rom.Data[0x4000:0x4003])
	assert.Equal(t, byte(0), rom.Data[0x4003])

	assert.Equal(t, program.SymbolLocation{Bank: 1, Offset: 1, Address: 0x4001}, rom.Symbols["TABLE"])
	assert.Equal(t, program.SymbolLocation{Bank: 0, Offset: 0, Address: 0}, rom.Symbols["MAIN"])

	// bank outputs are not modified
	assert.Equal(t, []byte{0xBD, 0x00, 0x00}, bank0.Bytes[:3])
}

func TestLink_Relative8Range(t *testing.T) {
	tests := []struct {
		name   string
		target uint16
		value  byte
		err    bool
	}{
		{"max forward", 0x0180, 0x7F, false},
		{"max backward", 0x0081, 0x80, false},
		{"too far forward", 0x0181, 0, true},
		{"too far backward", 0x0080, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank := &program.AssembledBank{
				ID:      0,
				Bytes:   make([]byte, 0x200),
				Symbols: symbols.NewTable(),
				Unresolved: []program.UnresolvedRef{
					{Symbol: "TARGET", Offset: 0x100, Kind: program.Relative8, Address: 0x100},
				},
			}
			other := &program.AssembledBank{
				ID:      1,
				Org:     0x4000,
				Symbols: labelTable(symbols.Symbol{Name: "TARGET", Value: tt.target}),
			}

			rom, err := newLinker(t, 2, nil).Link([]*program.AssembledBank{bank, other})
			if tt.err {
				var linkErr *LinkError
				assert.True(t, errors.As(err, &linkErr))
				assert.Equal(t, "TARGET", linkErr.Symbol)
				var rangeErr *program.RangeError
				assert.True(t, errors.As(err, &rangeErr))
				assert.Nil(t, rom)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.value, rom.Data[0x100])
		})
	}
}

func TestLink_Relative16(t *testing.T) {
	bank := &program.AssembledBank{
		ID:      0,
		Bytes:   make([]byte, 0x10),
		Symbols: labelTable(symbols.Symbol{Name: "BACK", Value: 0x0000}),
		Unresolved: []program.UnresolvedRef{
			{Symbol: "BACK", Offset: 0x8, Kind: program.Relative16, Address: 0x8},
		},
	}
	rom, err := newLinker(t, 1, nil).Link([]*program.AssembledBank{bank})
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xF6}, rom.Data[0x8:0xA])
}

func TestLink_Errors(t *testing.T) {
	t.Run("unresolved symbol", func(t *testing.T) {
		bank := &program.AssembledBank{
			ID:    1,
			Org:   0x4000,
			Bytes: make([]byte, 4),
			Unresolved: []program.UnresolvedRef{
				{Symbol: "MISSING", Offset: 2, Kind: program.Absolute16, Address: 0x4002},
			},
		}
		_, err := newLinker(t, 2, nil).Link([]*program.AssembledBank{bank})

		var linkErr *LinkError
		assert.True(t, errors.As(err, &linkErr))
		assert.True(t, errors.Is(err, ErrUnresolved))
		assert.Equal(t, "MISSING", linkErr.Symbol)
		assert.Equal(t, 1, linkErr.Bank)
		assert.Equal(t, 2, linkErr.Offset)
	})

	t.Run("duplicate bank", func(t *testing.T) {
		_, err := newLinker(t, 2, nil).Link([]*program.AssembledBank{{ID: 0}, {ID: 0}})
		assert.ErrorContains(t, err, "duplicate bank id")
	})

	t.Run("bank id out of range", func(t *testing.T) {
		_, err := newLinker(t, 2, nil).Link([]*program.AssembledBank{{ID: 2}})
		assert.ErrorContains(t, err, "out of range")
	})

	t.Run("placeholder not zero filled", func(t *testing.T) {
		bank := &program.AssembledBank{
			ID:    0,
			Bytes: []byte{0xBD, 0x12, 0x00},
			Unresolved: []program.UnresolvedRef{
				{Symbol: "Wait_Recal", Offset: 1, Kind: program.Absolute16, Address: 1},
			},
		}
		platform := symbols.NewTable()
		platform.SetPlatform("Wait_Recal", 0xF192)

		_, err := newLinker(t, 1, platform).Link([]*program.AssembledBank{bank})
		assert.ErrorContains(t, err, "not zero filled")
	})

	t.Run("bank too large", func(t *testing.T) {
		_, err := newLinker(t, 1, nil).Link([]*program.AssembledBank{{ID: 0, Bytes: make([]byte, 0x4001)}})
		assert.ErrorContains(t, err, "exceeds the bank size")
	})
}
