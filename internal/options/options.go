// Package options contains the program options.
package options

// Parameters contains file path options.
type Parameters struct {
	Output     string `flag:"o" usage:"output ROM file"`
	Symbols    string `flag:"sym" usage:"output symbol listing file"`
	IncludeDir string `flag:"I" usage:"include directory override (default: working directory)"`
	BaseDir    string `flag:"base" usage:"project base directory used to locate include and platform files"`
}

// Flags contains behavior options.
type Flags struct {
	BankSize        int  `flag:"bank-size" usage:"size of a ROM bank in bytes" default:"16384"`
	Banks           int  `flag:"banks" usage:"number of ROM banks, 0 uses one bank per source file"`
	HelperBank      int  `flag:"helper-bank" usage:"bank that holds the cross bank trampolines (default: last bank)"`
	UseLongBranches bool `flag:"long-branches" usage:"emit long forms for all branches"`
	Parallel        bool `flag:"parallel" usage:"assemble banks concurrently"`
	AssembleTest    bool `flag:"verify" usage:"verify the build is deterministic by building twice"`
	Debug           bool `flag:"debug" usage:"enable debug logging"`
	Quiet           bool `flag:"q" usage:"quiet mode"`
}

// Program options of the assembler command.
type Program struct {
	Parameters
	Flags

	Inputs []string // bank source files in bank order
}

// Default bank configuration of a Vectrex multibank cartridge.
const (
	DefaultBankSize       = 0x4000
	DefaultBankRegister   = 0xDF00 // write only bank select latch
	DefaultBankVariable   = 0xCBFC // RAM byte holding the selected bank
	DefaultMaxEquPasses   = 10
	DefaultOrgWarningSize = 0x1000
)

// Assembler defines options to control a single bank assembler run. It is set
// up once before the first run and read-only afterwards.
type Assembler struct {
	ObjectMode      bool   // tolerate unknown symbols and record them for the linker
	UseLongBranches bool   // emit long forms for all short branch mnemonics
	IncludeDir      string // include directory override, the working directory is used if empty
	BaseDir         string // project base directory

	MaxEquPasses   int // iteration cap of the EQU fixed-point resolution
	OrgWarningSize int // forward ORG gaps larger than this are reported
}

// NewAssembler returns assembler options with default settings.
func NewAssembler() Assembler {
	return Assembler{
		MaxEquPasses:   DefaultMaxEquPasses,
		OrgWarningSize: DefaultOrgWarningSize,
	}
}

// Build defines the bank layout and linking options of a build.
type Build struct {
	Assembler Assembler

	BankSize     int    // size of a bank in bytes
	BankCount    int    // number of banks the ROM consists of
	HelperBank   int    // bank that contains the trampolines, -1 selects the last bank
	BankRegister uint16 // hardware bank select register
	BankVariable uint16 // RAM variable that mirrors the selected bank
	Parallel     bool   // assemble banks concurrently
}

// NewBuild returns build options with default settings.
func NewBuild(bankCount int) Build {
	return Build{
		Assembler:    NewAssembler(),
		BankSize:     DefaultBankSize,
		BankCount:    bankCount,
		HelperBank:   -1,
		BankRegister: DefaultBankRegister,
		BankVariable: DefaultBankVariable,
	}
}

// Multibank returns whether the build requires more than one bank.
func (b Build) Multibank() bool {
	return b.BankCount > 1
}

// Helper returns the bank number that holds the trampolines.
func (b Build) Helper() int {
	if b.HelperBank < 0 || b.HelperBank >= b.BankCount {
		return b.BankCount - 1
	}
	return b.HelperBank
}
