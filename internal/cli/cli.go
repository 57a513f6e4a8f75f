// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/vecasm/internal/options"
)

// maxBankSize is the largest bank that fits the cartridge address space.
const maxBankSize = 0x8000

// ParseFlags parses command line flags and returns the program options.
// All remaining arguments are bank source files in bank order.
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}

	opts.Inputs = args
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: vecasm [options] <bank source files>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after source files, please pass the source files as last arguments", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	if opts.BankSize <= 0 || opts.BankSize > maxBankSize || opts.BankSize&(opts.BankSize-1) != 0 {
		return fmt.Errorf("invalid bank size %d, must be a power of two up to %d", opts.BankSize, maxBankSize)
	}
	if opts.Banks < 0 {
		return fmt.Errorf("invalid bank count %d", opts.Banks)
	}
	if opts.Banks > 0 && opts.HelperBank >= opts.Banks {
		return fmt.Errorf("helper bank %d out of range 0..%d", opts.HelperBank, opts.Banks-1)
	}
	if opts.HelperBank < -1 {
		opts.HelperBank = -1
	}
	if opts.Debug && opts.Quiet {
		opts.Quiet = false
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Output, "o", "", "name of the output ROM file, derived from the first source file if not given")
	flags.StringVar(&opts.Symbols, "sym", "", "name of the symbol listing file to write")
	flags.StringVar(&opts.IncludeDir, "I", "", "include directory override (default: working directory)")
	flags.StringVar(&opts.BaseDir, "base", "", "project base directory used to locate include and platform files")
	flags.IntVar(&opts.BankSize, "bank-size", options.DefaultBankSize, "size of a ROM bank in bytes")
	flags.IntVar(&opts.Banks, "banks", 0, "number of ROM banks, 0 uses one bank per source file")
	flags.IntVar(&opts.HelperBank, "helper-bank", -1, "bank that holds the cross bank trampolines (default: last bank)")
	flags.BoolVar(&opts.UseLongBranches, "long-branches", false, "emit the long form for all branches")
	flags.BoolVar(&opts.Parallel, "parallel", false, "assemble banks concurrently")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.AssembleTest, "verify", false, "verify the build by building a second time and comparing the ROM images")
}
