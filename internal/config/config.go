// Package config handles application configuration and setup
package config

import (
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vecasm/internal/options"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// BuildOptions creates the build options from the program options. The bank
// count defaults to the number of loaded bank sections.
func BuildOptions(opts options.Program, sections int) options.Build {
	banks := opts.Banks
	if banks == 0 {
		banks = max(sections, 1)
	}

	build := options.NewBuild(banks)
	if opts.BankSize != 0 {
		build.BankSize = opts.BankSize
	}
	build.HelperBank = opts.HelperBank
	build.Parallel = opts.Parallel

	build.Assembler.UseLongBranches = opts.UseLongBranches
	build.Assembler.IncludeDir = opts.IncludeDir
	build.Assembler.BaseDir = opts.BaseDir
	return build
}
