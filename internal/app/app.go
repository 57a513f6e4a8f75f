// Package app provides the main application helper for the assembler.
package app

import (
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vecasm/internal/options"
	"github.com/retroenv/vecasm/internal/platform"
)

// PrintInfo prints the information about the input files and the bank layout.
func PrintInfo(logger *log.Logger, opts options.Program, build options.Build, plat *platform.Table) {
	if opts.Quiet {
		return
	}

	logger.Info("Assembling Vectrex ROM",
		log.String("files", strings.Join(opts.Inputs, ", ")),
		log.Int("banks", build.BankCount),
		log.Hex("bank_size", build.BankSize),
	)

	if build.Multibank() {
		logger.Info("Multibank layout",
			log.Int("helper_bank", build.Helper()),
			log.Hex("bank_register", build.BankRegister),
			log.Hex("bank_variable", build.BankVariable),
		)
	}

	if plat != nil && !plat.Fallback {
		logger.Info("Platform symbols",
			log.String("file", plat.Source),
			log.Int("symbols", plat.Symbols.Len()),
		)
	}
}
