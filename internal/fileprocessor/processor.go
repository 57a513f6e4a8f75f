// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vecasm/internal/app"
	"github.com/retroenv/vecasm/internal/config"
	"github.com/retroenv/vecasm/internal/loader"
	"github.com/retroenv/vecasm/internal/options"
	"github.com/retroenv/vecasm/internal/pipeline"
	"github.com/retroenv/vecasm/internal/platform"
	"github.com/retroenv/vecasm/internal/verification"
	"github.com/retroenv/vecasm/internal/writer"
)

// ProcessFile handles the complete build workflow of the input files. The ROM
// file is only replaced once the build succeeded.
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program) error {
	sections, err := loader.New().Load(opts)
	if err != nil {
		return fmt.Errorf("loading sources: %w", err)
	}

	plat, err := platform.Load(logger, opts.BaseDir)
	if err != nil {
		return fmt.Errorf("loading platform symbols: %w", err)
	}

	build := config.BuildOptions(opts, len(sections))
	app.PrintInfo(logger, opts, build, plat)

	input := pipeline.Input{
		Sections: sections,
		Platform: plat.Symbols,
	}
	res, err := pipeline.New(logger).Build(ctx, build, input)
	if err != nil {
		return fmt.Errorf("building: %w", err)
	}
	for _, warning := range res.Warnings() {
		logger.Warn(warning)
	}

	if opts.Output == "" {
		opts.Output = GenerateOutputFilename(opts.Inputs[0])
	}
	if err := writeFileAtomic(opts.Output, res.ROM.Data); err != nil {
		return fmt.Errorf("writing ROM: %w", err)
	}
	logger.Info("ROM written",
		log.String("file", opts.Output),
		log.Int("size", len(res.ROM.Data)))

	if opts.Symbols != "" {
		if err := writeListing(opts.Symbols, res); err != nil {
			return fmt.Errorf("writing symbol listing: %w", err)
		}
	}

	if opts.AssembleTest {
		if err := verification.VerifyOutput(ctx, logger, opts, build, input, res.ROM.Data); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		logger.Info("Verification successful")
	}

	return nil
}

// GenerateOutputFilename generates output filename for a given input file
func GenerateOutputFilename(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + ".bin"
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("vecasm", log.String("version", buildinfo.Version(version, commit, date)))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}

func writeListing(path string, res *pipeline.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}

	listing := writer.Listing{
		ROM:         res.ROM,
		Banks:       res.Banks,
		Mapper:      res.Mapper,
		Trampolines: res.Trampolines,
	}
	if err := writer.New(listing, file).Write(); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", path, err)
	}
	return nil
}

// writeFileAtomic writes the data to a temporary file next to the target
// and renames it, an existing file stays untouched on failure.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
