// Package verification verifies that a build is reproducible and that the
// written ROM file matches the linked image.
package verification

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vecasm/internal/options"
	"github.com/retroenv/vecasm/internal/pipeline"
)

// maxReportedDiffs limits the number of logged mismatches.
const maxReportedDiffs = 10

// VerifyOutput rebuilds the input with the opposite assembly scheduling and
// checks that the result and the written output file equal the linked ROM.
func VerifyOutput(ctx context.Context, logger *log.Logger, opts options.Program,
	build options.Build, input pipeline.Input, rom []byte) error {

	if opts.Output == "" {
		return errors.New("can not verify without output file")
	}

	written, err := os.ReadFile(opts.Output)
	if err != nil {
		return fmt.Errorf("reading output file for comparison: %w", err)
	}
	if err := checkBufferEqual(logger, rom, written); err != nil {
		return fmt.Errorf("output file mismatch: %w", err)
	}

	build.Parallel = !build.Parallel
	res, err := pipeline.New(logger).Build(ctx, build, input)
	if err != nil {
		return fmt.Errorf("rebuilding: %w", err)
	}
	if err := checkBufferEqual(logger, rom, res.ROM.Data); err != nil {
		return fmt.Errorf("rebuild mismatch: %w", err)
	}
	return nil
}

func checkBufferEqual(logger *log.Logger, input, output []byte) error {
	if len(input) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(input), len(output))
	}

	var diffs uint64
	for i := range input {
		if input[i] == output[i] {
			continue
		}

		diffs++
		if diffs < maxReportedDiffs {
			logger.Error("Offset mismatch",
				log.Hex("offset", i),
				log.Hex("expected", input[i]),
				log.Hex("got", output[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d offset mismatches", diffs)
}
