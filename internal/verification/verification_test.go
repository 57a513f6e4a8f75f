package verification

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vecasm/internal/options"
	"github.com/retroenv/vecasm/internal/pipeline"
	"github.com/retroenv/vecasm/internal/program"
)

func TestCheckBufferEqual(t *testing.T) {
	logger := log.NewTestLogger(t)

	assert.NoError(t, checkBufferEqual(logger, []byte{1, 2, 3}, []byte{1, 2, 3}))
	assert.ErrorContains(t, checkBufferEqual(logger, []byte{1, 2}, []byte{1}), "mismatched lengths")
	assert.ErrorContains(t, checkBufferEqual(logger, []byte{1, 2, 3}, []byte{0, 2, 0}), "2 offset mismatches")
}

func TestVerifyOutput(t *testing.T) {
	logger := log.NewTestLogger(t)
	dir := t.TempDir()

	build := options.NewBuild(2)
	build.Assembler.IncludeDir = dir
	build.Assembler.BaseDir = dir
	input := pipeline.Input{Sections: []program.BankSection{
		{ID: 0, Lines: strings.Split("MAIN: JSR DRAW\n    RTS", "\n")},
		{ID: 1, Lines: []string{"DRAW: RTS"}},
	}}

	res, err := pipeline.New(logger).Build(context.Background(), build, input)
	assert.NoError(t, err)

	opts := options.Program{}
	opts.Output = filepath.Join(dir, "game.bin")
	assert.NoError(t, os.WriteFile(opts.Output, res.ROM.Data, 0o644))

	assert.NoError(t, VerifyOutput(context.Background(), logger, opts, build, input, res.ROM.Data))

	corrupted := append([]byte(nil), res.ROM.Data...)
	corrupted[0] ^= 0xFF
	assert.NoError(t, os.WriteFile(opts.Output, corrupted, 0o644))
	err = VerifyOutput(context.Background(), logger, opts, build, input, res.ROM.Data)
	assert.ErrorContains(t, err, "output file mismatch")

	opts.Output = ""
	assert.Error(t, VerifyOutput(context.Background(), logger, opts, build, input, res.ROM.Data))
}
