// Package pipeline orchestrates the build workflow stages.
package pipeline

import (
	"context"
	"fmt"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vecasm/internal/assembler"
	"github.com/retroenv/vecasm/internal/callgraph"
	"github.com/retroenv/vecasm/internal/linker"
	"github.com/retroenv/vecasm/internal/mapper"
	"github.com/retroenv/vecasm/internal/options"
	"github.com/retroenv/vecasm/internal/program"
	"github.com/retroenv/vecasm/internal/symbols"
	"github.com/retroenv/vecasm/internal/trampoline"
	"golang.org/x/sync/errgroup"
)

// MultibankError is returned for any failure of a build that requires more
// than one bank. Such builds never fall back to a single bank layout.
type MultibankError struct {
	BankCount int
	Err       error
}

func (e *MultibankError) Error() string {
	return fmt.Sprintf("multibank build with %d banks failed: %s", e.BankCount, e.Err)
}

func (e *MultibankError) Unwrap() error {
	return e.Err
}

// Graph is a call graph with its routine to bank assignment. It is derived
// from the bank sources if not passed to the build.
type Graph struct {
	Program    *callgraph.Program
	Assignment callgraph.Assignment
}

// Input contains everything a build consumes.
type Input struct {
	Sections []program.BankSection
	Graph    *Graph         // optional
	Platform *symbols.Table // optional platform symbols
}

// Result is the output of a successful build.
type Result struct {
	ROM         *program.LinkedROM
	Banks       []*program.AssembledBank
	CrossBank   *callgraph.Result
	Trampolines *trampoline.Set
	Mapper      *mapper.Mapper
}

// Warnings returns the warnings of all banks in bank order.
func (r *Result) Warnings() []string {
	var warnings []string
	for _, bank := range r.Banks {
		warnings = append(warnings, bank.Warnings...)
	}
	return warnings
}

// Pipeline orchestrates the complete build workflow.
type Pipeline struct {
	logger *log.Logger
}

// New creates a new build pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
	}
}

// Build assembles and links the bank sections into a ROM image. Nothing is
// returned on failure.
func (p *Pipeline) Build(ctx context.Context, build options.Build, input Input) (*Result, error) {
	res, err := p.build(ctx, build, input)
	if err != nil {
		if build.Multibank() {
			return nil, &MultibankError{BankCount: build.BankCount, Err: err}
		}
		return nil, err
	}
	return res, nil
}

func (p *Pipeline) build(ctx context.Context, build options.Build, input Input) (*Result, error) {
	m, err := mapper.New(build)
	if err != nil {
		return nil, fmt.Errorf("creating bank mapper: %w", err)
	}
	if len(input.Sections) > build.BankCount {
		return nil, fmt.Errorf("%d bank sections exceed the bank count of %d", len(input.Sections), build.BankCount)
	}

	sections := p.completeSections(m, input.Sections)
	res := &Result{Mapper: m}

	if build.Multibank() {
		sections, err = p.wrapCrossBankCalls(build, sections, input.Graph, res)
		if err != nil {
			return nil, err
		}
	}

	asmOpts := build.Assembler
	asmOpts.ObjectMode = build.Multibank()
	asm := assembler.New(p.logger, asmOpts, input.Platform)

	banks, err := p.assembleBanks(ctx, asm, sections, build.Parallel)
	if err != nil {
		return nil, err
	}
	res.Banks = banks

	lnk := linker.New(p.logger, m, input.Platform)
	rom, err := lnk.Link(banks)
	if err != nil {
		return nil, fmt.Errorf("linking: %w", err)
	}
	res.ROM = rom

	p.logger.Debug("Build complete",
		log.Int("banks", build.BankCount),
		log.Int("trampolines", res.Trampolines.Len()),
		log.Int("size", len(rom.Data)))
	return res, nil
}

// completeSections returns the sections sorted by bank id with an empty
// section for every bank that has no source. Banks without explicit origin
// are placed at the address of their bank window.
func (p *Pipeline) completeSections(m *mapper.Mapper, input []program.BankSection) []program.BankSection {
	sections := make([]program.BankSection, m.BankCount())
	for i := range sections {
		sections[i] = program.BankSection{
			ID:   i,
			Org:  m.BankOrg(i),
			Name: m.BankName(i),
		}
	}
	for _, section := range input {
		if section.ID < 0 || section.ID >= len(sections) {
			continue // reported by the linker bank validation
		}
		if section.Org == 0 {
			section.Org = m.BankOrg(section.ID)
		}
		if section.Name == "" {
			section.Name = m.BankName(section.ID)
		}
		sections[section.ID] = section
	}
	return sections
}

// wrapCrossBankCalls finds all calls between banks, generates trampolines,
// rewrites the call sites and appends the trampolines to the helper bank.
func (p *Pipeline) wrapCrossBankCalls(build options.Build, sections []program.BankSection,
	graph *Graph, res *Result) ([]program.BankSection, error) {

	if graph == nil {
		prog, assignment := callgraph.FromAssembly(sections)
		graph = &Graph{Program: prog, Assignment: assignment}
	}

	res.CrossBank = callgraph.Analyze(graph.Program, graph.Assignment)
	res.Trampolines = trampoline.Generate(res.CrossBank.Pairs, build)
	if res.Trampolines.Len() == 0 {
		return sections, nil
	}

	rewritten := make([]program.BankSection, len(sections))
	for i, section := range sections {
		section, count := res.Trampolines.Rewrite(section)
		rewritten[i] = section
		if count > 0 {
			p.logger.Debug("Rewrote cross bank calls",
				log.Int("bank", section.ID),
				log.Int("calls", count))
		}
	}

	helper := res.Trampolines.HelperBank()
	if helper < 0 || helper >= len(rewritten) {
		return nil, fmt.Errorf("helper bank %d out of range", helper)
	}
	lines := make([]string, 0, len(rewritten[helper].Lines)+len(res.Trampolines.Source()))
	lines = append(lines, rewritten[helper].Lines...)
	lines = append(lines, res.Trampolines.Source()...)
	rewritten[helper].Lines = lines

	p.logger.Info("Generated cross bank trampolines",
		log.Int("count", res.Trampolines.Len()),
		log.Int("call_sites", len(res.CrossBank.Sites)),
		log.Int("helper_bank", helper))
	return rewritten, nil
}

// assembleBanks assembles all sections. In parallel mode every bank is
// assembled in its own goroutine, the function returns after all of them
// completed.
func (p *Pipeline) assembleBanks(ctx context.Context, asm *assembler.Assembler,
	sections []program.BankSection, parallel bool) ([]*program.AssembledBank, error) {

	banks := make([]*program.AssembledBank, len(sections))

	if !parallel {
		for i, section := range sections {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("assembling bank %d: %w", section.ID, err)
			}
			bank, err := asm.Assemble(section)
			if err != nil {
				return nil, err
			}
			banks[i] = bank
		}
		return banks, nil
	}

	group, ctx := errgroup.WithContext(ctx)
	for i, section := range sections {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("assembling bank %d: %w", section.ID, err)
			}
			bank, err := asm.Assemble(section)
			if err != nil {
				return err
			}
			banks[i] = bank
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return banks, nil
}
