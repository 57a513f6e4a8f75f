// Package assembler implements the 6809 assembler that translates the source
// of a single bank into machine code.
package assembler

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vecasm/internal/consts"
	"github.com/retroenv/vecasm/internal/options"
	"github.com/retroenv/vecasm/internal/parser"
	"github.com/retroenv/vecasm/internal/program"
	"github.com/retroenv/vecasm/internal/symbols"
)

// Assembler assembles bank sections. It is safe for concurrent use, every
// Assemble call works on its own state.
type Assembler struct {
	logger   *log.Logger
	opts     options.Assembler
	platform *symbols.Table
}

// New returns a new assembler. The platform table is shared read-only by all runs.
func New(logger *log.Logger, opts options.Assembler, platform *symbols.Table) *Assembler {
	if platform == nil {
		platform = symbols.NewTable()
	}
	if opts.MaxEquPasses <= 0 {
		opts.MaxEquPasses = options.DefaultMaxEquPasses
	}
	return &Assembler{
		logger:   logger,
		opts:     opts,
		platform: platform,
	}
}

// run contains the state of a single bank assembly.
type run struct {
	logger   *log.Logger
	opts     options.Assembler
	platform *symbols.Table

	consts *consts.Result
	labels *symbols.Table
	scope  *parser.Scope

	bank    *program.AssembledBank
	output  []byte
	address uint16
	dp      int // known direct page high byte, -1 if unknown

	fixups     []fixup
	equAddress map[int]uint16 // address of every EQU line by line number
	line       parser.Line
}

// Assemble assembles the source lines of a bank section.
func (a *Assembler) Assemble(section program.BankSection) (*program.AssembledBank, error) {
	resolver := consts.New(a.logger, a.opts, a.platform)
	res, err := resolver.Resolve(section.Lines)
	if err != nil {
		return nil, fmt.Errorf("resolving constants of bank %d: %w", section.ID, err)
	}

	r := &run{
		logger:   a.logger,
		opts:     a.opts,
		platform: a.platform,
		consts:   res,
		labels:   symbols.NewTable(),
		scope:    &parser.Scope{},
		bank: &program.AssembledBank{
			ID:       section.ID,
			Org:      section.Org,
			Warnings: append([]string(nil), res.Warnings...),
		},
		address:    section.Org,
		dp:         -1,
		equAddress: make(map[int]uint16),
	}

	for i, text := range section.Lines {
		line, err := parser.Parse(i+1, text, r.scope)
		if err != nil {
			return nil, fmt.Errorf("assembling bank %d: %w", section.ID, err)
		}
		r.line = line
		if err := r.processLine(line); err != nil {
			return nil, fmt.Errorf("assembling bank %d: %w", section.ID, err)
		}
	}

	if err := r.resolveSymbolsWithEquates(); err != nil {
		return nil, fmt.Errorf("assembling bank %d: %w", section.ID, err)
	}

	r.bank.Bytes = r.output
	r.bank.Symbols = r.symbolTable()

	a.logger.Debug("Assembled bank",
		log.Int("bank", section.ID),
		log.Hex("org", section.Org),
		log.Int("size", len(r.output)),
		log.Int("symbols", r.labels.Len()),
		log.Int("unresolved", len(r.bank.Unresolved)))
	return r.bank, nil
}

// processLine dispatches a parsed line to the directive or instruction handlers.
func (r *run) processLine(line parser.Line) error {
	if line.IsEmpty() {
		return nil
	}
	if line.SourceLine > 0 {
		r.bank.LineMap = append(r.bank.LineMap, program.LineMapping{
			Address:    r.address,
			Offset:     len(r.output),
			SourceLine: line.SourceLine,
		})
		return nil
	}

	switch line.Op {
	case parser.DirectiveEqu:
		r.equAddress[line.Number] = r.address
		return nil // handled by the constant resolver
	case parser.DirectiveInclude:
		return nil
	}

	if line.Label != "" {
		if err := r.defineLabel(line.Label); err != nil {
			return err
		}
	}

	switch {
	case line.Op == "":
		return nil
	case line.IsDirective():
		return r.directive(line)
	}

	if handler, ok := dataDirectives[line.Op]; ok {
		return handler(r, line.Operand)
	}
	return r.instruction(line)
}

func (r *run) directive(line parser.Line) error {
	switch line.Op {
	case parser.DirectiveOrg:
		return r.org(line.Operand)
	case parser.DirectiveSetDP:
		return r.setDP(line.Operand)
	default: // END
		return nil
	}
}

// defineLabel adds a label for the current address. Labels can not be defined
// twice and can not use the name of a constant.
func (r *run) defineLabel(name string) error {
	if r.consts.Constants.Has(name) {
		return r.errorf("label '%s' is already defined as constant", name)
	}

	sym := symbols.Symbol{
		Name:   name,
		Value:  r.address,
		Kind:   symbols.Label,
		Offset: len(r.output),
	}
	if err := r.labels.Define(sym); err != nil {
		return r.wrap(err)
	}
	return nil
}

// org changes the current address. Forward gaps are zero filled.
func (r *run) org(operand string) error {
	value, err := r.evalKnown(operand)
	if err != nil {
		return err
	}
	if value < 0 || value > 0xffff {
		return r.errorf("ORG address %d out of range", value)
	}

	address := uint16(value)
	if len(r.output) == 0 {
		r.address = address
		r.bank.Org = address
		return nil
	}
	if address < r.address {
		return r.errorf("ORG $%04X is below the current address $%04X", address, r.address)
	}

	gap := int(address - r.address)
	if gap > r.opts.OrgWarningSize && r.opts.OrgWarningSize > 0 {
		msg := fmt.Sprintf("line %d: ORG $%04X pads %d bytes", r.line.Number, address, gap)
		r.bank.Warnings = append(r.bank.Warnings, msg)
		r.logger.Warn("Large ORG padding",
			log.Int("bank", r.bank.ID),
			log.Int("line", r.line.Number),
			log.Int("bytes", gap))
	}
	return r.emit(make([]byte, gap)...)
}

// setDP sets the known direct page high byte.
func (r *run) setDP(operand string) error {
	value, err := r.evalKnown(operand)
	if err != nil {
		return err
	}
	switch {
	case value < 0:
		r.dp = -1
	case value <= 0xff:
		r.dp = value
	case value <= 0xffff:
		r.dp = value >> 8
	default:
		return r.errorf("direct page %d out of range", value)
	}
	return nil
}

// emit appends bytes to the output and advances the current address.
func (r *run) emit(data ...byte) error {
	if int(r.address)+len(data) > 0x10000 {
		return r.errorf("code exceeds the 64k address space")
	}
	r.output = append(r.output, data...)
	r.address += uint16(len(data))
	return nil
}

// symbolTable returns the bank symbol table containing labels and constants.
func (r *run) symbolTable() *symbols.Table {
	table := symbols.NewTable()
	for _, sym := range r.consts.Constants.Sorted() {
		table.Set(sym)
	}
	for _, sym := range r.labels.Sorted() {
		table.Set(sym)
	}
	return table
}

// errorf returns a parse error for the current line.
func (r *run) errorf(format string, args ...any) error {
	return r.wrap(fmt.Errorf(format, args...))
}

func (r *run) wrap(err error) error {
	return &parser.Error{Line: r.line.Number, Text: r.line.Text, Err: err}
}
