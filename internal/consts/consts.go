// Package consts resolves the EQU constants of a bank source before it is
// assembled. Constants may be defined in any order and in included files.
package consts

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vecasm/internal/expr"
	"github.com/retroenv/vecasm/internal/options"
	"github.com/retroenv/vecasm/internal/parser"
	"github.com/retroenv/vecasm/internal/symbols"
	"golang.org/x/exp/slices"
)

// Definition is a constant definition whose expression could not be evaluated
// before assembling.
type Definition struct {
	Name string
	Expr string
	Line int

	// Capped is set if the definition still waited for another pending
	// constant when the iteration cap was reached. It never gets resolved.
	Capped bool
}

// Result contains the constant table of a bank source.
type Result struct {
	Constants  *symbols.Table // resolved EQU constants, without platform symbols
	Pending    []Definition   // definitions left unresolved after the iteration cap
	Includes   []string       // paths of the include files that were merged
	Warnings   []string
	Iterations int // number of fixed-point iterations that were run
}

// Unresolved returns the sorted names of all pending definitions.
func (r *Result) Unresolved() []string {
	names := make([]string, 0, len(r.Pending))
	for _, def := range r.Pending {
		names = append(names, def.Name)
	}
	slices.Sort(names)
	return names
}

// Resolver collects the constants of a bank source.
type Resolver struct {
	logger   *log.Logger
	opts     options.Assembler
	platform *symbols.Table
}

// New returns a new constant resolver. The platform table is used for lookups
// but never modified.
func New(logger *log.Logger, opts options.Assembler, platform *symbols.Table) *Resolver {
	if platform == nil {
		platform = symbols.NewTable()
	}
	if opts.MaxEquPasses <= 0 {
		opts.MaxEquPasses = options.DefaultMaxEquPasses
	}
	return &Resolver{
		logger:   logger,
		opts:     opts,
		platform: platform,
	}
}

// lookup is the expression scope of constant definitions.
type lookup struct {
	scope     *parser.Scope
	constants *symbols.Table
	platform  *symbols.Table
}

func (l lookup) Qualify(name string) string {
	return l.scope.Qualify(name)
}

func (l lookup) Lookup(name string) (uint16, bool) {
	if value, ok := l.constants.Value(name); ok {
		return value, true
	}
	return l.platform.Value(name)
}

// Resolve scans the source lines for EQU definitions and include directives
// and resolves all constants that do not depend on label addresses. Invalid
// definitions are left pending with a warning, only a failing include file
// read returns an error.
func (r *Resolver) Resolve(lines []string) (*Result, error) {
	res := &Result{
		Constants: symbols.NewTable(),
	}
	scope := &parser.Scope{}

	var deferred []Definition
	for i, text := range lines {
		line, err := parser.Parse(i+1, text, scope)
		if err != nil {
			// syntax errors are reported by the assembler pass with full context
			continue
		}

		switch line.Op {
		case parser.DirectiveEqu:
			def := Definition{Name: line.Label, Expr: line.Operand, Line: line.Number}
			ok, err := r.define(res, scope, def)
			if err != nil {
				r.reject(res, def, err)
				continue
			}
			if !ok {
				deferred = append(deferred, def)
			}

		case parser.DirectiveInclude:
			if err := r.include(res, line); err != nil {
				return nil, err
			}
		}
	}

	deferred = r.iterate(res, deferred)
	res.Pending = append(res.Pending, deferred...)

	if len(res.Pending) > 0 {
		r.logger.Debug("Unresolved constants after EQU resolution",
			log.Int("count", len(res.Pending)),
			log.Int("iterations", res.Iterations),
			log.String("names", strings.Join(res.Unresolved(), ",")))
	}
	return res, nil
}

// iterate evaluates the deferred definitions repeatedly until no definition
// can be resolved anymore or the iteration cap is reached.
func (r *Resolver) iterate(res *Result, deferred []Definition) []Definition {
	stalled := false
	for len(deferred) > 0 && res.Iterations < r.opts.MaxEquPasses {
		res.Iterations++

		var remaining []Definition
		for _, def := range deferred {
			ok, err := r.define(res, nil, def)
			if err != nil {
				r.reject(res, def, err)
				continue
			}
			if !ok {
				remaining = append(remaining, def)
			}
		}

		progress := len(remaining) < len(deferred)
		deferred = remaining
		if !progress {
			stalled = true
			break
		}
	}

	if !stalled && len(deferred) > 0 {
		r.markCapped(res, deferred)
	}
	return deferred
}

// markCapped flags the definitions that were cut off by the iteration cap.
// Only definitions that wait for a name which is not a deferred constant,
// a label or the location counter, stay open for the assembler pass.
func (r *Resolver) markCapped(res *Result, deferred []Definition) {
	names := make(map[string]struct{}, len(deferred))
	for _, def := range deferred {
		names[def.Name] = struct{}{}
	}

	for i, def := range deferred {
		l := lookup{scope: scopeOf(def.Name), constants: res.Constants, platform: r.platform}
		_, err := expr.Eval(def.Expr, l)

		var undefined *expr.UndefinedError
		if errors.As(err, &undefined) {
			if _, ok := names[undefined.Name]; !ok {
				continue
			}
		}
		deferred[i].Capped = true
	}
}

// reject keeps an invalid definition pending, the assembler pass reports it
// with the line context.
func (r *Resolver) reject(res *Result, def Definition, err error) {
	res.Warnings = append(res.Warnings, err.Error())
	res.Pending = append(res.Pending, def)
	r.logger.Debug("Invalid constant definition",
		log.String("name", def.Name),
		log.Err(err))
}

// define evaluates a definition and adds it to the constant table. It returns
// false if the expression references a symbol that is not known yet. The
// definition name is already qualified, the scope is only used to qualify
// local names inside the expression.
func (r *Resolver) define(res *Result, scope *parser.Scope, def Definition) (bool, error) {
	if scope == nil {
		scope = scopeOf(def.Name)
	}
	l := lookup{scope: scope, constants: res.Constants, platform: r.platform}

	value, err := expr.Eval(def.Expr, l)
	if err != nil {
		if expr.IsUndefined(err) {
			return false, nil
		}
		return false, &parser.Error{Line: def.Line, Text: def.Name + " EQU " + def.Expr, Err: err}
	}
	if value < -0x8000 || value > 0xffff {
		return false, &parser.Error{
			Line: def.Line,
			Text: def.Name + " EQU " + def.Expr,
			Err:  fmt.Errorf("constant value %d does not fit into 16 bits", value),
		}
	}

	sym := symbols.Symbol{Name: def.Name, Value: uint16(value), Kind: symbols.Constant}
	if existing, ok := res.Constants.Get(def.Name); ok {
		if existing.Value != sym.Value {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"line %d: constant '%s' redefined as $%04X, keeping $%04X",
				def.Line, def.Name, sym.Value, existing.Value))
		}
		return true, nil
	}

	res.Constants.Set(sym)
	return true, nil
}

// include merges the EQU constants of an include file that evaluate
// immediately. A missing include file only causes a warning.
func (r *Resolver) include(res *Result, line parser.Line) error {
	name, err := parser.IncludePath(line.Operand)
	if err != nil {
		return &parser.Error{Line: line.Number, Text: line.Text, Err: err}
	}

	path, ok, err := FindInclude(r.opts, name)
	if err != nil {
		return err
	}
	if !ok {
		msg := fmt.Sprintf("line %d: include file '%s' not found", line.Number, name)
		res.Warnings = append(res.Warnings, msg)
		r.logger.Warn("Include file not found",
			log.String("file", name),
			log.Int("line", line.Number))
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening include file '%s': %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	scope := &parser.Scope{}
	merged := 0
	scanner := bufio.NewScanner(file)
	for number := 1; scanner.Scan(); number++ {
		incLine, err := parser.Parse(number, scanner.Text(), scope)
		if err != nil || incLine.Op != parser.DirectiveEqu {
			continue
		}

		def := Definition{Name: incLine.Label, Expr: incLine.Operand, Line: number}
		ok, err := r.define(res, scope, def)
		if err != nil {
			r.logger.Warn("Skipping invalid include constant",
				log.String("file", path),
				log.Err(err))
			continue
		}
		if ok {
			merged++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading include file '%s': %w", path, err)
	}

	res.Includes = append(res.Includes, path)
	r.logger.Debug("Merged include constants",
		log.String("file", path),
		log.Int("constants", merged))
	return nil
}

// scopeOf restores the label scope of a qualified local constant name.
func scopeOf(name string) *parser.Scope {
	scope := &parser.Scope{}
	if idx := strings.IndexByte(name, '.'); idx > 0 {
		scope.Define(name[:idx])
	}
	return scope
}
