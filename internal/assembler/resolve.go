package assembler

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vecasm/internal/consts"
	"github.com/retroenv/vecasm/internal/expr"
	"github.com/retroenv/vecasm/internal/parser"
	"github.com/retroenv/vecasm/internal/program"
	"github.com/retroenv/vecasm/internal/symbols"
)

// resolveSymbolsWithEquates runs after all lines are processed. Constants
// that depend on labels are evaluated first, then all deferred operands are
// patched using the complete bank symbol table. Remaining references become
// unresolved references for the linker in object mode, otherwise the first
// one is a fatal error.
func (r *run) resolveSymbolsWithEquates() error {
	if err := r.resolvePendingConstants(); err != nil {
		return err
	}

	for _, fix := range r.fixups {
		r.line = fix.line
		scope := evalScope{r: r, scope: scopeWithGlobal(fix.global), pc: fix.pc}

		value, err := expr.Eval(fix.expr, scope)
		if err == nil {
			data, err := encodeValue(fix.kind, value, fix.address, fix.dp)
			if err != nil {
				return r.wrap(err)
			}
			copy(r.output[fix.offset:], data)
			continue
		}

		var undefined *expr.UndefinedError
		if !errors.As(err, &undefined) {
			return r.wrap(err)
		}
		if err := r.addUnresolved(fix, scope, undefined.Name); err != nil {
			return err
		}
	}
	return nil
}

// resolvePendingConstants evaluates the constants that reference labels or
// the location counter. The location counter is the address of the EQU line.
// Definitions that were cut off by the iteration cap of the constant resolver
// are never evaluated.
func (r *run) resolvePendingConstants() error {
	var pending, capped []consts.Definition
	for _, def := range r.consts.Pending {
		if def.Capped {
			capped = append(capped, def)
			continue
		}
		pending = append(pending, def)
	}

	for pass := 0; len(pending) > 0 && pass < r.opts.MaxEquPasses; pass++ {
		var remaining []consts.Definition

		for _, def := range pending {
			pc, ok := r.equAddress[def.Line]
			if !ok {
				pc = r.address
			}
			scope := evalScope{r: r, scope: scopeWithGlobal(globalOf(def.Name)), pc: pc}
			value, err := expr.Eval(def.Expr, scope)
			if err != nil {
				if expr.IsUndefined(err) {
					remaining = append(remaining, def)
					continue
				}
				return &parser.Error{Line: def.Line, Text: def.Name + " EQU " + def.Expr, Err: err}
			}

			if value < -0x8000 || value > 0xffff {
				return &parser.Error{
					Line: def.Line,
					Text: def.Name + " EQU " + def.Expr,
					Err:  fmt.Errorf("constant value %d does not fit into 16 bits", value),
				}
			}
			if r.labels.Has(def.Name) {
				return &parser.Error{
					Line: def.Line,
					Text: def.Name + " EQU " + def.Expr,
					Err:  fmt.Errorf("constant '%s' is already defined as label", def.Name),
				}
			}
			r.consts.Constants.Set(symbols.Symbol{Name: def.Name, Value: uint16(value), Kind: symbols.Constant})
		}

		if len(remaining) == len(pending) {
			break
		}
		pending = remaining
	}
	r.consts.Pending = append(capped, pending...)
	return nil
}

// addUnresolved records a reference for the linker or returns the undefined
// symbol error in non object mode.
func (r *run) addUnresolved(fix fixup, scope evalScope, name string) error {
	if !r.opts.ObjectMode {
		return &UndefinedSymbolError{Symbol: name, Line: fix.line.Number, Text: fix.line.Text}
	}

	kind, ok := fix.kind.refKind()
	if !ok {
		return r.errorf("external symbol '%s' can not be used as 8 bit value", name)
	}
	symbol, addend, ok := expr.SplitSymbol(fix.expr, scope)
	if !ok || symbol != name {
		return r.errorf("expression '%s' with external symbol '%s' can not be relocated", fix.expr, name)
	}

	r.bank.Unresolved = append(r.bank.Unresolved, program.UnresolvedRef{
		Symbol:  symbol,
		Offset:  fix.offset,
		Kind:    kind,
		Address: fix.address,
		Addend:  addend,
		Line:    fix.line.Number,
	})
	r.logger.Debug("Deferring external symbol",
		log.Int("bank", r.bank.ID),
		log.String("symbol", symbol),
		log.Int("offset", fix.offset),
		log.Stringer("kind", kind))
	return nil
}

func scopeWithGlobal(global string) *parser.Scope {
	scope := &parser.Scope{}
	if global != "" {
		scope.Define(global)
	}
	return scope
}

// globalOf returns the global label part of a qualified local name.
func globalOf(name string) string {
	for i := 1; i < len(name); i++ {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return ""
}
