package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vecasm/internal/assembler"
	"github.com/retroenv/vecasm/internal/callgraph"
	"github.com/retroenv/vecasm/internal/linker"
	"github.com/retroenv/vecasm/internal/options"
	"github.com/retroenv/vecasm/internal/program"
)

func testBuild(t *testing.T, bankCount int) options.Build {
	t.Helper()
	build := options.NewBuild(bankCount)
	build.Assembler.IncludeDir = t.TempDir()
	build.Assembler.BaseDir = build.Assembler.IncludeDir
	return build
}

func section(id int, source string) program.BankSection {
	return program.BankSection{ID: id, Lines: strings.Split(source, "\n")}
}

func TestBuild_SingleBank(t *testing.T) {
	p := New(log.NewTestLogger(t))
	input := Input{Sections: []program.BankSection{section(0, "MAIN: LDA #1\n    BRA MAIN")}}

	res, err := p.Build(context.Background(), testBuild(t, 1), input)
	assert.NoError(t, err)
	assert.Len(t, res.ROM.Data, 0x4000)
	assert.Equal(t, []byte{0x86, 0x01, 0x20, 0xFC}, res.ROM.Data[:4])
	assert.Equal(t, 0, res.Trampolines.Len())
	assert.Empty(t, res.Banks[0].Unresolved)
}

func TestBuild_SingleBankUndefined(t *testing.T) {
	p := New(log.NewTestLogger(t))
	input := Input{Sections: []program.BankSection{section(0, "    JSR NOWHERE")}}

	res, err := p.Build(context.Background(), testBuild(t, 1), input)
	assert.Nil(t, res)

	var undefined *assembler.UndefinedSymbolError
	assert.True(t, errors.As(err, &undefined))
	var multibank *MultibankError
	assert.False(t, errors.As(err, &multibank))
}

func TestBuild_CrossBank(t *testing.T) {
	p := New(log.NewTestLogger(t))
	input := Input{Sections: []program.BankSection{
		section(0, "MAIN: JSR DRAW\n    JSR DRAW\n    BSR DRAW\n    RTS"),
		section(1, "DRAW: RTS"),
	}}

	res, err := p.Build(context.Background(), testBuild(t, 2), input)
	assert.NoError(t, err)
	assert.Len(t, res.CrossBank.Sites, 3)
	assert.Equal(t, 1, res.Trampolines.Len())

	rom := res.ROM.Data
	assert.Len(t, rom, 0x8000)
	// every call site targets the trampoline at $4001 in the helper bank
	assert.Equal(t, []byte{0xBD, 0x40, 0x01, 0xBD, 0x40, 0x01, 0xBD, 0x40, 0x01, 0x39}, rom[:10])
	assert.Equal(t, byte(0x39), rom[0x4000])
	// the trampoline calls the routine in its bank
	assert.Equal(t, []byte{0xBD, 0x40, 0x00}, rom[0x4001+13:0x4001+16])

	loc, ok := res.ROM.Symbols["DRAW_B0_XBANK"]
	assert.True(t, ok)
	assert.Equal(t, program.SymbolLocation{Bank: 1, Offset: 1, Address: 0x4001}, loc)
}

func TestBuild_ExplicitGraph(t *testing.T) {
	p := New(log.NewTestLogger(t))
	graph := &Graph{
		Program: &callgraph.Program{Functions: []callgraph.Function{
			{Name: "MAIN", Body: []callgraph.Stmt{callgraph.ExprStmt{Expr: callgraph.Call{Callee: "DRAW"}}}},
		}},
		Assignment: callgraph.Assignment{"MAIN": 0, "DRAW": 1},
	}
	input := Input{
		Sections: []program.BankSection{
			section(0, "MAIN: JSR DRAW"),
			section(1, "DRAW: RTS"),
		},
		Graph: graph,
	}

	res, err := p.Build(context.Background(), testBuild(t, 2), input)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0xBD, 0x40, 0x01}, res.ROM.Data[:3])
}

func TestBuild_NoSilentDowngrade(t *testing.T) {
	p := New(log.NewTestLogger(t))
	input := Input{Sections: []program.BankSection{
		section(0, "MAIN: JSR MISSING"),
		section(1, "ONE: RTS"),
		section(2, "TWO: RTS"),
	}}

	res, err := p.Build(context.Background(), testBuild(t, 4), input)
	assert.Nil(t, res)

	var multibank *MultibankError
	assert.True(t, errors.As(err, &multibank))
	assert.Equal(t, 4, multibank.BankCount)

	var linkErr *linker.LinkError
	assert.True(t, errors.As(err, &linkErr))
	assert.Equal(t, "MISSING", linkErr.Symbol)
	assert.Equal(t, 0, linkErr.Bank)
	assert.Equal(t, 1, linkErr.Offset)
}

func TestBuild_Parallel(t *testing.T) {
	p := New(log.NewTestLogger(t))
	input := Input{Sections: []program.BankSection{
		section(0, "MAIN: JSR LEVEL\n    JSR DRAW\n    RTS"),
		section(1, "LEVEL: JSR DRAW\n    RTS"),
		section(2, "DRAW: LDA #2\n    RTS"),
	}}

	sequential, err := p.Build(context.Background(), testBuild(t, 3), input)
	assert.NoError(t, err)

	build := testBuild(t, 3)
	build.Parallel = true
	parallel, err := p.Build(context.Background(), build, input)
	assert.NoError(t, err)

	assert.Equal(t, sequential.ROM.Data, parallel.ROM.Data)
	assert.Equal(t, 3, parallel.Trampolines.Len())
}

func TestBuild_Canceled(t *testing.T) {
	p := New(log.NewTestLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Build(ctx, testBuild(t, 1), Input{Sections: []program.BankSection{section(0, "RTS")}})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBuild_TooManySections(t *testing.T) {
	p := New(log.NewTestLogger(t))
	input := Input{Sections: []program.BankSection{section(0, "RTS"), section(1, "RTS")}}

	_, err := p.Build(context.Background(), testBuild(t, 1), input)
	assert.ErrorContains(t, err, "exceed the bank count")
}
