package trampoline

import (
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/vecasm/internal/assembler"
	"github.com/retroenv/vecasm/internal/callgraph"
	"github.com/retroenv/vecasm/internal/options"
	"github.com/retroenv/vecasm/internal/program"
)

var testSections = []program.BankSection{
	{ID: 0, Lines: strings.Split(`MAIN: JSR DRAW
    BSR DRAW
.loop: LBSR DRAW ; draw again
    JSR LOCAL
    JMP .loop
LOCAL: RTS`, "\n")},
	{ID: 1, Lines: strings.Split(`DRAW: RTS`, "\n")},
}

func TestGenerate(t *testing.T) {
	prog, assignment := callgraph.FromAssembly(testSections)
	res := callgraph.Analyze(prog, assignment)
	assert.Len(t, res.Sites, 3)

	set := Generate(res.Pairs, options.NewBuild(2))
	assert.Equal(t, 1, set.Len())
	assert.Equal(t, 1, set.HelperBank())

	label, ok := set.Lookup(0, "DRAW")
	assert.True(t, ok)
	assert.Equal(t, "DRAW_B0_XBANK", label)
	assert.Equal(t, label, Label(0, "DRAW"))

	_, ok = set.Lookup(1, "DRAW")
	assert.False(t, ok)
}

func TestRewrite(t *testing.T) {
	set := Generate([]callgraph.Pair{{CallerBank: 0, Callee: "DRAW", CalleeBank: 1}}, options.NewBuild(2))

	section, count := set.Rewrite(testSections[0])
	assert.Equal(t, 3, count)
	assert.Equal(t, []string{
		"MAIN: JSR DRAW_B0_XBANK",
		"    JSR DRAW_B0_XBANK",
		".loop: JSR DRAW_B0_XBANK",
		"    JSR LOCAL",
		"    JMP .loop",
		"LOCAL: RTS",
	}, section.Lines)

	// the input section is not modified
	assert.Equal(t, "    BSR DRAW", testSections[0].Lines[1])

	other, count := set.Rewrite(testSections[1])
	assert.Equal(t, 0, count)
	assert.Equal(t, testSections[1].Lines, other.Lines)
}

func TestSource(t *testing.T) {
	build := options.NewBuild(2)
	set := Generate([]callgraph.Pair{{CallerBank: 0, Callee: "DRAW", CalleeBank: 1}}, build)

	lines := set.Source()
	assert.Equal(t, "XBANK_CURRENT EQU $CBFC", lines[1])
	assert.Equal(t, "XBANK_REGISTER EQU $DF00", lines[2])
	assert.Equal(t, "DRAW_B0_XBANK:", lines[3])

	opts := options.NewAssembler()
	opts.ObjectMode = true
	opts.IncludeDir = t.TempDir()
	asm := assembler.New(log.NewTestLogger(t), opts, nil)

	bank, err := asm.Assemble(program.BankSection{ID: 1, Org: 0x4000, Lines: lines})
	assert.NoError(t, err)

	expected := []byte{
		0xB6, 0xCB, 0xFC, // LDA XBANK_CURRENT
		0x34, 0x02, // PSHS A
		0x86, 0x01, // LDA #1
		0xB7, 0xCB, 0xFC, // STA XBANK_CURRENT
		0xB7, 0xDF, 0x00, // STA XBANK_REGISTER
		0xBD, 0x00, 0x00, // JSR DRAW
		0x34, 0x06, // PSHS D
		0xA6, 0x62, // LDA 2,S
		0xB7, 0xCB, 0xFC, // STA XBANK_CURRENT
		0xB7, 0xDF, 0x00, // STA XBANK_REGISTER
		0x35, 0x06, // PULS D
		0x32, 0x61, // LEAS 1,S
		0x39, // RTS
	}
	assert.Equal(t, expected, bank.Bytes)
	assert.Len(t, bank.Bytes, Size)
	assert.Equal(t, []program.UnresolvedRef{
		{Symbol: "DRAW", Offset: 14, Kind: program.Absolute16, Address: 0x400E, Line: 10},
	}, bank.Unresolved)

	assert.Empty(t, Generate(nil, build).Source())
}
