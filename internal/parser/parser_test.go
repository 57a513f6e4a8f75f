package parser

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestStripComment(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"LDA #1 ; load", "LDA #1 "},
		{"; only comment", ""},
		{"* full line comment", ""},
		{`FCC "A;B" ; text`, `FCC "A;B" `},
		{"JSR DRAW ; call: later", "JSR DRAW "},
		{"NOP", "NOP"},
		{"LDA #';' ; semicolon", "LDA #';' "},
		{"LDB #'A ; letter", "LDB #'A "},
		{"LDB #'; ; open literal", "LDB #'; "},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, StripComment(tt.input))
		})
	}
}

func TestMarker(t *testing.T) {
	n, ok := Marker("; VPY line 42")
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	_, ok = Marker("; just a comment")
	assert.False(t, ok)
	_, ok = Marker("LDA #1 ; VPY line 3")
	assert.False(t, ok)
}

//nolint:funlen // test functions can be long
func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		global  string
		want    Line
		wantErr bool
	}{
		{
			name:  "label with instruction",
			input: "GREET: LDA #$41",
			want:  Line{Label: "GREET", Op: "LDA", Operand: "#$41"},
		},
		{
			name:   "local label",
			input:  ".loop: DECA",
			global: "GREET",
			want:   Line{Label: "GREET.loop", Op: "DECA"},
		},
		{
			name:  "label only",
			input: "MAIN:",
			want:  Line{Label: "MAIN"},
		},
		{
			name:  "mnemonic is upper-cased",
			input: "  bne .loop",
			want:  Line{Op: "BNE", Operand: ".loop"},
		},
		{
			name:  "colon in comment is not a label",
			input: "  JSR DRAW ; TODO: remove",
			want:  Line{Op: "JSR", Operand: "DRAW"},
		},
		{
			name:  "colon in string is not a label",
			input: `  FCC "A:B"`,
			want:  Line{Op: "FCC", Operand: `"A:B"`},
		},
		{
			name:  "equ",
			input: "SPEED EQU 4*2",
			want:  Line{Label: "SPEED", Op: "EQU", Operand: "4*2"},
		},
		{
			name:  "equ with colon",
			input: "EQUAL: equ $10",
			want:  Line{Label: "EQUAL", Op: "EQU", Operand: "$10"},
		},
		{
			name:  "equals sign",
			input: "WIDTH = 32",
			want:  Line{Label: "WIDTH", Op: "EQU", Operand: "32"},
		},
		{
			name:  "equals sign without spaces",
			input: "WIDTH=32",
			want:  Line{Label: "WIDTH", Op: "EQU", Operand: "32"},
		},
		{
			name:  "marker",
			input: "; VPY line 7",
			want:  Line{SourceLine: 7},
		},
		{
			name:    "invalid label",
			input:   "1abc: NOP",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := &Scope{}
			if tt.global != "" {
				scope.Define(tt.global)
			}

			got, err := Parse(3, tt.input, scope)
			if tt.wantErr {
				var parseErr *Error
				assert.True(t, errors.As(err, &parseErr))
				assert.Equal(t, 3, parseErr.Line)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want.Label, got.Label)
			assert.Equal(t, tt.want.Op, got.Op)
			assert.Equal(t, tt.want.Operand, got.Operand)
			assert.Equal(t, tt.want.SourceLine, got.SourceLine)
			assert.Equal(t, 3, got.Number)
		})
	}
}

func TestScope(t *testing.T) {
	scope := &Scope{}

	assert.Equal(t, "FIRST", scope.Define("FIRST"))
	assert.Equal(t, "FIRST.loop", scope.Define(".loop"))
	assert.Equal(t, "FIRST", scope.Global())

	assert.Equal(t, "SECOND", scope.Define("SECOND"))
	assert.Equal(t, "SECOND.loop", scope.Define(".loop"))
	assert.Equal(t, "SECOND.loop", scope.Qualify(".loop"))
	assert.Equal(t, "OTHER", scope.Qualify("OTHER"))

	var nilScope *Scope
	assert.Equal(t, ".loop", nilScope.Qualify(".loop"))
}

func TestIncludePath(t *testing.T) {
	path, err := IncludePath(`"VECTREX.I"`)
	assert.NoError(t, err)
	assert.Equal(t, "VECTREX.I", path)

	path, err = IncludePath("macros.i")
	assert.NoError(t, err)
	assert.Equal(t, "macros.i", path)

	_, err = IncludePath(`""`)
	assert.Error(t, err)
}

func TestLine_IsDirective(t *testing.T) {
	assert.True(t, Line{Op: DirectiveOrg}.IsDirective())
	assert.False(t, Line{Op: "LDA"}.IsDirective())
	assert.True(t, Line{}.IsEmpty())
}
