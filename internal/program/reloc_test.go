package program

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestRefKind_Width(t *testing.T) {
	assert.Equal(t, 2, Absolute16.Width())
	assert.Equal(t, 1, Relative8.Width())
	assert.Equal(t, 2, Relative16.Width())
	assert.Equal(t, 0, RefKind(0).Width())
}

func TestRefKind_String(t *testing.T) {
	assert.Equal(t, "Relative8", Relative8.String())
	assert.Equal(t, "RefKind(9)", RefKind(9).String())
}

//nolint:funlen // test functions can be long
func TestRefKind_Encode(t *testing.T) {
	tests := []struct {
		name    string
		kind    RefKind
		target  int
		address uint16
		want    []byte
		wantErr bool
	}{
		{"absolute", Absolute16, 0xF192, 0x1000, []byte{0xF1, 0x92}, false},
		{"absolute negative constant", Absolute16, -1, 0x1000, []byte{0xFF, 0xFF}, false},
		{"relative8 backwards", Relative8, 0x2002, 0x2004, []byte{0xFD}, false},
		{"relative8 max forward", Relative8, 0x2000 + 1 + 127, 0x2000, []byte{0x7F}, false},
		{"relative8 max backward", Relative8, 0x2000 + 1 - 128, 0x2000, []byte{0x80}, false},
		{"relative8 one too far forward", Relative8, 0x2000 + 1 + 128, 0x2000, nil, true},
		{"relative8 one too far backward", Relative8, 0x2000 + 1 - 129, 0x2000, nil, true},
		{"relative16 forward", Relative16, 0x3000, 0x1000, []byte{0x1F, 0xFE}, false},
		{"relative16 backward", Relative16, 0x1000, 0x1000, []byte{0xFF, 0xFE}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.kind.Encode(tt.target, tt.address)
			if tt.wantErr {
				var rangeErr *RangeError
				assert.True(t, errors.As(err, &rangeErr))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnresolvedRef_Target(t *testing.T) {
	ref := UnresolvedRef{Symbol: "TABLE", Addend: 2}
	assert.Equal(t, 0x4002, ref.Target(0x4000))
}
