package encoding

import (
	"errors"
	"testing"

	usjerrors "github.com/FocuswithJustin/usjconv/core/errors"
)

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"plain", []byte(`\id PSA`), `\id PSA`},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, []byte(`\id PSA`)...), `\id PSA`},
		{"utf16le bom", []byte{0xFF, 0xFE, '\\', 0, 'p', 0}, `\p`},
		{"utf16be bom", []byte{0xFE, 0xFF, 0, '\\', 0, 'p'}, `\p`},
		{"multibyte", []byte("Ἐν ἀρχῇ"), "Ἐν ἀρχῇ"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeText(tt.input)
			if err != nil {
				t.Fatalf("DecodeText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeTextInvalid(t *testing.T) {
	tests := []struct {
		name       string
		input      []byte
		wantOffset int
	}{
		{"bad byte", []byte{'a', 'b', 0xFF, 'c'}, 2},
		{"truncated sequence", []byte{'x', 0xE2, 0x82}, 1},
		{"odd utf16", []byte{0xFF, 0xFE, 'a'}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeText(tt.input)
			if !errors.Is(err, usjerrors.ErrMalformedEncoding) {
				t.Fatalf("expected ErrMalformedEncoding, got %v", err)
			}
			var ee *usjerrors.EncodingError
			if !errors.As(err, &ee) || ee.Offset != tt.wantOffset {
				t.Errorf("offset = %+v, want %d", ee, tt.wantOffset)
			}
		})
	}
}

func TestInvalidUTF8Offset(t *testing.T) {
	if got := InvalidUTF8Offset([]byte("héllo")); got != -1 {
		t.Errorf("valid input offset = %d", got)
	}
	if got := InvalidUTF8Offset([]byte{0xC3}); got != 0 {
		t.Errorf("offset = %d, want 0", got)
	}
}

func TestNormalizeNFC(t *testing.T) {
	decomposed := "e\u0301"
	if got := NormalizeNFC(decomposed); got != "\u00e9" {
		t.Errorf("NormalizeNFC() = %q", got)
	}
	if got := NormalizeNFC("abc"); got != "abc" {
		t.Errorf("NormalizeNFC() = %q", got)
	}
}

func TestCollapseSpace(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"a b", "a b"},
		{"a  b", "a b"},
		{"\n  Praise the ", " Praise the "},
		{"a\t\r\nb", "a b"},
		{"a\u00a0 b", "a\u00a0 b"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CollapseSpace(tt.input); got != tt.want {
			t.Errorf("CollapseSpace(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
