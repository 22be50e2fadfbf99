package usfm

import (
	"errors"
	"testing"

	usjerrors "github.com/FocuswithJustin/usjconv/core/errors"
	"github.com/FocuswithJustin/usjconv/core/formats"
)

func TestManifest(t *testing.T) {
	m := Manifest()
	if m.ID != "usfm" {
		t.Errorf("ID = %q, want usfm", m.ID)
	}
	if len(m.Extensions) != 3 {
		t.Errorf("Extensions = %v", m.Extensions)
	}
	if !formats.Has(FormatID) {
		t.Error("init did not register the handler")
	}
}

func TestDetect(t *testing.T) {
	h := &Handler{}
	tests := []struct {
		name string
		file string
		data string
		want bool
	}{
		{"id line", "book.txt", "\\id GEN\n\\c 1", true},
		{"fragment", "frag", "\\p\n\\v 1 In the beginning", true},
		{"chapter first", "frag", "\\c 1\n\\p x", true},
		{"extension", "book.SFM", "plain text", true},
		{"plain text", "book.txt", "plain text", false},
		{"stray backslash", "notes", "\\\\ path", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := h.Detect(tt.file, []byte(tt.data))
			if r.Detected != tt.want {
				t.Errorf("Detect() = %+v, want detected=%v", r, tt.want)
			}
		})
	}
}

func TestDecodeEncode(t *testing.T) {
	h := &Handler{}
	doc, err := h.Decode([]byte("\\id GEN Genesis\n\\c 1\n\\p\n\\v 1 In the beginning."))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Book().Code != "GEN" {
		t.Errorf("book = %+v", doc.Book())
	}

	out, err := h.Encode(doc, formats.EncodeOptions{Pretty: true})
	if err != nil {
		t.Fatal(err)
	}
	want := "\\id GEN Genesis\n\\usfm 3.0\n\\c 1\n\\p\n\\v 1 In the beginning.\n"
	if string(out) != want {
		t.Errorf("Encode() = %q, want %q", out, want)
	}

	if _, err := h.Decode([]byte("\\zzqq x")); !errors.Is(err, usjerrors.ErrUnknownMarker) {
		t.Errorf("Decode(unknown) error = %v", err)
	}
}
