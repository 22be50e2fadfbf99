package usx

import (
	"strings"
	"testing"

	"github.com/FocuswithJustin/usjconv/core/formats"
)

func TestManifest(t *testing.T) {
	m := Manifest()
	if m.ID != "usx" || m.MediaType != "application/xml" {
		t.Errorf("Manifest() = %+v", m)
	}
	if !formats.Has(FormatID) {
		t.Error("init did not register the handler")
	}
}

func TestDetect(t *testing.T) {
	h := &Handler{}
	tests := []struct {
		name   string
		file   string
		data   string
		want   bool
		reason string
	}{
		{"usx root", "book", `<?xml version="1.0"?><usx version="3.0"><book code="GEN" style="id"/></usx>`, true, "USX 3.0 detected"},
		{"broken usx", "book.usx", `<usx version="3.0"><para>`, false, "invalid"},
		{"extension", "book.xml", `<?xml version="1.0"?>`, true, "extension"},
		{"other xml", "book", `<osis/>`, false, "not a usx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := h.Detect(tt.file, []byte(tt.data))
			if r.Detected != tt.want || !strings.Contains(r.Reason, tt.reason) {
				t.Errorf("Detect() = %+v", r)
			}
		})
	}
}

func TestDecodeEncode(t *testing.T) {
	h := &Handler{}
	input := `<usx version="3.0"><book code="GEN" style="id">Genesis</book><para style="p">x</para></usx>`
	doc, err := h.Decode([]byte(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Content) != 2 {
		t.Fatalf("content = %+v", doc.Content)
	}
	out, err := h.Encode(doc, formats.EncodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `<book style="id" code="GEN">Genesis</book>`) {
		t.Errorf("Encode() = %s", out)
	}
}
