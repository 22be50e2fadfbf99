// Package usfm provides the embedded handler for the USFM format.
package usfm

import (
	"github.com/FocuswithJustin/usjconv/core/formats"
	"github.com/FocuswithJustin/usjconv/core/usfm"
	"github.com/FocuswithJustin/usjconv/core/usj"
	"github.com/FocuswithJustin/usjconv/internal/formats/base"
)

// FormatID is the registry id.
const FormatID = "usfm"

// Handler implements formats.Handler for USFM.
type Handler struct{}

// Manifest returns the format manifest for registration.
func Manifest() *formats.Manifest {
	return &formats.Manifest{
		ID:         FormatID,
		Name:       "USFM",
		Extensions: []string{".usfm", ".sfm", ".ptx"},
		MediaType:  "text/x-usfm; charset=utf-8",
	}
}

// Register registers this format with the registry.
func Register() {
	formats.Register(&formats.Format{
		Manifest: Manifest(),
		Handler:  &Handler{},
	})
}

func init() {
	Register()
}

// Detect implements formats.Handler.Detect.
func (h *Handler) Detect(name string, data []byte) *formats.DetectResult {
	return base.Detect(name, data, base.DetectConfig{
		Extensions:     Manifest().Extensions,
		ContentMarkers: []string{`\id `},
		FormatName:     FormatID,
		CustomValidator: func(head []byte) (bool, string) {
			// Fragments without an \id line still open with a marker.
			if head[0] != '\\' {
				return false, ""
			}
			tokens, err := usfm.Tokenize(string(head[:min(len(head), 64)]))
			if err != nil || len(tokens) == 0 {
				return false, ""
			}
			switch tokens[0].Kind {
			case usfm.KindStartTag, usfm.KindChapter, usfm.KindVerses:
				return true, "opens with a USFM marker"
			}
			return false, ""
		},
	})
}

// Decode implements formats.Handler.Decode.
func (h *Handler) Decode(data []byte) (*usj.Document, error) {
	return usfm.Parse(data)
}

// Encode implements formats.Handler.Encode. USFM has no pretty form.
func (h *Handler) Encode(doc *usj.Document, _ formats.EncodeOptions) ([]byte, error) {
	return usfm.Write(doc)
}
