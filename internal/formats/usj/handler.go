// Package usj provides the embedded handler for the USJ format.
package usj

import (
	"github.com/FocuswithJustin/usjconv/core/formats"
	"github.com/FocuswithJustin/usjconv/core/usj"
	"github.com/FocuswithJustin/usjconv/internal/formats/base"
)

// FormatID is the registry id.
const FormatID = "usj"

// Handler implements formats.Handler for USJ.
type Handler struct{}

// Manifest returns the format manifest for registration.
func Manifest() *formats.Manifest {
	return &formats.Manifest{
		ID:         FormatID,
		Name:       "USJ",
		Extensions: []string{".usj", ".json"},
		MediaType:  "application/json",
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
		ContentMarkers: []string{`"type"`, `"USJ"`},
		FormatName:     FormatID,
	})
}

// Decode implements formats.Handler.Decode.
func (h *Handler) Decode(data []byte) (*usj.Document, error) {
	return usj.Unmarshal(data)
}

// Encode implements formats.Handler.Encode.
func (h *Handler) Encode(doc *usj.Document, opts formats.EncodeOptions) ([]byte, error) {
	if opts.Pretty {
		return usj.MarshalIndent(doc)
	}
	return usj.Marshal(doc)
}
