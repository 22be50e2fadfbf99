// Package usx provides the embedded handler for the USX format.
package usx

import (
	"bytes"
	"fmt"

	"github.com/FocuswithJustin/usjconv/core/formats"
	"github.com/FocuswithJustin/usjconv/core/usj"
	"github.com/FocuswithJustin/usjconv/core/usx"
	"github.com/FocuswithJustin/usjconv/internal/formats/base"
)

// FormatID is the registry id.
const FormatID = "usx"

// Handler implements formats.Handler for USX.
type Handler struct{}

// Manifest returns the format manifest for registration.
func Manifest() *formats.Manifest {
	return &formats.Manifest{
		ID:         FormatID,
		Name:       "USX",
		Extensions: []string{".usx", ".xml"},
		MediaType:  "application/xml",
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
	if !bytes.Contains(base.Sniff(data), []byte("<usx")) {
		return base.Detect(name, data, base.DetectConfig{
			Extensions: Manifest().Extensions,
			FormatName: FormatID,
		})
	}
	if !usx.Probe(data) {
		return &formats.DetectResult{Detected: false, Reason: "invalid XML or no <usx> root"}
	}
	version, _ := usx.Version(data)
	return &formats.DetectResult{
		Detected: true,
		Format:   FormatID,
		Reason:   fmt.Sprintf("USX %s detected", version),
	}
}

// Decode implements formats.Handler.Decode.
func (h *Handler) Decode(data []byte) (*usj.Document, error) {
	return usx.Unmarshal(data)
}

// Encode implements formats.Handler.Encode.
func (h *Handler) Encode(doc *usj.Document, _ formats.EncodeOptions) ([]byte, error) {
	return usx.Write(doc)
}
