// Package formats is the registry of document formats that convert to and
// from the USJ tree. Handlers live in internal/formats and register
// themselves at init; importing internal/embedded populates the registry.
package formats

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	usjerrors "github.com/FocuswithJustin/usjconv/core/errors"
	"github.com/FocuswithJustin/usjconv/core/usj"
)

// Manifest describes a registered format.
type Manifest struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
	MediaType  string   `json:"media_type"`
}

// DetectResult is the outcome of a format probe.
type DetectResult struct {
	Detected bool   `json:"detected"`
	Format   string `json:"format,omitempty"`
	Reason   string `json:"reason"`
}

// EncodeOptions controls serialization.
type EncodeOptions struct {
	// Pretty requests indented output where the format has one.
	Pretty bool
}

// Handler converts between one format and the USJ tree.
type Handler interface {
	// Detect probes data, which was read from a file called name.
	Detect(name string, data []byte) *DetectResult

	// Decode reads a document.
	Decode(data []byte) (*usj.Document, error)

	// Encode writes a document.
	Encode(doc *usj.Document, opts EncodeOptions) ([]byte, error)
}

// Format pairs a handler with its manifest.
type Format struct {
	Manifest *Manifest
	Handler  Handler
}

// ID returns the manifest id.
func (f *Format) ID() string { return f.Manifest.ID }

var (
	mu       sync.RWMutex
	registry = make(map[string]*Format)
)

// Register adds a format, replacing any format with the same id.
func Register(f *Format) {
	if f == nil || f.Manifest == nil || f.Manifest.ID == "" || f.Handler == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	registry[f.Manifest.ID] = f
}

// Get returns a format by id.
func Get(id string) (*Format, error) {
	mu.RLock()
	defer mu.RUnlock()
	if f, ok := registry[strings.ToLower(id)]; ok {
		return f, nil
	}
	return nil, usjerrors.NewNotFound("format", id)
}

// Has reports whether a format is registered.
func Has(id string) bool {
	_, err := Get(id)
	return err == nil
}

// List returns all registered formats ordered by id.
func List() []*Format {
	mu.RLock()
	result := make([]*Format, 0, len(registry))
	for _, f := range registry {
		result = append(result, f)
	}
	mu.RUnlock()
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}

// Clear empties the registry (for testing).
func Clear() {
	mu.Lock()
	defer mu.Unlock()
	registry = make(map[string]*Format)
}

// Detect picks the format of data. A registered extension on name wins;
// otherwise each handler probes the content in id order.
func Detect(name string, data []byte) (*Format, *DetectResult, error) {
	all := List()
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
		for _, f := range all {
			for _, e := range f.Manifest.Extensions {
				if strings.EqualFold(e, ext) {
					return f, &DetectResult{Detected: true, Format: f.ID(), Reason: ext + " extension"}, nil
				}
			}
		}
	}
	for _, f := range all {
		if r := f.Handler.Detect(name, data); r != nil && r.Detected {
			if r.Format == "" {
				r.Format = f.ID()
			}
			return f, r, nil
		}
	}
	return nil, &DetectResult{Reason: "no format matched"}, usjerrors.NewNotFound("format", name)
}
