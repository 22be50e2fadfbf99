// Package base provides detection helpers shared by the format handlers.
package base

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/FocuswithJustin/usjconv/core/formats"
)

// SniffSize is how much of a document the content probes look at.
const SniffSize = 4096

// DetectConfig contains configuration for format detection.
type DetectConfig struct {
	// Extensions is a list of valid file extensions (e.g., ".usx", ".xml")
	Extensions []string
	// ContentMarkers must all be present in the sniffed content
	ContentMarkers []string
	// FormatName is the name to return in DetectResult
	FormatName string
	// CustomValidator is an optional content check run when the markers
	// are absent
	CustomValidator func(head []byte) (bool, string)
}

// Sniff returns the start of data with a UTF-8 byte order mark and leading
// whitespace removed.
func Sniff(data []byte) []byte {
	if len(data) > SniffSize {
		data = data[:SniffSize]
	}
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	return bytes.TrimLeft(data, " \t\r\n")
}

// HasExtension reports whether name ends in one of exts, ignoring case.
func HasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// Detect performs common detection logic: content markers first, then the
// custom validator, then the file extension.
func Detect(name string, data []byte, config DetectConfig) *formats.DetectResult {
	head := Sniff(data)

	if len(config.ContentMarkers) > 0 && len(head) > 0 {
		allMarkersFound := true
		for _, marker := range config.ContentMarkers {
			if !bytes.Contains(head, []byte(marker)) {
				allMarkersFound = false
				break
			}
		}
		if allMarkersFound {
			return &formats.DetectResult{
				Detected: true,
				Format:   config.FormatName,
				Reason:   fmt.Sprintf("%s markers detected", config.FormatName),
			}
		}
	}

	if config.CustomValidator != nil && len(head) > 0 {
		if ok, reason := config.CustomValidator(head); ok {
			return &formats.DetectResult{Detected: true, Format: config.FormatName, Reason: reason}
		}
	}

	if HasExtension(name, config.Extensions) {
		return &formats.DetectResult{
			Detected: true,
			Format:   config.FormatName,
			Reason:   fmt.Sprintf("%s file extension detected", config.FormatName),
		}
	}

	return &formats.DetectResult{
		Detected: false,
		Reason:   fmt.Sprintf("not a %s file", config.FormatName),
	}
}
