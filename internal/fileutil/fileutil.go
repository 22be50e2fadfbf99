// Package fileutil reads and writes documents on disk, handling xz and gzip
// compression transparently. The path "-" means stdin or stdout.
package fileutil

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	usjerrors "github.com/FocuswithJustin/usjconv/core/errors"
)

// StdioPath selects stdin or stdout.
const StdioPath = "-"

// Standard streams, replaceable in tests.
var (
	Stdin  io.Reader = os.Stdin
	Stdout io.Writer = os.Stdout
)

var (
	xzMagic   = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}
	gzipMagic = []byte{0x1F, 0x8B}
)

// Compression names the compression implied by a file name: "xz", "gzip"
// or "".
func Compression(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xz":
		return "xz"
	case ".gz":
		return "gzip"
	}
	return ""
}

// TrimCompressionExt drops a trailing .xz or .gz so that the inner name can
// be used for format detection.
func TrimCompressionExt(name string) string {
	if Compression(name) == "" {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// ReadFile reads path, or stdin for "-", decompressing xz and gzip data.
func ReadFile(path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == StdioPath {
		data, err = io.ReadAll(Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, usjerrors.NewIO("read", path, err)
	}
	out, err := Decompress(data)
	if err != nil {
		return nil, usjerrors.NewIO("decompress", path, err)
	}
	return out, nil
}

// ErrTooLarge is returned by DecompressLimit when the inflated data would
// exceed the limit.
var ErrTooLarge = errors.New("decompressed data exceeds limit")

// Decompress inflates xz or gzip data recognised by its magic number and
// returns anything else unchanged.
func Decompress(data []byte) ([]byte, error) {
	return DecompressLimit(data, -1)
}

// DecompressLimit is Decompress with a cap of max bytes on the inflated
// output; a negative max disables the cap. Uncompressed data is returned
// as is regardless of max.
func DecompressLimit(data []byte, max int64) ([]byte, error) {
	var r io.Reader
	switch {
	case bytes.HasPrefix(data, xzMagic):
		xr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		r = xr
	case bytes.HasPrefix(data, gzipMagic):
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gr.Close()
		r = gr
	default:
		return data, nil
	}
	if max < 0 {
		return io.ReadAll(r)
	}
	out, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > max {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, max)
	}
	return out, nil
}

// Compress encodes data with the named compression ("xz", "gzip" or "").
func Compress(data []byte, compression string) ([]byte, error) {
	var buf bytes.Buffer
	var w io.WriteCloser
	switch compression {
	case "":
		return data, nil
	case "xz":
		xw, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("xz writer: %w", err)
		}
		w = xw
	case "gzip":
		w = gzip.NewWriter(&buf)
	default:
		return nil, usjerrors.NewUnsupported("compression", compression)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes data to path, or stdout for "-", compressing when the
// name ends in .xz or .gz. Missing parent directories are created.
func WriteFile(path string, data []byte) error {
	if path == StdioPath {
		if _, err := Stdout.Write(data); err != nil {
			return usjerrors.NewIO("write", path, err)
		}
		return nil
	}

	out, err := Compress(data, Compression(path))
	if err != nil {
		return usjerrors.NewIO("compress", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return usjerrors.NewIO("mkdir", dir, err)
		}
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return usjerrors.NewIO("write", path, err)
	}
	return nil
}
