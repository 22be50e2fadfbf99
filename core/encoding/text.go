// Package encoding turns source bytes into text for the readers.
package encoding

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	usjerrors "github.com/FocuswithJustin/usjconv/core/errors"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DecodeText returns data as a UTF-8 string. A UTF-16 byte order mark
// switches to UTF-16 decoding; a UTF-8 byte order mark is dropped. Anything
// else must already be valid UTF-8, otherwise an *errors.EncodingError is
// returned.
func DecodeText(data []byte) (string, error) {
	var name string
	switch {
	case bytes.HasPrefix(data, bomUTF16LE):
		name = "UTF-16LE"
	case bytes.HasPrefix(data, bomUTF16BE):
		name = "UTF-16BE"
	}

	if name != "" {
		if len(data)%2 != 0 {
			return "", &usjerrors.EncodingError{Encoding: name, Offset: len(data) - 1}
		}
		out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data)
		if err != nil {
			return "", &usjerrors.EncodingError{Encoding: name, Offset: -1, Err: err}
		}
		data = out
	} else {
		data = bytes.TrimPrefix(data, bomUTF8)
	}

	if off := InvalidUTF8Offset(data); off >= 0 {
		return "", &usjerrors.EncodingError{Encoding: "UTF-8", Offset: off}
	}
	return string(data), nil
}

// InvalidUTF8Offset returns the byte offset of the first invalid UTF-8
// sequence in data, or -1.
func InvalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

// NormalizeNFC returns s in Unicode normalization form C.
func NormalizeNFC(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

// CollapseSpace replaces each run of XML whitespace with a single space.
func CollapseSpace(s string) string {
	if !strings.ContainsAny(s, "\t\r\n") && !strings.Contains(s, "  ") {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	inSpace := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\r', '\n':
			if !inSpace {
				sb.WriteByte(' ')
			}
			inSpace = true
		default:
			sb.WriteRune(r)
			inSpace = false
		}
	}
	return sb.String()
}
