// Package usfm reads and writes USFM.
//
// Reading is a linear pass: Tokenize scans the text into a flat token
// sequence, Classify resolves tag names against the marker tables, and the
// document builder folds the tokens into a USJ tree using open-frame stacks.
// Structural irregularities such as unmatched end tags are absorbed; unknown
// markers and malformed text encoding are fatal.
package usfm

import (
	"io"
	"unicode/utf8"

	"github.com/FocuswithJustin/usjconv/core/encoding"
	usjerrors "github.com/FocuswithJustin/usjconv/core/errors"
	"github.com/FocuswithJustin/usjconv/core/usj"
)

// BuildDocument converts USFM text into a USJ document. The result has no
// open nodes: every span still open at end of input is closed. Text that is
// not valid UTF-8 is rejected with an EncodingError.
func BuildDocument(text string) (*usj.Document, error) {
	if !utf8.ValidString(text) {
		return nil, &usjerrors.EncodingError{Encoding: "UTF-8", Offset: encoding.InvalidUTF8Offset([]byte(text))}
	}
	tokens, err := Tokenize(text)
	if err != nil {
		return nil, &usjerrors.ParseError{Format: "USFM", Message: err.Error(), Err: err}
	}
	return BuildFromTokens(tokens)
}

// BuildFromTokens runs the document builder over an already scanned
// token sequence.
func BuildFromTokens(tokens []Token) (*usj.Document, error) {
	return newBuilder().build(tokens)
}

// Parse decodes raw bytes and builds the document.
func Parse(data []byte) (*usj.Document, error) {
	text, err := encoding.DecodeText(data)
	if err != nil {
		return nil, err
	}
	return BuildDocument(text)
}

// Read reads all of r and builds the document.
func Read(r io.Reader) (*usj.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, usjerrors.NewIO("read", "", err)
	}
	return Parse(data)
}
