// Package errors provides the error taxonomy shared by the converters.
//
// Fatal conversion failures are returned as typed errors that unwrap to one
// of the sentinels below, so callers can branch with errors.Is.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")          // unknown format id or undetectable input
	ErrInvalidInput      = errors.New("invalid input")      // unreadable USX or USJ document
	ErrUnsupported       = errors.New("unsupported")        // known but unavailable operation
	ErrUnknownMarker     = errors.New("unknown marker")     // USFM marker outside the marker tables
	ErrMalformedEncoding = errors.New("malformed encoding") // bytes that are not valid text
	ErrIO                = errors.New("i/o failure")
)

// UnknownMarkerError reports a marker the classifier does not recognise.
type UnknownMarkerError struct {
	Marker string
	Line   int
	Column int
}

func (e *UnknownMarkerError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("unknown marker \\%s at %d:%d", e.Marker, e.Line, e.Column)
	}
	return fmt.Sprintf("unknown marker \\%s", e.Marker)
}

func (e *UnknownMarkerError) Unwrap() error {
	return ErrUnknownMarker
}

// EncodingError reports source bytes that failed to decode.
type EncodingError struct {
	Encoding string // e.g. "UTF-8", "UTF-16LE"
	Offset   int    // byte offset of the first bad sequence, -1 if unknown
	Err      error
}

func (e *EncodingError) Error() string {
	msg := fmt.Sprintf("invalid %s", e.Encoding)
	if e.Offset >= 0 {
		msg = fmt.Sprintf("%s at byte %d", msg, e.Offset)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *EncodingError) Unwrap() error {
	return ErrMalformedEncoding
}

// NotFoundError names the kind of thing that was looked up and its id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IOError wraps a filesystem or stream failure with the operation and path.
type IOError struct {
	Operation string
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

// Unwrap returns both the cause and ErrIO so either can be matched.
func (e *IOError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrIO}
	}
	return []error{e.Err, ErrIO}
}

// ParseError reports a USX or USJ document the reader rejected.
type ParseError struct {
	Format  string // "USFM", "USX", "USJ"
	Path    string // element path or file, if known
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Err, ErrInvalidInput}
	}
	return []error{ErrInvalidInput}
}

// UnsupportedError reports a recognised request the converter cannot serve.
type UnsupportedError struct {
	Feature string
	Reason  string
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func NewIO(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

func NewParse(format, path, message string) *ParseError {
	return &ParseError{Format: format, Path: path, Message: message}
}

func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{Feature: feature, Reason: reason}
}

// Wrap prefixes err with message, keeping it matchable. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
