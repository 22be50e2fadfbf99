package usfm

import (
	"regexp"
	"strconv"
	"strings"

	usjerrors "github.com/FocuswithJustin/usjconv/core/errors"
	"github.com/FocuswithJustin/usjconv/core/markers"
)

// Tag is the classified form of a start or end tag.
type Tag struct {
	Raw      string // as written after the backslash, without the closing *
	Name     string // base name without sigil or level
	FullName string // marker as emitted: Name plus level when level != 1
	Level    int
	Nested   bool
	Closing  bool
	Kind     markers.Kind
}

var levelRE = regexp.MustCompile(`^([a-z\-]+?)([1-9]?)(-[1-9])?$`)

// Classify resolves a raw tag name such as "+it", "q2" or "toc1".
// A name outside the marker tables is an *errors.UnknownMarkerError.
func Classify(raw string) (Tag, error) {
	tag := Tag{Raw: raw, Level: 1}
	name := raw
	if strings.HasPrefix(name, "+") {
		tag.Nested = true
		name = name[1:]
	}

	if kind := markers.Lookup(name); kind != markers.KindUnknown {
		tag.Name, tag.FullName, tag.Kind = name, name, kind
		return tag, nil
	}

	m := levelRE.FindStringSubmatch(name)
	if m == nil {
		return tag, &usjerrors.UnknownMarkerError{Marker: name}
	}
	tag.Name = m[1]
	tag.FullName = m[1]
	if m[2] != "" {
		tag.Level, _ = strconv.Atoi(m[2])
		if tag.Level != 1 {
			tag.FullName += m[2]
		}
	}
	tag.FullName += m[3]

	tag.Kind = markers.Lookup(tag.Name)
	if tag.Kind == markers.KindUnknown {
		return tag, &usjerrors.UnknownMarkerError{Marker: name}
	}
	return tag, nil
}

// classifyToken classifies a tag token and records its position on failure.
func classifyToken(t Token) (Tag, error) {
	tag, err := Classify(t.Name)
	if err != nil {
		if um, ok := err.(*usjerrors.UnknownMarkerError); ok {
			um.Line, um.Column = t.Pos.Line, t.Pos.Column
		}
		return tag, err
	}
	tag.Closing = t.Kind == KindEndTag
	return tag, nil
}
