package usj

import (
	"fmt"
	"regexp"

	"github.com/FocuswithJustin/usjconv/core/markers"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

func newValidationError(path, message string) error {
	return &ValidationError{Path: path, Message: message}
}

var (
	bookCodePattern   = regexp.MustCompile(`^[A-Z0-9]{3}$`)
	chapterPattern    = regexp.MustCompile(`^[0-9]+$`)
	versePattern      = regexp.MustCompile(`^[0-9][0-9a-z\-]*$`)
	attrKeyPattern    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9\-]*$`)
	markerNamePattern = regexp.MustCompile(`^([a-z]+?)([1-9]?)(-[1-9])?$`)
	milestonePattern  = regexp.MustCompile(`^[a-z1-9]+(-[se])?$`)
)

// Validate checks a document against the attribute rules of each node
// type and returns all violations found.
func Validate(doc *Document) []error {
	var errs []error
	if doc.Version == "" {
		errs = append(errs, newValidationError("$", "version is required"))
	}
	for i, it := range doc.Content {
		path := fmt.Sprintf("$.content[%d]", i)
		if it.IsText() {
			continue
		}
		switch it.Node.Type {
		case TypeBook, TypeChapter, TypePara, TypeMilestone:
		default:
			errs = append(errs, newValidationError(path,
				fmt.Sprintf("%s is not allowed at top level", it.Node.Type)))
		}
		errs = append(errs, ValidateNode(path, it.Node)...)
	}
	return errs
}

// ValidateNode validates a node and its descendants.
func ValidateNode(path string, n *Node) []error {
	var errs []error
	add := func(msg string) {
		errs = append(errs, newValidationError(path, msg))
	}

	switch n.Type {
	case TypeBook:
		if n.Marker != markers.Book {
			add(fmt.Sprintf("book marker must be %q, got %q", markers.Book, n.Marker))
		}
		if !bookCodePattern.MatchString(n.Code) {
			add(fmt.Sprintf("invalid book code %q", n.Code))
		}
		errs = append(errs, noAttributes(path, n)...)
	case TypeChapter:
		if !chapterPattern.MatchString(n.Number) {
			add(fmt.Sprintf("invalid chapter number %q", n.Number))
		}
		errs = append(errs, noAttributes(path, n)...)
	case TypeVerse:
		if !versePattern.MatchString(n.Number) {
			add(fmt.Sprintf("invalid verse number %q", n.Number))
		}
		errs = append(errs, noAttributes(path, n)...)
	case TypePara:
		if kind := markerKind(n.Marker); kind != markers.KindParagraph {
			add(fmt.Sprintf("%q is not a paragraph marker", n.Marker))
		}
		errs = append(errs, noAttributes(path, n)...)
	case TypeChar:
		if kind := markerKind(n.Marker); kind != markers.KindCharacter {
			add(fmt.Sprintf("%q is not a character marker", n.Marker))
		}
	case TypeNote:
		if !markers.IsNote(n.Marker) {
			add(fmt.Sprintf("%q is not a note marker", n.Marker))
		}
		if n.Caller == "" {
			add("note caller is required")
		}
	case TypeMilestone:
		if n.Marker == "" {
			add("milestone marker is required")
		} else if !milestonePattern.MatchString(n.Marker) {
			add(fmt.Sprintf("invalid milestone marker %q", n.Marker))
		}
	default:
		add(fmt.Sprintf("unknown node type %q", n.Type))
	}

	if n.SID != "" && (n.Type == TypeChapter || n.Type == TypeVerse) {
		if _, err := ParseSID(n.SID); err != nil {
			add(err.Error())
		}
	}

	for _, key := range n.Attributes.Keys() {
		switch {
		case IsReservedKey(key):
			add(fmt.Sprintf("attribute %q collides with a node field", key))
		case key != markers.DefaultAttrib && !attrKeyPattern.MatchString(key):
			add(fmt.Sprintf("invalid attribute name %q", key))
		}
	}

	if len(n.Content) > 0 && !n.IsContainer() {
		add(fmt.Sprintf("%s may not have content", n.Type))
	}
	for i, it := range n.Content {
		if it.IsText() {
			continue
		}
		childPath := fmt.Sprintf("%s.content[%d]", path, i)
		if it.Node.Type == TypeBook || it.Node.Type == TypeChapter {
			errs = append(errs, newValidationError(childPath,
				fmt.Sprintf("%s must be at top level", it.Node.Type)))
		}
		errs = append(errs, ValidateNode(childPath, it.Node)...)
	}
	return errs
}

func noAttributes(path string, n *Node) []error {
	var errs []error
	for _, kv := range n.Attributes {
		errs = append(errs, newValidationError(path,
			fmt.Sprintf("unexpected attribute %q on %s", kv.Key, n.Type)))
	}
	return errs
}

// markerKind resolves a full marker name such as "q2" or "toc1".
func markerKind(marker string) markers.Kind {
	if kind := markers.Lookup(marker); kind != markers.KindUnknown {
		return kind
	}
	m := markerNamePattern.FindStringSubmatch(marker)
	if m == nil {
		return markers.KindUnknown
	}
	return markers.Lookup(m[1])
}
