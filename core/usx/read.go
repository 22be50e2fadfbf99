// Package usx converts between USX and the USJ tree.
//
// USX carries the same node types as USJ as XML elements, with the marker
// in a style attribute. Verse, chapter and milestone end elements (those
// with an eid attribute) are redundant in a tree and are skipped on read.
package usx

import (
	"bytes"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/usjconv/core/encoding"
	usjerrors "github.com/FocuswithJustin/usjconv/core/errors"
	"github.com/FocuswithJustin/usjconv/core/usj"
)

var (
	versionExpr = xpath.MustCompile("string(/usx/@version)")
	rootExpr    = xpath.MustCompile("boolean(/usx)")
)

// elementTypes maps USX element names onto USJ node types; the names are
// the same on both sides. Elements not listed contribute their text to the
// enclosing node.
var elementTypes = map[string]string{
	"book":    usj.TypeBook,
	"chapter": usj.TypeChapter,
	"para":    usj.TypePara,
	"verse":   usj.TypeVerse,
	"char":    usj.TypeChar,
	"note":    usj.TypeNote,
	"ms":      usj.TypeMilestone,
}

// defaultMarkers fills in a marker when the style attribute is missing.
var defaultMarkers = map[string]string{
	usj.TypeBook:    "id",
	usj.TypeChapter: "c",
	usj.TypeVerse:   "v",
}

// Read parses USX from r.
func Read(r io.Reader) (*usj.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, usjerrors.NewIO("read", "", err)
	}
	return Unmarshal(data)
}

// Unmarshal parses a USX document into a USJ tree.
func Unmarshal(data []byte) (*usj.Document, error) {
	top, err := parse(data)
	if err != nil {
		return nil, err
	}
	root := rootElement(top)
	if root == nil || root.Data != "usx" {
		return nil, usjerrors.NewParse("USX", "/", "root element is not <usx>")
	}

	doc := usj.NewDocument(evalVersion(top))
	holder := &usj.Node{}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			element(c, holder)
		}
	}
	// Text directly under <usx> is layout only.
	for _, it := range holder.Content {
		if it.Node != nil {
			doc.Append(it)
		}
	}
	return doc, nil
}

// Version returns the version attribute of the <usx> root, or "" when it
// is absent.
func Version(data []byte) (string, error) {
	top, err := parse(data)
	if err != nil {
		return "", err
	}
	return evalVersion(top), nil
}

// Probe reports whether data is well-formed XML with a <usx> root.
func Probe(data []byte) bool {
	top, err := parse(data)
	if err != nil {
		return false
	}
	ok, _ := rootExpr.Evaluate(xmlquery.CreateXPathNavigator(top)).(bool)
	return ok
}

func parse(data []byte) (*xmlquery.Node, error) {
	top, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &usjerrors.ParseError{Format: "USX", Message: err.Error(), Err: err}
	}
	return top, nil
}

func evalVersion(top *xmlquery.Node) string {
	v, _ := versionExpr.Evaluate(xmlquery.CreateXPathNavigator(top)).(string)
	return strings.TrimSpace(v)
}

func rootElement(top *xmlquery.Node) *xmlquery.Node {
	for c := top.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return c
		}
	}
	return nil
}

func hasAttr(el *xmlquery.Node, name string) bool {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return true
		}
	}
	return false
}

func element(el *xmlquery.Node, parent *usj.Node) {
	typ, ok := elementTypes[el.Data]
	if !ok {
		children(el, parent)
		return
	}
	switch typ {
	case usj.TypeChapter, usj.TypeVerse, usj.TypeMilestone:
		if hasAttr(el, "eid") {
			return
		}
	}

	n := &usj.Node{Type: typ, Marker: defaultMarkers[typ]}
	for _, a := range el.Attr {
		switch a.Name.Local {
		case "style":
			n.Marker = a.Value
		case "code":
			n.Code = a.Value
		case "number":
			n.Number = a.Value
		case "altnumber":
			n.AltNumber = a.Value
		case "pubnumber":
			n.PubNumber = a.Value
		case "caller":
			n.Caller = a.Value
		case "category":
			n.Category = a.Value
		case "sid":
			n.SID = a.Value
		case "vid", "closed":
		default:
			n.Attributes.Set(a.Name.Local, a.Value)
		}
	}
	if typ == usj.TypeChar {
		n.Nested = parent.Type == usj.TypeChar
	}
	if typ == usj.TypeVerse {
		parent.TrimTrailingSpace()
	}

	children(el, n)
	switch typ {
	case usj.TypeBook, usj.TypePara, usj.TypeNote:
		n.TrimTrailingSpace()
	}
	parent.Append(usj.NodeItem(n))
}

func children(el *xmlquery.Node, parent *usj.Node) {
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			appendText(parent, c.Data)
		case xmlquery.ElementNode:
			element(c, parent)
		}
	}
}

// appendText adds collapsed text, dropping leading space at the start of a
// node and after a verse.
func appendText(parent *usj.Node, s string) {
	s = encoding.CollapseSpace(s)
	last := len(parent.Content) - 1
	if last < 0 || (parent.Content[last].Node != nil && parent.Content[last].Node.Type == usj.TypeVerse) {
		s = strings.TrimLeft(s, " ")
	}
	parent.AppendText(s)
}
