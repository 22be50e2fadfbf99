// Package usj is the canonical document model.
//
// A Document is the JSON object tree described by the USJ format: a root with
// a version and an ordered content list of book, chapter and para nodes. All
// conversions pass through this model.
package usj

import "strings"

// DocumentType is the root type tag written to USJ output.
const DocumentType = "USJ"

// DefaultVersion is used when a source carries no version line.
const DefaultVersion = "3.0"

// Node types.
const (
	TypeBook      = "book"
	TypeChapter   = "chapter"
	TypePara      = "para"
	TypeVerse     = "verse"
	TypeChar      = "char"
	TypeNote      = "note"
	TypeMilestone = "ms"
)

// Document is the root of a USJ tree.
type Document struct {
	Type    string
	Version string
	Content []Item
}

// NewDocument returns an empty document with the given version.
func NewDocument(version string) *Document {
	if version == "" {
		version = DefaultVersion
	}
	return &Document{Type: DocumentType, Version: version}
}

// Append adds items to the top-level content list.
func (d *Document) Append(items ...Item) {
	d.Content = append(d.Content, items...)
}

// Nodes returns the top-level nodes, skipping stray text.
func (d *Document) Nodes() []*Node {
	out := make([]*Node, 0, len(d.Content))
	for _, it := range d.Content {
		if it.Node != nil {
			out = append(out, it.Node)
		}
	}
	return out
}

// Book returns the first book node, or nil.
func (d *Document) Book() *Node {
	for _, it := range d.Content {
		if it.Node != nil && it.Node.Type == TypeBook {
			return it.Node
		}
	}
	return nil
}

// Item is one entry of a content list: either text or a node.
type Item struct {
	Text string
	Node *Node
}

// Text returns a text item.
func Text(s string) Item { return Item{Text: s} }

// NodeItem returns a node item.
func NodeItem(n *Node) Item { return Item{Node: n} }

// IsText reports whether the item is text.
func (it Item) IsText() bool { return it.Node == nil }

// Attribute is a single key/value pair carried by a node.
type Attribute struct {
	Key   string
	Value string
}

// Attributes is an insertion-ordered attribute list.
type Attributes []Attribute

// Get returns the value for key.
func (a Attributes) Get(key string) (string, bool) {
	for _, kv := range a {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Set replaces the value for key in place, or appends it.
func (a *Attributes) Set(key, value string) {
	for i := range *a {
		if (*a)[i].Key == key {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, Attribute{Key: key, Value: value})
}

// Delete removes key if present.
func (a *Attributes) Delete(key string) {
	for i := range *a {
		if (*a)[i].Key == key {
			*a = append((*a)[:i], (*a)[i+1:]...)
			return
		}
	}
}

// Keys returns the keys in order.
func (a Attributes) Keys() []string {
	keys := make([]string, len(a))
	for i, kv := range a {
		keys[i] = kv.Key
	}
	return keys
}

// Node is a typed element of the tree.
//
// Which fields are meaningful depends on Type: Code only on book, Number on
// chapter and verse, Caller on note. Nested marks a char opened with the +
// sigil inside another char; it is derived from the tree shape and never
// serialized.
type Node struct {
	Type       string
	Marker     string
	Code       string
	Number     string
	AltNumber  string
	PubNumber  string
	Caller     string
	Category   string
	SID        string
	Nested     bool
	Attributes Attributes
	Content    []Item
}

// IsContainer reports whether the node type owns a content list.
func (n *Node) IsContainer() bool {
	switch n.Type {
	case TypeBook, TypePara, TypeChar, TypeNote:
		return true
	}
	return false
}

// Append adds items to the node's content.
func (n *Node) Append(items ...Item) {
	n.Content = append(n.Content, items...)
}

// AppendText adds text, merging with a trailing text item.
func (n *Node) AppendText(s string) {
	if s == "" {
		return
	}
	if last := len(n.Content) - 1; last >= 0 && n.Content[last].IsText() {
		n.Content[last].Text += s
		return
	}
	n.Content = append(n.Content, Text(s))
}

// TrimTrailingSpace removes trailing spaces and tabs from the last text
// item, dropping the item when nothing is left.
func (n *Node) TrimTrailingSpace() {
	last := len(n.Content) - 1
	if last < 0 || !n.Content[last].IsText() {
		return
	}
	if s := strings.TrimRight(n.Content[last].Text, " \t"); s != "" {
		n.Content[last].Text = s
		return
	}
	n.Content = n.Content[:last]
}

// PlainText returns the concatenated text of the node and its descendants.
func (n *Node) PlainText() string {
	var sb strings.Builder
	writeText(&sb, n.Content)
	return sb.String()
}

func writeText(sb *strings.Builder, items []Item) {
	for _, it := range items {
		if it.IsText() {
			sb.WriteString(it.Text)
			continue
		}
		writeText(sb, it.Node.Content)
	}
}

// Walk visits every node in content depth-first, parents before children.
// Returning false from fn skips the node's children.
func Walk(content []Item, fn func(n *Node) bool) {
	for _, it := range content {
		if it.Node == nil {
			continue
		}
		if fn(it.Node) {
			Walk(it.Node.Content, fn)
		}
	}
}
