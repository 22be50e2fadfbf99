package usfm

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/FocuswithJustin/usjconv/core/markers"
	"github.com/FocuswithJustin/usjconv/core/usj"
)

// Write serializes a document as USFM. Reading the output back with
// BuildDocument yields a tree equal to doc for any tree BuildDocument
// produced.
func Write(doc *usj.Document) ([]byte, error) {
	var buf bytes.Buffer
	w := &writer{buf: &buf}

	content := doc.Content
	if len(content) > 0 && content[0].Node != nil && content[0].Node.Type == usj.TypeBook {
		w.block(content[0])
		content = content[1:]
	}
	if doc.Version != "" {
		fmt.Fprintf(&buf, "\\%s %s\n", markers.Version, doc.Version)
	}
	for _, it := range content {
		w.block(it)
	}
	return buf.Bytes(), nil
}

type writer struct {
	buf *bytes.Buffer
}

func (w *writer) block(it usj.Item) {
	if it.IsText() {
		w.text(it.Text)
		w.buf.WriteByte('\n')
		return
	}
	n := it.Node
	switch n.Type {
	case usj.TypeBook:
		w.buf.WriteString(`\` + markers.Book + " " + n.Code)
		if len(n.Content) > 0 {
			w.buf.WriteByte(' ')
			w.inline(n.Content, false)
		}
	case usj.TypeChapter:
		w.buf.WriteString(`\` + markers.Chapter + " " + n.Number)
		if n.AltNumber != "" {
			fmt.Fprintf(w.buf, "\n\\%s %s\\%s*", markers.AltChapter, n.AltNumber, markers.AltChapter)
		}
		if n.PubNumber != "" {
			fmt.Fprintf(w.buf, "\n\\%s %s", markers.PubChapter, n.PubNumber)
		}
	case usj.TypePara:
		w.buf.WriteString(`\` + n.Marker)
		if len(n.Content) > 0 && (n.Content[0].IsText() || n.Content[0].Node.Type != usj.TypeVerse) {
			w.buf.WriteByte(' ')
		}
		w.inline(n.Content, false)
	default:
		w.inline([]usj.Item{it}, false)
	}
	w.buf.WriteByte('\n')
}

func (w *writer) inline(items []usj.Item, inChar bool) {
	for _, it := range items {
		if it.IsText() {
			w.text(it.Text)
			continue
		}
		n := it.Node
		switch n.Type {
		case usj.TypeVerse:
			fmt.Fprintf(w.buf, "\n\\%s %s ", markers.Verse, n.Number)
			if n.AltNumber != "" {
				fmt.Fprintf(w.buf, "\\%s %s\\%s* ", markers.AltVerse, n.AltNumber, markers.AltVerse)
			}
			if n.PubNumber != "" {
				fmt.Fprintf(w.buf, "\\%s %s\\%s* ", markers.PubVerse, n.PubNumber, markers.PubVerse)
			}
		case usj.TypeChar:
			marker := n.Marker
			if inChar {
				marker = "+" + marker
			}
			w.buf.WriteString(`\` + marker + " ")
			w.inline(n.Content, true)
			w.charAttributes(n.Attributes)
			w.buf.WriteString(`\` + marker + "*")
		case usj.TypeNote:
			caller := n.Caller
			if caller == "" {
				caller = "+"
			}
			w.buf.WriteString(`\` + n.Marker + " " + caller + " ")
			w.inline(n.Content, false)
			w.buf.WriteString(`\` + n.Marker + "*")
		case usj.TypeMilestone:
			w.buf.WriteString(`\` + n.Marker)
			if len(n.Attributes) > 0 {
				w.buf.WriteString(" |")
				w.pairs(n.Attributes)
			}
			w.buf.WriteString(`\*`)
		default:
			w.inline(n.Content, inChar)
		}
	}
}

// charAttributes writes a lone default attribute in its short |value form
// and everything else as key="value" pairs.
func (w *writer) charAttributes(attrs usj.Attributes) {
	if len(attrs) == 0 {
		return
	}
	w.buf.WriteByte('|')
	if len(attrs) == 1 && attrs[0].Key == markers.DefaultAttrib {
		w.buf.WriteString(attrs[0].Value)
		return
	}
	w.pairs(attrs)
}

func (w *writer) pairs(attrs usj.Attributes) {
	for i, kv := range attrs {
		if i > 0 {
			w.buf.WriteByte(' ')
		}
		fmt.Fprintf(w.buf, `%s="%s"`, kv.Key, kv.Value)
	}
}

func (w *writer) text(s string) {
	w.buf.WriteString(strings.ReplaceAll(s, "\u00a0", "~"))
}
