package usj

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	usjerrors "github.com/FocuswithJustin/usjconv/core/errors"
)

// Marshal encodes the document as compact USJ.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	w := &writer{buf: &buf}
	w.document(doc)
	if w.err != nil {
		return nil, w.err
	}
	return buf.Bytes(), nil
}

// MarshalIndent encodes the document as USJ indented with two spaces.
func MarshalIndent(doc *Document) ([]byte, error) {
	compact, err := Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// MarshalJSON implements json.Marshaler with USJ key order.
func (d *Document) MarshalJSON() ([]byte, error) {
	return Marshal(d)
}

// MarshalJSON implements json.Marshaler with USJ key order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	w := &writer{buf: &buf}
	w.node(n)
	return buf.Bytes(), w.err
}

// UnmarshalJSON implements json.Unmarshaler, keeping attribute order.
func (d *Document) UnmarshalJSON(data []byte) error {
	doc, err := Unmarshal(data)
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}

type writer struct {
	buf *bytes.Buffer
	err error
}

func (w *writer) str(s string) {
	if w.err != nil {
		return
	}
	enc := json.NewEncoder(w.buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		w.err = err
		return
	}
	// Encode terminates every value with a newline.
	w.buf.Truncate(w.buf.Len() - 1)
}

func (w *writer) field(first *bool, key, value string) {
	if !*first {
		w.buf.WriteByte(',')
	}
	*first = false
	w.str(key)
	w.buf.WriteByte(':')
	w.str(value)
}

func (w *writer) document(d *Document) {
	typ := d.Type
	if typ == "" {
		typ = DocumentType
	}
	first := true
	w.buf.WriteByte('{')
	w.field(&first, "type", typ)
	w.field(&first, "version", d.Version)
	w.buf.WriteString(`,"content":`)
	w.items(d.Content)
	w.buf.WriteByte('}')
}

func (w *writer) items(items []Item) {
	w.buf.WriteByte('[')
	for i, it := range items {
		if i > 0 {
			w.buf.WriteByte(',')
		}
		if it.IsText() {
			w.str(it.Text)
			continue
		}
		w.node(it.Node)
	}
	w.buf.WriteByte(']')
}

// reservedKeys are node object keys with a fixed meaning. An attribute
// using one of them cannot be represented and is not written.
var reservedKeys = map[string]bool{
	"type": true, "marker": true, "code": true, "number": true,
	"altnumber": true, "pubnumber": true, "caller": true, "category": true,
	"sid": true, "content": true,
}

// IsReservedKey reports whether key names a node field rather than an
// attribute.
func IsReservedKey(key string) bool { return reservedKeys[key] }

func (w *writer) node(n *Node) {
	first := true
	w.buf.WriteByte('{')
	w.field(&first, "type", n.Type)
	for _, f := range []struct{ key, value string }{
		{"marker", n.Marker},
		{"code", n.Code},
		{"number", n.Number},
		{"altnumber", n.AltNumber},
		{"pubnumber", n.PubNumber},
		{"caller", n.Caller},
		{"category", n.Category},
		{"sid", n.SID},
	} {
		if f.value != "" {
			w.field(&first, f.key, f.value)
		}
	}
	for _, kv := range n.Attributes {
		if !reservedKeys[kv.Key] {
			w.field(&first, kv.Key, kv.Value)
		}
	}
	if n.IsContainer() || len(n.Content) > 0 {
		w.buf.WriteString(`,"content":`)
		w.items(n.Content)
	}
	w.buf.WriteByte('}')
}

// Unmarshal decodes USJ. Object key order of unknown keys is preserved as
// attribute order.
func Unmarshal(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	r := &reader{dec: dec}

	doc, err := r.document()
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, r.fail("$", "trailing data after document")
	}
	return doc, nil
}

// Read decodes USJ from r.
func Read(rd io.Reader) (*Document, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, usjerrors.NewIO("read", "", err)
	}
	return Unmarshal(data)
}

type reader struct {
	dec *json.Decoder
}

func (r *reader) fail(path, msg string) error {
	return usjerrors.NewParse("USJ", path, msg)
}

func (r *reader) wrap(path string, err error) error {
	return &usjerrors.ParseError{Format: "USJ", Path: path, Message: err.Error(), Err: err}
}

func (r *reader) delim(path string, want json.Delim) error {
	tok, err := r.dec.Token()
	if err != nil {
		return r.wrap(path, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return r.fail(path, fmt.Sprintf("expected %q, got %v", want, tok))
	}
	return nil
}

func (r *reader) key(path string) (string, error) {
	tok, err := r.dec.Token()
	if err != nil {
		return "", r.wrap(path, err)
	}
	k, ok := tok.(string)
	if !ok {
		return "", r.fail(path, fmt.Sprintf("expected object key, got %v", tok))
	}
	return k, nil
}

// scalar reads a string or number value.
func (r *reader) scalar(path string) (string, error) {
	tok, err := r.dec.Token()
	if err != nil {
		return "", r.wrap(path, err)
	}
	switch v := tok.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	default:
		return "", r.fail(path, fmt.Sprintf("expected string value, got %v", tok))
	}
}

func (r *reader) skip(path string) error {
	depth := 0
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return r.wrap(path, err)
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			default:
				depth--
			}
		}
		if depth == 0 {
			return nil
		}
	}
}

func (r *reader) document() (*Document, error) {
	if err := r.delim("$", '{'); err != nil {
		return nil, err
	}
	doc := &Document{}
	seenContent := false
	for r.dec.More() {
		k, err := r.key("$")
		if err != nil {
			return nil, err
		}
		path := "$." + k
		switch k {
		case "type":
			if doc.Type, err = r.scalar(path); err != nil {
				return nil, err
			}
			if doc.Type != DocumentType {
				return nil, r.fail(path, fmt.Sprintf("root type must be %q, got %q", DocumentType, doc.Type))
			}
		case "version":
			if doc.Version, err = r.scalar(path); err != nil {
				return nil, err
			}
		case "content":
			if doc.Content, err = r.items(path, nil); err != nil {
				return nil, err
			}
			seenContent = true
		default:
			if err := r.skip(path); err != nil {
				return nil, err
			}
		}
	}
	if err := r.delim("$", '}'); err != nil {
		return nil, err
	}
	if !seenContent {
		return nil, r.fail("$", "missing content")
	}
	doc.Type = DocumentType
	if doc.Version == "" {
		doc.Version = DefaultVersion
	}
	return doc, nil
}

func (r *reader) items(path string, parent *Node) ([]Item, error) {
	if err := r.delim(path, '['); err != nil {
		return nil, err
	}
	items := []Item{}
	for i := 0; r.dec.More(); i++ {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		tok, err := r.dec.Token()
		if err != nil {
			return nil, r.wrap(itemPath, err)
		}
		switch v := tok.(type) {
		case string:
			items = append(items, Text(v))
		case json.Delim:
			if v != '{' {
				return nil, r.fail(itemPath, "content items must be strings or objects")
			}
			n, err := r.node(itemPath)
			if err != nil {
				return nil, err
			}
			n.Nested = parent != nil && parent.Type == TypeChar && n.Type == TypeChar
			items = append(items, NodeItem(n))
		default:
			return nil, r.fail(itemPath, "content items must be strings or objects")
		}
	}
	if err := r.delim(path, ']'); err != nil {
		return nil, err
	}
	return items, nil
}

// node reads the remainder of an object whose opening brace was consumed.
func (r *reader) node(path string) (*Node, error) {
	n := &Node{}
	for r.dec.More() {
		k, err := r.key(path)
		if err != nil {
			return nil, err
		}
		fieldPath := path + "." + k
		if k == "content" {
			if n.Content, err = r.items(fieldPath, n); err != nil {
				return nil, err
			}
			continue
		}
		v, err := r.scalar(fieldPath)
		if err != nil {
			return nil, err
		}
		switch k {
		case "type":
			n.Type = v
		case "marker":
			n.Marker = v
		case "code":
			n.Code = v
		case "number":
			n.Number = v
		case "altnumber":
			n.AltNumber = v
		case "pubnumber":
			n.PubNumber = v
		case "caller":
			n.Caller = v
		case "category":
			n.Category = v
		case "sid":
			n.SID = v
		default:
			n.Attributes.Set(k, v)
		}
	}
	if err := r.delim(path, '}'); err != nil {
		return nil, err
	}
	if n.Type == "" {
		return nil, r.fail(path, "node without type")
	}
	// Content order is independent of key order; fix up nesting now that
	// the type is known.
	for _, it := range n.Content {
		if it.Node != nil {
			it.Node.Nested = n.Type == TypeChar && it.Node.Type == TypeChar
		}
	}
	return n, nil
}
