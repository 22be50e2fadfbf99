package usx

import (
	"bytes"

	"github.com/beevik/etree"

	usjerrors "github.com/FocuswithJustin/usjconv/core/errors"
	"github.com/FocuswithJustin/usjconv/core/usj"
)

// Write serializes doc as USX. Each top-level node is written on its own
// line; no whitespace is added inside them.
func Write(doc *usj.Document) ([]byte, error) {
	x := etree.NewDocument()
	x.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	x.CreateText("\n")

	root := x.CreateElement("usx")
	version := doc.Version
	if version == "" {
		version = usj.DefaultVersion
	}
	root.CreateAttr("version", version)

	for _, it := range doc.Content {
		root.CreateText("\n")
		if it.IsText() {
			p := root.CreateElement("para")
			p.CreateAttr("style", "p")
			p.CreateText(it.Text)
			continue
		}
		if err := writeNode(root, it.Node); err != nil {
			return nil, err
		}
	}
	root.CreateText("\n")

	var buf bytes.Buffer
	if _, err := x.WriteTo(&buf); err != nil {
		return nil, usjerrors.NewIO("write", "", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeNode(parent *etree.Element, n *usj.Node) error {
	if _, ok := elementTypes[n.Type]; !ok {
		return usjerrors.NewUnsupported("node type", "USX has no element for "+`"`+n.Type+`"`)
	}
	el := parent.CreateElement(n.Type)
	for _, f := range []struct{ key, value string }{
		{"style", n.Marker},
		{"code", n.Code},
		{"number", n.Number},
		{"altnumber", n.AltNumber},
		{"pubnumber", n.PubNumber},
		{"caller", n.Caller},
		{"category", n.Category},
		{"sid", n.SID},
	} {
		if f.value != "" {
			el.CreateAttr(f.key, f.value)
		}
	}
	for _, kv := range n.Attributes {
		el.CreateAttr(kv.Key, kv.Value)
	}

	for _, it := range n.Content {
		if it.IsText() {
			el.CreateText(it.Text)
			continue
		}
		if err := writeNode(el, it.Node); err != nil {
			return err
		}
	}
	return nil
}
