package usj

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// marshalFn is a variable to allow testing of marshal errors.
var marshalFn = Marshal

// HashBytes returns the hex BLAKE3-256 digest of data.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Digest returns the BLAKE3-256 digest of the document's compact USJ form.
// Structurally equal documents with identical attribute order share a digest.
func Digest(doc *Document) (string, error) {
	data, err := marshalFn(doc)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// Equal reports whether two documents are structurally equal. Attribute
// order is not significant.
func Equal(a, b *Document) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Version == b.Version && equalItems(a.Content, b.Content)
}

// EqualNodes reports whether two nodes are structurally equal.
func EqualNodes(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type || a.Marker != b.Marker || a.Code != b.Code ||
		a.Number != b.Number || a.AltNumber != b.AltNumber || a.PubNumber != b.PubNumber ||
		a.Caller != b.Caller || a.Category != b.Category || a.SID != b.SID ||
		a.Nested != b.Nested {
		return false
	}
	if !equalAttributes(a.Attributes, b.Attributes) {
		return false
	}
	return equalItems(a.Content, b.Content)
}

func equalItems(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].IsText() != b[i].IsText() {
			return false
		}
		if a[i].IsText() {
			if a[i].Text != b[i].Text {
				return false
			}
			continue
		}
		if !EqualNodes(a[i].Node, b[i].Node) {
			return false
		}
	}
	return true
}

func equalAttributes(a, b Attributes) bool {
	if len(a) != len(b) {
		return false
	}
	for _, kv := range a {
		if v, ok := b.Get(kv.Key); !ok || v != kv.Value {
			return false
		}
	}
	return true
}
