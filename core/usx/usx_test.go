package usx

import (
	"errors"
	"strings"
	"testing"

	usjerrors "github.com/FocuswithJustin/usjconv/core/errors"
	"github.com/FocuswithJustin/usjconv/core/usfm"
	"github.com/FocuswithJustin/usjconv/core/usj"
)

const psalmUSX = `<?xml version="1.0" encoding="utf-8"?>
<usx version="3.0">
  <book code="PSA" style="id">Title</book>
  <chapter number="1" style="c" sid="PSA 1"/>
  <para style="p">
    <verse number="1" style="v" sid="PSA 1:1"/>Blessed is the <char style="w" lemma="Man">man</char> who walks.<verse eid="PSA 1:1"/></para>
  <chapter eid="PSA 1"/>
</usx>
`

func marshal(t *testing.T, doc *usj.Document) string {
	t.Helper()
	data, err := usj.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestUnmarshal(t *testing.T) {
	doc, err := Unmarshal([]byte(psalmUSX))
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := `{"type":"USJ","version":"3.0","content":[` +
		`{"type":"book","marker":"id","code":"PSA","content":["Title"]},` +
		`{"type":"chapter","marker":"c","number":"1","sid":"PSA 1"},` +
		`{"type":"para","marker":"p","content":[` +
		`{"type":"verse","marker":"v","number":"1","sid":"PSA 1:1"},` +
		`"Blessed is the ",` +
		`{"type":"char","marker":"w","lemma":"Man","content":["man"]},` +
		`" who walks."]}]}`
	if got := marshal(t, doc); got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestUnmarshalElements(t *testing.T) {
	input := `<usx version="3.1"><para style="p" vid="GEN 1:1">a <optbreak/>b <ref loc="GEN 1:1">Gen 1</ref> c<note caller="+" style="f"><char style="ft" closed="false">x <char style="bd">y</char></char></note>
	</para><para style="q2"><ms style="qt-s" who="Pilate"/>z <ms eid="x" style="qt-e"/></para></usx>`

	doc, err := Unmarshal([]byte(input))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Version != "3.1" {
		t.Errorf("Version = %q", doc.Version)
	}

	want := `{"type":"USJ","version":"3.1","content":[` +
		`{"type":"para","marker":"p","content":["a b Gen 1 c",` +
		`{"type":"note","marker":"f","caller":"+","content":[{"type":"char","marker":"ft","content":["x ",{"type":"char","marker":"bd","content":["y"]}]}]}]},` +
		`{"type":"para","marker":"q2","content":[{"type":"ms","marker":"qt-s","who":"Pilate"},"z"]}]}`
	if got := marshal(t, doc); got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}

	ft := doc.Content[0].Node.Content[1].Node.Content[0].Node
	if ft.Nested || !ft.Content[1].Node.Nested {
		t.Errorf("nested flags: ft=%v bd=%v", ft.Nested, ft.Content[1].Node.Nested)
	}
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not xml", "\\id GEN"},
		{"wrong root", `<osis><div/></osis>`},
		{"unclosed", `<usx version="3.0"><para style="p">`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, usjerrors.ErrInvalidInput) {
				t.Errorf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`<usx version="3.1"/>`, "3.1"},
		{`<usx version=" 2.5 "><para style="p"/></usx>`, "2.5"},
		{`<usx/>`, ""},
	}
	for _, tt := range tests {
		got, err := Version([]byte(tt.input))
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("Version(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	doc, err := Unmarshal([]byte(`<usx/>`))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Version != usj.DefaultVersion {
		t.Errorf("default version = %q", doc.Version)
	}
}

func TestWrite(t *testing.T) {
	doc := usj.NewDocument("")
	doc.Append(
		usj.NodeItem(&usj.Node{Type: usj.TypeBook, Marker: "id", Code: "PSA", Content: []usj.Item{usj.Text("Title")}}),
		usj.NodeItem(&usj.Node{Type: usj.TypeChapter, Marker: "c", Number: "1"}),
	)
	w := &usj.Node{Type: usj.TypeChar, Marker: "w", Content: []usj.Item{usj.Text("man")}}
	w.Attributes.Set("default", "Man")
	doc.Append(usj.NodeItem(&usj.Node{Type: usj.TypePara, Marker: "p", Content: []usj.Item{
		usj.NodeItem(&usj.Node{Type: usj.TypeVerse, Marker: "v", Number: "1"}),
		usj.Text("Blessed & "),
		usj.NodeItem(w),
	}}))

	got, err := Write(doc)
	if err != nil {
		t.Fatal(err)
	}
	want := `<?xml version="1.0" encoding="utf-8"?>
<usx version="3.0">
<book style="id" code="PSA">Title</book>
<chapter style="c" number="1"/>
<para style="p"><verse style="v" number="1"/>Blessed &amp; <char style="w" default="Man">man</char></para>
</usx>
`
	if string(got) != want {
		t.Errorf("Write() =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteUnknownType(t *testing.T) {
	doc := usj.NewDocument("")
	doc.Append(usj.NodeItem(&usj.Node{Type: "table"}))
	_, err := Write(doc)
	if !errors.Is(err, usjerrors.ErrUnsupported) {
		t.Errorf("error = %v, want ErrUnsupported", err)
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := map[string]string{
		"poetry": `\id PSA Psalms
\c 1
\q
\v 1 Blessed is the \w man|Man\w* who \bd \+it does not\+it* walk\bd* in the advice,
\q or sit in the assembly.\qs Selah\qs* Amen
\ts\*
\v 2 Beginning \zaln-s |x-strong="G5043" x-occurrence="1"\*\w milestone|x-occurrence="1"\w*\zaln-e\*
`,
		"notes": "\\id GEN\n\\c 1\n\\ca 2\\ca*\n\\p\n\\v 1 \\vp 1a\\vp* Light~here.\\f + \\fr 1.1 \\ft Or, \\fq light \\ft appeared.\\f* End\n\\b\n",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			first, err := usfm.BuildDocument(input)
			if err != nil {
				t.Fatal(err)
			}
			data, err := Write(first)
			if err != nil {
				t.Fatal(err)
			}
			if strings.Count(string(data), "\n") != len(first.Content)+3 {
				t.Errorf("expected one line per top-level node:\n%s", data)
			}
			second, err := Unmarshal(data)
			if err != nil {
				t.Fatal(err)
			}
			if !usj.Equal(first, second) {
				t.Errorf("round trip changed the tree\nfirst:  %s\nsecond: %s", marshal(t, first), marshal(t, second))
			}
		})
	}
}

func TestProbe(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{psalmUSX, true},
		{`<usx version="3.0"/>`, true},
		{`<osis/>`, false},
		{`<usx><para>`, false},
		{`\id GEN`, false},
	}
	for _, tt := range tests {
		if got := Probe([]byte(tt.input)); got != tt.want {
			t.Errorf("Probe(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
