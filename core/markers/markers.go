// Package markers holds the USFM marker vocabulary.
//
// The tables are consulted read-only by the USFM classifier and by USJ
// validation. Changing them changes the recognised vocabulary, not the
// parsing logic.
package markers

// Kind is the structural role of a marker.
type Kind int

// Marker kinds.
const (
	KindUnknown Kind = iota
	KindParagraph
	KindCharacter
	KindNote
	KindBook
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindCharacter:
		return "character"
	case KindNote:
		return "note"
	case KindBook:
		return "book"
	default:
		return "unknown"
	}
}

// Book is the book identification marker.
const Book = "id"

// Special markers handled outside the tables.
const (
	Version       = "usfm"
	Word          = "w"
	Chapter       = "c"
	PubChapter    = "cp"
	Verse         = "v"
	AltChapter    = "ca"
	AltVerse      = "va"
	PubVerse      = "vp"
	Milestone     = "ms"
	DefaultAttrib = "default"
)

var paragraphs = set(
	// identification
	"usfm", "ide", "sts", "rem", "h", "toc1", "toc2", "toc3", "toca1", "toca2", "toca3",
	// introductions
	"imt", "imte", "is", "ip", "ipi", "im", "imi", "ipq", "imq", "ipr", "iq", "ib",
	"ili", "iot", "io", "iex", "ie",
	// titles and headings
	"mt", "mte", "ms", "mr", "s", "sr", "r", "d", "sp", "sd",
	// chapters
	"cl", "cd",
	// paragraphs
	"p", "m", "po", "pr", "cls", "pmo", "pm", "pmc", "pmr", "pi", "mi", "nb", "pc", "ph", "b",
	// poetry
	"q", "qr", "qc", "qa", "qm", "qd",
	// lists
	"lh", "li", "lf", "lim", "lit",
	// tables
	"tr",
	// peripherals
	"periph",
)

var characters = set(
	// words and special text
	"w", "bd", "it", "bdit", "em", "sc", "sup", "no", "nd", "tl", "pn", "png", "addpn",
	"qt", "wj", "add", "bk", "dc", "k", "ord", "sig", "sls", "rq", "fig", "ndx", "rb",
	"pro", "wg", "wh", "wa", "jmp",
	// numbering
	"ca", "va", "vp",
	// poetry and lists
	"qs", "qac", "litl", "lik", "liv",
	// introductions
	"ior", "iqt",
	// footnote content
	"fr", "fq", "fqa", "fk", "ft", "fl", "fw", "fp", "fv", "fdc", "fm",
	// cross reference content
	"xo", "xk", "xq", "xt", "xta", "xop", "xot", "xnt", "xdc",
	// table cells
	"th", "thr", "tc", "tcr", "thc", "tcc",
)

var notes = set("f", "fe", "ef", "x", "ex")

func set(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// Lookup returns the kind of a bare marker name (no sigil, no level).
func Lookup(name string) Kind {
	if _, ok := paragraphs[name]; ok {
		return KindParagraph
	}
	if _, ok := characters[name]; ok {
		return KindCharacter
	}
	if name == Book {
		return KindBook
	}
	if _, ok := notes[name]; ok {
		return KindNote
	}
	return KindUnknown
}

// IsNote reports whether name is a note marker.
func IsNote(name string) bool { return Lookup(name) == KindNote }

// IsNumbering reports whether name is one of the alternate or publication
// number spans that decorate chapters and verses.
func IsNumbering(name string) bool {
	return name == AltChapter || name == AltVerse || name == PubVerse
}
