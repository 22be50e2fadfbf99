package usj

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// SID is a parsed scripture identifier such as "PSA 1" or "PSA 1:1-2".
type SID struct {
	Book     string
	Chapter  string
	Verse    string
	VerseEnd string
}

// String formats the identifier.
func (s SID) String() string {
	out := s.Book + " " + s.Chapter
	if s.Verse != "" {
		out += ":" + s.Verse
		if s.VerseEnd != "" {
			out += "-" + s.VerseEnd
		}
	}
	return out
}

//nolint:govet // participle grammar tags are not standard struct tags
type sidGrammar struct {
	Book    string     `parser:"@Book"`
	Chapter string     `parser:"@Number"`
	Verse   *sidVerses `parser:"( \":\" @@ )?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type sidVerses struct {
	Start string `parser:"@Number"`
	End   string `parser:"( \"-\" @Number )?"`
}

// Book codes start with an optional digit followed by a capital ("1SA", "PSA").
var sidLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Book", Pattern: `[0-9]?[A-Z][A-Z0-9]*`},
	{Name: "Number", Pattern: `[0-9][0-9a-z]*`},
	{Name: "Punct", Pattern: `[:\-]`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

var sidParser = participle.MustBuild[sidGrammar](
	participle.Lexer(sidLexer),
	participle.Elide("Whitespace"),
)

// ParseSID parses "BOOK C", "BOOK C:V" or "BOOK C:V-W".
func ParseSID(s string) (SID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SID{}, fmt.Errorf("empty sid")
	}
	g, err := sidParser.ParseString("", s)
	if err != nil {
		return SID{}, fmt.Errorf("invalid sid %q: %w", s, err)
	}
	out := SID{Book: g.Book, Chapter: g.Chapter}
	if g.Verse != nil {
		out.Verse = g.Verse.Start
		out.VerseEnd = g.Verse.End
	}
	return out, nil
}

// AssignSIDs sets sid on every chapter and verse from the book code and the
// most recent chapter. Documents without a book code are left untouched.
// Verses before the first chapter get no sid.
func AssignSIDs(doc *Document) {
	book := doc.Book()
	if book == nil || book.Code == "" {
		return
	}
	chapter := ""
	Walk(doc.Content, func(n *Node) bool {
		switch n.Type {
		case TypeChapter:
			chapter = n.Number
			n.SID = SID{Book: book.Code, Chapter: chapter}.String()
		case TypeVerse:
			if chapter != "" {
				n.SID = book.Code + " " + chapter + ":" + n.Number
			}
		}
		return true
	})
}
