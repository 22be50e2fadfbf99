package usfm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// usfmLexer tries each rule in order at every position; the first rule that
// matches wins. Chapter must precede StartTag so that \c is not read as a
// generic tag, and Unknown guarantees that every character is consumed.
var usfmLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Chapter", Pattern: `[\r\n]*\\c[ \t]+\d+[ \t\r\n]*`},
	{Name: "PubChapter", Pattern: `[\r\n]*\\cp[ \t]+[^\r\n]+[ \t\r\n]*`},
	{Name: "Verses", Pattern: `\\v[ \t]+[0-9][0-9a-z\-]*[ \t\r\n]*`},
	{Name: "Attribute", Pattern: `[ \t]*\|?[ \t]*[A-Za-z0-9\-]+="[^"]*"[ \t]?`},
	{Name: "DefaultAttribute", Pattern: `[ \t]*\|[ \t]*[^\|\\]*`},
	{Name: "EmptyMilestone", Pattern: `\\[a-z1-9]+\\\*`},
	{Name: "StartMilestone", Pattern: `\\[a-z1-9]+-[se]`},
	{Name: "EndMilestoneMarker", Pattern: `\\\*`},
	{Name: "EndTag", Pattern: `\\\+?[a-z\-]+[1-9]?(?:-[1-9])?\*`},
	{Name: "StartTag", Pattern: `\\\+?[a-z\-]+[1-9]?(?:-[1-9])?[ \t]?`},
	{Name: "BareSlash", Pattern: `\\`},
	{Name: "EOL", Pattern: `[ \t]*[\r\n]+[ \t]*`},
	{Name: "NoBreakSpace", Pattern: `~`},
	{Name: "SoftLineBreak", Pattern: `//`},
	{Name: "WordLike", Pattern: `[\p{L}\p{N}\p{M}\x{2060}]{1,127}`},
	{Name: "LineSpace", Pattern: `[\p{Z}\t]{1,127}`},
	{Name: "Punctuation", Pattern: `[\p{P}\p{Sm}\p{Sc}\p{Sk}\p{So}]`},
	{Name: "Unknown", Pattern: `(?s:.)`},
})

// kindBySymbol maps the lexer's token types onto Kind.
var kindBySymbol = func() map[lexer.TokenType]Kind {
	m := make(map[lexer.TokenType]Kind, len(kindNames))
	symbols := usfmLexer.Symbols()
	for k, name := range kindNames {
		if tt, ok := symbols[name]; ok {
			m[tt] = Kind(k)
		}
	}
	return m
}()

var (
	chapterRE     = regexp.MustCompile(`\\c[ \t]+(\d+)`)
	pubChapterRE  = regexp.MustCompile(`\\cp[ \t]+([^\r\n]+)`)
	versesRE      = regexp.MustCompile(`\\v[ \t]+([0-9][0-9a-z\-]*)`)
	attributeRE   = regexp.MustCompile(`([A-Za-z0-9\-]+)="([^"]*)"`)
	defaultAttrRE = regexp.MustCompile(`\|[ \t]*([^\|\\]*)`)
	emptyMsRE     = regexp.MustCompile(`\\([a-z1-9]+)\\\*`)
	startMsRE     = regexp.MustCompile(`\\([a-z1-9]+)-([se])`)
	tagRE         = regexp.MustCompile(`\\(\+?[a-z\-]+[1-9]?(?:-[1-9])?)`)
)

// Tokenize scans USFM text into tokens. Every input character belongs to
// exactly one token.
func Tokenize(text string) ([]Token, error) {
	lex, err := usfmLexer.LexString("", text)
	if err != nil {
		return nil, err
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, err
	}

	tokens := make([]Token, 0, len(raw))
	for _, r := range raw {
		if r.EOF() {
			break
		}
		kind, ok := kindBySymbol[r.Type]
		if !ok {
			return nil, fmt.Errorf("unexpected token type %d at %s", r.Type, r.Pos)
		}
		tokens = append(tokens, decode(kind, r))
	}
	return tokens, nil
}

func decode(kind Kind, r lexer.Token) Token {
	t := Token{Kind: kind, Value: r.Value, Pos: r.Pos}
	switch kind {
	case KindChapter:
		t.Number = submatch(chapterRE, r.Value, 1)
	case KindPubChapter:
		t.Number = strings.TrimSpace(submatch(pubChapterRE, r.Value, 1))
	case KindVerses:
		t.Number = submatch(versesRE, r.Value, 1)
	case KindAttribute:
		if m := attributeRE.FindStringSubmatch(r.Value); m != nil {
			t.Key, t.AttrValue = m[1], m[2]
		}
	case KindDefaultAttribute:
		t.Key = "default"
		t.AttrValue = splitDefault(submatch(defaultAttrRE, r.Value, 1))
	case KindEmptyMilestone:
		t.Name = submatch(emptyMsRE, r.Value, 1)
	case KindStartMilestone:
		if m := startMsRE.FindStringSubmatch(r.Value); m != nil {
			t.Name, t.Side = m[1], m[2]
		}
	case KindStartTag, KindEndTag:
		t.Name = submatch(tagRE, r.Value, 1)
	}
	return t
}

func submatch(re *regexp.Regexp, s string, i int) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[i]
}

// splitDefault normalises a comma separated default attribute value.
func splitDefault(v string) string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}
