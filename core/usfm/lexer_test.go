package usfm

import (
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Kind
	}{
		{"chapter", "\\c 1\n", []Kind{KindChapter}},
		{"chapter swallows leading newline", "a\n\\c 12\n", []Kind{KindWordLike, KindChapter}},
		{"pub chapter", "\\cp A\n", []Kind{KindPubChapter}},
		{"cl is a tag", "\\cl Psalm", []Kind{KindStartTag, KindWordLike}},
		{"verse", "\\v 1-2 text", []Kind{KindVerses, KindWordLike}},
		{"word with default", `\w man|Man\w*`, []Kind{KindStartTag, KindWordLike, KindDefaultAttribute, KindEndTag}},
		{"milestone pair", `\zaln-s |x-strong="G1"\*`, []Kind{KindStartMilestone, KindAttribute, KindEndMilestoneMarker}},
		{"empty milestone", `\ts\*`, []Kind{KindEmptyMilestone}},
		{"nested tags", `\+it x\+it*`, []Kind{KindStartTag, KindWordLike, KindEndTag}},
		{"levelled tag", `\q2 x`, []Kind{KindStartTag, KindWordLike}},
		{"bare slash", `\ 1`, []Kind{KindBareSlash, KindLineSpace, KindWordLike}},
		{"line break", "foo \r\n  bar", []Kind{KindWordLike, KindEOL, KindWordLike}},
		{"specials", "a~b//c", []Kind{KindWordLike, KindNoBreakSpace, KindWordLike, KindSoftLineBreak, KindWordLike}},
		{"punctuation", "a, b.", []Kind{KindWordLike, KindPunctuation, KindLineSpace, KindWordLike, KindPunctuation}},
		{"unknown", "\x01", []Kind{KindUnknown}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize() error = %v", err)
			}
			if len(tokens) != len(tt.want) {
				t.Fatalf("Tokenize() = %v, want kinds %v", tokens, tt.want)
			}
			for i, tok := range tokens {
				if tok.Kind != tt.want[i] {
					t.Errorf("token %d kind = %s, want %s", i, tok.Kind, tt.want[i])
				}
			}
		})
	}
}

func TestTokenizeFields(t *testing.T) {
	tokens, err := Tokenize("\\c 3\n\\cp C \n\\v 4b \\zaln-s |x-strong=\"G1\"\\*\\w a|A, B \\w*\\+bd x\\+bd*\\ts\\*")
	if err != nil {
		t.Fatal(err)
	}

	checks := []struct {
		idx   int
		kind  Kind
		check func(Token) bool
	}{
		{0, KindChapter, func(t Token) bool { return t.Number == "3" }},
		{1, KindPubChapter, func(t Token) bool { return t.Number == "C" }},
		{2, KindVerses, func(t Token) bool { return t.Number == "4b" }},
		{3, KindStartMilestone, func(t Token) bool { return t.Name == "zaln" && t.Side == "s" }},
		{4, KindAttribute, func(t Token) bool { return t.Key == "x-strong" && t.AttrValue == "G1" }},
		{6, KindStartTag, func(t Token) bool { return t.Name == "w" }},
		{8, KindDefaultAttribute, func(t Token) bool { return t.Key == "default" && t.AttrValue == "A,B" }},
		{9, KindEndTag, func(t Token) bool { return t.Name == "w" }},
		{10, KindStartTag, func(t Token) bool { return t.Name == "+bd" }},
		{12, KindEndTag, func(t Token) bool { return t.Name == "+bd" }},
		{13, KindEmptyMilestone, func(t Token) bool { return t.Name == "ts" }},
	}
	for _, c := range checks {
		if c.idx >= len(tokens) {
			t.Fatalf("only %d tokens: %v", len(tokens), tokens)
		}
		tok := tokens[c.idx]
		if tok.Kind != c.kind || !c.check(tok) {
			t.Errorf("token %d = %+v, want kind %s", c.idx, tok, c.kind)
		}
	}
}

func TestTokenizeCoversInput(t *testing.T) {
	for _, input := range []string{psalmSample, genesisSample, "\\\\\\ ~~//\t\x00é\u3000x"} {
		tokens, err := Tokenize(input)
		if err != nil {
			t.Fatal(err)
		}
		var sb strings.Builder
		for _, tok := range tokens {
			if tok.Value == "" {
				t.Errorf("empty token %v", tok)
			}
			sb.WriteString(tok.Value)
		}
		if sb.String() != input {
			t.Errorf("tokens do not reproduce input:\n%q\n%q", sb.String(), input)
		}
	}
}

func TestTokenPositions(t *testing.T) {
	tokens, err := Tokenize("\\p\n\\bd x")
	if err != nil {
		t.Fatal(err)
	}
	bd := tokens[2]
	if bd.Kind != KindStartTag || bd.Pos.Line != 2 || bd.Pos.Column != 1 {
		t.Errorf("bd token = %v", bd)
	}
}

func TestKindString(t *testing.T) {
	if KindVerses.String() != "Verses" || KindUnknown.String() != "Unknown" {
		t.Error("unexpected kind names")
	}
	if got := Kind(99).String(); got != "Kind(99)" {
		t.Errorf("Kind(99).String() = %q", got)
	}
}

func TestTokenIsText(t *testing.T) {
	text := []Kind{KindWordLike, KindLineSpace, KindPunctuation, KindNoBreakSpace, KindSoftLineBreak, KindBareSlash, KindUnknown}
	for _, k := range text {
		if !(Token{Kind: k}).IsText() {
			t.Errorf("%s should be text", k)
		}
	}
	for _, k := range []Kind{KindChapter, KindEOL, KindStartTag, KindAttribute} {
		if (Token{Kind: k}).IsText() {
			t.Errorf("%s should not be text", k)
		}
	}
}

func TestSplitDefault(t *testing.T) {
	tests := map[string]string{
		"Man":          "Man",
		" a , b ,, c ": "a,b,c",
		"":             "",
	}
	for in, want := range tests {
		if got := splitDefault(in); got != want {
			t.Errorf("splitDefault(%q) = %q, want %q", in, got, want)
		}
	}
}
