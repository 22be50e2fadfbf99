package usfm

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// Kind identifies a token category.
type Kind int

// Token categories in scanning priority order.
const (
	KindChapter Kind = iota
	KindPubChapter
	KindVerses
	KindAttribute
	KindDefaultAttribute
	KindEmptyMilestone
	KindStartMilestone
	KindEndMilestoneMarker
	KindEndTag
	KindStartTag
	KindBareSlash
	KindEOL
	KindNoBreakSpace
	KindSoftLineBreak
	KindWordLike
	KindLineSpace
	KindPunctuation
	KindUnknown
)

var kindNames = [...]string{
	KindChapter:            "Chapter",
	KindPubChapter:         "PubChapter",
	KindVerses:             "Verses",
	KindAttribute:          "Attribute",
	KindDefaultAttribute:   "DefaultAttribute",
	KindEmptyMilestone:     "EmptyMilestone",
	KindStartMilestone:     "StartMilestone",
	KindEndMilestoneMarker: "EndMilestoneMarker",
	KindEndTag:             "EndTag",
	KindStartTag:           "StartTag",
	KindBareSlash:          "BareSlash",
	KindEOL:                "EOL",
	KindNoBreakSpace:       "NoBreakSpace",
	KindSoftLineBreak:      "SoftLineBreak",
	KindWordLike:           "WordLike",
	KindLineSpace:          "LineSpace",
	KindPunctuation:        "Punctuation",
	KindUnknown:            "Unknown",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is one lexical unit of USFM input.
//
// Value is the exact matched text. The decoded fields are filled according
// to Kind: Number for Chapter, PubChapter and Verses; Key and AttrValue for
// Attribute and DefaultAttribute; Name for tags and milestones; Side for
// start milestones.
type Token struct {
	Kind      Kind
	Value     string
	Pos       lexer.Position
	Number    string
	Key       string
	AttrValue string
	Name      string
	Side      string
}

// IsText reports whether the token carries printable text.
func (t Token) IsText() bool {
	switch t.Kind {
	case KindWordLike, KindLineSpace, KindPunctuation, KindNoBreakSpace,
		KindSoftLineBreak, KindBareSlash, KindUnknown:
		return true
	}
	return false
}

func (t Token) String() string {
	return fmt.Sprintf("%d:%d %s %q", t.Pos.Line, t.Pos.Column, t.Kind, t.Value)
}
