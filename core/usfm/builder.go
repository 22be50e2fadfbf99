package usfm

import (
	"strings"

	"github.com/FocuswithJustin/usjconv/core/markers"
	"github.com/FocuswithJustin/usjconv/core/usj"
)

type frameKind int

const (
	frameBook frameKind = iota
	framePara
	frameChar
	frameWord
	frameNote
	frameNumbering
)

// frame is an open node. Frames live in builder.frames, outermost first;
// a node is attached to its parent when its frame closes.
type frame struct {
	kind frameKind
	tag  Tag
	node *usj.Node
}

// flushMode controls what happens to pending text at a transition.
type flushMode int

const (
	// flushKeep appends pending text as is.
	flushKeep flushMode = iota
	// flushInline keeps a pending line break as a separating space.
	flushInline
	// flushTrim drops trailing whitespace before a block boundary.
	flushTrim
)

type builder struct {
	doc    *usj.Document
	frames []frame

	text         strings.Builder
	pendingSpace bool
	skipSpace    bool

	attrs usj.Attributes

	versionMode bool
	version     string

	awaitCode   bool
	awaitCaller bool

	milestone     string
	milestoneSide string
	milestones    []string

	lastChapter *usj.Node
	lastVerse   *usj.Node
}

func newBuilder() *builder {
	return &builder{doc: usj.NewDocument("")}
}

// build runs the state machine over the whole token sequence.
func (b *builder) build(tokens []Token) (*usj.Document, error) {
	for _, t := range tokens {
		if b.milestone != "" {
			switch t.Kind {
			case KindAttribute, KindDefaultAttribute, KindEndMilestoneMarker:
			default:
				b.emitMilestone()
			}
		}
		if err := b.step(t); err != nil {
			return nil, err
		}
	}
	b.finish()
	return b.doc, nil
}

func (b *builder) step(t Token) error {
	if !t.IsText() {
		b.awaitCaller = false
		b.awaitCode = false
	}
	switch t.Kind {
	case KindChapter:
		b.chapter(t.Number)
	case KindPubChapter:
		b.flush(flushTrim)
		if b.lastChapter != nil {
			b.lastChapter.PubNumber = t.Number
		}
	case KindVerses:
		b.verse(t.Number)
	case KindAttribute, KindDefaultAttribute:
		b.attrs.Set(t.Key, t.AttrValue)
	case KindEmptyMilestone:
		b.flush(flushInline)
		b.attrs = nil
		b.appendMilestone(t.Name)
	case KindStartMilestone:
		b.flush(flushInline)
		b.attrs = nil
		b.milestone, b.milestoneSide = t.Name, t.Side
	case KindEndMilestoneMarker:
		if b.milestone != "" {
			b.emitMilestone()
		}
	case KindStartTag, KindEndTag:
		tag, err := classifyToken(t)
		if err != nil {
			return err
		}
		if tag.Closing {
			b.endTag(tag)
		} else {
			b.startTag(tag)
		}
	case KindEOL:
		b.eol()
	case KindLineSpace:
		b.space(t.Value)
	case KindNoBreakSpace:
		b.word(t.Kind, "\u00a0")
	default:
		b.word(t.Kind, t.Value)
	}
	return nil
}

func (b *builder) top() *frame {
	if len(b.frames) == 0 {
		return nil
	}
	return &b.frames[len(b.frames)-1]
}

// containerHasContent reports whether text added now would follow existing
// content in the innermost open node.
func (b *builder) containerHasContent() bool {
	if f := b.top(); f != nil {
		return len(f.node.Content) > 0
	}
	return false
}

func (b *builder) push(kind frameKind, tag Tag, node *usj.Node) {
	if parent := b.top(); parent != nil && node.Type == usj.TypeChar {
		node.Nested = parent.node.Type == usj.TypeChar
	}
	b.frames = append(b.frames, frame{kind: kind, tag: tag, node: node})
}

// pop closes the innermost frame and attaches its node to the parent.
// Pending text must already have been flushed.
func (b *builder) pop() {
	f := b.frames[len(b.frames)-1]
	b.frames = b.frames[:len(b.frames)-1]

	switch f.kind {
	case frameBook, framePara, frameNote:
		f.node.TrimTrailingSpace()
	case frameNumbering:
		if b.applyNumbering(f) {
			return
		}
	}

	if parent := b.top(); parent != nil {
		parent.node.Append(usj.NodeItem(f.node))
		return
	}
	b.doc.Append(usj.NodeItem(f.node))
}

// numberingTarget returns the chapter or verse a \ca, \va or \vp span
// decorates, or nil.
func (b *builder) numberingTarget(name string) *usj.Node {
	if name == markers.AltChapter {
		return b.lastChapter
	}
	return b.lastVerse
}

// applyNumbering stores an alternate or publication number on the chapter
// or verse it decorates. It reports false when there is nothing to decorate.
func (b *builder) applyNumbering(f frame) bool {
	target := b.numberingTarget(f.tag.Name)
	if target == nil {
		return false
	}
	value := strings.TrimSpace(f.node.PlainText())
	if f.tag.Name == markers.PubVerse {
		target.PubNumber = value
	} else {
		target.AltNumber = value
	}
	b.skipSpace = true
	return true
}

func (b *builder) closeAll() {
	for len(b.frames) > 0 {
		b.pop()
	}
}

// closeChars closes open character spans down to the nearest word frame
// or container.
func (b *builder) closeChars() {
	for f := b.top(); f != nil && (f.kind == frameChar || f.kind == frameNumbering); f = b.top() {
		b.pop()
	}
}

// closeThrough closes frames down to and including the innermost frame
// accepted by match, searching no further than the first frame accepted by
// stop. It returns the matched node, or nil when nothing was closed.
func (b *builder) closeThrough(match func(f *frame) bool, stop func(f *frame) bool) *usj.Node {
	for i := len(b.frames) - 1; i >= 0; i-- {
		f := &b.frames[i]
		if match(f) {
			node := f.node
			for len(b.frames) > i {
				b.pop()
			}
			return node
		}
		if stop != nil && stop(f) {
			return nil
		}
	}
	return nil
}

// ensureContainer opens an implicit paragraph when nothing is open.
func (b *builder) ensureContainer() {
	if len(b.frames) == 0 {
		b.push(framePara, Tag{Name: "p", FullName: "p", Level: 1, Kind: markers.KindParagraph},
			&usj.Node{Type: usj.TypePara, Marker: "p"})
	}
}

func (b *builder) flush(mode flushMode) {
	if b.versionMode {
		b.version = strings.TrimSpace(b.text.String())
		b.versionMode = false
		b.text.Reset()
		b.pendingSpace = false
		return
	}
	if mode == flushInline && b.pendingSpace && (b.text.Len() > 0 || b.containerHasContent()) {
		if !strings.HasSuffix(b.text.String(), " ") {
			b.text.WriteByte(' ')
		}
	}
	b.pendingSpace = false

	s := b.text.String()
	b.text.Reset()
	if mode == flushTrim {
		s = strings.TrimRight(s, " \t")
	}
	if s == "" {
		return
	}
	b.ensureContainer()
	b.top().node.AppendText(s)
}

func (b *builder) space(v string) {
	if b.awaitCaller || b.awaitCode {
		return
	}
	if b.skipSpace {
		b.skipSpace = false
		return
	}
	if strings.Trim(v, " \t") != "" {
		// Non-ASCII separators such as U+3000 are kept as written.
		b.word(KindLineSpace, v)
		return
	}
	if b.versionMode {
		b.text.WriteByte(' ')
		return
	}
	if b.text.Len() == 0 && !b.containerHasContent() {
		return
	}
	if !strings.HasSuffix(b.text.String(), " ") {
		b.text.WriteByte(' ')
	}
}

func (b *builder) word(kind Kind, v string) {
	b.skipSpace = false
	if b.awaitCaller {
		b.top().node.Caller = v
		b.awaitCaller = false
		b.skipSpace = true
		return
	}
	if b.awaitCode {
		b.awaitCode = false
		if kind == KindWordLike {
			b.top().node.Code = v
			return
		}
	}
	if b.versionMode {
		b.text.WriteString(v)
		return
	}
	if b.pendingSpace {
		if (b.text.Len() > 0 || b.containerHasContent()) && !strings.HasSuffix(b.text.String(), " ") {
			b.text.WriteByte(' ')
		}
		b.pendingSpace = false
	}
	b.ensureContainer()
	b.text.WriteString(v)
}

func (b *builder) eol() {
	b.skipSpace = false
	if b.versionMode {
		b.flush(flushTrim)
		return
	}
	if f := b.top(); f != nil && f.kind == frameBook {
		b.awaitCode = false
		b.flush(flushTrim)
		b.pop()
		return
	}
	if b.text.Len() > 0 || b.containerHasContent() {
		b.pendingSpace = true
	}
}

func (b *builder) chapter(number string) {
	b.flush(flushTrim)
	b.closeAll()
	b.attrs = nil
	node := &usj.Node{Type: usj.TypeChapter, Marker: markers.Chapter, Number: number}
	b.doc.Append(usj.NodeItem(node))
	b.lastChapter = node
	b.lastVerse = nil
}

func (b *builder) verse(number string) {
	b.flush(flushTrim)
	for f := b.top(); f != nil && f.kind != framePara; f = b.top() {
		b.pop()
	}
	b.attrs = nil
	b.ensureContainer()
	node := &usj.Node{Type: usj.TypeVerse, Marker: markers.Verse, Number: number}
	b.top().node.Append(usj.NodeItem(node))
	b.lastVerse = node
	b.skipSpace = true
}

func (b *builder) startTag(tag Tag) {
	b.skipSpace = false
	switch tag.Kind {
	case markers.KindParagraph:
		b.flush(flushTrim)
		b.closeAll()
		b.attrs = nil
		if tag.Name == markers.Version {
			b.versionMode = true
			return
		}
		b.push(framePara, tag, &usj.Node{Type: usj.TypePara, Marker: tag.FullName})

	case markers.KindBook:
		b.flush(flushTrim)
		b.closeAll()
		b.attrs = nil
		b.push(frameBook, tag, &usj.Node{Type: usj.TypeBook, Marker: markers.Book})
		b.awaitCode = true

	case markers.KindNote:
		b.flush(flushInline)
		b.closeChars()
		b.closeThrough(func(f *frame) bool { return f.kind == frameNote }, func(f *frame) bool {
			return f.kind == framePara || f.kind == frameBook
		})
		b.ensureContainer()
		b.push(frameNote, tag, &usj.Node{Type: usj.TypeNote, Marker: tag.FullName})
		b.awaitCaller = true

	case markers.KindCharacter:
		b.flush(flushInline)
		node := &usj.Node{Type: usj.TypeChar, Marker: tag.FullName}
		switch {
		case tag.Name == markers.Word:
			b.ensureContainer()
			b.push(frameWord, tag, node)
		case markers.IsNumbering(tag.Name) && b.numberingTarget(tag.Name) != nil:
			b.push(frameNumbering, tag, node)
		case tag.Nested:
			b.ensureContainer()
			b.push(frameChar, tag, node)
		default:
			b.closeChars()
			b.ensureContainer()
			b.push(frameChar, tag, node)
		}
	}
}

// endTag is the do-end-tag dispatcher: it routes by tag kind to the frame
// it closes. End tags without a matching open frame are ignored.
func (b *builder) endTag(tag Tag) {
	b.flush(flushKeep)
	b.skipSpace = false

	isInline := func(f *frame) bool {
		return f.kind == frameChar || f.kind == frameWord || f.kind == frameNumbering
	}
	notInline := func(f *frame) bool { return !isInline(f) }

	switch tag.Kind {
	case markers.KindCharacter:
		var closed *usj.Node
		if tag.Name == markers.Word {
			closed = b.closeThrough(func(f *frame) bool { return f.kind == frameWord }, notInline)
		} else {
			closed = b.closeThrough(func(f *frame) bool {
				return f.kind != frameWord && isInline(f) && f.tag.FullName == tag.FullName
			}, notInline)
			if closed == nil {
				closed = b.closeThrough(func(f *frame) bool {
					return f.kind == frameChar || f.kind == frameNumbering
				}, func(f *frame) bool { return !isInline(f) || f.kind == frameWord })
			}
		}
		if closed != nil {
			for _, kv := range b.attrs {
				closed.Attributes.Set(kv.Key, kv.Value)
			}
			b.attrs = nil
		}
	case markers.KindNote:
		b.closeThrough(func(f *frame) bool { return f.kind == frameNote }, func(f *frame) bool {
			return f.kind == framePara || f.kind == frameBook
		})
	}
}

func (b *builder) emitMilestone() {
	name, side := b.milestone, b.milestoneSide
	b.milestone, b.milestoneSide = "", ""

	if side == "e" {
		idx := -1
		for i := len(b.milestones) - 1; i >= 0; i-- {
			if b.milestones[i] == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			b.attrs = nil
			return
		}
		b.milestones = append(b.milestones[:idx], b.milestones[idx+1:]...)
	} else {
		b.milestones = append(b.milestones, name)
	}
	b.appendMilestone(name + "-" + side)
}

func (b *builder) appendMilestone(marker string) {
	b.ensureContainer()
	node := &usj.Node{Type: usj.TypeMilestone, Marker: marker, Attributes: b.attrs}
	b.attrs = nil
	b.top().node.Append(usj.NodeItem(node))
}

func (b *builder) finish() {
	if b.milestone != "" {
		b.emitMilestone()
	}
	b.flush(flushTrim)
	b.closeAll()
	if b.version != "" {
		b.doc.Version = b.version
	}
}
