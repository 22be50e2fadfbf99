// Package convert runs documents between the registered formats through the
// USJ model: detect, decode, optionally normalize, assign sids and validate,
// then encode.
package convert

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/usjconv/core/encoding"
	usjerrors "github.com/FocuswithJustin/usjconv/core/errors"
	"github.com/FocuswithJustin/usjconv/core/formats"
	"github.com/FocuswithJustin/usjconv/core/usj"
	"github.com/FocuswithJustin/usjconv/internal/logging"
)

// DefaultTarget is used when Options.To is empty.
const DefaultTarget = "usj"

// Options controls a conversion.
type Options struct {
	From       string // source format id; detected from Name and content when empty
	To         string // target format id
	Name       string // source file name, used for detection only
	AssignSIDs bool
	Validate   bool
	Pretty     bool
	Normalize  bool // NFC-normalize text and attribute values
}

// Result describes a finished conversion.
type Result struct {
	Output       []byte
	From         string
	To           string
	RunID        string
	SourceDigest string
	Digest       string
	Issues       []error
	Duration     time.Duration
}

// IssueStrings returns validation issues as messages, never nil.
func IssueStrings(issues []error) []string {
	out := make([]string, len(issues))
	for i, err := range issues {
		out[i] = err.Error()
	}
	return out
}

// Convert decodes data in the source format and encodes it in the target
// format. Validation issues are reported in the result and do not fail the
// conversion.
func Convert(ctx context.Context, data []byte, opts Options) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)

	src, err := Source(opts.From, opts.Name, data)
	if err != nil {
		logging.ConversionError(ctx, "detect", err, "name", opts.Name)
		return nil, err
	}
	to := opts.To
	if to == "" {
		to = DefaultTarget
	}
	dst, err := formats.Get(to)
	if err != nil {
		logging.ConversionError(ctx, "target", err)
		return nil, err
	}
	logging.ConversionStart(ctx, src.ID(), dst.ID(), len(data))

	doc, err := Decode(ctx, src, data, opts)
	if err != nil {
		logging.ConversionError(ctx, "decode", err, "from", src.ID())
		return nil, err
	}

	res := &Result{
		From:         src.ID(),
		To:           dst.ID(),
		RunID:        runID,
		SourceDigest: usj.HashBytes(data),
	}
	if opts.Validate {
		res.Issues = usj.Validate(doc)
		if len(res.Issues) > 0 {
			logging.WarnContext(ctx, "validation issues", "count", len(res.Issues), "first", res.Issues[0].Error())
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.Output, err = dst.Handler.Encode(doc, formats.EncodeOptions{Pretty: opts.Pretty})
	if err != nil {
		logging.ConversionError(ctx, "encode", err, "to", dst.ID())
		return nil, err
	}
	res.Digest, err = usj.Digest(doc)
	if err != nil {
		return nil, usjerrors.Wrap(err, "digest")
	}

	res.Duration = time.Since(start)
	logging.ConversionDone(ctx, res.Digest, len(res.Issues), res.Duration, "from", res.From, "to", res.To)
	return res, nil
}

// Source resolves the source format: by id when given, otherwise by
// detection on name and content.
func Source(id, name string, data []byte) (*formats.Format, error) {
	if id != "" {
		return formats.Get(id)
	}
	f, _, err := formats.Detect(name, data)
	return f, err
}

// Decode parses data with src and applies the model options.
func Decode(ctx context.Context, src *formats.Format, data []byte, opts Options) (*usj.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := src.Handler.Decode(data)
	if err != nil {
		return nil, err
	}
	if opts.Normalize {
		normalize(doc.Content)
	}
	if opts.AssignSIDs {
		usj.AssignSIDs(doc)
	}
	return doc, nil
}

func normalize(items []usj.Item) {
	for i := range items {
		n := items[i].Node
		if n == nil {
			items[i].Text = encoding.NormalizeNFC(items[i].Text)
			continue
		}
		for j := range n.Attributes {
			n.Attributes[j].Value = encoding.NormalizeNFC(n.Attributes[j].Value)
		}
		normalize(n.Content)
	}
}

// VerifyResult reports a round trip through a single format.
type VerifyResult struct {
	Format          string
	Equal           bool
	Digest          string
	RoundTripDigest string
}

// Verify decodes data, encodes it back to the same format and decodes the
// output again. The two trees must be structurally equal. A mismatch is
// reported in the result, not as an error.
func Verify(ctx context.Context, data []byte, opts Options) (*VerifyResult, error) {
	ctx = logging.WithRunID(ctx, uuid.NewString())

	src, err := Source(opts.From, opts.Name, data)
	if err != nil {
		return nil, err
	}
	first, err := Decode(ctx, src, data, opts)
	if err != nil {
		logging.ConversionError(ctx, "decode", err, "from", src.ID())
		return nil, err
	}
	out, err := src.Handler.Encode(first, formats.EncodeOptions{})
	if err != nil {
		logging.ConversionError(ctx, "encode", err, "to", src.ID())
		return nil, err
	}
	second, err := Decode(ctx, src, out, opts)
	if err != nil {
		return nil, fmt.Errorf("re-read %s output: %w", src.ID(), err)
	}

	res := &VerifyResult{Format: src.ID(), Equal: usj.Equal(first, second)}
	if res.Digest, err = usj.Digest(first); err != nil {
		return nil, err
	}
	if res.RoundTripDigest, err = usj.Digest(second); err != nil {
		return nil, err
	}
	if !res.Equal {
		logging.WarnContext(ctx, "round trip mismatch", "format", res.Format, "digest", res.Digest, "round_trip_digest", res.RoundTripDigest)
		return res, nil
	}
	logging.InfoContext(ctx, "round trip verified", "format", res.Format, "digest", res.Digest)
	return res, nil
}
