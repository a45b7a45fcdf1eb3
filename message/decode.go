package message

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/zostay/go-mua/charset"
	"github.com/zostay/go-mua/internal/mlog"
	"github.com/zostay/go-mua/internal/scanner"
	"github.com/zostay/go-mua/message/flowed"
	"github.com/zostay/go-mua/message/transfer"
)

// Flags select how DecodePart treats the part.
type Flags uint

// These are the decode flags.
const (
	// Display decodes for reading on screen.
	Display Flags = 1 << iota

	// Printing decodes for printing.
	Printing

	// Verify keeps the decoded bytes exactly as transmitted, for checking a
	// signature. No charset conversion, line break normalization or prefix
	// is applied.
	Verify

	// CharsetConvert converts text to DecodeContext.Charset.
	CharsetConvert

	// Replying decodes text to be quoted in a reply.
	Replying
)

// EffectiveType tells DecodePartAs how to treat the part regardless of its
// declared type.
type EffectiveType int

// These are the effective types.
const (
	// AsDeclared treats the part as its Content-type says.
	AsDeclared EffectiveType = iota

	// AsText treats the part as text, e.g. to show application/pgp
	// content inline.
	AsText
)

// ErrNoOutput is returned by DecodePart when the context has nowhere to
// write.
var ErrNoOutput = errors.New("decode context has no output")

// DecodeContext describes where and how a part is decoded. It is only used
// for the duration of one call.
type DecodeContext struct {
	// Out receives the decoded body.
	Out io.Writer

	// Prefix is written at the start of every line of text.
	Prefix string

	Flags Flags

	// Charset is the charset text is converted to, utf-8 when empty.
	Charset string

	// AssumedCharset is used for text without a declared charset.
	AssumedCharset string

	// Width is the wrap width for flowed text, flowed.DefaultWidth when
	// zero.
	Width int

	// SpaceQuotes writes a space after the quote markers of flowed text.
	SpaceQuotes bool

	Logger *slog.Logger
}

// DecodeError reports a failure writing the decoded part.
type DecodeError struct {
	Part *Part
	Err  error
}

// Error returns the error message.
func (err *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s part at offset %d: %v",
		err.Part.MediaType(), err.Part.Offset, err.Err)
}

// Unwrap returns the underlying error.
func (err *DecodeError) Unwrap() error {
	return err.Err
}

// DecodePart writes the body of p, taken from src, to dc.Out with the
// transfer encoding removed. Text is converted to the target charset when
// CharsetConvert is set and, for display or printing, format=flowed text is
// reflowed.
//
// Malformed encodings and unknown charsets do not fail the call. Only a
// failure to write the output does and it is returned as a *DecodeError.
func DecodePart(src []byte, p *Part, dc *DecodeContext) error {
	return DecodePartAs(src, p, AsDeclared, dc)
}

// DecodePartAs is DecodePart with the part treated as the given effective
// type. The part itself is left as it is.
func DecodePartAs(src []byte, p *Part, t EffectiveType, dc *DecodeContext) error {
	if dc == nil || dc.Out == nil {
		return ErrNoOutput
	}

	log := mlog.New("message", dc.Logger)

	verify := dc.Flags&Verify != 0
	isText := (t == AsText || p.IsText()) && !verify

	to := dc.Charset
	if to == "" {
		to = charset.UTF8
	}

	var from string
	if isText && dc.Flags&CharsetConvert != 0 {
		from = dc.sourceCharset(p)
		if charset.Same(from, to) {
			from = ""
		}
	}

	prefix := ""
	if isText {
		prefix = dc.Prefix
	}

	reflow := isText && p.IsFlowed() && dc.Flags&(Display|Printing|Replying) != 0

	var out io.Writer = dc.Out
	var body *bytes.Buffer
	if reflow {
		body = &bytes.Buffer{}
		out = body
		prefix = ""
	}

	sink := transfer.NewSink(out, from, to, prefix)
	if err := sink.ConvertError(); err != nil {
		log.Debugx("charset conversion unavailable", err,
			slog.String("from", from),
			slog.String("to", to))
	}

	enc := encodingFor(p)
	if p.Encoding == transfer.Other {
		log.Debug("unknown transfer encoding, passing through",
			slog.Int64("offset", p.Offset))
	}

	if err := transfer.Decode(enc, isText, bytes.NewReader(p.Body(src)), sink); err != nil {
		return &DecodeError{p, err}
	}
	if err := sink.Close(); err != nil {
		return &DecodeError{p, err}
	}
	log.Debug("decoded part",
		slog.String("type", p.MediaType()),
		slog.Int64("offset", p.Offset),
		slog.Int64("decoded", sink.Written()))

	if reflow {
		if err := dc.writeFlowed(body.Bytes(), p.DelSp()); err != nil {
			return &DecodeError{p, err}
		}
	}

	return nil
}

// sourceCharset picks the charset text is converted from.
func (dc *DecodeContext) sourceCharset(p *Part) string {
	if cs := p.declaredCharset(); cs != "" {
		return cs
	}
	if p.FileCharset != "" {
		return p.FileCharset
	}
	if dc.AssumedCharset != "" {
		return dc.AssumedCharset
	}
	return p.Charset()
}

func (dc *DecodeContext) writeFlowed(text []byte, delsp bool) error {
	in := scanner.SplitLines(text)
	lines := make([]string, len(in))
	for i, l := range in {
		lines[i] = string(l)
	}

	var opts []flowed.Option
	if dc.Prefix != "" {
		opts = append(opts, flowed.WithPrefix(dc.Prefix))
	}
	if dc.Flags&Replying != 0 {
		opts = append(opts, flowed.WithReplyQuoting())
	}
	if dc.SpaceQuotes {
		opts = append(opts, flowed.WithSpaceQuotes())
	}

	out := flowed.Reflow(lines, dc.Width, delsp, opts...)
	if len(out) == 0 {
		return nil
	}

	_, err := io.WriteString(dc.Out, strings.Join(out, "\n")+"\n")
	return err
}
