package message

import (
	"bytes"
	"errors"
	"log/slog"

	"github.com/zostay/go-mua/charset"
	"github.com/zostay/go-mua/internal/mlog"
	"github.com/zostay/go-mua/internal/scanner"
	"github.com/zostay/go-mua/message/header"
	"github.com/zostay/go-mua/message/header/field"
	"github.com/zostay/go-mua/message/header/param"
	"github.com/zostay/go-mua/message/transfer"
)

// DefaultMaxDepth is the default depth the parser will recurse into nested
// multipart and message parts.
const DefaultMaxDepth = 10

// Errors that occur during parsing.
var (
	// ErrEmptyMessage is returned by Parse when there is nothing to parse.
	ErrEmptyMessage = errors.New("the message is empty")
)

// sunBoundary is the boundary of the legacy x-sun-attachment type, which
// carries no boundary parameter.
const sunBoundary = "--------"

type parser struct {
	maxDepth      int
	assumed       string
	detect        bool
	rfc2047Params bool
	log           mlog.Log
	logger        *slog.Logger
}

func (pr *parser) clone() *parser {
	p := *pr
	return &p
}

var defaultParser = &parser{
	maxDepth: DefaultMaxDepth,
	log:      mlog.New("message", nil),
}

// ParseOption refers to options that may be passed to the Parse function to
// modify how the parser works.
type ParseOption func(pr *parser)

// WithMaxDepth is a ParseOption that controls how deep the parser will go in
// recursively parsing nested parts. A container found at that depth is kept
// as a leaf and marked Degraded. This is set to DefaultMaxDepth by default.
func WithMaxDepth(maxDepth int) ParseOption {
	return func(pr *parser) { pr.maxDepth = maxDepth }
}

// WithUnlimitedRecursion is a ParseOption that will allow the parser to parse
// sub-parts of any depth.
func WithUnlimitedRecursion() ParseOption {
	return func(pr *parser) { pr.maxDepth = -1 }
}

// WithAssumedCharset sets the charset of text parts that declare none. It is
// also used for raw 8-bit bytes in parameter values.
func WithAssumedCharset(cs string) ParseOption {
	return func(pr *parser) { pr.assumed = cs }
}

// WithCharsetDetection guesses the charset of text parts that declare none
// and contain 8-bit bytes. The guess is stored in Part.FileCharset.
func WithCharsetDetection() ParseOption {
	return func(pr *parser) { pr.detect = true }
}

// WithRFC2047Params decodes RFC 2047 encoded words found in parameter values.
// Some mailers produce them even though it is not allowed.
func WithRFC2047Params() ParseOption {
	return func(pr *parser) { pr.rfc2047Params = true }
}

// WithLogger sets the logger recovered parse problems are reported to.
func WithLogger(l *slog.Logger) ParseOption {
	return func(pr *parser) {
		pr.logger = l
		pr.log = mlog.New("message", l)
	}
}

// Parse reads the body structure of the message held in src. The returned
// tree addresses src by offset, so src must outlive it and must not change.
//
// When isDigest is set, the top level defaults to message/rfc822 instead of
// text/plain when it has no Content-type.
//
// Parsing is lenient. A malformed structure is recovered by settling for a
// simpler one and the part involved is marked Degraded. A message without a
// header is a text/plain body. If the lines before the first empty line hold
// no field at all, they are taken as body too and the root is Degraded. Only
// an empty src is an error.
func Parse(src []byte, isDigest bool, opts ...ParseOption) (*Part, error) {
	pr := defaultParser.clone()
	for _, opt := range opts {
		opt(pr)
	}

	if len(src) == 0 {
		return nil, ErrEmptyMessage
	}

	end := int64(len(src))
	p := pr.readHeader(src, 0, end, isDigest)
	if p.Header.Len() == 0 && !startsBlank(src) {
		pr.log.Debug("message starts without a header field, reading it as body")
		p.Offset = 0
		p.Degraded = true
	}

	p.Length = end - p.Offset
	p.Envelope = p.Header.Envelope(pr.decodeOptions()...)

	pr.parsePart(src, p, 0)

	return p, nil
}

// startsBlank reports whether src starts with an empty line, an empty header.
func startsBlank(src []byte) bool {
	return bytes.HasPrefix(src, []byte("\n")) || bytes.HasPrefix(src, []byte("\r\n"))
}

func (pr *parser) paramOptions() []param.Option {
	opts := []param.Option{param.WithLogger(pr.logger)}
	if pr.assumed != "" {
		opts = append(opts, param.WithAssumedCharset(pr.assumed))
	}
	if pr.rfc2047Params {
		dopts := pr.decodeOptions()
		opts = append(opts, param.WithWordDecoder(func(s string) string {
			return field.DecodeHeaderValue(s, dopts...)
		}))
	}
	return opts
}

func (pr *parser) decodeOptions() []field.DecodeOption {
	opts := []field.DecodeOption{field.WithDecodeLogger(pr.logger)}
	if pr.assumed != "" {
		opts = append(opts, field.WithAssumedCharset(pr.assumed))
	}
	return opts
}

// readHeader reads the sub-header starting at off. The header ends at the
// first empty line, the body starts after it. A header without an empty line
// takes up everything up to end.
func (pr *parser) readHeader(src []byte, off, end int64, isDigest bool) *Part {
	p := &Part{
		HeaderOffset: off,
		Offset:       end,
		Type:         Text,
		Subtype:      "plain",
	}
	if isDigest {
		p.Type, p.Subtype = Message, "rfc822"
	}

	headerEnd := end
	sc := scanner.New(src, off, end)
	for {
		l, ok := sc.Scan()
		if !ok {
			break
		}
		if l.End == l.Start {
			headerEnd = l.Start
			p.Offset = l.Next
			break
		}
	}
	if headerEnd < off {
		headerEnd = off
	}

	h, err := header.Parse(src[off:headerEnd])
	if err != nil {
		pr.log.Debugx("skipped junk at the start of a header", err,
			slog.Int64("offset", off))
	}
	p.Header = h

	popts := pr.paramOptions()
	if ct, err := h.GetContentType(popts...); err == nil {
		pr.contentType(p, ct)
	} else if p.Type == Text {
		p.defaultCharset = pr.textCharset()
	}

	if cd, err := h.GetContentDisposition(popts...); err == nil {
		p.Disposition = ParseDisposition(cd.Disposition())
		p.DispositionParams = cd.Params()
		if fn := cd.Filename(); fn != "" {
			p.Filename = fn
		}
	}

	p.Encoding = h.GetTransferEncoding()
	p.Description, _ = h.GetText(header.ContentDescription, pr.decodeOptions()...)
	p.ID, _ = h.Get(header.ContentID)

	return p
}

func (pr *parser) textCharset() string {
	if pr.assumed != "" {
		return pr.assumed
	}
	return charset.USASCII
}

// contentType fills in the type of p from the parsed Content-type field.
func (pr *parser) contentType(p *Part, ct *param.Value) {
	primary := ct.Type()
	p.Type = ParseType(primary)
	p.Subtype = ct.Subtype()
	p.Params = ct.Params()

	if primary == "x-sun-attachment" {
		p.Subtype = "x-sun-attachment"
	}

	if p.Subtype == "" {
		switch p.Type {
		case Text:
			p.Subtype = "plain"
		case Audio:
			p.Subtype = "basic"
		case Message:
			p.Subtype = "rfc822"
		case Other:
			// pre-MIME mailers label the body with a bare word
			p.Type = Application
			p.Subtype = "x-" + primary
		default:
			p.Subtype = "x-unknown"
		}
	}

	if p.Type == Text && p.declaredCharset() == "" {
		p.defaultCharset = pr.textCharset()
	}

	// pre-RFC 1521 gateways put the file name here
	p.Filename = ct.Parameter(param.Name)
}

// parsePart descends into containers. Anything else is a leaf.
func (pr *parser) parsePart(src []byte, p *Part, depth int) {
	pr.detectCharset(src, p)

	container := p.Type == Multipart ||
		(p.Type == Message && (p.Subtype == "rfc822" || p.Subtype == "news" || p.Subtype == "external-body"))
	if !container {
		return
	}

	if pr.maxDepth >= 0 && depth >= pr.maxDepth {
		pr.log.Debug("maximum nesting depth reached",
			slog.Int("depth", depth),
			slog.String("type", p.MediaType()),
			slog.Int64("offset", p.Offset))
		p.Degraded = true
		return
	}

	switch p.Type {
	case Multipart:
		boundary := p.Params.Get(param.Boundary)
		if p.Subtype == "x-sun-attachment" {
			boundary = sunBoundary
		}
		if boundary == "" {
			pr.log.Debug("multipart without boundary",
				slog.Int64("offset", p.Offset))
			pr.degradeToText(p)
			return
		}
		p.Parts = pr.parseMultipart(src, p, boundary, depth)
		if len(p.Parts) == 0 {
			pr.log.Debug("multipart without parts",
				slog.String("boundary", boundary),
				slog.Int64("offset", p.Offset))
			pr.degradeToText(p)
		}
	case Message:
		if p.Subtype == "external-body" {
			p.Parts = []*Part{pr.parseExternalBody(src, p)}
			return
		}
		p.Parts = []*Part{pr.parseMessage(src, p, depth)}
	}
}

// degradeToText turns a container that could not be read into a plain text
// leaf covering the same bytes.
func (pr *parser) degradeToText(p *Part) {
	p.Type = Text
	p.Subtype = "plain"
	p.Params = nil
	p.Parts = nil
	p.Degraded = true
	p.defaultCharset = pr.textCharset()
}

// detectCharset guesses the charset of unlabeled 8-bit text.
func (pr *parser) detectCharset(src []byte, p *Part) {
	if !pr.detect || p.Type != Text || p.declaredCharset() != "" {
		return
	}

	body := p.Body(src)
	if !has8bit(body) {
		return
	}

	if cs, ok := charset.Guess(body); ok {
		p.FileCharset = cs
		pr.log.Debug("detected charset",
			slog.String("charset", cs),
			slog.Int64("offset", p.Offset))
	}
}

func has8bit(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return true
		}
	}
	return false
}

// parseMessage reads the message carried by a message/rfc822 part.
func (pr *parser) parseMessage(src []byte, parent *Part, depth int) *Part {
	end := parent.Offset + parent.Length
	child := pr.readHeader(src, parent.Offset, end, false)

	child.Length = parent.Length - (child.Offset - parent.Offset)
	if child.Length < 0 {
		child.Length = 0
	}

	child.Envelope = child.Header.Envelope(pr.decodeOptions()...)

	pr.parsePart(src, child, depth+1)

	return child
}

// parseExternalBody reads the header of a message/external-body part. The
// part only describes where the body lives, so there is nothing past the
// header.
func (pr *parser) parseExternalBody(src []byte, parent *Part) *Part {
	child := pr.readHeader(src, parent.Offset, parent.Offset+parent.Length, false)
	child.Length = 0
	return child
}

// encodingFor is the transfer encoding used by decode when the part is
// not one of the supported ones.
func encodingFor(p *Part) transfer.Encoding {
	if p.Encoding == transfer.Other {
		return transfer.SevenBit
	}
	return p.Encoding
}
