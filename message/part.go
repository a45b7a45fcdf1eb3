package message

import (
	"strings"

	"github.com/zostay/go-mua/message/header"
	"github.com/zostay/go-mua/message/header/param"
	"github.com/zostay/go-mua/message/transfer"
)

// Type is the primary media type of a part.
type Type int

// These are the primary media types. Other covers anything unrecognized.
const (
	Other Type = iota
	Audio
	Application
	Image
	Message
	Model
	Multipart
	Text
	Video
)

var typeNames = [...]string{
	Other:       "x-unknown",
	Audio:       "audio",
	Application: "application",
	Image:       "image",
	Message:     "message",
	Model:       "model",
	Multipart:   "multipart",
	Text:        "text",
	Video:       "video",
}

// String returns the media type name.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return typeNames[Other]
	}
	return typeNames[t]
}

// ParseType maps a lowercased primary type name to a Type.
func ParseType(s string) Type {
	switch s {
	case "text":
		return Text
	case "multipart", "x-sun-attachment":
		return Multipart
	case "application":
		return Application
	case "message":
		return Message
	case "image":
		return Image
	case "audio":
		return Audio
	case "video":
		return Video
	case "model":
		return Model
	default:
		return Other
	}
}

// Disposition is the presentation requested by Content-disposition.
type Disposition int

// These are the dispositions. Parts without a Content-disposition are Inline.
const (
	Inline Disposition = iota
	Attachment
	FormData
)

// String returns the disposition token.
func (d Disposition) String() string {
	switch d {
	case Attachment:
		return "attachment"
	case FormData:
		return "form-data"
	default:
		return "inline"
	}
}

// ParseDisposition maps a Content-disposition value to a Disposition. Anything
// unrecognized is Inline.
func ParseDisposition(s string) Disposition {
	switch {
	case strings.HasPrefix(s, "attachment"):
		return Attachment
	case strings.HasPrefix(s, "form-data"):
		return FormData
	default:
		return Inline
	}
}

// Part is one node of the body structure of a message. It describes where the
// part lives in the source buffer and how it is typed and encoded. A Part
// never holds the source itself, every method that needs the bytes takes the
// buffer the part was parsed from.
type Part struct {
	Type    Type
	Subtype string

	// Params is the parameter list of the Content-type field.
	Params param.List

	Disposition       Disposition
	DispositionParams param.List

	// Encoding is the Content-transfer-encoding, 7bit when absent.
	Encoding transfer.Encoding

	// HeaderOffset is the offset of the part's sub-header. Offset is the
	// start of the body and Length the size of the body in bytes.
	HeaderOffset int64
	Offset       int64
	Length       int64

	// FileCharset is the charset detected for unlabeled text.
	FileCharset string

	Description string
	ID          string
	Filename    string

	Header *header.Header

	// Envelope is set for the top level of a message and for the message
	// carried by message/rfc822 and message/news parts.
	Envelope *header.Envelope

	Parts []*Part

	// Degraded is set when the part structure could not be read as
	// declared and the parser settled for something simpler.
	Degraded bool

	// defaultCharset is used when the part declares no charset.
	defaultCharset string
}

// Body returns the bytes of the body, still transfer encoded.
func (p *Part) Body(src []byte) []byte {
	return clip(src, p.Offset, p.Offset+p.Length)
}

// Raw returns the sub-header and the body as found in src.
func (p *Part) Raw(src []byte) []byte {
	return clip(src, p.HeaderOffset, p.Offset+p.Length)
}

func clip(src []byte, start, end int64) []byte {
	n := int64(len(src))
	if end > n {
		end = n
	}
	if start > end {
		start = end
	}
	return src[start:end]
}

// MediaType returns the type and subtype, e.g. "text/plain".
func (p *Part) MediaType() string {
	return p.Type.String() + "/" + p.Subtype
}

// IsMultipart returns true if the part is a multipart container.
func (p *Part) IsMultipart() bool {
	return p.Type == Multipart
}

// IsText returns true if the body is text: any text type, plus
// message/delivery-status and application/pgp-keys.
func (p *Part) IsText() bool {
	switch p.Type {
	case Text:
		return true
	case Message:
		return p.Subtype == "delivery-status"
	case Application:
		return p.Subtype == "pgp-keys"
	default:
		return false
	}
}

// declaredCharset returns the charset parameter, or the empty string.
func (p *Part) declaredCharset() string {
	return p.Params.Get(param.Charset)
}

// Charset returns the charset of a text body: the declared charset, the
// detected one, or the default assigned during parsing.
func (p *Part) Charset() string {
	if cs := p.declaredCharset(); cs != "" {
		return cs
	}
	if p.FileCharset != "" {
		return p.FileCharset
	}
	if p.defaultCharset != "" {
		return p.defaultCharset
	}
	return "us-ascii"
}

// IsFlowed returns true for text/plain with format=flowed.
func (p *Part) IsFlowed() bool {
	return p.Type == Text && p.Subtype == "plain" &&
		strings.EqualFold(p.Params.Get(param.Format), "flowed")
}

// DelSp returns true when delsp=yes accompanies format=flowed.
func (p *Part) DelSp() bool {
	return p.IsFlowed() && strings.EqualFold(p.Params.Get(param.DelSp), "yes")
}
