package transfer

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Encoding is a Content-transfer-encoding.
type Encoding int

// The known transfer encodings. SevenBit is the zero value, matching the RFC
// 2045 default when the header is absent.
const (
	SevenBit Encoding = iota
	EightBit
	Binary
	QuotedPrintable
	Base64
	UUEncode
	Other
)

// ErrUnknownEncoding is returned when asked to encode or decode Other.
var ErrUnknownEncoding = errors.New("unknown content-transfer-encoding")

var encodingNames = [...]string{
	SevenBit:        "7bit",
	EightBit:        "8bit",
	Binary:          "binary",
	QuotedPrintable: "quoted-printable",
	Base64:          "base64",
	UUEncode:        "x-uuencode",
	Other:           "x-unknown",
}

// String returns the canonical token of the encoding.
func (e Encoding) String() string {
	if e < 0 || int(e) >= len(encodingNames) {
		return encodingNames[Other]
	}
	return encodingNames[e]
}

// ParseEncoding maps a Content-transfer-encoding token to an Encoding. An
// empty token is SevenBit. Unrecognized tokens map to Other.
func ParseEncoding(s string) Encoding {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, " \t;("); i >= 0 {
		s = s[:i]
	}
	switch s {
	case "", "7bit":
		return SevenBit
	case "8bit":
		return EightBit
	case "binary":
		return Binary
	case "quoted-printable":
		return QuotedPrintable
	case "base64":
		return Base64
	case "x-uuencode", "uuencode", "x-uue":
		return UUEncode
	default:
		return Other
	}
}

// IsIdentity reports whether the encoding leaves the bytes as they are.
func (e Encoding) IsIdentity() bool {
	return e == SevenBit || e == EightBit || e == Binary
}

// Decoder reads an encoded body from r and writes the decoded bytes to w.
// When isText is set, line breaks are normalized where the encoding allows.
type Decoder func(r io.Reader, w io.Writer, isText bool) error

// Transcoding is a pair of functions that can be used to transform to and from
// a transfer encoding.
type Transcoding struct {
	// Encoder returns an io.WriteCloser, which will encode binary data and
	// write the encoded form to the given io.Writer. You must call Close() on
	// the returned io.WriteCloser when you are finished.
	Encoder func(io.Writer) io.WriteCloser

	// Decoder streams the decoded form of the input to a writer.
	Decoder Decoder
}

// AsIsTranscoder is a shortcut to the identity encoder and decoder.
var AsIsTranscoder = Transcoding{NewAsIsEncoder, DecodeXBit}

// Transcodings defines the supported encodings and how to handle them.
var Transcodings = map[Encoding]Transcoding{
	SevenBit:        AsIsTranscoder,
	EightBit:        AsIsTranscoder,
	Binary:          AsIsTranscoder,
	QuotedPrintable: {NewQuotedPrintableEncoder, DecodeQuotedPrintable},
	Base64:          {NewBase64Encoder, DecodeBase64},
	UUEncode:        {NewUUEncoder, DecodeUUEncode},
}

// Decode decodes r according to enc and writes the result to w. Malformed
// input truncates the output, it is not an error. The only errors returned are
// those from reading r or writing w, and ErrUnknownEncoding.
func Decode(enc Encoding, isText bool, r io.Reader, w io.Writer) error {
	tc, ok := Transcodings[enc]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEncoding, enc)
	}
	return tc.Decoder(r, w, isText)
}

// NewEncoder returns a writer encoding everything written to it with enc.
// Close must be called to flush the final line.
func NewEncoder(enc Encoding, w io.Writer) (io.WriteCloser, error) {
	tc, ok := Transcodings[enc]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, enc)
	}
	return tc.Encoder(w), nil
}
