package field

import (
	"strings"
)

// Field is a single header field. The raw bytes are kept as they appeared in
// the source, including folding, so the field can be written back unchanged.
type Field struct {
	name string
	body string
	raw  []byte
}

// New returns a field with the given name and unfolded body.
func New(name, body string) *Field {
	return &Field{name: name, body: body}
}

// Name returns the name of the header field as it appeared in the source.
func (f *Field) Name() string { return f.name }

// Is reports whether the field has the given name, ignoring case.
func (f *Field) Is(name string) bool { return strings.EqualFold(f.name, name) }

// Body returns the unfolded body of the header field without decoding
// encoded words.
func (f *Field) Body() string { return f.body }

// Text returns the body with RFC 2047 encoded words decoded.
func (f *Field) Text(opts ...DecodeOption) string {
	return DecodeHeaderValue(f.body, opts...)
}

// Raw returns the bytes of the field as parsed, or nil for a field created
// with New.
func (f *Field) Raw() []byte { return f.raw }

// String returns the field formatted for output. Parsed fields are returned
// as they were read.
func (f *Field) String() string {
	if f.raw != nil {
		return strings.TrimRight(string(f.raw), "\r\n")
	}
	return f.name + ": " + f.body
}
