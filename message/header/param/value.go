package param

import (
	"strings"
)

// Value represents a parsed parameterized header field, such as is used in the
// Content-type and Content-disposition headers: a primary value followed by a
// parameter list. A Value is not changed in place by its readers. Use Modify
// to derive a changed copy.
type Value struct {
	v  string
	ps List
}

// ParseValue takes a header field body and parses it as a Value. The primary
// value is lowercased and trimmed. Parsing never fails.
func ParseValue(body string, opts ...Option) *Value {
	v, rest, _ := strings.Cut(body, ";")
	return &Value{
		v:  strings.ToLower(strings.TrimSpace(v)),
		ps: Parse(rest, opts...),
	}
}

// New creates a new parameterized header field with no parameters.
func New(v string) *Value {
	return &Value{v: v}
}

// NewWithParams creates a new parameterized header field with the given
// parameters.
func NewWithParams(v string, ps List) *Value {
	return &Value{v: v, ps: ps}
}

// Modifier is a modification to apply to a Value when calling Modify.
type Modifier func(*Value)

// Change is a Modifier that replaces the primary value of the Value.
func Change(value string) Modifier {
	return func(pv *Value) { pv.v = value }
}

// Set is a Modifier that sets a parameter with the given name on the Value.
func Set(name, value string) Modifier {
	return func(pv *Value) { pv.ps = pv.ps.Set(name, value) }
}

// Delete is a Modifier that removes the parameter with the given name from the
// Value.
func Delete(name string) Modifier {
	return func(pv *Value) { pv.ps = pv.ps.Delete(name) }
}

// Modify clones a Value, applies the given modifications and returns the new
// Value.
//
//	v := param.ParseValue("multipart/mixed; boundary=abc123")
//	nv := param.Modify(v, param.Change("multipart/alternative"), param.Set("charset", "utf-8"))
func Modify(pv *Value, changes ...Modifier) *Value {
	c := pv.Clone()
	for _, change := range changes {
		change(c)
	}
	return c
}

// Value returns the primary value, the text before the first semicolon.
func (pv *Value) Value() string { return pv.v }

// Disposition is a synonym for Value for Content-disposition fields.
func (pv *Value) Disposition() string { return pv.v }

// MediaType is a synonym for Value for Content-type fields.
func (pv *Value) MediaType() string { return pv.v }

// Type returns the part of MediaType before the slash, or all of it if there
// is no slash.
func (pv *Value) Type() string {
	t, _, _ := strings.Cut(pv.v, "/")
	return strings.TrimSpace(t)
}

// Subtype returns the part of MediaType after the slash or an empty string.
func (pv *Value) Subtype() string {
	_, st, _ := strings.Cut(pv.v, "/")
	return strings.TrimSpace(st)
}

// Params returns the parameter list. Do not modify it.
func (pv *Value) Params() List { return pv.ps }

// Parameter returns the value of the named parameter.
func (pv *Value) Parameter(k string) string { return pv.ps.Get(k) }

// Filename returns the filename parameter.
func (pv *Value) Filename() string { return pv.ps.Get(Filename) }

// Charset returns the charset parameter.
func (pv *Value) Charset() string { return pv.ps.Get(Charset) }

// Boundary returns the boundary parameter.
func (pv *Value) Boundary() string { return pv.ps.Get(Boundary) }

// String returns the serialized value including the primary value and all
// parameters.
func (pv *Value) String() string {
	return pv.v + pv.ps.String()
}

// Clone returns a deep copy of the Value.
func (pv *Value) Clone() *Value {
	return &Value{v: pv.v, ps: pv.ps.Clone()}
}
