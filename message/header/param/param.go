package param

import (
	"strings"
)

// Well known parameter names.
const (
	// Charset is the name of the charset parameter that may be present in the
	// Content-type header.
	Charset = "charset"

	// Boundary is the name of the boundary parameter that may be present in
	// the Content-type header.
	Boundary = "boundary"

	// Filename is the name of the filename parameter that may be present in
	// the Content-disposition header.
	Filename = "filename"

	// Name is the legacy Content-type parameter some senders use in place of
	// the Content-disposition filename.
	Name = "name"

	// Format and DelSp are the RFC 3676 parameters of text/plain.
	Format = "format"
	DelSp  = "delsp"

	// AccessType is the parameter of message/external-body.
	AccessType = "access-type"
)

// Param is a single attribute/value pair. The attribute is always lowercase
// and the value is always decoded to UTF-8 when the source declared a charset.
type Param struct {
	Attribute string
	Value     string
}

// List is an ordered parameter list. Lookups are case insensitive.
type List []Param

// Get returns the value of the first parameter named k or an empty string.
func (l List) Get(k string) string {
	v, _ := l.Lookup(k)
	return v
}

// Lookup returns the value of the first parameter named k.
func (l List) Lookup(k string) (string, bool) {
	k = strings.ToLower(k)
	for _, p := range l {
		if p.Attribute == k {
			return p.Value, true
		}
	}
	return "", false
}

// Has reports whether a parameter named k is present.
func (l List) Has(k string) bool {
	_, ok := l.Lookup(k)
	return ok
}

// Set replaces the value of the first parameter named k or appends it.
func (l List) Set(k, v string) List {
	k = strings.ToLower(k)
	for i := range l {
		if l[i].Attribute == k {
			l[i].Value = v
			return l
		}
	}
	return append(l, Param{k, v})
}

// Delete removes every parameter named k.
func (l List) Delete(k string) List {
	k = strings.ToLower(k)
	out := l[:0]
	for _, p := range l {
		if p.Attribute != k {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a copy of the list.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	c := make(List, len(l))
	copy(c, l)
	return c
}

// Map returns the parameters as a map. Later duplicates do not override
// earlier ones.
func (l List) Map() map[string]string {
	m := make(map[string]string, len(l))
	for _, p := range l {
		if _, ok := m[p.Attribute]; !ok {
			m[p.Attribute] = p.Value
		}
	}
	return m
}

// String formats the list for a header field, each parameter preceded by
// "; ".
func (l List) String() string {
	var sb strings.Builder
	for _, p := range l {
		for _, f := range FormatParam(p.Attribute, p.Value) {
			sb.WriteString("; ")
			sb.WriteString(f)
		}
	}
	return sb.String()
}
