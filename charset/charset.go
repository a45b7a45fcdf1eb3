// Package charset is the character set conversion service used by the rest of
// this module. Charset names are resolved against the IANA MIME registry
// first, then the full IANA registry, then the WHATWG labels, which between
// them cover nearly every label seen in real mail.
package charset

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Well known charset names.
const (
	UTF8        = "utf-8"
	USASCII     = "us-ascii"
	Unknown8Bit = "unknown-8bit"
)

// ErrUnknownCharset is returned when a charset name cannot be resolved to an
// encoding.
var ErrUnknownCharset = errors.New("unknown charset")

var aliases = map[string]string{
	"ascii":          USASCII,
	"us_ascii":       USASCII,
	"ansi_x3.4-1968": USASCII,
	"646":            USASCII,
	"utf8":           UTF8,
	"x-unknown":      Unknown8Bit,
	"unknown":        Unknown8Bit,
	"x-user-defined": Unknown8Bit,
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Trim(name, `"'`)
	if a, ok := aliases[name]; ok {
		return a
	}
	return name
}

// Lookup returns the encoding for the named charset.
func Lookup(name string) (encoding.Encoding, error) {
	n := normalize(name)
	switch n {
	case UTF8:
		return unicode.UTF8, nil
	case USASCII:
		return ascii, nil
	case "", Unknown8Bit:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}

	if enc, err := ianaindex.MIME.Encoding(n); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := ianaindex.IANA.Encoding(n); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(n); err == nil && enc != nil {
		return enc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
}

// Canonical returns the preferred MIME name of the charset in lowercase. If
// the charset is unknown, the normalized input is returned.
func Canonical(name string) string {
	n := normalize(name)
	switch n {
	case UTF8, USASCII, Unknown8Bit:
		return n
	}
	enc, err := Lookup(n)
	if err != nil {
		return n
	}
	if mn, err := ianaindex.MIME.Name(enc); err == nil && mn != "" {
		return strings.ToLower(mn)
	}
	if hn, err := htmlindex.Name(enc); err == nil && hn != "" {
		return strings.ToLower(hn)
	}
	return n
}

// Same reports whether two charset names refer to the same charset.
func Same(a, b string) bool {
	return Canonical(a) == Canonical(b)
}

// IsUTF8 reports whether the name designates UTF-8.
func IsUTF8(name string) bool {
	return normalize(name) == UTF8
}

// IsKnown reports whether name resolves to an encoding.
func IsKnown(name string) bool {
	_, err := Lookup(name)
	return err == nil
}

// Convert converts b from one charset to another. Characters that cannot be
// represented in the target charset are replaced. On error, b is returned
// unchanged along with the error.
func Convert(b []byte, from, to string) ([]byte, error) {
	if Same(from, to) {
		return b, nil
	}
	t, err := transformer(from, to)
	if err != nil {
		return b, err
	}
	out, _, err := transform.Bytes(t, b)
	if err != nil {
		return b, err
	}
	return out, nil
}

// ConvertString is Convert for strings.
func ConvertString(s, from, to string) (string, error) {
	out, err := Convert([]byte(s), from, to)
	return string(out), err
}

// transformer returns the chain that decodes from into UTF-8 and then encodes
// that into to.
func transformer(from, to string) (transform.Transformer, error) {
	var ts []transform.Transformer
	if !IsUTF8(from) {
		enc, err := Lookup(from)
		if err != nil {
			return nil, err
		}
		ts = append(ts, enc.NewDecoder())
	}
	if !IsUTF8(to) {
		enc, err := Lookup(to)
		if err != nil {
			return nil, err
		}
		ts = append(ts, encoding.ReplaceUnsupported(enc.NewEncoder()))
	}
	switch len(ts) {
	case 0:
		return transform.Nop, nil
	case 1:
		return ts[0], nil
	default:
		return transform.Chain(ts...), nil
	}
}

// NewWriter returns a writer converting everything written to it from one
// charset to another before passing it to w. Close must be called to flush
// any incomplete multibyte sequence held at the end of the input.
func NewWriter(w io.Writer, from, to string) (io.WriteCloser, error) {
	if Same(from, to) {
		return nopCloser{w}, nil
	}
	t, err := transformer(from, to)
	if err != nil {
		return nil, err
	}
	return transform.NewWriter(w, t), nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// CountLossy returns the number of characters of the UTF-8 string s that
// cannot be represented in charset cs.
func CountLossy(s, cs string) (int, error) {
	if IsUTF8(cs) {
		if !utf8.ValidString(s) {
			return 0, fmt.Errorf("%w: input is not valid utf-8", ErrUnknownCharset)
		}
		return 0, nil
	}
	enc, err := Lookup(cs)
	if err != nil {
		return 0, err
	}
	e := enc.NewEncoder()
	n := 0
	for _, r := range s {
		if r == utf8.RuneError {
			n++
			continue
		}
		if _, err := e.String(string(r)); err != nil {
			n++
		}
		e.Reset()
	}
	return n, nil
}

// Guess tries to detect the charset of b, returning the lowercased name and
// true on success.
func Guess(b []byte) (string, bool) {
	if utf8.Valid(b) {
		return UTF8, true
	}
	res, err := chardet.NewTextDetector().DetectBest(b)
	if err != nil || res == nil {
		return "", false
	}
	if _, err := htmlindex.Get(res.Charset); err != nil {
		return "", false
	}
	return strings.ToLower(res.Charset), true
}
