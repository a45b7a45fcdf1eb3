package param

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxFragmentLen is the longest encoded value placed in a single attr*N*
// fragment when FormatParam has to split a value.
const maxFragmentLen = 60

// tspecials from RFC 2045 section 5.1.
const tspecials = `()<>@,;:\"/[]?=`

func isToken(v string) bool {
	if v == "" {
		return false
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c <= ' ' || c >= 0x7f || strings.IndexByte(tspecials, c) >= 0 {
			return false
		}
	}
	return true
}

func isASCII(v string) bool {
	for i := 0; i < len(v); i++ {
		if v[i] >= 0x80 {
			return false
		}
	}
	return true
}

// FormatParam formats a single parameter for output. Token values are emitted
// as they are, other ASCII values are quoted. Values with non-ASCII text are
// emitted RFC 2231 encoded as UTF-8 and split into continuations when long,
// in which case more than one string is returned.
func FormatParam(attr, value string) []string {
	if isASCII(value) && !strings.ContainsAny(value, "\r\n") {
		if isToken(value) {
			return []string{attr + "=" + value}
		}
		return []string{attr + "=" + quote(value)}
	}

	enc := percentEncode(value)
	if len(enc) <= maxFragmentLen {
		return []string{attr + "*=utf-8''" + enc}
	}

	var out []string
	for n := 0; enc != ""; n++ {
		cut := len(enc)
		if cut > maxFragmentLen {
			cut = maxFragmentLen
			// never split a %XX triple
			if i := strings.LastIndexByte(enc[:cut], '%'); i >= cut-2 {
				cut = i
			}
		}
		prefix := attr + "*" + strconv.Itoa(n) + "*="
		if n == 0 {
			prefix += "utf-8''"
		}
		out = append(out, prefix+enc[:cut])
		enc = enc[cut:]
	}
	return out
}

func quote(v string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(v); i++ {
		if v[i] == '"' || v[i] == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(v[i])
	}
	sb.WriteByte('"')
	return sb.String()
}

// attrChar reports whether c may appear unencoded in an RFC 2231 extended
// value.
func attrChar(c byte) bool {
	return c > ' ' && c < 0x7f && c != '*' && c != '\'' && c != '%' && strings.IndexByte(tspecials, c) < 0
}

func percentEncode(v string) string {
	if !utf8.ValidString(v) {
		v = strings.ToValidUTF8(v, "�")
	}
	var sb strings.Builder
	for i := 0; i < len(v); i++ {
		c := v[i]
		if attrChar(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hexDigits[c>>4])
		sb.WriteByte(hexDigits[c&0x0f])
	}
	return sb.String()
}
