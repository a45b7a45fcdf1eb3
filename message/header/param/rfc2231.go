package param

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/zostay/go-mua/charset"
)

// fragment is one piece of an RFC 2231 continued parameter, attr*N or attr*N*.
type fragment struct {
	index   int
	encoded bool
	value   string
}

// parseFragment parses the part of the attribute after the first '*'. It
// accepts "N" and "N*" where N is a decimal index without leading zeros.
func parseFragment(suffix, value string) (fragment, bool) {
	encoded := strings.HasSuffix(suffix, "*")
	digits := strings.TrimSuffix(suffix, "*")
	if digits == "" || (len(digits) > 1 && digits[0] == '0') {
		return fragment{}, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return fragment{}, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return fragment{}, false
	}
	return fragment{index: n, encoded: encoded, value: value}, true
}

// join assembles the continued parameters in attribute name order. An
// attribute whose fragments do not number exactly 0 through n-1 is dropped.
func (p *parser) join(frags map[string][]fragment, order []string) List {
	if len(frags) == 0 {
		return nil
	}

	names := append([]string(nil), order...)
	sort.Strings(names)

	out := make(List, 0, len(names))
	for _, name := range names {
		fs := frags[name]
		sort.SliceStable(fs, func(i, j int) bool { return fs[i].index < fs[j].index })

		complete := true
		for i, f := range fs {
			if f.index != i {
				complete = false
				break
			}
		}
		if !complete {
			p.log.Debug("parameter continuation has gaps, dropping", slog.String("attribute", name))
			continue
		}

		var (
			cs  string
			raw strings.Builder
		)
		encoded := fs[0].encoded
		for i, f := range fs {
			v := f.value
			if f.encoded {
				if i == 0 {
					cs, v = splitCharset(v)
				}
				v = string(percentDecode(v))
			}
			raw.WriteString(v)
		}

		value := raw.String()
		if encoded {
			value = p.convert(value, cs)
		}
		out = append(out, Param{name, value})
	}
	return out
}

// extendedValue decodes a single attr*=charset'lang'value parameter.
func (p *parser) extendedValue(v string) string {
	cs, rest := splitCharset(v)
	return p.convert(string(percentDecode(rest)), cs)
}

func (p *parser) convert(v, cs string) string {
	if cs == "" || charset.IsUTF8(cs) {
		return v
	}
	out, err := charset.ConvertString(v, cs, charset.UTF8)
	if err != nil {
		p.log.Debugx("cannot convert parameter value", err, slog.String("charset", cs))
		return v
	}
	return out
}

// splitCharset splits charset'language'value into the charset and the value.
// The language is discarded. Input without the two quotes is returned as the
// value with no charset.
func splitCharset(v string) (string, string) {
	i := strings.IndexByte(v, '\'')
	if i < 0 {
		return "", v
	}
	j := strings.IndexByte(v[i+1:], '\'')
	if j < 0 {
		return "", v
	}
	return v[:i], v[i+1+j+1:]
}

const hexDigits = "0123456789ABCDEF"

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// percentDecode decodes %XX sequences. Malformed sequences are kept as they
// are.
func percentDecode(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			hi, ok1 := unhex(s[i+1])
			lo, ok2 := unhex(s[i+2])
			if ok1 && ok2 {
				out = append(out, hi<<4|lo)
				i += 2
				continue
			}
		}
		out = append(out, s[i])
	}
	return out
}
