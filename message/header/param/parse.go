package param

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/zostay/go-mua/charset"
	"github.com/zostay/go-mua/internal/mlog"
)

type parser struct {
	log            mlog.Log
	wordDecoder    func(string) string
	assumedCharset string
}

// Option modifies how Parse treats its input.
type Option func(*parser)

// WithLogger sets the logger receiving reports of skipped segments.
func WithLogger(l *slog.Logger) Option {
	return func(p *parser) { p.log = mlog.New("param", l) }
}

// WithWordDecoder sets a function used to decode RFC 2047 encoded words found
// in plain parameter values. Some mailers put encoded words in filename
// parameters even though RFC 2047 forbids it.
func WithWordDecoder(decode func(string) string) Option {
	return func(p *parser) { p.wordDecoder = decode }
}

// WithAssumedCharset sets the charset used to convert plain parameter values
// carrying 8-bit bytes that are not valid UTF-8. It also enables tracking of
// ISO-2022 escape sequences inside quoted values, where a '"' byte may be part
// of a multibyte character.
func WithAssumedCharset(cs string) Option {
	return func(p *parser) { p.assumedCharset = cs }
}

// Parse parses a parameter list: the part of a Content-type or
// Content-disposition body after the primary value, starting with or without
// the first ";". Parse never fails. Segments without a value or with an
// unterminated quoted value are skipped. Continuations are joined and RFC 2231
// encoded values are decoded to UTF-8.
func Parse(raw string, opts ...Option) List {
	p := &parser{log: mlog.New("param", nil)}
	for _, opt := range opts {
		opt(p)
	}

	var (
		plain    List
		isPlain  []bool
		extended = map[string]bool{}
		frags    = map[string][]fragment{}
		order    []string
	)

	s := raw
	for {
		s = strings.TrimLeft(s, " \t\r\n;")
		if s == "" {
			break
		}

		i := strings.IndexAny(s, "=;")
		if i < 0 || s[i] == ';' {
			seg := s
			if i >= 0 {
				seg = s[:i]
			}
			p.log.Debug("parameter without value, skipping", slog.String("segment", seg))
			if i < 0 {
				break
			}
			s = s[i:]
			continue
		}

		attr := strings.ToLower(strings.TrimRight(s[:i], " \t\r\n"))
		s = strings.TrimLeft(s[i+1:], " \t\r\n")

		var (
			value string
			ok    bool
		)
		if strings.HasPrefix(s, `"`) {
			value, s, ok = p.quoted(s[1:])
			if !ok {
				p.log.Debug("unterminated quoted parameter value, skipping", slog.String("attribute", attr))
				break
			}
		} else {
			j := strings.IndexAny(s, " \t;")
			if j < 0 {
				j = len(s)
			}
			value, s = s[:j], s[j:]
		}

		// skip junk after the value
		if j := strings.IndexByte(s, ';'); j >= 0 {
			s = s[j:]
		} else {
			s = ""
		}

		if attr == "" {
			p.log.Debug("parameter without attribute, skipping", slog.String("value", value))
			continue
		}

		star := strings.IndexByte(attr, '*')
		switch {
		case star < 0:
			plain = append(plain, Param{attr, p.plainValue(value)})
			isPlain = append(isPlain, true)
		case star == len(attr)-1:
			plain = append(plain, Param{attr[:star], p.extendedValue(value)})
			isPlain = append(isPlain, false)
			extended[attr[:star]] = true
		default:
			name := attr[:star]
			f, ok := parseFragment(attr[star+1:], value)
			if !ok {
				p.log.Debug("bad continuation index, skipping", slog.String("attribute", attr))
				continue
			}
			if _, seen := frags[name]; !seen {
				order = append(order, name)
			}
			frags[name] = append(frags[name], f)
		}
	}

	joined := p.join(frags, order)
	for _, jp := range joined {
		extended[jp.Attribute] = true
	}

	return append(dropFallbacks(plain, isPlain, extended), joined...)
}

// dropFallbacks removes the plain form of each attribute that also has an RFC
// 2231 form. Senders add the plain one for readers that cannot decode the
// other.
func dropFallbacks(plain List, isPlain []bool, extended map[string]bool) List {
	if len(extended) == 0 {
		return plain
	}

	out := plain[:0]
	for i, pp := range plain {
		if isPlain[i] && extended[pp.Attribute] {
			continue
		}
		out = append(out, pp)
	}
	return out
}

// quoted reads a quoted value up to the closing quote. s starts just after the
// opening quote. It returns the unescaped value, the remaining input after the
// closing quote and whether a closing quote was found.
func (p *parser) quoted(s string) (string, string, bool) {
	var sb strings.Builder
	ascii := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == 0x1b && p.assumedCharset != "" && i+2 < len(s) {
			ascii = s[i+1] == '(' && (s[i+2] == 'B' || s[i+2] == 'J')
		}
		switch {
		case ascii && c == '"':
			return sb.String(), s[i+1:], true
		case c == '\\':
			if i+1 >= len(s) {
				return sb.String(), "", false
			}
			i++
			sb.WriteByte(s[i])
		default:
			sb.WriteByte(c)
		}
	}
	return "", "", false
}

func (p *parser) plainValue(v string) string {
	if p.wordDecoder != nil && strings.Contains(v, "=?") {
		return p.wordDecoder(v)
	}
	if p.assumedCharset != "" && !utf8.ValidString(v) {
		if out, err := charset.ConvertString(v, p.assumedCharset, charset.UTF8); err == nil {
			return out
		}
	}
	return v
}
