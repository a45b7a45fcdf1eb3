package field

import (
	"encoding/base64"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/zostay/go-mua/charset"
	"github.com/zostay/go-mua/internal/mlog"
)

type decoder struct {
	log            mlog.Log
	assumedCharset string
	target         string
}

// DecodeOption modifies DecodeHeaderValue.
type DecodeOption func(*decoder)

// WithAssumedCharset sets the charset used for raw 8-bit text outside encoded
// words when that text is not valid UTF-8.
func WithAssumedCharset(cs string) DecodeOption {
	return func(d *decoder) { d.assumedCharset = cs }
}

// WithTargetCharset sets the charset of the decoded result. The default is
// UTF-8.
func WithTargetCharset(cs string) DecodeOption {
	return func(d *decoder) { d.target = cs }
}

// WithDecodeLogger sets the logger receiving reports of words left undecoded.
func WithDecodeLogger(l *slog.Logger) DecodeOption {
	return func(d *decoder) { d.log = mlog.New("rfc2047", l) }
}

// word is an encoded word located in the input.
type word struct {
	start, end int // byte range of =?...?= in the input
	charset    string
	data       []byte // decoded bytes in charset
}

// especials are the characters excluded from the charset token of an encoded
// word.
const especials = `()<>@,;:"/[]?.=`

// findWord locates the next syntactically valid encoded word in s at or after
// from. Encoded text is scanned leniently: spaces and question marks are
// accepted since many mailers fail to encode them.
func findWord(s string, from int) (int, int, bool) {
	for p := from; ; p++ {
		i := strings.Index(s[p:], "=?")
		if i < 0 {
			return 0, 0, false
		}
		p += i

		q := p + 2
		for q < len(s) && s[q] > 0x20 && s[q] < 0x7f && strings.IndexByte(especials, s[q]) < 0 {
			q++
		}
		if q == p+2 || q+2 >= len(s) || s[q] != '?' || strings.IndexByte("BbQq", s[q+1]) < 0 || s[q+2] != '?' {
			continue
		}

		for q += 3; q < len(s) && s[q] >= 0x20 && s[q] < 0x7f && !(s[q] == '?' && q+1 < len(s) && s[q+1] == '='); q++ {
		}
		if q+1 >= len(s) || s[q] != '?' || s[q+1] != '=' {
			continue
		}
		return p, q + 2, true
	}
}

// decodeWord decodes the encoded word s, returning false when it is
// malformed.
func decodeWord(s string) (word, bool) {
	inner := s[2 : len(s)-2]
	cs, rest, _ := strings.Cut(inner, "?")
	enc, text, _ := strings.Cut(rest, "?")

	// RFC 2231 section 5 language suffix
	if i := strings.IndexByte(cs, '*'); i >= 0 {
		cs = cs[:i]
	}
	if cs == "" {
		return word{}, false
	}

	var (
		data []byte
		ok   bool
	)
	switch enc {
	case "B", "b":
		data, ok = decodeB(text)
	case "Q", "q":
		data, ok = decodeQ(text), true
	}
	if !ok {
		return word{}, false
	}
	return word{charset: cs, data: data}, true
}

func decodeB(text string) ([]byte, bool) {
	text = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, text)
	if b, err := base64.StdEncoding.DecodeString(text); err == nil {
		return b, true
	}
	if b, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(text, "=")); err == nil {
		return b, true
	}
	return nil, false
}

func decodeQ(text string) []byte {
	out := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '_':
			out = append(out, ' ')
		case c == '=' && i+2 < len(text) && isHex(text[i+1]) && isHex(text[i+2]):
			out = append(out, unhex(text[i+1])<<4|unhex(text[i+2]))
			i += 2
		default:
			out = append(out, c)
		}
	}
	return out
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func isLWS(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\r', '\n':
		default:
			return false
		}
	}
	return true
}

// DecodeHeaderValue decodes every RFC 2047 encoded word found in s.
// Whitespace separating two encoded words is removed. Adjacent words sharing a
// charset are converted together so a multibyte character split between them
// survives. A malformed word, or one in a charset that cannot be converted,
// is left as it is.
func DecodeHeaderValue(s string, opts ...DecodeOption) string {
	d := &decoder{log: mlog.New("rfc2047", nil), target: charset.UTF8}
	for _, opt := range opts {
		opt(d)
	}

	if !strings.Contains(s, "=?") {
		return d.plain(s)
	}

	var (
		sb  strings.Builder
		run []word
	)

	flush := func() {
		if len(run) == 0 {
			return
		}
		var data []byte
		for _, w := range run {
			data = append(data, w.data...)
		}
		out, err := charset.Convert(data, run[0].charset, d.target)
		if err != nil {
			d.log.Debugx("cannot convert encoded word, leaving as is", err, slog.String("charset", run[0].charset))
			sb.WriteString(s[run[0].start:run[len(run)-1].end])
		} else {
			sb.Write(out)
		}
		run = run[:0]
	}

	pos := 0
	prevWord := false
	for {
		start, end, found := findWord(s, pos)
		if !found {
			flush()
			sb.WriteString(d.plain(s[pos:]))
			break
		}

		gap := s[pos:start]
		w, ok := decodeWord(s[start:end])
		if !ok {
			d.log.Debug("malformed encoded word, leaving as is", slog.String("word", s[start:end]))
			flush()
			sb.WriteString(d.plain(s[pos:end]))
			pos = end
			prevWord = false
			continue
		}
		w.start, w.end = start, end

		switch {
		case prevWord && isLWS(gap):
			if len(run) > 0 && !charset.Same(run[0].charset, w.charset) {
				flush()
			}
		default:
			flush()
			sb.WriteString(d.plain(gap))
		}

		run = append(run, w)
		prevWord = true
		pos = end
	}

	return sb.String()
}

// plain converts unencoded text carrying raw 8-bit bytes using the assumed
// charset.
func (d *decoder) plain(s string) string {
	if d.assumedCharset == "" || utf8.ValidString(s) {
		return s
	}
	out, err := charset.ConvertString(s, d.assumedCharset, d.target)
	if err != nil {
		return s
	}
	return out
}
