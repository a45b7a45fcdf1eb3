package field

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/zostay/go-mua/charset"
)

// Limits on the length of an encoded word.
const (
	// EncodedWordMax is the longest encoded word produced, leaving room on a
	// 76 column line for the folding whitespace.
	EncodedWordMax = 75

	// encodedWordMin is the length of the encoded word "=?X?Q??=" wrapper
	// plus one character, the overhead of an encoded word with a one byte
	// charset name.
	encodedWordMin = 9

	// lineMax is the column limit, counting the folding whitespace.
	lineMax = EncodedWordMax + 1

	// foldBreak joins consecutive encoded words.
	foldBreak = "\n\t"
)

// DefaultCharsets is the default candidate list for EncodeHeaderValue.
var DefaultCharsets = []string{charset.USASCII, "iso-8859-1", charset.UTF8}

// MimeSpecials are the characters that must be escaped in a Q encoded word.
const MimeSpecials = "@.,;:<>[]\\\"()?/= \t"

// RFC822Specials are the characters that force quoting in an address phrase.
const RFC822Specials = "@.,:;<>[]\\\"()"

// EncodeHeaderValue encodes s for use in an unstructured header field body
// starting at column 0 with DefaultCharsets.
func EncodeHeaderValue(s string) string {
	return Encode(s, DefaultCharsets, 0)
}

// EncodePhrase is Encode for the display name of an address. When the text
// needs encoding, any RFC 822 special in it is brought inside the encoded
// span.
func EncodePhrase(s string, charsets []string, col int) string {
	return encode(s, charsets, col, RFC822Specials)
}

// Encode encodes the minimal span of s that requires it as a sequence of RFC
// 2047 encoded words. The charset is the first candidate able to represent
// the text, falling back to UTF-8. Each word is B or Q encoded, whichever is
// shorter, and sized so that no line exceeds 76 columns given that the text
// starts at column col. Consecutive words are joined with "\n\t". Text that
// is not valid UTF-8 is labelled unknown-8bit and passed through unconverted.
func Encode(s string, charsets []string, col int) string {
	return encode(s, charsets, col, "")
}

type encoder struct {
	convert bool   // false when the bytes are passed through unconverted
	tocode  string // charset label of the words
}

func isHSpace(c byte) bool { return c == ' ' || c == '\t' }

func isContinuation(c byte) bool { return c&0xc0 == 0x80 }

func encode(u string, charsets []string, col int, specials string) string {
	if len(charsets) == 0 {
		charsets = []string{charset.UTF8}
	}
	valid := utf8.ValidString(u)

	// earliest and latest bytes that must be encoded
	t0, t1 := -1, -1
	s0, s1 := -1, -1
	for t := 0; t < len(u); t++ {
		c := u[t]
		if c&0x80 != 0 || (c == '=' && t+1 < len(u) && u[t+1] == '?') {
			if t0 < 0 {
				t0 = t
			}
			t1 = t
		} else if specials != "" && strings.IndexByte(specials, c) >= 0 {
			if s0 < 0 {
				s0 = t
			}
			s1 = t
		}
	}
	if t0 < 0 {
		return u
	}
	if s0 >= 0 && s0 < t0 {
		t0 = s0
	}
	if s1 > t1 {
		t1 = s1
	}
	// t1 becomes an exclusive bound
	t1++
	if valid {
		for t1 < len(u) && isContinuation(u[t1]) {
			t1++
		}
	}

	e := encoder{convert: valid, tocode: charset.UTF8}
	if valid {
		e.tocode = chooseCharset(u, charsets)
	} else {
		e.tocode = charset.Unknown8Bit
	}
	if !e.convert && charset.Same(e.tocode, charset.USASCII) {
		e.tocode = charset.Unknown8Bit
	}

	// keep the plain prefix short enough that a word can still follow it
	if t := lineMax - col - encodedWordMin; t < t0 {
		if t < 0 {
			t = 0
		}
		t0 = t
	}

	// move t0 back to the start of a word that fits on the line
	for ; t0 > 0; t0-- {
		if !isHSpace(u[t0-1]) {
			continue
		}
		t := t0 + 1
		if e.convert {
			for t < len(u) && isContinuation(u[t]) {
				t++
			}
		}
		if wlen, ok := e.try(u[t0:t]); ok && col+t0+wlen <= lineMax {
			break
		}
	}

	// move t1 forward to the end of a word that leaves room for the suffix
	for ; t1 < len(u); t1++ {
		if !isHSpace(u[t1]) {
			continue
		}
		t := t1 - 1
		if e.convert {
			for t > 0 && isContinuation(u[t]) {
				t--
			}
		}
		if wlen, ok := e.try(u[t:t1]); ok && 1+wlen+(len(u)-t1) <= lineMax {
			break
		}
	}

	var sb strings.Builder
	sb.WriteString(u[:t0])
	col += t0

	t := t0
	for {
		n, wlen := e.choose(u[t:t1], col)
		if n == t1-t {
			if col+wlen+(len(u)-t1) <= lineMax {
				break
			}
			n = t1 - t - 1
			if e.convert {
				for n > 0 && isContinuation(u[t+n]) {
					n--
				}
			}
			if n == 0 {
				// a single short word that cannot share its line with the
				// plain suffix: pull the next word into the encoded span
				if t1 >= len(u) {
					break
				}
				for t1++; t1 < len(u) && !isHSpace(u[t1]); t1++ {
				}
				continue
			}
			n, _ = e.choose(u[t:t+n], col)
		}

		sb.WriteString(e.word(u[t : t+n]))
		sb.WriteString(foldBreak)
		col = 1
		t += n
	}

	sb.WriteString(e.word(u[t:t1]))
	sb.WriteString(u[t1:])
	return sb.String()
}

// chooseCharset returns the first charset able to represent u without loss.
// UTF-8 is used when none can.
func chooseCharset(u string, charsets []string) string {
	for _, cs := range charsets {
		cs = strings.TrimSpace(cs)
		if cs == "" {
			continue
		}
		if n, err := charset.CountLossy(u, cs); err == nil && n == 0 {
			return strings.ToLower(cs)
		}
	}
	return charset.UTF8
}

// bytes converts d to the word charset.
func (e encoder) bytes(d string) []byte {
	if !e.convert || charset.IsUTF8(e.tocode) {
		return []byte(d)
	}
	out, err := charset.Convert([]byte(d), charset.UTF8, e.tocode)
	if err != nil {
		return []byte(d)
	}
	return out
}

func qSpecial(c byte) bool {
	return c >= 0x7f || c < 0x20 || c == '_' || strings.IndexByte(MimeSpecials, c) >= 0
}

// try returns the length of the shortest encoded word holding d, and false
// when d converts to more bytes than a single word can carry.
func (e encoder) try(d string) (int, bool) {
	b := e.bytes(d)
	if len(b) > EncodedWordMax-encodedWordMin+1-len(e.tocode) {
		return 0, false
	}

	count := 0
	for _, c := range b {
		if c != ' ' && qSpecial(c) {
			count++
		}
	}

	overhead := encodedWordMin - 2 + len(e.tocode)
	lenB := overhead + (len(b)+2)/3*4
	lenQ := overhead + len(b) + 2*count
	if e.qDisabled() {
		return lenB, true
	}
	if lenB < lenQ {
		return lenB, true
	}
	return lenQ, true
}

func (e encoder) qDisabled() bool {
	return strings.EqualFold(e.tocode, "iso-2022-jp")
}

// useB reports whether d is shorter as a B word than as a Q word.
func (e encoder) useB(b []byte) bool {
	if e.qDisabled() {
		return true
	}
	count := 0
	for _, c := range b {
		if c != ' ' && qSpecial(c) {
			count++
		}
	}
	return (len(b)+2)/3*4 < len(b)+2*count
}

// choose returns how many bytes of d fit in one word starting at col and the
// length of that word. At least one character is always chosen.
func (e encoder) choose(d string, col int) (int, int) {
	minN := 1
	if e.convert {
		for minN < len(d) && isContinuation(d[minN]) {
			minN++
		}
	}

	n := len(d)
	for {
		wlen, ok := e.try(d[:n])
		if ok && (col+wlen <= lineMax || n <= minN) {
			return n, wlen
		}
		n--
		if e.convert {
			for n > minN && isContinuation(d[n]) {
				n--
			}
		}
		if n < minN {
			n = minN
		}
	}
}

// word encodes d as a single encoded word.
func (e encoder) word(d string) string {
	b := e.bytes(d)
	var sb strings.Builder
	sb.WriteString("=?")
	sb.WriteString(e.tocode)
	if e.useB(b) {
		sb.WriteString("?B?")
		sb.WriteString(base64.StdEncoding.EncodeToString(b))
	} else {
		sb.WriteString("?Q?")
		for _, c := range b {
			switch {
			case c == ' ':
				sb.WriteByte('_')
			case qSpecial(c):
				sb.WriteByte('=')
				sb.WriteByte(hexDigits[c>>4])
				sb.WriteByte(hexDigits[c&0x0f])
			default:
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteString("?=")
	return sb.String()
}

const hexDigits = "0123456789ABCDEF"
