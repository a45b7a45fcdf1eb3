package header

import "bytes"

// Break represents the linebreak used by a header.
type Break string

// These are the line breaks a header may use. Parsing accepts all of them,
// but only LF and CRLF are seen in practice.
const (
	Meh  Break = ""         // Sometimes it doesn't matter
	CRLF Break = "\x0d\x0a" // \r\n - Network linebreak
	LF   Break = "\x0a"     // \n - Unix/Linux/BSD linebreak
	CR   Break = "\x0d"     // \r - Commodores/old Macs linebreak
	LFCR Break = "\x0a\x0d" // \n\r - for weirdos
)

// String returns the break as a string.
func (b Break) String() string {
	return string(b)
}

// Bytes returns the break as a slice of bytes.
func (b Break) Bytes() []byte {
	return []byte(b)
}

// Name returns a printable name for the break.
func (b Break) Name() string {
	switch b {
	case CRLF:
		return "CRLF"
	case LF:
		return "LF"
	case CR:
		return "CR"
	case LFCR:
		return "LFCR"
	default:
		return "none"
	}
}

// DetectBreak returns the line break that ends the first line of m. It
// returns Meh when m holds no line break at all.
func DetectBreak(m []byte) Break {
	i := bytes.IndexAny(m, "\r\n")
	switch {
	case i < 0:
		return Meh
	case m[i] == '\n' && i+1 < len(m) && m[i+1] == '\r':
		return LFCR
	case m[i] == '\n':
		return LF
	case i+1 < len(m) && m[i+1] == '\n':
		return CRLF
	default:
		return CR
	}
}
