package field

import (
	"bytes"
	"strings"
)

// BadStartError is returned when the header begins with junk text that does
// not appear to be a header. This text is preserved in the error object.
type BadStartError struct {
	BadStart []byte // the text skipped at the start of header
}

// Error returns the error message.
func (err *BadStartError) Error() string {
	return "header starts with text that does not appear to be a header"
}

// Line represents the unparsed content for a complete header field line,
// continuation lines included.
type Line []byte

// Lines represents the unparsed content for zero or more header field lines.
type Lines []Line

// ParseLines splits a header block into field lines. Lines end at LF. A line
// starting with a space or tab, or lacking a colon, continues the previous
// field. If no field has started yet such lines are skipped and reported in a
// BadStartError, which is recoverable: the returned Lines are still usable.
func ParseLines(m []byte) (Lines, error) {
	h := make(Lines, 0, len(m)/80+1)
	var err *BadStartError
	for _, line := range bytes.SplitAfter(m, []byte{'\n'}) {
		if len(line) == 0 {
			break
		}
		if line[0] == '\t' || line[0] == ' ' || !bytes.Contains(line, []byte(":")) {
			if len(h) == 0 {
				if err != nil {
					err.BadStart = append(err.BadStart, line...)
				} else {
					err = &BadStartError{append([]byte(nil), line...)}
				}
				continue
			}

			h[len(h)-1] = append(h[len(h)-1], line...)
		} else {
			h = append(h, append(Line(nil), line...))
		}
	}

	if err != nil {
		return h, err
	}
	return h, nil
}

// Parse takes a single header field line, including any folded continuation
// lines, and returns the Field.
func Parse(f Line) *Field {
	raw := bytes.TrimRight(f, "\r\n")

	name, body, found := bytes.Cut(raw, []byte{':'})
	if !found {
		body = nil
	}

	return &Field{
		name: strings.TrimSpace(string(name)),
		body: strings.TrimSpace(Unfold(string(body))),
		raw:  append([]byte(nil), f...),
	}
}

// Unfold removes the line breaks of folded header text. The whitespace that
// begins each continuation line is kept.
func Unfold(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\r' || s[i] == '\n' {
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
