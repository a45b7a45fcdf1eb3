package transfer

import (
	"bufio"
	"errors"
	"io"

	qp "gopkg.in/alexcesaro/quotedprintable.v3"
)

// qpChunk is the most input consumed from one line before decoding it. Longer
// lines are decoded a chunk at a time.
const qpChunk = 256

func isQPSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f'
}

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

// DecodeQuotedPrintable decodes quoted-printable input. Trailing whitespace is
// removed from each complete line, a final "=" joins the line to the next and
// "=XX" triples are decoded. Anything else, including malformed triples, is
// copied as it is. An "=0D" ending a hard line becomes the line feed.
func DecodeQuotedPrintable(r io.Reader, w io.Writer, _ bool) error {
	br := bufio.NewReaderSize(r, qpChunk)
	out := make([]byte, 0, 2*qpChunk)

	// pending holds an "=" or "=X" left at the end of a chunk
	var pending []byte

	for {
		chunk, err := br.ReadSlice('\n')
		if err != nil && !errors.Is(err, bufio.ErrBufferFull) && !errors.Is(err, io.EOF) {
			return err
		}
		if len(chunk) == 0 && err != nil {
			break
		}

		full := len(chunk) > 0 && chunk[len(chunk)-1] == '\n'
		line := chunk
		if full {
			for len(line) > 0 && isQPSpace(line[len(line)-1]) {
				line = line[:len(line)-1]
			}
		}
		if len(pending) > 0 {
			line = append(pending, line...)
			pending = nil
		}

		soft := false
		lastCR := false
		for i := 0; i < len(line); {
			c := line[i]
			if c != '=' {
				out = append(out, c)
				lastCR = false
				i++
				continue
			}

			rest := len(line) - i
			switch {
			case rest == 1 && full:
				soft = true
				i++
			case rest < 3 && !full && !errors.Is(err, io.EOF):
				pending = append([]byte(nil), line[i:]...)
				i = len(line)
			case rest >= 3:
				hi, ok1 := unhex(line[i+1])
				lo, ok2 := unhex(line[i+2])
				if ok1 && ok2 {
					b := hi<<4 | lo
					out = append(out, b)
					lastCR = b == '\r'
					i += 3
					continue
				}
				out = append(out, c)
				lastCR = false
				i++
			default:
				// "=" or "=X" at the very end of input
				if rest == 1 {
					soft = true
					i++
					continue
				}
				out = append(out, c)
				lastCR = false
				i++
			}
		}

		if full && !soft {
			if lastCR {
				out[len(out)-1] = '\n'
			} else {
				out = append(out, '\n')
			}
		}

		if len(out) >= qpChunk {
			if _, werr := w.Write(out); werr != nil {
				return werr
			}
			out = out[:0]
		}

		if errors.Is(err, io.EOF) {
			break
		}
	}

	if len(out) > 0 {
		if _, err := w.Write(out); err != nil {
			return err
		}
	}
	return nil
}

// NewQuotedPrintableEncoder will transform all bytes written to the returned
// io.WriteCloser into quoted-printable form and write them to the given
// io.Writer.
func NewQuotedPrintableEncoder(w io.Writer) io.WriteCloser {
	return qp.NewWriter(w)
}
