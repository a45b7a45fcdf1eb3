package transfer

import (
	"bufio"
	"errors"
	"io"
)

// DecodeXBit copies 7bit, 8bit and binary bodies. When isText is set, CRLF
// pairs become LF.
func DecodeXBit(r io.Reader, w io.Writer, isText bool) error {
	if !isText {
		_, err := io.Copy(w, r)
		return err
	}

	br := bufio.NewReader(r)
	out := make([]byte, 0, 1024)
	for {
		c, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return err
		}
		if c == '\r' {
			if next, err := br.Peek(1); err == nil && next[0] == '\n' {
				continue
			}
		}
		out = append(out, c)
		if len(out) == cap(out) {
			if _, err := w.Write(out); err != nil {
				return err
			}
			out = out[:0]
		}
	}
	if len(out) > 0 {
		_, err := w.Write(out)
		return err
	}
	return nil
}

// NewAsIsEncoder returns an io.WriteCloser that writes bytes as-is.
func NewAsIsEncoder(w io.Writer) io.WriteCloser {
	return nopCloser{w}
}
