package transfer

import (
	"bufio"
	"encoding/base64"
	"errors"
	"io"
)

const defaultBase64LineLength = 76

var defaultBase64LineBreak = []byte{'\r', '\n'}

// base64Value maps a byte of the base64 alphabet to its value. Every other
// byte maps to -1.
var base64Value = func() (t [256]int8) {
	for i := range t {
		t[i] = -1
	}
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	for i := 0; i < len(alphabet); i++ {
		t[alphabet[i]] = int8(i)
	}
	return t
}()

// DecodeBase64 decodes base64 input four characters at a time. Bytes outside
// the alphabet are skipped. Decoding stops at padding, and a final group of
// fewer than four characters is dropped. When isText is set, CRLF pairs in
// the decoded data become LF.
func DecodeBase64(r io.Reader, w io.Writer, isText bool) error {
	br := bufio.NewReader(r)
	out := make([]byte, 0, 1024)
	cr := false

	put := func(c byte) {
		if cr && c != '\n' {
			out = append(out, '\r')
		}
		cr = false
		if isText && c == '\r' {
			cr = true
			return
		}
		out = append(out, c)
	}

	var group [4]byte
	for {
		n := 0
		for n < 4 {
			c, err := br.ReadByte()
			if errors.Is(err, io.EOF) {
				break
			} else if err != nil {
				return err
			}
			if base64Value[c] >= 0 || c == '=' {
				group[n] = c
				n++
			}
		}
		if n != 4 || group[0] == '=' || group[1] == '=' {
			break
		}

		c1, c2 := byte(base64Value[group[0]]), byte(base64Value[group[1]])
		put(c1<<2 | c2>>4)
		if group[2] == '=' {
			break
		}
		c3 := byte(base64Value[group[2]])
		put(c2<<4 | c3>>2)
		if group[3] == '=' {
			break
		}
		c4 := byte(base64Value[group[3]])
		put(c3<<6 | c4)

		if len(out) >= cap(out)-8 {
			if _, err := w.Write(out); err != nil {
				return err
			}
			out = out[:0]
		}
	}
	if cr {
		out = append(out, '\r')
	}

	if len(out) > 0 {
		if _, err := w.Write(out); err != nil {
			return err
		}
	}
	return nil
}

// newlineWriter breaks its output into lines of a fixed length.
type newlineWriter struct {
	every int
	acc   int
	lbr   []byte
	w     io.Writer
}

func (nw *newlineWriter) Write(b []byte) (int, error) {
	n := 0
	for len(b)+nw.acc > nw.every {
		ln, err := nw.w.Write(b[:nw.every-nw.acc])
		n += ln
		if err != nil {
			return n, err
		}

		if _, err = nw.w.Write(nw.lbr); err != nil {
			return n, err
		}

		b = b[nw.every-nw.acc:]
		nw.acc = 0
	}

	ln, err := nw.w.Write(b)
	n += ln
	nw.acc += ln
	return n, err
}

// Close ends the last line.
func (nw *newlineWriter) Close() error {
	if nw.acc == 0 {
		return nil
	}
	nw.acc = 0
	_, err := nw.w.Write(nw.lbr)
	return err
}

// NewBase64Encoder will translate all bytes written to the returned
// io.WriteCloser into base64 encoding, broken into lines of 76 characters,
// and write those to the given io.Writer.
func NewBase64Encoder(w io.Writer) io.WriteCloser {
	nw := &newlineWriter{
		every: defaultBase64LineLength,
		lbr:   defaultBase64LineBreak,
		w:     w,
	}
	return &writer{base64.NewEncoder(base64.StdEncoding, nw), nw}
}
