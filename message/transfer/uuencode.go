package transfer

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// uuLineLength is the number of bytes encoded on each line by NewUUEncoder.
const uuLineLength = 45

func uuDecodeByte(c byte) byte { return (c - ' ') & 0x3f }

func uuEncodeByte(c byte) byte {
	if c == 0 {
		return '`'
	}
	return c + ' '
}

// DecodeUUEncode decodes x-uuencode input. Lines before the "begin" line are
// skipped and decoding stops at the "end" line. The first character of each
// line gives the number of bytes it carries.
func DecodeUUEncode(r io.Reader, w io.Writer, _ bool) error {
	br := bufio.NewReader(r)

	readLine := func() ([]byte, bool, error) {
		line, err := br.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			return line, len(line) > 0, nil
		}
		return line, err == nil, err
	}

	for {
		line, ok, err := readLine()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if bytes.HasPrefix(line, []byte("begin")) && len(line) > 5 && isQPSpace(line[5]) {
			break
		}
	}

	out := make([]byte, 0, 1024)
	for {
		line, ok, err := readLine()
		if err != nil {
			return err
		}
		if !ok || bytes.HasPrefix(line, []byte("end")) {
			break
		}
		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			continue
		}

		n := int(uuDecodeByte(line[0]))
		p := line[1:]
		for c := 0; c < n && len(p) >= 2; {
			var q [4]byte
			copy(q[:], p)
			a, b, cc, d := uuDecodeByte(q[0]), uuDecodeByte(q[1]), uuDecodeByte(q[2]), uuDecodeByte(q[3])

			out = append(out, a<<2|b>>4)
			c++
			if c < n && len(p) >= 3 {
				out = append(out, b<<4|cc>>2)
				c++
			}
			if c < n && len(p) >= 4 {
				out = append(out, cc<<6|d)
				c++
			}
			if len(p) < 4 {
				break
			}
			p = p[4:]
		}

		if len(out) >= 512 {
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

type uuWriter struct {
	w       io.Writer
	buf     []byte
	started bool
}

// NewUUEncoder returns a writer producing x-uuencode output, begin and end
// lines included. The file is named "-" with mode 644.
func NewUUEncoder(w io.Writer) io.WriteCloser {
	return &uuWriter{w: w}
}

func (u *uuWriter) Write(b []byte) (int, error) {
	if !u.started {
		if _, err := io.WriteString(u.w, "begin 644 -\n"); err != nil {
			return 0, err
		}
		u.started = true
	}
	u.buf = append(u.buf, b...)
	for len(u.buf) >= uuLineLength {
		if err := u.line(u.buf[:uuLineLength]); err != nil {
			return 0, err
		}
		u.buf = u.buf[uuLineLength:]
	}
	return len(b), nil
}

func (u *uuWriter) line(b []byte) error {
	out := make([]byte, 0, 2+(len(b)+2)/3*4)
	out = append(out, uuEncodeByte(byte(len(b))))
	for i := 0; i < len(b); i += 3 {
		var g [3]byte
		copy(g[:], b[i:])
		out = append(out,
			uuEncodeByte(g[0]>>2),
			uuEncodeByte((g[0]<<4|g[1]>>4)&0x3f),
			uuEncodeByte((g[1]<<2|g[2]>>6)&0x3f),
			uuEncodeByte(g[2]&0x3f),
		)
	}
	out = append(out, '\n')
	_, err := u.w.Write(out)
	return err
}

// Close writes the last partial line and the end line.
func (u *uuWriter) Close() error {
	if !u.started {
		if _, err := io.WriteString(u.w, "begin 644 -\n"); err != nil {
			return err
		}
	}
	if len(u.buf) > 0 {
		if err := u.line(u.buf); err != nil {
			return err
		}
		u.buf = nil
	}
	_, err := io.WriteString(u.w, "`\nend\n")
	return err
}
