package transfer

import (
	"io"

	"github.com/zostay/go-mua/charset"
)

// BurstSize is the number of decoded bytes a Sink collects before passing them
// through charset conversion.
const BurstSize = 2000

// Sink receives decoded bytes. It converts them from one charset to another
// and writes them to the output with a prefix at the start of every line.
// Close must be called to flush anything still buffered, including multibyte
// sequences left incomplete by the last write.
type Sink struct {
	buf     []byte
	conv    io.WriteCloser
	prefix  *prefixWriter
	convErr error
	closed  bool
	written int64
}

// NewSink returns a Sink writing to w. When from and to name different known
// charsets, the data is converted. If the conversion cannot be set up, the
// bytes are written unconverted and ConvertError reports why. The prefix is
// written at the start of each line, it may be empty.
func NewSink(w io.Writer, from, to, prefix string) *Sink {
	s := &Sink{
		buf:    make([]byte, 0, BurstSize),
		prefix: &prefixWriter{w: w, prefix: []byte(prefix), bol: true},
	}

	var out io.Writer = s.prefix
	if prefix == "" {
		out = w
	}

	s.conv = nopCloser{out}
	if from != "" && to != "" {
		conv, err := charset.NewWriter(out, from, to)
		if err != nil {
			s.convErr = err
		} else {
			s.conv = conv
		}
	}
	return s
}

// ConvertError returns the reason the Sink is not converting, if any.
func (s *Sink) ConvertError() error {
	return s.convErr
}

// Written returns the number of decoded bytes received.
func (s *Sink) Written() int64 {
	return s.written
}

// Write buffers p, flushing whole bursts through the converter.
func (s *Sink) Write(p []byte) (int, error) {
	n := len(p)
	s.written += int64(n)
	for len(p) > 0 {
		room := BurstSize - len(s.buf)
		if room > len(p) {
			room = len(p)
		}
		s.buf = append(s.buf, p[:room]...)
		p = p[room:]
		if len(s.buf) == BurstSize {
			if err := s.flush(); err != nil {
				return n - len(p), err
			}
		}
	}
	return n, nil
}

func (s *Sink) flush() error {
	if len(s.buf) == 0 {
		return nil
	}
	_, err := s.conv.Write(s.buf)
	s.buf = s.buf[:0]
	return err
}

// Close flushes the buffer and the converter.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.flush(); err != nil {
		return err
	}
	return s.conv.Close()
}

// prefixWriter writes prefix before the first byte of every line.
type prefixWriter struct {
	w      io.Writer
	prefix []byte
	bol    bool
}

func (pw *prefixWriter) Write(p []byte) (int, error) {
	n := 0
	for len(p) > 0 {
		if pw.bol {
			if _, err := pw.w.Write(pw.prefix); err != nil {
				return n, err
			}
			pw.bol = false
		}

		i := 0
		for i < len(p) && p[i] != '\n' {
			i++
		}
		if i < len(p) {
			i++
			pw.bol = true
		}

		m, err := pw.w.Write(p[:i])
		n += m
		if err != nil {
			return n, err
		}
		p = p[i:]
	}
	return n, nil
}

// NewPrefixWriter returns a writer inserting prefix at the start of every
// line written to w.
func NewPrefixWriter(w io.Writer, prefix string) io.Writer {
	return &prefixWriter{w: w, prefix: []byte(prefix), bol: true}
}
