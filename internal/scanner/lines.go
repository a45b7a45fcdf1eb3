// Package scanner walks the physical lines of an immutable byte buffer while
// keeping track of the byte offset of every line. The message parser needs
// those offsets to describe parts without copying them.
package scanner

import "bytes"

// Line describes one physical line of the buffer. Start is the offset of the
// first byte, End the offset after the last byte before the line terminator
// and Next the offset of the line that follows.
type Line struct {
	Start int64
	End   int64
	Next  int64
}

// Terminated reports whether the line ended with a line feed rather than at
// the end of the scanned range.
func (l Line) Terminated() bool {
	return l.Next > l.End
}

// Lines scans lines of src in the half open range [pos, end).
type Lines struct {
	src []byte
	pos int64
	end int64
}

// New returns a scanner over src[start:end]. The range is clamped to the
// buffer.
func New(src []byte, start, end int64) *Lines {
	if end > int64(len(src)) || end < 0 {
		end = int64(len(src))
	}
	if start < 0 {
		start = 0
	}
	if start > end {
		start = end
	}
	return &Lines{src: src, pos: start, end: end}
}

// Offset returns the offset of the next line to be scanned.
func (s *Lines) Offset() int64 {
	return s.pos
}

// Scan returns the next line. The returned End excludes the terminating LF
// and a CR immediately preceding it. It returns false when the range is
// exhausted.
func (s *Lines) Scan() (Line, bool) {
	if s.pos >= s.end {
		return Line{}, false
	}

	l := Line{Start: s.pos}
	i := bytes.IndexByte(s.src[s.pos:s.end], '\n')
	if i < 0 {
		l.End = s.end
		l.Next = s.end
	} else {
		l.End = s.pos + int64(i)
		l.Next = l.End + 1
	}

	if l.End > l.Start && s.src[l.End-1] == '\r' {
		l.End--
	}

	s.pos = l.Next
	return l, true
}

// Bytes returns the content of the line without its terminator.
func (s *Lines) Bytes(l Line) []byte {
	return s.src[l.Start:l.End]
}

// SplitLines breaks text into lines on LF, dropping CR before each LF. A
// final empty line after a trailing LF is not returned.
func SplitLines(text []byte) [][]byte {
	s := New(text, 0, int64(len(text)))
	out := make([][]byte, 0, bytes.Count(text, []byte{'\n'})+1)
	for {
		l, ok := s.Scan()
		if !ok {
			return out
		}
		out = append(out, s.Bytes(l))
	}
}
