package message

import (
	"bytes"
	"log/slog"

	"github.com/zostay/go-mua/internal/scanner"
)

// boundaryLine reports whether line is a boundary line for boundary, and if
// so whether it is the final one. Trailing whitespace after the boundary is
// ignored.
func boundaryLine(line []byte, boundary string) (isBoundary, final bool) {
	if len(line) < 2+len(boundary) || line[0] != '-' || line[1] != '-' {
		return false, false
	}
	if !bytes.HasPrefix(line[2:], []byte(boundary)) {
		return false, false
	}

	rest := bytes.TrimRight(line[2+len(boundary):], " \t\r\n")
	switch {
	case len(rest) == 0:
		return true, false
	case bytes.Equal(rest, []byte("--")):
		return true, true
	default:
		return false, false
	}
}

// parseMultipart splits the body of the multipart p into its parts using the
// given boundary and parses each of them. Text before the first boundary and
// after the final one is ignored.
//
// A part ends right before the boundary line that follows it, so the line
// break preceding the boundary belongs to the part. If the final boundary is
// missing, an unterminated last part runs to the end of the container.
func (pr *parser) parseMultipart(src []byte, p *Part, boundary string, depth int) []*Part {
	end := p.Offset + p.Length
	isDigest := p.Subtype == "digest"

	var (
		parts []*Part
		last  *Part
		final bool
	)

	sc := scanner.New(src, p.Offset, end)
	for {
		l, ok := sc.Scan()
		if !ok {
			break
		}

		isBoundary, isFinal := boundaryLine(sc.Bytes(l), boundary)
		if !isBoundary {
			continue
		}

		if last != nil {
			last.Length = l.Start - last.Offset
			if last.Length < 0 {
				last.Length = 0
			}
		}

		if isFinal {
			final = true
			break
		}

		// the sub-header may run past the container on broken input
		next := pr.readHeader(src, l.Next, int64(len(src)), isDigest)
		if next.Offset > end {
			pr.log.Debug("part starts beyond the end of its container",
				slog.Int64("offset", next.Offset),
				slog.Int64("end", end))
			break
		}

		parts = append(parts, next)
		last = next

		// skip the sub-header, it cannot hold a boundary
		sc = scanner.New(src, next.Offset, end)
	}

	if !final && last != nil && last.Length == 0 {
		pr.log.Debug("multipart without final boundary",
			slog.String("boundary", boundary),
			slog.Int64("offset", p.Offset))
		last.Length = end - last.Offset
		if last.Length < 0 {
			last.Length = 0
		}
		last.Degraded = true
	}

	for _, part := range parts {
		pr.parsePart(src, part, depth+1)
	}

	return parts
}
