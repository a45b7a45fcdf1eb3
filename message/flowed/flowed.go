package flowed

import (
	"strings"

	"github.com/zostay/go-mua/internal/scanner"
)

// DefaultWidth is the wrap width used when none is given.
const DefaultWidth = 78

// sigSep is the signature separator. It is never flowed.
const sigSep = "-- "

type reflower struct {
	width       int
	delsp       bool
	prefix      string
	spaceQuotes bool
	reply       bool
}

// Option modifies how Reflow writes its output lines.
type Option func(*reflower)

// WithPrefix writes prefix at the start of every output line. The prefix
// counts against the wrap width.
func WithPrefix(prefix string) Option {
	return func(r *reflower) { r.prefix = prefix }
}

// WithSpaceQuotes writes a space between the quote markers and the text of
// quoted lines.
func WithSpaceQuotes() Option {
	return func(r *reflower) { r.spaceQuotes = true }
}

// WithReplyQuoting quotes the text for a flowed reply. Every line gets one
// more level of quoting in place of the prefix.
func WithReplyQuoting() Option {
	return func(r *reflower) { r.reply = true }
}

// paragraph collects the logical text of consecutive lines sharing one quote
// depth. del marks the soft break spaces removed when delsp is in effect.
type paragraph struct {
	depth int
	text  []byte
	del   []bool
	hard  bool
}

func (p *paragraph) add(content string, delsp bool) {
	p.text = append(p.text, content...)
	for i := 0; i < len(content); i++ {
		p.del = append(p.del, delsp && i == len(content)-1)
	}
}

// kept returns the text without the deleted spaces.
func (p *paragraph) kept() []byte {
	b := make([]byte, 0, len(p.text))
	for i, c := range p.text {
		if !p.del[i] {
			b = append(b, c)
		}
	}
	return b
}

// split returns the quote depth of a line and the text after the quote
// markers with space stuffing removed.
func split(line string) (int, string) {
	depth := 0
	for depth < len(line) && line[depth] == '>' {
		depth++
	}
	content := line[depth:]
	if strings.HasPrefix(content, " ") {
		content = content[1:]
	}
	return depth, content
}

// Reflow decodes the flowed lines and wraps every paragraph again at width.
// Lines break only at spaces, a word longer than the width is left on a line
// of its own.
//
// Without delsp the space ending each soft line stays in the output, so the
// result is flowed text again and reflowing it at the same width changes
// nothing. With delsp the soft break spaces of the input are removed and the
// output lines carry no trailing break space.
func Reflow(lines []string, width int, delsp bool, opts ...Option) []string {
	if width <= 0 {
		width = DefaultWidth
	}
	r := &reflower{width: width, delsp: delsp}
	for _, opt := range opts {
		opt(r)
	}

	out := make([]string, 0, len(lines))
	var par *paragraph
	flush := func(hard bool) {
		if par == nil {
			return
		}
		par.hard = hard
		out = r.render(out, par)
		par = nil
	}

	for _, line := range lines {
		depth, content := split(line)
		if content == sigSep {
			flush(false)
			out = append(out, r.line(depth, content))
			continue
		}

		if par != nil && par.depth != depth {
			flush(false)
		}
		if par == nil {
			par = &paragraph{depth: depth}
		}

		soft := strings.HasSuffix(content, " ")
		par.add(content, soft && delsp)
		if !soft {
			flush(true)
		}
	}
	flush(false)

	return out
}

// avail is the room left for text on a line at the given depth.
func (r *reflower) avail(depth int) int {
	n := r.width - depth
	if r.reply {
		n--
	} else {
		n -= len(r.prefix)
	}
	if r.quoteSpace(depth) {
		n--
	}
	if n < 1 {
		n = 1
	}
	return n
}

// quoteSpace reports whether a space follows the quote markers of a line at
// the given depth.
func (r *reflower) quoteSpace(depth int) bool {
	return r.spaceQuotes && (depth > 0 || r.reply)
}

// room is the room left for a line starting with text. A line that gets
// space stuffed has one column less.
func (r *reflower) room(depth int, text []byte) int {
	n := r.avail(depth)
	if !r.quoteSpace(depth) && needsStuffing(string(text[:min(len(text), 5)])) && n > 1 {
		n--
	}
	return n
}

// render wraps a paragraph and appends the lines to out.
func (r *reflower) render(out []string, p *paragraph) []string {
	text := p.kept()
	if len(text) == 0 {
		return append(out, r.line(p.depth, ""))
	}

	last := ""
	for s := 0; s < len(text); {
		avail := r.room(p.depth, text[s:])
		if len(text)-s <= avail {
			last = string(text[s:])
			if r.delsp {
				last = strings.TrimRight(last, " ")
			}
			out = append(out, r.line(p.depth, last))
			break
		}

		b := -1
		for i := s + 1; i < len(text) && i-s+1 <= avail; i++ {
			if text[i] == ' ' {
				b = i
			}
		}
		if b < 0 {
			b = s + 1
			for b < len(text) && text[b] != ' ' {
				b++
			}
		}

		// one space ends a soft line, any more start the next one
		e := b
		if e < len(text) && text[e] == ' ' {
			e++
		}

		if r.delsp {
			for e < len(text) && text[e] == ' ' {
				e++
			}
			last = strings.TrimRight(string(text[s:b]), " ")
		} else {
			last = string(text[s:e])
		}
		out = append(out, r.line(p.depth, last))
		s = e
	}

	// a trailing space would make the next paragraph join this one
	if p.hard && strings.HasSuffix(last, " ") {
		out = append(out, r.line(p.depth, ""))
	}

	return out
}

func needsStuffing(content string) bool {
	return strings.HasPrefix(content, " ") ||
		strings.HasPrefix(content, ">") ||
		strings.HasPrefix(content, "From ")
}

// line formats one output line with its prefix and quote markers.
func (r *reflower) line(depth int, content string) string {
	var sb strings.Builder
	if r.reply {
		depth++
	} else {
		sb.WriteString(r.prefix)
	}
	for i := 0; i < depth; i++ {
		sb.WriteByte('>')
	}
	if (r.spaceQuotes && depth > 0) || needsStuffing(content) {
		sb.WriteByte(' ')
	}
	sb.WriteString(content)
	return sb.String()
}

// ReflowForDisplay reflows lines for reading at the given width.
func ReflowForDisplay(lines []string, width int) []string {
	return Reflow(lines, width, false)
}

// ReflowText reflows a whole body. Lines may end with LF or CRLF, the result
// uses LF.
func ReflowText(text string, width int, delsp bool, opts ...Option) string {
	in := scanner.SplitLines([]byte(text))
	lines := make([]string, len(in))
	for i, l := range in {
		lines[i] = string(l)
	}

	out := Reflow(lines, width, delsp, opts...)
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}

// UnstuffForStorage removes the stuffed space from the start of each line.
func UnstuffForStorage(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimPrefix(l, " ")
	}
	return out
}

// Stuff adds a space to lines starting with a space or "From " so they
// survive transport as flowed text. Lines starting with '>' are quotes and
// are left alone.
func Stuff(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if strings.HasPrefix(l, " ") || strings.HasPrefix(l, "From ") {
			l = " " + l
		}
		out[i] = l
	}
	return out
}
