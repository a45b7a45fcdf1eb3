package param_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zostay/go-mua/message/header/param"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want param.List
	}{
		{"empty", "", nil},
		{"simple", `; charset=us-ascii`, param.List{{"charset", "us-ascii"}}},
		{"lowercase attribute", `; CharSet=UTF-8`, param.List{{"charset", "UTF-8"}}},
		{"quoted", `; name="hello world.txt"; size=12`, param.List{{"name", "hello world.txt"}, {"size", "12"}}},
		{"escaped", `; name="a \"b\" \\c"`, param.List{{"name", `a "b" \c`}}},
		{"whitespace", " ;  a = b ;\t c=d  ", param.List{{"a", "b"}, {"c", "d"}}},
		{"empty segments", ";;a=b;;;c=d;", param.List{{"a", "b"}, {"c", "d"}}},
		{"no value skipped", "; junk; a=b", param.List{{"a", "b"}}},
		{"trailing junk", `; a=b junk; c="d" more`, param.List{{"a", "b"}, {"c", "d"}}},
		{"missing attribute", `; ="x"; a=b`, param.List{{"a", "b"}}},
		{"unterminated quote", `; a=b; c="oops`, param.List{{"a", "b"}}},
		{"no semicolon start", `boundary=abc`, param.List{{"boundary", "abc"}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, param.Parse(tt.raw))
		})
	}
}

func TestParse_Continuations(t *testing.T) {
	t.Parallel()

	l := param.Parse(`; attr*0=foo; attr*1=bar`)
	assert.Equal(t, param.List{{"attr", "foobar"}}, l)

	l = param.Parse(`; attr*1=bar; attr*0=foo`)
	assert.Equal(t, param.List{{"attr", "foobar"}}, l)

	l = param.Parse(`; attr*0=foo; other=x`)
	assert.Equal(t, param.List{{"other", "x"}, {"attr", "foo"}}, l)

	// a gap drops the attribute entirely
	l = param.Parse(`; attr*0=foo; attr*2=baz; other=x`)
	assert.Equal(t, param.List{{"other", "x"}}, l)
	assert.False(t, l.Has("attr"))

	// missing the first fragment is a gap too
	l = param.Parse(`; attr*1=bar`)
	assert.Empty(t, l)

	// leading zeros are not valid indexes
	l = param.Parse(`; attr*0=a; attr*01=b`)
	assert.Equal(t, param.List{{"attr", "a"}}, l)
}

func TestParse_ContinuationsSortedAfterPlain(t *testing.T) {
	t.Parallel()

	l := param.Parse(`; zed*0=z; zed*1=z; b=1; alpha*0=a; c=2`)
	assert.Equal(t, param.List{
		{"b", "1"},
		{"c", "2"},
		{"alpha", "a"},
		{"zed", "zz"},
	}, l)
}

func TestParse_PlainFallback(t *testing.T) {
	t.Parallel()

	l := param.Parse(`; a=1; a*0=x; a*1=y; b=2`)
	assert.Equal(t, param.List{{"b", "2"}, {"a", "xy"}}, l)

	l = param.Parse(`; filename="cafe.txt"; filename*=iso-8859-1''caf%E9.txt`)
	assert.Equal(t, param.List{{"filename", "café.txt"}}, l)

	// a dropped continuation leaves the fallback in place
	l = param.Parse(`; a=1; a*0=x; a*2=z`)
	assert.Equal(t, param.List{{"a", "1"}}, l)
}

func TestParse_Extended(t *testing.T) {
	t.Parallel()

	l := param.Parse(`; title*=us-ascii'en-us'This%20is%20%2A%2A%2Afun%2A%2A%2A`)
	assert.Equal(t, "This is ***fun***", l.Get("title"))

	l = param.Parse(`; title*0*=us-ascii'en'This%20is%20even%20more%20; title*1*=%2A%2A%2Afun%2A%2A%2A%20; title*2="isn't it!"`)
	assert.Equal(t, "This is even more ***fun*** isn't it!", l.Get("title"))

	l = param.Parse(`; filename*=iso-8859-1''caf%E9.txt`)
	assert.Equal(t, "café.txt", l.Get("filename"))

	l = param.Parse(`; filename*0*=utf-8''%E2%98; filename*1*=%83.txt`)
	assert.Equal(t, "☃.txt", l.Get("filename"))

	// unknown charsets leave the bytes as they are
	l = param.Parse(`; filename*=x-bogus''a%41`)
	assert.Equal(t, "aA", l.Get("filename"))

	// malformed percent sequences are kept
	l = param.Parse(`; filename*=utf-8''100%`)
	assert.Equal(t, "100%", l.Get("filename"))
}

func TestParse_WordDecoder(t *testing.T) {
	t.Parallel()

	decode := func(s string) string { return strings.ReplaceAll(s, "=?x?Q?hi?=", "hi") }
	l := param.Parse(`; name="=?x?Q?hi?=.txt"`, param.WithWordDecoder(decode))
	assert.Equal(t, "hi.txt", l.Get("name"))

	l = param.Parse(`; name="=?x?Q?hi?=.txt"`)
	assert.Equal(t, "=?x?Q?hi?=.txt", l.Get("name"))
}

func TestParse_AssumedCharset(t *testing.T) {
	t.Parallel()

	l := param.Parse("; name=\"caf\xe9\"", param.WithAssumedCharset("iso-8859-1"))
	assert.Equal(t, "café", l.Get("name"))

	l = param.Parse("; name=\"café\"", param.WithAssumedCharset("iso-8859-1"))
	assert.Equal(t, "café", l.Get("name"))

	// in ISO-2022-JP state a quote byte belongs to a character
	l = param.Parse("; name=\"\x1b$B\"\x1b(B\"", param.WithAssumedCharset("iso-2022-jp"))
	assert.True(t, l.Has("name"))
}

func TestParse_Logs(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	h := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	param.Parse(`; attr*0=a; attr*5=b; junk`, param.WithLogger(slog.New(h)))

	assert.Contains(t, buf.String(), "gaps")
	assert.Contains(t, buf.String(), "without value")
}

func TestList(t *testing.T) {
	t.Parallel()

	l := param.List{{"charset", "utf-8"}, {"format", "flowed"}}
	assert.Equal(t, "utf-8", l.Get("CHARSET"))
	assert.True(t, l.Has("format"))
	assert.False(t, l.Has("delsp"))

	c := l.Clone()
	c = c.Set("delsp", "yes")
	c = c.Set("charset", "us-ascii")
	assert.Equal(t, "utf-8", l.Get("charset"))
	assert.Equal(t, "us-ascii", c.Get("charset"))
	assert.Equal(t, "yes", c.Get("delsp"))

	c = c.Delete("format")
	assert.False(t, c.Has("format"))
	assert.Equal(t, map[string]string{"charset": "us-ascii", "delsp": "yes"}, c.Map())
}

func TestFormatParam(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"charset=utf-8"}, param.FormatParam("charset", "utf-8"))
	assert.Equal(t, []string{`name="a b.txt"`}, param.FormatParam("name", "a b.txt"))
	assert.Equal(t, []string{`name="say \"hi\""`}, param.FormatParam("name", `say "hi"`))
	assert.Equal(t, []string{"filename*=utf-8''caf%C3%A9.txt"}, param.FormatParam("filename", "café.txt"))

	long := strings.Repeat("é", 40)
	parts := param.FormatParam("filename", long)
	assert.Greater(t, len(parts), 1)
	assert.True(t, strings.HasPrefix(parts[0], "filename*0*=utf-8''"))
	assert.True(t, strings.HasPrefix(parts[1], "filename*1*=%"))

	// what we format, we parse back
	back := param.Parse(strings.Join(parts, "; "))
	assert.Equal(t, long, back.Get("filename"))
}

func TestValue(t *testing.T) {
	t.Parallel()

	mt := param.ParseValue("Text/Plain; charset=UTF-8; format=flowed")
	assert.Equal(t, "text/plain", mt.MediaType())
	assert.Equal(t, "text", mt.Type())
	assert.Equal(t, "plain", mt.Subtype())
	assert.Equal(t, "UTF-8", mt.Charset())
	assert.Equal(t, "flowed", mt.Parameter("format"))
	assert.Equal(t, "text/plain; charset=UTF-8; format=flowed", mt.String())

	mt = param.ParseValue("text")
	assert.Equal(t, "text", mt.Type())
	assert.Equal(t, "", mt.Subtype())

	d := param.ParseValue(`attachment; filename="report.pdf"`)
	assert.Equal(t, "attachment", d.Disposition())
	assert.Equal(t, "report.pdf", d.Filename())

	mp := param.NewWithParams("multipart/mixed", param.List{{"boundary", "abc"}})
	assert.Equal(t, "abc", mp.Boundary())
	assert.Equal(t, "multipart/mixed", param.New("multipart/mixed").MediaType())
}

func TestModify(t *testing.T) {
	t.Parallel()

	v := param.ParseValue("multipart/mixed; boundary=abc123; charset=latin1")
	nv := param.Modify(v,
		param.Change("multipart/alternative"),
		param.Set("charset", "utf-8"),
		param.Delete("boundary"),
	)

	assert.Equal(t, "multipart/mixed; boundary=abc123; charset=latin1", v.String())
	assert.Equal(t, "multipart/alternative; charset=utf-8", nv.String())
}
