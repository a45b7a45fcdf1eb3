package message_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mua/message"
	"github.com/zostay/go-mua/message/transfer"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	src, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return src
}

func TestParse_Multipart(t *testing.T) {
	t.Parallel()

	src := []byte("Content-Type: multipart/mixed; boundary=XYZ\r\n\r\n" +
		"--XYZ\r\nContent-Type: text/plain\r\n\r\nA\r\n" +
		"--XYZ\r\nContent-Type: text/plain\r\n\r\nB\r\n" +
		"--XYZ--\r\n")

	root, err := message.Parse(src, false)
	require.NoError(t, err)

	assert.Equal(t, message.Multipart, root.Type)
	assert.Equal(t, "mixed", root.Subtype)
	require.Len(t, root.Parts, 2)
	assert.Equal(t, "A\r\n", string(root.Parts[0].Body(src)))
	assert.Equal(t, "B\r\n", string(root.Parts[1].Body(src)))
	assert.Equal(t, "Content-Type: text/plain\r\n\r\nB\r\n", string(root.Parts[1].Raw(src)))
	assert.False(t, root.Degraded)
	for _, p := range root.Parts {
		assert.Equal(t, "text/plain", p.MediaType())
		assert.Equal(t, "us-ascii", p.Charset())
		assert.Equal(t, transfer.SevenBit, p.Encoding)
		assert.False(t, p.Degraded)
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	_, err := message.Parse(nil, false)
	assert.ErrorIs(t, err, message.ErrEmptyMessage)

}

func TestParse_NoHeader(t *testing.T) {
	t.Parallel()

	src := []byte("\r\nno header here\r\n")
	root, err := message.Parse(src, false)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", root.MediaType())
	assert.Equal(t, 0, root.Header.Len())
	assert.Equal(t, "no header here\r\n", string(root.Body(src)))
	assert.False(t, root.Degraded)

	src = []byte("just some text\nwithout fields\n")
	root, err = message.Parse(src, false)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", root.MediaType())
	assert.Equal(t, "us-ascii", root.Charset())
	assert.Equal(t, string(src), string(root.Body(src)))
	assert.True(t, root.Degraded)
}

func TestParse_Nested(t *testing.T) {
	t.Parallel()

	src := readFixture(t, "nested.eml")

	root, err := message.Parse(src, false)
	require.NoError(t, err)

	require.NotNil(t, root.Envelope)
	assert.Equal(t, "Résumé attached", root.Envelope.Subject)
	assert.Equal(t, "<nested@example.com>", root.Envelope.MessageID)
	require.Len(t, root.Envelope.To, 1)
	assert.Equal(t, "steve@example.com", root.Envelope.To[0].Address())

	require.Len(t, root.Parts, 3)

	alt := root.Parts[0]
	assert.Equal(t, "multipart/alternative", alt.MediaType())
	require.Len(t, alt.Parts, 2)

	plain := alt.Parts[0]
	assert.Equal(t, "text/plain", plain.MediaType())
	assert.Equal(t, "iso-8859-1", plain.Charset())
	assert.Equal(t, transfer.QuotedPrintable, plain.Encoding)
	assert.True(t, plain.IsFlowed())
	assert.False(t, plain.DelSp())
	assert.Equal(t, "Bye\n\n", string(plain.Body(src)[len(plain.Body(src))-5:]))

	html := alt.Parts[1]
	assert.Equal(t, "text/html", html.MediaType())
	assert.Equal(t, "<p>Café time</p>\n\n", string(html.Body(src)))

	att := root.Parts[1]
	assert.Equal(t, "application/octet-stream", att.MediaType())
	assert.Equal(t, message.Attachment, att.Disposition)
	assert.Equal(t, "résumé.pdf", att.Filename)
	assert.Equal(t, transfer.Base64, att.Encoding)
	assert.Equal(t, "SGVsbG8sIFdvcmxkIQ==\n\n", string(att.Body(src)))

	fwd := root.Parts[2]
	assert.Equal(t, "message/rfc822", fwd.MediaType())
	assert.Equal(t, "forwarded message", fwd.Description)
	require.Len(t, fwd.Parts, 1)

	inner := fwd.Parts[0]
	require.NotNil(t, inner.Envelope)
	assert.Equal(t, "Inner note", inner.Envelope.Subject)
	assert.Equal(t, "Forwarded body.\n\n", string(inner.Body(src)))
	assert.Equal(t, fwd.Offset, inner.HeaderOffset)
	assert.Equal(t, fwd.Length-(inner.Offset-fwd.Offset), inner.Length)
}

func TestParse_MaxDepth(t *testing.T) {
	t.Parallel()

	src := readFixture(t, "nested.eml")

	root, err := message.Parse(src, false, message.WithMaxDepth(1))
	require.NoError(t, err)
	require.Len(t, root.Parts, 3)

	alt := root.Parts[0]
	assert.True(t, alt.Degraded)
	assert.Empty(t, alt.Parts)
	assert.Equal(t, "multipart/alternative", alt.MediaType())

	fwd := root.Parts[2]
	assert.True(t, fwd.Degraded)
	assert.Empty(t, fwd.Parts)

	root, err = message.Parse(src, false, message.WithMaxDepth(0))
	require.NoError(t, err)
	assert.True(t, root.Degraded)
	assert.Empty(t, root.Parts)

	root, err = message.Parse(src, false, message.WithUnlimitedRecursion())
	require.NoError(t, err)
	assert.Len(t, root.Parts[0].Parts, 2)
}

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		mediaType   string
		isDigest    bool
	}{
		{"missing", "", "text/plain", false},
		{"missing in digest", "", "message/rfc822", true},
		{"text", "Content-Type: text\n", "text/plain", false},
		{"audio", "Content-Type: audio\n", "audio/basic", false},
		{"message", "Content-Type: message\n", "message/rfc822", false},
		{"image", "Content-Type: image\n", "image/x-unknown", false},
		{"bare word", "Content-Type: foo\n", "application/x-foo", false},
		{"upper case", "Content-Type: TEXT/HTML\n", "text/html", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := []byte("Subject: defaults\n" + tt.contentType + "\nbody\n")
			root, err := message.Parse(src, tt.isDigest)
			require.NoError(t, err)
			assert.Equal(t, tt.mediaType, root.MediaType())
		})
	}
}

func TestParse_AssumedCharset(t *testing.T) {
	t.Parallel()

	src := []byte("Subject: x\n\ncaf\xe9\n")

	root, err := message.Parse(src, false)
	require.NoError(t, err)
	assert.Equal(t, "us-ascii", root.Charset())

	root, err = message.Parse(src, false, message.WithAssumedCharset("iso-8859-1"))
	require.NoError(t, err)
	assert.Equal(t, "iso-8859-1", root.Charset())

	root, err = message.Parse([]byte("Subject: x\n\nplain\n"), false, message.WithCharsetDetection())
	require.NoError(t, err)
	assert.Empty(t, root.FileCharset)
}

func TestParse_CharsetDetection(t *testing.T) {
	t.Parallel()

	src := []byte("Subject: x\n\nLes \xe9l\xe8ves ont \xe9t\xe9 tr\xe8s s\xe9rieux cette " +
		"ann\xe9e, ils ont travaill\xe9 avec beaucoup de pers\xe9v\xe9rance.\n")

	root, err := message.Parse(src, false, message.WithCharsetDetection())
	require.NoError(t, err)
	assert.NotEmpty(t, root.FileCharset)
	assert.NotEqual(t, "utf-8", root.FileCharset)
	assert.Equal(t, root.FileCharset, root.Charset())
}

func TestParse_Digest(t *testing.T) {
	t.Parallel()

	src := []byte("Content-Type: multipart/digest; boundary=d\n\n" +
		"--d\n\nSubject: first\n\none\n" +
		"--d\nContent-Type: text/plain\n\ntwo\n" +
		"--d--\n")

	root, err := message.Parse(src, false)
	require.NoError(t, err)
	require.Len(t, root.Parts, 2)

	first := root.Parts[0]
	assert.Equal(t, "message/rfc822", first.MediaType())
	require.Len(t, first.Parts, 1)
	assert.Equal(t, "first", first.Parts[0].Envelope.Subject)
	assert.Equal(t, "one\n", string(first.Parts[0].Body(src)))

	assert.Equal(t, "text/plain", root.Parts[1].MediaType())
}

func TestParse_Degraded(t *testing.T) {
	t.Parallel()

	t.Run("no boundary parameter", func(t *testing.T) {
		t.Parallel()

		src := []byte("Content-Type: multipart/mixed\n\nstuff\n")
		root, err := message.Parse(src, false)
		require.NoError(t, err)
		assert.Equal(t, "text/plain", root.MediaType())
		assert.True(t, root.Degraded)
		assert.Empty(t, root.Parts)
		assert.Equal(t, "stuff\n", string(root.Body(src)))
	})

	t.Run("no parts", func(t *testing.T) {
		t.Parallel()

		src := []byte("Content-Type: multipart/mixed; boundary=b\n\nno boundary anywhere\n")
		root, err := message.Parse(src, false)
		require.NoError(t, err)
		assert.Equal(t, "text/plain", root.MediaType())
		assert.True(t, root.Degraded)
	})

	t.Run("missing final boundary", func(t *testing.T) {
		t.Parallel()

		src := []byte("Content-Type: multipart/mixed; boundary=b\n\n" +
			"--b\n\nfirst\n--b\n\nsecond\nand the rest")
		root, err := message.Parse(src, false)
		require.NoError(t, err)
		require.Len(t, root.Parts, 2)
		assert.Equal(t, "first\n", string(root.Parts[0].Body(src)))
		assert.Equal(t, "second\nand the rest", string(root.Parts[1].Body(src)))
		assert.True(t, root.Parts[1].Degraded)
	})

	t.Run("boundary lookalikes", func(t *testing.T) {
		t.Parallel()

		src := []byte("Content-Type: multipart/mixed; boundary=b\n\n" +
			"--b \t\n\n--bb\n--b-x\n--b--\n")
		root, err := message.Parse(src, false)
		require.NoError(t, err)
		require.Len(t, root.Parts, 1)
		assert.Equal(t, "--bb\n--b-x\n", string(root.Parts[0].Body(src)))
	})

	t.Run("header past the end", func(t *testing.T) {
		t.Parallel()

		src := []byte("Content-Type: multipart/mixed; boundary=o\n\n" +
			"--o\nContent-Type: multipart/mixed; boundary=b\n\n" +
			"--b\nContent-Type: text/plain\n" +
			"--o\nContent-Type: text/plain\n\nlater\n" +
			"--o--\n")
		root, err := message.Parse(src, false)
		require.NoError(t, err)
		require.Len(t, root.Parts, 2)

		inner := root.Parts[0]
		assert.Equal(t, "text/plain", inner.MediaType())
		assert.True(t, inner.Degraded)
		assert.Empty(t, inner.Parts)
		assert.Equal(t, "later\n", string(root.Parts[1].Body(src)))
	})
}

func TestParse_ExternalBody(t *testing.T) {
	t.Parallel()

	src := []byte("Content-Type: message/external-body; access-type=URL;\n" +
		" URL=\"http://example.com/file\"\n\n" +
		"Content-Type: text/plain\nContent-ID: <file@example.com>\n\n" +
		"ignored\n")

	root, err := message.Parse(src, false)
	require.NoError(t, err)
	assert.Equal(t, "URL", root.Params.Get("access-type"))
	require.Len(t, root.Parts, 1)

	ext := root.Parts[0]
	assert.Equal(t, "text/plain", ext.MediaType())
	assert.Equal(t, "<file@example.com>", ext.ID)
	assert.Equal(t, int64(0), ext.Length)
	assert.Empty(t, ext.Parts)
}

func TestParse_SunAttachment(t *testing.T) {
	t.Parallel()

	src := []byte("Content-Type: x-sun-attachment\n\n" +
		"----------\nContent-Type: text\n\nsun text\n")

	root, err := message.Parse(src, false)
	require.NoError(t, err)
	assert.Equal(t, "multipart/x-sun-attachment", root.MediaType())
	require.Len(t, root.Parts, 1)
	assert.Equal(t, "sun text\n", string(root.Parts[0].Body(src)))
	assert.True(t, root.Parts[0].Degraded)
}

func TestParse_Disposition(t *testing.T) {
	t.Parallel()

	src := []byte("Content-Type: image/png; name=by-name.png\n" +
		"Content-Disposition: inline\n\nxx\n")
	root, err := message.Parse(src, false)
	require.NoError(t, err)
	assert.Equal(t, message.Inline, root.Disposition)
	assert.Equal(t, "by-name.png", root.Filename)

	src = []byte("Content-Type: application/pdf\n" +
		"Content-Disposition: form-data; name=field; filename=upload.pdf\n\nxx\n")
	root, err = message.Parse(src, false)
	require.NoError(t, err)
	assert.Equal(t, message.FormData, root.Disposition)
	assert.Equal(t, "upload.pdf", root.Filename)
	assert.Equal(t, "field", root.DispositionParams.Get("name"))
}

func TestParse_RFC2047Params(t *testing.T) {
	t.Parallel()

	src := []byte("Content-Type: application/pdf\n" +
		"Content-Disposition: attachment; filename=\"=?utf-8?Q?r=C3=A9sum=C3=A9.pdf?=\"\n\nxx\n")

	root, err := message.Parse(src, false)
	require.NoError(t, err)
	assert.Equal(t, "=?utf-8?Q?r=C3=A9sum=C3=A9.pdf?=", root.Filename)

	root, err = message.Parse(src, false, message.WithRFC2047Params())
	require.NoError(t, err)
	assert.Equal(t, "résumé.pdf", root.Filename)
}

func TestType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "multipart", message.Multipart.String())
	assert.Equal(t, "x-unknown", message.Other.String())
	assert.Equal(t, "x-unknown", message.Type(99).String())
	assert.Equal(t, message.Multipart, message.ParseType("x-sun-attachment"))
	assert.Equal(t, message.Model, message.ParseType("model"))
	assert.Equal(t, "form-data", message.FormData.String())
	assert.Equal(t, message.Attachment, message.ParseDisposition("attachment"))
	assert.Equal(t, message.Inline, message.ParseDisposition("bogus"))
}
