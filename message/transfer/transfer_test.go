package transfer_test

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mua/message/transfer"
)

func decode(t *testing.T, enc transfer.Encoding, isText bool, in string) string {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, transfer.Decode(enc, isText, strings.NewReader(in), buf))
	return buf.String()
}

func TestParseEncoding(t *testing.T) {
	t.Parallel()

	assert.Equal(t, transfer.SevenBit, transfer.ParseEncoding(""))
	assert.Equal(t, transfer.SevenBit, transfer.ParseEncoding("7BIT"))
	assert.Equal(t, transfer.EightBit, transfer.ParseEncoding(" 8bit "))
	assert.Equal(t, transfer.Binary, transfer.ParseEncoding("binary"))
	assert.Equal(t, transfer.QuotedPrintable, transfer.ParseEncoding("Quoted-Printable"))
	assert.Equal(t, transfer.Base64, transfer.ParseEncoding("base64 (comment)"))
	assert.Equal(t, transfer.UUEncode, transfer.ParseEncoding("x-uuencode"))
	assert.Equal(t, transfer.UUEncode, transfer.ParseEncoding("uuencode"))
	assert.Equal(t, transfer.Other, transfer.ParseEncoding("x-gzip64"))

	assert.Equal(t, "quoted-printable", transfer.QuotedPrintable.String())
	assert.Equal(t, "7bit", transfer.SevenBit.String())
	assert.True(t, transfer.Binary.IsIdentity())
	assert.False(t, transfer.Base64.IsIdentity())
}

func TestDecode_Other(t *testing.T) {
	t.Parallel()

	err := transfer.Decode(transfer.Other, false, strings.NewReader("x"), io.Discard)
	assert.ErrorIs(t, err, transfer.ErrUnknownEncoding)
}

func TestDecodeQuotedPrintable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"triple", "A=3DB", "A=B"},
		{"lowercase hex", "caf=c3=a9\n", "café\n"},
		{"soft break", "long line=\nwrapped\n", "long linewrapped\n"},
		{"soft break crlf", "long line=\r\nwrapped\r\n", "long linewrapped\n"},
		{"trailing space stripped", "trailing   \nnext\t\n", "trailing\nnext\n"},
		{"soft break after space", "soft =  \nnext\n", "soft next\n"},
		{"malformed kept", "50=% off =ZZ\n", "50=% off =ZZ\n"},
		{"encoded cr at end", "line=0D\n", "line\n"},
		{"no final newline", "end=", "end"},
		{"partial triple at end", "x=4", "x=4"},
		{"empty lines", "\n\n", "\n\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, decode(t, transfer.QuotedPrintable, true, tt.in))
		})
	}
}

func TestDecodeQuotedPrintable_LongLines(t *testing.T) {
	t.Parallel()

	// a triple straddling the chunk size must still decode
	in := strings.Repeat("a", 255) + "=3D" + strings.Repeat("b", 600) + "\n"
	want := strings.Repeat("a", 255) + "=" + strings.Repeat("b", 600) + "\n"
	assert.Equal(t, want, decode(t, transfer.QuotedPrintable, true, in))

	in = strings.Repeat("c", 254) + "=C3=A9" + "\n"
	want = strings.Repeat("c", 254) + "é\n"
	assert.Equal(t, want, decode(t, transfer.QuotedPrintable, true, in))
}

func TestDecodeQuotedPrintable_OneByteReader(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	r := iotest.OneByteReader(strings.NewReader("a=3Db=\nc\n"))
	require.NoError(t, transfer.DecodeQuotedPrintable(r, buf, true))
	assert.Equal(t, "a=bc\n", buf.String())
}

func TestDecodeBase64(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Hello, World!", decode(t, transfer.Base64, false, "SGVsbG8sIFdvcmxkIQ=="))
	assert.Equal(t, "Hello, World!", decode(t, transfer.Base64, false, "SGVs\r\nbG8s IFdv\tcmxk!!IQ==\r\n"))
	assert.Equal(t, "Hello", decode(t, transfer.Base64, false, "SGVsbG8="))
	assert.Equal(t, "Hel", decode(t, transfer.Base64, false, "SGVs"))

	// a short final group is dropped
	assert.Equal(t, "Hel", decode(t, transfer.Base64, false, "SGVsbG"))

	// nothing after padding is decoded
	assert.Equal(t, "Hello", decode(t, transfer.Base64, false, "SGVsbG8=SGVsbG8="))

	// text mode turns CRLF into LF, binary mode keeps it
	assert.Equal(t, "a\nb\r", decode(t, transfer.Base64, true, "YQ0KYg0="))
	assert.Equal(t, "a\r\nb\r", decode(t, transfer.Base64, false, "YQ0KYg0="))
	assert.Equal(t, "a\rb", decode(t, transfer.Base64, true, "YQ1i"))
}

func TestDecodeBase64_Large(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte{0, 1, 2, 3, 254, 255}, 2000)
	enc := &bytes.Buffer{}
	w := transfer.NewBase64Encoder(enc)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	for _, line := range strings.Split(strings.TrimRight(enc.String(), "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}

	out := &bytes.Buffer{}
	require.NoError(t, transfer.DecodeBase64(enc, out, false))
	assert.Equal(t, data, out.Bytes())
}

func TestDecodeUUEncode(t *testing.T) {
	t.Parallel()

	in := "junk before\nbegin 644 hello.txt\n.2&5L;&\\L(%=O<FQD(0H`\n`\nend\ntrailing junk\n"
	assert.Equal(t, "Hello, World!\n", decode(t, transfer.UUEncode, false, in))

	assert.Equal(t, "", decode(t, transfer.UUEncode, false, "no begin line here\n"))
}

func TestUUEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	data := []byte(strings.Repeat("The quick brown fox jumps over the lazy dog. ", 7) + "\x00\xff")
	enc := &bytes.Buffer{}
	w, err := transfer.NewEncoder(transfer.UUEncode, enc)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.True(t, strings.HasPrefix(enc.String(), "begin 644 -\n"))
	assert.True(t, strings.HasSuffix(enc.String(), "`\nend\n"))

	out := &bytes.Buffer{}
	require.NoError(t, transfer.DecodeUUEncode(enc, out, false))
	assert.Equal(t, data, out.Bytes())
}

func TestDecodeXBit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a\nb\n", decode(t, transfer.SevenBit, true, "a\r\nb\r\n"))
	assert.Equal(t, "a\rb\n", decode(t, transfer.EightBit, true, "a\rb\n"))
	assert.Equal(t, "a\r\nb\r\n", decode(t, transfer.Binary, false, "a\r\nb\r\n"))
}

func TestQuotedPrintable_RoundTrip(t *testing.T) {
	t.Parallel()

	text := "Voilà, un texte accentué = avec des signes égal\nqui dépasse " + strings.Repeat("largement ", 12) + "la limite.\n"
	enc := &bytes.Buffer{}
	w, err := transfer.NewEncoder(transfer.QuotedPrintable, enc)
	require.NoError(t, err)
	_, err = io.WriteString(w, text)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	for _, line := range strings.Split(enc.String(), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}

	out := &bytes.Buffer{}
	require.NoError(t, transfer.DecodeQuotedPrintable(enc, out, true))
	assert.Equal(t, text, out.String())
}
