package charset_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mua/charset"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"utf-8", "UTF8", "us-ascii", "ISO-8859-1", "latin1", "windows-1252", "koi8-r", "Shift_JIS", "iso-2022-jp", "gb2312"} {
		enc, err := charset.Lookup(name)
		assert.NoError(t, err, name)
		assert.NotNil(t, enc, name)
	}

	_, err := charset.Lookup("x-no-such-charset")
	assert.ErrorIs(t, err, charset.ErrUnknownCharset)

	_, err = charset.Lookup("unknown-8bit")
	assert.ErrorIs(t, err, charset.ErrUnknownCharset)
}

func TestCanonical(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "utf-8", charset.Canonical("UTF8"))
	assert.Equal(t, "us-ascii", charset.Canonical("ANSI_X3.4-1968"))
	assert.Equal(t, "iso-8859-1", charset.Canonical("latin1"))
	assert.True(t, charset.Same("ISO_8859-1", "iso-8859-1"))
	assert.False(t, charset.Same("iso-8859-1", "iso-8859-2"))
}

func TestConvert(t *testing.T) {
	t.Parallel()

	out, err := charset.Convert([]byte("caf\xe9"), "iso-8859-1", "utf-8")
	require.NoError(t, err)
	assert.Equal(t, "café", string(out))

	out, err = charset.Convert([]byte("café"), "utf-8", "iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "caf\xe9", string(out))

	out, err = charset.Convert([]byte("naïve ☃"), "utf-8", "us-ascii")
	require.NoError(t, err)
	assert.Equal(t, "na?ve ?", string(out))

	out, err = charset.Convert([]byte("abc\xff"), "bogus", "utf-8")
	assert.ErrorIs(t, err, charset.ErrUnknownCharset)
	assert.Equal(t, "abc\xff", string(out))
}

func TestNewWriter(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	w, err := charset.NewWriter(buf, "utf-8", "iso-8859-1")
	require.NoError(t, err)

	// split the two byte sequence for é across writes
	_, err = w.Write([]byte("caf\xc3"))
	require.NoError(t, err)
	_, err = w.Write([]byte("\xa9!"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, "caf\xe9!", buf.String())
}

func TestCountLossy(t *testing.T) {
	t.Parallel()

	n, err := charset.CountLossy("café", "iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = charset.CountLossy("café ☃☃", "iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = charset.CountLossy("café", "us-ascii")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = charset.CountLossy("☃", "utf-8")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestGuess(t *testing.T) {
	t.Parallel()

	cs, ok := charset.Guess([]byte("plain ascii is utf-8 as well"))
	assert.True(t, ok)
	assert.Equal(t, "utf-8", cs)

	latin := bytes.Repeat([]byte("Les \xe9l\xe8ves ont pr\xe9f\xe9r\xe9 le caf\xe9 fran\xe7ais. "), 8)
	cs, ok = charset.Guess(latin)
	assert.True(t, ok)
	assert.NotEqual(t, "utf-8", cs)
	assert.True(t, charset.IsKnown(cs))
}
