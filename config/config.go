// Package config holds the runtime options of the MIME engine. The file format
// is sconf: indent with tabs, one "Key: value" per line.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mjl-/sconf"

	"github.com/zostay/go-mua/charset"
	"github.com/zostay/go-mua/message"
	"github.com/zostay/go-mua/message/flowed"
)

// Config is the configuration file.
type Config struct {
	Charset           string `sconf:"optional" sconf-doc:"Charset text is converted to for display. Default: utf-8."`
	AssumedCharset    string `sconf:"optional" sconf-doc:"Charset assumed for text that declares none, also used for raw 8-bit bytes in header fields and parameters. Default: us-ascii."`
	SendCharset       string `sconf:"optional" sconf-doc:"Colon separated list of charsets tried in order when encoding header text. The first that represents the text without loss is used. Default: us-ascii:iso-8859-1:utf-8."`
	WrapWidth         int    `sconf:"optional" sconf-doc:"Width format=flowed text is wrapped at for display. Default: 78."`
	MaxDepth          int    `sconf:"optional" sconf-doc:"Deepest nesting of multipart and message parts that is parsed. Deeper containers are shown as a single part. Use -1 for no limit. Default: 10."`
	RFC2047Params     bool   `sconf:"optional" sconf-doc:"Decode RFC 2047 encoded words in parameter values, as some broken mailers produce."`
	DetectCharset     bool   `sconf:"optional" sconf-doc:"Guess the charset of text parts that declare none and contain 8-bit bytes."`
	ReflowSpaceQuotes bool   `sconf:"optional" sconf-doc:"Write a space after the quote markers of reflowed text."`
	QuotePrefix       string `sconf:"optional" sconf-doc:"Prefix written before each line of quoted text. Default: '> '."`
	Digest            bool   `sconf:"optional" sconf-doc:"Treat messages without a Content-type as message/rfc822, as found in digests."`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Charset:        charset.UTF8,
		AssumedCharset: charset.USASCII,
		SendCharset:    "us-ascii:iso-8859-1:utf-8",
		WrapWidth:      flowed.DefaultWidth,
		MaxDepth:       message.DefaultMaxDepth,
		QuotePrefix:    "> ",
	}
}

// Load reads the configuration file at path. Settings missing from the file
// keep their default.
func Load(path string) (Config, error) {
	c := Default()

	f, err := os.Open(path)
	if err != nil {
		return c, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	if err := Parse(f, &c); err != nil {
		return c, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return c, nil
}

// Parse reads sconf text from r into c and checks the result.
func Parse(r io.Reader, c *Config) error {
	if err := sconf.Parse(r, c); err != nil {
		return err
	}
	return c.check()
}

func (c *Config) check() error {
	if c.Charset != "" && !charset.IsKnown(c.Charset) {
		return fmt.Errorf("unknown charset %q", c.Charset)
	}
	if c.WrapWidth < 0 {
		return fmt.Errorf("wrap width must not be negative, got %d", c.WrapWidth)
	}
	for _, cs := range c.SendCharsets() {
		if !charset.IsKnown(cs) {
			return fmt.Errorf("unknown charset %q in send charsets", cs)
		}
	}
	return nil
}

// Describe writes the configuration with its documentation to w.
func (c Config) Describe(w io.Writer) error {
	return sconf.Describe(w, &c)
}

// SendCharsets returns the candidate charsets for header encoding.
func (c Config) SendCharsets() []string {
	var cs []string
	for _, s := range strings.Split(c.SendCharset, ":") {
		if s = strings.TrimSpace(s); s != "" {
			cs = append(cs, s)
		}
	}
	return cs
}

// ParseOptions converts the configuration into options for message.Parse.
func (c Config) ParseOptions(l *slog.Logger) []message.ParseOption {
	opts := []message.ParseOption{
		message.WithLogger(l),
	}
	if c.MaxDepth < 0 {
		opts = append(opts, message.WithUnlimitedRecursion())
	} else {
		opts = append(opts, message.WithMaxDepth(c.MaxDepth))
	}
	if c.AssumedCharset != "" {
		opts = append(opts, message.WithAssumedCharset(c.AssumedCharset))
	}
	if c.DetectCharset {
		opts = append(opts, message.WithCharsetDetection())
	}
	if c.RFC2047Params {
		opts = append(opts, message.WithRFC2047Params())
	}
	return opts
}

// DecodeContext returns a context for displaying parts on w.
func (c Config) DecodeContext(w io.Writer, l *slog.Logger) *message.DecodeContext {
	return &message.DecodeContext{
		Out:            w,
		Flags:          message.Display | message.CharsetConvert,
		Charset:        c.Charset,
		AssumedCharset: c.AssumedCharset,
		Width:          c.WrapWidth,
		SpaceQuotes:    c.ReflowSpaceQuotes,
		Logger:         l,
	}
}

// ReplyContext returns a context for quoting text parts in a reply on w.
func (c Config) ReplyContext(w io.Writer, l *slog.Logger) *message.DecodeContext {
	dc := c.DecodeContext(w, l)
	dc.Flags = message.Replying | message.CharsetConvert
	dc.Prefix = c.QuotePrefix
	return dc
}
