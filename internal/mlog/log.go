// Package mlog is a small helper around log/slog. Every package in this module
// takes an optional *slog.Logger from its caller and wraps it with New to tag
// entries with the originating package. A nil logger discards everything, so
// library code can always log without checking.
package mlog

import (
	"context"
	"io"
	"log/slog"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))

// Log wraps a slog.Logger with the helpers used throughout this module.
type Log struct {
	*slog.Logger
}

// New returns a Log for the named package. If l is nil, all output is
// discarded.
func New(pkg string, l *slog.Logger) Log {
	if l == nil {
		return Log{discard}
	}
	return Log{l.With(slog.String("pkg", pkg))}
}

// Debugx logs at debug level with the error attached as the "err" attribute.
func (l Log) Debugx(msg string, err error, attrs ...slog.Attr) {
	l.logx(slog.LevelDebug, msg, err, attrs...)
}

// Warnx logs at warn level with the error attached as the "err" attribute.
func (l Log) Warnx(msg string, err error, attrs ...slog.Attr) {
	l.logx(slog.LevelWarn, msg, err, attrs...)
}

func (l Log) logx(level slog.Level, msg string, err error, attrs ...slog.Attr) {
	if !l.Enabled(context.Background(), level) {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.Any("err", err))
	}
	l.LogAttrs(context.Background(), level, msg, attrs...)
}

// ParseLevel maps a level name used on the command line to a slog.Level.
// Unknown names map to slog.LevelInfo.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
