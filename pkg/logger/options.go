package logger

import (
	"io"
	"log/slog"
)

// Format selects the handler New builds.
type Format int

const (
	// FormatText is slog's key=value text handler.
	FormatText Format = iota
	// FormatPretty is the colorized charmbracelet/log handler for terminals.
	FormatPretty
	// FormatJSON is slog's JSON handler, one object per line.
	FormatJSON
)

// Option configures a logger built by New.
type Option func(*config)

// WithDebug lowers the level to Debug.
func WithDebug(debug bool) Option {
	return func(c *config) {
		c.level = slog.LevelInfo
		if debug {
			c.level = slog.LevelDebug
		}
	}
}

// WithFormat picks the output format. The default is FormatText.
func WithFormat(f Format) Option {
	return func(c *config) { c.format = f }
}

// WithWriter sends output to w instead of os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(c *config) { c.out = w }
}

// WithSource annotates each record with the calling file and line.
func WithSource(source bool) Option {
	return func(c *config) { c.source = source }
}
