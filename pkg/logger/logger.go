// Package logger builds the *slog.Logger values used across mnemosyne.
//
// The handler underneath depends on the Format option: charmbracelet/log for
// terminals, slog's JSON handler for log shipping, slog's text handler
// otherwise.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level  slog.Level
	format Format
	source bool
	out    io.Writer
}

// New returns a logger configured by opts. Without options it writes Info
// and above as text to os.Stdout.
func New(opts ...Option) *slog.Logger {
	c := &config{level: slog.LevelInfo, out: os.Stdout}
	for _, opt := range opts {
		opt(c)
	}

	return slog.New(c.handler())
}

func (c *config) handler() slog.Handler {
	if c.format == FormatPretty {
		return charmlog.NewWithOptions(c.out, charmlog.Options{
			ReportTimestamp: true,
			ReportCaller:    c.source,
			Level:           charmlog.Level(c.level),
		})
	}

	ho := &slog.HandlerOptions{Level: c.level, AddSource: c.source}
	if c.format == FormatJSON {
		return slog.NewJSONHandler(c.out, ho)
	}
	return slog.NewTextHandler(c.out, ho)
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(nopHandler{})
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }
