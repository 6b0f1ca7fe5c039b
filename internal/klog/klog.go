// Package klog wraps a zerolog.Logger with the handful of leveled
// call sites koto-go's driver code needs (SPEC_FULL.md "AMBIENT
// STACK / Logging"). Library packages (parser, koto, iterator,
// itermodule) never import klog; only cmd/koto and internal/repl
// configure and write to one, keeping the core silent by default the
// same way the teacher's interp package never logs on its own.
package klog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the leveled sink koto-go's driver code writes to.
type Logger struct {
	zl zerolog.Logger
}

// New builds a Logger writing human-readable output to w at the
// given level. Passing a nil w defaults to os.Stderr.
func New(w io.Writer, level zerolog.Level) Logger {
	if w == nil {
		w = os.Stderr
	}
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	zl := zerolog.New(console).Level(level).With().Timestamp().Logger()
	return Logger{zl: zl}
}

// Discard returns a Logger that drops every event, the default for
// library code paths that accept an optional logger.
func Discard() Logger {
	return Logger{zl: zerolog.Nop()}
}

func (l Logger) Debugf(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}

func (l Logger) Infof(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

func (l Logger) Warnf(format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

func (l Logger) Errorf(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}

// WithComponent returns a Logger that tags every event with the
// given component name, used to distinguish "parser" vs "repl" vs
// "vm" output when --verbose is set.
func (l Logger) WithComponent(name string) Logger {
	return Logger{zl: l.zl.With().Str("component", name).Logger()}
}
