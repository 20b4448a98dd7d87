// Package logx builds the shell's one process-wide zerolog.Logger, with a
// verbose/quiet toggle (-v or -q sends output to stderr, otherwise it's
// discarded) expressed through zerolog's level API instead of
// log.SetOutput.
package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Options controls how the logger is built.
type Options struct {
	// Verbose mirrors a conventional "-v" flag: write to stderr at debug
	// level and below instead of discarding everything.
	Verbose bool
	// Quiet raises the level to warn-and-above even when writing to
	// stderr, for a helper process that should stay silent on success.
	Quiet bool
}

// New builds the logger per opt.
func New(opt Options) zerolog.Logger {
	var w io.Writer = io.Discard
	level := zerolog.Disabled

	if opt.Verbose || opt.Quiet {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
		level = zerolog.InfoLevel
		if opt.Verbose {
			level = zerolog.DebugLevel
		}
		if opt.Quiet {
			level = zerolog.WarnLevel
		}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
