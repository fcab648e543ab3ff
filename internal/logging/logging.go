// Package logging configures the zerolog logger shared by every
// pipeline stage: a human-readable console writer over stderr, with the
// level controlled by the CLI's repeatable -v flag.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New builds a logger writing to w at the level implied by verbosity:
// 0 -> warn, 1 -> info, 2 -> debug, 3+ -> trace. Stdout is reserved
// exclusively for NUL-delimited pair output, so w should be os.Stderr
// in production.
func New(w io.Writer, verbosity int) zerolog.Logger {
	level := zerolog.WarnLevel
	switch {
	case verbosity >= 3:
		level = zerolog.TraceLevel
	case verbosity == 2:
		level = zerolog.DebugLevel
	case verbosity == 1:
		level = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}
