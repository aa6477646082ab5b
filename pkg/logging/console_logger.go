package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// NewConsoleLogger creates a human-readable logger writing to w
// (stdout when nil). When verbose is true, debug messages are
// emitted.
func NewConsoleLogger(w io.Writer, verbose bool) *ZerologLogger {
	if w == nil {
		w = os.Stdout
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Logger()
	return &ZerologLogger{zl: zl}
}
