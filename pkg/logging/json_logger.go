package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// LoggerConfig configures a JSON Lines logger.
type LoggerConfig struct {
	// OutputPath is the log file. Empty means stdout.
	OutputPath string

	// Level is the minimum level written.
	Level LogLevel

	// Fields are attached to every entry.
	Fields map[string]any
}

// NewJSONLogger creates a logger that writes one JSON object per
// line. When OutputPath is set the file is created (with parent
// directories) and appended to; Close closes it.
func NewJSONLogger(config LoggerConfig) (*ZerologLogger, error) {
	var (
		out    io.Writer = os.Stdout
		closer io.Closer
	)

	if config.OutputPath != "" {
		dir := filepath.Dir(config.OutputPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf(
				"failed to create log directory: %w", err,
			)
		}
		file, err := os.OpenFile(
			config.OutputPath,
			os.O_CREATE|os.O_WRONLY|os.O_APPEND,
			0644,
		)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to open log file: %w", err,
			)
		}
		out, closer = file, file
	}

	ctx := zerolog.New(out).
		Level(config.Level.zerolog()).
		With().
		Timestamp()
	for k, v := range config.Fields {
		ctx = ctx.Interface(k, v)
	}

	return &ZerologLogger{zl: ctx.Logger(), closer: closer}, nil
}
