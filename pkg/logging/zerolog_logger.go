package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger on top of a zerolog.Logger.
// ConsoleLogger and JSONLogger are both ZerologLoggers with a
// different writer.
type ZerologLogger struct {
	zl     zerolog.Logger
	closer io.Closer
}

// NewZerologLogger wraps an existing zerolog.Logger.
func NewZerologLogger(zl zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{zl: zl}
}

// Info logs an informational message.
func (l *ZerologLogger) Info(msg string, fields ...Field) {
	emit(l.zl.Info(), msg, fields)
}

// Warn logs a warning message.
func (l *ZerologLogger) Warn(msg string, fields ...Field) {
	emit(l.zl.Warn(), msg, fields)
}

// Error logs an error message.
func (l *ZerologLogger) Error(msg string, fields ...Field) {
	emit(l.zl.Error(), msg, fields)
}

// Debug logs a debug message.
func (l *ZerologLogger) Debug(msg string, fields ...Field) {
	emit(l.zl.Debug(), msg, fields)
}

// WithFields returns a child logger carrying the given fields.
// The child shares the parent's output and must not be closed
// independently.
func (l *ZerologLogger) WithFields(fields ...Field) Logger {
	ctx := l.zl.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}
	return &ZerologLogger{zl: ctx.Logger()}
}

// Close releases the underlying output if the logger owns it.
func (l *ZerologLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

// emit writes fields and the message on an event. A nil event
// (level disabled) is a no-op in zerolog.
func emit(e *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		e = e.Interface(f.Key, f.Value)
	}
	e.Msg(msg)
}
