// Package logger implements ports.Logger on top of zerolog.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/doeshing/shlaunch/internal/ports"
)

// ZeroLogger writes structured console logs to stderr. Without verbose only
// warnings and errors are emitted.
type ZeroLogger struct {
	log zerolog.Logger
}

// New creates a ZeroLogger writing to stderr.
func New(verbose bool) *ZeroLogger {
	return NewWithWriter(os.Stderr, verbose, true)
}

// NewWithWriter creates a ZeroLogger on an arbitrary writer. pretty selects
// the human-readable console format over JSON lines.
func NewWithWriter(w io.Writer, verbose, pretty bool) *ZeroLogger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := w
	if pretty {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return &ZeroLogger{
		log: zerolog.New(out).Level(level).With().Timestamp().Logger(),
	}
}

// Nop returns a logger that discards everything.
func Nop() *ZeroLogger {
	return &ZeroLogger{log: zerolog.Nop()}
}

func (l *ZeroLogger) Debug(msg string, fields map[string]interface{}) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Info(msg string, fields map[string]interface{}) {
	l.log.Info().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Warn(msg string, fields map[string]interface{}) {
	l.log.Warn().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Error(msg string, err error, fields map[string]interface{}) {
	l.log.Error().Err(err).Fields(fields).Msg(msg)
}

var _ ports.Logger = (*ZeroLogger)(nil)
