package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger writing to stdout. An unknown level falls back to info.
func New(level string, pretty bool) *zerolog.Logger {
	return NewWithWriter(os.Stdout, level, pretty)
}

// NewWithWriter creates a zerolog logger writing to w.
func NewWithWriter(w io.Writer, level string, pretty bool) *zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return &l
}

// Nop returns a logger that discards everything.
func Nop() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
