// Package logger builds the zerolog loggers used by the binaries.
package logger

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Format selects the output encoding.
type Format int

const (
	// JSON writes one JSON object per line.
	JSON Format = iota
	// Console writes human readable lines, for terminals.
	Console
)

// ParseLevel accepts zerolog level names. An empty string means info.
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level: %w", err)
	}
	if lvl == zerolog.NoLevel {
		return zerolog.InfoLevel, nil
	}
	return lvl, nil
}

// New returns a timestamped logger writing to w at the given level.
func New(w io.Writer, level string, format Format) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if format == Console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
	}
	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger(), nil
}
