package internal

import (
	"os"

	"github.com/rs/zerolog"
)

// NewLogger builds the console logger used across a run. Level names follow
// zerolog's: debug, info, warn, error.
func NewLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Logger()
}
