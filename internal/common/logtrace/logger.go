// Package logtrace provides logging utilities for the Arena CLI.
// It integrates with zerolog for structured logging.
package logtrace

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger initializes the global logger. Output goes to stderr so it never
// mixes with command output. The level defaults to warn and can be raised with
// ARENA_LOG_LEVEL (e.g. "debug" to trace the request pipeline).
func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.WarnLevel
	if v := os.Getenv("ARENA_LOG_LEVEL"); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	log.Logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
