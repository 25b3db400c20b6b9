// Package logging centralizes zerolog setup, following the teacher's
// cmd/cryptorun main.go idiom (console writer to stderr, times shown in
// time.Kitchen format) so every subcommand and subsystem logs the same shape.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Init configures the global zerolog logger. Call once from main.
func Init(debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		// Piped to a file or log collector: skip ANSI color codes so
		// the output stays grep-friendly.
		writer.NoColor = true
	}
	log.Logger = log.Output(writer)
}

// Trial returns a logger scoped to a single trial, the way the teacher
// scopes loggers per symbol.
func Trial(trialID string) zerolog.Logger {
	return log.With().Str("trial_id", trialID).Logger()
}

// Run returns a logger scoped to a single run_id.
func Run(runID string) zerolog.Logger {
	return log.With().Str("run_id", runID).Logger()
}
