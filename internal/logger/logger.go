package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns the service logger: human-readable console output in
// development, JSON lines everywhere else.
func New(env string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level := zerolog.InfoLevel
	if env == "development" {
		level = zerolog.DebugLevel
	}

	if env == "development" {
		writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
		return zerolog.New(writer).Level(level).With().Timestamp().Str("service", "contractor-payments").Logger()
	}

	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", "contractor-payments").Logger()
}
