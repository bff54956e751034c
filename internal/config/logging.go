package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger builds the process logger and installs it as the zerolog global.
// Logs go to stderr so CLI subcommands can print results on stdout.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	logger := NewLoggerTo(cfg, os.Stderr)
	log.Logger = logger
	return logger
}

// NewLoggerTo builds a logger writing to out.
func NewLoggerTo(cfg LoggingConfig, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	output := out
	if strings.EqualFold(cfg.Format, "console") {
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(output).Level(level).With().Timestamp().Str("service", "wanderlanka-planner").Logger()
}
