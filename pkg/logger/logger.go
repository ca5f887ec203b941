package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is attached to every log line
const ServiceName = "project-board-api"

// Options controls logger construction. Zero values select JSON at info level.
type Options struct {
	Level  string
	Format string // "json" or "pretty"
	Output io.Writer
}

// New creates a zerolog logger configured from LOG_LEVEL, LOG_FORMAT and ENV.
// It is usable before the rest of the configuration is loaded.
func New() zerolog.Logger {
	format := os.Getenv("LOG_FORMAT")
	if os.Getenv("ENV") == "development" {
		format = "pretty"
	}
	return NewWithOptions(Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: format,
	})
}

// NewWithOptions creates a logger with structured output
func NewWithOptions(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	ctx := zerolog.New(out).Level(ParseLevel(opts.Level)).With().Timestamp()
	if opts.Format == "pretty" {
		ctx = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			Level(ParseLevel(opts.Level)).
			With().
			Timestamp().
			Caller()
	}

	return ctx.Str("service", ServiceName).Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
