// Package telemetry wraps structured logging and Prometheus metrics for
// the manager, supervisor, and transport layers. Grounded on
// cuemby-warren's pkg/log (zerolog global logger with component-scoped
// children) and pkg/metrics (package-level prometheus.NewXxx vars).
package telemetry

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Level mirrors cuemby-warren pkg/log's string-keyed level config.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config configures the global logger.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Logger is the process-wide logger, replaced by Init.
var Logger zerolog.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Init sets up the global Logger per cfg.
func Init(cfg Config) {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}

// WithWorldID returns a child logger scoped to one world id.
func WithWorldID(id string) zerolog.Logger {
	return Logger.With().Str("world_id", id).Logger()
}

// WithComponent returns a child logger scoped to one component name.
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}
