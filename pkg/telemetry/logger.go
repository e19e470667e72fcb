package telemetry

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the root logger. Format is "console" or "json"; console
// output goes to stderr so command output on stdout stays machine-readable.
func NewLogger(level, format string) zerolog.Logger {
	var log zerolog.Logger
	if format == "json" {
		log = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}

	return log.Level(parseLogLevel(level))
}

// ComponentLogger returns a child logger tagged with a component name.
func ComponentLogger(log zerolog.Logger, component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
