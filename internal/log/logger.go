// Package log builds the application logger.
package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CorrelationIDKey is the field carrying a per-operation correlation id.
const CorrelationIDKey = "correlation_id"

// New creates a logger writing to w at level. Format "json" selects
// structured output; anything else renders for a terminal.
func New(level, format string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if strings.ToLower(format) != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
}

// WithCorrelationID returns a child logger tagged with a fresh correlation id.
func WithCorrelationID(logger zerolog.Logger) (zerolog.Logger, string) {
	id := uuid.NewString()
	return logger.With().Str(CorrelationIDKey, id).Logger(), id
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
