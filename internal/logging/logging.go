// Package logging builds the CLI's zerolog logger and adapts it to the
// lastfm.Logger interface.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/lastkit/pkg/lastfm"
)

// ParseLevel maps debug, info, warn and error to zerolog levels. Anything
// else is info.
func ParseLevel(logLevel string) zerolog.Level {
	switch strings.ToLower(logLevel) {
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

// Setup creates a logger with the specified configuration. With an empty
// logFile it writes pretty console output to stderr. The returned closer
// releases the log file and is safe to call when logging to stderr.
func Setup(logFile, logLevel string) (zerolog.Logger, io.Closer) {
	level := ParseLevel(logLevel)

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			return New(f, level), f
		}
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return New(console, level), io.NopCloser(nil)
}

// New creates a timestamped logger writing to w.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// lastfmLogger forwards SDK debug messages to zerolog.
type lastfmLogger struct {
	logger zerolog.Logger
}

// LastFM adapts logger to lastfm.Logger. Messages are tagged with
// component=lastfm and logged at debug level.
func LastFM(logger zerolog.Logger) lastfm.Logger {
	return lastfmLogger{logger: logger.With().Str("component", "lastfm").Logger()}
}

func (l lastfmLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}
