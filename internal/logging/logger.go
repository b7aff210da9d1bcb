// Package logging installs the global zerolog logger for the daemon and the
// CLI. Components derive their own sub-loggers with domain fields.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup parses the configured level (unknown or empty falls back to info)
// and installs the global logger. Debug level gets the human console writer;
// everything else writes JSON to stdout.
func Setup(level string) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	var writer io.Writer = os.Stdout
	if parsed == zerolog.DebugLevel {
		writer = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.TimeFormat = time.RFC3339
		})
	}
	log.Logger = zerolog.
		New(writer).
		With().
		Timestamp().
		Caller().
		Logger()
}
