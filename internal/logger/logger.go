// Package logger builds the structured logger shared by the services.
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New creates a zerolog logger at the given level. Unknown levels fall back
// to info. Pretty switches to the human-readable console writer for
// development.
func New(level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var out = os.Stdout
	w := zerolog.New(out)
	if pretty {
		w = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}

	return w.Level(lvl).With().
		Timestamp().
		Str("service", "chat-session-manager").
		Logger()
}
