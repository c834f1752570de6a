package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Setup configures the process-wide logger. level is one of zerolog's level
// strings; unknown values fall back to info. When pretty is true, output goes
// through the human-readable console writer instead of raw JSON.
func Setup(level string, pretty bool) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var out = os.Stderr
	if pretty {
		w := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
		log = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
		return
	}
	log = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// L returns the configured logger.
func L() *zerolog.Logger {
	return &log
}
