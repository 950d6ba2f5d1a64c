// Package logging configures the process-wide zerolog logger once, at
// startup, the way the teacher's cmd/main.go would if it set up anything
// beyond zerolog's defaults — every other package logs through
// github.com/rs/zerolog/log and never configures output itself.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets the global zerolog level and writer. level is parsed with
// zerolog.ParseLevel; an unrecognized value falls back to info. pretty
// selects a human-readable console writer (for interactive use) over
// zerolog's default newline-delimited JSON (for production log shipping).
func Init(level string, pretty bool) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var writer = os.Stderr
	if pretty {
		console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
}
