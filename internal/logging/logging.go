package logging

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. Format "console" is the human-readable
// writer; anything else emits JSON lines.
func New(level, format string) (zerolog.Logger, error) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var logger zerolog.Logger
	if format == "console" {
		writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		logger = zerolog.New(writer)
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(parsed).With().Timestamp().Logger(), nil
}
