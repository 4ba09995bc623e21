package obs

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process-wide logger. Development environments get a
// human-readable console writer; anything else emits plain JSON lines.
func NewLogger(environment string) zerolog.Logger {
	var out io.Writer = os.Stderr
	if environment != "production" {
		out = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
	}

	level := zerolog.InfoLevel
	if environment == "development" {
		level = zerolog.DebugLevel
	}

	return zerolog.New(out).Level(level).With().
		Timestamp().
		Str("env", environment).
		Logger()
}
