// Package logger builds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger that also copies every line into sink when
// sink is not nil. Debug output is enabled in dev.
func New(env string, sink io.Writer) zerolog.Logger {
	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	if sink != nil {
		out = zerolog.MultiLevelWriter(out, zerolog.ConsoleWriter{Out: sink, TimeFormat: time.RFC3339, NoColor: true})
	}
	level := zerolog.InfoLevel
	if env == "dev" {
		level = zerolog.DebugLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
