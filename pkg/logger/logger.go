// Package logger builds the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects level, output format and an optional rotated log file
type Options struct {
	Level  string
	Format string // "console" or "json"
	File   string
}

// New creates a logger writing to stderr, and to File when set.
// Stdout is left alone so the transaction id can be piped.
func New(opts Options) zerolog.Logger {
	return newWithStderr(opts, os.Stderr)
}

func newWithStderr(opts Options, stderr io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = stderr
	if !strings.EqualFold(opts.Format, "json") {
		out = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}
	}

	if opts.File != "" {
		fileLogger := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		// the file always gets JSON lines
		out = zerolog.MultiLevelWriter(out, fileLogger)
	}

	return zerolog.New(out).With().Timestamp().Logger().Level(lvl)
}
