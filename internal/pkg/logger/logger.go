// Package logger owns the process-wide zerolog logger. Packages that are not
// handed a logger explicitly log through the helpers here.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var base zerolog.Logger

// Config selects the level and output format of the process logger
type Config struct {
	// Level is one of debug, info, warn, error. Unknown values fall back to info.
	Level string
	// Pretty switches to the human-readable console writer
	Pretty bool
	// Service and Env are stamped on every entry when set
	Service string
	Env     string
	// Output defaults to os.Stdout
	Output io.Writer
}

// ParseLevel maps a configured level name onto zerolog, defaulting to info
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Configure replaces the package logger and zerolog's global logger
func Configure(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	ctx := zerolog.New(out).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	if cfg.Env != "" {
		ctx = ctx.Str("env", cfg.Env)
	}

	base = ctx.Logger()
	log.Logger = base
	return base
}

// Debug starts a debug-level entry on the process logger
func Debug() *zerolog.Event { return base.Debug() }

// Info starts an info-level entry on the process logger
func Info() *zerolog.Event { return base.Info() }

// Warn starts a warn-level entry on the process logger
func Warn() *zerolog.Event { return base.Warn() }

// Error starts an error-level entry on the process logger
func Error() *zerolog.Event { return base.Error() }

// WithField returns a child logger carrying one extra field
func WithField(key string, value interface{}) zerolog.Logger {
	return base.With().Interface(key, value).Logger()
}

func init() {
	Configure(Config{Level: "info", Pretty: true})
}
