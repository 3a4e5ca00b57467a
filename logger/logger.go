// Package logger provides the structured logger used by the execution
// path. CLI user output stays on plain stdout; this logger records what was
// actually run against the engine.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.
type Logger struct {
	zlog zerolog.Logger
}

// Config holds logger configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output io.Writer
}

// DefaultConfig returns console output at info level, matching a CLI run.
func DefaultConfig() *Config {
	return &Config{Level: "info", Format: "console", Output: os.Stderr}
}

// New creates a logger.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	zlog := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return &Logger{zlog: zlog}
}

// Statement logs one executed statement with its duration.
func (l *Logger) Statement(sql string, elapsed time.Duration) {
	l.zlog.Debug().Dur("elapsed", elapsed).Str("sql", sql).Msg("executed")
}

// Info logs a progress message.
func (l *Logger) Info(msg string) {
	l.zlog.Info().Msg(msg)
}

// Error logs a failure with its cause.
func (l *Logger) Error(msg string, err error) {
	l.zlog.Error().Err(err).Msg(msg)
}
