// Package logging provides the structured logger used across the generator,
// wrapping zerolog the way the rest of the ambient stack expects: a small
// level/format config, variadic key-value fields, and a process-wide default
// logger that packages can reach for without threading a *Logger everywhere.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Level is a logging verbosity level.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format selects the on-disk/terminal representation of log lines.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config configures a new Logger.
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
}

// Logger wraps a zerolog.Logger with the field-pair calling convention used
// throughout this repo: Info("spawned entity", "entity_id", id, "state", name).
type Logger struct {
	z zerolog.Logger
}

// New builds a Logger from cfg, defaulting to info/text/stderr.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	var out io.Writer = cfg.Output
	if cfg.Format != FormatJSON {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.RFC3339, NoColor: false}
	}

	z := zerolog.New(out).With().Timestamp().Logger().Level(levelOf(cfg.Level))
	return &Logger{z: z}
}

func levelOf(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *Logger) Debug(msg string, fields ...interface{}) { l.log(l.z.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...interface{})  { l.log(l.z.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...interface{})  { l.log(l.z.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...interface{}) { l.log(l.z.Error(), msg, fields) }

// Fatal logs at fatal level and terminates the process, matching zerolog's
// own Fatal semantics.
func (l *Logger) Fatal(msg string, fields ...interface{}) { l.log(l.z.Fatal(), msg, fields) }

func (l *Logger) log(event *zerolog.Event, msg string, fields []interface{}) {
	if len(fields)%2 != 0 {
		event.Bool("malformed_fields", true)
		event.Msg(msg)
		return
	}
	for i := 0; i < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		event.Interface(key, fields[i+1])
	}
	event.Msg(msg)
}

// With returns a child logger carrying the given key-value pairs on every
// subsequent log call.
func (l *Logger) With(fields ...interface{}) *Logger {
	ctx := l.z.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &Logger{z: ctx.Logger()}
}

var global = New(Config{Level: LevelInfo, Format: FormatText, Output: os.Stderr})

// SetDefault replaces the process-wide default logger, typically called once
// from cmd/eventgen after parsing --log-format/--debug.
func SetDefault(l *Logger) { global = l }

// Default returns the process-wide logger.
func Default() *Logger { return global }
