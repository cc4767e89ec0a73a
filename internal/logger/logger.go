// Package logger provides the structured logging interface used across the
// service, with a zap backed implementation.
package logger

import (
	"time"
)

// LogLevel names a minimum severity accepted by a Logger.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Output formats understood by NewZapLogger.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Logger is the structured logger passed to every component at construction.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger that adds fields to every entry.
	With(fields ...Field) Logger
	// Module returns a child logger tagged with the component name.
	Module(name string) Logger
}

// Field is a single structured key/value attached to a log entry.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field { return Field{Key: key, Value: value} }

func Int(key string, value int) Field { return Field{Key: key, Value: value} }

func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }

func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

func Any(key string, value any) Field { return Field{Key: key, Value: value} }

// Error attaches err under the "error" key. A nil error is logged as null.
func Error(err error) Field {
	return Field{Key: "error", Value: err}
}
