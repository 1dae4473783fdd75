// Package logging is the structured logger used across the analysis
// packages. Components take a Logger and attach their own fields; the
// process-wide logger defaults to DefaultLogger and can be replaced, for
// example by the logrus adapter.
package logging

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// ANSI escapes used by DefaultLogger on terminals
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorYellow = "\033[33m"
	ColorBold   = "\033[1m"
)

// Level orders log severities, DebugLevel being the most verbose
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if l < DebugLevel || l > FatalLevel {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a case-insensitive level name to its Level. "warning" is
// accepted for WarnLevel.
func ParseLevel(name string) (Level, bool) {
	upper := strings.ToUpper(name)
	if upper == "WARNING" {
		return WarnLevel, true
	}
	for i, n := range levelNames {
		if n == upper {
			return Level(i), true
		}
	}
	return InfoLevel, false
}

// Fields are key/value pairs attached to a log line
type Fields map[string]any

type fieldsKey struct{}

// ContextWithFields returns a context carrying fields that WithContext
// attaches to the returned logger
func ContextWithFields(ctx context.Context, fields Fields) context.Context {
	return context.WithValue(ctx, fieldsKey{}, fields)
}

// FieldsFromContext returns the fields stored by ContextWithFields
func FieldsFromContext(ctx context.Context) (Fields, bool) {
	if ctx == nil {
		return nil, false
	}
	fields, ok := ctx.Value(fieldsKey{}).(Fields)
	return fields, ok
}

// Logger is what the analysis packages log through
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)
	Fatal(err error, msg string, fields ...Fields)

	// WithFields returns a logger that adds fields to every line
	WithFields(fields Fields) Logger

	// WithContext returns a logger that adds the fields stored in ctx
	WithContext(ctx context.Context) Logger

	SetLevel(level Level)
}

// holder keeps the concrete type stored in atomic.Value constant
type holder struct{ logger Logger }

var global atomic.Value

func init() {
	global.Store(holder{NewDefaultLogger()})
}

// SetGlobalLogger replaces the process-wide logger. nil discards all output.
func SetGlobalLogger(logger Logger) {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	global.Store(holder{logger})
}

// GetGlobalLogger returns the process-wide logger
func GetGlobalLogger() Logger {
	return global.Load().(holder).logger
}

func Debug(msg string, fields ...Fields) { GetGlobalLogger().Debug(msg, fields...) }
func Info(msg string, fields ...Fields)  { GetGlobalLogger().Info(msg, fields...) }
func Warn(msg string, fields ...Fields)  { GetGlobalLogger().Warn(msg, fields...) }

func Error(err error, msg string, fields ...Fields) {
	GetGlobalLogger().Error(err, msg, fields...)
}

func Fatal(err error, msg string, fields ...Fields) {
	GetGlobalLogger().Fatal(err, msg, fields...)
}

func WithFields(fields Fields) Logger        { return GetGlobalLogger().WithFields(fields) }
func WithContext(ctx context.Context) Logger { return GetGlobalLogger().WithContext(ctx) }
func SetLevel(level Level)                   { GetGlobalLogger().SetLevel(level) }

// DisableColors turns off color output of the global logger. It covers
// DefaultLogger and a LogrusLogger using logrus' text formatter.
func DisableColors() {
	switch l := GetGlobalLogger().(type) {
	case *DefaultLogger:
		l.useColors = false
	case *LogrusLogger:
		if text, ok := l.entry.Logger.Formatter.(*logrus.TextFormatter); ok {
			text.DisableColors = true
		}
	}
}
