package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"
)

// DefaultLogger writes key=value lines through the standard log package.
// Debug and Info go to the output writer, Warn and above to the error
// writer, colored when useColors is set.
type DefaultLogger struct {
	out       *log.Logger
	errOut    *log.Logger
	level     Level
	fields    Fields
	useColors bool
	exit      func(code int)
}

// NewDefaultLogger logs to stdout and stderr, with colors when stdout is a terminal
func NewDefaultLogger() *DefaultLogger {
	return NewDefaultLoggerWithWriters(os.Stdout, os.Stderr, isTerminal(os.Stdout))
}

// NewDefaultLoggerWithWriters logs Debug/Info to out and the rest to errOut
func NewDefaultLoggerWithWriters(out, errOut io.Writer, useColors bool) *DefaultLogger {
	return &DefaultLogger{
		out:       log.New(out, "", log.LstdFlags),
		errOut:    log.New(errOut, "", log.LstdFlags),
		level:     InfoLevel,
		fields:    Fields{},
		useColors: useColors,
		exit:      os.Exit,
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

var levelColors = map[Level]string{
	WarnLevel:  ColorYellow,
	ErrorLevel: ColorRed,
	FatalLevel: ColorBold + ColorRed,
}

// line renders one log entry; fields are sorted by key so output is stable
func (d *DefaultLogger) line(level Level, err error, msg string, extra []Fields) string {
	merged := maps.Clone(d.fields)
	if merged == nil {
		merged = Fields{}
	}
	for _, f := range extra {
		maps.Copy(merged, f)
	}

	var b strings.Builder
	b.WriteString("[" + level.String() + "] " + msg)
	if err != nil {
		b.WriteString(": " + err.Error())
	}
	for _, key := range slices.Sorted(maps.Keys(merged)) {
		fmt.Fprintf(&b, " %s=%v", key, merged[key])
	}

	if color, ok := levelColors[level]; ok && d.useColors {
		return color + b.String() + ColorReset
	}
	return b.String()
}

func (d *DefaultLogger) emit(level Level, err error, msg string, extra []Fields) {
	if level < d.level {
		return
	}

	target := d.out
	if level >= WarnLevel {
		target = d.errOut
	}
	target.Println(d.line(level, err, msg, extra))

	if level == FatalLevel {
		d.exit(1)
	}
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) { d.emit(DebugLevel, nil, msg, fields) }
func (d *DefaultLogger) Info(msg string, fields ...Fields)  { d.emit(InfoLevel, nil, msg, fields) }
func (d *DefaultLogger) Warn(msg string, fields ...Fields)  { d.emit(WarnLevel, nil, msg, fields) }

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.emit(ErrorLevel, err, msg, fields)
}

// Fatal logs and exits the process with status 1
func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.emit(FatalLevel, err, msg, fields)
}

func (d *DefaultLogger) WithFields(fields Fields) Logger {
	child := *d
	child.fields = Fields{}
	maps.Copy(child.fields, d.fields)
	maps.Copy(child.fields, fields)
	return &child
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := FieldsFromContext(ctx); ok {
		return d.WithFields(fields)
	}
	return d
}

func (d *DefaultLogger) SetLevel(level Level) {
	d.level = level
}

// NoOpLogger discards everything
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(string, ...Fields)            {}
func (n *NoOpLogger) Info(string, ...Fields)             {}
func (n *NoOpLogger) Warn(string, ...Fields)             {}
func (n *NoOpLogger) Error(error, string, ...Fields)     {}
func (n *NoOpLogger) Fatal(error, string, ...Fields)     {}
func (n *NoOpLogger) WithFields(Fields) Logger           { return n }
func (n *NoOpLogger) WithContext(context.Context) Logger { return n }
func (n *NoOpLogger) SetLevel(Level)                     {}
