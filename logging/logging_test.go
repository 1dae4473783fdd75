package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggerRouting(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&out, &errOut, false)

	logger.Debug("hidden")
	logger.Info("spectrum done", Fields{"rows": 50, "method": "max"})
	logger.Warn("large grid")
	logger.Error(errors.New("boom"), "ridge failed")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[INFO] spectrum done method=max rows=50")
	assert.Contains(t, errOut.String(), "[WARN] large grid")
	assert.Contains(t, errOut.String(), "[ERROR] ridge failed: boom")

	logger.SetLevel(DebugLevel)
	logger.Debug("visible")
	assert.Contains(t, out.String(), "[DEBUG] visible")
}

func TestDefaultLoggerFields(t *testing.T) {
	var out bytes.Buffer
	base := NewDefaultLoggerWithWriters(&out, &out, false)

	child := base.WithFields(Fields{"component": "annealer"})
	ctx := ContextWithFields(context.Background(), Fields{"input": "cells.tsv"})
	child.WithContext(ctx).Info("started", Fields{"steps": 10})

	assert.Contains(t, out.String(), "[INFO] started component=annealer input=cells.tsv steps=10")

	out.Reset()
	base.Info("plain")
	assert.NotContains(t, out.String(), "component=")
}

func TestDefaultLoggerColorsAndFatal(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewDefaultLoggerWithWriters(&out, &errOut, true)

	code := -1
	logger.exit = func(c int) { code = c }

	logger.Warn("careful")
	assert.Contains(t, errOut.String(), ColorYellow+"[WARN] careful"+ColorReset)

	logger.Fatal(errors.New("fatal"), "stop")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), ColorBold+ColorRed+"[FATAL] stop: fatal")
}

func TestParseLevel(t *testing.T) {
	level, ok := ParseLevel("warning")
	require.True(t, ok)
	assert.Equal(t, WarnLevel, level)
	assert.Equal(t, "WARN", level.String())

	_, ok = ParseLevel("verbose")
	assert.False(t, ok)
}

func TestGlobalLogger(t *testing.T) {
	previous := GetGlobalLogger()
	t.Cleanup(func() { SetGlobalLogger(previous) })

	var out bytes.Buffer
	SetGlobalLogger(NewDefaultLoggerWithWriters(&out, &out, true))
	DisableColors()
	Warn("global")
	assert.Contains(t, out.String(), "[WARN] global")
	assert.NotContains(t, out.String(), ColorYellow)

	SetGlobalLogger(nil)
	assert.IsType(t, &NoOpLogger{}, GetGlobalLogger())
	Info("discarded")
}

func TestDisableColorsLogrus(t *testing.T) {
	previous := GetGlobalLogger()
	t.Cleanup(func() { SetGlobalLogger(previous) })

	var out bytes.Buffer
	base := logrus.New()
	base.SetOutput(&out)
	base.SetFormatter(&logrus.TextFormatter{ForceColors: true, DisableTimestamp: true})
	SetGlobalLogger(NewLogrusLogger(base))

	Warn("colored")
	assert.Contains(t, out.String(), "\x1b[")

	out.Reset()
	DisableColors()
	Warn("plain")
	assert.NotContains(t, out.String(), "\x1b[")
	assert.Contains(t, out.String(), "msg=plain")
}

func TestLogrusLogger(t *testing.T) {
	var out bytes.Buffer
	base := logrus.New()
	base.SetOutput(&out)
	base.SetFormatter(&logrus.JSONFormatter{DisableTimestamp: true})

	logger := NewLogrusLogger(base)
	logger.SetLevel(WarnLevel)
	assert.Equal(t, logrus.WarnLevel, base.GetLevel())

	logger.Info("hidden")
	assert.Empty(t, out.String())

	ctx := ContextWithFields(context.Background(), Fields{"input": "a.tsv"})
	logger.WithFields(Fields{"component": "transform"}).WithContext(ctx).
		Error(errors.New("bad grid"), "spectrum failed", Fields{"rows": 3})

	line := out.String()
	assert.Contains(t, line, `"msg":"spectrum failed"`)
	assert.Contains(t, line, `"error":"bad grid"`)
	assert.Contains(t, line, `"component":"transform"`)
	assert.Contains(t, line, `"input":"a.tsv"`)
	assert.Contains(t, line, `"rows":3`)
	assert.Contains(t, line, `"level":"error"`)
}
