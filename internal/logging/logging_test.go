package logging

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug":   log.DebugLevel,
		"DEBUG":   log.DebugLevel,
		"info":    log.InfoLevel,
		"error":   log.ErrorLevel,
		"warn":    log.WarnLevel,
		"":        log.WarnLevel,
		"verbose": log.WarnLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{})
	logger.Info("hidden")
	logger.Warn("shown", "files", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "files=2")
	assert.Contains(t, out, "accessorlint")
}

func TestNewVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Level: "error", Verbose: true})
	assert.Equal(t, log.DebugLevel, logger.GetLevel())

	logger.Debug("resolving", "file", "A.java")
	assert.Contains(t, buf.String(), "resolving")
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing")
}
