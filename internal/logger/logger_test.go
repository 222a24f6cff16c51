package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robochess/pinctl/internal/config"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LoggerConfig{Level: "info", Format: "json"}, &buf)

	log.Info("pin forced to output", "pin", 27)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	assert.Equal(t, "pin forced to output", entry["msg"])
	assert.Equal(t, float64(27), entry["pin"])
}

func TestNewTextLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LoggerConfig{Level: "warn", Format: "text"}, &buf)

	log.Info("hidden")
	log.Warn("shown", "pin", 13)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, "msg=shown pin=13"), out)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.input), tt.input)
	}
}
