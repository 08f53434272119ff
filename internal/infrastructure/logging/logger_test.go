package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/ledgermatch/internal/infrastructure/config"
)

func TestConsoleHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := WithComponent(New(config.LoggingConfig{Level: "info"}, &buf), "engine")

	logger.Info("reconciliation complete", "matched", 12, "variance", 20.5, "source", "Chase Checking")

	line := buf.String()
	assert.Regexp(t, regexp.MustCompile(`^\[INFO\] \[engine\] \[\d{2}:\d{2}:\d{2}\] reconciliation complete`), line)
	assert.Contains(t, line, " matched=12")
	assert.Contains(t, line, " variance=20.5")
	assert.Contains(t, line, ` source="Chase Checking"`)
	assert.NotContains(t, line, "component=")
	assert.NotContains(t, line, "\033[", "no colours when not writing to a terminal")
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestConsoleHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggingConfig{Level: "warn"}, &buf)

	logger.Info("hidden")
	logger.Debug("hidden")
	logger.Warn("fuzzy matching abandoned", "error", "context deadline exceeded")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, `error="context deadline exceeded"`)
}

func TestConsoleHandler_GroupsAndDurations(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LoggingConfig{Level: "debug"}, &buf).
		With("run", "r-1").
		WithGroup("http")

	logger.Debug("request", "status", 200, "duration", 1500*time.Microsecond, slog.Group("client", "ip", "10.0.0.1"))

	out := buf.String()
	assert.Contains(t, out, " run=r-1")
	assert.Contains(t, out, " http.status=200")
	assert.Contains(t, out, " http.duration=2ms")
	assert.Contains(t, out, " http.client.ip=10.0.0.1")
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := WithComponent(New(config.LoggingConfig{Level: "info", Format: "json"}, &buf), "api")

	logger.Info("started", "port", 8085)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "started", entry["msg"])
	assert.Equal(t, "api", entry["component"])
	assert.Equal(t, float64(8085), entry["port"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
