package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/mmwrtab/pkg/config"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.LoggingConfig{Level: "info", Format: "json"})

	ctx := WithRunID(context.Background(), "run-1")
	logger.InfoContext(ctx, "parsed bulletin", "file", "2009_wk19_table2H.tab")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "parsed bulletin", record["msg"])
	assert.Equal(t, "run-1", record["run_id"])
	assert.Equal(t, "2009_wk19_table2H.tab", record["file"])
}

func TestNew_TextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.LoggingConfig{Level: "warn", Format: "text"})

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestNew_WithAttrsKeepsRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, config.LoggingConfig{Level: "debug", Format: "text"}).With("component", "fetch")

	logger.DebugContext(WithRunID(context.Background(), "abc"), "request")
	assert.Contains(t, buf.String(), "component=fetch")
	assert.Contains(t, buf.String(), "run_id=abc")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestRunID_Missing(t *testing.T) {
	assert.Empty(t, RunID(context.Background()))
}
