package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinyplanet-server/internal/shared/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	for _, in := range []string{"", "verbose", "INFO", "warning"} {
		_, err := ParseLevel(in)
		assert.Error(t, err, in)
	}
}

func TestNewHonoursLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(config.LoggingConfig{Level: "warn", JSONFormat: true}, &buf)
	require.NoError(t, err)

	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown", "component", "test")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "test", entry["component"])
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestInit(t *testing.T) {
	prevConfig := config.GlobalConfig
	prevLogger := slog.Default()
	t.Cleanup(func() {
		config.GlobalConfig = prevConfig
		slog.SetDefault(prevLogger)
	})

	config.GlobalConfig = nil
	assert.Error(t, Init())

	config.GlobalConfig = &config.Config{Logging: config.LoggingConfig{Level: "error", Format: "text"}}
	require.NoError(t, Init())
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelError))

	config.GlobalConfig = &config.Config{Logging: config.LoggingConfig{Level: "chatty"}}
	assert.Error(t, Init())
}
