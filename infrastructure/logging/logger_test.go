package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ahrav/go-evalstats/internal/application"
)

func TestNewWithConsole_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{level: "debug", wantDebug: true, wantInfo: true},
		{level: "info", wantDebug: false, wantInfo: true},
		{level: "error", wantDebug: false, wantInfo: false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := NewWithConsole(application.LoggingConfig{Level: tt.level}, zapcore.AddSync(&buf))
			require.NoError(t, err)

			logger.Debug("debug line")
			logger.Info("info line")
			require.NoError(t, logger.Sync())

			assert.Equal(t, tt.wantDebug, strings.Contains(buf.String(), "debug line"))
			assert.Equal(t, tt.wantInfo, strings.Contains(buf.String(), "info line"))
		})
	}
}

func TestNewWithConsole_InvalidLevel(t *testing.T) {
	_, err := NewWithConsole(application.LoggingConfig{Level: "loud"}, zapcore.AddSync(&bytes.Buffer{}))
	assert.ErrorContains(t, err, "invalid log level")
}

func TestNewWithConsole_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evalstats.log")
	var console bytes.Buffer

	logger, err := NewWithConsole(
		application.LoggingConfig{Level: "info", File: path},
		zapcore.AddSync(&console),
	)
	require.NoError(t, err)

	logger.Named("results").Info("warmed results cache", zap.Int("cached", 3))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "results", entry["logger"])
	assert.Equal(t, "warmed results cache", entry["msg"])
	assert.EqualValues(t, 3, entry["cached"])

	assert.Contains(t, console.String(), "warmed results cache")
}
