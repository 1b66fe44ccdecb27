package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskengine/config"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.log")
	logger, err := New(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1})
	require.NoError(t, err)

	logger.Info("model loaded")
	logger.Debug("hidden below info")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"model loaded"`)
	assert.NotContains(t, string(data), "hidden below info")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "chatty"})
	require.Error(t, err)
}

func TestNewConsoleWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewConsole("warn", &buf)
	require.NoError(t, err)

	logger.Info("quiet")
	logger.Warn("artifact changed")
	_ = logger.Sync()

	assert.Contains(t, buf.String(), "artifact changed")
	assert.NotContains(t, buf.String(), "quiet")
}
