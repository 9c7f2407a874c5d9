package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileLoggerWritesServiceScopedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	logger, closeLogger, err := NewFileLogger(path, "pokedex", slog.LevelInfo)
	require.NoError(t, err)

	logger.Info("startup complete", "port", "8080")
	require.NoError(t, closeLogger())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(raw, &record))
	assert.Equal(t, "pokedex", record["service"])
	assert.Equal(t, "startup complete", record["msg"])
	assert.Equal(t, "8080", record["port"])
}

func TestNewFileLoggerRespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	logger, closeLogger, err := NewFileLogger(path, "pokedex", slog.LevelInfo)
	require.NoError(t, err)

	logger.Debug("not recorded")
	require.NoError(t, closeLogger())

	raw, err := os.ReadFile(path)
	if err == nil {
		assert.Empty(t, raw)
	}
}
