package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/config"
)

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, config.Log{Level: slog.LevelInfo, Format: "text"})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("Entity ready", "network_id", "puck")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=\"Entity ready\"")
	assert.Contains(t, out, "network_id=puck")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, config.Log{Level: slog.LevelDebug, Format: "json"})
	require.NoError(t, err)

	logger.Debug("Record owner changed", "owner", "c1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "Record owner changed", entry["msg"])
	assert.Equal(t, "c1", entry["owner"])
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New(&bytes.Buffer{}, config.Log{Format: "xml"})
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}
