package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("whatever"))
}

func TestNewWithWriter_JSONCarriesService(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info", "json", "order")
	log.Debug("hidden")
	log.Info("placed", "order_id", "o-1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "placed", record["msg"])
	assert.Equal(t, "order", record["service"])
	assert.Equal(t, "o-1", record["order_id"])
}
