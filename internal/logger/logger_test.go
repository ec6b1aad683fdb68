package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestWithContextAddsSession(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "info", "json")

	ctx := ContextWithSession(context.Background(), "sess-1", "John Snow")
	WithContext(ctx).Info("Ticket sold", "seat", 101)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Ticket sold", entry["msg"])
	assert.Equal(t, "sess-1", entry["session_id"])
	assert.Equal(t, "John Snow", entry["operator"])
	assert.Equal(t, float64(101), entry["seat"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, "warn", "text")

	Get().Info("hidden")
	assert.Empty(t, buf.String())

	Get().Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewSessionID(t *testing.T) {
	id := NewSessionID()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, NewSessionID())
}
