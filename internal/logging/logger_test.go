package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput(LevelWarn, FormatText, &buf)

	logger.Info("info should be dropped")
	logger.Warn("warn should appear")

	out := buf.String()
	assert.NotContains(t, out, "info should be dropped")
	assert.Contains(t, out, "warn should appear")
}

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput(LevelDebug, FormatJSON, &buf)

	logger.WithComponent("storage").WithField("key", "theme").WithError(errors.New("boom")).Info("write failed")

	var entry LogEntry
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "info", entry.Level)
	assert.Equal(t, "write failed", entry.Message)
	assert.Equal(t, "storage", entry.Fields["component"])
	assert.Equal(t, "theme", entry.Fields["key"])
	assert.Equal(t, "boom", entry.Fields["error"])
}

func TestLogger_DerivedLoggersDoNotShareFields(t *testing.T) {
	var buf bytes.Buffer
	root := NewLoggerWithOutput(LevelInfo, FormatText, &buf)

	_ = root.WithField("a", 1)
	root.Info("plain")

	assert.False(t, strings.Contains(buf.String(), "fields="), "root logger picked up a derived field: %s", buf.String())
}

func TestLogger_SetLevelAffectsDerived(t *testing.T) {
	var buf bytes.Buffer
	root := NewLoggerWithOutput(LevelInfo, FormatText, &buf)
	child := root.WithComponent("points")

	root.SetLevel(LevelError)
	child.Warn("dropped")

	assert.Empty(t, buf.String())
}

func TestFromContext(t *testing.T) {
	logger := Discard()
	ctx := WithLogger(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestParseLogLevelAndFormat(t *testing.T) {
	assert.Equal(t, LevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, LevelInfo, ParseLogLevel("loud"))
	assert.Equal(t, FormatText, ParseLogFormat("text"))
	assert.Equal(t, FormatJSON, ParseLogFormat("yaml"))
}
