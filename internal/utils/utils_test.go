package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	assert.NotEqual(t, a, b)
	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestAppError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewUpstreamError("Generation backend failed", cause)

	assert.Equal(t, http.StatusBadGateway, err.StatusCode)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Generation backend failed: connection refused", err.Error())

	var appErr *AppError
	require.True(t, errors.As(error(NewNotFoundError("Session not found")), &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode)
	assert.Equal(t, "Session not found", appErr.Error())
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$180,000", FormatMoney(180000))
	assert.Equal(t, "$1,250,000", FormatMoney(1250000))
	assert.Equal(t, "$950", FormatMoney(950))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "WARN").With("component", "test")

	logger.Info("dropped")
	logger.Warn("kept", "session_id", "s1")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "test", record["component"])
	assert.Equal(t, "s1", record["session_id"])
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "verbose")

	logger.Debug("dropped")
	logger.Info("kept")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
}
