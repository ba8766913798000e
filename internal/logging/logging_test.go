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
)

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, l)

	l, err = ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, l)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewFileAndStream(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "examprep.log")
	var stream bytes.Buffer

	log, closeFn, err := New(Options{Level: "info", Format: "json", File: file, Stream: &stream})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("exam submitted", zap.Int("score", 80))
	require.NoError(t, closeFn())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "exam submitted", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.EqualValues(t, 80, entry["score"])

	assert.Contains(t, stream.String(), `"msg":"exam submitted"`)
	assert.NotContains(t, stream.String(), "hidden")
}

func TestNewConsole(t *testing.T) {
	var stream bytes.Buffer
	log, closeFn, err := New(Options{Level: "debug", Stream: &stream})
	require.NoError(t, err)
	log.Debug("tick")
	require.NoError(t, closeFn())
	assert.Contains(t, stream.String(), "tick")
}

func TestNewNoSinks(t *testing.T) {
	log, closeFn, err := New(Options{})
	require.NoError(t, err)
	log.Info("nowhere")
	assert.NoError(t, closeFn())
}

func TestNewRejectsFormat(t *testing.T) {
	_, _, err := New(Options{Format: "xml", Stream: &bytes.Buffer{}})
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := zap.NewExample()
	assert.Same(t, l, OrNop(l))
}
