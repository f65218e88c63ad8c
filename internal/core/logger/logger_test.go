package logger

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

func TestNewWritesServiceField(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup := New(Options{Level: "info", JSON: true, Service: "api", Stdout: zapcore.AddSync(&buf)})
	l.Debug("hidden")
	l.Info("ticket issued", zap.String("event_id", "e1"))
	cleanup()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "ticket issued", entry["msg"])
	assert.Equal(t, "api", entry["service"])
	assert.Equal(t, "e1", entry["event_id"])
}

func TestNewWithFileRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "eventlink.log")
	l, cleanup := New(Options{
		Level:  "debug",
		Stdout: zapcore.AddSync(&bytes.Buffer{}),
		File:   FileRotate{Enable: true, Filename: path, MaxSizeMB: 1},
	})
	l.Warn("payout requested")
	cleanup()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"payout requested"`)
}

func TestToWriter(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup := New(Options{Level: "info", JSON: true, Stdout: zapcore.AddSync(&buf)})
	defer cleanup()

	_, err := ToWriter(l, zapcore.ErrorLevel).Write([]byte("gin error\n"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"msg":"gin error"`)
	assert.Contains(t, buf.String(), `"level":"error"`)
}
