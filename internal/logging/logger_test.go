package logging

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONLines(t *testing.T) {
	dir := t.TempDir()

	l, err := New(dir)
	require.NoError(t, err)

	l.Info("connected to port %d", 9222)
	require.NoError(t, l.Close())

	data, err := os.ReadFile(l.GetLogPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"connected to port 9222"`)
	assert.Contains(t, string(data), `"level":"info"`)
}

func TestLogger_SetLevel(t *testing.T) {
	dir := t.TempDir()

	l, err := New(dir)
	require.NoError(t, err)

	l.Debug("hidden")
	l.SetLevel(DEBUG)
	l.Debug("visible")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(l.GetLogPath())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "visible")
}

func TestWriter_ForwardsAtInfo(t *testing.T) {
	dir := t.TempDir()

	l, err := New(dir)
	require.NoError(t, err)

	w := &logWriter{logger: l}
	n, err := w.Write([]byte("from std log"))
	require.NoError(t, err)
	assert.Equal(t, len("from std log"), n)
	require.NoError(t, l.Close())

	data, err := os.ReadFile(l.GetLogPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "from std log")
}

func useGlobal(t *testing.T, l *Logger) {
	t.Helper()
	prev := globalLogger
	globalLogger = l
	t.Cleanup(func() { globalLogger = prev })
}

func TestCallerPointsAtCallSite(t *testing.T) {
	l, err := New(t.TempDir())
	require.NoError(t, err)
	useGlobal(t, l)

	Info("via package func")
	Warn("via package warn")
	l.Info("via method")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(l.GetLogPath())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.Contains(t, line, `"caller":"logging/logger_test.go:`)
		assert.NotContains(t, line, "logging/logger.go")
	}
}
