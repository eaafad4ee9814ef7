package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "process.log")

	log, err := New(Config{FilePath: path})
	require.NoError(t, err)

	log.Info("lifecycle", "spawned")
	log.Error("stderr", "boom")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "spawned")
	assert.Contains(t, string(data), "boom")
	assert.Contains(t, string(data), "INFO")
	assert.Contains(t, string(data), "ERROR")
}

func TestMirrorLine_WritesToConsole(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "session.log")

	log, err := New(Config{FilePath: path, Console: &buf})
	require.NoError(t, err)
	defer log.Close()

	log.MirrorLine("hello")
	log.MirrorLine("world\n")

	assert.Equal(t, "hello\nworld\n", buf.String())
}

func TestMirrorLine_NoConsoleConfigured(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")

	log, err := New(Config{FilePath: path})
	require.NoError(t, err)
	defer log.Close()

	// Must not panic when no console sink was configured.
	log.MirrorLine("ignored")
}

func TestClose_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "process.log")

	log, err := New(Config{FilePath: path})
	require.NoError(t, err)

	require.NoError(t, log.Close())
	require.NoError(t, log.Close())
}
