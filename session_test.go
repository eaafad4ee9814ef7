package orchcore_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kandev/orchcore"
)

func TestNewSession_CreatesLayout(t *testing.T) {
	workDir := t.TempDir()
	logRoot := t.TempDir()

	session, err := orchcore.NewSession("demo", workDir, logRoot, "", "", 0, false)
	require.NoError(t, err)
	defer session.Close()

	assert.Contains(t, session.SessionID(), "demo_")
	assert.DirExists(t, session.LogDir())
	assert.FileExists(t, filepath.Join(session.LogDir(), "session.log"))
	assert.FileExists(t, filepath.Join(session.LogDir(), "session.meta"))
}

func TestNewSession_RejectsDuplicateDir(t *testing.T) {
	workDir := t.TempDir()
	logRoot := t.TempDir()

	// NewSession's directory name is patternName_<second-resolution
	// timestamp>; pre-create the directory it is about to compute so the
	// very next call collides deterministically.
	expectedDir := filepath.Join(logRoot, "demo_"+time.Now().UTC().Format("20060102T150405Z"))
	require.NoError(t, os.MkdirAll(expectedDir, 0o755))

	_, err := orchcore.NewSession("demo", workDir, logRoot, "", "", 0, false)
	assert.ErrorIs(t, err, orchcore.ErrSessionDirExists)
}

func TestSession_CreateRunner_AutoAssignsIDs(t *testing.T) {
	workDir := t.TempDir()
	logRoot := t.TempDir()

	session, err := orchcore.NewSession("demo", workDir, logRoot, "", "", 0, false)
	require.NoError(t, err)
	defer session.Close()

	r1, err := session.CreateRunner("hello", "", nil)
	require.NoError(t, err)
	r2, err := session.CreateRunner("hello", "", nil)
	require.NoError(t, err)

	assert.Equal(t, "proc_1", r1.ProcessID())
	assert.Equal(t, "proc_2", r2.ProcessID())
}

func TestSession_CreateRunner_RejectsDuplicateID(t *testing.T) {
	workDir := t.TempDir()
	logRoot := t.TempDir()

	session, err := orchcore.NewSession("demo", workDir, logRoot, "", "", 0, false)
	require.NoError(t, err)
	defer session.Close()

	_, err = session.CreateRunner("hello", "fixed", nil)
	require.NoError(t, err)

	_, err = session.CreateRunner("hello", "fixed", nil)
	assert.ErrorIs(t, err, orchcore.ErrDuplicateProcessID)
}

func TestSession_CreateRunner_RejectsAfterClose(t *testing.T) {
	workDir := t.TempDir()
	logRoot := t.TempDir()

	session, err := orchcore.NewSession("demo", workDir, logRoot, "", "", 0, false)
	require.NoError(t, err)
	require.NoError(t, session.Close())

	_, err = session.CreateRunner("hello", "", nil)
	assert.ErrorIs(t, err, orchcore.ErrSessionClosed)
}
