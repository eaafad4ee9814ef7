package orchcore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kandev/orchcore"
)

func mockOpts(t *testing.T) orchcore.RunnerOptions {
	return orchcore.RunnerOptions{
		AgentBinary: mustBuildMockAgent(t),
	}
}

func TestNewProcessRunner_ValidatesArguments(t *testing.T) {
	workDir := t.TempDir()
	logDir := t.TempDir()

	t.Run("rejects empty prompt", func(t *testing.T) {
		_, err := orchcore.NewProcessRunner("", "proc_1", workDir, logDir, orchcore.RunnerOptions{})
		assert.ErrorIs(t, err, orchcore.ErrEmptyPrompt)
	})

	t.Run("rejects empty process id", func(t *testing.T) {
		_, err := orchcore.NewProcessRunner("hello", "", workDir, logDir, orchcore.RunnerOptions{})
		assert.ErrorIs(t, err, orchcore.ErrEmptyProcessID)
	})

	t.Run("rejects missing working directory", func(t *testing.T) {
		_, err := orchcore.NewProcessRunner("hello", "proc_1", filepath.Join(workDir, "nope"), logDir, orchcore.RunnerOptions{})
		assert.ErrorIs(t, err, orchcore.ErrWorkingDirNotFound)
	})

	t.Run("creates the log directory", func(t *testing.T) {
		nestedLogDir := filepath.Join(logDir, "nested")
		_, err := orchcore.NewProcessRunner("hello", "proc_1", workDir, nestedLogDir, orchcore.RunnerOptions{})
		require.NoError(t, err)
		info, err := os.Stat(nestedLogDir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestProcessRunner_Run_Success(t *testing.T) {
	workDir := t.TempDir()
	logDir := t.TempDir()

	runner, err := orchcore.NewProcessRunner("hello world", "proc_1", workDir, logDir, mockOpts(t))
	require.NoError(t, err)

	result := runner.Run(context.Background())

	assert.True(t, result.Success())
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "proc_1", result.ProcessID)
	assert.Contains(t, result.Stdout, "hello world")
	assert.False(t, result.TimedOut)
	assert.NotZero(t, result.StartedAt)

	_, err = os.Stat(filepath.Join(logDir, "proc_1.log"))
	assert.NoError(t, err, "Run must write a per-process log file")
}

func TestProcessRunner_Run_NeverCalled_NoLogFile(t *testing.T) {
	workDir := t.TempDir()
	logDir := t.TempDir()

	_, err := orchcore.NewProcessRunner("hello", "proc_never", workDir, logDir, mockOpts(t))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(logDir, "proc_never.log"))
	assert.True(t, os.IsNotExist(err), "constructing a runner must not create its log file")
}

func TestProcessRunner_Run_NonZeroExit(t *testing.T) {
	workDir := t.TempDir()
	logDir := t.TempDir()

	runner, err := orchcore.NewProcessRunner("FAIL:3 boom", "proc_fail", workDir, logDir, mockOpts(t))
	require.NoError(t, err)

	result := runner.Run(context.Background())

	assert.False(t, result.Success())
	assert.Equal(t, 3, result.ExitCode)
	assert.Contains(t, result.Stderr, "boom")
}

func TestProcessRunner_Run_Model(t *testing.T) {
	workDir := t.TempDir()
	logDir := t.TempDir()

	opts := mockOpts(t)
	opts.Model = "opus"
	runner, err := orchcore.NewProcessRunner("ping", "proc_model", workDir, logDir, opts)
	require.NoError(t, err)

	result := runner.Run(context.Background())

	assert.True(t, result.Success())
	assert.Contains(t, result.Stdout, "model=opus")
}

func TestProcessRunner_Run_Timeout(t *testing.T) {
	workDir := t.TempDir()
	logDir := t.TempDir()

	timeout := 0.2
	opts := mockOpts(t)
	opts.TimeoutSeconds = &timeout
	runner, err := orchcore.NewProcessRunner("HANG", "proc_hang", workDir, logDir, opts)
	require.NoError(t, err)

	result := runner.Run(context.Background())

	assert.True(t, result.TimedOut)
	assert.Equal(t, -1, result.ExitCode)
}

func TestProcessRunner_Terminate_BeforeRun(t *testing.T) {
	workDir := t.TempDir()
	logDir := t.TempDir()

	runner, err := orchcore.NewProcessRunner("hello", "proc_term", workDir, logDir, mockOpts(t))
	require.NoError(t, err)

	// Terminate is safe to call before Run ever starts the child.
	runner.Terminate()
	runner.Terminate() // idempotent
}

func TestProcessRunner_Terminate_DuringRun(t *testing.T) {
	workDir := t.TempDir()
	logDir := t.TempDir()

	runner, err := orchcore.NewProcessRunner("SLEEP:10 done", "proc_sleep", workDir, logDir, mockOpts(t))
	require.NoError(t, err)

	done := make(chan orchcore.ProcessResult, 1)
	go func() { done <- runner.Run(context.Background()) }()

	// Give the child a moment to spawn before asking it to stop.
	time.Sleep(100 * time.Millisecond)
	runner.Terminate()
	runner.Terminate()

	result := <-done
	assert.False(t, result.Success())
}
