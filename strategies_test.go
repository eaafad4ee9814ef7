package orchcore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kandev/orchcore"
)

func newRunner(t *testing.T, prompt, processID string) *orchcore.ProcessRunner {
	t.Helper()
	runner, err := orchcore.NewProcessRunner(prompt, processID, t.TempDir(), t.TempDir(), mockOpts(t))
	require.NoError(t, err)
	return runner
}

func TestRunParallel(t *testing.T) {
	t.Run("empty list returns nil", func(t *testing.T) {
		assert.Nil(t, orchcore.RunParallel(context.Background(), nil, 0))
	})

	t.Run("runs every runner and reports every id", func(t *testing.T) {
		runners := []*orchcore.ProcessRunner{
			newRunner(t, "one", "proc_1"),
			newRunner(t, "two", "proc_2"),
			newRunner(t, "FAIL:1 bad", "proc_3"),
		}

		results := orchcore.RunParallel(context.Background(), runners, 2)

		require.Len(t, results, 3)
		ids := map[string]orchcore.ProcessResult{}
		for _, r := range results {
			ids[r.ProcessID] = r
		}
		assert.True(t, ids["proc_1"].Success())
		assert.True(t, ids["proc_2"].Success())
		assert.False(t, ids["proc_3"].Success())
	})
}

func TestRunSequential(t *testing.T) {
	t.Run("passes output forward", func(t *testing.T) {
		runners := []*orchcore.ProcessRunner{
			newRunner(t, "first", "proc_1"),
			newRunner(t, "second", "proc_2"),
		}

		results := orchcore.RunSequential(context.Background(), runners, true, false)

		require.Len(t, results, 2)
		assert.Contains(t, results[0].Stdout, "first")
		// proc_2's prompt was prefixed with proc_1's stdout before spawning.
		assert.Contains(t, results[1].Stdout, "first")
		assert.Contains(t, results[1].Stdout, "second")
	})

	t.Run("stops on failure", func(t *testing.T) {
		runners := []*orchcore.ProcessRunner{
			newRunner(t, "FAIL:1 bad", "proc_1"),
			newRunner(t, "never runs", "proc_2"),
		}

		results := orchcore.RunSequential(context.Background(), runners, false, true)

		require.Len(t, results, 1)
		assert.False(t, results[0].Success())
	})
}

func TestRunWithFallback(t *testing.T) {
	t.Run("empty list fails fast", func(t *testing.T) {
		result := orchcore.RunWithFallback(context.Background(), nil, nil)
		assert.False(t, result.Success())
	})

	t.Run("returns the first success and skips the rest", func(t *testing.T) {
		workDir := t.TempDir()
		logDir := t.TempDir()

		failing, err := orchcore.NewProcessRunner("FAIL:1 nope", "proc_1", workDir, logDir, mockOpts(t))
		require.NoError(t, err)
		succeeding, err := orchcore.NewProcessRunner("works", "proc_2", workDir, logDir, mockOpts(t))
		require.NoError(t, err)
		neverStarted, err := orchcore.NewProcessRunner("SLEEP:10 late", "proc_3", workDir, logDir, mockOpts(t))
		require.NoError(t, err)

		result := orchcore.RunWithFallback(context.Background(), []*orchcore.ProcessRunner{failing, succeeding, neverStarted}, nil)

		assert.Equal(t, "proc_2", result.ProcessID)
		assert.True(t, result.Success())

		_, err = os.Stat(filepath.Join(logDir, "proc_3.log"))
		assert.True(t, os.IsNotExist(err), "a runner the fallback chain never reached must not have a log file")
	})
}

func TestRunBatched(t *testing.T) {
	t.Run("rejects invalid batch size", func(t *testing.T) {
		_, err := orchcore.RunBatched(context.Background(), nil, 0, false)
		assert.ErrorIs(t, err, orchcore.ErrInvalidBatchSize)
	})

	t.Run("empty list is a no-op", func(t *testing.T) {
		results, err := orchcore.RunBatched(context.Background(), nil, 2, false)
		require.NoError(t, err)
		assert.Nil(t, results)
	})

	t.Run("partitions into contiguous chunks", func(t *testing.T) {
		runners := []*orchcore.ProcessRunner{
			newRunner(t, "a", "proc_1"),
			newRunner(t, "b", "proc_2"),
			newRunner(t, "c", "proc_3"),
		}

		results, err := orchcore.RunBatched(context.Background(), runners, 2, false)

		require.NoError(t, err)
		require.Len(t, results, 3)
		for _, r := range results {
			assert.True(t, r.Success())
		}
		// Batch 1 is proc_1/proc_2 in completion order; batch 2 is proc_3.
		assert.ElementsMatch(t, []string{"proc_1", "proc_2"}, []string{results[0].ProcessID, results[1].ProcessID})
		assert.Equal(t, "proc_3", results[2].ProcessID)
	})
}
