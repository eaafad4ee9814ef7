package orchcore

import "time"

// ProcessResult is the immutable outcome of exactly one ProcessRunner.Run
// call. Zero value is never returned to a caller; it is always built by
// either a completed run or a strategy's synthesized-failure path.
type ProcessResult struct {
	// ProcessID identifies which runner produced this result, unique
	// within the owning Session.
	ProcessID string

	// ExitCode is 0 on success, a positive child exit code, or -1 for an
	// internal failure (spawn error, timeout, crash).
	ExitCode int

	// Stdout is the full captured standard output, in emission order.
	Stdout string

	// Stderr is the full captured standard error, in emission order.
	Stderr string

	// DurationSeconds is wall-clock time from spawn to reap.
	DurationSeconds float64

	// TimedOut is true iff termination was triggered by the timeout path.
	TimedOut bool

	// StartedAt is the wall-clock time, in Unix seconds, at which the runner
	// began spawning, so callers can check sequential and batch ordering.
	StartedAt float64
}

// Success reports whether the run completed with exit code 0.
func (r ProcessResult) Success() bool {
	return r.ExitCode == 0
}

// synthesizedFailure builds a ProcessResult for a runner that never ran
// (e.g. an internal error a strategy catches before/instead of calling
// Run), or that a strategy decided not to run at all.
func synthesizedFailure(processID, stderr string, duration float64) ProcessResult {
	return ProcessResult{
		ProcessID:       processID,
		ExitCode:        -1,
		Stderr:          stderr,
		DurationSeconds: duration,
		StartedAt:       float64(time.Now().UnixNano()) / 1e9,
	}
}
