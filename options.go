package orchcore

import "time"

// DefaultAgentBinary is the executable name used when RunnerOptions.AgentBinary
// is empty. It is resolved via exec.LookPath against PATH, or may be an
// absolute path supplied by the caller.
const DefaultAgentBinary = "claude"

// DefaultStdinFeedInterval is how often the stdin feeder writes a newline
// into the pty master to keep the child from blocking on a stdin read.
const DefaultStdinFeedInterval = 100 * time.Millisecond

// DefaultTerminateGracePeriod is how long terminate() waits for a polite
// SIGTERM to take effect before escalating to SIGKILL.
const DefaultTerminateGracePeriod = 5 * time.Second

// RunnerOptions holds the optional parameters shared by direct
// NewProcessRunner construction and Session.CreateRunner.
type RunnerOptions struct {
	// Model, if non-empty, is forwarded as "--model <Model>" to the child.
	Model string

	// StreamOutput mirrors every captured line to the caller's console when
	// true. The zero value leaves it off; DefaultRunnerOptions turns it on.
	StreamOutput bool

	// TimeoutSeconds bounds the run's wall-clock time. Nil means unbounded.
	TimeoutSeconds *float64

	// AgentBinary overrides DefaultAgentBinary for this runner.
	AgentBinary string

	// StdinFeedInterval overrides DefaultStdinFeedInterval for this runner.
	// Zero means use the default; this is primarily a test seam.
	StdinFeedInterval time.Duration
}

// DefaultRunnerOptions returns options with StreamOutput on and the package
// defaults for AgentBinary and StdinFeedInterval, for direct
// NewProcessRunner callers. NewSession does not use it; it builds its
// runners' options from its own arguments.
func DefaultRunnerOptions() RunnerOptions {
	return RunnerOptions{
		StreamOutput:      true,
		AgentBinary:       DefaultAgentBinary,
		StdinFeedInterval: DefaultStdinFeedInterval,
	}
}

func (o RunnerOptions) resolve() RunnerOptions {
	if o.AgentBinary == "" {
		o.AgentBinary = DefaultAgentBinary
	}
	if o.StdinFeedInterval <= 0 {
		o.StdinFeedInterval = DefaultStdinFeedInterval
	}
	return o
}
