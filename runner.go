package orchcore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kandev/orchcore/internal/logger"
)

// runnerState is the single-shot state machine described in spec.md §4.4:
// Pending -> Spawning -> Running -> Draining -> Reaped. A runner a strategy
// decides not to invoke at all (e.g. RunWithFallback's untried tail, or
// RunSequential after stopOnFailure) simply remains Pending forever; that
// is spec.md's terminal "Skipped" state, observable from outside only by
// the absence of a per-process log file, since Run is what creates it.
type runnerState int32

const (
	statePending runnerState = iota
	stateSpawning
	stateRunning
	stateDraining
	stateReaped
)

// ProcessRunner drives exactly one child process to completion. It is
// single-shot: Run must be called exactly once per instance.
type ProcessRunner struct {
	prompt     string
	processID  string
	workingDir string
	logDir     string
	opts       RunnerOptions

	correlationID string
	log           *logger.Logger

	mu       sync.Mutex
	state    runnerState
	cmd      *exec.Cmd
	started  chan struct{} // closed once cmd.Start() has returned successfully
	exited   chan struct{} // closed once cmd.Wait() has returned, by Run alone
	stopOnce sync.Once
	stopReq  chan struct{} // closed by Terminate() to request cancellation
}

// NewProcessRunner validates its arguments and returns a ProcessRunner
// ready to Run. log_dir is created if it does not already exist.
func NewProcessRunner(prompt, processID, workingDir, logDir string, opts RunnerOptions) (*ProcessRunner, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if strings.TrimSpace(processID) == "" {
		return nil, ErrEmptyProcessID
	}
	if _, err := os.Stat(workingDir); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWorkingDirNotFound, workingDir)
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("orchcore: create log dir %s: %w", logDir, err)
	}

	return &ProcessRunner{
		prompt:        prompt,
		processID:     processID,
		workingDir:    workingDir,
		logDir:        logDir,
		opts:          opts.resolve(),
		correlationID: uuid.NewString(),
		started:       make(chan struct{}),
		exited:        make(chan struct{}),
		stopReq:       make(chan struct{}),
	}, nil
}

func (r *ProcessRunner) setState(s runnerState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// ProcessID returns the runner's identifier.
func (r *ProcessRunner) ProcessID() string { return r.processID }

// Terminate idempotently requests cancellation: polite SIGTERM to the
// child's process group, escalating to SIGKILL after a grace period. Safe
// to call from another goroutine while Run is in flight, and safe to call
// more than once or before the child has spawned.
func (r *ProcessRunner) Terminate() {
	r.stopOnce.Do(func() { close(r.stopReq) })

	r.mu.Lock()
	cmd := r.cmd
	r.mu.Unlock()
	if cmd == nil || cmd.Process == nil {
		return
	}

	_ = terminatePolite(cmd)
	select {
	case <-r.exited:
	case <-time.After(DefaultTerminateGracePeriod):
		_ = terminateForce(cmd)
	}
}

// buildArgs computes the child's argument vector per spec.md §4.2 step 2.
// These literal flags are the compatibility surface with the external
// agent CLI and are not configurable by this core.
func buildArgs(prompt, model string) []string {
	args := []string{"--print", "--permission-mode", "bypassPermissions", prompt}
	if model != "" {
		args = append(args, "--model", model)
	}
	return args
}

// Run drives the child process to completion and returns its result. It
// never panics or returns an error to the caller for expected subprocess
// failures — every such failure is reflected in the returned
// ProcessResult per spec.md §4.2's surface-don't-propagate policy.
func (r *ProcessRunner) Run(ctx context.Context) ProcessResult {
	spawnedAt := time.Now()

	log, err := logger.New(logger.Config{FilePath: filepath.Join(r.logDir, r.processID+".log")})
	if err != nil {
		return synthesizedFailure(r.processID, fmt.Sprintf("open process log: %v", err), time.Since(spawnedAt).Seconds())
	}
	r.log = log
	defer func() { _ = r.log.Close() }()

	r.setState(stateSpawning)
	r.log.Info("lifecycle", fmt.Sprintf("spawning process_id=%s correlation_id=%s", r.processID, r.correlationID))

	cmd := exec.CommandContext(ctx, r.opts.AgentBinary, buildArgs(r.prompt, r.opts.Model)...)
	cmd.Dir = r.workingDir
	cmd.Env = os.Environ()

	master, stdoutPipe, stderrPipe, err := spawnChild(cmd)
	if err != nil {
		r.log.Error("lifecycle", fmt.Sprintf("spawn failed: %v", err))
		return synthesizedFailure(r.processID, fmt.Sprintf("spawn failed: %v", err), time.Since(spawnedAt).Seconds())
	}

	r.mu.Lock()
	r.cmd = cmd
	r.mu.Unlock()
	close(r.started)
	r.setState(stateRunning)

	var stdoutBuf, stderrBuf strings.Builder
	var bufMu sync.Mutex // protects the two builders from concurrent append

	var workers sync.WaitGroup
	workers.Add(2)
	go r.drain(&workers, stdoutPipe, "stdout", &stdoutBuf, &bufMu)
	go r.drain(&workers, stderrPipe, "stderr", &stderrBuf, &bufMu)

	feederDone := make(chan struct{})
	go r.feedStdin(master, feederDone)

	waitDone := make(chan error, 1)
	go func() { waitDone <- cmd.Wait() }()

	var timedOut bool
	var waitErr error

	if r.opts.TimeoutSeconds != nil {
		select {
		case waitErr = <-waitDone:
		case <-time.After(time.Duration(*r.opts.TimeoutSeconds * float64(time.Second))):
			timedOut = true
			r.log.Warn("lifecycle", fmt.Sprintf("timeout after %.3fs, terminating", *r.opts.TimeoutSeconds))
			_ = terminatePolite(cmd)
			select {
			case waitErr = <-waitDone:
			case <-time.After(DefaultTerminateGracePeriod):
				_ = terminateForce(cmd)
				waitErr = <-waitDone
			}
		}
	} else {
		waitErr = <-waitDone
	}
	close(r.exited)

	r.setState(stateDraining)

	// Unblock the stdin feeder. The output workers reach EOF on their own
	// once the child's fd table closes on exit; that does not depend on
	// cmd.Wait, since the pipes are parent-owned (see spawnChild). Only
	// after both workers have joined do we close our read ends, so a
	// buffered tail written just before exit can never be discarded out
	// from under the drainers (spec.md §4.2 step 6, reap step 2).
	_ = master.Close()
	<-feederDone
	workers.Wait()
	_ = stdoutPipe.Close()
	_ = stderrPipe.Close()

	r.setState(stateReaped)

	bufMu.Lock()
	stdoutText := stdoutBuf.String()
	stderrText := stderrBuf.String()
	bufMu.Unlock()

	duration := time.Since(spawnedAt).Seconds()

	startedAt := float64(spawnedAt.UnixNano()) / 1e9

	if timedOut {
		stderrText += fmt.Sprintf("\n[orchcore] timed out after %.3f seconds\n", *r.opts.TimeoutSeconds)
		r.log.Error("lifecycle", "timed out")
		return ProcessResult{
			ProcessID:       r.processID,
			ExitCode:        -1,
			Stdout:          stdoutText,
			Stderr:          stderrText,
			DurationSeconds: duration,
			TimedOut:        true,
			StartedAt:       startedAt,
		}
	}

	select {
	case <-r.stopReq:
		r.log.Info("lifecycle", "terminated by caller")
	default:
	}

	exitCode := extractExitCode(waitErr)
	r.log.Info("lifecycle", fmt.Sprintf("reaped exit_code=%d duration=%.3fs", exitCode, duration))

	return ProcessResult{
		ProcessID:       r.processID,
		ExitCode:        exitCode,
		Stdout:          stdoutText,
		Stderr:          stderrText,
		DurationSeconds: duration,
		StartedAt:       startedAt,
	}
}

// drain reads one of the child's output streams in raw chunks until EOF,
// appending every byte read (in order, verbatim) to buf so
// ProcessResult.Stdout/Stderr are a byte-faithful copy of what the child
// wrote — no stripped '\r', no synthesized trailing newline — per spec.md
// §3's "preserving order and newlines" and P3's "no loss, no reorder".
// Line splitting happens separately, only to tag complete lines for the
// [stream] process log and console mirror; a final unterminated chunk is
// flushed to the log/console as-is once the reader hits EOF. Exactly one
// drain goroutine exists per stream, so ordering within a stream is
// guaranteed by the single reader.
func (r *ProcessRunner) drain(wg *sync.WaitGroup, reader io.Reader, stream string, buf *strings.Builder, bufMu *sync.Mutex) {
	defer wg.Done()

	console := os.Stdout
	if stream == "stderr" {
		console = os.Stderr
	}
	tag := "[" + stream + "]"

	chunk := make([]byte, 64*1024)
	var pending []byte

	emitLine := func(line []byte) {
		r.log.Debug(stream, tag+" "+string(line))
		if r.opts.StreamOutput {
			fmt.Fprintln(console, string(line))
		}
	}

	for {
		n, readErr := reader.Read(chunk)
		if n > 0 {
			data := chunk[:n]

			bufMu.Lock()
			buf.Write(data)
			bufMu.Unlock()

			pending = append(pending, data...)
			for {
				i := bytes.IndexByte(pending, '\n')
				if i < 0 {
					break
				}
				emitLine(bytes.TrimSuffix(pending[:i], []byte("\r")))
				pending = pending[i+1:]
			}
		}
		if readErr != nil {
			if readErr != io.EOF {
				r.log.Error(stream, fmt.Sprintf("reader error: %v", readErr))
			}
			break
		}
	}
	if len(pending) > 0 {
		emitLine(pending)
	}
}

// feedStdin writes a single newline into the pty master every interval to
// keep the child from blocking on a stdin read, until the master is
// closed by Run's reap phase. It never detaches: Run always receives on
// done before returning, guaranteeing no leaked goroutine (P2).
func (r *ProcessRunner) feedStdin(master *os.File, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.opts.StdinFeedInterval)
	defer ticker.Stop()

	for range ticker.C {
		if _, err := master.Write([]byte("\n")); err != nil {
			return
		}
	}
}
