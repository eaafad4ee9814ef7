package orchcore

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kandev/orchcore/internal/logger"
)

// Session owns a named directory under logRoot containing one session.log
// and one <process_id>.log per runner it creates, and acts as a factory
// for pre-configured ProcessRunner instances. See spec.md §4.3.
type Session struct {
	patternName          string
	sessionID            string
	workingDir           string
	logRoot              string
	sessionDir           string
	defaultModel         string
	defaultStreamOutput  bool
	defaultOpts          RunnerOptions
	createdAt            time.Time

	log *logger.Logger

	mu      sync.Mutex
	closed  bool
	nextID  int
	procIDs map[string]struct{}
}

// sessionMeta is the one-shot metadata file written at construction time.
type sessionMeta struct {
	SessionID    string    `yaml:"session_id"`
	PatternName  string    `yaml:"pattern_name"`
	WorkingDir   string    `yaml:"working_dir"`
	DefaultModel string    `yaml:"default_model"`
	CreatedAt    time.Time `yaml:"created_at"`
}

// compactTimestamp renders now in a filesystem-safe, wallclock-compact form,
// e.g. 20260801T153045Z.
func compactTimestamp(now time.Time) string {
	return now.UTC().Format("20060102T150405Z")
}

// NewSession creates log_root/<pattern_name>_<timestamp>/ and opens
// session.log and session.meta within it. Construction fails if the
// session directory already exists. agentBinary and stdinFeedInterval seed
// every runner's RunnerOptions (see CreateRunner); a zero stdinFeedInterval
// falls back to DefaultStdinFeedInterval via RunnerOptions.resolve.
func NewSession(patternName, workingDir, logRoot, defaultModel, agentBinary string, stdinFeedInterval time.Duration, defaultStreamOutput bool) (*Session, error) {
	if strings.TrimSpace(patternName) == "" {
		return nil, ErrEmptyPatternName
	}
	if _, err := os.Stat(workingDir); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWorkingDirNotFound, workingDir)
	}

	now := time.Now()
	sessionID := patternName + "_" + compactTimestamp(now)
	sessionDir := filepath.Join(logRoot, sessionID)

	if _, err := os.Stat(sessionDir); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionDirExists, sessionDir)
	}
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return nil, fmt.Errorf("orchcore: create session dir: %w", err)
	}

	logCfg := logger.Config{FilePath: filepath.Join(sessionDir, "session.log")}
	if defaultStreamOutput {
		logCfg.Console = os.Stdout
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("orchcore: open session log: %w", err)
	}

	s := &Session{
		patternName:         patternName,
		sessionID:           sessionID,
		workingDir:          workingDir,
		logRoot:             logRoot,
		sessionDir:          sessionDir,
		defaultModel:        defaultModel,
		defaultStreamOutput: defaultStreamOutput,
		defaultOpts: RunnerOptions{
			Model:             defaultModel,
			StreamOutput:      defaultStreamOutput,
			AgentBinary:       agentBinary,
			StdinFeedInterval: stdinFeedInterval,
		}.resolve(),
		createdAt: now,
		log:       log,
		procIDs:   make(map[string]struct{}),
	}

	if err := s.writeMeta(); err != nil {
		_ = log.Close()
		return nil, err
	}

	return s, nil
}

func (s *Session) writeMeta() error {
	meta := sessionMeta{
		SessionID:    s.sessionID,
		PatternName:  s.patternName,
		WorkingDir:   s.workingDir,
		DefaultModel: s.defaultModel,
		CreatedAt:    s.createdAt,
	}
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("orchcore: marshal session meta: %w", err)
	}
	path := filepath.Join(s.sessionDir, "session.meta")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("orchcore: write session meta: %w", err)
	}
	return nil
}

// SessionID returns the session's unique identifier.
func (s *Session) SessionID() string { return s.sessionID }

// LogDir returns the session's log directory.
func (s *Session) LogDir() string { return s.sessionDir }

// WorkingDir returns the working directory passed to every child.
func (s *Session) WorkingDir() string { return s.workingDir }

// CreateRunner builds a ProcessRunner pre-configured with the session's
// working directory, log directory, and defaults. If processID is empty,
// the next unused "proc_<N>" id is assigned. Duplicate ids are rejected.
func (s *Session) CreateRunner(prompt, processID string, timeoutSeconds *float64) (*ProcessRunner, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}

	if processID == "" {
		for {
			s.nextID++
			candidate := "proc_" + strconv.Itoa(s.nextID)
			if _, taken := s.procIDs[candidate]; !taken {
				processID = candidate
				break
			}
		}
	} else if _, taken := s.procIDs[processID]; taken {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrDuplicateProcessID, processID)
	}
	s.procIDs[processID] = struct{}{}
	s.mu.Unlock()

	opts := s.defaultOpts
	opts.TimeoutSeconds = timeoutSeconds

	runner, err := NewProcessRunner(prompt, processID, s.workingDir, s.sessionDir, opts)
	if err != nil {
		return nil, err
	}
	s.Log(fmt.Sprintf("created runner %s", processID))
	return runner, nil
}

// Log appends a timestamped line to session.log, and mirrors it verbatim to
// the console when the session was constructed with streaming enabled.
// Concurrency is handled internally by the underlying Logger so concurrent
// runners never interleave a line (P10).
func (s *Session) Log(message string) {
	s.log.Info("session", message)
	s.log.MirrorLine(message)
}

// Summarize appends a textual summary of results to session.log: total
// count, success count, failure count, total wall time, and one line per
// process.
func (s *Session) Summarize(results []ProcessResult) {
	var succeeded, failed int
	var totalDuration float64
	var b strings.Builder

	for _, r := range results {
		if r.Success() {
			succeeded++
		} else {
			failed++
		}
		totalDuration += r.DurationSeconds
		fmt.Fprintf(&b, "  %s: exit=%d duration=%.3fs timed_out=%t\n", r.ProcessID, r.ExitCode, r.DurationSeconds, r.TimedOut)
	}

	summary := fmt.Sprintf(
		"summary total=%d succeeded=%d failed=%d total_duration=%.3fs\n%s",
		len(results), succeeded, failed, totalDuration, b.String(),
	)
	s.Log(summary)
}

// Close marks the session closed: no further runners may be created.
// Existing runners and their logs are unaffected.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.log.Close()
}
