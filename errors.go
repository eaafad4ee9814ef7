package orchcore

import "errors"

// Sentinel errors returned by constructors and factories. Every observable
// runtime failure of a spawned child instead surfaces through
// ProcessResult.ExitCode — these are reserved for invalid arguments caught
// before any process is spawned.
var (
	// ErrEmptyPrompt is returned when a ProcessRunner is constructed with an
	// empty prompt.
	ErrEmptyPrompt = errors.New("orchcore: prompt must not be empty")

	// ErrEmptyProcessID is returned when a ProcessRunner is constructed with
	// an empty process id.
	ErrEmptyProcessID = errors.New("orchcore: process id must not be empty")

	// ErrWorkingDirNotFound is returned when working_dir does not exist.
	ErrWorkingDirNotFound = errors.New("orchcore: working directory does not exist")

	// ErrEmptyPatternName is returned when a Session is constructed with an
	// empty pattern name.
	ErrEmptyPatternName = errors.New("orchcore: pattern name must not be empty")

	// ErrSessionDirExists is returned when the session directory already
	// exists at construction time.
	ErrSessionDirExists = errors.New("orchcore: session directory already exists")

	// ErrSessionClosed is returned by CreateRunner after Session.Close.
	ErrSessionClosed = errors.New("orchcore: session is closed")

	// ErrDuplicateProcessID is returned when CreateRunner is given a
	// process id already used within the session.
	ErrDuplicateProcessID = errors.New("orchcore: duplicate process id in session")

	// ErrInvalidBatchSize is returned by RunBatched when batch_size < 1.
	ErrInvalidBatchSize = errors.New("orchcore: batch size must be at least 1")

	// ErrUnsupportedPlatform is returned by the runner's spawn phase on
	// platforms without a pseudo-terminal implementation (see spawn_windows.go).
	ErrUnsupportedPlatform = errors.New("orchcore: pty-backed process spawning is not supported on this platform")
)
