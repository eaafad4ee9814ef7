// Package logger provides the dual-sink line writer used by the
// orchestration core: Log writes lines to a bound file, and MirrorLine
// copies lines verbatim to an optional console sink. It wraps go.uber.org/zap
// for the structured file sink so lines carry a level and a tag alongside
// the timestamp and message.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level mirrors the small set of levels the core actually emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Config controls how a Logger is constructed.
type Config struct {
	// FilePath is the log file this Logger appends to. Required.
	FilePath string
	// Console, when non-nil, receives a verbatim copy of every line passed
	// to MirrorLine. Structured Log() calls are never mirrored raw — only
	// MirrorLine is, matching the "mirror captured output lines" contract.
	Console io.Writer
}

// Logger is a thread-safe line writer with one always-on file sink and one
// optional raw console mirror. A single Logger may be shared by many
// concurrent callers (e.g. a Session's runners); writes never interleave
// within a line because the underlying zap core and the mirror writer are
// each protected by their own mutex (zap's WriteSyncer, and ours below).
type Logger struct {
	zap     *zap.Logger
	file    *os.File
	console io.Writer
	mu      sync.Mutex // serializes MirrorLine so raw lines never interleave
	closed  bool
}

// New creates a Logger appending to cfg.FilePath, creating the file if
// necessary. The parent directory must already exist.
func New(cfg Config) (*Logger, error) {
	f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open %s: %w", cfg.FilePath, err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.NameKey = "tag"
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(f)), zapcore.DebugLevel)
	zl := zap.New(core)

	return &Logger{
		zap:     zl,
		file:    f,
		console: cfg.Console,
	}, nil
}

// Log appends one line to the file sink: ISO8601 LEVEL TAG MESSAGE.
func (l *Logger) Log(line string, level Level, tag string) {
	ent := l.zap
	if tag != "" {
		ent = ent.Named(tag)
	}
	ent.Check(level.zapLevel(), line).Write()
}

func (l *Logger) Debug(tag, msg string) { l.Log(msg, LevelDebug, tag) }
func (l *Logger) Info(tag, msg string)  { l.Log(msg, LevelInfo, tag) }
func (l *Logger) Warn(tag, msg string)  { l.Log(msg, LevelWarn, tag) }
func (l *Logger) Error(tag, msg string) { l.Log(msg, LevelError, tag) }

// MirrorLine writes line verbatim (with a trailing newline) to the console
// sink, if one is configured. It never touches the file sink — callers
// that want both must also call Log.
func (l *Logger) MirrorLine(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.console == nil || l.closed {
		return
	}
	if _, err := io.WriteString(l.console, line); err != nil {
		return
	}
	if len(line) == 0 || line[len(line)-1] != '\n' {
		_, _ = io.WriteString(l.console, "\n")
	}
}

// Close flushes and closes the underlying file. Calls after the first are
// no-ops that return nil.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	_ = l.zap.Sync()
	return l.file.Close()
}
