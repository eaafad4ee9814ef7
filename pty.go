package orchcore

// The pty master is represented as a plain *os.File on POSIX platforms
// (see pty_unix.go); there is no cross-platform abstraction here because
// Windows has no pty-backed spawn path (see spawn_windows.go).
