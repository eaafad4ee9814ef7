//go:build !windows

package orchcore

import (
	"os"
	"os/exec"
)

// spawnChild starts cmd with its stdin attached to a pty slave and its
// stdout/stderr attached to ordinary pipes, matching the spawn-phase
// algorithm in spec.md §4.2: pty for stdin only, independent pipes for the
// two output streams so each can be drained by its own reader.
//
// The pipes are parent-owned (os.Pipe), not cmd.StdoutPipe/StderrPipe: Go's
// os/exec closes a StdoutPipe/StderrPipe read end from inside cmd.Wait,
// which can race the output-drain workers and truncate a buffered tail.
// Owning the pipes lets Run close the read ends itself, only after the
// drain workers have joined (spec.md §4.2 step 6, reap step 2).
//
// On return the child's ends (slave pty, write ends of both pipes) have
// already been closed in the parent; only the pty master and the pipe
// read ends are handed back, for the caller to close once draining is done.
func spawnChild(cmd *exec.Cmd) (master *os.File, stdout, stderr *os.File, err error) {
	ptyMaster, slave, err := openPtyPair()
	if err != nil {
		return nil, nil, nil, err
	}
	setChildStdin(cmd, slave)
	setProcGroup(cmd)

	stdoutRead, stdoutWrite, err := os.Pipe()
	if err != nil {
		_ = ptyMaster.Close()
		_ = slave.Close()
		return nil, nil, nil, err
	}
	stderrRead, stderrWrite, err := os.Pipe()
	if err != nil {
		_ = ptyMaster.Close()
		_ = slave.Close()
		_ = stdoutRead.Close()
		_ = stdoutWrite.Close()
		return nil, nil, nil, err
	}
	cmd.Stdout = stdoutWrite
	cmd.Stderr = stderrWrite

	if err := cmd.Start(); err != nil {
		_ = ptyMaster.Close()
		_ = slave.Close()
		_ = stdoutRead.Close()
		_ = stdoutWrite.Close()
		_ = stderrRead.Close()
		_ = stderrWrite.Close()
		return nil, nil, nil, err
	}

	// Parent no longer needs the slave end or its copies of the pipe write
	// ends; the child now holds its own references via its inherited fds.
	// The read ends stay open until the caller has drained them.
	_ = slave.Close()
	_ = stdoutWrite.Close()
	_ = stderrWrite.Close()

	return ptyMaster, stdoutRead, stderrRead, nil
}
