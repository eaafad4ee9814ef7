//go:build !windows

package orchcore

import (
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// openPtyPair allocates a pseudo-terminal pair for use as a child's stdin.
// Only the slave is ever attached to the child; stdout/stderr remain plain
// pipes so they can be captured and drained independently of the pty.
func openPtyPair() (master, slave *os.File, err error) {
	return pty.Open()
}

// setChildStdin wires the pty slave as cmd's stdin.
func setChildStdin(cmd *exec.Cmd, slave *os.File) {
	cmd.Stdin = slave
}
