//go:build windows

package orchcore

import "os/exec"

// Windows has no process-group signaling story compatible with the
// pty-backed spawn this core requires (see spawn_windows.go); these are
// unreachable in practice since spawnChild fails first, but are kept as
// real implementations rather than panics for defensiveness.
func setProcGroup(cmd *exec.Cmd) {}

func terminatePolite(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

func terminateForce(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

func extractExitCode(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
