//go:build !windows

package orchcore

import (
	"os/exec"
	"syscall"
)

// setProcGroup configures cmd to run in its own process group so terminate
// can signal the whole subprocess tree rather than just the immediate child.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// signalChild sends sig to the child's process group, falling back to
// signaling only the direct child if the group lookup fails.
func signalChild(cmd *exec.Cmd, sig syscall.Signal) error {
	if cmd.Process == nil {
		return nil
	}
	if pgid, err := syscall.Getpgid(cmd.Process.Pid); err == nil {
		return syscall.Kill(-pgid, sig)
	}
	return cmd.Process.Signal(sig)
}

func terminatePolite(cmd *exec.Cmd) error {
	return signalChild(cmd, syscall.SIGTERM)
}

func terminateForce(cmd *exec.Cmd) error {
	return signalChild(cmd, syscall.SIGKILL)
}

// extractExitCode inspects a cmd.Wait() error and returns the child's exit
// code, mirroring the WaitStatus inspection the teacher's runner/process
// packages perform.
func extractExitCode(err error) int {
	if err == nil {
		return 0
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return -1
	}
	if waitStatus, ok := exitErr.Sys().(syscall.WaitStatus); ok {
		if waitStatus.Signaled() {
			return 128 + int(waitStatus.Signal())
		}
		return waitStatus.ExitStatus()
	}
	return exitErr.ExitCode()
}
