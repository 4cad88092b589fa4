//go:build !windows

package executor

import (
	"errors"
	"os/exec"
	"syscall"
)

// configureProcess starts the shell in its own process group so that
// cancellation kills the shell and everything it spawned.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if err != nil && !errors.Is(err, syscall.ESRCH) {
			return cmd.Process.Kill()
		}
		return nil
	}
}

// killGroup sends SIGKILL to whatever is still running in the shell's
// process group after the shell has been reaped. It reports whether any
// process was signalled.
func killGroup(cmd *exec.Cmd) bool {
	if cmd.Process == nil {
		return false
	}
	return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL) == nil
}
