//go:build windows

package executor

import "os/exec"

// configureProcess keeps the default exec.Cmd cancellation, which kills the
// direct child process.
func configureProcess(cmd *exec.Cmd) {}

// killGroup is a no-op; Windows has no process groups to sweep.
func killGroup(cmd *exec.Cmd) bool { return false }
