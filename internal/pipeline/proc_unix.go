//go:build !windows

package pipeline

import (
	"errors"
	"os/exec"
	"syscall"
)

const inheritedPipesSupported = true

// configureProcess places the stage in its own process group so that
// any helpers it spawns are signalled along with it.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func interruptProcess(cmd *exec.Cmd) error {
	return signalGroup(cmd, syscall.SIGTERM)
}

func killProcess(cmd *exec.Cmd) error {
	return signalGroup(cmd, syscall.SIGKILL)
}

// processGroupAlive reports whether any process remains in the group led
// by the command, including once the leader itself has been reaped.
func processGroupAlive(cmd *exec.Cmd) bool {
	return syscall.Kill(-cmd.Process.Pid, 0) == nil
}

// signalGroup signals every process in the command's group. A group
// which has already emptied is not an error.
func signalGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	err := syscall.Kill(-cmd.Process.Pid, sig)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}

	return err
}
