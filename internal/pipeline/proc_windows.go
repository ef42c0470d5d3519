//go:build windows

package pipeline

import (
	"errors"
	"os"
	"os/exec"
)

// Windows cannot hand extra descriptors to a child, so the MERGED
// topology is unavailable there.
const inheritedPipesSupported = false

func configureProcess(cmd *exec.Cmd) {}

func interruptProcess(cmd *exec.Cmd) error { return killProcess(cmd) }

func killProcess(cmd *exec.Cmd) error {
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}

	return nil
}

// There are no process groups to sweep; a reaped stage leaves nothing
// behind that can be tracked.
func processGroupAlive(cmd *exec.Cmd) bool { return false }
