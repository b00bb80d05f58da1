//go:build windows

package transport

import "os/exec"

// setProcessGroup is a no-op on windows; job objects would be required to
// group descendants and the CLI does not spawn long-lived children there.
func setProcessGroup(_ *exec.Cmd) {}

// terminate kills the child process directly.
func terminate(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

// killGroup forcefully kills the direct child; without job objects there is
// no group to sweep on windows.
func killGroup(cmd *exec.Cmd) {
	if cmd.Process != nil {
		cmd.Process.Kill()
	}
}
