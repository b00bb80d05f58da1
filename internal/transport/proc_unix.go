//go:build !windows

package transport

import (
	"os/exec"
	"syscall"
)

// setProcessGroup places the child in its own process group so termination
// reaches any descendants it spawned.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// terminate sends SIGTERM to the child's process group.
func terminate(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM); err != nil {
		// Group kill can fail if the child never got its own group; fall
		// back to the single process.
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	return nil
}

// killGroup sends SIGKILL to everything left in the child's process group.
// WaitDelay's own escalation only reaches the direct child, so descendants
// that ignored SIGTERM are swept here. ESRCH when the group is already gone
// is fine.
func killGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
