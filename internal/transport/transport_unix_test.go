//go:build !windows

package transport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	gemerrors "github.com/schoolboyqueue/gemwrap/internal/errors"
	"github.com/schoolboyqueue/gemwrap/internal/testutil"
)

// readPID polls for a pid file written by the stub and parses it.
func readPID(t *testing.T, path string) int {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(path)
		if err == nil && len(data) > 0 {
			pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
			if err != nil {
				t.Fatalf("parsing pid file %s: %v", path, err)
			}
			return pid
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("pid file %s never appeared", path)
	return 0
}

// waitGone waits for the process to disappear, allowing a short window for
// init to reap orphans after the group kill.
func waitGone(t *testing.T, pid int, label string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if err := syscall.Kill(pid, 0); err != nil {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Errorf("%s (pid %d) still running after Run returned", label, pid)
}

// A child that ignores SIGTERM and spawns a SIGTERM-ignoring descendant must
// not survive the forceful escalation: after Run returns with a timeout,
// nothing from the process tree may still be alive.
func TestRun_TimeoutKillsProcessTree(t *testing.T) {
	pidDir := t.TempDir()
	script := fmt.Sprintf(`echo $$ > "%[1]s/child.pid"
trap '' TERM
( trap '' TERM; sleep 60 ) &
echo $! > "%[1]s/desc.pid"
sleep 60`, pidDir)
	stub := testutil.StubScript(t, script)

	r := newRunner(t, stub, 0)
	r.grace = 500 * time.Millisecond

	opts := DefaultOptions()
	opts.Timeout = 300 * time.Millisecond

	start := time.Now()
	_, err := r.Run(context.Background(), "prompt", opts)
	if !gemerrors.IsTimeout(err) {
		t.Fatalf("Run() error = %v, want timeout", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("Run took %v, want prompt return after timeout plus grace", elapsed)
	}

	childPID := readPID(t, filepath.Join(pidDir, "child.pid"))
	descPID := readPID(t, filepath.Join(pidDir, "desc.pid"))
	waitGone(t, childPID, "child")
	waitGone(t, descPID, "descendant")
}

// Cancellation takes the same sweep path as a timeout.
func TestRun_CancellationKillsProcessTree(t *testing.T) {
	pidDir := t.TempDir()
	script := fmt.Sprintf(`echo $$ > "%[1]s/child.pid"
trap '' TERM
( trap '' TERM; sleep 60 ) &
echo $! > "%[1]s/desc.pid"
sleep 60`, pidDir)
	stub := testutil.StubScript(t, script)

	r := newRunner(t, stub, 0)
	r.grace = 500 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Cancel once the stub has started and registered itself.
		path := filepath.Join(pidDir, "child.pid")
		for i := 0; i < 300; i++ {
			if _, err := os.Stat(path); err == nil {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		cancel()
	}()

	_, err := r.Run(ctx, "prompt", DefaultOptions())
	if !gemerrors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}

	childPID := readPID(t, filepath.Join(pidDir, "child.pid"))
	descPID := readPID(t, filepath.Join(pidDir, "desc.pid"))
	waitGone(t, childPID, "child")
	waitGone(t, descPID, "descendant")
}
