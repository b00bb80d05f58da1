// Package testutil provides stub Gemini CLI executables for tests. Each
// helper writes a small shell script to a temp directory so transport,
// retry, and completion tests can exercise real subprocess behavior without
// an installed CLI.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// StubScript writes an executable shell script with the given body and
// returns its path. Tests on windows should skip; the stubs are POSIX shell.
func StubScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub CLI scripts require a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "gemini")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write stub CLI: %v", err)
	}
	return path
}

// StubEcho returns a stub that prints stdout and exits 0.
func StubEcho(t *testing.T, stdout string) string {
	t.Helper()
	return StubScript(t, fmt.Sprintf("printf '%%s' %s", shellQuote(stdout)))
}

// StubFail returns a stub that prints stderr and exits with the given code.
func StubFail(t *testing.T, exitCode int, stderr string) string {
	t.Helper()
	return StubScript(t, fmt.Sprintf("printf '%%s' %s >&2\nexit %d", shellQuote(stderr), exitCode))
}

// StubSleep returns a stub that sleeps for the given number of seconds and
// then prints stdout. Used for timeout tests.
func StubSleep(t *testing.T, seconds int, stdout string) string {
	t.Helper()
	return StubScript(t, fmt.Sprintf("sleep %d\nprintf '%%s' %s", seconds, shellQuote(stdout)))
}

// StubFlaky returns a stub that fails with stderr for the first `failures`
// invocations and then succeeds with stdout. Invocations are counted in a
// file next to the script, so each call to StubFlaky gets independent state.
func StubFlaky(t *testing.T, failures int, stderr, stdout string) string {
	t.Helper()
	body := fmt.Sprintf(`count_file="$(dirname "$0")/count"
count=0
[ -f "$count_file" ] && count=$(cat "$count_file")
count=$((count + 1))
printf '%%s' "$count" > "$count_file"
if [ "$count" -le %d ]; then
  printf '%%s' %s >&2
  exit 1
fi
printf '%%s' %s`, failures, shellQuote(stderr), shellQuote(stdout))
	return StubScript(t, body)
}

// shellQuote single-quotes s for safe embedding in a shell script.
func shellQuote(s string) string {
	quoted := "'"
	for _, r := range s {
		if r == '\'' {
			quoted += `'\''`
			continue
		}
		quoted += string(r)
	}
	return quoted + "'"
}
