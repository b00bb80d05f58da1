package health

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolboyqueue/gemwrap/internal/locator"
)

func writeVersionStub(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs are not portable to windows")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "gemini")
	script := "#!/bin/sh\nif [ \"$1\" = \"--version\" ]; then echo 'gemini 0.4.1'; fi\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestCheckExecutable_Found(t *testing.T) {
	stub := writeVersionStub(t)

	result := CheckExecutable(locator.New(stub))
	assert.True(t, result.Passed)
	assert.Equal(t, "Gemini CLI", result.Name)
	assert.Contains(t, result.Message, stub)
	assert.Contains(t, result.Message, "explicit")
}

func TestCheckExecutable_Missing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	t.Setenv(locator.EnvCLIPath, "")
	t.Setenv("HOME", t.TempDir())

	result := CheckExecutable(locator.New(""))
	assert.False(t, result.Passed)
	assert.Contains(t, result.Message, "not found")
}

func TestCheckVersion(t *testing.T) {
	stub := writeVersionStub(t)

	result := CheckVersion(context.Background(), locator.New(stub))
	assert.True(t, result.Passed)
	assert.Equal(t, "gemini 0.4.1", result.Message)
}

func TestCheckConfig_Valid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	result := CheckConfig("")
	assert.True(t, result.Passed, result.Message)
}

func TestCheckConfig_Invalid(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	configPath := filepath.Join(tmpDir, "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{"max_retries": 99}`), 0o644))

	result := CheckConfig(configPath)
	assert.False(t, result.Passed)
	assert.Contains(t, result.Message, "validation failed")
}

func TestRun_AllChecksPass(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	stub := writeVersionStub(t)

	report := Run(context.Background(), locator.New(stub), "")
	require.NotNil(t, report)
	assert.True(t, report.Passed)
	assert.Len(t, report.Checks, 3)
}

func TestRun_SkipsVersionWhenBinaryMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	t.Setenv(locator.EnvCLIPath, "")
	t.Setenv("HOME", t.TempDir())

	report := Run(context.Background(), locator.New(""), "")
	assert.False(t, report.Passed)
	assert.Len(t, report.Checks, 2)
}

func TestFormatReport(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		report   *Report
		expected []string
	}{
		"all checks pass": {
			report: &Report{
				Checks: []CheckResult{
					{Name: "Gemini CLI", Passed: true, Message: "found at /usr/local/bin/gemini (via path)"},
					{Name: "Configuration", Passed: true, Message: "configuration loads and validates"},
				},
				Passed: true,
			},
			expected: []string{
				"✓ Gemini CLI: found at /usr/local/bin/gemini (via path)",
				"✓ Configuration: configuration loads and validates",
			},
		},
		"one check fails": {
			report: &Report{
				Checks: []CheckResult{
					{Name: "Gemini CLI", Passed: false, Message: "gemini CLI not found"},
					{Name: "Configuration", Passed: true, Message: "configuration loads and validates"},
				},
				Passed: false,
			},
			expected: []string{
				"✗ Gemini CLI: gemini CLI not found",
				"✓ Configuration: configuration loads and validates",
			},
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			output := FormatReport(tc.report)
			for _, line := range tc.expected {
				assert.True(t, strings.Contains(output, line), "output %q missing %q", output, line)
			}
		})
	}
}
