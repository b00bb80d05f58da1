package health

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/schoolboyqueue/gemwrap/internal/config"
	"github.com/schoolboyqueue/gemwrap/internal/locator"
)

// versionProbeTimeout bounds the `gemini --version` call so doctor never hangs.
const versionProbeTimeout = 10 * time.Second

// CheckResult represents the result of a single health check
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
}

// Report contains all health check results
type Report struct {
	Checks []CheckResult
	Passed bool
}

// Run runs all health checks and returns a report
func Run(ctx context.Context, loc *locator.Locator, configPath string) *Report {
	report := &Report{
		Checks: make([]CheckResult, 0),
		Passed: true,
	}

	execCheck := CheckExecutable(loc)
	report.Checks = append(report.Checks, execCheck)
	if !execCheck.Passed {
		report.Passed = false
	}

	// Only probe the version when the binary was found.
	if execCheck.Passed {
		versionCheck := CheckVersion(ctx, loc)
		report.Checks = append(report.Checks, versionCheck)
		if !versionCheck.Passed {
			report.Passed = false
		}
	}

	configCheck := CheckConfig(configPath)
	report.Checks = append(report.Checks, configCheck)
	if !configCheck.Passed {
		report.Passed = false
	}

	return report
}

// CheckExecutable reports where the gemini CLI resolved from, or why it
// could not be found.
func CheckExecutable(loc *locator.Locator) CheckResult {
	resolved, err := loc.ResolvedInfo()
	if err != nil {
		return CheckResult{
			Name:    "Gemini CLI",
			Passed:  false,
			Message: err.Error(),
		}
	}

	return CheckResult{
		Name:    "Gemini CLI",
		Passed:  true,
		Message: fmt.Sprintf("found at %s (via %s)", resolved.Path, resolved.Source),
	}
}

// CheckVersion invokes the resolved binary with --version.
func CheckVersion(ctx context.Context, loc *locator.Locator) CheckResult {
	path, err := loc.Resolve()
	if err != nil {
		return CheckResult{
			Name:    "Gemini CLI version",
			Passed:  false,
			Message: err.Error(),
		}
	}

	probeCtx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(probeCtx, path, "--version").Output()
	if err != nil {
		return CheckResult{
			Name:    "Gemini CLI version",
			Passed:  false,
			Message: fmt.Sprintf("version probe failed: %v", err),
		}
	}

	return CheckResult{
		Name:    "Gemini CLI version",
		Passed:  true,
		Message: strings.TrimSpace(string(out)),
	}
}

// CheckConfig verifies the configuration loads and validates.
func CheckConfig(configPath string) CheckResult {
	if _, err := config.Load(configPath); err != nil {
		return CheckResult{
			Name:    "Configuration",
			Passed:  false,
			Message: err.Error(),
		}
	}

	return CheckResult{
		Name:    "Configuration",
		Passed:  true,
		Message: "configuration loads and validates",
	}
}

// FormatReport formats the health report for console output
func FormatReport(report *Report) string {
	var output string

	for _, check := range report.Checks {
		if check.Passed {
			output += fmt.Sprintf("✓ %s: %s\n", check.Name, check.Message)
		} else {
			output += fmt.Sprintf("✗ %s: %s\n", check.Name, check.Message)
		}
	}

	return output
}
