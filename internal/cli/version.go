package cli

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/schoolboyqueue/gemwrap/internal/build"
)

var versionPlain bool

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Display version information (v)",
	Long:    "Display version, commit, build date, and Go version information for gemwrap",
	Example: `  # Show version info
  gemwrap version

  # Plain output (for scripts)
  gemwrap version --plain`,
	Run: func(cmd *cobra.Command, args []string) {
		if versionPlain {
			printPlainVersion(cmd)
		} else {
			printPrettyVersion(cmd)
		}
	},
}

func init() {
	versionCmd.GroupID = GroupConfiguration
	versionCmd.Flags().BoolVar(&versionPlain, "plain", false, "Plain output without formatting")
	rootCmd.AddCommand(versionCmd)
}

// printPlainVersion prints a simple version output for scripting
func printPlainVersion(cmd *cobra.Command) {
	cmd.Printf("gemwrap %s\n", build.Version)
	cmd.Printf("commit: %s\n", truncateCommit(build.Commit))
	cmd.Printf("built: %s\n", build.BuildDate)
	cmd.Printf("go: %s\n", runtime.Version())
	cmd.Printf("platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// printPrettyVersion prints a styled version output
func printPrettyVersion(cmd *cobra.Command) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	cmd.Printf("%s %s\n", cyan("gemwrap"), build.Version)
	info := []struct {
		label string
		value string
	}{
		{"Commit", truncateCommit(build.Commit)},
		{"Built", build.BuildDate},
		{"Go", runtime.Version()},
		{"Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)},
	}
	for _, item := range info {
		cmd.Printf("  %s %s\n", yellow(fmt.Sprintf("%-10s", item.label)), item.value)
	}
}

// truncateCommit shortens commit hash if it's too long
func truncateCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}
