// Package cli provides Cobra-based CLI commands for gemwrap.
// It defines the user-facing commands for querying the Gemini CLI (query),
// diagnosing the environment (doctor), and inspecting the build (version).
package cli

import (
	"github.com/spf13/cobra"
)

// Command group IDs for organizing help output
const (
	GroupQueries       = "queries"
	GroupConfiguration = "configuration"
)

var rootCmd = &cobra.Command{
	Use:   "gemwrap",
	Short: "OpenAI-style chat completions over the Gemini CLI",
	Long: `gemwrap wraps the gemini command-line tool behind a stable
chat-completion interface.

It locates the gemini binary, handles timeouts and transient failures
with retries, and renders answers either as plain text or as an
OpenAI-compatible JSON completion.`,
	Example: `  # Ask a question
  gemwrap query "Explain goroutines in one paragraph"

  # Stream the answer word by word
  gemwrap query --stream "Write a haiku about the sea"

  # Machine-readable output
  gemwrap query --json --model gemini-1.5-pro "2+2?"

  # Verify the environment
  gemwrap doctor`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddGroup(&cobra.Group{ID: GroupQueries, Title: "Queries:"})
	rootCmd.AddGroup(&cobra.Group{ID: GroupConfiguration, Title: "Configuration:"})

	rootCmd.SetHelpCommandGroupID(GroupConfiguration)
	rootCmd.SetCompletionCommandGroupID(GroupConfiguration)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default ~/.gemwrap/config.json)")
	rootCmd.PersistentFlags().String("cli-path", "", "Explicit path to the gemini binary")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}
