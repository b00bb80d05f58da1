package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schoolboyqueue/gemwrap/internal/config"
	"github.com/schoolboyqueue/gemwrap/internal/health"
	"github.com/schoolboyqueue/gemwrap/internal/locator"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks for the gemwrap environment",
	Long: `Run health checks to verify the environment is ready for queries.

This command checks:
  - where the gemini binary resolves from (explicit path, env, PATH,
    well-known locations, npm global installs)
  - that the resolved binary answers --version
  - that the configuration loads and validates

Each check displays a ✓ if passed or ✗ with an error message if failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cliPath, _ := cmd.Flags().GetString("cli-path")

		if cliPath == "" {
			// A cli_path from config steers the locator the same way the
			// query command would resolve it.
			if cfg, err := config.Load(configPath); err == nil {
				cliPath = cfg.CLIPath
			}
		}

		report := health.Run(cmd.Context(), locator.New(cliPath), configPath)
		fmt.Print(health.FormatReport(report))

		if !report.Passed {
			for _, check := range report.Checks {
				if check.Name == "Gemini CLI" && !check.Passed {
					return NewExitError(ExitMissingExecutable)
				}
			}
			return NewExitError(ExitFailure)
		}
		return nil
	},
}

func init() {
	doctorCmd.GroupID = GroupConfiguration
	rootCmd.AddCommand(doctorCmd)
}
