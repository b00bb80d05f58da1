package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/schoolboyqueue/gemwrap/internal/completion"
	"github.com/schoolboyqueue/gemwrap/internal/config"
	"github.com/schoolboyqueue/gemwrap/internal/locator"
	"github.com/schoolboyqueue/gemwrap/internal/logging"
	"github.com/schoolboyqueue/gemwrap/internal/progress"
	"github.com/schoolboyqueue/gemwrap/internal/tokens"
	"github.com/schoolboyqueue/gemwrap/internal/transport"
)

var (
	queryStream      bool
	queryJSON        bool
	queryModel       string
	queryTemperature float64
	queryMaxTokens   int
	querySystem      string
	queryTimeout     int
	queryNoRetry     bool
)

var queryCmd = &cobra.Command{
	Use:   "query <prompt>",
	Short: "Send a prompt to the Gemini CLI and print the completion",
	Long: `Send a prompt through the resolved gemini binary and print the answer.

By default the answer text is written to stdout. With --json the full
OpenAI-style completion object is printed instead; with --stream the
answer is emitted word by word as it is chunked.`,
	Example: `  gemwrap query "Explain goroutines in one paragraph"
  gemwrap query --model smart --temperature 0.2 "2+2?"
  gemwrap query --stream "Write a haiku about the sea"
  gemwrap query --json "2+2?" | jq .choices[0].message.content`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.GroupID = GroupQueries
	queryCmd.Flags().BoolVar(&queryStream, "stream", false, "Emit the answer as word chunks")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "Print the OpenAI-style completion object")
	queryCmd.Flags().StringVarP(&queryModel, "model", "m", "", "Model name or alias")
	queryCmd.Flags().Float64VarP(&queryTemperature, "temperature", "t", 0, "Sampling temperature (0 to 2)")
	queryCmd.Flags().IntVar(&queryMaxTokens, "max-tokens", 0, "Maximum output tokens")
	queryCmd.Flags().StringVarP(&querySystem, "system", "s", "", "System prompt")
	queryCmd.Flags().IntVar(&queryTimeout, "timeout", 0, "Query timeout in seconds")
	queryCmd.Flags().BoolVar(&queryNoRetry, "no-retry", false, "Fail immediately instead of retrying")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	prompt := args[0]

	cfg, client, err := buildClient(cmd)
	if err != nil {
		printError(err)
		return NewExitError(ExitInvalidArguments)
	}

	opts := cfg.Options()
	if queryModel != "" {
		opts.Model = queryModel
	}
	if cmd.Flags().Changed("temperature") {
		temp := queryTemperature
		opts.Temperature = &temp
	}
	if queryMaxTokens > 0 {
		opts.MaxOutputTokens = queryMaxTokens
	}
	if querySystem != "" {
		opts.SystemPrompt = querySystem
	}
	if queryTimeout > 0 {
		opts.Timeout = time.Duration(queryTimeout) * time.Second
	}
	if queryNoRetry {
		opts.NoRetry = true
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		opts.Verbose = true
	}

	if err := opts.Validate(); err != nil {
		printError(err)
		return NewExitError(ExitInvalidArguments)
	}

	if queryStream {
		return streamQuery(cmd, client, prompt, opts)
	}
	return completeQuery(cmd, client, prompt, opts)
}

func completeQuery(cmd *cobra.Command, client *completion.Client, prompt string, opts transport.Options) error {
	indicator := progress.NewIndicator(progress.DetectTerminalCapabilities())
	indicator.Start(fmt.Sprintf("querying %s", opts.Model))

	result, err := client.Complete(cmd.Context(), prompt, opts)
	indicator.Stop()
	if err != nil {
		printError(err)
		return NewExitError(classifyExit(err))
	}

	if queryJSON {
		return printJSON(cmd, result)
	}
	cmd.Println(result.Choices[0].Message.Content)
	return nil
}

func streamQuery(cmd *cobra.Command, client *completion.Client, prompt string, opts transport.Options) error {
	stream, err := client.CompleteStream(cmd.Context(), prompt, opts)
	if err != nil {
		printError(err)
		return NewExitError(classifyExit(err))
	}

	for {
		chunk, ok := stream.Next()
		if !ok {
			break
		}
		if queryJSON {
			if err := printJSON(cmd, chunk); err != nil {
				return err
			}
			continue
		}
		cmd.Print(chunk.Choices[0].Delta.Content)
	}
	if !queryJSON {
		cmd.Println()
	}
	return nil
}

// buildClient assembles the completion client from config and global flags.
func buildClient(cmd *cobra.Command) (*config.Configuration, *completion.Client, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	logger, err := logging.NewLogger(level, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}

	cliPath, _ := cmd.Flags().GetString("cli-path")
	if cliPath == "" {
		cliPath = cfg.CLIPath
	}

	runner := transport.NewRunner(locator.New(cliPath), logger, time.Duration(cfg.Timeout)*time.Second)
	client := completion.NewClient(runner, completion.Settings{
		DefaultModel:       cfg.Model,
		DefaultTemperature: cfg.Temperature,
		Aliases:            cfg.ModelAliases,
		Policy:             cfg.RetryPolicy(),
		Estimator:          tokens.ForName(cfg.Estimator),
		Logger:             logger,
	})
	return cfg, client, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)
}
